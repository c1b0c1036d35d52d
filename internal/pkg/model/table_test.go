package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTableID(t *testing.T) {
	t.Parallel()

	// Dataset and table
	id, err := ParseTableID("my_dataset.my_table")
	require.NoError(t, err)
	assert.Equal(t, TableID{Dataset: "my_dataset", Table: "my_table"}, id)
	assert.Equal(t, "my_dataset.my_table", id.String())

	// Project, dataset and table
	id, err = ParseTableID("my-project.my_dataset.my_table")
	require.NoError(t, err)
	assert.Equal(t, TableID{Project: "my-project", Dataset: "my_dataset", Table: "my_table"}, id)
	assert.Equal(t, "my-project.my_dataset.my_table", id.String())
}

func TestParseTableID_Invalid(t *testing.T) {
	t.Parallel()

	_, err := ParseTableID("my_table")
	require.Error(t, err)
	assert.Equal(t, `invalid table ID "my_table": expected "dataset.table" or "project.dataset.table"`, err.Error())

	_, err = ParseTableID("a.b.c.d")
	require.Error(t, err)

	_, err = ParseTableID("my_dataset.")
	require.Error(t, err)
	assert.Equal(t, `invalid table ID "my_dataset.": empty part`, err.Error())
}

func TestTableIDSibling(t *testing.T) {
	t.Parallel()
	id := MustParseTableID("my-project.my_dataset.my_table")
	assert.Equal(t, "my-project.my_dataset.load_jobs", id.Sibling("load_jobs").String())
}

func TestTableSchema(t *testing.T) {
	t.Parallel()
	schema := TableSchema{Columns: []Column{
		{Name: "id", Type: TypeInteger},
		{Name: "name", Type: TypeString},
		{Name: "tags", Type: TypeString, Repeated: true},
		{Name: "geometry", Type: TypeGeography},
	}}

	assert.Equal(t, 4, schema.Len())
	assert.Equal(t, []string{"id", "name", "tags", "geometry"}, schema.ColumnNames())
	assert.Equal(t, []string{"id", "name", "tags"}, schema.PropertyNames())

	column, found := schema.Column("tags")
	assert.True(t, found)
	assert.True(t, column.Repeated)

	_, found = schema.Column("missing")
	assert.False(t, found)

	geometry, found := schema.GeographyColumn()
	assert.True(t, found)
	assert.Equal(t, "geometry", geometry.Name)
}

func TestTableSchemaEqual(t *testing.T) {
	t.Parallel()
	s1 := TableSchema{Columns: []Column{{Name: "id", Type: TypeInteger}, {Name: "name", Type: TypeString}}}
	s2 := TableSchema{Columns: []Column{{Name: "id", Type: TypeInteger}, {Name: "name", Type: TypeString}}}
	s3 := TableSchema{Columns: []Column{{Name: "name", Type: TypeString}, {Name: "id", Type: TypeInteger}}}

	assert.True(t, s1.Equal(s2))
	assert.False(t, s1.Equal(s3), "column order matters")
	assert.False(t, s1.Equal(TableSchema{}))
}
