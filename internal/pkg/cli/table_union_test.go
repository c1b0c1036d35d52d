package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluecarto/geoloader/internal/pkg/env"
	"github.com/bluecarto/geoloader/internal/pkg/model"
)

func TestTableUnionCommand(t *testing.T) {
	t.Parallel()
	c := newTestRoot(t, env.Empty())

	ctx := context.Background()
	require.NoError(t, c.fake.CreateTable(ctx, model.MustParseTableID(`proj.wild.plants`), model.TableSchema{Columns: []model.Column{
		{Name: "name", Type: model.TypeString},
		{Name: "geometry", Type: model.TypeGeography},
	}}))
	require.NoError(t, c.fake.CreateTable(ctx, model.MustParseTableID(`proj.wild.trees`), model.TableSchema{Columns: []model.Column{
		{Name: "name", Type: model.TypeString},
		{Name: "geometry", Type: model.TypeGeography},
	}}))

	exitCode := c.execute(t, `table`, `union`, `proj.wild.vegetation`, `proj.wild.plants`, `proj.wild.trees`, `--project`, `proj`)
	assert.Equal(t, 0, exitCode, c.stderr.String())
	assert.Contains(t, c.stdout.String(), `Created table "proj.wild.vegetation" as the union of 2 tables.`)
	assert.Len(t, c.fake.Executed(), 1)
}

func TestTableUnionCommandTooFewTables(t *testing.T) {
	t.Parallel()
	c := newTestRoot(t, env.Empty())

	exitCode := c.execute(t, `table`, `union`, `proj.wild.vegetation`, `proj.wild.plants`, `--project`, `proj`)
	assert.Equal(t, 1, exitCode)
	assert.Contains(t, c.stderr.String(), "at least 3 arg(s)")
}
