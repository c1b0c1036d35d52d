package model

import (
	"strings"

	"github.com/bluecarto/geoloader/internal/pkg/utils/errors"
)

// TableID is a fully qualified warehouse table reference.
// The project part is optional, the default project of the connection is used if empty.
type TableID struct {
	Project string `json:"project,omitempty"`
	Dataset string `json:"dataset" validate:"required"`
	Table   string `json:"table" validate:"required"`
}

// ParseTableID parses "dataset.table" or "project.dataset.table".
func ParseTableID(v string) (TableID, error) {
	parts := strings.Split(v, ".")
	for _, part := range parts {
		if len(part) == 0 {
			return TableID{}, errors.Errorf(`invalid table ID "%s": empty part`, v)
		}
	}
	switch len(parts) {
	case 2:
		return TableID{Dataset: parts[0], Table: parts[1]}, nil
	case 3:
		return TableID{Project: parts[0], Dataset: parts[1], Table: parts[2]}, nil
	default:
		return TableID{}, errors.Errorf(`invalid table ID "%s": expected "dataset.table" or "project.dataset.table"`, v)
	}
}

// MustParseTableID is intended for tests and constants.
func MustParseTableID(v string) TableID {
	id, err := ParseTableID(v)
	if err != nil {
		panic(err)
	}
	return id
}

func (v TableID) String() string {
	if v.Project == "" {
		return v.Dataset + "." + v.Table
	}
	return v.Project + "." + v.Dataset + "." + v.Table
}

// Sibling returns a table reference in the same project and dataset.
func (v TableID) Sibling(table string) TableID {
	return TableID{Project: v.Project, Dataset: v.Dataset, Table: table}
}

// ColumnType is a warehouse column type.
type ColumnType string

const (
	TypeString    ColumnType = "STRING"
	TypeInteger   ColumnType = "INT64"
	TypeFloat     ColumnType = "FLOAT64"
	TypeBoolean   ColumnType = "BOOL"
	TypeDate      ColumnType = "DATE"
	TypeDatetime  ColumnType = "DATETIME"
	TypeTimestamp ColumnType = "TIMESTAMP"
	TypeJSON      ColumnType = "JSON"
	TypeBytes     ColumnType = "BYTES"
	TypeGeography ColumnType = "GEOGRAPHY"
)

// Column is one column of a warehouse table.
type Column struct {
	Name     string     `json:"name" validate:"required"`
	Type     ColumnType `json:"type" validate:"required"`
	Repeated bool       `json:"repeated,omitempty"`
}

// TableSchema is an ordered set of columns.
type TableSchema struct {
	Columns []Column `json:"columns" validate:"required,dive"`
}

func (s TableSchema) Len() int {
	return len(s.Columns)
}

// ColumnNames returns the names of all columns, in definition order.
func (s TableSchema) ColumnNames() []string {
	out := make([]string, 0, len(s.Columns))
	for _, c := range s.Columns {
		out = append(out, c.Name)
	}
	return out
}

// PropertyNames returns the names of all non-geography columns, in definition order.
func (s TableSchema) PropertyNames() []string {
	out := make([]string, 0, len(s.Columns))
	for _, c := range s.Columns {
		if c.Type != TypeGeography {
			out = append(out, c.Name)
		}
	}
	return out
}

// Column returns the column with the given name.
func (s TableSchema) Column(name string) (Column, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// GeographyColumn returns the geography column, if the schema has one.
func (s TableSchema) GeographyColumn() (Column, bool) {
	for _, c := range s.Columns {
		if c.Type == TypeGeography {
			return c, true
		}
	}
	return Column{}, false
}

// Equal compares both schemas including the column order.
func (s TableSchema) Equal(other TableSchema) bool {
	if len(s.Columns) != len(other.Columns) {
		return false
	}
	for i, c := range s.Columns {
		if c != other.Columns[i] {
			return false
		}
	}
	return true
}
