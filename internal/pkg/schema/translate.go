// Package schema translates source layer schemas to warehouse table schemas.
package schema

import (
	"strings"

	"github.com/bluecarto/geoloader/internal/pkg/log"
	"github.com/bluecarto/geoloader/internal/pkg/model"
)

// GeometryColumn is the name of the geography column added for spatial layers.
const GeometryColumn = "geometry"

// RawGeometryColumn holds the source geometry as hex encoded WKB during a
// database load. The geography column is materialized from it afterwards by
// the repair statement.
const RawGeometryColumn = "original_geometry"

// rule maps a normalized source type descriptor to a warehouse column type.
type rule func(descriptor string) (model.ColumnType, bool)

// Rules are applied in order, the first match wins.
var rules = []rule{
	prefixRule,
	exactRule,
	spatialRule,
}

// Translate maps a source layer schema to a warehouse table schema.
// Properties keep their order. Geography columns go last, the dedicated
// geometry slot of a spatial layer after them. A property with a type no
// rule recognizes is dropped with a warning.
func Translate(logger log.Logger, schema *model.Schema) model.TableSchema {
	var out model.TableSchema
	var geographies []model.Column
	for _, name := range schema.PropertyNames() {
		descriptor, _ := schema.Property(name)
		column, ok := translateColumn(name, descriptor)
		if !ok {
			logger.Warnf(`skipped property "%s": unrecognized type "%s"`, name, descriptor)
			continue
		}
		if column.Type == model.TypeGeography {
			geographies = append(geographies, column)
			continue
		}
		out.Columns = append(out.Columns, column)
	}

	out.Columns = append(out.Columns, geographies...)
	if schema.Geometry != "" {
		out.Columns = append(out.Columns, model.Column{Name: GeometryColumn, Type: model.TypeGeography})
	}
	return out
}

// WithRawGeometry shapes the table schema of a database load target. The
// geography column is replaced in place by the string staging column, a fresh
// geography column named GeometryColumn goes last. A schema without a
// geography column comes back unchanged.
func WithRawGeometry(s model.TableSchema) model.TableSchema {
	out := model.TableSchema{Columns: make([]model.Column, 0, len(s.Columns)+1)}
	replaced := false
	for _, c := range s.Columns {
		if c.Type == model.TypeGeography && !replaced {
			out.Columns = append(out.Columns, model.Column{Name: RawGeometryColumn, Type: model.TypeString})
			replaced = true
			continue
		}
		out.Columns = append(out.Columns, c)
	}
	if replaced {
		out.Columns = append(out.Columns, model.Column{Name: GeometryColumn, Type: model.TypeGeography})
	}
	return out
}

func translateColumn(name, descriptor string) (model.Column, bool) {
	normalized := normalize(descriptor)
	if element, isArray := arrayElement(normalized); isArray {
		if columnType, ok := translateType(element); ok {
			return model.Column{Name: name, Type: columnType, Repeated: true}, true
		}
		return model.Column{}, false
	}
	if columnType, ok := translateType(normalized); ok {
		return model.Column{Name: name, Type: columnType}, true
	}
	return model.Column{}, false
}

func translateType(descriptor string) (model.ColumnType, bool) {
	for _, apply := range rules {
		if columnType, ok := apply(descriptor); ok {
			return columnType, true
		}
	}
	return "", false
}

// normalize lowercases the descriptor and strips a parenthesized length,
// "VARCHAR(80)" and "Geometry(Polygon,4326)" become "varchar" and "geometry".
func normalize(descriptor string) string {
	out := strings.ToLower(strings.TrimSpace(descriptor))
	if i := strings.Index(out, "("); i >= 0 {
		if j := strings.LastIndex(out, ")"); j > i {
			out = out[:i] + out[j+1:]
		}
	}
	return strings.TrimSpace(out)
}

// arrayElement unwraps the array forms "array[elem]", "elem[]" and "_elem".
func arrayElement(descriptor string) (string, bool) {
	switch {
	case strings.HasPrefix(descriptor, "array[") && strings.HasSuffix(descriptor, "]"):
		return descriptor[len("array[") : len(descriptor)-1], true
	case strings.HasSuffix(descriptor, "[]"):
		return descriptor[:len(descriptor)-2], true
	case strings.HasPrefix(descriptor, "_"):
		return descriptor[1:], true
	default:
		return "", false
	}
}

// prefixRule covers the field descriptor convention of file sources,
// "int:10", "str:80", "float:24.15".
func prefixRule(descriptor string) (model.ColumnType, bool) {
	switch {
	case strings.HasPrefix(descriptor, "int"):
		return model.TypeInteger, true
	case strings.HasPrefix(descriptor, "str"):
		return model.TypeString, true
	case strings.HasPrefix(descriptor, "float"):
		return model.TypeFloat, true
	default:
		return "", false
	}
}

var exactTypes = map[string]model.ColumnType{
	"double":                      model.TypeFloat,
	"double precision":            model.TypeFloat,
	"real":                        model.TypeFloat,
	"numeric":                     model.TypeFloat,
	"decimal":                     model.TypeFloat,
	"bool":                        model.TypeBoolean,
	"boolean":                     model.TypeBoolean,
	"text":                        model.TypeString,
	"varchar":                     model.TypeString,
	"character varying":           model.TypeString,
	"character":                   model.TypeString,
	"char":                        model.TypeString,
	"uuid":                        model.TypeString,
	"time":                        model.TypeString,
	"time with time zone":         model.TypeString,
	"time without time zone":      model.TypeString,
	"bigint":                      model.TypeInteger,
	"smallint":                    model.TypeInteger,
	"tinyint":                     model.TypeInteger,
	"mediumint":                   model.TypeInteger,
	"date":                        model.TypeDate,
	"datetime":                    model.TypeDatetime,
	"timestamp":                   model.TypeTimestamp,
	"timestamptz":                 model.TypeTimestamp,
	"timestamp with time zone":    model.TypeTimestamp,
	"timestamp without time zone": model.TypeTimestamp,
	"json":                        model.TypeJSON,
	"jsonb":                       model.TypeJSON,
	"bytea":                       model.TypeBytes,
	"blob":                        model.TypeBytes,
}

func exactRule(descriptor string) (model.ColumnType, bool) {
	columnType, ok := exactTypes[descriptor]
	return columnType, ok
}

// spatialRule matches geometry typed columns of database sources.
func spatialRule(descriptor string) (model.ColumnType, bool) {
	if descriptor == "geometry" || descriptor == "geography" {
		return model.TypeGeography, true
	}
	return "", false
}
