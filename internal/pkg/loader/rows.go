package loader

import (
	stdjson "encoding/json"
	"time"

	"github.com/relvacode/iso8601"
	"github.com/spf13/cast"

	"github.com/bluecarto/geoloader/internal/pkg/encoding/json"
	"github.com/bluecarto/geoloader/internal/pkg/geo"
	"github.com/bluecarto/geoloader/internal/pkg/model"
	"github.com/bluecarto/geoloader/internal/pkg/utils/errors"
	"github.com/bluecarto/geoloader/internal/pkg/warehouse"
)

const datetimeFormat = "2006-01-02T15:04:05.999999"

// RowEncoder converts features to rows shaped after the target table schema.
// Property values are coerced to the JSON form of their column type, the
// geometry is written as WKT into the geography column.
type RowEncoder struct {
	columns         []model.Column
	geographyColumn string
	rawColumn       string
}

func NewRowEncoder(schema model.TableSchema) *RowEncoder {
	e := &RowEncoder{}
	for _, column := range schema.Columns {
		if column.Type == model.TypeGeography {
			if e.geographyColumn == "" {
				e.geographyColumn = column.Name
			}
			continue
		}
		e.columns = append(e.columns, column)
	}
	return e
}

// GeometryAsHexWKB redirects the geometry to the named string column as hex
// encoded WKB. Database loads use it, the geography column stays empty until
// a repair statement materializes it from the raw value.
func (e *RowEncoder) GeometryAsHexWKB(column string) *RowEncoder {
	e.rawColumn = column
	return e
}

func (e *RowEncoder) Encode(f model.Feature) (warehouse.Row, error) {
	row := make(warehouse.Row, len(e.columns)+1)
	for _, column := range e.columns {
		value, found := f.Properties.Get(column.Name)
		if !found {
			continue
		}
		coerced, err := coerce(value, column)
		if err != nil {
			return nil, errors.Wrapf(err, `cannot convert value of "%s" to %s`, column.Name, column.Type)
		}
		row[column.Name] = coerced
	}

	if f.Geometry != nil {
		switch {
		case e.rawColumn != "":
			encoded, err := geo.EncodeWKBHex(f.Geometry)
			if err != nil {
				return nil, err
			}
			row[e.rawColumn] = encoded
		case e.geographyColumn != "":
			row[e.geographyColumn] = geo.EncodeWKT(f.Geometry)
		}
	}
	return row, nil
}

// coerce converts a source value to the JSON form of the column type.
// Nil stays nil, repeated columns pass through element-wise compatible slices.
func coerce(value any, column model.Column) (any, error) {
	if value == nil {
		return nil, nil
	}
	if column.Repeated {
		return value, nil
	}
	switch column.Type {
	case model.TypeInteger:
		return cast.ToInt64E(value)
	case model.TypeFloat:
		return cast.ToFloat64E(value)
	case model.TypeBoolean:
		return cast.ToBoolE(value)
	case model.TypeString:
		return cast.ToStringE(value)
	case model.TypeDate:
		return coerceTime(value, "2006-01-02")
	case model.TypeDatetime:
		return coerceTime(value, datetimeFormat)
	case model.TypeTimestamp:
		return coerceTime(value, time.RFC3339Nano)
	case model.TypeJSON:
		return coerceJSON(value)
	default:
		// BYTES pass through, the JSON encoder represents them as base64.
		return value, nil
	}
}

func coerceTime(value any, format string) (any, error) {
	switch v := value.(type) {
	case time.Time:
		return v.Format(format), nil
	case string:
		t, err := iso8601.ParseString(v)
		if err != nil {
			return nil, err
		}
		return t.Format(format), nil
	default:
		return nil, errors.Errorf("unsupported time value of type %T", value)
	}
}

// coerceJSON normalizes semi-structured values to a JSON document string.
func coerceJSON(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case stdjson.RawMessage:
		return string(v), nil
	case []byte:
		return string(v), nil
	default:
		return json.EncodeString(v, false)
	}
}
