package bigquery

import (
	bq "cloud.google.com/go/bigquery"

	"github.com/bluecarto/geoloader/internal/pkg/model"
	"github.com/bluecarto/geoloader/internal/pkg/utils/errors"
)

var fieldTypes = map[model.ColumnType]bq.FieldType{
	model.TypeString:    bq.StringFieldType,
	model.TypeInteger:   bq.IntegerFieldType,
	model.TypeFloat:     bq.FloatFieldType,
	model.TypeBoolean:   bq.BooleanFieldType,
	model.TypeDate:      bq.DateFieldType,
	model.TypeDatetime:  bq.DateTimeFieldType,
	model.TypeTimestamp: bq.TimestampFieldType,
	model.TypeJSON:      bq.JSONFieldType,
	model.TypeBytes:     bq.BytesFieldType,
	model.TypeGeography: bq.GeographyFieldType,
}

var columnTypes = func() map[bq.FieldType]model.ColumnType {
	out := make(map[bq.FieldType]model.ColumnType, len(fieldTypes))
	for columnType, fieldType := range fieldTypes {
		out[fieldType] = columnType
	}
	return out
}()

func toFieldSchema(c model.Column) (*bq.FieldSchema, error) {
	fieldType, ok := fieldTypes[c.Type]
	if !ok {
		return nil, errors.Errorf(`unsupported column type "%s"`, c.Type)
	}
	return &bq.FieldSchema{Name: c.Name, Type: fieldType, Repeated: c.Repeated}, nil
}

func toSchema(s model.TableSchema) (bq.Schema, error) {
	out := make(bq.Schema, 0, len(s.Columns))
	for _, column := range s.Columns {
		field, err := toFieldSchema(column)
		if err != nil {
			return nil, err
		}
		out = append(out, field)
	}
	return out, nil
}

func fromSchema(s bq.Schema) model.TableSchema {
	var out model.TableSchema
	for _, field := range s {
		columnType, ok := columnTypes[field.Type]
		if !ok {
			// A type this tool never writes, keep the raw name.
			columnType = model.ColumnType(field.Type)
		}
		out.Columns = append(out.Columns, model.Column{
			Name:     field.Name,
			Type:     columnType,
			Repeated: field.Repeated,
		})
	}
	return out
}
