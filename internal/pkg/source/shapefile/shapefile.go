// Package shapefile reads ESRI shapefiles as a single-layer source.
package shapefile

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jonas-p/go-shp"

	"github.com/bluecarto/geoloader/internal/pkg/geo"
	"github.com/bluecarto/geoloader/internal/pkg/log"
	"github.com/bluecarto/geoloader/internal/pkg/model"
	"github.com/bluecarto/geoloader/internal/pkg/source"
	"github.com/bluecarto/geoloader/internal/pkg/utils/errors"
)

type Source struct {
	logger   log.Logger
	path     string
	reader   *shp.Reader
	schema   *model.Schema
	fields   []shp.Field
	count    int
	iterated bool
}

func Open(_ context.Context, logger log.Logger, path string) (*Source, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, `cannot open shapefile "%s"`, path)
	}

	fields := reader.Fields()
	return &Source{
		logger: logger,
		path:   path,
		reader: reader,
		schema: schemaFromFields(fields, reader.GeometryType),
		fields: fields,
		count:  reader.AttributeCount(),
	}, nil
}

func (s *Source) Path() string {
	return s.path
}

// Layer is empty, a shapefile is always a single layer.
func (s *Source) Layer() string {
	return ""
}

func (s *Source) Schema() *model.Schema {
	return s.schema
}

func (s *Source) Count() int {
	return s.count
}

func (s *Source) Classification() model.Classification {
	return s.schema.Classification()
}

func (s *Source) Features(_ context.Context) (source.Iterator, error) {
	if s.iterated {
		return nil, errors.Errorf(`features of "%s" already consumed`, s.path)
	}
	s.iterated = true
	return &iterator{source: s, index: -1}, nil
}

func (s *Source) Close() error {
	return s.reader.Close()
}

type iterator struct {
	source  *Source
	index   int
	feature model.Feature
	err     error
}

func (it *iterator) Next() bool {
	if it.err != nil {
		return false
	}
	reader := it.source.reader
	if !reader.Next() {
		it.err = reader.Err()
		return false
	}
	it.index++

	row, shape := reader.Shape()
	geometry, err := geo.FromShape(shape)
	if err != nil {
		it.err = errors.Wrapf(err, `cannot read feature %d of "%s"`, it.index, it.source.path)
		return false
	}

	feature := model.NewFeature(it.index)
	feature.Geometry = geometry
	for i, field := range it.source.fields {
		descriptor, _ := it.source.schema.Property(field.String())
		feature.Properties.Set(field.String(), parseAttribute(reader.ReadAttribute(row, i), descriptor))
	}
	it.feature = feature
	return true
}

func (it *iterator) Feature() model.Feature {
	return it.feature
}

func (it *iterator) Err() error {
	return it.err
}

// schemaFromFields maps DBF field descriptors to the common descriptor
// convention: C:n to "str:n", N to "int:n" or "float:n.p", F to "float:n.p",
// L to "bool", D to "date".
func schemaFromFields(fields []shp.Field, geometryType shp.ShapeType) *model.Schema {
	schema := model.NewSchema()
	schema.Geometry = geo.ShapeTypeName(geometryType)
	for _, field := range fields {
		schema.SetProperty(field.String(), fieldDescriptor(field))
	}
	return schema
}

func fieldDescriptor(field shp.Field) string {
	switch field.Fieldtype {
	case 'N':
		if field.Precision == 0 {
			return fmt.Sprintf("int:%d", field.Size)
		}
		return fmt.Sprintf("float:%d.%d", field.Size, field.Precision)
	case 'F':
		return fmt.Sprintf("float:%d.%d", field.Size, field.Precision)
	case 'L':
		return "bool"
	case 'D':
		return "date"
	default:
		// C and anything exotic reads as text
		return fmt.Sprintf("str:%d", field.Size)
	}
}

// parseAttribute converts the DBF text value by its descriptor.
// Unparseable and empty values become nil.
func parseAttribute(value, descriptor string) any {
	value = strings.TrimSpace(value)
	switch {
	case strings.HasPrefix(descriptor, "str"):
		return value
	case value == "":
		return nil
	case strings.HasPrefix(descriptor, "int"):
		if v, err := strconv.ParseInt(value, 10, 64); err == nil {
			return v
		}
		return nil
	case strings.HasPrefix(descriptor, "float"):
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			return v
		}
		return nil
	case descriptor == "bool":
		switch value {
		case "T", "t", "Y", "y":
			return true
		case "F", "f", "N", "n":
			return false
		}
		return nil
	case descriptor == "date":
		if v, err := time.Parse("20060102", value); err == nil {
			return v.Format("2006-01-02")
		}
		return nil
	default:
		return value
	}
}
