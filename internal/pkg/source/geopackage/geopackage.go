// Package geopackage reads GeoPackage layers, spatial and attribute-only,
// over the sqlite3 driver.
package geopackage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/bluecarto/geoloader/internal/pkg/geo"
	"github.com/bluecarto/geoloader/internal/pkg/log"
	"github.com/bluecarto/geoloader/internal/pkg/model"
	"github.com/bluecarto/geoloader/internal/pkg/source"
	"github.com/bluecarto/geoloader/internal/pkg/utils/errors"
)

type Source struct {
	logger         log.Logger
	path           string
	layer          string
	db             *sql.DB
	schema         *model.Schema
	geometryColumn string
	properties     []string
	count          int
	iterated       bool
}

func Open(ctx context.Context, logger log.Logger, path, layer string) (s *Source, err error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return nil, errors.Wrapf(err, `cannot open GeoPackage "%s"`, path)
	}
	defer func() {
		if err != nil {
			_ = db.Close()
		}
	}()
	if err := db.PingContext(ctx); err != nil {
		return nil, errors.Wrapf(err, `cannot open GeoPackage "%s"`, path)
	}

	layer, err = selectLayer(ctx, db, path, layer)
	if err != nil {
		return nil, err
	}

	s = &Source{logger: logger, path: path, layer: layer, db: db}
	if err := s.loadSchema(ctx); err != nil {
		return nil, err
	}
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+quote(layer)).Scan(&s.count); err != nil {
		return nil, errors.Wrapf(err, `cannot count layer "%s"`, layer)
	}
	return s, nil
}

// selectLayer validates the requested layer against gpkg_contents.
// With no layer requested, a single-layer package selects its only layer.
func selectLayer(ctx context.Context, db *sql.DB, path, layer string) (string, error) {
	rows, err := db.QueryContext(ctx, `SELECT table_name FROM gpkg_contents WHERE data_type IN ('features', 'attributes') ORDER BY table_name`)
	if err != nil {
		return "", errors.Wrapf(err, `cannot list layers of "%s"`, path)
	}
	defer rows.Close()

	var layers []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return "", err
		}
		layers = append(layers, name)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	switch {
	case len(layers) == 0:
		return "", errors.Errorf(`no layers found in "%s"`, path)
	case layer == "" && len(layers) == 1:
		return layers[0], nil
	case layer == "":
		return "", errors.Errorf(`"%s" has multiple layers, use one of: %s`, path, strings.Join(layers, ", "))
	}
	for _, name := range layers {
		if name == layer {
			return layer, nil
		}
	}
	return "", errors.Errorf(`layer "%s" not found in "%s", use one of: %s`, layer, path, strings.Join(layers, ", "))
}

func (s *Source) loadSchema(ctx context.Context) error {
	// The geometry column, a plain attribute table has none.
	var geometryType string
	err := s.db.
		QueryRowContext(ctx, `SELECT column_name, geometry_type_name FROM gpkg_geometry_columns WHERE table_name = ?`, s.layer).
		Scan(&s.geometryColumn, &geometryType)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return errors.Wrapf(err, `cannot read geometry column of layer "%s"`, s.layer)
	}

	rows, err := s.db.QueryContext(ctx, `PRAGMA table_info(`+quote(s.layer)+`)`)
	if err != nil {
		return errors.Wrapf(err, `cannot read columns of layer "%s"`, s.layer)
	}
	defer rows.Close()

	schema := model.NewSchema()
	schema.Geometry = geometryType
	for rows.Next() {
		var cid int
		var name, declaredType string
		var notNull, pk int
		var defaultValue any
		if err := rows.Scan(&cid, &name, &declaredType, &notNull, &defaultValue, &pk); err != nil {
			return err
		}
		if name == s.geometryColumn {
			continue
		}
		if pk == 1 && strings.EqualFold(declaredType, "INTEGER") {
			// The feature ID column, not a property
			continue
		}
		schema.SetProperty(name, strings.ToLower(declaredType))
		s.properties = append(s.properties, name)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	s.schema = schema
	return nil
}

func (s *Source) Path() string {
	return s.path
}

func (s *Source) Layer() string {
	return s.layer
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

func (s *Source) Features(ctx context.Context) (source.Iterator, error) {
	if s.iterated {
		return nil, errors.Errorf(`features of "%s" already consumed`, s.path)
	}
	s.iterated = true

	columns := make([]string, 0, len(s.properties)+1)
	for _, name := range s.properties {
		columns = append(columns, quote(name))
	}
	if s.geometryColumn != "" {
		columns = append(columns, quote(s.geometryColumn))
	}

	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY rowid`, strings.Join(columns, ", "), quote(s.layer))
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrapf(err, `cannot read layer "%s"`, s.layer)
	}
	return &iterator{source: s, rows: rows, index: -1}, nil
}

func (s *Source) Close() error {
	return s.db.Close()
}

type iterator struct {
	source  *Source
	rows    *sql.Rows
	index   int
	feature model.Feature
	err     error
}

func (it *iterator) Next() bool {
	if it.err != nil {
		return false
	}
	if !it.rows.Next() {
		it.err = it.rows.Err()
		_ = it.rows.Close()
		return false
	}
	it.index++

	withGeometry := it.source.geometryColumn != ""
	values := make([]any, len(it.source.properties), len(it.source.properties)+1)
	pointers := make([]any, 0, len(values)+1)
	for i := range values {
		pointers = append(pointers, &values[i])
	}
	var blob []byte
	if withGeometry {
		pointers = append(pointers, &blob)
	}
	if err := it.rows.Scan(pointers...); err != nil {
		it.err = errors.Wrapf(err, `cannot read feature %d of layer "%s"`, it.index, it.source.layer)
		return false
	}

	feature := model.NewFeature(it.index)
	for i, name := range it.source.properties {
		feature.Properties.Set(name, values[i])
	}
	if withGeometry && blob != nil {
		geometry, err := geo.DecodeGeoPackageBlob(blob)
		if err != nil {
			it.err = errors.Wrapf(err, `cannot read feature %d of layer "%s"`, it.index, it.source.layer)
			return false
		}
		feature.Geometry = geometry
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

// quote escapes an identifier for sqlite.
func quote(identifier string) string {
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}
