package geopackage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluecarto/geoloader/internal/pkg/geo"
	"github.com/bluecarto/geoloader/internal/pkg/log"
	"github.com/bluecarto/geoloader/internal/pkg/model"
)

func pointBlob(t *testing.T, x, y float64) []byte {
	t.Helper()
	wkb, err := geo.EncodeWKB(orb.Point{x, y})
	require.NoError(t, err)
	return append([]byte{'G', 'P', 0x00, 0x01, 0xE6, 0x10, 0x00, 0x00}, wkb...)
}

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "zones.gpkg")

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	for _, statement := range []string{
		`CREATE TABLE gpkg_contents (table_name TEXT PRIMARY KEY, data_type TEXT, identifier TEXT)`,
		`CREATE TABLE gpkg_geometry_columns (table_name TEXT, column_name TEXT, geometry_type_name TEXT, srs_id INTEGER, z TINYINT, m TINYINT)`,
		`CREATE TABLE zones (fid INTEGER PRIMARY KEY, name TEXT, population MEDIUMINT, area DOUBLE, geom BLOB)`,
		`CREATE TABLE stats (fid INTEGER PRIMARY KEY, zone TEXT, score REAL)`,
		`INSERT INTO gpkg_contents VALUES ('zones', 'features', 'zones')`,
		`INSERT INTO gpkg_contents VALUES ('stats', 'attributes', 'stats')`,
		`INSERT INTO gpkg_geometry_columns VALUES ('zones', 'geom', 'POINT', 4326, 0, 0)`,
		`INSERT INTO stats (zone, score) VALUES ('north', 0.9)`,
	} {
		_, err := db.Exec(statement)
		require.NoError(t, err)
	}

	_, err = db.Exec(
		`INSERT INTO zones (name, population, area, geom) VALUES (?, ?, ?, ?)`,
		"north", 1200, 12.5, pointBlob(t, 1, 2),
	)
	require.NoError(t, err)
	_, err = db.Exec(
		`INSERT INTO zones (name, population, area, geom) VALUES (?, ?, ?, ?)`,
		"south", 900, 8.25, pointBlob(t, 3, 4),
	)
	require.NoError(t, err)
	return path
}

func TestOpen_SpatialLayer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	src, err := Open(ctx, log.NewNopLogger(), writeFixture(t), "zones")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, src.Close())
	}()

	assert.Equal(t, "zones", src.Layer())
	assert.Equal(t, 2, src.Count())
	assert.Equal(t, model.SpatialDataset, src.Classification())
	assert.Equal(t, "POINT", src.Schema().Geometry)
	assert.Equal(t, []string{"name", "population", "area"}, src.Schema().PropertyNames(), "fid and geometry are not properties")

	descriptor, _ := src.Schema().Property("population")
	assert.Equal(t, "mediumint", descriptor)

	it, err := src.Features(ctx)
	require.NoError(t, err)

	require.True(t, it.Next())
	feature := it.Feature()
	assert.Equal(t, 0, feature.Index)
	assert.Equal(t, orb.Point{1, 2}, feature.Geometry)
	name, _ := feature.Properties.Get("name")
	assert.Equal(t, "north", name)
	population, _ := feature.Properties.Get("population")
	assert.Equal(t, int64(1200), population)
	area, _ := feature.Properties.Get("area")
	assert.Equal(t, 12.5, area)

	require.True(t, it.Next())
	assert.Equal(t, orb.Point{3, 4}, it.Feature().Geometry)

	assert.False(t, it.Next())
	require.NoError(t, it.Err())
}

func TestOpen_AttributeLayer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	src, err := Open(ctx, log.NewNopLogger(), writeFixture(t), "stats")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, src.Close())
	}()

	assert.Equal(t, model.NonSpatialDataset, src.Classification())
	assert.Equal(t, "", src.Schema().Geometry)
	assert.Equal(t, 1, src.Count())

	it, err := src.Features(ctx)
	require.NoError(t, err)
	require.True(t, it.Next())
	assert.Nil(t, it.Feature().Geometry)
	zone, _ := it.Feature().Properties.Get("zone")
	assert.Equal(t, "north", zone)
}

func TestOpen_LayerSelection(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := writeFixture(t)

	// Multiple layers need an explicit name
	_, err := Open(ctx, log.NewNopLogger(), path, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "use one of: stats, zones")

	// Unknown layer
	_, err = Open(ctx, log.NewNopLogger(), path, "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `layer "missing" not found`)
}

func TestOpen_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := Open(context.Background(), log.NewNopLogger(), "/missing/file.gpkg", "")
	require.Error(t, err)
}
