package repair

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	deps "github.com/bluecarto/geoloader/internal/pkg/dependencies"
	"github.com/bluecarto/geoloader/internal/pkg/model"
	"github.com/bluecarto/geoloader/internal/pkg/schema"
	"github.com/bluecarto/geoloader/internal/pkg/utils/errors"
	"github.com/bluecarto/geoloader/internal/pkg/warehouse"
)

func TestRun(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	d := deps.NewMockedDeps()

	id := model.MustParseTableID("proj.wild.plants")
	require.NoError(t, d.FakeWarehouse().CreateTable(ctx, id, model.TableSchema{Columns: []model.Column{
		{Name: "id", Type: model.TypeInteger},
		{Name: schema.RawGeometryColumn, Type: model.TypeString},
		{Name: schema.GeometryColumn, Type: model.TypeGeography},
	}}))

	require.NoError(t, Run(ctx, Options{
		Table:        "proj.wild.plants",
		SourceColumn: schema.RawGeometryColumn,
		TargetColumn: schema.GeometryColumn,
	}, d))

	executed := d.FakeWarehouse().Executed()
	require.Len(t, executed, 1)
	assert.Equal(
		t,
		"UPDATE `proj.wild.plants` SET geometry = ST_GEOGFROMWKB(FROM_HEX(original_geometry), make_valid => TRUE) WHERE original_geometry IS NOT NULL",
		executed[0],
	)
	assert.Contains(t, d.DebugLogger().InfoMessages(), `Repaired geometries of table "proj.wild.plants".`)
	assert.Contains(t, d.TestTelemetry().SpanNames(), "geoloader.operation.table.repair")
}

func TestRunMissingColumn(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	d := deps.NewMockedDeps()

	id := model.MustParseTableID("proj.wild.plants")
	require.NoError(t, d.FakeWarehouse().CreateTable(ctx, id, model.TableSchema{Columns: []model.Column{
		{Name: "id", Type: model.TypeInteger},
		{Name: schema.GeometryColumn, Type: model.TypeGeography},
	}}))

	err := Run(ctx, Options{
		Table:        "proj.wild.plants",
		SourceColumn: schema.RawGeometryColumn,
		TargetColumn: schema.GeometryColumn,
	}, d)
	require.ErrorContains(t, err, `table "proj.wild.plants" has no column "original_geometry"`)
	assert.Empty(t, d.FakeWarehouse().Executed())
}

func TestRunMissingTable(t *testing.T) {
	t.Parallel()
	d := deps.NewMockedDeps()

	err := Run(context.Background(), Options{
		Table:        "proj.wild.plants",
		SourceColumn: schema.RawGeometryColumn,
		TargetColumn: schema.GeometryColumn,
	}, d)
	require.Error(t, err)
	var notFound warehouse.TableNotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestRunInvalidOptions(t *testing.T) {
	t.Parallel()
	d := deps.NewMockedDeps()

	err := Run(context.Background(), Options{Table: "plants"}, d)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table_id")
	assert.Contains(t, err.Error(), "required")
}
