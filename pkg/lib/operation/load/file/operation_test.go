package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	deps "github.com/bluecarto/geoloader/internal/pkg/dependencies"
	"github.com/bluecarto/geoloader/internal/pkg/model"
	"github.com/bluecarto/geoloader/internal/pkg/utils/errors"
)

func TestRun(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	d := deps.NewMockedDeps()
	path := writeFixture(t)

	result, err := Run(ctx, Options{Path: path, Table: "proj.wild.plants", ValidateFeatures: true}, d)
	require.NoError(t, err)
	assert.Equal(t, model.JobCompleted, result.Status)
	assert.Equal(t, 3, result.InputFeatureCount)
	assert.Equal(t, 3, result.InsertedFeatures)
	assert.Equal(t, 0, result.InvalidFeatureCount)

	// The table has been created from the translated source schema.
	table := d.FakeWarehouse().Table(model.MustParseTableID("proj.wild.plants"))
	require.NotNil(t, table)
	assert.Equal(t, []string{"id", "name", "geometry"}, table.Schema.ColumnNames())
	assert.Len(t, table.Rows, 3)

	// One COMPLETED ledger row.
	jobs := d.FakeWarehouse().Table(d.Ledger().JobsTable())
	require.NotNil(t, jobs)
	require.Len(t, jobs.Rows, 1)
	assert.Equal(t, "COMPLETED", jobs.Rows[0]["status"])

	assert.Contains(t, d.DebugLogger().InfoMessages(), `Loaded "`+path+`" into table "proj.wild.plants".`)
	assert.Contains(t, d.TestTelemetry().SpanNames(), "geoloader.operation.load.file")
}

func TestRunAppendsToExistingTable(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	d := deps.NewMockedDeps()

	_, err := Run(ctx, Options{Path: writeFixture(t), Table: "proj.wild.plants", ValidateFeatures: true}, d)
	require.NoError(t, err)

	// The second run must reuse the table and append.
	result, err := Run(ctx, Options{Path: writeFixture(t), Table: "proj.wild.plants", ValidateFeatures: true}, d)
	require.NoError(t, err)
	assert.Equal(t, int64(6), result.TableRowCount)

	jobs := d.FakeWarehouse().Table(d.Ledger().JobsTable())
	require.NotNil(t, jobs)
	assert.Len(t, jobs.Rows, 2)
}

func TestRunInterrupted(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	d := deps.NewMockedDeps()
	d.FakeWarehouse().FailNextLoad(errors.New("transient load failure"))

	result, err := Run(ctx, Options{Path: writeFixture(t), Table: "proj.wild.plants", ValidateFeatures: true}, d)
	require.ErrorContains(t, err, "transient load failure")
	assert.Equal(t, model.JobInterrupted, result.Status)

	// The interrupted run still left a ledger row behind.
	jobs := d.FakeWarehouse().Table(d.Ledger().JobsTable())
	require.NotNil(t, jobs)
	require.Len(t, jobs.Rows, 1)
	assert.Equal(t, "INTERRUPTED", jobs.Rows[0]["status"])
}

func TestRunInvalidOptions(t *testing.T) {
	t.Parallel()
	d := deps.NewMockedDeps()

	_, err := Run(context.Background(), Options{Path: "", Table: "not-a-table"}, d)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required")
	assert.Contains(t, err.Error(), "table_id")
}

func TestRunMissingFile(t *testing.T) {
	t.Parallel()
	d := deps.NewMockedDeps()

	_, err := Run(context.Background(), Options{Path: "/missing/plants.geojsonl", Table: "wild.plants"}, d)
	require.ErrorContains(t, err, `cannot open file "/missing/plants.geojsonl"`)
}

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plants.geojsonl")
	content := `{"type":"Feature","properties":{"id":1,"name":"fir"},"geometry":{"type":"Point","coordinates":[14.42,50.08]}}
{"type":"Feature","properties":{"id":2,"name":"oak"},"geometry":{"type":"Point","coordinates":[14.43,50.09]}}
{"type":"Feature","properties":{"id":3,"name":"pine"},"geometry":{"type":"Point","coordinates":[14.44,50.10]}}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
