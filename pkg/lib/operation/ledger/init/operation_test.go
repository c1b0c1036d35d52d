package init

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	deps "github.com/bluecarto/geoloader/internal/pkg/dependencies"
	"github.com/bluecarto/geoloader/internal/pkg/loader"
)

func TestRun(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	d := deps.NewMockedDeps(deps.WithLedgerLocation("restor-gis", "bookkeeping"))

	require.NoError(t, Run(ctx, d))

	assert.Equal(t, []string{"bookkeeping"}, d.FakeWarehouse().Datasets())
	jobs := d.FakeWarehouse().Table(d.Ledger().JobsTable())
	require.NotNil(t, jobs)
	assert.True(t, loader.JobsSchema().Equal(jobs.Schema))
	failures := d.FakeWarehouse().Table(d.Ledger().FailuresTable())
	require.NotNil(t, failures)
	assert.True(t, loader.FailuresSchema().Equal(failures.Schema))

	assert.Contains(t, d.DebugLogger().InfoMessages(), `Job ledger is ready in dataset "bookkeeping".`)
	assert.Contains(t, d.TestTelemetry().SpanNames(), "geoloader.operation.ledger.init")

	// Idempotent, existing tables are kept.
	require.NoError(t, Run(ctx, d))
}
