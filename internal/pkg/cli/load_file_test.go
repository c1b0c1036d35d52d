package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluecarto/geoloader/internal/pkg/env"
	"github.com/bluecarto/geoloader/internal/pkg/model"
)

func TestLoadFileCommand(t *testing.T) {
	t.Parallel()
	c := newTestRoot(t, env.Empty())

	path := writeGeoJSONL(t)
	exitCode := c.execute(t, `load`, `file`, path, `proj.wild.plants`, `--project`, `proj`)
	assert.Equal(t, 0, exitCode, c.stderr.String())
	assert.Contains(t, c.stdout.String(), `Inserted 3 of 3 features.`)

	ctx := context.Background()

	// The table is created and loaded
	count, err := c.fake.TableRowCount(ctx, model.MustParseTableID(`proj.wild.plants`))
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	// The job is recorded next to the target table
	jobs, err := c.fake.TableRowCount(ctx, model.MustParseTableID(`proj.wild.load_jobs`))
	require.NoError(t, err)
	assert.Equal(t, int64(1), jobs)
}

func TestLoadFileCommandLedgerDatasetFlag(t *testing.T) {
	t.Parallel()
	c := newTestRoot(t, env.Empty())

	path := writeGeoJSONL(t)
	exitCode := c.execute(t, `load`, `file`, path, `proj.wild.plants`, `--project`, `proj`, `--ledger-dataset`, `bookkeeping`)
	assert.Equal(t, 0, exitCode, c.stderr.String())

	jobs, err := c.fake.TableRowCount(context.Background(), model.MustParseTableID(`proj.bookkeeping.load_jobs`))
	require.NoError(t, err)
	assert.Equal(t, int64(1), jobs)
}

func TestLoadFileCommandMissingFile(t *testing.T) {
	t.Parallel()
	c := newTestRoot(t, env.Empty())

	exitCode := c.execute(t, `load`, `file`, `/missing/plants.geojsonl`, `proj.wild.plants`, `--project`, `proj`)
	assert.Equal(t, 1, exitCode)
	assert.Contains(t, c.stderr.String(), `open file "/missing/plants.geojsonl"`)
}

func writeGeoJSONL(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plants.geojsonl")
	content := `{"type":"Feature","geometry":{"type":"Point","coordinates":[8.54,47.37]},"properties":{"id":1,"name":"fir"}}
{"type":"Feature","geometry":{"type":"Point","coordinates":[8.55,47.38]},"properties":{"id":2,"name":"pine"}}
{"type":"Feature","geometry":{"type":"Point","coordinates":[8.56,47.39]},"properties":{"id":3,"name":"oak"}}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
