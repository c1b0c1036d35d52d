package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluecarto/geoloader/internal/pkg/log"
)

func TestOpen_ByExtension(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	logger := log.NewNopLogger()

	path := filepath.Join(t.TempDir(), "data.ndjson")
	content := `{"type":"Feature","properties":{"id":1},"geometry":null}` + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	src, err := Open(ctx, logger, path, "")
	require.NoError(t, err)
	assert.Equal(t, 1, src.Count())
	assert.NoError(t, src.Close())
}

func TestOpen_UnknownExtension(t *testing.T) {
	t.Parallel()
	_, err := Open(context.Background(), log.NewNopLogger(), "/data/zones.csv", "")
	require.Error(t, err)
	assert.Equal(t, `unsupported source "/data/zones.csv": unknown extension ".csv"`, err.Error())
}
