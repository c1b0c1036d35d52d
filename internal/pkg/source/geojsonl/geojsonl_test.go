package geojsonl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluecarto/geoloader/internal/pkg/log"
	"github.com/bluecarto/geoloader/internal/pkg/model"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "features.geojsonl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const fixture = `{"type":"Feature","properties":{"name":"north","pop":1200,"ratio":1.5,"active":true,"tags":["a","b"]},"geometry":{"type":"Point","coordinates":[1,2]}}
{"type":"Feature","properties":{"name":"south","pop":900,"ratio":0.5,"active":false,"tags":[]},"geometry":{"type":"Point","coordinates":[3,4]}}

`

func TestOpen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	src, err := Open(ctx, log.NewNopLogger(), writeFile(t, fixture))
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, src.Close())
	}()

	assert.Equal(t, "", src.Layer())
	assert.Equal(t, 2, src.Count())
	assert.Equal(t, model.SpatialDataset, src.Classification())
	assert.Equal(t, "Point", src.Schema().Geometry)
	assert.Equal(t, []string{"name", "pop", "ratio", "active", "tags"}, src.Schema().PropertyNames())

	for name, expected := range map[string]string{
		"name":   "str",
		"pop":    "int",
		"ratio":  "float",
		"active": "bool",
		"tags":   "json",
	} {
		descriptor, _ := src.Schema().Property(name)
		assert.Equal(t, expected, descriptor, name)
	}
}

func TestFeatures(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	src, err := Open(ctx, log.NewNopLogger(), writeFile(t, fixture))
	require.NoError(t, err)

	it, err := src.Features(ctx)
	require.NoError(t, err)

	require.True(t, it.Next())
	feature := it.Feature()
	assert.Equal(t, 0, feature.Index)
	assert.Equal(t, orb.Point{1, 2}, feature.Geometry)
	name, _ := feature.Properties.Get("name")
	assert.Equal(t, "north", name)
	pop, _ := feature.Properties.Get("pop")
	assert.Equal(t, float64(1200), pop)

	require.True(t, it.Next())
	assert.Equal(t, 1, it.Feature().Index)

	assert.False(t, it.Next())
	require.NoError(t, it.Err())

	// The iterator is one-shot
	_, err = src.Features(ctx)
	require.Error(t, err)
}

func TestOpen_NonSpatial(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	content := `{"type":"Feature","properties":{"id":1},"geometry":null}` + "\n"
	src, err := Open(ctx, log.NewNopLogger(), writeFile(t, content))
	require.NoError(t, err)

	assert.Equal(t, model.NonSpatialDataset, src.Classification())
	assert.Equal(t, 1, src.Count())

	it, err := src.Features(ctx)
	require.NoError(t, err)
	require.True(t, it.Next())
	assert.Nil(t, it.Feature().Geometry)
}

func TestOpen_MalformedLine(t *testing.T) {
	t.Parallel()

	content := `{"type":"Feature","properties":{"id":1},"geometry":null}` + "\n" + `{not json}` + "\n"
	_, err := Open(context.Background(), log.NewNopLogger(), writeFile(t, content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `malformed feature on line 2`)
}

func TestOpen_Empty(t *testing.T) {
	t.Parallel()

	src, err := Open(context.Background(), log.NewNopLogger(), writeFile(t, ""))
	require.NoError(t, err)
	assert.Equal(t, 0, src.Count())
	assert.Equal(t, model.NonSpatialDataset, src.Classification())
}

func TestDescriptorOf(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "str", descriptorOf("x"))
	assert.Equal(t, "int", descriptorOf(float64(3)))
	assert.Equal(t, "float", descriptorOf(3.5))
	assert.Equal(t, "bool", descriptorOf(true))
	assert.Equal(t, "str", descriptorOf(nil))
	assert.Equal(t, "json", descriptorOf([]any{1}))
}
