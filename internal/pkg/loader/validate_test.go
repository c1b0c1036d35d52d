package loader

import (
	"testing"

	"github.com/c2h5oh/datasize"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluecarto/geoloader/internal/pkg/model"
)

func TestValidateValidFeature(t *testing.T) {
	t.Parallel()
	v := NewValidator(testLayerSchema())

	f := model.NewFeature(0)
	f.Properties.Set("name", "Alnus glutinosa")
	f.Properties.Set("area", 12.5)
	f.Geometry = orb.Point{14.4, 50.1}
	assert.NoError(t, v.Validate(f))
}

func TestValidateGeometryTypedPropertyExcluded(t *testing.T) {
	t.Parallel()

	// A database layer carries the geometry as a column, the key check
	// must not expect it among the feature properties.
	schema := model.NewSchema()
	schema.SetProperty("id", "integer")
	schema.SetProperty("geom", "geometry")
	v := NewValidator(schema)

	f := model.NewFeature(0)
	f.Properties.Set("id", int64(1))
	f.Geometry = orb.Point{1, 2}
	assert.NoError(t, v.Validate(f))
}

func TestValidateOversizedGeometry(t *testing.T) {
	t.Parallel()
	v := NewValidator(testLayerSchema())
	v.limit = 16 * datasize.B

	f := model.NewFeature(7)
	f.Properties.Set("name", "x")
	f.Properties.Set("area", 1.0)
	f.Geometry = orb.LineString{{0, 0}, {10, 20}, {30, 40}}

	err := v.Validate(f)
	require.Error(t, err)

	var validationErr ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, model.ReasonRowTooLarge, validationErr.Reason)
	assert.Equal(t, 7, validationErr.Row)
	assert.Contains(t, err.Error(), "row 7: ROW_EXCEEDS_SIZE_LIMIT")
}

func TestValidateMissingAndExtraKeys(t *testing.T) {
	t.Parallel()
	v := NewValidator(testLayerSchema())

	f := model.NewFeature(3)
	f.Properties.Set("name", "x")
	f.Properties.Set("color", "green")

	err := v.Validate(f)
	require.Error(t, err)

	var validationErr ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, model.ReasonSchemaMismatch, validationErr.Reason)
	assert.Equal(t, 3, validationErr.Row)
	assert.Equal(t, `row 3: SCHEMAS_DONT_MATCH: missing properties [area], unexpected properties [color]`, err.Error())
}

func TestValidateNonSpatialFeature(t *testing.T) {
	t.Parallel()
	v := NewValidator(testLayerSchema())

	// No geometry, the size check is not applicable.
	f := model.NewFeature(0)
	f.Properties.Set("name", "x")
	f.Properties.Set("area", 2.0)
	assert.NoError(t, v.Validate(f))
}

func testLayerSchema() *model.Schema {
	schema := model.NewSchema()
	schema.Geometry = "Point"
	schema.SetProperty("name", "str:80")
	schema.SetProperty("area", "float:24.15")
	return schema
}
