package loader

import (
	"fmt"
	"strings"

	"github.com/c2h5oh/datasize"

	"github.com/bluecarto/geoloader/internal/pkg/geo"
	"github.com/bluecarto/geoloader/internal/pkg/model"
)

// RowSizeLimit is the maximum encoded row size the warehouse accepts.
const RowSizeLimit = 100 * datasize.MB

// ValidationError rejects one feature. The feature is quarantined and the
// load continues, the error never fails the job.
type ValidationError struct {
	Row    int
	Reason model.FailReason
	detail string
}

func (e ValidationError) Error() string {
	if e.detail == "" {
		return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
	}
	return fmt.Sprintf("row %d: %s: %s", e.Row, e.Reason, e.detail)
}

// Validator runs the per-feature checks of the bulk path.
type Validator struct {
	limit    datasize.ByteSize
	ordered  []string
	expected map[string]bool
}

// NewValidator builds a validator for one source layer. The expected property
// key set comes from the layer schema, geometry typed properties are excluded,
// geometries travel outside the property map.
func NewValidator(schema *model.Schema) *Validator {
	v := &Validator{limit: RowSizeLimit, expected: make(map[string]bool)}
	for _, name := range schema.PropertyNames() {
		if descriptor, _ := schema.Property(name); model.IsSpatialDescriptor(descriptor) {
			continue
		}
		v.ordered = append(v.ordered, name)
		v.expected[name] = true
	}
	return v
}

// Validate returns a ValidationError when the feature cannot be loaded.
func (v *Validator) Validate(f model.Feature) error {
	if err := v.checkGeometrySize(f); err != nil {
		return err
	}
	return v.checkPropertyKeys(f)
}

func (v *Validator) checkGeometrySize(f model.Feature) error {
	if f.Geometry == nil {
		return nil
	}
	encoded, err := geo.EncodeWKB(f.Geometry)
	if err != nil {
		return err
	}
	if size := datasize.ByteSize(len(encoded)); size > v.limit {
		return ValidationError{
			Row:    f.Index,
			Reason: model.ReasonRowTooLarge,
			detail: fmt.Sprintf("geometry has %s, the limit is %s", size.HumanReadable(), v.limit.HumanReadable()),
		}
	}
	return nil
}

func (v *Validator) checkPropertyKeys(f model.Feature) error {
	var missing, extra []string
	for _, name := range v.ordered {
		if _, found := f.Properties.Get(name); !found {
			missing = append(missing, name)
		}
	}
	for _, name := range f.Properties.Keys() {
		if !v.expected[name] {
			extra = append(extra, name)
		}
	}
	if len(missing) == 0 && len(extra) == 0 {
		return nil
	}

	var parts []string
	if len(missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing properties [%s]", strings.Join(missing, ", ")))
	}
	if len(extra) > 0 {
		parts = append(parts, fmt.Sprintf("unexpected properties [%s]", strings.Join(extra, ", ")))
	}
	return ValidationError{
		Row:    f.Index,
		Reason: model.ReasonSchemaMismatch,
		detail: strings.Join(parts, ", "),
	}
}
