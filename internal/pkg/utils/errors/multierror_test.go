package errors_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluecarto/geoloader/internal/pkg/utils/errors"
)

func TestMultiError_Empty(t *testing.T) {
	t.Parallel()
	errs := errors.NewMultiError()
	assert.Equal(t, 0, errs.Len())
	require.NoError(t, errs.ErrorOrNil())
}

func TestMultiError_Append(t *testing.T) {
	t.Parallel()
	errs := errors.NewMultiError()
	errs.Append(errors.New("foo"))
	errs.Append(nil)
	errs.Append(errors.New("bar"))
	assert.Equal(t, 2, errs.Len())
	require.Error(t, errs.ErrorOrNil())
	assert.Equal(t, "- foo\n- bar", errs.Error())
}

func TestMultiError_AppendFlattens(t *testing.T) {
	t.Parallel()
	sub := errors.NewMultiError()
	sub.Append(errors.New("one"))
	sub.Append(errors.New("two"))

	errs := errors.NewMultiError()
	errs.Append(errors.New("zero"))
	errs.Append(sub)
	assert.Equal(t, 3, errs.Len())
}

func TestMultiError_SingleErrorWithoutBullet(t *testing.T) {
	t.Parallel()
	errs := errors.NewMultiError()
	errs.Append(errors.New("only one"))
	assert.Equal(t, "only one", errs.Error())
}

func TestMultiError_IsAndAs(t *testing.T) {
	t.Parallel()
	sentinel := errors.New("sentinel")
	errs := errors.NewMultiError()
	errs.Append(errors.New("other"))
	errs.Append(errors.Wrap(sentinel, "wrapped"))
	assert.True(t, errors.Is(errs.ErrorOrNil(), sentinel))
}

func TestPrefixError(t *testing.T) {
	t.Parallel()
	err := errors.PrefixError(errors.New("file not found"), "cannot open source")
	assert.Equal(t, "cannot open source: file not found", err.Error())
}

func TestPrefixErrorf_LongMessageBreaksToList(t *testing.T) {
	t.Parallel()
	err := errors.PrefixErrorf(
		errors.New("the underlying call has failed with a very long explanation"),
		"operation %q failed", "load",
	)
	assert.Equal(t, "operation \"load\" failed:\n- the underlying call has failed with a very long explanation", err.Error())
}

func TestNestedError_Shape(t *testing.T) {
	t.Parallel()
	nested := errors.NewNestedError(errors.New("table check"))
	nested.Append(errors.New("missing column a"))
	nested.Append(errors.New("missing column b"))
	expected := "table check:\n- missing column a\n- missing column b"
	assert.Equal(t, expected, nested.Error())
}

func TestWrap_NilPassthrough(t *testing.T) {
	t.Parallel()
	require.NoError(t, errors.Wrap(nil, "ignored"))
	require.NoError(t, errors.Wrapf(nil, "ignored %d", 1))
	require.NoError(t, errors.WithStack(nil))
}
