package kernel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBufferValidate(t *testing.T) {
	buf := Buffer{Data: make([]float32, 6), Shape: []int{1, 2, 3}}
	require.NoError(t, buf.Validate())
}

func TestBufferValidateMismatch(t *testing.T) {
	buf := Buffer{Data: make([]float32, 5), Shape: []int{1, 2, 3}}
	require.Error(t, buf.Validate())
}

func TestBufferValidateNonPositiveDimension(t *testing.T) {
	buf := Buffer{Data: nil, Shape: []int{1, 0, 3}}
	require.Error(t, buf.Validate())
}

func TestWrapInferenceErrorNilPassthrough(t *testing.T) {
	require.NoError(t, WrapInferenceError("op", nil))
}
