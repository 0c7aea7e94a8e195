package boundary

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBinarizeThreshold(t *testing.T) {
	prob := []float32{0.1, 0.5, 0.9, 0.2}
	mask := Binarize(prob, 2, 2, 0.3)
	require.Equal(t, []bool{false, true, true, false}, mask)
}

func TestConnectedComponentsSingleBlob(t *testing.T) {
	// 3x3 mask with a single 2x2 blob in the top-left corner.
	mask := []bool{
		true, true, false,
		true, true, false,
		false, false, false,
	}
	comps, labels := ConnectedComponents(mask, 3, 3)
	require.Len(t, comps, 1)
	require.Equal(t, 4, comps[0].Count)
	require.Equal(t, 1, labels[0])
	require.Equal(t, 0, labels[8])
}

func TestConnectedComponentsFourIsolatedCorners(t *testing.T) {
	mask := []bool{
		true, false, true,
		false, false, false,
		true, false, true,
	}
	comps, _ := ConnectedComponents(mask, 3, 3)
	require.Len(t, comps, 4) // each corner is isolated under 4-connectivity
}

func TestTraceSquareReturnsFourCorners(t *testing.T) {
	// 4x4 filled square.
	w, h := 4, 4
	mask := make([]bool, w*h)
	for i := range mask {
		mask[i] = true
	}
	comps, labels := ConnectedComponents(mask, w, h)
	require.Len(t, comps, 1)
	pts := Trace(labels, w, h, 1, comps[0])
	require.Len(t, pts, 4)
}

func TestTraceEmptyLabelReturnsNil(t *testing.T) {
	labels := make([]int, 9)
	pts := Trace(labels, 3, 3, 1, Stats{})
	require.Nil(t, pts)
}
