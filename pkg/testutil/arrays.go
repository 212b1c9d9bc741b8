package testutil

import (
	"testing"

	"github.com/arthur-debert/solidhdf5/pkg/container"
)

// Sequence returns a rows x cols array counting up from offset in steps of 0.1
func Sequence(rows, cols int, offset float64) container.Array {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = offset + float64(i)/10
	}
	return container.Array{Shape: []uint64{uint64(rows), uint64(cols)}, Data: data}
}

// MustArray builds a validated array, failing the test otherwise
func MustArray(t *testing.T, shape []uint64, data []float64) container.Array {
	t.Helper()

	arr, err := container.NewArray(shape, data)
	if err != nil {
		t.Fatalf("Invalid array %v: %v", shape, err)
	}
	return arr
}
