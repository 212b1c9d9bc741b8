package container

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"

	"github.com/arthur-debert/solidhdf5/pkg/errors"
)

// Array is an n-dimensional numeric array in row-major order
type Array struct {
	Shape []uint64  `json:"shape"`
	Data  []float64 `json:"data"`
}

// NewArray builds an array after checking that data fills shape exactly
func NewArray(shape []uint64, data []float64) (Array, error) {
	a := Array{Shape: shape, Data: data}
	if err := a.Validate(); err != nil {
		return Array{}, err
	}
	return a, nil
}

// Validate checks that the array has a shape and that its element count matches
func (a Array) Validate() error {
	if len(a.Shape) == 0 {
		return errors.New(errors.ErrInvalidInput, "array has no shape")
	}
	n := uint64(1)
	for i, d := range a.Shape {
		if d == 0 {
			return errors.Newf(errors.ErrInvalidInput, "array dimension %d is zero", i)
		}
		hi, lo := bits.Mul64(n, d)
		if hi != 0 {
			return errors.Newf(errors.ErrInvalidInput, "array shape %s is too large", FormatShape(a.Shape))
		}
		n = lo
	}
	if uint64(len(a.Data)) != n {
		return errors.Newf(errors.ErrInvalidInput, "array shape %s needs %d values, got %d",
			FormatShape(a.Shape), n, len(a.Data))
	}
	return nil
}

// Len returns the number of elements
func (a Array) Len() int {
	return len(a.Data)
}

// Rank returns the number of dimensions
func (a Array) Rank() int {
	return len(a.Shape)
}

// Rows splits the array along its last dimension. A 1-D array is one row.
func (a Array) Rows() [][]float64 {
	if len(a.Shape) == 0 || len(a.Data) == 0 {
		return nil
	}
	width := int(a.Shape[len(a.Shape)-1])
	rows := make([][]float64, 0, len(a.Data)/width)
	for i := 0; i+width <= len(a.Data); i += width {
		rows = append(rows, a.Data[i:i+width])
	}
	return rows
}

// Clone returns a deep copy
func (a Array) Clone() Array {
	c := Array{
		Shape: make([]uint64, len(a.Shape)),
		Data:  make([]float64, len(a.Data)),
	}
	copy(c.Shape, a.Shape)
	copy(c.Data, a.Data)
	return c
}

// Equal reports whether both arrays have the same shape and values
func (a Array) Equal(b Array) bool {
	if len(a.Shape) != len(b.Shape) || len(a.Data) != len(b.Data) {
		return false
	}
	for i := range a.Shape {
		if a.Shape[i] != b.Shape[i] {
			return false
		}
	}
	for i := range a.Data {
		if a.Data[i] != b.Data[i] {
			return false
		}
	}
	return true
}

// FormatShape renders a shape as 10x2
func FormatShape(shape []uint64) string {
	if len(shape) == 0 {
		return "scalar"
	}
	s := ""
	for i, d := range shape {
		if i > 0 {
			s += "x"
		}
		s += fmt.Sprintf("%d", d)
	}
	return s
}

// FormatRow joins row values with sep using the shortest exact representation
func FormatRow(row []float64, sep string) string {
	parts := make([]string, len(row))
	for i, v := range row {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, sep)
}
