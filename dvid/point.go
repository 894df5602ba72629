package dvid

import (
	"fmt"
	"strconv"
	"strings"
)

// PointNd is a slice of N 32-bit signed integers.  Coordinates stay signed
// internally even though negative values are rejected at the accessor
// boundary, so extensions to signed extents don't require a data model change.
type PointNd []int32

// NumDims returns the dimensionality of this point.
func (p PointNd) NumDims() uint8 {
	return uint8(len(p))
}

// Value returns the point's value for the specified dimension without checking dim bounds.
func (p PointNd) Value(dim uint8) int32 {
	return p[dim]
}

// CheckedValue returns the point's value for the specified dimension and checks dim bounds.
func (p PointNd) CheckedValue(dim uint8) (int32, error) {
	if int(dim) >= len(p) {
		return 0, fmt.Errorf("cannot return dimension %d of %d-d point", dim, len(p))
	}
	return p[dim], nil
}

// Duplicate returns a copy of the point without any pointer references.
func (p PointNd) Duplicate() PointNd {
	nd := make(PointNd, len(p))
	copy(nd, p)
	return nd
}

// Add returns the addition of two points.
func (p PointNd) Add(x PointNd) PointNd {
	result := make(PointNd, len(p))
	for i := range p {
		result[i] = p[i] + x[i]
	}
	return result
}

// Sub returns the subtraction of the passed point from the receiver.
func (p PointNd) Sub(x PointNd) PointNd {
	result := make(PointNd, len(p))
	for i := range p {
		result[i] = p[i] - x[i]
	}
	return result
}

// Equals returns true if the two points have identical dimensionality and values.
func (p PointNd) Equals(x PointNd) bool {
	if len(p) != len(x) {
		return false
	}
	for i := range p {
		if p[i] != x[i] {
			return false
		}
	}
	return true
}

// Prod returns the product of the point's components.
func (p PointNd) Prod() int64 {
	product := int64(1)
	for i := range p {
		product *= int64(p[i])
	}
	return product
}

func (p PointNd) String() string {
	text := "("
	for i := range p {
		if i > 0 {
			text += ","
		}
		text += strconv.Itoa(int(p[i]))
	}
	return text + ")"
}

// ToString returns the components joined by the given separator, the form
// used within request paths, e.g., "512_256_128".
func (p PointNd) ToString(separator string) string {
	elems := make([]string, len(p))
	for i := range p {
		elems[i] = strconv.Itoa(int(p[i]))
	}
	return strings.Join(elems, separator)
}

// StringToPointNd parses a string of format "%d<sep>%d<sep>%d,..." into a PointNd.
func StringToPointNd(str, separator string) (nd PointNd, err error) {
	elems := strings.Split(str, separator)
	nd = make(PointNd, len(elems))
	var n int64
	for i, elem := range elems {
		n, err = strconv.ParseInt(elem, 10, 32)
		if err != nil {
			return
		}
		nd[i] = int32(n)
	}
	return
}

// NdFloat32 is an N-dimensional slice of float32, used for per-axis voxel resolution.
type NdFloat32 []float32

// Equals returns true if the two slices hold identical values.
func (n NdFloat32) Equals(x NdFloat32) bool {
	if len(n) != len(x) {
		return false
	}
	for i := range n {
		if n[i] != x[i] {
			return false
		}
	}
	return true
}

// StringToNdFloat32 parses a string of format "%f<sep>%f<sep>%f,..." into a slice of float32.
func StringToNdFloat32(str, separator string) (nd NdFloat32, err error) {
	elems := strings.Split(str, separator)
	nd = make(NdFloat32, len(elems))
	var f float64
	for i, elem := range elems {
		f, err = strconv.ParseFloat(elem, 32)
		if err != nil {
			return
		}
		nd[i] = float32(f)
	}
	return
}

// NdString is an N-dimensional slice of strings, used for per-axis units.
type NdString []string

// StringToNdString parses a separated string into a slice of strings.
func StringToNdString(str, separator string) (nd NdString, err error) {
	return NdString(strings.Split(str, separator)), nil
}
