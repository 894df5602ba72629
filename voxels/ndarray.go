package voxels

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/thatcher/pydvid/dvid"
)

// NDArray is a rectangular, channel-first region of voxel values held as one
// flat buffer.  The layout matches the wire payload: the channel axis varies
// fastest, then each spatial axis in turn, all values little-endian.  A
// decoded response or an outgoing write region is therefore a straight byte
// stream of the buffer.
type NDArray struct {
	dataType dvid.DataType
	shape    dvid.PointNd
	data     []byte
}

// NewNDArray returns a zero-filled array of the given channel-first shape.
func NewNDArray(shape dvid.PointNd, dataType dvid.DataType) *NDArray {
	return &NDArray{
		dataType: dataType,
		shape:    shape.Duplicate(),
		data:     make([]byte, bufferBytes(shape, dataType)),
	}
}

// NDArrayFromBytes wraps an existing buffer without copying.  The buffer
// length must agree with the declared shape and data type.
func NDArrayFromBytes(data []byte, shape dvid.PointNd, dataType dvid.DataType) (*NDArray, error) {
	if int64(len(data)) != bufferBytes(shape, dataType) {
		return nil, encodingErrorf("buffer of %d bytes disagrees with shape %s of %s elements",
			len(data), shape, dataType)
	}
	return &NDArray{dataType: dataType, shape: shape.Duplicate(), data: data}, nil
}

func bufferBytes(shape dvid.PointNd, dataType dvid.DataType) int64 {
	return shape.Prod() * int64(dvid.DataTypeBytes(dataType))
}

// DataType returns the element type of every value in the array.
func (a *NDArray) DataType() dvid.DataType {
	return a.dataType
}

// Shape returns a copy of the channel-first per-axis sizes.
func (a *NDArray) Shape() dvid.PointNd {
	return a.shape.Duplicate()
}

// NumElements returns the total value count, the shape product.
func (a *NDArray) NumElements() int64 {
	return a.shape.Prod()
}

// Data exposes the underlying buffer.  Mutating it mutates the array.
func (a *NDArray) Data() []byte {
	return a.data
}

// Equals returns true for identical shape, data type, and contents.
func (a *NDArray) Equals(b *NDArray) bool {
	return a.dataType == b.dataType && a.shape.Equals(b.shape) && bytes.Equal(a.data, b.data)
}

// offsetOf returns the byte offset of the element at the given channel-first
// coordinate relative to the array origin.
func (a *NDArray) offsetOf(p dvid.PointNd) int64 {
	var index int64
	for dim := len(a.shape) - 1; dim >= 0; dim-- {
		index = index*int64(a.shape[dim]) + int64(p[dim])
	}
	return index * int64(dvid.DataTypeBytes(a.dataType))
}

// Element returns the raw little-endian bytes of one value.
func (a *NDArray) Element(p dvid.PointNd) []byte {
	off := a.offsetOf(p)
	return a.data[off : off+int64(dvid.DataTypeBytes(a.dataType))]
}

// SetUint64 stores an unsigned value at the given coordinate, truncated to
// the array's element width.
func (a *NDArray) SetUint64(p dvid.PointNd, value uint64) {
	elem := a.Element(p)
	var full [8]byte
	binary.LittleEndian.PutUint64(full[:], value)
	copy(elem, full[:len(elem)])
}

// GetUint64 loads an unsigned value from the given coordinate, widening from
// the array's element width.
func (a *NDArray) GetUint64(p dvid.PointNd) uint64 {
	elem := a.Element(p)
	var full [8]byte
	copy(full[:], elem)
	return binary.LittleEndian.Uint64(full[:])
}

// SetFloat32 stores a float32 value; the array must hold float32 elements.
func (a *NDArray) SetFloat32(p dvid.PointNd, value float32) {
	binary.LittleEndian.PutUint32(a.Element(p), math.Float32bits(value))
}

// GetFloat32 loads a float32 value; the array must hold float32 elements.
func (a *NDArray) GetFloat32(p dvid.PointNd) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(a.Element(p)))
}

// collapse drops size-1 axes flagged in drop, reusing the buffer.  Used when
// a single-index slice removes an axis from the result.
func (a *NDArray) collapse(drop []bool) *NDArray {
	shape := make(dvid.PointNd, 0, len(a.shape))
	for i, size := range a.shape {
		if i < len(drop) && drop[i] {
			continue
		}
		shape = append(shape, size)
	}
	return &NDArray{dataType: a.dataType, shape: shape, data: a.data}
}
