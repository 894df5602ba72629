/*
   This file handles layout of data for a voxel element, e.g., the number and
   type of values stored per voxel, and how those values appear in metadata
   documents exchanged with a remote volume server.
*/

package dvid

import (
	"encoding/json"
	"fmt"
)

// DataType is a unique ID for each primitive element type held by a voxel
// value, e.g., a uint8 or a float32.
type DataType uint8

const (
	T_uint8 DataType = iota
	T_int8
	T_uint16
	T_int16
	T_uint32
	T_int32
	T_uint64
	T_int64
	T_float32
	T_float64
)

var typeBytes = map[DataType]int32{
	T_uint8:   1,
	T_int8:    1,
	T_uint16:  2,
	T_int16:   2,
	T_uint32:  4,
	T_int32:   4,
	T_uint64:  8,
	T_int64:   8,
	T_float32: 4,
	T_float64: 8,
}

var typeNames = map[DataType]string{
	T_uint8:   "uint8",
	T_int8:    "int8",
	T_uint16:  "uint16",
	T_int16:   "int16",
	T_uint32:  "uint32",
	T_int32:   "int32",
	T_uint64:  "uint64",
	T_int64:   "int64",
	T_float32: "float32",
	T_float64: "float64",
}

// DataTypeBytes returns the # of bytes for a given data type.
// For example, "uint16" is 2 bytes.  No error checking is performed
// to make sure the type is valid.
func DataTypeBytes(t DataType) int32 {
	return typeBytes[t]
}

// String returns the wire name of a data type, e.g., "float32".
func (t DataType) String() string {
	return typeNames[t]
}

// DataTypeByName returns the DataType for a wire name like "uint8".
// The second return value is false if the name is not a supported type.
func DataTypeByName(name string) (DataType, bool) {
	for t, n := range typeNames {
		if n == name {
			return t, true
		}
	}
	return 0, false
}

// DataValue describes the data type and label for each value within an element.
// Terminology: An "element" is some grouping, e.g., data associated with a voxel.
// A "value" is one component of the data for an element, so a multi-channel
// volume has one DataValue per channel.
type DataValue struct {
	T     DataType
	Label string
}

// ValueBytes returns the number of bytes for this value
func (dv DataValue) ValueBytes() int32 {
	return typeBytes[dv.T]
}

// MarshalJSON implements the json.Marshaler interface.
func (dv DataValue) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf(`{"DataType":%q,"Label":%q}`, typeNames[dv.T], dv.Label)), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (dv *DataValue) UnmarshalJSON(b []byte) error {
	var m struct {
		DataType string
		Label    string
	}
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	dataType, found := DataTypeByName(m.DataType)
	if !found {
		return fmt.Errorf("unsupported data type %q", m.DataType)
	}
	dv.T = dataType
	dv.Label = m.Label
	return nil
}

// DataValues describes the interleaved values within an element.
type DataValues []DataValue

func (values DataValues) ValuesPerElement() int32 {
	return int32(len(values))
}

func (values DataValues) BytesPerElement() int32 {
	var bytes int32
	for _, dataValue := range values {
		bytes += typeBytes[dataValue.T]
	}
	return bytes
}

// ValueDataType returns the dvid.DataType used for all values in
// an element.  If the data types vary, e.g., an int32 then a float32,
// this function will return an error.
func (values DataValues) ValueDataType() (DataType, error) {
	if len(values) == 0 {
		return 0, fmt.Errorf("ValueDataType() called on empty DataValues")
	}
	dataType := values[0].T
	for i := 1; i < len(values); i++ {
		if values[i].T != dataType {
			return 0, fmt.Errorf("data format %s has varying value data types within an element", values)
		}
	}
	return dataType, nil
}

// BytesPerValue returns the # bytes for each value of an element if
// all values have equal size.  An error is returned if values are varying
// sizes for an element.
func (values DataValues) BytesPerValue() (int32, error) {
	if len(values) == 0 {
		return 0, fmt.Errorf("BytesPerValue() called on empty DataValues")
	}
	bytesPerValue := typeBytes[values[0].T]
	for i := 1; i < len(values); i++ {
		if bytesPerValue != typeBytes[values[i].T] {
			return 0, fmt.Errorf("BytesPerValue() called on DataValues with varying bytes/value")
		}
	}
	return bytesPerValue, nil
}

// ValueBytes returns the size of the nth value in an element.
func (values DataValues) ValueBytes(n int) int32 {
	if n < 0 || n >= len(values) {
		return 0
	}
	return typeBytes[values[n].T]
}

// UniformValues returns DataValues for n channels that share one data type,
// labeled "channel0", "channel1", etc.
func UniformValues(t DataType, n int32) DataValues {
	values := make(DataValues, n)
	for i := int32(0); i < n; i++ {
		values[i] = DataValue{T: t, Label: fmt.Sprintf("channel%d", i)}
	}
	return values
}
