/*
	Package voxels lets a caller treat a remote, versioned, multi-dimensional
	voxel volume as a sliceable, multi-channel array.  It maps channel-first
	array indexing onto the server's channel-excluded wire convention, streams
	the raw binary voxel payloads, and retries exchanges the server rejects
	while busy.
*/
package voxels

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/thatcher/pydvid/dvid"
)

// ChannelAxisKey is the axis label this client always places first.  The
// server does not treat the channel axis as spatial; it is folded into the
// per-voxel values instead.
const ChannelAxisKey = 'c'

// Metadata is the immutable shape contract for one remote volume: axis order,
// per-axis extents, element data type, channel count, and voxel resolution.
// Once constructed it is never edited in place; updates construct a new
// instance and re-push it (see Accessor.PushMetadata).
type Metadata struct {
	axisKeys   string          // channel-first, e.g. "cxyz"
	shape      dvid.PointNd    // channel-first sizes
	minIndex   dvid.PointNd    // channel entry always 0
	values     dvid.DataValues // one per channel, shared data type
	dataType   dvid.DataType
	resolution dvid.NdFloat32 // per spatial axis
	units      dvid.NdString  // per spatial axis
}

// NewMetadata is the default-metadata factory for a volume that doesn't exist
// on the server yet.  The shape is channel-first, so shape[0] is the channel
// count, and the minimum index starts at zero on every axis.
func NewMetadata(shape dvid.PointNd, dataType dvid.DataType, axisKeys string, resolution dvid.NdFloat32, units dvid.NdString) (*Metadata, error) {
	if len(shape) != len(axisKeys) {
		return nil, validationErrorf("shape has %d axes but axiskeys %q has %d", len(shape), axisKeys, len(axisKeys))
	}
	if len(axisKeys) < 2 {
		return nil, validationErrorf("axiskeys %q must have a channel axis and at least one spatial axis", axisKeys)
	}
	if axisKeys[0] != ChannelAxisKey {
		return nil, validationErrorf("channel axis %q must be first in axiskeys %q", ChannelAxisKey, axisKeys)
	}
	for i := 0; i < len(axisKeys); i++ {
		if strings.Count(axisKeys, string(axisKeys[i])) > 1 {
			return nil, validationErrorf("duplicate axis key %q in %q", axisKeys[i], axisKeys)
		}
	}
	for i, size := range shape {
		if size < 0 {
			return nil, validationErrorf("shape entry %d for axis %q is negative", size, axisKeys[i])
		}
	}
	if _, found := dvid.DataTypeByName(dataType.String()); !found {
		return nil, validationErrorf("unsupported data type")
	}
	numSpatial := len(axisKeys) - 1
	if len(resolution) != numSpatial {
		return nil, validationErrorf("resolution has %d entries for %d spatial axes", len(resolution), numSpatial)
	}
	for i, res := range resolution {
		if res <= 0 {
			return nil, validationErrorf("resolution %f for axis %q is not positive", res, axisKeys[i+1])
		}
	}
	if len(units) == 0 {
		units = make(dvid.NdString, numSpatial)
		for i := range units {
			units[i] = DefaultUnits
		}
	}
	if len(units) != numSpatial {
		return nil, validationErrorf("units has %d entries for %d spatial axes", len(units), numSpatial)
	}
	return &Metadata{
		axisKeys:   axisKeys,
		shape:      shape.Duplicate(),
		minIndex:   make(dvid.PointNd, len(shape)),
		values:     dvid.UniformValues(dataType, shape[0]),
		dataType:   dataType,
		resolution: append(dvid.NdFloat32(nil), resolution...),
		units:      append(dvid.NdString(nil), units...),
	}, nil
}

// DefaultUnits is used when a caller gives no per-axis units.
const DefaultUnits = "nanometers"

// The nd metadata document, as served at
// GET /api/node/<uuid>/<name>/metadata with MIME type NdDataMimetype.
type ndMetadata struct {
	Axes   []axisT
	Values dvid.DataValues
}

type axisT struct {
	Label      string
	Resolution float32
	Units      string
	Size       int32
	Offset     int32
}

// NdDataMimetype is the MIME type of nd metadata documents.
const NdDataMimetype = "application/vnd.dvid-nd-data+json"

// ParseMetadata constructs Metadata from a server-returned nd metadata
// document.  The document is schema-validated before any field is used, so a
// malformed or truncated document yields a SchemaError rather than a partial
// Metadata.
func ParseMetadata(doc []byte) (*Metadata, error) {
	if err := validateMetadataDocument(doc); err != nil {
		return nil, err
	}
	var parsed ndMetadata
	if err := json.Unmarshal(doc, &parsed); err != nil {
		return nil, schemaErrorf("%v", err)
	}

	dataType, err := parsed.Values.ValueDataType()
	if err != nil {
		return nil, schemaErrorf("%v", err)
	}

	numAxes := len(parsed.Axes) + 1
	md := &Metadata{
		shape:      make(dvid.PointNd, numAxes),
		minIndex:   make(dvid.PointNd, numAxes),
		values:     parsed.Values,
		dataType:   dataType,
		resolution: make(dvid.NdFloat32, len(parsed.Axes)),
		units:      make(dvid.NdString, len(parsed.Axes)),
	}
	md.shape[0] = parsed.Values.ValuesPerElement()
	axisKeys := string(ChannelAxisKey)
	for i, axis := range parsed.Axes {
		key := strings.ToLower(axis.Label)
		if len(key) != 1 {
			return nil, schemaErrorf("axis label %q is not a single character", axis.Label)
		}
		if strings.Contains(axisKeys, key) {
			return nil, schemaErrorf("duplicate axis label %q", axis.Label)
		}
		axisKeys += key
		md.shape[i+1] = axis.Size
		md.minIndex[i+1] = axis.Offset
		md.resolution[i] = axis.Resolution
		md.units[i] = axis.Units
	}
	md.axisKeys = axisKeys
	return md, nil
}

// ToJSON serializes the nd metadata document the server expects when this
// volume is created, the inverse of ParseMetadata for the fields it defines.
func (md *Metadata) ToJSON() ([]byte, error) {
	doc := ndMetadata{
		Axes:   make([]axisT, len(md.axisKeys)-1),
		Values: md.values,
	}
	for i := range doc.Axes {
		doc.Axes[i] = axisT{
			Label:      strings.ToUpper(string(md.axisKeys[i+1])),
			Resolution: md.resolution[i],
			Units:      string(md.units[i]),
			Size:       md.shape[i+1],
			Offset:     md.minIndex[i+1],
		}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return bytes.TrimSpace(buf.Bytes()), nil
}

// AxisKeys returns the channel-first axis labels, e.g. "cxyz".
func (md *Metadata) AxisKeys() string {
	return md.axisKeys
}

// NumAxes returns the number of axes including the channel axis.
func (md *Metadata) NumAxes() int {
	return len(md.axisKeys)
}

// Shape returns a copy of the channel-first per-axis sizes.
func (md *Metadata) Shape() dvid.PointNd {
	return md.shape.Duplicate()
}

// MinIndex returns a copy of the channel-first lower bounds of addressable
// data.  The channel entry is always 0.
func (md *Metadata) MinIndex() dvid.PointNd {
	return md.minIndex.Duplicate()
}

// NumChannels returns the size of the leading channel axis.
func (md *Metadata) NumChannels() int32 {
	return md.shape[0]
}

// DataType returns the element type shared by all channels.
func (md *Metadata) DataType() dvid.DataType {
	return md.dataType
}

// Values returns a copy of the per-channel value descriptions.
func (md *Metadata) Values() dvid.DataValues {
	values := make(dvid.DataValues, len(md.values))
	copy(values, md.values)
	return values
}

// Resolution returns a copy of the per-spatial-axis voxel size.
func (md *Metadata) Resolution() dvid.NdFloat32 {
	return append(dvid.NdFloat32(nil), md.resolution...)
}

// Units returns a copy of the per-spatial-axis resolution units.
func (md *Metadata) Units() dvid.NdString {
	return append(dvid.NdString(nil), md.units...)
}

// TypeName maps this metadata onto the name of a server-side voxels datatype,
// e.g., one uint8 channel is served by "uint8blk" and four uint8 channels by
// "rgba8blk".  Volume creation needs this; reads and writes do not.
func (md *Metadata) TypeName() (string, error) {
	numChannels := md.NumChannels()
	switch {
	case md.dataType == dvid.T_uint8 && numChannels == 1:
		return "uint8blk", nil
	case md.dataType == dvid.T_uint8 && numChannels == 4:
		return "rgba8blk", nil
	case md.dataType == dvid.T_uint16 && numChannels == 1:
		return "uint16blk", nil
	case md.dataType == dvid.T_uint32 && numChannels == 1:
		return "uint32blk", nil
	case md.dataType == dvid.T_uint64 && numChannels == 1:
		return "uint64blk", nil
	case md.dataType == dvid.T_float32 && numChannels == 1:
		return "float32blk", nil
	default:
		return "", validationErrorf("no server datatype serves %d channels of %s", numChannels, md.dataType)
	}
}
