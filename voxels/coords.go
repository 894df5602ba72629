package voxels

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/thatcher/pydvid/dvid"
)

// WireRange is the wire protocol's view of a bounded region request: spatial
// offset and size in server axis order, with the channel axis folded into a
// contiguous values range instead of a spatial dimension.
type WireRange struct {
	// Offset and Size are per spatial axis, channel excluded.
	Offset dvid.PointNd
	Size   dvid.PointNd

	// ChannelBeg and ChannelEnd bound the half-open values range.
	ChannelBeg int32
	ChannelEnd int32
}

// ToWire converts a channel-first (beg, end) half-open bounded region into
// the wire representation, validating against the volume's extents.  This is
// the one place the two coordinate conventions are reconciled; call sites
// never reorder axes themselves.
func ToWire(beg, end dvid.PointNd, md *Metadata) (*WireRange, error) {
	numAxes := md.NumAxes()
	if len(beg) != numAxes || len(end) != numAxes {
		return nil, rangeErrorf("bounds must have %d axes (%q), got %d and %d",
			numAxes, md.AxisKeys(), len(beg), len(end))
	}
	for i := 0; i < numAxes; i++ {
		if beg[i] > end[i] {
			return nil, rangeErrorf("start %d exceeds stop %d on axis %q", beg[i], end[i], md.axisKeys[i])
		}
	}
	if beg[0] < 0 || end[0] > md.NumChannels() {
		return nil, rangeErrorf("channel range [%d,%d) outside volume's %d channels",
			beg[0], end[0], md.NumChannels())
	}
	for i := 1; i < numAxes; i++ {
		if beg[i] < md.minIndex[i] || end[i] > md.shape[i] {
			return nil, rangeErrorf("axis %q range [%d,%d) outside volume extents [%d,%d)",
				md.axisKeys[i], beg[i], end[i], md.minIndex[i], md.shape[i])
		}
	}
	w := &WireRange{
		Offset:     make(dvid.PointNd, numAxes-1),
		Size:       make(dvid.PointNd, numAxes-1),
		ChannelBeg: beg[0],
		ChannelEnd: end[0],
	}
	for i := 1; i < numAxes; i++ {
		w.Offset[i-1] = beg[i]
		w.Size[i-1] = end[i] - beg[i]
	}
	return w, nil
}

// FromWire is the inverse of ToWire: it reconstitutes the channel-first
// (beg, end) bounds.  Used to check that a decoded response matches the
// originally requested region.
func FromWire(w *WireRange, md *Metadata) (beg, end dvid.PointNd, err error) {
	if len(w.Offset) != len(w.Size) {
		return nil, nil, rangeErrorf("wire offset has %d axes but size has %d", len(w.Offset), len(w.Size))
	}
	if len(w.Offset) != md.NumAxes()-1 {
		return nil, nil, rangeErrorf("wire range has %d spatial axes for volume %q", len(w.Offset), md.AxisKeys())
	}
	if w.ChannelBeg > w.ChannelEnd {
		return nil, nil, rangeErrorf("wire channel range [%d,%d) is reversed", w.ChannelBeg, w.ChannelEnd)
	}
	numAxes := md.NumAxes()
	beg = make(dvid.PointNd, numAxes)
	end = make(dvid.PointNd, numAxes)
	beg[0] = w.ChannelBeg
	end[0] = w.ChannelEnd
	for i := 1; i < numAxes; i++ {
		beg[i] = w.Offset[i-1]
		end[i] = w.Offset[i-1] + w.Size[i-1]
	}
	return beg, end, nil
}

// RequestShape returns the channel-first shape of the region this wire range
// describes.
func (w *WireRange) RequestShape() dvid.PointNd {
	shape := make(dvid.PointNd, len(w.Size)+1)
	shape[0] = w.ChannelEnd - w.ChannelBeg
	copy(shape[1:], w.Size)
	return shape
}

// IsEmpty is true when the region covers no voxels, in which case no request
// should ever be sent: a zero-length range is malformed on the wire.
func (w *WireRange) IsEmpty() bool {
	if w.ChannelEnd == w.ChannelBeg {
		return true
	}
	for _, size := range w.Size {
		if size == 0 {
			return true
		}
	}
	return false
}

// DimsString lists the spatial axis indices for the request path, e.g.,
// "0_1_2" for a 3d volume.
func (w *WireRange) DimsString() string {
	dims := make([]string, len(w.Size))
	for i := range dims {
		dims[i] = strconv.Itoa(i)
	}
	return strings.Join(dims, "_")
}

// ChannelsString gives the half-open values range for the request's query
// options, e.g., "0_4".
func (w *WireRange) ChannelsString() string {
	return fmt.Sprintf("%d_%d", w.ChannelBeg, w.ChannelEnd)
}

// RawPath builds the request path for a bounded voxel read or write:
// /api/node/<uuid>/<name>/raw/<dims>/<size>/<offset>.
func (w *WireRange) RawPath(uuid dvid.UUID, name dvid.InstanceName) string {
	return fmt.Sprintf("/api/node/%s/%s/raw/%s/%s/%s",
		uuid, name, w.DimsString(), w.Size.ToString("_"), w.Offset.ToString("_"))
}
