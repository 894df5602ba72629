package voxels

import (
	"github.com/thatcher/pydvid/dvid"
)

// Slice selects a range along one axis of a volume.  Only unit steps exist;
// strided access is unsupported by the wire protocol.
type Slice struct {
	beg, end int32
	full     bool
	single   bool
}

// Span selects the half-open range [beg, end) along an axis.
func Span(beg, end int32) Slice {
	return Slice{beg: beg, end: end}
}

// All selects the whole addressable extent of an axis.
func All() Slice {
	return Slice{full: true}
}

// At selects a single index.  On reads the axis is collapsed out of the
// result's shape; on writes it behaves as a span of extent one.
func At(i int32) Slice {
	return Slice{beg: i, end: i + 1, single: true}
}

// resolveSlices turns a per-axis slice expression into channel-first bounds
// against the volume's extents, reporting which axes a single index collapses.
func resolveSlices(slices []Slice, md *Metadata) (beg, end dvid.PointNd, collapse []bool, err error) {
	numAxes := md.NumAxes()
	if len(slices) != numAxes {
		return nil, nil, nil, rangeErrorf("slice expression has %d axes but volume %q has %d",
			len(slices), md.AxisKeys(), numAxes)
	}
	beg = make(dvid.PointNd, numAxes)
	end = make(dvid.PointNd, numAxes)
	collapse = make([]bool, numAxes)
	for i, s := range slices {
		switch {
		case s.full:
			beg[i] = md.minIndex[i]
			end[i] = md.shape[i]
		default:
			beg[i] = s.beg
			end[i] = s.end
			collapse[i] = s.single
		}
	}
	return beg, end, collapse, nil
}
