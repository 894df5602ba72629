package voxels

import (
	"fmt"

	"github.com/thatcher/pydvid/dvid"
)

// ValidationError means caller-supplied metadata fields are malformed or
// self-inconsistent.  Never retried, never sent to the server.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid voxels metadata: " + e.Reason
}

func validationErrorf(format string, args ...interface{}) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// SchemaError means a server-returned metadata document is missing required
// fields or carries malformed ones.
type SchemaError struct {
	Reason string
}

func (e *SchemaError) Error() string {
	return "bad metadata document: " + e.Reason
}

func schemaErrorf(format string, args ...interface{}) error {
	return &SchemaError{Reason: fmt.Sprintf(format, args...)}
}

// RangeError means caller-supplied bounds violate the volume's extents or the
// wire protocol's constraints.  Raised before any network call.
type RangeError struct {
	Reason string
}

func (e *RangeError) Error() string {
	return "bad voxel range: " + e.Reason
}

func rangeErrorf(format string, args ...interface{}) error {
	return &RangeError{Reason: fmt.Sprintf(format, args...)}
}

// ShapeMismatchError means a write was given a region whose shape does not
// equal the resolved bounds.  Raised before any network call.
type ShapeMismatchError struct {
	Expected dvid.PointNd
	Got      dvid.PointNd
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("region shape %s does not match resolved bounds %s", e.Got, e.Expected)
}

// EncodingError means an outgoing region's element count disagrees with its
// declared shape or data type.
type EncodingError struct {
	Reason string
}

func (e *EncodingError) Error() string {
	return "cannot encode voxel data: " + e.Reason
}

func encodingErrorf(format string, args ...interface{}) error {
	return &EncodingError{Reason: fmt.Sprintf(format, args...)}
}

// DecodingError means an incoming byte stream disagrees with the expected
// element count, which is evidence of a protocol or server bug.  Never
// retried.
type DecodingError struct {
	Reason string
}

func (e *DecodingError) Error() string {
	return "cannot decode voxel data: " + e.Reason
}

func decodingErrorf(format string, args ...interface{}) error {
	return &DecodingError{Reason: fmt.Sprintf(format, args...)}
}
