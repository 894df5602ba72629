package voxels

import (
	"bytes"
	"io"

	"github.com/thatcher/pydvid/dvid"
)

// VolumeMimetype is the MIME type of raw voxel payloads.
const VolumeMimetype = "application/octet-stream"

// StreamChunkSize is how many bytes move per read/write against the transfer
// stream.  Chunking keeps the transport boundary streaming instead of
// materializing a second full copy of large volumes.
const StreamChunkSize = 1000 // bytes

// NdDataCodec translates between NDArray regions and the wire's raw packed
// little-endian byte stream for one volume's element type.
type NdDataCodec struct {
	dataType dvid.DataType
}

// NewNdDataCodec returns a codec for the volume described by md.
func NewNdDataCodec(md *Metadata) *NdDataCodec {
	return &NdDataCodec{dataType: md.DataType()}
}

// BufferBytes returns the payload length for a channel-first region shape.
func (c *NdDataCodec) BufferBytes(shape dvid.PointNd) int64 {
	return bufferBytes(shape, c.dataType)
}

// DecodeToNDArray reads exactly the payload for the given channel-first shape
// from the stream.  The length check is strict both ways: a short stream and
// trailing bytes each yield a DecodingError, the usual signature of a
// truncated transfer or a server-side bug on large volumes.
func (c *NdDataCodec) DecodeToNDArray(stream io.Reader, shape dvid.PointNd) (*NDArray, error) {
	array := NewNDArray(shape, c.dataType)
	buf := array.Data()

	remaining := len(buf)
	for remaining > 0 {
		chunk := StreamChunkSize
		if remaining < chunk {
			chunk = remaining
		}
		start := len(buf) - remaining
		n, err := io.ReadFull(stream, buf[start:start+chunk])
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, decodingErrorf("stream ended after %d of %d expected bytes for shape %s",
				start+n, len(buf), shape)
		}
		if err != nil {
			return nil, err
		}
		remaining -= chunk
	}

	// The stream must hold nothing beyond the requested region.
	var probe [1]byte
	if n, _ := stream.Read(probe[:]); n > 0 {
		return nil, decodingErrorf("stream continues past %d expected bytes for shape %s", len(buf), shape)
	}
	return array, nil
}

// EncodeFromNDArray writes the array's payload to the stream in chunks.
func (c *NdDataCodec) EncodeFromNDArray(stream io.Writer, array *NDArray) error {
	buf, err := c.checkedBuffer(array)
	if err != nil {
		return err
	}
	remaining := len(buf)
	for remaining > 0 {
		chunk := StreamChunkSize
		if remaining < chunk {
			chunk = remaining
		}
		start := len(buf) - remaining
		if _, err := stream.Write(buf[start : start+chunk]); err != nil {
			return err
		}
		remaining -= chunk
	}
	return nil
}

// EncodedReader returns a streaming reader over the array's payload, suitable
// as a restartable request body: each call yields a fresh reader positioned
// at the start.
func (c *NdDataCodec) EncodedReader(array *NDArray) (io.ReadCloser, error) {
	buf, err := c.checkedBuffer(array)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(buf)), nil
}

func (c *NdDataCodec) checkedBuffer(array *NDArray) ([]byte, error) {
	if array.DataType() != c.dataType {
		return nil, encodingErrorf("array holds %s elements but codec expects %s",
			array.DataType(), c.dataType)
	}
	buf := array.Data()
	if int64(len(buf)) != bufferBytes(array.shape, c.dataType) {
		return nil, encodingErrorf("array buffer of %d bytes disagrees with shape %s of %s elements",
			len(buf), array.shape, c.dataType)
	}
	return buf, nil
}
