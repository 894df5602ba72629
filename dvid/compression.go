package dvid

import (
	"fmt"
	"io"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4/v4"
)

// Compression is the format of compression applied to voxel payloads in
// transit.  The zero value transfers raw bytes.
type Compression uint8

const (
	Uncompressed Compression = iota
	Snappy
	LZ4
	Gzip
)

func (compress Compression) String() string {
	switch compress {
	case Uncompressed:
		return "No compression"
	case Snappy:
		return "Go Snappy compression"
	case LZ4:
		return "LZ4 compression"
	case Gzip:
		return "gzip compression"
	default:
		return "Unknown compression"
	}
}

// QueryString returns the value used for the "compression" query option of
// voxel requests, empty if no compression is requested.
func (compress Compression) QueryString() string {
	switch compress {
	case Snappy:
		return "snappy"
	case LZ4:
		return "lz4"
	case Gzip:
		return "gzip"
	default:
		return ""
	}
}

// NewCompressionByName returns the Compression for a query-option value.
// The empty string selects Uncompressed.
func NewCompressionByName(name string) (Compression, error) {
	switch name {
	case "":
		return Uncompressed, nil
	case "snappy":
		return Snappy, nil
	case "lz4":
		return LZ4, nil
	case "gzip":
		return Gzip, nil
	default:
		return 0, fmt.Errorf("unknown compression format %q", name)
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// WrapReader layers streaming decompression over a transfer body.  The
// returned reader must be fully consumed before Close.
func (compress Compression) WrapReader(r io.Reader) (io.ReadCloser, error) {
	switch compress {
	case Uncompressed:
		return io.NopCloser(r), nil
	case Snappy:
		return io.NopCloser(snappy.NewReader(r)), nil
	case LZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case Gzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zr, nil
	default:
		return nil, fmt.Errorf("cannot decompress format %q", compress)
	}
}

// WrapWriter layers streaming compression over a transfer body.  Callers must
// Close the returned writer to flush trailing frames.
func (compress Compression) WrapWriter(w io.Writer) (io.WriteCloser, error) {
	switch compress {
	case Uncompressed:
		return nopWriteCloser{w}, nil
	case Snappy:
		return snappy.NewBufferedWriter(w), nil
	case LZ4:
		return lz4.NewWriter(w), nil
	case Gzip:
		return gzip.NewWriter(w), nil
	default:
		return nil, fmt.Errorf("cannot compress format %q", compress)
	}
}
