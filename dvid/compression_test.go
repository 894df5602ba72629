package dvid

import (
	"bytes"
	"io"
	"math/rand"
	_ "testing"

	. "github.com/janelia-flyem/go/gocheck"
)

type CompressionSuite struct {
	data []byte
}

var _ = Suite(&CompressionSuite{})

func (s *CompressionSuite) SetUpSuite(c *C) {
	src := rand.NewSource(37)
	rnd := rand.New(src)
	s.data = make([]byte, 17*Kilo)
	for i := range s.data {
		// Limited alphabet so the compressors have something to chew on.
		s.data[i] = byte(rnd.Intn(13))
	}
}

func (s *CompressionSuite) roundTrip(c *C, compress Compression) {
	var transfer bytes.Buffer
	w, err := compress.WrapWriter(&transfer)
	c.Assert(err, IsNil)
	_, err = w.Write(s.data)
	c.Assert(err, IsNil)
	c.Assert(w.Close(), IsNil)

	r, err := compress.WrapReader(&transfer)
	c.Assert(err, IsNil)
	received, err := io.ReadAll(r)
	c.Assert(err, IsNil)
	c.Assert(r.Close(), IsNil)
	c.Assert(received, DeepEquals, s.data)
}

func (s *CompressionSuite) TestRoundTrip(c *C) {
	for _, compress := range []Compression{Uncompressed, Snappy, LZ4, Gzip} {
		s.roundTrip(c, compress)
	}
}

func (s *CompressionSuite) TestQueryStrings(c *C) {
	for _, compress := range []Compression{Uncompressed, Snappy, LZ4, Gzip} {
		parsed, err := NewCompressionByName(compress.QueryString())
		c.Assert(err, IsNil)
		c.Assert(parsed, Equals, compress)
	}
	_, err := NewCompressionByName("jpeg")
	c.Assert(err, NotNil)
}
