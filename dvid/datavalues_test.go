package dvid

import (
	"encoding/json"
	_ "testing"

	. "github.com/janelia-flyem/go/gocheck"
)

type DatavalueSuite struct {
	values, mixed DataValues
}

var _ = Suite(&DatavalueSuite{})

func (s *DatavalueSuite) SetUpSuite(c *C) {
	s.values = DataValues{
		{
			T:     T_uint16,
			Label: "channel0",
		},
		{
			T:     T_uint16,
			Label: "channel1",
		},
		{
			T:     T_uint16,
			Label: "channel2",
		},
	}
	s.mixed = DataValues{
		{
			T:     T_uint8,
			Label: "some uint8",
		},
		{
			T:     T_float32,
			Label: "one float32",
		},
	}
}

func (s *DatavalueSuite) TestElementSizes(c *C) {
	c.Assert(s.values.ValuesPerElement(), Equals, int32(3))
	c.Assert(s.values.BytesPerElement(), Equals, int32(6))

	bytesPerValue, err := s.values.BytesPerValue()
	c.Assert(err, IsNil)
	c.Assert(bytesPerValue, Equals, int32(2))

	_, err = s.mixed.BytesPerValue()
	c.Assert(err, NotNil)

	c.Assert(s.mixed.BytesPerElement(), Equals, int32(5))
	c.Assert(s.mixed.ValueBytes(1), Equals, int32(4))
	c.Assert(s.mixed.ValueBytes(17), Equals, int32(0))
}

func (s *DatavalueSuite) TestValueDataType(c *C) {
	dataType, err := s.values.ValueDataType()
	c.Assert(err, IsNil)
	c.Assert(dataType, Equals, T_uint16)

	_, err = s.mixed.ValueDataType()
	c.Assert(err, NotNil)

	_, err = DataValues{}.ValueDataType()
	c.Assert(err, NotNil)
}

func (s *DatavalueSuite) TestJSON(c *C) {
	b, err := json.Marshal(s.values)
	c.Assert(err, IsNil)

	var parsed DataValues
	err = json.Unmarshal(b, &parsed)
	c.Assert(err, IsNil)
	c.Assert(parsed, DeepEquals, s.values)

	err = json.Unmarshal([]byte(`[{"DataType":"uint9","Label":"bad"}]`), &parsed)
	c.Assert(err, NotNil)
}

func (s *DatavalueSuite) TestTypeNames(c *C) {
	for _, name := range []string{"uint8", "int8", "uint16", "int16", "uint32",
		"int32", "uint64", "int64", "float32", "float64"} {
		dataType, found := DataTypeByName(name)
		c.Assert(found, Equals, true)
		c.Assert(dataType.String(), Equals, name)
	}
	_, found := DataTypeByName("complex64")
	c.Assert(found, Equals, false)

	c.Assert(DataTypeBytes(T_uint64), Equals, int32(8))
	c.Assert(DataTypeBytes(T_float32), Equals, int32(4))
}

func (s *DatavalueSuite) TestUniformValues(c *C) {
	values := UniformValues(T_uint8, 4)
	c.Assert(values.ValuesPerElement(), Equals, int32(4))
	c.Assert(values[0].Label, Equals, "channel0")
	c.Assert(values[3].Label, Equals, "channel3")
	dataType, err := values.ValueDataType()
	c.Assert(err, IsNil)
	c.Assert(dataType, Equals, T_uint8)
}
