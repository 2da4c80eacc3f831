package flowlog

import (
	"errors"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	d := NewDecoder(DefaultMapping())

	line := "2 123456789012 eni-0a1b2c3d 10.0.1.201 198.51.100.2 443 49153 6 25 20000 1620140761 1620140821 ACCEPT OK"
	record, err := d.Decode(line)
	require.NoError(t, err)

	assert.Equal(t, 2, record.Version)
	assert.Equal(t, "123456789012", record.AccountID)
	assert.Equal(t, "eni-0a1b2c3d", record.InterfaceID)
	assert.Equal(t, net.ParseIP("10.0.1.201"), record.SrcAddr)
	assert.Equal(t, net.ParseIP("198.51.100.2"), record.DstAddr)
	assert.Equal(t, uint16(443), record.DstPort)
	assert.Equal(t, uint16(49153), record.SrcPort)
	assert.Equal(t, "tcp", record.Protocol)
	assert.Equal(t, uint8(6), record.ProtoNumber)
	assert.Equal(t, uint64(25), record.Packets)
	assert.Equal(t, uint64(20000), record.Bytes)
	assert.Equal(t, int64(1620140761), record.TimeStart)
	assert.Equal(t, int64(1620140821), record.TimeEnd)
	assert.Equal(t, "ACCEPT", record.Action)
	assert.Equal(t, "OK", record.LogStatus)
}

func TestDecodeRejects(t *testing.T) {
	d := NewDecoder(DefaultMapping())

	tests := []struct {
		name   string
		line   string
		reason string
	}{
		{
			"too few fields",
			"2 123456789012 eni-0a1b2c3d 10.0.1.201 198.51.100.2 443 49153 6 25 20000 1620140761 1620140821 ACCEPT",
			ReasonFields,
		},
		{
			"too many fields",
			"2 123456789012 eni-0a1b2c3d 10.0.1.201 198.51.100.2 443 49153 6 25 20000 1620140761 1620140821 ACCEPT OK extra",
			ReasonFields,
		},
		{
			"wrong version",
			"3 123456789012 eni-0a1b2c3d 10.0.1.201 198.51.100.2 443 49153 6 25 20000 1620140761 1620140821 ACCEPT OK",
			ReasonVersion,
		},
		{
			"port not a number",
			"2 123456789012 eni-0a1b2c3d 10.0.1.201 198.51.100.2 https 49153 6 25 20000 1620140761 1620140821 ACCEPT OK",
			ReasonPort,
		},
		{
			"port out of range",
			"2 123456789012 eni-0a1b2c3d 10.0.1.201 198.51.100.2 70000 49153 6 25 20000 1620140761 1620140821 ACCEPT OK",
			ReasonPort,
		},
		{
			"unknown protocol",
			"2 123456789012 eni-0a1b2c3d 10.0.1.201 198.51.100.2 443 49153 999 25 20000 1620140761 1620140821 ACCEPT OK",
			ReasonProtocol,
		},
		{
			"skipped status",
			"2 123456789012 eni-0a1b2c3d 10.0.1.201 198.51.100.2 443 49153 6 25 20000 1620140761 1620140821 ACCEPT NODATA",
			ReasonStatus,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, err := d.Decode(tt.line)
			assert.Nil(t, record)
			assert.ErrorIs(t, err, ErrDecode)

			var decoderErr *DecoderError
			require.True(t, errors.As(err, &decoderErr))
			assert.Equal(t, tt.reason, decoderErr.Reason)
		})
	}
}

func TestDecodeLenientAttributes(t *testing.T) {
	d := NewDecoder(DefaultMapping())

	line := "2 123456789012 eni-0a1b2c3d - - 443 - 6 - - - - ACCEPT OK"
	record, err := d.Decode(line)
	require.NoError(t, err)

	assert.Nil(t, record.SrcAddr)
	assert.Nil(t, record.DstAddr)
	assert.Equal(t, uint16(0), record.SrcPort)
	assert.Equal(t, uint64(0), record.Packets)
	assert.Equal(t, uint64(0), record.Bytes)
}

func TestLoadMapping(t *testing.T) {
	data := `
num-fields: 5
fields:
  version: 0
  dstport: 1
  protocol: 2
  log-status: 3
  action: 4
  account-id: -1
  interface-id: -1
  srcaddr: -1
  dstaddr: -1
  srcport: -1
  packets: -1
  bytes: -1
  start: -1
  end: -1
protocols:
  gre: 47
`
	mapping, err := LoadMapping(strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 5, mapping.NumFields)
	assert.Equal(t, 2, mapping.Version)
	assert.Equal(t, "OK", mapping.Status)

	record, err := NewDecoder(mapping).Decode("2 8080 gre OK ACCEPT")
	require.NoError(t, err)
	assert.Equal(t, uint16(8080), record.DstPort)
	assert.Equal(t, "gre", record.Protocol)
	assert.Equal(t, uint8(47), record.ProtoNumber)
	assert.Equal(t, "ACCEPT", record.Action)
}

func TestLoadMappingPartial(t *testing.T) {
	mapping, err := LoadMapping(strings.NewReader("version: 5\n"))
	require.NoError(t, err)
	assert.Equal(t, 5, mapping.Version)
	assert.Equal(t, 14, mapping.NumFields)
	assert.Equal(t, DefaultMapping().Fields, mapping.Fields)
}

func TestLoadMappingEmpty(t *testing.T) {
	mapping, err := LoadMapping(strings.NewReader(""))
	require.NoError(t, err)
	mapping.Protocols = nil
	assert.Equal(t, DefaultMapping(), mapping)
}

func TestMappingValidate(t *testing.T) {
	mapping := DefaultMapping()
	require.NoError(t, mapping.Validate())

	mapping.NumFields = 0
	assert.Error(t, mapping.Validate())

	mapping = DefaultMapping()
	mapping.Fields.DstPort = -1
	assert.Error(t, mapping.Validate())

	mapping = DefaultMapping()
	mapping.Fields.Protocol = 20
	assert.Error(t, mapping.Validate())
}
