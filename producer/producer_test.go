package producer

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowtally/flowtally/decoders/flowlog"
	"github.com/flowtally/flowtally/lookup"
)

func testTable() *lookup.Table {
	table := lookup.NewTable()
	table.Put(lookup.Key{Port: 25, Proto: "tcp"}, "sv_P1")
	table.Put(lookup.Key{Port: 68, Proto: "udp"}, "sv_P2")
	table.Put(lookup.Key{Port: 0, Proto: "icmp"}, "ping")
	return table
}

func TestProduceTagged(t *testing.T) {
	p := CreateTagProducer(testTable())
	defer p.Close()

	msg, err := p.Produce(&flowlog.Record{DstPort: 25, Protocol: "tcp"})
	require.NoError(t, err)
	assert.Equal(t, "sv_P1", msg.Tag)

	msg, err = p.Produce(&flowlog.Record{DstPort: 0, Protocol: "icmp"})
	require.NoError(t, err)
	assert.Equal(t, "ping", msg.Tag)
}

func TestProduceUntagged(t *testing.T) {
	p := CreateTagProducer(testTable())
	defer p.Close()

	tests := []struct {
		port  uint16
		proto string
	}{
		{25, "udp"},
		{26, "tcp"},
		{9999, "sctp"},
	}
	for _, tt := range tests {
		msg, err := p.Produce(&flowlog.Record{DstPort: tt.port, Protocol: tt.proto})
		require.NoError(t, err)
		assert.Equal(t, Untagged, msg.Tag)
	}
}

func TestProduceKeepsRecord(t *testing.T) {
	p := CreateTagProducer(testTable())
	defer p.Close()

	record := &flowlog.Record{
		SrcAddr:  net.ParseIP("10.0.1.201"),
		DstAddr:  net.ParseIP("198.51.100.2"),
		DstPort:  68,
		Protocol: "udp",
		Packets:  12,
		Bytes:    3400,
	}
	msg, err := p.Produce(record)
	require.NoError(t, err)
	assert.Equal(t, *record, msg.Record)
	assert.Equal(t, "sv_P2", msg.Tag)
	assert.Equal(t, []byte("sv_P2"), msg.Key())
}

func TestCSVRecordMatchesHeader(t *testing.T) {
	msg := &Message{
		Record: flowlog.Record{
			SrcAddr:   net.ParseIP("10.0.1.201"),
			DstAddr:   net.ParseIP("198.51.100.2"),
			SrcPort:   49153,
			DstPort:   443,
			Protocol:  "tcp",
			Packets:   25,
			Bytes:     20000,
			TimeStart: 1620140761,
			TimeEnd:   1620140821,
			Action:    "ACCEPT",
		},
		Tag:        "web",
		SrcCountry: "DE",
		SrcAS:      64496,
	}
	row := msg.CSVRecord()
	require.Len(t, row, len(CSVHeader()))
	assert.Equal(t, "10.0.1.201", row[2])
	assert.Equal(t, "443", row[5])
	assert.Equal(t, "tcp", row[6])
	assert.Equal(t, "web", row[10])
	assert.Equal(t, "DE", row[11])
	assert.Equal(t, "", row[12])
	assert.Equal(t, "64496", row[13])
	assert.Equal(t, "", row[14])
}
