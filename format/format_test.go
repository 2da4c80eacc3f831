package format_test

import (
	"encoding/json"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowtally/flowtally/decoders/flowlog"
	"github.com/flowtally/flowtally/format"
	_ "github.com/flowtally/flowtally/format/csv"
	_ "github.com/flowtally/flowtally/format/json"
	_ "github.com/flowtally/flowtally/format/text"
	"github.com/flowtally/flowtally/producer"
)

func testMessage() *producer.Message {
	return &producer.Message{
		Record: flowlog.Record{
			Version:   2,
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
			LogStatus: "OK",
		},
		Tag: "web",
	}
}

func TestFormatJson(t *testing.T) {
	formatter, err := format.FindFormat("json")
	require.NoError(t, err)

	key, data, err := formatter.Format(testMessage())
	require.NoError(t, err)
	assert.Equal(t, []byte("web"), key)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "web", decoded["tag"])
	assert.Equal(t, "tcp", decoded["protocol"])
	assert.Equal(t, "10.0.1.201", decoded["src_addr"])
	assert.Equal(t, float64(443), decoded["dst_port"])
	assert.NotContains(t, decoded, "src_country")
}

func TestFormatCsv(t *testing.T) {
	formatter, err := format.FindFormat("csv")
	require.NoError(t, err)

	key, data, err := formatter.Format(testMessage())
	require.NoError(t, err)
	assert.Equal(t, []byte("web"), key)

	line := string(data)
	assert.False(t, strings.HasSuffix(line, "\n"))
	fields := strings.Split(line, ",")
	require.Len(t, fields, len(producer.CSVHeader()))
	assert.Equal(t, "tcp", fields[6])
	assert.Equal(t, "web", fields[10])
}

func TestFormatText(t *testing.T) {
	formatter, err := format.FindFormat("text")
	require.NoError(t, err)

	key, data, err := formatter.Format(testMessage())
	require.NoError(t, err)
	assert.Equal(t, []byte("web"), key)
	assert.Contains(t, string(data), "tag:web")
	assert.Contains(t, string(data), "dst_port:443")
}

func TestFormatNotSerializable(t *testing.T) {
	formatter, err := format.FindFormat("csv")
	require.NoError(t, err)

	_, _, err = formatter.Format(struct{}{})
	assert.ErrorIs(t, err, format.ErrFormat)
	assert.ErrorIs(t, err, format.ErrNoSerializer)
}

func TestFormatNotFound(t *testing.T) {
	_, err := format.FindFormat("nope")
	assert.ErrorIs(t, err, format.ErrFormat)
}

func TestGetFormats(t *testing.T) {
	assert.Equal(t, []string{"csv", "json", "text"}, format.GetFormats())
}
