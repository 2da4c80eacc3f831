package lookup

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRow(t *testing.T) {
	tests := []struct {
		name string
		row  []string
		key  Key
		tag  string
		err  error
	}{
		{"named protocol", []string{"25", "tcp", "sv_P1"}, Key{25, "tcp"}, "sv_P1", nil},
		{"upper case protocol", []string{"443", "TCP", "web"}, Key{443, "tcp"}, "web", nil},
		{"numeric protocol", []string{"68", "17", "dhcp"}, Key{68, "udp"}, "dhcp", nil},
		{"padded columns", []string{" 110 ", " tcp ", " email "}, Key{110, "tcp"}, "email", nil},
		{"header row", []string{"dstport", "protocol", "tag"}, Key{}, "", ErrPort},
		{"too few columns", []string{"25", "tcp"}, Key{}, "", ErrColumns},
		{"too many columns", []string{"25", "tcp", "mail", "x"}, Key{}, "", ErrColumns},
		{"port out of range", []string{"70000", "tcp", "x"}, Key{}, "", ErrPort},
		{"negative port", []string{"-1", "tcp", "x"}, Key{}, "", ErrPort},
		{"unknown protocol", []string{"25", "banana", "x"}, Key{}, "", ErrProtocol},
		{"empty tag", []string{"25", "tcp", "  "}, Key{}, "", ErrTag},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, tag, err := ParseRow(tt.row)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.key, key)
			assert.Equal(t, tt.tag, tag)
		})
	}
}

func TestLoad(t *testing.T) {
	data := `dstport,protocol,tag
25,tcp,sv_P1
68,udp,sv_P2
23,tcp,sv_P1
443,tcp,sv_P2
not-a-port,tcp,skipme
31,icmp,ping
`
	table, err := Load(strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 5, table.Len())

	tag, ok := table.Get(Key{Port: 25, Proto: "tcp"})
	assert.True(t, ok)
	assert.Equal(t, "sv_P1", tag)

	tag, ok = table.Get(Key{Port: 31, Proto: "icmp"})
	assert.True(t, ok)
	assert.Equal(t, "ping", tag)

	_, ok = table.Get(Key{Port: 9999, Proto: "tcp"})
	assert.False(t, ok)
}

func TestLoadLastWins(t *testing.T) {
	data := "22,tcp,SSH\n22,TCP,shell\n22,6,remote\n"
	table, err := Load(strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())

	tag, ok := table.Get(Key{Port: 22, Proto: "tcp"})
	assert.True(t, ok)
	assert.Equal(t, "remote", tag)
}

func TestLookupNormalizes(t *testing.T) {
	table := NewTable()
	table.Put(Key{Port: 53, Proto: "udp"}, "dns")

	for _, proto := range []string{"udp", "UDP", "17", " Udp "} {
		tag, ok := table.Lookup(53, proto)
		assert.True(t, ok, proto)
		assert.Equal(t, "dns", tag)
	}

	_, ok := table.Lookup(53, "banana")
	assert.False(t, ok)
}

func TestTablePut(t *testing.T) {
	table := NewTable()

	prev, replaced := table.Put(Key{Port: 80, Proto: "tcp"}, "web")
	assert.False(t, replaced)
	assert.Equal(t, "", prev)

	prev, replaced = table.Put(Key{Port: 80, Proto: "tcp"}, "http")
	assert.True(t, replaced)
	assert.Equal(t, "web", prev)
}
