// Package lookup loads the (port, protocol) to tag reference table.
package lookup

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/flowtally/flowtally/iana"
)

var (
	// ErrColumns is returned for rows without exactly 3 columns.
	ErrColumns = errors.New("row must have 3 columns")
	// ErrPort is returned when the port column is not a number in 0-65535.
	ErrPort = errors.New("invalid port")
	// ErrProtocol is returned when the protocol column cannot be resolved.
	ErrProtocol = errors.New("unknown protocol")
	// ErrTag is returned when the tag column is empty.
	ErrTag = errors.New("empty tag")
)

// Key identifies a lookup entry. Proto holds the canonical lowercase
// protocol name.
type Key struct {
	Port  uint16
	Proto string
}

func (k Key) String() string {
	return fmt.Sprintf("%d/%s", k.Port, k.Proto)
}

// Table maps (port, protocol) keys to tags. It is built once at startup and
// read-only afterwards.
type Table struct {
	entries map[Key]string
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{
		entries: make(map[Key]string),
	}
}

// Put stores a tag under a key and returns the tag it replaced, if any.
// The last stored tag wins.
func (t *Table) Put(key Key, tag string) (prev string, replaced bool) {
	prev, replaced = t.entries[key]
	t.entries[key] = tag
	return prev, replaced
}

// Get resolves an already-normalized key.
func (t *Table) Get(key Key) (string, bool) {
	tag, ok := t.entries[key]
	return tag, ok
}

// Lookup resolves a (port, protocol) pair. The protocol token can be a
// registry number or a name in any case.
func (t *Table) Lookup(port uint16, proto string) (string, bool) {
	name, _, ok := iana.Normalize(proto)
	if !ok {
		return "", false
	}
	return t.Get(Key{Port: port, Proto: name})
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return len(t.entries)
}

// ParseRow parses one CSV row (port, protocol, tag) into a key and tag.
// Protocol numbers and names unify to the canonical name.
func ParseRow(row []string) (Key, string, error) {
	if len(row) != 3 {
		return Key{}, "", fmt.Errorf("%w: got %d", ErrColumns, len(row))
	}
	port, err := strconv.ParseUint(strings.TrimSpace(row[0]), 10, 16)
	if err != nil {
		return Key{}, "", fmt.Errorf("%w: %q", ErrPort, row[0])
	}
	proto, _, ok := iana.Normalize(row[1])
	if !ok {
		return Key{}, "", fmt.Errorf("%w: %q", ErrProtocol, row[1])
	}
	tag := strings.TrimSpace(row[2])
	if tag == "" {
		return Key{}, "", ErrTag
	}
	return Key{Port: uint16(port), Proto: proto}, tag, nil
}

// Load reads lookup rows from r. Malformed rows are skipped, which also
// drops a header row since its port column is not a number.
func Load(r io.Reader) (*Table, error) {
	table := NewTable()

	rd := csv.NewReader(r)
	rd.FieldsPerRecord = -1
	rd.TrimLeadingSpace = true

	for {
		row, err := rd.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue
			}
			return nil, err
		}

		key, tag, err := ParseRow(row)
		if err != nil {
			continue
		}
		table.Put(key, tag)
	}
	return table, nil
}

// LoadFile reads a lookup table from a CSV file.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening lookup table: %w", err)
	}
	defer f.Close()

	table, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("error reading lookup table %s: %w", path, err)
	}
	return table, nil
}
