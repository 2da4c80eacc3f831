package flowlog

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v2"

	"github.com/flowtally/flowtally/iana"
)

// FieldIndexes places each record attribute inside a split line.
// A negative index marks the attribute as absent from the layout.
type FieldIndexes struct {
	Version     int `yaml:"version"`
	AccountID   int `yaml:"account-id"`
	InterfaceID int `yaml:"interface-id"`
	SrcAddr     int `yaml:"srcaddr"`
	DstAddr     int `yaml:"dstaddr"`
	DstPort     int `yaml:"dstport"`
	SrcPort     int `yaml:"srcport"`
	Protocol    int `yaml:"protocol"`
	Packets     int `yaml:"packets"`
	Bytes       int `yaml:"bytes"`
	Start       int `yaml:"start"`
	End         int `yaml:"end"`
	Action      int `yaml:"action"`
	LogStatus   int `yaml:"log-status"`
}

// FieldMapping describes the layout of a flow log line: how many columns it
// has, where each attribute sits, and which version and status values are
// accepted. Extra protocol names can be declared under protocols.
type FieldMapping struct {
	NumFields int              `yaml:"num-fields"`
	Version   int              `yaml:"version"`
	Status    string           `yaml:"log-status"`
	Fields    FieldIndexes     `yaml:"fields"`
	Protocols map[string]uint8 `yaml:"protocols"`
}

// DefaultMapping returns the layout of a version 2 flow log line.
func DefaultMapping() FieldMapping {
	return FieldMapping{
		NumFields: 14,
		Version:   2,
		Status:    "OK",
		Fields: FieldIndexes{
			Version:     0,
			AccountID:   1,
			InterfaceID: 2,
			SrcAddr:     3,
			DstAddr:     4,
			DstPort:     5,
			SrcPort:     6,
			Protocol:    7,
			Packets:     8,
			Bytes:       9,
			Start:       10,
			End:         11,
			Action:      12,
			LogStatus:   13,
		},
	}
}

// LoadMapping reads a YAML layout on top of the default one, so a file only
// has to state what differs. Declared protocol names are registered globally.
func LoadMapping(f io.Reader) (FieldMapping, error) {
	mapping := DefaultMapping()

	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&mapping); err != nil && err != io.EOF {
		return mapping, err
	}

	for name, number := range mapping.Protocols {
		iana.Register(number, name)
	}
	return mapping, mapping.Validate()
}

// Validate checks that the indexes fit inside the declared column count.
func (m FieldMapping) Validate() error {
	if m.NumFields <= 0 {
		return fmt.Errorf("num-fields must be positive, got %d", m.NumFields)
	}

	indexes := []struct {
		name     string
		index    int
		required bool
	}{
		{"version", m.Fields.Version, false},
		{"account-id", m.Fields.AccountID, false},
		{"interface-id", m.Fields.InterfaceID, false},
		{"srcaddr", m.Fields.SrcAddr, false},
		{"dstaddr", m.Fields.DstAddr, false},
		{"dstport", m.Fields.DstPort, true},
		{"srcport", m.Fields.SrcPort, false},
		{"protocol", m.Fields.Protocol, true},
		{"packets", m.Fields.Packets, false},
		{"bytes", m.Fields.Bytes, false},
		{"start", m.Fields.Start, false},
		{"end", m.Fields.End, false},
		{"action", m.Fields.Action, false},
		{"log-status", m.Fields.LogStatus, false},
	}
	for _, f := range indexes {
		if f.required && f.index < 0 {
			return fmt.Errorf("field %s is required", f.name)
		}
		if f.index >= m.NumFields {
			return fmt.Errorf("field %s index %d outside the %d declared columns", f.name, f.index, m.NumFields)
		}
	}
	return nil
}
