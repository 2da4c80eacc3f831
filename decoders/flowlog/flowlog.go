// Package flowlog decodes whitespace-separated flow log lines into records.
package flowlog

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/flowtally/flowtally/iana"
)

// ErrDecode is the base error of all rejected lines.
var ErrDecode = errors.New("flow log decoding error")

// Rejection reasons. Stable values, usable as metric labels.
const (
	ReasonFields   = "fields"
	ReasonVersion  = "version"
	ReasonPort     = "port"
	ReasonProtocol = "protocol"
	ReasonStatus   = "status"
)

// DecoderError carries the check a rejected line failed.
type DecoderError struct {
	Reason string
	Err    error
}

func (e *DecoderError) Error() string {
	return fmt.Sprintf("%s (%s)", e.Err.Error(), e.Reason)
}

func (e *DecoderError) Unwrap() []error {
	return []error{ErrDecode, e.Err}
}

func decodeError(reason string, err error) error {
	return &DecoderError{
		Reason: reason,
		Err:    err,
	}
}

// Record is one accepted flow log line.
type Record struct {
	Version     int    `json:"version"`
	AccountID   string `json:"account_id,omitempty"`
	InterfaceID string `json:"interface_id,omitempty"`
	SrcAddr     net.IP `json:"src_addr"`
	DstAddr     net.IP `json:"dst_addr"`
	SrcPort     uint16 `json:"src_port"`
	DstPort     uint16 `json:"dst_port"`
	Protocol    string `json:"protocol"`
	ProtoNumber uint8  `json:"proto_number"`
	Packets     uint64 `json:"packets"`
	Bytes       uint64 `json:"bytes"`
	TimeStart   int64  `json:"time_start"`
	TimeEnd     int64  `json:"time_end"`
	Action      string `json:"action,omitempty"`
	LogStatus   string `json:"log_status,omitempty"`
}

// DecoderInterface decodes one line into a record.
type DecoderInterface interface {
	Decode(line string) (*Record, error)
}

// Decoder splits and validates lines according to a field mapping.
type Decoder struct {
	mapping FieldMapping
}

func NewDecoder(mapping FieldMapping) *Decoder {
	return &Decoder{
		mapping: mapping,
	}
}

func field(fields []string, index int) string {
	if index < 0 || index >= len(fields) {
		return ""
	}
	return fields[index]
}

// Decode parses a line. The column count, version, destination port,
// protocol and log status are checked in that order and a failure returns a
// DecoderError. The remaining attributes do not affect counting and parse
// leniently.
func (d *Decoder) Decode(line string) (*Record, error) {
	m := &d.mapping

	fields := strings.Fields(line)
	if len(fields) != m.NumFields {
		return nil, decodeError(ReasonFields, fmt.Errorf("expected %d fields, got %d", m.NumFields, len(fields)))
	}

	record := &Record{}

	if m.Fields.Version >= 0 {
		version, err := strconv.Atoi(fields[m.Fields.Version])
		if err != nil || version != m.Version {
			return nil, decodeError(ReasonVersion, fmt.Errorf("unsupported version %q", fields[m.Fields.Version]))
		}
		record.Version = version
	}

	dstPort, err := strconv.ParseUint(fields[m.Fields.DstPort], 10, 16)
	if err != nil {
		return nil, decodeError(ReasonPort, fmt.Errorf("invalid destination port %q", fields[m.Fields.DstPort]))
	}
	record.DstPort = uint16(dstPort)

	name, number, ok := iana.Normalize(fields[m.Fields.Protocol])
	if !ok {
		return nil, decodeError(ReasonProtocol, fmt.Errorf("unknown protocol %q", fields[m.Fields.Protocol]))
	}
	record.Protocol = name
	record.ProtoNumber = number

	if m.Fields.LogStatus >= 0 {
		record.LogStatus = fields[m.Fields.LogStatus]
		if record.LogStatus != m.Status {
			return nil, decodeError(ReasonStatus, fmt.Errorf("log status %q", record.LogStatus))
		}
	}

	record.AccountID = field(fields, m.Fields.AccountID)
	record.InterfaceID = field(fields, m.Fields.InterfaceID)
	record.Action = field(fields, m.Fields.Action)
	record.SrcAddr = net.ParseIP(field(fields, m.Fields.SrcAddr))
	record.DstAddr = net.ParseIP(field(fields, m.Fields.DstAddr))

	if srcPort, err := strconv.ParseUint(field(fields, m.Fields.SrcPort), 10, 16); err == nil {
		record.SrcPort = uint16(srcPort)
	}
	if packets, err := strconv.ParseUint(field(fields, m.Fields.Packets), 10, 64); err == nil {
		record.Packets = packets
	}
	if bytes, err := strconv.ParseUint(field(fields, m.Fields.Bytes), 10, 64); err == nil {
		record.Bytes = bytes
	}
	if start, err := strconv.ParseInt(field(fields, m.Fields.Start), 10, 64); err == nil {
		record.TimeStart = start
	}
	if end, err := strconv.ParseInt(field(fields, m.Fields.End), 10, 64); err == nil {
		record.TimeEnd = end
	}

	return record, nil
}
