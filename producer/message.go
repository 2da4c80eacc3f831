package producer

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/flowtally/flowtally/decoders/flowlog"
)

// Message is the tagged view of a record, optionally enriched with
// geographic and AS information.
type Message struct {
	flowlog.Record
	Tag        string `json:"tag"`
	SrcCountry string `json:"src_country,omitempty"`
	DstCountry string `json:"dst_country,omitempty"`
	SrcAS      uint32 `json:"src_as,omitempty"`
	DstAS      uint32 `json:"dst_as,omitempty"`
}

// Key groups messages carrying the same tag onto the same partition.
func (m *Message) Key() []byte {
	return []byte(m.Tag)
}

// String renders the message as space-separated key:value pairs.
func (m *Message) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "time_start:%d time_end:%d src_addr:%s dst_addr:%s src_port:%d dst_port:%d protocol:%s packets:%d bytes:%d action:%s tag:%s",
		m.TimeStart, m.TimeEnd,
		renderAddr(m.SrcAddr), renderAddr(m.DstAddr),
		m.SrcPort, m.DstPort,
		m.Protocol, m.Packets, m.Bytes, m.Action, m.Tag)
	if m.SrcCountry != "" {
		fmt.Fprintf(&sb, " src_country:%s", m.SrcCountry)
	}
	if m.DstCountry != "" {
		fmt.Fprintf(&sb, " dst_country:%s", m.DstCountry)
	}
	if m.SrcAS != 0 {
		fmt.Fprintf(&sb, " src_as:%d", m.SrcAS)
	}
	if m.DstAS != 0 {
		fmt.Fprintf(&sb, " dst_as:%d", m.DstAS)
	}
	return sb.String()
}

// CSVHeader lists the columns emitted by CSVRecord.
func CSVHeader() []string {
	return []string{
		"time_start",
		"time_end",
		"src_addr",
		"dst_addr",
		"src_port",
		"dst_port",
		"protocol",
		"packets",
		"bytes",
		"action",
		"tag",
		"src_country",
		"dst_country",
		"src_as",
		"dst_as",
	}
}

// CSVRecord renders the message as one row matching CSVHeader.
func (m *Message) CSVRecord() []string {
	return []string{
		strconv.FormatInt(m.TimeStart, 10),
		strconv.FormatInt(m.TimeEnd, 10),
		renderAddr(m.SrcAddr),
		renderAddr(m.DstAddr),
		strconv.FormatUint(uint64(m.SrcPort), 10),
		strconv.FormatUint(uint64(m.DstPort), 10),
		m.Protocol,
		strconv.FormatUint(m.Packets, 10),
		strconv.FormatUint(m.Bytes, 10),
		m.Action,
		m.Tag,
		m.SrcCountry,
		m.DstCountry,
		renderAS(m.SrcAS),
		renderAS(m.DstAS),
	}
}

func renderAddr(ip net.IP) string {
	if ip == nil {
		return ""
	}
	return ip.String()
}

func renderAS(asn uint32) string {
	if asn == 0 {
		return ""
	}
	return strconv.FormatUint(uint64(asn), 10)
}
