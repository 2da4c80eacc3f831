// Package aggregator accumulates per-tag and per-port counters over a run.
package aggregator

import (
	"sort"

	"github.com/flowtally/flowtally/lookup"
	"github.com/flowtally/flowtally/producer"
)

// Aggregator counts tagged messages. It is not safe for concurrent use,
// the pipeline feeds it from a single goroutine.
type Aggregator struct {
	records uint64
	tags    map[string]uint64
	pairs   map[lookup.Key]uint64
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		tags: map[string]uint64{
			producer.Untagged: 0,
		},
		pairs: make(map[lookup.Key]uint64),
	}
}

// Aggregate counts one message under its tag and its port/protocol pair.
func (a *Aggregator) Aggregate(msg *producer.Message) {
	a.records++
	a.tags[msg.Tag]++
	a.pairs[lookup.Key{Port: msg.DstPort, Proto: msg.Protocol}]++
}

// Records returns the number of aggregated messages.
func (a *Aggregator) Records() uint64 {
	return a.records
}

// TagCount is one row of the tag report.
type TagCount struct {
	Tag   string
	Count uint64
}

// PortProtoCount is one row of the port/protocol report.
type PortProtoCount struct {
	Port  uint16
	Proto string
	Count uint64
}

// Summary is a deterministic snapshot of the counters.
type Summary struct {
	Records uint64
	Tags    []TagCount
	Pairs   []PortProtoCount
}

// Summarize snapshots the counters. Tag rows sort by descending count then
// name, pair rows by port then protocol. The untagged row is always
// present, even at zero.
func (a *Aggregator) Summarize() *Summary {
	s := &Summary{
		Records: a.records,
		Tags:    make([]TagCount, 0, len(a.tags)),
		Pairs:   make([]PortProtoCount, 0, len(a.pairs)),
	}

	for tag, count := range a.tags {
		s.Tags = append(s.Tags, TagCount{Tag: tag, Count: count})
	}
	sort.Slice(s.Tags, func(i, j int) bool {
		if s.Tags[i].Count != s.Tags[j].Count {
			return s.Tags[i].Count > s.Tags[j].Count
		}
		return s.Tags[i].Tag < s.Tags[j].Tag
	})

	for key, count := range a.pairs {
		s.Pairs = append(s.Pairs, PortProtoCount{Port: key.Port, Proto: key.Proto, Count: count})
	}
	sort.Slice(s.Pairs, func(i, j int) bool {
		if s.Pairs[i].Port != s.Pairs[j].Port {
			return s.Pairs[i].Port < s.Pairs[j].Port
		}
		return s.Pairs[i].Proto < s.Pairs[j].Proto
	})

	return s
}
