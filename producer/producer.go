// Package producer turns decoded flow records into tagged messages.
package producer

import (
	"github.com/flowtally/flowtally/decoders/flowlog"
	"github.com/flowtally/flowtally/lookup"
)

// Untagged marks records without a matching lookup entry.
const Untagged = "Untagged"

type ProducerInterface interface {
	Produce(record *flowlog.Record) (*Message, error)
	Close()
}

// TagProducer resolves each record's (destination port, protocol) pair
// against a lookup table.
type TagProducer struct {
	table *lookup.Table
}

func (p *TagProducer) Produce(record *flowlog.Record) (*Message, error) {
	tag, ok := p.table.Get(lookup.Key{
		Port:  record.DstPort,
		Proto: record.Protocol,
	})
	if !ok {
		tag = Untagged
	}
	return &Message{
		Record: *record,
		Tag:    tag,
	}, nil
}

func (p *TagProducer) Close() {}

func CreateTagProducer(table *lookup.Table) ProducerInterface {
	return &TagProducer{
		table: table,
	}
}
