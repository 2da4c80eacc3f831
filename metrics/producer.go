package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/flowtally/flowtally/decoders/flowlog"
	"github.com/flowtally/flowtally/producer"
)

type promProducerWrapper struct {
	wrapped producer.ProducerInterface
}

func (p *promProducerWrapper) Produce(record *flowlog.Record) (*producer.Message, error) {
	msg, err := p.wrapped.Produce(record)
	if err != nil {
		return msg, err
	}
	ProducerTagStats.With(
		prometheus.Labels{
			"tag": msg.Tag,
		}).
		Inc()
	return msg, nil
}

func (p *promProducerWrapper) Close() {
	p.wrapped.Close()
}

// PromProducerWrapper wraps a producer with per-tag counters.
func PromProducerWrapper(wrapped producer.ProducerInterface) producer.ProducerInterface {
	return &promProducerWrapper{
		wrapped: wrapped,
	}
}
