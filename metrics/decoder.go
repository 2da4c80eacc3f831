package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/flowtally/flowtally/decoders/flowlog"
)

type promDecoderWrapper struct {
	wrapped flowlog.DecoderInterface
	name    string
}

func (d *promDecoderWrapper) Decode(line string) (*flowlog.Record, error) {
	timeTrackStart := time.Now().UTC()

	record, err := d.wrapped.Decode(line)

	timeTrackStop := time.Now().UTC()

	DecoderTime.With(
		prometheus.Labels{
			"name": d.name,
		}).
		Observe(float64((timeTrackStop.Sub(timeTrackStart)).Nanoseconds()) / 1000)

	DecoderStats.With(
		prometheus.Labels{
			"name": d.name,
		}).
		Inc()

	if err != nil {
		reason := "error_decoding"
		var decoderErr *flowlog.DecoderError
		if errors.As(err, &decoderErr) {
			reason = decoderErr.Reason
		}
		DecoderErrors.With(
			prometheus.Labels{
				"name":  d.name,
				"error": reason,
			}).
			Inc()
	}
	return record, err
}

// PromDecoderWrapper wraps a decoder with line and rejection counters.
func PromDecoderWrapper(wrapped flowlog.DecoderInterface, name string) flowlog.DecoderInterface {
	return &promDecoderWrapper{
		wrapped: wrapped,
		name:    name,
	}
}
