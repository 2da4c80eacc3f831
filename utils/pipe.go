// Package utils provides the flow log pipeline and support helpers.
package utils

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/flowtally/flowtally/aggregator"
	"github.com/flowtally/flowtally/decoders/flowlog"
	"github.com/flowtally/flowtally/format"
	"github.com/flowtally/flowtally/metrics"
	"github.com/flowtally/flowtally/producer"
	"github.com/flowtally/flowtally/transport"
)

// Enricher mutates messages after tagging and before they are streamed
// and aggregated.
type Enricher interface {
	Enrich(msg *producer.Message)
}

// PipeConfig wires the pipeline dependencies. Decoder, Producer and
// Aggregator are required, the rest are optional.
type PipeConfig struct {
	Decoder    flowlog.DecoderInterface
	Producer   producer.ProducerInterface
	Aggregator *aggregator.Aggregator

	Enricher  Enricher
	Format    format.FormatInterface
	Transport transport.TransportInterface

	// name of the stream transport, used as a metric label
	TransportName string

	ErrCnt int           // maximum line warnings per interval
	ErrInt time.Duration // warning reset interval
}

// PipeLineError wraps a decode or produce error with the offending line.
type PipeLineError struct {
	Line string
	Err  error
}

func (e *PipeLineError) Error() string {
	return fmt.Sprintf("line %q %s", e.Line, e.Err.Error())
}

func (e *PipeLineError) Unwrap() error {
	return e.Err
}

// LogPipe runs lines through decode, tag, enrich, aggregate and stream.
type LogPipe struct {
	decoder    flowlog.DecoderInterface
	producer   producer.ProducerInterface
	aggregator *aggregator.Aggregator
	enricher   Enricher
	format     format.FormatInterface
	transport  transport.TransportInterface

	transportName string

	mute *BatchMute
}

// NewLogPipe creates a pipeline from a config.
func NewLogPipe(cfg *PipeConfig) *LogPipe {
	name := cfg.TransportName
	if name == "" {
		name = "file"
	}
	return &LogPipe{
		decoder:       cfg.Decoder,
		producer:      cfg.Producer,
		aggregator:    cfg.Aggregator,
		enricher:      cfg.Enricher,
		format:        cfg.Format,
		transport:     cfg.Transport,
		transportName: name,
		mute:          NewBatchMute(cfg.ErrInt, cfg.ErrCnt),
	}
}

// DecodeLine runs one line through the pipeline. Aggregation happens
// before streaming, so a stream failure never loses a count.
func (p *LogPipe) DecodeLine(line string) error {
	record, err := p.decoder.Decode(line)
	if err != nil {
		return &PipeLineError{line, err}
	}

	msg, err := p.producer.Produce(record)
	if err != nil {
		return &PipeLineError{line, err}
	}

	if p.enricher != nil {
		p.enricher.Enrich(msg)
	}

	p.aggregator.Aggregate(msg)

	return p.formatSend(msg)
}

func (p *LogPipe) formatSend(msg *producer.Message) error {
	if p.format == nil {
		return nil
	}
	key, data, err := p.format.Format(msg)
	if err != nil {
		metrics.StreamErrors.With(prometheus.Labels{
			"transport": p.transportName,
			"error":     "format",
		}).Inc()
		return err
	}
	if p.transport == nil {
		return nil
	}
	if err = p.transport.Send(key, data); err != nil {
		metrics.StreamErrors.With(prometheus.Labels{
			"transport": p.transportName,
			"error":     "send",
		}).Inc()
		return err
	}
	metrics.StreamSent.With(prometheus.Labels{
		"transport": p.transportName,
	}).Inc()
	return nil
}

// Run consumes r line by line and returns the aggregated summary. Lines
// can be of any length. Empty lines are ignored, rejected lines are
// logged with muting, and only a read failure aborts the run.
func (p *LogPipe) Run(r io.Reader) (*aggregator.Summary, error) {
	rdr := bufio.NewReader(r)

	for {
		raw, readErr := rdr.ReadBytes('\n')
		if readErr != nil && readErr != io.EOF {
			return nil, fmt.Errorf("error reading flow log: %w", readErr)
		}

		line := strings.TrimSuffix(string(raw), "\n")
		if strings.TrimSpace(line) != "" {
			if err := p.DecodeLine(line); err != nil {
				muted, skipped := p.mute.Increment()
				if muted && skipped == 0 {
					log.Warn("too many line errors, muting")
				} else if !muted && skipped > 0 {
					log.WithFields(log.Fields{
						"count": skipped,
					}).Warn("skipped line errors")
				} else if !muted {
					fields := log.Fields{
						"error": err.Error(),
					}
					switch {
					case errors.Is(err, flowlog.ErrDecode):
						log.WithFields(fields).Warn("decoder error")
					case errors.Is(err, producer.ProducerError):
						var pErrMsg *producer.ProducerErrorMessage
						if errors.As(err, &pErrMsg) {
							fields["stacktrace"] = string(pErrMsg.Stacktrace)
						}
						log.WithFields(fields).Error("intercepted panic")
					default:
						log.WithFields(fields).Warn("stream error")
					}
				}
			}
		}

		if readErr == io.EOF {
			return p.aggregator.Summarize(), nil
		}
	}
}

// Close releases the producer.
func (p *LogPipe) Close() {
	if p.producer != nil {
		p.producer.Close()
	}
}
