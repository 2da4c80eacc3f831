package producer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowtally/flowtally/decoders/flowlog"
)

type panicProducer struct{}

func (panicProducer) Produce(record *flowlog.Record) (*Message, error) {
	panic("boom")
}

func (panicProducer) Close() {}

func TestWrapPanicProducer(t *testing.T) {
	p := WrapPanicProducer(panicProducer{})
	defer p.Close()

	record := &flowlog.Record{DstPort: 25, Protocol: "tcp"}
	msg, err := p.Produce(record)
	assert.Nil(t, msg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ProducerError)

	var pErr *ProducerErrorMessage
	require.True(t, errors.As(err, &pErr))
	assert.Equal(t, "boom", pErr.Inner)
	assert.Equal(t, record, pErr.Record)
	assert.NotEmpty(t, pErr.Stacktrace)
}

func TestWrapPanicProducerPassthrough(t *testing.T) {
	p := WrapPanicProducer(CreateTagProducer(testTable()))
	defer p.Close()

	msg, err := p.Produce(&flowlog.Record{DstPort: 25, Protocol: "tcp"})
	require.NoError(t, err)
	assert.Equal(t, "sv_P1", msg.Tag)
}
