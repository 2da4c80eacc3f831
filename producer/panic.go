package producer

import (
	"fmt"
	"runtime/debug"

	"github.com/flowtally/flowtally/decoders/flowlog"
)

var (
	ProducerError = fmt.Errorf("producer error")
)

// ProducerErrorMessage carries a panic recovered during Produce, with the
// record that triggered it.
type ProducerErrorMessage struct {
	Record     *flowlog.Record
	Inner      string
	Stacktrace []byte
}

func (e *ProducerErrorMessage) Error() string {
	return e.Inner
}

func (e *ProducerErrorMessage) Unwrap() []error {
	return []error{ProducerError}
}

type PanicProducerWrapper struct {
	wrapped ProducerInterface
}

func (p *PanicProducerWrapper) Produce(record *flowlog.Record) (msg *Message, err error) {

	defer func() {
		if pErr := recover(); pErr != nil {
			pErrC, _ := pErr.(string)
			err = &ProducerErrorMessage{Record: record, Inner: pErrC, Stacktrace: debug.Stack()}
		}
	}()

	msg, err = p.wrapped.Produce(record)
	return msg, err
}

func (p *PanicProducerWrapper) Close() {
	p.wrapped.Close()
}

// WrapPanicProducer wraps a producer so panics surface as produce errors.
func WrapPanicProducer(wrapped ProducerInterface) ProducerInterface {
	return &PanicProducerWrapper{
		wrapped: wrapped,
	}
}
