package text

import (
	"github.com/flowtally/flowtally/format"
)

type TextDriver struct {
}

func (d *TextDriver) Prepare() error {
	return nil
}

func (d *TextDriver) Init() error {
	return nil
}

func (d *TextDriver) Format(data interface{}) ([]byte, []byte, error) {
	var key []byte
	if dataIf, ok := data.(interface{ Key() []byte }); ok {
		key = dataIf.Key()
	}
	dataIf, ok := data.(interface{ String() string })
	if !ok {
		return key, nil, format.ErrNoSerializer
	}
	return key, []byte(dataIf.String()), nil
}

func init() {
	d := &TextDriver{}
	format.RegisterFormatDriver("text", d)
}
