package csv

import (
	"bytes"
	"encoding/csv"

	"github.com/flowtally/flowtally/format"
)

type CSVDriver struct {
}

func (d *CSVDriver) Prepare() error {
	return nil
}

func (d *CSVDriver) Init() error {
	return nil
}

func (d *CSVDriver) Format(data interface{}) ([]byte, []byte, error) {
	var key []byte
	if dataIf, ok := data.(interface{ Key() []byte }); ok {
		key = dataIf.Key()
	}
	dataIf, ok := data.(interface{ CSVRecord() []string })
	if !ok {
		return key, nil, format.ErrNoSerializer
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(dataIf.CSVRecord()); err != nil {
		return key, nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return key, nil, err
	}
	return key, bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func init() {
	d := &CSVDriver{}
	format.RegisterFormatDriver("csv", d)
}
