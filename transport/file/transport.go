// Package file implements a file/stdout transport.
package file

import (
	"flag"
	"io"
	"os"

	"github.com/flowtally/flowtally/transport"
)

// FileDriver writes formatted messages to stdout or a file. A file
// destination is truncated on open, matching the report outputs.
type FileDriver struct {
	fileDestination string
	lineSeparator   string
	w               io.Writer
	file            *os.File
}

func (d *FileDriver) Prepare() error {
	flag.StringVar(&d.fileDestination, "transport.file", "", "File/console output (empty for stdout)")
	flag.StringVar(&d.lineSeparator, "transport.file.sep", "\n", "Line separator")
	return nil
}

func (d *FileDriver) Init() error {
	if d.fileDestination == "" {
		d.w = os.Stdout
		return nil
	}

	file, err := os.OpenFile(d.fileDestination, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	d.file = file
	d.w = file
	return nil
}

func (d *FileDriver) Send(key, data []byte) error {
	if len(data) > 0 {
		if _, err := d.w.Write(data); err != nil {
			return err
		}
	}
	if d.lineSeparator == "" {
		return nil
	}
	_, err := d.w.Write([]byte(d.lineSeparator))
	return err
}

func (d *FileDriver) Close() error {
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	return err
}

func init() {
	d := &FileDriver{}
	transport.RegisterTransportDriver("file", d)
}
