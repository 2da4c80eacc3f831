// Package report renders aggregation summaries as CSV reports.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/flowtally/flowtally/aggregator"
)

var (
	tagHeader  = []string{"Tag", "Count"}
	pairHeader = []string{"Port", "Protocol", "Count"}
)

// WriteTagCounts renders the tag report, one row per tag.
func WriteTagCounts(w io.Writer, summary *aggregator.Summary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(tagHeader); err != nil {
		return err
	}
	for _, row := range summary.Tags {
		if err := cw.Write([]string{row.Tag, strconv.FormatUint(row.Count, 10)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePortProtoCounts renders the port/protocol report, one row per pair.
func WritePortProtoCounts(w io.Writer, summary *aggregator.Summary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(pairHeader); err != nil {
		return err
	}
	for _, row := range summary.Pairs {
		record := []string{
			strconv.FormatUint(uint64(row.Port), 10),
			row.Proto,
			strconv.FormatUint(row.Count, 10),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTagCountsFile writes the tag report to a file, replacing any
// previous content.
func WriteTagCountsFile(path string, summary *aggregator.Summary) error {
	return writeFile(path, "tag report", summary, WriteTagCounts)
}

// WritePortProtoCountsFile writes the port/protocol report to a file,
// replacing any previous content.
func WritePortProtoCountsFile(path string, summary *aggregator.Summary) error {
	return writeFile(path, "port/protocol report", summary, WritePortProtoCounts)
}

func writeFile(path, name string, summary *aggregator.Summary, render func(io.Writer, *aggregator.Summary) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error opening %s: %w", name, err)
	}
	if err := render(f, summary); err != nil {
		f.Close()
		return fmt.Errorf("error writing %s %s: %w", name, path, err)
	}
	return f.Close()
}
