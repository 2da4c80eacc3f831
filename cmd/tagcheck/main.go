package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/flowtally/flowtally/lookup"
)

var (
	version    = ""
	buildinfos = ""
	AppVersion = "TagCheck " + version + " " + buildinfos

	LookupFile = flag.String("lookup-file", "lookup_table.csv", "Lookup table CSV file")
	Strict     = flag.Bool("strict", false, "Exit with an error if any problem is found")

	LogLevel = flag.String("loglevel", "info", "Log level")
	LogFmt   = flag.String("logfmt", "normal", "Log formatter")

	Version = flag.Bool("v", false, "Print version")
)

func main() {
	flag.Parse()

	if *Version {
		fmt.Println(AppVersion)
		os.Exit(0)
	}

	lvl, _ := log.ParseLevel(*LogLevel)
	log.SetLevel(lvl)

	switch *LogFmt {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	}

	f, err := os.Open(*LookupFile)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	rd := csv.NewReader(f)
	rd.FieldsPerRecord = -1
	rd.TrimLeadingSpace = true

	table := lookup.NewTable()
	perProto := make(map[string]int)

	var problems int
	var row int
	for {
		record, err := rd.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			problems++
			log.WithFields(log.Fields{
				"row":   row,
				"error": err.Error(),
			}).Warn("unreadable row")
			continue
		}

		key, tag, err := lookup.ParseRow(record)
		if err != nil {
			if row == 1 && errors.Is(err, lookup.ErrPort) {
				log.Debug("skipping header row")
				continue
			}
			problems++
			log.WithFields(log.Fields{
				"row":   row,
				"error": err.Error(),
			}).Warn("invalid row")
			continue
		}

		prev, replaced := table.Put(key, tag)
		if !replaced {
			perProto[key.Proto]++
		}
		if replaced && prev != tag {
			problems++
			log.WithFields(log.Fields{
				"row":  row,
				"key":  key.String(),
				"prev": prev,
				"tag":  tag,
			}).Warn("duplicate mapping, last one wins")
		}
	}

	protos := make([]string, 0, len(perProto))
	for proto := range perProto {
		protos = append(protos, proto)
	}
	sort.Strings(protos)
	for _, proto := range protos {
		log.WithFields(log.Fields{
			"protocol": proto,
			"entries":  perProto[proto],
		}).Info("protocol total")
	}

	log.WithFields(log.Fields{
		"file":     *LookupFile,
		"entries":  table.Len(),
		"problems": problems,
	}).Info("checked lookup table")

	if *Strict && problems > 0 {
		os.Exit(1)
	}
}
