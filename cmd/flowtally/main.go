package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	// import various formatters
	"github.com/flowtally/flowtally/format"
	_ "github.com/flowtally/flowtally/format/csv"
	_ "github.com/flowtally/flowtally/format/json"
	_ "github.com/flowtally/flowtally/format/text"

	// import various transports
	"github.com/flowtally/flowtally/transport"
	_ "github.com/flowtally/flowtally/transport/file"
	_ "github.com/flowtally/flowtally/transport/kafka"

	// core libraries
	"github.com/flowtally/flowtally/aggregator"
	"github.com/flowtally/flowtally/decoders/flowlog"
	"github.com/flowtally/flowtally/enricher"
	"github.com/flowtally/flowtally/lookup"
	"github.com/flowtally/flowtally/metrics"
	"github.com/flowtally/flowtally/producer"
	"github.com/flowtally/flowtally/report"
	"github.com/flowtally/flowtally/utils"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

var (
	version    = ""
	buildinfos = ""
	AppVersion = "FlowTally " + version + " " + buildinfos

	LookupFile = flag.String("lookup-file", "lookup_table.csv", "Lookup table CSV file")
	LogFile    = flag.String("log-file", "flow.log", "Flow log file (use - for stdin)")
	TagOutput  = flag.String("tag-output", "tag_counts_output.csv", "Tag counts output CSV file")
	PortOutput = flag.String("port-output", "port_protocol_counts_output.csv", "Port/protocol counts output CSV file")

	MappingFile = flag.String("mapping", "", "Configuration file for custom log layouts")

	LogLevel = flag.String("loglevel", "info", "Log level")
	LogFmt   = flag.String("logfmt", "normal", "Log formatter")

	Stream    = flag.Bool("stream", false, "Stream tagged records to a transport while counting")
	Format    = flag.String("format", "json", fmt.Sprintf("Choose the format (available: %s)", strings.Join(format.GetFormats(), ", ")))
	Transport = flag.String("transport", "file", fmt.Sprintf("Choose the transport (available: %s)", strings.Join(transport.GetTransports(), ", ")))

	DbAsn     = flag.String("db.asn", "", "IP->ASN database")
	DbCountry = flag.String("db.country", "", "IP->Country database")
	CacheSize = flag.Int("db.cache", enricher.DefaultCacheSize, "Address cache size for database lookups")

	ErrCnt = flag.Int("err.cnt", 10, "Maximum errors per batch for muting")
	ErrInt = flag.Duration("err.int", time.Second*10, "Maximum errors interval for muting")

	MetricsAddr = flag.String("metrics.addr", "", "Metrics address (empty to disable)")
	MetricsPath = flag.String("metrics.path", "/metrics", "Metrics path")
	MetricsPush = flag.String("metrics.push", "", "Push gateway URI for run metrics (empty to disable)")

	Version = flag.Bool("v", false, "Print version")
)

func httpServer() {
	http.Handle(*MetricsPath, promhttp.Handler())
	log.Fatal(http.ListenAndServe(*MetricsAddr, nil))
}

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

	if *MetricsAddr != "" {
		go httpServer()
	}

	runMetric, err := metrics.GetOrCreate("run")
	if err != nil {
		log.Fatal(err)
	}
	measure := metrics.TimeMeasureNow()

	mapping := flowlog.DefaultMapping()
	if *MappingFile != "" {
		f, err := os.Open(*MappingFile)
		if err != nil {
			log.Fatal(err)
		}
		mapping, err = flowlog.LoadMapping(f)
		f.Close()
		if err != nil {
			log.Fatal(err)
		}
	}

	table, err := lookup.LoadFile(*LookupFile)
	if err != nil {
		log.Fatal(err)
	}
	metrics.LookupTableEntries.Set(float64(table.Len()))
	log.WithFields(log.Fields{
		"file":    *LookupFile,
		"entries": table.Len(),
	}).Info("loaded lookup table")

	var decoder flowlog.DecoderInterface
	decoder = flowlog.NewDecoder(mapping)
	// wrap decoder with Prometheus metrics
	decoder = metrics.PromDecoderWrapper(decoder, "flowlog")

	var flowProducer producer.ProducerInterface
	flowProducer = producer.CreateTagProducer(table)
	// intercept panic and generate an error
	flowProducer = producer.WrapPanicProducer(flowProducer)
	// wrap producer with Prometheus metrics
	flowProducer = metrics.PromProducerWrapper(flowProducer)

	cfgPipe := &utils.PipeConfig{
		Decoder:    decoder,
		Producer:   flowProducer,
		Aggregator: aggregator.NewAggregator(),
		ErrCnt:     *ErrCnt,
		ErrInt:     *ErrInt,
	}

	if *DbAsn != "" || *DbCountry != "" {
		enr, err := enricher.New(*DbAsn, *DbCountry, *CacheSize)
		if err != nil {
			log.Fatal(err)
		}
		defer enr.Close()
		cfgPipe.Enricher = enr
	}

	var transporter *transport.Transport
	if *Stream {
		formatter, err := format.FindFormat(*Format)
		if err != nil {
			log.Fatal(err)
		}
		transporter, err = transport.FindTransport(*Transport)
		if err != nil {
			log.Fatal(err)
		}
		cfgPipe.Format = formatter
		cfgPipe.Transport = transporter
		cfgPipe.TransportName = *Transport
	}

	p := utils.NewLogPipe(cfgPipe)

	log.Info("starting flowtally")

	input := os.Stdin
	if *LogFile != "-" {
		input, err = os.Open(*LogFile)
		if err != nil {
			log.Fatal(err)
		}
	}

	summary, runErr := p.Run(input)

	if *LogFile != "-" {
		input.Close()
	}
	p.Close()
	if transporter != nil {
		if err := transporter.Close(); err != nil {
			log.Error(err)
		}
	}
	if runErr != nil {
		log.Fatal(runErr)
	}

	if err := report.WriteTagCountsFile(*TagOutput, summary); err != nil {
		log.Fatal(err)
	}
	if err := report.WritePortProtoCountsFile(*PortOutput, summary); err != nil {
		log.Fatal(err)
	}

	log.WithFields(log.Fields{
		"records":  summary.Records,
		"tags":     len(summary.Tags),
		"pairs":    len(summary.Pairs),
		"tagfile":  *TagOutput,
		"portfile": *PortOutput,
	}).Info("wrote reports")

	measure.MeasureTime(runMetric.Metric("duration_ms"))
	runMetric.Metric("records").Set(float64(summary.Records))
	runMetric.Status("completed", metrics.StatusOK)

	if *MetricsPush != "" {
		if err := runMetric.Push(*MetricsPush); err != nil {
			log.Error(err)
		}
	}
}
