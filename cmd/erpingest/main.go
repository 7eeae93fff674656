package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"erpingest/internal/config"
	"erpingest/internal/metrics"
	"erpingest/internal/metrics/datadog"
	"erpingest/internal/metrics/prompush"

	// register all backends with the storage factory.
	_ "erpingest/internal/storage/all"
)

// main is the entry point for the ingestion binary. It loads the schema and
// profile configuration, optionally initializes a metrics backend and a
// warehouse connection, and runs every input file through the pipeline.
func main() {
	var opts options

	flag.StringVar(&opts.configPath, "config", "configs/schema.json", "schema/profile config JSON path")
	flag.StringVar(&opts.profile, "profile", "", "source-system profile; empty means auto-detect")
	flag.StringVar(&opts.storageKind, "storage", "", "warehouse backend (postgres, sqlite); empty means dry run")
	flag.StringVar(&opts.dsn, "dsn", "", "warehouse connection string")
	flag.StringVar(&opts.table, "table", "sales_transactions", "warehouse target table")
	flag.StringVar(&opts.mode, "mode", "append", "write mode: replace or append")
	flag.BoolVar(&opts.createTable, "create-table", false, "create the target table if it does not exist")
	flag.IntVar(&opts.batchSize, "batch", 0, "load batch size; 0 uses the default")
	flag.IntVar(&opts.workers, "workers", 4, "input files processed concurrently")
	flag.IntVar(&opts.threshold, "match-threshold", 0, "fuzzy match threshold 1-100; 0 uses the default")
	flag.Float64Var(&opts.largeAmount, "alert-large", 0, "flag transactions with total_amount above this; 0 disables")
	flag.BoolVar(&opts.digest, "digest", false, "print a plain-text digest per input file")
	validate := flag.Bool("validate", false, "validate the configuration and exit")

	var (
		metricsBackend string
		gatewayURL     string
		statsdAddr     string
	)
	flag.StringVar(&metricsBackend, "metrics-backend", "none", "metrics backend (pushgateway, datadog, none)")
	flag.StringVar(&gatewayURL, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.StringVar(&statsdAddr, "statsd-addr", "", "DogStatsD address for the datadog backend")
	opts.verbose = flag.Bool("v", false, "enable verbose logs")

	flag.Parse()
	opts.files = flag.Args()

	f, err := os.Open(opts.configPath)
	if err != nil {
		fatalf("open config: %v", err)
	}
	cfg, err := config.Load(f)
	f.Close()
	if err != nil {
		fatalf("load config: %v", err)
	}

	issues := config.Validate(cfg)
	hasError := false
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		if iss.Severity == config.SeverityError {
			hasError = true
		}
	}
	if hasError {
		log.Printf("configuration is invalid: %v", opts.configPath)
		os.Exit(1)
	}
	if *validate {
		log.Printf("configuration is valid: %v", opts.configPath)
		os.Exit(0)
	}

	reg, err := cfg.Registry()
	if err != nil {
		fatalf("build registry: %v", err)
	}

	if len(opts.files) == 0 {
		fatalf("no input files; usage: erpingest [flags] file.csv [file.csv ...]")
	}

	setupMetrics(metricsBackend, gatewayURL, statsdAddr, *opts.verbose)
	defer func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}()

	ctx := context.Background()
	start := time.Now()

	if err := run(ctx, reg, opts); err != nil {
		log.Fatalf("%v", err)
	}

	if *opts.verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
}

// setupMetrics installs the requested metrics backend; flag values win over
// environment variables. Failure to initialize a backend downgrades to the
// nop backend rather than aborting the run.
func setupMetrics(name, gatewayURL, statsdAddr string, verbose bool) {
	if name == "" {
		name = os.Getenv("METRICS_BACKEND")
	}
	switch name {
	case "pushgateway":
		if gatewayURL == "" {
			gatewayURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gatewayURL == "" {
			gatewayURL = "http://localhost:9091"
		}
		b, err := prompush.NewBackend("erpingest", gatewayURL)
		if err != nil {
			log.Printf("metrics: failed to init pushgateway backend: %v; using nop", err)
			return
		}
		log.Printf("metrics: backend=pushgateway url=%v", gatewayURL)
		metrics.SetBackend(b)

	case "datadog":
		if statsdAddr == "" {
			statsdAddr = os.Getenv("DD_DOGSTATSD_ADDR")
		}
		if statsdAddr == "" {
			statsdAddr = "127.0.0.1:8125"
		}
		b, err := datadog.NewBackend(datadog.Config{Addr: statsdAddr, Namespace: "erpingest."})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
			return
		}
		log.Printf("metrics: backend=datadog addr=%v", statsdAddr)
		metrics.SetBackend(b)

	case "", "none":
		if verbose {
			log.Printf("metrics: disabled (backend=%q)", name)
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", name)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
