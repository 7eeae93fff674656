package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"erpingest/internal/alert"
	"erpingest/internal/delivery"
	"erpingest/internal/match"
	"erpingest/internal/metrics"
	csvparser "erpingest/internal/parser/csv"
	"erpingest/internal/pipeline"
	"erpingest/internal/quality"
	"erpingest/internal/schema"
	"erpingest/internal/storage"
)

// options carries the flag values that shape a run.
type options struct {
	configPath  string
	profile     string
	storageKind string
	dsn         string
	table       string
	mode        string
	createTable bool
	batchSize   int
	workers     int
	threshold   int
	largeAmount float64
	digest      bool
	verbose     *bool
	files       []string
}

// run processes every input file through the pipeline and, when a warehouse
// backend is configured, loads the survivors and prints post-load alerts.
//
// In replace mode the first file is processed alone so its load clears the
// table before any parallel append lands.
func run(ctx context.Context, reg *schema.Registry, opts options) error {
	mode := storage.WriteMode(opts.mode)
	if !mode.Valid() {
		return fmt.Errorf("invalid -mode %q (want %q or %q)", opts.mode, storage.ModeReplace, storage.ModeAppend)
	}

	var repo storage.Repository
	if opts.storageKind != "" {
		var err error
		repo, err = storage.New(ctx, storage.Config{Kind: opts.storageKind, DSN: opts.dsn, Table: opts.table})
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		defer repo.Close()

		if opts.createTable {
			if err := storage.EnsureTable(ctx, repo, tableColumns(reg.Canonical())); err != nil {
				return fmt.Errorf("create table: %w", err)
			}
		}
	}

	driver := &pipeline.Driver{
		Registry: reg,
		Matcher:  match.Matcher{Threshold: opts.threshold},
	}

	files := opts.files
	if mode == storage.ModeReplace && len(files) > 0 {
		if err := processFile(ctx, driver, repo, opts, files[0], storage.ModeReplace); err != nil {
			return err
		}
		files = files[1:]
		mode = storage.ModeAppend
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers)
	for _, path := range files {
		g.Go(func() error {
			return processFile(gctx, driver, repo, opts, path, mode)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if repo != nil && opts.digest {
		an := alert.Analyzer{Repo: repo, Table: opts.table, LargeAmount: opts.largeAmount}
		fmt.Print(delivery.Alerts(an.Critical(ctx)))
	}
	return nil
}

// loadColumns is the warehouse column order: the canonical schema plus the
// provenance columns.
func loadColumns(c schema.Canonical) []string {
	cols := make([]string, 0, len(c.Fields)+2)
	cols = append(cols, c.Fields...)
	return append(cols, pipeline.ColLoadedAt, pipeline.ColSourceFile)
}

// tableColumns types the warehouse columns for bootstrap: the numeric
// canonical fields become number columns, everything else text.
func tableColumns(c schema.Canonical) []storage.Column {
	numeric := make(map[string]bool)
	for _, f := range schema.NumericFields() {
		numeric[f] = true
	}
	cols := make([]storage.Column, 0, len(c.Fields)+2)
	for _, name := range loadColumns(c) {
		kind := storage.KindText
		if numeric[name] {
			kind = storage.KindNumber
		}
		cols = append(cols, storage.Column{Name: name, Kind: kind})
	}
	return cols
}

// processFile parses, normalizes, and optionally loads one input file.
func processFile(ctx context.Context, driver *pipeline.Driver, repo storage.Repository, opts options, path string, mode storage.WriteMode) error {
	start := time.Now()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	p := csvparser.NewParser(csvparser.Options{TrimSpace: true})
	headers, rows, skipped, err := p.Parse(f)
	f.Close()
	metrics.RecordStage("erpingest", "parse", err, time.Since(start))
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	metrics.RecordRows("erpingest", "parsed", int64(len(rows)))
	metrics.RecordRows("erpingest", "parse_skipped", int64(skipped))

	stageStart := time.Now()
	out, rep, err := driver.Run(headers, rows, path, opts.profile)
	metrics.RecordStage("erpingest", "normalize", err, time.Since(stageStart))
	for _, is := range rep.Issues {
		metrics.RecordIssues("erpingest", is.Rule, int64(is.Count))
	}
	metrics.RecordRows("erpingest", "removed", int64(rep.RowsRemoved))
	metrics.RecordRows("erpingest", "final", int64(rep.FinalRows))
	if err != nil {
		if errors.Is(err, quality.ErrAllRowsRemoved) {
			log.Printf("source=%s no usable rows: %v", path, err)
		}
		return err
	}

	if repo != nil {
		stageStart = time.Now()
		n, lerr := storage.LoadTable(ctx, repo, out, loadColumns(driver.Registry.Canonical()), opts.batchSize, mode)
		metrics.RecordStage("erpingest", "load", lerr, time.Since(stageStart))
		metrics.RecordRows("erpingest", "loaded", n)
		if lerr != nil {
			return fmt.Errorf("load %s: %w", path, lerr)
		}
	}

	if opts.digest {
		fmt.Print(delivery.Digest(rep))
	}
	return nil
}
