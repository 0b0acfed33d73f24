// Command estimatex converts construction-estimate documents (SIX XML and
// LX/MX Excel return sheets) into the canonical estimate model and exports
// the result as CSV and JSON.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"estimatex/internal/config"
	"estimatex/internal/exporter"
	"estimatex/internal/infrastructure"
	"estimatex/internal/ingest"
)

func main() {
	var (
		configFile = flag.String("config", "", "path to YAML config file")
		formatFlag = flag.String("format", "", "input format: six, lx or mx (inferred from extension when empty)")
		sheet      = flag.String("sheet", "", "workbook sheet name (Excel formats)")
		outDir     = flag.String("out", "", "output directory for CSV/JSON exports (defaults to configured reports dir)")
		inDir      = flag.String("in", "", "parse every supported file in this directory instead of single files")
	)
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if _, err := infrastructure.InitializeLogger(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if *outDir == "" {
		*outDir = cfg.Paths.ReportsDir
	}

	var format ingest.Format
	if *formatFlag != "" {
		format, err = ingest.ParseFormat(*formatFlag)
		if err != nil {
			slog.Error("invalid format flag", "error", err)
			os.Exit(1)
		}
	}

	hints := cfg.Excel.Hints()
	if *sheet != "" {
		hints.Sheet = *sheet
	}
	opts := ingest.Options{Hints: hints}

	paths := flag.Args()
	if *inDir != "" {
		paths, err = discoverInputs(*inDir)
		if err != nil {
			slog.Error("failed to list input directory", "dir", *inDir, "error", err)
			os.Exit(1)
		}
	}
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "usage: estimatex [flags] file...")
		flag.PrintDefaults()
		os.Exit(2)
	}

	svc := ingest.NewService(cfg.Parse.RateRPS, cfg.Parse.RateBurst, cfg.Parse.MaxFileBytes)
	items := svc.ProcessBatch(context.Background(), paths, format, opts)

	failed := 0
	for _, item := range items {
		if item.Err != nil {
			slog.Error("parse failed", "path", item.Path, "error", item.Err)
			failed++
			continue
		}
		if err := export(*outDir, item); err != nil {
			slog.Error("export failed", "path", item.Path, "error", err)
			failed++
		}
	}

	slog.Info("done",
		slog.Int("processed", len(items)-failed),
		slog.Int("failed", failed))
	if failed > 0 {
		os.Exit(1)
	}
}

func discoverInputs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := ingest.InferFormat(e.Name()); ok {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	return paths, nil
}

func export(outDir string, item ingest.BatchItem) error {
	base := strings.TrimSuffix(filepath.Base(item.Path), filepath.Ext(item.Path))
	est := item.Result.Estimate

	if err := exporter.WriteItemsCSV(filepath.Join(outDir, base+"_items.csv"), est); err != nil {
		return err
	}
	if err := exporter.WriteWbsCSV(filepath.Join(outDir, base+"_wbs.csv"), est); err != nil {
		return err
	}
	return exporter.WriteJSON(filepath.Join(outDir, base+".json"), filepath.Base(item.Path), est, item.Result.Diagnostics)
}
