// Package ingest is the entry point of the parsing core: it dispatches a
// raw document to the parser matching its declared format and returns the
// canonical estimate. The format set is closed; dispatch is resolved once
// per call.
package ingest

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "estimatex/internal/errors"
	"estimatex/internal/excelreturn"
	"estimatex/internal/six"
	"estimatex/pkg/contracts/domain"
)

// Format discriminates the known source document formats.
type Format string

const (
	FormatSIX Format = "six"
	FormatLX  Format = "lx" // Excel return, one item per head row
	FormatMX  Format = "mx" // Excel return with totals combined by code
)

// ParseFormat resolves a format discriminator string. The Excel variants
// accept both the bare and the "excel-" prefixed spelling.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "six":
		return FormatSIX, nil
	case "lx", "excel-lx":
		return FormatLX, nil
	case "mx", "excel-mx":
		return FormatMX, nil
	}
	return "", fmt.Errorf("unknown format %q (known: six, lx, mx)", s)
}

// InferFormat guesses a format from the file extension. The guess is a
// convenience for callers without a hint; an explicit format always wins.
func InferFormat(filename string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xml", ".six":
		return FormatSIX, true
	case ".xlsx", ".xlsm":
		return FormatLX, true
	}
	return "", false
}

// Options carries the per-call parser configuration.
type Options struct {
	// Hints names the workbook columns for the Excel formats. Ignored for SIX.
	Hints excelreturn.ColumnHints
}

// Result is a completed parse: the canonical estimate plus the recoverable
// diagnostics accumulated while producing it.
type Result struct {
	Estimate    *domain.NormalizedEstimate
	Diagnostics apperrors.Diagnostics
}

// ProcessFile parses one document buffer to completion. filename is used
// for diagnostics only. Either a complete estimate is returned or an
// error; never a partial result.
func ProcessFile(data []byte, format Format, filename string, opts Options) (*Result, error) {
	var (
		est   *domain.NormalizedEstimate
		diags apperrors.Diagnostics
		err   error
	)

	switch format {
	case FormatSIX:
		est, diags, err = six.Parse(data, filename)
	case FormatLX, FormatMX:
		var f *excelize.File
		f, err = excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, apperrors.Structural("cannot open workbook", err)
		}
		defer f.Close()
		est, diags, err = excelreturn.Parse(f, opts.Hints, format == FormatMX)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return nil, err
	}

	slog.Info("document parsed",
		slog.String("format", string(format)),
		slog.String("filename", filename),
		slog.Int("items", len(est.Items)),
		slog.Int("diagnostics", len(diags)))

	return &Result{Estimate: est, Diagnostics: diags}, nil
}

// ProcessPath is a convenience wrapper that loads a local file and parses
// it. When format is empty it is inferred from the extension. maxBytes
// bounds the file size read (0 means unbounded); oversized files are
// rejected before any parsing starts.
func ProcessPath(path string, format Format, opts Options, maxBytes int64) (*Result, error) {
	if maxBytes > 0 {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("cannot stat %s: %w", path, err)
		}
		if info.Size() > maxBytes {
			return nil, fmt.Errorf("%s is %d bytes, over the %d byte limit", path, info.Size(), maxBytes)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	if format == "" {
		inferred, ok := InferFormat(path)
		if !ok {
			return nil, fmt.Errorf("cannot infer format of %s, pass one explicitly", path)
		}
		format = inferred
	}

	return ProcessFile(data, format, filepath.Base(path), opts)
}
