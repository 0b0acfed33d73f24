// Package exporter writes a normalized estimate to CSV and JSON files for
// downstream storage and analytics.
package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"estimatex/pkg/contracts/domain"
)

// itemHeaders is the column layout of the items CSV.
var itemHeaders = []string{
	"progressive_id", "code", "description", "quantity",
	"unit_price", "amount", "wbs_ids", "related_item_id",
}

// wbsHeaders is the column layout of the WBS levels CSV.
var wbsHeaders = []string{"level_code", "description", "parent_code"}

// WriteItemsCSV writes the estimate's items to path. The file starts with
// a UTF-8 BOM so spreadsheet tools pick up the encoding.
func WriteItemsCSV(path string, est *domain.NormalizedEstimate) error {
	records := make([][]string, 0, len(est.Items))
	for _, it := range est.Items {
		records = append(records, itemRecord(it))
	}
	return writeCSV(path, itemHeaders, records)
}

// WriteWbsCSV writes the estimate's WBS levels to path.
func WriteWbsCSV(path string, est *domain.NormalizedEstimate) error {
	records := make([][]string, 0, len(est.WbsLevels))
	for _, l := range est.WbsLevels {
		parent := ""
		if l.ParentCode != nil {
			parent = *l.ParentCode
		}
		records = append(records, []string{l.LevelCode, l.Description, parent})
	}
	return writeCSV(path, wbsHeaders, records)
}

func itemRecord(it domain.Item) []string {
	unitPrice := ""
	if it.UnitPrice != nil {
		unitPrice = it.UnitPrice.StringFixed(2)
	}
	amount := ""
	if it.Amount != nil {
		amount = it.Amount.StringFixed(2)
	}
	related := ""
	if it.RelatedItemID != nil {
		related = fmt.Sprintf("%d", *it.RelatedItemID)
	}
	return []string{
		fmt.Sprintf("%d", it.ProgressiveID),
		it.Code,
		it.Description,
		it.Quantity.String(),
		unitPrice,
		amount,
		strings.Join(it.WbsIDs, "|"),
		related,
	}
}

func writeCSV(path string, headers []string, records [][]string) error {
	slog.Info("writing CSV file",
		slog.String("path", path),
		slog.Int("record_count", len(records)))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	// UTF-8 BOM for Excel compatibility.
	if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	w := csv.NewWriter(file)
	defer w.Flush()

	if err := w.Write(headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, record := range records {
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	w.Flush()
	return w.Error()
}
