package exporter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	apperrors "estimatex/internal/errors"
	"estimatex/pkg/contracts/domain"
)

// Envelope is the JSON export shape: the estimate plus the diagnostics the
// parse produced and a batch identity for audit.
type Envelope struct {
	ExportID    string                     `json:"export_id"`
	ExportedAt  time.Time                  `json:"exported_at"`
	SourceFile  string                     `json:"source_file,omitempty"`
	Estimate    *domain.NormalizedEstimate `json:"estimate"`
	Diagnostics apperrors.Diagnostics      `json:"diagnostics,omitempty"`
}

// WriteJSON writes the estimate and its diagnostics to path as one
// pretty-printed JSON document.
func WriteJSON(path, sourceFile string, est *domain.NormalizedEstimate, diags apperrors.Diagnostics) error {
	env := Envelope{
		ExportID:    uuid.NewString(),
		ExportedAt:  time.Now().UTC(),
		SourceFile:  sourceFile,
		Estimate:    est,
		Diagnostics: diags,
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal estimate: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
