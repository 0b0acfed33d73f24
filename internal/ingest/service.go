package ingest

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Service guards the stateless parsers with the admission policy the
// surrounding application wants: a parse-request rate limit and an upload
// size cap. The parsers themselves stay free of cross-call state, so one
// Service may serve many concurrent callers.
type Service struct {
	limiter  *rate.Limiter
	maxBytes int64
}

// NewService creates a service admitting up to rps parse requests per
// second with the given burst. rps <= 0 disables limiting; maxBytes <= 0
// disables the size cap.
func NewService(rps float64, burst int, maxBytes int64) *Service {
	var limiter *rate.Limiter
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return &Service{limiter: limiter, maxBytes: maxBytes}
}

// Process admits and runs one parse request. The context bounds only the
// admission wait: once a parse starts it runs to completion, and the call
// is atomic: a complete result or an error.
func (s *Service) Process(ctx context.Context, data []byte, format Format, filename string, opts Options) (*Result, error) {
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("document %s is %d bytes, over the %d byte limit", filename, len(data), s.maxBytes)
	}
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("parse request not admitted: %w", err)
		}
	}
	return ProcessFile(data, format, filename, opts)
}

// BatchItem pairs one input path with its parse outcome.
type BatchItem struct {
	Path   string
	Result *Result
	Err    error
}

// ProcessBatch parses many files concurrently, one goroutine per document,
// bounded by the CPU count. Each file gets an independent result; one
// failing document does not stop the others.
func (s *Service) ProcessBatch(ctx context.Context, paths []string, format Format, opts Options) []BatchItem {
	items := make([]BatchItem, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			items[i] = s.processOne(ctx, path, format, opts)
			return nil
		})
	}
	// Workers only record per-item errors.
	_ = g.Wait()

	return items
}

func (s *Service) processOne(ctx context.Context, path string, format Format, opts Options) BatchItem {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return BatchItem{Path: path, Err: fmt.Errorf("parse request not admitted: %w", err)}
		}
	}
	res, err := ProcessPath(path, format, opts, s.maxBytes)
	return BatchItem{Path: path, Result: res, Err: err}
}
