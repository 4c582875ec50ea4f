package sheet

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/sheetmusic-mcp/internal/shapes"
)

// LineResult holds the scanned state of one sheet line.
type LineResult struct {
	Line   *SheetLine
	Finder *shapes.Finder
}

// ScanAll scans every line of s with its own Finder. Lines are scanned
// concurrently; results are in line order. The first error cancels the
// remaining scans.
func ScanAll(ctx context.Context, s *Sheet, newFinder func() *shapes.Finder, coarse, fine shapes.Classifier) ([]LineResult, error) {
	results := make([]LineResult, len(s.Lines))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, line := range s.Lines {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f := newFinder()
			if err := f.ScanLine(line, coarse, fine); err != nil {
				return fmt.Errorf("line %d: %w", i, err)
			}
			results[i] = LineResult{Line: line, Finder: f}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
