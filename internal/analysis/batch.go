package analysis

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/shape-tools-mcp/internal/imaging"
	"github.com/ironsheep/shape-tools-mcp/internal/logging"
)

// FileResult is the outcome for one file of a batch. Exactly one of Result
// and Err is set; Error repeats Err as text for JSON reports.
type FileResult struct {
	Path     string        `json:"path"`
	Result   *Result       `json:"result,omitempty"`
	Err      error         `json:"-"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// Batch analyzes every file in paths with at most workers files in flight
// (one per CPU when workers <= 0). Results come back in the order of paths.
//
// A file that cannot be read or analyzed gets its error in FileResult.Err
// and the batch continues. The returned error is only set when ctx is
// cancelled; the results gathered so far are still returned, and files that
// never started carry the context error.
func Batch(ctx context.Context, a *Analyzer, paths []string, workers int) ([]FileResult, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	log := logging.Component("batch")
	results := make([]FileResult, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range paths {
		i, path := i, path // per-iteration copies for go < 1.22
		results[i].Path = path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				results[i].Error = err.Error()
				return err
			}
			start := time.Now()
			res, err := analyzeFile(a, path)
			results[i].Duration = time.Since(start)
			if err != nil {
				results[i].Err = err
				results[i].Error = err.Error()
				log.Warn().Str("path", path).Err(err).Msg("analysis failed")
				return nil
			}
			results[i].Result = res
			log.Info().
				Str("path", path).
				Int("objects", res.Count()).
				Dur("elapsed", results[i].Duration).
				Msg("analyzed")
			return nil
		})
	}

	return results, g.Wait()
}

func analyzeFile(a *Analyzer, path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := imaging.Decode(f)
	if err != nil {
		return nil, err
	}
	return a.Analyze(img)
}

// AnnotatedPath returns where the annotated copy of path is written:
// "dir/photo.jpg" becomes "outDir/photo.annotated.png". An empty outDir
// keeps the source directory.
func AnnotatedPath(path, outDir string) string {
	dir := filepath.Dir(path)
	if outDir != "" {
		dir = outDir
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return filepath.Join(dir, base+".annotated.png")
}

// SaveAnnotated writes the annotated image of every successful result next
// to its source (or into outDir) and returns the written paths.
func SaveAnnotated(results []FileResult, outDir string) ([]string, error) {
	written := make([]string, 0, len(results))
	for _, fr := range results {
		if fr.Result == nil || fr.Result.Annotated == nil {
			continue
		}
		out := AnnotatedPath(fr.Path, outDir)
		if err := imaging.Save(fr.Result.Annotated, out); err != nil {
			return written, err
		}
		written = append(written, out)
	}
	return written, nil
}

// WriteBatchCSV writes one CSV with the records of every successful file,
// tagged with the file path in the source column.
func WriteBatchCSV(w io.Writer, results []FileResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, fr := range results {
		if fr.Result == nil {
			continue
		}
		if err := fr.Result.writeCSVRows(cw, fr.Path); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteBatchTable prints the table of every file in turn, or its error.
func WriteBatchTable(w io.Writer, results []FileResult) error {
	for i, fr := range results {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "== %s\n", fr.Path); err != nil {
			return err
		}
		if fr.Err != nil {
			if _, err := fmt.Fprintf(w, "error: %v\n", fr.Err); err != nil {
				return err
			}
			continue
		}
		if fr.Result == nil {
			continue
		}
		if err := fr.Result.WriteTable(w); err != nil {
			return err
		}
	}
	return nil
}
