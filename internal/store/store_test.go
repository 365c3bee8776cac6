package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/shape-tools-mcp/internal/analysis"
	"github.com/ironsheep/shape-tools-mcp/internal/config"
	"github.com/ironsheep/shape-tools-mcp/internal/detection"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func batchResults() []analysis.FileResult {
	return []analysis.FileResult{
		{
			Path:     "a.png",
			Duration: 12 * time.Millisecond,
			Result: &analysis.Result{Records: []analysis.ShapeRecord{
				{Index: 1, Label: detection.ShapeSquare, Area: 9801, Perimeter: 396, Circularity: 0.7854, Vertices: 4,
					Bounds: detection.Bounds{X1: 50, Y1: 50, X2: 149, Y2: 149}},
				{Index: 2, Label: detection.ShapeCircle, Area: 7800.5, Perimeter: 330.25, Circularity: 0.9, Vertices: 10,
					Bounds: detection.Bounds{X1: 160, Y1: 10, X2: 210, Y2: 60}},
			}},
		},
		{Path: "broken.png", Err: errors.New("failed to decode image")},
		{
			Path: "b.png",
			Result: &analysis.Result{Records: []analysis.ShapeRecord{
				{Index: 1, Label: detection.ShapeTriangle, Area: 1200, Perimeter: 170, Circularity: 0.52, Vertices: 3},
			}},
		},
	}
}

func TestSaveAndReadRun(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	run, err := NewRun("native", config.Default(), batchResults())
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)
	assert.Contains(t, run.Config, `"blur_kernel_size":5`)
	require.NoError(t, s.SaveRun(ctx, run))

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
	assert.Equal(t, "native", runs[0].Backend)
	assert.Equal(t, 3, runs[0].Files)
	assert.Equal(t, 1, runs[0].Failed)
	assert.Equal(t, 3, runs[0].Objects)
	assert.WithinDuration(t, run.StartedAt, runs[0].StartedAt, time.Second)

	records, err := s.Records(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "a.png", records[0].Path)
	assert.Equal(t, detection.ShapeSquare, records[0].Shape)
	assert.Equal(t, detection.Bounds{X1: 50, Y1: 50, X2: 149, Y2: 149}, records[0].Bounds)
	assert.Equal(t, 2, records[1].Object)
	assert.Equal(t, 7800.5, records[1].Area)
	assert.Equal(t, "b.png", records[2].Path)
	assert.Equal(t, detection.ShapeTriangle, records[2].Shape)
}

func TestRunsNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	older := &Run{ID: "older", StartedAt: time.Now().Add(-time.Hour), Backend: "native", Config: "{}"}
	newer := &Run{StartedAt: time.Now(), Backend: "opencv", Config: "{}"}
	require.NoError(t, s.SaveRun(ctx, older))
	require.NoError(t, s.SaveRun(ctx, newer))
	assert.NotEmpty(t, newer.ID)

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, newer.ID, runs[0].ID)
	assert.Equal(t, "older", runs[1].ID)
	assert.Zero(t, runs[1].Files)
}

func TestDuplicateRunRejected(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	run := &Run{ID: "same", Config: "{}", Files: []File{{Path: "x.png"}}}
	require.NoError(t, s.SaveRun(ctx, run))
	assert.Error(t, s.SaveRun(ctx, run))

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 1, runs[0].Files)
}

func TestRecordsUnknownRun(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Records(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.SaveRun(context.Background(), &Run{ID: "kept", Config: "{}"}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	runs, err := s.Runs(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "kept", runs[0].ID)
}
