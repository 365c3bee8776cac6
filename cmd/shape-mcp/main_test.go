package main

import (
	"bytes"
	"image"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateEnv keeps the user's config files and SHAPE_MCP_* variables out of
// the test.
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("SHAPE_MCP_CONFIG", "")
	t.Setenv("SHAPE_MCP_DATABASE", "")
	t.Setenv("SHAPE_MCP_LOG_LEVEL", "error")
}

func squarePNG(t *testing.T, dir string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 160, 160))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(30, 30, 130, 130), image.Black, image.Point{}, draw.Src)

	path := filepath.Join(dir, "square.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestHelpAndVersion(t *testing.T) {
	isolateEnv(t)
	var out, errOut bytes.Buffer

	assert.Equal(t, 0, run([]string{"help"}, &out, &errOut))
	assert.True(t, strings.HasPrefix(out.String(), "shape-mcp - detect"))
	assert.Contains(t, out.String(), "  shape-mcp analyze [options] image...")

	for _, arg := range []string{"version", "--version", "-v"} {
		out.Reset()
		assert.Equal(t, 0, run([]string{arg}, &out, &errOut), arg)
		assert.Contains(t, out.String(), "shape-tools-mcp dev", arg)
	}

	for _, arg := range []string{"--help", "-h"} {
		out.Reset()
		assert.Equal(t, 0, run([]string{arg}, &out, &errOut), arg)
		assert.True(t, strings.HasPrefix(out.String(), "shape-mcp - detect"), arg)
	}
}

func TestUnknownCommand(t *testing.T) {
	isolateEnv(t)
	var out, errOut bytes.Buffer
	assert.Equal(t, 2, run([]string{"draw"}, &out, &errOut))
	assert.Contains(t, errOut.String(), `unknown command "draw"`)
}

func TestAnalyzeAndRuns(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	img := squarePNG(t, dir)
	db := filepath.Join(dir, "runs.db")
	outDir := t.TempDir()

	var out, errOut bytes.Buffer
	code := run([]string{"analyze", "--format", "csv", "--out", outDir, "--db", db, "--set", "circularity_first=true", "--set", "circularity_threshold=0.85", img}, &out, &errOut)
	require.Equal(t, 0, code, errOut.String())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], img+",1,Square,"))
	assert.FileExists(t, filepath.Join(outDir, "square.annotated.png"))

	m := regexp.MustCompile(`recorded run (\S+) in`).FindStringSubmatch(errOut.String())
	require.Len(t, m, 2)

	out.Reset()
	require.Equal(t, 0, run([]string{"runs", "--db", db}, &out, &errOut))
	assert.Contains(t, out.String(), m[1])

	out.Reset()
	require.Equal(t, 0, run([]string{"runs", "--db", db, m[1]}, &out, &errOut))
	assert.Contains(t, out.String(), "Square")
}

func TestAnalyzeFailures(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	var out, errOut bytes.Buffer

	assert.Equal(t, 1, run([]string{"analyze"}, &out, &errOut))
	assert.Equal(t, 1, run([]string{"analyze", "--format", "xml", "x.png"}, &out, &errOut))
	assert.Equal(t, 1, run([]string{"analyze", "--set", "blur_kernel_size=4", "x.png"}, &out, &errOut))
	assert.Equal(t, 1, run([]string{"analyze", "--set", "novalue", "x.png"}, &out, &errOut))

	// A missing file is reported in the table and fails the command.
	out.Reset()
	code := run([]string{"analyze", "--no-images", squarePNG(t, dir), filepath.Join(dir, "missing.png")}, &out, &errOut)
	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "Detected Objects: 1")
	assert.Contains(t, out.String(), "error: ")
}
