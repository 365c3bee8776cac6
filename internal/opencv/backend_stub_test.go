//go:build !gocv

package opencv

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/shape-tools-mcp/internal/imaging"
)

func TestStubUnavailable(t *testing.T) {
	b, err := New()
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Nil(t, b)

	var stub Backend
	assert.Equal(t, "opencv", stub.Name())

	_, err = stub.Preprocess(image.NewGray(image.Rect(0, 0, 4, 4)), imaging.DefaultPreprocessOptions())
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = stub.Trace(imaging.NewMask(4, 4))
	assert.ErrorIs(t, err, ErrUnavailable)
}
