//go:build ocr

package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// Masker locates words with Tesseract. A single client is reused across
// calls and guarded by a mutex, since Tesseract clients are not safe for
// concurrent use.
type Masker struct {
	mu            sync.Mutex
	client        *gosseract.Client
	minConfidence float64
}

// NewMasker starts a Tesseract client for language ("eng" when empty).
func NewMasker(language string) (*Masker, error) {
	if language == "" {
		language = DefaultLanguage
	}
	client := gosseract.NewClient()
	if err := client.SetLanguage(language); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	return &Masker{client: client, minConfidence: DefaultMinConfidence}, nil
}

// Words runs recognition on img and returns every word with its box in
// img's coordinate space.
func (m *Masker) Words(img image.Image) ([]Word, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}
	boxes, err := m.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	origin := img.Bounds().Min
	words := make([]Word, 0, len(boxes))
	for _, box := range boxes {
		words = append(words, Word{
			Text:       strings.TrimSpace(box.Word),
			Confidence: float64(box.Confidence) / 100.0,
			Box:        box.Box.Add(origin),
		})
	}
	return words, nil
}

// TextRegions returns the padded boxes of confidently recognized words.
func (m *Masker) TextRegions(img image.Image) ([]image.Rectangle, error) {
	words, err := m.Words(img)
	if err != nil {
		return nil, err
	}
	return wordRegions(words, m.minConfidence, 2, img.Bounds()), nil
}

// Close releases the Tesseract client.
func (m *Masker) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.client.Close()
}
