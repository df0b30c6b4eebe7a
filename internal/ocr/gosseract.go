package ocr

import (
	"context"
	"fmt"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// GosseractEngine recognizes text with a long-lived tesseract client.
// Initializing tesseract per request is expensive, so the client is built
// once for the configured languages and reused; the C API is not
// concurrency-safe, hence the mutex.
type GosseractEngine struct {
	mu     sync.Mutex
	client *gosseract.Client
}

func NewGosseractEngine(languages []string, tessdataDir string) (*GosseractEngine, error) {
	client := gosseract.NewClient()
	if tessdataDir != "" {
		if err := client.SetTessdataPrefix(tessdataDir); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	if err := client.SetLanguage(languages...); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("set languages %v: %w", languages, err)
	}
	return &GosseractEngine{client: client}, nil
}

func (g *GosseractEngine) Recognize(ctx context.Context, path string) ([]Fragment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.client.SetImage(path); err != nil {
		return nil, fmt.Errorf("set image %s: %w", path, err)
	}
	boxes, err := g.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("recognize %s: %w", path, err)
	}

	frags := make([]Fragment, 0, len(boxes))
	for _, b := range boxes {
		// tesseract reports word confidence 0..100
		frags = append(frags, Fragment{
			Text:       b.Word,
			Confidence: float32(b.Confidence / 100.0),
		})
	}
	return frags, nil
}

func (g *GosseractEngine) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client == nil {
		return nil
	}
	err := g.client.Close()
	g.client = nil
	return err
}
