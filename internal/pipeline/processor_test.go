package pipeline

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/joseph-ayodele/label-scanner/internal/common"
	"github.com/joseph-ayodele/label-scanner/internal/ingress"
	"github.com/joseph-ayodele/label-scanner/internal/llm"
	"github.com/joseph-ayodele/label-scanner/internal/ocr"
)

type stubEngine struct {
	frags []ocr.Fragment
	err   error
}

func (s *stubEngine) Recognize(ctx context.Context, path string) ([]ocr.Fragment, error) {
	return s.frags, s.err
}

func (s *stubEngine) Close() error { return nil }

type stubGenerator struct {
	calls    int
	lastReq  llm.GenerateRequest
	response string
	err      error
}

func (s *stubGenerator) GenerateListing(ctx context.Context, req llm.GenerateRequest) (llm.GenerateResult, error) {
	s.calls++
	s.lastReq = req
	if s.err != nil {
		return llm.GenerateResult{}, s.err
	}
	return llm.GenerateResult{Text: s.response, ModelName: "stub"}, nil
}

const labelText = "NPK Fertilizer 19:19:19"

var labelFragments = []ocr.Fragment{
	{Text: "NPK", Confidence: 0.95},
	{Text: "Fertilizer", Confidence: 0.9},
	{Text: "smudge", Confidence: 0.4},
	{Text: "19:19:19", Confidence: 0.85},
}

const validListing = `{"listings":[{"Product Name":"NPK 19:19:19","Description":"Balanced fertilizer","Usage Instructions":"Dissolve in water"}]}`

func jpegDataURL() string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("fake-jpeg-bytes"))
}

func newProcessor(t *testing.T, eng ocr.Engine, gen llm.ListingGenerator) (*Processor, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := ingress.NewStore(dir, nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	ex := ocr.NewExtractor(ocr.Config{}, eng, nil)
	return NewProcessor(store, ex, gen, nil), dir
}

func dirEntries(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	return len(entries)
}

func TestProcessHappyPath(t *testing.T) {
	gen := &stubGenerator{response: validListing}
	p, dir := newProcessor(t, &stubEngine{frags: labelFragments}, gen)

	res, err := p.Process(context.Background(), ScanRequest{ImageDataURL: jpegDataURL()})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.ExtractedText != labelText {
		t.Errorf("ExtractedText = %q, want %q", res.ExtractedText, labelText)
	}
	if res.Listing != validListing {
		t.Errorf("Listing = %q", res.Listing)
	}
	if gen.calls != 1 {
		t.Errorf("generator called %d times, want once", gen.calls)
	}
	if want := llm.Preamble + labelText; gen.lastReq.Prompt != want {
		t.Errorf("prompt = %q, want preamble + extracted text", gen.lastReq.Prompt)
	}
	if gen.lastReq.ResponseSchema == nil {
		t.Error("generator called without a response schema")
	}
	if n := dirEntries(t, dir); n != 0 {
		t.Errorf("%d files left in upload dir after success", n)
	}
}

func TestProcessMissingImage(t *testing.T) {
	p, dir := newProcessor(t, &stubEngine{frags: labelFragments}, &stubGenerator{response: validListing})

	_, err := p.Process(context.Background(), ScanRequest{ImageDataURL: ""})
	if !errors.Is(err, common.ErrMissingImage) {
		t.Fatalf("err = %v, want ErrMissingImage", err)
	}
	if n := dirEntries(t, dir); n != 0 {
		t.Errorf("%d files written despite missing image", n)
	}
}

func TestProcessNoTextExtracted(t *testing.T) {
	gen := &stubGenerator{response: validListing}
	p, dir := newProcessor(t, &stubEngine{frags: []ocr.Fragment{{Text: "blur", Confidence: 0.2}}}, gen)

	_, err := p.Process(context.Background(), ScanRequest{ImageDataURL: jpegDataURL()})
	if !errors.Is(err, common.ErrNoTextExtracted) {
		t.Fatalf("err = %v, want ErrNoTextExtracted", err)
	}
	if gen.calls != 0 {
		t.Error("generator must not be called when extraction is empty")
	}
	if n := dirEntries(t, dir); n != 0 {
		t.Errorf("%d files left in upload dir after failure", n)
	}
}

func TestProcessGenerationFailure(t *testing.T) {
	gen := &stubGenerator{err: errors.New("quota exceeded")}
	p, dir := newProcessor(t, &stubEngine{frags: labelFragments}, gen)

	_, err := p.Process(context.Background(), ScanRequest{ImageDataURL: jpegDataURL()})
	if !errors.Is(err, common.ErrGeneration) {
		t.Fatalf("err = %v, want ErrGeneration", err)
	}
	if n := dirEntries(t, dir); n != 0 {
		t.Errorf("%d files left in upload dir after generation failure", n)
	}
}

func TestProcessRejectsInvalidModelPayload(t *testing.T) {
	gen := &stubGenerator{response: `{"listings":[{"Product Name":"only one field"}]}`}
	p, _ := newProcessor(t, &stubEngine{frags: labelFragments}, gen)

	_, err := p.Process(context.Background(), ScanRequest{ImageDataURL: jpegDataURL()})
	if !errors.Is(err, common.ErrGeneration) {
		t.Fatalf("err = %v, want ErrGeneration for schema-invalid payload", err)
	}
}

func TestProcessRejectsDuplicateFields(t *testing.T) {
	p, _ := newProcessor(t, &stubEngine{frags: labelFragments}, &stubGenerator{response: validListing})

	_, err := p.Process(context.Background(), ScanRequest{
		ImageDataURL: jpegDataURL(),
		Fields:       []string{"Description", "Description"},
	})
	if !errors.Is(err, common.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

// Two identical requests get independent stored-image lifecycles.
func TestProcessIdempotent(t *testing.T) {
	gen := &stubGenerator{response: validListing}
	p, dir := newProcessor(t, &stubEngine{frags: labelFragments}, gen)

	req := ScanRequest{ImageDataURL: jpegDataURL()}
	for i := 0; i < 2; i++ {
		res, err := p.Process(context.Background(), req)
		if err != nil {
			t.Fatalf("Process #%d: %v", i+1, err)
		}
		if res.ExtractedText != labelText {
			t.Errorf("Process #%d ExtractedText = %q", i+1, res.ExtractedText)
		}
	}
	if gen.calls != 2 {
		t.Errorf("generator called %d times, want 2", gen.calls)
	}
	if n := dirEntries(t, dir); n != 0 {
		t.Errorf("%d files left in upload dir", n)
	}
}

func TestProcessPromptTruncation(t *testing.T) {
	frags := make([]ocr.Fragment, 0, 2000)
	for i := 0; i < 2000; i++ {
		frags = append(frags, ocr.Fragment{Text: "word", Confidence: 0.9})
	}
	gen := &stubGenerator{response: validListing}
	p, _ := newProcessor(t, &stubEngine{frags: frags}, gen)

	if _, err := p.Process(context.Background(), ScanRequest{ImageDataURL: jpegDataURL()}); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !strings.HasPrefix(gen.lastReq.Prompt, llm.Preamble) {
		t.Error("prompt lost its preamble")
	}
	if len(gen.lastReq.Prompt) > len(llm.Preamble)+3000 {
		t.Errorf("prompt length %d, extracted text should be capped", len(gen.lastReq.Prompt))
	}
}
