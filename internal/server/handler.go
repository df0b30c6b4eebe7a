package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/joseph-ayodele/label-scanner/internal/common"
	"github.com/joseph-ayodele/label-scanner/internal/pipeline"
)

type scanRequestBody struct {
	Image *string `json:"image"`
}

type scanResponseBody struct {
	ExtractedText  string `json:"extracted_text"`
	GeminiResponse string `json:"gemini_response"`
}

type errorBody struct {
	Error string `json:"error"`
}

// handleScan is the POST / endpoint: JSON {"image": "<data-url>"} in,
// extracted text plus generated listing out.
func (s *Service) handleScan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rid := common.RequestIDFromContext(ctx)

	var body scanRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.logger.Warn("http.scan.bad_body", "req_id", rid, "error", err)
		writeError(w, fmt.Errorf("%w: malformed JSON body", common.ErrInvalidInput))
		return
	}
	image := ""
	if body.Image != nil {
		image = *body.Image
	}

	res, err := s.processor.Process(ctx, pipeline.ScanRequest{ImageDataURL: image})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, scanResponseBody{
		ExtractedText:  res.ExtractedText,
		GeminiResponse: res.Listing,
	})
}

func (s *Service) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexPage)
}

func (s *Service) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, common.HTTPStatus(err), errorBody{Error: common.ClientMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
