package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/label-scanner/internal/common"
	"github.com/joseph-ayodele/label-scanner/internal/llm"
)

const retryBaseDelay = 500 * time.Millisecond

// GenerateListing implements llm.ListingGenerator against the Gemini
// generateContent endpoint, configured for JSON output constrained by the
// request's response schema. Transient failures (transport errors, 429,
// 5xx) are retried with exponential backoff and jitter up to
// cfg.MaxRetries times.
func (c *Client) GenerateListing(ctx context.Context, req llm.GenerateRequest) (llm.GenerateResult, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("llm.generate.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"prompt_len", len(req.Prompt),
	)

	body := map[string]any{
		"contents": []map[string]any{
			{
				"role":  "user",
				"parts": []map[string]any{{"text": req.Prompt}},
			},
		},
		"generationConfig": map[string]any{
			"responseMimeType": "application/json",
			"responseSchema":   req.ResponseSchema,
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/models/" + c.cfg.Model + ":generateContent"
	raw, err := c.post(ctx, rid, endpoint, body)
	if err != nil {
		c.logger.Error("llm.generate.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.GenerateResult{}, err
	}

	var gc struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
			FinishReason string `json:"finishReason"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(raw, &gc); err != nil {
		c.logger.Error("llm.generate.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.GenerateResult{}, fmt.Errorf("decode gemini response: %w", err)
	}
	if len(gc.Candidates) == 0 || len(gc.Candidates[0].Content.Parts) == 0 {
		c.logger.Error("llm.generate.no_content",
			"req_id", rid, "raw", string(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.GenerateResult{}, common.ErrNoContent
	}
	text := strings.TrimSpace(gc.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return llm.GenerateResult{}, common.ErrNoContent
	}

	c.logger.Info("llm.generate.ok",
		"req_id", rid,
		"candidates", len(gc.Candidates),
		"finish_reason", gc.Candidates[0].FinishReason,
		"bytes", len(text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return llm.GenerateResult{Text: text, ModelName: c.cfg.Model}, nil
}

func (c *Client) post(ctx context.Context, rid, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := retryBaseDelay << (attempt - 1)
			delay += rand.N(delay / 2) // jitter
			c.logger.Warn("llm.generate.retry",
				"req_id", rid, "attempt", attempt, "delay_ms", delay.Milliseconds(), "last_error", lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		raw, status, err := c.doOnce(ctx, url, b)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if !retryable(status, err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("gemini request failed after %d attempts: %w", c.cfg.MaxRetries+1, lastErr)
}

func (c *Client) doOnce(ctx context.Context, url string, body []byte) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("gemini http error: %w", err)
	}
	defer func(rc io.ReadCloser) {
		if cerr := rc.Close(); cerr != nil {
			c.logger.Warn("gemini response body close error", "error", cerr)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.StatusCode, fmt.Errorf("gemini status %d: %s", resp.StatusCode, truncate(string(raw), 2<<10))
	}
	return raw, resp.StatusCode, nil
}

// retryable: transport errors (status 0), rate limits, and server errors.
// Other 4xx (bad key, malformed schema) will not get better on retry.
func retryable(status int, err error) bool {
	if err == nil {
		return false
	}
	return status == 0 || status == http.StatusTooManyRequests || status >= 500
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
