package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mindset-labs/rag-ai/internal/core/domain"
)

const maxErrorBody = 2048

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// postJSON sends a JSON request and decodes a JSON response. Non-2xx
// responses surface as provider errors with a truncated body excerpt.
func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, reqBody, respBody any) error {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return domain.WrapError(domain.ErrProvider, "post "+url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return domain.WrapError(domain.ErrProvider,
			fmt.Sprintf("post %s: status %d", url, resp.StatusCode),
			fmt.Errorf("%s", bytes.TrimSpace(excerpt)))
	}

	if respBody == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
		return domain.WrapError(domain.ErrProvider, "decode response from "+url, err)
	}
	return nil
}
