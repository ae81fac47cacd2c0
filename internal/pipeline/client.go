package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// TokenSource supplies the bearer token for backend calls. An empty token
// sends no Authorization header.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type generateResponse struct {
	Result *string `json:"result"`
}

func (p *Pipeline) execRequest(ctx context.Context, url string, body []byte) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if p.tokens != nil {
		tok, err := p.tokens.Token(ctx)
		if err != nil {
			logf("pipeline: token lookup failed err=%v", err)
		} else if tok = strings.TrimSpace(tok); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return respBody, resp.StatusCode, nil
}

// call posts payload and returns the generated text.
func (p *Pipeline) call(ctx context.Context, url string, payload map[string]string) (string, error) {
	if payload == nil {
		payload = map[string]string{}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	respBody, code, err := p.execRequest(ctx, url, body)
	if err != nil {
		return "", &TransportError{URL: url, Err: err}
	}
	if code < 200 || code >= 300 {
		logf("pipeline: server error status=%d body=%q", code, truncate(strings.TrimSpace(string(respBody)), 512))
		return "", &ServerError{Status: code, Body: string(respBody)}
	}

	var out generateResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if out.Result == nil {
		return "", nil
	}
	return *out.Result, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
