package claude

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/http/httpguts"
)

// headerTemplate is the fixed header set applied to every request.
type headerTemplate struct {
	accept    string
	origin    string
	referer   string
	cookie    string
	userAgent string
}

func newHeaderTemplate(cfg Config, credential string) headerTemplate {
	return headerTemplate{
		accept:    "application/json",
		origin:    cfg.BaseURL,
		referer:   cfg.BaseURL + "/chats/",
		cookie:    credential,
		userAgent: cfg.UserAgent,
	}
}

// headerTransport pins the template headers and rejects non-TLS requests.
type headerTransport struct {
	headers headerTemplate
	base    http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Scheme != "https" {
		if req.Body != nil {
			req.Body.Close()
		}
		return nil, newError(CodeNetwork, "transport", fmt.Sprintf("refusing non-TLS request to %s", req.URL.Redacted()), nil)
	}

	r := req.Clone(req.Context())
	r.Header.Set("Accept", t.headers.accept)
	r.Header.Set("Origin", t.headers.origin)
	r.Header.Set("Referer", t.headers.referer)
	r.Header.Set("Cookie", t.headers.cookie)
	r.Header.Set("User-Agent", t.headers.userAgent)

	return t.base.RoundTrip(r)
}

// buildHTTPClient returns an *http.Client bound to credential. The credential
// is never parsed, only checked to be a legal header value.
func buildHTTPClient(cfg Config, credential string) (*http.Client, error) {
	if strings.TrimSpace(credential) == "" {
		return nil, newError(CodeInvalidCredential, "build_request", "credential is empty", nil)
	}
	if !httpguts.ValidHeaderFieldValue(credential) {
		return nil, newError(CodeInvalidCredential, "build_request", "credential is not a valid header value", nil)
	}
	if !strings.HasPrefix(cfg.BaseURL, "https://") {
		return nil, newError(CodeNetwork, "build_request", fmt.Sprintf("base URL %q is not https", cfg.BaseURL), nil)
	}

	base := cfg.Transport
	if base == nil {
		tr := http.DefaultTransport.(*http.Transport).Clone()
		tr.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		tr.ForceAttemptHTTP2 = true
		base = tr
	}

	return &http.Client{
		Transport: &headerTransport{
			headers: newHeaderTemplate(cfg, credential),
			base:    base,
		},
	}, nil
}

// serviceMessage extracts a human readable message from an error body.
func serviceMessage(body []byte) string {
	var envelope struct {
		Error *struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if envelope.Error != nil && envelope.Error.Message != "" {
			return envelope.Error.Message
		}
		if envelope.Detail != "" {
			return envelope.Detail
		}
	}

	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200] + "..."
	}
	return msg
}

// doJSON performs one request with an optional JSON body, bounded by
// Config.RequestTimeout, and decodes a 2xx JSON response into out when out is non-nil.
func (c *Client) doJSON(ctx context.Context, op, method, path string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return newError(CodeValidation, op, "failed to marshal request", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return newError(CodeNetwork, op, "failed to create request", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError(op, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportError(op, err)
	}

	c.log.Debug("service call",
		zap.String("op", op),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(op, resp.StatusCode, respBody)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return newError(CodeDecode, op, "failed to decode response", err)
	}
	return nil
}
