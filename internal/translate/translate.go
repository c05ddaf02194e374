// Package translate provides best-effort text translation. Translation is
// enrichment only: every failure degrades to the untranslated input, no
// error ever propagates to the caller.
package translate

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/language"
)

const defaultEndpoint = "https://translate.googleapis.com/translate_a/single"

// Client translates between one fixed language pair.
type Client struct {
	endpoint string
	source   language.Tag
	target   language.Tag
	http     *http.Client
	logger   *zap.Logger
}

// Option tweaks a Client; used by tests to point at a fake endpoint.
type Option func(*Client)

func WithEndpoint(endpoint string) Option {
	return func(c *Client) { c.endpoint = endpoint }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New builds a translator for the source→target pair.
func New(source, target language.Tag, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		endpoint: defaultEndpoint,
		source:   source,
		target:   target,
		http:     &http.Client{Timeout: 10 * time.Second},
		logger:   logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Translate returns the translated text, or the input unchanged when the
// call fails in any way.
func (c *Client) Translate(ctx context.Context, text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return text
	}

	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", c.source.String())
	q.Set("tl", c.target.String())
	q.Set("dt", "t")
	q.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return text
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("translation request failed, keeping original text",
			zap.String("text", text), zap.Error(err))
		return text
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("translation request rejected, keeping original text",
			zap.String("text", text), zap.Int("status", resp.StatusCode))
		return text
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return text
	}

	translated, ok := parseResponse(body)
	if !ok {
		c.logger.Debug("unparseable translation response, keeping original text",
			zap.String("text", text))
		return text
	}
	return translated
}

// parseResponse digs the translated sentence chunks out of the endpoint's
// nested-array payload: [[["<translated>","<original>",...],...],...].
func parseResponse(body []byte) (string, bool) {
	var outer []json.RawMessage
	if err := json.Unmarshal(body, &outer); err != nil || len(outer) == 0 {
		return "", false
	}
	var chunks [][]json.RawMessage
	if err := json.Unmarshal(outer[0], &chunks); err != nil {
		return "", false
	}
	var b strings.Builder
	for _, chunk := range chunks {
		if len(chunk) == 0 {
			continue
		}
		var part string
		if err := json.Unmarshal(chunk[0], &part); err != nil {
			continue
		}
		b.WriteString(part)
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", false
	}
	return out, true
}

// Noop returns its input unchanged; stand-in when translation is disabled.
type Noop struct{}

func (Noop) Translate(_ context.Context, text string) string { return text }
