package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/newsdesk-hq/daily-clipper/internal/logger"
)

const (
	endpoint       = "https://translate.googleapis.com/translate_a/single"
	requestTimeout = 10 * time.Second
	maxCacheSize   = 2048
)

// Client translates short headline strings to English on a best-effort
// basis. Any failure returns the input unchanged; collection never
// depends on translation succeeding.
type Client struct {
	rc  *resty.Client
	log logger.Logger

	mu    sync.Mutex
	cache map[string]string
}

// New builds a translate client.
func New(log logger.Logger) *Client {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Client{
		rc:    resty.New().SetTimeout(requestTimeout),
		log:   log,
		cache: make(map[string]string),
	}
}

// Translate converts text from fromLang to English. The result is cached
// per input string.
func (c *Client) Translate(ctx context.Context, text, fromLang string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return text
	}

	cacheKey := fromLang + "\x00" + text
	c.mu.Lock()
	if cached, ok := c.cache[cacheKey]; ok {
		c.mu.Unlock()
		return cached
	}
	c.mu.Unlock()

	translated, err := c.request(ctx, text, fromLang)
	if err != nil {
		c.log.WarnObj("headline translation failed", "translate_error", map[string]any{
			"from":  fromLang,
			"error": err.Error(),
		})
		return text
	}
	if translated == "" {
		return text
	}

	c.mu.Lock()
	if len(c.cache) >= maxCacheSize {
		c.cache = make(map[string]string)
	}
	c.cache[cacheKey] = translated
	c.mu.Unlock()

	return translated
}

func (c *Client) request(ctx context.Context, text, fromLang string) (string, error) {
	if fromLang == "" {
		fromLang = "auto"
	}

	resp, err := c.rc.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"client": "gtx",
			"sl":     fromLang,
			"tl":     "en",
			"dt":     "t",
			"q":      text,
		}).
		Get(endpoint)
	if err != nil {
		return "", err
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("translate endpoint returned status %d", resp.StatusCode())
	}

	return decodeTranslation(resp.Body())
}

// decodeTranslation unpacks the nested-array response shape
// [[[translated, original, ...], ...], ...].
func decodeTranslation(body []byte) (string, error) {
	var outer []json.RawMessage
	if err := json.Unmarshal(body, &outer); err != nil || len(outer) == 0 {
		return "", err
	}

	var segments [][]json.RawMessage
	if err := json.Unmarshal(outer[0], &segments); err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		var part string
		if err := json.Unmarshal(seg[0], &part); err != nil {
			continue
		}
		sb.WriteString(part)
	}
	return strings.TrimSpace(sb.String()), nil
}
