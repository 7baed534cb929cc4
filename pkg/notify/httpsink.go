package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/newsdesk-hq/daily-clipper/internal/logger"
)

// httpSink posts run events to a generic HTTP endpoint.
type httpSink struct {
	id     string
	typ    string
	url    string
	method string
	client *resty.Client
	log    logger.Logger
}

// newHTTPSink creates an HTTP sink from the config entry.
func newHTTPSink(_ context.Context, cfg SinkConfig, log logger.Logger) (Sink, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("notifier %q missing http configuration", cfg.ID)
	}

	client := resty.New().
		SetTimeout(time.Duration(cfg.HTTP.TimeoutSeconds)*time.Second).
		SetHeader("Content-Type", "application/json")
	for k, v := range cfg.HTTP.Headers {
		client.SetHeader(k, v)
	}

	return &httpSink{
		id:     cfg.ID,
		typ:    cfg.Type,
		url:    cfg.HTTP.URL,
		method: cfg.HTTP.Method,
		client: client,
		log:    logger.Ensure(log),
	}, nil
}

func (s *httpSink) ID() string   { return s.id }
func (s *httpSink) Type() string { return s.typ }

// Notify sends the event as a JSON body to the configured endpoint.
func (s *httpSink) Notify(ctx context.Context, evt Event) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(evt).
		Execute(s.method, s.url)
	if err != nil {
		s.log.ErrorObj("http notifier send failed", "notify_http_error", map[string]any{
			"url":   s.url,
			"error": err.Error(),
		})
		return fmt.Errorf("send event to %s: %w", s.url, err)
	}
	if resp.StatusCode() >= 300 {
		s.log.ErrorObj("http notifier rejected event", "notify_http_error", map[string]any{
			"url":    s.url,
			"status": resp.StatusCode(),
		})
		return fmt.Errorf("endpoint %s returned status %d", s.url, resp.StatusCode())
	}

	s.log.DebugObj("http notifier delivered run summary", "notify_http_delivery", map[string]any{
		"url":    s.url,
		"status": resp.StatusCode(),
	})
	return nil
}
