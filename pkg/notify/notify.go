package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/newsdesk-hq/daily-clipper/internal/domain"
	"github.com/newsdesk-hq/daily-clipper/internal/logger"
)

const (
	// Supported notifier types.
	TypeQueue = "queue"
	TypeHTTP  = "http"

	// Supported queue providers.
	QueueProviderAWSSQS = "aws-sqs"
	QueueProviderAWSSNS = "aws-sns"
	QueueProviderAzure  = "azure"
	QueueProviderGCP    = "gcp"

	httpDefaultMethod         = "POST"
	httpDefaultTimeoutSeconds = 5
)

// Event is the run summary delivered to notification sinks.
type Event struct {
	RunID         string         `json:"run_id"`
	State         string         `json:"state"`
	WindowHours   float64        `json:"window_hours"`
	TotalArticles int            `json:"total_articles"`
	SourceCounts  map[string]int `json:"source_counts,omitempty"`
	Errors        []string       `json:"errors,omitempty"`
	ReportPath    string         `json:"report_path,omitempty"`
	StartedAt     time.Time      `json:"started_at"`
	FinishedAt    time.Time      `json:"finished_at"`
}

// EventFromSnapshot flattens a finished run into a notification event.
func EventFromSnapshot(snap domain.RunSnapshot) Event {
	evt := Event{
		RunID:         snap.RunID,
		State:         string(snap.State),
		WindowHours:   snap.WindowHours,
		TotalArticles: snap.TotalArticles,
		Errors:        snap.Errors,
		ReportPath:    snap.ReportPath,
		StartedAt:     snap.StartedAt,
		FinishedAt:    snap.FinishedAt,
	}
	if len(snap.Sources) > 0 {
		evt.SourceCounts = make(map[string]int, len(snap.Sources))
		for _, res := range snap.Sources {
			evt.SourceCounts[res.Source] = res.Count
		}
	}
	return evt
}

// Sink delivers run events to one destination.
type Sink interface {
	ID() string
	Type() string
	Notify(ctx context.Context, evt Event) error
}

// configFile represents the structure of the notifiers configuration file.
type configFile struct {
	Notifiers []SinkConfig `json:"notifiers" yaml:"notifiers"`
}

// SinkConfig represents a single notifier entry declared in config files.
type SinkConfig struct {
	ID      string           `json:"id" yaml:"id"`
	Type    string           `json:"type" yaml:"type"`
	Enabled *bool            `json:"enabled" yaml:"enabled"`
	Queue   *QueueSinkConfig `json:"queue" yaml:"queue"`
	HTTP    *HTTPSinkConfig  `json:"http" yaml:"http"`
}

// QueueSinkConfig allows selecting a cloud queue provider.
type QueueSinkConfig struct {
	Provider string            `json:"provider" yaml:"provider"`
	AWS      *AWSSQSSinkConfig `json:"aws" yaml:"aws"`
	SNS      *AWSSNSSinkConfig `json:"sns" yaml:"sns"`
	Azure    *AzureQueueConfig `json:"azure" yaml:"azure"`
	GCP      *GCPQueueConfig   `json:"gcp" yaml:"gcp"`
}

// AWSSQSSinkConfig holds AWS SQS specific settings.
type AWSSQSSinkConfig struct {
	QueueURL        string `json:"uri" yaml:"uri"`
	Region          string `json:"region" yaml:"region"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
}

// AWSSNSSinkConfig holds AWS SNS specific settings.
type AWSSNSSinkConfig struct {
	TopicARN        string `json:"topic_arn" yaml:"topic_arn"`
	Region          string `json:"region" yaml:"region"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
}

// AzureQueueConfig holds the minimal Service Bus queue settings.
type AzureQueueConfig struct {
	ConnectionString string `json:"connection_string" yaml:"connection_string"`
	QueueName        string `json:"queue" yaml:"queue"`
}

// GCPQueueConfig holds the minimal Pub/Sub topic settings.
type GCPQueueConfig struct {
	ProjectID       string `json:"project_id" yaml:"project_id"`
	Topic           string `json:"topic" yaml:"topic"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
}

// HTTPSinkConfig holds generic HTTP sink settings.
type HTTPSinkConfig struct {
	URL            string            `json:"url" yaml:"url"`
	Method         string            `json:"method" yaml:"method"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// ConfigRegistry materializes notifier definitions loaded from config files.
type ConfigRegistry struct {
	mu        sync.RWMutex
	notifiers []SinkConfig
	idx       map[string]SinkConfig
}

// LoadRegistry loads the notifier registry from a YAML/JSON file.
// Environment references in the file are expanded before decoding.
func LoadRegistry(path string) (*ConfigRegistry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("notifiers file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open notifiers file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read notifiers file: %w", err)
	}

	expanded := []byte(os.ExpandEnv(string(raw)))

	fileReg, err := parseSinkRegistry(expanded, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(fileReg.Notifiers) == 0 {
		return nil, errors.New("notifiers file contains no notifiers entries")
	}

	reg := &ConfigRegistry{
		notifiers: make([]SinkConfig, len(fileReg.Notifiers)),
		idx:       make(map[string]SinkConfig, len(fileReg.Notifiers)),
	}

	for i := range fileReg.Notifiers {
		cfg := sanitizeSinkConfig(fileReg.Notifiers[i])
		if err := validateSinkConfig(cfg); err != nil {
			return nil, fmt.Errorf("notifiers[%d]: %w", i, err)
		}
		if _, exists := reg.idx[cfg.ID]; exists {
			return nil, fmt.Errorf("duplicate notifier id %q", cfg.ID)
		}
		reg.notifiers[i] = cfg
		reg.idx[cfg.ID] = cfg
	}

	return reg, nil
}

// parseSinkRegistry attempts to decode the notifiers file content.
func parseSinkRegistry(data []byte, ext string) (configFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		if reg, err := unmarshalSinkRegistry(d.name, data, d.fn); err == nil {
			return reg, nil
		}
	}

	return configFile{}, errors.New("notifiers file format not recognized (expected YAML or JSON)")
}

// unmarshalSinkRegistry decodes the notifiers file using the provided function.
func unmarshalSinkRegistry(name string, data []byte, fn func([]byte, any) error) (configFile, error) {
	var reg configFile
	if err := fn(data, &reg); err != nil {
		return configFile{}, fmt.Errorf("decode %s notifiers: %w", name, err)
	}
	return reg, nil
}

// sanitizeSinkConfig trims and normalizes the notifier config fields.
func sanitizeSinkConfig(cfg SinkConfig) SinkConfig {
	cfg.ID = strings.TrimSpace(cfg.ID)
	cfg.Type = strings.ToLower(strings.TrimSpace(cfg.Type))

	if cfg.Enabled == nil {
		def := true
		cfg.Enabled = &def
	}
	if cfg.Queue != nil {
		qc := *cfg.Queue
		qc.Provider = strings.ToLower(strings.TrimSpace(qc.Provider))
		if qc.AWS != nil {
			a := *qc.AWS
			a.QueueURL = strings.TrimSpace(a.QueueURL)
			a.Region = strings.TrimSpace(a.Region)
			a.AccessKeyID = strings.TrimSpace(a.AccessKeyID)
			a.SecretAccessKey = strings.TrimSpace(a.SecretAccessKey)
			qc.AWS = &a
		}
		if qc.SNS != nil {
			s := *qc.SNS
			s.TopicARN = strings.TrimSpace(s.TopicARN)
			s.Region = strings.TrimSpace(s.Region)
			s.AccessKeyID = strings.TrimSpace(s.AccessKeyID)
			s.SecretAccessKey = strings.TrimSpace(s.SecretAccessKey)
			qc.SNS = &s
		}
		if qc.Azure != nil {
			a := *qc.Azure
			a.ConnectionString = strings.TrimSpace(a.ConnectionString)
			a.QueueName = strings.TrimSpace(a.QueueName)
			qc.Azure = &a
		}
		if qc.GCP != nil {
			g := *qc.GCP
			g.ProjectID = strings.TrimSpace(g.ProjectID)
			g.Topic = strings.TrimSpace(g.Topic)
			g.CredentialsFile = strings.TrimSpace(g.CredentialsFile)
			qc.GCP = &g
		}
		cfg.Queue = &qc
	}
	if cfg.HTTP != nil {
		c := *cfg.HTTP
		c.URL = strings.TrimSpace(c.URL)
		c.Method = strings.ToUpper(strings.TrimSpace(c.Method))
		if c.Method == "" {
			c.Method = httpDefaultMethod
		}
		c.Headers = sanitizeHeaders(c.Headers)
		if c.TimeoutSeconds <= 0 {
			c.TimeoutSeconds = httpDefaultTimeoutSeconds
		}
		cfg.HTTP = &c
	}

	return cfg
}

// sanitizeHeaders trims and removes empty headers.
func sanitizeHeaders(headers map[string]string) map[string]string {
	if len(headers) == 0 {
		return nil
	}
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		key := strings.TrimSpace(k)
		val := strings.TrimSpace(v)
		if key == "" || val == "" {
			continue
		}
		out[key] = val
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// validateSinkConfig checks that required fields are present.
func validateSinkConfig(cfg SinkConfig) error {
	if cfg.ID == "" {
		return errors.New("id is required")
	}
	if cfg.Type == "" {
		return fmt.Errorf("type is required for notifier %q", cfg.ID)
	}
	switch cfg.Type {
	case TypeQueue:
		if cfg.Queue == nil {
			return fmt.Errorf("queue config required for notifier %q", cfg.ID)
		}
		switch cfg.Queue.Provider {
		case QueueProviderAWSSQS:
			if err := validateSQSConfig(cfg.ID, cfg.Queue.AWS); err != nil {
				return err
			}
		case QueueProviderAWSSNS:
			if err := validateSNSConfig(cfg.ID, cfg.Queue.SNS); err != nil {
				return err
			}
		case QueueProviderGCP:
			if err := validateGCPConfig(cfg.ID, cfg.Queue.GCP); err != nil {
				return err
			}
		case QueueProviderAzure:
			return fmt.Errorf("queue provider %q not implemented for notifier %q", cfg.Queue.Provider, cfg.ID)
		default:
			return fmt.Errorf("queue provider %q not supported for notifier %q", cfg.Queue.Provider, cfg.ID)
		}
	case TypeHTTP:
		if cfg.HTTP == nil {
			return fmt.Errorf("http config required for notifier %q", cfg.ID)
		}
		if cfg.HTTP.URL == "" {
			return fmt.Errorf("http.url is required for notifier %q", cfg.ID)
		}
	default:
		return fmt.Errorf("type %q not supported for notifier %q", cfg.Type, cfg.ID)
	}
	return nil
}

func validateSQSConfig(id string, cfg *AWSSQSSinkConfig) error {
	if cfg == nil {
		return fmt.Errorf("sqs config required for notifier %q", id)
	}
	if cfg.QueueURL == "" {
		return fmt.Errorf("sqs.uri is required for notifier %q", id)
	}
	if cfg.Region == "" {
		return fmt.Errorf("sqs.region is required for notifier %q", id)
	}
	if cfg.AccessKeyID == "" {
		return fmt.Errorf("sqs.access_key_id is required for notifier %q", id)
	}
	if cfg.SecretAccessKey == "" {
		return fmt.Errorf("sqs.secret_access_key is required for notifier %q", id)
	}
	return nil
}

func validateSNSConfig(id string, cfg *AWSSNSSinkConfig) error {
	if cfg == nil {
		return fmt.Errorf("sns config required for notifier %q", id)
	}
	if cfg.TopicARN == "" {
		return fmt.Errorf("sns.topic_arn is required for notifier %q", id)
	}
	if cfg.Region == "" {
		return fmt.Errorf("sns.region is required for notifier %q", id)
	}
	if cfg.AccessKeyID == "" {
		return fmt.Errorf("sns.access_key_id is required for notifier %q", id)
	}
	if cfg.SecretAccessKey == "" {
		return fmt.Errorf("sns.secret_access_key is required for notifier %q", id)
	}
	return nil
}

func validateGCPConfig(id string, cfg *GCPQueueConfig) error {
	if cfg == nil {
		return fmt.Errorf("gcp config required for notifier %q", id)
	}
	if cfg.ProjectID == "" {
		return fmt.Errorf("gcp.project_id is required for notifier %q", id)
	}
	if cfg.Topic == "" {
		return fmt.Errorf("gcp.topic is required for notifier %q", id)
	}
	return nil
}

// ByID returns the notifier config by id.
func (r *ConfigRegistry) ByID(id string) (SinkConfig, bool) {
	if r == nil {
		return SinkConfig{}, false
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return SinkConfig{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.idx[id]
	return cfg, ok
}

// All returns all configured notifiers.
func (r *ConfigRegistry) All() []SinkConfig {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]SinkConfig, len(r.notifiers))
	copy(out, r.notifiers)
	return out
}

// Enabled returns notifiers that are enabled.
func (r *ConfigRegistry) Enabled() []SinkConfig {
	if r == nil {
		return nil
	}

	all := r.All()
	if len(all) == 0 {
		return nil
	}

	out := make([]SinkConfig, 0, len(all))
	for _, cfg := range all {
		if cfg.EnabledValue() {
			out = append(out, cfg)
		}
	}
	return out
}

// EnabledValue returns enabled flag defaulting to true.
func (cfg SinkConfig) EnabledValue() bool {
	if cfg.Enabled == nil {
		return true
	}
	return *cfg.Enabled
}

// Manager fans run events out to every configured sink. Delivery
// failures are logged and never returned to the caller.
type Manager struct {
	sinks []Sink
	log   logger.Logger
}

// NewManager wraps the given sinks for fan-out delivery.
func NewManager(sinks []Sink, log logger.Logger) *Manager {
	return &Manager{sinks: sinks, log: logger.Ensure(log)}
}

// RunFinished delivers the run summary to every sink.
func (m *Manager) RunFinished(ctx context.Context, snap domain.RunSnapshot) {
	if m == nil || len(m.sinks) == 0 {
		return
	}

	evt := EventFromSnapshot(snap)
	for _, sink := range m.sinks {
		if err := sink.Notify(ctx, evt); err != nil {
			m.log.WarnObj("notifier delivery failed", "notify_error", map[string]any{
				"notifier": sink.ID(),
				"type":     sink.Type(),
				"error":    err.Error(),
			})
			continue
		}
		m.log.DebugObj("notifier delivered run summary", "notify_delivery", map[string]any{
			"notifier": sink.ID(),
			"run_id":   evt.RunID,
		})
	}
}

// FromFile loads the notifier config file and builds a ready Manager.
// A missing file yields a Manager with no sinks.
func FromFile(ctx context.Context, path string, log logger.Logger) (*Manager, error) {
	log = logger.Ensure(log)

	if path == "" {
		return NewManager(nil, log), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return NewManager(nil, log), nil
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		return nil, err
	}

	sinks, err := BuildAll(ctx, DefaultRegistry(), reg.Enabled(), log)
	if err != nil {
		return nil, err
	}
	return NewManager(sinks, log), nil
}
