// Package mqtt publishes finished scheduling runs to an MQTT broker.
package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/stonk0105/volleysched/core/events"
	"github.com/stonk0105/volleysched/core/model"
	coremon "github.com/stonk0105/volleysched/core/monitoring"
	"github.com/stonk0105/volleysched/infra/logger"
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Broker   string `json:"broker"`
	ClientID string `json:"client_id"`
	Username string `json:"username"`
	Password string `json:"password"`
	// Topic is the prefix of every published topic.
	Topic      string      `json:"topic"`
	QoS        byte        `json:"qos"`
	Retain     bool        `json:"retain"`
	UseTLS     bool        `json:"use_tls"`
	ClientCert string      `json:"client_cert"`
	ClientKey  string      `json:"client_key"`
	CABundle   string      `json:"ca_bundle"`
	MaxRetries int         `json:"max_retries"`
	BackoffMS  int         `json:"backoff_ms"`
	TLSConfig  *tls.Config `json:"-"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "volleysched"
	}
	if c.Topic == "" {
		c.Topic = "volleysched"
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.BackoffMS <= 0 {
		c.BackoffMS = 100
	}
}

// Validate checks mandatory fields. An empty broker disables publishing.
func (c Config) Validate() error {
	if c.QoS > 2 {
		return fmt.Errorf("qos must be 0, 1 or 2, got %d", c.QoS)
	}
	if c.Broker != "" && c.Topic == "" {
		return fmt.Errorf("topic is required")
	}
	return nil
}

// StatusTopic carries the retained online/offline state of the service.
func (c Config) StatusTopic() string { return c.Topic + "/status" }

// RunTopic is the topic of finished runs with the given outcome.
func (c Config) RunTopic(status string) string { return c.Topic + "/runs/" + status }

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Publisher sends run summaries using Eclipse Paho.
type Publisher struct {
	cli     pahoClient
	cfg     Config
	backoff time.Duration
	logger  logger.Logger
}

// NewPublisher connects to the broker and announces the service as online.
func NewPublisher(cfg Config) (*Publisher, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt_publisher")
	p := &Publisher{cfg: cfg, backoff: time.Duration(cfg.BackoffMS) * time.Millisecond, logger: log}

	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected")
		if token := c.Publish(cfg.StatusTopic(), cfg.QoS, true, "online"); token.Wait() && token.Error() != nil {
			log.Errorf("status publish error: %v", token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorw("connection lost", map[string]any{"broker": cfg.Broker, "error": err.Error()})
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	p.cli = c
	return p, nil
}

// NewClientOptions builds mqtt client options from Config. The broker
// receives a retained "offline" will on the status topic.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	opts.SetWill(cfg.StatusTopic(), "offline", cfg.QoS, true)
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

// RunSummary is the payload published for each finished run.
type RunSummary struct {
	RunID      string              `json:"run_id"`
	Status     string              `json:"status"`
	Makespan   int                 `json:"makespan"`
	Objective  float64             `json:"objective"`
	Matches    int                 `json:"matches"`
	DurationMS int64               `json:"duration_ms"`
	Schedule   []model.ScheduleRow `json:"schedule,omitempty"`
	Warnings   []string            `json:"warnings,omitempty"`
	Error      string              `json:"error,omitempty"`
	Timestamp  int64               `json:"timestamp"`
}

// Summarize builds the payload of a finished run.
func Summarize(ev events.RunFinished) RunSummary {
	s := RunSummary{
		RunID:      ev.ID,
		Status:     ev.Status,
		Matches:    ev.Matches,
		DurationMS: ev.Duration.Milliseconds(),
		Timestamp:  ev.Time.UnixMilli(),
	}
	if ev.Result != nil {
		s.Makespan = ev.Result.Makespan
		s.Objective = ev.Result.Objective
		s.Schedule = ev.Result.Schedule
		s.Warnings = ev.Result.Warnings
	}
	if ev.Err != nil {
		s.Error = ev.Err.Error()
	}
	return s
}

// PublishRun publishes the summary of ev, retrying with exponential backoff.
func (p *Publisher) PublishRun(ev events.RunFinished) error {
	payload, err := json.Marshal(Summarize(ev))
	if err != nil {
		return err
	}
	topic := p.cfg.RunTopic(ev.Status)
	var publishErr error
	for attempt := 0; attempt <= p.cfg.MaxRetries; attempt++ {
		token := p.cli.Publish(topic, p.cfg.QoS, p.cfg.Retain, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			p.logger.Infof("published run %s to %s", ev.ID, topic)
			return nil
		}
		p.logger.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		if attempt < p.cfg.MaxRetries {
			time.Sleep(p.backoff * time.Duration(1<<attempt))
		}
	}
	coremon.CaptureException(publishErr, map[string]string{"module": "mqtt", "run_id": ev.ID})
	return publishErr
}

// Disconnect announces the service as offline and closes the connection.
func (p *Publisher) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Publish(p.cfg.StatusTopic(), p.cfg.QoS, true, "offline").Wait()
		p.cli.Disconnect(250)
	}
}
