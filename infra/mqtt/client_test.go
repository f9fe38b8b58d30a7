package mqtt

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"math/big"
	"os"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/stonk0105/volleysched/core/events"
	"github.com/stonk0105/volleysched/core/model"
)

// helper to generate self-signed cert
func generateCert(t *testing.T) (certFile, keyFile, caFile string) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("gen key: %v", err)
	}
	tmpl := x509.Certificate{SerialNumber: big.NewInt(1), Subject: pkix.Name{CommonName: "test"}, NotBefore: time.Now(), NotAfter: time.Now().Add(time.Hour)}
	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &priv.PublicKey, priv)
	if err != nil {
		t.Fatalf("create cert: %v", err)
	}
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)})

	dir := t.TempDir()
	certFile = dir + "/cert.pem"
	keyFile = dir + "/key.pem"
	caFile = dir + "/ca.pem"
	for path, data := range map[string][]byte{certFile: certPEM, keyFile: keyPEM, caFile: certPEM} {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	return
}

func withMockClient(t *testing.T, mc *mockClient) {
	t.Helper()
	newMQTTClient = func(o *paho.ClientOptions) pahoClient { mc.opts = o; return mc }
	t.Cleanup(func() { newMQTTClient = func(opts *paho.ClientOptions) pahoClient { return paho.NewClient(opts) } })
}

func finishedRun() events.RunFinished {
	return events.RunFinished{
		ID:       "run-1",
		Status:   "optimal",
		Duration: 1500 * time.Millisecond,
		Matches:  1,
		Result: &model.Result{
			Status:   "optimal",
			Makespan: 2,
			Schedule: []model.ScheduleRow{{Day: 2, Field: 1, Match: "A1 vs A2", Referee: "R", Group: "A"}},
		},
		Time: time.Unix(100, 0),
	}
}

func TestLoadTLSConfig(t *testing.T) {
	cert, key, ca := generateCert(t)
	cfg := Config{UseTLS: true, ClientCert: cert, ClientKey: key, CABundle: ca}
	tlsCfg, err := cfg.LoadTLSConfig()
	if err != nil {
		t.Fatalf("load tls: %v", err)
	}
	if len(tlsCfg.Certificates) == 0 {
		t.Fatalf("no certs loaded")
	}
	if tlsCfg.RootCAs == nil {
		t.Fatalf("no root CAs")
	}
}

func TestLoadTLSConfigMissingFiles(t *testing.T) {
	if _, err := (Config{UseTLS: true}).LoadTLSConfig(); err == nil {
		t.Fatalf("expected error without cert paths")
	}
}

func TestNewClientOptionsAuth(t *testing.T) {
	opts, err := NewClientOptions(Config{Broker: "tcp://localhost:1883", ClientID: "id", Username: "u", Password: "p"})
	if err != nil {
		t.Fatalf("opts: %v", err)
	}
	if opts.Username != "u" || opts.Password != "p" {
		t.Fatalf("auth not set")
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (Config{QoS: 3}).Validate(); err == nil {
		t.Fatalf("expected qos error")
	}
	cfg := Config{Broker: "tcp://localhost:1883"}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.RunTopic("optimal") != "volleysched/runs/optimal" {
		t.Fatalf("unexpected run topic %q", cfg.RunTopic("optimal"))
	}
}

func TestLWTAndStatus(t *testing.T) {
	mc := &mockClient{}
	withMockClient(t, mc)
	pub, err := NewPublisher(Config{Broker: "tcp://localhost:1883", ClientID: "id", Topic: "league", QoS: 1})
	if err != nil {
		t.Fatalf("publisher: %v", err)
	}
	if !mc.opts.WillEnabled || !mc.opts.WillRetained {
		t.Fatalf("will not enabled")
	}
	if mc.opts.WillTopic != "league/status" || string(mc.opts.WillPayload) != "offline" {
		t.Fatalf("will options incorrect")
	}
	if len(mc.published) != 1 || mc.published[0].topic != "league/status" || mc.published[0].payload != "online" {
		t.Fatalf("online status not published: %+v", mc.published)
	}
	pub.Disconnect()
	last := mc.published[len(mc.published)-1]
	if last.payload != "offline" || !last.retained {
		t.Fatalf("offline status not published: %+v", last)
	}
}

func TestPublishRun(t *testing.T) {
	mc := &mockClient{}
	withMockClient(t, mc)
	pub, err := NewPublisher(Config{Broker: "tcp://localhost:1883", ClientID: "id", QoS: 2})
	if err != nil {
		t.Fatalf("publisher: %v", err)
	}
	if err := pub.PublishRun(finishedRun()); err != nil {
		t.Fatalf("publish: %v", err)
	}
	msg := mc.published[len(mc.published)-1]
	if msg.topic != "volleysched/runs/optimal" || msg.qos != 2 {
		t.Fatalf("unexpected publish %+v", msg)
	}
	var got RunSummary
	if err := json.Unmarshal([]byte(msg.payload), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.RunID != "run-1" || got.Makespan != 2 || got.DurationMS != 1500 || len(got.Schedule) != 1 {
		t.Fatalf("unexpected summary %+v", got)
	}
}

func TestSummarizeFailure(t *testing.T) {
	s := Summarize(events.RunFinished{ID: "x", Status: "infeasible", Err: fmt.Errorf("no feasible schedule")})
	if s.Error != "no feasible schedule" || s.Schedule != nil || s.Makespan != 0 {
		t.Fatalf("unexpected summary %+v", s)
	}
}

func TestRetryLogic(t *testing.T) {
	mc := &mockClient{}
	withMockClient(t, mc)
	pub, err := NewPublisher(Config{Broker: "tcp://localhost:1883", ClientID: "id", MaxRetries: 1, BackoffMS: 1})
	if err != nil {
		t.Fatalf("publisher: %v", err)
	}
	mc.published = nil
	mc.publishErrs = []error{fmt.Errorf("net fail"), nil}
	if err := pub.PublishRun(finishedRun()); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(mc.published) != 2 {
		t.Fatalf("expected retries, got %d publishes", len(mc.published))
	}
}

type published struct {
	topic    string
	qos      byte
	retained bool
	payload  string
}

// mockClient implements pahoClient for tests
type mockClient struct {
	opts        *paho.ClientOptions
	published   []published
	publishErrs []error
}

func (m *mockClient) IsConnected() bool { return true }
func (m *mockClient) Connect() paho.Token {
	if m.opts != nil && m.opts.OnConnect != nil {
		m.opts.OnConnect(m)
	}
	return &dummyToken{}
}
func (m *mockClient) Disconnect(uint) {}
func (m *mockClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	p := published{topic: topic, qos: qos, retained: retained}
	switch v := payload.(type) {
	case string:
		p.payload = v
	case []byte:
		p.payload = string(v)
	}
	m.published = append(m.published, p)
	if len(m.publishErrs) > 0 {
		err := m.publishErrs[0]
		m.publishErrs = m.publishErrs[1:]
		return &dummyToken{err: err}
	}
	return &dummyToken{}
}
func (m *mockClient) Subscribe(string, byte, paho.MessageHandler) paho.Token {
	return &dummyToken{}
}
func (m *mockClient) SubscribeMultiple(map[string]byte, paho.MessageHandler) paho.Token {
	return &dummyToken{}
}
func (m *mockClient) Unsubscribe(...string) paho.Token        { return &dummyToken{} }
func (m *mockClient) AddRoute(string, paho.MessageHandler)    {}
func (m *mockClient) OptionsReader() paho.ClientOptionsReader { return paho.ClientOptionsReader{} }
func (m *mockClient) IsConnectionOpen() bool                  { return true }

type dummyToken struct{ err error }

func (d dummyToken) Wait() bool                     { return true }
func (d dummyToken) WaitTimeout(time.Duration) bool { return true }
func (d dummyToken) Done() <-chan struct{}          { ch := make(chan struct{}); close(ch); return ch }
func (d dummyToken) Error() error                   { return d.err }
