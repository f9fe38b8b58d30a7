package mqtt

import (
	"fmt"
	"testing"
	"time"

	coremon "github.com/stonk0105/volleysched/core/monitoring"
)

type recordMonitor struct {
	err  error
	tags map[string]string
}

func (r *recordMonitor) CaptureException(err error, tags map[string]string) {
	r.err = err
	r.tags = tags
}
func (r *recordMonitor) CapturePanic(any, map[string]string) {}
func (r *recordMonitor) Flush(time.Duration) bool            { return true }

func TestPublishErrorCaptured(t *testing.T) {
	mc := &mockClient{}
	withMockClient(t, mc)
	mon := &recordMonitor{}
	coremon.Init(mon)
	defer coremon.Init(nil)

	pub, err := NewPublisher(Config{Broker: "tcp://localhost:1883", ClientID: "id", MaxRetries: 0, BackoffMS: 1})
	if err != nil {
		t.Fatalf("publisher: %v", err)
	}
	mc.publishErrs = []error{fmt.Errorf("net fail")}
	if err := pub.PublishRun(finishedRun()); err == nil {
		t.Fatalf("expected error")
	}
	if mon.err == nil {
		t.Fatalf("error not captured")
	}
	if mon.tags["run_id"] != "run-1" || mon.tags["module"] != "mqtt" {
		t.Fatalf("tags not set: %v", mon.tags)
	}
}
