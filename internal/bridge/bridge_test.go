package bridge

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	MQTT "github.com/eclipse/paho.mqtt.golang"
	"github.com/mj1618/luckydog/internal/report"
	"github.com/rs/zerolog"
)

type fakeToken struct {
	err  error
	done chan struct{}
}

func newToken(err error) *fakeToken {
	t := &fakeToken{err: err, done: make(chan struct{})}
	close(t.done)
	return t
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{}          { return t.done }
func (t *fakeToken) Error() error                   { return t.err }

type published struct {
	topic   string
	payload []byte
}

// fakeClient implements the parts of MQTT.Client the bridge uses; the
// embedded interface panics on anything else.
type fakeClient struct {
	MQTT.Client

	mu        sync.Mutex
	connected bool
	published []published
	handlers  map[string]MQTT.MessageHandler
}

func (c *fakeClient) Connect() MQTT.Token {
	c.connected = true
	return newToken(nil)
}

func (c *fakeClient) IsConnected() bool { return c.connected }

func (c *fakeClient) Disconnect(uint) { c.connected = false }

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) MQTT.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.published = append(c.published, published{topic, payload.([]byte)})
	return newToken(nil)
}

func (c *fakeClient) Subscribe(topic string, qos byte, cb MQTT.MessageHandler) MQTT.Token {
	if c.handlers == nil {
		c.handlers = map[string]MQTT.MessageHandler{}
	}
	c.handlers[topic] = cb
	return newToken(nil)
}

type fakeMessage struct {
	MQTT.Message
	topic   string
	payload []byte
}

func (m fakeMessage) Topic() string   { return m.topic }
func (m fakeMessage) Payload() []byte { return m.payload }

func testBridge() (*Bridge, *fakeClient) {
	fc := &fakeClient{}
	b := newBridge(fc, "luckydog", "emulator-5554")
	b.log = zerolog.Nop()
	return b, fc
}

func TestTopics(t *testing.T) {
	claims, events := Topics("luckydog", "emulator-5554")
	if claims != "luckydog/emulator-5554/claims" || events != "luckydog/emulator-5554/events" {
		t.Errorf("got %s %s", claims, events)
	}
	if claims, _ := Topics("ld", ""); claims != "ld/default/claims" {
		t.Errorf("got %s", claims)
	}
}

func TestBridge_ConnectSubscribes(t *testing.T) {
	b, fc := testBridge()
	if err := b.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, ok := fc.handlers["luckydog/emulator-5554/events"]; !ok {
		t.Errorf("expected a subscription on the events topic, got %v", fc.handlers)
	}
}

func TestBridge_ReportPublishesJSON(t *testing.T) {
	b, fc := testBridge()
	b.Report(report.Record{ID: "abc", Action: report.ActionClickButton, OK: true, Polls: 12})

	fc.mu.Lock()
	defer fc.mu.Unlock()
	if len(fc.published) != 1 {
		t.Fatalf("expected one publish, got %d", len(fc.published))
	}
	p := fc.published[0]
	if p.topic != "luckydog/emulator-5554/claims" {
		t.Errorf("topic = %s", p.topic)
	}
	var got report.Record
	if err := json.Unmarshal(p.payload, &got); err != nil {
		t.Fatal(err)
	}
	if got.ID != "abc" || got.Action != report.ActionClickButton || got.Polls != 12 {
		t.Errorf("unexpected record: %+v", got)
	}
}

func TestBridge_InjectedEvents(t *testing.T) {
	b, fc := testBridge()
	if err := b.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}
	ch, _ := b.Events(context.Background())
	handler := fc.handlers["luckydog/emulator-5554/events"]

	handler(fc, fakeMessage{topic: "luckydog/emulator-5554/events", payload: []byte(`not json`)})
	handler(fc, fakeMessage{topic: "luckydog/emulator-5554/events", payload: []byte(`{"package":"com.tencent.mm","type":"state","class":"A"}`)})

	select {
	case ev := <-ch:
		if ev.ClassName != "A" {
			t.Errorf("unexpected event: %+v", ev)
		}
	default:
		t.Fatal("expected the valid event to be queued")
	}
	select {
	case ev := <-ch:
		t.Errorf("bad payloads must be dropped, got %+v", ev)
	default:
	}
}

func TestBridge_FullQueueDrops(t *testing.T) {
	b, fc := testBridge()
	_ = b.Connect(context.Background())
	handler := fc.handlers["luckydog/emulator-5554/events"]
	msg := fakeMessage{payload: []byte(`{"package":"com.tencent.mm"}`)}

	done := make(chan struct{})
	go func() {
		for i := 0; i < cap(b.events)+5; i++ {
			handler(fc, msg)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler blocked on a full queue")
	}
	if len(b.events) != cap(b.events) {
		t.Errorf("queue holds %d, want %d", len(b.events), cap(b.events))
	}
}

func TestBridge_Close(t *testing.T) {
	b, fc := testBridge()
	_ = b.Connect(context.Background())
	b.Close()
	if fc.connected {
		t.Error("expected a disconnect")
	}
}
