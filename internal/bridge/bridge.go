// Package bridge connects the claimer to an MQTT broker: action records
// are published as JSON and screen events can be injected remotely.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	MQTT "github.com/eclipse/paho.mqtt.golang"
	"github.com/mj1618/luckydog/internal/config"
	"github.com/mj1618/luckydog/internal/logging"
	"github.com/mj1618/luckydog/internal/platform"
	"github.com/mj1618/luckydog/internal/report"
	"github.com/rs/zerolog"
)

const publishTimeout = 5 * time.Second

// Bridge publishes records to <prefix>/<serial>/claims and turns messages on
// <prefix>/<serial>/events into screen events.
type Bridge struct {
	client      MQTT.Client
	claimsTopic string
	eventsTopic string
	events      chan platform.ScreenEvent
	log         zerolog.Logger

	// subscribed by the client's on-connect handler
	autoSubscribe bool
}

var (
	_ report.Sink          = (*Bridge)(nil)
	_ platform.EventSource = (*Bridge)(nil)
)

// Topics returns the claims and events topics for a device.
func Topics(prefix, serial string) (claims, events string) {
	if serial == "" {
		serial = "default"
	}
	return fmt.Sprintf("%s/%s/claims", prefix, serial), fmt.Sprintf("%s/%s/events", prefix, serial)
}

// New builds a bridge for the broker in cfg. It does not connect.
func New(cfg config.MQTT, serial string) *Bridge {
	opts := MQTT.NewClientOptions().AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Broker, cfg.Port))
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = fmt.Sprintf("luckydog_%d", time.Now().Unix())
	}
	opts.SetClientID(clientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)

	b := newBridge(nil, cfg.TopicPrefix, serial)
	b.autoSubscribe = true
	opts.SetConnectionLostHandler(func(_ MQTT.Client, err error) {
		b.log.Warn().Err(err).Msg("connection lost")
	})
	opts.SetOnConnectHandler(func(c MQTT.Client) {
		// subscriptions do not survive a reconnect with a clean session
		if err := b.subscribe(); err != nil {
			b.log.Warn().Err(err).Msg("resubscribe failed")
		}
	})
	b.client = MQTT.NewClient(opts)
	return b
}

func newBridge(client MQTT.Client, prefix, serial string) *Bridge {
	claims, events := Topics(prefix, serial)
	return &Bridge{
		client:      client,
		claimsTopic: claims,
		eventsTopic: events,
		events:      make(chan platform.ScreenEvent, 16),
		log:         logging.For("mqtt"),
	}
}

// Connect connects to the broker and subscribes to the events topic.
func (b *Bridge) Connect(ctx context.Context) error {
	token := b.client.Connect()
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	b.log.Info().Str("claims", b.claimsTopic).Str("events", b.eventsTopic).Msg("connected to broker")
	if b.autoSubscribe {
		return nil
	}
	return b.subscribe()
}

func (b *Bridge) subscribe() error {
	token := b.client.Subscribe(b.eventsTopic, 1, b.onMessage)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", b.eventsTopic, token.Error())
	}
	return nil
}

func (b *Bridge) onMessage(_ MQTT.Client, msg MQTT.Message) {
	ev, err := DecodeEvent(msg.Payload())
	if err != nil {
		b.log.Warn().Err(err).Str("topic", msg.Topic()).Msg("bad event payload")
		return
	}
	select {
	case b.events <- ev:
	default:
		b.log.Warn().Str("class", ev.ClassName).Msg("event queue full, dropping")
	}
}

// Events returns the stream of injected events. The stream stays open
// for the life of the bridge.
func (b *Bridge) Events(ctx context.Context) (<-chan platform.ScreenEvent, error) {
	return b.events, nil
}

// Report publishes r without waiting for the broker; failures are logged.
func (b *Bridge) Report(r report.Record) {
	payload, err := json.Marshal(r)
	if err != nil {
		b.log.Warn().Err(err).Msg("marshal record")
		return
	}
	token := b.client.Publish(b.claimsTopic, 1, false, payload)
	go func() {
		if !token.WaitTimeout(publishTimeout) {
			b.log.Warn().Str("id", r.ID).Msg("publish timed out")
			return
		}
		if err := token.Error(); err != nil {
			b.log.Warn().Err(err).Str("id", r.ID).Msg("publish failed")
		}
	}()
}

// Close disconnects from the broker.
func (b *Bridge) Close() {
	if b.client.IsConnected() {
		b.client.Disconnect(250)
	}
}
