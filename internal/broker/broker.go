// Package broker publishes scene placements to an MQTT broker so remote
// viewers can mirror the scene.
package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/JonMunkholm/scenecsv/internal/placement"
	"github.com/JonMunkholm/scenecsv/internal/scene"
)

// Config holds connection settings for the publisher.
type Config struct {
	URL            string
	ClientID       string
	Username       string
	Password       string
	TopicPrefix    string
	Scene          string
	QoS            byte
	ConnectTimeout time.Duration
	PublishTimeout time.Duration
}

// Message is the JSON payload of every published event.
type Message struct {
	EventType string `json:"event_type"`
	Timestamp string `json:"timestamp"`
	Scene     string `json:"scene"`
	Data      any    `json:"data,omitempty"`
}

// Placement is the data of a scene.placed event.
type Placement struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Prefab   string         `json:"prefab"`
	Asset    string         `json:"asset"`
	Position placement.Vec3 `json:"position"`
	Rotation placement.Vec3 `json:"rotation"`
}

// NewMessage creates a message stamped with the current time.
func NewMessage(event, sceneName string, data any) *Message {
	return &Message{
		EventType: event,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Scene:     sceneName,
		Data:      data,
	}
}

// publisher is the part of mqtt.Client the sink uses.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Publisher is a scene.Sink that publishes every call as an MQTT message.
type Publisher struct {
	client  publisher
	cfg     Config
	logger  *slog.Logger
	closeFn func()
}

var _ scene.Sink = (*Publisher)(nil)

// Connect opens an MQTT connection and returns a publisher over it.
func Connect(cfg Config, logger *slog.Logger) (*Publisher, error) {
	cfg = withDefaults(cfg)
	if err := ValidateTopics(cfg.TopicPrefix, cfg.Scene); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "broker")

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.URL).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(c mqtt.Client) {
			logger.Info("connected to message broker", "url", cfg.URL)
		}).
		SetConnectionLostHandler(func(c mqtt.Client, err error) {
			logger.Warn("broker connection lost", "error", err)
		})

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(cfg.ConnectTimeout) {
		return nil, fmt.Errorf("broker connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	p := newPublisher(client, cfg, logger)
	p.closeFn = func() { client.Disconnect(1000) }
	return p, nil
}

func newPublisher(client publisher, cfg Config, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{client: client, cfg: withDefaults(cfg), logger: logger}
}

func withDefaults(cfg Config) Config {
	if cfg.ClientID == "" {
		cfg.ClientID = "scenecsv"
	}
	if cfg.TopicPrefix == "" {
		cfg.TopicPrefix = "scenecsv"
	}
	if cfg.Scene == "" {
		cfg.Scene = "default"
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = 5 * time.Second
	}
	return cfg
}

// Clear publishes a scene.cleared event.
func (p *Publisher) Clear(ctx context.Context) error {
	return p.publish(ctx, EventCleared, nil)
}

// Place publishes a scene.placed event for inst.
func (p *Publisher) Place(ctx context.Context, inst scene.Instance, pos, rot placement.Vec3) error {
	return p.publish(ctx, EventPlaced, Placement{
		ID:       inst.ID.String(),
		Name:     inst.Name,
		Prefab:   inst.Prefab.Name,
		Asset:    inst.Prefab.Asset,
		Position: pos,
		Rotation: rot,
	})
}

func (p *Publisher) publish(ctx context.Context, event string, data any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	topic := BuildTopic(p.cfg.TopicPrefix, p.cfg.Scene, event)
	payload, err := json.Marshal(NewMessage(event, p.cfg.Scene, data))
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	token := p.client.Publish(topic, p.cfg.QoS, false, payload)
	if !token.WaitTimeout(p.cfg.PublishTimeout) {
		return fmt.Errorf("publish to %s: timeout", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}

	p.logger.Debug("published", "topic", topic)
	return nil
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	if p.closeFn != nil {
		p.closeFn()
		p.logger.Info("disconnected from message broker")
	}
}
