package broker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/JonMunkholm/scenecsv/internal/catalog"
	"github.com/JonMunkholm/scenecsv/internal/placement"
	"github.com/JonMunkholm/scenecsv/internal/scene"
)

type fakeToken struct {
	err     error
	timeout bool
}

func (t fakeToken) Wait() bool                     { return !t.timeout }
func (t fakeToken) WaitTimeout(time.Duration) bool { return !t.timeout }
func (t fakeToken) Error() error                   { return t.err }
func (t fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type published struct {
	topic   string
	payload []byte
}

type fakeClient struct {
	token fakeToken
	sent  []published
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.sent = append(c.sent, published{topic: topic, payload: payload.([]byte)})
	return c.token
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBuildTopic(t *testing.T) {
	tests := []struct {
		prefix, scene, event, want string
	}{
		{"scenecsv", "main", EventPlaced, "scenecsv/main/scene.placed"},
		{"/game/", "lvl1", EventCleared, "game/lvl1/scene.cleared"},
	}
	for _, tt := range tests {
		if got := BuildTopic(tt.prefix, tt.scene, tt.event); got != tt.want {
			t.Errorf("BuildTopic(%q, %q, %q) = %q, want %q", tt.prefix, tt.scene, tt.event, got, tt.want)
		}
	}
}

func TestParseTopic(t *testing.T) {
	sc, ev, ok := ParseTopic("scenecsv", "scenecsv/main/scene.placed")
	if !ok || sc != "main" || ev != EventPlaced {
		t.Errorf("ParseTopic = %q, %q, %v", sc, ev, ok)
	}

	for _, bad := range []string{"other/main/x", "scenecsv/main", "scenecsv/a/b/c", "scenecsv//x"} {
		if _, _, ok := ParseTopic("scenecsv", bad); ok {
			t.Errorf("ParseTopic(%q) ok = true, want false", bad)
		}
	}
}

func TestValidateTopics(t *testing.T) {
	tests := []struct {
		prefix, scene string
		wantErr       bool
	}{
		{"scenecsv", "main", false},
		{"/game/", "lvl1", false},
		{"scenecsv", "a/b", true},
		{"scenecsv", "", true},
		{"scenecsv", "lvl+1", true},
		{"scene#", "main", true},
	}
	for _, tt := range tests {
		err := ValidateTopics(tt.prefix, tt.scene)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateTopics(%q, %q) error = %v, wantErr %v", tt.prefix, tt.scene, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidTopic) {
			t.Errorf("ValidateTopics(%q, %q) error = %v, want ErrInvalidTopic", tt.prefix, tt.scene, err)
		}
	}
}

func TestConnect_RejectsBadSceneBeforeDialing(t *testing.T) {
	_, err := Connect(Config{URL: "tcp://127.0.0.1:1", Scene: "a/b"}, nil)
	if !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Connect() error = %v, want ErrInvalidTopic", err)
	}
}

func TestPublisher_Place(t *testing.T) {
	client := &fakeClient{}
	p := newPublisher(client, Config{TopicPrefix: "t", Scene: "s"}, quietLogger())

	inst := scene.Instance{
		ID:     uuid.MustParse("11111111-2222-3333-4444-555555555555"),
		Name:   "Oak",
		Prefab: catalog.Prefab{Name: "Tree", Asset: "props/tree"},
	}
	err := p.Place(context.Background(), inst, placement.Vec3{X: 1, Y: 2, Z: 3}, placement.Vec3{Y: 45})
	if err != nil {
		t.Fatalf("Place() error = %v", err)
	}

	if len(client.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(client.sent))
	}
	if client.sent[0].topic != "t/s/scene.placed" {
		t.Errorf("topic = %q", client.sent[0].topic)
	}

	var msg struct {
		EventType string    `json:"event_type"`
		Scene     string    `json:"scene"`
		Data      Placement `json:"data"`
	}
	if err := json.Unmarshal(client.sent[0].payload, &msg); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if msg.EventType != EventPlaced || msg.Scene != "s" {
		t.Errorf("header = %q/%q", msg.EventType, msg.Scene)
	}
	if msg.Data.Name != "Oak" || msg.Data.Asset != "props/tree" || msg.Data.Position.Z != 3 || msg.Data.Rotation.Y != 45 {
		t.Errorf("data = %+v", msg.Data)
	}
}

func TestPublisher_Clear(t *testing.T) {
	client := &fakeClient{}
	p := newPublisher(client, Config{}, quietLogger())

	if err := p.Clear(context.Background()); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if got := client.sent[0].topic; got != "scenecsv/default/scene.cleared" {
		t.Errorf("topic = %q", got)
	}
}

func TestPublisher_Errors(t *testing.T) {
	boom := errors.New("refused")

	p := newPublisher(&fakeClient{token: fakeToken{err: boom}}, Config{}, quietLogger())
	if err := p.Clear(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Clear() error = %v, want refused", err)
	}

	p = newPublisher(&fakeClient{token: fakeToken{timeout: true}}, Config{}, quietLogger())
	if err := p.Clear(context.Background()); err == nil {
		t.Error("Clear() should fail on timeout")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	client := &fakeClient{}
	p = newPublisher(client, Config{}, quietLogger())
	if err := p.Clear(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Clear() error = %v, want context.Canceled", err)
	}
	if len(client.sent) != 0 {
		t.Error("canceled context should not publish")
	}
}
