package broker

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidTopic is returned when a prefix or scene name cannot form a
// topic that subscribers can split back apart.
var ErrInvalidTopic = errors.New("invalid broker topic")

// Event types published by the sink.
const (
	EventCleared = "scene.cleared"
	EventPlaced  = "scene.placed"
)

// BuildTopic returns the topic for an event in a scene.
// Format: <prefix>/<scene>/<event>.
func BuildTopic(prefix, scene, event string) string {
	return fmt.Sprintf("%s/%s/%s", strings.Trim(prefix, "/"), scene, event)
}

// ParseTopic splits a topic built by BuildTopic.
func ParseTopic(prefix, topic string) (scene, event string, ok bool) {
	rest, found := strings.CutPrefix(topic, strings.Trim(prefix, "/")+"/")
	if !found {
		return "", "", false
	}
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// ValidateTopics checks that every event topic of the scene parses back to
// the same scene and event and carries no MQTT wildcard.
func ValidateTopics(prefix, scene string) error {
	for _, event := range []string{EventCleared, EventPlaced} {
		topic := BuildTopic(prefix, scene, event)
		if strings.ContainsAny(topic, "+#") {
			return fmt.Errorf("%w: %q contains a wildcard", ErrInvalidTopic, topic)
		}
		gotScene, gotEvent, ok := ParseTopic(prefix, topic)
		if !ok || gotScene != scene || gotEvent != event {
			return fmt.Errorf("%w: %q does not split into scene %q", ErrInvalidTopic, topic, scene)
		}
	}
	return nil
}
