package core

import (
	"testing"
	"time"
)

func entry(profile string, finished time.Time) *SpawnResult {
	return &SpawnResult{Profile: profile, FinishedAt: finished}
}

func TestHistory_Ring(t *testing.T) {
	h := NewHistory(3)
	now := time.Now()

	for _, name := range []string{"a", "b", "c", "d"} {
		h.Add(entry(name, now))
	}

	list := h.List()
	if len(list) != 3 {
		t.Fatalf("len = %d, want 3", len(list))
	}
	for i, want := range []string{"d", "c", "b"} {
		if list[i].Profile != want {
			t.Errorf("List()[%d] = %q, want %q", i, list[i].Profile, want)
		}
	}

	latest, ok := h.Latest()
	if !ok || latest.Profile != "d" {
		t.Errorf("Latest() = %v, %v", latest, ok)
	}
}

func TestHistory_Empty(t *testing.T) {
	h := NewHistory(0)
	if h.Len() != 0 {
		t.Errorf("Len = %d, want 0", h.Len())
	}
	if _, ok := h.Latest(); ok {
		t.Error("Latest on empty history should report false")
	}
}

func TestHistory_Prune(t *testing.T) {
	h := NewHistory(4)
	now := time.Now()

	h.Add(entry("old1", now.Add(-2*time.Hour)))
	h.Add(entry("new1", now))
	h.Add(entry("old2", now.Add(-3*time.Hour)))
	h.Add(entry("new2", now))

	removed := h.Prune(now.Add(-time.Hour))
	if removed != 2 {
		t.Errorf("Prune removed %d, want 2", removed)
	}

	list := h.List()
	if len(list) != 2 || list[0].Profile != "new2" || list[1].Profile != "new1" {
		t.Errorf("after prune = %v", profiles(list))
	}

	h.Add(entry("new3", now))
	if got := h.List()[0].Profile; got != "new3" {
		t.Errorf("newest after prune+add = %q, want new3", got)
	}
}

func profiles(list []*SpawnResult) []string {
	out := make([]string, len(list))
	for i, r := range list {
		out[i] = r.Profile
	}
	return out
}
