package ui

import (
	"strings"
	"testing"

	"nulint/internal/driver"
)

func TestProgressModelTracksStatuses(t *testing.T) {
	events := make(chan driver.Event, 4)
	model := NewProgressModel("linting", []string{"a.nu", "b.nu"}, events).(*progressModel)

	model.applyEvent(driver.Event{File: "a.nu", Status: driver.StatusLinting})
	model.applyEvent(driver.Event{File: "a.nu", Status: driver.StatusProblems, Violations: 3})
	model.applyEvent(driver.Event{File: "b.nu", Status: driver.StatusClean})

	view := model.View()
	if !strings.Contains(view, "3 problems") {
		t.Errorf("view missing problem count:\n%s", view)
	}
	if !strings.Contains(view, "clean") {
		t.Errorf("view missing clean status:\n%s", view)
	}
}

func TestProgressModelIgnoresUnknownFile(t *testing.T) {
	events := make(chan driver.Event)
	model := NewProgressModel("linting", []string{"a.nu"}, events).(*progressModel)
	if cmd := model.applyEvent(driver.Event{File: "other.nu", Status: driver.StatusClean}); cmd != nil {
		t.Error("unknown file produced a progress command")
	}
}

func TestProgressModelDoneMessageQuits(t *testing.T) {
	events := make(chan driver.Event)
	model := NewProgressModel("linting", []string{"a.nu"}, events).(*progressModel)
	updated, cmd := model.Update(doneMsg{})
	if !updated.(*progressModel).done {
		t.Error("model not marked done")
	}
	if cmd == nil {
		t.Error("expected quit command")
	}
}

func TestTruncateLongPaths(t *testing.T) {
	if got := truncate("short", 20); got != "short" {
		t.Errorf("truncate(short) = %q", got)
	}
	long := strings.Repeat("a", 40)
	got := truncate(long, 20)
	if !strings.HasSuffix(got, "…") || len([]rune(got)) > 20 {
		t.Errorf("truncate(long) = %q", got)
	}
}

func TestChannelSinkForwards(t *testing.T) {
	events := make(chan driver.Event, 1)
	ChannelSink(events).OnEvent(driver.Event{File: "a.nu", Status: driver.StatusQueued})
	select {
	case ev := <-events:
		if ev.File != "a.nu" {
			t.Errorf("event = %+v", ev)
		}
	default:
		t.Fatal("no event forwarded")
	}
}
