package ui

import "testing"

func TestPaint(t *testing.T) {
	prev := Enabled
	defer func() { Enabled = prev }()

	Enabled = false
	if got := Success("ok"); got != "ok" {
		t.Errorf("Expected plain text when disabled, got %q", got)
	}

	Enabled = true
	if got := Error("bad"); got != ColorRed+"bad"+ColorReset {
		t.Errorf("Expected red text, got %q", got)
	}
	if got := Paint("", "x"); got != "x" {
		t.Errorf("Expected empty style to be a no-op, got %q", got)
	}
}
