package services

import "testing"

func TestMovementDocPrefix(t *testing.T) {
	tests := []struct {
		kind    string
		isoDate string
		want    string
	}{
		{"SF", "2026-08-31", "SF20260831"},
		{"ST", "2026-01-02", "ST20260102"},
		{"SF", "2025-12-31", "SF20251231"},
	}

	for _, tt := range tests {
		if got := movementDocPrefix(tt.kind, tt.isoDate); got != tt.want {
			t.Errorf("movementDocPrefix(%q, %q) = %q, want %q", tt.kind, tt.isoDate, got, tt.want)
		}
	}
}

func TestDispatchDocPrefix(t *testing.T) {
	if got := dispatchDocPrefix(2026); got != "IR-2026-" {
		t.Errorf("dispatchDocPrefix(2026) = %q, want %q", got, "IR-2026-")
	}
}

func TestNextInSequence(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		last   string
		width  int
		want   string
	}{
		{"first of the day", "SF20260831", "", 3, "SF20260831001"},
		{"increments tail", "SF20260831", "SF20260831007", 3, "SF20260831008"},
		{"restarts on new prefix", "SF20260901", "SF20260831042", 3, "SF20260901001"},
		{"grows past the width", "SF20260831", "SF20260831999", 3, "SF202608311000"},
		{"dispatch width four", "IR-2026-", "IR-2026-0012", 4, "IR-2026-0013"},
		{"garbage tail restarts", "IR-2026-", "IR-2026-abc", 4, "IR-2026-0001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nextInSequence(tt.prefix, tt.last, tt.width); got != tt.want {
				t.Fatalf("nextInSequence(%q, %q, %d) = %q, want %q", tt.prefix, tt.last, tt.width, got, tt.want)
			}
		})
	}
}
