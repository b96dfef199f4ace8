package model

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestIDAcceptsLegacyNumbers(t *testing.T) {
	var p Player
	if err := json.Unmarshal([]byte(`{"id":1714060800123,"name":"Ann","color":"#ff0000","wins":2,"losses":1}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.ID != "1714060800123" {
		t.Fatalf("unexpected id %q", p.ID)
	}
	if p.Wins != 2 || p.Losses != 1 {
		t.Fatalf("unexpected record: %+v", p)
	}
}

func TestHistoryEntryLegacyShape(t *testing.T) {
	raw := `{"id":42,"players":[{"id":1,"name":"A","color":"#000000","score":3,"wins":0,"losses":0},{"id":2,"name":"B","color":"#ffffff","score":5}],"timestamp":"2024-03-01T10:00:00.000Z","winnerId":2}`
	var h HistoryEntry
	if err := json.Unmarshal([]byte(raw), &h); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if h.SessionID != "42" || len(h.Entrants) != 2 || h.WinnerEntrantID != "2" {
		t.Fatalf("unexpected entry: %+v", h)
	}
	winner, ok := h.Winner()
	if !ok || winner.Name != "B" {
		t.Fatalf("expected winner B, got %+v", winner)
	}
	if winner.Ref().Kind != KindPlayer {
		t.Fatalf("legacy entrants should default to player kind")
	}
}

func TestHistoryEntryRoundTripKeepsFieldNames(t *testing.T) {
	h := HistoryEntry{
		SessionID:       "s1",
		Entrants:        []Entrant{{ID: "p1", Kind: KindPlayer, Name: "A", Color: "#112233", Score: 1}},
		WinnerEntrantID: "p1",
	}
	data, err := json.Marshal(h)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"sessionId", "entrants", "winnerEntrantId", "timestamp"} {
		if _, ok := fields[key]; !ok {
			t.Fatalf("missing field %q in %s", key, data)
		}
	}
}

func TestNormalizeColor(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "", want: DefaultColor},
		{in: "#ABC", want: "#aabbcc"},
		{in: " #00ff7F ", want: "#00ff7f"},
		{in: "red", wantErr: true},
		{in: "#12345", wantErr: true},
		{in: "#zzzzzz", wantErr: true},
	}
	for _, tc := range cases {
		got, err := NormalizeColor(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("%q: expected validation error, got %v", tc.in, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: unexpected error %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("%q: expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestNextIncrementCycles(t *testing.T) {
	seq := []int{1, 2, 5, 10, 1}
	for i := 0; i < len(seq)-1; i++ {
		if got := NextIncrement(seq[i]); got != seq[i+1] {
			t.Fatalf("after %d expected %d, got %d", seq[i], seq[i+1], got)
		}
	}
	if NextIncrement(3) != 1 {
		t.Fatalf("unknown increment should reset to 1")
	}
}

func TestErrorsMatchSentinels(t *testing.T) {
	if !errors.Is(&NotFoundError{Kind: "player", ID: "x"}, ErrNotFound) {
		t.Fatalf("NotFoundError should match ErrNotFound")
	}
	if !errors.Is(&InvalidStateError{Op: "end", State: "idle"}, ErrInvalidState) {
		t.Fatalf("InvalidStateError should match ErrInvalidState")
	}
	if errors.Is(&ValidationError{Field: "name"}, ErrNotFound) {
		t.Fatalf("ValidationError must not match ErrNotFound")
	}
}
