package agent

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"blackjack-helper/server/engine"
)

func TestParseCardNormalizes(t *testing.T) {
	got, err := ParseCard(Card{Rank: " a", Suit: "Hearts", Confidence: 0.95})
	if err != nil {
		t.Fatalf("ParseCard returned error: %v", err)
	}
	want := engine.Card{Rank: engine.Ace, Suit: engine.Hearts, Confidence: 0.95}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestParseCardRejects(t *testing.T) {
	tests := []struct {
		name string
		card Card
		want error
	}{
		{"rank", Card{Rank: "1", Suit: "hearts", Confidence: 1}, engine.ErrInvalidRank},
		{"suit", Card{Rank: "K", Suit: "stars", Confidence: 1}, engine.ErrInvalidSuit},
		{"confidence high", Card{Rank: "K", Suit: "clubs", Confidence: 1.5}, ErrInvalidConfidence},
		{"confidence low", Card{Rank: "K", Suit: "clubs", Confidence: -0.1}, ErrInvalidConfidence},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseCard(tt.card); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestFrameValidateNamesGroup(t *testing.T) {
	f := Frame{
		PlayerCards: []Card{{Rank: "2", Suit: "hearts", Confidence: 1}},
		DealerCards: []Card{{Rank: "K", Suit: "diamonds", Confidence: 1}, {Rank: "Z", Suit: "spades"}},
	}
	_, _, err := f.Validate()
	if !errors.Is(err, engine.ErrInvalidRank) {
		t.Fatalf("expected ErrInvalidRank, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "dealer card 1:") {
		t.Fatalf("expected error to name dealer card 1, got %q", err.Error())
	}
}

func TestFrameJSON(t *testing.T) {
	raw := `{"player_cards":[{"rank":"A","suit":"hearts","confidence":0.95},{"rank":"K","suit":"spades","confidence":0.9}],
	         "dealer_cards":[{"rank":"7","suit":"diamonds","confidence":0.85}]}`
	var f Frame
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	player, dealer, err := f.Validate()
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if got := Display(player); strings.Join(got, " ") != "A♥ K♠" {
		t.Fatalf("unexpected player cards %v", got)
	}
	if got := Display(dealer); len(got) != 1 || got[0] != "7♦" {
		t.Fatalf("unexpected dealer cards %v", got)
	}
}
