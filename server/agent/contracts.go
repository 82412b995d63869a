package agent

import (
	"errors"
	"fmt"

	"blackjack-helper/server/engine"
)

var ErrInvalidConfidence = errors.New("confidence out of range")

// Card is a card as a recognizer reports it.
type Card struct {
	Rank       string  `json:"rank"`       // A, 2..10, J, Q, K
	Suit       string  `json:"suit"`       // hearts|diamonds|clubs|spades
	Confidence float64 `json:"confidence"` // 0..1
}

// Frame is the set of cards recognized in one photo of the table.
type Frame struct {
	PlayerCards []Card `json:"player_cards"`
	DealerCards []Card `json:"dealer_cards"`
}

// ParseCard validates a recognized card against the card vocabulary.
func ParseCard(c Card) (engine.Card, error) {
	r, err := engine.ParseRank(c.Rank)
	if err != nil {
		return engine.Card{}, err
	}
	s, err := engine.ParseSuit(c.Suit)
	if err != nil {
		return engine.Card{}, err
	}
	if c.Confidence < 0 || c.Confidence > 1 {
		return engine.Card{}, fmt.Errorf("%w: %v", ErrInvalidConfidence, c.Confidence)
	}
	return engine.Card{Rank: r, Suit: s, Confidence: c.Confidence}, nil
}

func ParseCards(cs []Card) ([]engine.Card, error) {
	out := make([]engine.Card, 0, len(cs))
	for i, c := range cs {
		ec, err := ParseCard(c)
		if err != nil {
			return nil, fmt.Errorf("card %d: %w", i, err)
		}
		out = append(out, ec)
	}
	return out, nil
}

// Validate converts both groups of a frame, naming the group that failed.
func (f Frame) Validate() (player, dealer []engine.Card, err error) {
	if player, err = ParseCards(f.PlayerCards); err != nil {
		return nil, nil, fmt.Errorf("player %w", err)
	}
	if dealer, err = ParseCards(f.DealerCards); err != nil {
		return nil, nil, fmt.Errorf("dealer %w", err)
	}
	return player, dealer, nil
}

// Display renders cards as e.g. ["A♥", "10♠"].
func Display(cs []engine.Card) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.String()
	}
	return out
}
