package engine

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidRank     = errors.New("invalid rank")
	ErrInvalidSuit     = errors.New("invalid suit")
	ErrInvalidTableKey = errors.New("strategy table key out of range")
)

// Rank is a card rank. The zero value is not a valid rank.
type Rank uint8

const (
	Ace Rank = iota + 1
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
)

type Suit string

const (
	Hearts   Suit = "hearts"
	Diamonds Suit = "diamonds"
	Clubs    Suit = "clubs"
	Spades   Suit = "spades"
)

type Action string

const (
	Hit    Action = "hit"
	Stand  Action = "stand"
	Double Action = "double"
	Split  Action = "split"
)

type Card struct {
	Rank       Rank    `json:"rank"`
	Suit       Suit    `json:"suit"`
	Confidence float64 `json:"confidence"`
} // e.g. {A, hearts, 0.95}

func (r Rank) Valid() bool { return r >= Ace && r <= King }

// Value is the blackjack value with an ace counted high.
func (r Rank) Value() int {
	switch {
	case r == Ace:
		return 11
	case r >= Ten && r <= King:
		return 10
	default:
		return int(r)
	}
}

func (r Rank) String() string {
	switch r {
	case Ace:
		return "A"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	}
	if r.Valid() {
		return fmt.Sprintf("%d", int(r))
	}
	return fmt.Sprintf("Rank(%d)", int(r))
}

func (r Rank) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRank, int(r))
	}
	return []byte(r.String()), nil
}

func (r *Rank) UnmarshalText(b []byte) error {
	v, err := ParseRank(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// ParseRank accepts A, 2..10, J, Q, K in any case; "T" is read as ten.
func ParseRank(s string) (Rank, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "A":
		return Ace, nil
	case "2":
		return Two, nil
	case "3":
		return Three, nil
	case "4":
		return Four, nil
	case "5":
		return Five, nil
	case "6":
		return Six, nil
	case "7":
		return Seven, nil
	case "8":
		return Eight, nil
	case "9":
		return Nine, nil
	case "10", "T":
		return Ten, nil
	case "J":
		return Jack, nil
	case "Q":
		return Queen, nil
	case "K":
		return King, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidRank, s)
}

func (s Suit) Valid() bool {
	switch s {
	case Hearts, Diamonds, Clubs, Spades:
		return true
	}
	return false
}

func (s Suit) Symbol() string {
	switch s {
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	case Spades:
		return "♠"
	}
	return "?"
}

func ParseSuit(s string) (Suit, error) {
	v := Suit(strings.ToLower(strings.TrimSpace(s)))
	if !v.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidSuit, s)
	}
	return v, nil
}

// Validate rejects a card whose rank or suit is outside the vocabulary.
// Confidence is informational and not checked here.
func (c Card) Validate() error {
	if !c.Rank.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidRank, int(c.Rank))
	}
	if !c.Suit.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSuit, string(c.Suit))
	}
	return nil
}
