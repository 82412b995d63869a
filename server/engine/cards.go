package engine

import (
	"math/rand"
	"time"
)

var suits = [4]Suit{Clubs, Diamonds, Hearts, Spades}

// NewShoe returns a shuffled shoe of the given number of 52-card decks.
func NewShoe(decks int, seed int64) []Card {
	if decks < 1 {
		decks = 1
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	r := rand.New(rand.NewSource(seed))
	shoe := make([]Card, 0, decks*52)
	for d := 0; d < decks; d++ {
		for _, s := range suits {
			for rnk := Ace; rnk <= King; rnk++ {
				shoe = append(shoe, Card{Rank: rnk, Suit: s, Confidence: 1})
			}
		}
	}
	for i := len(shoe) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		shoe[i], shoe[j] = shoe[j], shoe[i]
	}
	return shoe
}

func (c Card) String() string {
	return c.Rank.String() + c.Suit.Symbol()
}
