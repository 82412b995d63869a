package engine

import "fmt"

// CountValue is the Hi-Lo weight of a rank: +1 for 2-6, 0 for 7-9 and -1
// for tens, faces and aces. Invalid ranks weigh 0.
func CountValue(r Rank) int {
	switch {
	case r >= Two && r <= Six:
		return 1
	case r >= Seven && r <= Nine:
		return 0
	case r == Ace, r >= Ten && r <= King:
		return -1
	}
	return 0
}

// GroupCount sums the Hi-Lo weights of cards.
func GroupCount(cards []Card) (int, error) {
	n := 0
	for _, c := range cards {
		if !c.Rank.Valid() {
			return 0, fmt.Errorf("%w: %d", ErrInvalidRank, int(c.Rank))
		}
		n += CountValue(c.Rank)
	}
	return n, nil
}
