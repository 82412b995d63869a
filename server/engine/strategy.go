package engine

import "fmt"

// row holds one action per dealer up-card: 2, 3, 4, 5, 6, 7, 8, 9, 10, A.
type row [10]Action

const (
	h = Hit
	s = Stand
	d = Double
	p = Split
)

const (
	minHard = 5
	maxHard = 19
)

// hardTotals is indexed by player total minus minHard.
var hardTotals = [maxHard - minHard + 1]row{
	{h, h, h, h, h, h, h, h, h, h}, // 5
	{h, h, h, h, h, h, h, h, h, h}, // 6
	{h, h, h, h, h, h, h, h, h, h}, // 7
	{h, h, h, h, h, h, h, h, h, h}, // 8
	{h, d, d, d, d, h, h, h, h, h}, // 9
	{d, d, d, d, d, d, d, d, h, h}, // 10
	{d, d, d, d, d, d, d, d, d, d}, // 11
	{h, h, s, s, s, h, h, h, h, h}, // 12
	{s, s, s, s, s, h, h, h, h, h}, // 13
	{s, s, s, s, s, h, h, h, h, h}, // 14
	{s, s, s, s, s, h, h, h, h, h}, // 15
	{s, s, s, s, s, h, h, h, h, h}, // 16
	{s, s, s, s, s, s, s, s, s, s}, // 17
	{s, s, s, s, s, s, s, s, s, s}, // 18
	{s, s, s, s, s, s, s, s, s, s}, // 19
}

// softTotals is indexed by the value of the non-ace card minus two.
var softTotals = [9]row{
	{h, h, h, d, d, h, h, h, h, h}, // A,2
	{h, h, h, d, d, h, h, h, h, h}, // A,3
	{h, h, d, d, d, h, h, h, h, h}, // A,4
	{h, h, d, d, d, h, h, h, h, h}, // A,5
	{h, d, d, d, d, h, h, h, h, h}, // A,6
	{d, d, d, d, d, s, s, h, h, h}, // A,7
	{s, s, s, s, d, s, s, s, s, s}, // A,8
	{s, s, s, s, s, s, s, s, s, s}, // A,9
	{s, s, s, s, s, s, s, s, s, s}, // A,10
}

// pairs is indexed by slot: the card value minus two, aces last.
var pairs = [10]row{
	{p, p, p, p, p, p, h, h, h, h}, // 2,2
	{p, p, p, p, p, p, h, h, h, h}, // 3,3
	{h, h, h, p, p, h, h, h, h, h}, // 4,4
	{d, d, d, d, d, d, d, d, h, h}, // 5,5
	{p, p, p, p, p, p, p, p, p, p}, // 6,6
	{p, p, p, p, p, p, h, h, h, h}, // 7,7
	{p, p, p, p, p, p, p, p, p, p}, // 8,8
	{p, p, p, p, p, s, p, p, s, s}, // 9,9
	{s, s, s, s, s, s, s, s, s, s}, // 10,10
	{p, p, p, p, p, p, p, p, p, p}, // A,A
}

// slot folds a rank into its table position: 2..10 and faces by value,
// ace in its own slot after the tens.
func slot(r Rank) int {
	if r == Ace {
		return 9
	}
	return r.Value() - 2
}

// Recommend returns the basic-strategy action for a two-card player hand
// against the dealer up-card. ok is false when the hand does not have
// exactly two cards; no recommendation is defined for it.
func Recommend(player []Card, up Card, playerTotal int) (act Action, ok bool, err error) {
	if len(player) != 2 {
		return "", false, nil
	}
	for _, c := range append([]Card{up}, player...) {
		if !c.Rank.Valid() {
			return "", false, fmt.Errorf("%w: %d", ErrInvalidRank, int(c.Rank))
		}
	}
	col := slot(up.Rank)
	a, b := player[0].Rank, player[1].Rank

	switch {
	case a == Ace && b == Ace:
		act = pairs[slot(Ace)][col]
	case a == Ace || b == Ace:
		other := a
		if a == Ace {
			other = b
		}
		act = softTotals[slot(other)][col]
	case slot(a) == slot(b):
		act = pairs[slot(a)][col]
	default:
		if playerTotal < minHard || playerTotal > maxHard {
			return "", false, fmt.Errorf("%w: hard %d vs %s", ErrInvalidTableKey, playerTotal, up.Rank)
		}
		act = hardTotals[playerTotal-minHard][col]
	}
	if act == "" {
		return "", false, fmt.Errorf("%w: %s,%s vs %s", ErrInvalidTableKey, a, b, up.Rank)
	}
	return act, true, nil
}
