package engine

import "fmt"

// Evaluate returns the blackjack total of cards. Every ace starts at 11 and
// aces are demoted to 1 one at a time while the total is over 21. Callers
// treat an empty hand as having no total.
func Evaluate(cards []Card) (int, error) {
	total, _, err := evaluate(cards)
	return total, err
}

func evaluate(cards []Card) (total int, soft bool, err error) {
	aces := 0
	for _, c := range cards {
		if !c.Rank.Valid() {
			return 0, false, fmt.Errorf("%w: %d", ErrInvalidRank, int(c.Rank))
		}
		if c.Rank == Ace {
			aces++
		}
		total += c.Rank.Value()
	}
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total, aces > 0, nil
}

// IsSoft reports whether an ace in the hand is still counted as 11.
func IsSoft(cards []Card) bool {
	_, soft, err := evaluate(cards)
	return err == nil && soft
}

func IsBlackjack(cards []Card) bool {
	if len(cards) != 2 {
		return false
	}
	total, err := Evaluate(cards)
	return err == nil && total == 21
}

func IsBust(cards []Card) bool {
	total, err := Evaluate(cards)
	return err == nil && total > 21
}
