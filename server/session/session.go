// Package session runs one recognized frame through the hand evaluator,
// the strategy tables and the running count.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"

	"blackjack-helper/server/counter"
	"blackjack-helper/server/engine"
)

// Accumulator is the running-count collaborator.
type Accumulator interface {
	Accumulate(ctx context.Context, delta int) (int, error)
}

type GameState struct {
	PlayerCards     []engine.Card  `json:"player_cards"`
	DealerCards     []engine.Card  `json:"dealer_cards"`
	PlayerTotal     *int           `json:"player_total"`
	DealerTotal     *int           `json:"dealer_total"`
	Recommendation  *engine.Action `json:"recommendation"`
	PlayerBlackjack bool           `json:"player_blackjack"`
	PlayerBust      bool           `json:"player_bust"`

	PlayerRunningCount     int `json:"player_running_count"`
	DealerRunningCount     int `json:"dealer_running_count"`
	TotalRunningCount      int `json:"total_running_count"`
	CumulativeRunningCount int `json:"cumulative_running_count"`
}

type Analyzer struct {
	count Accumulator
}

func New(count Accumulator) *Analyzer { return &Analyzer{count: count} }

// ProcessFrame evaluates one frame and folds its Hi-Lo total into the
// running count. A frame that fails validation leaves the count untouched.
func (a *Analyzer) ProcessFrame(ctx context.Context, player, dealer []engine.Card) (GameState, error) {
	for _, group := range [][]engine.Card{player, dealer} {
		for _, c := range group {
			if err := c.Validate(); err != nil {
				return GameState{}, err
			}
		}
	}

	gs := GameState{
		PlayerCards: append([]engine.Card{}, player...),
		DealerCards: append([]engine.Card{}, dealer...),
	}
	var err error
	if gs.PlayerTotal, err = total(player); err != nil {
		return GameState{}, err
	}
	if gs.DealerTotal, err = total(dealer); err != nil {
		return GameState{}, err
	}
	gs.PlayerBlackjack = engine.IsBlackjack(player)
	gs.PlayerBust = engine.IsBust(player)

	if gs.PlayerTotal != nil && len(dealer) > 0 {
		act, ok, err := engine.Recommend(player, dealer[0], *gs.PlayerTotal)
		if err != nil {
			return GameState{}, fmt.Errorf("recommend: %w", err)
		}
		if ok {
			gs.Recommendation = &act
		}
	}

	if gs.PlayerRunningCount, err = engine.GroupCount(player); err != nil {
		return GameState{}, err
	}
	if gs.DealerRunningCount, err = engine.GroupCount(dealer); err != nil {
		return GameState{}, err
	}
	gs.TotalRunningCount = gs.PlayerRunningCount + gs.DealerRunningCount

	cum, err := a.count.Accumulate(ctx, gs.TotalRunningCount)
	if err != nil {
		var pe *counter.PersistError
		if !errors.As(err, &pe) {
			return GameState{}, err
		}
		log.Printf("running count kept in memory: %v", err)
	}
	gs.CumulativeRunningCount = cum
	return gs, nil
}

func total(cards []engine.Card) (*int, error) {
	if len(cards) == 0 {
		return nil, nil
	}
	v, err := engine.Evaluate(cards)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
