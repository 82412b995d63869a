package session

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"blackjack-helper/server/counter"
	"blackjack-helper/server/engine"
)

type failingStore struct{}

func (failingStore) Load(context.Context) (int, error) { return 0, nil }
func (failingStore) Save(context.Context, int) error   { return errors.New("read-only") }

func card(r engine.Rank, s engine.Suit) engine.Card {
	return engine.Card{Rank: r, Suit: s, Confidence: 0.9}
}

func newAnalyzer() (*Analyzer, *counter.Counter) {
	c := counter.Open(context.Background(), nil)
	return New(c), c
}

func TestSoftAceNineStands(t *testing.T) {
	a, _ := newAnalyzer()
	gs, err := a.ProcessFrame(context.Background(),
		[]engine.Card{card(engine.Ace, engine.Hearts), card(engine.Nine, engine.Spades)},
		[]engine.Card{card(engine.Seven, engine.Diamonds)})
	if err != nil {
		t.Fatalf("ProcessFrame returned error: %v", err)
	}
	if gs.PlayerTotal == nil || *gs.PlayerTotal != 20 {
		t.Fatalf("expected player total 20, got %v", gs.PlayerTotal)
	}
	if gs.DealerTotal == nil || *gs.DealerTotal != 7 {
		t.Fatalf("expected dealer total 7, got %v", gs.DealerTotal)
	}
	if gs.Recommendation == nil || *gs.Recommendation != engine.Stand {
		t.Fatalf("expected stand, got %v", gs.Recommendation)
	}
}

func TestPairRecommendations(t *testing.T) {
	tests := []struct {
		rank engine.Rank
		want engine.Action
	}{
		{engine.Eight, engine.Split},
		{engine.Five, engine.Hit},
	}
	for _, tt := range tests {
		a, _ := newAnalyzer()
		gs, err := a.ProcessFrame(context.Background(),
			[]engine.Card{card(tt.rank, engine.Clubs), card(tt.rank, engine.Diamonds)},
			[]engine.Card{card(engine.Ten, engine.Hearts)})
		if err != nil {
			t.Fatalf("ProcessFrame returned error: %v", err)
		}
		if gs.Recommendation == nil || *gs.Recommendation != tt.want {
			t.Fatalf("pair of %v vs 10: expected %s, got %v", tt.rank, tt.want, gs.Recommendation)
		}
	}
}

func TestRunningCountAcrossFrames(t *testing.T) {
	a, c := newAnalyzer()
	player := []engine.Card{card(engine.Two, engine.Hearts), card(engine.Three, engine.Spades)}
	dealer := []engine.Card{card(engine.King, engine.Diamonds)}
	for i, want := range []int{1, 2} {
		gs, err := a.ProcessFrame(context.Background(), player, dealer)
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		if gs.PlayerRunningCount != 2 || gs.DealerRunningCount != -1 || gs.TotalRunningCount != 1 {
			t.Fatalf("frame %d: unexpected counts %+v", i, gs)
		}
		if gs.CumulativeRunningCount != want {
			t.Fatalf("frame %d: expected cumulative %d, got %d", i, want, gs.CumulativeRunningCount)
		}
	}
	if c.Current() != 2 {
		t.Fatalf("expected counter at 2, got %d", c.Current())
	}
}

func TestEmptyFrame(t *testing.T) {
	a, c := newAnalyzer()
	c.Accumulate(context.Background(), 4)
	gs, err := a.ProcessFrame(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("ProcessFrame returned error: %v", err)
	}
	if gs.PlayerTotal != nil || gs.DealerTotal != nil || gs.Recommendation != nil {
		t.Fatalf("expected absent totals and recommendation, got %+v", gs)
	}
	if gs.TotalRunningCount != 0 || gs.CumulativeRunningCount != 4 {
		t.Fatalf("expected frame count 0 and cumulative 4, got %+v", gs)
	}
	b, _ := json.Marshal(gs)
	for _, frag := range []string{`"player_cards":[]`, `"player_total":null`, `"recommendation":null`} {
		if !strings.Contains(string(b), frag) {
			t.Fatalf("expected %s in %s", frag, b)
		}
	}
}

func TestNoRecommendationWithoutDealer(t *testing.T) {
	a, _ := newAnalyzer()
	gs, err := a.ProcessFrame(context.Background(),
		[]engine.Card{card(engine.Ten, engine.Hearts), card(engine.Six, engine.Spades)}, nil)
	if err != nil {
		t.Fatalf("ProcessFrame returned error: %v", err)
	}
	if gs.Recommendation != nil {
		t.Fatalf("expected no recommendation, got %s", *gs.Recommendation)
	}
	if gs.PlayerTotal == nil || *gs.PlayerTotal != 16 {
		t.Fatalf("expected total 16, got %v", gs.PlayerTotal)
	}
}

func TestThreeCardHandHasNoRecommendation(t *testing.T) {
	a, _ := newAnalyzer()
	gs, err := a.ProcessFrame(context.Background(),
		[]engine.Card{card(engine.Ten, engine.Hearts), card(engine.Six, engine.Spades), card(engine.Nine, engine.Clubs)},
		[]engine.Card{card(engine.Ace, engine.Hearts)})
	if err != nil {
		t.Fatalf("ProcessFrame returned error: %v", err)
	}
	if gs.Recommendation != nil {
		t.Fatalf("expected no recommendation, got %s", *gs.Recommendation)
	}
	if !gs.PlayerBust {
		t.Fatalf("expected 25 to be reported as bust")
	}
}

func TestInvalidCardLeavesCountUntouched(t *testing.T) {
	a, c := newAnalyzer()
	_, err := a.ProcessFrame(context.Background(),
		[]engine.Card{card(engine.Two, engine.Hearts)},
		[]engine.Card{{Rank: engine.King, Suit: "stars"}})
	if !errors.Is(err, engine.ErrInvalidSuit) {
		t.Fatalf("expected ErrInvalidSuit, got %v", err)
	}
	if c.Current() != 0 {
		t.Fatalf("expected counter untouched, got %d", c.Current())
	}
}

func TestPersistFailureIsNotFatal(t *testing.T) {
	a := New(counter.Open(context.Background(), failingStore{}))
	gs, err := a.ProcessFrame(context.Background(),
		[]engine.Card{card(engine.Four, engine.Hearts)}, nil)
	if err != nil {
		t.Fatalf("expected save failure to be absorbed, got %v", err)
	}
	if gs.CumulativeRunningCount != 1 {
		t.Fatalf("expected cumulative 1, got %d", gs.CumulativeRunningCount)
	}
}
