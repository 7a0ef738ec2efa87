package game

import (
	"context"
	"fmt"
	"testing"

	"casino-service/internal/model"
	"casino-service/internal/service/account"
	"casino-service/internal/service/ledger"
	"casino-service/pkg/logger"
	"casino-service/pkg/utils/random"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// scriptedSource replays a fixed sequence of draws.
type scriptedSource struct {
	draws []int
	pos   int
}

func (s *scriptedSource) Intn(n int) (int, error) {
	if s.pos >= len(s.draws) {
		return 0, fmt.Errorf("scripted source exhausted after %d draws", s.pos)
	}
	v := s.draws[s.pos]
	s.pos++
	if v >= n {
		return 0, fmt.Errorf("scripted draw %d out of bound %d", v, n)
	}
	return v, nil
}

// stackDeckDraws computes the Fisher-Yates swap indexes that turn the ordered
// deck into wantTop followed by the remaining cards in their ordered relative
// positions. Appending the result of several calls scripts several shuffles.
func stackDeckDraws(t *testing.T, wantTop []Card) []int {
	t.Helper()

	target := make([]Card, 0, 52)
	target = append(target, wantTop...)
	for _, c := range orderedDeck() {
		seen := false
		for _, w := range wantTop {
			if w == c {
				seen = true
				break
			}
		}
		if !seen {
			target = append(target, c)
		}
	}
	if len(target) != 52 {
		t.Fatalf("stacked deck has %d cards, want 52", len(target))
	}

	deck := orderedDeck()
	draws := make([]int, 0, 51)
	for i := 51; i > 0; i-- {
		idx := -1
		for k := 0; k <= i; k++ {
			if deck[k] == target[i] {
				idx = k
				break
			}
		}
		if idx < 0 {
			t.Fatalf("card %+v not found while stacking deck", target[i])
		}
		draws = append(draws, idx)
		deck[i], deck[idx] = deck[idx], deck[i]
	}
	return draws
}

func card(rank, suit string) Card {
	return Card{Suit: suit, Rank: rank}
}

func newTestService(t *testing.T, rng random.Source, balance string) (*Service, *ledger.Service, int64) {
	t.Helper()
	logger.InitTestLogger()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}, &model.Transaction{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	user := model.User{
		Username:     "player1",
		Email:        "player1@example.com",
		PasswordHash: "x",
		Balance:      decimal.RequireFromString(balance),
		Status:       "active",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	ledgerSvc := ledger.NewService(db)
	accountSvc := account.NewService(db, ledgerSvc)
	return NewService(accountSvc, ledgerSvc, rng), ledgerSvc, user.ID
}

func countTransactions(t *testing.T, ledgerSvc *ledger.Service, userID int64, txType string) int {
	t.Helper()
	result, err := ledgerSvc.History(context.Background(), userID, 1, 100)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	n := 0
	for _, item := range result.Items {
		if item.Type == txType {
			n++
		}
	}
	return n
}
