package game

import (
	"context"
	"fmt"
	"sort"

	"casino-service/internal/model"
	"casino-service/internal/service/ledger"
	appErr "casino-service/pkg/errors"
	"casino-service/pkg/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Video poker statuses. Won and Lost are terminal; a round ends after the
// single draw.
const (
	PokerPlaying = "Playing"
	PokerWon     = "Won"
	PokerLost    = "Lost"
)

type pokerState struct {
	hand      []Card
	deck      []Card // remaining 47 cards, consumed in order on draw
	hasDrawn  bool
	handRank  string
	status    string
	winAmount decimal.Decimal
}

type PokerState struct {
	GameID       string          `json:"gameId"`
	Hand         []CardView      `json:"hand"`
	HandRank     string          `json:"handRank"`
	BetAmount    decimal.Decimal `json:"betAmount"`
	WinAmount    decimal.Decimal `json:"winAmount"`
	Payout       decimal.Decimal `json:"payout"`
	BalanceAfter decimal.Decimal `json:"balanceAfter"`
	Status       string          `json:"status"`
	CanDraw      bool            `json:"canDraw"`
}

// StartPoker debits the bet, deals five cards and keeps the remaining deck on
// the session for the draw.
func (s *Service) StartPoker(ctx context.Context, userID int64, bet decimal.Decimal) (*PokerState, error) {
	if !bet.IsPositive() {
		return nil, appErr.ErrInvalidBet
	}

	betTx, err := s.ledger.Record(ctx, ledger.RecordParams{
		UserID:      userID,
		Type:        model.TxBet,
		Amount:      bet,
		GameType:    model.GamePoker,
		Description: fmt.Sprintf("Poker bet: $%s", bet.StringFixed(2)),
	})
	if err != nil {
		return nil, err
	}

	deck, err := newShuffledDeck(s.rng)
	if err != nil {
		return nil, err
	}

	sess := s.sessions.create(userID, bet)
	sess.poker = &pokerState{
		hand:     deck[:5],
		deck:     deck[5:],
		handRank: "Initial Hand",
		status:   PokerPlaying,
	}

	logger.Log.Info("poker started",
		zap.Int64("userID", userID),
		zap.String("gameID", sess.id),
		zap.String("bet", bet.StringFixed(2)),
	)

	return &PokerState{
		GameID:       sess.id,
		Hand:         pokerViews(sess.poker.hand),
		HandRank:     sess.poker.handRank,
		BetAmount:    bet,
		WinAmount:    decimal.Zero,
		Payout:       decimal.Zero,
		BalanceAfter: betTx.BalanceAfter,
		Status:       PokerPlaying,
		CanDraw:      true,
	}, nil
}

// DrawPoker replaces every card not held with the next card off the session
// deck, evaluates the final hand and settles the round.
func (s *Service) DrawPoker(ctx context.Context, userID int64, gameID string, cardsToHold []int) (*PokerState, error) {
	sess, st, err := s.lookupPoker(userID, gameID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if st.status != PokerPlaying {
		return nil, appErr.ErrInvalidGameState
	}
	if st.hasDrawn {
		return nil, appErr.ErrAlreadyDrawn
	}

	held := make(map[int]bool, len(cardsToHold))
	for _, pos := range cardsToHold {
		if pos < 0 || pos >= 5 {
			return nil, fmt.Errorf("%w: hold position %d out of range", appErr.ErrInvalidBet, pos)
		}
		held[pos] = true
	}

	for i := 0; i < 5; i++ {
		if !held[i] {
			st.hand[i] = st.deck[0]
			st.deck = st.deck[1:]
		}
	}
	st.hasDrawn = true

	handRank, multiplier := evaluatePokerHand(st.hand)
	st.handRank = handRank

	winAmount := sess.bet.Mul(multiplier)
	var balance decimal.Decimal
	if winAmount.IsPositive() {
		winTx, err := s.ledger.Record(ctx, ledger.RecordParams{
			UserID:      userID,
			Type:        model.TxWin,
			Amount:      winAmount,
			GameType:    model.GamePoker,
			Description: fmt.Sprintf("Poker win: %s - $%s", handRank, winAmount.StringFixed(2)),
		})
		if err != nil {
			return nil, err
		}
		balance = winTx.BalanceAfter
		st.status = PokerWon
	} else {
		balance, err = s.account.GetBalance(ctx, userID)
		if err != nil {
			return nil, err
		}
		st.status = PokerLost
	}
	st.winAmount = winAmount

	s.sessions.remove(sess.id)

	logger.Log.Info("poker settled",
		zap.Int64("userID", userID),
		zap.String("gameID", sess.id),
		zap.String("handRank", handRank),
		zap.String("win", winAmount.StringFixed(2)),
	)

	return &PokerState{
		GameID:       sess.id,
		Hand:         pokerViews(st.hand),
		HandRank:     handRank,
		BetAmount:    sess.bet,
		WinAmount:    winAmount,
		Payout:       multiplier,
		BalanceAfter: balance,
		Status:       st.status,
		CanDraw:      false,
	}, nil
}

// GetPokerState returns a read-only snapshot of a tracked session.
func (s *Service) GetPokerState(ctx context.Context, userID int64, gameID string) (*PokerState, error) {
	sess, st, err := s.lookupPoker(userID, gameID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	balance, err := s.account.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}

	payout := decimal.Zero
	if st.winAmount.IsPositive() {
		payout = st.winAmount.Div(sess.bet)
	}
	return &PokerState{
		GameID:       sess.id,
		Hand:         pokerViews(st.hand),
		HandRank:     st.handRank,
		BetAmount:    sess.bet,
		WinAmount:    st.winAmount,
		Payout:       payout,
		BalanceAfter: balance,
		Status:       st.status,
		CanDraw:      !st.hasDrawn && st.status == PokerPlaying,
	}, nil
}

func (s *Service) lookupPoker(userID int64, gameID string) (*session, *pokerState, error) {
	sess, ok := s.sessions.get(gameID)
	if !ok || sess.poker == nil {
		return nil, nil, appErr.ErrGameNotFound
	}
	if sess.userID != userID {
		return nil, nil, appErr.ErrNotYourGame
	}
	return sess, sess.poker, nil
}

// evaluatePokerHand ranks a 5-card hand on the Jacks-or-Better paytable and
// returns the label plus the bet multiplier.
func evaluatePokerHand(hand []Card) (string, decimal.Decimal) {
	values := make([]int, len(hand))
	for i, c := range hand {
		values[i] = c.pokerValue()
	}
	sort.Ints(values)

	isFlush := true
	for _, c := range hand[1:] {
		if c.Suit != hand[0].Suit {
			isFlush = false
			break
		}
	}
	isStraight := isPokerStraight(values)

	counts := make(map[int]int, 5)
	for _, v := range values {
		counts[v]++
	}
	groups := make([]int, 0, len(counts))
	for _, n := range counts {
		groups = append(groups, n)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(groups)))

	switch {
	case isFlush && isStraight && values[0] == 10:
		return "Royal Flush", decimal.NewFromInt(250)
	case isFlush && isStraight:
		return "Straight Flush", decimal.NewFromInt(50)
	case groups[0] == 4:
		return "Four of a Kind", decimal.NewFromInt(25)
	case groups[0] == 3 && groups[1] == 2:
		return "Full House", decimal.NewFromInt(9)
	case isFlush:
		return "Flush", decimal.NewFromInt(6)
	case isStraight:
		return "Straight", decimal.NewFromInt(4)
	case groups[0] == 3:
		return "Three of a Kind", decimal.NewFromInt(3)
	case groups[0] == 2 && groups[1] == 2:
		return "Two Pair", decimal.NewFromInt(2)
	case groups[0] == 2:
		for v, n := range counts {
			if n == 2 && v >= 11 { // J, Q, K, A
				return "Jacks or Better", decimal.NewFromInt(1)
			}
		}
	}
	return "High Card", decimal.Zero
}

func isPokerStraight(sortedValues []int) bool {
	consecutive := true
	for i := 1; i < len(sortedValues); i++ {
		if sortedValues[i] != sortedValues[i-1]+1 {
			consecutive = false
			break
		}
	}
	if consecutive {
		return true
	}
	// The wheel: A-2-3-4-5 with the ace counted low.
	return sortedValues[0] == 2 && sortedValues[1] == 3 &&
		sortedValues[2] == 4 && sortedValues[3] == 5 && sortedValues[4] == 14
}
