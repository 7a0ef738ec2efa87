package game

import (
	"context"
	"fmt"

	"casino-service/internal/model"
	"casino-service/internal/service/ledger"
	appErr "casino-service/pkg/errors"
	"casino-service/pkg/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Blackjack session statuses. Everything except Playing is terminal.
const (
	BlackjackPlaying         = "Playing"
	BlackjackPlayerBlackjack = "PlayerBlackjack"
	BlackjackDealerBlackjack = "DealerBlackjack"
	BlackjackPlayerBust      = "PlayerBust"
	BlackjackDealerBust      = "DealerBust"
	BlackjackPlayerWin       = "PlayerWin"
	BlackjackDealerWin       = "DealerWin"
	BlackjackPush            = "Push"
)

type blackjackState struct {
	playerCards []Card
	dealerCards []Card
	status      string
}

type BlackjackState struct {
	GameID                string          `json:"gameId"`
	PlayerHand            []CardView      `json:"playerHand"`
	DealerHand            []CardView      `json:"dealerHand"`
	PlayerHandValue       int             `json:"playerHandValue"`
	DealerHandValue       int             `json:"dealerHandValue"`
	DealerShowingHoleCard bool            `json:"dealerShowingHoleCard"`
	Status                string          `json:"status"`
	BetAmount             decimal.Decimal `json:"betAmount"`
	WinAmount             decimal.Decimal `json:"winAmount"`
	BalanceAfter          decimal.Decimal `json:"balanceAfter"`
	CanHit                bool            `json:"canHit"`
	CanStand              bool            `json:"canStand"`
	CanDouble             bool            `json:"canDouble"`
}

// StartBlackjack debits the bet, deals player and dealer two cards each
// (alternating) and resolves naturals immediately.
func (s *Service) StartBlackjack(ctx context.Context, userID int64, bet decimal.Decimal) (*BlackjackState, error) {
	if !bet.IsPositive() {
		return nil, appErr.ErrInvalidBet
	}

	betTx, err := s.ledger.Record(ctx, ledger.RecordParams{
		UserID:      userID,
		Type:        model.TxBet,
		Amount:      bet,
		GameType:    model.GameBlackjack,
		Description: fmt.Sprintf("Blackjack game - Bet: $%s", bet.StringFixed(2)),
	})
	if err != nil {
		return nil, err
	}

	deck, err := newShuffledDeck(s.rng)
	if err != nil {
		return nil, err
	}

	sess := s.sessions.create(userID, bet)
	st := &blackjackState{
		playerCards: []Card{deck[0], deck[2]},
		dealerCards: []Card{deck[1], deck[3]},
		status:      BlackjackPlaying,
	}
	sess.blackjack = st

	logger.Log.Info("blackjack started",
		zap.Int64("userID", userID),
		zap.String("gameID", sess.id),
		zap.String("bet", bet.StringFixed(2)),
	)

	playerValue := blackjackHandValue(st.playerCards)
	dealerValue := blackjackHandValue(st.dealerCards)

	if playerValue == 21 {
		if dealerValue == 21 {
			st.status = BlackjackPush
		} else {
			st.status = BlackjackPlayerBlackjack
		}
		return s.finalizeBlackjack(ctx, sess, st)
	}
	if dealerValue == 21 {
		st.status = BlackjackDealerBlackjack
		return s.finalizeBlackjack(ctx, sess, st)
	}

	return s.blackjackStateDTO(sess, st, betTx.BalanceAfter, decimal.Zero, false), nil
}

// Hit deals the player one more card. The card comes off an independent fresh
// shuffle, not the shoe dealt at start, so a card already on the table can
// recur within the round.
func (s *Service) Hit(ctx context.Context, userID int64, gameID string) (*BlackjackState, error) {
	sess, st, err := s.lookupBlackjack(userID, gameID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if st.status != BlackjackPlaying {
		return nil, appErr.ErrInvalidGameState
	}

	deck, err := newShuffledDeck(s.rng)
	if err != nil {
		return nil, err
	}
	st.playerCards = append(st.playerCards, deck[0])

	if blackjackHandValue(st.playerCards) > 21 {
		st.status = BlackjackPlayerBust
		return s.finalizeBlackjack(ctx, sess, st)
	}

	balance, err := s.account.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.blackjackStateDTO(sess, st, balance, decimal.Zero, false), nil
}

// Stand plays out the dealer (hit below 17, stand on any 17) and settles.
func (s *Service) Stand(ctx context.Context, userID int64, gameID string) (*BlackjackState, error) {
	sess, st, err := s.lookupBlackjack(userID, gameID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if st.status != BlackjackPlaying {
		return nil, appErr.ErrInvalidGameState
	}

	deck, err := newShuffledDeck(s.rng)
	if err != nil {
		return nil, err
	}
	s.playDealer(st, deck, 0)
	st.status = compareBlackjackHands(st)
	return s.finalizeBlackjack(ctx, sess, st)
}

// DoubleDown doubles the stake on the original two-card hand, deals exactly
// one card to the player and, unless the player busts, plays out the dealer.
func (s *Service) DoubleDown(ctx context.Context, userID int64, gameID string) (*BlackjackState, error) {
	sess, st, err := s.lookupBlackjack(userID, gameID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if st.status != BlackjackPlaying {
		return nil, appErr.ErrInvalidGameState
	}
	if len(st.playerCards) != 2 {
		return nil, fmt.Errorf("%w: double down is only allowed on the initial hand", appErr.ErrInvalidGameState)
	}

	if _, err := s.ledger.Record(ctx, ledger.RecordParams{
		UserID:      userID,
		Type:        model.TxBet,
		Amount:      sess.bet,
		GameType:    model.GameBlackjack,
		Description: fmt.Sprintf("Blackjack double down - Bet: $%s", sess.bet.StringFixed(2)),
	}); err != nil {
		return nil, err
	}
	sess.bet = sess.bet.Mul(decimal.NewFromInt(2))

	deck, err := newShuffledDeck(s.rng)
	if err != nil {
		return nil, err
	}
	st.playerCards = append(st.playerCards, deck[0])

	if blackjackHandValue(st.playerCards) > 21 {
		st.status = BlackjackPlayerBust
		return s.finalizeBlackjack(ctx, sess, st)
	}

	s.playDealer(st, deck, 1)
	st.status = compareBlackjackHands(st)
	return s.finalizeBlackjack(ctx, sess, st)
}

func (s *Service) lookupBlackjack(userID int64, gameID string) (*session, *blackjackState, error) {
	sess, ok := s.sessions.get(gameID)
	if !ok || sess.blackjack == nil {
		return nil, nil, appErr.ErrGameNotFound
	}
	if sess.userID != userID {
		return nil, nil, appErr.ErrNotYourGame
	}
	return sess, sess.blackjack, nil
}

func (s *Service) playDealer(st *blackjackState, deck []Card, deckIndex int) {
	for blackjackHandValue(st.dealerCards) < 17 {
		st.dealerCards = append(st.dealerCards, deck[deckIndex])
		deckIndex++
	}
}

func compareBlackjackHands(st *blackjackState) string {
	dealerValue := blackjackHandValue(st.dealerCards)
	playerValue := blackjackHandValue(st.playerCards)
	switch {
	case dealerValue > 21:
		return BlackjackDealerBust
	case playerValue > dealerValue:
		return BlackjackPlayerWin
	case dealerValue > playerValue:
		return BlackjackDealerWin
	default:
		return BlackjackPush
	}
}

// finalizeBlackjack settles the payout for a terminal status, removes the
// session and reveals the dealer's hole card. The session must already carry
// its terminal status; callers hold the session lock (or exclusively own a
// freshly started session).
func (s *Service) finalizeBlackjack(ctx context.Context, sess *session, st *blackjackState) (*BlackjackState, error) {
	var payout decimal.Decimal
	switch st.status {
	case BlackjackPlayerBlackjack:
		payout = sess.bet.Mul(decimal.NewFromFloat(2.5)) // blackjack pays 3:2
	case BlackjackPlayerWin, BlackjackDealerBust:
		payout = sess.bet.Mul(decimal.NewFromInt(2))
	case BlackjackPush:
		payout = sess.bet // stake returned
	default:
		payout = decimal.Zero
	}

	var balance decimal.Decimal
	if payout.IsPositive() {
		description := fmt.Sprintf("Blackjack win - $%s", payout.StringFixed(2))
		switch st.status {
		case BlackjackPlayerBlackjack:
			description = fmt.Sprintf("BLACKJACK! Win - $%s", payout.StringFixed(2))
		case BlackjackPush:
			description = fmt.Sprintf("Blackjack push - Bet returned $%s", payout.StringFixed(2))
		}
		winTx, err := s.ledger.Record(ctx, ledger.RecordParams{
			UserID:      sess.userID,
			Type:        model.TxWin,
			Amount:      payout,
			GameType:    model.GameBlackjack,
			Description: description,
		})
		if err != nil {
			return nil, err
		}
		balance = winTx.BalanceAfter
	} else {
		var err error
		balance, err = s.account.GetBalance(ctx, sess.userID)
		if err != nil {
			return nil, err
		}
	}

	s.sessions.remove(sess.id)

	logger.Log.Info("blackjack settled",
		zap.Int64("userID", sess.userID),
		zap.String("gameID", sess.id),
		zap.String("status", st.status),
		zap.String("payout", payout.StringFixed(2)),
	)

	return s.blackjackStateDTO(sess, st, balance, payout, true), nil
}

func (s *Service) blackjackStateDTO(sess *session, st *blackjackState, balance, winAmount decimal.Decimal, showHoleCard bool) *BlackjackState {
	dealerHand := blackjackViews(st.dealerCards)
	dealerValue := blackjackHandValue(st.dealerCards)

	// Only the dealer's first card shows while the round is open.
	if !showHoleCard && st.status == BlackjackPlaying {
		dealerHand = dealerHand[:1]
		dealerValue = st.dealerCards[0].blackjackValue()
	}

	playing := st.status == BlackjackPlaying
	return &BlackjackState{
		GameID:                sess.id,
		PlayerHand:            blackjackViews(st.playerCards),
		DealerHand:            dealerHand,
		PlayerHandValue:       blackjackHandValue(st.playerCards),
		DealerHandValue:       dealerValue,
		DealerShowingHoleCard: showHoleCard,
		Status:                st.status,
		BetAmount:             sess.bet,
		WinAmount:             winAmount,
		BalanceAfter:          balance,
		CanHit:                playing,
		CanStand:              playing,
		CanDouble:             playing && len(st.playerCards) == 2,
	}
}
