package game

import (
	"context"
	"fmt"
	"strings"

	"casino-service/internal/model"
	"casino-service/internal/service/ledger"
	appErr "casino-service/pkg/errors"
	"casino-service/pkg/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// European wheel, single zero. Red set per the standard layout; every other
// non-zero number is black.
var rouletteRedNumbers = map[int]bool{
	1: true, 3: true, 5: true, 7: true, 9: true, 12: true,
	14: true, 16: true, 18: true, 19: true, 21: true, 23: true,
	25: true, 27: true, 30: true, 32: true, 34: true, 36: true,
}

type RouletteBet struct {
	BetType string          `json:"betType"` // straight/number, red, black, even, odd, high, low, dozen, column
	Number  int             `json:"number"`  // straight bets only, 0-36
	Range   string          `json:"range"`   // dozen/column bets: 1st, 2nd, 3rd
	Amount  decimal.Decimal `json:"amount"`
}

type RouletteBetResult struct {
	BetType   string          `json:"betType"`
	BetAmount decimal.Decimal `json:"betAmount"`
	IsWin     bool            `json:"isWin"`
	WinAmount decimal.Decimal `json:"winAmount"`
	Payout    decimal.Decimal `json:"payout"`
}

type RouletteResult struct {
	WinningNumber  int                 `json:"winningNumber"`
	Color          string              `json:"color"`
	IsEven         bool                `json:"isEven"`
	IsHigh         bool                `json:"isHigh"`
	BetResults     []RouletteBetResult `json:"betResults"`
	TotalWinAmount decimal.Decimal     `json:"totalWinAmount"`
	BalanceAfter   decimal.Decimal     `json:"balanceAfter"`
}

// SpinRoulette debits the whole stake as one Bet transaction, draws a number
// uniformly from 0-36, settles every bet against the outcome and credits the
// summed winnings as one Win transaction.
func (s *Service) SpinRoulette(ctx context.Context, userID int64, bets []RouletteBet) (*RouletteResult, error) {
	if len(bets) == 0 {
		return nil, fmt.Errorf("%w: at least one bet is required", appErr.ErrInvalidBet)
	}

	totalStake := decimal.Zero
	for _, bet := range bets {
		if !bet.Amount.IsPositive() {
			return nil, fmt.Errorf("%w: bet amount must be positive", appErr.ErrInvalidBet)
		}
		if isStraightBet(bet.BetType) && (bet.Number < 0 || bet.Number > 36) {
			return nil, fmt.Errorf("%w: number must be 0-36", appErr.ErrInvalidBet)
		}
		totalStake = totalStake.Add(bet.Amount)
	}

	betTx, err := s.ledger.Record(ctx, ledger.RecordParams{
		UserID:      userID,
		Type:        model.TxBet,
		Amount:      totalStake,
		GameType:    model.GameRoulette,
		Description: fmt.Sprintf("Roulette spin - Total bet: $%s (%d bets)", totalStake.StringFixed(2), len(bets)),
	})
	if err != nil {
		return nil, err
	}

	winningNumber, err := s.rng.Intn(37)
	if err != nil {
		return nil, err
	}

	color := rouletteColor(winningNumber)
	isEven := winningNumber != 0 && winningNumber%2 == 0
	isHigh := winningNumber >= 19

	betResults := make([]RouletteBetResult, 0, len(bets))
	totalWin := decimal.Zero
	for _, bet := range bets {
		isWin, multiplier := evaluateRouletteBet(bet, winningNumber, color, isEven, isHigh)
		winAmount := decimal.Zero
		if isWin {
			winAmount = bet.Amount.Mul(multiplier)
			totalWin = totalWin.Add(winAmount)
		}
		betResults = append(betResults, RouletteBetResult{
			BetType:   bet.BetType,
			BetAmount: bet.Amount,
			IsWin:     isWin,
			WinAmount: winAmount,
			Payout:    multiplier,
		})
	}

	balance := betTx.BalanceAfter
	if totalWin.IsPositive() {
		winTx, err := s.ledger.Record(ctx, ledger.RecordParams{
			UserID:      userID,
			Type:        model.TxWin,
			Amount:      totalWin,
			GameType:    model.GameRoulette,
			Description: fmt.Sprintf("Roulette win - Number: %d (%s) - $%s", winningNumber, color, totalWin.StringFixed(2)),
		})
		if err != nil {
			return nil, err
		}
		balance = winTx.BalanceAfter
	}

	logger.Log.Info("roulette spun",
		zap.Int64("userID", userID),
		zap.Int("number", winningNumber),
		zap.String("stake", totalStake.StringFixed(2)),
		zap.String("win", totalWin.StringFixed(2)),
	)

	return &RouletteResult{
		WinningNumber:  winningNumber,
		Color:          color,
		IsEven:         isEven,
		IsHigh:         isHigh,
		BetResults:     betResults,
		TotalWinAmount: totalWin,
		BalanceAfter:   balance,
	}, nil
}

func rouletteColor(number int) string {
	if number == 0 {
		return "Green"
	}
	if rouletteRedNumbers[number] {
		return "Red"
	}
	return "Black"
}

func isStraightBet(betType string) bool {
	t := strings.ToLower(betType)
	return t == "number" || t == "straight"
}

func evaluateRouletteBet(bet RouletteBet, winningNumber int, color string, isEven, isHigh bool) (bool, decimal.Decimal) {
	even := decimal.NewFromInt(2)
	twoToOne := decimal.NewFromInt(3)

	switch strings.ToLower(bet.BetType) {
	case "number", "straight":
		return bet.Number == winningNumber, decimal.NewFromInt(36)
	case "red":
		return color == "Red", even
	case "black":
		return color == "Black", even
	case "even":
		return isEven, even
	case "odd":
		return winningNumber != 0 && !isEven, even
	case "high":
		return isHigh, even
	case "low":
		return winningNumber >= 1 && winningNumber <= 18, even
	case "dozen":
		switch normalizeRange(bet.Range) {
		case "1st":
			return winningNumber >= 1 && winningNumber <= 12, twoToOne
		case "2nd":
			return winningNumber >= 13 && winningNumber <= 24, twoToOne
		case "3rd":
			return winningNumber >= 25 && winningNumber <= 36, twoToOne
		}
	case "column":
		switch normalizeRange(bet.Range) {
		case "1st":
			return winningNumber > 0 && winningNumber%3 == 1, twoToOne
		case "2nd":
			return winningNumber > 0 && winningNumber%3 == 2, twoToOne
		case "3rd":
			return winningNumber > 0 && winningNumber%3 == 0, twoToOne
		}
	}
	return false, decimal.Zero
}

func normalizeRange(r string) string {
	switch strings.ToLower(strings.TrimSpace(r)) {
	case "1st", "first":
		return "1st"
	case "2nd", "second":
		return "2nd"
	case "3rd", "third":
		return "3rd"
	default:
		return ""
	}
}
