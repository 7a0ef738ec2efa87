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

const (
	slotReels = 3
	slotRows  = 3

	jackpotSymbol = "Diamond"
)

var slotSymbols = []string{"Cherry", "Lemon", "Orange", "Grape", "Bell", "Star", "Diamond"}

var slotPayouts = map[string]decimal.Decimal{
	"Cherry":  decimal.NewFromInt(3),
	"Lemon":   decimal.NewFromInt(5),
	"Orange":  decimal.NewFromInt(10),
	"Grape":   decimal.NewFromInt(15),
	"Bell":    decimal.NewFromInt(25),
	"Star":    decimal.NewFromInt(50),
	"Diamond": decimal.NewFromInt(100),
}

type SlotWinLine struct {
	LineNumber int             `json:"lineNumber"`
	Symbol     string          `json:"symbol"`
	Count      int             `json:"count"`
	Payout     decimal.Decimal `json:"payout"`
}

type SlotResult struct {
	Reels        [][]string      `json:"reels"`
	WinAmount    decimal.Decimal `json:"winAmount"`
	WinLines     []SlotWinLine   `json:"winLines"`
	BalanceAfter decimal.Decimal `json:"balanceAfter"`
	IsJackpot    bool            `json:"isJackpot"`
}

// SpinSlot debits the bet, fills a 3x3 grid with independent uniform symbol
// draws and pays every line (3 rows, 2 diagonals) whose three cells match.
func (s *Service) SpinSlot(ctx context.Context, userID int64, bet decimal.Decimal) (*SlotResult, error) {
	if !bet.IsPositive() {
		return nil, appErr.ErrInvalidBet
	}

	betTx, err := s.ledger.Record(ctx, ledger.RecordParams{
		UserID:      userID,
		Type:        model.TxBet,
		Amount:      bet,
		GameType:    model.GameSlotMachine,
		Description: fmt.Sprintf("Slot machine spin - Bet: $%s", bet.StringFixed(2)),
	})
	if err != nil {
		return nil, err
	}

	reels := make([][]string, slotReels)
	for i := range reels {
		reels[i] = make([]string, slotRows)
		for j := range reels[i] {
			idx, err := s.rng.Intn(len(slotSymbols))
			if err != nil {
				return nil, err
			}
			reels[i][j] = slotSymbols[idx]
		}
	}

	winAmount, winLines, isJackpot := settleSlotLines(reels, bet)

	balance := betTx.BalanceAfter
	if winAmount.IsPositive() {
		description := fmt.Sprintf("Slot machine win - $%s", winAmount.StringFixed(2))
		if isJackpot {
			description = fmt.Sprintf("JACKPOT! Slot machine win - $%s", winAmount.StringFixed(2))
		}
		winTx, err := s.ledger.Record(ctx, ledger.RecordParams{
			UserID:      userID,
			Type:        model.TxWin,
			Amount:      winAmount,
			GameType:    model.GameSlotMachine,
			Description: description,
		})
		if err != nil {
			return nil, err
		}
		balance = winTx.BalanceAfter
	}

	logger.Log.Info("slot spun",
		zap.Int64("userID", userID),
		zap.String("bet", bet.StringFixed(2)),
		zap.String("win", winAmount.StringFixed(2)),
		zap.Bool("jackpot", isJackpot),
	)

	return &SlotResult{
		Reels:        reels,
		WinAmount:    winAmount,
		WinLines:     winLines,
		BalanceAfter: balance,
		IsJackpot:    isJackpot,
	}, nil
}

// settleSlotLines pays lines 1-3 (rows across the reels), 4 (top-left to
// bottom-right diagonal) and 5 (bottom-left to top-right diagonal).
func settleSlotLines(reels [][]string, bet decimal.Decimal) (decimal.Decimal, []SlotWinLine, bool) {
	winLines := make([]SlotWinLine, 0, 5)
	total := decimal.Zero
	isJackpot := false

	addLine := func(lineNumber int, symbol string) {
		payout := slotPayouts[symbol].Mul(bet)
		total = total.Add(payout)
		if symbol == jackpotSymbol {
			isJackpot = true
		}
		winLines = append(winLines, SlotWinLine{
			LineNumber: lineNumber,
			Symbol:     symbol,
			Count:      slotReels,
			Payout:     payout,
		})
	}

	for row := 0; row < slotRows; row++ {
		if reels[0][row] == reels[1][row] && reels[1][row] == reels[2][row] {
			addLine(row+1, reels[0][row])
		}
	}
	if reels[0][0] == reels[1][1] && reels[1][1] == reels[2][2] {
		addLine(4, reels[0][0])
	}
	if reels[0][2] == reels[1][1] && reels[1][1] == reels[2][0] {
		addLine(5, reels[0][2])
	}

	return total, winLines, isJackpot
}
