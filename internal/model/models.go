package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID           int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string          `gorm:"unique;not null" json:"username"`
	Email        string          `gorm:"unique;not null" json:"email"`
	PasswordHash string          `gorm:"not null" json:"-"`
	Balance      decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"balance"`
	Status       string          `gorm:"default:active;not null" json:"status"` // active/disabled
	LastLoginAt  *time.Time      `json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// Transaction kinds. Bet and Withdrawal debit the balance, Win and Deposit
// credit it; Amount is always positive.
const (
	TxBet        = "Bet"
	TxWin        = "Win"
	TxDeposit    = "Deposit"
	TxWithdrawal = "Withdrawal"
)

// Game type labels recorded on wager transactions.
const (
	GameSlotMachine = "SlotMachine"
	GameBlackjack   = "Blackjack"
	GameRoulette    = "Roulette"
	GamePoker       = "Poker"
)

type Transaction struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        int64           `gorm:"index;not null" json:"userId"`
	Type          string          `gorm:"not null" json:"type"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	BalanceBefore decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"balanceBefore"`
	BalanceAfter  decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"balanceAfter"`
	GameType      string          `json:"gameType,omitempty"`
	Description   string          `json:"description,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}
