package account

import (
	"context"
	"errors"
	"fmt"

	"casino-service/internal/model"
	"casino-service/internal/service/ledger"
	appErr "casino-service/pkg/errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service exposes the user's balance and the two non-wager money movements,
// deposit and withdrawal. All balance mutation goes through the ledger so the
// history stays complete.
type Service struct {
	db     *gorm.DB
	ledger *ledger.Service
}

func NewService(db *gorm.DB, ledgerSvc *ledger.Service) *Service {
	return &Service{db: db, ledger: ledgerSvc}
}

func (s *Service) GetUser(ctx context.Context, userID int64) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErr.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *Service) GetBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return user.Balance, nil
}

func (s *Service) Deposit(ctx context.Context, userID int64, amount decimal.Decimal) (*model.Transaction, error) {
	return s.ledger.Record(ctx, ledger.RecordParams{
		UserID:      userID,
		Type:        model.TxDeposit,
		Amount:      amount,
		Description: fmt.Sprintf("Deposit: $%s", amount.StringFixed(2)),
	})
}

func (s *Service) Withdraw(ctx context.Context, userID int64, amount decimal.Decimal) (*model.Transaction, error) {
	return s.ledger.Record(ctx, ledger.RecordParams{
		UserID:      userID,
		Type:        model.TxWithdrawal,
		Amount:      amount,
		Description: fmt.Sprintf("Withdrawal: $%s", amount.StringFixed(2)),
	})
}
