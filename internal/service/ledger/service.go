package ledger

import (
	"context"
	"errors"
	"sync"
	"time"

	"casino-service/internal/model"
	appErr "casino-service/pkg/errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service owns the append-only transaction history and the balance mutation
// that goes with every record. The balance delta and the ledger append are one
// unit: both happen inside a single database transaction, serialized per user
// so concurrent wagers cannot interleave between the read of balanceBefore and
// the write of balanceAfter.
type Service struct {
	db    *gorm.DB
	locks sync.Map // userID -> *sync.Mutex
}

type RecordParams struct {
	UserID      int64
	Type        string // model.TxBet, TxWin, TxDeposit, TxWithdrawal
	Amount      decimal.Decimal
	GameType    string
	Description string
}

type HistoryResult struct {
	Items []model.Transaction `json:"items"`
	Total int64               `json:"total"`
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) userLock(userID int64) *sync.Mutex {
	v, _ := s.locks.LoadOrStore(userID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

func debits(txType string) bool {
	return txType == model.TxBet || txType == model.TxWithdrawal
}

// Record applies the signed delta for params.Type to the user's balance and
// appends the transaction row, atomically. Debit kinds fail with
// ErrInsufficientBalance before any mutation when the balance is short.
func (s *Service) Record(ctx context.Context, params RecordParams) (*model.Transaction, error) {
	if params.Amount.IsNegative() || params.Amount.IsZero() {
		return nil, appErr.ErrInvalidAmount
	}

	mu := s.userLock(params.UserID)
	mu.Lock()
	defer mu.Unlock()

	var record model.Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user model.User
		if err := tx.First(&user, params.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return appErr.ErrUserNotFound
			}
			return err
		}

		before := user.Balance
		if debits(params.Type) {
			if user.Balance.LessThan(params.Amount) {
				return appErr.ErrInsufficientBalance
			}
			user.Balance = user.Balance.Sub(params.Amount)
		} else {
			user.Balance = user.Balance.Add(params.Amount)
		}
		user.UpdatedAt = time.Now()

		if err := tx.Save(&user).Error; err != nil {
			return err
		}

		record = model.Transaction{
			UserID:        params.UserID,
			Type:          params.Type,
			Amount:        params.Amount,
			BalanceBefore: before,
			BalanceAfter:  user.Balance,
			GameType:      params.GameType,
			Description:   params.Description,
			CreatedAt:     time.Now(),
		}
		return tx.Create(&record).Error
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// History returns the user's transactions newest first. page is clamped to
// >= 1, pageSize to 1..100.
func (s *Service) History(ctx context.Context, userID int64, page, pageSize int) (*HistoryResult, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, err
	}

	items := make([]model.Transaction, 0, pageSize)
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	return &HistoryResult{Items: items, Total: total}, nil
}

// Get returns a single transaction by id.
func (s *Service) Get(ctx context.Context, id int64) (*model.Transaction, error) {
	var record model.Transaction
	if err := s.db.WithContext(ctx).First(&record, id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}
