package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"casino-service/internal/model"
	appErr "casino-service/pkg/errors"
	"casino-service/pkg/logger"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestLedger(t *testing.T, balance string) (*Service, *gorm.DB, int64) {
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
	return NewService(db), db, user.ID
}

func userBalance(t *testing.T, db *gorm.DB, userID int64) decimal.Decimal {
	t.Helper()
	var user model.User
	if err := db.First(&user, userID).Error; err != nil {
		t.Fatalf("failed to load user: %v", err)
	}
	return user.Balance
}

func TestRecordCreditsAndDebits(t *testing.T) {
	svc, db, userID := newTestLedger(t, "100.00")
	ctx := context.Background()

	tx, err := svc.Record(ctx, RecordParams{
		UserID: userID,
		Type:   model.TxDeposit,
		Amount: decimal.RequireFromString("50.50"),
	})
	if err != nil {
		t.Fatalf("Record(deposit) error = %v", err)
	}
	if !tx.BalanceBefore.Equal(decimal.NewFromInt(100)) {
		t.Errorf("balanceBefore = %s, want 100", tx.BalanceBefore)
	}
	if !tx.BalanceAfter.Equal(decimal.RequireFromString("150.50")) {
		t.Errorf("balanceAfter = %s, want 150.50", tx.BalanceAfter)
	}

	tx, err = svc.Record(ctx, RecordParams{
		UserID:   userID,
		Type:     model.TxBet,
		Amount:   decimal.RequireFromString("30.50"),
		GameType: model.GameSlotMachine,
	})
	if err != nil {
		t.Fatalf("Record(bet) error = %v", err)
	}
	if !tx.BalanceAfter.Equal(decimal.NewFromInt(120)) {
		t.Errorf("balanceAfter = %s, want 120", tx.BalanceAfter)
	}
	if tx.GameType != model.GameSlotMachine {
		t.Errorf("gameType = %s, want %s", tx.GameType, model.GameSlotMachine)
	}

	if got := userBalance(t, db, userID); !got.Equal(decimal.NewFromInt(120)) {
		t.Errorf("stored balance = %s, want 120", got)
	}
}

func TestRecordWinAndWithdrawal(t *testing.T) {
	svc, db, userID := newTestLedger(t, "100.00")
	ctx := context.Background()

	if _, err := svc.Record(ctx, RecordParams{
		UserID: userID, Type: model.TxWin, Amount: decimal.NewFromInt(40),
	}); err != nil {
		t.Fatalf("Record(win) error = %v", err)
	}
	if _, err := svc.Record(ctx, RecordParams{
		UserID: userID, Type: model.TxWithdrawal, Amount: decimal.NewFromInt(140),
	}); err != nil {
		t.Fatalf("Record(withdrawal) error = %v", err)
	}
	if got := userBalance(t, db, userID); !got.IsZero() {
		t.Errorf("stored balance = %s, want 0", got)
	}
}

func TestRecordInsufficientBalance(t *testing.T) {
	svc, db, userID := newTestLedger(t, "10.00")
	ctx := context.Background()

	_, err := svc.Record(ctx, RecordParams{
		UserID: userID,
		Type:   model.TxBet,
		Amount: decimal.RequireFromString("10.01"),
	})
	if !errors.Is(err, appErr.ErrInsufficientBalance) {
		t.Fatalf("error = %v, want ErrInsufficientBalance", err)
	}

	// A rejected debit must leave no trace.
	if got := userBalance(t, db, userID); !got.Equal(decimal.NewFromInt(10)) {
		t.Errorf("stored balance = %s, want 10", got)
	}
	result, err := svc.History(ctx, userID, 1, 20)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if result.Total != 0 {
		t.Errorf("ledger rows = %d, want 0", result.Total)
	}
}

func TestRecordExactBalanceBet(t *testing.T) {
	svc, db, userID := newTestLedger(t, "10.00")

	if _, err := svc.Record(context.Background(), RecordParams{
		UserID: userID, Type: model.TxBet, Amount: decimal.NewFromInt(10),
	}); err != nil {
		t.Fatalf("Record(bet == balance) error = %v", err)
	}
	if got := userBalance(t, db, userID); !got.IsZero() {
		t.Errorf("stored balance = %s, want 0", got)
	}
}

func TestRecordRejectsNonPositiveAmounts(t *testing.T) {
	svc, _, userID := newTestLedger(t, "100.00")
	ctx := context.Background()

	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-5)} {
		_, err := svc.Record(ctx, RecordParams{UserID: userID, Type: model.TxDeposit, Amount: amount})
		if !errors.Is(err, appErr.ErrInvalidAmount) {
			t.Errorf("Record(%s) error = %v, want ErrInvalidAmount", amount, err)
		}
	}
}

func TestRecordUnknownUser(t *testing.T) {
	svc, _, _ := newTestLedger(t, "100.00")

	_, err := svc.Record(context.Background(), RecordParams{
		UserID: 9999, Type: model.TxDeposit, Amount: decimal.NewFromInt(1),
	})
	if !errors.Is(err, appErr.ErrUserNotFound) {
		t.Fatalf("error = %v, want ErrUserNotFound", err)
	}
}

func TestHistoryPaginationAndOrder(t *testing.T) {
	svc, _, userID := newTestLedger(t, "1000.00")
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		if _, err := svc.Record(ctx, RecordParams{
			UserID:      userID,
			Type:        model.TxDeposit,
			Amount:      decimal.NewFromInt(int64(i + 1)),
			Description: fmt.Sprintf("deposit %d", i+1),
		}); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	result, err := svc.History(ctx, userID, 1, 10)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if result.Total != 25 {
		t.Errorf("total = %d, want 25", result.Total)
	}
	if len(result.Items) != 10 {
		t.Fatalf("page size = %d, want 10", len(result.Items))
	}
	// Newest first.
	if !result.Items[0].Amount.Equal(decimal.NewFromInt(25)) {
		t.Errorf("first item amount = %s, want 25", result.Items[0].Amount)
	}
	for i := 1; i < len(result.Items); i++ {
		if result.Items[i].ID > result.Items[i-1].ID {
			t.Fatalf("items out of order at index %d", i)
		}
	}

	result, err = svc.History(ctx, userID, 3, 10)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(result.Items) != 5 {
		t.Errorf("last page size = %d, want 5", len(result.Items))
	}

	result, err = svc.History(ctx, userID, 4, 10)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(result.Items) != 0 {
		t.Errorf("past-the-end page size = %d, want 0", len(result.Items))
	}
}

func TestHistoryClampsPaging(t *testing.T) {
	svc, _, userID := newTestLedger(t, "1000.00")
	ctx := context.Background()

	for i := 0; i < 30; i++ {
		if _, err := svc.Record(ctx, RecordParams{
			UserID: userID, Type: model.TxDeposit, Amount: decimal.NewFromInt(1),
		}); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	// page 0 behaves as page 1, pageSize 0 as the default 20.
	result, err := svc.History(ctx, userID, 0, 0)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(result.Items) != 20 {
		t.Errorf("default page size = %d, want 20", len(result.Items))
	}

	result, err = svc.History(ctx, userID, 1, 500)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(result.Items) != 30 {
		t.Errorf("clamped page returned %d items, want all 30", len(result.Items))
	}
}

func TestRecordSerializesConcurrentDebits(t *testing.T) {
	svc, db, userID := newTestLedger(t, "50.00")
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Record(ctx, RecordParams{
				UserID: userID, Type: model.TxBet, Amount: decimal.NewFromInt(10),
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	rejected := 0
	for err := range errs {
		if err == nil {
			continue
		}
		if !errors.Is(err, appErr.ErrInsufficientBalance) {
			t.Fatalf("unexpected error: %v", err)
		}
		rejected++
	}
	if rejected != 5 {
		t.Errorf("rejected bets = %d, want 5", rejected)
	}
	if got := userBalance(t, db, userID); !got.IsZero() {
		t.Errorf("stored balance = %s, want 0", got)
	}

	result, err := svc.History(ctx, userID, 1, 20)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if result.Total != 5 {
		t.Errorf("ledger rows = %d, want 5", result.Total)
	}
}

func TestGet(t *testing.T) {
	svc, _, userID := newTestLedger(t, "100.00")
	ctx := context.Background()

	created, err := svc.Record(ctx, RecordParams{
		UserID: userID, Type: model.TxDeposit, Amount: decimal.NewFromInt(5),
	})
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ID != created.ID || got.Type != model.TxDeposit {
		t.Errorf("Get() = %+v, want the recorded deposit", got)
	}
}
