package service

import (
	"casino-service/internal/service/account"
	"casino-service/internal/service/auth"
	"casino-service/internal/service/game"
	"casino-service/internal/service/ledger"
	"casino-service/pkg/utils/random"

	"gorm.io/gorm"
)

type Container struct {
	Auth    *auth.Service
	Account *account.Service
	Ledger  *ledger.Service
	Game    *game.Service
}

func NewContainer(db *gorm.DB) *Container {
	ledgerSvc := ledger.NewService(db)
	accountSvc := account.NewService(db, ledgerSvc)
	return &Container{
		Auth:    auth.NewService(db),
		Account: accountSvc,
		Ledger:  ledgerSvc,
		Game:    game.NewService(accountSvc, ledgerSvc, random.NewCryptoSource()),
	}
}
