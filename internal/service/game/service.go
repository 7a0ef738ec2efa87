package game

import (
	"casino-service/internal/service/account"
	"casino-service/internal/service/ledger"
	"casino-service/pkg/utils/random"
)

// Service hosts the four game engines. They share the random source, the
// ledger (wager debits and payout credits) and the in-process session store
// for the two multi-step games.
type Service struct {
	account  *account.Service
	ledger   *ledger.Service
	rng      random.Source
	sessions *sessionStore
}

func NewService(accountSvc *account.Service, ledgerSvc *ledger.Service, rng random.Source) *Service {
	return &Service{
		account:  accountSvc,
		ledger:   ledgerSvc,
		rng:      rng,
		sessions: newSessionStore(),
	}
}
