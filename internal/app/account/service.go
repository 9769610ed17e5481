package account

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"rfportal/internal/app/apperr"
	"rfportal/internal/domain/account"
	"rfportal/internal/domain/character"
)

var ErrNotFound = apperr.New(apperr.ErrNotFound, "Account not found")

type Store interface {
	Find(ctx context.Context, id []byte) (*account.Account, error)
	FindBilling(ctx context.Context, id []byte) (*account.Billing, error)
}

type CharacterLister interface {
	ListByAccount(ctx context.Context, accountSerial int32) ([]character.Summary, error)
}

type Service struct {
	accounts   Store
	characters CharacterLister
	now        func() time.Time
}

func NewService(accounts Store, characters CharacterLister) *Service {
	return &Service{accounts: accounts, characters: characters, now: time.Now}
}

// Overview loads the account first, then its billing row and character list
// in parallel. Either follow-up failing fails the whole lookup.
func (s *Service) Overview(ctx context.Context, username string) (account.Overview, error) {
	id, err := account.Encode(username)
	if err != nil {
		return account.Overview{}, ErrNotFound
	}
	acc, err := s.accounts.Find(ctx, id)
	if err != nil {
		return account.Overview{}, fmt.Errorf("overview %s: %w", username, err)
	}
	if acc == nil {
		return account.Overview{}, ErrNotFound
	}

	var (
		billing *account.Billing
		chars   []character.Summary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		b, err := s.accounts.FindBilling(gctx, id)
		billing = b
		return err
	})
	g.Go(func() error {
		c, err := s.characters.ListByAccount(gctx, acc.Serial)
		chars = c
		return err
	})
	if err := g.Wait(); err != nil {
		return account.Overview{}, fmt.Errorf("overview %s: %w", username, err)
	}
	return account.NewOverview(*acc, billing, chars, s.now()), nil
}
