package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rfportal/internal/app/apperr"
	"rfportal/internal/domain/account"
)

// AccountTx is the set of account writes that must commit together.
type AccountTx interface {
	Exists(ctx context.Context, id []byte) (bool, error)
	InsertAccount(ctx context.Context, reg account.Registration) error
	InsertAudit(ctx context.Context, reg account.Registration) error
	InsertBilling(ctx context.Context, reg account.Registration) error
	VerifyForUpdate(ctx context.Context, id []byte, pin string, password []byte) (bool, error)
	UpdatePin(ctx context.Context, id []byte, pin string) error
	UpdatePassword(ctx context.Context, id []byte, password []byte) error
}

type AccountStore struct {
	pool *pgxpool.Pool
}

func NewAccountStore(pool *pgxpool.Pool) *AccountStore {
	return &AccountStore{pool: pool}
}

func (s *AccountStore) InTx(ctx context.Context, fn func(AccountTx) error) error {
	return inTx(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(accountRepo{db: tx})
	})
}

// Authenticate returns the identity whose id and password both match.
func (s *AccountStore) Authenticate(ctx context.Context, id, password []byte) (*account.Identity, error) {
	var raw []byte
	var ident account.Identity
	err := s.pool.QueryRow(ctx, `
SELECT id, email, accounttype
FROM rf_user.tbl_rfaccount
WHERE id = $1 AND password = $2
`, id, password).Scan(&raw, &ident.Email, &ident.AccountType)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query credentials: %w", err)
	}
	ident.Username = account.Decode(raw)
	return &ident, nil
}

func (s *AccountStore) RecordLogin(ctx context.Context, id []byte, ip string, at time.Time) error {
	_, err := s.pool.Exec(ctx, `
UPDATE rf_user.tbl_useraccount SET lastlogintime = $2, lastloginip = $3 WHERE id = $1
`, id, at, ip)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

func (s *AccountStore) Find(ctx context.Context, id []byte) (*account.Account, error) {
	var raw []byte
	var acc account.Account
	err := s.pool.QueryRow(ctx, `
SELECT serial, id, email, lastlogintime, lastloginip
FROM rf_user.tbl_useraccount
WHERE id = $1
`, id).Scan(&acc.Serial, &raw, &acc.Email, &acc.LastLogin, &acc.LastLoginIP)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query account: %w", err)
	}
	acc.Username = account.Decode(raw)
	return &acc, nil
}

func (s *AccountStore) FindBilling(ctx context.Context, id []byte) (*account.Billing, error) {
	var b account.Billing
	err := s.pool.QueryRow(ctx, `
SELECT cash, dtendprem, status FROM billing.tbl_userstatus WHERE id = $1
`, id).Scan(&b.Cash, &b.PremiumEnd, &b.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query billing: %w", err)
	}
	return &b, nil
}

type accountRepo struct {
	db DBTX
}

func (r accountRepo) Exists(ctx context.Context, id []byte) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM rf_user.tbl_rfaccount WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query account exists: %w", err)
	}
	return exists, nil
}

func (r accountRepo) InsertAccount(ctx context.Context, reg account.Registration) error {
	_, err := r.db.Exec(ctx, `
INSERT INTO rf_user.tbl_rfaccount (id, password, accounttype, birthdate, email, pin)
VALUES ($1, $2, $3, $4, $5, $6)
`, reg.ID, reg.Password, account.DefaultAccountType, reg.CreatedAt, reg.Email, reg.Pin)
	if isUniqueViolation(err) {
		return fmt.Errorf("insert rfaccount: %w", apperr.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert rfaccount: %w", err)
	}
	return nil
}

func (r accountRepo) InsertAudit(ctx context.Context, reg account.Registration) error {
	_, err := r.db.Exec(ctx, `
INSERT INTO rf_user.tbl_useraccount (id, email, createtime, createip, lastloginip)
VALUES ($1, $2, $3, $4, '')
`, reg.ID, reg.Email, reg.CreatedAt, reg.OriginIP)
	if err != nil {
		return fmt.Errorf("insert useraccount: %w", err)
	}
	return nil
}

func (r accountRepo) InsertBilling(ctx context.Context, reg account.Registration) error {
	_, err := r.db.Exec(ctx, `
INSERT INTO billing.tbl_userstatus (id, status, dtstartprem, dtendprem, cash)
VALUES ($1, $2, $3, $4, 0)
`, reg.ID, account.BillingActive, reg.PremiumFrom, reg.PremiumTo)
	if err != nil {
		return fmt.Errorf("insert userstatus: %w", err)
	}
	return nil
}

// VerifyForUpdate locks the credential row when id, PIN and password all match.
func (r accountRepo) VerifyForUpdate(ctx context.Context, id []byte, pin string, password []byte) (bool, error) {
	var one int
	err := r.db.QueryRow(ctx, `
SELECT 1 FROM rf_user.tbl_rfaccount
WHERE id = $1 AND pin = $2 AND password = $3
FOR UPDATE
`, id, pin, password).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("verify credentials: %w", err)
	}
	return true, nil
}

func (r accountRepo) UpdatePin(ctx context.Context, id []byte, pin string) error {
	if _, err := r.db.Exec(ctx, `UPDATE rf_user.tbl_rfaccount SET pin = $2 WHERE id = $1`, id, pin); err != nil {
		return fmt.Errorf("update pin: %w", err)
	}
	return nil
}

func (r accountRepo) UpdatePassword(ctx context.Context, id []byte, password []byte) error {
	if _, err := r.db.Exec(ctx, `UPDATE rf_user.tbl_rfaccount SET password = $2 WHERE id = $1`, id, password); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}
