package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"rfportal/internal/app/apperr"
	"rfportal/internal/domain/account"
	"rfportal/internal/store"
)

type memAccount struct {
	password []byte
	email    string
	pin      string
	acctType int32
}

// memAccounts is an in-memory stand-in for store.AccountStore. InTx restores
// the previous state when fn fails.
type memAccounts struct {
	mu        sync.Mutex
	accounts  map[string]memAccount
	audit     map[string]string
	billing   map[string]account.Registration
	lastLogin map[string]string

	failBilling error
	// racedInsert makes InsertAccount fail as if another transaction had
	// committed the same id after Exists returned false.
	racedInsert bool
}

func newMemAccounts() *memAccounts {
	return &memAccounts{
		accounts:  map[string]memAccount{},
		audit:     map[string]string{},
		billing:   map[string]account.Registration{},
		lastLogin: map[string]string{},
	}
}

func (m *memAccounts) InTx(_ context.Context, fn func(store.AccountTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	accounts, audit, billing := cloneMap(m.accounts), cloneMap(m.audit), cloneMap(m.billing)
	if err := fn(memTx{m}); err != nil {
		m.accounts, m.audit, m.billing = accounts, audit, billing
		return err
	}
	return nil
}

func (m *memAccounts) Authenticate(_ context.Context, id, password []byte) (*account.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[string(id)]
	if !ok || string(a.password) != string(password) {
		return nil, nil
	}
	return &account.Identity{Username: account.Decode(id), Email: a.email, AccountType: a.acctType}, nil
}

func (m *memAccounts) RecordLogin(_ context.Context, id []byte, ip string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastLogin[string(id)] = ip
	return nil
}

func (m *memAccounts) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.accounts)
}

type memTx struct{ m *memAccounts }

func (t memTx) Exists(_ context.Context, id []byte) (bool, error) {
	_, ok := t.m.accounts[string(id)]
	return ok, nil
}

func (t memTx) InsertAccount(_ context.Context, reg account.Registration) error {
	if _, ok := t.m.accounts[string(reg.ID)]; ok {
		return errors.New("duplicate key")
	}
	if t.m.racedInsert {
		return fmt.Errorf("insert rfaccount: %w", apperr.ErrConflict)
	}
	t.m.accounts[string(reg.ID)] = memAccount{password: reg.Password, email: reg.Email, pin: reg.Pin}
	return nil
}

func (t memTx) InsertAudit(_ context.Context, reg account.Registration) error {
	t.m.audit[string(reg.ID)] = reg.OriginIP
	return nil
}

func (t memTx) InsertBilling(_ context.Context, reg account.Registration) error {
	if t.m.failBilling != nil {
		return t.m.failBilling
	}
	t.m.billing[string(reg.ID)] = reg
	return nil
}

func (t memTx) VerifyForUpdate(_ context.Context, id []byte, pin string, password []byte) (bool, error) {
	a, ok := t.m.accounts[string(id)]
	return ok && a.pin == pin && string(a.password) == string(password), nil
}

func (t memTx) UpdatePin(_ context.Context, id []byte, pin string) error {
	a := t.m.accounts[string(id)]
	a.pin = pin
	t.m.accounts[string(id)] = a
	return nil
}

func (t memTx) UpdatePassword(_ context.Context, id []byte, password []byte) error {
	a := t.m.accounts[string(id)]
	a.password = password
	t.m.accounts[string(id)] = a
	return nil
}

func cloneMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
}

func (r *recordingPublisher) Publish(_ context.Context, subject string, _ []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subjects = append(r.subjects, subject)
	return nil
}

func (r *recordingPublisher) Close() {}
