package api

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"rfportal/internal/domain/account"
	"rfportal/internal/domain/character"
	"rfportal/internal/store"
)

type memAccount struct {
	serial   int32
	password string
	pin      string
	email    string
	lastIP   string
	billing  *account.Billing
}

// memDB backs every service with maps so the router can be exercised end to
// end without PostgreSQL.
type memDB struct {
	mu         sync.Mutex
	nextSerial int32
	accounts   map[string]*memAccount
	characters map[int32][]character.Summary
	infos      map[string]character.Info
	inventory  map[int32]character.Slots
	trunks     map[int32]character.Trunk
	items      map[character.ItemKey]character.ItemMeta
	failReads  error
}

func newMemDB() *memDB {
	return &memDB{
		accounts:   map[string]*memAccount{},
		characters: map[int32][]character.Summary{},
		infos:      map[string]character.Info{},
		inventory:  map[int32]character.Slots{},
		trunks:     map[int32]character.Trunk{},
		items:      map[character.ItemKey]character.ItemMeta{},
	}
}

func (m *memDB) seedAccount(username, password, pin string, billing *account.Billing) int32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextSerial++
	m.accounts[username] = &memAccount{serial: m.nextSerial, password: password, pin: pin, billing: billing}
	return m.nextSerial
}

func (m *memDB) InTx(_ context.Context, fn func(store.AccountTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(memTx{m})
}

func (m *memDB) Authenticate(_ context.Context, id, password []byte) (*account.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[account.Decode(id)]
	if !ok || a.password != account.Decode(password) {
		return nil, nil
	}
	return &account.Identity{Username: account.Decode(id), Email: a.email}, nil
}

func (m *memDB) RecordLogin(_ context.Context, id []byte, ip string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.accounts[account.Decode(id)]; ok {
		a.lastIP = ip
	}
	return nil
}

func (m *memDB) Find(_ context.Context, id []byte) (*account.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failReads != nil {
		return nil, m.failReads
	}
	name := account.Decode(id)
	a, ok := m.accounts[name]
	if !ok {
		return nil, nil
	}
	return &account.Account{Serial: a.serial, Username: name, Email: a.email, LastLoginIP: a.lastIP}, nil
}

func (m *memDB) FindBilling(_ context.Context, id []byte) (*account.Billing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.accounts[account.Decode(id)]; ok && a.billing != nil {
		b := *a.billing
		return &b, nil
	}
	return nil, nil
}

func (m *memDB) ListByAccount(_ context.Context, serial int32) ([]character.Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]character.Summary(nil), m.characters[serial]...)
	sort.Slice(out, func(i, j int) bool { return out[i].LastConnTime.After(out[j].LastConnTime) })
	return out, nil
}

func (m *memDB) FindInfo(_ context.Context, name string) (*character.Info, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failReads != nil {
		return nil, m.failReads
	}
	c, ok := m.infos[name]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (m *memDB) FindRecord(_ context.Context, name string) (*character.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.infos[name]
	if !ok {
		return nil, nil
	}
	return &character.Record{Serial: c.Serial, Name: c.Name, Level: c.Level, Race: c.Race, Class: c.Class, MapCode: c.MapCode}, nil
}

func (m *memDB) FindInventory(_ context.Context, serial int32) (*character.Slots, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.inventory[serial]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *memDB) FindTrunk(_ context.Context, accountSerial int32) (*character.Trunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.trunks[accountSerial]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (m *memDB) Lookup(_ context.Context, table string, ids []int32) (map[int32]character.ItemMeta, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[int32]character.ItemMeta{}
	for _, id := range ids {
		if meta, ok := m.items[character.ItemKey{Table: table, ID: id}]; ok {
			out[id] = meta
		}
	}
	return out, nil
}

type memTx struct{ m *memDB }

func (t memTx) Exists(_ context.Context, id []byte) (bool, error) {
	_, ok := t.m.accounts[account.Decode(id)]
	return ok, nil
}

func (t memTx) InsertAccount(_ context.Context, reg account.Registration) error {
	name := account.Decode(reg.ID)
	if _, ok := t.m.accounts[name]; ok {
		return errors.New("duplicate key")
	}
	t.m.nextSerial++
	t.m.accounts[name] = &memAccount{
		serial:   t.m.nextSerial,
		password: account.Decode(reg.Password),
		pin:      reg.Pin,
		email:    reg.Email,
	}
	return nil
}

func (t memTx) InsertAudit(_ context.Context, reg account.Registration) error {
	t.m.accounts[account.Decode(reg.ID)].lastIP = reg.OriginIP
	return nil
}

func (t memTx) InsertBilling(_ context.Context, reg account.Registration) error {
	end := reg.PremiumTo
	t.m.accounts[account.Decode(reg.ID)].billing = &account.Billing{PremiumEnd: &end, Status: account.BillingActive}
	return nil
}

func (t memTx) VerifyForUpdate(_ context.Context, id []byte, pin string, password []byte) (bool, error) {
	a, ok := t.m.accounts[account.Decode(id)]
	return ok && a.pin == pin && a.password == account.Decode(password), nil
}

func (t memTx) UpdatePin(_ context.Context, id []byte, pin string) error {
	t.m.accounts[account.Decode(id)].pin = pin
	return nil
}

func (t memTx) UpdatePassword(_ context.Context, id []byte, password []byte) error {
	t.m.accounts[account.Decode(id)].password = account.Decode(password)
	return nil
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }
