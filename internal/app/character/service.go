package character

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"rfportal/internal/app/apperr"
	"rfportal/internal/domain/character"
)

var ErrNotFound = apperr.New(apperr.ErrNotFound, "Character not found")

type Store interface {
	FindInfo(ctx context.Context, name string) (*character.Info, error)
	FindRecord(ctx context.Context, name string) (*character.Record, error)
	FindInventory(ctx context.Context, characterSerial int32) (*character.Slots, error)
	FindTrunk(ctx context.Context, accountSerial int32) (*character.Trunk, error)
}

type Service struct {
	store Store
	items *itemResolver
}

// NewService wires the character lookups. cache may be nil, in which case
// every item resolution goes to the item tables.
func NewService(store Store, items ItemLookup, cache *redis.Client, cacheTTL time.Duration, logger zerolog.Logger) *Service {
	return &Service{
		store: store,
		items: &itemResolver{lookup: items, cache: cache, cacheTTL: cacheTTL, logger: logger},
	}
}

// normalizeName trims name. A blank name matches no character.
func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrNotFound
	}
	return name, nil
}

// Info returns the live character joined with guild and PvP data.
func (s *Service) Info(ctx context.Context, name string) (character.Info, error) {
	name, err := normalizeName(name)
	if err != nil {
		return character.Info{}, err
	}
	info, err := s.store.FindInfo(ctx, name)
	if err != nil {
		return character.Info{}, fmt.Errorf("character info %s: %w", name, err)
	}
	if info == nil {
		return character.Info{}, ErrNotFound
	}
	return *info, nil
}

// Lookup returns the plain base row by exact name, deleted or not.
func (s *Service) Lookup(ctx context.Context, name string) (character.Record, error) {
	name, err := normalizeName(name)
	if err != nil {
		return character.Record{}, err
	}
	rec, err := s.store.FindRecord(ctx, name)
	if err != nil {
		return character.Record{}, fmt.Errorf("character lookup %s: %w", name, err)
	}
	if rec == nil {
		return character.Record{}, ErrNotFound
	}
	return *rec, nil
}

// Search loads the character and then its equipment, inventory and bank in
// parallel.
func (s *Service) Search(ctx context.Context, name string) (character.SearchResult, error) {
	info, err := s.Info(ctx, name)
	if err != nil {
		return character.SearchResult{}, err
	}
	res := character.SearchResult{Info: info}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		eq, err := s.equipment(gctx, &info)
		res.Equipment = eq
		return err
	})
	g.Go(func() error {
		inv, err := s.inventory(gctx, info.Serial)
		res.Inventory = inv
		return err
	})
	g.Go(func() error {
		bank, err := s.bank(gctx, info.AccountSerial)
		res.Bank = bank
		return err
	})
	if err := g.Wait(); err != nil {
		return character.SearchResult{}, fmt.Errorf("character search %s: %w", info.Name, err)
	}
	return res, nil
}

func (s *Service) equipment(ctx context.Context, info *character.Info) (character.Equipment, error) {
	slots := info.Equipped()
	refs := make([]character.ItemRef, len(slots))
	for i, sl := range slots {
		refs[i] = sl.Ref
	}
	meta, err := s.items.resolve(ctx, refs)
	if err != nil {
		return nil, err
	}
	return character.BuildEquipment(slots, meta), nil
}

func (s *Service) inventory(ctx context.Context, serial int32) ([]character.Item, error) {
	slots, err := s.store.FindInventory(ctx, serial)
	if err != nil {
		return nil, err
	}
	if slots == nil {
		return []character.Item{}, nil
	}
	return s.resolveSlots(ctx, slots)
}

func (s *Service) bank(ctx context.Context, accountSerial int32) (character.Bank, error) {
	trunk, err := s.store.FindTrunk(ctx, accountSerial)
	if err != nil {
		return character.Bank{}, err
	}
	if trunk == nil {
		return character.EmptyBank(), nil
	}
	items, err := s.resolveSlots(ctx, &trunk.Slots)
	if err != nil {
		return character.Bank{}, err
	}
	return character.Bank{Dalant: trunk.Dalant, Gold: trunk.Gold, Items: items}, nil
}

func (s *Service) resolveSlots(ctx context.Context, slots *character.Slots) ([]character.Item, error) {
	occupied := slots.Occupied()
	refs := make([]character.ItemRef, len(occupied))
	for i, o := range occupied {
		refs[i] = o.Ref
	}
	meta, err := s.items.resolve(ctx, refs)
	if err != nil {
		return nil, err
	}
	return character.Resolve(occupied, meta), nil
}
