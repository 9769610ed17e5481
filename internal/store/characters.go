package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rfportal/internal/domain/character"
)

type CharacterStore struct {
	pool *pgxpool.Pool
}

func NewCharacterStore(pool *pgxpool.Pool) *CharacterStore {
	return &CharacterStore{pool: pool}
}

const listByAccountQuery = `
SELECT serial, RTRIM(name), level, class, race, mapcode, lastconntime
FROM rf_world.tbl_base
WHERE dck = 0 AND accountserial = $1
ORDER BY lastconntime DESC
`

// ListByAccount returns the live characters of an account, most recently
// played first.
func (s *CharacterStore) ListByAccount(ctx context.Context, accountSerial int32) ([]character.Summary, error) {
	rows, err := s.pool.Query(ctx, listByAccountQuery, accountSerial)
	if err != nil {
		return nil, fmt.Errorf("query characters: %w", err)
	}
	defer rows.Close()

	chars := make([]character.Summary, 0)
	for rows.Next() {
		var c character.Summary
		if err := rows.Scan(&c.Serial, &c.Name, &c.Level, &c.Class, &c.Race, &c.MapCode, &c.LastConnTime); err != nil {
			return nil, fmt.Errorf("scan character: %w", err)
		}
		chars = append(chars, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate characters: %w", err)
	}
	return chars, nil
}

func (s *CharacterStore) FindRecord(ctx context.Context, name string) (*character.Record, error) {
	var c character.Record
	err := s.pool.QueryRow(ctx, `
SELECT serial, RTRIM(name), level, race, class, mapcode, dck
FROM rf_world.tbl_base
WHERE name = $1
LIMIT 1
`, name).Scan(&c.Serial, &c.Name, &c.Level, &c.Race, &c.Class, &c.MapCode, &c.DCK)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query character record: %w", err)
	}
	return &c, nil
}

var infoQuery = `
SELECT b.serial, b.accountserial, RTRIM(b.name), b.level, b.race, b.class, b.mapcode,
       b.dalant, b.gold, b.lastconntime,
       COALESCE(ge.guildserial, 0), COALESCE(RTRIM(g.id), ''),
       COALESCE(p.pvp_point, 0), COALESCE(p.pvp_cash, 0),
       ` + slotColumns("b.", "ek", character.EquipSlots, character.EmptySlot) + `,
       ` + slotColumns("b.", "eu", character.EquipSlots, 0) + `,
       ` + slotColumns("b.", "ed", character.EmbellishSlots, character.EmptySlot) + `
FROM rf_world.tbl_base b
LEFT JOIN rf_world.tbl_general ge ON b.serial = ge.serial
LEFT JOIN rf_world.tbl_guild g ON ge.guildserial = g.serial
LEFT JOIN rf_world.tbl_pvporderview p ON b.serial = p.serial
WHERE b.name = $1 AND b.dck = 0
LIMIT 1
`

// FindInfo returns the live character with the given name joined with its
// guild and PvP standing.
func (s *CharacterStore) FindInfo(ctx context.Context, name string) (*character.Info, error) {
	var c character.Info
	dest := []any{
		&c.Serial, &c.AccountSerial, &c.Name, &c.Level, &c.Race, &c.Class, &c.MapCode,
		&c.Dalant, &c.Gold, &c.LastConnTime,
		&c.GuildSerial, &c.GuildName, &c.PvpPoint, &c.PvpCash,
	}
	dest = append(dest, int64Dests(c.EquipKeys[:])...)
	dest = append(dest, int64Dests(c.EquipUpgrades[:])...)
	dest = append(dest, int64Dests(c.EmbellishKeys[:])...)

	if err := s.pool.QueryRow(ctx, infoQuery, name).Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query character info: %w", err)
	}
	return &c, nil
}

var slotSelect = slotColumns("", "k", character.SlotCount, character.EmptySlot) + ", " +
	slotColumns("", "d", character.SlotCount, 0) + ", " +
	slotColumns("", "u", character.SlotCount, 0)

func slotDests(s *character.Slots) []any {
	dest := int64Dests(s.Keys[:])
	dest = append(dest, int64Dests(s.Counts[:])...)
	return append(dest, int64Dests(s.Upgrades[:])...)
}

func (s *CharacterStore) FindInventory(ctx context.Context, characterSerial int32) (*character.Slots, error) {
	var slots character.Slots
	err := s.pool.QueryRow(ctx, `SELECT `+slotSelect+` FROM rf_world.tbl_inven WHERE serial = $1`, characterSerial).
		Scan(slotDests(&slots)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query inventory: %w", err)
	}
	return &slots, nil
}

func (s *CharacterStore) FindTrunk(ctx context.Context, accountSerial int32) (*character.Trunk, error) {
	t := character.Trunk{AccountSerial: accountSerial}
	dest := append([]any{&t.Dalant, &t.Gold}, slotDests(&t.Slots)...)
	err := s.pool.QueryRow(ctx, `SELECT dalant, gold, `+slotSelect+` FROM rf_world.tbl_accounttrunk WHERE accountserial = $1`, accountSerial).
		Scan(dest...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query bank: %w", err)
	}
	return &t, nil
}
