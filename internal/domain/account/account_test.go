package account

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rfportal/internal/domain/character"
)

func TestEncodeDecode(t *testing.T) {
	b, err := Encode("abc123")
	require.NoError(t, err)
	assert.Len(t, b, FieldWidth)
	assert.Equal(t, []byte("abc123\x00\x00\x00\x00\x00\x00\x00"), b)
	assert.Equal(t, "abc123", Decode(b))

	_, err = Encode("thirteen-char")
	assert.ErrorIs(t, err, ErrTooLong)

	b, err = Encode("twelve-chars")
	require.NoError(t, err)
	assert.Equal(t, "twelve-chars", Decode(b))
}

func TestDecodeTrimsSpacePadding(t *testing.T) {
	assert.Equal(t, "abc", Decode([]byte("abc   ")))
	assert.Equal(t, "", Decode(nil))
}

func TestNewOverviewWithoutBilling(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	ov := NewOverview(Account{Serial: 7, Username: "abc123"}, nil, nil, now)

	assert.Equal(t, int64(0), ov.CashCoin)
	assert.Equal(t, int64(0), ov.GamePoint)
	assert.Equal(t, now, ov.PremiumEnd)
	assert.Equal(t, StatusInactive, ov.Status)
	assert.NotNil(t, ov.Characters)

	b, err := json.Marshal(ov)
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.Equal(t, float64(0), raw["cash_coin"])
	assert.Equal(t, "Inactive", raw["status"])
	assert.Equal(t, []any{}, raw["characters"])
}

func TestNewOverviewWithBilling(t *testing.T) {
	now := time.Now()
	end := now.Add(48 * time.Hour)
	chars := []character.Summary{{Serial: 1, Name: "Aria"}}

	active := NewOverview(Account{Serial: 1}, &Billing{Cash: 500, PremiumEnd: &end, Status: BillingActive}, chars, now)
	assert.Equal(t, StatusActive, active.Status)
	assert.Equal(t, int64(500), active.CashCoin)
	assert.Equal(t, end, active.PremiumEnd)
	assert.Equal(t, chars, active.Characters)

	lapsed := NewOverview(Account{Serial: 1}, &Billing{Cash: 10, Status: 1}, chars, now)
	assert.Equal(t, StatusInactive, lapsed.Status)
	assert.Equal(t, now, lapsed.PremiumEnd)
}
