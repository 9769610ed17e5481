package character

import "time"

// Summary is one row of an account's character list.
type Summary struct {
	Serial       int32     `json:"Serial"`
	Name         string    `json:"Name"`
	Level        int32     `json:"Level"`
	Class        string    `json:"Class"`
	Race         int32     `json:"Race"`
	MapCode      int32     `json:"MapCode"`
	LastConnTime time.Time `json:"LastConnTime"`
}

// Record is the plain base row returned by name search. Deleted characters
// are included and flagged through DCK.
type Record struct {
	Serial  int32  `json:"Serial"`
	Name    string `json:"Name"`
	Level   int32  `json:"Level"`
	Race    int32  `json:"Race"`
	Class   string `json:"Class"`
	MapCode int32  `json:"MapCode"`
	DCK     int32  `json:"DCK"`
}

const (
	EquipSlots     = 8
	EmbellishSlots = 6
)

// Info is the base row joined with guild membership and PvP ranking.
type Info struct {
	Serial        int32     `json:"Serial"`
	AccountSerial int32     `json:"AccountSerial"`
	Name          string    `json:"Name"`
	Level         int32     `json:"Level"`
	Race          int32     `json:"Race"`
	Class         string    `json:"Class"`
	MapCode       int32     `json:"MapCode"`
	Dalant        int64     `json:"Dalant"`
	Gold          int64     `json:"Gold"`
	LastConnTime  time.Time `json:"LastConnTime"`
	GuildSerial   int32     `json:"GuildSerial"`
	GuildName     string    `json:"GuildName"`
	PvpPoint      float64   `json:"pvp_point"`
	PvpCash       float64   `json:"pvp_cash"`

	EquipKeys     [EquipSlots]int64     `json:"-"`
	EquipUpgrades [EquipSlots]int64     `json:"-"`
	EmbellishKeys [EmbellishSlots]int64 `json:"-"`
}

// SearchResult bundles everything the character search page renders.
type SearchResult struct {
	Info      Info      `json:"info"`
	Equipment Equipment `json:"equipment"`
	Inventory []Item    `json:"inventory"`
	Bank      Bank      `json:"bank"`
}
