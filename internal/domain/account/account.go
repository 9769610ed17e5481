package account

import (
	"time"

	"rfportal/internal/domain/character"
)

// DefaultAccountType is written for every account created through the portal.
const DefaultAccountType = 0

// BillingActive is the billing status code of a running premium window.
const BillingActive = 2

const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

// Account is the login metadata row the overview page is built from.
type Account struct {
	Serial      int32
	Username    string
	Email       string
	LastLogin   *time.Time
	LastLoginIP string
}

type Billing struct {
	Cash       int64
	PremiumEnd *time.Time
	Status     int32
}

// Identity is what a successful login reveals about the account.
type Identity struct {
	Username    string `json:"username"`
	Email       string `json:"Email"`
	AccountType int32  `json:"accounttype"`
}

// Registration carries the rows written when an account is created.
type Registration struct {
	ID          []byte
	Password    []byte
	Email       string
	Pin         string
	OriginIP    string
	CreatedAt   time.Time
	PremiumFrom time.Time
	PremiumTo   time.Time
}

// Overview is the account-info document.
type Overview struct {
	Username      string              `json:"username"`
	AccountSerial int32               `json:"account_serial"`
	Email         string              `json:"email"`
	LastLogin     *time.Time          `json:"last_login"`
	IPAddress     string              `json:"ip_address"`
	GamePoint     int64               `json:"game_point"`
	CashCoin      int64               `json:"cash_coin"`
	PremiumEnd    time.Time           `json:"DTEndPrem"`
	Status        string              `json:"status"`
	Characters    []character.Summary `json:"characters"`
}

// NewOverview merges the account, its optional billing row and its
// characters. Without billing, money is zero, the premium end is now and the
// status is inactive.
func NewOverview(acc Account, billing *Billing, chars []character.Summary, now time.Time) Overview {
	ov := Overview{
		Username:      acc.Username,
		AccountSerial: acc.Serial,
		Email:         acc.Email,
		LastLogin:     acc.LastLogin,
		IPAddress:     acc.LastLoginIP,
		PremiumEnd:    now,
		Status:        StatusInactive,
		Characters:    chars,
	}
	if ov.Characters == nil {
		ov.Characters = []character.Summary{}
	}
	if billing != nil {
		ov.CashCoin = billing.Cash
		if billing.PremiumEnd != nil {
			ov.PremiumEnd = *billing.PremiumEnd
		}
		if billing.Status == BillingActive {
			ov.Status = StatusActive
		}
	}
	return ov
}
