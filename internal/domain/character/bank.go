package character

const BankEmptyMessage = "Bank Empty"

// Trunk is the account-wide bank row shared by all characters of an account.
type Trunk struct {
	AccountSerial int32
	Dalant        int64
	Gold          int64
	Slots         Slots
}

type Bank struct {
	Message string `json:"message,omitempty"`
	Dalant  int64  `json:"Dalant"`
	Gold    int64  `json:"Gold"`
	Items   []Item `json:"items"`
}

// EmptyBank is returned when an account has no trunk row.
func EmptyBank() Bank {
	return Bank{Message: BankEmptyMessage, Items: []Item{}}
}
