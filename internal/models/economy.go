package models

// EconomyItem is one inventory stack of an economy profile.
type EconomyItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// EconomyProfile is owned and mutated exclusively by the external economy
// service; this codebase only reads it and issues commands remotely.
type EconomyProfile struct {
	UserID    string        `json:"userId"`
	Username  string        `json:"username"`
	Avatar    string        `json:"avatar"`
	Wallet    int64         `json:"wallet"`
	Bank      int64         `json:"bank"`
	Gold      int64         `json:"gold"`
	Inventory []EconomyItem `json:"inventory"`
}
