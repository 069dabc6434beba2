package query

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account mirrors one document in the accounts collection. The store is
// read-only from this system's perspective.
type Account struct {
	AccountID  int64    `bson:"account_id" json:"account_id"`
	CustomerID int64    `bson:"customer_id" json:"customer_id"`
	Limit      int64    `bson:"limit" json:"limit"`
	Products   []string `bson:"products" json:"products"`
}

// TierDetails is the embedded membership structure on a customer.
type TierDetails struct {
	Tier     string   `bson:"tier" json:"tier"`
	Benefits []string `bson:"benefits" json:"benefits"`
	Active   bool     `bson:"active" json:"active"`
}

type Customer struct {
	CustomerID     int64       `bson:"customer_id" json:"customer_id"`
	Username       string      `bson:"username" json:"username"`
	Name           string      `bson:"name" json:"name"`
	Birthdate      time.Time   `bson:"birthdate" json:"birthdate"`
	Email          string      `bson:"email" json:"email"`
	Accounts       []int64     `bson:"accounts" json:"accounts"`
	TierAndDetails TierDetails `bson:"tier_and_details" json:"tier_and_details"`
}

// Bucket is a batch container of transactions for one account. The declared
// start/end dates are coarse partitioning metadata; records inside are always
// verified individually when filtering by date.
type Bucket struct {
	AccountID        int64         `bson:"account_id" json:"account_id"`
	TransactionCount int           `bson:"transaction_count" json:"transaction_count"`
	BucketStartDate  time.Time     `bson:"bucket_start_date" json:"bucket_start_date"`
	BucketEndDate    time.Time     `bson:"bucket_end_date" json:"bucket_end_date"`
	Transactions     []Transaction `bson:"transactions" json:"transactions"`
}

type Transaction struct {
	Date            time.Time `bson:"date" json:"date"`
	TransactionCode string    `bson:"transaction_code" json:"transaction_code"`
	Symbol          string    `bson:"symbol" json:"symbol"`
	Total           float64   `bson:"total" json:"total"`
}

// CustomerTier is the projection returned by the tier listing operation.
type CustomerTier struct {
	Username       string      `json:"username"`
	TierAndDetails TierDetails `json:"tier_and_details"`
}

// CustomerContact is the projection returned by email-domain lookups.
type CustomerContact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CustomerAccounts is the projection returned by account-ownership lookups.
type CustomerAccounts struct {
	Username string  `json:"username"`
	Name     string  `json:"name"`
	Accounts []int64 `json:"accounts"`
}

// CustomerBirth is the projection returned by birth-year lookups.
type CustomerBirth struct {
	Name      string    `json:"name"`
	Birthdate time.Time `json:"birthdate"`
}

// VolumeSummary accumulates count and monetary value for a group of
// transactions (one transaction code, or one calendar period).
type VolumeSummary struct {
	Count      int             `json:"count"`
	TotalValue decimal.Decimal `json:"total_value"`
}

// Window is an inclusive date range. Nil bounds are open-ended.
type Window struct {
	Start *time.Time
	End   *time.Time
}

// Contains reports whether t falls inside the window (inclusive).
func (w *Window) Contains(t time.Time) bool {
	if w == nil {
		return true
	}
	if w.Start != nil && t.Before(*w.Start) {
		return false
	}
	if w.End != nil && t.After(*w.End) {
		return false
	}
	return true
}

// IsZero reports whether the window places no constraint at all.
func (w *Window) IsZero() bool {
	return w == nil || (w.Start == nil && w.End == nil)
}
