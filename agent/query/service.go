package query

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	contractx "github.com/datachat-dev/datachat/agent/contract"
)

// GroupBy keys accepted by TransactionVolumeOverTime.
const (
	GroupByMonth = "month"
	GroupByYear  = "year"
)

// DefaultHighLimitThreshold applies when no threshold is supplied.
const DefaultHighLimitThreshold int64 = 100000

// Store is the read-only boundary to the document store. Implementations
// translate each method into collection predicates; all post-filtering and
// aggregation stays in the Service. A missing document is (nil, nil), never
// an error.
type Store interface {
	AccountByID(ctx context.Context, accountID int64) (*Account, error)
	AccountsByProduct(ctx context.Context, product string) ([]Account, error)
	AccountsOverLimit(ctx context.Context, threshold int64) ([]Account, error)
	AccountIDs(ctx context.Context) ([]int64, error)
	AccountIDsByCustomerID(ctx context.Context, customerID int64) ([]int64, error)

	CustomerByUsername(ctx context.Context, username string) (*Customer, error)
	CustomerByNameOrUsername(ctx context.Context, identifier string) (*Customer, error)
	CustomersByEmailDomain(ctx context.Context, domain string) ([]Customer, error)
	CustomersByAccountID(ctx context.Context, accountID int64) ([]Customer, error)
	CustomersByBirthdateRange(ctx context.Context, from, to time.Time) ([]Customer, error)
	Customers(ctx context.Context) ([]Customer, error)

	// BucketsByAccountID returns every bucket for the account. A non-nil
	// window may be used to skip buckets that cannot overlap it, but callers
	// still verify each record individually.
	BucketsByAccountID(ctx context.Context, accountID int64, window *Window) ([]Bucket, error)
}

// Service implements the fixed catalogue of domain questions over a Store.
type Service struct {
	store Store
}

func NewService(store Store) (*Service, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	return &Service{store: store}, nil
}

/* ------------------------------- accounts ------------------------------- */

// AccountLimit returns the stored limit. ok=false means no such account.
func (s *Service) AccountLimit(ctx context.Context, accountID int64) (int64, bool, error) {
	acc, err := s.store.AccountByID(ctx, accountID)
	if err != nil {
		return 0, false, fmt.Errorf("account limit lookup: %w", err)
	}
	if acc == nil {
		return 0, false, nil
	}
	return acc.Limit, true, nil
}

// AccountProducts returns the product list for an account, empty when the
// account is unknown or carries no products.
func (s *Service) AccountProducts(ctx context.Context, accountID int64) ([]string, error) {
	acc, err := s.store.AccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("account products lookup: %w", err)
	}
	if acc == nil {
		return []string{}, nil
	}
	return append([]string{}, acc.Products...), nil
}

// AccountsByProduct matches the stored catalogue value exactly
// (case-sensitive).
func (s *Service) AccountsByProduct(ctx context.Context, product string) ([]Account, error) {
	accounts, err := s.store.AccountsByProduct(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("accounts by product: %w", err)
	}
	if accounts == nil {
		accounts = []Account{}
	}
	return accounts, nil
}

// HighLimitAccounts returns accounts with limit strictly greater than the
// threshold.
func (s *Service) HighLimitAccounts(ctx context.Context, threshold int64) ([]Account, error) {
	accounts, err := s.store.AccountsOverLimit(ctx, threshold)
	if err != nil {
		return nil, fmt.Errorf("high limit accounts: %w", err)
	}
	if accounts == nil {
		accounts = []Account{}
	}
	return accounts, nil
}

func (s *Service) AllAccountIDs(ctx context.Context) ([]int64, error) {
	ids, err := s.store.AccountIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list account ids: %w", err)
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}

/* ------------------------------- customers ------------------------------ */

// CustomerByUsername returns nil when no customer matches.
func (s *Service) CustomerByUsername(ctx context.Context, username string) (*Customer, error) {
	cust, err := s.store.CustomerByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("customer by username: %w", err)
	}
	return cust, nil
}

func (s *Service) CustomersWithEmailDomain(ctx context.Context, domain string) ([]CustomerContact, error) {
	domain = strings.TrimPrefix(strings.TrimSpace(domain), "@")
	customers, err := s.store.CustomersByEmailDomain(ctx, domain)
	if err != nil {
		return nil, fmt.Errorf("customers by email domain: %w", err)
	}
	contacts := make([]CustomerContact, 0, len(customers))
	for _, c := range customers {
		contacts = append(contacts, CustomerContact{Name: c.Name, Email: c.Email})
	}
	return contacts, nil
}

func (s *Service) CustomersByAccount(ctx context.Context, accountID int64) ([]CustomerAccounts, error) {
	customers, err := s.store.CustomersByAccountID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("customers by account: %w", err)
	}
	return projectCustomerAccounts(customers), nil
}

// AccountsByCustomer returns the account ids owned by the named customer.
func (s *Service) AccountsByCustomer(ctx context.Context, username string) ([]CustomerAccounts, error) {
	cust, err := s.store.CustomerByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("accounts by customer: %w", err)
	}
	if cust == nil {
		return []CustomerAccounts{}, nil
	}
	return projectCustomerAccounts([]Customer{*cust}), nil
}

func (s *Service) CustomerTiers(ctx context.Context) ([]CustomerTier, error) {
	customers, err := s.store.Customers(ctx)
	if err != nil {
		return nil, fmt.Errorf("customer tiers: %w", err)
	}
	tiers := make([]CustomerTier, 0, len(customers))
	for _, c := range customers {
		tiers = append(tiers, CustomerTier{Username: c.Username, TierAndDetails: c.TierAndDetails})
	}
	return tiers, nil
}

func (s *Service) CustomersByBirthYear(ctx context.Context, year int) ([]CustomerBirth, error) {
	if year <= 0 {
		return nil, fmt.Errorf("%w: year must be positive, got %d", contractx.ErrInvalidArgument, year)
	}
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)
	customers, err := s.store.CustomersByBirthdateRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("customers by birth year: %w", err)
	}
	births := make([]CustomerBirth, 0, len(customers))
	for _, c := range customers {
		births = append(births, CustomerBirth{Name: c.Name, Birthdate: c.Birthdate})
	}
	return births, nil
}

// AccountsByPersonNameOrUsername resolves a customer by exact name or
// username match, then returns that customer's account ids. No match is an
// empty list, not an error.
func (s *Service) AccountsByPersonNameOrUsername(ctx context.Context, identifier string) ([]int64, error) {
	cust, err := s.store.CustomerByNameOrUsername(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("accounts by person: %w", err)
	}
	if cust == nil {
		return []int64{}, nil
	}
	ids, err := s.store.AccountIDsByCustomerID(ctx, cust.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("accounts by person: %w", err)
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}

/* ------------------------------ transactions ---------------------------- */

// TransactionsByAccount flattens every bucket for the account into one
// date-ordered sequence, verifying each record against the window. Bucket
// metadata only narrows the fetch; it is never trusted as a filter.
func (s *Service) TransactionsByAccount(ctx context.Context, accountID int64, window *Window) ([]Transaction, error) {
	buckets, err := s.store.BucketsByAccountID(ctx, accountID, window)
	if err != nil {
		return nil, fmt.Errorf("transactions by account: %w", err)
	}
	txs := make([]Transaction, 0)
	for _, b := range buckets {
		for _, tx := range b.Transactions {
			if window.Contains(tx.Date) {
				txs = append(txs, tx)
			}
		}
	}
	sort.SliceStable(txs, func(i, j int) bool { return txs[i].Date.Before(txs[j].Date) })
	return txs, nil
}

// TransactionSummaryByType accumulates {count, total value} per transaction
// code, scanning every record in every bucket for the account.
func (s *Service) TransactionSummaryByType(ctx context.Context, accountID int64) (map[string]VolumeSummary, error) {
	buckets, err := s.store.BucketsByAccountID(ctx, accountID, nil)
	if err != nil {
		return nil, fmt.Errorf("transaction summary: %w", err)
	}
	summary := make(map[string]VolumeSummary)
	for _, b := range buckets {
		for _, tx := range b.Transactions {
			sum := summary[tx.TransactionCode]
			sum.Count++
			sum.TotalValue = sum.TotalValue.Add(decimal.NewFromFloat(tx.Total))
			summary[tx.TransactionCode] = sum
		}
	}
	return summary, nil
}

// TransactionsBySymbol matches the ticker case-insensitively.
func (s *Service) TransactionsBySymbol(ctx context.Context, accountID int64, symbol string) ([]Transaction, error) {
	buckets, err := s.store.BucketsByAccountID(ctx, accountID, nil)
	if err != nil {
		return nil, fmt.Errorf("transactions by symbol: %w", err)
	}
	txs := make([]Transaction, 0)
	for _, b := range buckets {
		for _, tx := range b.Transactions {
			if strings.EqualFold(tx.Symbol, symbol) {
				txs = append(txs, tx)
			}
		}
	}
	return txs, nil
}

// TransactionVolumeOverTime groups {count, total value} by calendar period.
// groupBy must be "month" (keys "YYYY-MM") or "year" (keys "YYYY").
func (s *Service) TransactionVolumeOverTime(ctx context.Context, accountID int64, groupBy string) (map[string]VolumeSummary, error) {
	if groupBy != GroupByMonth && groupBy != GroupByYear {
		return nil, fmt.Errorf("%w: group_by must be %q or %q, got %q",
			contractx.ErrInvalidArgument, GroupByMonth, GroupByYear, groupBy)
	}
	buckets, err := s.store.BucketsByAccountID(ctx, accountID, nil)
	if err != nil {
		return nil, fmt.Errorf("transaction volume: %w", err)
	}
	result := make(map[string]VolumeSummary)
	for _, b := range buckets {
		for _, tx := range b.Transactions {
			key := periodKey(tx.Date, groupBy)
			sum := result[key]
			sum.Count++
			sum.TotalValue = sum.TotalValue.Add(decimal.NewFromFloat(tx.Total))
			result[key] = sum
		}
	}
	return result, nil
}

func periodKey(t time.Time, groupBy string) string {
	if groupBy == GroupByYear {
		return t.Format("2006")
	}
	return t.Format("2006-01")
}

func projectCustomerAccounts(customers []Customer) []CustomerAccounts {
	out := make([]CustomerAccounts, 0, len(customers))
	for _, c := range customers {
		accounts := c.Accounts
		if accounts == nil {
			accounts = []int64{}
		}
		out = append(out, CustomerAccounts{Username: c.Username, Name: c.Name, Accounts: accounts})
	}
	return out
}
