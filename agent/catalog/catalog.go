// Package catalog exposes the data-access operations as uniformly shaped,
// self-describing registry entries consumable by the dispatcher.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/datachat-dev/datachat/agent/contract"
	queryx "github.com/datachat-dev/datachat/agent/query"
)

const (
	// FallbackName is the entry the model selects when no real operation
	// applies. It has no backing query and always succeeds.
	FallbackName = "fallback_no_match"

	// FallbackMessage signals "no applicable operation" — distinct from a
	// real operation legitimately returning zero results.
	FallbackMessage = "I'm sorry, I couldn't find an answer to your query. Try asking another question related to accounts, transactions, or customers."

	// LimitNotFound is the value returned when an account limit lookup
	// matches no account.
	LimitNotFound = "Limit not found."
)

// Entry is one registered operation: a stable name, the natural-language
// description the model selects on, a typed parameter schema, and the
// invocation itself.
type Entry struct {
	Name   string
	Desc   string
	Params map[string]*schema.ParameterInfo
	Run    func(ctx context.Context, args map[string]any) (any, error)
}

type Catalog struct {
	entries []Entry
	byName  map[string]int
}

var _ contractx.Catalog = (*Catalog)(nil)

// New builds the full registry over the query service. Entry names are
// unique; a duplicate is a programming error surfaced at construction.
func New(svc *queryx.Service) (*Catalog, error) {
	if svc == nil {
		return nil, errors.New("query service is required")
	}

	entries := buildEntries(svc)
	byName := make(map[string]int, len(entries))
	for i, e := range entries {
		if _, dup := byName[e.Name]; dup {
			return nil, fmt.Errorf("duplicate catalog entry %q", e.Name)
		}
		byName[e.Name] = i
	}

	return &Catalog{entries: entries, byName: byName}, nil
}

func (c *Catalog) Has(name string) bool {
	_, ok := c.byName[name]
	return ok
}

// Infos returns every entry as a tool descriptor, in registration order.
func (c *Catalog) Infos() []*schema.ToolInfo {
	infos := make([]*schema.ToolInfo, 0, len(c.entries))
	for _, e := range c.entries {
		info := &schema.ToolInfo{Name: e.Name, Desc: e.Desc}
		if len(e.Params) > 0 {
			info.ParamsOneOf = schema.NewParamsOneOfByParams(e.Params)
		}
		infos = append(infos, info)
	}
	return infos
}

func (c *Catalog) Invoke(ctx context.Context, name string, args map[string]any) (any, error) {
	idx, ok := c.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown operation %q", contractx.ErrInvalidArgument, name)
	}
	if args == nil {
		args = map[string]any{}
	}
	return c.entries[idx].Run(ctx, args)
}

func buildEntries(svc *queryx.Service) []Entry {
	accountIDParam := map[string]*schema.ParameterInfo{
		"account_id": {Type: schema.Integer, Desc: "Numeric account identifier", Required: true},
	}

	return []Entry{
		{
			Name: "get_definition",
			Desc: "Return the definition of a financial term such as account, transaction, limit, tier, or symbol.",
			Params: map[string]*schema.ParameterInfo{
				"term": {Type: schema.String, Desc: "Term to define", Required: true},
			},
			Run: func(ctx context.Context, args map[string]any) (any, error) {
				term, err := stringArg(args, "term")
				if err != nil {
					return nil, err
				}
				return queryx.Definition(term), nil
			},
		},

		// accounts
		{
			Name:   "get_account_limit",
			Desc:   "Retrieve the credit or transaction limit for a given account ID.",
			Params: accountIDParam,
			Run: func(ctx context.Context, args map[string]any) (any, error) {
				id, err := intArg(args, "account_id")
				if err != nil {
					return nil, err
				}
				limit, found, err := svc.AccountLimit(ctx, id)
				if err != nil {
					return nil, err
				}
				if !found {
					return LimitNotFound, nil
				}
				return map[string]any{"account_id": id, "limit": limit}, nil
			},
		},
		{
			Name:   "get_account_products",
			Desc:   "List all financial products associated with a specific account ID.",
			Params: accountIDParam,
			Run: func(ctx context.Context, args map[string]any) (any, error) {
				id, err := intArg(args, "account_id")
				if err != nil {
					return nil, err
				}
				return svc.AccountProducts(ctx, id)
			},
		},
		{
			Name: "get_accounts_by_product",
			Desc: "Find all accounts that include a specific product type (e.g. 'Derivatives' or 'brokerage'). Product names match the stored catalogue value exactly.",
			Params: map[string]*schema.ParameterInfo{
				"product_name": {Type: schema.String, Desc: "Exact product name", Required: true},
			},
			Run: func(ctx context.Context, args map[string]any) (any, error) {
				product, err := stringArg(args, "product_name")
				if err != nil {
					return nil, err
				}
				return svc.AccountsByProduct(ctx, product)
			},
		},
		{
			Name: "get_high_limit_accounts",
			Desc: "List accounts whose credit or transaction limit is strictly above the given threshold (default 100000).",
			Params: map[string]*schema.ParameterInfo{
				"threshold": {Type: schema.Integer, Desc: "Lower bound on account limit, exclusive"},
			},
			Run: func(ctx context.Context, args map[string]any) (any, error) {
				threshold, err := optionalIntArg(args, "threshold", queryx.DefaultHighLimitThreshold)
				if err != nil {
					return nil, err
				}
				return svc.HighLimitAccounts(ctx, threshold)
			},
		},
		{
			Name: "list_all_account_ids",
			Desc: "Get a list of every account ID in the dataset.",
			Run: func(ctx context.Context, args map[string]any) (any, error) {
				return svc.AllAccountIDs(ctx)
			},
		},

		// customers
		{
			Name: "get_customer_by_username",
			Desc: "Get a customer's details by their username.",
			Params: map[string]*schema.ParameterInfo{
				"username": {Type: schema.String, Desc: "Customer username", Required: true},
			},
			Run: func(ctx context.Context, args map[string]any) (any, error) {
				username, err := stringArg(args, "username")
				if err != nil {
					return nil, err
				}
				cust, err := svc.CustomerByUsername(ctx, username)
				if err != nil {
					return nil, err
				}
				if cust == nil {
					return map[string]any{"found": false, "username": username}, nil
				}
				return cust, nil
			},
		},
		{
			Name: "get_customers_with_email_domain",
			Desc: "List customers whose email address ends with a specific domain (e.g. 'yahoo.com').",
			Params: map[string]*schema.ParameterInfo{
				"domain": {Type: schema.String, Desc: "Email domain without the @", Required: true},
			},
			Run: func(ctx context.Context, args map[string]any) (any, error) {
				domain, err := stringArg(args, "domain")
				if err != nil {
					return nil, err
				}
				return svc.CustomersWithEmailDomain(ctx, domain)
			},
		},
		{
			Name:   "get_customers_by_account",
			Desc:   "Find the customers owning a specific account ID.",
			Params: accountIDParam,
			Run: func(ctx context.Context, args map[string]any) (any, error) {
				id, err := intArg(args, "account_id")
				if err != nil {
					return nil, err
				}
				return svc.CustomersByAccount(ctx, id)
			},
		},
		{
			Name: "get_accounts_by_customer",
			Desc: "Find the accounts of a customer by their username.",
			Params: map[string]*schema.ParameterInfo{
				"username": {Type: schema.String, Desc: "Customer username", Required: true},
			},
			Run: func(ctx context.Context, args map[string]any) (any, error) {
				username, err := stringArg(args, "username")
				if err != nil {
					return nil, err
				}
				return svc.AccountsByCustomer(ctx, username)
			},
		},
		{
			Name: "get_customer_tiers",
			Desc: "List tier and benefit information for all customers.",
			Run: func(ctx context.Context, args map[string]any) (any, error) {
				return svc.CustomerTiers(ctx)
			},
		},
		{
			Name: "get_customers_by_birth_year",
			Desc: "Get customers born in a specific calendar year.",
			Params: map[string]*schema.ParameterInfo{
				"year": {Type: schema.Integer, Desc: "Four-digit birth year", Required: true},
			},
			Run: func(ctx context.Context, args map[string]any) (any, error) {
				year, err := intArg(args, "year")
				if err != nil {
					return nil, err
				}
				return svc.CustomersByBirthYear(ctx, int(year))
			},
		},
		{
			Name: "get_accounts_by_person_name_or_username",
			Desc: "Return the account IDs belonging to a customer identified by their exact full name or username.",
			Params: map[string]*schema.ParameterInfo{
				"identifier": {Type: schema.String, Desc: "Customer full name or username", Required: true},
			},
			Run: func(ctx context.Context, args map[string]any) (any, error) {
				identifier, err := stringArg(args, "identifier")
				if err != nil {
					return nil, err
				}
				return svc.AccountsByPersonNameOrUsername(ctx, identifier)
			},
		},

		// transactions
		{
			Name: "get_transactions_by_account",
			Desc: "Retrieve all transactions for a specific account, optionally bounded by start_date and/or end_date in YYYY-MM-DD format (inclusive).",
			Params: map[string]*schema.ParameterInfo{
				"account_id": {Type: schema.Integer, Desc: "Numeric account identifier", Required: true},
				"start_date": {Type: schema.String, Desc: "Inclusive lower bound, YYYY-MM-DD"},
				"end_date":   {Type: schema.String, Desc: "Inclusive upper bound, YYYY-MM-DD"},
			},
			Run: func(ctx context.Context, args map[string]any) (any, error) {
				id, err := intArg(args, "account_id")
				if err != nil {
					return nil, err
				}
				start, err := dateArg(args, "start_date")
				if err != nil {
					return nil, err
				}
				end, err := dateArg(args, "end_date")
				if err != nil {
					return nil, err
				}
				var window *queryx.Window
				if start != nil || end != nil {
					window = &queryx.Window{Start: start, End: end}
				}
				return svc.TransactionsByAccount(ctx, id, window)
			},
		},
		{
			Name:   "get_transaction_summary_by_type",
			Desc:   "Summarize the total number and value of each transaction type (buy, sell) for a given account.",
			Params: accountIDParam,
			Run: func(ctx context.Context, args map[string]any) (any, error) {
				id, err := intArg(args, "account_id")
				if err != nil {
					return nil, err
				}
				return svc.TransactionSummaryByType(ctx, id)
			},
		},
		{
			Name: "get_transactions_by_symbol",
			Desc: "Get all transactions involving a specific stock or currency symbol for a given account.",
			Params: map[string]*schema.ParameterInfo{
				"account_id": {Type: schema.Integer, Desc: "Numeric account identifier", Required: true},
				"symbol":     {Type: schema.String, Desc: "Ticker symbol, case-insensitive", Required: true},
			},
			Run: func(ctx context.Context, args map[string]any) (any, error) {
				id, err := intArg(args, "account_id")
				if err != nil {
					return nil, err
				}
				symbol, err := stringArg(args, "symbol")
				if err != nil {
					return nil, err
				}
				return svc.TransactionsBySymbol(ctx, id, symbol)
			},
		},
		{
			Name: "get_transaction_volume_over_time",
			Desc: "Aggregate transaction count and total value over time for a given account, grouped by 'month' or 'year'.",
			Params: map[string]*schema.ParameterInfo{
				"account_id": {Type: schema.Integer, Desc: "Numeric account identifier", Required: true},
				"group_by":   {Type: schema.String, Desc: "Grouping period", Enum: []string{queryx.GroupByMonth, queryx.GroupByYear}},
			},
			Run: func(ctx context.Context, args map[string]any) (any, error) {
				id, err := intArg(args, "account_id")
				if err != nil {
					return nil, err
				}
				groupBy, err := optionalStringArg(args, "group_by", queryx.GroupByMonth)
				if err != nil {
					return nil, err
				}
				return svc.TransactionVolumeOverTime(ctx, id, groupBy)
			},
		},

		{
			Name: FallbackName,
			Desc: "Use this when the question is unrelated to accounts, customers, or transactions, or when no other operation matches the request.",
			Run: func(ctx context.Context, args map[string]any) (any, error) {
				return FallbackMessage, nil
			},
		},
	}
}
