package query

import "strings"

// NoDefinition is the literal value returned for unknown glossary terms.
// Absence is a value here, not an error.
const NoDefinition = "No definition found."

// Glossary of domain terms, loaded once and immutable for the process
// lifetime. Keys are matched case-insensitively.
var definitions = map[string]string{
	"account":     "An account represents a customer's financial relationship and includes limits and product types.",
	"transaction": "A transaction is a financial activity like deposits or withdrawals by a customer.",

	// accounts collection
	"limit":    "The maximum available credit or transaction limit on the account. It represents the financial ceiling for transactions such as withdrawals or trades.",
	"products": "A list of financial services associated with the account, such as 'brokerage', 'investment', or 'commodity'.",

	// customers collection
	"tier_and_details": "An embedded document providing details about the customer's membership tier, associated benefits, and whether the tier is currently active.",
	"tier":             "The membership level of the customer, such as 'Silver', 'Gold', or 'Platinum', indicating their service level.",
	"benefits":         "A list of perks associated with the customer's tier, such as 'priority_support' or 'lower_fees'.",
	"active":           "A boolean flag that indicates whether the customer's tier benefits are currently active or inactive.",

	// transactions collection
	"transaction_count": "The total number of individual transactions stored within a single transaction bucket document.",
	"bucket_start_date": "The earliest date of the transactions stored in a bucket, used for time-based partitioning.",
	"bucket_end_date":   "The latest date of the transactions stored in a bucket, used for time-based partitioning.",
	"transaction_code":  "A short identifier for the type of transaction. Valid values include 'buy' and 'sell'.",
	"symbol":            "The asset's ticker symbol involved in the transaction. Common examples include 'sap', 'team', 'nflx', 'ibm', 'adbe', and 'msft'.",
}

// Definition looks up a domain term. Unknown terms yield NoDefinition.
func Definition(term string) string {
	if def, ok := definitions[strings.ToLower(strings.TrimSpace(term))]; ok {
		return def
	}
	return NoDefinition
}
