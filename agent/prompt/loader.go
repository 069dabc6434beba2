package prompt

import (
	_ "embed"
	"strings"
)

//go:embed template/analyst.txt
var analystRaw string

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Analyst string
}

// LoadPromptSet returns trimmed prompt strings. The embed is compile-time,
// so this is safe to call concurrently.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Analyst: strings.TrimSpace(analystRaw),
	}
}
