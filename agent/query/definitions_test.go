package query

import "testing"

func TestDefinitionCaseInsensitive(t *testing.T) {
	t.Parallel()

	lower := Definition("limit")
	upper := Definition("LIMIT")
	if lower == NoDefinition {
		t.Fatal("expected 'limit' to be defined")
	}
	if lower != upper {
		t.Fatalf("lookup is case-sensitive: %q vs %q", lower, upper)
	}
}

func TestDefinitionUnknownTerm(t *testing.T) {
	t.Parallel()

	if got := Definition("blockchain"); got != NoDefinition {
		t.Fatalf("Definition(blockchain) = %q, want %q", got, NoDefinition)
	}
}
