// internal/rules/keyword_test.go
package rules

import (
	"strings"
	"testing"

	"github.com/aiba-2502/denco-notify/internal/types"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestEvaluateKeywords_ListMode(t *testing.T) {
	tests := []struct {
		name     string
		terms    []types.KeywordTerm
		haystack string
		expected bool
	}{
		{
			name:     "single term present",
			terms:    []types.KeywordTerm{{Word: "緊急"}},
			haystack: "これは緊急の連絡です",
			expected: true,
		},
		{
			name:     "single term absent",
			terms:    []types.KeywordTerm{{Word: "緊急"}},
			haystack: "通常の連絡です",
			expected: false,
		},
		{
			name:     "any-of semantics, second term matches",
			terms:    []types.KeywordTerm{{Word: "緊急"}, {Word: "至急"}},
			haystack: "至急折り返しください",
			expected: true,
		},
		{
			name:     "case-insensitive ascii",
			terms:    []types.KeywordTerm{{Word: "URGENT"}},
			haystack: "this is urgent",
			expected: true,
		},
		{
			name:     "empty term list matches nothing",
			terms:    []types.KeywordTerm{},
			haystack: "緊急 至急 anything",
			expected: false,
		},
		{
			name:     "empty haystack",
			terms:    []types.KeywordTerm{{Word: "緊急"}},
			haystack: "",
			expected: false,
		},
		{
			name:     "malformed empty-word term skipped",
			terms:    []types.KeywordTerm{{Word: ""}, {Word: "至急"}},
			haystack: "至急お願いします",
			expected: true,
		},
		{
			name:     "only malformed terms matches nothing",
			terms:    []types.KeywordTerm{{Word: ""}, {Word: ""}},
			haystack: "anything",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond := &types.KeywordCondition{Mode: types.KeywordModeList, Terms: tt.terms}
			if got := EvaluateKeywords(cond, tt.haystack); got != tt.expected {
				t.Errorf("EvaluateKeywords() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestEvaluateKeywords_LogicalMode(t *testing.T) {
	tests := []struct {
		name     string
		terms    []types.KeywordTerm
		haystack string
		expected bool
	}{
		{
			name: "and requires both",
			terms: []types.KeywordTerm{
				{Word: "緊急", Operator: types.OperatorNone},
				{Word: "至急", Operator: types.OperatorAnd},
			},
			haystack: "至急 至急",
			expected: false,
		},
		{
			name: "and satisfied",
			terms: []types.KeywordTerm{
				{Word: "緊急", Operator: types.OperatorNone},
				{Word: "至急", Operator: types.OperatorAnd},
			},
			haystack: "緊急 至急",
			expected: true,
		},
		{
			name: "or satisfied by either",
			terms: []types.KeywordTerm{
				{Word: "A", Operator: types.OperatorNone},
				{Word: "B", Operator: types.OperatorOr},
			},
			haystack: "only b here",
			expected: true,
		},
		{
			// (A or B) and C, haystack has B and C: (false or true) and true
			name: "no precedence, left-to-right fold true case",
			terms: []types.KeywordTerm{
				{Word: "A", Operator: types.OperatorNone},
				{Word: "B", Operator: types.OperatorOr},
				{Word: "C", Operator: types.OperatorAnd},
			},
			haystack: "b c",
			expected: true,
		},
		{
			// (A or B) and C, haystack has only A: (true or false) and false
			name: "no precedence, left-to-right fold false case",
			terms: []types.KeywordTerm{
				{Word: "A", Operator: types.OperatorNone},
				{Word: "B", Operator: types.OperatorOr},
				{Word: "C", Operator: types.OperatorAnd},
			},
			haystack: "a",
			expected: false,
		},
		{
			name:     "zero terms never match",
			terms:    []types.KeywordTerm{},
			haystack: "anything at all",
			expected: false,
		},
		{
			name: "malformed first term skipped, next seeds the fold",
			terms: []types.KeywordTerm{
				{Word: "", Operator: types.OperatorNone},
				{Word: "至急", Operator: types.OperatorAnd},
			},
			haystack: "至急",
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond := &types.KeywordCondition{Mode: types.KeywordModeLogical, Terms: tt.terms}
			if got := EvaluateKeywords(cond, tt.haystack); got != tt.expected {
				t.Errorf("EvaluateKeywords() = %v, want %v", got, tt.expected)
			}
		})
	}
}

// Property-based test: a list condition containing a word that is a substring
// of the haystack always matches, regardless of other terms.
func TestEvaluateKeywords_PropertyListContainment(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("present word always matches in list mode", prop.ForAll(
		func(word string, prefix string, suffix string, noise []string) bool {
			if word == "" {
				return true // malformed terms are out of scope here
			}
			terms := make([]types.KeywordTerm, 0, len(noise)+1)
			for _, n := range noise {
				terms = append(terms, types.KeywordTerm{Word: n})
			}
			terms = append(terms, types.KeywordTerm{Word: word})

			cond := &types.KeywordCondition{Mode: types.KeywordModeList, Terms: terms}
			return EvaluateKeywords(cond, prefix+word+suffix)
		},
		gen.AlphaString(),
		gen.AlphaString(),
		gen.AlphaString(),
		gen.SliceOf(gen.AlphaString()),
	))

	properties.Property("evaluation never crashes on arbitrary terms", prop.ForAll(
		func(words []string, logical bool, haystack string) bool {
			terms := make([]types.KeywordTerm, len(words))
			for i, w := range words {
				op := types.OperatorAnd
				if i == 0 {
					op = types.OperatorNone
				} else if i%2 == 0 {
					op = types.OperatorOr
				}
				terms[i] = types.KeywordTerm{Word: w, Operator: op}
			}
			mode := types.KeywordModeList
			if logical {
				mode = types.KeywordModeLogical
			}

			defer func() {
				if r := recover(); r != nil {
					t.Errorf("EvaluateKeywords() panicked: %v", r)
				}
			}()

			result := EvaluateKeywords(&types.KeywordCondition{Mode: mode, Terms: terms}, haystack)
			// An empty effective term list must never match.
			allEmpty := true
			for _, w := range words {
				if w != "" {
					allEmpty = false
					break
				}
			}
			if allEmpty && result {
				return false
			}
			return true
		},
		gen.SliceOf(gen.AlphaString()),
		gen.Bool(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

func TestEvaluateKeywords_CaseFoldingMatchesStringsLower(t *testing.T) {
	cond := &types.KeywordCondition{
		Mode:  types.KeywordModeList,
		Terms: []types.KeywordTerm{{Word: "ALERT"}},
	}
	haystack := "System Alert Raised"
	if !EvaluateKeywords(cond, haystack) {
		t.Fatalf("EvaluateKeywords() = false, want true for %q", strings.ToLower(haystack))
	}
}
