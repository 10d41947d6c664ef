// internal/rules/keyword.go
package rules

import (
	"strings"

	"github.com/aiba-2502/denco-notify/internal/types"
)

/*
 * Keyword expression evaluation.
 *
 * Evaluates a KeywordCondition against recognized text (call transcript or
 * fax OCR). Two modes:
 *
 *   - list: any-of semantics. Matches iff the text contains at least one
 *     term's word as a case-insensitive substring. An empty term list matches
 *     nothing. This is intentionally asymmetric with the absence of a keyword
 *     condition, which matches everything; the caller (match.go) handles the
 *     nil case before delegating here.
 *
 *   - logical: strict left-to-right fold. The result seeds with the first
 *     term's containment check, then each subsequent term combines with the
 *     running result through its and/or operator. There is NO operator
 *     precedence: "A or B and C" evaluates as "(A or B) and C". The authoring
 *     UI builds expressions one term at a time, so users see exactly this
 *     incremental evaluation order.
 *
 * Malformed terms (empty word) are skipped as if absent rather than failing
 * the rule; authoring mistakes must not silence a whole rule.
 *
 * Case folding uses strings.ToLower on both sides. Substring containment is
 * byte-wise after folding, which handles Japanese keywords (no case) and
 * ASCII keywords (folded) uniformly.
 */

// EvaluateKeywords checks a keyword condition against haystack text.
// cond must be non-nil; absence of a condition is the caller's concern.
func EvaluateKeywords(cond *types.KeywordCondition, haystack string) bool {
	terms := liveTerms(cond.Terms)
	if len(terms) == 0 {
		return false
	}

	folded := strings.ToLower(haystack)

	switch cond.Mode {
	case types.KeywordModeLogical:
		return evaluateLogical(terms, folded)
	default:
		// List mode is also the fallback for an unset mode: the authoring
		// UI's default expression form.
		return evaluateList(terms, folded)
	}
}

// evaluateList returns true if any term's word appears in the text.
func evaluateList(terms []types.KeywordTerm, folded string) bool {
	for _, term := range terms {
		if contains(folded, term.Word) {
			return true
		}
	}
	return false
}

// evaluateLogical folds terms left-to-right with and/or, no precedence.
// Short-circuits the containment scan when the running result already
// determines the outcome of the next combination.
func evaluateLogical(terms []types.KeywordTerm, folded string) bool {
	result := contains(folded, terms[0].Word)

	for _, term := range terms[1:] {
		switch term.Operator {
		case types.OperatorOr:
			if !result {
				result = contains(folded, term.Word)
			}
		default:
			// And is the default join: the UI forces an explicit operator on
			// every term after the first, but tolerate unset here.
			if result {
				result = contains(folded, term.Word)
			}
		}
	}

	return result
}

// contains checks case-insensitive substring containment.
// The haystack arrives pre-folded; only the needle folds per call.
func contains(foldedHaystack, word string) bool {
	return strings.Contains(foldedHaystack, strings.ToLower(word))
}

// liveTerms filters out malformed (empty word) terms.
// Returns the original slice when nothing is filtered to avoid allocation on
// the common path.
func liveTerms(terms []types.KeywordTerm) []types.KeywordTerm {
	clean := true
	for _, t := range terms {
		if t.Word == "" {
			clean = false
			break
		}
	}
	if clean {
		return terms
	}

	out := make([]types.KeywordTerm, 0, len(terms))
	for _, t := range terms {
		if t.Word != "" {
			out = append(out, t)
		}
	}
	return out
}
