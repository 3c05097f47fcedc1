package validator

import (
	"fmt"
	"strings"
)

// ErrorCode identifies the construction rule an error violates.
type ErrorCode string

const (
	CodeMainDeckTooSmall   ErrorCode = "main_deck_too_small"
	CodeTooManyCopies      ErrorCode = "too_many_copies"
	CodeDomainMismatch     ErrorCode = "domain_mismatch"
	CodeTooManySignatures  ErrorCode = "too_many_signatures"
	CodeRuneDeckWrongSize  ErrorCode = "rune_deck_wrong_size"
	CodeRuneDomainMismatch ErrorCode = "rune_domain_mismatch"
	CodeSideboardTooLarge  ErrorCode = "sideboard_too_large"
)

// WarningCode identifies an informational finding.
type WarningCode string

const (
	CodeMultipleBattlefields WarningCode = "multiple_battlefields"
	CodeSideboardNotEmpty    WarningCode = "sideboard_not_empty"
)

// ValidationError is a single rule violation.
//
// Count and Limit carry the numbers relevant to the rule: for size rules Count
// is the current total and Limit the minimum or required size; for copy and
// signature rules they are the observed copies and the cap.
type ValidationError struct {
	Code          ErrorCode `json:"code"`
	CardName      string    `json:"cardName,omitempty"`
	Section       string    `json:"section,omitempty"`
	Count         int       `json:"count"`
	Limit         int       `json:"limit"`
	CardDomains   []string  `json:"cardDomains,omitempty"`
	LegendDomains []string  `json:"legendDomains,omitempty"`
	Rule          string    `json:"rule"`
}

// ID returns a stable identifier for the finding, unique within one result.
func (e ValidationError) ID() string {
	switch e.Code {
	case CodeMainDeckTooSmall:
		return "main_deck_size"
	case CodeTooManyCopies:
		return fmt.Sprintf("copies_%s_%s", e.CardName, e.Section)
	case CodeDomainMismatch:
		return "domain_" + e.CardName
	case CodeTooManySignatures:
		return "signature_count"
	case CodeRuneDeckWrongSize:
		return "rune_deck_size"
	case CodeRuneDomainMismatch:
		return "rune_domain_" + e.CardName
	case CodeSideboardTooLarge:
		return "sideboard_size"
	default:
		return string(e.Code)
	}
}

// Message renders the finding for display.
func (e ValidationError) Message() string {
	switch e.Code {
	case CodeMainDeckTooSmall:
		return fmt.Sprintf("Main deck has %d cards, but must have at least %d", e.Count, e.Limit)
	case CodeTooManyCopies:
		return fmt.Sprintf("%s has %d copies in %s, exceeding limit of %d", e.CardName, e.Count, e.Section, e.Limit)
	case CodeDomainMismatch:
		return fmt.Sprintf("%s has domains %s which don't match legend domains %s",
			e.CardName, strings.Join(e.CardDomains, ", "), strings.Join(e.LegendDomains, ", "))
	case CodeTooManySignatures:
		return fmt.Sprintf("Deck has %d Signature cards, exceeding limit of %d", e.Count, e.Limit)
	case CodeRuneDeckWrongSize:
		return fmt.Sprintf("Rune deck has %d runes, but must have exactly %d", e.Count, e.Limit)
	case CodeRuneDomainMismatch:
		return fmt.Sprintf("Rune %s has domains %s which don't match legend domains %s",
			e.CardName, strings.Join(e.CardDomains, ", "), strings.Join(e.LegendDomains, ", "))
	case CodeSideboardTooLarge:
		return fmt.Sprintf("Sideboard has %d cards, exceeding limit of %d", e.Count, e.Limit)
	default:
		return string(e.Code)
	}
}

// Error implements the error interface so a finding can be surfaced directly.
func (e ValidationError) Error() string {
	return e.Message()
}

// ValidationWarning is a non-blocking finding.
type ValidationWarning struct {
	Code  WarningCode `json:"code"`
	Count int         `json:"count"`
}

// ID returns a stable identifier for the warning.
func (w ValidationWarning) ID() string {
	return string(w.Code)
}

// Message renders the warning for display.
func (w ValidationWarning) Message() string {
	switch w.Code {
	case CodeMultipleBattlefields:
		return fmt.Sprintf("Deck has %d battlefields. You'll choose 1 at game start.", w.Count)
	case CodeSideboardNotEmpty:
		return fmt.Sprintf("Sideboard has %d cards (informational, not enforced)", w.Count)
	default:
		return string(w.Code)
	}
}

// ruleText returns the rule citation for an error code under the given rules.
func ruleText(code ErrorCode, rules Rules) string {
	switch code {
	case CodeMainDeckTooSmall:
		return fmt.Sprintf("Main deck must have at least %d cards", rules.MainMinimum)
	case CodeTooManyCopies:
		if rules.StrictCopyRule {
			return fmt.Sprintf("Maximum %d copies of any card across Main and Sideboard", rules.CopyLimit)
		}
		return fmt.Sprintf("Maximum %d copies of any card per section", rules.CopyLimit)
	case CodeDomainMismatch:
		return "All cards must match legend's domain identity"
	case CodeTooManySignatures:
		return fmt.Sprintf("Maximum %d Signature cards matching legend's champion tag", rules.SignatureCap)
	case CodeRuneDeckWrongSize:
		return fmt.Sprintf("Rune deck must have exactly %d runes", rules.RuneDeckSize)
	case CodeRuneDomainMismatch:
		return "All runes must match legend's domain identity"
	case CodeSideboardTooLarge:
		if rules.SideboardMax != nil {
			return fmt.Sprintf("Sideboard may have at most %d cards", *rules.SideboardMax)
		}
		return "Sideboard size is limited"
	default:
		return ""
	}
}
