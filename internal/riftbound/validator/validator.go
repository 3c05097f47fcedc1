// Package validator applies Riftbound deck construction rules to a deck's
// card lists and reports structured errors and warnings.
//
// A Validator holds no mutable state and is safe for concurrent use.
package validator

import (
	"sort"

	"github.com/ramonehamilton/Riftbound-Companion/internal/riftbound/aggregate"
	"github.com/ramonehamilton/Riftbound-Companion/internal/storage/models"
)

// combinedSectionLabel names the pooled Main and Sideboard group in strict mode.
const combinedSectionLabel = "Main+Sideboard"

// Result is the outcome of validating a deck. An illegal deck is a normal
// result, not a failure.
type Result struct {
	IsValid  bool                `json:"isValid"`
	Errors   []ValidationError   `json:"errors"`
	Warnings []ValidationWarning `json:"warnings"`
}

// HasError reports whether the result contains an error with the given code.
func (r *Result) HasError(code ErrorCode) bool {
	for _, e := range r.Errors {
		if e.Code == code {
			return true
		}
	}
	return false
}

// Validator checks decks against a fixed set of rules.
type Validator struct {
	rules Rules
}

// New creates a validator for the given rules.
func New(rules Rules) *Validator {
	return &Validator{rules: rules}
}

// Rules returns the rules this validator applies.
func (v *Validator) Rules() Rules {
	return v.rules
}

// Validate runs every construction rule against the given card lists. All
// rules are evaluated; one violation never hides another. Inputs are not
// modified. DeckCards with a nil Card are ignored.
func (v *Validator) Validate(main, side, runes []models.DeckCard, legendChampionTag string, legendDomains []string) *Result {
	legend := toSet(legendDomains)
	result := &Result{
		Errors:   []ValidationError{},
		Warnings: []ValidationWarning{},
	}

	if e, ok := v.checkMainSize(main); ok {
		result.Errors = append(result.Errors, e)
	}
	result.Errors = append(result.Errors, v.checkCopyLimits(main, side, runes)...)
	result.Errors = append(result.Errors, v.checkDomains(main, side, legend, legendDomains)...)
	if e, ok := v.checkSignatures(main, side, legendChampionTag); ok {
		result.Errors = append(result.Errors, e)
	}
	if e, ok := v.checkRuneSize(runes); ok {
		result.Errors = append(result.Errors, e)
	}
	result.Errors = append(result.Errors, v.checkRuneDomains(runes, legend, legendDomains)...)
	if e, ok := v.checkSideboardSize(side); ok {
		result.Errors = append(result.Errors, e)
	}

	result.Warnings = v.warnings(main, side)
	result.IsValid = len(result.Errors) == 0
	return result
}

func (v *Validator) checkMainSize(main []models.DeckCard) (ValidationError, bool) {
	total := aggregate.CardQuantity(main)
	if total >= v.rules.MainMinimum {
		return ValidationError{}, false
	}
	return ValidationError{
		Code:  CodeMainDeckTooSmall,
		Count: total,
		Limit: v.rules.MainMinimum,
		Rule:  ruleText(CodeMainDeckTooSmall, v.rules),
	}, true
}

func (v *Validator) checkCopyLimits(main, side, runes []models.DeckCard) []ValidationError {
	var errs []ValidationError
	if v.rules.StrictCopyRule {
		pooled := make([]models.DeckCard, 0, len(main)+len(side))
		pooled = append(pooled, main...)
		pooled = append(pooled, side...)
		errs = append(errs, v.copyLimitErrors(pooled, combinedSectionLabel)...)
	} else {
		errs = append(errs, v.copyLimitErrors(main, models.SectionMain.DisplayName())...)
		errs = append(errs, v.copyLimitErrors(side, models.SectionSide.DisplayName())...)
	}
	errs = append(errs, v.copyLimitErrors(runes, models.SectionRune.DisplayName())...)
	return errs
}

// copyLimitErrors groups cards by name, so print variants share one limit.
func (v *Validator) copyLimitErrors(cards []models.DeckCard, label string) []ValidationError {
	byName := make(map[string]int)
	for _, dc := range cards {
		if dc.Card == nil {
			continue
		}
		byName[dc.Card.Name] += dc.Quantity
	}

	names := make([]string, 0, len(byName))
	for name, count := range byName {
		if count > v.rules.CopyLimit {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	errs := make([]ValidationError, 0, len(names))
	for _, name := range names {
		errs = append(errs, ValidationError{
			Code:     CodeTooManyCopies,
			CardName: name,
			Section:  label,
			Count:    byName[name],
			Limit:    v.rules.CopyLimit,
			Rule:     ruleText(CodeTooManyCopies, v.rules),
		})
	}
	return errs
}

func (v *Validator) checkDomains(main, side []models.DeckCard, legend map[string]struct{}, legendDomains []string) []ValidationError {
	var errs []ValidationError
	for _, list := range [][]models.DeckCard{main, side} {
		for _, dc := range list {
			if dc.Card == nil || dc.Card.IsRune {
				continue
			}
			if isSubset(dc.Card.Domains, legend) {
				continue
			}
			errs = append(errs, ValidationError{
				Code:          CodeDomainMismatch,
				CardName:      dc.Card.Name,
				CardDomains:   copyStrings(dc.Card.Domains),
				LegendDomains: copyStrings(legendDomains),
				Rule:          ruleText(CodeDomainMismatch, v.rules),
			})
		}
	}
	return errs
}

// checkSignatures counts only Main unless SignatureIncludesSideboard is set.
// Sideboard signatures are otherwise silent.
func (v *Validator) checkSignatures(main, side []models.DeckCard, championTag string) (ValidationError, bool) {
	count := aggregate.SignatureCount(main, championTag)
	if v.rules.SignatureIncludesSideboard {
		count += aggregate.SignatureCount(side, championTag)
	}
	if count <= v.rules.SignatureCap {
		return ValidationError{}, false
	}
	return ValidationError{
		Code:  CodeTooManySignatures,
		Count: count,
		Limit: v.rules.SignatureCap,
		Rule:  ruleText(CodeTooManySignatures, v.rules),
	}, true
}

func (v *Validator) checkRuneSize(runes []models.DeckCard) (ValidationError, bool) {
	total := aggregate.CardQuantity(runes)
	if total == v.rules.RuneDeckSize {
		return ValidationError{}, false
	}
	return ValidationError{
		Code:  CodeRuneDeckWrongSize,
		Count: total,
		Limit: v.rules.RuneDeckSize,
		Rule:  ruleText(CodeRuneDeckWrongSize, v.rules),
	}, true
}

// checkRuneDomains skips entries in the rune section that are not rune cards.
func (v *Validator) checkRuneDomains(runes []models.DeckCard, legend map[string]struct{}, legendDomains []string) []ValidationError {
	var errs []ValidationError
	for _, dc := range runes {
		if dc.Card == nil || !dc.Card.IsRune {
			continue
		}
		if isSubset(dc.Card.Domains, legend) {
			continue
		}
		errs = append(errs, ValidationError{
			Code:          CodeRuneDomainMismatch,
			CardName:      dc.Card.Name,
			CardDomains:   copyStrings(dc.Card.Domains),
			LegendDomains: copyStrings(legendDomains),
			Rule:          ruleText(CodeRuneDomainMismatch, v.rules),
		})
	}
	return errs
}

func (v *Validator) checkSideboardSize(side []models.DeckCard) (ValidationError, bool) {
	if v.rules.SideboardMax == nil {
		return ValidationError{}, false
	}
	total := aggregate.CardQuantity(side)
	if total <= *v.rules.SideboardMax {
		return ValidationError{}, false
	}
	return ValidationError{
		Code:  CodeSideboardTooLarge,
		Count: total,
		Limit: *v.rules.SideboardMax,
		Rule:  ruleText(CodeSideboardTooLarge, v.rules),
	}, true
}

func (v *Validator) warnings(main, side []models.DeckCard) []ValidationWarning {
	warnings := []ValidationWarning{}

	battlefields := 0
	for _, dc := range main {
		if dc.Card != nil && dc.Card.IsBattlefield {
			battlefields += dc.Quantity
		}
	}
	if battlefields > 1 {
		warnings = append(warnings, ValidationWarning{Code: CodeMultipleBattlefields, Count: battlefields})
	}

	if sideTotal := aggregate.CardQuantity(side); sideTotal > 0 {
		warnings = append(warnings, ValidationWarning{Code: CodeSideboardNotEmpty, Count: sideTotal})
	}
	return warnings
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// isSubset reports whether every domain is in the legend set. An empty
// domain list is always a subset.
func isSubset(domains []string, legend map[string]struct{}) bool {
	for _, d := range domains {
		if _, ok := legend[d]; !ok {
			return false
		}
	}
	return true
}

func copyStrings(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}
