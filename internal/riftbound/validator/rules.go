package validator

import "fmt"

// Rules holds the tunable deck construction constants.
// The zero value is not useful; start from DefaultRules.
type Rules struct {
	// MainMinimum is the minimum number of cards in the main deck.
	MainMinimum int `json:"mainMinimum"`

	// CopyLimit is the maximum number of copies of a card name per section.
	CopyLimit int `json:"copyLimit"`

	// StrictCopyRule enforces CopyLimit across Main and Sideboard combined
	// instead of per section.
	StrictCopyRule bool `json:"strictCopyRule"`

	// SignatureCap is the maximum number of signature cards matching the
	// legend's champion tag.
	SignatureCap int `json:"signatureCap"`

	// SignatureIncludesSideboard folds sideboard signature cards into the cap.
	SignatureIncludesSideboard bool `json:"signatureIncludesSideboard"`

	// RuneDeckSize is the exact number of runes required.
	RuneDeckSize int `json:"runeDeckSize"`

	// SideboardMax caps the sideboard size. Nil means unconstrained.
	SideboardMax *int `json:"sideboardMax,omitempty"`
}

// DefaultRules returns the standard construction rules.
func DefaultRules() Rules {
	return Rules{
		MainMinimum:                40,
		CopyLimit:                  3,
		StrictCopyRule:             false,
		SignatureCap:               3,
		SignatureIncludesSideboard: false,
		RuneDeckSize:               12,
		SideboardMax:               nil,
	}
}

// Validate checks that the rule values are usable.
func (r Rules) Validate() error {
	if r.MainMinimum < 0 {
		return fmt.Errorf("main minimum must be non-negative, got %d", r.MainMinimum)
	}
	if r.CopyLimit < 1 {
		return fmt.Errorf("copy limit must be at least 1, got %d", r.CopyLimit)
	}
	if r.SignatureCap < 0 {
		return fmt.Errorf("signature cap must be non-negative, got %d", r.SignatureCap)
	}
	if r.RuneDeckSize < 0 {
		return fmt.Errorf("rune deck size must be non-negative, got %d", r.RuneDeckSize)
	}
	if r.SideboardMax != nil && *r.SideboardMax < 0 {
		return fmt.Errorf("sideboard max must be non-negative, got %d", *r.SideboardMax)
	}
	return nil
}
