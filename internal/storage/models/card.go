package models

// Card types seen in the catalog. The set is open; these are the common ones.
const (
	CardTypeChampion    = "Champion"
	CardTypeUnit        = "Unit"
	CardTypeSpell       = "Spell"
	CardTypeGear        = "Gear"
	CardTypeBattlefield = "Battlefield"
	CardTypeRune        = "Rune"
	CardTypeLegend      = "Legend"
)

// Card represents a single printing in the card catalog.
type Card struct {
	ID            string   `json:"id"`
	Number        string   `json:"number"`
	Name          string   `json:"name"`
	Type          string   `json:"type"`
	Domains       []string `json:"domains"`
	EnergyCost    *int     `json:"energyCost,omitempty"`    // Nullable
	PowerCostJSON *string  `json:"powerCostJSON,omitempty"` // Nullable: multi-mode costs
	Might         *int     `json:"might,omitempty"`         // Nullable
	Keywords      []string `json:"keywords"`
	Tags          []string `json:"tags"`
	RulesText     string   `json:"rulesText"`
	IsSignature   bool     `json:"isSignature"`
	ChampionTag   *string  `json:"championTag,omitempty"` // Set on signature cards
	IsBattlefield bool     `json:"isBattlefield"`
	IsRune        bool     `json:"isRune"`
	SetCode       string   `json:"setCode"`
	Rarity        *string  `json:"rarity,omitempty"`
}

// DisplayID returns the set code and collector number, e.g. "OGN-042".
func (c *Card) DisplayID() string {
	if c.SetCode == "" {
		return c.Number
	}
	if c.Number == "" {
		return c.SetCode
	}
	return c.SetCode + "-" + c.Number
}

// IsSignatureFor reports whether the card is a signature card of the given champion.
func (c *Card) IsSignatureFor(championTag string) bool {
	return c.IsSignature && c.ChampionTag != nil && *c.ChampionTag == championTag
}

// DeckCard pairs a card with the number of copies in one deck section.
// It is the working unit of the validator and the aggregation helpers.
type DeckCard struct {
	Card     *Card `json:"card"`
	Quantity int   `json:"quantity"`
}
