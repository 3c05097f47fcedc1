// Package models defines the records persisted by the companion: cards, decks,
// deck items, votes, user profiles and game sessions.
package models

import (
	"fmt"
	"strings"
)

// Partition identifies which record store partition a record lives in.
// Public records are visible to every user; private records are scoped to
// their owner.
type Partition string

const (
	PartitionPublic  Partition = "public"
	PartitionPrivate Partition = "private"
)

// ParsePartition converts a string into a Partition.
func ParsePartition(s string) (Partition, error) {
	switch Partition(s) {
	case PartitionPublic, PartitionPrivate:
		return Partition(s), nil
	default:
		return "", fmt.Errorf("unknown partition %q", s)
	}
}

// PartitionFor returns the partition a deck with the given visibility belongs to.
func PartitionFor(isPublic bool) Partition {
	if isPublic {
		return PartitionPublic
	}
	return PartitionPrivate
}

// Section is one of the three card groupings of a deck.
type Section string

const (
	SectionMain Section = "main"
	SectionSide Section = "side"
	SectionRune Section = "rune"
)

// AllSections lists the deck sections in display order.
var AllSections = []Section{SectionMain, SectionSide, SectionRune}

// ParseSection converts a string into a Section. Matching is case-insensitive.
func ParseSection(s string) (Section, error) {
	switch Section(strings.ToLower(strings.TrimSpace(s))) {
	case SectionMain:
		return SectionMain, nil
	case SectionSide:
		return SectionSide, nil
	case SectionRune:
		return SectionRune, nil
	default:
		return "", fmt.Errorf("unknown deck section %q", s)
	}
}

// DisplayName returns the human label for the section.
func (s Section) DisplayName() string {
	switch s {
	case SectionMain:
		return "Main"
	case SectionSide:
		return "Sideboard"
	case SectionRune:
		return "Runes"
	default:
		return string(s)
	}
}
