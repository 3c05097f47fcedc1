package facade

import (
	"context"
	"database/sql"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/ramonehamilton/Riftbound-Companion/internal/riftbound/aggregate"
	"github.com/ramonehamilton/Riftbound-Companion/internal/storage"
	"github.com/ramonehamilton/Riftbound-Companion/internal/storage/models"
	"github.com/ramonehamilton/Riftbound-Companion/internal/storage/repository"
)

const (
	defaultPublicLimit = 50
	maxPublicLimit     = 500
)

// PublicDeckFacade handles browsing and voting on shared decks.
type PublicDeckFacade struct {
	services *Services
}

// NewPublicDeckFacade creates a new PublicDeckFacade with the given services.
func NewPublicDeckFacade(services *Services) *PublicDeckFacade {
	return &PublicDeckFacade{services: services}
}

// PublicDeckQuery selects and orders public decks.
type PublicDeckQuery struct {
	Sort         aggregate.SortOption
	Limit        int    // 0 = default
	ViewerUserID string // Fills HasVoted when set
}

// VoteState is a deck's vote tally as seen by one voter.
type VoteState struct {
	DeckID    string `json:"deckId"`
	VoteCount int    `json:"voteCount"`
	HasVoted  bool   `json:"hasVoted"`
}

// List returns public decks with their vote counts, ranked by the chosen sort.
func (p *PublicDeckFacade) List(ctx context.Context, q PublicDeckQuery) ([]aggregate.RankedDeck, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultPublicLimit
	}
	if limit > maxPublicLimit {
		limit = maxPublicLimit
	}
	if q.Sort == "" {
		q.Sort = aggregate.SortTrending
	}

	conn := p.services.DB.Conn()
	var decks []*models.Deck
	err := storage.RetryOnBusy(func() error {
		var err error
		// Every public deck is ranked; the limit applies after sorting.
		decks, err = repository.NewDeckRepository(conn).Query(ctx, repository.DeckQuery{
			Partition: models.PartitionPublic,
		})
		return err
	})
	if err != nil {
		return nil, storeError("list public decks", err)
	}

	ids := make([]string, len(decks))
	for i, deck := range decks {
		ids[i] = deck.ID
	}

	var counts map[string]int
	var voted map[string]bool
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		counts, err = repository.NewVoteRepository(conn).CountByDecks(gctx, ids)
		return err
	})
	g.Go(func() error {
		var err error
		voted, err = repository.NewVoteRepository(conn).VotedDecks(gctx, q.ViewerUserID, ids)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, storeError("load votes", err)
	}

	entries := make([]aggregate.RankedDeck, len(decks))
	for i, deck := range decks {
		entries[i] = aggregate.RankedDeck{
			Deck:      deck,
			VoteCount: counts[deck.ID],
			HasVoted:  voted[deck.ID],
		}
	}

	ranked := aggregate.Rank(entries, q.Sort, p.services.now())
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// ToggleVote adds the user's vote to a public deck, or removes it when the
// user has already voted.
func (p *PublicDeckFacade) ToggleVote(ctx context.Context, userID, deckID string) (*VoteState, error) {
	if userID == "" {
		return nil, forbidden("Sign in to vote")
	}

	state := &VoteState{DeckID: deckID}
	err := storage.RetryOnBusy(func() error {
		return p.services.DB.WithTransaction(ctx, func(sqlTx *sql.Tx) error {
			deck, err := repository.NewDeckRepository(sqlTx).GetByID(ctx, deckID, models.PartitionPublic)
			if err != nil {
				return err
			}
			if deck == nil {
				return notFound("Public deck")
			}

			votes := repository.NewVoteRepository(sqlTx)
			removed, err := votes.Delete(ctx, models.VoteID(deckID, userID))
			if err != nil {
				return err
			}
			if !removed {
				if err := votes.Save(ctx, models.NewVote(deckID, userID)); err != nil {
					return err
				}
			}
			state.HasVoted = !removed

			counts, err := votes.CountByDecks(ctx, []string{deckID})
			if err != nil {
				return err
			}
			state.VoteCount = counts[deckID]
			return nil
		})
	})
	if err != nil {
		return nil, storeError("toggle vote", err)
	}

	log.Printf("User %s vote on deck %s: %v (%d total)", userID, deckID, state.HasVoted, state.VoteCount)
	return state, nil
}
