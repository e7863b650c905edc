// Package token issues the opaque bearer tokens that bind a requester
// to a team. A token is two hash-picked words; the ledger sheet is the
// system of record for token <-> team bindings.
package token

import (
	"context"
	"fmt"
	"hash/fnv"
	"strconv"

	"github.com/acmx/sheetboard/internal/adapters/grid"
	"github.com/acmx/sheetboard/internal/domain/sanitize"
	"github.com/acmx/sheetboard/pkg/metrics"
)

const (
	defaultMaxRetries = 8

	// Ledger sheet columns: [team, token].
	ledgerTeamCol  = 1
	ledgerTokenCol = 2
)

// Issuer derives two-word tokens from team names and records them in
// the ledger. Tokens are never reused across teams and never expire.
type Issuer struct {
	ledger     grid.Grid
	salt       string
	maxRetries int
}

// New creates an Issuer backed by the ledger sheet.
func New(ledger grid.Grid, opts ...Option) *Issuer {
	i := &Issuer{
		ledger:     ledger,
		maxRetries: defaultMaxRetries,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Issue generates a unique token for teamName and appends the
// [team, token] pair to the ledger. The pair is written once at team
// creation and is immutable after that.
func (i *Issuer) Issue(ctx context.Context, teamName string) (string, error) {
	tok, err := i.generate(ctx, teamName, 0)
	if err != nil {
		return "", err
	}
	if err := i.ledger.AppendRow(ctx, []string{teamName, tok}); err != nil {
		return "", fmt.Errorf("record token: %w", err)
	}
	metrics.RecordTokenIssued()
	return tok, nil
}

// generate normalizes the name and picks one word from each list. The
// noun hash reads a suffixed copy of the seed: FNV-1a/32 and FNV-1a/64
// are congruent modulo 32 on the same input, which would lock the two
// picks together when both lists hold 32 words. On a ledger collision
// the salt and attempt depth are appended after normalization, so a
// retry changes the hash input no matter what the salt contains.
func (i *Issuer) generate(ctx context.Context, name string, depth int) (string, error) {
	if depth > i.maxRetries {
		return "", fmt.Errorf("%w: gave up after %d salted attempts", ErrRetryExhausted, depth)
	}
	seed := sanitize.Name(name)
	if depth > 0 {
		seed += "\x00" + i.salt + strconv.Itoa(depth)
	}
	adj := adjectives[hash32(seed)%uint32(len(adjectives))]
	noun := nouns[hash64(seed+"\x00noun")%uint64(len(nouns))]
	tok := adj + noun

	taken, err := i.taken(ctx, tok)
	if err != nil {
		return "", err
	}
	if taken {
		metrics.RecordTokenRetry()
		return i.generate(ctx, name, depth+1)
	}
	return tok, nil
}

// taken reports whether tok already appears in the ledger's token column.
func (i *Issuer) taken(ctx context.Context, tok string) (bool, error) {
	cells, err := i.ledger.Find(ctx, tok)
	if err != nil {
		return false, fmt.Errorf("search ledger: %w", err)
	}
	for _, p := range cells {
		if p.Col == ledgerTokenCol {
			return true, nil
		}
	}
	return false, nil
}

// TeamFromToken resolves a token to its owning team name.
// Returns ErrNotFound if no ledger row carries the token.
func (i *Issuer) TeamFromToken(ctx context.Context, tok string) (string, error) {
	cells, err := i.ledger.Find(ctx, tok)
	if err != nil {
		return "", fmt.Errorf("search ledger: %w", err)
	}
	for _, p := range cells {
		if p.Col != ledgerTokenCol {
			continue
		}
		team, err := i.ledger.ReadCell(ctx, p.Row, ledgerTeamCol)
		if err != nil {
			return "", fmt.Errorf("read ledger: %w", err)
		}
		return team, nil
	}
	return "", fmt.Errorf("%w: token %q", ErrNotFound, tok)
}

// hash32 and hash64 are the two independent deterministic hashes used
// for word selection.
func hash32(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}

func hash64(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}
