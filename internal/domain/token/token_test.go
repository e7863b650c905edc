package token_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/acmx/sheetboard/internal/adapters/grid"
	"github.com/acmx/sheetboard/internal/domain/token"
	. "github.com/smartystreets/goconvey/convey"
)

func TestIssuer_Issue(t *testing.T) {
	Convey("Given an issuer over an empty ledger", t, func() {
		ctx := context.Background()
		ledger := grid.NewMemGrid()
		issuer := token.New(ledger, token.WithSalt("s3cret"))

		Convey("When issuing a token for a team", func() {
			tok, err := issuer.Issue(ctx, "Flying Felines")

			Convey("Then it should return a non-empty token", func() {
				So(err, ShouldBeNil)
				So(tok, ShouldNotBeEmpty)
			})

			Convey("And the token should be deterministic for the name", func() {
				other := token.New(grid.NewMemGrid(), token.WithSalt("s3cret"))
				again, err := other.Issue(ctx, "Flying Felines")
				So(err, ShouldBeNil)
				So(again, ShouldEqual, tok)
			})

			Convey("And the ledger should resolve the token back to the team", func() {
				team, err := issuer.TeamFromToken(ctx, tok)
				So(err, ShouldBeNil)
				So(team, ShouldEqual, "Flying Felines")
			})
		})

		Convey("When issuing tokens for more teams than either word list holds", func() {
			big := token.New(grid.NewMemGrid(), token.WithMaxRetries(64))
			seen := make(map[string]struct{})
			for i := 0; i < 64; i++ {
				tok, err := big.Issue(ctx, fmt.Sprintf("Squad %c%c %d", 'A'+i%26, 'a'+i%17, i))
				So(err, ShouldBeNil)
				seen[tok] = struct{}{}
			}

			Convey("Then the adjective and noun picks must vary independently", func() {
				So(len(seen), ShouldEqual, 64)
			})
		})

		Convey("When issuing tokens for many distinct teams", func() {
			seen := make(map[string]string)
			for i := 0; i < 40; i++ {
				name := fmt.Sprintf("Team Number %c%c", 'A'+i%26, 'a'+i%13)
				tok, err := issuer.Issue(ctx, name+fmt.Sprint(i))
				So(err, ShouldBeNil)
				if prev, dup := seen[tok]; dup {
					t.Fatalf("token %q issued for both %q and %q", tok, prev, name)
				}
				seen[tok] = name
			}

			Convey("Then every token should be unique", func() {
				So(len(seen), ShouldEqual, 40)
			})
		})
	})
}

func TestIssuer_Collision(t *testing.T) {
	Convey("Given a ledger pre-seeded with a team's natural token", t, func() {
		ctx := context.Background()
		ledger := grid.NewMemGrid()
		issuer := token.New(ledger, token.WithSalt("pepper"))

		first, err := issuer.Issue(ctx, "Foxes")
		So(err, ShouldBeNil)

		Convey("When the same normalized name is issued again", func() {
			// "foxes" and "FOXES" normalize identically, forcing a
			// first-choice collision against the ledger.
			second, err := issuer.Issue(ctx, "FOXES")

			Convey("Then the salted retry should produce a distinct token", func() {
				So(err, ShouldBeNil)
				So(second, ShouldNotEqual, first)
			})
		})
	})
}

func TestIssuer_CollisionWithLetterlessSalt(t *testing.T) {
	Convey("Given issuers whose salts carry no letters", t, func() {
		ctx := context.Background()

		for _, salt := range []string{"", "12345"} {
			Convey(fmt.Sprintf("When two names normalize identically under salt %q", salt), func() {
				issuer := token.New(grid.NewMemGrid(), token.WithSalt(salt))

				first, err := issuer.Issue(ctx, "Foxes")
				So(err, ShouldBeNil)

				second, err := issuer.Issue(ctx, "FOXES")

				Convey("Then the retry should still produce a distinct token", func() {
					So(err, ShouldBeNil)
					So(second, ShouldNotEqual, first)
				})
			})
		}
	})
}

// saturatedLedger reports every candidate token as already taken.
type saturatedLedger struct {
	*grid.MemGrid
}

func (saturatedLedger) Find(context.Context, string) ([]grid.Pos, error) {
	return []grid.Pos{{Row: 1, Col: 2}}, nil
}

func TestIssuer_RetryExhausted(t *testing.T) {
	Convey("Given a ledger that already holds every token", t, func() {
		issuer := token.New(saturatedLedger{grid.NewMemGrid()}, token.WithMaxRetries(3))

		Convey("When no retry can find a free combination", func() {
			_, err := issuer.Issue(context.Background(), "foxes")

			Convey("Then it should fail with ErrRetryExhausted", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, token.ErrRetryExhausted), ShouldBeTrue)
			})
		})
	})
}

func TestIssuer_TeamFromToken_NotFound(t *testing.T) {
	Convey("Given an empty ledger", t, func() {
		issuer := token.New(grid.NewMemGrid())

		Convey("When resolving an unknown token", func() {
			_, err := issuer.TeamFromToken(context.Background(), "amberlynx")

			Convey("Then it should fail with ErrNotFound", func() {
				So(errors.Is(err, token.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}
