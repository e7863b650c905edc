package scorestore

import (
	"context"
	"fmt"
	"strings"

	"github.com/acmx/sheetboard/internal/adapters/activity"
	"github.com/acmx/sheetboard/internal/domain/sanitize"
)

// AddMember records a member in the first free roster slot for the
// team.
func (s *Store) AddMember(ctx context.Context, teamName, memberName string) error {
	if !sanitize.NameLength(memberName, s.minName, s.maxName) {
		return fmt.Errorf("%w: member name must be %d-%d characters", ErrValidation, s.minName, s.maxName)
	}
	row, err := s.rosterRow(ctx, teamName)
	if err != nil {
		return err
	}
	for col := 2; col <= s.maxMembers+1; col++ {
		v, err := s.roster.ReadCell(ctx, row, col)
		if err != nil {
			return fmt.Errorf("read roster slot: %w", err)
		}
		if v != "" {
			continue
		}
		if err := s.roster.WriteCell(ctx, row, col, memberName); err != nil {
			return fmt.Errorf("write roster slot: %w", err)
		}
		return s.activity.Append(ctx, activity.OpAddMember,
			activity.KV("team_name", teamName),
			activity.KV("member_name", memberName),
		)
	}
	return fmt.Errorf("%w: team %q already has %d members", ErrRosterFull, teamName, s.maxMembers)
}

// RemoveMember marks a member as departed by wrapping the name in
// tildes. The slot stays occupied so departure history is visible in
// the sheet.
func (s *Store) RemoveMember(ctx context.Context, teamName, memberName string) error {
	row, err := s.rosterRow(ctx, teamName)
	if err != nil {
		return err
	}
	for col := 2; col <= s.maxMembers+1; col++ {
		v, err := s.roster.ReadCell(ctx, row, col)
		if err != nil {
			return fmt.Errorf("read roster slot: %w", err)
		}
		if v != memberName {
			continue
		}
		if err := s.roster.WriteCell(ctx, row, col, "~"+memberName+"~"); err != nil {
			return fmt.Errorf("mark roster slot: %w", err)
		}
		return s.activity.Append(ctx, activity.OpRemoveMember,
			activity.KV("team_name", teamName),
			activity.KV("member_name", memberName),
		)
	}
	return fmt.Errorf("%w: could not find member %q on team %q", ErrNotFound, memberName, teamName)
}

// Members returns the active members of a team, skipping departed
// slots.
func (s *Store) Members(ctx context.Context, teamName string) ([]string, error) {
	row, err := s.rosterRow(ctx, teamName)
	if err != nil {
		return nil, err
	}
	line, err := s.roster.ReadRow(ctx, row)
	if err != nil {
		return nil, fmt.Errorf("read roster row: %w", err)
	}
	var members []string
	for i, v := range line {
		if i == 0 || v == "" {
			continue
		}
		if strings.HasPrefix(v, "~") && strings.HasSuffix(v, "~") {
			continue
		}
		members = append(members, v)
	}
	return members, nil
}

func (s *Store) rosterRow(ctx context.Context, teamName string) (int, error) {
	cells, err := s.roster.Find(ctx, teamName)
	if err != nil {
		return 0, fmt.Errorf("scan roster: %w", err)
	}
	for _, p := range cells {
		if p.Col == 1 {
			return p.Row, nil
		}
	}
	return 0, fmt.Errorf("%w: team %q has no roster entry", ErrNotFound, teamName)
}
