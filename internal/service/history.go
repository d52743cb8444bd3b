package service

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/unicode/norm"

	"github.com/jask/bahaterm/internal/database/repository"
)

// suggestPool is how many recent boards are considered when ranking.
const suggestPool = 200

// HistoryService records browsing history and ranks it for the search
// screen.
type HistoryService struct {
	Repo  *repository.HistoryRepo
	Limit int
}

func (s *HistoryService) limit() int {
	if s.Limit <= 0 {
		return 10
	}
	return s.Limit
}

func (s *HistoryService) VisitBoard(ctx context.Context, boardID, name string, page int) error {
	if boardID == "" {
		return nil
	}
	return s.Repo.RecordBoardVisit(ctx, boardID, name, page)
}

func (s *HistoryService) RecordSearch(ctx context.Context, query string, results int) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	return s.Repo.RecordSearch(ctx, query, results)
}

// Recent returns the most recently visited boards.
func (s *HistoryService) Recent(ctx context.Context) ([]repository.BoardVisit, error) {
	return s.Repo.RecentBoards(ctx, s.limit())
}

// RecentQueries returns the most recent searches.
func (s *HistoryService) RecentQueries(ctx context.Context) ([]repository.SearchQuery, error) {
	return s.Repo.RecentSearches(ctx, s.limit())
}

// Suggest ranks visited boards against input. Boards whose name or id
// contains input come first; the rest follow by edit distance. A blank input
// returns the most recent boards.
func (s *HistoryService) Suggest(ctx context.Context, input string) ([]repository.BoardVisit, error) {
	needle := fold(input)
	if needle == "" {
		return s.Recent(ctx)
	}
	visits, err := s.Repo.RecentBoards(ctx, suggestPool)
	if err != nil {
		return nil, err
	}

	type scored struct {
		visit repository.BoardVisit
		score int
	}
	ranked := make([]scored, 0, len(visits))
	for _, v := range visits {
		ranked = append(ranked, scored{visit: v, score: distance(needle, v)})
	}
	slices.SortStableFunc(ranked, func(a, b scored) int {
		return cmp.Compare(a.score, b.score)
	})

	out := make([]repository.BoardVisit, 0, s.limit())
	for _, r := range ranked {
		if len(out) == s.limit() {
			break
		}
		out = append(out, r.visit)
	}
	return out, nil
}

func distance(needle string, v repository.BoardVisit) int {
	name, id := fold(v.Name), fold(v.BoardID)
	if strings.Contains(name, needle) || strings.Contains(id, needle) {
		return 0
	}
	return 1 + min(
		levenshtein.ComputeDistance(needle, name),
		levenshtein.ComputeDistance(needle, id),
	)
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFKC.String(s)))
}
