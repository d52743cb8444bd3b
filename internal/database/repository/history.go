package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/jask/bahaterm/internal/database"
)

// BoardVisit is a board the user has opened.
type BoardVisit struct {
	ID        string
	BoardID   string
	Name      string
	Visits    int
	LastPage  int
	VisitedAt time.Time
}

// SearchQuery is a board search the user has submitted.
type SearchQuery struct {
	ID         string
	Query      string
	Results    int
	SearchedAt time.Time
}

// HistoryRepo stores visited boards and submitted searches.
type HistoryRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewHistoryRepo(db *sql.DB) *HistoryRepo {
	return &HistoryRepo{db: db, now: database.Now}
}

// RecordBoardVisit bumps the visit count of boardID. An empty name keeps the
// stored one.
func (r *HistoryRepo) RecordBoardVisit(ctx context.Context, boardID, name string, page int) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO board_visits(id, board_id, name, visits, last_page, visited_at)
	VALUES (?, ?, ?, 1, ?, ?)
	ON CONFLICT(board_id) DO UPDATE SET
		name = CASE WHEN excluded.name <> '' THEN excluded.name ELSE board_visits.name END,
		visits = board_visits.visits + 1,
		last_page = excluded.last_page,
		visited_at = excluded.visited_at;
	`, uuid.NewString(), boardID, name, page, r.now())
	return err
}

// RecentBoards returns up to limit boards, most recently visited first.
func (r *HistoryRepo) RecentBoards(ctx context.Context, limit int) ([]BoardVisit, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, board_id, name, visits, last_page, visited_at
	FROM board_visits
	ORDER BY visited_at DESC, visits DESC
	LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []BoardVisit
	for rows.Next() {
		var v BoardVisit
		if err := rows.Scan(&v.ID, &v.BoardID, &v.Name, &v.Visits, &v.LastPage, &v.VisitedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// BoardVisitByID returns the stored visit for boardID, or nil.
func (r *HistoryRepo) BoardVisitByID(ctx context.Context, boardID string) (*BoardVisit, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT id, board_id, name, visits, last_page, visited_at
	FROM board_visits WHERE board_id = ?`, boardID)
	var v BoardVisit
	if err := row.Scan(&v.ID, &v.BoardID, &v.Name, &v.Visits, &v.LastPage, &v.VisitedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

// RecordSearch stores query with the number of boards it matched.
func (r *HistoryRepo) RecordSearch(ctx context.Context, query string, results int) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO search_queries(id, query, results, searched_at) VALUES (?, ?, ?, ?)
	ON CONFLICT(query) DO UPDATE SET results=excluded.results, searched_at=excluded.searched_at;
	`, uuid.NewString(), query, results, r.now())
	return err
}

// RecentSearches returns up to limit queries, newest first.
func (r *HistoryRepo) RecentSearches(ctx context.Context, limit int) ([]SearchQuery, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, query, results, searched_at
	FROM search_queries
	ORDER BY searched_at DESC
	LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SearchQuery
	for rows.Next() {
		var q SearchQuery
		if err := rows.Scan(&q.ID, &q.Query, &q.Results, &q.SearchedAt); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}
