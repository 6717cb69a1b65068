package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"milkround/internal/sheets"
)

// Store keeps exported notices in memory. Used when no spreadsheet is configured.
type Store struct {
	mu   sync.Mutex
	rows []sheets.NoticeRow
}

var (
	_ sheets.NoticeWriter = (*Store)(nil)
	_ sheets.NoticeLister = (*Store)(nil)
)

func New() *Store {
	return &Store{}
}

// UpsertNotice stores the row and returns a synthetic row reference.
func (s *Store) UpsertNotice(_ context.Context, row sheets.NoticeRow) (string, error) {
	if row.CustomerID == "" || row.Month == "" {
		return "", errors.New("notice row needs customer and month")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.rows {
		if r.CustomerID == row.CustomerID && r.Month == row.Month {
			s.rows[i] = row
			return fmt.Sprintf("mem:%d", i+1), nil
		}
	}
	s.rows = append(s.rows, row)
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// ListNotices returns the rows of month in insertion order.
func (s *Store) ListNotices(_ context.Context, month string) ([]sheets.NoticeRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []sheets.NoticeRow
	for _, r := range s.rows {
		if r.Month == month {
			out = append(out, r)
		}
	}
	return out, nil
}
