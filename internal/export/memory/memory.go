// Package memory is an in-memory export sink used in tests and in
// deployments without a spreadsheet configured.
package memory

import (
	"context"
	"fmt"
	"sync"

	"claimdesk/internal/export"
)

type Sink struct {
	mu   sync.Mutex
	rows []export.Row
}

var _ export.RowAppender = (*Sink)(nil)

func New() *Sink {
	return &Sink{}
}

func (s *Sink) Append(_ context.Context, row export.Row) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, row)
	return fmt.Sprintf("row-%d", len(s.rows)), nil
}

// Rows returns a copy of everything appended so far.
func (s *Sink) Rows() []export.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]export.Row, len(s.rows))
	copy(out, s.rows)
	return out
}
