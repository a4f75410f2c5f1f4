// Package postgres implements the repository interfaces with database/sql
// and parameterized queries. It contains no business logic.
package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"handoc/internal/repository"
)

type scanner interface {
	Scan(dest ...any) error
}

// notFound maps sql.ErrNoRows to repository.ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	return err
}

// where accumulates AND-ed conditions with numbered placeholders.
type where struct {
	conds []string
	args  []any
}

// add appends cond, whose single %d is replaced by the next placeholder index.
func (w *where) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf(cond, len(w.args)))
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// page appends LIMIT/OFFSET placeholders and returns the clause and args.
func (w *where) page(pq repository.PageQuery) (string, []any) {
	n := len(w.args)
	args := append(append([]any{}, w.args...), pq.Limit, pq.Offset)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", n+1, n+2), args
}

// orderBy builds an ORDER BY clause from a whitelist of sortable columns.
// Unknown columns fall back to def; the direction defaults to DESC.
func orderBy(s repository.Sort, allowed map[string]string, def, tiebreak string) string {
	col, ok := allowed[s.By]
	if !ok {
		col = def
	}
	dir := "DESC"
	if strings.EqualFold(s.Order, "asc") {
		dir = "ASC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, %s %s", col, dir, tiebreak, dir)
}
