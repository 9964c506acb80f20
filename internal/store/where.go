package store

import (
	"strings"
	"time"
)

// Where accumulates AND-ed, parameterized filter clauses.
type Where struct {
	clauses []string
	args    []any
}

// Eq adds "col = v".
func (w *Where) Eq(col string, v any) *Where {
	w.clauses = append(w.clauses, col+" = ?")
	w.args = append(w.args, v)
	return w
}

// In adds "col IN (...)". An empty list matches nothing.
func (w *Where) In(col string, vals []string) *Where {
	if len(vals) == 0 {
		w.clauses = append(w.clauses, "1 = 0")
		return w
	}
	w.clauses = append(w.clauses, col+" IN (?"+strings.Repeat(", ?", len(vals)-1)+")")
	for _, v := range vals {
		w.args = append(w.args, v)
	}
	return w
}

// Since adds "col >= t".
func (w *Where) Since(col string, t time.Time) *Where {
	w.clauses = append(w.clauses, col+" >= ?")
	w.args = append(w.args, t.UTC())
	return w
}

// Until adds "col <= t".
func (w *Where) Until(col string, t time.Time) *Where {
	w.clauses = append(w.clauses, col+" <= ?")
	w.args = append(w.args, t.UTC())
	return w
}

// Search adds a case-insensitive substring match over cols, OR-ed together.
func (w *Where) Search(term string, cols ...string) *Where {
	term = strings.TrimSpace(term)
	if term == "" || len(cols) == 0 {
		return w
	}
	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = "LOWER(COALESCE(" + c + ", '')) LIKE ? ESCAPE '\\'"
		w.args = append(w.args, pattern)
	}
	w.clauses = append(w.clauses, "("+strings.Join(parts, " OR ")+")")
	return w
}

// SQL returns " WHERE ..." or an empty string.
func (w *Where) SQL() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// Args returns the bound parameters in clause order.
func (w *Where) Args() []any {
	return w.args
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
