package db

import (
	"strconv"
	"strings"
)

// Where accumulates AND-ed SQL conditions with positional arguments.
// Each condition uses "?" for its single argument; placeholders are
// renumbered to $n in order of addition.
type Where struct {
	clauses []string
	args    []any
}

// Add appends cond with arg bound to its "?" placeholder.
func (w *Where) Add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.clauses = append(w.clauses, strings.Replace(cond, "?", "$"+strconv.Itoa(len(w.args)), 1))
}

// AddIf is Add guarded by ok, for optional filters.
func (w *Where) AddIf(ok bool, cond string, arg any) {
	if ok {
		w.Add(cond, arg)
	}
}

// SQL renders " WHERE a AND b", or "" with no conditions.
func (w *Where) SQL() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// Args returns the bound arguments in placeholder order.
func (w *Where) Args() []any {
	return w.args
}
