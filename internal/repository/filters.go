package repository

import (
	"fmt"
	"strconv"
	"strings"
)

// whereBuilder accumulates AND-ed conditions with positional placeholders.
// Every value travels as a bind parameter; nothing caller-supplied is ever
// spliced into the SQL text.
type whereBuilder struct {
	conds []string
	args  []any
}

// add appends a condition whose single ? is replaced with the next $n.
func (w *whereBuilder) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, strings.Replace(cond, "?", fmt.Sprintf("$%d", len(w.args)), 1))
}

// addIDList parses a comma-separated ID list into an IN clause. Blank and
// non-numeric tokens are dropped; an empty result adds no condition.
func (w *whereBuilder) addIDList(column, csv string) {
	ids := parseIDList(csv)
	if len(ids) == 0 {
		return
	}
	placeholders := make([]string, len(ids))
	for i, id := range ids {
		w.args = append(w.args, id)
		placeholders[i] = fmt.Sprintf("$%d", len(w.args))
	}
	w.conds = append(w.conds, fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ", ")))
}

// clause renders the WHERE clause, or an empty string if no condition was added.
func (w *whereBuilder) clause() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// and renders the accumulated conditions prefixed with AND, for queries that
// already carry a fixed WHERE.
func (w *whereBuilder) and() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " AND " + strings.Join(w.conds, " AND ")
}

// nextArg reserves the next placeholder for an extra bind value appended
// after the filter conditions, such as a LIMIT.
func (w *whereBuilder) nextArg(arg any) string {
	w.args = append(w.args, arg)
	return fmt.Sprintf("$%d", len(w.args))
}

// parseIDList splits "1,2,3" into ints, skipping anything unparsable.
func parseIDList(csv string) []int {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	var ids []int
	for _, tok := range strings.Split(csv, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(tok))
		if err != nil || id <= 0 {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
