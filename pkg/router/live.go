package router

import "sync/atomic"

// Live holds the current Table and replaces it as a whole, so a
// concurrent Match never observes a partially rebuilt table.
type Live struct {
	table atomic.Pointer[Table]
}

// NewLive creates a holder serving t. t may be nil until the first Store.
func NewLive(t *Table) *Live {
	l := &Live{}
	if t != nil {
		l.table.Store(t)
	}
	return l
}

// Load returns the current table, or nil if none has been stored.
func (l *Live) Load() *Table {
	return l.table.Load()
}

// Store replaces the current table.
func (l *Live) Store(t *Table) {
	l.table.Store(t)
}

// Rebuild builds a new table from decls and swaps it in. On error the
// previous table keeps serving.
func (l *Live) Rebuild(decls []Declaration, opts ...BuildOption) (*Table, error) {
	t, err := Build(decls, opts...)
	if err != nil {
		return nil, err
	}
	l.table.Store(t)
	return t, nil
}

// Match matches against the current table. With no table stored every
// request is a miss.
func (l *Live) Match(components []string) MatchResult {
	t := l.table.Load()
	if t == nil {
		return MatchResult{}
	}
	return t.Match(components)
}
