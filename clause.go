package dpll

import (
	"fmt"
	"strings"
)

// ClauseRef is a non-owning index into a ClauseDB. Trail reasons hold
// ClauseRefs, never clause pointers; the DB remains the sole owner of
// clause data.
type ClauseRef int32

const (
	// ClaRefUndef marks an assignment made as a decision.
	ClaRefUndef ClauseRef = -1
	// ClaRefFlip marks a flipped decision re-asserted during
	// backtracking.
	ClaRefFlip ClauseRef = -2
)

// Clause is a CNF clause. The literal slice is immutable after load;
// only the two watch slot indices move.
type Clause struct {
	lits   []Lit
	watch  [2]int
	visits uint64
}

// Size returns the number of literals in the clause.
func (c *Clause) Size() int {
	return len(c.lits)
}

// At returns the i-th literal.
func (c *Clause) At(i int) Lit {
	return c.lits[i]
}

// WatchedLits returns the two literals currently watched.
func (c *Clause) WatchedLits() (Lit, Lit) {
	return c.lits[c.watch[0]], c.lits[c.watch[1]]
}

// Visits returns how many times propagation inspected this clause.
func (c *Clause) Visits() uint64 {
	return c.visits
}

// findReplacementWatch scans the clause for a literal outside both
// watch slots that is not false under t. It returns the slot index or
// -1 when every candidate is false.
func (c *Clause) findReplacementWatch(t *Trail) int {
	for i, l := range c.lits {
		if i == c.watch[0] || i == c.watch[1] {
			continue
		}
		if t.ValueLit(l) != LitBoolFalse {
			return i
		}
	}
	return -1
}

// String implements the Stringer interface.
func (c *Clause) String() string {
	strs := make([]string, len(c.lits))
	for i, l := range c.lits {
		strs[i] = l.String()
	}
	return strings.Join(strs, " ")
}

// ClauseDB owns the formula's clauses for the lifetime of one solve.
type ClauseDB struct {
	clauses []Clause
}

// NewClauseDB returns an empty clause store.
func NewClauseDB() *ClauseDB {
	return &ClauseDB{}
}

// Alloc stores a new clause of at least two literals and returns its
// reference. The initial watch slots are the first two positions.
func (db *ClauseDB) Alloc(lits []Lit) ClauseRef {
	if len(lits) < 2 {
		panic(fmt.Sprintf("alloc of clause with %d literals", len(lits)))
	}
	ref := ClauseRef(len(db.clauses))
	stored := make([]Lit, len(lits))
	copy(stored, lits)
	db.clauses = append(db.clauses, Clause{lits: stored, watch: [2]int{0, 1}})
	return ref
}

// Clause resolves a reference. It panics on a sentinel or out-of-range
// reference, which indicates a bug in the caller.
func (db *ClauseDB) Clause(ref ClauseRef) *Clause {
	if ref < 0 || int(ref) >= len(db.clauses) {
		panic(fmt.Sprintf("clause reference %d is not allocated", ref))
	}
	return &db.clauses[ref]
}

// Len returns the number of stored clauses.
func (db *ClauseDB) Len() int {
	return len(db.clauses)
}
