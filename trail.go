package dpll

// VarData stores the reason and decision level recorded when a
// variable was assigned. Reason is a diagnostic back-reference only;
// it never establishes ownership of the clause.
type VarData struct {
	Reason ClauseRef
	Level  int
}

// Trail is the ordered history of literal assignments together with
// the assignment table. The table is mutated only through Push and
// PopTo, so the two structures always agree outside those calls.
type Trail struct {
	assigns []LitBool
	data    []VarData
	lits    []Lit
	lim     []int
}

// NewTrail returns an empty trail for numVars variables.
func NewTrail(numVars int) *Trail {
	t := &Trail{
		assigns: make([]LitBool, numVars),
		data:    make([]VarData, numVars),
	}
	for v := range t.assigns {
		t.assigns[v] = LitBoolUndef
		t.data[v] = VarData{Reason: ClaRefUndef, Level: -1}
	}
	return t
}

// Value returns the current assignment of v.
func (t *Trail) Value(v Var) LitBool {
	return t.assigns[v]
}

// ValueLit returns the value of l under the current assignment.
func (t *Trail) ValueLit(l Lit) LitBool {
	b := t.assigns[l.Var()]
	if b == LitBoolUndef {
		return LitBoolUndef
	}
	if l.Sign() {
		return b.Flip()
	}
	return b
}

// Push makes l true at the current decision level and appends it to
// the trail. It fails with AlreadyAssigned when l's variable already
// has a value; that is a bug in the propagation/decision coupling,
// never a normal search outcome.
func (t *Trail) Push(l Lit, reason ClauseRef) error {
	v := l.Var()
	if t.assigns[v] != LitBoolUndef {
		return &AlreadyAssignedError{Var: v, Value: t.assigns[v]}
	}
	if l.Sign() {
		t.assigns[v] = LitBoolFalse
	} else {
		t.assigns[v] = LitBoolTrue
	}
	t.data[v] = VarData{Reason: reason, Level: t.Level()}
	t.lits = append(t.lits, l)
	return nil
}

// PopTo removes and unassigns every entry above level, leaving the
// trail at exactly that decision level. The removed literals are
// returned in pop order, most recent first.
func (t *Trail) PopTo(level int) []Lit {
	if t.Level() <= level {
		return nil
	}
	keep := t.lim[level]
	removed := make([]Lit, 0, len(t.lits)-keep)
	for i := len(t.lits) - 1; i >= keep; i-- {
		l := t.lits[i]
		t.assigns[l.Var()] = LitBoolUndef
		t.data[l.Var()] = VarData{Reason: ClaRefUndef, Level: -1}
		removed = append(removed, l)
	}
	t.lits = t.lits[:keep]
	t.lim = t.lim[:level]
	return removed
}

// NewDecisionLevel opens a decision level above the current one.
func (t *Trail) NewDecisionLevel() {
	t.lim = append(t.lim, len(t.lits))
}

// Level returns the current decision level. Level 0 holds literals
// forced before any decision.
func (t *Trail) Level() int {
	return len(t.lim)
}

// Len returns the number of assignments on the trail.
func (t *Trail) Len() int {
	return len(t.lits)
}

// At returns the i-th trail entry in assignment order.
func (t *Trail) At(i int) Lit {
	return t.lits[i]
}

// Reason returns the reason recorded for v's assignment.
func (t *Trail) Reason(v Var) ClauseRef {
	return t.data[v].Reason
}

// LevelOf returns the decision level v was assigned at, or -1 when v
// is unassigned.
func (t *Trail) LevelOf(v Var) int {
	return t.data[v].Level
}

// DecisionAt returns the decision literal that opened the given level.
// The level must be in 1..Level().
func (t *Trail) DecisionAt(level int) Lit {
	return t.lits[t.lim[level-1]]
}
