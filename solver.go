package dpll

import (
	"context"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/k0kubun/pp/v3"
	"github.com/sirupsen/logrus"
)

// Solver is a single-use solve session. All mutable search state —
// clause store, watch index, assignment trail, branching order — is
// owned exclusively by the session, so independent solves in one
// process need independent Solvers and nothing is shared or locked.
type Solver struct {
	db      *ClauseDB
	watches *Watches
	trail   *Trail
	order   *VarOrder
	qhead   int

	numVars int
	ok      bool
	model   []int

	log logrus.FieldLogger

	// Statistics counters for the current solve.
	Statistics *Statistics
}

// Options configures a Solver. The zero value is usable.
type Options struct {
	// Logger receives debug-level load and search diagnostics.
	Logger logrus.FieldLogger
}

// New returns a solver session for a formula over numVars variables.
func New(numVars int, opts *Options) *Solver {
	if numVars < 0 {
		numVars = 0
	}
	var log logrus.FieldLogger
	if opts != nil && opts.Logger != nil {
		log = opts.Logger
	} else {
		log = logrus.StandardLogger()
	}
	return &Solver{
		db:         NewClauseDB(),
		watches:    NewWatches(numVars),
		trail:      NewTrail(numVars),
		order:      NewVarOrder(numVars),
		numVars:    numVars,
		ok:         true,
		log:        log,
		Statistics: &Statistics{},
	}
}

// NewFromProblem builds a session from a parsed DIMACS problem.
func NewFromProblem(p *Problem, opts *Options) (*Solver, error) {
	s := New(p.NumVars, opts)
	for _, clause := range p.Clauses {
		if err := s.AddClause(clause); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// NumVars returns the number of variables declared for this session.
func (s *Solver) NumVars() int {
	return s.numVars
}

// NumClauses returns the number of stored clauses.
func (s *Solver) NumClauses() int {
	return s.db.Len()
}

// AddClause loads one clause given as signed DIMACS literals. It must
// be called before Solve, at decision level 0. Duplicate literals are
// dropped, tautological clauses are never stored, and literals already
// false at level 0 are elided; an empty clause makes the formula
// trivially unsatisfiable. A literal outside 1..NumVars fails with
// MalformedInput.
func (s *Solver) AddClause(ps []int) error {
	if s.trail.Level() != 0 {
		panic(fmt.Sprintf("AddClause at decision level %d", s.trail.Level()))
	}
	lits := make([]Lit, 0, len(ps))
	seen := mapset.NewSetWithSize[Lit](len(ps))
	for _, p := range ps {
		if p == 0 {
			return &MalformedInputError{Msg: "literal 0 inside a clause"}
		}
		if p > s.numVars || -p > s.numVars {
			return &MalformedInputError{
				Msg: fmt.Sprintf("literal %d references a variable beyond %d", p, s.numVars),
			}
		}
		l := NewLitFromInt(p)
		if seen.Contains(l.Flip()) {
			s.log.Debugf("clause %v is a tautology, dropped", ps)
			return nil
		}
		if seen.Contains(l) {
			continue
		}
		seen.Add(l)
		lits = append(lits, l)
	}
	if !s.ok {
		return nil
	}
	// Level-0 simplification: a true literal satisfies the clause, a
	// false literal can never satisfy it.
	idx := 0
	for _, l := range lits {
		switch s.trail.ValueLit(l) {
		case LitBoolTrue:
			s.log.Debugf("clause %v already satisfied at level 0", ps)
			return nil
		case LitBoolFalse:
			continue
		}
		lits[idx] = l
		idx++
	}
	lits = lits[:idx]

	switch len(lits) {
	case 0:
		s.ok = false
	case 1:
		s.enqueue(lits[0], ClaRefUndef)
		if confl := s.propagate(); confl != ClaRefUndef {
			s.ok = false
		}
	default:
		s.attachClause(s.db.Alloc(lits))
	}
	return nil
}

// attachClause registers the clause's two watch slots in the index.
func (s *Solver) attachClause(ref ClauseRef) {
	c := s.db.Clause(ref)
	first, second := c.WatchedLits()
	s.watches.Append(first, Watcher{ref: ref, blocker: second})
	s.watches.Append(second, Watcher{ref: ref, blocker: first})
	s.Statistics.NumClauses++
}

// enqueue pushes a forced or decided literal onto the trail. A push
// that fails means the watch bookkeeping or the driver is broken, so
// the session state is dumped and the error escalates.
func (s *Solver) enqueue(p Lit, from ClauseRef) {
	if err := s.trail.Push(p, from); err != nil {
		pp.Println(p, s.trail.data[p.Var()], s.trail.Level(), from)
		panic(err)
	}
}

// propagate derives every literal forced by the trail entries that
// have not been processed yet. It returns the conflicting clause, or
// ClaRefUndef when the worklist empties without conflict. On conflict
// the watch invariant holds for every clause except the reported one.
func (s *Solver) propagate() ClauseRef {
	confl := ClaRefUndef

	for s.qhead < s.trail.Len() {
		p := s.trail.At(s.qhead)
		s.qhead++
		s.Statistics.Propagations++

		n := p.Flip()
		ws := s.watches.Lookup(n)
		lastIdx := 0
		copiedIdx := 0
		for lastIdx < len(*ws) {
			w := (*ws)[lastIdx]
			lastIdx++

			// Try to avoid inspecting the clause.
			if s.trail.ValueLit(w.blocker) == LitBoolTrue {
				(*ws)[copiedIdx] = w
				copiedIdx++
				continue
			}

			c := s.db.Clause(w.ref)
			c.visits++

			// Make sure slot 1 holds the falsified literal.
			if c.lits[c.watch[0]] == n {
				c.watch[0], c.watch[1] = c.watch[1], c.watch[0]
			}
			if c.lits[c.watch[1]] != n {
				panic(fmt.Sprintf("clause %v does not watch %v in either slot", c, n))
			}

			other := c.lits[c.watch[0]]
			w = Watcher{ref: w.ref, blocker: other}
			if s.trail.ValueLit(other) == LitBoolTrue {
				(*ws)[copiedIdx] = w
				copiedIdx++
				continue
			}

			// Re-home the watch away from the falsified literal.
			if j := c.findReplacementWatch(s.trail); j >= 0 {
				c.watch[1] = j
				s.watches.Append(c.lits[j], w)
				continue
			}

			// No replacement: the clause is unit on the other watch,
			// or conflicting when that watch is false too.
			(*ws)[copiedIdx] = w
			copiedIdx++
			if s.trail.ValueLit(other) == LitBoolFalse {
				confl = w.ref
				s.qhead = s.trail.Len()
				for lastIdx < len(*ws) {
					(*ws)[copiedIdx] = (*ws)[lastIdx]
					copiedIdx++
					lastIdx++
				}
			} else {
				s.enqueue(other, w.ref)
			}
		}
		*ws = (*ws)[:copiedIdx]
	}

	return confl
}

// pickBranchLit pops unassigned variables off the order and returns
// the decision literal, positive polarity first. LitUndef means every
// variable is assigned.
func (s *Solver) pickBranchLit() Lit {
	for !s.order.Empty() {
		v := s.order.RemoveMin()
		if s.trail.Value(v) == LitBoolUndef {
			return NewLit(v, false)
		}
	}
	return LitUndef
}

func (s *Solver) insertVarOrder(v Var) {
	if !s.order.InHeap(v) {
		s.order.PushBack(v)
	}
}

// search runs the DPLL loop as an iterative state machine: propagate,
// then either decide on a fresh variable or resolve a conflict by
// flipping the most recent decision. Flipped decisions are re-asserted
// as implications one level down (reason ClaRefFlip), so the decision
// that opened the top level has never been flipped yet, and a conflict
// at level 0 proves unsatisfiability. The context is consulted only
// between propagation and the next decision; a cancelled search
// returns LitBoolUndef.
func (s *Solver) search(ctx context.Context) LitBool {
	for {
		if confl := s.propagate(); confl != ClaRefUndef {
			s.Statistics.Conflicts++
			if s.trail.Level() == 0 {
				return LitBoolFalse
			}
			d := s.trail.Level()
			p := s.trail.DecisionAt(d)
			if s.trail.Reason(p.Var()) != ClaRefUndef {
				panic(fmt.Sprintf("level %d was not opened by a decision", d))
			}
			s.log.Debugf("conflict at clause %v, flipping %v", s.db.Clause(confl), p)
			for _, q := range s.trail.PopTo(d - 1) {
				s.insertVarOrder(q.Var())
			}
			s.qhead = s.trail.Len()
			s.Statistics.Flips++
			s.enqueue(p.Flip(), ClaRefFlip)
		} else {
			select {
			case <-ctx.Done():
				return LitBoolUndef
			default:
			}
			p := s.pickBranchLit()
			if p == LitUndef {
				return LitBoolTrue
			}
			s.Statistics.Decisions++
			s.trail.NewDecisionLevel()
			s.enqueue(p, ClaRefUndef)
		}
	}
}

// Solve decides satisfiability. It returns LitBoolTrue with a model
// available through Model, LitBoolFalse when no assignment satisfies
// the formula, or LitBoolUndef when ctx was cancelled before the
// search finished.
func (s *Solver) Solve(ctx context.Context) LitBool {
	if !s.ok {
		return LitBoolFalse
	}
	status := s.search(ctx)
	switch status {
	case LitBoolTrue:
		s.model = make([]int, s.numVars)
		for v := 0; v < s.numVars; v++ {
			if s.trail.Value(Var(v)) == LitBoolFalse {
				s.model[v] = -(v + 1)
			} else {
				s.model[v] = v + 1
			}
		}
	case LitBoolFalse:
		s.ok = false
	}
	for _, q := range s.trail.PopTo(0) {
		s.insertVarOrder(q.Var())
	}
	s.qhead = s.trail.Len()
	s.log.WithFields(s.Statistics.Fields()).Debugf("search finished: %s", status)
	return status
}

// Model returns the satisfying assignment found by the last Solve as
// one signed integer per variable 1..N, or nil when no model exists.
func (s *Solver) Model() []int {
	return s.model
}
