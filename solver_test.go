package dpll

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	gophersat "github.com/crillab/gophersat/solver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solveText(t *testing.T, text string) (*Solver, *Problem, LitBool) {
	t.Helper()
	p, err := ParseDIMACS(strings.NewReader(text))
	require.NoError(t, err)
	s, err := NewFromProblem(p, nil)
	require.NoError(t, err)
	return s, p, s.Solve(context.Background())
}

func modelSatisfies(p *Problem, model []int) bool {
	set := make(map[int]bool, len(model))
	for _, l := range model {
		set[l] = true
	}
clauseLoop:
	for _, clause := range p.Clauses {
		for _, l := range clause {
			if set[l] {
				continue clauseLoop
			}
		}
		return false
	}
	return true
}

func dimacsText(p *Problem) string {
	var b strings.Builder
	if err := WriteDIMACS(&b, p); err != nil {
		panic(err)
	}
	return b.String()
}

func TestSolveScenarios(t *testing.T) {
	for _, tt := range []struct {
		name string
		text string
		sat  bool
	}{
		{"empty formula", "p cnf 0 0\n", true},
		{"single var no clauses", "p cnf 1 0\n", true},
		{"unit positive", "p cnf 1 1\n1 0\n", true},
		{"unit negative", "p cnf 1 1\n-1 0\n", true},
		{"empty clause", "p cnf 0 1\n0\n", false},
		{"contradictory units", "p cnf 1 2\n1 0\n-1 0\n", false},
		{"two clauses one flip", "p cnf 2 2\n1 2 0\n-1 -2 0\n", true},
		{"simple propagation", "p cnf 3 3\n1 2 0\n-1 3 0\n-2 -3 0\n", true},
		{"tiny pigeonhole", "p cnf 2 3\n1 2 0\n-1 0\n-2 0\n", false},
		{"horn", "p cnf 3 3\n-1 -2 3 0\n1 0\n2 0\n", true},
		{"backtrack unsat", "p cnf 3 4\n1 2 0\n1 -2 0\n-1 3 0\n-3 0\n", false},
		{"tautologies", "p cnf 2 2\n1 -1 0\n2 -2 0\n", true},
		{"deep unsat", "p cnf 4 7\n1 2 0\n-1 3 0\n-2 -3 4 0\n-4 0\n-1 0\n2 0\n3 0\n", false},
		{"chain with backtrack", "p cnf 5 7\n1 2 3 0\n-1 -2 4 0\n-3 -4 5 0\n-5 0\n1 0\n-2 0\n-3 0\n", true},
		{"watcher movement", "p cnf 3 3\n1 2 3 0\n-1 0\n-2 0\n", true},
		{"skip satisfied clause", "p cnf 3 3\n1 2 3 0\n1 0\n-2 0\n", true},
		{"repeated watcher shift", "p cnf 5 5\n1 2 3 4 5 0\n-5 0\n-4 0\n-3 0\n-1 0\n", true},
		{"conflict at last literal", "p cnf 2 3\n1 2 0\n-1 0\n-2 0\n", false},
		{"long clause unit propagation", "p cnf 10 10\n1 2 3 4 5 6 7 8 9 10 0\n-1 0\n-2 0\n-3 0\n-4 0\n-5 0\n-6 0\n-7 0\n-8 0\n-9 0\n", true},
		{"real backtrack", "p cnf 3 3\n1 2 0\n-1 3 0\n-2 3 0\n", true},
		{"long chain rollback", "p cnf 5 6\n1 -2 0\n2 -3 0\n3 -4 0\n4 -5 0\n5 0\n-1 0\n", false},
		{"interleaved decisions", "p cnf 4 5\n1 2 0\n-2 3 0\n-3 4 0\n-4 0\n-1 0\n", false},
		{"trail leak after flip", "p cnf 3 3\n1 2 0\n-1 3 0\n-3 0\n", true},
		{"watcher stagnation", "p cnf 3 4\n1 2 3 0\n-1 0\n-3 0\n1 2 0\n", true},
		{"zombie watcher", "p cnf 3 4\n1 2 3 0\n-1 0\n-2 0\n-3 0\n", false},
	} {
		t.Run(tt.name, func(t *testing.T) {
			s, p, status := solveText(t, tt.text)
			if tt.sat {
				require.Equal(t, LitBoolTrue, status)
				model := s.Model()
				require.Len(t, model, p.NumVars)
				assert.True(t, modelSatisfies(p, model),
					"model %v does not satisfy:\n%s", model, tt.text)
			} else {
				require.Equal(t, LitBoolFalse, status)
				assert.Nil(t, s.Model())
			}
		})
	}
}

func TestUnitFormulaModel(t *testing.T) {
	s, _, status := solveText(t, "p cnf 1 1\n1 0\n")
	require.Equal(t, LitBoolTrue, status)
	assert.Equal(t, []int{1}, s.Model())
}

func TestEmptyClauseNeedsNoSearch(t *testing.T) {
	s, _, status := solveText(t, "p cnf 3 2\n1 2 0\n0\n")
	require.Equal(t, LitBoolFalse, status)
	assert.Zero(t, s.Statistics.Decisions)
	assert.Zero(t, s.Statistics.Conflicts)
}

func TestSolveIsDeterministic(t *testing.T) {
	text := "p cnf 5 7\n1 2 3 0\n-1 -2 4 0\n-3 -4 5 0\n-5 0\n1 0\n-2 0\n-3 0\n"
	s1, _, st1 := solveText(t, text)
	s2, _, st2 := solveText(t, text)
	require.Equal(t, st1, st2)
	assert.Equal(t, s1.Model(), s2.Model())
}

func TestLoadOrderDoesNotChangeVerdict(t *testing.T) {
	p, err := ParseDIMACS(strings.NewReader(
		"p cnf 5 7\n1 2 3 0\n-1 -2 4 0\n-3 -4 5 0\n-5 0\n1 0\n-2 0\n-3 0\n"))
	require.NoError(t, err)

	permuted := &Problem{NumVars: p.NumVars}
	for i := len(p.Clauses) - 1; i >= 0; i-- {
		clause := make([]int, 0, len(p.Clauses[i]))
		for j := len(p.Clauses[i]) - 1; j >= 0; j-- {
			clause = append(clause, p.Clauses[i][j])
		}
		permuted.Clauses = append(permuted.Clauses, clause)
	}

	s1, err := NewFromProblem(p, nil)
	require.NoError(t, err)
	s2, err := NewFromProblem(permuted, nil)
	require.NoError(t, err)

	st1 := s1.Solve(context.Background())
	st2 := s2.Solve(context.Background())
	require.Equal(t, st1, st2)
	require.Equal(t, LitBoolTrue, st1)
	assert.True(t, modelSatisfies(p, s1.Model()))
	assert.True(t, modelSatisfies(p, s2.Model()))
}

// pigeonhole encodes "pigeons into holes, one hole each": satisfiable
// iff pigeons <= holes.
func pigeonhole(pigeons, holes int) *Problem {
	v := func(p, h int) int { return (p-1)*holes + h }
	prob := &Problem{NumVars: pigeons * holes}
	for p := 1; p <= pigeons; p++ {
		clause := make([]int, 0, holes)
		for h := 1; h <= holes; h++ {
			clause = append(clause, v(p, h))
		}
		prob.Clauses = append(prob.Clauses, clause)
	}
	for h := 1; h <= holes; h++ {
		for p1 := 1; p1 <= pigeons; p1++ {
			for p2 := p1 + 1; p2 <= pigeons; p2++ {
				prob.Clauses = append(prob.Clauses, []int{-v(p1, h), -v(p2, h)})
			}
		}
	}
	return prob
}

func TestPigeonholeUnsat(t *testing.T) {
	for holes := 2; holes <= 4; holes++ {
		t.Run(fmt.Sprintf("holes=%d", holes), func(t *testing.T) {
			p := pigeonhole(holes+1, holes)
			s, err := NewFromProblem(p, nil)
			require.NoError(t, err)
			require.Equal(t, LitBoolFalse, s.Solve(context.Background()))
			assert.NotZero(t, s.Statistics.Conflicts)
		})
	}
}

func TestPigeonholeSat(t *testing.T) {
	p := pigeonhole(4, 4)
	s, err := NewFromProblem(p, nil)
	require.NoError(t, err)
	require.Equal(t, LitBoolTrue, s.Solve(context.Background()))
	assert.True(t, modelSatisfies(p, s.Model()))
}

func TestSolveCancellation(t *testing.T) {
	s, err := NewFromProblem(pigeonhole(8, 7), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, LitBoolUndef, s.Solve(ctx))
	assert.Nil(t, s.Model())
}

// checkWatchInvariant asserts that every clause except an active
// conflict has at least one watched literal that is not false, and
// that every clause sits in exactly two watch lists.
func checkWatchInvariant(t *testing.T, s *Solver, conflict ClauseRef) {
	t.Helper()
	counts := make(map[ClauseRef]int)
	for l := 0; l < 2*s.numVars; l++ {
		for _, w := range s.watches.occs[l] {
			counts[w.ref]++
			c := s.db.Clause(w.ref)
			first, second := c.WatchedLits()
			require.True(t, Lit(l) == first || Lit(l) == second,
				"clause %v listed under %v which it does not watch", c, Lit(l))
		}
	}
	for i := 0; i < s.db.Len(); i++ {
		ref := ClauseRef(i)
		require.Equal(t, 2, counts[ref], "clause %v is in %d watch lists", s.db.Clause(ref), counts[ref])
		if ref == conflict {
			continue
		}
		first, second := s.db.Clause(ref).WatchedLits()
		require.True(t,
			s.trail.ValueLit(first) != LitBoolFalse || s.trail.ValueLit(second) != LitBoolFalse,
			"both watches of clause %v are false", s.db.Clause(ref))
	}
}

func TestWatchInvariantAcrossConflictAndFlip(t *testing.T) {
	s := New(2, nil)
	require.NoError(t, s.AddClause([]int{-1, 2}))
	require.NoError(t, s.AddClause([]int{-1, -2}))
	require.Equal(t, ClaRefUndef, s.propagate())
	checkWatchInvariant(t, s, ClaRefUndef)

	s.trail.NewDecisionLevel()
	s.enqueue(NewLitFromInt(1), ClaRefUndef)
	confl := s.propagate()
	require.NotEqual(t, ClaRefUndef, confl)
	checkWatchInvariant(t, s, confl)

	// Resolve the conflict the way the driver does: backtrack below
	// the decision and assert its negation.
	d := s.trail.Level()
	p := s.trail.DecisionAt(d)
	for _, q := range s.trail.PopTo(d - 1) {
		s.insertVarOrder(q.Var())
	}
	s.qhead = s.trail.Len()
	s.enqueue(p.Flip(), ClaRefFlip)
	require.Equal(t, ClaRefUndef, s.propagate())
	checkWatchInvariant(t, s, ClaRefUndef)

	assert.Equal(t, LitBoolFalse, s.trail.Value(0))
	assert.Equal(t, ClaRefFlip, s.trail.Reason(0))
	assert.Equal(t, 0, s.trail.Level())
}

// The 2WL point: falsifying a literal no clause watches must not touch
// the clause at all.
func TestPropagationSkipsUnwatchedLiterals(t *testing.T) {
	p, err := ParseDIMACS(strings.NewReader("p cnf 5 1\n1 2 3 4 5 0\n"))
	require.NoError(t, err)
	s, err := NewFromProblem(p, nil)
	require.NoError(t, err)

	for _, l := range []int{-3, -4, -5} {
		s.enqueue(NewLitFromInt(l), ClaRefUndef)
		require.Equal(t, ClaRefUndef, s.propagate())
	}
	assert.Zero(t, s.db.Clause(0).Visits(), "clause visited for an unwatched literal")

	s.enqueue(NewLitFromInt(-1), ClaRefUndef)
	require.Equal(t, ClaRefUndef, s.propagate())
	assert.Equal(t, uint64(1), s.db.Clause(0).Visits())

	// With 3, 4, 5 false the clause became unit on 2.
	assert.Equal(t, LitBoolTrue, s.trail.Value(1))
}

func TestStatisticsCounters(t *testing.T) {
	s, _, status := solveText(t, "p cnf 3 3\n1 2 0\n-1 3 0\n-2 -3 0\n")
	require.Equal(t, LitBoolTrue, status)
	assert.NotZero(t, s.Statistics.Decisions)
	assert.NotZero(t, s.Statistics.Propagations)
	assert.Equal(t, uint64(3), s.Statistics.NumClauses)
}

func randomProblem(rng *rand.Rand, numVars, numClauses, width int) *Problem {
	p := &Problem{NumVars: numVars}
	vars := make([]int, numVars)
	for i := range vars {
		vars[i] = i + 1
	}
	for i := 0; i < numClauses; i++ {
		rng.Shuffle(len(vars), func(a, b int) { vars[a], vars[b] = vars[b], vars[a] })
		clause := make([]int, width)
		for j := 0; j < width; j++ {
			clause[j] = vars[j]
			if rng.Intn(2) == 1 {
				clause[j] = -clause[j]
			}
		}
		p.Clauses = append(p.Clauses, clause)
	}
	return p
}

func TestRandomizedAgainstGophersat(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 300; i++ {
		p := randomProblem(rng, 8, 30, 3)

		s, err := NewFromProblem(p, nil)
		require.NoError(t, err)
		status := s.Solve(context.Background())
		require.NotEqual(t, LitBoolUndef, status)

		want := gophersat.New(gophersat.ParseSlice(p.Clauses)).Solve() == gophersat.Sat
		require.Equal(t, want, status == LitBoolTrue,
			"verdict disagrees with gophersat on:\n%s", dimacsText(p))
		if status == LitBoolTrue {
			require.True(t, modelSatisfies(p, s.Model()),
				"invalid model %v for:\n%s", s.Model(), dimacsText(p))
		}
	}
}
