package dpll

import "fmt"

// Var is a 0-based variable index. DIMACS variables 1..N map to Vars
// 0..N-1.
type Var int

const VarUndef Var = -1

// LitBool is a three-valued boolean used for assignments and solve
// verdicts.
type LitBool uint8

const (
	LitBoolTrue LitBool = iota
	LitBoolFalse
	LitBoolUndef
)

// Flip negates a LitBool. Undef stays Undef.
func (b LitBool) Flip() LitBool {
	switch b {
	case LitBoolTrue:
		return LitBoolFalse
	case LitBoolFalse:
		return LitBoolTrue
	}
	return LitBoolUndef
}

// String implements the Stringer interface.
func (b LitBool) String() string {
	switch b {
	case LitBoolTrue:
		return "true"
	case LitBoolFalse:
		return "false"
	}
	return "undef"
}

// Lit is a literal. The literal for variable v is encoded as 2v when
// positive and 2v+1 when negative, so a literal and its negation are
// adjacent and a literal indexes a watch list directly.
type Lit int

const LitUndef Lit = -1

// NewLit returns the literal for v. A negative literal is returned
// when neg is true.
func NewLit(v Var, neg bool) Lit {
	l := Lit(2 * v)
	if neg {
		l++
	}
	return l
}

// NewLitFromInt converts a signed DIMACS literal. The input must be
// nonzero.
func NewLitFromInt(i int) Lit {
	if i < 0 {
		return NewLit(Var(-i-1), true)
	}
	return NewLit(Var(i-1), false)
}

// Var returns the literal's variable.
func (l Lit) Var() Var {
	return Var(l >> 1)
}

// Sign returns true when the literal is negative.
func (l Lit) Sign() bool {
	return l&1 == 1
}

// Flip negates a literal. Flip is an involution.
func (l Lit) Flip() Lit {
	return l ^ 1
}

// Int returns the literal in signed DIMACS form.
func (l Lit) Int() int {
	if l.Sign() {
		return -int(l.Var()) - 1
	}
	return int(l.Var()) + 1
}

// String implements the Stringer interface.
func (l Lit) String() string {
	if l == LitUndef {
		return "undef"
	}
	return fmt.Sprintf("%d", l.Int())
}
