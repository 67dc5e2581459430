package dpll

import "fmt"

// MalformedInputError reports a structural violation of the DIMACS CNF
// format or a literal outside the declared variable range. It is
// surfaced during loading; a solve never starts on malformed input.
type MalformedInputError struct {
	Line int
	Msg  string
}

func (e *MalformedInputError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed input at line %d: %s", e.Line, e.Msg)
	}
	return fmt.Sprintf("malformed input: %s", e.Msg)
}

// AlreadyAssignedError reports an attempt to assign a variable that
// already has a value outside of backtracking. It indicates a bug in
// the driver/propagation coupling and is treated as fatal.
type AlreadyAssignedError struct {
	Var   Var
	Value LitBool
}

func (e *AlreadyAssignedError) Error() string {
	return fmt.Sprintf("variable %d is already assigned %s", int(e.Var)+1, e.Value)
}
