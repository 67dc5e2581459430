package dpll

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Problem is a parsed DIMACS CNF formula. Clauses hold signed literals
// without the terminating zeros.
type Problem struct {
	NumVars int
	Clauses [][]int
}

// ParseDIMACS reads a formula in the DIMACS CNF format: a `p cnf V C`
// header, then clauses as signed integers each terminated by 0.
// Comment lines starting with 'c' and blank lines are ignored. The
// parser is strict: clauses before the header, duplicate headers,
// literals outside 1..V, a clause left unterminated at EOF, and a
// clause count that disagrees with the header all fail with
// MalformedInput.
func ParseDIMACS(r io.Reader) (*Problem, error) {
	in := bufio.NewScanner(r)
	in.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var (
		problem  *Problem
		declared int
		clause   []int
		haveLits bool
		lineNo   int
	)
	for in.Scan() {
		lineNo++
		line := strings.TrimSpace(in.Text())
		if line == "" || strings.HasPrefix(line, "c") {
			continue
		}
		// Some CNF archives attach a trailer after a lone %.
		if line == "%" {
			break
		}
		if strings.HasPrefix(line, "p") {
			if problem != nil {
				return nil, &MalformedInputError{Line: lineNo, Msg: "duplicate problem line"}
			}
			fields := strings.Fields(line)
			if len(fields) != 4 || fields[0] != "p" || fields[1] != "cnf" {
				return nil, &MalformedInputError{Line: lineNo, Msg: fmt.Sprintf("bad problem line %q", line)}
			}
			numVars, err := strconv.Atoi(fields[2])
			if err != nil || numVars < 0 {
				return nil, &MalformedInputError{Line: lineNo, Msg: fmt.Sprintf("bad variable count %q", fields[2])}
			}
			declared, err = strconv.Atoi(fields[3])
			if err != nil || declared < 0 {
				return nil, &MalformedInputError{Line: lineNo, Msg: fmt.Sprintf("bad clause count %q", fields[3])}
			}
			problem = &Problem{NumVars: numVars}
			continue
		}
		if problem == nil {
			return nil, &MalformedInputError{Line: lineNo, Msg: "clause before problem line"}
		}
		for _, field := range strings.Fields(line) {
			p, err := strconv.Atoi(field)
			if err != nil {
				return nil, &MalformedInputError{Line: lineNo, Msg: fmt.Sprintf("bad literal %q", field)}
			}
			if p == 0 {
				problem.Clauses = append(problem.Clauses, clause)
				clause = nil
				haveLits = false
				continue
			}
			if p > problem.NumVars || -p > problem.NumVars {
				return nil, &MalformedInputError{
					Line: lineNo,
					Msg:  fmt.Sprintf("literal %d exceeds declared %d variables", p, problem.NumVars),
				}
			}
			clause = append(clause, p)
			haveLits = true
		}
	}
	if err := in.Err(); err != nil {
		return nil, err
	}
	if problem == nil {
		return nil, &MalformedInputError{Msg: "missing problem line"}
	}
	if haveLits {
		return nil, &MalformedInputError{Line: lineNo, Msg: "clause not terminated by 0"}
	}
	if len(problem.Clauses) != declared {
		return nil, &MalformedInputError{
			Msg: fmt.Sprintf("header declares %d clauses, found %d", declared, len(problem.Clauses)),
		}
	}
	return problem, nil
}

// WriteDIMACS writes the problem back out in DIMACS CNF format.
func WriteDIMACS(w io.Writer, p *Problem) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "p cnf %d %d\n", p.NumVars, len(p.Clauses))
	for _, clause := range p.Clauses {
		for _, l := range clause {
			fmt.Fprintf(bw, "%d ", l)
		}
		fmt.Fprintln(bw, "0")
	}
	return bw.Flush()
}
