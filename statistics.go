package dpll

import "github.com/sirupsen/logrus"

// Statistics holds solve counters. They are informational only.
type Statistics struct {
	Decisions    uint64
	Propagations uint64
	Conflicts    uint64
	Flips        uint64
	NumClauses   uint64
}

// Fields returns the counters as logrus fields.
func (st *Statistics) Fields() logrus.Fields {
	return logrus.Fields{
		"decisions":    st.Decisions,
		"propagations": st.Propagations,
		"conflicts":    st.Conflicts,
		"flips":        st.Flips,
		"clauses":      st.NumClauses,
	}
}
