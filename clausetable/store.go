package clausetable

import (
	"github.com/crillab/satswarm/cnf"
	"github.com/crillab/satswarm/message"
)

// A stream is one requester's in-progress walk over the clause table,
// either a substitution query (advancing to SYMBOLIC->SATISFYING/FALSIFIED)
// or a reset query (advancing touched slots back to SYMBOLIC).
type stream struct {
	requester message.Addr
	queryID   int
	v         int
	polarity  bool // substitution target; unused for reset streams
	reset     bool
	next      int // next clause index to emit
	notFound  bool
}

// Store is the shared clause look-up service of spec §4.A: a single
// serial port onto the formula's clauses, round-robined fairly across
// every node with an outstanding query.
type Store struct {
	formula *cnf.Formula
	ring    []*stream // round-robin queue; front is serviced next
}

// NewStore returns a clause store over f. f is never mutated.
func NewStore(f *cnf.Formula) *Store {
	return &Store{formula: f}
}

// OpenSubstQuery enqueues a substitution query for (v, polarity) on behalf
// of requester. A requester may open a new query while an earlier stream of
// its own is still queued; that stream keeps emitting until it ends, and
// its replies carry the old queryID so the requester can discard them.
func (s *Store) OpenSubstQuery(requester message.Addr, queryID, v int, polarity bool) {
	s.enqueue(requester, queryID, v, polarity, false)
}

// OpenResetQuery enqueues a reset query for v on behalf of requester.
func (s *Store) OpenResetQuery(requester message.Addr, queryID, v int) {
	s.enqueue(requester, queryID, v, false, true)
}

// OpenFromMessage enqueues whatever query msg describes. Nodes emit
// SUBST_QUERY/RESET_QUERY the same way they emit any other message, so the
// driver (and tests driving a Node directly) can forward a node's outbox
// to the store without re-deriving the query shape by hand.
func (s *Store) OpenFromMessage(msg message.Message) {
	switch msg.Kind {
	case message.SUBST_QUERY:
		s.OpenSubstQuery(msg.From, msg.QueryID, msg.Var, msg.Polarity)
	case message.RESET_QUERY:
		s.OpenResetQuery(msg.From, msg.QueryID, msg.Var)
	default:
		panic("clausetable: OpenFromMessage given a non-query message")
	}
}

func (s *Store) enqueue(requester message.Addr, queryID, v int, polarity, reset bool) {
	st := &stream{requester: requester, queryID: queryID, v: v, polarity: polarity, reset: reset}
	if v < 0 || v >= s.formula.NbVars {
		st.notFound = true
	}
	s.ring = append(s.ring, st)
}

// Step advances the store's single serial port by one clause-mask, for
// whichever stream is currently at the front of the round-robin queue, and
// rotates that stream to the back unless it has just finished (spec §4.A,
// §5: one mask per cycle per stream, serialised and fairly interleaved).
// It returns the message produced this cycle, or nil if no stream is
// waiting.
func (s *Store) Step() *message.Message {
	if len(s.ring) == 0 {
		return nil
	}
	st := s.ring[0]
	s.ring = s.ring[1:]

	if st.notFound {
		return &message.Message{
			From:    message.ClauseTableAddr(),
			To:      st.requester,
			Kind:    message.VAR_NOT_FOUND,
			QueryID: st.queryID,
		}
	}

	idx := st.next
	clause := s.formula.Clauses[idx]
	mask := maskFor(clause, s.formula.ClauseWidth, st.v, st.polarity, st.reset)

	kind := message.SUBST_MASK
	if st.reset {
		kind = message.RESET_MASK
	}
	reply := &message.Message{
		From:        message.ClauseTableAddr(),
		To:          st.requester,
		Kind:        kind,
		ClauseIndex: idx,
		Update:      mask,
		QueryID:     st.queryID,
	}

	st.next++
	if st.next < len(s.formula.Clauses) {
		s.ring = append(s.ring, st)
	}
	return reply
}

// Waiting reports whether requester currently has a live stream on the
// store.
func (s *Store) Waiting(requester message.Addr) bool {
	for _, st := range s.ring {
		if st.requester == requester {
			return true
		}
	}
	return false
}

func maskFor(c *cnf.Clause, width int, v int, polarity, reset bool) message.Mask {
	mask := make(message.Mask, width)
	lits := c.Lits()
	for j := 0; j < width; j++ {
		if j >= len(lits) {
			continue // ABSENT: slot doesn't exist in this (narrower) clause
		}
		lit := lits[j]
		if int(lit.Var()) != v {
			continue
		}
		if reset {
			mask[j] = message.Reset
			continue
		}
		if lit.IsPositive() == polarity {
			mask[j] = message.Matches
		} else {
			mask[j] = message.Opposes
		}
	}
	return mask
}
