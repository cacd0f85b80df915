package message

// Role distinguishes the two kinds of addressable endpoint on the fabric:
// a node, or the shared clause store.
type Role byte

const (
	RoleNode Role = iota
	RoleClauseTable
)

// Addr is a flat, copyable reference to either a node or the clause store.
// Per design note §9, parent/child references are always node-id indices
// into a flat array, never owning back-pointers.
type Addr struct {
	Role Role
	Node int // meaningful only when Role == RoleNode
}

func NodeAddr(id int) Addr  { return Addr{Role: RoleNode, Node: id} }
func ClauseTableAddr() Addr { return Addr{Role: RoleClauseTable} }

func (a Addr) String() string {
	if a.Role == RoleClauseTable {
		return "clause-table"
	}
	return "node#" + itoa(a.Node)
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}

// Kind tags the payload carried by a Message (spec §4.B).
type Kind byte

const (
	// FORK hands a sibling branch off to a neighbor node.
	FORK Kind = iota
	// SUBST_MASK is one clause-slot advance of a substitution query reply.
	SUBST_MASK
	// RESET_MASK is one clause-slot advance of a backtrack reset reply.
	RESET_MASK
	// SUBST_QUERY opens a substitution query on the clause store.
	SUBST_QUERY
	// RESET_QUERY opens a reset query on the clause store.
	RESET_QUERY
	// UNSAT_UP reports UNSAT to the parent.
	UNSAT_UP
	// SAT_UP reports SAT (with a witness) to the parent, relayed to the root.
	SAT_UP
	// VAR_NOT_FOUND signals end of stream: the queried variable does not
	// exist in the formula (spec §4.A).
	VAR_NOT_FOUND
)

func (k Kind) String() string {
	switch k {
	case FORK:
		return "FORK"
	case SUBST_MASK:
		return "SUBST_MASK"
	case RESET_MASK:
		return "RESET_MASK"
	case SUBST_QUERY:
		return "SUBST_QUERY"
	case RESET_QUERY:
		return "RESET_QUERY"
	case UNSAT_UP:
		return "UNSAT_UP"
	case SAT_UP:
		return "SAT_UP"
	case VAR_NOT_FOUND:
		return "VAR_NOT_FOUND"
	default:
		panic("invalid message kind")
	}
}

// TermState is the per-clause, per-literal-slot state held in a node's
// assignment buffer (spec §3).
type TermState byte

const (
	Symbolic TermState = iota
	Falsified
	Satisfying
)

// TermUpdate is a single clause-slot update, as streamed by the clause
// store in reply to either a substitution or a reset query (spec §4.A).
// The same four-valued type covers both: a substitution reply only ever
// produces Unchanged/Matches/Opposes, a reset reply only ever produces
// Unchanged/Reset.
type TermUpdate byte

const (
	Unchanged TermUpdate = iota
	Matches              // literal agrees with the new assignment: term becomes Satisfying
	Opposes               // literal disagrees: term becomes Falsified
	Reset                 // revert the term to Symbolic
)

// Mask is one clause's worth of TermUpdate, one entry per literal slot.
type Mask []TermUpdate

// AssignmentBuffer is a per-clause, per-slot snapshot of term states —
// the payload carried by FORK, and the working memory of a Node.
type AssignmentBuffer [][]TermState

// CloneBuffer deep-copies a buffer so that forking a branch never lets the
// parent and child alias the same backing storage (spec §3, Ownership).
func CloneBuffer(buf AssignmentBuffer) AssignmentBuffer {
	out := make(AssignmentBuffer, len(buf))
	for i, clause := range buf {
		out[i] = append([]TermState(nil), clause...)
	}
	return out
}

// Message is a single, owned wire record. Ownership transfers to the
// recipient on delivery (spec §3, Ownership).
type Message struct {
	From Addr
	To   Addr
	Kind Kind

	// FORK payload.
	Buffer AssignmentBuffer
	Depth  int

	// SUBST_QUERY / RESET_QUERY payload. QueryID is echoed back on every
	// SUBST_MASK/RESET_MASK/VAR_NOT_FOUND reply so the requester can tell a
	// stale reply (from a query it has since abandoned) from a live one.
	Var      int
	Polarity bool // assignment being queried (true/false)
	Reset    bool // RESET_QUERY marker (RESET_MASK replies are told apart by Kind)
	QueryID  int

	// SUBST_MASK / RESET_MASK payload: one clause's worth of updates.
	ClauseIndex int
	Update      Mask

	// SAT_UP payload.
	Witness []bool
}
