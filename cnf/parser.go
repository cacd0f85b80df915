package cnf

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// readInt reads an int from r. 'b' is the last read byte: a space, a '-' or
// a digit. Leading spaces are skipped. Can return io.EOF.
func readInt(b *byte, r *bufio.Reader) (res int, err error) {
	for err == nil && isSpace(*b) {
		*b, err = r.ReadByte()
	}
	if err == io.EOF {
		return res, io.EOF
	}
	if err != nil {
		return res, fmt.Errorf("could not read digit: %v", err)
	}
	neg := 1
	if *b == '-' {
		neg = -1
		*b, err = r.ReadByte()
		if err != nil {
			return 0, fmt.Errorf("cannot read int: %v", err)
		}
	}
	for err == nil {
		if *b < '0' || *b > '9' {
			return 0, fmt.Errorf("cannot read int: %q is not a digit", *b)
		}
		res = 10*res + int(*b-'0')
		*b, err = r.ReadByte()
		if isSpace(*b) {
			break
		}
	}
	res *= neg
	return res, err
}

func parseHeader(r *bufio.Reader) (nbVars, nbClauses int, err error) {
	line, err := r.ReadString('\n')
	if err != nil && err != io.EOF {
		return 0, 0, fmt.Errorf("cannot read header: %v", err)
	}
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return 0, 0, fmt.Errorf("invalid syntax %q in header", line)
	}
	nbVars, convErr := strconv.Atoi(fields[1])
	if convErr != nil {
		return 0, 0, fmt.Errorf("nbvars not an int: %q", fields[1])
	}
	nbClauses, convErr = strconv.Atoi(fields[2])
	if convErr != nil {
		return 0, 0, fmt.Errorf("nbClauses not an int: %q", fields[2])
	}
	return nbVars, nbClauses, nil
}

// ParseDIMACS parses a DIMACS CNF stream into a Formula. Clauses wider than
// clauseWidth are rejected with an error (spec §6); clauses with fewer
// literals than clauseWidth are accepted as-is, their missing slots treated
// as ABSENT by the clause store.
func ParseDIMACS(f io.Reader, clauseWidth int) (*Formula, error) {
	r := bufio.NewReader(f)
	var (
		nbVars, nbClauses int
		clauses           []*Clause
	)
	b, err := r.ReadByte()
	for err == nil {
		switch {
		case b == 'c': // comment line
			for err == nil && b != '\n' {
				b, err = r.ReadByte()
			}
		case b == 'p': // header
			nbVars, nbClauses, err = parseHeader(r)
			if err != nil {
				return nil, fmt.Errorf("cannot parse CNF header: %v", err)
			}
			clauses = make([]*Clause, 0, nbClauses)
		default:
			lits := make([]Lit, 0, clauseWidth)
			for {
				val, rerr := readInt(&b, r)
				if rerr == io.EOF {
					if len(lits) != 0 {
						return nil, fmt.Errorf("unfinished clause while EOF found")
					}
					err = io.EOF
					break
				}
				if rerr != nil {
					return nil, fmt.Errorf("cannot parse clause: %v", rerr)
				}
				if val == 0 {
					if len(lits) > clauseWidth {
						return nil, fmt.Errorf("clause has %d literals, wider than configured width %d", len(lits), clauseWidth)
					}
					clauses = append(clauses, NewClause(lits))
					break
				}
				if val > nbVars || -val > nbVars {
					return nil, fmt.Errorf("invalid literal %d for problem with %d vars only", val, nbVars)
				}
				lits = append(lits, IntToLit(val))
			}
		}
		if err == io.EOF {
			break
		}
		b, err = r.ReadByte()
	}
	if err != nil && err != io.EOF {
		return nil, err
	}
	return NewFormula(nbVars, clauseWidth, clauses), nil
}
