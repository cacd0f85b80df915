package oracle

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/crillab/satswarm/cnf"
)

const (
	exitSat   = 10
	exitUnsat = 20
)

// Solver shells out to an external reference solver, following the
// exit-code convention spec.md §4.F requires: 10 for SAT, 20 for UNSAT.
type Solver struct {
	path string
	cfg  Config
	log  *logrus.Entry
}

// NewSolver resolves the reference solver binary: cfg.Path if set,
// otherwise satswarm-oracle on PATH (spec §10.3's zero-configuration
// default).
func NewSolver(cfg Config) (*Solver, error) {
	path := cfg.Path
	if path == "" {
		resolved, err := exec.LookPath("satswarm-oracle")
		if err != nil {
			return nil, fmt.Errorf("oracle: no --oracle_path given and satswarm-oracle not found on PATH: %w", err)
		}
		path = resolved
	}
	return &Solver{path: path, cfg: cfg, log: logrus.NewEntry(logrus.StandardLogger())}, nil
}

// Solve runs the reference solver on a DIMACS file and returns its
// verdict. A solver exit code other than 10/20 is reported as an error,
// never silently folded into Unknown.
func (s *Solver) Solve(ctx context.Context, cnfPath string) (cnf.Status, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout())
	defer cancel()

	cmd := exec.CommandContext(ctx, s.path, cnfPath)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	lines := verdictLines(stdout.String())
	code := cmd.ProcessState.ExitCode()

	switch code {
	case exitSat:
		if len(lines) != 1 || lines[0] != "SAT" {
			s.log.WithField("path", s.path).Warn("oracle exited SAT but stdout did not say so")
		}
		return cnf.Sat, nil
	case exitUnsat:
		if len(lines) != 1 || lines[0] != "UNSAT" {
			s.log.WithField("path", s.path).Warn("oracle exited UNSAT but stdout did not say so")
		}
		return cnf.Unsat, nil
	default:
		s.log.WithFields(logrus.Fields{"path": s.path, "exit_code": code}).Error("oracle subprocess failed")
		return cnf.Unknown, fmt.Errorf("oracle: %s exited %d: %v: %s",
			s.path, code, runErr, strings.TrimSpace(stderr.String()))
	}
}

// verdictLines extracts the SAT/UNSAT lines from a solver's stdout, for
// diagnostics alongside the authoritative exit code.
func verdictLines(stdout string) []string {
	return lo.Filter(strings.Split(stdout, "\n"), func(line string, _ int) bool {
		line = strings.TrimSpace(line)
		return line == "SAT" || line == "UNSAT"
	})
}
