// Command satswarm simulates a mesh of DPLL nodes against a directory of
// DIMACS benchmarks and checks every verdict against an external reference
// solver.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/crillab/satswarm/cnf"
	"github.com/crillab/satswarm/mesh"
	"github.com/crillab/satswarm/oracle"
	"github.com/crillab/satswarm/sim"
)

func main() {
	var (
		numNodes      int
		topologyName  string
		testPath      string
		nodeBandwidth int
		numVars       int
		oraclePath    string
		oracleConfig  string
		cycleCap      int
		logLevel      string
		clauseWidth   int
		resultsCSV    string
		sweep         string
	)
	flag.IntVar(&numNodes, "num_nodes", 100, "total nodes")
	flag.StringVar(&topologyName, "topology", "grid", "grid|torus|dense")
	flag.StringVar(&testPath, "test_path", "tests", "directory containing DIMACS .cnf files")
	flag.IntVar(&nodeBandwidth, "node_bandwidth", 100, "messages consumed/emitted per cycle per node")
	flag.IntVar(&numVars, "num_vars", 50, "select benchmark subdirectory / filter")
	flag.StringVar(&oraclePath, "oracle_path", "", "path to external reference solver binary")
	flag.StringVar(&oracleConfig, "oracle_config", "", "path to a JSON file decoded into an oracle config")
	flag.IntVar(&cycleCap, "cycle_cap", 1_000_000, "global tick ceiling before verdict UNKNOWN")
	flag.StringVar(&logLevel, "log_level", "info", "debug|info|warn|error")
	flag.IntVar(&clauseWidth, "clause_width", 3, "configured k: max literals per clause")
	flag.StringVar(&resultsCSV, "results_csv", "", "optional path to append a CSV row per benchmark")
	flag.StringVar(&sweep, "sweep", "", "comma-separated node_count:bandwidth pairs to run instead of a single configuration")
	flag.Parse()

	log := newLogger(logLevel)

	configs, err := parseSweep(sweep, numNodes, nodeBandwidth)
	if err != nil {
		log.Fatalf("invalid --sweep: %v", err)
	}

	oracleCfg, err := oracle.LoadConfig(oracleConfig)
	if err != nil {
		log.Fatalf("invalid --oracle_config: %v", err)
	}
	if oraclePath != "" {
		oracleCfg.Path = oraclePath
	}
	solver, err := oracle.NewSolver(oracleCfg)
	if err != nil {
		log.Fatalf("cannot resolve reference solver: %v", err)
	}

	var csvWriter *oracle.ResultsWriter
	if resultsCSV != "" {
		f, err := os.Create(resultsCSV)
		if err != nil {
			log.Fatalf("cannot create --results_csv file: %v", err)
		}
		defer f.Close()
		csvWriter = oracle.NewResultsWriter(f)
		defer csvWriter.Flush()
	}

	benchDir := resolveBenchDir(testPath, numVars)
	files, err := listCNFFiles(benchDir)
	if err != nil {
		log.Fatalf("cannot list %q: %v", benchDir, err)
	}
	if len(files) == 0 {
		log.Warnf("no .cnf files found under %q", benchDir)
	}

	ctx := context.Background()
	exitCode := 0
	for _, cfg := range configs {
		topo, err := buildTopology(topologyName, cfg.nodes)
		if err != nil {
			log.Fatalf("invalid --topology: %v", err)
		}
		for _, file := range files {
			agreement, err := runOne(ctx, log, solver, csvWriter, file, topo, cfg.bandwidth, cycleCap, clauseWidth)
			if err != nil {
				log.WithField("file", file).Errorf("run failed: %v", err)
				exitCode = 1
				continue
			}
			if agreement != oracle.Match {
				exitCode = 1
			}
		}
	}
	os.Exit(exitCode)
}

func runOne(ctx context.Context, log *logrus.Entry, solver *oracle.Solver, csvWriter *oracle.ResultsWriter, file string, topo mesh.Topology, bandwidth, cycleCap, clauseWidth int) (oracle.Agreement, error) {
	f, err := os.Open(file)
	if err != nil {
		return oracle.Inconclusive, fmt.Errorf("open: %w", err)
	}
	formula, err := cnf.ParseDIMACS(f, clauseWidth)
	f.Close()
	if err != nil {
		return oracle.Inconclusive, fmt.Errorf("parse: %w", err)
	}

	driver := sim.New(formula, topo, bandwidth, cycleCap, log)
	res, err := driver.Run(ctx)
	if err != nil {
		return oracle.Inconclusive, fmt.Errorf("simulate: %w", err)
	}

	oracleVerdict, err := solver.Solve(ctx, file)
	if err != nil {
		return oracle.Inconclusive, fmt.Errorf("oracle: %w", err)
	}

	agreement := oracle.Compare(res.Verdict, oracleVerdict)
	fmt.Printf("%s topology=%s bandwidth=%d verdict=%s oracle=%s agreement=%s cycles=%d busy=%d idle=%d\n",
		file, topo.Name(), bandwidth, res.Verdict, oracleVerdict, agreement, res.SimulatedCycles, res.BusyCycles, res.IdleCycles)

	if agreement == oracle.Mismatch {
		log.WithFields(logrus.Fields{"file": file, "sim": res.Verdict, "oracle": oracleVerdict}).Error("simulator disagrees with reference solver")
	}

	if csvWriter != nil {
		err := csvWriter.Write(oracle.ResultRow{
			File: file, Topology: topo.Name(), Bandwidth: bandwidth, ClauseWidth: clauseWidth,
			SimVerdict: res.Verdict, OracleVerdict: oracleVerdict, Agreement: agreement,
			Cycles: res.SimulatedCycles, BusyCycles: res.BusyCycles, IdleCycles: res.IdleCycles,
		})
		if err != nil {
			log.Errorf("results_csv: %v", err)
		}
	}

	return agreement, nil
}

func buildTopology(name string, n int) (mesh.Topology, error) {
	switch name {
	case "grid":
		rows, cols := mesh.GridDims(n)
		return mesh.NewGrid(rows, cols), nil
	case "torus":
		rows, cols := mesh.GridDims(n)
		return mesh.NewTorus(rows, cols), nil
	case "dense":
		return mesh.NewDense(n), nil
	default:
		return nil, fmt.Errorf("unknown topology %q", name)
	}
}

// resolveBenchDir implements --num_vars as "select benchmark subdirectory":
// testPath/<num_vars> if it exists, otherwise testPath itself (a flat
// benchmark directory, or one already scoped by the caller).
func resolveBenchDir(testPath string, numVars int) string {
	sub := filepath.Join(testPath, strconv.Itoa(numVars))
	if info, err := os.Stat(sub); err == nil && info.IsDir() {
		return sub
	}
	return testPath
}

func listCNFFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".cnf") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

type sweepConfig struct {
	nodes, bandwidth int
}

// parseSweep implements --sweep: a comma-separated list of
// node_count:bandwidth pairs, each run against every benchmark file
// (spec §11's supplemented deterministic multi-config sweep). An empty
// sweep runs the single configuration given by --num_nodes/--node_bandwidth.
func parseSweep(spec string, defaultNodes, defaultBandwidth int) ([]sweepConfig, error) {
	if spec == "" {
		return []sweepConfig{{nodes: defaultNodes, bandwidth: defaultBandwidth}}, nil
	}
	var configs []sweepConfig
	for _, part := range strings.Split(spec, ",") {
		pieces := strings.SplitN(part, ":", 2)
		nodes, err := strconv.Atoi(pieces[0])
		if err != nil {
			return nil, fmt.Errorf("bad node count in %q: %w", part, err)
		}
		bandwidth := defaultBandwidth
		if len(pieces) == 2 {
			bandwidth, err = strconv.Atoi(pieces[1])
			if err != nil {
				return nil, fmt.Errorf("bad bandwidth in %q: %w", part, err)
			}
		}
		configs = append(configs, sweepConfig{nodes: nodes, bandwidth: bandwidth})
	}
	return configs, nil
}

func newLogger(level string) *logrus.Entry {
	l := logrus.New()
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	l.SetLevel(parsed)
	return logrus.NewEntry(l)
}
