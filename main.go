package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"riskodds/battle"
	"riskodds/config"
	"riskodds/experiments"
	"riskodds/experiments/metrics"
	"riskodds/logger"
	"riskodds/meta"
	"riskodds/searcher"
)

const (
	exitOK     = 0
	exitError  = 1
	exitConfig = 2
)

var errUsage = errors.New("usage")

const usage = `usage: riskodds [--config path] [--log-level level] <command> [arguments]

commands:
  battle A D...          exact outcome of attacking territories in order
  mintroops TARGET D...  fewest attackers that win with at least TARGET probability
  fortify --file path    spend extra defenders where they help most
  simulate A D...        estimate a battle by rolling dice
  speedup --file path    time fortify with different worker counts
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	global := pflag.NewFlagSet("riskodds", pflag.ContinueOnError)
	global.SetOutput(stderr)
	global.SetInterspersed(false)
	configPath := global.String("config", "", "path to a YAML config file")
	logLevel := global.String("log-level", "", "minimum log level, overrides the config")
	global.Usage = func() { fmt.Fprint(stderr, usage) }
	if err := parseFlags(global, args); err != nil {
		return exitCode(err)
	}
	if global.NArg() == 0 {
		fmt.Fprint(stderr, usage)
		return exitConfig
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitConfig
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	logger.InitWithWriter(cfg.Logging.Level, cfg.Logging.Format, stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	command, rest := global.Arg(0), global.Args()[1:]
	switch command {
	case "battle":
		err = runBattle(cfg, rest, stdout, stderr)
	case "mintroops":
		err = runMinTroops(ctx, cfg, rest, stdout, stderr)
	case "fortify":
		err = runFortify(ctx, cfg, rest, stdout, stderr)
	case "simulate":
		err = runSimulate(cfg, rest, stdout, stderr)
	case "speedup":
		err = runSpeedup(ctx, cfg, rest, stdout, stderr)
	default:
		err = fmt.Errorf("%w: unknown command %q", errUsage, command)
	}

	if err != nil && !errors.Is(err, pflag.ErrHelp) {
		fmt.Fprintln(stderr, err)
	}
	return exitCode(err)
}

func exitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, pflag.ErrHelp):
		return exitOK
	case errors.Is(err, errUsage),
		errors.Is(err, battle.ErrConfiguration),
		errors.Is(err, searcher.ErrInvalidTarget),
		errors.Is(err, searcher.ErrUnknownMethod),
		errors.Is(err, searcher.ErrNegativeBudget):
		return exitConfig
	}
	return exitError
}

// chainFlags are shared by every command that builds a chain from the
// command line.
type chainFlags struct {
	attackSides  *[]int
	defenseSides *[]int
	stop         *int
}

func addChainFlags(fs *pflag.FlagSet, cfg config.Config) chainFlags {
	return chainFlags{
		attackSides:  fs.IntSlice("asides", nil, "attack dice sides, one value for all territories or one per territory"),
		defenseSides: fs.IntSlice("dsides", nil, "defense dice sides, one value for all territories or one per territory"),
		stop:         fs.Int("stop", cfg.Battle.Stop, "attacker stops at or below this many troops"),
	}
}

func (f chainFlags) territories(cfg config.Config, defenses []int) ([]battle.Territory, error) {
	attackSides, err := expandSides(*f.attackSides, cfg.Dice.AttackSides, len(defenses), "attack")
	if err != nil {
		return nil, err
	}
	defenseSides, err := expandSides(*f.defenseSides, cfg.Dice.DefenseSides, len(defenses), "defense")
	if err != nil {
		return nil, err
	}

	territories := make([]battle.Territory, len(defenses))
	for i, d := range defenses {
		territories[i] = battle.Territory{
			DefenseTroops: d,
			AttackSides:   attackSides[i],
			DefenseSides:  defenseSides[i],
		}
	}
	return territories, nil
}

func expandSides(values []int, fallback, n int, side string) ([]int, error) {
	sides := make([]int, n)
	switch len(values) {
	case 0:
		for i := range sides {
			sides[i] = fallback
		}
	case 1:
		for i := range sides {
			sides[i] = values[0]
		}
	case n:
		copy(sides, values)
	default:
		return nil, fmt.Errorf("%w: got %d %s dice sizes for %d territories", battle.ErrConfiguration, len(values), side, n)
	}
	return sides, nil
}

func parseInts(args []string) ([]int, error) {
	values := make([]int, len(args))
	for i, arg := range args {
		v, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a troop count", errUsage, arg)
		}
		values[i] = v
	}
	return values, nil
}

// parseAttack reads "A D..." positional arguments.
func parseAttack(args []string) (int, []int, error) {
	if len(args) < 2 {
		return 0, nil, fmt.Errorf("%w: need attack troops and at least one defending territory", errUsage)
	}
	values, err := parseInts(args)
	if err != nil {
		return 0, nil, err
	}
	return values[0], values[1:], nil
}

func newFlagSet(name string, stderr io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

// parseFlags marks malformed flags as usage errors.
func parseFlags(fs *pflag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if err == nil || errors.Is(err, pflag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %w", errUsage, err)
}

func runBattle(cfg config.Config, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("battle", stderr)
	chain := addChainFlags(fs, cfg)
	all := fs.Bool("all", false, "show the full outcome distribution and cumulative views")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	attack, defenses, err := parseAttack(fs.Args())
	if err != nil {
		return err
	}
	territories, err := chain.territories(cfg, defenses)
	if err != nil {
		return err
	}

	result, err := battle.ResolveChain(battle.BattleConfig{
		AttackTroops: attack,
		Territories:  territories,
		Stop:         *chain.stop,
	})
	if err != nil {
		return err
	}

	if *all {
		return printAll(stdout, result)
	}
	return printWinProbabilities(stdout, result.WinProbabilities())
}

func runMinTroops(ctx context.Context, cfg config.Config, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("mintroops", stderr)
	chain := addChainFlags(fs, cfg)
	trace := fs.String("trace", "", "directory to write a CSV trace of every probe")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	if fs.NArg() < 2 {
		return fmt.Errorf("%w: need a target probability and at least one defending territory", errUsage)
	}
	target, err := strconv.ParseFloat(fs.Arg(0), 64)
	if err != nil {
		return fmt.Errorf("%w: %q is not a probability", errUsage, fs.Arg(0))
	}
	defenses, err := parseInts(fs.Args()[1:])
	if err != nil {
		return err
	}
	territories, err := chain.territories(cfg, defenses)
	if err != nil {
		return err
	}

	options := []searcher.Option{
		searcher.WithStart(cfg.Search.Start),
		searcher.WithCeiling(cfg.Search.Ceiling),
	}
	if *trace != "" {
		options = append(options, searcher.WithMetrics())
	}
	found, err := searcher.FindMinTroops(ctx, target, territories, *chain.stop, options...)
	if *trace != "" && found.Evaluations > 0 {
		if werr := writeTrace(*trace, "mintroops", found.Metric); werr != nil {
			return werr
		}
	}
	if err != nil {
		return err
	}

	return printMinTroops(stdout, target, found)
}

func runFortify(ctx context.Context, cfg config.Config, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("fortify", stderr)
	file := fs.String("file", "", "YAML scenario listing the battles to defend against")
	budget := fs.Int("budget", -1, "defenders to add, overrides the scenario")
	method := fs.String("method", "", "any or weakest, overrides the scenario")
	workers := fs.Int("workers", cfg.Fortify.Workers, "goroutines evaluating candidate placements")
	trace := fs.String("trace", "", "directory to write a CSV trace of every evaluation")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *file == "" {
		return fmt.Errorf("%w: --file is required", errUsage)
	}

	scenario, err := config.LoadScenario(*file, cfg)
	if err != nil {
		if errors.Is(err, battle.ErrConfiguration) || errors.Is(err, searcher.ErrUnknownMethod) {
			return err
		}
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	if fs.Changed("budget") {
		scenario.Budget = *budget
	}
	if *method != "" {
		scenario.Method = searcher.Method(*method)
	}

	options := []searcher.Option{searcher.WithWorkers(*workers)}
	if *trace != "" {
		options = append(options, searcher.WithMetrics())
	}
	alloc, err := searcher.Fortify(ctx, scenario, options...)
	if err != nil {
		return err
	}
	if *trace != "" {
		if err := writeTrace(*trace, "fortify", alloc.Metric); err != nil {
			return err
		}
	}

	return printAllocation(stdout, alloc)
}

func runSimulate(cfg config.Config, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("simulate", stderr)
	chain := addChainFlags(fs, cfg)
	iterations := fs.Int("iters", meta.SimulationIterations, "simulated battles")
	seed := fs.Uint64("seed", 1, "random seed")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	attack, defenses, err := parseAttack(fs.Args())
	if err != nil {
		return err
	}
	territories, err := chain.territories(cfg, defenses)
	if err != nil {
		return err
	}
	bc := battle.BattleConfig{
		AttackTroops: attack,
		Territories:  territories,
		Stop:         *chain.stop,
	}

	exact, err := battle.ResolveChain(bc)
	if err != nil {
		return err
	}
	simulated, err := battle.Simulate(bc, *iterations, *seed)
	if err != nil {
		return err
	}

	return printComparison(stdout, exact.WinProbabilities(), simulated.WinProbabilities())
}

func runSpeedup(ctx context.Context, cfg config.Config, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("speedup", stderr)
	file := fs.String("file", "", "YAML scenario listing the battles to defend against")
	workers := fs.IntSlice("workers", experiments.DefaultWorkers, "worker counts to compare")
	repeats := fs.Int("repeats", 3, "runs per worker count")
	out := fs.String("out", filepath.Join("experiments", "speedup"), "directory for the summaries")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *file == "" {
		return fmt.Errorf("%w: --file is required", errUsage)
	}

	scenario, err := config.LoadScenario(*file, cfg)
	if err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}

	records, err := experiments.RunSpeedupExperiment(ctx, scenario, experiments.SpeedupConfig{
		Workers: *workers,
		Repeats: *repeats,
		OutDir:  *out,
	})
	if err != nil {
		return err
	}
	return printSpeedup(stdout, records)
}

func writeTrace(dir, name string, metric metrics.SearchMetric) error {
	w, err := metrics.NewWriter(dir)
	if err != nil {
		return err
	}
	if err := w.WriteTrace(name, metric); err != nil {
		return err
	}
	if err := w.WriteSummaries([]metrics.SearchRecord{{Name: name, SearchMetric: metric}}); err != nil {
		return err
	}
	log.Info().Str("dir", w.BaseDir()).Int("evaluations", metric.Evaluations).Msg("wrote trace")
	return nil
}
