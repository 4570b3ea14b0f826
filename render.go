package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"riskodds/battle"
	"riskodds/experiments/metrics"
	"riskodds/searcher"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
}

// Territories are numbered from one on screen.

func printWinProbabilities(w io.Writer, probs []float64) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "territory\tattack win probability\t")
	for i, p := range probs {
		fmt.Fprintf(tw, "%d\t%.10f\t\n", i+1, p)
	}
	return tw.Flush()
}

func printDistribution(w io.Writer, dist battle.Distribution) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "territory\tattack\tdefense\tprobability\t")
	for _, e := range dist.Sorted() {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%.10f\t\n", e.Territory+1, e.Attack, e.Defense, e.Probability)
	}
	return tw.Flush()
}

func printCumulative(w io.Writer, result *battle.Result, p battle.Perspective) error {
	fmt.Fprintf(w, "%s (cumulative), expected remaining %.4f\n", p, result.ExpectedRemaining(p))
	tw := newTable(w)
	fmt.Fprintln(tw, "territory\ttroops on territory\ttroops remaining\tcumulative probability\t")
	for _, e := range result.Cumulative(p) {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%.10f\t\n", e.Territory+1, e.OnTerritory, e.Remaining, e.Probability)
	}
	return tw.Flush()
}

func printAll(w io.Writer, result *battle.Result) error {
	if err := printDistribution(w, result.Outcomes); err != nil {
		return err
	}
	for _, p := range []battle.Perspective{battle.Attack, battle.Defense} {
		fmt.Fprintln(w)
		if err := printCumulative(w, result, p); err != nil {
			return err
		}
	}
	fmt.Fprintln(w)
	return printWinProbabilities(w, result.WinProbabilities())
}

func printMinTroops(w io.Writer, target float64, found searcher.MinTroops) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "target\ttroops\tprobability\tevaluations\t")
	fmt.Fprintf(tw, "%.4f\t%d\t%.10f\t%d\t\n", target, found.Troops, found.Probability, found.Evaluations)
	return tw.Flush()
}

func printAllocation(w io.Writer, alloc searcher.Allocation) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "battle\tterritory\tdefense\tadded\t")
	for i, b := range alloc.Battles {
		for j, t := range b.Territories {
			fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t\n", i+1, j+1, t.DefenseTroops, alloc.Added[i][j])
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	tw = newTable(w)
	fmt.Fprintln(tw, "battle\tloss probability\t")
	for i, p := range alloc.Probabilities {
		fmt.Fprintf(tw, "%d\t%.10f\t\n", i+1, p)
	}
	fmt.Fprintf(tw, "any\t%.10f\t\n", alloc.JointLoss)
	return tw.Flush()
}

func printComparison(w io.Writer, exact, simulated []float64) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "territory\texact\tsimulated\tdifference\t")
	for i := range exact {
		fmt.Fprintf(tw, "%d\t%.6f\t%.6f\t%+.6f\t\n", i+1, exact[i], simulated[i], simulated[i]-exact[i])
	}
	return tw.Flush()
}

func printSpeedup(w io.Writer, records []metrics.SearchRecord) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "run\tworkers\tevaluations\tduration\t")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t\n", r.Name, r.Workers, r.Evaluations, r.Duration)
	}
	return tw.Flush()
}
