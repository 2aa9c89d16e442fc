package main

import (
	"fmt"

	"github.com/gosuri/uitable"

	"github.com/baldhumanity/evonet-go/evonet"
	"github.com/baldhumanity/evonet-go/evonet/record"
)

func newTable(header ...interface{}) *uitable.Table {
	table := uitable.New()
	table.MaxColWidth = 40
	table.Wrap = false
	table.AddRow(header...)
	return table
}

// cycleRows summarizes each cycle by the statistics of its per-epoch best
// fitness.
func cycleRows(l *record.EvolutionLog) [][]interface{} {
	rows := make([][]interface{}, len(l.Evaluations))
	for i, eval := range l.Evaluations {
		conv := eval.FitnessConvergence
		fittest := "-"
		if eval.FittestNetwork != nil {
			fittest = fmt.Sprintf("%.4f", eval.FittestNetwork.Fitness)
		}
		last := "-"
		if len(conv) > 0 {
			last = fmt.Sprintf("%.4f", conv[len(conv)-1])
		}
		rows[i] = []interface{}{
			i,
			fmt.Sprint(eval.LayerStructure),
			len(conv),
			last,
			fmt.Sprintf("%.4f", evonet.StatFunctions["mean"](conv)),
			fmt.Sprintf("%.4f", evonet.StatFunctions["stdev"](conv)),
			fittest,
		}
	}
	return rows
}

func cycleTable(l *record.EvolutionLog) *uitable.Table {
	table := newTable("Cycle", "Layers", "Epochs", "FinalBest", "Mean", "Stdev", "Fittest")
	for _, row := range cycleRows(l) {
		table.AddRow(row...)
	}
	return table
}

func epochTable(eval *record.EvolutionEvaluation) *uitable.Table {
	table := newTable("Epoch", "Best", "Mean", "Stdev", "Highest", "Difference", "Stagnation", "Reset")
	for _, e := range eval.Epochs {
		reset := ""
		if e.Reset {
			reset = "yes"
		}
		table.AddRow(e.Epoch,
			fmt.Sprintf("%.4f", e.Best),
			fmt.Sprintf("%.4f", e.Mean),
			fmt.Sprintf("%.4f", e.Stdev),
			fmt.Sprintf("%.4f", e.Highest),
			fmt.Sprintf("%.4f", e.Difference),
			e.Stagnation,
			reset,
		)
	}
	return table
}

// trainingRows summarizes each learning rate.
func trainingRows(l *record.TrainingLog) [][]interface{} {
	rows := make([][]interface{}, len(l.Evaluations))
	for i, eval := range l.Evaluations {
		conv := eval.FitnessConvergence
		final := "-"
		if len(conv) > 0 {
			final = fmt.Sprintf("%.4f", conv[len(conv)-1])
		}
		rows[i] = []interface{}{
			i,
			eval.LearningRate,
			len(conv),
			final,
			fmt.Sprintf("%.4f", evonet.StatFunctions["max"](conv)),
			fmt.Sprintf("%.4f", evonet.StatFunctions["median"](conv)),
		}
	}
	return rows
}

func trainingTable(l *record.TrainingLog) *uitable.Table {
	table := newTable("Agent", "LearningRate", "Repetitions", "Final", "Best", "Median")
	for _, row := range trainingRows(l) {
		table.AddRow(row...)
	}
	return table
}
