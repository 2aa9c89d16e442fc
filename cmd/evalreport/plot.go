package main

import (
	"errors"
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/baldhumanity/evonet-go/evonet/record"
)

// convergenceSeries is one labelled fitness line.
type convergenceSeries struct {
	label  string
	values []float64
}

func evolutionSeries(l *record.EvolutionLog) []convergenceSeries {
	series := make([]convergenceSeries, 0, len(l.Evaluations))
	for i, eval := range l.Evaluations {
		series = append(series, convergenceSeries{
			label:  fmt.Sprintf("cycle %d %v", i, eval.LayerStructure),
			values: eval.FitnessConvergence,
		})
	}
	return series
}

func trainingSeries(l *record.TrainingLog) []convergenceSeries {
	series := make([]convergenceSeries, 0, len(l.Evaluations))
	for _, eval := range l.Evaluations {
		series = append(series, convergenceSeries{
			label:  fmt.Sprintf("lr %g", eval.LearningRate),
			values: eval.FitnessConvergence,
		})
	}
	return series
}

func plotEvolution(l *record.EvolutionLog, outPath string) error {
	return plotSeries("Evolution "+l.RunID, "Epoch", evolutionSeries(l), outPath)
}

func plotTraining(l *record.TrainingLog, outPath string) error {
	return plotSeries("Training "+l.RunID, "Repetition", trainingSeries(l), outPath)
}

// plotSeries draws fitness over the x index, one line per series, and saves
// the chart as a 6x4 inch image.
func plotSeries(title, xLabel string, series []convergenceSeries, outPath string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = "Fitness"

	drawn := 0
	for i, s := range series {
		if len(s.values) == 0 {
			continue
		}
		pts := make(plotter.XYs, len(s.values))
		for j, v := range s.values {
			pts[j].X = float64(j)
			pts[j].Y = v
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(s.label, line)
		drawn++
	}
	if drawn == 0 {
		return errors.New("log holds no fitness values to plot")
	}

	p.Legend.Top = true
	p.Legend.Left = true

	return p.Save(6*vg.Inch, 4*vg.Inch, outPath)
}
