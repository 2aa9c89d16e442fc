package evonet

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// clamp restricts a value to a given range [minVal, maxVal].
func clamp(value, minVal, maxVal float64) float64 {
	return math.Max(minVal, math.Min(value, maxVal))
}

// --- Statistical Functions ---

// Mean calculates the average of a slice of float64 values.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	return stat.Mean(values, nil)
}

// Stdev calculates the sample standard deviation of a slice of float64 values.
func Stdev(values []float64) float64 {
	if len(values) < 2 {
		return 0.0 // Undefined for fewer than 2 values
	}
	return stat.StdDev(values, nil)
}

// Sum calculates the sum of a slice of float64 values.
func Sum(values []float64) float64 {
	return floats.Sum(values)
}

// MaxFloat returns the largest value, or negative infinity for an empty slice.
func MaxFloat(values []float64) float64 {
	if len(values) == 0 {
		return math.Inf(-1)
	}
	return floats.Max(values)
}

// MinFloat returns the smallest value, or positive infinity for an empty slice.
func MinFloat(values []float64) float64 {
	if len(values) == 0 {
		return math.Inf(1)
	}
	return floats.Min(values)
}

// Median calculates the median of a slice of float64 values.
// Returns NaN if the slice is empty.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2.0
}

// StatFunctions maps function names to the statistical functions above.
var StatFunctions = map[string]func([]float64) float64{
	"mean":   Mean,
	"stdev":  Stdev,
	"sum":    Sum,
	"max":    MaxFloat,
	"min":    MinFloat,
	"median": Median,
}
