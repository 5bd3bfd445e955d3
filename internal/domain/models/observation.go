package models

import "time"

// Triple is one timestep of model features: large count, small count, revenue.
type Triple [3]float64

// Feature indexes inside a Triple.
const (
	FeatureLarge = iota
	FeatureSmall
	FeatureRevenue
	NumFeatures
)

// Sequence is an ordered window of feature triples, most recent last.
// The same shape carries raw and normalized values.
type Sequence []Triple

// Observation is one persisted ledger row.
type Observation struct {
	Date       time.Time
	LargeCount float64
	SmallCount float64
	Revenue    float64
}

// Features returns the observation as a model feature triple.
func (o Observation) Features() Triple {
	return Triple{o.LargeCount, o.SmallCount, o.Revenue}
}

// Rows converts the sequence into a row-major matrix.
func (s Sequence) Rows() [][]float64 {
	out := make([][]float64, len(s))
	for i, t := range s {
		row := make([]float64, NumFeatures)
		copy(row, t[:])
		out[i] = row
	}
	return out
}
