package evonet

// EpisodeOutcome is what an agent reports after one episode.
type EpisodeOutcome struct {
	Completed       float64 // Fraction of the route completed, 0..1
	Crashed         bool
	FinishTime      float64 // Seconds to reach the goal; below the threshold means unfinished
	InitialDistance float64 // Straight-line distance from spawn to goal
	// Direction indicators in [0, 1]; 1 means the agent's heading agreed with
	// the target direction on that side.
	RightIndicator float64
	LeftIndicator  float64
}

// FitnessParams weights the terms of the fitness function.
type FitnessParams struct {
	DistanceScale       float64 `ini:"distance_scale"`
	SpeedScale          float64 `ini:"speed_scale"`
	FinishReward        float64 `ini:"finish_reward"`
	CrashPenalty        float64 `ini:"crash_penalty"`
	DirectionPenalty    float64 `ini:"direction_penalty"`
	FinishTimeThreshold float64 `ini:"finish_time_threshold"`
}

// DefaultFitnessParams returns the weights used by the driving simulation.
func DefaultFitnessParams() FitnessParams {
	return FitnessParams{
		DistanceScale:       100,
		SpeedScale:          3,
		FinishReward:        50,
		CrashPenalty:        0,
		DirectionPenalty:    5,
		FinishTimeThreshold: 0.5,
	}
}

// Evaluate scores one episode:
//
//	f  = -((1 - right) + (1 - left)) * DirectionPenalty
//	f += Completed * DistanceScale
//	f -= CrashPenalty, if crashed
//	f += FinishReward + InitialDistance / FinishTime * SpeedScale, if finished
//
// An episode counts as finished when FinishTime >= FinishTimeThreshold.
func (p FitnessParams) Evaluate(o EpisodeOutcome) float64 {
	fitness := -((1 - o.RightIndicator) + (1 - o.LeftIndicator)) * p.DirectionPenalty
	fitness += o.Completed * p.DistanceScale
	if o.Crashed {
		fitness -= p.CrashPenalty
	}
	if o.FinishTime >= p.FinishTimeThreshold && o.FinishTime > 0 {
		fitness += p.FinishReward
		fitness += o.InitialDistance / o.FinishTime * p.SpeedScale
	}
	return fitness
}
