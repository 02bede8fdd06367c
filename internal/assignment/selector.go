package assignment

import (
	"errors"

	"github.com/google/uuid"

	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/geo"
)

// MaxActiveOrders is the workload ceiling for an agent to stay eligible.
const MaxActiveOrders = 2

const (
	distanceWeight = 0.60
	workloadWeight = 0.25
	ratingWeight   = 0.15

	maxRating = 5.0
)

// ErrNoAgentsAvailable signals that no eligible agent could take the order.
var ErrNoAgentsAvailable = errors.New("no agents available")

// Candidate is one eligible agent considered for an order.
type Candidate struct {
	AgentID  uuid.UUID
	Location geo.Point
	Workload int
	Rating   float64
}

// Decision reports the chosen agent and the score that won.
type Decision struct {
	AgentID    uuid.UUID
	Score      float64
	DistanceKm float64
}

// SelectAgent scores candidates against the drop-off point and returns the
// first minimum. Candidates must arrive pre-filtered (verified, located,
// workload under the ceiling) and in a deterministic order.
func SelectAgent(dropoff geo.Point, candidates []Candidate) (Decision, error) {
	if len(candidates) == 0 {
		return Decision{}, ErrNoAgentsAvailable
	}

	distances := make([]float64, len(candidates))
	maxDist := 0.0
	for i, candidate := range candidates {
		distances[i] = geo.HaversineKm(candidate.Location, dropoff)
		if distances[i] > maxDist {
			maxDist = distances[i]
		}
	}

	best := 0
	bestScore := score(candidates[0], distances[0], maxDist)
	for i := 1; i < len(candidates); i++ {
		s := score(candidates[i], distances[i], maxDist)
		if s < bestScore {
			best = i
			bestScore = s
		}
	}

	return Decision{
		AgentID:    candidates[best].AgentID,
		Score:      bestScore,
		DistanceKm: distances[best],
	}, nil
}

func score(candidate Candidate, distanceKm, maxDist float64) float64 {
	distTerm := 0.0
	if maxDist > 0 {
		distTerm = distanceKm / maxDist
	}
	workloadTerm := float64(candidate.Workload) / MaxActiveOrders

	rating := candidate.Rating
	if rating <= 0 {
		rating = maxRating
	}
	ratingTerm := (maxRating - rating) / maxRating

	return distanceWeight*distTerm + workloadWeight*workloadTerm + ratingWeight*ratingTerm
}
