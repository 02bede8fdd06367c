package assignment

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/geo"
)

// Repository surfaces the agent pool queries used during assignment.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindEligibleAgents(ctx context.Context) ([]Candidate, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an assignment repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

type candidateRow struct {
	UserID    uuid.UUID
	Latitude  float64
	Longitude float64
	Workload  int
	Rating    float64
}

// FindEligibleAgents returns verified agents with a known location and
// fewer than MaxActiveOrders in flight, ordered by profile creation so
// score ties resolve deterministically.
func (r *repository) FindEligibleAgents(ctx context.Context) ([]Candidate, error) {
	var rows []candidateRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT ap.user_id,
			ap.latitude,
			ap.longitude,
			COALESCE(active.total, 0) AS workload,
			COALESCE(scores.avg_score, 0) AS rating
		FROM agent_profiles ap
		LEFT JOIN (
			SELECT agent_id, COUNT(*) AS total
			FROM orders
			WHERE status IN ('assigned', 'picked_up', 'out_for_delivery')
			GROUP BY agent_id
		) active ON active.agent_id = ap.user_id
		LEFT JOIN (
			SELECT agent_id, AVG(score) AS avg_score
			FROM ratings
			GROUP BY agent_id
		) scores ON scores.agent_id = ap.user_id
		WHERE ap.is_verified = TRUE
			AND ap.latitude IS NOT NULL
			AND ap.longitude IS NOT NULL
			AND COALESCE(active.total, 0) < ?
		ORDER BY ap.created_at ASC
	`, MaxActiveOrders).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(rows))
	for _, row := range rows {
		candidates = append(candidates, Candidate{
			AgentID:  row.UserID,
			Location: geo.Point{Lat: row.Latitude, Lon: row.Longitude},
			Workload: row.Workload,
			Rating:   row.Rating,
		})
	}
	return candidates, nil
}
