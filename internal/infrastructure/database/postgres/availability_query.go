package postgres

import (
	"context"
	"fmt"
	"time"

	"fleet-reserve/internal/domain/vehicle"
	"fleet-reserve/internal/infrastructure/database/postgres/models"
)

// AvailabilityQuery is the server-evaluated availability path. One round trip
// computes the conflict-free pool, the maintenance margin filter and the
// idle-time ranking, mirroring the get_best_available_vehicle procedure. The
// client-evaluated resolver remains the reference semantics; this query must
// stay result-identical with it.
type AvailabilityQuery struct {
	db *DB
}

func NewAvailabilityQuery(db *DB) *AvailabilityQuery {
	return &AvailabilityQuery{db: db}
}

type rankedRow struct {
	models.VehicleModel
	DaysSinceLastUse int  `gorm:"column:days_since_last_use"`
	NeverUsed        bool `gorm:"column:never_used"`
}

func (q *AvailabilityQuery) RankedAvailable(ctx context.Context, pickup, ret, today time.Time) ([]vehicle.Availability, error) {
	const query = `
		SELECT v.*,
		       (?::date - COALESCE(lu.last_return, v.created_at::date)) AS days_since_last_use,
		       (lu.last_return IS NULL) AS never_used
		FROM vehicles v
		LEFT JOIN LATERAL (
			SELECT MAX(r.return_date) AS last_return
			FROM reservations r
			WHERE r.vehicle_id = v.id AND r.status = 'completed'
		) lu ON true
		WHERE v.status = 'available'
		  AND (v.next_revision_odometer + v.service_margin_km - v.current_odometer) > 0
		  AND NOT EXISTS (
			SELECT 1 FROM reservations r
			WHERE r.vehicle_id = v.id
			  AND r.status = 'active'
			  AND r.pickup_date <= ?
			  AND r.return_date >= ?
		  )
		ORDER BY never_used DESC, days_since_last_use DESC, v.plate ASC`

	var rows []rankedRow
	err := q.db.DB.WithContext(ctx).
		Raw(query, today, ret, pickup).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("ranked availability query failed: %w", err)
	}

	pool := make([]vehicle.Availability, 0, len(rows))
	for i := range rows {
		pool = append(pool, vehicle.Availability{
			Vehicle:          toVehicleEntity(&rows[i].VehicleModel),
			DaysSinceLastUse: rows[i].DaysSinceLastUse,
			NeverUsed:        rows[i].NeverUsed,
		})
	}

	return pool, nil
}
