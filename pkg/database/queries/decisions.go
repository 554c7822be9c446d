package queries

import (
	"context"
	"database/sql"
	"time"

	"github.com/cloudsched/scheduler/pkg/models"
)

type DecisionRepository struct {
	db *sql.DB
}

func NewDecisionRepository(db *sql.DB) *DecisionRepository {
	return &DecisionRepository{db: db}
}

type DecisionRecord struct {
	ID         int       `json:"id"`
	ResourceID string    `json:"resource_id"`
	Timestamp  time.Time `json:"timestamp"`
	Action     string    `json:"action"`
	Confidence float64   `json:"confidence"`
	AvgCPU     float64   `json:"avg_cpu"`
	AvgMemory  float64   `json:"avg_memory"`
	MaxCPU     float64   `json:"max_cpu"`
	MaxMemory  float64   `json:"max_memory"`
	Reasoning  string    `json:"reasoning"`
}

func (r *DecisionRepository) Insert(ctx context.Context, d *models.Decision) error {
	query := `
		INSERT INTO decisions
			(resource_id, timestamp, action, confidence, avg_cpu, avg_memory, max_cpu, max_memory, reasoning)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		d.ResourceID, d.Timestamp, string(d.Action), d.Confidence,
		d.Aggregates.AvgCPU, d.Aggregates.AvgMemory,
		d.Aggregates.MaxCPU, d.Aggregates.MaxMemory,
		d.Reasoning,
	)
	return err
}

func (r *DecisionRepository) GetByResource(ctx context.Context, resourceID string, from, to time.Time, limit int) ([]DecisionRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, resource_id, timestamp, action, confidence, avg_cpu, avg_memory, max_cpu, max_memory, reasoning
		FROM decisions
		WHERE resource_id = $1 AND timestamp >= $2 AND timestamp <= $3
		ORDER BY timestamp DESC
		LIMIT $4`

	rows, err := r.db.QueryContext(ctx, query, resourceID, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDecisions(rows)
}

func (r *DecisionRepository) GetRecent(ctx context.Context, limit int) ([]DecisionRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, resource_id, timestamp, action, confidence, avg_cpu, avg_memory, max_cpu, max_memory, reasoning
		FROM decisions
		ORDER BY timestamp DESC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDecisions(rows)
}

func scanDecisions(rows *sql.Rows) ([]DecisionRecord, error) {
	var decisions []DecisionRecord
	for rows.Next() {
		var d DecisionRecord
		err := rows.Scan(
			&d.ID, &d.ResourceID, &d.Timestamp, &d.Action, &d.Confidence,
			&d.AvgCPU, &d.AvgMemory, &d.MaxCPU, &d.MaxMemory, &d.Reasoning,
		)
		if err != nil {
			return nil, err
		}
		decisions = append(decisions, d)
	}
	return decisions, rows.Err()
}

type DecisionStats struct {
	ResourceID     string    `json:"resource_id"`
	From           time.Time `json:"from"`
	To             time.Time `json:"to"`
	ScaleUpCount   int       `json:"scale_up_count"`
	ScaleDownCount int       `json:"scale_down_count"`
	OptimizeCount  int       `json:"optimize_count"`
	MaintainCount  int       `json:"maintain_count"`
}

func (r *DecisionRepository) GetStats(ctx context.Context, resourceID string, from, to time.Time) (*DecisionStats, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE action = 'scale_up') AS scale_up_count,
			COUNT(*) FILTER (WHERE action = 'scale_down') AS scale_down_count,
			COUNT(*) FILTER (WHERE action = 'optimize') AS optimize_count,
			COUNT(*) FILTER (WHERE action = 'maintain') AS maintain_count
		FROM decisions
		WHERE resource_id = $1 AND timestamp >= $2 AND timestamp <= $3`

	var stats DecisionStats
	err := r.db.QueryRowContext(ctx, query, resourceID, from, to).Scan(
		&stats.ScaleUpCount, &stats.ScaleDownCount,
		&stats.OptimizeCount, &stats.MaintainCount,
	)
	if err != nil {
		return nil, err
	}

	stats.ResourceID = resourceID
	stats.From = from
	stats.To = to

	return &stats, nil
}
