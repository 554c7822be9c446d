package queries

import (
	"context"
	"database/sql"
	"time"

	"github.com/cloudsched/scheduler/pkg/models"
)

type SampleRepository struct {
	db *sql.DB
}

func NewSampleRepository(db *sql.DB) *SampleRepository {
	return &SampleRepository{db: db}
}

func (r *SampleRepository) Insert(ctx context.Context, s *models.SampleRecord) error {
	query := `
		INSERT INTO resource_samples
			(time, resource_id, cpu_percent, memory_percent, disk_percent, network_in_bytes, network_out_bytes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		s.Time, s.ResourceID, s.CPUPercent, s.MemoryPercent,
		s.DiskPercent, s.NetworkInBytes, s.NetworkOutBytes,
	)
	return err
}

func (r *SampleRepository) InsertBatch(ctx context.Context, samples []models.SampleRecord) error {
	if len(samples) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO resource_samples
			(time, resource_id, cpu_percent, memory_percent, disk_percent, network_in_bytes, network_out_bytes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range samples {
		_, err := stmt.ExecContext(ctx,
			s.Time, s.ResourceID, s.CPUPercent, s.MemoryPercent,
			s.DiskPercent, s.NetworkInBytes, s.NetworkOutBytes,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *SampleRepository) GetRange(ctx context.Context, resourceID string, from, to time.Time, limit int) ([]models.SampleRecord, error) {
	if limit <= 0 {
		limit = 1000
	}

	query := `
		SELECT time, resource_id, cpu_percent, memory_percent, disk_percent, network_in_bytes, network_out_bytes
		FROM resource_samples
		WHERE resource_id = $1 AND time >= $2 AND time <= $3
		ORDER BY time ASC
		LIMIT $4`

	rows, err := r.db.QueryContext(ctx, query, resourceID, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []models.SampleRecord
	for rows.Next() {
		var s models.SampleRecord
		err := rows.Scan(&s.Time, &s.ResourceID, &s.CPUPercent, &s.MemoryPercent,
			&s.DiskPercent, &s.NetworkInBytes, &s.NetworkOutBytes)
		if err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}

	return samples, rows.Err()
}

// GetHourly returns per-hour averages for the trailing window, oldest
// first, which is the shape the forecasting engine consumes.
func (r *SampleRepository) GetHourly(ctx context.Context, resourceID string, hours int) ([]models.MetricSample, error) {
	if hours <= 0 {
		hours = 168
	}

	query := `
		SELECT
			date_trunc('hour', time) AS hour,
			AVG(cpu_percent) AS cpu,
			AVG(memory_percent) AS memory,
			AVG(disk_percent) AS disk,
			AVG(network_in_bytes) AS network_in,
			AVG(network_out_bytes) AS network_out
		FROM resource_samples
		WHERE resource_id = $1 AND time > NOW() - ($2 || ' hours')::interval
		GROUP BY hour
		ORDER BY hour ASC`

	rows, err := r.db.QueryContext(ctx, query, resourceID, hours)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []models.MetricSample
	for rows.Next() {
		var m models.MetricSample
		err := rows.Scan(&m.Timestamp, &m.CPUPercent, &m.MemoryPercent,
			&m.DiskPercent, &m.NetworkInBytes, &m.NetworkOutBytes)
		if err != nil {
			return nil, err
		}
		history = append(history, m)
	}

	return history, rows.Err()
}

func (r *SampleRepository) GetLatest(ctx context.Context, resourceID string) (*models.SampleRecord, error) {
	query := `
		SELECT time, resource_id, cpu_percent, memory_percent, disk_percent, network_in_bytes, network_out_bytes
		FROM resource_samples
		WHERE resource_id = $1
		ORDER BY time DESC
		LIMIT 1`

	var s models.SampleRecord
	err := r.db.QueryRowContext(ctx, query, resourceID).Scan(
		&s.Time, &s.ResourceID, &s.CPUPercent, &s.MemoryPercent,
		&s.DiskPercent, &s.NetworkInBytes, &s.NetworkOutBytes,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &s, nil
}

func (r *SampleRepository) GetStats(ctx context.Context, resourceID string, from, to time.Time) (*models.ResourceStats, error) {
	query := `
		SELECT
			COALESCE(AVG(cpu_percent), 0),
			COALESCE(AVG(memory_percent), 0),
			COALESCE(AVG(disk_percent), 0),
			COALESCE(AVG(network_in_bytes), 0),
			COALESCE(MAX(cpu_percent), 0),
			COALESCE(MAX(memory_percent), 0),
			COUNT(*)
		FROM resource_samples
		WHERE resource_id = $1 AND time >= $2 AND time <= $3`

	var stats models.ResourceStats
	err := r.db.QueryRowContext(ctx, query, resourceID, from, to).Scan(
		&stats.AvgCPU, &stats.AvgMemory, &stats.AvgDisk, &stats.AvgNetwork,
		&stats.MaxCPU, &stats.MaxMemory, &stats.SampleCount,
	)
	if err != nil {
		return nil, err
	}

	stats.ResourceID = resourceID
	stats.From = from
	stats.To = to

	return &stats, nil
}

func (r *SampleRepository) ListResources(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT resource_id FROM resource_samples ORDER BY resource_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
