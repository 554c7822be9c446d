package queries

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/cloudsched/scheduler/pkg/models"
)

type ForecastRepository struct {
	db *sql.DB
}

func NewForecastRepository(db *sql.DB) *ForecastRepository {
	return &ForecastRepository{db: db}
}

// ForecastRow is a persisted forecast with its predicted points stored
// as a JSON document.
type ForecastRow struct {
	ID            int                    `json:"id"`
	ResourceID    string                 `json:"resource_id"`
	GeneratedAt   time.Time              `json:"generated_at"`
	Horizon       int                    `json:"prediction_horizon"`
	Confidence    float64                `json:"confidence"`
	Predictions   []models.ForecastPoint `json:"predictions"`
	ModelVersion  string                 `json:"model_version"`
	FallbackSteps int                    `json:"fallback_steps"`
}

func (r *ForecastRepository) Insert(ctx context.Context, f *models.Forecast) error {
	predictions, err := json.Marshal(f.Predictions)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO forecasts
			(resource_id, generated_at, horizon, confidence, predictions, model_version, fallback_steps)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = r.db.ExecContext(ctx, query,
		f.ResourceID, f.GeneratedAt, f.Horizon, f.Confidence,
		predictions, f.ModelInfo.ModelVersion, f.ModelInfo.FallbackSteps,
	)
	return err
}

func (r *ForecastRepository) GetRecent(ctx context.Context, resourceID string, limit int) ([]ForecastRow, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, resource_id, generated_at, horizon, confidence, predictions, model_version, fallback_steps
		FROM forecasts
		WHERE resource_id = $1
		ORDER BY generated_at DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, resourceID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var forecasts []ForecastRow
	for rows.Next() {
		var f ForecastRow
		var predictions []byte
		err := rows.Scan(&f.ID, &f.ResourceID, &f.GeneratedAt, &f.Horizon,
			&f.Confidence, &predictions, &f.ModelVersion, &f.FallbackSteps)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(predictions, &f.Predictions); err != nil {
			return nil, err
		}
		forecasts = append(forecasts, f)
	}

	return forecasts, rows.Err()
}

func (r *ForecastRepository) GetLatest(ctx context.Context, resourceID string) (*ForecastRow, error) {
	forecasts, err := r.GetRecent(ctx, resourceID, 1)
	if err != nil {
		return nil, err
	}
	if len(forecasts) == 0 {
		return nil, nil
	}
	return &forecasts[0], nil
}
