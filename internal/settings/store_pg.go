package settings

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type pgStore struct {
	DB *sql.DB
}

// NewPGStore constructs a Postgres-backed settings store. The table holds a
// single row keyed by id = 1.
func NewPGStore(db *sql.DB) *pgStore {
	return &pgStore{DB: db}
}

func (s *pgStore) Get(ctx context.Context) (PointsSettings, bool, error) {
	const query = `
SELECT download_cost, upload_reward, COALESCE(updated_by_id, ''), updated_at
FROM points_settings WHERE id = 1`
	var ps PointsSettings
	err := s.DB.QueryRowContext(ctx, query).Scan(
		&ps.DownloadCost,
		&ps.UploadReward,
		&ps.UpdatedByID,
		&ps.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return PointsSettings{}, false, nil
		}
		return PointsSettings{}, false, err
	}
	return ps, true, nil
}

func (s *pgStore) Put(ctx context.Context, ps PointsSettings) error {
	_, err := s.DB.ExecContext(ctx, `
INSERT INTO points_settings (id, download_cost, upload_reward, updated_by_id, updated_at)
VALUES (1, $1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE SET
  download_cost = EXCLUDED.download_cost,
  upload_reward = EXCLUDED.upload_reward,
  updated_by_id = EXCLUDED.updated_by_id,
  updated_at = EXCLUDED.updated_at`,
		ps.DownloadCost,
		ps.UploadReward,
		nullableString(ps.UpdatedByID),
		time.Now().UTC(),
	)
	return err
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
