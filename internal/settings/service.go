package settings

import "context"

type store interface {
	Get(ctx context.Context) (PointsSettings, bool, error)
	Put(ctx context.Context, ps PointsSettings) error
}

// Service manages the platform points settings via an underlying store.
// Defaults come from configuration and apply until an admin writes overrides.
type Service struct {
	store    store
	defaults PointsSettings
}

// NewService constructs a Service with an in-memory store.
func NewService(defaultDownloadCost, defaultUploadReward int64) *Service {
	return &Service{store: newMemoryStore(), defaults: PointsSettings{
		DownloadCost: defaultDownloadCost,
		UploadReward: defaultUploadReward,
	}}
}

// NewPostgresService constructs a Service backed by Postgres.
func NewPostgresService(pgStore store, defaultDownloadCost, defaultUploadReward int64) *Service {
	return &Service{store: pgStore, defaults: PointsSettings{
		DownloadCost: defaultDownloadCost,
		UploadReward: defaultUploadReward,
	}}
}

// Get returns the current points settings, falling back to configured
// defaults when no admin override has been stored.
func (s *Service) Get(ctx context.Context) (PointsSettings, error) {
	ps, ok, err := s.store.Get(ctx)
	if err != nil {
		return PointsSettings{}, err
	}
	if !ok {
		return s.defaults, nil
	}
	return ps, nil
}

// Update replaces the stored points settings.
func (s *Service) Update(ctx context.Context, adminID string, downloadCost, uploadReward int64) (PointsSettings, error) {
	if downloadCost < 0 || uploadReward < 0 {
		return PointsSettings{}, ErrInvalidSettings
	}
	ps := PointsSettings{
		DownloadCost: downloadCost,
		UploadReward: uploadReward,
		UpdatedByID:  adminID,
	}
	if err := s.store.Put(ctx, ps); err != nil {
		return PointsSettings{}, err
	}
	return s.Get(ctx)
}
