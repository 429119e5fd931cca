package engine

import (
	"context"
	"errors"

	"github.com/willofcode/flowmind/internal/models"
)

// ProfileStore looks up a person's stored profile. A nil profile with a nil
// error means none is stored.
type ProfileStore interface {
	LookupProfile(ctx context.Context, personID string) (*models.Profile, error)
}

// ProfileGetter is the storage method StoredProfiles adapts.
type ProfileGetter interface {
	GetProfile(ctx context.Context, personID string) (models.Profile, error)
}

// StoredProfiles maps a storage provider onto ProfileStore.
type StoredProfiles struct {
	Store ProfileGetter
}

func (s StoredProfiles) LookupProfile(ctx context.Context, personID string) (*models.Profile, error) {
	p, err := s.Store.GetProfile(ctx, personID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
