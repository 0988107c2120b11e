// Package store persists accounts and saved recommendations.
package store

import (
	"context"
	"errors"

	"fertadvisor/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicateKey = errors.New("duplicate key")
)

// ListFilter narrows a history listing. Zero Limit means DefaultLimit.
type ListFilter struct {
	CropType string
	Limit    int
	Offset   int
}

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

func (f ListFilter) limit() int {
	switch {
	case f.Limit <= 0:
		return DefaultLimit
	case f.Limit > MaxLimit:
		return MaxLimit
	default:
		return f.Limit
	}
}

// Store is implemented by Mongo and Memory.
type Store interface {
	CreateUser(ctx context.Context, u *models.User) error
	UserByEmail(ctx context.Context, email string) (models.User, error)
	UserByID(ctx context.Context, id primitive.ObjectID) (models.User, error)

	InsertRecommendation(ctx context.Context, rec *models.RecommendationRecord) error
	// ListRecommendations returns the owner's records newest first and the
	// total number matching the filter.
	ListRecommendations(ctx context.Context, owner primitive.ObjectID, f ListFilter) ([]models.RecommendationRecord, int64, error)
	GetRecommendation(ctx context.Context, owner, id primitive.ObjectID) (models.RecommendationRecord, error)
	DeleteRecommendation(ctx context.Context, owner, id primitive.ObjectID) error

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
