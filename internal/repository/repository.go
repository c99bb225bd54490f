// Package repository defines the storage interfaces. Services depend on
// these, not on SQLite, so tests can swap in mocks and demo mode can run
// on a separate store behind the same contract.
package repository

import (
	"context"

	"github.com/sakif/memeforge/internal/model"
)

type MemeRepository interface {
	Create(ctx context.Context, meme *model.MemeRecord) error
	// ListByOwner returns the owner's memes newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]model.MemeRecord, error)
	GetByID(ctx context.Context, id string) (*model.MemeRecord, error)
	// Delete removes a meme only when ownerID matches the stored owner.
	Delete(ctx context.Context, id, ownerID string) error
	IncrementViews(ctx context.Context, id string) error
	IncrementShares(ctx context.Context, id string) error
}

type UserRepository interface {
	// Upsert inserts the user or refreshes profile fields on conflict.
	Upsert(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}
