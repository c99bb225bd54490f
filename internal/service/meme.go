// Package service holds the business logic between handlers and storage.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sakif/memeforge/internal/apperror"
	"github.com/sakif/memeforge/internal/model"
	"github.com/sakif/memeforge/internal/repository"
)

// OversizeThreshold is the largest rendered image kept inline on the
// record. Bigger payloads move to the blob store and the record carries a
// reference instead.
const OversizeThreshold = 256 * 1024

// BlobStore is the slice of the blob package the service needs.
type BlobStore interface {
	Put(data []byte) (string, error)
	Get(id string) ([]byte, error)
	Delete(id string) error
}

// MemeService saves, lists, and deletes memes. Real identities write to
// the main store; the demo identity writes to its own local store behind
// the same interface, so nothing demo mode does touches real data.
type MemeService struct {
	store  repository.MemeRepository
	demo   repository.MemeRepository
	blobs  BlobStore
	logger *slog.Logger
}

func NewMemeService(store, demo repository.MemeRepository, blobs BlobStore, logger *slog.Logger) *MemeService {
	return &MemeService{store: store, demo: demo, blobs: blobs, logger: logger}
}

func (s *MemeService) repoFor(identity model.Identity) repository.MemeRepository {
	if identity.IsDemo() {
		return s.demo
	}
	return s.store
}

// Create validates and persists a meme for the identity. Oversized inline
// images are spilled to the blob store before the record is written; the
// returned record always has the image resolved back inline.
func (s *MemeService) Create(ctx context.Context, identity model.Identity, meme *model.MemeRecord) (*model.MemeRecord, error) {
	if identity.ID == "" {
		return nil, apperror.Unauthorized("sign in to save memes")
	}
	if meme.TemplateName == "" && meme.TemplateID == "" {
		return nil, apperror.ValidationFailed("template", "a meme needs a template")
	}

	meme.OwnerID = identity.ID
	meme.OwnerEmail = identity.Email

	inline := meme.ImageURL
	if len(inline) > OversizeThreshold {
		ref, err := s.blobs.Put([]byte(inline))
		if err != nil {
			return nil, err
		}
		meme.ImageRef = ref
		meme.HasLocalImage = true
		meme.ImageURL = ""
		s.logger.Info("meme image spilled to blob store",
			slog.String("ref", ref),
			slog.Int("size", len(inline)),
		)
	}

	if err := s.repoFor(identity).Create(ctx, meme); err != nil {
		return nil, err
	}

	// Hand back the inline image regardless of where it was written.
	if meme.HasLocalImage {
		meme.ImageURL = inline
	}
	return meme, nil
}

// ListByOwner returns the identity's memes newest first, with blob-backed
// images resolved inline. A missing blob empties the image rather than
// failing the whole listing.
func (s *MemeService) ListByOwner(ctx context.Context, identity model.Identity) ([]model.MemeRecord, error) {
	if identity.ID == "" {
		return nil, apperror.Unauthorized("sign in to view saved memes")
	}

	memes, err := s.repoFor(identity).ListByOwner(ctx, identity.ID)
	if err != nil {
		return nil, err
	}

	for i := range memes {
		if !memes[i].HasLocalImage || memes[i].ImageRef == "" {
			continue
		}
		data, err := s.blobs.Get(memes[i].ImageRef)
		if err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				s.logger.Warn("meme image blob missing",
					slog.String("meme", memes[i].ID),
					slog.String("ref", memes[i].ImageRef),
				)
				continue
			}
			return nil, err
		}
		memes[i].ImageURL = string(data)
	}

	return memes, nil
}

// Remove deletes a meme the identity owns. Ownership matches on the stored
// owner id, or on the owner email as a fallback for records written before
// stable ids. Anything else is forbidden.
func (s *MemeService) Remove(ctx context.Context, identity model.Identity, memeID string) error {
	if identity.ID == "" {
		return apperror.Unauthorized("sign in to delete memes")
	}

	repo := s.repoFor(identity)
	meme, err := repo.GetByID(ctx, memeID)
	if err != nil {
		return err
	}

	owns := meme.OwnerID == identity.ID ||
		(meme.OwnerEmail != "" && meme.OwnerEmail == identity.Email)
	if !owns {
		return apperror.Forbidden("you can only delete your own memes")
	}

	if err := repo.Delete(ctx, memeID, meme.OwnerID); err != nil {
		return err
	}

	if meme.ImageRef != "" {
		if err := s.blobs.Delete(meme.ImageRef); err != nil {
			s.logger.Warn("orphaned meme image blob",
				slog.String("ref", meme.ImageRef),
				slog.String("error", err.Error()),
			)
		}
	}

	return nil
}

// RecordView bumps the view counter.
func (s *MemeService) RecordView(ctx context.Context, identity model.Identity, memeID string) error {
	return s.repoFor(identity).IncrementViews(ctx, memeID)
}

// RecordShare bumps the share counter.
func (s *MemeService) RecordShare(ctx context.Context, identity model.Identity, memeID string) error {
	return s.repoFor(identity).IncrementShares(ctx, memeID)
}
