package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/sakif/memeforge/internal/apperror"
	"github.com/sakif/memeforge/internal/blob"
	"github.com/sakif/memeforge/internal/model"
	"github.com/sakif/memeforge/internal/repository"
)

// memoryRepo is a hand-written in-memory MemeRepository for service tests.
// It mirrors the sqlite implementation's contract: owner-scoped deletes,
// newest first listings, NotFound for missing rows.
type memoryRepo struct {
	memes  []model.MemeRecord
	nextID int
}

var _ repository.MemeRepository = (*memoryRepo)(nil)

func (r *memoryRepo) Create(ctx context.Context, meme *model.MemeRecord) error {
	r.nextID++
	meme.ID = "meme-" + string(rune('a'+r.nextID-1))
	r.memes = append(r.memes, *meme)
	return nil
}

func (r *memoryRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.MemeRecord, error) {
	var out []model.MemeRecord
	for i := len(r.memes) - 1; i >= 0; i-- {
		if r.memes[i].OwnerID == ownerID {
			out = append(out, r.memes[i])
		}
	}
	return out, nil
}

func (r *memoryRepo) GetByID(ctx context.Context, id string) (*model.MemeRecord, error) {
	for _, m := range r.memes {
		if m.ID == id {
			meme := m
			return &meme, nil
		}
	}
	return nil, apperror.NotFound("meme", id)
}

func (r *memoryRepo) Delete(ctx context.Context, id, ownerID string) error {
	for i, m := range r.memes {
		if m.ID == id && m.OwnerID == ownerID {
			r.memes = append(r.memes[:i], r.memes[i+1:]...)
			return nil
		}
	}
	for _, m := range r.memes {
		if m.ID == id {
			return apperror.Forbidden("you can only delete your own memes")
		}
	}
	return apperror.NotFound("meme", id)
}

func (r *memoryRepo) IncrementViews(ctx context.Context, id string) error {
	for i := range r.memes {
		if r.memes[i].ID == id {
			r.memes[i].Views++
			return nil
		}
	}
	return apperror.NotFound("meme", id)
}

func (r *memoryRepo) IncrementShares(ctx context.Context, id string) error {
	for i := range r.memes {
		if r.memes[i].ID == id {
			r.memes[i].Shares++
			return nil
		}
	}
	return apperror.NotFound("meme", id)
}

func newTestService(t *testing.T) (*MemeService, *memoryRepo, *memoryRepo) {
	t.Helper()
	blobs, err := blob.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("blob.NewStore: %v", err)
	}
	store := &memoryRepo{}
	demo := &memoryRepo{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewMemeService(store, demo, blobs, logger), store, demo
}

func owner() model.Identity {
	return model.Identity{ID: "user-1", Email: "alex@example.com", Kind: model.KindReal}
}

func TestCreate_RequiresIdentityAndTemplate(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, model.Identity{}, &model.MemeRecord{TemplateName: "Drake"})
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}

	_, err = svc.Create(ctx, owner(), &model.MemeRecord{})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestCreate_StampsOwnership(t *testing.T) {
	svc, store, _ := newTestService(t)

	meme, err := svc.Create(context.Background(), owner(), &model.MemeRecord{
		TemplateName: "Drake",
		ImageURL:     "data:image/png;base64,tiny",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if meme.OwnerID != "user-1" || meme.OwnerEmail != "alex@example.com" {
		t.Errorf("ownership not stamped: %q / %q", meme.OwnerID, meme.OwnerEmail)
	}
	if len(store.memes) != 1 {
		t.Fatalf("expected 1 stored meme, got %d", len(store.memes))
	}
	if store.memes[0].HasLocalImage {
		t.Error("small image should stay inline, not spill to the blob store")
	}
}

func TestCreate_OversizeImageRoundTrips(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	big := "data:image/png;base64," + strings.Repeat("A", OversizeThreshold)
	meme, err := svc.Create(ctx, owner(), &model.MemeRecord{
		TemplateName: "Drake",
		ImageURL:     big,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Caller still sees the image inline.
	if meme.ImageURL != big {
		t.Error("Create should resolve the image back inline")
	}

	// The stored row carries only the reference.
	stored := store.memes[0]
	if stored.ImageURL != "" {
		t.Error("oversized image should not be stored inline")
	}
	if !stored.HasLocalImage || stored.ImageRef == "" {
		t.Errorf("expected a blob reference, got %+v", stored)
	}

	// Listing resolves the blob bit-for-bit.
	listed, err := svc.ListByOwner(ctx, owner())
	if err != nil {
		t.Fatalf("ListByOwner() error = %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected 1 meme, got %d", len(listed))
	}
	if listed[0].ImageURL != big {
		t.Error("blob-backed image did not round-trip")
	}
}

func TestRemove_OwnershipMatrix(t *testing.T) {
	cases := []struct {
		name     string
		identity model.Identity
		wantErr  error
	}{
		{"owner by id", model.Identity{ID: "user-1", Email: "other@example.com", Kind: model.KindReal}, nil},
		{"owner by email", model.Identity{ID: "other-id", Email: "alex@example.com", Kind: model.KindReal}, nil},
		{"stranger", model.Identity{ID: "other-id", Email: "other@example.com", Kind: model.KindReal}, apperror.ErrForbidden},
		{"anonymous", model.Identity{}, apperror.ErrUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _, _ := newTestService(t)
			ctx := context.Background()

			meme, err := svc.Create(ctx, owner(), &model.MemeRecord{TemplateName: "Drake"})
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}

			err = svc.Remove(ctx, tc.identity, meme.ID)
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("Remove() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestRemove_CleansUpBlob(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	big := strings.Repeat("B", OversizeThreshold+1)
	meme, err := svc.Create(ctx, owner(), &model.MemeRecord{
		TemplateName: "Drake",
		ImageURL:     big,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	ref := store.memes[0].ImageRef

	if err := svc.Remove(ctx, owner(), meme.ID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := svc.blobs.Get(ref); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("expected the blob to be deleted, got %v", err)
	}
}

func TestDemoIdentityUsesDemoStore(t *testing.T) {
	svc, store, demo := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, model.DemoIdentity(), &model.MemeRecord{TemplateName: "Drake"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if len(store.memes) != 0 {
		t.Error("demo memes must not reach the real store")
	}
	if len(demo.memes) != 1 {
		t.Errorf("expected 1 demo meme, got %d", len(demo.memes))
	}

	// And the demo user's listing comes from the demo store.
	listed, err := svc.ListByOwner(ctx, model.DemoIdentity())
	if err != nil {
		t.Fatalf("ListByOwner() error = %v", err)
	}
	if len(listed) != 1 {
		t.Errorf("expected 1 listed demo meme, got %d", len(listed))
	}
}

func TestCounters(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	meme, err := svc.Create(ctx, owner(), &model.MemeRecord{TemplateName: "Drake"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := svc.RecordView(ctx, owner(), meme.ID); err != nil {
		t.Fatalf("RecordView() error = %v", err)
	}
	if err := svc.RecordShare(ctx, owner(), meme.ID); err != nil {
		t.Fatalf("RecordShare() error = %v", err)
	}
	if store.memes[0].Views != 1 || store.memes[0].Shares != 1 {
		t.Errorf("counters = %d views, %d shares", store.memes[0].Views, store.memes[0].Shares)
	}
}
