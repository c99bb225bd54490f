package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/memeforge/internal/apperror"
	"github.com/sakif/memeforge/internal/model"
	"github.com/sakif/memeforge/internal/overlay"
	"github.com/sakif/memeforge/internal/repository"
)

// Compile-time interface check.
var _ repository.MemeRepository = (*DB)(nil)

const memeColumns = `id, template_id, template_name, template_image_url,
	overlay_elements, top_text, bottom_text,
	text_color, font_size, font_family, text_effect, text_align,
	image_url, image_ref, has_local_image,
	owner_id, owner_email, created_at, views, shares`

// Create inserts a meme, assigning its id and creation time. Overlay
// elements are serialized to JSON; the legacy text columns are left empty
// on new rows.
func (db *DB) Create(ctx context.Context, meme *model.MemeRecord) error {
	meme.ID = xid.New().String()
	meme.CreatedAt = time.Now().UTC()

	elements, err := json.Marshal(meme.Elements)
	if err != nil {
		return fmt.Errorf("sqlite: encoding overlay elements: %w", err)
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO memes (id, template_id, template_name, template_image_url,
			overlay_elements, text_color, font_size, font_family, text_effect, text_align,
			image_url, image_ref, has_local_image, owner_id, owner_email, created_at, views, shares)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, 0)`,
		meme.ID,
		meme.TemplateID,
		meme.TemplateName,
		meme.TemplateImageURL,
		string(elements),
		meme.TextColor,
		meme.FontSize,
		meme.FontFamily,
		meme.TextEffect,
		meme.TextAlign,
		meme.ImageURL,
		meme.ImageRef,
		meme.HasLocalImage,
		meme.OwnerID,
		meme.OwnerEmail,
		meme.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating meme: %w", err)
	}

	return nil
}

// ListByOwner returns the owner's memes newest first.
func (db *DB) ListByOwner(ctx context.Context, ownerID string) ([]model.MemeRecord, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+memeColumns+`
		 FROM memes
		 WHERE owner_id = ?
		 ORDER BY created_at DESC, id DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing memes: %w", err)
	}
	defer rows.Close()

	memes := make([]model.MemeRecord, 0, 16)
	for rows.Next() {
		meme, err := scanMeme(rows)
		if err != nil {
			return nil, err
		}
		memes = append(memes, *meme)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating memes: %w", err)
	}

	return memes, nil
}

func (db *DB) GetByID(ctx context.Context, id string) (*model.MemeRecord, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+memeColumns+` FROM memes WHERE id = ?`, id)

	meme, err := scanMeme(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("meme", id)
		}
		return nil, fmt.Errorf("sqlite: getting meme %s: %w", id, err)
	}
	return meme, nil
}

// Delete removes a meme, but only when the owner matches. A mismatched
// owner and a missing row both affect zero rows; GetByID disambiguates so
// the caller can tell forbidden from not-found.
func (db *DB) Delete(ctx context.Context, id, ownerID string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM memes WHERE id = ? AND owner_id = ?`,
		id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting meme %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		if _, err := db.GetByID(ctx, id); err != nil {
			return err // not found
		}
		return apperror.Forbidden("you can only delete your own memes")
	}

	return nil
}

func (db *DB) IncrementViews(ctx context.Context, id string) error {
	return db.increment(ctx, "views", id)
}

func (db *DB) IncrementShares(ctx context.Context, id string) error {
	return db.increment(ctx, "shares", id)
}

func (db *DB) increment(ctx context.Context, column, id string) error {
	// column is one of two literals supplied by the methods above, never
	// user input.
	result, err := db.conn.ExecContext(ctx,
		fmt.Sprintf(`UPDATE memes SET %s = %s + 1 WHERE id = ?`, column, column),
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: incrementing %s for meme %s: %w", column, id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("meme", id)
	}

	return nil
}

// scanner covers both sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanMeme reads one row. Rows written by the original two-slot schema
// carry top_text/bottom_text and no overlay_elements JSON; those are
// upgraded to the canonical element shape here, once, at read time.
func scanMeme(s scanner) (*model.MemeRecord, error) {
	var (
		meme             model.MemeRecord
		elementsJSON     string
		topText, botText string
	)

	err := s.Scan(
		&meme.ID,
		&meme.TemplateID,
		&meme.TemplateName,
		&meme.TemplateImageURL,
		&elementsJSON,
		&topText,
		&botText,
		&meme.TextColor,
		&meme.FontSize,
		&meme.FontFamily,
		&meme.TextEffect,
		&meme.TextAlign,
		&meme.ImageURL,
		&meme.ImageRef,
		&meme.HasLocalImage,
		&meme.OwnerID,
		&meme.OwnerEmail,
		&meme.CreatedAt,
		&meme.Views,
		&meme.Shares,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("sqlite: scanning meme row: %w", err)
	}

	switch {
	case elementsJSON != "" && elementsJSON != "null":
		if err := json.Unmarshal([]byte(elementsJSON), &meme.Elements); err != nil {
			return nil, fmt.Errorf("sqlite: decoding overlay elements for meme %s: %w", meme.ID, err)
		}
	case topText != "" || botText != "":
		meme.Elements = overlay.FromLegacyPair(topText, botText)
	}

	return &meme, nil
}
