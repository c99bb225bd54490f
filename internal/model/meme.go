package model

import "time"

// MemeRecord is the canonical persisted shape of a finished meme.
//
// Identity is the store-assigned ID (an xid; in demo mode the local store
// assigns it the same way). OwnerID must match the authenticated identity
// that created the record — deletion is permitted only when the requester's
// id or email matches the stored owner fields.
//
// ImageURL holds the rendered image inline (a data URL) for small images.
// Oversized payloads are moved to the keyed blob store: ImageURL is cleared,
// ImageRef holds the blob id, and HasLocalImage is set. The service resolves
// the indirection symmetrically on read, so callers above the service layer
// only ever see ImageURL populated.
type MemeRecord struct {
	ID               string           `json:"id"`
	TemplateID       string           `json:"templateId"`
	TemplateName     string           `json:"templateName"`
	TemplateImageURL string           `json:"templateImageUrl"`
	Elements         []OverlayElement `json:"overlayElements"`
	TextColor        string           `json:"textColor,omitempty"`
	FontSize         float64          `json:"fontSize,omitempty"`
	FontFamily       string           `json:"fontFamily,omitempty"`
	TextEffect       string           `json:"textEffect,omitempty"`
	TextAlign        string           `json:"textAlign,omitempty"`
	ImageURL         string           `json:"imageUrl,omitempty"`
	ImageRef         string           `json:"imageRef,omitempty"`
	HasLocalImage    bool             `json:"hasLocalImage,omitempty"`
	OwnerID          string           `json:"ownerUserId"`
	OwnerEmail       string           `json:"ownerEmail,omitempty"`
	CreatedAt        time.Time        `json:"createdAt"`
	Views            int64            `json:"viewCount"`
	Shares           int64            `json:"shareCount"`
}
