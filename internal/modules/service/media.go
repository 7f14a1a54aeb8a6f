package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/eternalmoments/backend/internal/infra/blob"
	"github.com/eternalmoments/backend/internal/modules/model"
	"github.com/eternalmoments/backend/internal/modules/repo"
	"github.com/eternalmoments/backend/internal/pkg/paging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BlobStore is the slice of blob.S3Deps the media service needs.
type BlobStore interface {
	UploadFormFile(ctx context.Context, key string, fh *multipart.FileHeader) (*blob.UploadedMeta, error)
	UploadBytes(ctx context.Context, key string, b []byte, contentType string) (*blob.UploadedMeta, error)
}

type MediaService interface {
	UploadAndRegister(ctx context.Context, in UploadMediaInput) (*model.MediaAsset, error)
	Register(ctx context.Context, in RegisterMediaInput) (*model.MediaAsset, error)
	Reconcile(ctx context.Context, in ReconcileInput) (*ReconcileResult, error)
	Linked(ctx context.Context, kind repo.LinkKind, entityID uuid.UUID) ([]*model.MediaAsset, error)
	List(ctx context.Context, in ListMediaInput) (*ListMediaOutput, error)
}

type mediaService struct {
	r    repo.MediaRepo
	blob BlobStore
	log  *zap.Logger
}

func NewMediaService(r repo.MediaRepo, b BlobStore, log *zap.Logger) MediaService {
	return &mediaService{r: r, blob: b, log: log}
}

type UploadMediaInput struct {
	UserID    uuid.UUID
	ProfileID *uuid.UUID
	File      *multipart.FileHeader
	KeyPrefix string // e.g. "uploads" or "media_bank"
	Meta      map[string]interface{}
}

// UploadAndRegister pushes the file to the blob store and catalogs it.
// The catalog is deduped by URL, so re-registering the same object is a
// read, not a second row.
func (s *mediaService) UploadAndRegister(ctx context.Context, in UploadMediaInput) (*model.MediaAsset, error) {
	prefix := in.KeyPrefix
	if prefix == "" {
		prefix = "uploads"
	}
	key := fmt.Sprintf("%s/%d_%s", prefix, time.Now().UnixMilli(), filepath.Base(in.File.Filename))

	meta, err := s.blob.UploadFormFile(ctx, key, in.File)
	if err != nil {
		return nil, err
	}

	return s.Register(ctx, RegisterMediaInput{
		UserID:    in.UserID,
		ProfileID: in.ProfileID,
		URL:       meta.URL,
		Name:      in.File.Filename,
		MediaType: mediaTypeFromMIME(sniffContentType(in.File, meta.ContentType), in.File.Filename),
		Meta:      in.Meta,
	})
}

// sniffContentType prefers the declared content type but falls back to
// content-based detection when the client sent nothing usable.
func sniffContentType(fh *multipart.FileHeader, declared string) string {
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	f, err := fh.Open()
	if err != nil {
		return declared
	}
	defer f.Close()
	m, err := mimetype.DetectReader(f)
	if err != nil {
		return declared
	}
	return m.String()
}

type RegisterMediaInput struct {
	UserID    uuid.UUID
	ProfileID *uuid.UUID
	URL       string
	Name      string
	MediaType model.MediaType
	Meta      map[string]interface{}
}

func (s *mediaService) Register(ctx context.Context, in RegisterMediaInput) (*model.MediaAsset, error) {
	asset := &model.MediaAsset{
		UserID:    in.UserID,
		ProfileID: in.ProfileID,
		URL:       strings.TrimSpace(in.URL),
		Name:      in.Name,
		MediaType: in.MediaType,
		Meta:      in.Meta,
	}
	return s.r.GetOrCreateByURL(ctx, asset)
}

type ReconcileInput struct {
	Kind       repo.LinkKind
	EntityID   uuid.UUID
	TargetURLs []string
	UserID     uuid.UUID
	ProfileID  *uuid.UUID
}

type ReconcileResult struct {
	Linked  []*model.MediaAsset `json:"linked"`
	Added   int                 `json:"added"`
	Removed int                 `json:"removed"`
	// Partial is set when some URLs were dropped (failed upload, failed
	// insert) while the rest of the reconciliation went through.
	Partial bool `json:"partial"`
}

// Reconcile makes the entity's linked media equal the target URL set:
// the minimal adds and removes, nothing else. Running it again with the
// same targets is a no-op. Media rows are shared by URL and are never
// deleted here, only unlinked.
func (s *mediaService) Reconcile(ctx context.Context, in ReconcileInput) (*ReconcileResult, error) {
	res := &ReconcileResult{}

	// Normalize and dedupe targets. Comparison is case-insensitive and
	// whitespace-trimmed; the first-seen original casing is what gets
	// stored.
	targets := make(map[string]string, len(in.TargetURLs)) // norm key -> stored URL
	var order []string
	for _, raw := range in.TargetURLs {
		stored := strings.TrimSpace(raw)
		if stored == "" {
			continue
		}

		// Inline data URLs are unuploaded local resources: push the bytes
		// to the blob store and reconcile against the resulting public
		// URL. A failed upload drops that one URL, not the whole call.
		if strings.HasPrefix(stored, "data:") {
			uploaded, err := s.resolveDataURL(ctx, stored)
			if err != nil {
				s.log.Warn("dropping unresolvable media target",
					zap.String("entity_id", in.EntityID.String()),
					zap.Error(err))
				res.Partial = true
				continue
			}
			stored = uploaded
		}

		key := normalizeURL(stored)
		if _, seen := targets[key]; seen {
			continue
		}
		targets[key] = stored
		order = append(order, key)
	}

	existing, err := s.r.ListLinked(ctx, in.Kind, in.EntityID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLinkQueryFailed, err)
	}

	existingByKey := make(map[string]*model.MediaAsset, len(existing))
	for _, a := range existing {
		existingByKey[normalizeURL(a.URL)] = a
	}

	// toAdd = target - existing
	var linked []*model.MediaAsset
	for _, a := range existing {
		if _, keep := targets[normalizeURL(a.URL)]; keep {
			linked = append(linked, a)
		}
	}
	for _, key := range order {
		if _, already := existingByKey[key]; already {
			continue
		}
		stored := targets[key]
		asset, err := s.r.GetOrCreateByURL(ctx, &model.MediaAsset{
			UserID:    in.UserID,
			ProfileID: in.ProfileID,
			URL:       stored,
			Name:      filepath.Base(stored),
			MediaType: mediaTypeFromURL(stored),
		})
		if err != nil {
			s.log.Warn("skipping media target: catalog insert failed",
				zap.String("url", stored), zap.Error(err))
			res.Partial = true
			continue
		}
		if err := s.r.InsertLinks(ctx, in.Kind, in.EntityID, []uuid.UUID{asset.ID}); err != nil {
			s.log.Warn("skipping media target: link insert failed",
				zap.String("url", stored), zap.Error(err))
			res.Partial = true
			continue
		}
		linked = append(linked, asset)
		res.Added++
	}

	// toRemove = existing - target
	var removeIDs []uuid.UUID
	for key, a := range existingByKey {
		if _, keep := targets[key]; !keep {
			removeIDs = append(removeIDs, a.ID)
		}
	}
	if len(removeIDs) > 0 {
		if err := s.r.DeleteLinks(ctx, in.Kind, in.EntityID, removeIDs); err != nil {
			s.log.Warn("stale media links left in place: delete failed",
				zap.String("entity_id", in.EntityID.String()), zap.Error(err))
			res.Partial = true
			// Put the not-removed assets back into the result set.
			for _, a := range existing {
				if _, keep := targets[normalizeURL(a.URL)]; !keep {
					linked = append(linked, a)
				}
			}
		} else {
			res.Removed = len(removeIDs)
		}
	}

	res.Linked = linked
	return res, nil
}

// Linked returns the entity's current media set in stable order.
func (s *mediaService) Linked(ctx context.Context, kind repo.LinkKind, entityID uuid.UUID) ([]*model.MediaAsset, error) {
	return s.r.ListLinked(ctx, kind, entityID)
}

type ListMediaInput struct {
	UserID uuid.UUID
	Limit  int
	Cursor string
}

type ListMediaOutput struct {
	Items      []*model.MediaAsset `json:"items"`
	NextCursor string              `json:"next_cursor,omitempty"`
	HasMore    bool                `json:"has_more"`
}

func (s *mediaService) List(ctx context.Context, in ListMediaInput) (*ListMediaOutput, error) {
	if in.Limit == 0 {
		items, err := s.r.List(ctx, in.UserID, time.Time{}, uuid.Nil, 0)
		if err != nil {
			return nil, err
		}
		return &ListMediaOutput{Items: items}, nil
	}

	var afterT time.Time
	var afterID uuid.UUID
	var err error
	if in.Cursor != "" {
		afterT, afterID, err = paging.DecodeCursor(in.Cursor)
		if err != nil {
			return nil, err
		}
	}

	// Query limit+1 is used to determine has_more
	items, err := s.r.List(ctx, in.UserID, afterT, afterID, in.Limit+1)
	if err != nil {
		return nil, err
	}

	out := &ListMediaOutput{Items: items}
	if len(items) > in.Limit {
		out.HasMore = true
		out.Items = items[:in.Limit]
		last := out.Items[len(out.Items)-1]
		out.NextCursor = paging.EncodeCursor(last.CreatedAt, last.ID)
	}
	return out, nil
}

// resolveDataURL uploads the payload of a data: URL and returns the
// resulting public URL.
func (s *mediaService) resolveDataURL(ctx context.Context, dataURL string) (string, error) {
	rest := strings.TrimPrefix(dataURL, "data:")
	semi := strings.Index(rest, ";base64,")
	if semi < 0 {
		return "", fmt.Errorf("unsupported data URL encoding")
	}
	contentType := rest[:semi]
	payload := rest[semi+len(";base64,"):]

	b, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("decode data URL: %w", err)
	}

	ext := extensionForMIME(contentType)
	key := fmt.Sprintf("uploads/%d_%s%s", time.Now().UnixMilli(), uuid.NewString()[:8], ext)
	meta, err := s.blob.UploadBytes(ctx, key, b, contentType)
	if err != nil {
		return "", err
	}
	return meta.URL, nil
}

func normalizeURL(u string) string {
	return strings.ToLower(strings.TrimSpace(u))
}

// mediaTypeFromMIME classifies by content type, mirroring the catalog's
// three buckets. Unknown non-image, non-video content counts as audio.
func mediaTypeFromMIME(contentType, filename string) model.MediaType {
	ct := contentType
	if ct == "" || ct == "application/octet-stream" {
		// Browser gave us nothing useful; classify by extension instead.
		return mediaTypeFromURL(filename)
	}
	switch {
	case strings.HasPrefix(ct, "image/"):
		return model.MediaTypePhoto
	case strings.HasPrefix(ct, "video/"):
		return model.MediaTypeVideo
	default:
		return model.MediaTypeAudio
	}
}

func mediaTypeFromURL(u string) model.MediaType {
	switch strings.ToLower(filepath.Ext(strings.TrimSpace(u))) {
	case ".mp4", ".mov", ".webm", ".avi", ".mkv":
		return model.MediaTypeVideo
	case ".mp3", ".wav", ".m4a", ".ogg", ".flac":
		return model.MediaTypeAudio
	default:
		return model.MediaTypePhoto
	}
}

func extensionForMIME(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "video/mp4":
		return ".mp4"
	case "audio/mpeg":
		return ".mp3"
	default:
		return ""
	}
}
