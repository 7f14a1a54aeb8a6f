package repo

import (
	"context"
	"errors"
	"time"

	"github.com/eternalmoments/backend/internal/modules/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LinkKind selects which entity <-> media join table an operation
// targets. The linking algorithm is identical for both.
type LinkKind string

const (
	LinkCapsule LinkKind = "capsule"
	LinkMemory  LinkKind = "memory"
)

type MediaRepo interface {
	Create(ctx context.Context, m *model.MediaAsset) error
	GetByURL(ctx context.Context, url string) (*model.MediaAsset, error)
	GetOrCreateByURL(ctx context.Context, m *model.MediaAsset) (*model.MediaAsset, error)
	List(ctx context.Context, userID uuid.UUID, afterCreatedAt time.Time, afterID uuid.UUID, limit int) ([]*model.MediaAsset, error)

	ListLinked(ctx context.Context, kind LinkKind, entityID uuid.UUID) ([]*model.MediaAsset, error)
	InsertLinks(ctx context.Context, kind LinkKind, entityID uuid.UUID, mediaIDs []uuid.UUID) error
	DeleteLinks(ctx context.Context, kind LinkKind, entityID uuid.UUID, mediaIDs []uuid.UUID) error
}

type mediaRepo struct{ db *gorm.DB }

func NewMediaRepo(db *gorm.DB) MediaRepo {
	return &mediaRepo{db: db}
}

func (r *mediaRepo) Create(ctx context.Context, m *model.MediaAsset) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *mediaRepo) GetByURL(ctx context.Context, url string) (*model.MediaAsset, error) {
	var m model.MediaAsset
	err := r.db.WithContext(ctx).Where("url = ?", url).First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetOrCreateByURL returns the existing row for m.URL or inserts m.
// The unique index on url makes the insert race-safe: a losing insert
// falls back to reading the winner's row.
func (r *mediaRepo) GetOrCreateByURL(ctx context.Context, m *model.MediaAsset) (*model.MediaAsset, error) {
	var existing model.MediaAsset
	err := r.db.WithContext(ctx).Where("url = ?", m.URL).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if getErr := r.db.WithContext(ctx).Where("url = ?", m.URL).First(&existing).Error; getErr == nil {
			return &existing, nil
		}
		return nil, err
	}
	return m, nil
}

func (r *mediaRepo) List(ctx context.Context, userID uuid.UUID, afterCreatedAt time.Time, afterID uuid.UUID, limit int) ([]*model.MediaAsset, error) {
	q := r.db.WithContext(ctx).Where("media_bank.user_id = ?", userID)

	if !afterCreatedAt.IsZero() && afterID != uuid.Nil {
		q = q.Where(
			"(media_bank.created_at > ?) OR (media_bank.created_at = ? AND media_bank.id > ?)",
			afterCreatedAt, afterCreatedAt, afterID,
		)
	}

	var assets []*model.MediaAsset
	query := q.Order("media_bank.created_at ASC, media_bank.id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	return assets, query.Find(&assets).Error
}

func (r *mediaRepo) ListLinked(ctx context.Context, kind LinkKind, entityID uuid.UUID) ([]*model.MediaAsset, error) {
	joinTable, fk, err := linkTable(kind)
	if err != nil {
		return nil, err
	}

	var assets []*model.MediaAsset
	err = r.db.WithContext(ctx).
		Joins("JOIN "+joinTable+" ON "+joinTable+".media_id = media_bank.id").
		Where(joinTable+"."+fk+" = ?", entityID).
		Order("media_bank.created_at ASC, media_bank.id ASC").
		Find(&assets).Error
	if err != nil {
		return nil, err
	}
	return assets, nil
}

// InsertLinks inserts (entity, media) pairs, ignoring pairs that already
// exist. The composite primary key plus DO NOTHING keeps racing
// reconciles from ever duplicating a link.
func (r *mediaRepo) InsertLinks(ctx context.Context, kind LinkKind, entityID uuid.UUID, mediaIDs []uuid.UUID) error {
	if len(mediaIDs) == 0 {
		return nil
	}

	onConflict := clause.OnConflict{DoNothing: true}

	switch kind {
	case LinkCapsule:
		rows := make([]model.CapsuleMedia, 0, len(mediaIDs))
		for _, id := range mediaIDs {
			rows = append(rows, model.CapsuleMedia{CapsuleID: entityID, MediaID: id})
		}
		return r.db.WithContext(ctx).Clauses(onConflict).Create(&rows).Error
	case LinkMemory:
		rows := make([]model.MemoryMedia, 0, len(mediaIDs))
		for _, id := range mediaIDs {
			rows = append(rows, model.MemoryMedia{MemoryID: entityID, MediaID: id})
		}
		return r.db.WithContext(ctx).Clauses(onConflict).Create(&rows).Error
	default:
		return errors.New("unknown link kind: " + string(kind))
	}
}

// DeleteLinks removes the given pairs for this entity only. The
// media_bank rows stay; other entities may still reference them.
func (r *mediaRepo) DeleteLinks(ctx context.Context, kind LinkKind, entityID uuid.UUID, mediaIDs []uuid.UUID) error {
	if len(mediaIDs) == 0 {
		return nil
	}

	switch kind {
	case LinkCapsule:
		return r.db.WithContext(ctx).
			Where("capsule_id = ? AND media_id IN ?", entityID, mediaIDs).
			Delete(&model.CapsuleMedia{}).Error
	case LinkMemory:
		return r.db.WithContext(ctx).
			Where("memory_id = ? AND media_id IN ?", entityID, mediaIDs).
			Delete(&model.MemoryMedia{}).Error
	default:
		return errors.New("unknown link kind: " + string(kind))
	}
}

func linkTable(kind LinkKind) (table string, fk string, err error) {
	switch kind {
	case LinkCapsule:
		return "capsule_media", "capsule_id", nil
	case LinkMemory:
		return "memory_media", "memory_id", nil
	default:
		return "", "", errors.New("unknown link kind: " + string(kind))
	}
}
