package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/eternalmoments/backend/internal/modules/model"
	"github.com/eternalmoments/backend/internal/modules/repo"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EmailSender delivers one HTML email.
type EmailSender interface {
	Send(ctx context.Context, toName, toEmail, subject, html string) error
}

// SMSSender delivers one SMS, optionally with an MMS image.
type SMSSender interface {
	Send(ctx context.Context, toPhone, body, mediaURL string) error
}

// EventPublisher emits domain events for downstream consumers.
// *mq.Publisher satisfies it.
type EventPublisher interface {
	PublishJSON(ctx context.Context, routingKey string, body any) error
}

const (
	sweepLockKey = "notifications:sweep:lock"
	sweepLockTTL = 5 * time.Minute

	smsCharLimit = 800

	releasedRoutingKey = "capsule.released"
)

// E.164, with or without the leading plus.
var phonePattern = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)

type NotificationService interface {
	Schedule(ctx context.Context, in ScheduleInput) (*model.ScheduledNotification, error)
	RunSweep(ctx context.Context, today time.Time) (*SweepSummary, error)
}

type notificationService struct {
	r        repo.NotificationRepo
	capsules repo.CapsuleRepo
	media    repo.MediaRepo
	email    EmailSender
	sms      SMSSender
	events   EventPublisher
	rdb      *redis.Client
	log      *zap.Logger

	detailsBaseURL string
}

func NewNotificationService(
	r repo.NotificationRepo,
	capsules repo.CapsuleRepo,
	media repo.MediaRepo,
	email EmailSender,
	sms SMSSender,
	events EventPublisher,
	rdb *redis.Client,
	log *zap.Logger,
	detailsBaseURL string,
) NotificationService {
	return &notificationService{
		r:              r,
		capsules:       capsules,
		media:          media,
		email:          email,
		sms:            sms,
		events:         events,
		rdb:            rdb,
		log:            log,
		detailsBaseURL: strings.TrimSuffix(detailsBaseURL, "/"),
	}
}

type ScheduleInput struct {
	CapsuleID        uuid.UUID
	Contacts         []model.ContactSnapshot
	NotificationType model.NotificationType
}

// Schedule freezes the capsule's renderable fields and the contact list
// into a pending notification row. Later capsule edits do not change
// what a pending notification will say: what was promised to be sent is
// what gets sent.
func (s *notificationService) Schedule(ctx context.Context, in ScheduleInput) (*model.ScheduledNotification, error) {
	if len(in.Contacts) == 0 {
		return nil, &ValidationError{Missing: []string{"contacts"}}
	}
	switch in.NotificationType {
	case model.NotificationEmail, model.NotificationText, model.NotificationBoth:
	default:
		return nil, &ValidationError{Missing: []string{"notification_type"}}
	}

	capsule, err := s.capsules.GetByID(ctx, in.CapsuleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCapsuleNotFound
		}
		return nil, err
	}

	payload, err := s.buildPayload(ctx, capsule)
	if err != nil {
		return nil, err
	}

	row := &model.ScheduledNotification{
		CapsuleID:        capsule.ID,
		Contacts:         datatypes.NewJSONType(in.Contacts),
		NotificationType: in.NotificationType,
		Payload:          datatypes.NewJSONType(*payload),
		Sent:             false,
	}
	if err := s.r.Create(ctx, row); err != nil {
		return nil, err
	}
	return row, nil
}

func (s *notificationService) buildPayload(ctx context.Context, capsule *model.Capsule) (*model.CapsulePayload, error) {
	linked, err := s.media.ListLinked(ctx, repo.LinkCapsule, capsule.ID)
	if err != nil {
		return nil, err
	}

	payload := &model.CapsulePayload{
		CapsuleID:      capsule.ID,
		Title:          capsule.Title,
		Description:    capsule.Description,
		DetailsPageURL: fmt.Sprintf("%s/capsules/%s", s.detailsBaseURL, capsule.ID),
	}
	for _, m := range linked {
		switch m.MediaType {
		case model.MediaTypePhoto:
			if payload.ImageURL == "" {
				payload.ImageURL = m.URL
			}
		case model.MediaTypeVideo:
			if payload.VideoURL == "" {
				payload.VideoURL = m.URL
			}
		}
	}
	return payload, nil
}

type SweepSummary struct {
	Processed int `json:"processed"`
	Sent      int `json:"sent"`
	Skipped   int `json:"skipped"`
}

// RunSweep dispatches every pending notification whose capsule releases
// today. Eligibility is judged against the capsule's CURRENT release
// date, not the snapshot, so a rescheduled capsule fires on its new
// date, and a non-matching row simply stays pending for a later run.
// A row is claimed (sent=false -> true, conditional) before any send;
// overlapping sweeps therefore cannot double-send.
func (s *notificationService) RunSweep(ctx context.Context, today time.Time) (*SweepSummary, error) {
	summary := &SweepSummary{}

	// Whole-pass overlap guard. The per-row claim is the correctness
	// mechanism; the lock just keeps two cron fires from duplicating the
	// scan work.
	if s.rdb != nil {
		ok, err := s.rdb.SetNX(ctx, sweepLockKey, time.Now().UnixNano(), sweepLockTTL).Result()
		if err != nil {
			s.log.Warn("sweep lock unavailable, proceeding on row claims only", zap.Error(err))
		} else if !ok {
			s.log.Info("sweep already running, skipping this pass")
			return summary, nil
		} else {
			defer s.rdb.Del(context.WithoutCancel(ctx), sweepLockKey)
		}
	}

	pending, err := s.r.ListUnsent(ctx)
	if err != nil {
		return nil, err
	}

	for _, row := range pending {
		summary.Processed++

		capsule, err := s.capsules.GetByID(ctx, row.CapsuleID)
		if err != nil {
			s.log.Warn("sweep: capsule lookup failed, leaving row pending",
				zap.String("notification_id", row.ID.String()),
				zap.String("capsule_id", row.CapsuleID.String()),
				zap.Error(err))
			summary.Skipped++
			continue
		}

		if !releasesOn(capsule, today) {
			summary.Skipped++
			continue
		}

		claimed, err := s.r.Claim(ctx, row.ID, time.Now())
		if err != nil {
			s.log.Error("sweep: claim failed",
				zap.String("notification_id", row.ID.String()), zap.Error(err))
			summary.Skipped++
			continue
		}
		if !claimed {
			// Another sweep got there first.
			summary.Skipped++
			continue
		}

		s.dispatch(ctx, row)
		summary.Sent++

		if s.events != nil {
			if err := s.events.PublishJSON(ctx, releasedRoutingKey, map[string]any{
				"capsule_id":      row.CapsuleID,
				"notification_id": row.ID,
				"released_at":     time.Now().UTC(),
			}); err != nil {
				s.log.Warn("sweep: release event publish failed",
					zap.String("capsule_id", row.CapsuleID.String()), zap.Error(err))
			}
		}
	}

	return summary, nil
}

// dispatch renders and sends one claimed row. Per-recipient failures
// are logged and never block the remaining recipients; the row is
// already claimed, so it will not be retried.
func (s *notificationService) dispatch(ctx context.Context, row *model.ScheduledNotification) {
	payload := row.Payload.Data()
	contacts := row.Contacts.Data()

	wantEmail := row.NotificationType == model.NotificationEmail || row.NotificationType == model.NotificationBoth
	wantSMS := row.NotificationType == model.NotificationText || row.NotificationType == model.NotificationBoth

	for _, c := range contacts {
		if wantEmail && c.Email != "" {
			subject := fmt.Sprintf("Hi %s, You're Invited to View a Capsule: %s",
				nameOrThere(c.Name), titleOrDefault(payload.Title))
			if err := s.email.Send(ctx, c.Name, c.Email, subject, renderEmailHTML(payload)); err != nil {
				s.log.Error("email send failed",
					zap.String("notification_id", row.ID.String()),
					zap.String("to", c.Email), zap.Error(err))
			}
		}

		if wantSMS && c.Phone != "" {
			if !phonePattern.MatchString(c.Phone) {
				s.log.Warn("skipping SMS recipient: invalid phone number",
					zap.String("notification_id", row.ID.String()),
					zap.String("to", c.Phone))
				continue
			}
			body := truncateMessage(fmt.Sprintf(
				"Hi %s, You're Invited to View a Capsule: %s. %s Celebrate and relive the memories here: %s",
				nameOrThere(c.Name), payload.Title, payload.Description, payload.DetailsPageURL,
			), smsCharLimit)
			if err := s.sms.Send(ctx, c.Phone, body, payload.ImageURL); err != nil {
				s.log.Error("SMS send failed",
					zap.String("notification_id", row.ID.String()),
					zap.String("to", c.Phone), zap.Error(err))
			}
		}
	}
}

// releasesOn reports whether the capsule's release date falls on the
// given day, judged in the capsule's own timezone.
func releasesOn(c *model.Capsule, today time.Time) bool {
	release := c.ReleaseDateLocal()
	now := today.In(release.Location())
	ry, rm, rd := release.Date()
	ty, tm, td := now.Date()
	return ry == ty && rm == tm && rd == td
}

func renderEmailHTML(p model.CapsulePayload) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #ddd; border-radius: 8px; background-color: #f9f9f9;">`)
	b.WriteString(`<h1 style="text-align: center; color: #19747E;">The Capsule is Open &ndash; Don&rsquo;t Miss It!</h1>`)
	if p.ImageURL != "" {
		b.WriteString(fmt.Sprintf(`<div style="display: flex; justify-content: center; padding: 20px 0;"><img src="%s" alt="Primary Image" style="width: 100%%; max-width: 600px; height: auto; object-fit: cover; border-radius: 8px;" /></div>`, p.ImageURL))
	}
	description := p.Description
	if description == "" {
		description = "Discover special memories curated just for you!"
	}
	b.WriteString(fmt.Sprintf(`<p style="font-size: 16px; color: #333; line-height: 1.5; margin-bottom: 20px;">%s</p>`, description))
	b.WriteString(fmt.Sprintf(`<a href="%s" style="display: block; width: 200px; margin: 20px auto; text-align: center; padding: 10px; background-color: #19747E; color: white; text-decoration: none; border-radius: 5px; font-weight: bold;">View Capsule</a>`, p.DetailsPageURL))
	b.WriteString(`</div>`)
	return b.String()
}

func truncateMessage(msg string, limit int) string {
	runes := []rune(msg)
	if len(runes) <= limit {
		return msg
	}
	return string(runes[:limit-3]) + "..."
}

func nameOrThere(name string) string {
	if name == "" {
		return "there"
	}
	return name
}

func titleOrDefault(title string) string {
	if title == "" {
		return "Special Memories"
	}
	return title
}
