package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/lumio-edu/lumio-api/internal/dto"
	"github.com/lumio-edu/lumio-api/internal/models"
	"github.com/lumio-edu/lumio-api/internal/repository"
)

// ErrNotificationNotFound indicates the notification does not exist or belongs to another user.
var ErrNotificationNotFound = errors.New("notification not found")

// Notifier delivers in-app notifications to users.
type Notifier interface {
	Notify(ctx context.Context, userID uint, notificationType, message string) error
	NotifyClass(ctx context.Context, classID uint, notificationType, message string) error
}

// NotificationService exposes notification use cases.
type NotificationService interface {
	Notifier
	List(ctx context.Context, userID uint) ([]dto.NotificationResponse, error)
	MarkRead(ctx context.Context, id, userID uint) error
}

type notificationEvent struct {
	Source string    `json:"source"`
	UserID uint      `json:"user_id"`
	Type   string    `json:"type"`
	SentAt time.Time `json:"sent_at"`
}

type notificationService struct {
	notifications repository.NotificationRepository
	classes       repository.ClassRepository
	nats          *nats.Conn
	natsSubject   string
	sanitizer     *bluemonday.Policy
	logger        zerolog.Logger
	tracer        trace.Tracer
	nodeID        string
}

// NewNotificationService constructs a notification service. natsConn may be
// nil when no broker is configured.
func NewNotificationService(notifications repository.NotificationRepository, classes repository.ClassRepository, natsConn *nats.Conn, natsSubject string, logger zerolog.Logger) NotificationService {
	return &notificationService{
		notifications: notifications,
		classes:       classes,
		nats:          natsConn,
		natsSubject:   natsSubject,
		sanitizer:     bluemonday.StrictPolicy(),
		logger:        logger.With().Str("component", "notification_service").Logger(),
		tracer:        otel.Tracer("github.com/lumio-edu/lumio-api/internal/service/notification"),
		nodeID:        uuid.NewString(),
	}
}

func (s *notificationService) Notify(ctx context.Context, userID uint, notificationType, message string) error {
	cleanMessage := strings.TrimSpace(s.sanitizer.Sanitize(message))
	if cleanMessage == "" {
		return errors.New("notification message empty after sanitization")
	}

	spanCtx, span := s.tracer.Start(ctx, "notifications.publish", trace.WithAttributes(
		attribute.Int("notification.user_id", int(userID)),
		attribute.String("notification.type", notificationType),
	))
	defer span.End()

	notification := models.Notification{
		UserID:  userID,
		Type:    notificationType,
		Message: cleanMessage,
	}
	if err := s.notifications.Create(spanCtx, &notification); err != nil {
		span.RecordError(err)
		return err
	}

	if err := s.publishEvent(notification); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish notification event")
	}

	return nil
}

// NotifyClass fans a notification out to every student enrolled in the class.
func (s *notificationService) NotifyClass(ctx context.Context, classID uint, notificationType, message string) error {
	roster, err := s.classes.Roster(ctx, classID)
	if err != nil {
		return err
	}

	for _, student := range roster {
		if err := s.Notify(ctx, student.ID, notificationType, message); err != nil {
			s.logger.Warn().Err(err).Uint("student_id", student.ID).Msg("failed to notify student")
		}
	}
	return nil
}

func (s *notificationService) List(ctx context.Context, userID uint) ([]dto.NotificationResponse, error) {
	notifications, err := s.notifications.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewNotificationResponseSlice(notifications), nil
}

func (s *notificationService) MarkRead(ctx context.Context, id, userID uint) error {
	if err := s.notifications.MarkRead(ctx, id, userID); err != nil {
		if repository.IsNotFound(err) {
			return ErrNotificationNotFound
		}
		return err
	}
	return nil
}

func (s *notificationService) publishEvent(notification models.Notification) error {
	if s.nats == nil || s.natsSubject == "" {
		return nil
	}

	event := notificationEvent{
		Source: s.nodeID,
		UserID: notification.UserID,
		Type:   notification.Type,
		SentAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return s.nats.Publish(s.natsSubject, payload)
}
