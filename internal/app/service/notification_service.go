package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ssemi/internal/common"
	"ssemi/internal/domain/model"
	"ssemi/internal/domain/repository"
)

// A notification message may carry a direct link after this separator.
const notificationURLSeparator = "|URL:"

const notificationMaxLen = 1000

// NotificationService generates and serves pending-request reminders.
type NotificationService struct {
	notifications repository.NotificationRepository
	after         time.Duration
}

func NewNotificationService(notifications repository.NotificationRepository, after time.Duration) *NotificationService {
	return &NotificationService{notifications: notifications, after: after}
}

// NotificationView is a pending notification with the link split out of the
// stored message.
type NotificationView struct {
	ID            int       `json:"id_notificacion"`
	Mensaje       string    `json:"mensaje"`
	EnlaceDirecto string    `json:"enlace_directo"`
	FechaEnvio    time.Time `json:"fecha_envio"`
}

// GenerateReminders creates one unread notification per correction request
// that has sat pending longer than the configured window. Requests that
// already have an unread reminder are skipped, so each run is idempotent.
func (s *NotificationService) GenerateReminders(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-s.after)
	candidates, err := s.notifications.ReminderCandidates(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, c := range candidates {
		exists, err := s.notifications.ExistsUnread(ctx, c.SolicitudID, c.UsuarioID)
		if err != nil {
			return created, err
		}
		if exists {
			continue
		}
		mensaje := fmt.Sprintf("Recordatorio: tu solicitud de corrección de '%s' sigue pendiente de revisión.%s/solicitudes/%d",
			c.Campo, notificationURLSeparator, c.SolicitudID)
		if len(mensaje) > notificationMaxLen {
			mensaje = mensaje[:notificationMaxLen]
		}
		n := &model.Notificacion{UsuarioID: c.UsuarioID, Mensaje: mensaje, SolicitudID: c.SolicitudID}
		if err := s.notifications.Insert(ctx, n); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

// Pending lists a user's unread notifications.
func (s *NotificationService) Pending(ctx context.Context, usuarioID int) ([]NotificationView, error) {
	notis, err := s.notifications.PendingByUser(ctx, usuarioID)
	if err != nil {
		return nil, err
	}
	views := make([]NotificationView, 0, len(notis))
	for _, n := range notis {
		view := NotificationView{ID: n.ID, Mensaje: n.Mensaje, FechaEnvio: n.FechaEnvio}
		if i := strings.Index(n.Mensaje, notificationURLSeparator); i >= 0 {
			view.Mensaje = n.Mensaje[:i]
			view.EnlaceDirecto = n.Mensaje[i+len(notificationURLSeparator):]
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, id int) error {
	err := s.notifications.MarkRead(ctx, id)
	if errors.Is(err, common.ErrNotFound) {
		return common.ErrNotificationNotFound
	}
	return err
}
