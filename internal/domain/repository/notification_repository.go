package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ssemi/internal/domain/model"
)

type NotificationRepository interface {
	Insert(ctx context.Context, n *model.Notificacion) error
	PendingByUser(ctx context.Context, usuarioID int) ([]*model.Notificacion, error)
	MarkRead(ctx context.Context, id int) error
	ExistsUnread(ctx context.Context, solicitudID, usuarioID int) (bool, error)
	ReminderCandidates(ctx context.Context, cutoff time.Time) ([]model.ReminderCandidate, error)
}

type pgNotificationRepository struct {
	db *sql.DB
}

func NewPgNotificationRepository(db *sql.DB) NotificationRepository {
	return &pgNotificationRepository{db: db}
}

func (r *pgNotificationRepository) Insert(ctx context.Context, n *model.Notificacion) error {
	query := `INSERT INTO notificacion (id_usuario_fk, mensaje, leida, solicitud_id_fk)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id_notificacion, fecha_envio`
	err := r.db.QueryRowContext(ctx, query, n.UsuarioID, n.Mensaje, n.Leida, n.SolicitudID).
		Scan(&n.ID, &n.FechaEnvio)
	if err != nil {
		return fmt.Errorf("pgNotificationRepository.Insert: %w", err)
	}
	return nil
}

func (r *pgNotificationRepository) PendingByUser(ctx context.Context, usuarioID int) ([]*model.Notificacion, error) {
	query := `SELECT id_notificacion, id_usuario_fk, mensaje, fecha_envio, leida, solicitud_id_fk
	          FROM notificacion
	          WHERE id_usuario_fk = $1 AND leida = FALSE
	          ORDER BY fecha_envio DESC`
	rows, err := r.db.QueryContext(ctx, query, usuarioID)
	if err != nil {
		return nil, fmt.Errorf("pgNotificationRepository.PendingByUser: %w", err)
	}
	defer rows.Close()

	var out []*model.Notificacion
	for rows.Next() {
		n := &model.Notificacion{}
		if err := rows.Scan(&n.ID, &n.UsuarioID, &n.Mensaje, &n.FechaEnvio, &n.Leida, &n.SolicitudID); err != nil {
			return nil, fmt.Errorf("pgNotificationRepository.PendingByUser scan: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *pgNotificationRepository) MarkRead(ctx context.Context, id int) error {
	query := `UPDATE notificacion SET leida = TRUE WHERE id_notificacion = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("pgNotificationRepository.MarkRead: %w", err)
	}
	return requireRow(res, "pgNotificationRepository.MarkRead")
}

func (r *pgNotificationRepository) ExistsUnread(ctx context.Context, solicitudID, usuarioID int) (bool, error) {
	query := `SELECT EXISTS (
	              SELECT 1 FROM notificacion
	              WHERE solicitud_id_fk = $1 AND id_usuario_fk = $2 AND leida = FALSE)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, solicitudID, usuarioID).Scan(&exists); err != nil {
		return false, fmt.Errorf("pgNotificationRepository.ExistsUnread: %w", err)
	}
	return exists, nil
}

// ReminderCandidates lists correction requests still pending past the
// cutoff, so the reminder worker can nudge their owners.
func (r *pgNotificationRepository) ReminderCandidates(ctx context.Context, cutoff time.Time) ([]model.ReminderCandidate, error) {
	query := `SELECT s.id_solicitud, s.id_usuario_fk, s.campo_a_modificar
	          FROM solicitudes_correccion s
	          WHERE s.estado_solicitud = $1 AND s.fecha_solicitud <= $2`
	rows, err := r.db.QueryContext(ctx, query, model.SolicitudPendiente, cutoff)
	if err != nil {
		return nil, fmt.Errorf("pgNotificationRepository.ReminderCandidates: %w", err)
	}
	defer rows.Close()

	var out []model.ReminderCandidate
	for rows.Next() {
		var c model.ReminderCandidate
		if err := rows.Scan(&c.SolicitudID, &c.UsuarioID, &c.Campo); err != nil {
			return nil, fmt.Errorf("pgNotificationRepository.ReminderCandidates scan: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
