package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ssemi/internal/common"
	"ssemi/internal/domain/model"
)

type MessageRepository interface {
	Create(ctx context.Context, msg *model.Message) error
	FindByID(ctx context.Context, id int) (*model.Message, error)
	Inbox(ctx context.Context, usuarioID, rol int) ([]*model.Message, error)
	Sent(ctx context.Context, usuarioID int) ([]*model.Message, error)
	MarkRead(ctx context.Context, id int) error
	MarkInboxRead(ctx context.Context, rol int) error
}

const messageColumns = `m.id, m.remitente_id, m.destino_id, m.destino_rol, m.respuesta_a_id,
	m.asunto, m.contenido, m.fecha_envio, m.leido,
	CONCAT(u.primer_nombre, ' ', u.primer_apellido)`

type pgMessageRepository struct {
	db *sql.DB
}

func NewPgMessageRepository(db *sql.DB) MessageRepository {
	return &pgMessageRepository{db: db}
}

func scanMessage(row interface{ Scan(...interface{}) error }) (*model.Message, error) {
	msg := &model.Message{}
	err := row.Scan(
		&msg.ID, &msg.RemitenteID, &msg.DestinoID, &msg.DestinoRol, &msg.RespuestaAID,
		&msg.Asunto, &msg.Contenido, &msg.FechaEnvio, &msg.Leido, &msg.RemitenteNombre,
	)
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func (r *pgMessageRepository) Create(ctx context.Context, msg *model.Message) error {
	query := `INSERT INTO mensajes (remitente_id, destino_id, destino_rol, respuesta_a_id, asunto, contenido)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id, fecha_envio`
	err := r.db.QueryRowContext(ctx, query,
		msg.RemitenteID, msg.DestinoID, msg.DestinoRol, msg.RespuestaAID, msg.Asunto, msg.Contenido,
	).Scan(&msg.ID, &msg.FechaEnvio)
	if err != nil {
		return fmt.Errorf("pgMessageRepository.Create: %w", err)
	}
	return nil
}

func (r *pgMessageRepository) FindByID(ctx context.Context, id int) (*model.Message, error) {
	query := `SELECT ` + messageColumns + `
	          FROM mensajes m
	          JOIN usuario u ON u.id_usuario = m.remitente_id
	          WHERE m.id = $1`
	msg, err := scanMessage(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgMessageRepository.FindByID: %w", err)
	}
	return msg, nil
}

// Inbox returns messages addressed to the user's role or to the user directly.
func (r *pgMessageRepository) Inbox(ctx context.Context, usuarioID, rol int) ([]*model.Message, error) {
	query := `SELECT ` + messageColumns + `
	          FROM mensajes m
	          JOIN usuario u ON u.id_usuario = m.remitente_id
	          WHERE m.destino_rol = $1 OR m.destino_id = $2
	          ORDER BY m.fecha_envio DESC`
	return r.queryMessages(ctx, query, rol, usuarioID)
}

func (r *pgMessageRepository) Sent(ctx context.Context, usuarioID int) ([]*model.Message, error) {
	query := `SELECT ` + messageColumns + `
	          FROM mensajes m
	          JOIN usuario u ON u.id_usuario = m.remitente_id
	          WHERE m.remitente_id = $1
	          ORDER BY m.fecha_envio DESC`
	return r.queryMessages(ctx, query, usuarioID)
}

func (r *pgMessageRepository) queryMessages(ctx context.Context, query string, args ...interface{}) ([]*model.Message, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgMessageRepository.queryMessages: %w", err)
	}
	defer rows.Close()

	var msgs []*model.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("pgMessageRepository.queryMessages scan: %w", err)
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

func (r *pgMessageRepository) MarkRead(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE mensajes SET leido = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgMessageRepository.MarkRead: %w", err)
	}
	return requireRow(res, "pgMessageRepository.MarkRead")
}

// MarkInboxRead marks all unread role-addressed messages as read. Listing the
// inbox counts as reading them, same as the original behavior.
func (r *pgMessageRepository) MarkInboxRead(ctx context.Context, rol int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE mensajes SET leido = TRUE WHERE destino_rol = $1 AND leido = FALSE`, rol)
	if err != nil {
		return fmt.Errorf("pgMessageRepository.MarkInboxRead: %w", err)
	}
	return nil
}
