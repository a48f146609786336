package repository

import (
	"context"
	"database/sql"
	"fmt"

	"ssemi/internal/domain/model"
)

type AuditRepository interface {
	Insert(ctx context.Context, entry *model.AuditEntry) error
	List(ctx context.Context) ([]*model.AuditEntry, error)
}

type pgAuditRepository struct {
	db *sql.DB
}

func NewPgAuditRepository(db *sql.DB) AuditRepository {
	return &pgAuditRepository{db: db}
}

func (r *pgAuditRepository) Insert(ctx context.Context, entry *model.AuditEntry) error {
	query := `INSERT INTO bitacora (id_usuario_fk, accion, descripcion, tabla_afectada, id_registro_afectado)
	          VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, query,
		entry.UsuarioID, entry.Accion, entry.Descripcion, entry.TablaAfectada, entry.RegistroAfectadoID,
	)
	if err != nil {
		return fmt.Errorf("pgAuditRepository.Insert: %w", err)
	}
	return nil
}

func (r *pgAuditRepository) List(ctx context.Context) ([]*model.AuditEntry, error) {
	query := `SELECT id_bitacora, id_usuario_fk, accion, descripcion, tabla_afectada,
	              id_registro_afectado, fecha_accion
	          FROM bitacora ORDER BY fecha_accion DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgAuditRepository.List: %w", err)
	}
	defer rows.Close()

	var entries []*model.AuditEntry
	for rows.Next() {
		entry := &model.AuditEntry{}
		if err := rows.Scan(&entry.ID, &entry.UsuarioID, &entry.Accion, &entry.Descripcion,
			&entry.TablaAfectada, &entry.RegistroAfectadoID, &entry.FechaAccion); err != nil {
			return nil, fmt.Errorf("pgAuditRepository.List scan: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
