package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ssemi/internal/common"
	"ssemi/internal/domain/model"
)

type GradeRepository interface {
	CreateCalificacion(ctx context.Context, c *model.Calificacion) error
	UpdateCalificacion(ctx context.Context, c *model.Calificacion) error
	FindEnProgreso(ctx context.Context, usuarioID int) (*model.Calificacion, error)
	InsertDetalle(ctx context.Context, d *model.DetalleCalificacion) error
	UpdateDetalle(ctx context.Context, d *model.DetalleCalificacion) error
	FindDetalle(ctx context.Context, calificacionID, evidenciaID int) (*model.DetalleCalificacion, error)
	PartialDetalle(ctx context.Context, evidenciaID int) (*model.DetalleCalificacion, error)
	ListCalificaciones(ctx context.Context) ([]*model.Calificacion, error)
	Resultados(ctx context.Context, instructorID int, desde, hasta *time.Time) ([]model.ResultadoRow, error)
}

type pgGradeRepository struct {
	db *sql.DB
}

func NewPgGradeRepository(db *sql.DB) GradeRepository {
	return &pgGradeRepository{db: db}
}

func (r *pgGradeRepository) CreateCalificacion(ctx context.Context, c *model.Calificacion) error {
	query := `INSERT INTO calificacion (id_usuario_fk, puntaje_total, estado)
	          VALUES ($1, $2, $3)
	          RETURNING id_calificacion, fecha_calificacion`
	err := r.db.QueryRowContext(ctx, query, c.UsuarioID, c.PuntajeTotal, c.Estado).
		Scan(&c.ID, &c.FechaCalificacion)
	if err != nil {
		return fmt.Errorf("pgGradeRepository.CreateCalificacion: %w", err)
	}
	return nil
}

func (r *pgGradeRepository) UpdateCalificacion(ctx context.Context, c *model.Calificacion) error {
	query := `UPDATE calificacion SET puntaje_total = $1, estado = $2 WHERE id_calificacion = $3`
	res, err := r.db.ExecContext(ctx, query, c.PuntajeTotal, c.Estado, c.ID)
	if err != nil {
		return fmt.Errorf("pgGradeRepository.UpdateCalificacion: %w", err)
	}
	return requireRow(res, "pgGradeRepository.UpdateCalificacion")
}

func (r *pgGradeRepository) FindEnProgreso(ctx context.Context, usuarioID int) (*model.Calificacion, error) {
	query := `SELECT id_calificacion, id_usuario_fk, puntaje_total, fecha_calificacion, estado
	          FROM calificacion
	          WHERE id_usuario_fk = $1 AND estado = $2
	          ORDER BY fecha_calificacion DESC
	          LIMIT 1`
	c := &model.Calificacion{}
	err := r.db.QueryRowContext(ctx, query, usuarioID, model.CalificacionEnProgreso).
		Scan(&c.ID, &c.UsuarioID, &c.PuntajeTotal, &c.FechaCalificacion, &c.Estado)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgGradeRepository.FindEnProgreso: %w", err)
	}
	return c, nil
}

func (r *pgGradeRepository) InsertDetalle(ctx context.Context, d *model.DetalleCalificacion) error {
	query := `INSERT INTO detalle_calificacion (id_calificacion_fk, id_evidencia_fk, puntaje, observaciones)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id_detalle`
	err := r.db.QueryRowContext(ctx, query, d.CalificacionID, d.EvidenciaID, d.Puntaje, d.Observaciones).
		Scan(&d.ID)
	if err != nil {
		return fmt.Errorf("pgGradeRepository.InsertDetalle: %w", err)
	}
	return nil
}

func (r *pgGradeRepository) UpdateDetalle(ctx context.Context, d *model.DetalleCalificacion) error {
	query := `UPDATE detalle_calificacion SET puntaje = $1, observaciones = $2 WHERE id_detalle = $3`
	res, err := r.db.ExecContext(ctx, query, d.Puntaje, d.Observaciones, d.ID)
	if err != nil {
		return fmt.Errorf("pgGradeRepository.UpdateDetalle: %w", err)
	}
	return requireRow(res, "pgGradeRepository.UpdateDetalle")
}

func scanDetalle(row interface{ Scan(...interface{}) error }) (*model.DetalleCalificacion, error) {
	d := &model.DetalleCalificacion{}
	err := row.Scan(&d.ID, &d.CalificacionID, &d.EvidenciaID, &d.Puntaje, &d.Observaciones)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *pgGradeRepository) FindDetalle(ctx context.Context, calificacionID, evidenciaID int) (*model.DetalleCalificacion, error) {
	query := `SELECT id_detalle, id_calificacion_fk, id_evidencia_fk, puntaje, observaciones
	          FROM detalle_calificacion
	          WHERE id_calificacion_fk = $1 AND id_evidencia_fk = $2`
	d, err := scanDetalle(r.db.QueryRowContext(ctx, query, calificacionID, evidenciaID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgGradeRepository.FindDetalle: %w", err)
	}
	return d, nil
}

// PartialDetalle returns the saved draft for an evidence, if any grading
// session over it is still en_progreso.
func (r *pgGradeRepository) PartialDetalle(ctx context.Context, evidenciaID int) (*model.DetalleCalificacion, error) {
	query := `SELECT d.id_detalle, d.id_calificacion_fk, d.id_evidencia_fk, d.puntaje, d.observaciones
	          FROM detalle_calificacion d
	          JOIN calificacion c ON c.id_calificacion = d.id_calificacion_fk
	          WHERE d.id_evidencia_fk = $1 AND c.estado = $2
	          ORDER BY c.fecha_calificacion DESC
	          LIMIT 1`
	d, err := scanDetalle(r.db.QueryRowContext(ctx, query, evidenciaID, model.CalificacionEnProgreso))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgGradeRepository.PartialDetalle: %w", err)
	}
	return d, nil
}

func (r *pgGradeRepository) ListCalificaciones(ctx context.Context) ([]*model.Calificacion, error) {
	query := `SELECT id_calificacion, id_usuario_fk, puntaje_total, fecha_calificacion, estado
	          FROM calificacion
	          ORDER BY fecha_calificacion DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgGradeRepository.ListCalificaciones: %w", err)
	}
	defer rows.Close()

	var out []*model.Calificacion
	for rows.Next() {
		c := &model.Calificacion{}
		if err := rows.Scan(&c.ID, &c.UsuarioID, &c.PuntajeTotal, &c.FechaCalificacion, &c.Estado); err != nil {
			return nil, fmt.Errorf("pgGradeRepository.ListCalificaciones scan: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *pgGradeRepository) Resultados(ctx context.Context, instructorID int, desde, hasta *time.Time) ([]model.ResultadoRow, error) {
	query := `SELECT d.id_detalle, e.titulo, CONCAT(u.primer_nombre, ' ', u.primer_apellido),
	              c.id_usuario_fk, d.puntaje, COALESCE(d.observaciones, ''), c.fecha_calificacion
	          FROM detalle_calificacion d
	          JOIN calificacion c ON c.id_calificacion = d.id_calificacion_fk
	          JOIN evidencia e ON e.id_evidencia = d.id_evidencia_fk
	          JOIN usuario u ON u.id_usuario = c.id_usuario_fk
	          WHERE c.estado <> $1
	            AND ($2 = 0 OR c.id_usuario_fk = $2)
	            AND ($3::timestamptz IS NULL OR c.fecha_calificacion >= $3)
	            AND ($4::timestamptz IS NULL OR c.fecha_calificacion <= $4)
	          ORDER BY c.fecha_calificacion DESC`
	rows, err := r.db.QueryContext(ctx, query, model.CalificacionEnProgreso, instructorID, desde, hasta)
	if err != nil {
		return nil, fmt.Errorf("pgGradeRepository.Resultados: %w", err)
	}
	defer rows.Close()

	var out []model.ResultadoRow
	for rows.Next() {
		var row model.ResultadoRow
		if err := rows.Scan(&row.IDDetalle, &row.Evidencia, &row.Instructor,
			&row.EvaluadorID, &row.Puntaje, &row.Observaciones, &row.Fecha); err != nil {
			return nil, fmt.Errorf("pgGradeRepository.Resultados scan: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
