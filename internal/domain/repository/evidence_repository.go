package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"ssemi/internal/common"
	"ssemi/internal/domain/model"
)

type EvidenceRepository interface {
	Create(ctx context.Context, ev *model.Evidencia) error
	FindByID(ctx context.Context, id int) (*model.Evidencia, error)
	List(ctx context.Context, usuarioID int) ([]*model.Evidencia, error)
	ListByEstados(ctx context.Context, estados ...string) ([]*model.Evidencia, error)
	Update(ctx context.Context, ev *model.Evidencia) error
	SetEstado(ctx context.Context, id int, estado string) error
	Delete(ctx context.Context, id int) error
	InsertHistorial(ctx context.Context, evidenciaID, instructorID int) error
	HistorialByInstructor(ctx context.Context, instructorID int) ([]model.CargaHistorial, error)
	DeleteHistorial(ctx context.Context, evidenciaID int) error
	ListCategorias(ctx context.Context) ([]model.Categoria, error)
}

const evidenceColumns = `id_evidencia, titulo, descripcion, id_categoria_fk, archivos,
	fecha_evidencia, formulario, estado_evidencia, id_usuario_fk, reportes_id_reporte`

type pgEvidenceRepository struct {
	db *sql.DB
}

func NewPgEvidenceRepository(db *sql.DB) EvidenceRepository {
	return &pgEvidenceRepository{db: db}
}

// archivos and formulario live in jsonb columns.
func scanEvidencia(row interface{ Scan(...interface{}) error }) (*model.Evidencia, error) {
	ev := &model.Evidencia{}
	var archivos, formulario []byte
	err := row.Scan(
		&ev.ID, &ev.Titulo, &ev.Descripcion, &ev.CategoriaID, &archivos,
		&ev.FechaEvidencia, &formulario, &ev.Estado, &ev.UsuarioID, &ev.ReporteID,
	)
	if err != nil {
		return nil, err
	}
	if len(archivos) > 0 {
		if err := json.Unmarshal(archivos, &ev.Archivos); err != nil {
			return nil, fmt.Errorf("scanEvidencia archivos: %w", err)
		}
	}
	if len(formulario) > 0 {
		if err := json.Unmarshal(formulario, &ev.Formulario); err != nil {
			return nil, fmt.Errorf("scanEvidencia formulario: %w", err)
		}
	}
	return ev, nil
}

func (r *pgEvidenceRepository) Create(ctx context.Context, ev *model.Evidencia) error {
	archivos, err := json.Marshal(ev.Archivos)
	if err != nil {
		return fmt.Errorf("pgEvidenceRepository.Create archivos: %w", err)
	}
	formulario, err := json.Marshal(ev.Formulario)
	if err != nil {
		return fmt.Errorf("pgEvidenceRepository.Create formulario: %w", err)
	}
	query := `INSERT INTO evidencia
	              (titulo, descripcion, id_categoria_fk, archivos, formulario, estado_evidencia, id_usuario_fk, reportes_id_reporte)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id_evidencia, fecha_evidencia`
	err = r.db.QueryRowContext(ctx, query,
		ev.Titulo, ev.Descripcion, ev.CategoriaID, archivos, formulario, ev.Estado, ev.UsuarioID, ev.ReporteID,
	).Scan(&ev.ID, &ev.FechaEvidencia)
	if err != nil {
		return fmt.Errorf("pgEvidenceRepository.Create: %w", err)
	}
	return nil
}

func (r *pgEvidenceRepository) FindByID(ctx context.Context, id int) (*model.Evidencia, error) {
	query := `SELECT ` + evidenceColumns + ` FROM evidencia WHERE id_evidencia = $1`
	ev, err := scanEvidencia(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgEvidenceRepository.FindByID: %w", err)
	}
	return ev, nil
}

func (r *pgEvidenceRepository) List(ctx context.Context, usuarioID int) ([]*model.Evidencia, error) {
	query := `SELECT ` + evidenceColumns + `
	          FROM evidencia
	          WHERE ($1 = 0 OR id_usuario_fk = $1)
	          ORDER BY fecha_evidencia DESC`
	return r.queryEvidencias(ctx, query, usuarioID)
}

func (r *pgEvidenceRepository) ListByEstados(ctx context.Context, estados ...string) ([]*model.Evidencia, error) {
	query := `SELECT ` + evidenceColumns + `
	          FROM evidencia
	          WHERE estado_evidencia = ANY($1)
	          ORDER BY fecha_evidencia DESC`
	return r.queryEvidencias(ctx, query, estados)
}

func (r *pgEvidenceRepository) queryEvidencias(ctx context.Context, query string, args ...interface{}) ([]*model.Evidencia, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgEvidenceRepository.queryEvidencias: %w", err)
	}
	defer rows.Close()

	var evs []*model.Evidencia
	for rows.Next() {
		ev, err := scanEvidencia(rows)
		if err != nil {
			return nil, fmt.Errorf("pgEvidenceRepository.queryEvidencias scan: %w", err)
		}
		evs = append(evs, ev)
	}
	return evs, rows.Err()
}

func (r *pgEvidenceRepository) Update(ctx context.Context, ev *model.Evidencia) error {
	archivos, err := json.Marshal(ev.Archivos)
	if err != nil {
		return fmt.Errorf("pgEvidenceRepository.Update archivos: %w", err)
	}
	formulario, err := json.Marshal(ev.Formulario)
	if err != nil {
		return fmt.Errorf("pgEvidenceRepository.Update formulario: %w", err)
	}
	query := `UPDATE evidencia
	          SET titulo = $1, descripcion = $2, id_categoria_fk = $3, archivos = $4,
	              formulario = $5, estado_evidencia = $6
	          WHERE id_evidencia = $7`
	res, err := r.db.ExecContext(ctx, query,
		ev.Titulo, ev.Descripcion, ev.CategoriaID, archivos, formulario, ev.Estado, ev.ID,
	)
	if err != nil {
		return fmt.Errorf("pgEvidenceRepository.Update: %w", err)
	}
	return requireRow(res, "pgEvidenceRepository.Update")
}

func (r *pgEvidenceRepository) SetEstado(ctx context.Context, id int, estado string) error {
	query := `UPDATE evidencia SET estado_evidencia = $1 WHERE id_evidencia = $2`
	res, err := r.db.ExecContext(ctx, query, estado, id)
	if err != nil {
		return fmt.Errorf("pgEvidenceRepository.SetEstado: %w", err)
	}
	return requireRow(res, "pgEvidenceRepository.SetEstado")
}

func (r *pgEvidenceRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM evidencia WHERE id_evidencia = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("pgEvidenceRepository.Delete: %w", err)
	}
	return requireRow(res, "pgEvidenceRepository.Delete")
}

func (r *pgEvidenceRepository) InsertHistorial(ctx context.Context, evidenciaID, instructorID int) error {
	query := `INSERT INTO historial_carga (id_evidencia, id_instructor) VALUES ($1, $2)`
	if _, err := r.db.ExecContext(ctx, query, evidenciaID, instructorID); err != nil {
		return fmt.Errorf("pgEvidenceRepository.InsertHistorial: %w", err)
	}
	return nil
}

func (r *pgEvidenceRepository) HistorialByInstructor(ctx context.Context, instructorID int) ([]model.CargaHistorial, error) {
	query := `SELECT h.id_historial, h.id_evidencia, h.id_instructor, h.fecha_carga,
	              e.titulo, e.descripcion, e.estado_evidencia, e.archivos
	          FROM historial_carga h
	          JOIN evidencia e ON e.id_evidencia = h.id_evidencia
	          WHERE h.id_instructor = $1
	          ORDER BY h.fecha_carga DESC`
	rows, err := r.db.QueryContext(ctx, query, instructorID)
	if err != nil {
		return nil, fmt.Errorf("pgEvidenceRepository.HistorialByInstructor: %w", err)
	}
	defer rows.Close()

	var out []model.CargaHistorial
	for rows.Next() {
		var h model.CargaHistorial
		var archivos []byte
		if err := rows.Scan(&h.ID, &h.EvidenciaID, &h.InstructorID, &h.FechaCarga,
			&h.Titulo, &h.Descripcion, &h.Estado, &archivos); err != nil {
			return nil, fmt.Errorf("pgEvidenceRepository.HistorialByInstructor scan: %w", err)
		}
		if len(archivos) > 0 {
			if err := json.Unmarshal(archivos, &h.Archivos); err != nil {
				return nil, fmt.Errorf("pgEvidenceRepository.HistorialByInstructor archivos: %w", err)
			}
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *pgEvidenceRepository) DeleteHistorial(ctx context.Context, evidenciaID int) error {
	query := `DELETE FROM historial_carga WHERE id_evidencia = $1`
	if _, err := r.db.ExecContext(ctx, query, evidenciaID); err != nil {
		return fmt.Errorf("pgEvidenceRepository.DeleteHistorial: %w", err)
	}
	return nil
}

func (r *pgEvidenceRepository) ListCategorias(ctx context.Context) ([]model.Categoria, error) {
	query := `SELECT id_categoria, nombre_categoria, descripcion FROM categoria ORDER BY nombre_categoria`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgEvidenceRepository.ListCategorias: %w", err)
	}
	defer rows.Close()

	var out []model.Categoria
	for rows.Next() {
		var c model.Categoria
		if err := rows.Scan(&c.ID, &c.Nombre, &c.Descripcion); err != nil {
			return nil, fmt.Errorf("pgEvidenceRepository.ListCategorias scan: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
