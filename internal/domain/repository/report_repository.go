package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ssemi/internal/common"
	"ssemi/internal/domain/model"
)

type ReportRepository interface {
	Create(ctx context.Context, rpt *model.Report) error
	FindByID(ctx context.Context, id int) (*model.Report, error)
	List(ctx context.Context) ([]*model.Report, error)
}

type pgReportRepository struct {
	db *sql.DB
}

func NewPgReportRepository(db *sql.DB) ReportRepository {
	return &pgReportRepository{db: db}
}

func (r *pgReportRepository) Create(ctx context.Context, rpt *model.Report) error {
	query := `INSERT INTO reportes (titulo, descripcion, tipo_reporte, fecha_generacion, id_usuario_accion)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id_reporte`
	err := r.db.QueryRowContext(ctx, query,
		rpt.Titulo, rpt.Descripcion, rpt.TipoReporte, rpt.FechaGeneracion, rpt.UsuarioAccion,
	).Scan(&rpt.ID)
	if err != nil {
		return fmt.Errorf("pgReportRepository.Create: %w", err)
	}
	return nil
}

func (r *pgReportRepository) FindByID(ctx context.Context, id int) (*model.Report, error) {
	query := `SELECT id_reporte, titulo, descripcion, tipo_reporte, fecha_generacion, id_usuario_accion
	          FROM reportes WHERE id_reporte = $1`
	rpt := &model.Report{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&rpt.ID, &rpt.Titulo, &rpt.Descripcion, &rpt.TipoReporte, &rpt.FechaGeneracion, &rpt.UsuarioAccion,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgReportRepository.FindByID: %w", err)
	}
	return rpt, nil
}

func (r *pgReportRepository) List(ctx context.Context) ([]*model.Report, error) {
	query := `SELECT id_reporte, titulo, descripcion, tipo_reporte, fecha_generacion, id_usuario_accion
	          FROM reportes ORDER BY fecha_generacion DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgReportRepository.List: %w", err)
	}
	defer rows.Close()

	var reports []*model.Report
	for rows.Next() {
		rpt := &model.Report{}
		if err := rows.Scan(&rpt.ID, &rpt.Titulo, &rpt.Descripcion, &rpt.TipoReporte, &rpt.FechaGeneracion, &rpt.UsuarioAccion); err != nil {
			return nil, fmt.Errorf("pgReportRepository.List scan: %w", err)
		}
		reports = append(reports, rpt)
	}
	return reports, rows.Err()
}
