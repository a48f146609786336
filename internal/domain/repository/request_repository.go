package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ssemi/internal/common"
	"ssemi/internal/domain/model"
)

type CorrectionRequestRepository interface {
	Create(ctx context.Context, req *model.CorrectionRequest) error
	FindByID(ctx context.Context, id int) (*model.CorrectionRequest, error)
	List(ctx context.Context) ([]*model.CorrectionRequest, error)
	ListByUser(ctx context.Context, usuarioID int) ([]*model.CorrectionRequest, error)
	Approve(ctx context.Context, id int) error
	Reject(ctx context.Context, id int, motivoRespuesta string) error
	ReportRows(ctx context.Context, estado string) ([]model.RequestReportRow, error)
}

const requestColumns = `s.id_solicitud, s.id_usuario_fk, s.campo_a_modificar, s.valor_actual,
	s.nuevo_valor, s.motivo, s.motivo_respuesta, s.estado_solicitud, s.fecha_solicitud,
	CONCAT(u.primer_nombre, ' ', u.primer_apellido)`

type pgRequestRepository struct {
	db *sql.DB
}

func NewPgRequestRepository(db *sql.DB) CorrectionRequestRepository {
	return &pgRequestRepository{db: db}
}

func scanRequest(row interface{ Scan(...interface{}) error }) (*model.CorrectionRequest, error) {
	req := &model.CorrectionRequest{}
	err := row.Scan(
		&req.ID, &req.UsuarioID, &req.CampoAModificar, &req.ValorActual,
		&req.NuevoValor, &req.Motivo, &req.MotivoRespuesta, &req.EstadoSolicitud,
		&req.FechaSolicitud, &req.SolicitanteNombre,
	)
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (r *pgRequestRepository) Create(ctx context.Context, req *model.CorrectionRequest) error {
	query := `INSERT INTO solicitudes_correccion
	              (id_usuario_fk, campo_a_modificar, valor_actual, nuevo_valor, motivo, estado_solicitud)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id_solicitud, fecha_solicitud`
	err := r.db.QueryRowContext(ctx, query,
		req.UsuarioID, req.CampoAModificar, req.ValorActual, req.NuevoValor, req.Motivo, req.EstadoSolicitud,
	).Scan(&req.ID, &req.FechaSolicitud)
	if err != nil {
		return fmt.Errorf("pgRequestRepository.Create: %w", err)
	}
	return nil
}

func (r *pgRequestRepository) FindByID(ctx context.Context, id int) (*model.CorrectionRequest, error) {
	query := `SELECT ` + requestColumns + `
	          FROM solicitudes_correccion s
	          JOIN usuario u ON u.id_usuario = s.id_usuario_fk
	          WHERE s.id_solicitud = $1`
	req, err := scanRequest(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgRequestRepository.FindByID: %w", err)
	}
	return req, nil
}

func (r *pgRequestRepository) List(ctx context.Context) ([]*model.CorrectionRequest, error) {
	query := `SELECT ` + requestColumns + `
	          FROM solicitudes_correccion s
	          JOIN usuario u ON u.id_usuario = s.id_usuario_fk
	          ORDER BY s.fecha_solicitud DESC`
	return r.queryRequests(ctx, query)
}

func (r *pgRequestRepository) ListByUser(ctx context.Context, usuarioID int) ([]*model.CorrectionRequest, error) {
	query := `SELECT ` + requestColumns + `
	          FROM solicitudes_correccion s
	          JOIN usuario u ON u.id_usuario = s.id_usuario_fk
	          WHERE s.id_usuario_fk = $1
	          ORDER BY s.fecha_solicitud DESC`
	return r.queryRequests(ctx, query, usuarioID)
}

func (r *pgRequestRepository) queryRequests(ctx context.Context, query string, args ...interface{}) ([]*model.CorrectionRequest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgRequestRepository.queryRequests: %w", err)
	}
	defer rows.Close()

	var reqs []*model.CorrectionRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("pgRequestRepository.queryRequests scan: %w", err)
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}

func (r *pgRequestRepository) Approve(ctx context.Context, id int) error {
	query := `UPDATE solicitudes_correccion SET estado_solicitud = $1 WHERE id_solicitud = $2`
	res, err := r.db.ExecContext(ctx, query, model.SolicitudAprobada, id)
	if err != nil {
		return fmt.Errorf("pgRequestRepository.Approve: %w", err)
	}
	return requireRow(res, "pgRequestRepository.Approve")
}

func (r *pgRequestRepository) Reject(ctx context.Context, id int, motivoRespuesta string) error {
	query := `UPDATE solicitudes_correccion SET estado_solicitud = $1, motivo_respuesta = $2
	          WHERE id_solicitud = $3`
	res, err := r.db.ExecContext(ctx, query, model.SolicitudRechazada, motivoRespuesta, id)
	if err != nil {
		return fmt.Errorf("pgRequestRepository.Reject: %w", err)
	}
	return requireRow(res, "pgRequestRepository.Reject")
}

func (r *pgRequestRepository) ReportRows(ctx context.Context, estado string) ([]model.RequestReportRow, error) {
	query := `SELECT s.id_solicitud, CONCAT(u.primer_nombre, ' ', u.primer_apellido),
	              s.campo_a_modificar, s.estado_solicitud, s.fecha_solicitud
	          FROM solicitudes_correccion s
	          JOIN usuario u ON u.id_usuario = s.id_usuario_fk
	          WHERE ($1 = '' OR s.estado_solicitud = $1)
	          ORDER BY s.fecha_solicitud DESC`
	rows, err := r.db.QueryContext(ctx, query, estado)
	if err != nil {
		return nil, fmt.Errorf("pgRequestRepository.ReportRows: %w", err)
	}
	defer rows.Close()

	var out []model.RequestReportRow
	for rows.Next() {
		var row model.RequestReportRow
		if err := rows.Scan(&row.ID, &row.Solicitante, &row.CampoAModificar, &row.EstadoSolicitud, &row.FechaSolicitud); err != nil {
			return nil, fmt.Errorf("pgRequestRepository.ReportRows scan: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
