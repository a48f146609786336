package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"ssemi/internal/common"
	"ssemi/internal/domain/model"
	"ssemi/internal/domain/repository"

	"github.com/gosimple/slug"
	"github.com/jung-kurt/gofpdf"
)

const (
	ReporteUsuarios    = "usuarios"
	ReporteSolicitudes = "solicitudes"
)

type ReportService struct {
	reports  repository.ReportRepository
	users    repository.UserRepository
	requests repository.CorrectionRequestRepository
	audit    *AuditService
}

func NewReportService(reports repository.ReportRepository, users repository.UserRepository, requests repository.CorrectionRequestRepository, audit *AuditService) *ReportService {
	return &ReportService{reports: reports, users: users, requests: requests, audit: audit}
}

type ReportCreate struct {
	Titulo      string `json:"titulo" validate:"required,max=200"`
	Descripcion string `json:"descripcion" validate:"max=500"`
	TipoReporte string `json:"tipo_reporte" validate:"required,oneof=usuarios solicitudes"`
}

func (s *ReportService) Create(ctx context.Context, usuarioID int, in ReportCreate) (*model.Report, error) {
	rpt := &model.Report{
		Titulo:          in.Titulo,
		Descripcion:     in.Descripcion,
		TipoReporte:     in.TipoReporte,
		FechaGeneracion: time.Now(),
		UsuarioAccion:   usuarioID,
	}
	if err := s.reports.Create(ctx, rpt); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, usuarioID, model.AccionCrearReporte,
		fmt.Sprintf("Creó reporte %s", rpt.Titulo), "reportes", rpt.ID)
	return rpt, nil
}

func (s *ReportService) List(ctx context.Context) ([]*model.Report, error) {
	return s.reports.List(ctx)
}

func (s *ReportService) Get(ctx context.Context, id int) (*model.Report, error) {
	return s.reports.FindByID(ctx, id)
}

func (s *ReportService) UserRows(ctx context.Context, nombre, regional string) ([]model.UserReportRow, error) {
	return s.users.ReportRows(ctx, nombre, regional)
}

func (s *ReportService) RequestRows(ctx context.Context, estado string) ([]model.RequestReportRow, error) {
	return s.requests.ReportRows(ctx, estado)
}

// Export renders a stored report's dataset as CSV or PDF. The filename is
// derived from the report title.
type Export struct {
	Filename    string
	ContentType string
	Data        []byte
}

func (s *ReportService) Export(ctx context.Context, id int, formato string) (*Export, error) {
	rpt, err := s.reports.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	header, rows, err := s.dataset(ctx, rpt.TipoReporte)
	if err != nil {
		return nil, err
	}

	name := slug.Make(rpt.Titulo)
	switch formato {
	case "csv":
		data, err := renderCSV(header, rows)
		if err != nil {
			return nil, err
		}
		return &Export{Filename: name + ".csv", ContentType: "text/csv", Data: data}, nil
	case "pdf":
		data, err := renderPDF(rpt.Titulo, header, rows)
		if err != nil {
			return nil, err
		}
		return &Export{Filename: name + ".pdf", ContentType: "application/pdf", Data: data}, nil
	default:
		return nil, fmt.Errorf("formato no soportado: %w", common.ErrBadRequest)
	}
}

func (s *ReportService) dataset(ctx context.Context, tipo string) ([]string, [][]string, error) {
	switch tipo {
	case ReporteUsuarios:
		users, err := s.users.ReportRows(ctx, "", "")
		if err != nil {
			return nil, nil, err
		}
		header := []string{"ID", "Nombre completo", "Documento", "Regional", "Estado"}
		rows := make([][]string, 0, len(users))
		for _, u := range users {
			estado := "Inactivo"
			if u.Estado {
				estado = "Activo"
			}
			rows = append(rows, []string{
				strconv.Itoa(u.ID), u.NombreCompleto,
				strconv.FormatInt(u.NumeroDocumento, 10), u.Regional, estado,
			})
		}
		return header, rows, nil
	case ReporteSolicitudes:
		reqs, err := s.requests.ReportRows(ctx, "")
		if err != nil {
			return nil, nil, err
		}
		header := []string{"ID", "Solicitante", "Campo", "Estado", "Fecha"}
		rows := make([][]string, 0, len(reqs))
		for _, r := range reqs {
			rows = append(rows, []string{
				strconv.Itoa(r.ID), r.Solicitante, r.CampoAModificar,
				r.EstadoSolicitud, r.FechaSolicitud.Format("2006-01-02"),
			})
		}
		return header, rows, nil
	default:
		return nil, nil, fmt.Errorf("tipo de reporte desconocido: %w", common.ErrBadRequest)
	}
}

func renderCSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("renderCSV: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("renderCSV: %w", err)
	}
	return buf.Bytes(), nil
}

func renderPDF(title string, header []string, rows [][]string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "Letter", "")
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, tr(title), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	colWidth := 196.0 / float64(len(header))
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for _, h := range header {
		pdf.CellFormat(colWidth, 8, tr(h), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range rows {
		for _, cell := range row {
			pdf.CellFormat(colWidth, 7, tr(cell), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("renderPDF: %w", err)
	}
	return buf.Bytes(), nil
}
