package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ssemi/internal/common"
	"ssemi/internal/domain/model"
	"ssemi/internal/domain/repository"
)

// A graded evidence is approved from this score up.
const approvalThreshold = 50

// GradeService runs the evaluator flow: browsing gradable evidences, saving
// partial grades and submitting final scores.
type GradeService struct {
	grades    repository.GradeRepository
	evidences repository.EvidenceRepository
	users     repository.UserRepository
	audit     *AuditService
}

func NewGradeService(grades repository.GradeRepository, evidences repository.EvidenceRepository, users repository.UserRepository, audit *AuditService) *GradeService {
	return &GradeService{grades: grades, evidences: evidences, users: users, audit: audit}
}

type GradeInput struct {
	Puntaje       float64 `json:"puntaje" validate:"min=0,max=100"`
	Observaciones string  `json:"observaciones" validate:"max=1000"`
}

type PartialGrade struct {
	Puntaje     float64 `json:"puntaje"`
	Observacion string  `json:"observacion"`
}

// Pending lists evidences still waiting for a final grade.
func (s *GradeService) Pending(ctx context.Context) ([]*model.Evidencia, error) {
	return s.evidences.ListByEstados(ctx, model.EvidenciaCargada, model.EvidenciaBorrador)
}

// SavePartial stores a draft grade without closing the session. The session
// is the owner's en_progreso calificacion, created on first save.
func (s *GradeService) SavePartial(ctx context.Context, evidenciaID int, in GradeInput) error {
	ev, err := s.evidences.FindByID(ctx, evidenciaID)
	if err != nil {
		return err
	}
	calificacion, err := s.sessionFor(ctx, ev.UsuarioID)
	if err != nil {
		return err
	}
	return s.upsertDetalle(ctx, calificacion.ID, evidenciaID, in)
}

// LoadPartial returns the saved draft for an evidence, or nil when none
// exists.
func (s *GradeService) LoadPartial(ctx context.Context, evidenciaID int) (*PartialGrade, error) {
	d, err := s.grades.PartialDetalle(ctx, evidenciaID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	partial := &PartialGrade{Puntaje: d.Puntaje}
	if d.Observaciones != nil {
		partial.Observacion = *d.Observaciones
	}
	return partial, nil
}

// Grade submits the final score for an evidence: the owner's grading session
// is resolved to aprobado or rechazado and the evidence marked evaluated.
func (s *GradeService) Grade(ctx context.Context, evaluadorID, evidenciaID int, in GradeInput) (*model.Calificacion, error) {
	ev, err := s.evidences.FindByID(ctx, evidenciaID)
	if err != nil {
		return nil, err
	}
	if ev.Estado == model.EvidenciaEvaluada {
		return nil, common.ErrEvidenceEvaluated
	}

	calificacion, err := s.sessionFor(ctx, ev.UsuarioID)
	if err != nil {
		return nil, err
	}
	if err := s.upsertDetalle(ctx, calificacion.ID, evidenciaID, in); err != nil {
		return nil, err
	}

	calificacion.PuntajeTotal = in.Puntaje
	if in.Puntaje >= approvalThreshold {
		calificacion.Estado = model.CalificacionAprobada
	} else {
		calificacion.Estado = model.CalificacionRechazada
	}
	if err := s.grades.UpdateCalificacion(ctx, calificacion); err != nil {
		return nil, err
	}
	if err := s.evidences.SetEstado(ctx, evidenciaID, model.EvidenciaEvaluada); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, evaluadorID, model.AccionCalificarEvidencia,
		fmt.Sprintf("Calificó evidencia %d con puntaje %.0f", evidenciaID, in.Puntaje),
		"calificacion", calificacion.ID)
	return calificacion, nil
}

// Results serves the evaluator's history screen. Only evaluators may see it.
func (s *GradeService) Results(ctx context.Context, rol, instructorID int, desde, hasta *time.Time) ([]model.ResultadoRow, error) {
	if rol != model.RolEvaluador {
		return nil, common.ErrEvaluatorOnly
	}
	return s.grades.Resultados(ctx, instructorID, desde, hasta)
}

func (s *GradeService) History(ctx context.Context) ([]*model.Calificacion, error) {
	return s.grades.ListCalificaciones(ctx)
}

func (s *GradeService) Instructores(ctx context.Context) ([]*model.User, error) {
	return s.users.ListByRol(ctx, model.RolInstructor)
}

func (s *GradeService) sessionFor(ctx context.Context, usuarioID int) (*model.Calificacion, error) {
	calificacion, err := s.grades.FindEnProgreso(ctx, usuarioID)
	if err == nil {
		return calificacion, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}
	calificacion = &model.Calificacion{UsuarioID: usuarioID, Estado: model.CalificacionEnProgreso}
	if err := s.grades.CreateCalificacion(ctx, calificacion); err != nil {
		return nil, err
	}
	return calificacion, nil
}

func (s *GradeService) upsertDetalle(ctx context.Context, calificacionID, evidenciaID int, in GradeInput) error {
	detalle, err := s.grades.FindDetalle(ctx, calificacionID, evidenciaID)
	switch {
	case err == nil:
		detalle.Puntaje = in.Puntaje
		detalle.Observaciones = optional(in.Observaciones)
		return s.grades.UpdateDetalle(ctx, detalle)
	case errors.Is(err, common.ErrNotFound):
		detalle = &model.DetalleCalificacion{
			CalificacionID: calificacionID,
			EvidenciaID:    evidenciaID,
			Puntaje:        in.Puntaje,
			Observaciones:  optional(in.Observaciones),
		}
		return s.grades.InsertDetalle(ctx, detalle)
	default:
		return err
	}
}
