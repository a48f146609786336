package service

import (
	"context"
	"testing"
	"time"

	"ssemi/internal/common"
	"ssemi/internal/domain/model"
	"ssemi/internal/domain/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGradeRepo struct {
	repository.GradeRepository
	calificaciones map[int]*model.Calificacion
	detalles       map[int]*model.DetalleCalificacion
	nextCalID      int
	nextDetID      int
}

func newStubGradeRepo() *stubGradeRepo {
	return &stubGradeRepo{
		calificaciones: map[int]*model.Calificacion{},
		detalles:       map[int]*model.DetalleCalificacion{},
		nextCalID:      1,
		nextDetID:      1,
	}
}

func (r *stubGradeRepo) CreateCalificacion(_ context.Context, c *model.Calificacion) error {
	c.ID = r.nextCalID
	r.nextCalID++
	c.FechaCalificacion = time.Now()
	copied := *c
	r.calificaciones[c.ID] = &copied
	return nil
}

func (r *stubGradeRepo) UpdateCalificacion(_ context.Context, c *model.Calificacion) error {
	if _, ok := r.calificaciones[c.ID]; !ok {
		return common.ErrNotFound
	}
	copied := *c
	r.calificaciones[c.ID] = &copied
	return nil
}

func (r *stubGradeRepo) FindEnProgreso(_ context.Context, usuarioID int) (*model.Calificacion, error) {
	for id := 1; id < r.nextCalID; id++ {
		c, ok := r.calificaciones[id]
		if ok && c.UsuarioID == usuarioID && c.Estado == model.CalificacionEnProgreso {
			copied := *c
			return &copied, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *stubGradeRepo) InsertDetalle(_ context.Context, d *model.DetalleCalificacion) error {
	d.ID = r.nextDetID
	r.nextDetID++
	copied := *d
	r.detalles[d.ID] = &copied
	return nil
}

func (r *stubGradeRepo) UpdateDetalle(_ context.Context, d *model.DetalleCalificacion) error {
	if _, ok := r.detalles[d.ID]; !ok {
		return common.ErrNotFound
	}
	copied := *d
	r.detalles[d.ID] = &copied
	return nil
}

func (r *stubGradeRepo) FindDetalle(_ context.Context, calificacionID, evidenciaID int) (*model.DetalleCalificacion, error) {
	for id := 1; id < r.nextDetID; id++ {
		d, ok := r.detalles[id]
		if ok && d.CalificacionID == calificacionID && d.EvidenciaID == evidenciaID {
			copied := *d
			return &copied, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *stubGradeRepo) PartialDetalle(_ context.Context, evidenciaID int) (*model.DetalleCalificacion, error) {
	for id := 1; id < r.nextDetID; id++ {
		d, ok := r.detalles[id]
		if !ok || d.EvidenciaID != evidenciaID {
			continue
		}
		c, ok := r.calificaciones[d.CalificacionID]
		if ok && c.Estado == model.CalificacionEnProgreso {
			copied := *d
			return &copied, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *stubGradeRepo) ListCalificaciones(_ context.Context) ([]*model.Calificacion, error) {
	var out []*model.Calificacion
	for id := 1; id < r.nextCalID; id++ {
		if c, ok := r.calificaciones[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func newTestGradeService(t *testing.T) (*GradeService, *stubGradeRepo, *stubEvidenceRepo) {
	t.Helper()
	grades := newStubGradeRepo()
	evidences := newStubEvidenceRepo()
	audit := NewAuditService(&stubAuditRepo{}, zerolog.Nop())
	users := struct{ repository.UserRepository }{}
	return NewGradeService(grades, evidences, users, audit), grades, evidences
}

func seedEvidencia(t *testing.T, evidences *stubEvidenceRepo, usuarioID int, estado string) *model.Evidencia {
	t.Helper()
	ev := &model.Evidencia{Titulo: "Acta", CategoriaID: 1, Estado: estado, UsuarioID: usuarioID}
	require.NoError(t, evidences.Create(context.Background(), ev))
	return ev
}

func TestGradeApprovesAtThreshold(t *testing.T) {
	svc, grades, evidences := newTestGradeService(t)
	ev := seedEvidencia(t, evidences, 4, model.EvidenciaCargada)

	calificacion, err := svc.Grade(context.Background(), 9, ev.ID, GradeInput{Puntaje: 50, Observaciones: "Justo"})
	require.NoError(t, err)

	assert.Equal(t, model.CalificacionAprobada, calificacion.Estado)
	assert.Equal(t, 50.0, calificacion.PuntajeTotal)
	assert.Equal(t, 4, calificacion.UsuarioID)

	stored, err := evidences.FindByID(context.Background(), ev.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EvidenciaEvaluada, stored.Estado)

	detalle, err := grades.FindDetalle(context.Background(), calificacion.ID, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, 50.0, detalle.Puntaje)
}

func TestGradeRejectsBelowThreshold(t *testing.T) {
	svc, _, evidences := newTestGradeService(t)
	ev := seedEvidencia(t, evidences, 4, model.EvidenciaCargada)

	calificacion, err := svc.Grade(context.Background(), 9, ev.ID, GradeInput{Puntaje: 49})
	require.NoError(t, err)
	assert.Equal(t, model.CalificacionRechazada, calificacion.Estado)
}

func TestGradeBlockedWhenAlreadyEvaluada(t *testing.T) {
	svc, _, evidences := newTestGradeService(t)
	ev := seedEvidencia(t, evidences, 4, model.EvidenciaEvaluada)

	_, err := svc.Grade(context.Background(), 9, ev.ID, GradeInput{Puntaje: 80})
	assert.ErrorIs(t, err, common.ErrEvidenceEvaluated)
}

func TestSavePartialReusesSessionAndUpserts(t *testing.T) {
	svc, grades, evidences := newTestGradeService(t)
	ev := seedEvidencia(t, evidences, 4, model.EvidenciaCargada)

	require.NoError(t, svc.SavePartial(context.Background(), ev.ID, GradeInput{Puntaje: 30, Observaciones: "Parcial"}))
	require.NoError(t, svc.SavePartial(context.Background(), ev.ID, GradeInput{Puntaje: 45}))

	assert.Equal(t, 2, grades.nextCalID, "one session expected")
	assert.Equal(t, 2, grades.nextDetID, "one detail expected")

	partial, err := svc.LoadPartial(context.Background(), ev.ID)
	require.NoError(t, err)
	require.NotNil(t, partial)
	assert.Equal(t, 45.0, partial.Puntaje)
	assert.Empty(t, partial.Observacion)
}

func TestLoadPartialNilWhenNoDraft(t *testing.T) {
	svc, _, evidences := newTestGradeService(t)
	ev := seedEvidencia(t, evidences, 4, model.EvidenciaCargada)

	partial, err := svc.LoadPartial(context.Background(), ev.ID)
	require.NoError(t, err)
	assert.Nil(t, partial)
}

func TestGradeFinalizesDraftSession(t *testing.T) {
	svc, _, evidences := newTestGradeService(t)
	ev := seedEvidencia(t, evidences, 4, model.EvidenciaCargada)

	require.NoError(t, svc.SavePartial(context.Background(), ev.ID, GradeInput{Puntaje: 40}))
	calificacion, err := svc.Grade(context.Background(), 9, ev.ID, GradeInput{Puntaje: 70})
	require.NoError(t, err)

	assert.Equal(t, 1, calificacion.ID, "draft session reused")
	assert.Equal(t, model.CalificacionAprobada, calificacion.Estado)

	partial, err := svc.LoadPartial(context.Background(), ev.ID)
	require.NoError(t, err)
	assert.Nil(t, partial, "no draft should survive a final grade")
}

func TestResultsRestrictedToEvaluadores(t *testing.T) {
	svc, _, _ := newTestGradeService(t)

	_, err := svc.Results(context.Background(), model.RolInstructor, 0, nil, nil)
	assert.ErrorIs(t, err, common.ErrEvaluatorOnly)
	assert.EqualError(t, err, "Acceso restringido a evaluadores")
}

func TestPendingListsOnlyUngraded(t *testing.T) {
	svc, _, evidences := newTestGradeService(t)
	seedEvidencia(t, evidences, 4, model.EvidenciaCargada)
	seedEvidencia(t, evidences, 4, model.EvidenciaBorrador)
	seedEvidencia(t, evidences, 4, model.EvidenciaEvaluada)

	pending, err := svc.Pending(context.Background())
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}
