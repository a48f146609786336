package service

import (
	"context"
	"testing"

	"ssemi/internal/common"
	"ssemi/internal/domain/model"
	"ssemi/internal/domain/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fieldUpdate struct {
	userID int
	column string
	value  interface{}
}

// Extra behavior the correction-request tests need from the user stub.
var lastFieldUpdate *fieldUpdate

func (r *stubUserRepo) UpdateField(_ context.Context, id int, column string, value interface{}) error {
	lastFieldUpdate = &fieldUpdate{userID: id, column: column, value: value}
	return nil
}

type stubRequestRepo struct {
	repository.CorrectionRequestRepository
	byID     map[int]*model.CorrectionRequest
	approved []int
	rejected []int
}

func newStubRequestRepo(reqs ...*model.CorrectionRequest) *stubRequestRepo {
	r := &stubRequestRepo{byID: map[int]*model.CorrectionRequest{}}
	for _, req := range reqs {
		r.byID[req.ID] = req
	}
	return r
}

func (r *stubRequestRepo) Create(_ context.Context, req *model.CorrectionRequest) error {
	req.ID = len(r.byID) + 1
	r.byID[req.ID] = req
	return nil
}

func (r *stubRequestRepo) FindByID(_ context.Context, id int) (*model.CorrectionRequest, error) {
	req, ok := r.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return req, nil
}

func (r *stubRequestRepo) Approve(_ context.Context, id int) error {
	r.approved = append(r.approved, id)
	return nil
}

func (r *stubRequestRepo) Reject(_ context.Context, id int, _ string) error {
	r.rejected = append(r.rejected, id)
	return nil
}

func newTestRequestService(reqs *stubRequestRepo, users *stubUserRepo) *RequestService {
	audit := NewAuditService(&stubAuditRepo{}, zerolog.Nop())
	return NewRequestService(reqs, users, audit)
}

func pendingRequest(id int, campo, nuevoValor string) *model.CorrectionRequest {
	return &model.CorrectionRequest{
		ID:              id,
		UsuarioID:       10,
		CampoAModificar: campo,
		NuevoValor:      nuevoValor,
		EstadoSolicitud: model.SolicitudPendiente,
	}
}

func TestCreateRejectsUnknownField(t *testing.T) {
	svc := newTestRequestService(newStubRequestRepo(), newStubUserRepo())

	_, err := svc.Create(context.Background(), 10, RequestCreate{
		CampoAModificar: "Contraseña",
		NuevoValor:      "hack",
		Motivo:          "cambio",
	})
	assert.ErrorIs(t, err, common.ErrBadRequest)
}

func TestApproveAppliesWhitelistedField(t *testing.T) {
	lastFieldUpdate = nil
	reqs := newStubRequestRepo(pendingRequest(1, "Dirección", "Calle 10 # 5-23"))
	svc := newTestRequestService(reqs, newStubUserRepo())

	result, err := svc.Approve(context.Background(), 2, 1)
	require.NoError(t, err)
	assert.Equal(t, model.SolicitudAprobada, result.EstadoSolicitud)
	assert.Equal(t, []int{1}, reqs.approved)

	require.NotNil(t, lastFieldUpdate)
	assert.Equal(t, 10, lastFieldUpdate.userID)
	assert.Equal(t, "direccion", lastFieldUpdate.column)
	assert.Equal(t, "Calle 10 # 5-23", lastFieldUpdate.value)
}

func TestApproveCoercesNumericFields(t *testing.T) {
	lastFieldUpdate = nil
	reqs := newStubRequestRepo(pendingRequest(1, "Número de Documento", "1098765432"))
	svc := newTestRequestService(reqs, newStubUserRepo())

	_, err := svc.Approve(context.Background(), 2, 1)
	require.NoError(t, err)

	require.NotNil(t, lastFieldUpdate)
	assert.Equal(t, "numero_documento", lastFieldUpdate.column)
	assert.Equal(t, int64(1098765432), lastFieldUpdate.value)
}

func TestApproveRejectsBadNumericValue(t *testing.T) {
	reqs := newStubRequestRepo(pendingRequest(1, "Número de Contacto", "no-es-numero"))
	svc := newTestRequestService(reqs, newStubUserRepo())

	_, err := svc.Approve(context.Background(), 2, 1)
	assert.ErrorIs(t, err, common.ErrBadRequest)
	assert.Empty(t, reqs.approved)
}

func TestApproveRequiresPendingState(t *testing.T) {
	req := pendingRequest(1, "Dirección", "x")
	req.EstadoSolicitud = model.SolicitudAprobada
	svc := newTestRequestService(newStubRequestRepo(req), newStubUserRepo())

	_, err := svc.Approve(context.Background(), 2, 1)
	assert.ErrorIs(t, err, common.ErrBadRequest)
}

func TestRejectRecordsMotivo(t *testing.T) {
	reqs := newStubRequestRepo(pendingRequest(1, "Correo", "nuevo@ssemi.com"))
	svc := newTestRequestService(reqs, newStubUserRepo())

	result, err := svc.Reject(context.Background(), 2, 1, "Documentación insuficiente")
	require.NoError(t, err)
	assert.Equal(t, model.SolicitudRechazada, result.EstadoSolicitud)
	require.NotNil(t, result.MotivoRespuesta)
	assert.Equal(t, "Documentación insuficiente", *result.MotivoRespuesta)
	assert.Equal(t, []int{1}, reqs.rejected)
}
