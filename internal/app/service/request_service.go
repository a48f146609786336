package service

import (
	"context"
	"fmt"
	"strconv"

	"ssemi/internal/common"
	"ssemi/internal/domain/model"
	"ssemi/internal/domain/repository"
)

// correctionFieldColumns whitelists which profile fields a correction request
// may touch and maps the display name to its column.
var correctionFieldColumns = map[string]string{
	"Primer Nombre":       "primer_nombre",
	"Segundo Nombre":      "segundo_nombre",
	"Primer Apellido":     "primer_apellido",
	"Segundo Apellido":    "segundo_apellido",
	"Número de Contacto":  "numero_contacto",
	"Dirección":           "direccion",
	"Correo":              "correo",
	"Tipo de Documento":   "tipo_documento",
	"Número Documento":    "numero_documento",
	"Número de Documento": "numero_documento",
	"Grado":               "grado",
	"Regional":            "regional",
}

type RequestService struct {
	requests repository.CorrectionRequestRepository
	users    repository.UserRepository
	audit    *AuditService
}

func NewRequestService(requests repository.CorrectionRequestRepository, users repository.UserRepository, audit *AuditService) *RequestService {
	return &RequestService{requests: requests, users: users, audit: audit}
}

type RequestCreate struct {
	CampoAModificar string `json:"campo_a_modificar" validate:"required,max=100"`
	ValorActual     string `json:"valor_actual" validate:"max=255"`
	NuevoValor      string `json:"nuevo_valor" validate:"required,max=255"`
	Motivo          string `json:"motivo" validate:"required,max=500"`
}

func (s *RequestService) Create(ctx context.Context, usuarioID int, in RequestCreate) (*model.CorrectionRequest, error) {
	if _, ok := correctionFieldColumns[in.CampoAModificar]; !ok {
		return nil, fmt.Errorf("Campo inválido: %w", common.ErrBadRequest)
	}

	req := &model.CorrectionRequest{
		UsuarioID:       usuarioID,
		CampoAModificar: in.CampoAModificar,
		ValorActual:     in.ValorActual,
		NuevoValor:      in.NuevoValor,
		Motivo:          in.Motivo,
		EstadoSolicitud: model.SolicitudPendiente,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, usuarioID, model.AccionCrearSolicitud,
		fmt.Sprintf("Creó solicitud de corrección para %s", in.CampoAModificar),
		"solicitudes_correccion", req.ID)
	return req, nil
}

// List returns every request for reviewers and only the caller's own for
// everyone else.
func (s *RequestService) List(ctx context.Context, usuarioID, rol int) ([]*model.CorrectionRequest, error) {
	if rol == model.RolInstructor || rol == model.RolAdministrador {
		return s.requests.List(ctx)
	}
	return s.requests.ListByUser(ctx, usuarioID)
}

// Approve applies the requested change to the user's profile and marks the
// request approved. Only pending requests can be approved.
func (s *RequestService) Approve(ctx context.Context, reviewerID, id int) (*model.CorrectionRequest, error) {
	req, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.EstadoSolicitud != model.SolicitudPendiente {
		return nil, fmt.Errorf("Solicitud no pendiente: %w", common.ErrBadRequest)
	}

	column, ok := correctionFieldColumns[req.CampoAModificar]
	if !ok {
		return nil, fmt.Errorf("Campo inválido: %w", common.ErrBadRequest)
	}

	value, err := coerceFieldValue(column, req.NuevoValor)
	if err != nil {
		return nil, err
	}

	if err := s.users.UpdateField(ctx, req.UsuarioID, column, value); err != nil {
		return nil, err
	}
	if err := s.requests.Approve(ctx, id); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, reviewerID, model.AccionAprobarSolicitud,
		fmt.Sprintf("Aprobó cambio de %s", req.CampoAModificar), "solicitudes_correccion", id)

	req.EstadoSolicitud = model.SolicitudAprobada
	return req, nil
}

func (s *RequestService) Reject(ctx context.Context, reviewerID, id int, motivoRespuesta string) (*model.CorrectionRequest, error) {
	req, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.requests.Reject(ctx, id, motivoRespuesta); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, reviewerID, model.AccionRechazarSolicitud,
		fmt.Sprintf("Rechazó solicitud: %s", req.CampoAModificar), "solicitudes_correccion", id)

	req.EstadoSolicitud = model.SolicitudRechazada
	req.MotivoRespuesta = &motivoRespuesta
	return req, nil
}

// coerceFieldValue converts string request values into the column's type.
func coerceFieldValue(column, value string) (interface{}, error) {
	switch column {
	case "numero_documento", "numero_contacto":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("Valor numérico inválido: %w", common.ErrBadRequest)
		}
		return n, nil
	case "tipo_documento":
		if value != model.DocumentoCC && value != model.DocumentoCE {
			return nil, fmt.Errorf("Tipo documento inválido: %w", common.ErrBadRequest)
		}
		return value, nil
	default:
		return value, nil
	}
}
