package service

import (
	"context"
	"fmt"

	"ssemi/internal/domain/model"
	"ssemi/internal/domain/repository"
)

// UserService covers the admin users panel: list, inspect, edit, toggle
// status, delete. All callers are already role-gated at the router.
type UserService struct {
	users repository.UserRepository
	audit *AuditService
}

func NewUserService(users repository.UserRepository, audit *AuditService) *UserService {
	return &UserService{users: users, audit: audit}
}

type UserUpdateRequest struct {
	PrimerNombre    string  `json:"primer_nombre" validate:"required,max=50"`
	SegundoNombre   *string `json:"segundo_nombre" validate:"omitempty,max=50"`
	PrimerApellido  string  `json:"primer_apellido" validate:"required,max=50"`
	SegundoApellido string  `json:"segundo_apellido" validate:"required,max=50"`
	TipoDocumento   string  `json:"tipo_documento" validate:"required,oneof=CC CE"`
	NumeroDocumento int64   `json:"numero_documento" validate:"required"`
	Correo          string  `json:"correo" validate:"required,email,max=100"`
	Rol             int     `json:"rol_fk" validate:"required,oneof=1 2 3"`
	NumeroContacto  *int64  `json:"numero_contacto"`
	Direccion       *string `json:"direccion" validate:"omitempty,max=150"`
	Grado           *string `json:"grado" validate:"omitempty,max=20"`
	Regional        string  `json:"regional" validate:"required,max=100"`
}

func (s *UserService) List(ctx context.Context) ([]*model.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) Get(ctx context.Context, id int) (*model.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *UserService) Update(ctx context.Context, adminID, id int, req UserUpdateRequest) (*model.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.PrimerNombre = req.PrimerNombre
	user.SegundoNombre = req.SegundoNombre
	user.PrimerApellido = req.PrimerApellido
	user.SegundoApellido = req.SegundoApellido
	user.TipoDocumento = req.TipoDocumento
	user.NumeroDocumento = req.NumeroDocumento
	user.Correo = req.Correo
	user.Rol = req.Rol
	user.NumeroContacto = req.NumeroContacto
	user.Direccion = req.Direccion
	user.Grado = req.Grado
	user.Regional = req.Regional

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, adminID, model.AccionEditarUsuario,
		fmt.Sprintf("Editó usuario %d", user.ID), "usuario", user.ID)
	return user, nil
}

// SetEstado toggles the active flag. Users are never hard-deleted in normal
// flows; this is the standard deactivation path.
func (s *UserService) SetEstado(ctx context.Context, adminID, id int, estado bool) (*model.User, error) {
	if err := s.users.SetEstado(ctx, id, estado); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, adminID, model.AccionActualizarEstado,
		fmt.Sprintf("Actualizó estado usuario %d a %t", id, estado), "usuario", id)
	return s.users.FindByID(ctx, id)
}

func (s *UserService) Delete(ctx context.Context, adminID, id int) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.Log(ctx, adminID, model.AccionEliminarUsuario,
		fmt.Sprintf("Eliminó usuario %d", id), "usuario", id)
	return nil
}
