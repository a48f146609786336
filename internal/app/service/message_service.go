package service

import (
	"context"
	"fmt"

	"ssemi/internal/common"
	"ssemi/internal/domain/model"
	"ssemi/internal/domain/repository"
)

type MessageService struct {
	messages repository.MessageRepository
	users    repository.UserRepository
}

func NewMessageService(messages repository.MessageRepository, users repository.UserRepository) *MessageService {
	return &MessageService{messages: messages, users: users}
}

type MessageCreate struct {
	DestinoRol   int    `json:"destino_rol"`
	RespuestaAID *int   `json:"respuesta_a_id"`
	Asunto       string `json:"asunto" validate:"required,max=200"`
	Contenido    string `json:"contenido" validate:"required"`
}

// Send creates a message: either a direct reply to an existing one or a new
// message addressed to a whole role.
func (s *MessageService) Send(ctx context.Context, sender *model.User, in MessageCreate) (*model.Message, error) {
	var msg *model.Message

	if in.RespuestaAID != nil {
		parent, err := s.messages.FindByID(ctx, *in.RespuestaAID)
		if err != nil {
			return nil, fmt.Errorf("Mensaje padre no encontrado: %w", common.ErrNotFound)
		}
		msg = &model.Message{
			RemitenteID:  sender.ID,
			DestinoID:    &parent.RemitenteID,
			DestinoRol:   0,
			RespuestaAID: in.RespuestaAID,
			Asunto:       in.Asunto,
			Contenido:    in.Contenido,
		}
	} else {
		if in.DestinoRol != model.RolAdministrador && in.DestinoRol != model.RolEvaluador {
			return nil, fmt.Errorf("Rol destino no permitido: %w", common.ErrBadRequest)
		}
		if in.DestinoRol == sender.Rol {
			return nil, fmt.Errorf("No puedes enviarte un mensaje a tu propio rol: %w", common.ErrBadRequest)
		}
		msg = &model.Message{
			RemitenteID: sender.ID,
			DestinoRol:  in.DestinoRol,
			Asunto:      in.Asunto,
			Contenido:   in.Contenido,
		}
	}

	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	msg.RemitenteNombre = sender.NombreCompleto()
	return msg, nil
}

// Inbox lists received messages and marks unread role-addressed ones as read.
func (s *MessageService) Inbox(ctx context.Context, user *model.User) ([]*model.Message, error) {
	msgs, err := s.messages.Inbox(ctx, user.ID, user.Rol)
	if err != nil {
		return nil, err
	}
	if err := s.messages.MarkInboxRead(ctx, user.Rol); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (s *MessageService) Sent(ctx context.Context, user *model.User) ([]*model.Message, error) {
	return s.messages.Sent(ctx, user.ID)
}

// Get fetches one message the user can see and marks it read.
func (s *MessageService) Get(ctx context.Context, user *model.User, id int) (*model.Message, error) {
	msg, err := s.messages.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	visible := msg.RemitenteID == user.ID ||
		msg.DestinoRol == user.Rol ||
		(msg.DestinoID != nil && *msg.DestinoID == user.ID)
	if !visible {
		return nil, common.ErrForbidden
	}

	if !msg.Leido && msg.RemitenteID != user.ID {
		if err := s.messages.MarkRead(ctx, id); err != nil {
			return nil, err
		}
		msg.Leido = true
	}
	return msg, nil
}
