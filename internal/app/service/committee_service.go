package service

import (
	"context"
	"fmt"

	"ssemi/internal/app/mailer"
	"ssemi/internal/common"
	"ssemi/internal/domain/model"
	"ssemi/internal/domain/repository"

	"github.com/rs/zerolog"
)

// maxComiteActivos caps how many evaluators can sit on the national
// committee at once.
const maxComiteActivos = 5

type CommitteeService struct {
	users repository.UserRepository
	mail  mailer.Mailer
	log   zerolog.Logger
}

func NewCommitteeService(users repository.UserRepository, mail mailer.Mailer, log zerolog.Logger) *CommitteeService {
	return &CommitteeService{users: users, mail: mail, log: log}
}

// ListEvaluadores returns every evaluator with their committee flag.
func (s *CommitteeService) ListEvaluadores(ctx context.Context) ([]*model.User, error) {
	return s.users.ListByRol(ctx, model.RolEvaluador)
}

func (s *CommitteeService) Activate(ctx context.Context, id int) (*model.User, error) {
	evaluador, err := s.findEvaluador(ctx, id)
	if err != nil {
		return nil, err
	}

	activos, err := s.users.CountComiteActivos(ctx)
	if err != nil {
		return nil, err
	}
	if activos >= maxComiteActivos {
		return nil, fmt.Errorf("Ya hay %d evaluadores activos en el Comité Nacional: %w",
			maxComiteActivos, common.ErrBadRequest)
	}

	if err := s.users.SetComiteNacional(ctx, id, true); err != nil {
		return nil, err
	}
	evaluador.ComiteNacional = true

	s.notify(evaluador, "Has sido seleccionado como evaluador del Comité Nacional",
		fmt.Sprintf("<p>Hola %s,</p><p>Has sido activado como miembro del Comité Nacional de evaluadores.</p>",
			evaluador.PrimerNombre))
	return evaluador, nil
}

func (s *CommitteeService) Deactivate(ctx context.Context, id int) (*model.User, error) {
	evaluador, err := s.findEvaluador(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.users.SetComiteNacional(ctx, id, false); err != nil {
		return nil, err
	}
	evaluador.ComiteNacional = false

	s.notify(evaluador, "Cambio en tu membresía del Comité Nacional",
		fmt.Sprintf("<p>Hola %s,</p><p>Has sido retirado del Comité Nacional de evaluadores.</p>",
			evaluador.PrimerNombre))
	return evaluador, nil
}

func (s *CommitteeService) findEvaluador(ctx context.Context, id int) (*model.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Rol != model.RolEvaluador {
		return nil, fmt.Errorf("Evaluador no encontrado: %w", common.ErrNotFound)
	}
	return user, nil
}

func (s *CommitteeService) notify(user *model.User, subject, body string) {
	go func() {
		if err := s.mail.Send(context.Background(), user.Correo, subject, body); err != nil {
			s.log.Warn().Err(err).Str("to", user.Correo).Msg("committee mail failed")
		}
	}()
}
