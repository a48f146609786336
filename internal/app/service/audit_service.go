package service

import (
	"context"

	"ssemi/internal/domain/model"
	"ssemi/internal/domain/repository"

	"github.com/rs/zerolog"
)

// AuditService writes bitacora entries. Writes are best-effort: a failed
// audit insert is logged and swallowed so it never fails the primary action.
type AuditService struct {
	repo repository.AuditRepository
	log  zerolog.Logger
}

func NewAuditService(repo repository.AuditRepository, log zerolog.Logger) *AuditService {
	return &AuditService{repo: repo, log: log}
}

func (s *AuditService) Log(ctx context.Context, usuarioID int, accion, descripcion, tabla string, registroID int) {
	entry := &model.AuditEntry{
		UsuarioID:          usuarioID,
		Accion:             accion,
		Descripcion:        descripcion,
		TablaAfectada:      tabla,
		RegistroAfectadoID: &registroID,
	}
	if err := s.repo.Insert(ctx, entry); err != nil {
		s.log.Warn().Err(err).Str("accion", accion).Msg("audit write failed")
	}
}

func (s *AuditService) List(ctx context.Context) ([]*model.AuditEntry, error) {
	return s.repo.List(ctx)
}
