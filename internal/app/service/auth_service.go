package service

import (
	"context"
	"errors"
	"fmt"

	"ssemi/internal/app/mailer"
	"ssemi/internal/common"
	"ssemi/internal/common/security"
	"ssemi/internal/domain/model"
	"ssemi/internal/domain/repository"
	"ssemi/internal/platform/config"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type AuthService struct {
	users      repository.UserRepository
	challenges *ChallengeStore
	audit      *AuditService
	mail       mailer.Mailer
	log        zerolog.Logger
}

func NewAuthService(users repository.UserRepository, challenges *ChallengeStore, audit *AuditService, mail mailer.Mailer, log zerolog.Logger) *AuthService {
	return &AuthService{users: users, challenges: challenges, audit: audit, mail: mail, log: log}
}

type RegisterRequest struct {
	PrimerNombre    string  `json:"primer_nombre" validate:"required,max=50"`
	SegundoNombre   *string `json:"segundo_nombre" validate:"omitempty,max=50"`
	PrimerApellido  string  `json:"primer_apellido" validate:"required,max=50"`
	SegundoApellido string  `json:"segundo_apellido" validate:"required,max=50"`
	TipoDocumento   string  `json:"tipo_documento" validate:"required,oneof=CC CE"`
	NumeroDocumento int64   `json:"numero_documento" validate:"required"`
	Correo          string  `json:"correo" validate:"required,email,max=100"`
	Rol             int     `json:"rol_fk" validate:"required,oneof=1 2 3"`
	Contrasena      string  `json:"contrasena" validate:"required,min=6"`
	NumeroContacto  *int64  `json:"numero_contacto"`
	Direccion       *string `json:"direccion" validate:"omitempty,max=150"`
	Grado           *string `json:"grado" validate:"omitempty,max=20"`
	Regional        string  `json:"regional" validate:"omitempty,max=100"`
	ClaveAcceso     string  `json:"clave_acceso"`
}

// AuthResult is the outcome of a credential check: either an issued token or
// a pending second-factor challenge, never both.
type AuthResult struct {
	AccessToken      string `json:"access_token,omitempty"`
	TokenType        string `json:"token_type,omitempty"`
	UserID           int    `json:"user_id,omitempty"`
	Correo           string `json:"correo,omitempty"`
	Rol              int    `json:"rol,omitempty"`
	Mensaje          string `json:"mensaje,omitempty"`
	ChallengePending bool   `json:"-"`
}

// Register creates a user. Instructor is the only self-service role; any
// other role requires the admin access key.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*model.User, error) {
	if req.Rol != model.RolInstructor && req.ClaveAcceso != config.AppConfig.AdminAccessKey {
		return nil, fmt.Errorf("Clave de acceso inválida para este rol: %w", common.ErrUnauthorized)
	}

	hash, err := security.HashPassword(req.Contrasena)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	regional := req.Regional
	if regional == "" {
		regional = "Distrito Capital"
	}

	user := &model.User{
		PrimerNombre:    req.PrimerNombre,
		SegundoNombre:   req.SegundoNombre,
		PrimerApellido:  req.PrimerApellido,
		SegundoApellido: req.SegundoApellido,
		TipoDocumento:   req.TipoDocumento,
		NumeroDocumento: req.NumeroDocumento,
		Correo:          req.Correo,
		Rol:             req.Rol,
		HashedPassword:  hash,
		NumeroContacto:  req.NumeroContacto,
		Direccion:       req.Direccion,
		Estado:          true,
		Grado:           req.Grado,
		Regional:        regional,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, user.ID, model.AccionCrearUsuario,
		fmt.Sprintf("Registró el usuario %s", user.Correo), "usuario", user.ID)
	return user, nil
}

// Authenticate validates credentials. With the second factor enabled it
// leaves a pending challenge instead of a token; a token is only ever issued
// after a fully successful check.
func (s *AuthService) Authenticate(ctx context.Context, correo, contrasena string) (*AuthResult, error) {
	user, err := s.users.FindByCorreo(ctx, correo)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !security.CheckPasswordHash(contrasena, user.HashedPassword) {
		return nil, common.ErrInvalidCredentials
	}

	if !user.Estado {
		return nil, common.ErrAccountDisabled
	}

	if config.AppConfig.TwoFactorEnabled {
		code, err := s.challenges.IssueCode(ctx, user.Correo)
		if err != nil {
			return nil, err
		}
		s.sendChallengeCode(user, code)
		return &AuthResult{
			ChallengePending: true,
			Mensaje:          "Código de verificación enviado correctamente",
		}, nil
	}

	return s.issueToken(ctx, user)
}

// VerifyChallenge completes a pending two-factor login. A mismatched code
// leaves the challenge pending; a matching one consumes it and issues a
// token exactly as direct authentication would.
func (s *AuthService) VerifyChallenge(ctx context.Context, correo, codigo string) (*AuthResult, error) {
	user, err := s.users.FindByCorreo(ctx, correo)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := s.challenges.VerifyCode(ctx, correo, codigo); err != nil {
		return nil, err
	}

	return s.issueToken(ctx, user)
}

func (s *AuthService) issueToken(ctx context.Context, user *model.User) (*AuthResult, error) {
	token, err := security.GenerateToken(user.ID, user.Correo, user.Rol)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.audit.Log(ctx, user.ID, model.AccionInicioSesion, "Usuario inició sesión", "usuario", user.ID)

	return &AuthResult{
		AccessToken: token,
		TokenType:   "bearer",
		UserID:      user.ID,
		Correo:      user.Correo,
		Rol:         user.Rol,
	}, nil
}

func (s *AuthService) Me(ctx context.Context, userID int) (*model.User, error) {
	return s.users.FindByID(ctx, userID)
}

// UpdateOwnProfile lets a user change only contact number and address.
func (s *AuthService) UpdateOwnProfile(ctx context.Context, userID int, numeroContacto *int64, direccion *string) (*model.User, error) {
	if err := s.users.UpdateContact(ctx, userID, numeroContacto, direccion); err != nil {
		return nil, err
	}
	return s.users.FindByID(ctx, userID)
}

// ForgotPassword issues a single-use reset token and mails the reset link.
func (s *AuthService) ForgotPassword(ctx context.Context, correo string) error {
	user, err := s.users.FindByCorreo(ctx, correo)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	token := uuid.NewString()
	if err := s.challenges.IssueResetToken(ctx, token, user.ID); err != nil {
		return err
	}

	link := config.AppConfig.BaseURL + "/reset_password?token=" + token
	body := fmt.Sprintf(`<p>Hola %s,</p>
<p>Hemos recibido una solicitud para restablecer tu contraseña.</p>
<p><a href="%s">%s</a></p>
<p>Este enlace expirará en 1 hora. Si no solicitaste este cambio, ignora este mensaje.</p>`,
		user.PrimerNombre, link, link)
	s.sendAsync(user.Correo, "Recuperación de contraseña - Proyecto SSEMI", body)
	return nil
}

// ResetPassword consumes the token and replaces the stored hash.
func (s *AuthService) ResetPassword(ctx context.Context, token, nuevaContrasena string) error {
	userID, err := s.challenges.ConsumeResetToken(ctx, token)
	if err != nil {
		return err
	}

	hash, err := security.HashPassword(nuevaContrasena)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, userID, hash)
}

func (s *AuthService) sendChallengeCode(user *model.User, code string) {
	body := fmt.Sprintf(`<p>Hola %s,</p>
<p>Tu código de verificación es: <b>%s</b></p>
<p>Este código expirará en 5 minutos.</p>`, user.PrimerNombre, code)
	s.sendAsync(user.Correo, "Código de verificación SSEMI", body)
}

// sendAsync delivers mail without blocking the request; the request context
// is not reused because it dies with the response.
func (s *AuthService) sendAsync(to, subject, body string) {
	go func() {
		if err := s.mail.Send(context.Background(), to, subject, body); err != nil {
			s.log.Warn().Err(err).Str("to", to).Msg("mail delivery failed")
		}
	}()
}
