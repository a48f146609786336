package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ssemi/internal/common"
	"ssemi/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByCorreo(ctx context.Context, correo string) (*model.User, error)
	FindByID(ctx context.Context, id int) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
	ListByRol(ctx context.Context, rol int) ([]*model.User, error)
	Update(ctx context.Context, user *model.User) error
	UpdateContact(ctx context.Context, id int, numeroContacto *int64, direccion *string) error
	UpdateField(ctx context.Context, id int, column string, value interface{}) error
	UpdatePassword(ctx context.Context, id int, hash string) error
	SetEstado(ctx context.Context, id int, estado bool) error
	SetComiteNacional(ctx context.Context, id int, activo bool) error
	CountComiteActivos(ctx context.Context) (int, error)
	Delete(ctx context.Context, id int) error
	ReportRows(ctx context.Context, nombre, regional string) ([]model.UserReportRow, error)
}

const userColumns = `id_usuario, primer_nombre, segundo_nombre, primer_apellido, segundo_apellido,
	tipo_documento, numero_documento, correo, rol_fk, contrasena_hash,
	numero_contacto, direccion, estado, grado, regional, comite_nacional`

type pgUserRepository struct {
	db *sql.DB
}

func NewPgUserRepository(db *sql.DB) UserRepository {
	return &pgUserRepository{db: db}
}

func scanUser(row interface{ Scan(...interface{}) error }) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(
		&user.ID, &user.PrimerNombre, &user.SegundoNombre, &user.PrimerApellido, &user.SegundoApellido,
		&user.TipoDocumento, &user.NumeroDocumento, &user.Correo, &user.Rol, &user.HashedPassword,
		&user.NumeroContacto, &user.Direccion, &user.Estado, &user.Grado, &user.Regional, &user.ComiteNacional,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *pgUserRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO usuario (primer_nombre, segundo_nombre, primer_apellido, segundo_apellido,
	              tipo_documento, numero_documento, correo, rol_fk, contrasena_hash,
	              numero_contacto, direccion, estado, grado, regional, comite_nacional)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	          RETURNING id_usuario`
	err := r.db.QueryRowContext(ctx, query,
		user.PrimerNombre, user.SegundoNombre, user.PrimerApellido, user.SegundoApellido,
		user.TipoDocumento, user.NumeroDocumento, user.Correo, user.Rol, user.HashedPassword,
		user.NumeroContacto, user.Direccion, user.Estado, user.Grado, user.Regional, user.ComiteNacional,
	).Scan(&user.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint violation
			return fmt.Errorf("El usuario ya existe: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgUserRepository.Create: %w", err)
	}
	return nil
}

func (r *pgUserRepository) FindByCorreo(ctx context.Context, correo string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM usuario WHERE correo = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, correo))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgUserRepository.FindByCorreo: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) FindByID(ctx context.Context, id int) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM usuario WHERE id_usuario = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgUserRepository.FindByID: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) List(ctx context.Context) ([]*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM usuario ORDER BY id_usuario`
	return r.queryUsers(ctx, query)
}

func (r *pgUserRepository) ListByRol(ctx context.Context, rol int) ([]*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM usuario WHERE rol_fk = $1 ORDER BY id_usuario`
	return r.queryUsers(ctx, query, rol)
}

func (r *pgUserRepository) queryUsers(ctx context.Context, query string, args ...interface{}) ([]*model.User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgUserRepository.queryUsers: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("pgUserRepository.queryUsers scan: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *pgUserRepository) Update(ctx context.Context, user *model.User) error {
	query := `UPDATE usuario SET primer_nombre = $1, segundo_nombre = $2, primer_apellido = $3,
	              segundo_apellido = $4, tipo_documento = $5, numero_documento = $6, correo = $7,
	              rol_fk = $8, numero_contacto = $9, direccion = $10, grado = $11, regional = $12
	          WHERE id_usuario = $13`
	res, err := r.db.ExecContext(ctx, query,
		user.PrimerNombre, user.SegundoNombre, user.PrimerApellido, user.SegundoApellido,
		user.TipoDocumento, user.NumeroDocumento, user.Correo, user.Rol,
		user.NumeroContacto, user.Direccion, user.Grado, user.Regional, user.ID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("datos en conflicto con otro usuario: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgUserRepository.Update: %w", err)
	}
	return requireRow(res, "pgUserRepository.Update")
}

func (r *pgUserRepository) UpdateContact(ctx context.Context, id int, numeroContacto *int64, direccion *string) error {
	query := `UPDATE usuario SET
	              numero_contacto = COALESCE($1, numero_contacto),
	              direccion = COALESCE($2, direccion)
	          WHERE id_usuario = $3`
	res, err := r.db.ExecContext(ctx, query, numeroContacto, direccion, id)
	if err != nil {
		return fmt.Errorf("pgUserRepository.UpdateContact: %w", err)
	}
	return requireRow(res, "pgUserRepository.UpdateContact")
}

// UpdateField sets a single profile column. Callers must whitelist the
// column name; it is interpolated, not bound.
func (r *pgUserRepository) UpdateField(ctx context.Context, id int, column string, value interface{}) error {
	query := `UPDATE usuario SET ` + column + ` = $1 WHERE id_usuario = $2`
	res, err := r.db.ExecContext(ctx, query, value, id)
	if err != nil {
		return fmt.Errorf("pgUserRepository.UpdateField(%s): %w", column, err)
	}
	return requireRow(res, "pgUserRepository.UpdateField")
}

func (r *pgUserRepository) UpdatePassword(ctx context.Context, id int, hash string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE usuario SET contrasena_hash = $1 WHERE id_usuario = $2`, hash, id)
	if err != nil {
		return fmt.Errorf("pgUserRepository.UpdatePassword: %w", err)
	}
	return requireRow(res, "pgUserRepository.UpdatePassword")
}

func (r *pgUserRepository) SetEstado(ctx context.Context, id int, estado bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE usuario SET estado = $1 WHERE id_usuario = $2`, estado, id)
	if err != nil {
		return fmt.Errorf("pgUserRepository.SetEstado: %w", err)
	}
	return requireRow(res, "pgUserRepository.SetEstado")
}

func (r *pgUserRepository) SetComiteNacional(ctx context.Context, id int, activo bool) error {
	query := `UPDATE usuario SET comite_nacional = $1 WHERE id_usuario = $2 AND rol_fk = $3`
	res, err := r.db.ExecContext(ctx, query, activo, id, model.RolEvaluador)
	if err != nil {
		return fmt.Errorf("pgUserRepository.SetComiteNacional: %w", err)
	}
	return requireRow(res, "pgUserRepository.SetComiteNacional")
}

func (r *pgUserRepository) CountComiteActivos(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM usuario WHERE rol_fk = $1 AND comite_nacional = TRUE`
	if err := r.db.QueryRowContext(ctx, query, model.RolEvaluador).Scan(&count); err != nil {
		return 0, fmt.Errorf("pgUserRepository.CountComiteActivos: %w", err)
	}
	return count, nil
}

func (r *pgUserRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM usuario WHERE id_usuario = $1`, id)
	if err != nil {
		return fmt.Errorf("pgUserRepository.Delete: %w", err)
	}
	return requireRow(res, "pgUserRepository.Delete")
}

func (r *pgUserRepository) ReportRows(ctx context.Context, nombre, regional string) ([]model.UserReportRow, error) {
	query := `SELECT id_usuario,
	              CONCAT_WS(' ', primer_nombre, segundo_nombre, primer_apellido, segundo_apellido),
	              numero_documento, regional, estado
	          FROM usuario
	          WHERE ($1 = '' OR primer_nombre ILIKE '%' || $1 || '%'
	              OR segundo_nombre ILIKE '%' || $1 || '%'
	              OR primer_apellido ILIKE '%' || $1 || '%'
	              OR segundo_apellido ILIKE '%' || $1 || '%')
	            AND ($2 = '' OR regional = $2)
	          ORDER BY id_usuario`
	rows, err := r.db.QueryContext(ctx, query, nombre, regional)
	if err != nil {
		return nil, fmt.Errorf("pgUserRepository.ReportRows: %w", err)
	}
	defer rows.Close()

	var out []model.UserReportRow
	for rows.Next() {
		var row model.UserReportRow
		if err := rows.Scan(&row.ID, &row.NombreCompleto, &row.NumeroDocumento, &row.Regional, &row.Estado); err != nil {
			return nil, fmt.Errorf("pgUserRepository.ReportRows scan: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func requireRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
