package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
)

type userRepository struct {
	BaseRepository
}

func NewUserRepository(base BaseRepository) repository.UserRepository {
	return &userRepository{base}
}

const userColumns = `u.id_usuario, u.id_rol, r.nombre AS rol, u.email, u.password, u.creado_en`

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM usuarios u
		JOIN roles r ON r.id_rol = u.id_rol
		WHERE u.email = $1
	`

	var user model.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", translateError(err))
	}
	return &user, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM usuarios u
		JOIN roles r ON r.id_rol = u.id_rol
		WHERE u.id_usuario = $1
	`

	var user model.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, fmt.Errorf("failed to get user: %w", translateError(err))
	}
	return &user, nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE usuarios SET password = $1 WHERE id_usuario = $2`, hash, id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *userRepository) insertUser(ctx context.Context, tx *sqlx.Tx, user *model.User) error {
	query := `
		INSERT INTO usuarios (id_rol, email, password)
		VALUES ($1, $2, $3)
		RETURNING id_usuario, creado_en
	`
	row := tx.QueryRowxContext(ctx, query, user.RoleID, user.Email, user.PasswordHash)
	return translateError(row.Scan(&user.ID, &user.CreatedAt))
}

func (r *userRepository) CreatePatientAccount(ctx context.Context, user *model.User, patient *model.Patient) error {
	query := `
		INSERT INTO pacientes (
			id_usuario, dni, nombres, apellidos, fecha_nacimiento, sexo, telefono
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id_paciente
	`

	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := r.insertUser(ctx, tx, user); err != nil {
			return err
		}
		patient.UserID = user.ID
		row := tx.QueryRowxContext(ctx, query,
			patient.UserID,
			patient.DNI,
			patient.FirstName,
			patient.LastName,
			patient.BirthDate,
			patient.Sex,
			patient.Phone,
		)
		return translateError(row.Scan(&patient.ID))
	})
	if err != nil {
		return fmt.Errorf("failed to create patient account: %w", err)
	}
	return nil
}

func (r *userRepository) CreateDoctorAccount(ctx context.Context, user *model.User, doctor *model.Doctor) error {
	query := `
		INSERT INTO doctores (
			id_usuario, dni, nombres, apellidos, id_especialidad, telefono
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id_doctor
	`

	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := r.insertUser(ctx, tx, user); err != nil {
			return err
		}
		doctor.UserID = user.ID
		row := tx.QueryRowxContext(ctx, query,
			doctor.UserID,
			doctor.DNI,
			doctor.FirstName,
			doctor.LastName,
			doctor.SpecialtyID,
			doctor.Phone,
		)
		return translateError(row.Scan(&doctor.ID))
	})
	if err != nil {
		return fmt.Errorf("failed to create doctor account: %w", err)
	}
	return nil
}

func (r *userRepository) CreateAdminAccount(ctx context.Context, user *model.User) error {
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		return r.insertUser(ctx, tx, user)
	})
	if err != nil {
		return fmt.Errorf("failed to create admin account: %w", err)
	}
	return nil
}

func (r *userRepository) List(ctx context.Context, limit int) ([]*model.UserSummary, error) {
	query := `
		SELECT u.id_usuario, u.id_rol, r.nombre AS rol_nombre, u.email, u.creado_en,
			CASE
				WHEN r.nombre = 'Paciente' THEN (
					SELECT p.nombres || ' ' || p.apellidos
					FROM pacientes p WHERE p.id_usuario = u.id_usuario
				)
				WHEN r.nombre = 'Doctor' THEN (
					SELECT d.nombres || ' ' || d.apellidos
					FROM doctores d WHERE d.id_usuario = u.id_usuario
				)
				ELSE 'Administrador'
			END AS nombre_completo
		FROM usuarios u
		JOIN roles r ON r.id_rol = u.id_rol
		ORDER BY u.creado_en DESC
		LIMIT $1
	`

	users := []*model.UserSummary{}
	if err := r.db.SelectContext(ctx, &users, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
