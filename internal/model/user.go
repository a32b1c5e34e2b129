package model

import "time"

type User struct {
	ID           int64     `db:"id_usuario" json:"id_usuario"`
	RoleID       int       `db:"id_rol" json:"id_rol"`
	Role         Role      `db:"rol" json:"rol"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password" json:"-"`
	CreatedAt    time.Time `db:"creado_en" json:"creado_en"`
}

// Identity is the claim set carried by a session token.
type Identity struct {
	UserID int64  `json:"id"`
	Email  string `json:"email"`
	Role   Role   `json:"rol"`
	RoleID int    `json:"id_rol"`
	Name   string `json:"nombre"`
}

// Session is returned by login and registration.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *SessionUser `json:"user"`
}

// SessionUser is the identity plus the role profile, as the web client expects it.
type SessionUser struct {
	Identity
	Patient *Patient `json:"paciente,omitempty"`
	Doctor  *Doctor  `json:"doctor,omitempty"`
}

// UserSummary is a row of the admin user listing.
type UserSummary struct {
	ID        int64     `db:"id_usuario" json:"id_usuario"`
	RoleID    int       `db:"id_rol" json:"id_rol"`
	Role      Role      `db:"rol_nombre" json:"rol_nombre"`
	Email     string    `db:"email" json:"email"`
	FullName  *string   `db:"nombre_completo" json:"nombre_completo"`
	CreatedAt time.Time `db:"creado_en" json:"creado_en"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RegisterPatientRequest struct {
	DNI       string  `json:"dni" validate:"required,dni"`
	FirstName string  `json:"nombres" validate:"required"`
	LastName  string  `json:"apellidos" validate:"required"`
	BirthDate *string `json:"fecha_nacimiento"`
	Sex       *string `json:"sexo"`
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,min=6"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}
