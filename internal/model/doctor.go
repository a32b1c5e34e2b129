package model

type Doctor struct {
	ID          int64   `db:"id_doctor" json:"id_doctor"`
	UserID      int64   `db:"id_usuario" json:"id_usuario"`
	DNI         string  `db:"dni" json:"dni"`
	FirstName   string  `db:"nombres" json:"nombres"`
	LastName    string  `db:"apellidos" json:"apellidos"`
	SpecialtyID *int64  `db:"id_especialidad" json:"id_especialidad"`
	Specialty   *string `db:"especialidad" json:"especialidad"`
	Phone       *string `db:"telefono" json:"telefono"`
}

func (d *Doctor) FullName() string {
	return FullName(d.FirstName, d.LastName)
}

// CreateAdminRequest bootstraps an administrator from the command line.
type CreateAdminRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type CreateDoctorRequest struct {
	DNI         string `json:"dni" validate:"required"`
	FirstName   string `json:"nombres" validate:"required"`
	LastName    string `json:"apellidos" validate:"required"`
	SpecialtyID *int64 `json:"id_especialidad"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
}
