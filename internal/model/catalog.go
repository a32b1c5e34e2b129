package model

type Specialty struct {
	ID          int64   `db:"id_especialidad" json:"id_especialidad"`
	Name        string  `db:"nombre" json:"nombre"`
	Description *string `db:"descripcion" json:"descripcion"`
}

type Hospital struct {
	ID         int64   `db:"id_hospital" json:"id_hospital"`
	Name       string  `db:"nombre" json:"nombre"`
	Address    *string `db:"direccion" json:"direccion"`
	Type       *string `db:"tipo" json:"tipo"`
	TotalAreas int     `db:"total_areas" json:"total_areas"`
}

type Medication struct {
	ID           int64   `db:"id_medicamento" json:"id_medicamento"`
	Name         string  `db:"nombre" json:"nombre"`
	Presentation *string `db:"presentacion" json:"presentacion"`
}
