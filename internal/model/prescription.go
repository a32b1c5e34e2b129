package model

import "time"

type Prescription struct {
	ID          int64               `db:"id_receta" json:"id_receta"`
	EncounterID int64               `db:"id_atencion" json:"id_atencion"`
	IssuedAt    time.Time           `db:"fecha" json:"fecha"`
	Items       []*PrescriptionItem `db:"-" json:"medicamentos"`
}

type PrescriptionItem struct {
	ID             int64   `db:"id_detalle" json:"id_detalle,omitempty"`
	PrescriptionID int64   `db:"id_receta" json:"-"`
	MedicationID   int64   `db:"id_medicamento" json:"id_medicamento"`
	Instructions   string  `db:"indicaciones" json:"indicaciones"`
	Medication     *string `db:"nombre" json:"nombre,omitempty"`
	Presentation   *string `db:"presentacion" json:"presentacion,omitempty"`
}

// PrescriptionView is a prescription as listed to its patient.
type PrescriptionView struct {
	Prescription
	EncounterType string    `db:"tipo_atencion" json:"tipo_atencion"`
	ScheduledAt   time.Time `db:"fecha_hora" json:"fecha_hora"`
	DoctorName    string    `db:"doctor_nombre" json:"doctor_nombre"`
	Specialty     *string   `db:"especialidad" json:"especialidad"`
}

// PrescriptionItemInput is one entry of a prescribe request. Both fields are
// optional on the wire; incomplete entries are filtered by the workflow.
type PrescriptionItemInput struct {
	MedicationID *int64 `json:"id_medicamento"`
	Instructions string `json:"indicaciones"`
}

// Complete reports whether both the medication and its instructions are set.
func (i PrescriptionItemInput) Complete() bool {
	return i.MedicationID != nil && *i.MedicationID > 0 && i.Instructions != ""
}

type PrescribeRequest struct {
	EncounterID int64                   `json:"id_atencion" validate:"required"`
	Items       []PrescriptionItemInput `json:"medicamentos" validate:"required"`
}
