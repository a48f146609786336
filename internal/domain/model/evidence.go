package model

import "time"

// Evidence lifecycle states. An evaluated evidence can no longer be edited.
const (
	EvidenciaCargada  = "Cargada"
	EvidenciaBorrador = "Borrador"
	EvidenciaEvaluada = "Evaluada"
)

type Categoria struct {
	ID          int    `json:"id_categoria"`
	Nombre      string `json:"nombre_categoria"`
	Descripcion string `json:"descripcion"`
}

// Evidencia is an instructor's uploaded proof piece. Archivos holds the
// stored relative file paths; Formulario the free-form form payload.
type Evidencia struct {
	ID             int                    `json:"id_evidencia"`
	Titulo         string                 `json:"titulo"`
	Descripcion    *string                `json:"descripcion"`
	CategoriaID    int                    `json:"id_categoria_fk"`
	Archivos       []string               `json:"archivos"`
	FechaEvidencia time.Time              `json:"fecha_evidencia"`
	Formulario     map[string]interface{} `json:"formulario"`
	Estado         string                 `json:"estado_evidencia"`
	UsuarioID      int                    `json:"id_usuario_fk"`
	ReporteID      *int                   `json:"reportes_id_reporte"`
}

// CargaHistorial records every upload or edit of an evidence, joined with
// the evidence's current fields for the history view.
type CargaHistorial struct {
	ID           int       `json:"id"`
	EvidenciaID  int       `json:"id_evidencia"`
	InstructorID int       `json:"-"`
	FechaCarga   time.Time `json:"fecha"`
	Titulo       string    `json:"titulo"`
	Descripcion  *string   `json:"descripcion"`
	Estado       string    `json:"estado"`
	Archivos     []string  `json:"archivos"`
}
