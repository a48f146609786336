package model

import "time"

// Grade states. A grading session starts en_progreso and resolves to
// aprobado or rechazado once submitted.
const (
	CalificacionAprobada   = "aprobado"
	CalificacionRechazada  = "rechazado"
	CalificacionPendiente  = "pendiente"
	CalificacionEnProgreso = "en_progreso"
)

// Calificacion is one grading session over an instructor's evidences.
// UsuarioID is the graded instructor, not the evaluator.
type Calificacion struct {
	ID                int       `json:"id_calificacion"`
	UsuarioID         int       `json:"id_usuario_fk"`
	PuntajeTotal      float64   `json:"puntaje_total"`
	FechaCalificacion time.Time `json:"fecha_calificacion"`
	Estado            string    `json:"estado"`
}

type DetalleCalificacion struct {
	ID             int     `json:"id_detalle"`
	CalificacionID int     `json:"id_calificacion_fk"`
	EvidenciaID    int     `json:"id_evidencia_fk"`
	Puntaje        float64 `json:"puntaje"`
	Observaciones  *string `json:"observaciones"`
}

// ResultadoRow is the joined projection served by the evaluator's results
// screen.
type ResultadoRow struct {
	IDDetalle     int       `json:"id_detalle"`
	Evidencia     string    `json:"evidencia"`
	Instructor    string    `json:"instructor"`
	EvaluadorID   int       `json:"evaluador_id"`
	Puntaje       float64   `json:"puntaje"`
	Observaciones string    `json:"observaciones"`
	Fecha         time.Time `json:"fecha"`
}
