package model

import "time"

type Report struct {
	ID              int       `json:"id_reporte"`
	Titulo          string    `json:"titulo"`
	Descripcion     string    `json:"descripcion"`
	TipoReporte     string    `json:"tipo_reporte"`
	FechaGeneracion time.Time `json:"fecha_generacion"`
	UsuarioAccion   int       `json:"id_usuario_accion"`
}

// UserReportRow is the flattened projection served by /reportes/datos/usuarios.
type UserReportRow struct {
	ID              int    `json:"id_usuario"`
	NombreCompleto  string `json:"nombre_completo"`
	NumeroDocumento int64  `json:"numero_documento"`
	Regional        string `json:"regional"`
	Estado          bool   `json:"estado"`
}

// RequestReportRow is the projection served by /reportes/datos/solicitudes.
type RequestReportRow struct {
	ID              int       `json:"id_solicitud"`
	Solicitante     string    `json:"solicitante"`
	CampoAModificar string    `json:"campo_a_modificar"`
	EstadoSolicitud string    `json:"estado_solicitud"`
	FechaSolicitud  time.Time `json:"fecha_solicitud"`
}
