package model

import "time"

const (
	SolicitudPendiente = "Pendiente"
	SolicitudAprobada  = "Aprobada"
	SolicitudRechazada = "Rechazada"
)

type CorrectionRequest struct {
	ID                int       `json:"id_solicitud"`
	UsuarioID         int       `json:"id_usuario_fk"`
	CampoAModificar   string    `json:"campo_a_modificar"`
	ValorActual       string    `json:"valor_actual"`
	NuevoValor        string    `json:"nuevo_valor"`
	Motivo            string    `json:"motivo"`
	MotivoRespuesta   *string   `json:"motivo_respuesta"`
	EstadoSolicitud   string    `json:"estado_solicitud"`
	FechaSolicitud    time.Time `json:"fecha_solicitud"`
	SolicitanteNombre string    `json:"solicitante_nombre,omitempty"`
}
