package model

import "time"

type Message struct {
	ID              int       `json:"id"`
	RemitenteID     int       `json:"remitente_id"`
	DestinoID       *int      `json:"destino_id"`
	DestinoRol      int       `json:"destino_rol"`
	RespuestaAID    *int      `json:"respuesta_a_id"`
	Asunto          string    `json:"asunto"`
	Contenido       string    `json:"contenido"`
	FechaEnvio      time.Time `json:"fecha_envio"`
	Leido           bool      `json:"leido"`
	RemitenteNombre string    `json:"remitente_nombre,omitempty"`
}
