package model

import "time"

// Notificacion is a generated reminder. Mensaje may carry a direct link
// suffix in the form "texto|URL:/ruta"; the notification service splits it
// before serving.
type Notificacion struct {
	ID          int       `json:"id_notificacion"`
	UsuarioID   int       `json:"id_usuario_fk"`
	Mensaje     string    `json:"mensaje"`
	FechaEnvio  time.Time `json:"fecha_envio"`
	Leida       bool      `json:"leida"`
	SolicitudID int       `json:"solicitud_id_fk"`
}

// ReminderCandidate is a pending correction request the reminder worker
// may still have to notify about.
type ReminderCandidate struct {
	SolicitudID int
	UsuarioID   int
	Campo       string
}
