package model

import "time"

// Audit action codes written to the bitacora.
const (
	AccionCrearUsuario      = "CREAR_USUARIO"
	AccionInicioSesion      = "INICIO_SESION"
	AccionEditarUsuario     = "EDITAR_USUARIO"
	AccionEliminarUsuario   = "ELIMINAR_USUARIO"
	AccionActualizarEstado  = "ACTUALIZAR_ESTADO_USUARIO"
	AccionCrearSolicitud    = "CREAR_SOLICITUD"
	AccionAprobarSolicitud  = "APROBAR_SOLICITUD"
	AccionRechazarSolicitud = "RECHAZAR_SOLICITUD"
	AccionCrearReporte      = "CREAR_REPORTE"

	AccionCrearEvidencia         = "CREAR_EVIDENCIA"
	AccionCrearEvidenciaMultiple = "CREAR_EVIDENCIA_MULTIPLE"
	AccionEditarEvidencia        = "EDITAR_EVIDENCIA"
	AccionEliminarEvidencia      = "ELIMINAR_EVIDENCIA"
	AccionCalificarEvidencia     = "CALIFICAR_EVIDENCIA"
)

type AuditEntry struct {
	ID                 int       `json:"id_bitacora"`
	UsuarioID          int       `json:"id_usuario_fk"`
	Accion             string    `json:"accion"`
	Descripcion        string    `json:"descripcion"`
	TablaAfectada      string    `json:"tabla_afectada"`
	RegistroAfectadoID *int      `json:"id_registro_afectado"`
	FechaAccion        time.Time `json:"fecha_accion"`
}
