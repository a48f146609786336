package model

// Role identifiers, as stored in rol.id_rol. They drive both access scope
// and the post-login landing page.
const (
	RolInstructor    = 1
	RolAdministrador = 2
	RolEvaluador     = 3
)

const (
	DocumentoCC = "CC"
	DocumentoCE = "CE"
)

type User struct {
	ID              int     `json:"id_usuario"`
	PrimerNombre    string  `json:"primer_nombre"`
	SegundoNombre   *string `json:"segundo_nombre"`
	PrimerApellido  string  `json:"primer_apellido"`
	SegundoApellido string  `json:"segundo_apellido"`
	TipoDocumento   string  `json:"tipo_documento"`
	NumeroDocumento int64   `json:"numero_documento"`
	Correo          string  `json:"correo"`
	Rol             int     `json:"rol_fk"`
	HashedPassword  string  `json:"-"`
	NumeroContacto  *int64  `json:"numero_contacto"`
	Direccion       *string `json:"direccion"`
	Estado          bool    `json:"estado"`
	Grado           *string `json:"grado"`
	Regional        string  `json:"regional"`
	ComiteNacional  bool    `json:"comite_nacional"`
}

// NombreCompleto is used for message headers and report rows.
func (u *User) NombreCompleto() string {
	return u.PrimerNombre + " " + u.PrimerApellido
}
