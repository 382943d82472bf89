package entity

// Role rol del actor que consulta o modifica facturas.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
	RoleClient   Role = "client"
)

// Valid indica si el rol es conocido.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEmployee || r == RoleClient
}

// Actor identidad que ejecuta una operación. Para RoleClient, ID es el clientId.
type Actor struct {
	ID   string
	Role Role
}
