package entity

// Role rol del usuario (claim del JWT).
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSupervisor Role = "supervisor"
	RoleCashier    Role = "cajero"
	RoleWarehouse  Role = "bodeguero"
)

// Capability acción habilitada para un rol.
type Capability string

const (
	CapSell            Capability = "sell"
	CapRefund          Capability = "refund"
	CapOperateCash     Capability = "operate_cash"
	CapManageInventory Capability = "manage_inventory"
	CapManageFolios    Capability = "manage_folios"
	CapManageCatalog   Capability = "manage_catalog"
	CapManageIssuer    Capability = "manage_issuer"
)

// Conjunto explícito de capacidades por rol; un rol desconocido no tiene ninguna.
var roleCapabilities = map[Role][]Capability{
	RoleAdmin:      {CapSell, CapRefund, CapOperateCash, CapManageInventory, CapManageFolios, CapManageCatalog, CapManageIssuer},
	RoleSupervisor: {CapSell, CapRefund, CapOperateCash, CapManageInventory},
	RoleCashier:    {CapSell, CapOperateCash},
	RoleWarehouse:  {CapManageInventory},
}

// Can indica si el rol tiene la capacidad.
func (r Role) Can(c Capability) bool {
	for _, have := range roleCapabilities[r] {
		if have == c {
			return true
		}
	}
	return false
}

// Capabilities devuelve una copia de las capacidades del rol.
func (r Role) Capabilities() []Capability {
	caps := roleCapabilities[r]
	out := make([]Capability, len(caps))
	copy(out, caps)
	return out
}
