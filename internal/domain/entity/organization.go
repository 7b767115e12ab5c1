package entity

import "time"

// Roles de organización en la cadena de suministro.
type Role string

const (
	RoleManufacturer Role = "MANUFACTURER"
	RoleDistributor  Role = "DISTRIBUTOR"
	RoleHospital     Role = "HOSPITAL"
	RoleAdmin        Role = "ADMIN"
)

// Estados de organización. Solo las organizaciones ACTIVE pueden operar.
type OrganizationStatus string

const (
	OrganizationPending  OrganizationStatus = "PENDING"
	OrganizationActive   OrganizationStatus = "ACTIVE"
	OrganizationInactive OrganizationStatus = "INACTIVE"
	OrganizationRejected OrganizationStatus = "REJECTED"
)

// Organization representa un participante de la cadena (fabricante, distribuidor u hospital).
// El alta y la aprobación de organizaciones es responsabilidad de un sistema externo;
// el motor solo consume rol y estado.
type Organization struct {
	ID        string
	Name      string
	Role      Role
	Status    OrganizationStatus
	LotPrefix string // prefijo de número de lote, solo fabricantes; vacío = prefijo por defecto
	CreatedAt time.Time
}

// CanOperate indica si la organización está habilitada para operar.
func (o *Organization) CanOperate() bool {
	return o.Status == OrganizationActive
}
