package domain

type DeliveryMethod string

const (
	DeliveryStation DeliveryMethod = "STATION"
	DeliveryHome    DeliveryMethod = "HOME"
)

type PaymentPlatform string

const (
	PlatformBank PaymentPlatform = "BANK"
	PlatformCard PaymentPlatform = "CARD"
	PlatformCash PaymentPlatform = "CASH"
)

type OrderState string

const (
	OrderOrdered    OrderState = "ORDERED"
	OrderProcessing OrderState = "PROCESSING"
	OrderShipped    OrderState = "SHIPPED"
	OrderDelivered  OrderState = "DELIVERED"
	OrderCancelled  OrderState = "CANCELLED"
)

// Role is an access right carried by an identity.
type Role string

const (
	RoleSuperAdmin Role = "SUPERADMIN"
	RoleAdmin      Role = "ADMIN"
	RoleUser       Role = "USER"
)

// Sort orders listings by creation time.
type Sort string

const (
	SortAsc  Sort = "asc"
	SortDesc Sort = "desc"
)

// AdminRoles may manage the catalog and orders.
var AdminRoles = []Role{RoleSuperAdmin, RoleAdmin}
