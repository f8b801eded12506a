package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Item is a catalog entry. Slice fields are stored as JSON arrays.
type Item struct {
	bun.BaseModel `bun:"table:items,alias:i" json:"-" msgpack:"-"`

	ID           uuid.UUID `bun:"id,pk" json:"_id"`
	Title        string    `bun:"title,notnull" json:"title"`
	Description  string    `bun:"description" json:"description"`
	Price        float64   `bun:"price,notnull" json:"price"`
	Quantity     int       `bun:"quantity,notnull" json:"quantity"`
	Tags         []string  `bun:"tags" json:"tags"`
	WishlistedBy []string  `bun:"wishlisted_by" json:"wishlistedBy"`
	Images       []string  `bun:"images" json:"images"`
	Hidden       bool      `bun:"hidden,notnull" json:"-"`
	CreatedAt    time.Time `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt    time.Time `bun:"updated_at,notnull" json:"updatedAt"`
}

// OrderLine is one item of an order with the price the client agreed to.
type OrderLine struct {
	ItemID   string  `json:"_id"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type Delivery struct {
	Pickup  DeliveryMethod `json:"pickup"`
	Address string         `json:"address"`
	Phone   string         `json:"phone"`
	Cost    float64        `json:"cost"`
}

type Payment struct {
	PaymentID    string          `json:"paymentId,omitempty"`
	Platform     PaymentPlatform `json:"platform"`
	PlatformName string          `json:"platformName,omitempty"`
	Paid         bool            `json:"paid"`
}

// Order records a purchase. TotalCost is fixed at creation.
type Order struct {
	bun.BaseModel `bun:"table:orders,alias:o" json:"-" msgpack:"-"`

	ID        uuid.UUID   `bun:"id,pk" json:"_id"`
	UserID    string      `bun:"user_id,notnull" json:"userId"`
	Items     []OrderLine `bun:"items" json:"items"`
	TotalCost float64     `bun:"total_cost,notnull" json:"totalCost"`
	Delivery  Delivery    `bun:"delivery" json:"delivery"`
	Payment   Payment     `bun:"payment" json:"payment"`
	Status    OrderState  `bun:"status,notnull" json:"status"`
	Hidden    bool        `bun:"hidden,notnull" json:"-"`
	CreatedAt time.Time   `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt time.Time   `bun:"updated_at,notnull" json:"updatedAt"`
}

type User struct {
	bun.BaseModel `bun:"table:users,alias:u" json:"-" msgpack:"-"`

	ID        uuid.UUID `bun:"id,pk" json:"_id"`
	Email     string    `bun:"email,notnull" json:"email"`
	Firstname string    `bun:"firstname,notnull" json:"firstname"`
	Lastname  string    `bun:"lastname,notnull" json:"lastname"`
	Role      Role      `bun:"role,notnull" json:"role"`
	Image     string    `bun:"image" json:"image,omitempty"`
	Cart      []string  `bun:"cart" json:"cart"`
	Hidden    bool      `bun:"hidden,notnull" json:"-"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,notnull" json:"updatedAt"`
}

// TotalCost sums price*quantity over lines and adds the delivery cost.
func TotalCost(lines []OrderLine, delivery Delivery) float64 {
	total := 0.0
	for _, l := range lines {
		total += l.Price * float64(l.Quantity)
	}
	return total + delivery.Cost
}

// emptyIfNil keeps JSON columns as [] instead of null.
func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (i *Item) GetID() uuid.UUID      { return i.ID }
func (i *Item) SetID(id uuid.UUID)    { i.ID = id }
func (i *Item) Touch(now time.Time)   { i.UpdatedAt = now }
func (i *Item) SetHidden(hidden bool) { i.Hidden = hidden }

func (o *Order) GetID() uuid.UUID      { return o.ID }
func (o *Order) SetID(id uuid.UUID)    { o.ID = id }
func (o *Order) Touch(now time.Time)   { o.UpdatedAt = now }
func (o *Order) SetHidden(hidden bool) { o.Hidden = hidden }

func (u *User) GetID() uuid.UUID      { return u.ID }
func (u *User) SetID(id uuid.UUID)    { u.ID = id }
func (u *User) Touch(now time.Time)   { u.UpdatedAt = now }
func (u *User) SetHidden(hidden bool) { u.Hidden = hidden }
