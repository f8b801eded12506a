package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
)

// DefaultPageLimit applies when a listing query carries no limit.
const DefaultPageLimit = 20

// MaxUploadImages caps the files accepted by a single image upload.
const MaxUploadImages = 5

var phonePattern = regexp.MustCompile(`^[\+]?[(]?[0-9]{3}[)]?[-\s\.]?[0-9]{3}[-\s\.]?[0-9]{4,7}$`)

var (
	required    = validation.NotNil.Error("is required")
	notEmpty    = validation.Required.Error("is required")
	notBlank    = validation.NilOrNotEmpty.Error("is not allowed to be empty")
	sortOrder   = validation.In(SortAsc, SortDesc).Error("must be one of [asc, desc]")
	nonNegative = validation.Min(0).Error("must be greater than or equal to 0")
)

// positive rejects zero and negative prices, including an explicit 0 that
// validation.Min would treat as empty.
var positive = validation.By(func(value any) error {
	var f float64
	switch v := value.(type) {
	case *float64:
		if v == nil {
			return nil
		}
		f = *v
	case float64:
		f = v
	default:
		return errors.New("must be a number")
	}
	if f <= 0 {
		return errors.New("must be a positive number")
	}
	return nil
})

// CheckID validates a path identifier.
func CheckID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return Validation("id", "is not a valid uuid")
	}
	return nil
}

// ItemInput is the payload of an item creation.
type ItemInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
	Quantity    *int     `json:"quantity"`
	Tags        []string `json:"tags"`
}

func (in ItemInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, notEmpty),
		validation.Field(&in.Price, required, positive),
		validation.Field(&in.Quantity, nonNegative),
	)
}

// Item builds a new visible record.
func (in ItemInput) Item(now time.Time) *Item {
	item := &Item{
		ID:           uuid.New(),
		Title:        strings.TrimSpace(in.Title),
		Description:  in.Description,
		Tags:         emptyIfNil(in.Tags),
		WishlistedBy: []string{},
		Images:       []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if in.Price != nil {
		item.Price = *in.Price
	}
	if in.Quantity != nil {
		item.Quantity = *in.Quantity
	}
	return item
}

// ItemPatch carries the fields an item update may change.
type ItemPatch struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Price       *float64  `json:"price"`
	Quantity    *int      `json:"quantity"`
	Tags        *[]string `json:"tags"`
}

func (p ItemPatch) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title, notBlank),
		validation.Field(&p.Price, positive),
		validation.Field(&p.Quantity, nonNegative),
	)
}

// Apply copies the set fields onto item.
func (p ItemPatch) Apply(item *Item) {
	if p.Title != nil {
		item.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.Price != nil {
		item.Price = *p.Price
	}
	if p.Quantity != nil {
		item.Quantity = *p.Quantity
	}
	if p.Tags != nil {
		item.Tags = emptyIfNil(*p.Tags)
	}
}

// ItemQuery filters and pages item listings. Its serialized form is the list
// cache discriminator, so every field takes part in the key.
type ItemQuery struct {
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
	Sort   Sort   `json:"sort"`
	Query  string `json:"query"`
}

func (q ItemQuery) Validate() error {
	return validation.ValidateStruct(&q,
		validation.Field(&q.Limit, nonNegative),
		validation.Field(&q.Offset, nonNegative),
		validation.Field(&q.Sort, sortOrder),
	)
}

// Normalize fills defaults so equivalent requests share a cache key.
func (q ItemQuery) Normalize(pageLimit int) ItemQuery {
	q.Limit, q.Sort = normalizePage(q.Limit, q.Sort, pageLimit)
	q.Query = strings.ToLower(strings.TrimSpace(q.Query))
	return q
}

type OrderLineInput struct {
	ItemID   string   `json:"_id"`
	Quantity *int     `json:"quantity"`
	Price    *float64 `json:"price"`
}

func (in OrderLineInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.ItemID, notEmpty),
		validation.Field(&in.Quantity, required, validation.Min(1).Error("must be greater than or equal to 1")),
		validation.Field(&in.Price, required),
	)
}

type DeliveryInput struct {
	Pickup  DeliveryMethod `json:"pickup"`
	Address string         `json:"address"`
	Phone   string         `json:"phone"`
	Cost    *float64       `json:"cost"`
}

func (in DeliveryInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Pickup, notEmpty, validation.In(DeliveryStation, DeliveryHome).Error("must be one of [STATION, HOME]")),
		validation.Field(&in.Address, notEmpty),
		validation.Field(&in.Phone, notEmpty, validation.Match(phonePattern).Error("must be a valid phone number")),
		validation.Field(&in.Cost, required),
	)
}

type PaymentInput struct {
	PaymentID    string          `json:"paymentId"`
	Platform     PaymentPlatform `json:"platform"`
	PlatformName string          `json:"platformName"`
	Paid         *bool           `json:"paid"`
}

func (in PaymentInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Platform, notEmpty, validation.In(PlatformBank, PlatformCard, PlatformCash).Error("must be one of [BANK, CARD, CASH]")),
	)
}

func (in *PaymentInput) payment() Payment {
	if in == nil {
		return Payment{Platform: PlatformCash}
	}
	p := Payment{PaymentID: in.PaymentID, Platform: in.Platform, PlatformName: in.PlatformName}
	if in.Paid != nil {
		p.Paid = *in.Paid
	}
	return p
}

// OrderInput is the payload of an order creation.
type OrderInput struct {
	Items    []OrderLineInput `json:"items"`
	Delivery *DeliveryInput   `json:"delivery"`
	Payment  *PaymentInput    `json:"payment"`
}

func (in OrderInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Items, required),
		validation.Field(&in.Delivery, required),
		validation.Field(&in.Payment),
	)
}

// Order builds an order for userID. Payment defaults to unpaid cash and the
// total is computed once here.
func (in OrderInput) Order(userID string, now time.Time) *Order {
	lines := make([]OrderLine, 0, len(in.Items))
	for _, l := range in.Items {
		line := OrderLine{ItemID: l.ItemID}
		if l.Quantity != nil {
			line.Quantity = *l.Quantity
		}
		if l.Price != nil {
			line.Price = *l.Price
		}
		lines = append(lines, line)
	}

	var delivery Delivery
	if d := in.Delivery; d != nil {
		delivery = Delivery{Pickup: d.Pickup, Address: d.Address, Phone: d.Phone}
		if d.Cost != nil {
			delivery.Cost = *d.Cost
		}
	}

	return &Order{
		ID:        uuid.New(),
		UserID:    userID,
		Items:     lines,
		TotalCost: TotalCost(lines, delivery),
		Delivery:  delivery,
		Payment:   in.Payment.payment(),
		Status:    OrderOrdered,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// OrderPatch is the admin update of an order. The total is never patched.
type OrderPatch struct {
	Status  *OrderState   `json:"status"`
	Payment *PaymentInput `json:"payment"`
}

func (p OrderPatch) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Status, validation.In(OrderOrdered, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled).
			Error("must be one of [ORDERED, PROCESSING, SHIPPED, DELIVERED, CANCELLED]")),
		validation.Field(&p.Payment),
	)
}

func (p OrderPatch) Apply(o *Order) {
	if p.Status != nil {
		o.Status = *p.Status
	}
	if p.Payment != nil {
		o.Payment = p.Payment.payment()
	}
}

// OrderQuery pages order listings, optionally for one user.
type OrderQuery struct {
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
	Sort   Sort   `json:"sort"`
	User   string `json:"user"`
}

func (q OrderQuery) Validate() error {
	return validation.ValidateStruct(&q,
		validation.Field(&q.Limit, nonNegative),
		validation.Field(&q.Offset, nonNegative),
		validation.Field(&q.Sort, sortOrder),
		validation.Field(&q.User, is.UUID.Error("is not a valid uuid")),
	)
}

func (q OrderQuery) Normalize(pageLimit int) OrderQuery {
	q.Limit, q.Sort = normalizePage(q.Limit, q.Sort, pageLimit)
	return q
}

// UserInput registers a user.
type UserInput struct {
	Email     string `json:"email"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Role      Role   `json:"role"`
}

func (in UserInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Email, notEmpty, is.EmailFormat.Error("must be a valid email")),
		validation.Field(&in.Firstname, notEmpty),
		validation.Field(&in.Lastname, notEmpty),
		validation.Field(&in.Role, validation.In(RoleSuperAdmin, RoleAdmin, RoleUser).Error("must be one of [SUPERADMIN, ADMIN, USER]")),
	)
}

func (in UserInput) User(now time.Time) *User {
	role := in.Role
	if role == "" {
		role = RoleUser
	}
	return &User{
		ID:        uuid.New(),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Firstname: in.Firstname,
		Lastname:  in.Lastname,
		Role:      role,
		Cart:      []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

type UserPatch struct {
	Firstname *string `json:"firstname"`
	Lastname  *string `json:"lastname"`
}

func (p UserPatch) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Firstname, notBlank),
		validation.Field(&p.Lastname, notBlank),
	)
}

func (p UserPatch) Apply(u *User) {
	if p.Firstname != nil {
		u.Firstname = *p.Firstname
	}
	if p.Lastname != nil {
		u.Lastname = *p.Lastname
	}
}

// UserQuery pages user listings; Query matches email and names.
type UserQuery struct {
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
	Sort   Sort   `json:"sort"`
	Query  string `json:"query"`
}

func (q UserQuery) Validate() error {
	return validation.ValidateStruct(&q,
		validation.Field(&q.Limit, nonNegative),
		validation.Field(&q.Offset, nonNegative),
		validation.Field(&q.Sort, sortOrder),
	)
}

func (q UserQuery) Normalize(pageLimit int) UserQuery {
	q.Limit, q.Sort = normalizePage(q.Limit, q.Sort, pageLimit)
	q.Query = strings.ToLower(strings.TrimSpace(q.Query))
	return q
}

// CartInput lists item ids to add to or remove from a cart.
type CartInput struct {
	Items []string `json:"items"`
}

func (in CartInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Items, notEmpty, validation.Each(is.UUID.Error("is not a valid uuid"))),
	)
}

// ImageRemoval lists stored image paths to detach from an item.
type ImageRemoval struct {
	Files []string `json:"files"`
}

func (in ImageRemoval) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Files, validation.Required.Error("are not valid"), validation.Each(notEmpty)),
	)
}

func normalizePage(limit int, sort Sort, pageLimit int) (int, Sort) {
	if pageLimit <= 0 {
		pageLimit = DefaultPageLimit
	}
	if limit <= 0 {
		limit = pageLimit
	}
	if sort == "" {
		sort = SortDesc
	}
	return limit, sort
}
