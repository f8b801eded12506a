package domain

import (
	"testing"
	"time"
)

func ptr[T any](v T) *T { return &v }

func validOrder() OrderInput {
	return OrderInput{
		Items: []OrderLineInput{{ItemID: "a", Quantity: ptr(2), Price: ptr(1000.0)}},
		Delivery: &DeliveryInput{
			Pickup:  DeliveryHome,
			Address: "New house address",
			Phone:   "1234567890",
			Cost:    ptr(1000.0),
		},
		Payment: &PaymentInput{Platform: PlatformCard, PlatformName: "Paystack", Paid: ptr(true)},
	}
}

func TestCheck_FirstFailingField(t *testing.T) {
	tests := []struct {
		name   string
		input  interface{ Validate() error }
		field  string
		expect string
	}{
		{
			name:   "missing title",
			input:  ItemInput{Price: ptr(10.0)},
			field:  "title",
			expect: `"title" is required`,
		},
		{
			name:   "missing price",
			input:  ItemInput{Title: "Lamp"},
			field:  "price",
			expect: `"price" is required`,
		},
		{
			name:   "zero price",
			input:  ItemInput{Title: "Lamp", Price: ptr(0.0)},
			field:  "price",
			expect: `"price" must be a positive number`,
		},
		{
			name:   "title reported before price",
			input:  ItemInput{},
			field:  "title",
			expect: `"title" is required`,
		},
		{
			name: "missing line quantity",
			input: func() OrderInput {
				o := validOrder()
				o.Items = append(o.Items, OrderLineInput{ItemID: "b", Price: ptr(1.0)})
				o.Items[0].Quantity = nil
				return o
			}(),
			field:  "items[0].quantity",
			expect: `"items[0].quantity" is required`,
		},
		{
			name: "missing line price",
			input: func() OrderInput {
				o := validOrder()
				o.Items[0].Price = nil
				return o
			}(),
			field:  "items[0].price",
			expect: `"items[0].price" is required`,
		},
		{
			name: "missing delivery",
			input: func() OrderInput {
				o := validOrder()
				o.Delivery = nil
				return o
			}(),
			field:  "delivery",
			expect: `"delivery" is required`,
		},
		{
			name: "bad pickup",
			input: func() OrderInput {
				o := validOrder()
				o.Delivery.Pickup = "DRONE"
				return o
			}(),
			field:  "delivery.pickup",
			expect: `"delivery.pickup" must be one of [STATION, HOME]`,
		},
		{
			name: "bad phone",
			input: func() OrderInput {
				o := validOrder()
				o.Delivery.Phone = "call me"
				return o
			}(),
			field:  "delivery.phone",
			expect: `"delivery.phone" must be a valid phone number`,
		},
		{
			name: "missing delivery cost",
			input: func() OrderInput {
				o := validOrder()
				o.Delivery.Cost = nil
				return o
			}(),
			field:  "delivery.cost",
			expect: `"delivery.cost" is required`,
		},
		{
			name: "missing platform",
			input: func() OrderInput {
				o := validOrder()
				o.Payment.Platform = ""
				return o
			}(),
			field:  "payment.platform",
			expect: `"payment.platform" is required`,
		},
		{
			name:   "bad status",
			input:  OrderPatch{Status: ptr(OrderState("LOST"))},
			field:  "status",
			expect: `"status" must be one of [ORDERED, PROCESSING, SHIPPED, DELIVERED, CANCELLED]`,
		},
		{
			name:   "empty cart",
			input:  CartInput{},
			field:  "items",
			expect: `"items" is required`,
		},
		{
			name:   "cart id not a uuid",
			input:  CartInput{Items: []string{"6f1c1a52-8d1e-4a5e-9b7c-0c6f3d2e1a00", "nope"}},
			field:  "items[1]",
			expect: `"items[1]" is not a valid uuid`,
		},
		{
			name:   "no files",
			input:  ImageRemoval{},
			field:  "files",
			expect: `"files" are not valid`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.input)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !IsValidation(err) {
				t.Errorf("expected validation category but got: %v", err)
			}
			if got := FieldOf(err); got != tt.field {
				t.Errorf("expected field %s but got: %s", tt.field, got)
			}
			if got := Message(err); got != tt.expect {
				t.Errorf("expected message %s but got: %s", tt.expect, got)
			}
		})
	}
}

func TestCheck_ValidInputs(t *testing.T) {
	inputs := []interface{ Validate() error }{
		ItemInput{Title: "New Item", Price: ptr(1000.0), Quantity: ptr(100), Tags: []string{"New", "item"}},
		ItemPatch{},
		validOrder(),
		OrderInput{Items: []OrderLineInput{}, Delivery: validOrder().Delivery},
		OrderPatch{Status: ptr(OrderShipped)},
		UserInput{Email: "ada@example.com", Firstname: "Ada", Lastname: "Lovelace"},
		ItemQuery{Sort: SortAsc},
	}
	for i, in := range inputs {
		if err := Check(in); err != nil {
			t.Errorf("input %d: unexpected error: %v", i, err)
		}
	}
}

func TestCheckID(t *testing.T) {
	if err := CheckID("6f1c1a52-8d1e-4a5e-9b7c-0c6f3d2e1a00"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	err := CheckID("123")
	if err == nil || Message(err) != `"id" is not a valid uuid` {
		t.Errorf("expected invalid uuid error but got: %v", err)
	}
}

func TestOrderInput_TotalAndDefaults(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	in := validOrder()
	in.Items = append(in.Items, OrderLineInput{ItemID: "b", Quantity: ptr(1), Price: ptr(500.0)})
	in.Payment = nil

	o := in.Order("user-1", now)
	if o.TotalCost != 2*1000+500+1000 {
		t.Errorf("expected total 3500 but got: %v", o.TotalCost)
	}
	if o.Status != OrderOrdered {
		t.Errorf("expected status ORDERED but got: %s", o.Status)
	}
	if o.Payment.Platform != PlatformCash || o.Payment.Paid {
		t.Errorf("expected unpaid cash payment but got: %+v", o.Payment)
	}
	if o.UserID != "user-1" || o.Hidden {
		t.Errorf("unexpected order %+v", o)
	}

	OrderPatch{Status: ptr(OrderShipped)}.Apply(o)
	if o.TotalCost != 3500 {
		t.Errorf("expected total to survive patch but got: %v", o.TotalCost)
	}
}

func TestTotalCost(t *testing.T) {
	tests := []struct {
		name  string
		lines []OrderLine
		cost  float64
		want  float64
	}{
		{"empty", nil, 0, 0},
		{"delivery only", nil, 250, 250},
		{"stub order", []OrderLine{{Quantity: 2, Price: 1000}}, 1000, 3000},
		{"many lines", []OrderLine{{Quantity: 3, Price: 1.5}, {Quantity: 1, Price: 2}}, 0.5, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TotalCost(tt.lines, Delivery{Cost: tt.cost}); got != tt.want {
				t.Errorf("expected %v but got: %v", tt.want, got)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	q := ItemQuery{Query: "  Lamp "}.Normalize(0)
	if q.Limit != DefaultPageLimit || q.Sort != SortDesc || q.Query != "lamp" {
		t.Errorf("unexpected normalized query %+v", q)
	}
	q = ItemQuery{Limit: 5, Sort: SortAsc}.Normalize(50)
	if q.Limit != 5 || q.Sort != SortAsc {
		t.Errorf("expected explicit values to survive but got: %+v", q)
	}
}

func TestItemPatch_Apply(t *testing.T) {
	item := ItemInput{Title: "Lamp", Price: ptr(10.0), Tags: []string{"a"}}.Item(time.Now())
	ItemPatch{Title: ptr(" Desk Lamp "), Tags: &[]string{}}.Apply(item)
	if item.Title != "Desk Lamp" || item.Price != 10 || len(item.Tags) != 0 || item.Tags == nil {
		t.Errorf("unexpected patched item %+v", item)
	}
}
