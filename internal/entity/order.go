package entity

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusWaiting   OrderStatus = "waiting"
	StatusPaid      OrderStatus = "paid"
	StatusCancelled OrderStatus = "cancelled"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusWaiting, StatusPaid, StatusCancelled:
		return true
	}
	return false
}

// Typed string identifiers. All of them share the non-blank invariant
// enforced by the Parse functions.
type (
	OrderID   string
	BuyerID   string
	PaymentID string
	ProductID string
)

func (id OrderID) String() string   { return string(id) }
func (id BuyerID) String() string   { return string(id) }
func (id PaymentID) String() string { return string(id) }
func (id ProductID) String() string { return string(id) }

func parseID(kind, s string) (string, error) {
	if isBlank(s) {
		return "", fmt.Errorf("%s: %w", kind, ErrBlankIdentifier)
	}
	return s, nil
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}

func ParseOrderID(s string) (OrderID, error) {
	id, err := parseID("order id", s)
	return OrderID(id), err
}

func ParseBuyerID(s string) (BuyerID, error) {
	id, err := parseID("buyer id", s)
	return BuyerID(id), err
}

func ParsePaymentID(s string) (PaymentID, error) {
	id, err := parseID("payment id", s)
	return PaymentID(id), err
}

func ParseProductID(s string) (ProductID, error) {
	id, err := parseID("product id", s)
	return ProductID(id), err
}

// OrderItem is a line item within an order.
type OrderItem struct {
	ProductID ProductID       `json:"product_id"`
	Amount    decimal.Decimal `json:"amount"`
}

// Address is the delivery destination of an order.
type Address struct {
	HouseNumber string `json:"house_number"`
	Road        string `json:"road"`
	SubDistrict string `json:"sub_district"`
	District    string `json:"district"`
	State       string `json:"state"`
	Postcode    string `json:"postcode"`
	Country     string `json:"country"`
}

// Order is the aggregate root. Version is the optimistic-concurrency
// token: it starts at 0 and the snapshot repository increments it once
// per committed mutation.
type Order struct {
	ID           OrderID         `json:"id"`
	Version      int             `json:"version"`
	BuyerID      BuyerID         `json:"buyer_id"`
	PaymentID    PaymentID       `json:"payment_id"`
	Items        []OrderItem     `json:"items"`
	ProductCost  decimal.Decimal `json:"product_cost"`
	DeliveryCost decimal.Decimal `json:"delivery_cost"`
	Status       OrderStatus     `json:"status"`
}

// NewOrder creates a new aggregate in the waiting state with a generated id.
func NewOrder(buyerID BuyerID, items []OrderItem, productCost, deliveryCost decimal.Decimal, paymentID PaymentID) (*Order, error) {
	order := &Order{
		ID:           OrderID(uuid.NewString()),
		Version:      0,
		BuyerID:      buyerID,
		PaymentID:    paymentID,
		Items:        items,
		ProductCost:  productCost,
		DeliveryCost: deliveryCost,
		Status:       StatusWaiting,
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	return order, nil
}

// Validate checks the structural invariants of the aggregate.
func (o *Order) Validate() error {
	if _, err := ParseOrderID(string(o.ID)); err != nil {
		return err
	}
	if _, err := ParseBuyerID(string(o.BuyerID)); err != nil {
		return err
	}
	if _, err := ParsePaymentID(string(o.PaymentID)); err != nil {
		return err
	}
	if !o.Status.Valid() {
		return fmt.Errorf("status %q: %w", o.Status, ErrInvalidStatus)
	}
	for _, item := range o.Items {
		if _, err := ParseProductID(string(item.ProductID)); err != nil {
			return err
		}
		if item.Amount.IsNegative() {
			return fmt.Errorf("item %s amount %s: %w", item.ProductID, item.Amount, ErrNegativeAmount)
		}
	}
	if o.ProductCost.IsNegative() {
		return fmt.Errorf("product cost %s: %w", o.ProductCost, ErrNegativeAmount)
	}
	if o.DeliveryCost.IsNegative() {
		return fmt.Errorf("delivery cost %s: %w", o.DeliveryCost, ErrNegativeAmount)
	}
	return nil
}

// Pay transitions the order to paid. The status is left untouched when
// the transition is rejected.
func (o *Order) Pay(paymentVerified bool) error {
	if o.IsCancelled() {
		return ErrAlreadyCancelled
	}
	if o.IsPaid() {
		return ErrAlreadyPaid
	}
	if !paymentVerified {
		return fmt.Errorf("payment %s: %w", o.PaymentID, ErrPaymentNotVerified)
	}
	o.Status = StatusPaid
	return nil
}

// Cancel transitions the order to cancelled.
func (o *Order) Cancel() error {
	if o.IsCancelled() {
		return ErrAlreadyCancelled
	}
	if o.IsPaid() {
		return ErrAlreadyPaid
	}
	o.Status = StatusCancelled
	return nil
}

// IncrementVersion bumps the concurrency token by exactly one. Only the
// snapshot repository calls it, once per committed mutation.
func (o *Order) IncrementVersion() {
	o.Version++
}

func (o *Order) IsWaiting() bool   { return o.Status == StatusWaiting }
func (o *Order) IsPaid() bool      { return o.Status == StatusPaid }
func (o *Order) IsCancelled() bool { return o.Status == StatusCancelled }

// TotalCost is derived, never stored.
func (o *Order) TotalCost() decimal.Decimal {
	return o.ProductCost.Add(o.DeliveryCost)
}

// Clone returns an independent value copy of the aggregate, including
// its items slice.
func (o *Order) Clone() Order {
	clone := *o
	clone.Items = make([]OrderItem, len(o.Items))
	copy(clone.Items, o.Items)
	return clone
}
