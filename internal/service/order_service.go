package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/egannguyen/go-ordering-service/internal/entity"
	"github.com/egannguyen/go-ordering-service/internal/messaging"
	"github.com/egannguyen/go-ordering-service/internal/metrics"
	"github.com/egannguyen/go-ordering-service/internal/payment"
	"github.com/egannguyen/go-ordering-service/internal/pricing"
	"github.com/egannguyen/go-ordering-service/internal/repository"
	"github.com/egannguyen/go-ordering-service/internal/shipping"
)

// OrderService orchestrates order commands. Every command is a single
// sequential pass: load state, call collaborators, mutate the aggregate
// in memory, persist the snapshot, publish the domain event. Nothing is
// retried; the first failure aborts the command with no partial state
// committed.
type OrderService struct {
	repo      repository.OrderRepository
	pricer    pricing.Pricer
	payments  payment.Gateway
	delivery  shipping.CostCalculator
	publisher messaging.Publisher
	metrics   *metrics.CommandMetrics
}

func NewOrderService(
	repo repository.OrderRepository,
	pricer pricing.Pricer,
	payments payment.Gateway,
	delivery shipping.CostCalculator,
	publisher messaging.Publisher,
	commandMetrics *metrics.CommandMetrics,
) *OrderService {
	return &OrderService{
		repo:      repo,
		pricer:    pricer,
		payments:  payments,
		delivery:  delivery,
		publisher: publisher,
		metrics:   commandMetrics,
	}
}

// CreateOrder prices the items, opens a payment for the product total,
// prices the delivery, then persists a new waiting order and publishes
// order_created. A collaborator failure aborts before anything is
// saved.
func (s *OrderService) CreateOrder(ctx context.Context, buyerID entity.BuyerID, items []entity.OrderItem, destination entity.Address) (id entity.OrderID, err error) {
	defer s.track("create_order", time.Now(), &err)

	productCost, err := s.pricer.TotalPrice(ctx, items)
	if err != nil {
		return "", fmt.Errorf("price items: %w", err)
	}

	paymentID, err := s.payments.NewPayment(ctx, productCost)
	if err != nil {
		return "", fmt.Errorf("open payment: %w", err)
	}

	deliveryCost, err := s.delivery.CalculateCost(ctx, productCost, destination)
	if err != nil {
		return "", fmt.Errorf("price delivery: %w", err)
	}

	order, err := entity.NewOrder(buyerID, items, productCost, deliveryCost, paymentID)
	if err != nil {
		return "", err
	}

	if err := s.repo.Save(ctx, order); err != nil {
		return "", err
	}

	if err := s.publisher.Publish(ctx, entity.NewOrderCreated(order)); err != nil {
		return "", fmt.Errorf("publish order_created: %w", err)
	}

	slog.Info("Order created",
		"order_id", order.ID,
		"buyer_id", buyerID,
		"payment_id", paymentID,
		"total_cost", order.TotalCost(),
	)
	return order.ID, nil
}

// PayOrder verifies the order's stored payment and marks it paid.
// State-machine violations propagate unchanged.
func (s *OrderService) PayOrder(ctx context.Context, id entity.OrderID) (err error) {
	defer s.track("pay_order", time.Now(), &err)

	order, err := s.repo.Load(ctx, id)
	if err != nil {
		return err
	}

	verified, err := s.payments.VerifyPayment(ctx, order.PaymentID)
	if err != nil {
		return fmt.Errorf("verify payment %s: %w", order.PaymentID, err)
	}

	if err := order.Pay(verified); err != nil {
		return err
	}

	if err := s.repo.Save(ctx, order); err != nil {
		return err
	}

	if err := s.publisher.Publish(ctx, entity.NewOrderPaid(order)); err != nil {
		return fmt.Errorf("publish order_paid: %w", err)
	}

	slog.Info("Order paid", "order_id", id, "payment_verified", verified)
	return nil
}

// CancelOrder marks the order cancelled. State-machine violations
// propagate unchanged.
func (s *OrderService) CancelOrder(ctx context.Context, id entity.OrderID) (err error) {
	defer s.track("cancel_order", time.Now(), &err)

	order, err := s.repo.Load(ctx, id)
	if err != nil {
		return err
	}

	if err := order.Cancel(); err != nil {
		return err
	}

	if err := s.repo.Save(ctx, order); err != nil {
		return err
	}

	if err := s.publisher.Publish(ctx, entity.NewOrderCancelled(order)); err != nil {
		return fmt.Errorf("publish order_cancelled: %w", err)
	}

	slog.Info("Order cancelled", "order_id", id)
	return nil
}

// GetOrder is a pure read through the snapshot repository.
func (s *OrderService) GetOrder(ctx context.Context, id entity.OrderID) (*entity.Order, error) {
	return s.repo.Load(ctx, id)
}

func (s *OrderService) track(command string, started time.Time, err *error) {
	if s.metrics != nil {
		s.metrics.Observe(command, *err, time.Since(started))
	}
}
