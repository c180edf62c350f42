package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/egannguyen/go-ordering-service/internal/entity"
)

const serviceName = "ordering-service"

// OrderService is the command surface the handler drives.
type OrderService interface {
	CreateOrder(ctx context.Context, buyerID entity.BuyerID, items []entity.OrderItem, destination entity.Address) (entity.OrderID, error)
	PayOrder(ctx context.Context, id entity.OrderID) error
	CancelOrder(ctx context.Context, id entity.OrderID) error
	GetOrder(ctx context.Context, id entity.OrderID) (*entity.Order, error)
}

// Handler handles HTTP requests for the order resource.
type Handler struct {
	orders OrderService
}

func NewHandler(orders OrderService) *Handler {
	return &Handler{orders: orders}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/orders", h.handleCreateOrder)
	mux.HandleFunc("GET /api/orders/{id}", h.handleGetOrder)
	mux.HandleFunc("PATCH /api/orders/{id}", h.handleUpdateOrder)
}

type orderItemPayload struct {
	ProductID string          `json:"product_id"`
	Amount    decimal.Decimal `json:"amount"`
}

type addressPayload struct {
	HouseNumber string `json:"house_number"`
	Road        string `json:"road"`
	SubDistrict string `json:"sub_district"`
	District    string `json:"district"`
	State       string `json:"state"`
	Postcode    string `json:"postcode"`
	Country     string `json:"country"`
}

type createOrderRequest struct {
	BuyerID     string             `json:"buyer_id"`
	Items       []orderItemPayload `json:"items"`
	Destination addressPayload     `json:"destination"`
}

type updateOrderRequest struct {
	Status string `json:"status"`
}

type orderDetail struct {
	OrderID      entity.OrderID     `json:"order_id"`
	BuyerID      entity.BuyerID     `json:"buyer_id"`
	PaymentID    entity.PaymentID   `json:"payment_id"`
	Items        []entity.OrderItem `json:"items"`
	ProductCost  decimal.Decimal    `json:"product_cost"`
	DeliveryCost decimal.Decimal    `json:"delivery_cost"`
	TotalCost    decimal.Decimal    `json:"total_cost"`
	Status       entity.OrderStatus `json:"status"`
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_REQUEST_BODY", "invalid request body")
		return
	}

	buyerID, err := entity.ParseBuyerID(req.BuyerID)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "BUYER_ID_REQUIRED", "buyer_id is required")
		return
	}

	items := make([]entity.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := entity.ParseProductID(item.ProductID)
		if err != nil {
			writeError(w, r, http.StatusUnprocessableEntity, "PRODUCT_ID_REQUIRED", "item product_id is required")
			return
		}
		if item.Amount.IsNegative() {
			writeError(w, r, http.StatusUnprocessableEntity, "AMOUNT_INVALID", "item amount must not be negative")
			return
		}
		items = append(items, entity.OrderItem{ProductID: productID, Amount: item.Amount})
	}

	destination := entity.Address{
		HouseNumber: req.Destination.HouseNumber,
		Road:        req.Destination.Road,
		SubDistrict: req.Destination.SubDistrict,
		District:    req.Destination.District,
		State:       req.Destination.State,
		Postcode:    req.Destination.Postcode,
		Country:     req.Destination.Country,
	}

	orderID, err := h.orders.CreateOrder(r.Context(), buyerID, items, destination)
	if err != nil {
		slog.Error("Failed to create order", "err", err)
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"order_id": string(orderID)})
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := entity.ParseOrderID(r.PathValue("id"))
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "ORDER_ID_REQUIRED", "order_id is required")
		return
	}

	order, err := h.orders.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, entity.ErrEntityNotFound) {
			writeError(w, r, http.StatusNotFound, "ORDER_NOT_FOUND", "order "+string(orderID)+" not found")
			return
		}
		slog.Error("Failed to get order", "order_id", orderID, "err", err)
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, orderDetail{
		OrderID:      order.ID,
		BuyerID:      order.BuyerID,
		PaymentID:    order.PaymentID,
		Items:        order.Items,
		ProductCost:  order.ProductCost,
		DeliveryCost: order.DeliveryCost,
		TotalCost:    order.TotalCost(),
		Status:       order.Status,
	})
}

func (h *Handler) handleUpdateOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := entity.ParseOrderID(r.PathValue("id"))
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "ORDER_ID_REQUIRED", "order_id is required")
		return
	}

	var req updateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_REQUEST_BODY", "invalid request body")
		return
	}

	status := entity.OrderStatus(req.Status)
	if !status.Valid() {
		writeError(w, r, http.StatusUnprocessableEntity, "ORDER_STATUS_INVALID", "invalid status value")
		return
	}

	switch status {
	case entity.StatusPaid:
		h.payOrder(w, r, orderID)
	case entity.StatusCancelled:
		h.cancelOrder(w, r, orderID)
	default:
		writeError(w, r, http.StatusUnprocessableEntity, "CANNOT_UPDATE_TO_STATUS",
			"cannot update order status to "+req.Status)
	}
}

func (h *Handler) payOrder(w http.ResponseWriter, r *http.Request, orderID entity.OrderID) {
	err := h.orders.PayOrder(r.Context(), orderID)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{
			"order_id": string(orderID),
			"status":   string(entity.StatusPaid),
		})
	case errors.Is(err, entity.ErrAlreadyCancelled):
		writeError(w, r, http.StatusConflict, "CANNOT_PAY_CANCELLED",
			"cannot pay for order when it's already cancelled")
	case errors.Is(err, entity.ErrAlreadyPaid):
		writeError(w, r, http.StatusConflict, "CANNOT_PAY_ALREADY_PAID",
			"cannot pay for order when it's already paid")
	case errors.Is(err, entity.ErrPaymentNotVerified):
		writeError(w, r, http.StatusForbidden, "PAYMENT_VERIFICATION_FAILED",
			"payment verification failed")
	default:
		writeServiceError(w, r, err)
	}
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request, orderID entity.OrderID) {
	err := h.orders.CancelOrder(r.Context(), orderID)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{
			"order_id": string(orderID),
			"status":   string(entity.StatusCancelled),
		})
	case errors.Is(err, entity.ErrAlreadyCancelled):
		writeError(w, r, http.StatusConflict, "CANNOT_CANCEL_ALREADY_CANCELLED",
			"cannot cancel order when it's already cancelled")
	case errors.Is(err, entity.ErrAlreadyPaid):
		writeError(w, r, http.StatusConflict, "CANNOT_CANCEL_ALREADY_PAID",
			"cannot cancel order when it's already paid")
	default:
		writeServiceError(w, r, err)
	}
}

// writeServiceError maps the remaining named conditions that any
// command can surface.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, entity.ErrEntityNotFound):
		writeError(w, r, http.StatusNotFound, "ORDER_NOT_FOUND", "order not found")
	case errors.Is(err, entity.ErrEntityOutdated):
		writeError(w, r, http.StatusConflict, "ENTITY_OUTDATED", "entity version is outdated")
	case errors.Is(err, entity.ErrPersistence):
		writeError(w, r, http.StatusInternalServerError, "PERSISTENCE_ERROR", "persistence error")
	case errors.Is(err, entity.ErrBlankIdentifier), errors.Is(err, entity.ErrNegativeAmount), errors.Is(err, entity.ErrInvalidStatus):
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_FAILED", err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, name, detail string) {
	writeJSON(w, status, map[string]any{
		"service":  serviceName,
		"name":     name,
		"detail":   detail,
		"resource": r.URL.Path,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// EnableCORS is a middleware to allow a browser frontend to connect.
func EnableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
