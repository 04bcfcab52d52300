package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/sanosuguru/go-ticket-sales/internal/domain/cart"
)

// CartHandler はカートと決済のハンドラー
type CartHandler struct {
	service        CartServiceInterface
	paymentTimeout time.Duration
}

// NewCartHandler はCartHandlerを作成する
func NewCartHandler(s CartServiceInterface, paymentTimeout time.Duration) *CartHandler {
	return &CartHandler{service: s, paymentTimeout: paymentTimeout}
}

type CreateCartRequest struct {
	CustomerID string `json:"customer_id" validate:"required"`
	EventID    string `json:"event_id" validate:"required"`
}

type CartResponse struct {
	ID               string          `json:"id"`
	CustomerID       string          `json:"customer_id"`
	EventID          string          `json:"event_id"`
	TicketIDs        []string        `json:"ticket_ids"`
	Total            decimal.Decimal `json:"total"`
	PaymentProcessed bool            `json:"payment_processed"`
	CreatedAt        time.Time       `json:"created_at"`
}

func toCartResponse(c *cart.Cart) CartResponse {
	return CartResponse{
		ID: c.ID, CustomerID: c.CustomerID, EventID: c.EventID,
		TicketIDs: c.TicketIDs, Total: c.Total,
		PaymentProcessed: c.PaymentProcessed, CreatedAt: c.CreatedAt,
	}
}

// Create は新しいカートを作成する
func (h *CartHandler) Create(c echo.Context) error {
	var req CreateCartRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	created, err := h.service.CreateCart(c.Request().Context(), req.CustomerID, req.EventID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toCartResponse(created))
}

// GetByID はカートを取得する
func (h *CartHandler) GetByID(c echo.Context) error {
	found, err := h.service.GetCart(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCartResponse(found))
}

type CartTicketRequest struct {
	TicketID string `json:"ticket_id" validate:"required"`
}

// AddTicket はチケットをカートに保留する
func (h *CartHandler) AddTicket(c echo.Context) error {
	var req CartTicketRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	updated, err := h.service.AddTicketToCart(c.Request().Context(), c.Param("id"), req.TicketID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCartResponse(updated))
}

// RemoveTicket はチケットをカートから取り除く
func (h *CartHandler) RemoveTicket(c echo.Context) error {
	updated, err := h.service.RemoveTicketFromCart(c.Request().Context(), c.Param("id"), c.Param("ticketID"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCartResponse(updated))
}

// Clear はカートを空にする
func (h *CartHandler) Clear(c echo.Context) error {
	updated, err := h.service.ClearCart(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCartResponse(updated))
}

type CheckoutRequest struct {
	CardNumber  string `json:"card_number" validate:"required"`
	HolderName  string `json:"holder_name" validate:"required"`
	ExpiryMonth int    `json:"expiry_month" validate:"required"`
	ExpiryYear  int    `json:"expiry_year" validate:"required"`
	CVV         string `json:"cvv" validate:"required"`
}

// Checkout はカード情報を検証し、カート内の全チケットを購入する
// 決済はタイムアウト付きで実行される
func (h *CartHandler) Checkout(c echo.Context) error {
	var req CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if h.paymentTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.paymentTimeout)
		defer cancel()
	}

	processed, err := h.service.ProcessPayment(ctx, c.Param("id"), cart.CardDetails{
		Number:      req.CardNumber,
		HolderName:  req.HolderName,
		ExpiryMonth: req.ExpiryMonth,
		ExpiryYear:  req.ExpiryYear,
		CVV:         req.CVV,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCartResponse(processed))
}

// Finalize はカートを確定し、保留中のチケットをすべて解放する
func (h *CartHandler) Finalize(c echo.Context) error {
	finalized, err := h.service.FinalizeCart(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCartResponse(finalized))
}
