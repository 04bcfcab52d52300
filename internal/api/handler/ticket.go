package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/sanosuguru/go-ticket-sales/internal/application"
	"github.com/sanosuguru/go-ticket-sales/internal/domain/ticket"
)

// TicketHandler はチケット在庫のハンドラー
type TicketHandler struct {
	service TicketServiceInterface
}

// NewTicketHandler はTicketHandlerを作成する
func NewTicketHandler(s TicketServiceInterface) *TicketHandler {
	return &TicketHandler{service: s}
}

type GenerateTicketsRequest struct {
	BasePrice      decimal.Decimal `json:"base_price" validate:"required"`
	EarlyBirdCount int             `json:"early_bird_count" validate:"min=0"`
	VIPCount       int             `json:"vip_count" validate:"min=0"`
	StandardCount  int             `json:"standard_count" validate:"min=0"`
}

type TicketResponse struct {
	ID          string          `json:"id"`
	EventID     string          `json:"event_id"`
	SectionID   string          `json:"section_id"`
	SeatID      *string         `json:"seat_id,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Type        string          `json:"type"`
	Sold        bool            `json:"sold"`
	PurchaserID *string         `json:"purchaser_id,omitempty"`
	PurchasedAt *time.Time      `json:"purchased_at,omitempty"`
	CartID      *string         `json:"cart_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

func toTicketResponse(t *ticket.Ticket) TicketResponse {
	return TicketResponse{
		ID: t.ID, EventID: t.EventID, SectionID: t.SectionID, SeatID: t.SeatID,
		Price: t.Price, Type: string(t.Type), Sold: t.Sold,
		PurchaserID: t.PurchaserID, PurchasedAt: t.PurchasedAt, CartID: t.CartID,
		CreatedAt: t.CreatedAt,
	}
}

func toTicketResponses(tickets []*ticket.Ticket) []TicketResponse {
	resp := make([]TicketResponse, len(tickets))
	for i, t := range tickets {
		resp[i] = toTicketResponse(t)
	}
	return resp
}

// Generate はイベントのチケットを一括発券する
// 要求数を満たせない場合は1枚も発券しない
func (h *TicketHandler) Generate(c echo.Context) error {
	var req GenerateTicketsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	tickets, err := h.service.GenerateTicketsForEvent(c.Request().Context(), application.GenerateTicketsInput{
		EventID:        c.Param("id"),
		BasePrice:      req.BasePrice,
		EarlyBirdCount: req.EarlyBirdCount,
		VIPCount:       req.VIPCount,
		StandardCount:  req.StandardCount,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toTicketResponses(tickets))
}

// GetByID はチケットを取得する
func (h *TicketHandler) GetByID(c echo.Context) error {
	t, err := h.service.GetTicket(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTicketResponse(t))
}

// ListByEvent はイベントのチケット一覧を返す
// available=true クエリで販売可能チケットに絞り込む
func (h *TicketHandler) ListByEvent(c echo.Context) error {
	ctx := c.Request().Context()
	eventID := c.Param("id")
	var (
		tickets []*ticket.Ticket
		err     error
	)
	if c.QueryParam("available") == "true" {
		tickets, err = h.service.GetAvailableTicketsByEvent(ctx, eventID)
	} else {
		tickets, err = h.service.GetTicketsByEvent(ctx, eventID)
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTicketResponses(tickets))
}

// Delete はチケットを削除する
func (h *TicketHandler) Delete(c echo.Context) error {
	if err := h.service.DeleteTicket(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
