package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/sanosuguru/go-ticket-sales/internal/application"
	"github.com/sanosuguru/go-ticket-sales/internal/domain/ticket"
)

// SeatHandler は座席の予約・空席照会・推薦ハンドラー
type SeatHandler struct {
	service SeatServiceInterface
}

// NewSeatHandler はSeatHandlerを作成する
func NewSeatHandler(s SeatServiceInterface) *SeatHandler {
	return &SeatHandler{service: s}
}

type ReserveSeatRequest struct {
	EventID    string          `json:"event_id" validate:"required"`
	CustomerID string          `json:"customer_id" validate:"required"`
	Price      decimal.Decimal `json:"price"`
	Type       string          `json:"type" validate:"required,oneof=early_bird vip standard"`
}

// Reserve は座席を予約しチケットを発行する
func (h *SeatHandler) Reserve(c echo.Context) error {
	var req ReserveSeatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	t, err := h.service.ReserveSeat(c.Request().Context(), application.ReserveSeatInput{
		SeatID:     c.Param("id"),
		EventID:    req.EventID,
		CustomerID: req.CustomerID,
		Price:      req.Price,
		Type:       ticket.Type(req.Type),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toTicketResponse(t))
}

// Unreserve は座席の予約を解除する
func (h *SeatHandler) Unreserve(c echo.Context) error {
	if err := h.service.UnreserveSeat(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ReservationStatus は座席が指定イベントで予約済みかを返す
func (h *SeatHandler) ReservationStatus(c echo.Context) error {
	reserved, err := h.service.IsSeatReservedForEvent(c.Request().Context(), c.Param("id"), c.QueryParam("event_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]bool{"reserved": reserved})
}

// AvailableInRow は列の空席一覧を返す
func (h *SeatHandler) AvailableInRow(c echo.Context) error {
	seats, err := h.service.GetAvailableSeatsInRow(c.Request().Context(), c.Param("id"), c.QueryParam("event_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSeatResponses(seats))
}

// AvailableInSection はセクションの空席一覧を返す
func (h *SeatHandler) AvailableInSection(c echo.Context) error {
	seats, err := h.service.GetAvailableSeatsInSection(c.Request().Context(), c.Param("id"), c.QueryParam("event_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSeatResponses(seats))
}

// AvailableInVenue は会場全体の空席一覧を返す
func (h *SeatHandler) AvailableInVenue(c echo.Context) error {
	seats, err := h.service.GetAvailableSeatsInVenue(c.Request().Context(), c.Param("id"), c.QueryParam("event_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSeatResponses(seats))
}

// AvailableCount は会場×イベントの空席数を返す
func (h *SeatHandler) AvailableCount(c echo.Context) error {
	count, err := h.service.CountAvailableSeatsInVenue(c.Request().Context(), c.Param("id"), c.QueryParam("event_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]int{"available": count})
}

type RecommendSeatRequest struct {
	SectionID           string `json:"section_id" validate:"required"`
	RowID               string `json:"row_id" validate:"required"`
	SelectedSeatNumbers []int  `json:"selected_seat_numbers" validate:"required,min=1"`
}

type RecommendSeatResponse struct {
	Found bool          `json:"found"`
	Seat  *SeatResponse `json:"seat,omitempty"`
}

// Recommend は選択済み座席に最も近い空席を推薦する
// 候補がない場合は found = false を返す（404にはしない）
func (h *SeatHandler) Recommend(c echo.Context) error {
	var req RecommendSeatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	seat, err := h.service.RecommendClosestSeat(c.Request().Context(), req.SectionID, req.RowID, req.SelectedSeatNumbers)
	if err != nil {
		return err
	}
	if seat == nil {
		return c.JSON(http.StatusOK, RecommendSeatResponse{Found: false})
	}
	resp := toSeatResponse(seat)
	return c.JSON(http.StatusOK, RecommendSeatResponse{Found: true, Seat: &resp})
}
