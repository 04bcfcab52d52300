package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-ticket-sales/internal/application"
	"github.com/sanosuguru/go-ticket-sales/internal/domain/event"
)

// EventHandler はイベントのハンドラー
type EventHandler struct {
	service EventServiceInterface
}

// NewEventHandler はEventHandlerを作成する
func NewEventHandler(s EventServiceInterface) *EventHandler {
	return &EventHandler{service: s}
}

type CreateEventRequest struct {
	Name        string    `json:"name" validate:"required"`
	Description string    `json:"description"`
	VenueID     string    `json:"venue_id" validate:"required"`
	StartAt     time.Time `json:"start_at" validate:"required"`
	EndAt       time.Time `json:"end_at" validate:"required"`
	Type        string    `json:"type" validate:"required,oneof=concert sports"`
	Performers  []string  `json:"performers"`
}

type EventResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	VenueID     string    `json:"venue_id"`
	StartAt     time.Time `json:"start_at"`
	EndAt       time.Time `json:"end_at"`
	Status      string    `json:"status"`
	Type        string    `json:"type"`
	Lineup      []string  `json:"lineup"`
	CreatedAt   time.Time `json:"created_at"`
}

func toEventResponse(e *event.Event) EventResponse {
	return EventResponse{
		ID: e.ID, Name: e.Name, Description: e.Description, VenueID: e.VenueID,
		StartAt: e.StartAt, EndAt: e.EndAt, Status: string(e.Status), Type: string(e.Type),
		Lineup: e.Lineup(), CreatedAt: e.CreatedAt,
	}
}

// Create はイベントを作成する
// type に応じてコンサートまたはスポーツイベントになる
func (h *EventHandler) Create(c echo.Context) error {
	var req CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	input := application.CreateEventInput{
		Name:        req.Name,
		Description: req.Description,
		VenueID:     req.VenueID,
		StartAt:     req.StartAt,
		EndAt:       req.EndAt,
		Performers:  req.Performers,
	}
	var (
		e   *event.Event
		err error
	)
	if req.Type == string(event.TypeSports) {
		e, err = h.service.CreateSportsEvent(c.Request().Context(), input)
	} else {
		e, err = h.service.CreateConcert(c.Request().Context(), input)
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toEventResponse(e))
}

// GetByID はイベントを取得する
func (h *EventHandler) GetByID(c echo.Context) error {
	e, err := h.service.GetEvent(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toEventResponse(e))
}

// List はイベント一覧を返す
func (h *EventHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	events, err := h.service.ListEvents(c.Request().Context(), limit, offset)
	if err != nil {
		return err
	}
	resp := make([]EventResponse, len(events))
	for i, e := range events {
		resp[i] = toEventResponse(e)
	}
	return c.JSON(http.StatusOK, resp)
}

type UpdateEventRequest struct {
	Name        string    `json:"name" validate:"required"`
	Description string    `json:"description"`
	StartAt     time.Time `json:"start_at" validate:"required"`
	EndAt       time.Time `json:"end_at" validate:"required"`
}

// Update はイベントの基本情報を更新する
func (h *EventHandler) Update(c echo.Context) error {
	var req UpdateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	e, err := h.service.UpdateEvent(c.Request().Context(), application.UpdateEventInput{
		ID:          c.Param("id"),
		Name:        req.Name,
		Description: req.Description,
		StartAt:     req.StartAt,
		EndAt:       req.EndAt,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toEventResponse(e))
}

type AddPerformerRequest struct {
	Name string `json:"name" validate:"required"`
}

// AddPerformer は出演者を追加する
func (h *EventHandler) AddPerformer(c echo.Context) error {
	var req AddPerformerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	e, err := h.service.AddPerformer(c.Request().Context(), c.Param("id"), req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toEventResponse(e))
}

// Cancel はイベントを中止する
func (h *EventHandler) Cancel(c echo.Context) error {
	e, err := h.service.CancelEvent(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toEventResponse(e))
}

// Complete はイベントを終了状態にする
func (h *EventHandler) Complete(c echo.Context) error {
	e, err := h.service.CompleteEvent(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toEventResponse(e))
}

// Delete はイベントを発券済みチケットごと削除する
func (h *EventHandler) Delete(c echo.Context) error {
	if err := h.service.DeleteEvent(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
