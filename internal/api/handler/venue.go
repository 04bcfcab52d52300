package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-ticket-sales/internal/application"
	"github.com/sanosuguru/go-ticket-sales/internal/domain/venue"
)

// VenueHandler は会場階層の管理ハンドラー
type VenueHandler struct {
	service VenueServiceInterface
}

// NewVenueHandler はVenueHandlerを作成する
func NewVenueHandler(s VenueServiceInterface) *VenueHandler {
	return &VenueHandler{service: s}
}

type CreateVenueRequest struct {
	Name     string `json:"name" validate:"required"`
	Location string `json:"location" validate:"required"`
	Capacity int    `json:"capacity" validate:"required,min=1"`
	HasSeats bool   `json:"has_seats"`
}

type VenueResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	Capacity  int       `json:"capacity"`
	HasSeats  bool      `json:"has_seats"`
	CreatedAt time.Time `json:"created_at"`
}

func toVenueResponse(v *venue.Venue) VenueResponse {
	return VenueResponse{
		ID: v.ID, Name: v.Name, Location: v.Location,
		Capacity: v.Capacity, HasSeats: v.HasSeats, CreatedAt: v.CreatedAt,
	}
}

type SectionResponse struct {
	ID       string `json:"id"`
	VenueID  string `json:"venue_id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

func toSectionResponse(s *venue.Section) SectionResponse {
	return SectionResponse{ID: s.ID, VenueID: s.VenueID, Name: s.Name, Capacity: s.Capacity}
}

type RowResponse struct {
	ID        string `json:"id"`
	SectionID string `json:"section_id"`
	Capacity  int    `json:"capacity"`
}

func toRowResponse(r *venue.Row) RowResponse {
	return RowResponse{ID: r.ID, SectionID: r.SectionID, Capacity: r.Capacity}
}

type SeatResponse struct {
	ID       string `json:"id"`
	RowID    string `json:"row_id"`
	Number   int    `json:"number"`
	Reserved bool   `json:"reserved"`
}

func toSeatResponse(s *venue.Seat) SeatResponse {
	return SeatResponse{ID: s.ID, RowID: s.RowID, Number: s.Number, Reserved: s.Reserved}
}

func toSeatResponses(seats []*venue.Seat) []SeatResponse {
	resp := make([]SeatResponse, len(seats))
	for i, s := range seats {
		resp[i] = toSeatResponse(s)
	}
	return resp
}

// Create は会場を作成する
func (h *VenueHandler) Create(c echo.Context) error {
	var req CreateVenueRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	v, err := h.service.CreateVenue(c.Request().Context(), application.CreateVenueInput{
		Name: req.Name, Location: req.Location, Capacity: req.Capacity, HasSeats: req.HasSeats,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toVenueResponse(v))
}

// List は会場一覧を返す
// keyword クエリを指定すると名前・所在地で絞り込む
func (h *VenueHandler) List(c echo.Context) error {
	var (
		venues []*venue.Venue
		err    error
	)
	if keyword := c.QueryParam("keyword"); keyword != "" {
		venues, err = h.service.FindVenuesByNameOrLocation(c.Request().Context(), keyword)
	} else {
		venues, err = h.service.GetAllVenues(c.Request().Context())
	}
	if err != nil {
		return err
	}
	resp := make([]VenueResponse, len(venues))
	for i, v := range venues {
		resp[i] = toVenueResponse(v)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetByID は会場を取得する
func (h *VenueHandler) GetByID(c echo.Context) error {
	v, err := h.service.FindVenueByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toVenueResponse(v))
}

// Delete は会場を配下のセクション・列・座席ごと削除する
func (h *VenueHandler) Delete(c echo.Context) error {
	if err := h.service.DeleteVenue(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

type CreateSectionRequest struct {
	Name     string `json:"name" validate:"required"`
	Capacity int    `json:"capacity" validate:"required,min=1"`
}

// CreateSection は会場にセクションを追加する
func (h *VenueHandler) CreateSection(c echo.Context) error {
	var req CreateSectionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	sec, err := h.service.CreateSection(c.Request().Context(), application.CreateSectionInput{
		VenueID: c.Param("id"), Name: req.Name, Capacity: req.Capacity,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toSectionResponse(sec))
}

// ListSections は会場のセクション一覧を返す
func (h *VenueHandler) ListSections(c echo.Context) error {
	sections, err := h.service.FindSectionsByVenue(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	resp := make([]SectionResponse, len(sections))
	for i, s := range sections {
		resp[i] = toSectionResponse(s)
	}
	return c.JSON(http.StatusOK, resp)
}

// DeleteSection はセクションを配下の列・座席ごと削除する
func (h *VenueHandler) DeleteSection(c echo.Context) error {
	if err := h.service.DeleteSection(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

type CreateRowRequest struct {
	Capacity int `json:"capacity" validate:"required,min=1"`
}

// CreateRow はセクションに列を追加する
func (h *VenueHandler) CreateRow(c echo.Context) error {
	var req CreateRowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	row, err := h.service.CreateRow(c.Request().Context(), c.Param("id"), req.Capacity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toRowResponse(row))
}

// ListRows はセクションの列一覧を返す
func (h *VenueHandler) ListRows(c echo.Context) error {
	rows, err := h.service.FindRowsBySection(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	resp := make([]RowResponse, len(rows))
	for i, r := range rows {
		resp[i] = toRowResponse(r)
	}
	return c.JSON(http.StatusOK, resp)
}

// DeleteRow は列を配下の座席ごと削除する
func (h *VenueHandler) DeleteRow(c echo.Context) error {
	if err := h.service.DeleteRow(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

type AddSeatsRequest struct {
	Count int `json:"count" validate:"required,min=1"`
}

// AddSeats は列に座席を追加する
// 座席番号は既存の最大番号から連番で振られる
func (h *VenueHandler) AddSeats(c echo.Context) error {
	var req AddSeatsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	seats, err := h.service.AddSeatsToRow(c.Request().Context(), c.Param("id"), req.Count)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toSeatResponses(seats))
}

// ListSeats は列の座席一覧を座席番号順で返す
func (h *VenueHandler) ListSeats(c echo.Context) error {
	seats, err := h.service.GetSeatsByRow(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSeatResponses(seats))
}
