package handler

import (
	"context"
	"time"

	"github.com/sanosuguru/go-ticket-sales/internal/application"
	"github.com/sanosuguru/go-ticket-sales/internal/domain/cart"
	"github.com/sanosuguru/go-ticket-sales/internal/domain/event"
	"github.com/sanosuguru/go-ticket-sales/internal/domain/ticket"
	"github.com/sanosuguru/go-ticket-sales/internal/domain/venue"
)

// VenueServiceInterface は会場階層サービスのインターフェース
type VenueServiceInterface interface {
	CreateVenue(ctx context.Context, input application.CreateVenueInput) (*venue.Venue, error)
	CreateSection(ctx context.Context, input application.CreateSectionInput) (*venue.Section, error)
	CreateRow(ctx context.Context, sectionID string, capacity int) (*venue.Row, error)
	AddSeatsToRow(ctx context.Context, rowID string, count int) ([]*venue.Seat, error)
	DeleteVenue(ctx context.Context, venueID string) error
	DeleteSection(ctx context.Context, sectionID string) error
	DeleteRow(ctx context.Context, rowID string) error
	GetAllVenues(ctx context.Context) ([]*venue.Venue, error)
	FindVenueByID(ctx context.Context, id string) (*venue.Venue, error)
	FindVenuesByNameOrLocation(ctx context.Context, keyword string) ([]*venue.Venue, error)
	FindSectionsByVenue(ctx context.Context, venueID string) ([]*venue.Section, error)
	FindRowsBySection(ctx context.Context, sectionID string) ([]*venue.Row, error)
	GetSeatsByRow(ctx context.Context, rowID string) ([]*venue.Seat, error)
}

// SeatServiceInterface は座席予約サービスのインターフェース
type SeatServiceInterface interface {
	ReserveSeat(ctx context.Context, input application.ReserveSeatInput) (*ticket.Ticket, error)
	UnreserveSeat(ctx context.Context, seatID string) error
	IsSeatReservedForEvent(ctx context.Context, seatID, eventID string) (bool, error)
	GetAvailableSeatsInRow(ctx context.Context, rowID, eventID string) ([]*venue.Seat, error)
	GetAvailableSeatsInSection(ctx context.Context, sectionID, eventID string) ([]*venue.Seat, error)
	GetAvailableSeatsInVenue(ctx context.Context, venueID, eventID string) ([]*venue.Seat, error)
	CountAvailableSeatsInVenue(ctx context.Context, venueID, eventID string) (int, error)
	RecommendClosestSeat(ctx context.Context, sectionID, rowID string, selectedSeatNumbers []int) (*venue.Seat, error)
}

// TicketServiceInterface はチケット在庫サービスのインターフェース
type TicketServiceInterface interface {
	GenerateTicketsForEvent(ctx context.Context, input application.GenerateTicketsInput) ([]*ticket.Ticket, error)
	DeleteTicket(ctx context.Context, id string) error
	GetTicket(ctx context.Context, id string) (*ticket.Ticket, error)
	GetTicketsByEvent(ctx context.Context, eventID string) ([]*ticket.Ticket, error)
	GetAvailableTicketsByEvent(ctx context.Context, eventID string) ([]*ticket.Ticket, error)
}

// CartServiceInterface はカートサービスのインターフェース
type CartServiceInterface interface {
	CreateCart(ctx context.Context, customerID, eventID string) (*cart.Cart, error)
	GetCart(ctx context.Context, cartID string) (*cart.Cart, error)
	AddTicketToCart(ctx context.Context, cartID, ticketID string) (*cart.Cart, error)
	RemoveTicketFromCart(ctx context.Context, cartID, ticketID string) (*cart.Cart, error)
	ClearCart(ctx context.Context, cartID string) (*cart.Cart, error)
	ProcessPayment(ctx context.Context, cartID string, card cart.CardDetails) (*cart.Cart, error)
	FinalizeCart(ctx context.Context, cartID string) (*cart.Cart, error)
	ReleaseAbandonedCarts(ctx context.Context, olderThan time.Duration) (int, error)
}

// EventServiceInterface はイベントサービスのインターフェース
type EventServiceInterface interface {
	CreateConcert(ctx context.Context, input application.CreateEventInput) (*event.Event, error)
	CreateSportsEvent(ctx context.Context, input application.CreateEventInput) (*event.Event, error)
	GetEvent(ctx context.Context, id string) (*event.Event, error)
	ListEvents(ctx context.Context, limit, offset int) ([]*event.Event, error)
	UpdateEvent(ctx context.Context, input application.UpdateEventInput) (*event.Event, error)
	AddPerformer(ctx context.Context, eventID, name string) (*event.Event, error)
	CancelEvent(ctx context.Context, eventID string) (*event.Event, error)
	CompleteEvent(ctx context.Context, eventID string) (*event.Event, error)
	DeleteEvent(ctx context.Context, eventID string) error
}
