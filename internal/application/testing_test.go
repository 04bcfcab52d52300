package application

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-ticket-sales/internal/domain/event"
	"github.com/sanosuguru/go-ticket-sales/internal/domain/venue"
	"github.com/sanosuguru/go-ticket-sales/internal/infrastructure/memory"
)

// testEnv はインメモリバックエンドで組んだサービス一式
type testEnv struct {
	venueRepo   *memory.VenueRepository
	sectionRepo *memory.SectionRepository
	rowRepo     *memory.RowRepository
	seatRepo    *memory.SeatRepository
	eventRepo   *memory.EventRepository
	ticketRepo  *memory.TicketRepository
	cartRepo    *memory.CartRepository

	venueService  *VenueService
	seatService   *SeatService
	ticketService *TicketService
	cartService   *CartService
	eventService  *EventService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		venueRepo:   memory.NewVenueRepository(),
		sectionRepo: memory.NewSectionRepository(),
		rowRepo:     memory.NewRowRepository(),
		seatRepo:    memory.NewSeatRepository(),
		eventRepo:   memory.NewEventRepository(),
		ticketRepo:  memory.NewTicketRepository(),
		cartRepo:    memory.NewCartRepository(),
	}
	env.venueService = NewVenueService(env.venueRepo, env.sectionRepo, env.rowRepo, env.seatRepo, env.ticketRepo)
	env.seatService = NewSeatService(env.sectionRepo, env.rowRepo, env.seatRepo, env.ticketRepo, env.eventRepo, nil, nil)
	env.ticketService = NewTicketService(env.ticketRepo, env.eventRepo, env.venueRepo, env.sectionRepo, env.rowRepo, env.seatRepo)
	env.cartService = NewCartService(env.cartRepo, env.ticketRepo, env.eventRepo, env.seatRepo, memory.NewTxManager())
	env.eventService = NewEventService(env.eventRepo, env.venueRepo, env.ticketRepo, env.seatRepo)
	return env
}

// seatedVenue は1セクション1列 seatCount 席の座席あり会場を作る
func (env *testEnv) seatedVenue(t *testing.T, seatCount int) (*venue.Venue, *venue.Section, *venue.Row, []*venue.Seat) {
	t.Helper()
	ctx := context.Background()

	v, err := env.venueService.CreateVenue(ctx, CreateVenueInput{
		Name: "コンサートホール", Location: "東京", Capacity: 1000, HasSeats: true,
	})
	require.NoError(t, err)

	sec, err := env.venueService.CreateSection(ctx, CreateSectionInput{
		VenueID: v.ID, Name: "メインセクション", Capacity: 500,
	})
	require.NoError(t, err)

	row, err := env.venueService.CreateRow(ctx, sec.ID, 50)
	require.NoError(t, err)

	seats, err := env.venueService.AddSeatsToRow(ctx, row.ID, seatCount)
	require.NoError(t, err)
	require.Len(t, seats, seatCount)

	return v, sec, row, seats
}

// generalAdmissionVenue は自由席会場を作る
func (env *testEnv) generalAdmissionVenue(t *testing.T, capacity int) *venue.Venue {
	t.Helper()
	v, err := env.venueService.CreateVenue(context.Background(), CreateVenueInput{
		Name: "野外広場", Location: "大阪", Capacity: capacity, HasSeats: false,
	})
	require.NoError(t, err)
	return v
}

// liveConcert は開催予定のコンサートイベントを作る
func (env *testEnv) liveConcert(t *testing.T, venueID string, startAt time.Time) *event.Event {
	t.Helper()
	e, err := env.eventService.CreateConcert(context.Background(), CreateEventInput{
		Name:    "夏の公演",
		VenueID: venueID,
		StartAt: startAt,
		EndAt:   startAt.Add(3 * time.Hour),
	})
	require.NoError(t, err)
	return e
}

func yen(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

// nearFuture は開催予定扱いになる近い未来の開催日時を返す
func nearFuture() time.Time {
	return time.Now().Add(48 * time.Hour)
}

