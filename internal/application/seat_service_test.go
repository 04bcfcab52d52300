package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-ticket-sales/internal/domain/event"
	"github.com/sanosuguru/go-ticket-sales/internal/domain/ticket"
	"github.com/sanosuguru/go-ticket-sales/internal/domain/venue"
)

func TestSeatService_ReserveSeat(t *testing.T) {
	ctx := context.Background()

	t.Run("空席を予約するとチケットが作成され座席が予約済みになる", func(t *testing.T) {
		env := newTestEnv()
		v, _, _, seats := env.seatedVenue(t, 3)
		e := env.liveConcert(t, v.ID, nearFuture())

		tk, err := env.seatService.ReserveSeat(ctx, ReserveSeatInput{
			SeatID: seats[0].ID, EventID: e.ID, CustomerID: "customer-1",
			Price: yen(8000), Type: ticket.TypeStandard,
		})
		require.NoError(t, err)
		require.NotNil(t, tk.SeatID)
		assert.Equal(t, seats[0].ID, *tk.SeatID)
		require.NotNil(t, tk.PurchaserID)
		assert.Equal(t, "customer-1", *tk.PurchaserID)
		assert.False(t, tk.Sold)

		got, err := env.seatRepo.GetByID(ctx, seats[0].ID)
		require.NoError(t, err)
		assert.True(t, got.Reserved)
		require.NotNil(t, got.TicketID)
		assert.Equal(t, tk.ID, *got.TicketID)
	})

	t.Run("予約済みの座席は再予約できない", func(t *testing.T) {
		env := newTestEnv()
		v, _, _, seats := env.seatedVenue(t, 2)
		e := env.liveConcert(t, v.ID, nearFuture())

		input := ReserveSeatInput{
			SeatID: seats[0].ID, EventID: e.ID, CustomerID: "customer-1",
			Price: yen(8000), Type: ticket.TypeStandard,
		}
		_, err := env.seatService.ReserveSeat(ctx, input)
		require.NoError(t, err)

		input.CustomerID = "customer-2"
		_, err = env.seatService.ReserveSeat(ctx, input)
		assert.ErrorIs(t, err, venue.ErrSeatAlreadyReserved)
	})

	t.Run("存在しない座席はエラー", func(t *testing.T) {
		env := newTestEnv()
		v, _, _, _ := env.seatedVenue(t, 1)
		e := env.liveConcert(t, v.ID, nearFuture())

		_, err := env.seatService.ReserveSeat(ctx, ReserveSeatInput{
			SeatID: "missing", EventID: e.ID, CustomerID: "customer-1",
			Price: yen(8000), Type: ticket.TypeStandard,
		})
		assert.ErrorIs(t, err, venue.ErrSeatNotFound)
	})

	t.Run("開催予定でないイベントは予約できない", func(t *testing.T) {
		env := newTestEnv()
		v, _, _, seats := env.seatedVenue(t, 1)
		e := env.liveConcert(t, v.ID, nearFuture())
		_, err := env.eventService.CancelEvent(ctx, e.ID)
		require.NoError(t, err)

		_, err = env.seatService.ReserveSeat(ctx, ReserveSeatInput{
			SeatID: seats[0].ID, EventID: e.ID, CustomerID: "customer-1",
			Price: yen(8000), Type: ticket.TypeStandard,
		})
		assert.ErrorIs(t, err, event.ErrEventNotLive)
	})

	t.Run("顧客IDなしでは予約できない", func(t *testing.T) {
		env := newTestEnv()
		v, _, _, seats := env.seatedVenue(t, 1)
		e := env.liveConcert(t, v.ID, nearFuture())

		_, err := env.seatService.ReserveSeat(ctx, ReserveSeatInput{
			SeatID: seats[0].ID, EventID: e.ID, CustomerID: "",
			Price: yen(8000), Type: ticket.TypeStandard,
		})
		assert.ErrorIs(t, err, ticket.ErrPurchaserRequired)
	})

	t.Run("発券済みの未販売在庫チケットは予約チケットに置き換わる", func(t *testing.T) {
		env := newTestEnv()
		v, _, _, seats := env.seatedVenue(t, 2)
		e := env.liveConcert(t, v.ID, nearFuture())

		generated, err := env.ticketService.GenerateTicketsForEvent(ctx, GenerateTicketsInput{
			EventID: e.ID, BasePrice: yen(10000), StandardCount: 2,
		})
		require.NoError(t, err)
		require.Len(t, generated, 2)

		tk, err := env.seatService.ReserveSeat(ctx, ReserveSeatInput{
			SeatID: seats[0].ID, EventID: e.ID, CustomerID: "customer-1",
			Price: yen(10000), Type: ticket.TypeStandard,
		})
		require.NoError(t, err)

		tickets, err := env.ticketService.GetTicketsByEvent(ctx, e.ID)
		require.NoError(t, err)
		assert.Len(t, tickets, 2)
		for _, got := range tickets {
			require.NotNil(t, got.SeatID)
			if *got.SeatID == seats[0].ID {
				assert.Equal(t, tk.ID, got.ID)
			}
		}
	})

	t.Run("保留中の在庫チケットが付いた座席は予約できない", func(t *testing.T) {
		env := newTestEnv()
		v, _, _, seats := env.seatedVenue(t, 1)
		e := env.liveConcert(t, v.ID, nearFuture())

		generated, err := env.ticketService.GenerateTicketsForEvent(ctx, GenerateTicketsInput{
			EventID: e.ID, BasePrice: yen(10000), StandardCount: 1,
		})
		require.NoError(t, err)

		c, err := env.cartService.CreateCart(ctx, "customer-2", e.ID)
		require.NoError(t, err)
		_, err = env.cartService.AddTicketToCart(ctx, c.ID, generated[0].ID)
		require.NoError(t, err)

		_, err = env.seatService.ReserveSeat(ctx, ReserveSeatInput{
			SeatID: seats[0].ID, EventID: e.ID, CustomerID: "customer-1",
			Price: yen(10000), Type: ticket.TypeStandard,
		})
		assert.ErrorIs(t, err, venue.ErrSeatAlreadyReserved)
	})
}

func TestSeatService_UnreserveSeat(t *testing.T) {
	ctx := context.Background()

	t.Run("予約を解除すると座席が空きチケットが削除される", func(t *testing.T) {
		env := newTestEnv()
		v, _, _, seats := env.seatedVenue(t, 1)
		e := env.liveConcert(t, v.ID, nearFuture())

		tk, err := env.seatService.ReserveSeat(ctx, ReserveSeatInput{
			SeatID: seats[0].ID, EventID: e.ID, CustomerID: "customer-1",
			Price: yen(8000), Type: ticket.TypeStandard,
		})
		require.NoError(t, err)

		require.NoError(t, env.seatService.UnreserveSeat(ctx, seats[0].ID))

		got, err := env.seatRepo.GetByID(ctx, seats[0].ID)
		require.NoError(t, err)
		assert.False(t, got.Reserved)
		assert.Nil(t, got.TicketID)

		_, err = env.ticketService.GetTicket(ctx, tk.ID)
		assert.ErrorIs(t, err, ticket.ErrTicketNotFound)
	})

	t.Run("予約されていない座席の解除はエラー", func(t *testing.T) {
		env := newTestEnv()
		_, _, _, seats := env.seatedVenue(t, 1)

		err := env.seatService.UnreserveSeat(ctx, seats[0].ID)
		assert.ErrorIs(t, err, venue.ErrSeatNotReserved)
	})
}

func TestSeatService_IsSeatReservedForEvent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	v, _, _, seats := env.seatedVenue(t, 2)
	e := env.liveConcert(t, v.ID, nearFuture())
	other := env.liveConcert(t, v.ID, nearFuture().Add(24*time.Hour))

	_, err := env.seatService.ReserveSeat(ctx, ReserveSeatInput{
		SeatID: seats[0].ID, EventID: e.ID, CustomerID: "customer-1",
		Price: yen(8000), Type: ticket.TypeStandard,
	})
	require.NoError(t, err)

	t.Run("予約したイベントに対しては true", func(t *testing.T) {
		reserved, err := env.seatService.IsSeatReservedForEvent(ctx, seats[0].ID, e.ID)
		require.NoError(t, err)
		assert.True(t, reserved)
	})

	t.Run("別イベントに対しては false", func(t *testing.T) {
		reserved, err := env.seatService.IsSeatReservedForEvent(ctx, seats[0].ID, other.ID)
		require.NoError(t, err)
		assert.False(t, reserved)
	})

	t.Run("未予約の座席は false", func(t *testing.T) {
		reserved, err := env.seatService.IsSeatReservedForEvent(ctx, seats[1].ID, e.ID)
		require.NoError(t, err)
		assert.False(t, reserved)
	})
}

func TestSeatService_GetAvailableSeatsInRow(t *testing.T) {
	ctx := context.Background()

	t.Run("イベント指定なしでは未予約の座席を返す", func(t *testing.T) {
		env := newTestEnv()
		v, _, row, seats := env.seatedVenue(t, 4)
		e := env.liveConcert(t, v.ID, nearFuture())

		_, err := env.seatService.ReserveSeat(ctx, ReserveSeatInput{
			SeatID: seats[1].ID, EventID: e.ID, CustomerID: "customer-1",
			Price: yen(8000), Type: ticket.TypeStandard,
		})
		require.NoError(t, err)

		available, err := env.seatService.GetAvailableSeatsInRow(ctx, row.ID, "")
		require.NoError(t, err)
		require.Len(t, available, 3)
		assert.Equal(t, []int{1, 3, 4}, seatNumbers(available))
	})

	t.Run("イベント指定時は販売可能チケット付きの座席に絞る", func(t *testing.T) {
		env := newTestEnv()
		v, _, row, _ := env.seatedVenue(t, 4)
		e := env.liveConcert(t, v.ID, nearFuture())

		// 先頭2席分だけ発券する
		generated, err := env.ticketService.GenerateTicketsForEvent(ctx, GenerateTicketsInput{
			EventID: e.ID, BasePrice: yen(10000), StandardCount: 2,
		})
		require.NoError(t, err)
		require.Len(t, generated, 2)

		available, err := env.seatService.GetAvailableSeatsInRow(ctx, row.ID, e.ID)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2}, seatNumbers(available))
	})

	t.Run("保留中のチケットの座席は除外される", func(t *testing.T) {
		env := newTestEnv()
		v, _, row, _ := env.seatedVenue(t, 2)
		e := env.liveConcert(t, v.ID, nearFuture())

		generated, err := env.ticketService.GenerateTicketsForEvent(ctx, GenerateTicketsInput{
			EventID: e.ID, BasePrice: yen(10000), StandardCount: 2,
		})
		require.NoError(t, err)

		c, err := env.cartService.CreateCart(ctx, "customer-1", e.ID)
		require.NoError(t, err)
		_, err = env.cartService.AddTicketToCart(ctx, c.ID, generated[0].ID)
		require.NoError(t, err)

		available, err := env.seatService.GetAvailableSeatsInRow(ctx, row.ID, e.ID)
		require.NoError(t, err)
		assert.Equal(t, []int{2}, seatNumbers(available))
	})
}

func TestSeatService_RecommendClosestSeat(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	_, sec, row, seats := env.seatedVenue(t, 10)

	reserve := func(t *testing.T, number int) {
		t.Helper()
		require.NoError(t, env.seatRepo.ReserveIfFree(ctx, seats[number-1].ID, "ticket-"+seats[number-1].ID))
	}
	reserve(t, 4)
	reserve(t, 6)

	t.Run("選択席の隣で番号の小さい席を優先する", func(t *testing.T) {
		got, err := env.seatService.RecommendClosestSeat(ctx, sec.ID, row.ID, []int{4})
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, 3, got.Number)
	})

	t.Run("複数選択時は全選択席との最小距離で決める", func(t *testing.T) {
		got, err := env.seatService.RecommendClosestSeat(ctx, sec.ID, row.ID, []int{4, 6})
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, 3, got.Number)
	})

	t.Run("近い側が埋まると反対側の席を返す", func(t *testing.T) {
		reserve(t, 3)
		got, err := env.seatService.RecommendClosestSeat(ctx, sec.ID, row.ID, []int{4})
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, 5, got.Number)
	})

	t.Run("両隣が予約済みでも最も近い空席を返す", func(t *testing.T) {
		got, err := env.seatService.RecommendClosestSeat(ctx, sec.ID, row.ID, []int{5})
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, 7, got.Number)
	})

	t.Run("選択席がない場合は候補を返さない", func(t *testing.T) {
		got, err := env.seatService.RecommendClosestSeat(ctx, sec.ID, row.ID, nil)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("セクション内に列が見つからない場合は候補を返さない", func(t *testing.T) {
		got, err := env.seatService.RecommendClosestSeat(ctx, sec.ID, "other-row", []int{4})
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func seatNumbers(seats []*venue.Seat) []int {
	numbers := make([]int, 0, len(seats))
	for _, s := range seats {
		numbers = append(numbers, s.Number)
	}
	return numbers
}
