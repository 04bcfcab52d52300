package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-ticket-sales/internal/domain/cart"
	"github.com/sanosuguru/go-ticket-sales/internal/domain/event"
	"github.com/sanosuguru/go-ticket-sales/internal/domain/ticket"
)

func validTestCard() cart.CardDetails {
	return cart.CardDetails{
		Number:      "4111111111111111",
		HolderName:  "TARO YAMADA",
		ExpiryMonth: 12,
		ExpiryYear:  time.Now().Year() + 2,
		CVV:         "123",
	}
}

// checkoutFixture は発券済みイベントとチケット入りカートを用意する
func checkoutFixture(t *testing.T, env *testEnv, ticketCount int) (*cart.Cart, []*ticket.Ticket) {
	t.Helper()
	ctx := context.Background()

	v, _, _, _ := env.seatedVenue(t, ticketCount)
	e := env.liveConcert(t, v.ID, nearFuture())

	generated, err := env.ticketService.GenerateTicketsForEvent(ctx, GenerateTicketsInput{
		EventID: e.ID, BasePrice: yen(10000), StandardCount: ticketCount,
	})
	require.NoError(t, err)

	c, err := env.cartService.CreateCart(ctx, "customer-1", e.ID)
	require.NoError(t, err)
	for _, tk := range generated {
		_, err = env.cartService.AddTicketToCart(ctx, c.ID, tk.ID)
		require.NoError(t, err)
	}
	return c, generated
}

func TestCartService_CreateCart(t *testing.T) {
	ctx := context.Background()

	t.Run("イベントに紐付くカートを作成できる", func(t *testing.T) {
		env := newTestEnv()
		v, _, _, _ := env.seatedVenue(t, 1)
		e := env.liveConcert(t, v.ID, nearFuture())

		c, err := env.cartService.CreateCart(ctx, "customer-1", e.ID)
		require.NoError(t, err)
		assert.Equal(t, "customer-1", c.CustomerID)
		assert.Equal(t, e.ID, c.EventID)
		assert.False(t, c.PaymentProcessed)
		assert.True(t, c.Total.IsZero())
	})

	t.Run("存在しないイベントにはカートを作成できない", func(t *testing.T) {
		env := newTestEnv()
		_, err := env.cartService.CreateCart(ctx, "customer-1", "missing")
		assert.ErrorIs(t, err, event.ErrEventNotFound)
	})

	t.Run("顧客IDなしではカートを作成できない", func(t *testing.T) {
		env := newTestEnv()
		_, err := env.cartService.CreateCart(ctx, "", "event-1")
		assert.ErrorIs(t, err, cart.ErrCustomerRequired)
	})
}

func TestCartService_AddTicketToCart(t *testing.T) {
	ctx := context.Background()

	t.Run("追加すると保留され合計額が更新される", func(t *testing.T) {
		env := newTestEnv()
		c, generated := checkoutFixture(t, env, 2)

		got, err := env.cartService.GetCart(ctx, c.ID)
		require.NoError(t, err)
		assert.Len(t, got.TicketIDs, 2)
		assert.True(t, got.Total.Equal(yen(20000)), "got %s", got.Total)

		for _, tk := range generated {
			held, err := env.ticketRepo.GetByID(ctx, tk.ID)
			require.NoError(t, err)
			assert.True(t, held.IsHeld())
			require.NotNil(t, held.CartID)
			assert.Equal(t, c.ID, *held.CartID)
		}
	})

	t.Run("同じチケットは二重に追加できない", func(t *testing.T) {
		env := newTestEnv()
		c, generated := checkoutFixture(t, env, 1)

		_, err := env.cartService.AddTicketToCart(ctx, c.ID, generated[0].ID)
		assert.ErrorIs(t, err, cart.ErrTicketAlreadyInCart)
	})

	t.Run("別カートに保留中のチケットは追加できない", func(t *testing.T) {
		env := newTestEnv()
		c, generated := checkoutFixture(t, env, 1)

		other, err := env.cartService.CreateCart(ctx, "customer-2", c.EventID)
		require.NoError(t, err)
		_, err = env.cartService.AddTicketToCart(ctx, other.ID, generated[0].ID)
		assert.ErrorIs(t, err, ticket.ErrTicketAlreadyHeld)
	})

	t.Run("別イベントのチケットは追加できない", func(t *testing.T) {
		env := newTestEnv()
		v, _, _, _ := env.seatedVenue(t, 2)
		e1 := env.liveConcert(t, v.ID, nearFuture())
		e2 := env.liveConcert(t, v.ID, nearFuture().Add(24*time.Hour))

		generated, err := env.ticketService.GenerateTicketsForEvent(ctx, GenerateTicketsInput{
			EventID: e2.ID, BasePrice: yen(10000), StandardCount: 1,
		})
		require.NoError(t, err)

		c, err := env.cartService.CreateCart(ctx, "customer-1", e1.ID)
		require.NoError(t, err)
		_, err = env.cartService.AddTicketToCart(ctx, c.ID, generated[0].ID)
		assert.ErrorIs(t, err, cart.ErrEventMismatch)
	})

	t.Run("売約済みのチケットは追加できない", func(t *testing.T) {
		env := newTestEnv()
		c, _ := checkoutFixture(t, env, 1)

		_, err := env.cartService.ProcessPayment(ctx, c.ID, validTestCard())
		require.NoError(t, err)

		sold, err := env.ticketService.GetTicketsByEvent(ctx, c.EventID)
		require.NoError(t, err)
		require.NotEmpty(t, sold)

		other, err := env.cartService.CreateCart(ctx, "customer-2", c.EventID)
		require.NoError(t, err)
		_, err = env.cartService.AddTicketToCart(ctx, other.ID, sold[0].ID)
		assert.ErrorIs(t, err, ticket.ErrTicketAlreadySold)
	})
}

func TestCartService_RemoveTicketFromCart(t *testing.T) {
	ctx := context.Background()

	t.Run("取り除くと保留が解除され合計額が減る", func(t *testing.T) {
		env := newTestEnv()
		c, generated := checkoutFixture(t, env, 2)

		got, err := env.cartService.RemoveTicketFromCart(ctx, c.ID, generated[0].ID)
		require.NoError(t, err)
		assert.Len(t, got.TicketIDs, 1)
		assert.True(t, got.Total.Equal(yen(10000)), "got %s", got.Total)

		released, err := env.ticketRepo.GetByID(ctx, generated[0].ID)
		require.NoError(t, err)
		assert.False(t, released.IsHeld())
	})

	t.Run("カートにないチケットはエラー", func(t *testing.T) {
		env := newTestEnv()
		c, _ := checkoutFixture(t, env, 1)

		_, err := env.cartService.RemoveTicketFromCart(ctx, c.ID, "missing")
		assert.ErrorIs(t, err, cart.ErrTicketNotInCart)
	})
}

func TestCartService_ClearCart(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	c, generated := checkoutFixture(t, env, 2)

	got, err := env.cartService.ClearCart(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, got.TicketIDs)
	assert.True(t, got.Total.IsZero())

	for _, tk := range generated {
		released, err := env.ticketRepo.GetByID(ctx, tk.ID)
		require.NoError(t, err)
		assert.False(t, released.IsHeld())
	}
}

func TestCartService_ProcessPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("決済に成功すると全チケットが売約され座席が押さえられる", func(t *testing.T) {
		env := newTestEnv()
		c, generated := checkoutFixture(t, env, 2)

		got, err := env.cartService.ProcessPayment(ctx, c.ID, validTestCard())
		require.NoError(t, err)
		assert.True(t, got.PaymentProcessed)
		assert.True(t, got.Total.Equal(yen(20000)), "got %s", got.Total)

		for _, tk := range generated {
			sold, err := env.ticketRepo.GetByID(ctx, tk.ID)
			require.NoError(t, err)
			assert.True(t, sold.Sold)
			require.NotNil(t, sold.PurchaserID)
			assert.Equal(t, "customer-1", *sold.PurchaserID)
			assert.False(t, sold.IsHeld())

			require.NotNil(t, sold.SeatID)
			seat, err := env.seatRepo.GetByID(ctx, *sold.SeatID)
			require.NoError(t, err)
			assert.True(t, seat.Reserved)
			require.NotNil(t, seat.TicketID)
			assert.Equal(t, tk.ID, *seat.TicketID)
		}
	})

	t.Run("カード情報が不正な場合は何も変更しない", func(t *testing.T) {
		env := newTestEnv()
		c, generated := checkoutFixture(t, env, 1)

		badCard := validTestCard()
		badCard.Number = "1234"
		_, err := env.cartService.ProcessPayment(ctx, c.ID, badCard)
		assert.ErrorIs(t, err, cart.ErrInvalidCardNumber)

		tk, err := env.ticketRepo.GetByID(ctx, generated[0].ID)
		require.NoError(t, err)
		assert.False(t, tk.Sold)
		assert.True(t, tk.IsHeld())

		got, err := env.cartService.GetCart(ctx, c.ID)
		require.NoError(t, err)
		assert.False(t, got.PaymentProcessed)
	})

	t.Run("空のカートは決済できない", func(t *testing.T) {
		env := newTestEnv()
		v, _, _, _ := env.seatedVenue(t, 1)
		e := env.liveConcert(t, v.ID, nearFuture())
		c, err := env.cartService.CreateCart(ctx, "customer-1", e.ID)
		require.NoError(t, err)

		_, err = env.cartService.ProcessPayment(ctx, c.ID, validTestCard())
		assert.ErrorIs(t, err, cart.ErrEmptyCartTotal)
	})

	t.Run("決済済みのカートは再決済できない", func(t *testing.T) {
		env := newTestEnv()
		c, _ := checkoutFixture(t, env, 1)

		_, err := env.cartService.ProcessPayment(ctx, c.ID, validTestCard())
		require.NoError(t, err)

		_, err = env.cartService.ProcessPayment(ctx, c.ID, validTestCard())
		assert.ErrorIs(t, err, cart.ErrCartAlreadyProcessed)
	})

	t.Run("決済済みのカートにはチケットを追加できない", func(t *testing.T) {
		env := newTestEnv()
		c, _ := checkoutFixture(t, env, 1)

		_, err := env.cartService.ProcessPayment(ctx, c.ID, validTestCard())
		require.NoError(t, err)

		_, err = env.cartService.AddTicketToCart(ctx, c.ID, "any")
		assert.ErrorIs(t, err, cart.ErrCartAlreadyProcessed)
	})

	t.Run("予約経由で座席を押さえたチケットも決済できる", func(t *testing.T) {
		env := newTestEnv()
		v, _, _, seats := env.seatedVenue(t, 1)
		e := env.liveConcert(t, v.ID, nearFuture())

		tk, err := env.seatService.ReserveSeat(ctx, ReserveSeatInput{
			SeatID: seats[0].ID, EventID: e.ID, CustomerID: "customer-1",
			Price: yen(8000), Type: ticket.TypeStandard,
		})
		require.NoError(t, err)

		c, err := env.cartService.CreateCart(ctx, "customer-1", e.ID)
		require.NoError(t, err)
		_, err = env.cartService.AddTicketToCart(ctx, c.ID, tk.ID)
		require.NoError(t, err)

		got, err := env.cartService.ProcessPayment(ctx, c.ID, validTestCard())
		require.NoError(t, err)
		assert.True(t, got.PaymentProcessed)

		sold, err := env.ticketRepo.GetByID(ctx, tk.ID)
		require.NoError(t, err)
		assert.True(t, sold.Sold)
	})
}

func TestCartService_FinalizeCart(t *testing.T) {
	ctx := context.Background()

	t.Run("確定するとカートが空になり保留が解放される", func(t *testing.T) {
		env := newTestEnv()
		c, generated := checkoutFixture(t, env, 2)

		got, err := env.cartService.FinalizeCart(ctx, c.ID)
		require.NoError(t, err)
		assert.True(t, got.PaymentProcessed)
		assert.Empty(t, got.TicketIDs)
		assert.True(t, got.Total.IsZero())

		for _, tk := range generated {
			released, err := env.ticketRepo.GetByID(ctx, tk.ID)
			require.NoError(t, err)
			assert.False(t, released.IsHeld())
		}
	})

	t.Run("二重確定はエラー", func(t *testing.T) {
		env := newTestEnv()
		c, _ := checkoutFixture(t, env, 1)

		_, err := env.cartService.FinalizeCart(ctx, c.ID)
		require.NoError(t, err)
		_, err = env.cartService.FinalizeCart(ctx, c.ID)
		assert.ErrorIs(t, err, cart.ErrCartAlreadyProcessed)
	})
}

func TestCartService_ReleaseAbandonedCarts(t *testing.T) {
	ctx := context.Background()

	t.Run("一定時間更新のないカートの保留を解放する", func(t *testing.T) {
		env := newTestEnv()
		c, generated := checkoutFixture(t, env, 2)

		// 更新日時を過去に巻き戻して放置カートに見せる
		stale, err := env.cartRepo.GetByID(ctx, c.ID)
		require.NoError(t, err)
		stale.UpdatedAt = time.Now().Add(-time.Hour)
		require.NoError(t, env.cartRepo.Create(ctx, stale))

		released, err := env.cartService.ReleaseAbandonedCarts(ctx, 30*time.Minute)
		require.NoError(t, err)
		assert.Equal(t, 1, released)

		got, err := env.cartService.GetCart(ctx, c.ID)
		require.NoError(t, err)
		assert.Empty(t, got.TicketIDs)
		for _, tk := range generated {
			freed, err := env.ticketRepo.GetByID(ctx, tk.ID)
			require.NoError(t, err)
			assert.False(t, freed.IsHeld())
		}
	})

	t.Run("新しいカートと決済済みカートには手を付けない", func(t *testing.T) {
		env := newTestEnv()
		fresh, _ := checkoutFixture(t, env, 1)

		released, err := env.cartService.ReleaseAbandonedCarts(ctx, 30*time.Minute)
		require.NoError(t, err)
		assert.Equal(t, 0, released)

		got, err := env.cartService.GetCart(ctx, fresh.ID)
		require.NoError(t, err)
		assert.Len(t, got.TicketIDs, 1)
	})
}
