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

func TestEventService_CreateConcert(t *testing.T) {
	ctx := context.Background()

	t.Run("コンサートイベントを作成できる", func(t *testing.T) {
		env := newTestEnv()
		v, _, _, _ := env.seatedVenue(t, 3)

		startAt := nearFuture()
		e, err := env.eventService.CreateConcert(ctx, CreateEventInput{
			Name:        "冬の公演",
			Description: "年末特別コンサート",
			VenueID:     v.ID,
			StartAt:     startAt,
			EndAt:       startAt.Add(3 * time.Hour),
			Performers:  []string{"山田太郎", "鈴木花子"},
		})

		require.NoError(t, err)
		assert.NotEmpty(t, e.ID)
		assert.Equal(t, event.TypeConcert, e.Type)
		assert.Equal(t, event.StatusScheduled, e.Status)
		assert.Equal(t, []string{"山田太郎", "鈴木花子"}, e.Artists)
		assert.Empty(t, e.Athletes)
		assert.Equal(t, []string{"山田太郎", "鈴木花子"}, e.Lineup())
	})

	t.Run("存在しない会場の場合はエラー", func(t *testing.T) {
		env := newTestEnv()

		startAt := nearFuture()
		_, err := env.eventService.CreateConcert(ctx, CreateEventInput{
			Name:    "冬の公演",
			VenueID: "non-existent",
			StartAt: startAt,
			EndAt:   startAt.Add(3 * time.Hour),
		})

		assert.ErrorIs(t, err, venue.ErrVenueNotFound)
	})

	t.Run("イベント名が空の場合はエラー", func(t *testing.T) {
		env := newTestEnv()
		v, _, _, _ := env.seatedVenue(t, 3)

		startAt := nearFuture()
		_, err := env.eventService.CreateConcert(ctx, CreateEventInput{
			Name:    "",
			VenueID: v.ID,
			StartAt: startAt,
			EndAt:   startAt.Add(3 * time.Hour),
		})

		assert.ErrorIs(t, err, event.ErrEventNameRequired)
	})

	t.Run("終了時刻が開始時刻より前の場合はエラー", func(t *testing.T) {
		env := newTestEnv()
		v, _, _, _ := env.seatedVenue(t, 3)

		startAt := nearFuture()
		_, err := env.eventService.CreateConcert(ctx, CreateEventInput{
			Name:    "冬の公演",
			VenueID: v.ID,
			StartAt: startAt,
			EndAt:   startAt.Add(-time.Hour),
		})

		assert.ErrorIs(t, err, event.ErrInvalidEventTime)
	})
}

func TestEventService_CreateSportsEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("スポーツイベントを作成できる", func(t *testing.T) {
		env := newTestEnv()
		v := env.generalAdmissionVenue(t, 100)

		startAt := nearFuture()
		e, err := env.eventService.CreateSportsEvent(ctx, CreateEventInput{
			Name:       "決勝戦",
			VenueID:    v.ID,
			StartAt:    startAt,
			EndAt:      startAt.Add(2 * time.Hour),
			Performers: []string{"佐藤一郎"},
		})

		require.NoError(t, err)
		assert.Equal(t, event.TypeSports, e.Type)
		assert.Equal(t, []string{"佐藤一郎"}, e.Athletes)
		assert.Empty(t, e.Artists)
	})
}

func TestEventService_GetEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("IDでイベントを取得できる", func(t *testing.T) {
		env := newTestEnv()
		v, _, _, _ := env.seatedVenue(t, 3)
		created := env.liveConcert(t, v.ID, nearFuture())

		got, err := env.eventService.GetEvent(ctx, created.ID)

		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, "夏の公演", got.Name)
	})

	t.Run("存在しないIDの場合はエラー", func(t *testing.T) {
		env := newTestEnv()

		_, err := env.eventService.GetEvent(ctx, "non-existent")

		assert.ErrorIs(t, err, event.ErrEventNotFound)
	})
}

func TestEventService_ListEvents(t *testing.T) {
	ctx := context.Background()

	t.Run("作成順にイベント一覧を取得できる", func(t *testing.T) {
		env := newTestEnv()
		v, _, _, _ := env.seatedVenue(t, 3)
		first := env.liveConcert(t, v.ID, nearFuture())
		second := env.liveConcert(t, v.ID, nearFuture().Add(24*time.Hour))

		events, err := env.eventService.ListEvents(ctx, 10, 0)

		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, first.ID, events[0].ID)
		assert.Equal(t, second.ID, events[1].ID)
	})

	t.Run("limitとoffsetが適用される", func(t *testing.T) {
		env := newTestEnv()
		v, _, _, _ := env.seatedVenue(t, 3)
		env.liveConcert(t, v.ID, nearFuture())
		second := env.liveConcert(t, v.ID, nearFuture().Add(24*time.Hour))
		env.liveConcert(t, v.ID, nearFuture().Add(48*time.Hour))

		events, err := env.eventService.ListEvents(ctx, 1, 1)

		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, second.ID, events[0].ID)
	})

	t.Run("不正なlimitはデフォルト値に丸められる", func(t *testing.T) {
		env := newTestEnv()
		v, _, _, _ := env.seatedVenue(t, 3)
		env.liveConcert(t, v.ID, nearFuture())

		events, err := env.eventService.ListEvents(ctx, -1, -5)
		require.NoError(t, err)
		assert.Len(t, events, 1)

		events, err = env.eventService.ListEvents(ctx, 1000, 0)
		require.NoError(t, err)
		assert.Len(t, events, 1)
	})
}

func TestEventService_UpdateEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("イベントの基本情報を更新できる", func(t *testing.T) {
		env := newTestEnv()
		v, _, _, _ := env.seatedVenue(t, 3)
		e := env.liveConcert(t, v.ID, nearFuture())

		newStart := nearFuture().Add(24 * time.Hour)
		updated, err := env.eventService.UpdateEvent(ctx, UpdateEventInput{
			ID:          e.ID,
			Name:        "秋の公演",
			Description: "振替公演",
			StartAt:     newStart,
			EndAt:       newStart.Add(2 * time.Hour),
		})

		require.NoError(t, err)
		assert.Equal(t, "秋の公演", updated.Name)
		assert.Equal(t, "振替公演", updated.Description)
		assert.True(t, updated.StartAt.Equal(newStart))

		got, err := env.eventService.GetEvent(ctx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, "秋の公演", got.Name)
	})

	t.Run("検証に失敗した場合は更新されない", func(t *testing.T) {
		env := newTestEnv()
		v, _, _, _ := env.seatedVenue(t, 3)
		e := env.liveConcert(t, v.ID, nearFuture())

		_, err := env.eventService.UpdateEvent(ctx, UpdateEventInput{
			ID:      e.ID,
			Name:    "",
			StartAt: e.StartAt,
			EndAt:   e.EndAt,
		})
		assert.ErrorIs(t, err, event.ErrEventNameRequired)

		got, err := env.eventService.GetEvent(ctx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, "夏の公演", got.Name)
	})

	t.Run("存在しないイベントの場合はエラー", func(t *testing.T) {
		env := newTestEnv()

		_, err := env.eventService.UpdateEvent(ctx, UpdateEventInput{ID: "non-existent", Name: "秋の公演"})

		assert.ErrorIs(t, err, event.ErrEventNotFound)
	})
}

func TestEventService_AddPerformer(t *testing.T) {
	ctx := context.Background()

	t.Run("コンサートにアーティストを追加できる", func(t *testing.T) {
		env := newTestEnv()
		v, _, _, _ := env.seatedVenue(t, 3)
		e := env.liveConcert(t, v.ID, nearFuture())

		updated, err := env.eventService.AddPerformer(ctx, e.ID, "山田太郎")

		require.NoError(t, err)
		assert.Equal(t, []string{"山田太郎"}, updated.Artists)

		got, err := env.eventService.GetEvent(ctx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"山田太郎"}, got.Lineup())
	})

	t.Run("スポーツイベントには選手として追加される", func(t *testing.T) {
		env := newTestEnv()
		v := env.generalAdmissionVenue(t, 100)
		startAt := nearFuture()
		e, err := env.eventService.CreateSportsEvent(ctx, CreateEventInput{
			Name:    "決勝戦",
			VenueID: v.ID,
			StartAt: startAt,
			EndAt:   startAt.Add(2 * time.Hour),
		})
		require.NoError(t, err)

		updated, err := env.eventService.AddPerformer(ctx, e.ID, "佐藤一郎")

		require.NoError(t, err)
		assert.Equal(t, []string{"佐藤一郎"}, updated.Athletes)
		assert.Empty(t, updated.Artists)
	})

	t.Run("出演者名が空の場合はエラー", func(t *testing.T) {
		env := newTestEnv()
		v, _, _, _ := env.seatedVenue(t, 3)
		e := env.liveConcert(t, v.ID, nearFuture())

		_, err := env.eventService.AddPerformer(ctx, e.ID, "")

		assert.ErrorIs(t, err, event.ErrPerformerNameRequired)
	})
}

func TestEventService_CancelEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("開催予定のイベントを中止できる", func(t *testing.T) {
		env := newTestEnv()
		v, _, _, _ := env.seatedVenue(t, 3)
		e := env.liveConcert(t, v.ID, nearFuture())

		cancelled, err := env.eventService.CancelEvent(ctx, e.ID)

		require.NoError(t, err)
		assert.Equal(t, event.StatusCancelled, cancelled.Status)
		assert.False(t, cancelled.IsLive())
	})

	t.Run("中止済みのイベントは再度中止できない", func(t *testing.T) {
		env := newTestEnv()
		v, _, _, _ := env.seatedVenue(t, 3)
		e := env.liveConcert(t, v.ID, nearFuture())

		_, err := env.eventService.CancelEvent(ctx, e.ID)
		require.NoError(t, err)

		_, err = env.eventService.CancelEvent(ctx, e.ID)
		assert.ErrorIs(t, err, event.ErrEventNotScheduled)
	})

	t.Run("存在しないイベントの場合はエラー", func(t *testing.T) {
		env := newTestEnv()

		_, err := env.eventService.CancelEvent(ctx, "non-existent")

		assert.ErrorIs(t, err, event.ErrEventNotFound)
	})
}

func TestEventService_CompleteEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("開催予定のイベントを終了にできる", func(t *testing.T) {
		env := newTestEnv()
		v, _, _, _ := env.seatedVenue(t, 3)
		e := env.liveConcert(t, v.ID, nearFuture())

		completed, err := env.eventService.CompleteEvent(ctx, e.ID)

		require.NoError(t, err)
		assert.Equal(t, event.StatusCompleted, completed.Status)
	})

	t.Run("終了済みのイベントは中止できない", func(t *testing.T) {
		env := newTestEnv()
		v, _, _, _ := env.seatedVenue(t, 3)
		e := env.liveConcert(t, v.ID, nearFuture())

		_, err := env.eventService.CompleteEvent(ctx, e.ID)
		require.NoError(t, err)

		_, err = env.eventService.CancelEvent(ctx, e.ID)
		assert.ErrorIs(t, err, event.ErrEventNotScheduled)
	})
}

func TestEventService_DeleteEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("イベント削除で座席が解放されチケットも削除される", func(t *testing.T) {
		env := newTestEnv()
		v, _, _, seats := env.seatedVenue(t, 3)
		e := env.liveConcert(t, v.ID, nearFuture())

		_, err := env.seatService.ReserveSeat(ctx, ReserveSeatInput{
			SeatID:     seats[0].ID,
			EventID:    e.ID,
			CustomerID: "customer-1",
			Price:      yen(10000),
			Type:       ticket.TypeStandard,
		})
		require.NoError(t, err)

		err = env.eventService.DeleteEvent(ctx, e.ID)
		require.NoError(t, err)

		_, err = env.eventService.GetEvent(ctx, e.ID)
		assert.ErrorIs(t, err, event.ErrEventNotFound)

		tickets, err := env.ticketService.GetTicketsByEvent(ctx, e.ID)
		require.NoError(t, err)
		assert.Empty(t, tickets)

		seat, err := env.seatRepo.GetByID(ctx, seats[0].ID)
		require.NoError(t, err)
		assert.False(t, seat.Reserved)
		assert.Nil(t, seat.TicketID)
	})

	t.Run("存在しないイベントの場合はエラー", func(t *testing.T) {
		env := newTestEnv()

		err := env.eventService.DeleteEvent(ctx, "non-existent")

		assert.ErrorIs(t, err, event.ErrEventNotFound)
	})

	t.Run("他イベントの座席予約には影響しない", func(t *testing.T) {
		env := newTestEnv()
		v, _, _, seats := env.seatedVenue(t, 3)
		target := env.liveConcert(t, v.ID, nearFuture())
		other := env.liveConcert(t, v.ID, nearFuture().Add(24*time.Hour))

		_, err := env.seatService.ReserveSeat(ctx, ReserveSeatInput{
			SeatID:     seats[0].ID,
			EventID:    other.ID,
			CustomerID: "customer-1",
			Price:      yen(10000),
			Type:       ticket.TypeStandard,
		})
		require.NoError(t, err)

		err = env.eventService.DeleteEvent(ctx, target.ID)
		require.NoError(t, err)

		seat, err := env.seatRepo.GetByID(ctx, seats[0].ID)
		require.NoError(t, err)
		assert.True(t, seat.Reserved)
	})
}
