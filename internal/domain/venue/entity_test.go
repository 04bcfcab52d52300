package venue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVenue_Validate(t *testing.T) {
	tests := []struct {
		name    string
		venue   *Venue
		wantErr error
	}{
		{"有効な会場", NewVenue("東京ドーム", "東京", 55000, true), nil},
		{"名前なし", NewVenue("", "東京", 55000, true), ErrVenueNameRequired},
		{"所在地なし", NewVenue("東京ドーム", "", 55000, true), ErrVenueLocationRequired},
		{"収容人数ゼロ", NewVenue("東京ドーム", "東京", 0, true), ErrInvalidCapacity},
		{"収容人数マイナス", NewVenue("東京ドーム", "東京", -1, true), ErrInvalidCapacity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.venue.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestSection_Validate(t *testing.T) {
	tests := []struct {
		name    string
		section *Section
		wantErr error
	}{
		{"有効なセクション", NewSection("venue-1", "アリーナA", 500), nil},
		{"会場IDなし", NewSection("", "アリーナA", 500), ErrVenueIDRequired},
		{"名前なし", NewSection("venue-1", "", 500), ErrSectionNameRequired},
		{"収容人数ゼロ", NewSection("venue-1", "アリーナA", 0), ErrInvalidCapacity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.section.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestRow_Validate(t *testing.T) {
	t.Run("有効な列", func(t *testing.T) {
		assert.NoError(t, NewRow("section-1", 20).Validate())
	})
	t.Run("セクションIDなし", func(t *testing.T) {
		assert.ErrorIs(t, NewRow("", 20).Validate(), ErrSectionIDRequired)
	})
	t.Run("収容数ゼロ", func(t *testing.T) {
		assert.ErrorIs(t, NewRow("section-1", 0).Validate(), ErrInvalidCapacity)
	})
}

func TestSeat_Validate(t *testing.T) {
	t.Run("有効な座席", func(t *testing.T) {
		assert.NoError(t, NewSeat("row-1", 1).Validate())
	})
	t.Run("座席番号ゼロ", func(t *testing.T) {
		assert.ErrorIs(t, NewSeat("row-1", 0).Validate(), ErrInvalidSeatNumber)
	})
}

func TestSeat_Reserve(t *testing.T) {
	t.Run("空席を予約できる", func(t *testing.T) {
		seat := NewSeat("row-1", 5)

		err := seat.Reserve("ticket-1")

		require.NoError(t, err)
		assert.True(t, seat.Reserved)
		require.NotNil(t, seat.TicketID)
		assert.Equal(t, "ticket-1", *seat.TicketID)
		assert.False(t, seat.IsAvailable())
	})

	t.Run("予約済みの座席は予約できない", func(t *testing.T) {
		seat := NewSeat("row-1", 5)
		require.NoError(t, seat.Reserve("ticket-1"))

		err := seat.Reserve("ticket-2")

		require.ErrorIs(t, err, ErrSeatAlreadyReserved)
		assert.Equal(t, "ticket-1", *seat.TicketID)
	})
}

func TestSeat_Release(t *testing.T) {
	t.Run("予約を解除するとチケットの紐付けが外れる", func(t *testing.T) {
		seat := NewSeat("row-1", 5)
		require.NoError(t, seat.Reserve("ticket-1"))

		err := seat.Release()

		require.NoError(t, err)
		assert.False(t, seat.Reserved)
		assert.Nil(t, seat.TicketID)
		assert.True(t, seat.IsAvailable())
	})

	t.Run("未予約の座席は解除できない", func(t *testing.T) {
		seat := NewSeat("row-1", 5)

		err := seat.Release()

		assert.ErrorIs(t, err, ErrSeatNotReserved)
	})
}
