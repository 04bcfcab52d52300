package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/sanosuguru/go-ticket-sales/internal/domain/venue"
)

func cloneVenue(v *venue.Venue) *venue.Venue {
	c := *v
	return &c
}

func cloneSection(s *venue.Section) *venue.Section {
	c := *s
	return &c
}

func cloneRow(r *venue.Row) *venue.Row {
	c := *r
	return &c
}

func cloneSeat(s *venue.Seat) *venue.Seat {
	c := *s
	if s.TicketID != nil {
		id := *s.TicketID
		c.TicketID = &id
	}
	return &c
}

// VenueRepository は会場のインメモリリポジトリ
type VenueRepository struct {
	store *Store[venue.Venue]
}

// NewVenueRepository は新しい会場リポジトリを作成する
func NewVenueRepository() *VenueRepository {
	return &VenueRepository{store: NewStore(cloneVenue)}
}

func (r *VenueRepository) Create(_ context.Context, v *venue.Venue) error {
	if v.ID == "" {
		v.ID = NewID()
	}
	r.store.Put(v.ID, v)
	return nil
}

func (r *VenueRepository) GetByID(_ context.Context, id string) (*venue.Venue, error) {
	v, ok := r.store.Get(id)
	if !ok {
		return nil, venue.ErrVenueNotFound
	}
	return v, nil
}

func (r *VenueRepository) List(_ context.Context) ([]*venue.Venue, error) {
	venues := r.store.List()
	sort.Slice(venues, func(i, j int) bool { return venues[i].CreatedAt.Before(venues[j].CreatedAt) })
	return venues, nil
}

func (r *VenueRepository) SearchByNameOrLocation(_ context.Context, keyword string) ([]*venue.Venue, error) {
	kw := strings.ToLower(keyword)
	var out []*venue.Venue
	for _, v := range r.store.List() {
		if strings.Contains(strings.ToLower(v.Name), kw) || strings.Contains(strings.ToLower(v.Location), kw) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *VenueRepository) Update(_ context.Context, v *venue.Venue) error {
	v.UpdatedAt = time.Now()
	if !r.store.Replace(v.ID, v) {
		return venue.ErrVenueNotFound
	}
	return nil
}

func (r *VenueRepository) Delete(_ context.Context, id string) error {
	if !r.store.Delete(id) {
		return venue.ErrVenueNotFound
	}
	return nil
}

// SectionRepository はセクションのインメモリリポジトリ
type SectionRepository struct {
	store *Store[venue.Section]
}

// NewSectionRepository は新しいセクションリポジトリを作成する
func NewSectionRepository() *SectionRepository {
	return &SectionRepository{store: NewStore(cloneSection)}
}

func (r *SectionRepository) Create(_ context.Context, s *venue.Section) error {
	if s.ID == "" {
		s.ID = NewID()
	}
	r.store.Put(s.ID, s)
	return nil
}

func (r *SectionRepository) GetByID(_ context.Context, id string) (*venue.Section, error) {
	s, ok := r.store.Get(id)
	if !ok {
		return nil, venue.ErrSectionNotFound
	}
	return s, nil
}

func (r *SectionRepository) GetByVenueID(_ context.Context, venueID string) ([]*venue.Section, error) {
	var out []*venue.Section
	for _, s := range r.store.List() {
		if s.VenueID == venueID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *SectionRepository) Update(_ context.Context, s *venue.Section) error {
	s.UpdatedAt = time.Now()
	if !r.store.Replace(s.ID, s) {
		return venue.ErrSectionNotFound
	}
	return nil
}

func (r *SectionRepository) Delete(_ context.Context, id string) error {
	if !r.store.Delete(id) {
		return venue.ErrSectionNotFound
	}
	return nil
}

// RowRepository は列のインメモリリポジトリ
type RowRepository struct {
	store *Store[venue.Row]
}

// NewRowRepository は新しい列リポジトリを作成する
func NewRowRepository() *RowRepository {
	return &RowRepository{store: NewStore(cloneRow)}
}

func (r *RowRepository) Create(_ context.Context, row *venue.Row) error {
	if row.ID == "" {
		row.ID = NewID()
	}
	r.store.Put(row.ID, row)
	return nil
}

func (r *RowRepository) GetByID(_ context.Context, id string) (*venue.Row, error) {
	row, ok := r.store.Get(id)
	if !ok {
		return nil, venue.ErrRowNotFound
	}
	return row, nil
}

func (r *RowRepository) GetBySectionID(_ context.Context, sectionID string) ([]*venue.Row, error) {
	var out []*venue.Row
	for _, row := range r.store.List() {
		if row.SectionID == sectionID {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *RowRepository) Update(_ context.Context, row *venue.Row) error {
	row.UpdatedAt = time.Now()
	if !r.store.Replace(row.ID, row) {
		return venue.ErrRowNotFound
	}
	return nil
}

func (r *RowRepository) Delete(_ context.Context, id string) error {
	if !r.store.Delete(id) {
		return venue.ErrRowNotFound
	}
	return nil
}

// SeatRepository は座席のインメモリリポジトリ
// ReserveIfFree はストアの書き込みロック下で実行され、座席クレームの直列化ポイントになる
type SeatRepository struct {
	store *Store[venue.Seat]
}

// NewSeatRepository は新しい座席リポジトリを作成する
func NewSeatRepository() *SeatRepository {
	return &SeatRepository{store: NewStore(cloneSeat)}
}

func (r *SeatRepository) Create(_ context.Context, s *venue.Seat) error {
	if s.ID == "" {
		s.ID = NewID()
	}
	r.store.Put(s.ID, s)
	return nil
}

func (r *SeatRepository) CreateBulk(ctx context.Context, seats []*venue.Seat) error {
	for _, s := range seats {
		if err := r.Create(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (r *SeatRepository) GetByID(_ context.Context, id string) (*venue.Seat, error) {
	s, ok := r.store.Get(id)
	if !ok {
		return nil, venue.ErrSeatNotFound
	}
	return s, nil
}

func (r *SeatRepository) GetByRowID(_ context.Context, rowID string) ([]*venue.Seat, error) {
	var out []*venue.Seat
	for _, s := range r.store.List() {
		if s.RowID == rowID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (r *SeatRepository) ReserveIfFree(_ context.Context, seatID, ticketID string) error {
	err := r.store.Mutate(seatID, func(s *venue.Seat) error {
		return s.Reserve(ticketID)
	})
	if errors.Is(err, errNotFound) {
		return venue.ErrSeatNotFound
	}
	return err
}

func (r *SeatRepository) Release(_ context.Context, seatID string) error {
	err := r.store.Mutate(seatID, func(s *venue.Seat) error {
		return s.Release()
	})
	if errors.Is(err, errNotFound) {
		return venue.ErrSeatNotFound
	}
	return err
}

func (r *SeatRepository) Update(_ context.Context, s *venue.Seat) error {
	s.UpdatedAt = time.Now()
	if !r.store.Replace(s.ID, s) {
		return venue.ErrSeatNotFound
	}
	return nil
}

func (r *SeatRepository) Delete(_ context.Context, id string) error {
	if !r.store.Delete(id) {
		return venue.ErrSeatNotFound
	}
	return nil
}

var (
	_ venue.Repository        = (*VenueRepository)(nil)
	_ venue.SectionRepository = (*SectionRepository)(nil)
	_ venue.RowRepository     = (*RowRepository)(nil)
	_ venue.SeatRepository    = (*SeatRepository)(nil)
)
