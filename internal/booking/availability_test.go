package booking

import (
	"testing"

	"github.com/iliyamo/movie-theater-booking/internal/model"
)

func seatFixture(id uint64) model.Seat {
	return model.Seat{ID: id, ScreenID: 1, SeatClass: "standard"}
}

func TestProjectAvailabilityPartitions(t *testing.T) {
	seats := []model.Seat{seatFixture(1), seatFixture(2), seatFixture(3), seatFixture(4)}
	sold := map[uint64]struct{}{2: {}}
	locked := map[uint64]struct{}{3: {}}

	got := projectAvailability(seats, sold, locked)
	if len(got) != len(seats) {
		t.Fatalf("projection has %d seats, want %d", len(got), len(seats))
	}
	want := map[uint64]string{
		1: model.SeatAvailable,
		2: model.SeatSold,
		3: model.SeatLocked,
		4: model.SeatAvailable,
	}
	for _, a := range got {
		if a.Status != want[a.ID] {
			t.Errorf("seat %d status = %q, want %q", a.ID, a.Status, want[a.ID])
		}
	}
}

func TestProjectAvailabilitySoldWinsOverLocked(t *testing.T) {
	seats := []model.Seat{seatFixture(7)}
	sold := map[uint64]struct{}{7: {}}
	locked := map[uint64]struct{}{7: {}}

	got := projectAvailability(seats, sold, locked)
	if got[0].Status != model.SeatSold {
		t.Errorf("seat in both sets reports %q, want %q", got[0].Status, model.SeatSold)
	}
}

func TestProjectAvailabilityEmptyInventory(t *testing.T) {
	got := projectAvailability(nil, nil, nil)
	if len(got) != 0 {
		t.Errorf("empty inventory projected %d seats, want 0", len(got))
	}
}

func TestProjectAvailabilityPreservesSeatOrder(t *testing.T) {
	seats := []model.Seat{seatFixture(5), seatFixture(2), seatFixture(9)}
	got := projectAvailability(seats, nil, nil)
	for i, a := range got {
		if a.ID != seats[i].ID {
			t.Errorf("position %d has seat %d, want %d", i, a.ID, seats[i].ID)
		}
	}
}
