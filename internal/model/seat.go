package model

// Seat describes a physical seat inside a screen.  Seats are static
// geometry: they are created together with the screen and never change
// afterwards.  The seat_class drives ticket pricing and is an open set
// (standard, premium, ...) rather than a closed enumeration.
//
// Fields:
//  ID        – primary key identifier.
//  ScreenID  – screen to which this seat belongs.
//  SeatClass – pricing class of the seat (standard, premium, ...).
//  Label     – human readable label such as "A12".
//  RowNum    – row position inside the screen (1-based).
//  ColNum    – column position inside the row (1-based).
type Seat struct {
	ID        uint64 // seats.seat_id
	ScreenID  uint64 // seats.screen_id
	SeatClass string // seats.seat_class
	Label     string // seats.seat_label
	RowNum    uint32 // seats.row_num
	ColNum    uint32 // seats.col_num
}

// Seat availability states as computed by the availability projection.
// Sold takes precedence over Locked, which takes precedence over Available.
const (
	SeatAvailable = "available"
	SeatLocked    = "locked"
	SeatSold      = "sold"
)

// SeatAvailability pairs a seat with its derived status for one showtime.
type SeatAvailability struct {
	Seat
	Status string // available | locked | sold
}
