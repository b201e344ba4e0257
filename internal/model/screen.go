package model

// Screen is an auditorium inside a cinema.  Its seats are created with
// it and never change afterwards.
//
// Fields:
//  ID       – primary key identifier.
//  CinemaID – cinema the screen belongs to.
//  Name     – display name such as "Screen 3".
//  Format   – projection format (2D, 3D, IMAX, ...).
type Screen struct {
	ID       uint64 // screens.screen_id
	CinemaID uint64 // screens.cinema_id
	Name     string // screens.name
	Format   string // screens.screen_format
}
