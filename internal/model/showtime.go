package model

import "time"

// Showtime is one screening of a movie on a screen.  Showtimes on the
// same screen never overlap: the scheduler rejects any new [start, end)
// interval that intersects an existing one.
//
// Fields:
//  ID         – primary key identifier.
//  MovieID    – movie being screened.
//  ScreenID   – screen the screening plays in.
//  StartTime  – when the screening starts (UTC).
//  EndTime    – when the screening ends (UTC, strictly after StartTime).
//  MovieTitle – movie title joined in for display; not a column of showtimes.
type Showtime struct {
	ID         uint64    // showtimes.showtime_id
	MovieID    uint64    // showtimes.movie_id
	ScreenID   uint64    // showtimes.screen_id
	StartTime  time.Time // showtimes.start_time
	EndTime    time.Time // showtimes.end_time
	MovieTitle string    // movies.title (joined)
}
