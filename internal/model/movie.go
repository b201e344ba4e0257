package model

// Movie carries the subset of movie data the booking flow needs.  Full
// movie management lives outside this service.
//
// Fields:
//  ID    – primary key identifier.
//  Title – display title.
type Movie struct {
	ID    uint64 // movies.movie_id
	Title string // movies.title
}
