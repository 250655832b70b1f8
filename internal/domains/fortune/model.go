package fortune

import (
	"time"
)

// Author owns fortunes. The Fortunes slice is a reverse relation loaded
// on demand (Repository.FortunesByAuthor), never implicitly.
type Author struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt *time.Time
	Fortunes  []Fortune
}

// Tag is attached to fortunes through a join table. Fortunes is loaded on
// demand, like Author.Fortunes.
type Tag struct {
	ID        int64
	Value     string
	CreatedAt time.Time
	UpdatedAt *time.Time
	Fortunes  []Fortune
}

// Fortune is a quote with exactly one author and any number of tags.
// Reads always carry Author and Tags populated.
type Fortune struct {
	ID        int64
	Content   string
	AuthorID  int64
	Author    *Author
	Tags      []Tag
	CreatedAt time.Time
	UpdatedAt *time.Time
}
