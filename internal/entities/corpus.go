package entities

import "time"

type Corpus struct {
	ID        string    `db:"id"`
	Slug      string    `db:"slug"`
	Name      string    `db:"name"`
	RootPath  string    `db:"root_path"`
	OwnerID   string    `db:"owner_id"`
	Watch     bool      `db:"watch"`
	CreatedAt time.Time `db:"created_at"`
}
