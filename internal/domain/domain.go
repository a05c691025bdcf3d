package domain

import "time"

// Ad is one classified listing. Rows are append-only: there is no update
// or delete path, ads only ever get created.
type Ad struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
}
