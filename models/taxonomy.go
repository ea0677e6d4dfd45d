package models

// Tag labels a recipe; owned by one user
type Tag struct {
	ID     int    `json:"id" db:"id"`
	Name   string `json:"name" db:"name"`
	UserID int    `json:"-" db:"user_id"`
}

// Ingredient has the same shape as Tag but lives in its own table
type Ingredient struct {
	ID     int    `json:"id" db:"id"`
	Name   string `json:"name" db:"name"`
	UserID int    `json:"-" db:"user_id"`
}

// NameRequest is the create/update payload for tags and ingredients
// Any owner field sent by the client is ignored
type NameRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// PatchNameRequest is the PATCH payload for tags and ingredients
type PatchNameRequest struct {
	Name *string `json:"name" validate:"omitempty,min=1,max=255"`
}
