package post

import "encoding/json"

type CreateRequest struct {
	Title      string   `json:"title" binding:"required,min=1,max=200"`
	Content    string   `json:"content" binding:"required"`
	Summary    string   `json:"summary" binding:"max=500"`
	CoverImage string   `json:"cover_image"`
	CategoryID *string  `json:"category_id"`
	TagIDs     []string `json:"tag_ids"`
	Status     string   `json:"status" binding:"omitempty,oneof=draft published"`
}

// OptionalString distinguishes an absent JSON field from an explicit
// null, so a patch can clear a value instead of leaving it untouched.
type OptionalString struct {
	Set   bool
	Value *string
}

func (o *OptionalString) UnmarshalJSON(b []byte) error {
	o.Set = true
	return json.Unmarshal(b, &o.Value)
}

type UpdateRequest struct {
	Title      *string        `json:"title" binding:"omitempty,min=1,max=200"`
	Content    *string        `json:"content"`
	Summary    *string        `json:"summary" binding:"omitempty,max=500"`
	CoverImage *string        `json:"cover_image"`
	CategoryID OptionalString `json:"category_id"`
	TagIDs     []string       `json:"tag_ids"`
	Status     *string        `json:"status" binding:"omitempty,oneof=draft published"`
}
