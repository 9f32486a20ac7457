package models

// CategoryModel represents a post category.
// Deletion is physical and rejected while any non-deleted post references it.
type CategoryModel struct {
	Base
	Name        string `json:"name"  gorm:"uniqueIndex;not null"`
	Slug        string `json:"slug"  gorm:"uniqueIndex;not null"`
	Description string `json:"description"`
}

func (CategoryModel) TableName() string { return "categories" }

// TagModel represents a post tag. Deletion is physical and unconditional;
// dangling tag ids on posts are dropped at hydration time.
type TagModel struct {
	Base
	Name string `json:"name" gorm:"uniqueIndex;not null"`
	Slug string `json:"slug" gorm:"uniqueIndex;not null"`
}

func (TagModel) TableName() string { return "tags" }
