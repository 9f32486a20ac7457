package models

import "time"

// Post status values.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// PostModel is a blog article.
// Posts are soft-deleted: is_deleted hides them from every read path but the
// row (and its slug) is kept forever.
type PostModel struct {
	Base
	Title       string      `json:"title"        gorm:"not null"`
	Slug        string      `json:"slug"         gorm:"uniqueIndex;not null"`
	Content     string      `json:"content"      gorm:"type:longtext"`
	Summary     string      `json:"summary"`
	CoverImage  string      `json:"cover_image"`
	AuthorID    string      `json:"author_id"    gorm:"index;not null"`
	CategoryID  *string     `json:"category_id"  gorm:"index"`
	TagIDs      StringArray `json:"tag_ids"      gorm:"type:json"`
	Status      string      `json:"status"       gorm:"default:draft;index"`
	ViewCount   int64       `json:"view_count"   gorm:"default:0"`
	IsDeleted   bool        `json:"is_deleted"   gorm:"default:false;index"`
	PublishedAt *time.Time  `json:"published_at"`
}

func (PostModel) TableName() string { return "posts" }

// IsPublished reports whether the post is publicly visible.
func (p PostModel) IsPublished() bool { return p.Status == StatusPublished }
