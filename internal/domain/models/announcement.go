// internal/domain/models/announcement.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AnnouncementCategory string

const (
	CategoryGeneral  AnnouncementCategory = "general"
	CategoryEvent    AnnouncementCategory = "event"
	CategoryPrayer   AnnouncementCategory = "prayer"
	CategoryService  AnnouncementCategory = "service"
	CategoryUrgent   AnnouncementCategory = "urgent"
	CategoryMinistry AnnouncementCategory = "ministry"
)

var AnnouncementCategories = []AnnouncementCategory{
	CategoryGeneral, CategoryEvent, CategoryPrayer, CategoryService, CategoryUrgent, CategoryMinistry,
}

func (c AnnouncementCategory) Valid() bool { return oneOf(c, AnnouncementCategories) }

type AnnouncementPriority string

const (
	AnnLow    AnnouncementPriority = "low"
	AnnMedium AnnouncementPriority = "medium"
	AnnHigh   AnnouncementPriority = "high"
	AnnUrgent AnnouncementPriority = "urgent"
)

var AnnouncementPriorities = []AnnouncementPriority{AnnLow, AnnMedium, AnnHigh, AnnUrgent}

func (p AnnouncementPriority) Valid() bool { return oneOf(p, AnnouncementPriorities) }

// Rank is stored alongside the priority so lists can sort urgent first.
func (p AnnouncementPriority) Rank() int {
	for i, v := range AnnouncementPriorities {
		if v == p {
			return i + 1
		}
	}
	return 0
}

// Announcement is a tenant-scoped notice with a publish/expiry window.
type Announcement struct {
	ID           primitive.ObjectID   `bson:"_id" json:"id"`
	ChurchID     primitive.ObjectID   `bson:"church_id" json:"churchId"`
	BranchID     *primitive.ObjectID  `bson:"branch_id,omitempty" json:"branchId,omitempty"`
	Title        string               `bson:"title" json:"title"`
	Content      string               `bson:"content" json:"content"`
	ContentHTML  string               `bson:"content_html" json:"contentHtml"`
	Category     AnnouncementCategory `bson:"category" json:"category"`
	Priority     AnnouncementPriority `bson:"priority" json:"priority"`
	PriorityRank int                  `bson:"priority_rank" json:"-"`
	Status       PublishStatus        `bson:"status" json:"status"`
	PublishDate  time.Time            `bson:"publish_date" json:"publishDate"`
	ExpiryDate   *time.Time           `bson:"expiry_date,omitempty" json:"expiryDate,omitempty"`
	CreatedBy    primitive.ObjectID   `bson:"created_by" json:"createdBy"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
