// internal/domain/models/content.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ContentType string

const (
	ContentArticle    ContentType = "article"
	ContentSermon     ContentType = "sermon"
	ContentDevotional ContentType = "devotional"
	ContentVideo      ContentType = "video"
	ContentAudio      ContentType = "audio"
	ContentDocument   ContentType = "document"
)

var ContentTypes = []ContentType{
	ContentArticle, ContentSermon, ContentDevotional, ContentVideo, ContentAudio, ContentDocument,
}

func (t ContentType) Valid() bool { return oneOf(t, ContentTypes) }

// Content is a published resource (sermon notes, devotionals, media links).
// Body is markdown; BodyHTML is the rendered and sanitized form.
type Content struct {
	ID          primitive.ObjectID  `bson:"_id" json:"id"`
	ChurchID    primitive.ObjectID  `bson:"church_id" json:"churchId"`
	BranchID    *primitive.ObjectID `bson:"branch_id,omitempty" json:"branchId,omitempty"`
	Title       string              `bson:"title" json:"title"`
	TitleCI     string              `bson:"title_ci" json:"-"`
	Slug        string              `bson:"slug" json:"slug"`
	Body        string              `bson:"body" json:"body"`
	BodyHTML    string              `bson:"body_html" json:"bodyHtml"`
	MediaURL    string              `bson:"media_url,omitempty" json:"mediaUrl,omitempty"`
	Type        ContentType         `bson:"type" json:"type"`
	Status      PublishStatus       `bson:"status" json:"status"`
	IsPublic    bool                `bson:"is_public" json:"isPublic"`
	Tags        []string            `bson:"tags" json:"tags"`
	AuthorID    primitive.ObjectID  `bson:"author_id" json:"authorId"`
	PublishedAt *time.Time          `bson:"published_at,omitempty" json:"publishedAt,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
