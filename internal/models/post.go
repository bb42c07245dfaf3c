package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxPostTags bounds the tags of a post, which also bounds the feed score.
const MaxPostTags = 30

// Post represents a social media post stored in MongoDB
type Post struct {
	ID         primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	AuthorID   primitive.ObjectID   `json:"author_id" bson:"author_id"`
	Text       string               `json:"text" bson:"text"`
	Media      string               `json:"media,omitempty" bson:"media,omitempty"`
	Tags       []string             `json:"tags" bson:"tags"`
	Location   string               `json:"location,omitempty" bson:"location,omitempty"`
	Mentions   []primitive.ObjectID `json:"mentions,omitempty" bson:"mentions,omitempty"`
	Likes      []primitive.ObjectID `json:"likes" bson:"likes"`
	Comments   []Comment            `json:"comments" bson:"comments"`
	Timestamp  time.Time            `json:"timestamp" bson:"timestamp"`
	SharedFrom *primitive.ObjectID  `json:"shared_from,omitempty" bson:"shared_from,omitempty"`
}

// Comment is appended to a post in insertion order
type Comment struct {
	UserID    primitive.ObjectID `json:"user_id" bson:"user_id"`
	Text      string             `json:"text" bson:"text"`
	Timestamp time.Time          `json:"timestamp" bson:"timestamp"`
}

// LikedBy reports whether userID is in the post's likes set.
func (p *Post) LikedBy(userID primitive.ObjectID) bool {
	return containsID(p.Likes, userID)
}

// PostWithCounts is the single-post read model
type PostWithCounts struct {
	Post
	LikesCount    int `json:"likes_count"`
	CommentsCount int `json:"comments_count"`
}

func (p Post) WithCounts() PostWithCounts {
	return PostWithCounts{Post: p, LikesCount: len(p.Likes), CommentsCount: len(p.Comments)}
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Text     string   `json:"text" form:"text" validate:"required,min=1,max=2000"`
	Media    string   `json:"media,omitempty" form:"media_url" validate:"omitempty,url"`
	Tags     []string `json:"tags,omitempty" form:"tags" validate:"omitempty,max=30,dive,min=1,max=40"`
	Location string   `json:"location,omitempty" form:"location" validate:"omitempty,max=120"`
}

// CreateCommentRequest defines the request body for commenting on a post
type CreateCommentRequest struct {
	Text string `json:"text" validate:"required,min=1,max=500"`
}
