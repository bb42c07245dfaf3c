package services

import (
	"context"
	"sort"
	"strings"

	"github.com/connectai/backend/internal/apperrors"
	"github.com/connectai/backend/internal/models"
	"github.com/connectai/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ScoredPost is a feed entry with its ranking score
type ScoredPost struct {
	models.Post
	Score int64 `json:"score"`
}

// FeedItem is a scored post enriched for one viewer
type FeedItem struct {
	ScoredPost
	Author        *models.UserCompact `json:"author,omitempty"`
	LikesCount    int                 `json:"likes_count"`
	CommentsCount int                 `json:"comments_count"`
	IsLiked       bool                `json:"is_liked"`
	IsSaved       bool                `json:"is_saved"`
}

// FeedService ranks posts for a viewer. A post scores
// matches*weight + timestamp millis, where matches counts post tags found in
// the viewer's interests. weight must exceed any timestamp gap so that
// relevance always beats recency.
type FeedService struct {
	users  repositories.UserRepository
	posts  repositories.PostRepository
	saved  repositories.SavedPostRepository
	weight int64
}

func NewFeedService(users repositories.UserRepository, posts repositories.PostRepository, saved repositories.SavedPostRepository, weight int64) *FeedService {
	return &FeedService{users: users, posts: posts, saved: saved, weight: weight}
}

// Audience returns the viewer plus everyone they follow or are friends with, each once.
func Audience(viewer *models.User) []primitive.ObjectID {
	seen := map[primitive.ObjectID]bool{viewer.ID: true}
	audience := []primitive.ObjectID{viewer.ID}
	for _, set := range [][]primitive.ObjectID{viewer.Following, viewer.Friends} {
		for _, id := range set {
			if !seen[id] {
				seen[id] = true
				audience = append(audience, id)
			}
		}
	}
	return audience
}

// Score computes the ranking score of post for a viewer with the given interests.
func Score(post *models.Post, interests map[string]bool, weight int64) int64 {
	var matches int64
	seen := make(map[string]bool, len(post.Tags))
	for _, tag := range post.Tags {
		tag = strings.ToLower(tag)
		if interests[tag] && !seen[tag] {
			seen[tag] = true
			matches++
		}
	}
	return matches*weight + post.Timestamp.UnixMilli()
}

// GetFeed returns every post by the viewer's audience, most relevant first.
// Equal scores are ordered by post id, newest first.
func (s *FeedService) GetFeed(ctx context.Context, viewerID string) ([]ScoredPost, error) {
	id, err := parseID(viewerID, "user")
	if err != nil {
		return nil, err
	}
	viewer, err := getUser(ctx, s.users, id)
	if err != nil {
		return nil, err
	}

	posts, err := s.posts.GetPostsByAuthors(ctx, Audience(viewer))
	if err != nil {
		return nil, apperrors.Internal(err, "failed to load feed posts")
	}

	interests := make(map[string]bool, len(viewer.Interests))
	for _, in := range viewer.Interests {
		interests[strings.ToLower(in)] = true
	}

	feed := make([]ScoredPost, len(posts))
	for i := range posts {
		feed[i] = ScoredPost{Post: posts[i], Score: Score(&posts[i], interests, s.weight)}
	}
	sort.Slice(feed, func(i, j int) bool {
		if feed[i].Score != feed[j].Score {
			return feed[i].Score > feed[j].Score
		}
		return feed[i].ID.Hex() > feed[j].ID.Hex()
	})
	return feed, nil
}

// Enrich adds the author, counters and the viewer's like and save state.
func (s *FeedService) Enrich(ctx context.Context, viewerID string, feed []ScoredPost) ([]FeedItem, error) {
	viewer, err := parseID(viewerID, "user")
	if err != nil {
		return nil, err
	}

	authorSet := map[primitive.ObjectID]bool{}
	var authorIDs []primitive.ObjectID
	postIDs := make([]string, len(feed))
	for i, p := range feed {
		postIDs[i] = p.ID.Hex()
		if !authorSet[p.AuthorID] {
			authorSet[p.AuthorID] = true
			authorIDs = append(authorIDs, p.AuthorID)
		}
	}

	authors, err := s.users.GetUsersByIDs(ctx, authorIDs)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to load post authors")
	}
	byID := make(map[primitive.ObjectID]models.UserCompact, len(authors))
	for i := range authors {
		byID[authors[i].ID] = authors[i].ToCompact()
	}

	saved := map[string]bool{}
	if len(postIDs) > 0 {
		saved, err = s.saved.GetSavedPostIDs(viewerID, postIDs)
		if err != nil {
			return nil, apperrors.Internal(err, "failed to load saved posts")
		}
	}

	items := make([]FeedItem, len(feed))
	for i := range feed {
		item := FeedItem{
			ScoredPost:    feed[i],
			LikesCount:    len(feed[i].Likes),
			CommentsCount: len(feed[i].Comments),
			IsLiked:       feed[i].LikedBy(viewer),
			IsSaved:       saved[postIDs[i]],
		}
		if author, ok := byID[feed[i].AuthorID]; ok {
			item.Author = &author
		}
		items[i] = item
	}
	return items, nil
}
