package services

import (
	"context"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/connectai/backend/internal/apperrors"
	"github.com/connectai/backend/internal/models"
	"github.com/connectai/backend/internal/repositories"
	"github.com/connectai/backend/internal/storage"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// MaxTags bounds the tags of a post.
const MaxTags = models.MaxPostTags

var mentionPattern = regexp.MustCompile(`(?:^|[^\w@])@(\w{3,30})`)

// Upload is a file received with a request
type Upload struct {
	Reader      io.Reader
	Filename    string
	ContentType string
}

// NewPost carries the fields of a post being created
type NewPost struct {
	Text     string
	Media    string
	Tags     []string
	Location string
	File     *Upload
}

// PostService implements likes, comments, shares, deletes and bookmarks
type PostService struct {
	posts         repositories.PostRepository
	users         repositories.UserRepository
	saved         repositories.SavedPostRepository
	notifications repositories.NotificationRepository
	uploader      storage.Uploader
	log           *zap.Logger
}

func NewPostService(
	posts repositories.PostRepository,
	users repositories.UserRepository,
	saved repositories.SavedPostRepository,
	notifications repositories.NotificationRepository,
	uploader storage.Uploader,
	log *zap.Logger,
) *PostService {
	return &PostService{
		posts:         posts,
		users:         users,
		saved:         saved,
		notifications: notifications,
		uploader:      uploader,
		log:           log,
	}
}

// ParseMentions returns the distinct @handles in text, in order of appearance.
func ParseMentions(text string) []string {
	var handles []string
	seen := map[string]bool{}
	for _, m := range mentionPattern.FindAllStringSubmatch(text, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			handles = append(handles, m[1])
		}
	}
	return handles
}

func (s *PostService) CreatePost(ctx context.Context, authorID string, in NewPost) (*models.Post, error) {
	author, err := parseID(authorID, "user")
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, apperrors.InvalidArgument("text is required")
	}
	tags := normalizeTags(in.Tags)
	if len(tags) > MaxTags {
		return nil, apperrors.InvalidArgument("a post can have at most %d tags", MaxTags)
	}
	if _, err := getUser(ctx, s.users, author); err != nil {
		return nil, err
	}

	media := in.Media
	if in.File != nil {
		media, err = s.uploader.Upload(ctx, storage.ObjectName("posts", in.File.Filename), in.File.Reader, in.File.ContentType)
		if err != nil {
			return nil, apperrors.Internal(err, "failed to upload media")
		}
	}

	var mentions []primitive.ObjectID
	if handles := ParseMentions(text); len(handles) > 0 {
		users, err := s.users.GetUsersByUsernames(ctx, handles)
		if err != nil {
			return nil, apperrors.Internal(err, "failed to resolve mentions")
		}
		for i := range users {
			mentions = append(mentions, users[i].ID)
		}
	}

	post := &models.Post{
		AuthorID:  author,
		Text:      text,
		Media:     media,
		Tags:      tags,
		Location:  strings.TrimSpace(in.Location),
		Mentions:  mentions,
		Timestamp: time.Now().UTC(),
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, apperrors.Internal(err, "failed to create post")
	}
	return post, nil
}

func (s *PostService) GetPost(ctx context.Context, postID string) (*models.PostWithCounts, error) {
	id, err := parseID(postID, "post")
	if err != nil {
		return nil, err
	}
	post, err := getPost(ctx, s.posts, id)
	if err != nil {
		return nil, err
	}
	withCounts := post.WithCounts()
	return &withCounts, nil
}

// ListPostsByAuthor pages through an author's posts, newest first.
func (s *PostService) ListPostsByAuthor(ctx context.Context, authorID string, skip, limit int64) ([]models.Post, error) {
	author, err := parseID(authorID, "user")
	if err != nil {
		return nil, err
	}
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	posts, err := s.posts.GetPostsByAuthor(ctx, author, skip, limit)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to load posts")
	}
	return posts, nil
}

// ToggleLike flips the actor's membership in the post's likes and reports
// whether the post is now liked.
func (s *PostService) ToggleLike(ctx context.Context, actorID, postID string) (bool, error) {
	actor, err := parseID(actorID, "user")
	if err != nil {
		return false, err
	}
	id, err := parseID(postID, "post")
	if err != nil {
		return false, err
	}
	post, err := getPost(ctx, s.posts, id)
	if err != nil {
		return false, err
	}

	if post.LikedBy(actor) {
		if err := s.posts.RemoveLike(ctx, id, actor); err != nil {
			return false, storeError(err, "post", "unlike post")
		}
		return false, nil
	}

	if err := s.posts.AddLike(ctx, id, actor); err != nil {
		return false, storeError(err, "post", "like post")
	}
	if post.AuthorID != actor {
		if _, err := emit(ctx, s.notifications, actor, post.AuthorID, models.NotificationLike, id.Hex()); err != nil {
			return true, err
		}
	}
	return true, nil
}

func (s *PostService) Comment(ctx context.Context, actorID, postID, text string) (*models.Comment, error) {
	actor, err := parseID(actorID, "user")
	if err != nil {
		return nil, err
	}
	id, err := parseID(postID, "post")
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.InvalidArgument("comment text is required")
	}
	post, err := getPost(ctx, s.posts, id)
	if err != nil {
		return nil, err
	}

	comment := models.Comment{UserID: actor, Text: text, Timestamp: time.Now().UTC()}
	if err := s.posts.AddComment(ctx, id, comment); err != nil {
		return nil, storeError(err, "post", "add comment")
	}
	if post.AuthorID != actor {
		if _, err := emit(ctx, s.notifications, actor, post.AuthorID, models.NotificationComment, id.Hex()); err != nil {
			return nil, err
		}
	}
	return &comment, nil
}

// Share creates an independent copy of the post owned by actor.
func (s *PostService) Share(ctx context.Context, actorID, postID string) (*models.Post, error) {
	actor, err := parseID(actorID, "user")
	if err != nil {
		return nil, err
	}
	id, err := parseID(postID, "post")
	if err != nil {
		return nil, err
	}
	original, err := getPost(ctx, s.posts, id)
	if err != nil {
		return nil, err
	}

	shared := &models.Post{
		AuthorID:   actor,
		Text:       original.Text,
		Media:      original.Media,
		Tags:       append([]string{}, original.Tags...),
		Location:   original.Location,
		Timestamp:  time.Now().UTC(),
		SharedFrom: &id,
	}
	if err := s.posts.CreatePost(ctx, shared); err != nil {
		return nil, apperrors.Internal(err, "failed to share post")
	}
	return shared, nil
}

func (s *PostService) Delete(ctx context.Context, actorID, postID string) error {
	actor, err := parseID(actorID, "user")
	if err != nil {
		return err
	}
	id, err := parseID(postID, "post")
	if err != nil {
		return err
	}
	post, err := getPost(ctx, s.posts, id)
	if err != nil {
		return err
	}
	if post.AuthorID != actor {
		return apperrors.Forbidden("you are not authorized to delete this post")
	}
	if err := s.posts.DeletePost(ctx, id); err != nil {
		return storeError(err, "post", "delete post")
	}
	return nil
}

// SavePost bookmarks a post. Saving twice is a no-op.
func (s *PostService) SavePost(ctx context.Context, actorID, postID string) error {
	if _, err := parseID(actorID, "user"); err != nil {
		return err
	}
	id, err := parseID(postID, "post")
	if err != nil {
		return err
	}
	if _, err := getPost(ctx, s.posts, id); err != nil {
		return err
	}
	if err := s.saved.SavePost(&models.SavedPost{UserID: actorID, PostID: postID}); err != nil {
		return apperrors.Internal(err, "failed to save post")
	}
	return nil
}

func (s *PostService) UnsavePost(ctx context.Context, actorID, postID string) error {
	if _, err := parseID(actorID, "user"); err != nil {
		return err
	}
	if _, err := parseID(postID, "post"); err != nil {
		return err
	}
	if err := s.saved.UnsavePost(actorID, postID); err != nil {
		return apperrors.Internal(err, "failed to unsave post")
	}
	return nil
}

// ListSaved returns the actor's bookmarked posts, most recently saved first.
// Bookmarks of deleted posts are skipped.
func (s *PostService) ListSaved(ctx context.Context, actorID string) ([]models.Post, error) {
	if _, err := parseID(actorID, "user"); err != nil {
		return nil, err
	}
	rows, err := s.saved.GetSavedPostsByUser(actorID)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to load saved posts")
	}

	posts := make([]models.Post, 0, len(rows))
	for _, row := range rows {
		id, err := primitive.ObjectIDFromHex(row.PostID)
		if err != nil {
			continue
		}
		post, err := s.posts.GetPostByID(ctx, id)
		if errors.Is(err, repositories.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, apperrors.Internal(err, "failed to load saved post")
		}
		posts = append(posts, *post)
	}
	return posts, nil
}
