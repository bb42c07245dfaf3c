// Package memory provides in-process implementations of the repository
// interfaces. Every mutation is applied under a single lock so that it is
// atomic per document, matching the guarantee of the Mongo store.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/connectai/backend/internal/models"
	"github.com/connectai/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store holds every collection. Fail, when set, is consulted before each
// operation and lets tests inject store failures.
type Store struct {
	mu            sync.Mutex
	users         map[primitive.ObjectID]*models.User
	posts         map[primitive.ObjectID]*models.Post
	notifications map[primitive.ObjectID]*models.Notification
	saved         map[string]*models.SavedPost
	conversations map[uint]*models.Conversation
	messages      map[uint]*models.Message
	revoked       map[string]time.Time
	nextID        uint
	savedID       uint

	Fail func(op string, id primitive.ObjectID) error
}

func NewStore() *Store {
	return &Store{
		users:         make(map[primitive.ObjectID]*models.User),
		posts:         make(map[primitive.ObjectID]*models.Post),
		notifications: make(map[primitive.ObjectID]*models.Notification),
		saved:         make(map[string]*models.SavedPost),
		conversations: make(map[uint]*models.Conversation),
		messages:      make(map[uint]*models.Message),
		revoked:       make(map[string]time.Time),
	}
}

func (s *Store) fail(op string, id primitive.ObjectID) error {
	if s.Fail == nil {
		return nil
	}
	return s.Fail(op, id)
}

func (s *Store) Users() repositories.UserRepository                 { return (*userRepo)(s) }
func (s *Store) Posts() repositories.PostRepository                 { return (*postRepo)(s) }
func (s *Store) Notifications() repositories.NotificationRepository { return (*notificationRepo)(s) }
func (s *Store) SavedPosts() repositories.SavedPostRepository       { return (*savedPostRepo)(s) }
func (s *Store) Conversations() repositories.ConversationRepository { return (*conversationRepo)(s) }
func (s *Store) Denylist() repositories.TokenDenylist               { return (*denylist)(s) }

func cloneIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	out := make([]primitive.ObjectID, len(ids))
	copy(out, ids)
	return out
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.Interests = append([]string{}, u.Interests...)
	c.Following = cloneIDs(u.Following)
	c.Followers = cloneIDs(u.Followers)
	c.Friends = cloneIDs(u.Friends)
	return &c
}

func clonePost(p *models.Post) *models.Post {
	c := *p
	c.Tags = append([]string{}, p.Tags...)
	c.Likes = cloneIDs(p.Likes)
	if p.Mentions != nil {
		c.Mentions = cloneIDs(p.Mentions)
	}
	c.Comments = append([]models.Comment{}, p.Comments...)
	return &c
}

func addID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	for _, v := range ids {
		if v == id {
			return ids
		}
	}
	return append(ids, id)
}

func removeID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// users

type userRepo Store

func (r *userRepo) CreateUser(_ context.Context, user *models.User) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateUser", user.ID); err != nil {
		return err
	}
	for _, u := range s.users {
		if u.Email == user.Email || (user.Username != "" && u.Username == user.Username) {
			return repositories.ErrDuplicate
		}
		if user.FirebaseUID != "" && u.FirebaseUID == user.FirebaseUID {
			return repositories.ErrDuplicate
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	if user.Interests == nil {
		user.Interests = []string{}
	}
	if user.Following == nil {
		user.Following = []primitive.ObjectID{}
	}
	if user.Followers == nil {
		user.Followers = []primitive.ObjectID{}
	}
	if user.Friends == nil {
		user.Friends = []primitive.ObjectID{}
	}
	s.users[user.ID] = cloneUser(user)
	return nil
}

func (r *userRepo) find(op string, match func(*models.User) bool) (*models.User, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(op, primitive.NilObjectID); err != nil {
		return nil, err
	}
	for _, u := range s.users {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *userRepo) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetUserByID", id); err != nil {
		return nil, err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *userRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find("GetUserByEmail", func(u *models.User) bool { return u.Email == email })
}

func (r *userRepo) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	return r.find("GetUserByUsername", func(u *models.User) bool { return u.Username == username })
}

func (r *userRepo) GetUserByFirebaseUID(_ context.Context, firebaseUID string) (*models.User, error) {
	return r.find("GetUserByFirebaseUID", func(u *models.User) bool {
		return u.FirebaseUID != "" && u.FirebaseUID == firebaseUID
	})
}

func (r *userRepo) filter(op string, match func(*models.User) bool) ([]models.User, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(op, primitive.NilObjectID); err != nil {
		return nil, err
	}
	users := []models.User{}
	for _, u := range s.users {
		if match(u) {
			users = append(users, *cloneUser(u))
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

func (r *userRepo) GetUsersByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	want := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	return r.filter("GetUsersByIDs", func(u *models.User) bool { return want[u.ID] })
}

func (r *userRepo) GetUsersByUsernames(_ context.Context, usernames []string) ([]models.User, error) {
	want := make(map[string]bool, len(usernames))
	for _, n := range usernames {
		want[n] = true
	}
	return r.filter("GetUsersByUsernames", func(u *models.User) bool { return want[u.Username] })
}

func (r *userRepo) SearchUsers(_ context.Context, query string, limit int64) ([]models.User, error) {
	q := strings.ToLower(query)
	users, err := r.filter("SearchUsers", func(u *models.User) bool {
		return strings.Contains(strings.ToLower(u.Name), q) || strings.Contains(strings.ToLower(u.Username), q)
	})
	if err != nil {
		return nil, err
	}
	if limit > 0 && int64(len(users)) > limit {
		users = users[:limit]
	}
	return users, nil
}

func (r *userRepo) UpdateProfile(_ context.Context, id primitive.ObjectID, update models.ProfileUpdate) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("UpdateProfile", id); err != nil {
		return err
	}
	u, ok := s.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if update.Name != nil {
		u.Name = *update.Name
	}
	if update.Bio != nil {
		u.Bio = *update.Bio
	}
	if update.Avatar != nil {
		u.Avatar = *update.Avatar
	}
	if update.Mood != nil {
		u.Mood = *update.Mood
	}
	if update.Email != nil {
		u.Email = *update.Email
	}
	if update.FirebaseUID != nil {
		u.FirebaseUID = *update.FirebaseUID
	}
	if update.Interests != nil {
		u.Interests = append([]string{}, update.Interests...)
	}
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *userRepo) mutate(op string, id primitive.ObjectID, edges []models.Edge, apply func([]primitive.ObjectID, primitive.ObjectID) []primitive.ObjectID) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(op, id); err != nil {
		return err
	}
	u, ok := s.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	for _, e := range edges {
		switch e.Field {
		case models.FieldFollowing:
			u.Following = apply(u.Following, e.Target)
		case models.FieldFollowers:
			u.Followers = apply(u.Followers, e.Target)
		case models.FieldFriends:
			u.Friends = apply(u.Friends, e.Target)
		}
	}
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *userRepo) AddEdges(_ context.Context, id primitive.ObjectID, edges ...models.Edge) error {
	return r.mutate("AddEdges", id, edges, addID)
}

func (r *userRepo) RemoveEdges(_ context.Context, id primitive.ObjectID, edges ...models.Edge) error {
	return r.mutate("RemoveEdges", id, edges, removeID)
}

// posts

type postRepo Store

func (r *postRepo) CreatePost(_ context.Context, post *models.Post) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreatePost", post.AuthorID); err != nil {
		return err
	}
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}
	if post.Likes == nil {
		post.Likes = []primitive.ObjectID{}
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	s.posts[post.ID] = clonePost(post)
	return nil
}

func (r *postRepo) GetPostByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetPostByID", id); err != nil {
		return nil, err
	}
	p, ok := s.posts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return clonePost(p), nil
}

func (r *postRepo) GetPostsByAuthor(_ context.Context, authorID primitive.ObjectID, skip, limit int64) ([]models.Post, error) {
	posts, err := r.GetPostsByAuthors(context.Background(), []primitive.ObjectID{authorID})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(posts, func(i, j int) bool { return posts[i].Timestamp.After(posts[j].Timestamp) })
	if skip >= int64(len(posts)) {
		return []models.Post{}, nil
	}
	posts = posts[skip:]
	if limit > 0 && int64(len(posts)) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

// GetPostsByAuthors returns posts ordered by id
func (r *postRepo) GetPostsByAuthors(_ context.Context, authorIDs []primitive.ObjectID) ([]models.Post, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetPostsByAuthors", primitive.NilObjectID); err != nil {
		return nil, err
	}
	want := make(map[primitive.ObjectID]bool, len(authorIDs))
	for _, id := range authorIDs {
		want[id] = true
	}
	posts := []models.Post{}
	for _, p := range s.posts {
		if want[p.AuthorID] {
			posts = append(posts, *clonePost(p))
		}
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID.Hex() < posts[j].ID.Hex() })
	return posts, nil
}

func (r *postRepo) update(op string, id primitive.ObjectID, apply func(*models.Post)) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(op, id); err != nil {
		return err
	}
	p, ok := s.posts[id]
	if !ok {
		return repositories.ErrNotFound
	}
	apply(p)
	return nil
}

func (r *postRepo) AddLike(_ context.Context, postID, userID primitive.ObjectID) error {
	return r.update("AddLike", postID, func(p *models.Post) { p.Likes = addID(p.Likes, userID) })
}

func (r *postRepo) RemoveLike(_ context.Context, postID, userID primitive.ObjectID) error {
	return r.update("RemoveLike", postID, func(p *models.Post) { p.Likes = removeID(p.Likes, userID) })
}

func (r *postRepo) AddComment(_ context.Context, postID primitive.ObjectID, comment models.Comment) error {
	return r.update("AddComment", postID, func(p *models.Post) { p.Comments = append(p.Comments, comment) })
}

func (r *postRepo) DeletePost(_ context.Context, id primitive.ObjectID) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("DeletePost", id); err != nil {
		return err
	}
	if _, ok := s.posts[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.posts, id)
	return nil
}
