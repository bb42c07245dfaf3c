package services

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/connectai/backend/internal/apperrors"
	"github.com/connectai/backend/internal/models"
	"github.com/connectai/backend/internal/repositories/memory"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const testWeight int64 = 1e13

type fakeUploader struct {
	err   error
	names []string
	data  []string
}

func (u *fakeUploader) Upload(_ context.Context, name string, r io.Reader, _ string) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	b, _ := io.ReadAll(r)
	u.names = append(u.names, name)
	u.data = append(u.data, string(b))
	return "https://cdn.test/" + name, nil
}

type fixture struct {
	ctx           context.Context
	store         *memory.Store
	uploader      *fakeUploader
	relationships *RelationshipService
	notifications *NotificationService
	feed          *FeedService
	posts         *PostService
	users         *UserService
	auth          *AuthService
	messaging     *MessagingService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	log := zap.NewNop()
	uploader := &fakeUploader{}

	relationships := NewRelationshipService(store.Users(), store.Notifications(), log)
	return &fixture{
		ctx:           context.Background(),
		store:         store,
		uploader:      uploader,
		relationships: relationships,
		notifications: NewNotificationService(store.Notifications(), store.Users(), relationships, log),
		feed:          NewFeedService(store.Users(), store.Posts(), store.SavedPosts(), testWeight),
		posts:         NewPostService(store.Posts(), store.Users(), store.SavedPosts(), store.Notifications(), uploader, log),
		users:         NewUserService(store.Users(), uploader, log),
		auth:          NewAuthService(store.Users(), store.Denylist(), nil, "test-secret", time.Hour, log),
		messaging:     NewMessagingService(store.Conversations(), store.Users(), store.Notifications(), log),
	}
}

func (f *fixture) addUser(t *testing.T, username string, interests ...string) *models.User {
	t.Helper()
	u := &models.User{
		Name:      username,
		Username:  username,
		Email:     username + "@example.com",
		Interests: interests,
	}
	if err := f.store.Users().CreateUser(f.ctx, u); err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

func (f *fixture) user(t *testing.T, id primitive.ObjectID) *models.User {
	t.Helper()
	u, err := f.store.Users().GetUserByID(f.ctx, id)
	if err != nil {
		t.Fatalf("load user: %v", err)
	}
	return u
}

func (f *fixture) addPost(t *testing.T, author primitive.ObjectID, at time.Time, tags ...string) *models.Post {
	t.Helper()
	p := &models.Post{AuthorID: author, Text: "post", Tags: tags, Timestamp: at}
	if err := f.store.Posts().CreatePost(f.ctx, p); err != nil {
		t.Fatalf("create post: %v", err)
	}
	return p
}

func (f *fixture) pending(t *testing.T, recipient primitive.ObjectID) []models.NotificationWithSender {
	t.Helper()
	list, err := f.notifications.GetNotifications(f.ctx, recipient.Hex())
	if err != nil {
		t.Fatalf("GetNotifications: %v", err)
	}
	return list
}

func assertKind(t *testing.T, err error, kind apperrors.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if got := apperrors.KindOf(err); got != kind {
		t.Fatalf("expected %s error, got %s (%v)", kind, got, err)
	}
}

func sameIDs(a, b []primitive.ObjectID) bool {
	if len(a) != len(b) {
		return false
	}
	set := map[primitive.ObjectID]int{}
	for _, id := range a {
		set[id]++
	}
	for _, id := range b {
		set[id]--
	}
	for _, n := range set {
		if n != 0 {
			return false
		}
	}
	return true
}

func contains(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
