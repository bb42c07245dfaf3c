package services

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/connectai/backend/internal/apperrors"
	"github.com/connectai/backend/internal/models"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseMentions(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"hello world", nil},
		{"@alice hi", []string{"alice"}},
		{"hi @bob and @carol_1, again @bob", []string{"bob", "carol_1"}},
		{"mail me at me@example.com", nil},
		{"too short @ab", nil},
		{"(@dave)", []string{"dave"}},
	}
	for _, tt := range tests {
		if got := ParseMentions(tt.text); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseMentions(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestCreatePost(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")

	post, err := f.posts.CreatePost(f.ctx, alice.ID.Hex(), NewPost{
		Text: "  match day with @bob and @nobody  ",
		Tags: []string{"Sports", "sports", " football "},
	})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if post.Text != "match day with @bob and @nobody" {
		t.Errorf("text = %q", post.Text)
	}
	if !reflect.DeepEqual(post.Tags, []string{"sports", "football"}) {
		t.Errorf("tags = %v", post.Tags)
	}
	if len(post.Mentions) != 1 || post.Mentions[0] != bob.ID {
		t.Errorf("mentions = %v", post.Mentions)
	}
	if post.AuthorID != alice.ID || post.Timestamp.IsZero() {
		t.Errorf("unexpected post: %+v", post)
	}

	got, err := f.posts.GetPost(f.ctx, post.ID.Hex())
	if err != nil || got.LikesCount != 0 || got.CommentsCount != 0 {
		t.Fatalf("GetPost = %+v, %v", got, err)
	}
}

func TestCreatePostWithMedia(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")

	post, err := f.posts.CreatePost(f.ctx, alice.ID.Hex(), NewPost{
		Text: "photo",
		File: &Upload{Reader: strings.NewReader("jpeg"), Filename: "beach.JPG", ContentType: "image/jpeg"},
	})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if len(f.uploader.names) != 1 || !strings.HasPrefix(f.uploader.names[0], "posts/") || !strings.HasSuffix(f.uploader.names[0], ".jpg") {
		t.Fatalf("uploaded names = %v", f.uploader.names)
	}
	if post.Media != "https://cdn.test/"+f.uploader.names[0] {
		t.Fatalf("media = %q", post.Media)
	}

	f.uploader.err = errors.New("bucket unavailable")
	_, err = f.posts.CreatePost(f.ctx, alice.ID.Hex(), NewPost{
		Text: "photo",
		File: &Upload{Reader: strings.NewReader("jpeg"), Filename: "a.jpg"},
	})
	assertKind(t, err, apperrors.KindInternal)
}

func TestCreatePostValidation(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")

	_, err := f.posts.CreatePost(f.ctx, alice.ID.Hex(), NewPost{Text: "   "})
	assertKind(t, err, apperrors.KindInvalidArgument)

	tags := make([]string, MaxTags+1)
	for i := range tags {
		tags[i] = strings.Repeat("t", i+1)
	}
	_, err = f.posts.CreatePost(f.ctx, alice.ID.Hex(), NewPost{Text: "x", Tags: tags})
	assertKind(t, err, apperrors.KindInvalidArgument)

	_, err = f.posts.CreatePost(f.ctx, primitive.NewObjectID().Hex(), NewPost{Text: "x"})
	assertKind(t, err, apperrors.KindNotFound)
}

func TestToggleLikeTwiceRestoresLikes(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")
	post := f.addPost(t, alice.ID, time.Now())

	liked, err := f.posts.ToggleLike(f.ctx, bob.ID.Hex(), post.ID.Hex())
	if err != nil || !liked {
		t.Fatalf("first toggle = %v, %v", liked, err)
	}
	liked, err = f.posts.ToggleLike(f.ctx, bob.ID.Hex(), post.ID.Hex())
	if err != nil || liked {
		t.Fatalf("second toggle = %v, %v", liked, err)
	}

	got, err := f.posts.GetPost(f.ctx, post.ID.Hex())
	if err != nil {
		t.Fatalf("GetPost: %v", err)
	}
	if got.LikesCount != 0 {
		t.Fatalf("likes = %v", got.Likes)
	}

	notes := f.pending(t, alice.ID)
	if len(notes) != 1 || notes[0].Type != models.NotificationLike || notes[0].TargetID != post.ID.Hex() {
		t.Fatalf("expected one like notification, got %+v", notes)
	}
}

func TestSelfLikeDoesNotNotify(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")
	post := f.addPost(t, alice.ID, time.Now())

	if _, err := f.posts.ToggleLike(f.ctx, alice.ID.Hex(), post.ID.Hex()); err != nil {
		t.Fatalf("ToggleLike: %v", err)
	}
	if len(f.pending(t, alice.ID)) != 0 {
		t.Fatal("liking your own post must not notify")
	}
}

func TestToggleLikeMissingPost(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")

	_, err := f.posts.ToggleLike(f.ctx, alice.ID.Hex(), primitive.NewObjectID().Hex())
	assertKind(t, err, apperrors.KindNotFound)
}

func TestComment(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")
	post := f.addPost(t, alice.ID, time.Now())

	_, err := f.posts.Comment(f.ctx, bob.ID.Hex(), post.ID.Hex(), " ")
	assertKind(t, err, apperrors.KindInvalidArgument)

	for _, text := range []string{"first", "second"} {
		if _, err := f.posts.Comment(f.ctx, bob.ID.Hex(), post.ID.Hex(), text); err != nil {
			t.Fatalf("Comment: %v", err)
		}
	}
	got, err := f.posts.GetPost(f.ctx, post.ID.Hex())
	if err != nil {
		t.Fatalf("GetPost: %v", err)
	}
	if got.CommentsCount != 2 || got.Comments[0].Text != "first" || got.Comments[1].UserID != bob.ID {
		t.Fatalf("comments = %+v", got.Comments)
	}
	if n := len(f.pending(t, alice.ID)); n != 2 {
		t.Fatalf("expected 2 comment notifications, got %d", n)
	}
}

func TestShareCreatesIndependentCopy(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")
	original := f.addPost(t, alice.ID, time.Now().Add(-time.Hour), "travel")

	shared, err := f.posts.Share(f.ctx, bob.ID.Hex(), original.ID.Hex())
	if err != nil {
		t.Fatalf("Share: %v", err)
	}
	if shared.ID == original.ID || shared.AuthorID != bob.ID {
		t.Fatalf("share not owned by sharer: %+v", shared)
	}
	if shared.SharedFrom == nil || *shared.SharedFrom != original.ID {
		t.Fatalf("shared_from = %v", shared.SharedFrom)
	}
	if !reflect.DeepEqual(shared.Tags, original.Tags) || len(shared.Likes) != 0 || len(shared.Comments) != 0 {
		t.Fatalf("unexpected copy: %+v", shared)
	}
	if !shared.Timestamp.After(original.Timestamp) {
		t.Fatal("share must carry its own timestamp")
	}

	if err := f.posts.Delete(f.ctx, alice.ID.Hex(), original.ID.Hex()); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := f.posts.GetPost(f.ctx, shared.ID.Hex()); err != nil {
		t.Fatalf("shared copy must survive the original: %v", err)
	}
}

func TestDeleteRequiresAuthor(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")
	post := f.addPost(t, alice.ID, time.Now())

	assertKind(t, f.posts.Delete(f.ctx, bob.ID.Hex(), post.ID.Hex()), apperrors.KindForbidden)
	if _, err := f.posts.GetPost(f.ctx, post.ID.Hex()); err != nil {
		t.Fatalf("post must remain after a forbidden delete: %v", err)
	}

	if err := f.posts.Delete(f.ctx, alice.ID.Hex(), post.ID.Hex()); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	_, err := f.posts.GetPost(f.ctx, post.ID.Hex())
	assertKind(t, err, apperrors.KindNotFound)
	assertKind(t, f.posts.Delete(f.ctx, alice.ID.Hex(), post.ID.Hex()), apperrors.KindNotFound)
}

func TestSavedPosts(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")
	kept := f.addPost(t, alice.ID, time.Now())
	removed := f.addPost(t, alice.ID, time.Now())

	for _, id := range []primitive.ObjectID{kept.ID, removed.ID, kept.ID} {
		if err := f.posts.SavePost(f.ctx, bob.ID.Hex(), id.Hex()); err != nil {
			t.Fatalf("SavePost: %v", err)
		}
	}
	if err := f.posts.Delete(f.ctx, alice.ID.Hex(), removed.ID.Hex()); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	saved, err := f.posts.ListSaved(f.ctx, bob.ID.Hex())
	if err != nil {
		t.Fatalf("ListSaved: %v", err)
	}
	if len(saved) != 1 || saved[0].ID != kept.ID {
		t.Fatalf("saved = %+v", saved)
	}

	if err := f.posts.UnsavePost(f.ctx, bob.ID.Hex(), kept.ID.Hex()); err != nil {
		t.Fatalf("UnsavePost: %v", err)
	}
	saved, err = f.posts.ListSaved(f.ctx, bob.ID.Hex())
	if err != nil || len(saved) != 0 {
		t.Fatalf("ListSaved after unsave = %+v, %v", saved, err)
	}

	assertKind(t, f.posts.SavePost(f.ctx, bob.ID.Hex(), primitive.NewObjectID().Hex()), apperrors.KindNotFound)
}

func TestListPostsByAuthor(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")
	base := time.Now()
	var ids []primitive.ObjectID
	for i := 0; i < 3; i++ {
		ids = append(ids, f.addPost(t, alice.ID, base.Add(time.Duration(i)*time.Minute)).ID)
	}

	posts, err := f.posts.ListPostsByAuthor(f.ctx, alice.ID.Hex(), 1, 0)
	if err != nil {
		t.Fatalf("ListPostsByAuthor: %v", err)
	}
	if len(posts) != 2 || posts[0].ID != ids[1] || posts[1].ID != ids[0] {
		t.Fatalf("unexpected page: %+v", posts)
	}
}
