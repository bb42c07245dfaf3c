package repositories

import (
	"context"
	"testing"

	"github.com/connectai/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("create duplicate email", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		err := repo.CreateUser(ctx, &models.User{Email: "a@example.com", Username: "alice"})
		if err != ErrDuplicate {
			t.Fatalf("expected ErrDuplicate, got %v", err)
		}
	})

	mt.Run("create initialises sets", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		user := &models.User{Email: "a@example.com", Username: "alice"}
		if err := repo.CreateUser(ctx, user); err != nil {
			t.Fatalf("CreateUser: %v", err)
		}
		if user.ID.IsZero() {
			t.Fatal("expected an id to be assigned")
		}
		if user.Following == nil || user.Followers == nil || user.Friends == nil {
			t.Fatal("relationship sets must be empty, not nil")
		}
	})

	mt.Run("get by id", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		id := primitive.NewObjectID()
		friend := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(1, "test.users", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "username", Value: "alice"},
			{Key: "friends", Value: bson.A{friend}},
		}))

		user, err := repo.GetUserByID(ctx, id)
		if err != nil {
			t.Fatalf("GetUserByID: %v", err)
		}
		if user.Username != "alice" || !user.IsFriend(friend) {
			t.Fatalf("unexpected user %+v", user)
		}
	})

	mt.Run("get missing", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch))

		if _, err := repo.GetUserByEmail(ctx, "nobody@example.com"); err != ErrNotFound {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	mt.Run("add edges", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		err := repo.AddEdges(ctx, primitive.NewObjectID(),
			models.Edge{Field: models.FieldFriends, Target: primitive.NewObjectID()},
			models.Edge{Field: models.FieldFollowing, Target: primitive.NewObjectID()},
		)
		if err != nil {
			t.Fatalf("AddEdges: %v", err)
		}
	})

	mt.Run("remove edges on missing user", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		err := repo.RemoveEdges(ctx, primitive.NewObjectID(),
			models.Edge{Field: models.FieldFollowers, Target: primitive.NewObjectID()})
		if err != ErrNotFound {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	mt.Run("search", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "username", Value: "alice"}},
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "username", Value: "alicia"}},
		))

		users, err := repo.SearchUsers(ctx, "ali", 10)
		if err != nil {
			t.Fatalf("SearchUsers: %v", err)
		}
		if len(users) != 2 {
			t.Fatalf("expected 2 users, got %d", len(users))
		}
	})
}

func TestGetUsersByIDsEmptySkipsQuery(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	mt.Run("empty", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		users, err := repo.GetUsersByIDs(context.Background(), nil)
		if err != nil || len(users) != 0 {
			t.Fatalf("expected empty result, got %v %v", users, err)
		}
	})
}

func TestMergeEdgeValue(t *testing.T) {
	a, b, c := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()

	got := mergeEdgeValue("$addToSet", a, b)
	m, ok := got.(bson.M)
	if !ok {
		t.Fatalf("expected bson.M, got %T", got)
	}
	if ids := m["$each"].(bson.A); len(ids) != 2 || ids[0] != a || ids[1] != b {
		t.Fatalf("unexpected $each %v", ids)
	}

	got = mergeEdgeValue("$addToSet", m, c)
	if ids := got.(bson.M)["$each"].(bson.A); len(ids) != 3 || ids[2] != c {
		t.Fatalf("unexpected $each after second merge %v", ids)
	}

	got = mergeEdgeValue("$pull", a, b)
	if ids := got.(bson.M)["$in"].(bson.A); len(ids) != 2 {
		t.Fatalf("unexpected $in %v", ids)
	}
}
