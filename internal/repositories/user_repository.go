package repositories

import (
	"context"
	"regexp"
	"time"

	"github.com/connectai/backend/internal/models"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	GetUsersByUsernames(ctx context.Context, usernames []string) ([]models.User, error)
	SearchUsers(ctx context.Context, query string, limit int64) ([]models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, update models.ProfileUpdate) error
	// AddEdges applies $addToSet for every edge in one single-document update.
	AddEdges(ctx context.Context, id primitive.ObjectID, edges ...models.Edge) error
	// RemoveEdges applies $pull for every edge in one single-document update.
	RemoveEdges(ctx context.Context, id primitive.ObjectID, edges ...models.Edge) error
}

// MongoUserRepository implements UserRepository for MongoDB
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoUserRepository
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{collection: db.Collection("users")}
}

// CreateUser inserts a user with empty relationship sets
func (r *MongoUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.CreatedAt = now
	user.UpdatedAt = now
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

	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return errors.Wrap(err, "insert user")
	}
	return nil
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := r.collection.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "find user")
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID
func (r *MongoUserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetUserByEmail retrieves a user by email
func (r *MongoUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// GetUserByUsername retrieves a user by handle
func (r *MongoUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

// GetUserByFirebaseUID retrieves a user by Firebase UID
func (r *MongoUserRepository) GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"firebase_uid": firebaseUID})
}

func (r *MongoUserRepository) findMany(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.User, error) {
	cursor, err := r.collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "find users")
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err = cursor.All(ctx, &users); err != nil {
		return nil, errors.Wrap(err, "decode users")
	}
	return users, nil
}

// GetUsersByIDs retrieves every existing user in ids. Missing ids are skipped.
func (r *MongoUserRepository) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	return r.findMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

// GetUsersByUsernames retrieves every existing user whose handle is in usernames
func (r *MongoUserRepository) GetUsersByUsernames(ctx context.Context, usernames []string) ([]models.User, error) {
	if len(usernames) == 0 {
		return []models.User{}, nil
	}
	return r.findMany(ctx, bson.M{"username": bson.M{"$in": usernames}})
}

// SearchUsers searches for users by name or username (case-insensitive)
func (r *MongoUserRepository) SearchUsers(ctx context.Context, query string, limit int64) ([]models.User, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	filter := bson.M{"$or": bson.A{
		bson.M{"name": pattern},
		bson.M{"username": pattern},
	}}
	return r.findMany(ctx, filter, options.Find().SetLimit(limit).SetSort(bson.D{{Key: "username", Value: 1}}))
}

// UpdateProfile sets the non-nil fields of update
func (r *MongoUserRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, update models.ProfileUpdate) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Bio != nil {
		set["bio"] = *update.Bio
	}
	if update.Avatar != nil {
		set["avatar"] = *update.Avatar
	}
	if update.Mood != nil {
		set["mood"] = *update.Mood
	}
	if update.Email != nil {
		set["email"] = *update.Email
	}
	if update.FirebaseUID != nil {
		set["firebase_uid"] = *update.FirebaseUID
	}
	if update.Interests != nil {
		set["interests"] = update.Interests
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return errors.Wrap(err, "update user profile")
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddEdges adds relationship entries to the user document
func (r *MongoUserRepository) AddEdges(ctx context.Context, id primitive.ObjectID, edges ...models.Edge) error {
	return r.mutateEdges(ctx, id, "$addToSet", edges)
}

// RemoveEdges removes relationship entries from the user document
func (r *MongoUserRepository) RemoveEdges(ctx context.Context, id primitive.ObjectID, edges ...models.Edge) error {
	return r.mutateEdges(ctx, id, "$pull", edges)
}

func (r *MongoUserRepository) mutateEdges(ctx context.Context, id primitive.ObjectID, op string, edges []models.Edge) error {
	if len(edges) == 0 {
		return nil
	}
	fields := bson.M{}
	for _, e := range edges {
		// one operator may not name the same field twice
		if existing, ok := fields[e.Field]; ok {
			fields[e.Field] = mergeEdgeValue(op, existing, e.Target)
			continue
		}
		fields[e.Field] = e.Target
	}

	update := bson.M{
		op:     fields,
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return errors.Wrapf(err, "%s user edges", op)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func mergeEdgeValue(op string, existing interface{}, target primitive.ObjectID) interface{} {
	var ids bson.A
	switch v := existing.(type) {
	case primitive.ObjectID:
		ids = bson.A{v}
	case bson.M:
		if op == "$addToSet" {
			ids = v["$each"].(bson.A)
		} else {
			ids = v["$in"].(bson.A)
		}
	}
	ids = append(ids, target)
	if op == "$addToSet" {
		return bson.M{"$each": ids}
	}
	return bson.M{"$in": ids}
}
