package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Relationship fields held inside a user document
const (
	FieldFollowing = "following"
	FieldFollowers = "followers"
	FieldFriends   = "friends"
)

// User is a user document in MongoDB. The follow/friend adjacency lives in the document itself.
type User struct {
	ID          primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Name        string               `json:"name" bson:"name"`
	Username    string               `json:"username" bson:"username"`
	Email       string               `json:"email" bson:"email"`
	Password    string               `json:"-" bson:"password,omitempty"`
	FirebaseUID string               `json:"firebase_uid,omitempty" bson:"firebase_uid,omitempty"`
	DOB         *time.Time           `json:"dob,omitempty" bson:"dob,omitempty"`
	Gender      string               `json:"gender,omitempty" bson:"gender,omitempty"`
	Bio         string               `json:"bio,omitempty" bson:"bio,omitempty"`
	Avatar      string               `json:"avatar,omitempty" bson:"avatar,omitempty"`
	Mood        string               `json:"mood,omitempty" bson:"mood,omitempty"`
	Interests   []string             `json:"interests" bson:"interests"`
	Following   []primitive.ObjectID `json:"following" bson:"following"`
	Followers   []primitive.ObjectID `json:"followers" bson:"followers"`
	Friends     []primitive.ObjectID `json:"friends" bson:"friends"`
	CreatedAt   time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at" bson:"updated_at"`
}

// UserCompact is the public projection of a user
type UserCompact struct {
	ID       primitive.ObjectID `json:"id" bson:"_id"`
	Name     string             `json:"name" bson:"name"`
	Username string             `json:"username" bson:"username"`
	Email    string             `json:"email" bson:"email"`
	Avatar   string             `json:"avatar,omitempty" bson:"avatar,omitempty"`
}

func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:       u.ID,
		Name:     u.Name,
		Username: u.Username,
		Email:    u.Email,
		Avatar:   u.Avatar,
	}
}

// IsFriend reports whether id is in the user's friends set.
func (u *User) IsFriend(id primitive.ObjectID) bool {
	return containsID(u.Friends, id)
}

// IsFollowing reports whether the user follows id.
func (u *User) IsFollowing(id primitive.ObjectID) bool {
	return containsID(u.Following, id)
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// Edge is a single set-valued relationship entry on a user document
type Edge struct {
	Field  string
	Target primitive.ObjectID
}

// ProfileUpdate carries the optional profile fields to $set. Nil fields are left untouched.
type ProfileUpdate struct {
	Name        *string
	Bio         *string
	Avatar      *string
	Mood        *string
	Email       *string
	FirebaseUID *string
	Interests   []string
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Username string `json:"username" validate:"required,min=3,max=30,alphanum"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	DOB      string `json:"dob" validate:"omitempty,datetime=2006-01-02"`
	Gender   string `json:"gender" validate:"omitempty,max=20"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	Name      string   `json:"name,omitempty" form:"name" validate:"omitempty,min=2,max=50"`
	Bio       string   `json:"bio,omitempty" form:"bio" validate:"omitempty,max=300"`
	Interests []string `json:"interests,omitempty" form:"interests" validate:"omitempty,max=50,dive,min=1,max=40"`
}

type SetMoodRequest struct {
	Mood string `json:"mood" validate:"required,max=40"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
