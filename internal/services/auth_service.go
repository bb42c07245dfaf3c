package services

import (
	"context"
	"regexp"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/connectai/backend/internal/apperrors"
	"github.com/connectai/backend/internal/models"
	"github.com/connectai/backend/internal/repositories"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// IDTokenVerifier verifies Firebase ID tokens. *auth.Client implements it.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// AuthService issues and revokes the local JWTs
type AuthService struct {
	users    repositories.UserRepository
	denylist repositories.TokenDenylist
	firebase IDTokenVerifier
	secret   []byte
	ttl      time.Duration
	log      *zap.Logger
}

// NewAuthService builds the service. firebase may be nil, in which case
// Firebase login is rejected.
func NewAuthService(users repositories.UserRepository, denylist repositories.TokenDenylist, firebase IDTokenVerifier, secret string, ttl time.Duration, log *zap.Logger) *AuthService {
	return &AuthService{
		users:    users,
		denylist: denylist,
		firebase: firebase,
		secret:   []byte(secret),
		ttl:      ttl,
		log:      log,
	}
}

func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (string, *models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Username == "" || len(req.Password) < 8 {
		return "", nil, apperrors.InvalidArgument("email, username and a password of at least 8 characters are required")
	}

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return "", nil, apperrors.Conflict("user already exists")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return "", nil, apperrors.Internal(err, "failed to check email")
	}
	if _, err := s.users.GetUserByUsername(ctx, req.Username); err == nil {
		return "", nil, apperrors.Conflict("username already taken")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return "", nil, apperrors.Internal(err, "failed to check username")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, apperrors.Internal(err, "failed to hash password")
	}

	user := &models.User{
		Name:     strings.TrimSpace(req.Name),
		Username: req.Username,
		Email:    email,
		Password: string(hashed),
		Gender:   req.Gender,
	}
	if req.DOB != "" {
		dob, err := time.Parse("2006-01-02", req.DOB)
		if err != nil {
			return "", nil, apperrors.InvalidArgument("dob must be formatted as YYYY-MM-DD")
		}
		user.DOB = &dob
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		return "", nil, storeError(err, "user", "create user")
	}
	token, err := s.IssueToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", nil, storeError(err, "user", "load user")
	}
	if user.Password == "" || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return "", nil, apperrors.Unauthorized("invalid password")
	}
	token, err := s.IssueToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// FirebaseLogin verifies a Firebase ID token and returns a local token for
// the matching user. Users are matched by Firebase UID and then by email;
// unknown users are created.
func (s *AuthService) FirebaseLogin(ctx context.Context, idToken string) (string, *models.User, error) {
	if s.firebase == nil {
		return "", nil, apperrors.Unauthorized("firebase login is not configured")
	}
	token, err := s.firebase.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", nil, apperrors.Unauthorized("invalid Firebase ID token")
	}
	return s.FirebaseSignIn(ctx, token)
}

// FirebaseSignIn returns a local token for an already verified Firebase token.
func (s *AuthService) FirebaseSignIn(ctx context.Context, token *auth.Token) (string, *models.User, error) {
	email, _ := token.Claims["email"].(string)
	email = strings.ToLower(email)
	name, _ := token.Claims["name"].(string)

	user, err := s.users.GetUserByFirebaseUID(ctx, token.UID)
	if errors.Is(err, repositories.ErrNotFound) && email != "" {
		user, err = s.users.GetUserByEmail(ctx, email)
		if err == nil {
			uid := token.UID
			if err := s.users.UpdateProfile(ctx, user.ID, models.ProfileUpdate{FirebaseUID: &uid}); err != nil {
				return "", nil, storeError(err, "user", "link Firebase account")
			}
			user.FirebaseUID = uid
		}
	}
	if errors.Is(err, repositories.ErrNotFound) {
		if email == "" {
			return "", nil, apperrors.InvalidArgument("Firebase account has no email")
		}
		user = &models.User{
			Name:        name,
			Username:    usernameFromEmail(email),
			Email:       email,
			FirebaseUID: token.UID,
		}
		err = s.users.CreateUser(ctx, user)
	}
	if err != nil {
		return "", nil, storeError(err, "user", "sign in with Firebase")
	}

	localToken, err := s.IssueToken(user)
	if err != nil {
		return "", nil, err
	}
	return localToken, user, nil
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]`)

func usernameFromEmail(email string) string {
	local := nonAlnum.ReplaceAllString(strings.SplitN(email, "@", 2)[0], "")
	if len(local) > 20 {
		local = local[:20]
	}
	return local + strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}

// IssueToken signs a token for user. Every token carries a unique id so
// that it can be revoked on its own.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &models.JwtCustomClaims{
		UserID: user.ID.Hex(),
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", apperrors.Internal(err, "failed to generate token")
	}
	return signed, nil
}

// ParseToken validates the signature, expiry and revocation state of a token.
func (s *AuthService) ParseToken(ctx context.Context, tokenString string) (*models.JwtCustomClaims, error) {
	claims := &models.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, apperrors.Unauthorized("invalid or expired token")
	}
	if claims.UserID == "" {
		return nil, apperrors.Unauthorized("token has no subject")
	}

	if claims.ID != "" {
		revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, apperrors.Internal(err, "failed to check token")
		}
		if revoked {
			return nil, apperrors.Unauthorized("token has been revoked")
		}
	}
	return claims, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, claims *models.JwtCustomClaims) error {
	if claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.denylist.Revoke(ctx, claims.ID, ttl); err != nil {
		return apperrors.Internal(err, "failed to revoke token")
	}
	s.log.Debug("token revoked", zap.String("user", claims.UserID))
	return nil
}
