package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gratitree/core/internal/database"
	"github.com/gratitree/core/internal/models"
	jwtpkg "github.com/gratitree/core/internal/pkg/jwt"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// TokenTTL is the session token lifetime.
const TokenTTL = 7 * 24 * time.Hour

type Service struct {
	db *mongo.Database
}

func NewService(db *mongo.Database) *Service {
	return &Service{db: db}
}

func (s *Service) users() *mongo.Collection {
	return s.db.Collection(database.CollUsers)
}

// Register creates an account. The very first account on the instance gets
// the admin flag.
func (s *Service) Register(ctx context.Context, dto *RegisterDTO) (string, *models.User, error) {
	username := strings.ToLower(strings.TrimSpace(dto.Username))

	count, err := s.users().CountDocuments(ctx, bson.D{})
	if err != nil {
		return "", nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, err
	}

	name := strings.TrimSpace(dto.DisplayName)
	if name == "" {
		name = username
	}

	u := &models.User{
		ID:          uuid.New().String(),
		Username:    username,
		DisplayName: name,
		Password:    string(hash),
		Admin:       count == 0,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := s.users().InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", nil, ErrUsernameTaken
		}
		return "", nil, err
	}

	token, err := jwtpkg.Sign(u.ID, u.Admin, TokenTTL)
	return token, u, err
}

// Login checks the credentials and issues a session token carrying the
// user's current admin flag.
func (s *Service) Login(ctx context.Context, dto *LoginDTO) (string, *models.User, error) {
	u, err := s.byUsername(ctx, dto.Username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(dto.Password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := jwtpkg.Sign(u.ID, u.Admin, TokenTTL)
	return token, u, err
}

// GetByID loads a user by id.
func (s *Service) GetByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := s.users().FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Refresh re-issues a token from the user's current database record, so an
// admin flag granted after sign-in takes effect without re-login.
func (s *Service) Refresh(ctx context.Context, userID string) (string, *models.User, error) {
	u, err := s.GetByID(ctx, userID)
	if err != nil {
		return "", nil, err
	}
	token, err := jwtpkg.Sign(u.ID, u.Admin, TokenTTL)
	return token, u, err
}

func (s *Service) byUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := s.users().FindOne(ctx, bson.D{
		{Key: "username", Value: strings.ToLower(strings.TrimSpace(username))},
	}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
