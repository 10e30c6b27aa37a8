package services

import (
	"errors"
	"net/mail"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	"github.com/casapps/casrecipes/src/internal/auth"
	"github.com/casapps/casrecipes/src/internal/database/models"
	"github.com/casapps/casrecipes/src/internal/email"
	apperrors "github.com/casapps/casrecipes/src/internal/errors"
	"github.com/casapps/casrecipes/src/internal/validation"
)

// UserService handles user accounts and the follow edges between them
type UserService struct {
	db       *gorm.DB
	cfg      *viper.Viper
	notifier *email.Notifier
}

// NewUserService creates a new user service
func NewUserService(db *gorm.DB, cfg *viper.Viper, notifier *email.Notifier) *UserService {
	return &UserService{
		db:       db,
		cfg:      cfg,
		notifier: notifier,
	}
}

// CreateUserInput represents a registration payload
type CreateUserInput struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Password  string
}

// CreateUser registers a new user with a hashed password
func (s *UserService) CreateUser(input CreateUserInput) (*models.User, error) {
	if err := validation.ValidateUsername(input.Username); err != nil {
		return nil, err
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return nil, apperrors.NewValidationError("email", "invalid email address")
	}
	if input.FirstName != "" {
		if err := validation.ValidatePersonName("first_name", input.FirstName); err != nil {
			return nil, err
		}
	}
	if input.LastName != "" {
		if err := validation.ValidatePersonName("last_name", input.LastName); err != nil {
			return nil, err
		}
	}
	if len(input.Password) < 8 {
		return nil, apperrors.NewValidationError("password", "must be at least 8 characters")
	}

	var count int64
	s.db.Model(&models.User{}).Where("username = ?", input.Username).Count(&count)
	if count > 0 {
		return nil, apperrors.NewConflictError("username already exists")
	}
	s.db.Model(&models.User{}).Where("email = ?", input.Email).Count(&count)
	if count > 0 {
		return nil, apperrors.NewConflictError("email already exists")
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, apperrors.NewDatabaseError("failed to hash password", err)
	}

	user := &models.User{
		Username:     input.Username,
		Email:        input.Email,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, apperrors.TranslateDBError(err, "user already exists")
	}
	return user, nil
}

// GetUserByID retrieves a user by id
func (s *UserService) GetUserByID(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("user")
		}
		return nil, apperrors.NewDatabaseError("failed to load user", err)
	}
	return &user, nil
}

// GetUserByLogin retrieves a user by username or email
func (s *UserService) GetUserByLogin(login string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ? OR email = ?", login, login).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("user")
		}
		return nil, apperrors.NewDatabaseError("failed to load user", err)
	}
	return &user, nil
}

// ListUsers returns a paginated list of users ordered by username
func (s *UserService) ListUsers(page, limit int) ([]models.User, int64, error) {
	var total int64
	if err := s.db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, apperrors.NewDatabaseError("failed to count users", err)
	}

	if limit <= 0 {
		limit = s.cfg.GetInt("pagination.default_limit")
		if limit <= 0 {
			limit = 10
		}
	}
	if page <= 0 {
		page = 1
	}

	var users []models.User
	err := s.db.Order("username ASC").Limit(limit).Offset((page - 1) * limit).Find(&users).Error
	if err != nil {
		return nil, 0, apperrors.NewDatabaseError("failed to list users", err)
	}
	return users, total, nil
}

// Follow subscribes a user to an author's recipes. Self-follow and
// duplicate edges are rejected; a racing duplicate insert fails the same
// way.
func (s *UserService) Follow(userID, authorID uuid.UUID) error {
	if userID == authorID {
		return apperrors.NewConflictError("cannot follow yourself")
	}

	author, err := s.GetUserByID(authorID)
	if err != nil {
		return err
	}

	if s.IsSubscribed(userID, authorID) {
		return apperrors.NewConflictError("already subscribed to this user")
	}

	follow := &models.Follow{UserID: userID, AuthorID: authorID}
	if err := s.db.Create(follow).Error; err != nil {
		return apperrors.TranslateDBError(err, "already subscribed to this user")
	}

	if s.notifier != nil && s.notifier.Enabled() {
		if follower, err := s.GetUserByID(userID); err == nil {
			go s.notifier.SendFollowNotification(author.Email, author.FullName(), follower.FullName())
		}
	}
	return nil
}

// Unfollow removes a follow edge
func (s *UserService) Unfollow(userID, authorID uuid.UUID) error {
	result := s.db.Where("user_id = ? AND author_id = ?", userID, authorID).Delete(&models.Follow{})
	if result.Error != nil {
		return apperrors.NewDatabaseError("failed to unfollow", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("subscription")
	}
	return nil
}

// IsSubscribed reports whether user follows author
func (s *UserService) IsSubscribed(userID, authorID uuid.UUID) bool {
	var count int64
	s.db.Model(&models.Follow{}).Where("user_id = ? AND author_id = ?", userID, authorID).Count(&count)
	return count > 0
}

// Subscriptions returns the authors the user follows, ordered by username
func (s *UserService) Subscriptions(userID uuid.UUID, page, limit int) ([]models.User, int64, error) {
	base := s.db.Model(&models.User{}).
		Joins("JOIN follows ON follows.author_id = users.id").
		Where("follows.user_id = ?", userID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, apperrors.NewDatabaseError("failed to count subscriptions", err)
	}

	if limit <= 0 {
		limit = s.cfg.GetInt("pagination.default_limit")
		if limit <= 0 {
			limit = 10
		}
	}
	if page <= 0 {
		page = 1
	}

	var authors []models.User
	err := base.Order("users.username ASC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&authors).Error
	if err != nil {
		return nil, 0, apperrors.NewDatabaseError("failed to list subscriptions", err)
	}
	return authors, total, nil
}

// RecipesCount returns the number of recipes published by a user
func (s *UserService) RecipesCount(userID uuid.UUID) int64 {
	var count int64
	s.db.Model(&models.Recipe{}).Where("author_id = ?", userID).Count(&count)
	return count
}

// RecentRecipes returns up to limit recipe previews for an author, newest
// first. A non-positive limit returns all of them.
func (s *UserService) RecentRecipes(authorID uuid.UUID, limit int) ([]models.Recipe, error) {
	query := s.db.Where("author_id = ?", authorID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, apperrors.NewDatabaseError("failed to list author recipes", err)
	}
	return recipes, nil
}
