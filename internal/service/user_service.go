package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wheelhub/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrUserExists          = errors.New("username already exists")
	ErrUserInvalid         = errors.New("username and password are required")
	ErrUserRoleInvalid     = errors.New("invalid user role")
	ErrUserLastAdmin       = errors.New("cannot remove the last admin")
	ErrUserInvalidPassword = errors.New("invalid username or password")
)

// UserService 管理后台账号。
type UserService struct {
	db *gorm.DB
}

// UserInput 为创建或更新账号的参数，更新时 Password 为空表示保持不变。
type UserInput struct {
	Username string
	FullName string
	Email    string
	Role     string
	Password string
}

// NewUserService creates a UserService instance.
func NewUserService(gdb *gorm.DB) *UserService {
	return &UserService{db: gdb}
}

// List returns all accounts ordered by username.
func (s *UserService) List() ([]db.User, error) {
	var users []db.User
	if err := s.db.Order("username asc").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Get fetches an account by id.
func (s *UserService) Get(id uint) (*db.User, error) {
	var user db.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Create stores a new account with a bcrypt password hash.
func (s *UserService) Create(input UserInput) (*db.User, error) {
	username := strings.TrimSpace(input.Username)
	password := strings.TrimSpace(input.Password)
	if username == "" || password == "" {
		return nil, ErrUserInvalid
	}

	role, err := normalizeRole(input.Role)
	if err != nil {
		return nil, err
	}

	if err := s.ensureUsernameFree(username, 0); err != nil {
		return nil, err
	}

	hashed, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	user := db.User{
		Username: username,
		FullName: strings.TrimSpace(input.FullName),
		Email:    strings.TrimSpace(input.Email),
		Role:     role,
		Password: hashed,
	}
	if err := s.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

// Update modifies profile fields and, when provided, the password.
func (s *UserService) Update(id uint, input UserInput) (*db.User, error) {
	user, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, ErrUserInvalid
	}
	role, err := normalizeRole(input.Role)
	if err != nil {
		return nil, err
	}

	if username != user.Username {
		if err := s.ensureUsernameFree(username, user.ID); err != nil {
			return nil, err
		}
	}

	if user.Role == db.RoleAdmin && role != db.RoleAdmin {
		if err := s.ensureAnotherAdmin(user.ID); err != nil {
			return nil, err
		}
	}

	user.Username = username
	user.FullName = strings.TrimSpace(input.FullName)
	user.Email = strings.TrimSpace(input.Email)
	user.Role = role

	if password := strings.TrimSpace(input.Password); password != "" {
		hashed, err := hashPassword(password)
		if err != nil {
			return nil, err
		}
		user.Password = hashed
	}

	if err := s.db.Save(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// Delete removes an account, keeping at least one admin.
func (s *UserService) Delete(id uint) error {
	user, err := s.Get(id)
	if err != nil {
		return err
	}

	if user.Role == db.RoleAdmin {
		if err := s.ensureAnotherAdmin(user.ID); err != nil {
			return err
		}
	}

	// 硬删除以便释放用户名唯一约束
	return s.db.Unscoped().Delete(user).Error
}

// Authenticate checks a username and password pair.
func (s *UserService) Authenticate(username, password string) (*db.User, error) {
	var user db.User
	if err := s.db.Where("username = ?", strings.TrimSpace(username)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserInvalidPassword
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrUserInvalidPassword
	}
	return &user, nil
}

func (s *UserService) ensureUsernameFree(username string, excludeID uint) error {
	query := s.db.Unscoped().Model(&db.User{}).Where("username = ?", username)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return fmt.Errorf("check username: %w", err)
	}
	if count > 0 {
		return ErrUserExists
	}
	return nil
}

func (s *UserService) ensureAnotherAdmin(excludeID uint) error {
	var count int64
	if err := s.db.Model(&db.User{}).
		Where("role = ? AND id <> ?", db.RoleAdmin, excludeID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if count == 0 {
		return ErrUserLastAdmin
	}
	return nil
}

func normalizeRole(role string) (string, error) {
	switch r := strings.ToLower(strings.TrimSpace(role)); r {
	case "":
		return db.RoleStaff, nil
	case db.RoleAdmin, db.RoleStaff:
		return r, nil
	default:
		return "", ErrUserRoleInvalid
	}
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}
