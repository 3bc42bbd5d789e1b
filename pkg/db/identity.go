package db

import (
	"errors"
	"strings"
	"time"

	"dsatracker/pkg/logger"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUsernameTaken      = errors.New("username already exists")
	ErrEmailTaken         = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// RegisterUser creates a user account and fans out a zero-state progress
// row for every existing question, so the new account's dashboard counts
// the full bank as incomplete from the start.
func RegisterUser(username, password string, email *string) (uint, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return 0, errors.New("username is required")
	}
	if password == "" {
		return 0, errors.New("password is required")
	}

	hash, err := hashPassword(password)
	if err != nil {
		return 0, err
	}

	var userID uint
	err = DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&User{}).Where("username = ?", username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrUsernameTaken
		}
		if email != nil && strings.TrimSpace(*email) != "" {
			if err := tx.Model(&User{}).Where("email = ?", *email).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return ErrEmailTaken
			}
		}

		user := User{Username: username, PasswordHash: hash, Email: email}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		userID = user.ID
		return fanOutUserProgress(tx, user.ID)
	})
	if err != nil {
		return 0, err
	}
	logger.Info("registered user", "username", username, "user_id", userID)
	return userID, nil
}

// VerifyUser checks credentials and stamps last_login on success.
func VerifyUser(username, password string) (*User, error) {
	var user User
	err := DB.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !checkPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := DB.Model(&user).Update("last_login", now).Error; err != nil {
		return nil, err
	}
	user.LastLogin = &now
	user.PasswordHash = ""
	return &user, nil
}

// VerifyAdmin checks admin credentials; nil means verified.
func VerifyAdmin(username, password string) error {
	var admin Admin
	err := DB.Where("username = ?", username).First(&admin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrInvalidCredentials
	}
	if err != nil {
		return err
	}
	if !checkPassword(admin.PasswordHash, password) {
		return ErrInvalidCredentials
	}
	return nil
}

// ChangeAdminPassword re-verifies the current password before replacing it.
func ChangeAdminPassword(username, currentPassword, newPassword string) error {
	if newPassword == "" {
		return errors.New("new password is required")
	}
	if err := VerifyAdmin(username, currentPassword); err != nil {
		return err
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	return DB.Model(&Admin{}).Where("username = ?", username).
		Update("password_hash", hash).Error
}

// AddOrUpdateAdmin creates or re-credentials an admin account, guarded by
// re-verifying the acting admin first.
func AddOrUpdateAdmin(actingUsername, actingPassword, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return errors.New("username is required")
	}
	if password == "" {
		return errors.New("password is required")
	}
	if err := VerifyAdmin(actingUsername, actingPassword); err != nil {
		return err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}

	return DB.Transaction(func(tx *gorm.DB) error {
		var admin Admin
		err := tx.Where("username = ?", username).First(&admin).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(&Admin{Username: username, PasswordHash: hash}).Error
		}
		if err != nil {
			return err
		}
		return tx.Model(&admin).Update("password_hash", hash).Error
	})
}

// ListUsers returns all accounts without credential material.
func ListUsers() ([]User, error) {
	var users []User
	err := DB.Select("id", "username", "email", "created_at", "last_login").
		Order("id ASC").Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func GetUserInfo(userID uint) (*User, error) {
	var user User
	err := DB.Select("id", "username", "email", "created_at", "last_login").
		First(&user, userID).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}
