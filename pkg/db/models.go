package db

import (
	"time"

	"gorm.io/datatypes"
)

// DefaultUserID is the account progress writes fall back to when no user
// accounts exist yet. The single-user deployments that predate accounts
// stored all progress under this id.
const DefaultUserID = 1

const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

// DifficultyRank orders Easy < Medium < Hard; anything else sorts last.
func DifficultyRank(difficulty string) int {
	switch difficulty {
	case DifficultyEasy:
		return 1
	case DifficultyMedium:
		return 2
	case DifficultyHard:
		return 3
	default:
		return 4
	}
}

func ValidDifficulty(difficulty string) bool {
	return DifficultyRank(difficulty) < 4
}

type Topic struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"not null;uniqueIndex"`
}

type Question struct {
	ID          uint    `gorm:"primaryKey"`
	Title       string  `gorm:"not null"`
	LeetcodeURL string  `gorm:"not null"`
	GfgURL      *string // optional companion link
	Difficulty  string  `gorm:"not null"`
	TopicID     uint    `gorm:"not null;index"`
}

type User struct {
	ID           uint    `gorm:"primaryKey"`
	Username     string  `gorm:"not null;uniqueIndex"`
	PasswordHash string  `gorm:"not null"`
	Email        *string `gorm:"uniqueIndex"`
	CreatedAt    time.Time
	LastLogin    *time.Time
}

// Progress is the per-user, per-question state row. At most one row per
// (question_id, user_id) pair; both completion and the bookmark/notes
// features upsert against that key.
type Progress struct {
	ID          uint `gorm:"primaryKey"`
	QuestionID  uint `gorm:"not null;uniqueIndex:idx_question_user"`
	UserID      uint `gorm:"not null;uniqueIndex:idx_question_user;index"`
	Completed   bool `gorm:"not null;default:false"`
	CompletedAt *time.Time
	Notes       *string
	Solution    *string
	Bookmarked  bool `gorm:"not null;default:false"`
}

func (Progress) TableName() string {
	return "progress"
}

type Admin struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"not null;uniqueIndex"`
	PasswordHash string `gorm:"not null"`
	CreatedAt    time.Time
}

// ExportRecord is the audit row written for every export artifact, with a
// small JSON summary of what the artifact contained.
type ExportRecord struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"index"`
	Filename  string `gorm:"not null"`
	Summary   datatypes.JSON
	CreatedAt time.Time
}
