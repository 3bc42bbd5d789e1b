package db

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SetCompletion upserts the completion state for one (question, user)
// pair. Transitioning to completed stamps completed_at; clearing the flag
// clears the stamp.
func SetCompletion(questionID, userID uint, completed bool) error {
	var completedAt *time.Time
	if completed {
		now := time.Now().UTC()
		completedAt = &now
	}
	row := Progress{
		QuestionID:  questionID,
		UserID:      userID,
		Completed:   completed,
		CompletedAt: completedAt,
	}
	return DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "question_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"completed", "completed_at"}),
	}).Create(&row).Error
}

// SetNotes upserts only the notes column, leaving completion and bookmark
// state untouched.
func SetNotes(questionID, userID uint, notes string) error {
	row := Progress{QuestionID: questionID, UserID: userID, Notes: &notes}
	return DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "question_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"notes"}),
	}).Create(&row).Error
}

// SetSolution upserts only the solution column.
func SetSolution(questionID, userID uint, solution string) error {
	row := Progress{QuestionID: questionID, UserID: userID, Solution: &solution}
	return DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "question_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"solution"}),
	}).Create(&row).Error
}

// ToggleBookmark flips the bookmark flag and returns the new state. A
// missing row is created already bookmarked. Concurrent toggles on the
// same pair are last-write-wins.
func ToggleBookmark(questionID, userID uint) (bool, error) {
	var state bool
	err := DB.Transaction(func(tx *gorm.DB) error {
		var row Progress
		err := tx.Where("question_id = ? AND user_id = ?", questionID, userID).First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			state = true
			return tx.Create(&Progress{
				QuestionID: questionID,
				UserID:     userID,
				Bookmarked: true,
			}).Error
		}
		if err != nil {
			return err
		}
		state = !row.Bookmarked
		return tx.Model(&row).Update("bookmarked", state).Error
	})
	if err != nil {
		return false, err
	}
	return state, nil
}

// BookmarkedQuestion is a bookmarked question joined with its topic and
// the user's full progress row.
type BookmarkedQuestion struct {
	ID          uint
	Title       string
	LeetcodeURL string
	GfgURL      *string
	Difficulty  string
	Topic       string
	Completed   bool
	Notes       *string
	Solution    *string
	Bookmarked  bool
}

// ListBookmarked returns the user's bookmarks ordered by topic name, then
// difficulty (Easy before Medium before Hard, unknown values last).
func ListBookmarked(userID uint) ([]BookmarkedQuestion, error) {
	var rows []BookmarkedQuestion
	err := DB.Table("questions q").
		Select("q.id, q.title, q.leetcode_url, q.gfg_url, q.difficulty, t.name AS topic, "+
			"p.completed, p.notes, p.solution, p.bookmarked").
		Joins("JOIN topics t ON q.topic_id = t.id").
		Joins("JOIN progress p ON q.id = p.question_id").
		Where("p.user_id = ? AND p.bookmarked = ?", userID, true).
		Order("t.name ASC, CASE q.difficulty " +
			"WHEN 'Easy' THEN 1 WHEN 'Medium' THEN 2 WHEN 'Hard' THEN 3 ELSE 4 END, q.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
