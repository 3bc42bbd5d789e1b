package db

import (
	"errors"
	"fmt"
	"strings"

	"dsatracker/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrTopicExists = errors.New("topic already exists")
	ErrEmptyBatch  = errors.New("question batch is empty")
)

// BatchItemError rejects a whole batch, naming the first invalid item.
type BatchItemError struct {
	Index  int
	Reason string
}

func (e *BatchItemError) Error() string {
	return fmt.Sprintf("question %d: %s", e.Index+1, e.Reason)
}

type QuestionInput struct {
	Title       string
	LeetcodeURL string
	GfgURL      *string
	Difficulty  string
	TopicID     uint
}

type QuestionFilter struct {
	Search     string
	Difficulty string // exact match; "" or "All" disables the filter
}

// QuestionWithProgress is a question joined with one user's progress row.
// Progress fields default to the zero state when no row exists yet.
type QuestionWithProgress struct {
	ID          uint
	Title       string
	LeetcodeURL string
	GfgURL      *string
	Difficulty  string
	Completed   bool
	Notes       *string
	Solution    *string
	Bookmarked  bool
}

func ListTopics() ([]Topic, error) {
	var topics []Topic
	if err := DB.Order("name ASC").Find(&topics).Error; err != nil {
		return nil, err
	}
	return topics, nil
}

func GetTopicByName(name string) (*Topic, error) {
	var topic Topic
	err := DB.Where("name = ?", name).First(&topic).Error
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

func AddTopic(name string) (uint, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, errors.New("topic name is required")
	}
	var count int64
	if err := DB.Model(&Topic{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, ErrTopicExists
	}
	topic := Topic{Name: name}
	if err := DB.Create(&topic).Error; err != nil {
		return 0, err
	}
	return topic.ID, nil
}

// ListQuestions returns a topic's questions joined with the given user's
// progress. Search matches the title case-insensitively as a substring.
func ListQuestions(topicID uint, filter QuestionFilter, userID uint) ([]QuestionWithProgress, error) {
	query := DB.Table("questions q").
		Select("q.id, q.title, q.leetcode_url, q.gfg_url, q.difficulty, "+
			"COALESCE(p.completed, ?) AS completed, p.notes, p.solution, "+
			"COALESCE(p.bookmarked, ?) AS bookmarked", false, false).
		Joins("LEFT JOIN progress p ON q.id = p.question_id AND p.user_id = ?", userID).
		Where("q.topic_id = ?", topicID)

	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("LOWER(q.title) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	if filter.Difficulty != "" && filter.Difficulty != "All" {
		query = query.Where("q.difficulty = ?", filter.Difficulty)
	}

	var questions []QuestionWithProgress
	if err := query.Order("q.id ASC").Scan(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func validateQuestionInput(input QuestionInput) string {
	if strings.TrimSpace(input.Title) == "" {
		return "title is required"
	}
	if !ValidDifficulty(input.Difficulty) {
		return fmt.Sprintf("invalid difficulty %q", input.Difficulty)
	}
	return ""
}

// AddQuestion inserts one question and fans out a zero-state progress row
// for every existing user, so dashboards immediately count the new
// question as incomplete. With no users yet, the row goes to the default
// user id.
func AddQuestion(input QuestionInput) (uint, error) {
	if reason := validateQuestionInput(input); reason != "" {
		return 0, errors.New(reason)
	}

	var questionID uint
	err := DB.Transaction(func(tx *gorm.DB) error {
		question := Question{
			Title:       strings.TrimSpace(input.Title),
			LeetcodeURL: input.LeetcodeURL,
			GfgURL:      input.GfgURL,
			Difficulty:  input.Difficulty,
			TopicID:     input.TopicID,
		}
		if err := tx.Create(&question).Error; err != nil {
			return err
		}
		questionID = question.ID
		return fanOutQuestionProgress(tx, question.ID)
	})
	if err != nil {
		return 0, err
	}
	return questionID, nil
}

// AddQuestionsBatch validates every item before any write; one bad item
// rejects the whole batch. Returns the number of questions inserted.
func AddQuestionsBatch(inputs []QuestionInput, topicID uint) (int, error) {
	if len(inputs) == 0 {
		return 0, ErrEmptyBatch
	}
	for i, input := range inputs {
		if reason := validateQuestionInput(input); reason != "" {
			return 0, &BatchItemError{Index: i, Reason: reason}
		}
	}

	inserted := 0
	err := DB.Transaction(func(tx *gorm.DB) error {
		for _, input := range inputs {
			question := Question{
				Title:       strings.TrimSpace(input.Title),
				LeetcodeURL: input.LeetcodeURL,
				GfgURL:      input.GfgURL,
				Difficulty:  input.Difficulty,
				TopicID:     topicID,
			}
			if err := tx.Create(&question).Error; err != nil {
				return err
			}
			if err := fanOutQuestionProgress(tx, question.ID); err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	logger.Info("batch added questions", "count", inserted, "topic_id", topicID)
	return inserted, nil
}

// DeleteQuestion removes the question and all progress rows referencing
// it as one unit. Returns false when the question did not exist.
func DeleteQuestion(questionID uint) (bool, error) {
	found := false
	err := DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", questionID).Delete(&Progress{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&Question{}, questionID)
		if res.Error != nil {
			return res.Error
		}
		found = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

// fanOutQuestionProgress creates the zero-state progress rows for a newly
// inserted question. Pairs that already have a row keep it.
func fanOutQuestionProgress(tx *gorm.DB, questionID uint) error {
	var userIDs []uint
	if err := tx.Model(&User{}).Pluck("id", &userIDs).Error; err != nil {
		return err
	}
	if len(userIDs) == 0 {
		userIDs = []uint{DefaultUserID}
	}
	rows := make([]Progress, 0, len(userIDs))
	for _, userID := range userIDs {
		rows = append(rows, Progress{QuestionID: questionID, UserID: userID})
	}
	return createProgressRows(tx, rows)
}

// fanOutUserProgress creates the zero-state progress rows for a newly
// created account. On a bank that predates any account, the first
// account's id matches the default-user fallback rows already written by
// fanOutQuestionProgress; those rows are kept, so the account inherits
// the pre-account progress instead of failing the unique key.
func fanOutUserProgress(tx *gorm.DB, userID uint) error {
	var questionIDs []uint
	if err := tx.Model(&Question{}).Pluck("id", &questionIDs).Error; err != nil {
		return err
	}
	rows := make([]Progress, 0, len(questionIDs))
	for _, questionID := range questionIDs {
		rows = append(rows, Progress{QuestionID: questionID, UserID: userID})
	}
	return createProgressRows(tx, rows)
}

func createProgressRows(tx *gorm.DB, rows []Progress) error {
	if len(rows) == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "question_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).CreateInBatches(rows, 500).Error
}

// TopicBatch groups one topic's questions for ImportQuestionBank; the
// topic is created when it does not exist yet.
type TopicBatch struct {
	Topic     string
	Questions []QuestionInput
}

// ImportQuestionBank inserts every batch's questions, with progress
// fan-out, in a single transaction: one invalid item anywhere rejects the
// whole import and nothing is committed. Returns the number of questions
// inserted.
func ImportQuestionBank(batches []TopicBatch) (int, error) {
	for _, batch := range batches {
		if strings.TrimSpace(batch.Topic) == "" {
			return 0, errors.New("topic name is required")
		}
		for i, input := range batch.Questions {
			if reason := validateQuestionInput(input); reason != "" {
				return 0, fmt.Errorf("topic %q: %w", batch.Topic, &BatchItemError{Index: i, Reason: reason})
			}
		}
	}

	inserted := 0
	err := DB.Transaction(func(tx *gorm.DB) error {
		for _, batch := range batches {
			topicID, err := ensureTopicTx(tx, batch.Topic)
			if err != nil {
				return err
			}
			for _, input := range batch.Questions {
				question := Question{
					Title:       strings.TrimSpace(input.Title),
					LeetcodeURL: input.LeetcodeURL,
					GfgURL:      input.GfgURL,
					Difficulty:  input.Difficulty,
					TopicID:     topicID,
				}
				if err := tx.Create(&question).Error; err != nil {
					return err
				}
				if err := fanOutQuestionProgress(tx, question.ID); err != nil {
					return err
				}
				inserted++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	logger.Info("imported question bank", "topics", len(batches), "questions", inserted)
	return inserted, nil
}

func ensureTopicTx(tx *gorm.DB, name string) (uint, error) {
	var topic Topic
	err := tx.Where("name = ?", name).First(&topic).Error
	if err == nil {
		return topic.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}
	topic = Topic{Name: strings.TrimSpace(name)}
	if err := tx.Create(&topic).Error; err != nil {
		return 0, err
	}
	return topic.ID, nil
}
