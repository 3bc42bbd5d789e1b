package db

import (
	"sort"
	"time"
)

type TopicStats struct {
	Total     int64
	Completed int64
}

// GetTopicStats counts a topic's questions and how many of them the user
// has completed, in a single grouped query.
func GetTopicStats(topicID, userID uint) (TopicStats, error) {
	var stats TopicStats
	err := DB.Table("questions q").
		Select("COUNT(*) AS total, "+
			"COALESCE(SUM(CASE WHEN p.completed THEN 1 ELSE 0 END), 0) AS completed").
		Joins("LEFT JOIN progress p ON q.id = p.question_id AND p.user_id = ?", userID).
		Where("q.topic_id = ?", topicID).
		Scan(&stats).Error
	if err != nil {
		return TopicStats{}, err
	}
	return stats, nil
}

type OverallProgress struct {
	TotalQuestions       int64
	CompletedQuestions   int64
	CompletionPercentage float64
}

// GetOverallProgress summarizes the user's completion across the whole
// question bank. Percentage is 0 for an empty bank.
func GetOverallProgress(userID uint) (OverallProgress, error) {
	var progress OverallProgress
	err := DB.Table("questions q").
		Select("COUNT(*) AS total_questions, "+
			"COALESCE(SUM(CASE WHEN p.completed THEN 1 ELSE 0 END), 0) AS completed_questions").
		Joins("LEFT JOIN progress p ON q.id = p.question_id AND p.user_id = ?", userID).
		Scan(&progress).Error
	if err != nil {
		return OverallProgress{}, err
	}
	if progress.TotalQuestions > 0 {
		progress.CompletionPercentage = float64(progress.CompletedQuestions) / float64(progress.TotalQuestions) * 100
	}
	return progress, nil
}

type DifficultyProgress struct {
	Difficulty string
	Total      int64
	Completed  int64
}

// GetProgressByDifficulty breaks completion down per difficulty, ordered
// Easy, Medium, Hard, then anything else.
func GetProgressByDifficulty(userID uint) ([]DifficultyProgress, error) {
	var rows []DifficultyProgress
	err := DB.Table("questions q").
		Select("q.difficulty, COUNT(*) AS total, "+
			"COALESCE(SUM(CASE WHEN p.completed THEN 1 ELSE 0 END), 0) AS completed").
		Joins("LEFT JOIN progress p ON q.id = p.question_id AND p.user_id = ?", userID).
		Group("q.difficulty").
		Order("CASE q.difficulty " +
			"WHEN 'Easy' THEN 1 WHEN 'Medium' THEN 2 WHEN 'Hard' THEN 3 ELSE 4 END").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

type TopicProgress struct {
	Topic     string
	Total     int64
	Completed int64
}

// GetProgressByTopic groups completion per topic for chart rendering.
func GetProgressByTopic(userID uint) ([]TopicProgress, error) {
	var rows []TopicProgress
	err := DB.Table("questions q").
		Select("t.name AS topic, COUNT(*) AS total, "+
			"COALESCE(SUM(CASE WHEN p.completed THEN 1 ELSE 0 END), 0) AS completed").
		Joins("JOIN topics t ON q.topic_id = t.id").
		Joins("LEFT JOIN progress p ON q.id = p.question_id AND p.user_id = ?", userID).
		Group("t.name").
		Order("t.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

type WeekProgress struct {
	WeekStart time.Time
	Completed int64
	Easy      int64
	Medium    int64
	Hard      int64
}

// GetProgressByWeek buckets the user's completions by the week they were
// completed in (Monday start, UTC), derived from completed_at stamps.
func GetProgressByWeek(userID uint) ([]WeekProgress, error) {
	var completions []struct {
		Difficulty  string
		CompletedAt time.Time
	}
	err := DB.Table("progress p").
		Select("q.difficulty, p.completed_at").
		Joins("JOIN questions q ON p.question_id = q.id").
		Where("p.user_id = ? AND p.completed = ? AND p.completed_at IS NOT NULL", userID, true).
		Scan(&completions).Error
	if err != nil {
		return nil, err
	}

	buckets := make(map[time.Time]*WeekProgress)
	for _, c := range completions {
		week := weekStart(c.CompletedAt)
		bucket, ok := buckets[week]
		if !ok {
			bucket = &WeekProgress{WeekStart: week}
			buckets[week] = bucket
		}
		bucket.Completed++
		switch c.Difficulty {
		case DifficultyEasy:
			bucket.Easy++
		case DifficultyMedium:
			bucket.Medium++
		case DifficultyHard:
			bucket.Hard++
		}
	}

	weeks := make([]WeekProgress, 0, len(buckets))
	for _, bucket := range buckets {
		weeks = append(weeks, *bucket)
	}
	sort.Slice(weeks, func(i, j int) bool {
		return weeks[i].WeekStart.Before(weeks[j].WeekStart)
	})
	return weeks, nil
}

func weekStart(t time.Time) time.Time {
	t = t.UTC()
	daysSinceMonday := (int(t.Weekday()) + 6) % 7
	monday := t.AddDate(0, 0, -daysSinceMonday)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, time.UTC)
}

// UserProgressRow is the full per-question listing for one user, joined
// with topics; feeds the export artifact and the dashboard table.
type UserProgressRow struct {
	Topic       string  `json:"topic"`
	ID          uint    `json:"id"`
	Title       string  `json:"title"`
	LeetcodeURL string  `json:"leetcode_url"`
	GfgURL      *string `json:"gfg_url"`
	Difficulty  string  `json:"difficulty"`
	Completed   bool    `json:"completed"`
}

func ListUserProgress(userID uint) ([]UserProgressRow, error) {
	var rows []UserProgressRow
	err := DB.Table("questions q").
		Select("t.name AS topic, q.id, q.title, q.leetcode_url, q.gfg_url, q.difficulty, "+
			"COALESCE(p.completed, ?) AS completed", false).
		Joins("JOIN topics t ON q.topic_id = t.id").
		Joins("LEFT JOIN progress p ON q.id = p.question_id AND p.user_id = ?", userID).
		Order("t.name ASC, q.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
