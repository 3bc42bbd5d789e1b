package db

import (
	"testing"
	"time"
)

func TestGetTopicStats(t *testing.T) {
	setupTestDB(t)
	userID := mustRegisterUser(t, "alice")
	topicID := mustAddTopic(t, "Arrays")
	questionID := mustAddQuestion(t, "Two Sum", DifficultyEasy, topicID)
	mustAddQuestion(t, "Three Sum", DifficultyMedium, topicID)

	before, err := GetTopicStats(topicID, userID)
	if err != nil {
		t.Fatalf("GetTopicStats failed: %v", err)
	}
	if before.Total != 2 || before.Completed != 0 {
		t.Fatalf("expected 2 total / 0 completed, got %+v", before)
	}

	if err := SetCompletion(questionID, userID, true); err != nil {
		t.Fatalf("SetCompletion failed: %v", err)
	}

	after, err := GetTopicStats(topicID, userID)
	if err != nil {
		t.Fatalf("GetTopicStats failed: %v", err)
	}
	if after.Completed != before.Completed+1 {
		t.Fatalf("expected completed count to grow by exactly 1, got %+v", after)
	}
}

func TestGetTopicStatsUnknownTopic(t *testing.T) {
	setupTestDB(t)

	stats, err := GetTopicStats(999, 1)
	if err != nil {
		t.Fatalf("GetTopicStats failed: %v", err)
	}
	if stats.Total != 0 || stats.Completed != 0 {
		t.Fatalf("expected zero stats for unknown topic, got %+v", stats)
	}
}

func TestGetOverallProgressEmptyBank(t *testing.T) {
	setupTestDB(t)

	progress, err := GetOverallProgress(1)
	if err != nil {
		t.Fatalf("GetOverallProgress failed: %v", err)
	}
	if progress.TotalQuestions != 0 || progress.CompletionPercentage != 0 {
		t.Fatalf("expected zero progress with empty bank, got %+v", progress)
	}
}

func TestGetOverallProgress(t *testing.T) {
	setupTestDB(t)
	userID := mustRegisterUser(t, "alice")
	topicID := mustAddTopic(t, "Arrays")
	first := mustAddQuestion(t, "Two Sum", DifficultyEasy, topicID)
	for _, title := range []string{"Three Sum", "Four Sum", "Rotate Array"} {
		mustAddQuestion(t, title, DifficultyMedium, topicID)
	}

	if err := SetCompletion(first, userID, true); err != nil {
		t.Fatalf("SetCompletion failed: %v", err)
	}

	progress, err := GetOverallProgress(userID)
	if err != nil {
		t.Fatalf("GetOverallProgress failed: %v", err)
	}
	if progress.TotalQuestions != 4 || progress.CompletedQuestions != 1 {
		t.Fatalf("expected 1/4 completed, got %+v", progress)
	}
	if progress.CompletionPercentage != 25 {
		t.Fatalf("expected 25%%, got %v", progress.CompletionPercentage)
	}
	if progress.CompletionPercentage < 0 || progress.CompletionPercentage > 100 {
		t.Fatalf("percentage out of range: %v", progress.CompletionPercentage)
	}
}

func TestGetProgressByDifficultyOrdering(t *testing.T) {
	setupTestDB(t)
	userID := mustRegisterUser(t, "alice")
	topicID := mustAddTopic(t, "Arrays")

	hard := mustAddQuestion(t, "Trapping Rain Water", DifficultyHard, topicID)
	mustAddQuestion(t, "Three Sum", DifficultyMedium, topicID)
	mustAddQuestion(t, "Two Sum", DifficultyEasy, topicID)
	mustAddQuestion(t, "Rotate Array", DifficultyEasy, topicID)

	if err := SetCompletion(hard, userID, true); err != nil {
		t.Fatalf("SetCompletion failed: %v", err)
	}

	rows, err := GetProgressByDifficulty(userID)
	if err != nil {
		t.Fatalf("GetProgressByDifficulty failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 difficulty buckets, got %d", len(rows))
	}
	wantOrder := []string{DifficultyEasy, DifficultyMedium, DifficultyHard}
	for i, difficulty := range wantOrder {
		if rows[i].Difficulty != difficulty {
			t.Fatalf("bucket %d: got %q want %q", i, rows[i].Difficulty, difficulty)
		}
	}
	if rows[0].Total != 2 || rows[0].Completed != 0 {
		t.Fatalf("easy bucket wrong: %+v", rows[0])
	}
	if rows[2].Total != 1 || rows[2].Completed != 1 {
		t.Fatalf("hard bucket wrong: %+v", rows[2])
	}
}

func TestGetProgressByTopic(t *testing.T) {
	setupTestDB(t)
	userID := mustRegisterUser(t, "alice")
	arrays := mustAddTopic(t, "Arrays")
	graphs := mustAddTopic(t, "Graphs")

	twoSum := mustAddQuestion(t, "Two Sum", DifficultyEasy, arrays)
	mustAddQuestion(t, "Three Sum", DifficultyMedium, arrays)
	mustAddQuestion(t, "Course Schedule", DifficultyMedium, graphs)

	if err := SetCompletion(twoSum, userID, true); err != nil {
		t.Fatalf("SetCompletion failed: %v", err)
	}

	rows, err := GetProgressByTopic(userID)
	if err != nil {
		t.Fatalf("GetProgressByTopic failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 topic buckets, got %d", len(rows))
	}
	if rows[0].Topic != "Arrays" || rows[0].Total != 2 || rows[0].Completed != 1 {
		t.Fatalf("arrays bucket wrong: %+v", rows[0])
	}
	if rows[1].Topic != "Graphs" || rows[1].Total != 1 || rows[1].Completed != 0 {
		t.Fatalf("graphs bucket wrong: %+v", rows[1])
	}
}

func TestGetProgressByWeek(t *testing.T) {
	setupTestDB(t)
	userID := mustRegisterUser(t, "alice")
	topicID := mustAddTopic(t, "Arrays")

	twoSum := mustAddQuestion(t, "Two Sum", DifficultyEasy, topicID)
	threeSum := mustAddQuestion(t, "Three Sum", DifficultyMedium, topicID)
	rainWater := mustAddQuestion(t, "Trapping Rain Water", DifficultyHard, topicID)
	mustAddQuestion(t, "Rotate Array", DifficultyEasy, topicID)

	for _, id := range []uint{twoSum, threeSum, rainWater} {
		if err := SetCompletion(id, userID, true); err != nil {
			t.Fatalf("SetCompletion(%d) failed: %v", id, err)
		}
	}

	// pin completion stamps: two in one week, one in the next
	weekOne := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)  // Tuesday
	weekOneB := time.Date(2024, 3, 8, 22, 0, 0, 0, time.UTC) // Friday, same week
	weekTwo := time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC)  // following Tuesday
	stamps := map[uint]time.Time{twoSum: weekOne, threeSum: weekOneB, rainWater: weekTwo}
	for id, stamp := range stamps {
		if err := DB.Model(&Progress{}).
			Where("question_id = ? AND user_id = ?", id, userID).
			Update("completed_at", stamp).Error; err != nil {
			t.Fatalf("failed to pin completed_at: %v", err)
		}
	}

	weeks, err := GetProgressByWeek(userID)
	if err != nil {
		t.Fatalf("GetProgressByWeek failed: %v", err)
	}
	if len(weeks) != 2 {
		t.Fatalf("expected 2 week buckets, got %+v", weeks)
	}

	firstMonday := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	secondMonday := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	if !weeks[0].WeekStart.Equal(firstMonday) || !weeks[1].WeekStart.Equal(secondMonday) {
		t.Fatalf("expected Monday-aligned ascending weeks, got %+v", weeks)
	}
	if weeks[0].Completed != 2 || weeks[0].Easy != 1 || weeks[0].Medium != 1 || weeks[0].Hard != 0 {
		t.Fatalf("first week bucket wrong: %+v", weeks[0])
	}
	if weeks[1].Completed != 1 || weeks[1].Hard != 1 {
		t.Fatalf("second week bucket wrong: %+v", weeks[1])
	}
}

func TestWeekStart(t *testing.T) {
	cases := []struct {
		in   time.Time
		want time.Time
	}{
		{time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)},   // Monday maps to itself
		{time.Date(2024, 3, 10, 23, 59, 0, 0, time.UTC), time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)}, // Sunday closes the week
		{time.Date(2024, 3, 11, 0, 0, 1, 0, time.UTC), time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		if got := weekStart(tc.in); !got.Equal(tc.want) {
			t.Fatalf("weekStart(%v): got %v want %v", tc.in, got, tc.want)
		}
	}
}

func TestListUserProgressOrdering(t *testing.T) {
	setupTestDB(t)
	userID := mustRegisterUser(t, "alice")
	trees := mustAddTopic(t, "Trees")
	arrays := mustAddTopic(t, "Arrays")

	mustAddQuestion(t, "Invert Binary Tree", DifficultyEasy, trees)
	twoSum := mustAddQuestion(t, "Two Sum", DifficultyEasy, arrays)

	if err := SetCompletion(twoSum, userID, true); err != nil {
		t.Fatalf("SetCompletion failed: %v", err)
	}

	rows, err := ListUserProgress(userID)
	if err != nil {
		t.Fatalf("ListUserProgress failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Topic != "Arrays" || rows[1].Topic != "Trees" {
		t.Fatalf("expected topic-name ordering, got %+v", rows)
	}
	if !rows[0].Completed || rows[1].Completed {
		t.Fatalf("expected joined completion state, got %+v", rows)
	}
}
