package db

import (
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB installs a fresh in-memory database as the package DB.
// Mirror of pkg/internal/testutil, which this package cannot import.
func setupTestDB(t *testing.T) {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	gdb, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite database: %v", err)
	}
	if err := EnsureSchema(gdb); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	DB = gdb

	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("failed to access underlying DB: %v", err)
	}
	t.Cleanup(func() {
		if err := sqlDB.Close(); err != nil {
			t.Fatalf("failed to close database: %v", err)
		}
		DB = nil
	})
}

func mustAddTopic(t *testing.T, name string) uint {
	t.Helper()
	id, err := AddTopic(name)
	if err != nil {
		t.Fatalf("failed to add topic %q: %v", name, err)
	}
	return id
}

func mustAddQuestion(t *testing.T, title, difficulty string, topicID uint) uint {
	t.Helper()
	id, err := AddQuestion(QuestionInput{
		Title:       title,
		LeetcodeURL: "https://leetcode.com/problems/" + strings.ToLower(strings.ReplaceAll(title, " ", "-")),
		Difficulty:  difficulty,
		TopicID:     topicID,
	})
	if err != nil {
		t.Fatalf("failed to add question %q: %v", title, err)
	}
	return id
}

func mustRegisterUser(t *testing.T, username string) uint {
	t.Helper()
	id, err := RegisterUser(username, "secret-"+username, nil)
	if err != nil {
		t.Fatalf("failed to register user %q: %v", username, err)
	}
	return id
}
