// Package seed loads the initial question bank from a JSON document
// mapping topic name to its questions. The file is consumed only while
// the question table is empty; after first boot it is never re-read.
package seed

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"dsatracker/pkg/config"
	"dsatracker/pkg/db"
	"dsatracker/pkg/logger"
)

var errEmptySeedFile = errors.New("seed file contains no questions")

type Question struct {
	Title       string  `json:"title"`
	LeetcodeURL string  `json:"leetcode_url"`
	Difficulty  string  `json:"difficulty"`
	GfgURL      *string `json:"gfg_url,omitempty"`
}

func LoadFromConfig() error {
	path := strings.TrimSpace(config.AppConfig.Seed.QuestionsPath)
	if path == "" {
		return nil
	}
	return LoadFromFile(path)
}

// LoadFromFile seeds topics and questions from the given document. A
// non-empty question table makes this a no-op.
func LoadFromFile(path string) error {
	var count int64
	if err := db.DB.Model(&db.Question{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.Debug("question bank already populated, skipping seed", "questions", count)
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	topics, err := parseSeedFile(f)
	if err != nil {
		return fmt.Errorf("parse seed file %s: %w", path, err)
	}

	names := make([]string, 0, len(topics))
	for name := range topics {
		names = append(names, name)
	}
	sort.Strings(names)

	batches := make([]db.TopicBatch, 0, len(names))
	for _, name := range names {
		inputs := make([]db.QuestionInput, 0, len(topics[name]))
		for _, q := range topics[name] {
			inputs = append(inputs, db.QuestionInput{
				Title:       q.Title,
				LeetcodeURL: q.LeetcodeURL,
				GfgURL:      q.GfgURL,
				Difficulty:  q.Difficulty,
			})
		}
		batches = append(batches, db.TopicBatch{Topic: name, Questions: inputs})
	}

	// one transaction for the whole bank; a bad item anywhere leaves the
	// table empty so the next boot retries the file
	seeded, err := db.ImportQuestionBank(batches)
	if err != nil {
		return fmt.Errorf("seed question bank from %s: %w", path, err)
	}

	logger.Info("seeded question bank", "topics", len(names), "questions", seeded)
	return nil
}

func parseSeedFile(reader io.Reader) (map[string][]Question, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	var topics map[string][]Question
	if err := json.Unmarshal(data, &topics); err != nil {
		return nil, err
	}

	total := 0
	for _, questions := range topics {
		total += len(questions)
	}
	if total == 0 {
		return nil, errEmptySeedFile
	}
	return topics, nil
}
