// Package export writes a user's full progress listing to a JSON file
// artifact and records each run in the export audit table.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dsatracker/pkg/config"
	"dsatracker/pkg/db"
	"dsatracker/pkg/logger"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type summary struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
}

// BuildExportJSON renders the export artifact body: an ordered array of
// per-question records.
func BuildExportJSON(rows []db.UserProgressRow) ([]byte, error) {
	if rows == nil {
		rows = []db.UserProgressRow{}
	}
	return json.MarshalIndent(rows, "", "  ")
}

// Filename derives the artifact name. The default user keeps the numeric
// form for backward compatibility; named accounts get their username.
func Filename(userID uint, username string) string {
	username = strings.TrimSpace(username)
	if username == "" || userID == db.DefaultUserID {
		return fmt.Sprintf("progress_export_user_%d.json", userID)
	}
	return fmt.Sprintf("progress_export_%s.json", username)
}

// WriteProgress exports one user's progress to a file under the
// configured export directory (working directory when unset) and returns
// the artifact path.
func WriteProgress(userID uint) (string, error) {
	rows, err := db.ListUserProgress(userID)
	if err != nil {
		return "", err
	}

	username := ""
	user, err := db.GetUserInfo(userID)
	switch {
	case err == nil:
		username = user.Username
	case errors.Is(err, gorm.ErrRecordNotFound):
		// default-user deployments have progress without an account row
	default:
		return "", err
	}

	data, err := BuildExportJSON(rows)
	if err != nil {
		return "", err
	}

	dir := strings.TrimSpace(config.AppConfig.Export.Dir)
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", err
		}
	}
	path := filepath.Join(dir, Filename(userID, username))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}

	if err := recordExport(userID, path, rows); err != nil {
		logger.Error("failed to record export", "user_id", userID, "error", err)
	}

	logger.Info("exported progress", "user_id", userID, "path", path, "records", len(rows))
	return path, nil
}

func recordExport(userID uint, path string, rows []db.UserProgressRow) error {
	completed := 0
	for _, row := range rows {
		if row.Completed {
			completed++
		}
	}
	summaryJSON, err := json.Marshal(summary{Total: len(rows), Completed: completed})
	if err != nil {
		return err
	}
	return db.DB.Create(&db.ExportRecord{
		UserID:   userID,
		Filename: filepath.Base(path),
		Summary:  datatypes.JSON(summaryJSON),
	}).Error
}
