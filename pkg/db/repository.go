package db

import (
	"fmt"
	"strconv"
	"time"

	"dsatracker/pkg/config"
	"dsatracker/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// DB is the package-wide handle; InitDB sets it and the test fixture
// swaps in an in-memory database.
var DB *gorm.DB

const defaultSQLitePath = "dsatracker.db"

func InitDB(cfg config.DatabaseConfig) error {
	gormLogger, gormErr := newGormLogger(config.AppConfig.Logging.GormLevel)
	if gormErr != nil {
		logger.Error("invalid gorm log level", "value", config.AppConfig.Logging.GormLevel, "error", gormErr)
	}

	dialector, err := openDialector(cfg)
	if err != nil {
		return err
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{Logger: gormLogger})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return err
	}
	if err := EnsureSchema(gdb); err != nil {
		logger.Error("failed to ensure schema", "error", err)
		return err
	}
	DB = gdb
	return nil
}

func openDialector(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "", "sqlite":
		path := cfg.Path
		if path == "" {
			path = defaultSQLitePath
		}
		return sqlite.Open(path), nil
	case "postgres":
		dsn := "host=" + cfg.Host +
			" user=" + cfg.User +
			" password=" + cfg.Password +
			" dbname=" + cfg.DBName +
			" port=" + strconv.Itoa(cfg.Port) +
			" sslmode=" + cfg.SSLMode
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// EnsureSchema brings the database to the current table set. Safe to call
// on every start: structural rebuilds run only when the old shape is
// detected, column adds only when the column is missing, and AutoMigrate
// never drops anything.
func EnsureSchema(gdb *gorm.DB) error {
	if err := migrateLegacyProgressTable(gdb); err != nil {
		return fmt.Errorf("migrate legacy progress table: %w", err)
	}
	if err := ensureProgressColumns(gdb); err != nil {
		return fmt.Errorf("ensure progress columns: %w", err)
	}
	return gdb.AutoMigrate(
		&Topic{},
		&Question{},
		&User{},
		&Progress{},
		&Admin{},
		&ExportRecord{},
	)
}

// progressRebuild is the scratch table used while rebuilding a legacy
// single-user progress table into the keyed-per-user shape.
type progressRebuild struct {
	ID          uint `gorm:"primaryKey"`
	QuestionID  uint `gorm:"not null;uniqueIndex:idx_question_user"`
	UserID      uint `gorm:"not null;uniqueIndex:idx_question_user;index"`
	Completed   bool `gorm:"not null;default:false"`
	CompletedAt *time.Time
	Notes       *string
	Solution    *string
	Bookmarked  bool `gorm:"not null;default:false"`
}

func (progressRebuild) TableName() string {
	return "progress_rebuild"
}

// migrateLegacyProgressTable rebuilds a pre-account progress table (no
// user_id column): create the target shape, copy rows forward under the
// default user, drop the old table, rename the new one into place. Runs
// in one transaction and is a no-op once the column exists.
func migrateLegacyProgressTable(gdb *gorm.DB) error {
	if gdb == nil {
		return nil
	}
	migrator := gdb.Migrator()
	if !migrator.HasTable("progress") || migrator.HasColumn(&Progress{}, "user_id") {
		return nil
	}
	logger.Info("rebuilding legacy progress table with per-user key")
	return gdb.Transaction(func(tx *gorm.DB) error {
		if tx.Migrator().HasTable(&progressRebuild{}) {
			if err := tx.Migrator().DropTable(&progressRebuild{}); err != nil {
				return err
			}
		}
		if err := tx.Migrator().CreateTable(&progressRebuild{}); err != nil {
			return err
		}

		columns := "id, question_id, completed"
		selects := "id, question_id, completed"
		if tx.Migrator().HasColumn(&Progress{}, "completed_at") {
			columns += ", completed_at"
			selects += ", completed_at"
		}
		copySQL := fmt.Sprintf(
			"INSERT INTO progress_rebuild (%s, user_id) SELECT %s, ? FROM progress",
			columns, selects,
		)
		if err := tx.Exec(copySQL, DefaultUserID).Error; err != nil {
			return err
		}

		if err := tx.Migrator().DropTable("progress"); err != nil {
			return err
		}
		return tx.Migrator().RenameTable("progress_rebuild", "progress")
	})
}

// ensureProgressColumns applies the additive half of schema evolution:
// feature columns that older deployments predate are added in place,
// never by rebuilding the table.
func ensureProgressColumns(gdb *gorm.DB) error {
	if gdb == nil || !gdb.Migrator().HasTable("progress") {
		return nil
	}
	for _, field := range []string{"Notes", "Solution", "Bookmarked", "CompletedAt"} {
		if gdb.Migrator().HasColumn(&Progress{}, field) {
			continue
		}
		logger.Info("adding missing progress column", "field", field)
		if err := gdb.Migrator().AddColumn(&Progress{}, field); err != nil {
			return err
		}
	}
	return nil
}

const (
	defaultAdminUsername = "admin"
	defaultAdminPassword = "admin123"
	defaultUserUsername  = "demo"
	defaultUserPassword  = "demo123"
)

// EnsureSeedAccounts inserts the bootstrap admin when the admin table is
// empty, and in demo mode a default user likewise. A convenience for
// first boot, not a security boundary; credentials are stored hashed.
func EnsureSeedAccounts(demoUser bool) error {
	var adminCount int64
	if err := DB.Model(&Admin{}).Count(&adminCount).Error; err != nil {
		return err
	}
	if adminCount == 0 {
		hash, err := hashPassword(defaultAdminPassword)
		if err != nil {
			return err
		}
		if err := DB.Create(&Admin{Username: defaultAdminUsername, PasswordHash: hash}).Error; err != nil {
			return err
		}
		logger.Info("seeded default admin account", "username", defaultAdminUsername)
	}

	if !demoUser {
		return nil
	}
	var userCount int64
	if err := DB.Model(&User{}).Count(&userCount).Error; err != nil {
		return err
	}
	if userCount == 0 {
		hash, err := hashPassword(defaultUserPassword)
		if err != nil {
			return err
		}
		err = DB.Transaction(func(tx *gorm.DB) error {
			user := User{Username: defaultUserUsername, PasswordHash: hash}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			return fanOutUserProgress(tx, user.ID)
		})
		if err != nil {
			return err
		}
		logger.Info("seeded default demo user", "username", defaultUserUsername)
	}
	return nil
}
