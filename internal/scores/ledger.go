// Package scores persists quiz results: one row per (user, quiz) pair with
// upsert-on-replay semantics, backed by SQLite through gorm.
package scores

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// Result is one persisted quiz outcome. The score is the free-form
// "<earned>/<total>" string the quiz engine produces.
type Result struct {
	ID       uint   `gorm:"primaryKey"`
	UserID   int64  `gorm:"not null;uniqueIndex:idx_user_quiz"`
	QuizName string `gorm:"not null;uniqueIndex:idx_user_quiz"`
	Score    string `gorm:"column:quiz_score;not null"`
}

// TableName keeps the table compatible with existing ledger files.
func (Result) TableName() string { return "quiz_results" }

// Ledger is the durable score store the quiz engine persists into.
type Ledger interface {
	// Get returns the stored score for one user and quiz. The boolean is
	// false when no attempt has been recorded.
	Get(ctx context.Context, userID int64, quizName string) (string, bool, error)

	// AllForUser returns every stored result for a user.
	AllForUser(ctx context.Context, userID int64) ([]Result, error)

	// Put records a score, replacing any previous result for the same
	// user and quiz.
	Put(ctx context.Context, userID int64, quizName, score string) error

	// DeleteByQuiz drops all results recorded against a quiz name, for
	// cleanup when the quiz node is removed.
	DeleteByQuiz(ctx context.Context, quizName string) error
}

// SQLLedger implements Ledger on a SQLite database.
type SQLLedger struct {
	db *gorm.DB
}

var _ Ledger = (*SQLLedger)(nil)

// Open connects to the SQLite ledger at path, creating parent directories
// and running auto-migration.
func Open(path string) (*SQLLedger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create ledger dir: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	if err := db.Exec("PRAGMA journal_mode = WAL").Error; err != nil {
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := db.AutoMigrate(&Result{}); err != nil {
		return nil, fmt.Errorf("auto-migrate ledger: %w", err)
	}
	return &SQLLedger{db: db}, nil
}

// Close releases the underlying database handle.
func (l *SQLLedger) Close() error {
	sqlDB, err := l.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (l *SQLLedger) Get(ctx context.Context, userID int64, quizName string) (string, bool, error) {
	var row Result
	err := l.db.WithContext(ctx).
		Where("user_id = ? AND quiz_name = ?", userID, quizName).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get score: %w", err)
	}
	return row.Score, true, nil
}

func (l *SQLLedger) AllForUser(ctx context.Context, userID int64) ([]Result, error) {
	var rows []Result
	err := l.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("quiz_name").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	return rows, nil
}

func (l *SQLLedger) Put(ctx context.Context, userID int64, quizName, score string) error {
	row := Result{UserID: userID, QuizName: quizName, Score: score}
	err := l.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "quiz_name"}},
			DoUpdates: clause.AssignmentColumns([]string{"quiz_score"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("put score: %w", err)
	}
	return nil
}

func (l *SQLLedger) DeleteByQuiz(ctx context.Context, quizName string) error {
	err := l.db.WithContext(ctx).
		Where("quiz_name = ?", quizName).
		Delete(&Result{}).Error
	if err != nil {
		return fmt.Errorf("delete quiz scores: %w", err)
	}
	return nil
}
