package db

import (
	"fmt"

	types "github.com/emberwell/pulsecheck-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// Identity
		&types.User{},

		// Wellness
		&types.BurnoutAnalysis{},
		&types.BehavioralProfile{},

		// Jobs / worker
		&types.JobRun{},
	)
}

func EnsureWellnessIndexes(db *gorm.DB) error {
	// uuid-ossp is already enabled in NewPostgresService, but safe to re-run
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		return fmt.Errorf("enable uuid-ossp: %w", err)
	}

	// History listing walks (user_id, analysis_date DESC).
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_burnout_analysis_user_date_desc
		ON burnout_analysis (user_id, analysis_date DESC);
	`).Error; err != nil {
		return fmt.Errorf("create idx_burnout_analysis_user_date_desc: %w", err)
	}

	// Claim scans filter on (job_type, status) before the lock attempt.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_job_run_type_status
		ON job_run (job_type, status)
		WHERE deleted_at IS NULL;
	`).Error; err != nil {
		return fmt.Errorf("create idx_job_run_type_status: %w", err)
	}

	return nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	if err := EnsureWellnessIndexes(s.db); err != nil {
		s.log.Error("Wellness index migration failed", "error", err)
		return err
	}

	return nil
}
