package scheduler

import (
	"context"
	"time"

	"photocritic/pkg/logger"
)

const (
	JobAnalysisCleanup    = "analysis_cleanup"
	JobActivityLogCleanup = "activity_log_cleanup"

	activityLogCron = "30 3 * * *"
	jobTimeout      = 10 * time.Minute
)

// AnalysisCleaner collapses redundant analyses.
type AnalysisCleaner interface {
	CleanupRedundant(ctx context.Context, keepPerPhoto int) (int64, error)
}

// ActivityLogCleaner drops audit entries older than a number of days.
type ActivityLogCleaner interface {
	Cleanup(ctx context.Context, days int) (int64, error)
}

type MaintenanceConfig struct {
	CleanupCron     string
	CleanupKeep     int
	ActivityLogDays int
}

// RegisterMaintenanceJobs adds the nightly cleanup jobs. An empty
// CleanupCron disables analysis cleanup; a nil activity cleaner skips the
// audit trim.
func RegisterMaintenanceJobs(s EventScheduler, analyses AnalysisCleaner, activity ActivityLogCleaner, cfg MaintenanceConfig) error {
	if cfg.CleanupKeep < 1 {
		cfg.CleanupKeep = 1
	}

	if cfg.CleanupCron != "" && analyses != nil {
		err := s.AddJob(JobAnalysisCleanup, cfg.CleanupCron, func() {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()
			// the service logs and records the run itself
			if _, err := analyses.CleanupRedundant(ctx, cfg.CleanupKeep); err != nil {
				logger.SchedulerError(JobAnalysisCleanup, "Analysis cleanup failed", err, nil)
			}
		})
		if err != nil {
			return err
		}
	}

	if activity != nil && cfg.ActivityLogDays > 0 {
		return s.AddJob(JobActivityLogCleanup, activityLogCron, func() {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()
			n, err := activity.Cleanup(ctx, cfg.ActivityLogDays)
			if err != nil {
				logger.SchedulerError(JobActivityLogCleanup, "Activity log cleanup failed", err, nil)
				return
			}
			logger.Scheduler(JobActivityLogCleanup, "Old activity logs removed", map[string]interface{}{"deleted": n})
		})
	}
	return nil
}
