// Package job contains the scheduled maintenance jobs run by the web
// server's cron scheduler.
package job

import (
	"modportal/logger"
	"modportal/web/cache"
)

// PruneSessionsJob removes expired rows from the database-backed
// session store. Redis sessions expire on their own.
type PruneSessionsJob struct {
	store *cache.GormStore
}

func NewPruneSessionsJob(store *cache.GormStore) *PruneSessionsJob {
	return &PruneSessionsJob{store: store}
}

// Run implements cron.Job.
func (j *PruneSessionsJob) Run() {
	pruned, err := j.store.Prune()
	if err != nil {
		logger.Warning("prune sessions failed:", err)
		return
	}
	if pruned > 0 {
		logger.Debugf("pruned %d expired sessions", pruned)
	}
}
