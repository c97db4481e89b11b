package devserver

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// StoreJanitorJob keeps the in-memory store from growing without bound
// during long dev sessions.
type StoreJanitorJob struct {
	store *Store
}

func NewStoreJanitorJob(store *Store) *StoreJanitorJob {
	return &StoreJanitorJob{store: store}
}

func (j *StoreJanitorJob) Name() string {
	return "store_janitor"
}

func (j *StoreJanitorJob) Run(ctx context.Context) error {
	if j.store == nil {
		return nil
	}
	if removed := j.store.Trim(); removed > 0 {
		logutil.GetLogger(ctx).Info("trimmed dev store", zap.Int("removed", removed))
	}
	return nil
}
