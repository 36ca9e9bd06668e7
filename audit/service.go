package audit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/kasuganosora/contentbackport/model"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Entry is one merge outcome to be persisted.
type Entry struct {
	RunID    string
	Stage    string
	EntityID string
	Outcome  string
	Err      error
	Detail   interface{}
}

// Service writes merge logs asynchronously in batches.
type Service struct {
	db     *gorm.DB
	ch     chan *model.MergeLog
	stopCh chan struct{}
	wg     sync.WaitGroup
	logger *zap.Logger
}

// New creates a new audit Service and starts its background worker.
func New(db *gorm.DB, logger *zap.Logger) *Service {
	svc := &Service{
		db:     db,
		ch:     make(chan *model.MergeLog, 1024),
		stopCh: make(chan struct{}),
		logger: logger,
	}
	svc.wg.Add(1)
	go svc.worker()
	return svc
}

// Log enqueues an entry for async DB write. It blocks while the queue is
// full. Entries logged after Stop are dropped with a warning.
func (svc *Service) Log(entry Entry) {
	record := &model.MergeLog{
		RunID:    entry.RunID,
		Stage:    entry.Stage,
		EntityID: entry.EntityID,
		Outcome:  entry.Outcome,
	}
	if entry.Err != nil {
		record.Error = entry.Err.Error()
	}
	if entry.Detail != nil {
		detail, err := json.Marshal(entry.Detail)
		if err == nil {
			record.Detail = datatypes.JSON(detail)
		}
	}
	select {
	case svc.ch <- record:
	case <-svc.stopCh:
		svc.logger.Warn("audit stopped, dropping entry",
			zap.String("stage", entry.Stage),
			zap.String("entity_id", entry.EntityID))
	}
}

// Stop flushes remaining entries and shuts down the worker.
// It blocks until the worker goroutine has finished.
func (svc *Service) Stop(_ context.Context) {
	select {
	case <-svc.stopCh:
	default:
		close(svc.stopCh)
	}
	svc.wg.Wait()
}

// RunLogs returns the persisted entries of one run, oldest first.
func (svc *Service) RunLogs(ctx context.Context, runID string) ([]model.MergeLog, error) {
	var logs []model.MergeLog
	err := svc.db.WithContext(ctx).Where("run_id = ?", runID).Order("id").Find(&logs).Error
	return logs, err
}

func (svc *Service) worker() {
	defer svc.wg.Done()
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	batch := make([]*model.MergeLog, 0, 100)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := svc.db.Create(&batch).Error; err != nil {
			svc.logger.Error("audit batch write failed", zap.Error(err))
		}
		batch = batch[:0]
	}

	for {
		select {
		case entry := <-svc.ch:
			batch = append(batch, entry)
			if len(batch) >= 100 {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-svc.stopCh:
			for {
				select {
				case entry := <-svc.ch:
					batch = append(batch, entry)
					if len(batch) >= 100 {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}
