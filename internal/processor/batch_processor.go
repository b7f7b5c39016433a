package processor

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/georgecharles/verygoodestates/config"
	"github.com/georgecharles/verygoodestates/internal/database"
	"github.com/georgecharles/verygoodestates/internal/models"
	"github.com/georgecharles/verygoodestates/internal/queue"
)

// Transactor is the part of *gorm.DB the processor needs
type Transactor interface {
	Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error
}

// BatchProcessor stores listing batches taken from the queue
type BatchProcessor struct {
	db      Transactor
	logger  *logrus.Logger
	config  *config.Config
	queue   *queue.ListingQueue
	ctx     context.Context
	cancel  context.CancelFunc
	once    sync.Once
	stored  int64
	skipped int64
	mu      sync.Mutex
}

// NewBatchProcessor creates a new batch processor instance
func NewBatchProcessor(db Transactor, queue *queue.ListingQueue, config *config.Config, logger *logrus.Logger) *BatchProcessor {
	ctx, cancel := context.WithCancel(context.Background())
	return &BatchProcessor{
		db:     db,
		queue:  queue,
		config: config,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start subscribes the processor to its queue. Repeated calls are ignored.
func (p *BatchProcessor) Start() {
	p.once.Do(func() {
		p.queue.Subscribe(p.processBatch)
	})
}

// Stop abandons pending retries; a batch already being written finishes first
func (p *BatchProcessor) Stop() {
	p.cancel()
}

// Stats returns how many listings were stored and how many failed validation
func (p *BatchProcessor) Stats() (stored, skipped int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stored, p.skipped
}

// processBatch validates the batch and upserts the valid listings in one transaction,
// retrying the transaction up to MaxRetries times. Rows are written MaxBatchSize
// at a time to stay under SQLite's bound-variable limit
func (p *BatchProcessor) processBatch(batch []*models.Property) error {
	valid := p.validate(batch)
	if len(valid) == 0 {
		return nil
	}

	maxRetries := p.config.BatchProcessing.MaxRetries
	delay := time.Duration(p.config.BatchProcessing.RetryDelay) * time.Second

	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			p.logger.Infof("Retrying batch processing, attempt %d of %d", attempt, maxRetries)
			select {
			case <-p.ctx.Done():
				return fmt.Errorf("batch processing stopped: %w", p.ctx.Err())
			case <-time.After(delay):
			}
		}

		err = p.db.Transaction(func(tx *gorm.DB) error {
			for _, chunk := range chunks(valid, p.config.BatchProcessing.MaxBatchSize) {
				if err := database.UpsertProperties(tx, chunk); err != nil {
					return fmt.Errorf("failed to upsert properties batch: %w", err)
				}
			}
			return nil
		})

		if err == nil {
			p.mu.Lock()
			p.stored += int64(len(valid))
			p.mu.Unlock()
			p.logger.Infof("Successfully processed batch of %d properties", len(valid))
			return nil
		}

		p.logger.WithError(err).WithField("attempt", attempt).Error("Batch processing failed")
	}

	return fmt.Errorf("failed to process batch after %d attempts: %w", maxRetries+1, err)
}

// chunks splits batch into slices of at most size elements
func chunks(batch []*models.Property, size int) [][]*models.Property {
	if size <= 0 || len(batch) <= size {
		return [][]*models.Property{batch}
	}
	out := make([][]*models.Property, 0, (len(batch)+size-1)/size)
	for start := 0; start < len(batch); start += size {
		end := start + size
		if end > len(batch) {
			end = len(batch)
		}
		out = append(out, batch[start:end])
	}
	return out
}

func (p *BatchProcessor) validate(batch []*models.Property) []*models.Property {
	valid := make([]*models.Property, 0, len(batch))
	for _, property := range batch {
		if err := property.Validate(); err != nil {
			p.logger.WithError(err).WithField("property_id", property.ID).Warn("Skipping invalid property")
			p.mu.Lock()
			p.skipped++
			p.mu.Unlock()
			continue
		}
		valid = append(valid, property)
	}
	return valid
}
