package scheduler

import (
	"fmt"
	"sync"

	"github.com/paulmach/orb"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/georgecharles/verygoodestates/config"
	"github.com/georgecharles/verygoodestates/internal/listings"
	"github.com/georgecharles/verygoodestates/internal/models"
)

// Pusher accepts generated listing batches; *queue.ListingQueue implements it
type Pusher interface {
	Push(properties []*models.Property) error
}

// Scheduler refreshes the listing feed on a cron schedule, one area per run
type Scheduler struct {
	cron      *cron.Cron
	generator *listings.Generator
	queue     Pusher
	logger    *logrus.Logger
	spec      string
	size      int
	areas     []config.Place

	jobMutex  sync.Mutex // Ensures sequential job execution
	next      int
	startup   sync.WaitGroup
	isRunning bool
}

// NewScheduler creates a scheduler cycling through areas, which must all have coordinates
func NewScheduler(generator *listings.Generator, queue Pusher, logger *logrus.Logger, spec string, size int, areas []config.Place) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		generator: generator,
		queue:     queue,
		logger:    logger,
		spec:      spec,
		size:      size,
		areas:     areas,
	}
}

// Start registers the feed job and runs it once straight away
func (s *Scheduler) Start() error {
	if len(s.areas) == 0 {
		return fmt.Errorf("feed scheduler needs at least one area")
	}

	if _, err := s.cron.AddFunc(s.spec, s.RunOnce); err != nil {
		return fmt.Errorf("invalid feed schedule %q: %w", s.spec, err)
	}

	s.startup.Add(1)
	go func() {
		defer s.startup.Done()
		s.logger.Info("Running startup feed job")
		s.RunOnce()
	}()

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("schedule", s.spec).Info("Feed scheduler started")
	return nil
}

// RunOnce generates a batch for the next area and queues it
func (s *Scheduler) RunOnce() {
	s.jobMutex.Lock()
	defer s.jobMutex.Unlock()

	area := s.areas[s.next%len(s.areas)]
	s.next++

	center := orb.Point{area.Center.Longitude, area.Center.Latitude}
	batch := s.generator.Generate(area.Name, center, s.size)

	fields := logrus.Fields{
		"area":       area.Name,
		"batch_size": len(batch),
	}
	if err := s.queue.Push(batch); err != nil {
		s.logger.WithError(err).WithFields(fields).Error("Feed job failed")
		return
	}
	s.logger.WithFields(fields).Info("Feed job queued listings")
}

// Stop waits for running jobs to finish
func (s *Scheduler) Stop() {
	if !s.isRunning {
		return
	}
	<-s.cron.Stop().Done()
	s.startup.Wait()
	s.isRunning = false
	s.logger.Info("Feed scheduler stopped")
}
