// Package cleanup reclaims storage from expired recordings and unpromoted
// converted artifacts.
package cleanup

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"Hummify/cache"
	"Hummify/logger"
	"Hummify/repository"
	"Hummify/storage"
)

// Result counts what a single sweep run did.
type Result struct {
	ReclaimedRecordings int
	ReclaimedConverted  int
	Retained            int
	Failures            int
}

// Sweeper periodically deletes uploaded recordings and unpromoted converted
// artifacts older than the retention window, removing both the blob store
// object and the database record. It is owned by the process lifecycle:
// started once at startup, stopped on shutdown, with its dependencies
// passed in explicitly.
type Sweeper struct {
	recordings repository.RecordingRepository
	converted  repository.ConvertedRepository
	saved      repository.SavedRepository
	store      storage.ObjectStore
	cache      *cache.ArtifactCache

	retention time.Duration
	interval  time.Duration

	running  atomic.Bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewSweeper wires a sweeper. cache may be nil.
func NewSweeper(
	recordings repository.RecordingRepository,
	converted repository.ConvertedRepository,
	saved repository.SavedRepository,
	store storage.ObjectStore,
	artifactCache *cache.ArtifactCache,
	retention, interval time.Duration,
) *Sweeper {
	return &Sweeper{
		recordings: recordings,
		converted:  converted,
		saved:      saved,
		store:      store,
		cache:      artifactCache,
		retention:  retention,
		interval:   interval,
		stopChan:   make(chan struct{}),
	}
}

// Start launches the recurring sweep loop.
func (s *Sweeper) Start() {
	logger.Info("Reclamation sweeper started",
		logger.Duration("interval", s.interval),
		logger.Duration("retention", s.retention))

	s.wg.Add(1)
	go s.loop()
}

// Stop signals the loop to exit and waits for any in-flight run to finish.
// A run interrupted by shutdown leaves the data model valid: each item's
// delete is a complete storage-then-record pair, never split across runs.
func (s *Sweeper) Stop() {
	close(s.stopChan)
	s.wg.Wait()
	logger.Info("Reclamation sweeper stopped")
}

func (s *Sweeper) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

// tick runs one sweep unless the previous run is still executing, in which
// case the tick is skipped rather than queued.
func (s *Sweeper) tick() {
	if !s.running.CompareAndSwap(false, true) {
		logger.Warn("Skipping sweep tick, previous run still executing")
		return
	}
	defer s.running.Store(false)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cancel the run promptly when Stop is called mid-sweep.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-s.stopChan:
			cancel()
		case <-done:
		}
	}()

	s.RunOnce(ctx)
}

// RunOnce executes a single sweep pass and reports what it reclaimed.
// Per-item failures are logged and skipped; a failed item still matches
// the cutoff predicate next run and is retried naturally.
func (s *Sweeper) RunOnce(ctx context.Context) Result {
	cutoff := time.Now().Add(-s.retention)
	var res Result

	logger.Info("Sweep run starting", logger.Any("cutoff", cutoff))

	s.sweepRecordings(ctx, cutoff, &res)
	s.sweepConverted(ctx, cutoff, &res)

	logger.Info("Sweep run finished",
		logger.Int("reclaimedRecordings", res.ReclaimedRecordings),
		logger.Int("reclaimedConverted", res.ReclaimedConverted),
		logger.Int("retained", res.Retained),
		logger.Int("failures", res.Failures))
	return res
}

func (s *Sweeper) sweepRecordings(ctx context.Context, cutoff time.Time, res *Result) {
	expired, err := s.recordings.GetRecordingsOlderThan(cutoff)
	if err != nil {
		logger.Error("Failed to list expired recordings", logger.ErrorField(err))
		res.Failures++
		return
	}

	for _, rec := range expired {
		if ctx.Err() != nil {
			return
		}
		if err := s.store.Delete(ctx, rec.ObjectID); err != nil {
			logger.Error("Failed to delete recording object, skipping item",
				logger.Int64("recordingId", rec.ID),
				logger.String("objectId", rec.ObjectID),
				logger.ErrorField(err))
			res.Failures++
			continue
		}
		if err := s.recordings.DeleteRecording(rec.ID); err != nil {
			logger.Error("Failed to delete recording record, skipping item",
				logger.Int64("recordingId", rec.ID),
				logger.ErrorField(err))
			res.Failures++
			continue
		}
		res.ReclaimedRecordings++
		logger.Debug("Reclaimed expired recording",
			logger.Int64("recordingId", rec.ID),
			logger.String("objectId", rec.ObjectID))
	}
}

func (s *Sweeper) sweepConverted(ctx context.Context, cutoff time.Time, res *Result) {
	expired, err := s.converted.GetConvertedOlderThan(cutoff)
	if err != nil {
		logger.Error("Failed to list expired converted artifacts", logger.ErrorField(err))
		res.Failures++
		return
	}

	for _, art := range expired {
		if ctx.Err() != nil {
			return
		}

		// Point-in-time check: a promotion racing this read either wins
		// (artifact retained below) or loses and surfaces NotFound to its
		// caller. No lock is taken.
		referenced, err := s.saved.ExistsByObjectID(art.ObjectID)
		if err != nil {
			logger.Error("Failed to check saved references, skipping item",
				logger.Int64("artifactId", art.ID),
				logger.String("objectId", art.ObjectID),
				logger.ErrorField(err))
			res.Failures++
			continue
		}
		if referenced {
			res.Retained++
			logger.Debug("Converted artifact retained by saved reference",
				logger.Int64("artifactId", art.ID),
				logger.String("objectId", art.ObjectID))
			continue
		}

		if err := s.store.Delete(ctx, art.ObjectID); err != nil {
			logger.Error("Failed to delete converted object, skipping item",
				logger.Int64("artifactId", art.ID),
				logger.String("objectId", art.ObjectID),
				logger.ErrorField(err))
			res.Failures++
			continue
		}
		if err := s.converted.DeleteConverted(art.ID); err != nil {
			logger.Error("Failed to delete converted record, skipping item",
				logger.Int64("artifactId", art.ID),
				logger.ErrorField(err))
			res.Failures++
			continue
		}
		if err := s.cache.Invalidate(ctx, art.ID); err != nil {
			logger.Warn("Failed to invalidate cached artifact",
				logger.Int64("artifactId", art.ID),
				logger.ErrorField(err))
		}

		res.ReclaimedConverted++
		logger.Debug("Reclaimed expired converted artifact",
			logger.Int64("artifactId", art.ID),
			logger.String("objectId", art.ObjectID))
	}
}
