package jobs

import (
	"log"
	"time"

	"github.com/medipulse/medipulse-backend/internal/storage"
)

// CleanupJob periodically evicts expired sessions from the store.
type CleanupJob struct {
	store    storage.Store
	interval time.Duration
	quit     chan struct{}
	done     chan struct{}
}

// NewCleanupJob creates a new session cleanup job. A non-positive interval
// defaults to five minutes.
func NewCleanupJob(store storage.Store, interval time.Duration) *CleanupJob {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &CleanupJob{
		store:    store,
		interval: interval,
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins the background sweep loop.
func (j *CleanupJob) Start() {
	log.Println("Starting session cleanup job...")
	go j.run()
}

// Stop halts the sweep loop and waits for it to exit.
func (j *CleanupJob) Stop() {
	log.Println("Stopping session cleanup job...")
	close(j.quit)
	<-j.done
}

func (j *CleanupJob) run() {
	defer close(j.done)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := j.store.Sweep(); removed > 0 {
				log.Printf("Cleaned up %d expired session(s)", removed)
			}
		case <-j.quit:
			return
		}
	}
}
