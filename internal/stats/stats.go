// Package stats implements runtime statistics collection and persistence
// (§6 GET /stats), backed by gorm over sqlite so a node's history survives
// a restart.
package stats

import (
	"runtime"
	"time"

	"gorm.io/gorm"

	"github.com/ibukiaudio/ibuki/internal/ibukierr"
)

// Snapshot is the runtime statistics payload returned from GET /stats and
// broadcast periodically over the notification channel (§4.8).
type Snapshot struct {
	ID             uint      `gorm:"primarykey" json:"-"`
	CapturedAt     time.Time `json:"capturedAt"`
	Players        int       `json:"players"`
	PlayingPlayers int       `json:"playingPlayers"`
	Sessions       int       `json:"sessions"`
	MemoryUsedMB   uint64    `json:"memoryUsedMb"`
	Uptime         int64     `json:"uptimeMs"`
}

// Collector tracks process-wide counters and persists periodic snapshots.
type Collector struct {
	db        *gorm.DB
	startedAt time.Time

	countPlayers        func() int
	countPlayingPlayers func() int
	countSessions       func() int
}

// Counters is the set of callbacks Collector queries on each Collect.
type Counters struct {
	Players        func() int
	PlayingPlayers  func() int
	Sessions        func() int
}

func New(db *gorm.DB, counters Counters) (*Collector, error) {
	if err := db.AutoMigrate(&Snapshot{}); err != nil {
		return nil, ibukierr.Wrap(ibukierr.KindUnsupported, "migrating stats schema", err)
	}
	return &Collector{
		db:                  db,
		startedAt:           time.Now(),
		countPlayers:        counters.Players,
		countPlayingPlayers: counters.PlayingPlayers,
		countSessions:       counters.Sessions,
	}, nil
}

// Collect builds a fresh Snapshot from the live counters without touching
// the database.
func (c *Collector) Collect() Snapshot {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return Snapshot{
		CapturedAt:     time.Now(),
		Players:        c.countPlayers(),
		PlayingPlayers: c.countPlayingPlayers(),
		Sessions:       c.countSessions(),
		MemoryUsedMB:   mem.Alloc / (1024 * 1024),
		Uptime:         time.Since(c.startedAt).Milliseconds(),
	}
}

// Persist collects and stores a snapshot row (called by the scheduler's
// periodic stats task).
func (c *Collector) Persist() (Snapshot, error) {
	snap := c.Collect()
	if err := c.db.Create(&snap).Error; err != nil {
		return snap, ibukierr.Wrap(ibukierr.KindUnsupported, "persisting stats snapshot", err)
	}
	return snap, nil
}

// Recent returns the last n persisted snapshots, newest first.
func (c *Collector) Recent(n int) ([]Snapshot, error) {
	var snaps []Snapshot
	if err := c.db.Order("captured_at desc").Limit(n).Find(&snaps).Error; err != nil {
		return nil, ibukierr.Wrap(ibukierr.KindUnsupported, "querying stats history", err)
	}
	return snaps, nil
}
