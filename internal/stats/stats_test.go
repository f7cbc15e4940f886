package stats

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("opening in-memory sqlite: %v", err)
	}
	return db
}

func TestCollectReflectsCounters(t *testing.T) {
	db := openTestDB(t)
	c, err := New(db, Counters{
		Players:        func() int { return 3 },
		PlayingPlayers: func() int { return 2 },
		Sessions:       func() int { return 1 },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	snap := c.Collect()
	if snap.Players != 3 || snap.PlayingPlayers != 2 || snap.Sessions != 1 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestPersistThenRecent(t *testing.T) {
	db := openTestDB(t)
	c, err := New(db, Counters{
		Players:        func() int { return 1 },
		PlayingPlayers: func() int { return 1 },
		Sessions:       func() int { return 1 },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := c.Persist(); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if _, err := c.Persist(); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	recent, err := c.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 persisted snapshots, got %d", len(recent))
	}
}
