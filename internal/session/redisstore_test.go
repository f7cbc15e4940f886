package session

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
)

func TestRedisResumeStoreRememberAndSeen(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisResumeStore(client)
	ctx := context.Background()

	mock.ExpectSet("ibuki:session:abc", "1", time.Minute).SetVal("OK")
	if err := store.Remember(ctx, "abc", time.Minute); err != nil {
		t.Fatalf("Remember: %v", err)
	}

	mock.ExpectExists("ibuki:session:abc").SetVal(1)
	seen, err := store.Seen(ctx, "abc")
	if err != nil {
		t.Fatalf("Seen: %v", err)
	}
	if !seen {
		t.Fatal("expected session to be seen")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestInProcessResumeStoreExpiry(t *testing.T) {
	store := NewInProcessResumeStore()
	ctx := context.Background()
	if err := store.Remember(ctx, "s1", -time.Second); err != nil {
		t.Fatalf("Remember: %v", err)
	}
	seen, err := store.Seen(ctx, "s1")
	if err != nil {
		t.Fatalf("Seen: %v", err)
	}
	if seen {
		t.Fatal("expected expired entry to report unseen")
	}
}
