package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Logged1n/SharpBuy-sub000/internal/domain"
)

func TestMemorySetGet(t *testing.T) {
	m := NewMemory()
	defer m.Close()
	ctx := context.Background()

	if err := m.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set() unexpected error: %v", err)
	}
	got, err := m.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}
	if string(got) != "v" {
		t.Fatalf("Get() = %q, want %q", got, "v")
	}
}

func TestMemoryMissingKey(t *testing.T) {
	m := NewMemory()
	defer m.Close()

	if _, err := m.Get(context.Background(), "absent"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Get() error = %v, want domain.ErrNotFound", err)
	}
}

func TestMemoryZeroTTLExpiresImmediately(t *testing.T) {
	m := NewMemory()
	defer m.Close()
	ctx := context.Background()

	if err := m.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set() unexpected error: %v", err)
	}
	if _, err := m.Get(ctx, "k"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Get() error = %v, want domain.ErrNotFound", err)
	}
}

func TestMemoryExpiry(t *testing.T) {
	m := NewMemory()
	defer m.Close()
	ctx := context.Background()

	if err := m.Set(ctx, "k", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set() unexpected error: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	if _, err := m.Get(ctx, "k"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Get() after ttl error = %v, want domain.ErrNotFound", err)
	}
}

func TestMemoryValueIsolation(t *testing.T) {
	m := NewMemory()
	defer m.Close()
	ctx := context.Background()

	src := []byte("abc")
	if err := m.Set(ctx, "k", src, time.Minute); err != nil {
		t.Fatalf("Set() unexpected error: %v", err)
	}
	src[0] = 'x'
	got, err := m.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}
	if string(got) != "abc" {
		t.Fatalf("Get() = %q, stored value was mutated through the caller's slice", got)
	}
}
