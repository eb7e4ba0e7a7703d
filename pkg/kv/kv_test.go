package kv_test

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/haivivi/colgraph/pkg/kv"
)

// backends runs fn against every Store implementation.
func backends(t *testing.T, fn func(t *testing.T, s kv.Store)) {
	t.Run("memory", func(t *testing.T) {
		s := kv.NewMemory()
		t.Cleanup(func() { s.Close() })
		fn(t, s)
	})
	t.Run("badger", func(t *testing.T) {
		s, err := kv.NewBadger(kv.BadgerOptions{InMemory: true})
		if err != nil {
			t.Fatalf("NewBadger: %v", err)
		}
		t.Cleanup(func() { s.Close() })
		fn(t, s)
	})
}

func TestGetSet(t *testing.T) {
	backends(t, func(t *testing.T, s kv.Store) {
		ctx := context.Background()
		key := kv.Key{"g", "v", "123"}

		if _, err := s.Get(ctx, key); !errors.Is(err, kv.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if err := s.Set(ctx, key, []byte("hello")); err != nil {
			t.Fatalf("Set: %v", err)
		}
		if err := s.Set(ctx, key, []byte("world")); err != nil {
			t.Fatalf("Set overwrite: %v", err)
		}
		got, err := s.Get(ctx, key)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if string(got) != "world" {
			t.Fatalf("Get = %q, want %q", got, "world")
		}
	})
}

func TestList(t *testing.T) {
	backends(t, func(t *testing.T, s kv.Store) {
		ctx := context.Background()
		entries := []kv.Entry{
			{Key: kv.Key{"g", "v", "b"}, Value: []byte("2")},
			{Key: kv.Key{"g", "v", "a"}, Value: []byte("1")},
			{Key: kv.Key{"g", "e", "a", "KNOWS", "b"}, Value: nil},
			{Key: kv.Key{"gx", "v", "c"}, Value: []byte("3")},
		}
		if err := s.BatchSet(ctx, entries); err != nil {
			t.Fatalf("BatchSet: %v", err)
		}

		var got []string
		for e, err := range s.List(ctx, kv.Key{"g", "v"}) {
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			got = append(got, e.Key.String()+"="+string(e.Value))
		}
		want := []string{"g:v:a=1", "g:v:b=2"}
		if !slices.Equal(got, want) {
			t.Fatalf("List g:v = %v, want %v", got, want)
		}

		// "g" must not match "gx".
		n := 0
		for _, err := range s.List(ctx, kv.Key{"g"}) {
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			n++
		}
		if n != 3 {
			t.Fatalf("List g: got %d entries, want 3", n)
		}

		n = 0
		for range s.List(ctx, nil) {
			n++
		}
		if n != 4 {
			t.Fatalf("List all: got %d entries, want 4", n)
		}
	})
}

func TestListEarlyBreak(t *testing.T) {
	backends(t, func(t *testing.T, s kv.Store) {
		ctx := context.Background()
		for _, id := range []string{"a", "b", "c"} {
			if err := s.Set(ctx, kv.Key{"p", id}, nil); err != nil {
				t.Fatal(err)
			}
		}
		n := 0
		for _, err := range s.List(ctx, kv.Key{"p"}) {
			if err != nil {
				t.Fatal(err)
			}
			n++
			if n == 2 {
				break
			}
		}
		if n != 2 {
			t.Fatalf("iterated %d, want 2", n)
		}
	})
}

func TestBatchDelete(t *testing.T) {
	backends(t, func(t *testing.T, s kv.Store) {
		ctx := context.Background()
		if err := s.BatchSet(ctx, []kv.Entry{
			{Key: kv.Key{"a", "1"}, Value: []byte("v1")},
			{Key: kv.Key{"a", "2"}, Value: []byte("v2")},
		}); err != nil {
			t.Fatal(err)
		}
		if err := s.BatchDelete(ctx, []kv.Key{{"a", "1"}, {"a", "missing"}}); err != nil {
			t.Fatalf("BatchDelete: %v", err)
		}
		if _, err := s.Get(ctx, kv.Key{"a", "1"}); !errors.Is(err, kv.ErrNotFound) {
			t.Fatalf("a:1 after delete: %v", err)
		}
		if _, err := s.Get(ctx, kv.Key{"a", "2"}); err != nil {
			t.Fatalf("a:2 after delete: %v", err)
		}
	})
}

func TestSegmentsMayContainColon(t *testing.T) {
	backends(t, func(t *testing.T, s kv.Store) {
		ctx := context.Background()
		key := kv.Key{"g", "v", "person:alice"}
		if err := s.Set(ctx, key, []byte("x")); err != nil {
			t.Fatalf("Set: %v", err)
		}
		for e, err := range s.List(ctx, kv.Key{"g", "v"}) {
			if err != nil {
				t.Fatal(err)
			}
			if e.Key[2] != "person:alice" {
				t.Fatalf("decoded segment = %q", e.Key[2])
			}
		}
	})
}

func TestInvalidKey(t *testing.T) {
	backends(t, func(t *testing.T, s kv.Store) {
		ctx := context.Background()
		bad := kv.Key{"g", "bad\x1fseg"}
		if err := s.Set(ctx, bad, nil); !errors.Is(err, kv.ErrInvalidKey) {
			t.Fatalf("Set: expected ErrInvalidKey, got %v", err)
		}
		if _, err := s.Get(ctx, bad); !errors.Is(err, kv.ErrInvalidKey) {
			t.Fatalf("Get: expected ErrInvalidKey, got %v", err)
		}
		for _, err := range s.List(ctx, bad) {
			if !errors.Is(err, kv.ErrInvalidKey) {
				t.Fatalf("List: expected ErrInvalidKey, got %v", err)
			}
		}
	})
}

func TestMemoryValueIsolation(t *testing.T) {
	ctx := context.Background()
	s := kv.NewMemory()
	key := kv.Key{"iso"}
	original := []byte("original")
	if err := s.Set(ctx, key, original); err != nil {
		t.Fatal(err)
	}
	original[0] = 'X'
	got, _ := s.Get(ctx, key)
	if got[0] != 'o' {
		t.Fatal("store value was mutated via original slice")
	}
	got[0] = 'Y'
	got2, _ := s.Get(ctx, key)
	if got2[0] != 'o' {
		t.Fatal("store value was mutated via returned slice")
	}
	if s.Len() != 1 {
		t.Fatalf("Len = %d, want 1", s.Len())
	}
}

func TestKeyAppend(t *testing.T) {
	base := kv.Key{"g"}
	a := base.Append("v", "1")
	b := base.Append("e")
	if a.String() != "g:v:1" || b.String() != "g:e" || base.String() != "g" {
		t.Fatalf("Append aliasing: a=%s b=%s base=%s", a, b, base)
	}
}
