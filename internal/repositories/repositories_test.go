package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/desertthunder/sonic57/internal/models"
	"github.com/desertthunder/sonic57/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.OpenDatabase(context.Background(), shared.DatabaseConfig{Path: ":memory:"})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

func TestTrackRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Create assigns id and defaults", func(t *testing.T) {
		repo := NewTrackRepository(setupTestDB(t))

		row, err := repo.Create(ctx, models.CreateTrackRequest{Title: "T", Artist: "A"})
		if err != nil {
			t.Fatalf("failed to create track: %v", err)
		}

		if row.ID == 0 {
			t.Error("expected server-assigned id")
		}
		if row.Genre != "Unknown" {
			t.Errorf("expected default genre Unknown, got %q", row.Genre)
		}
		if row.Album != "" || row.Cover != "" || row.AudioSrc != "" || row.Duration != "" {
			t.Errorf("expected empty optional fields, got %+v", row)
		}
	})

	t.Run("Create rejects missing artist", func(t *testing.T) {
		repo := NewTrackRepository(setupTestDB(t))

		_, err := repo.Create(ctx, models.CreateTrackRequest{Title: "T"})
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Fatalf("expected ErrMissingArgument, got %v", err)
		}

		n, _ := repo.Count(ctx)
		if n != 0 {
			t.Errorf("nothing should be written on validation failure, got %d rows", n)
		}
	})

	t.Run("Round trip preserves title and artist", func(t *testing.T) {
		repo := NewTrackRepository(setupTestDB(t))

		created, err := repo.Create(ctx, models.CreateTrackRequest{
			Title:    "T",
			Artist:   "A",
			Cover:    "https://example.com/c.jpg",
			AudioURL: "https://example.com/a.mp3",
		})
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}

		rows, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}

		var found bool
		for _, r := range rows {
			if r.ID == created.ID {
				found = true
				if r.Title != "T" || r.Artist != "A" {
					t.Errorf("fields not preserved: %+v", r)
				}
				if r.AudioSrc != "https://example.com/a.mp3" {
					t.Errorf("audio_src not stored: %q", r.AudioSrc)
				}
			}
		}
		if !found {
			t.Errorf("created id %d missing from list", created.ID)
		}
	})

	t.Run("List orders newest first", func(t *testing.T) {
		repo := NewTrackRepository(setupTestDB(t))

		for i := range 3 {
			if _, err := repo.Create(ctx, models.CreateTrackRequest{Title: "T" + strconv.Itoa(i), Artist: "A"}); err != nil {
				t.Fatalf("create %d failed: %v", i, err)
			}
		}

		rows, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		for i := 1; i < len(rows); i++ {
			if rows[i].ID >= rows[i-1].ID {
				t.Errorf("rows not in descending id order: %d then %d", rows[i-1].ID, rows[i].ID)
			}
		}
		if rows[0].Title != "T2" {
			t.Errorf("expected newest T2 first, got %s", rows[0].Title)
		}
	})

	t.Run("List on empty table returns empty slice", func(t *testing.T) {
		repo := NewTrackRepository(setupTestDB(t))

		rows, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if rows == nil || len(rows) != 0 {
			t.Errorf("expected empty non-nil slice, got %#v", rows)
		}
	})

	t.Run("NULL columns scan as empty strings", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewTrackRepository(db)

		if _, err := db.Exec(`INSERT INTO tracks (title, artist) VALUES ('raw', 'insert')`); err != nil {
			t.Fatal(err)
		}

		rows, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if rows[0].Genre != "" || rows[0].Cover != "" {
			t.Errorf("expected empty strings for NULLs, got %+v", rows[0])
		}
		if rows[0].Track().Genre != "Unknown" {
			t.Error("client mapping should fill Unknown genre")
		}
	})

	t.Run("Get missing returns ErrTrackNotFound", func(t *testing.T) {
		repo := NewTrackRepository(setupTestDB(t))

		if _, err := repo.Get(ctx, 999); !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("expected ErrTrackNotFound, got %v", err)
		}
	})

	t.Run("Delete is idempotent", func(t *testing.T) {
		repo := NewTrackRepository(setupTestDB(t))

		row, err := repo.Create(ctx, models.CreateTrackRequest{Title: "T", Artist: "A"})
		if err != nil {
			t.Fatal(err)
		}

		removed, err := repo.Delete(ctx, row.ID)
		if err != nil || !removed {
			t.Fatalf("first delete: removed=%v err=%v", removed, err)
		}

		removed, err = repo.Delete(ctx, row.ID)
		if err != nil {
			t.Fatalf("second delete should not error: %v", err)
		}
		if removed {
			t.Error("second delete should report nothing removed")
		}
	})

	t.Run("Ping", func(t *testing.T) {
		repo := NewTrackRepository(setupTestDB(t))

		h, err := repo.Ping(ctx)
		if err != nil {
			t.Fatalf("ping failed: %v", err)
		}
		if h.SQLiteVersion == "" || h.ServerTime.IsZero() {
			t.Errorf("incomplete health: %+v", h)
		}
	})

	t.Run("Storage failure is wrapped", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewTrackRepository(db)
		db.Close()

		if _, err := repo.List(ctx); !errors.Is(err, shared.ErrStorage) {
			t.Errorf("expected ErrStorage, got %v", err)
		}
	})
}

func TestSeed(t *testing.T) {
	ctx := context.Background()

	t.Run("DefaultCatalog", func(t *testing.T) {
		catalog := DefaultCatalog()
		if len(catalog) != 10 {
			t.Fatalf("expected 10 default tracks, got %d", len(catalog))
		}
		if catalog[0].Title != "SILVER VOID" || catalog[9].Title != "WHITE NOISE" {
			t.Errorf("unexpected catalog bounds: %s .. %s", catalog[0].Title, catalog[9].Title)
		}
		if catalog[3].AudioURL != "https://www.soundhelix.com/examples/mp3/SoundHelix-Song-1.mp3" {
			t.Errorf("audio sources should cycle through three songs, got %s", catalog[3].AudioURL)
		}
		for _, c := range catalog {
			if err := c.Validate(); err != nil {
				t.Errorf("seed track %q invalid: %v", c.Title, err)
			}
		}
	})

	t.Run("Empty catalog seeds exactly once", func(t *testing.T) {
		repo := NewTrackRepository(setupTestDB(t))

		first, err := repo.Seed(ctx)
		if err != nil {
			t.Fatalf("seed failed: %v", err)
		}
		if !first.Seeded || first.Count != 10 {
			t.Errorf("expected seeded with 10, got %+v", first)
		}

		second, err := repo.Seed(ctx)
		if err != nil {
			t.Fatalf("second seed failed: %v", err)
		}
		if second.Seeded {
			t.Error("second seed should take the already-seeded path")
		}
		if second.Count != 10 {
			t.Errorf("count should be unchanged, got %d", second.Count)
		}

		n, _ := repo.Count(ctx)
		if n != 10 {
			t.Errorf("expected 10 rows, got %d", n)
		}
	})

	t.Run("Non-empty catalog is not seeded", func(t *testing.T) {
		repo := NewTrackRepository(setupTestDB(t))
		if _, err := repo.Create(ctx, models.CreateTrackRequest{Title: "T", Artist: "A"}); err != nil {
			t.Fatal(err)
		}

		res, err := repo.Seed(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if res.Seeded || res.Count != 1 {
			t.Errorf("expected untouched table of 1, got %+v", res)
		}
	})
}

func TestKVRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Set Get Keys Delete", func(t *testing.T) {
		repo := NewKVRepository(setupTestDB(t))

		if _, err := repo.Get(ctx, "missing"); !errors.Is(err, shared.ErrKeyNotFound) {
			t.Errorf("expected ErrKeyNotFound, got %v", err)
		}

		if err := repo.Set(ctx, "b", []byte("1")); err != nil {
			t.Fatal(err)
		}
		if err := repo.Set(ctx, "a", []byte("2")); err != nil {
			t.Fatal(err)
		}
		if err := repo.Set(ctx, "b", []byte("3")); err != nil {
			t.Fatal(err)
		}

		v, err := repo.Get(ctx, "b")
		if err != nil || string(v) != "3" {
			t.Errorf("expected upserted value 3, got %q (%v)", v, err)
		}

		keys, err := repo.Keys(ctx)
		if err != nil || len(keys) != 2 || keys[0] != "a" {
			t.Errorf("unexpected keys %v (%v)", keys, err)
		}

		if err := repo.Delete(ctx, "b"); err != nil {
			t.Fatal(err)
		}
		if err := repo.Delete(ctx, "b"); err != nil {
			t.Errorf("deleting absent key should not error: %v", err)
		}
	})

	t.Run("Concurrent writers", func(t *testing.T) {
		repo := NewKVRepository(setupTestDB(t))

		var wg sync.WaitGroup
		for i := range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := repo.Set(ctx, "k", []byte(strconv.Itoa(i))); err != nil {
					t.Errorf("set failed: %v", err)
				}
			}()
		}
		wg.Wait()

		keys, _ := repo.Keys(ctx)
		if len(keys) != 1 {
			t.Errorf("expected a single key, got %v", keys)
		}
	})
}
