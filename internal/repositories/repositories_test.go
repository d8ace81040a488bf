package repositories

import (
	"database/sql"
	"errors"
	"slices"
	"testing"

	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/music"
	"github.com/desertthunder/songbook/internal/shared"
	tu "github.com/desertthunder/songbook/internal/testing"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(shared.MemoryDatabase)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	for want := 1; want <= 3; want++ {
		got, err := NextSequence(db, "songs")
		if err != nil {
			t.Fatalf("failed to get sequence: %v", err)
		}
		if got != want {
			t.Errorf("expected sequence %d, got %d", want, got)
		}
	}

	if _, err := NextSequence(db, "nope"); err == nil {
		t.Error("expected error for unknown sequence table")
	}
}

func TestSongRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		song := models.NewPersistedSong(0, tu.SampleSongs(t)[0].WithID(""))

		if err := repo.Create(song); err != nil {
			t.Fatalf("failed to create song: %v", err)
		}

		if song.ID() == "" {
			t.Error("song ID should be set after creation")
		}
		if song.Sequence() != 1 {
			t.Errorf("expected sequence 1, got %d", song.Sequence())
		}
	})

	t.Run("Create keeps document ID", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		song := models.NewPersistedSong(0, tu.SampleSongs(t)[1])

		if err := repo.Create(song); err != nil {
			t.Fatalf("failed to create song: %v", err)
		}
		if song.ID() != "orchidej" {
			t.Errorf("expected ID orchidej, got %s", song.ID())
		}
	})

	t.Run("Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		want := tu.SampleSongs(t)[0]
		song := models.NewPersistedSong(0, want)

		if err := repo.Create(song); err != nil {
			t.Fatalf("failed to create song: %v", err)
		}

		retrieved, err := repo.Get(song.ID())
		if err != nil {
			t.Fatalf("failed to get song: %v", err)
		}

		got := retrieved.Song()
		if got.Title != want.Title || got.Artist != want.Artist || got.Key != want.Key {
			t.Errorf("expected %+v, got %+v", want, got)
		}
		if got.DateAdded != want.DateAdded {
			t.Errorf("expected date %v, got %v", want.DateAdded, got.DateAdded)
		}
		if got.Range == nil || *got.Range != *want.Range {
			t.Errorf("expected range %v, got %v", want.Range, got.Range)
		}
		if !slices.Equal(got.Songbooks, want.Songbooks) {
			t.Errorf("expected songbooks %v, got %v", want.Songbooks, got.Songbooks)
		}
		if got.Capo != 2 || got.Tempo != 87 || got.Content != want.Content {
			t.Errorf("scalar fields not round-tripped: %+v", got)
		}
	})

	t.Run("Get song without range", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		song := models.NewPersistedSong(0, tu.SampleSongs(t)[3])
		if err := repo.Create(song); err != nil {
			t.Fatalf("failed to create song: %v", err)
		}

		retrieved, err := repo.Get(song.ID())
		if err != nil {
			t.Fatalf("failed to get song: %v", err)
		}
		if retrieved.Song().Range != nil {
			t.Errorf("expected absent range, got %v", retrieved.Song().Range)
		}
	})

	t.Run("Update", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		song := models.NewPersistedSong(0, tu.SampleSongs(t)[2])
		if err := repo.Create(song); err != nil {
			t.Fatalf("failed to create song: %v", err)
		}

		vr, _ := music.NewVocalRange(2, 16)
		song.SetSong(song.Song().WithCapo(0).WithRange(vr).WithSongbooks("ballads"))
		if err := repo.Update(song); err != nil {
			t.Fatalf("failed to update song: %v", err)
		}

		retrieved, err := repo.Get(song.ID())
		if err != nil {
			t.Fatalf("failed to get song: %v", err)
		}
		got := retrieved.Song()
		if got.Capo != 0 || got.Range.Semitones() != 14 {
			t.Errorf("update not persisted: %+v", got)
		}
		if !slices.Equal(got.Songbooks, []string{"ballads"}) {
			t.Errorf("expected songbooks [ballads], got %v", got.Songbooks)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		song := models.NewPersistedSong(0, tu.SampleSongs(t)[0])
		if err := repo.Create(song); err != nil {
			t.Fatalf("failed to create song: %v", err)
		}

		if err := repo.Delete(song.ID()); err != nil {
			t.Fatalf("failed to delete song: %v", err)
		}

		if _, err := repo.Get(song.ID()); !errors.Is(err, shared.ErrSongNotFound) {
			t.Errorf("expected ErrSongNotFound for deleted song, got %v", err)
		}

		n, err := repo.Count()
		if err != nil {
			t.Fatalf("failed to count: %v", err)
		}
		if n != 0 {
			t.Errorf("expected 0 songs after delete, got %d", n)
		}
	})

	t.Run("List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		for _, s := range tu.SampleSongs(t) {
			if err := repo.Create(models.NewPersistedSong(0, s)); err != nil {
				t.Fatalf("failed to create song: %v", err)
			}
		}

		tc := []struct {
			name     string
			criteria map[string]any
			want     []string
		}{
			{name: "all", criteria: nil, want: []string{"wonderwall", "orchidej", "hallelujah", "holubi-dum"}},
			{name: "by language", criteria: map[string]any{"language": "cs"}, want: []string{"orchidej", "holubi-dum"}},
			{name: "by songbook", criteria: map[string]any{"songbook": "czech"}, want: []string{"holubi-dum"}},
			{name: "both", criteria: map[string]any{"language": "en", "songbook": "campfire"}, want: []string{"wonderwall"}},
			{name: "no match", criteria: map[string]any{"language": "de"}, want: nil},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				songs, err := repo.List(tt.criteria)
				if err != nil {
					t.Fatalf("failed to list songs: %v", err)
				}
				var ids []string
				for _, s := range songs {
					ids = append(ids, s.ID())
				}
				if !slices.Equal(ids, tt.want) {
					t.Errorf("expected %v, got %v", tt.want, ids)
				}
			})
		}

		songs, err := repo.Songs()
		if err != nil {
			t.Fatalf("failed to list songs: %v", err)
		}
		if !slices.Equal(songs[0].Songbooks, []string{"90s", "campfire"}) {
			t.Errorf("expected songbooks loaded on list, got %v", songs[0].Songbooks)
		}
	})

	t.Run("ReplaceAll", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		sample := tu.SampleSongs(t)

		if _, err := repo.ReplaceAll(sample); err != nil {
			t.Fatalf("failed to replace catalog: %v", err)
		}
		stored, err := repo.ReplaceAll(sample[:2])
		if err != nil {
			t.Fatalf("failed to replace catalog again: %v", err)
		}
		if stored[0].Sequence() != 5 {
			t.Errorf("expected sequence to continue at 5, got %d", stored[0].Sequence())
		}

		n, _ := repo.Count()
		if n != 2 {
			t.Errorf("expected 2 songs after replacement, got %d", n)
		}

		next, err := NextSequence(db, "songs")
		if err != nil {
			t.Fatalf("failed to get sequence: %v", err)
		}
		if next != 7 {
			t.Errorf("expected sequence counter to advance past replacement, got %d", next)
		}
	})
}

func TestSongRepositoryErrors(t *testing.T) {
	t.Run("Create validation error", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		song := models.NewPersistedSong(0, models.Song{Title: "No Artist", Key: music.C})

		if err := repo.Create(song); !errors.Is(err, models.ErrMalformedSong) {
			t.Fatalf("expected ErrMalformedSong, got %v", err)
		}
	})

	t.Run("Get not found", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		if _, err := NewSongRepository(db).Get("nonexistent-id"); !errors.Is(err, shared.ErrSongNotFound) {
			t.Fatalf("expected ErrSongNotFound, got %v", err)
		}
	})

	t.Run("Update not found", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		song := models.NewPersistedSong(1, tu.SampleSongs(t)[0])
		if err := NewSongRepository(db).Update(song); !errors.Is(err, shared.ErrSongNotFound) {
			t.Fatalf("expected ErrSongNotFound, got %v", err)
		}
	})

	t.Run("Delete twice", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		song := models.NewPersistedSong(0, tu.SampleSongs(t)[0])
		if err := repo.Create(song); err != nil {
			t.Fatalf("failed to create song: %v", err)
		}
		if err := repo.Delete(song.ID()); err != nil {
			t.Fatalf("failed to delete song: %v", err)
		}
		if err := repo.Delete(song.ID()); !errors.Is(err, shared.ErrSongNotFound) {
			t.Fatalf("expected ErrSongNotFound on second delete, got %v", err)
		}
	})

	t.Run("ReplaceAll rolls back on duplicate IDs", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		sample := tu.SampleSongs(t)
		if _, err := repo.ReplaceAll(sample); err != nil {
			t.Fatalf("failed to replace catalog: %v", err)
		}

		dup := []models.Song{sample[0], sample[0]}
		if _, err := repo.ReplaceAll(dup); err == nil {
			t.Fatal("expected error for duplicate IDs")
		}

		n, _ := repo.Count()
		if n != len(sample) {
			t.Errorf("previous catalog should survive a failed replacement, got %d songs", n)
		}
	})
}

func TestImportRepository(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewImportRepository(db)

	if _, err := repo.Latest(); err == nil {
		t.Error("expected error with no imports recorded")
	}

	run := models.NewImportRun("songs.json")
	if err := repo.Start(run); err != nil {
		t.Fatalf("failed to start import: %v", err)
	}
	if err := repo.Finish(run); err == nil {
		t.Error("finishing an incomplete run should fail")
	}

	run.Complete(4, 1)
	if err := repo.Finish(run); err != nil {
		t.Fatalf("failed to finish import: %v", err)
	}

	latest, err := repo.Latest()
	if err != nil {
		t.Fatalf("failed to load latest import: %v", err)
	}
	if latest.ID() != run.ID() || latest.Imported() != 4 || latest.Failed() != 1 || !latest.Done() {
		t.Errorf("unexpected latest import: id=%s imported=%d failed=%d done=%v",
			latest.ID(), latest.Imported(), latest.Failed(), latest.Done())
	}
}
