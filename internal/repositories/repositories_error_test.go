package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/desertthunder/tunename/internal/cache"
	"github.com/desertthunder/tunename/internal/models"
	"github.com/desertthunder/tunename/internal/shared"
)

var errDriver = errors.New("driver: disk I/O error")

func newMock(t *testing.T) (*ContactRepository, *PlaylistRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewContactRepository(db), NewPlaylistRepository(db), mock
}

func TestContactRepositoryErrors(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		t.Run("ValidationError", func(t *testing.T) {
			repo := NewContactRepository(setupTestDB(t))
			if err := repo.Create(models.NewPersistedContact(0, models.Contact{FirstName: "Anna"})); err == nil {
				t.Fatal("expected validation error for missing address book ID")
			}
		})

		t.Run("DuplicateExternalID", func(t *testing.T) {
			repo := NewContactRepository(setupTestDB(t))
			if err := repo.Create(models.NewPersistedContact(0, models.Contact{ID: "ab-1"})); err != nil {
				t.Fatalf("failed to create first contact: %v", err)
			}
			if err := repo.Create(models.NewPersistedContact(0, models.Contact{ID: "ab-1"})); err == nil {
				t.Fatal("expected error for duplicate external ID")
			}
		})

		t.Run("SequenceFailure", func(t *testing.T) {
			repo, _, mock := newMock(t)
			mock.ExpectQuery("UPDATE contacts_sequence").WillReturnError(errDriver)

			err := repo.Create(models.NewPersistedContact(0, models.Contact{ID: "ab-1"}))
			if !errors.Is(err, errDriver) {
				t.Fatalf("expected driver error, got %v", err)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Error(err)
			}
		})
	})

	t.Run("NotFound", func(t *testing.T) {
		repo := NewContactRepository(setupTestDB(t))

		if _, err := repo.Get("missing"); !errors.Is(err, shared.ErrContactNotFound) {
			t.Errorf("Get: expected ErrContactNotFound, got %v", err)
		}

		contact := models.NewPersistedContact(0, models.Contact{ID: "ab-1"})
		contact.SetID("missing")
		if err := repo.Update(contact); !errors.Is(err, shared.ErrContactNotFound) {
			t.Errorf("Update: expected ErrContactNotFound, got %v", err)
		}
		if err := repo.Delete("missing"); !errors.Is(err, shared.ErrContactNotFound) {
			t.Errorf("Delete: expected ErrContactNotFound, got %v", err)
		}
	})

	t.Run("SetFiltered", func(t *testing.T) {
		t.Run("UnknownContactKeepsSelection", func(t *testing.T) {
			repo := NewContactRepository(setupTestDB(t))
			seedContacts(t, repo, models.Contact{ID: "ab-1", FirstName: "Anna"})
			if err := repo.SetFiltered([]string{"ab-1"}); err != nil {
				t.Fatalf("failed to set filter: %v", err)
			}

			err := repo.SetFiltered([]string{"ab-1", "ab-9"})
			if !errors.Is(err, shared.ErrContactNotFound) {
				t.Fatalf("expected ErrContactNotFound, got %v", err)
			}

			filtered, _ := repo.Contacts(true)
			if len(filtered) != 1 || filtered[0].ID != "ab-1" {
				t.Errorf("expected previous selection to survive, got %v", filtered)
			}
		})

		t.Run("RollsBackOnDriverError", func(t *testing.T) {
			repo, _, mock := newMock(t)
			mock.ExpectBegin()
			mock.ExpectExec("UPDATE contacts SET filtered = 0").WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectExec("UPDATE contacts SET filtered = 1").WillReturnError(errDriver)
			mock.ExpectRollback()

			if err := repo.SetFiltered([]string{"ab-1"}); !errors.Is(err, errDriver) {
				t.Fatalf("expected driver error, got %v", err)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Error(err)
			}
		})
	})

	t.Run("List", func(t *testing.T) {
		t.Run("QueryError", func(t *testing.T) {
			repo, _, mock := newMock(t)
			mock.ExpectQuery("SELECT (.+) FROM contacts").WillReturnError(errDriver)

			if _, err := repo.Contacts(false); !errors.Is(err, errDriver) {
				t.Fatalf("expected driver error, got %v", err)
			}
		})

		t.Run("ScanError", func(t *testing.T) {
			repo, _, mock := newMock(t)
			rows := sqlmock.NewRows([]string{"id"}).AddRow("only-one-column")
			mock.ExpectQuery("SELECT (.+) FROM contacts").WillReturnRows(rows)

			if _, err := repo.List(nil); err == nil {
				t.Fatal("expected scan error")
			}
		})
	})
}

func TestPlaylistRepositoryErrors(t *testing.T) {
	t.Run("NotFound", func(t *testing.T) {
		repo := NewPlaylistRepository(setupTestDB(t))

		if _, err := repo.Get("missing"); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("Get: expected ErrPlaylistNotFound, got %v", err)
		}
		if err := repo.SetLocation("missing", "spotify:playlist:x"); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("SetLocation: expected ErrPlaylistNotFound, got %v", err)
		}
		if err := repo.Delete("missing"); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("Delete: expected ErrPlaylistNotFound, got %v", err)
		}
	})

	t.Run("EntryInsertRollsBack", func(t *testing.T) {
		_, repo, mock := newMock(t)
		mock.ExpectQuery("UPDATE playlists_sequence").WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(1))
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO playlists").WillReturnResult(sqlmock.NewResult(1, 1))
		prep := mock.ExpectPrepare("INSERT INTO playlist_entries")
		prep.ExpectExec().WillReturnError(errDriver)
		mock.ExpectRollback()

		pl := testPlaylist(2)
		if err := repo.Archive(&pl, 2); !errors.Is(err, errDriver) {
			t.Fatalf("expected driver error, got %v", err)
		}
		if pl.ID != "" {
			t.Error("expected playlist ID to stay empty after a failed archive")
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
	})

	t.Run("CommitError", func(t *testing.T) {
		_, repo, mock := newMock(t)
		mock.ExpectQuery("UPDATE playlists_sequence").WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(1))
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO playlists").WillReturnResult(sqlmock.NewResult(1, 1))
		prep := mock.ExpectPrepare("INSERT INTO playlist_entries")
		prep.ExpectExec().WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit().WillReturnError(errDriver)

		pl := testPlaylist(1)
		if err := repo.Archive(&pl, 1); !errors.Is(err, errDriver) {
			t.Fatalf("expected driver error, got %v", err)
		}
	})
}

func TestSearchCacheRepositoryErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewSearchCacheRepository(db)
	ctx := context.Background()

	t.Run("Get", func(t *testing.T) {
		mock.ExpectQuery("SELECT value, expires_at FROM search_cache").WillReturnError(errDriver)

		_, err := repo.Get(ctx, "search:anna")
		var cacheErr *cache.CacheError
		if !errors.As(err, &cacheErr) || cacheErr.Operation != "get" {
			t.Fatalf("expected get CacheError, got %v", err)
		}
	})

	t.Run("Set", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO search_cache").WillReturnError(errDriver)

		err := repo.Set(ctx, "search:anna", []byte("[]"), time.Hour)
		if !errors.Is(err, errDriver) {
			t.Fatalf("expected driver error, got %v", err)
		}
	})

	t.Run("Exists", func(t *testing.T) {
		mock.ExpectQuery("SELECT expires_at FROM search_cache").WillReturnError(errDriver)

		if _, err := repo.Exists(ctx, "search:anna"); !errors.Is(err, errDriver) {
			t.Fatalf("expected driver error, got %v", err)
		}
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
