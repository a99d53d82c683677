package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/ItsHarfer/CineShelf/internal/apperror"
	"github.com/ItsHarfer/CineShelf/internal/model"
)

// createTestUser creates a user and fails the test if it errors.
func createTestUser(t *testing.T, db *DB, name string) *model.User {
	t.Helper()
	user := &model.User{Name: name}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestCreateUser(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{Name: "Herbert"}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if user.ID == 0 {
		t.Error("CreateUser() did not set user.ID")
	}

	got, err := db.GetUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if got.Name != "Herbert" {
		t.Errorf("Name = %q, want %q", got.Name, "Herbert")
	}
}

func TestCreateUser_DuplicateNamesAllowed(t *testing.T) {
	db := newTestDB(t)

	a := createTestUser(t, db, "Lieselotte")
	b := createTestUser(t, db, "Lieselotte")

	if a.ID == b.ID {
		t.Errorf("two users share id %d", a.ID)
	}
}

// =========================================================================
// READ TESTS
// =========================================================================

func TestGetUser_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetUser(context.Background(), 404)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUser() error = %v, want ErrNotFound", err)
	}
}

func TestListUsers_Empty(t *testing.T) {
	db := newTestDB(t)

	users, err := db.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if users == nil {
		t.Error("ListUsers() returned nil, want empty slice")
	}
	if len(users) != 0 {
		t.Errorf("len(users) = %d, want 0", len(users))
	}
}

func TestListUsers_SortedByName(t *testing.T) {
	db := newTestDB(t)

	createTestUser(t, db, "Lieselotte")
	createTestUser(t, db, "Anna")
	createTestUser(t, db, "Herbert")

	users, err := db.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}

	want := []string{"Anna", "Herbert", "Lieselotte"}
	if len(users) != len(want) {
		t.Fatalf("len(users) = %d, want %d", len(users), len(want))
	}
	for i, name := range want {
		if users[i].Name != name {
			t.Errorf("users[%d].Name = %q, want %q", i, users[i].Name, name)
		}
	}
}

// =========================================================================
// DELETE TESTS
// =========================================================================

func TestDeleteUser_RemovesOwnedMovies(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	herbert := createTestUser(t, db, "Herbert")
	lieselotte := createTestUser(t, db, "Lieselotte")
	createTestMovie(t, db, herbert.ID, "Inception")
	createTestMovie(t, db, herbert.ID, "Interstellar")
	kept := createTestMovie(t, db, lieselotte.ID, "Inception")

	if err := db.DeleteUser(ctx, herbert.ID); err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}

	if _, err := db.GetUser(ctx, herbert.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUser() after delete error = %v, want ErrNotFound", err)
	}
	if n := countMovies(t, db, herbert.ID); n != 0 {
		t.Errorf("%d movies of deleted user remain", n)
	}

	// Other users' movies are untouched.
	if _, err := db.GetMovie(ctx, kept.ID); err != nil {
		t.Errorf("GetMovie(%d) error = %v, want nil", kept.ID, err)
	}
}

func TestDeleteUser_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.DeleteUser(context.Background(), 999)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("DeleteUser() error = %v, want ErrNotFound", err)
	}
}

// A raw delete bypasses DeleteUser; the foreign key cascade must still apply.
func TestForeignKeyCascade(t *testing.T) {
	db := newTestDB(t)

	user := createTestUser(t, db, "Herbert")
	createTestMovie(t, db, user.ID, "Her")

	if _, err := db.conn.Exec(`DELETE FROM users WHERE id = ?`, user.ID); err != nil {
		t.Fatalf("raw delete error = %v", err)
	}
	if n := countMovies(t, db, user.ID); n != 0 {
		t.Errorf("cascade left %d movies behind", n)
	}
}

func TestForeignKey_RejectsUnknownOwner(t *testing.T) {
	db := newTestDB(t)

	err := db.AddMovie(context.Background(), &model.Movie{
		Name:     "Orphan",
		Director: model.UnknownDirector,
		OwnerID:  12345,
	})
	if !errors.Is(err, apperror.ErrStorage) {
		t.Errorf("AddMovie() error = %v, want ErrStorage", err)
	}
}
