package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/msomdec/contacts-api/internal/domain"
	"github.com/msomdec/contacts-api/internal/repository/sqlite"
)

func TestContactRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewContactRepository(db)
	ctx := context.Background()

	contact := &domain.Contact{Name: "Ann", Email: "ann@example.com", Phone: "555-0100", Favorite: true}
	if err := repo.Create(ctx, contact); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if contact.ID == "" {
		t.Fatal("expected contact ID to be set")
	}

	found, err := repo.GetByID(ctx, contact.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if found.Name != "Ann" || found.Phone != "555-0100" || !found.Favorite {
		t.Fatalf("unexpected contact: %+v", found)
	}
}

func TestContactRepository_List(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewContactRepository(db)
	ctx := context.Background()

	empty, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List empty: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", empty)
	}

	for _, name := range []string{"Ann", "Bob"} {
		if err := repo.Create(ctx, &domain.Contact{Name: name, Email: name + "@example.com", Phone: "1"}); err != nil {
			t.Fatalf("Create %s: %v", name, err)
		}
	}

	contacts, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(contacts) != 2 {
		t.Fatalf("expected 2 contacts, got %d", len(contacts))
	}
}

func TestContactRepository_Update(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewContactRepository(db)
	ctx := context.Background()

	contact := &domain.Contact{Name: "Ann", Email: "ann@example.com", Phone: "1"}
	if err := repo.Create(ctx, contact); err != nil {
		t.Fatalf("Create: %v", err)
	}

	replacement := &domain.Contact{ID: contact.ID, Name: "Anna", Email: "anna@example.com", Phone: "2", Favorite: true}
	if err := repo.Update(ctx, replacement); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if replacement.CreatedAt.IsZero() {
		t.Fatal("expected Update to fill CreatedAt from the stored row")
	}

	found, err := repo.GetByID(ctx, contact.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if found.Name != "Anna" || found.Phone != "2" || !found.Favorite {
		t.Fatalf("unexpected contact after update: %+v", found)
	}

	err = repo.Update(ctx, &domain.Contact{ID: "missing", Name: "x", Email: "x", Phone: "x"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestContactRepository_SetFavorite(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewContactRepository(db)
	ctx := context.Background()

	contact := &domain.Contact{Name: "Ann", Email: "ann@example.com", Phone: "1"}
	if err := repo.Create(ctx, contact); err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := repo.SetFavorite(ctx, contact.ID, true)
	if err != nil {
		t.Fatalf("SetFavorite: %v", err)
	}
	if !updated.Favorite || updated.Name != "Ann" {
		t.Fatalf("unexpected contact: %+v", updated)
	}

	_, err = repo.SetFavorite(ctx, "missing", true)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestContactRepository_Delete(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewContactRepository(db)
	ctx := context.Background()

	contact := &domain.Contact{Name: "Ann", Email: "ann@example.com", Phone: "1"}
	if err := repo.Create(ctx, contact); err != nil {
		t.Fatalf("Create: %v", err)
	}

	removed, err := repo.Delete(ctx, contact.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if removed.ID != contact.ID || removed.Name != "Ann" {
		t.Fatalf("expected removed record to be returned, got %+v", removed)
	}

	_, err = repo.GetByID(ctx, contact.ID)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	_, err = repo.Delete(ctx, contact.ID)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for second delete, got %v", err)
	}
}
