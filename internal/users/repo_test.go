package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/dealerdesk-backend/pkg/db/dbtest"
	"github.com/angelmondragon/dealerdesk-backend/pkg/db/models"
)

func TestRepositoryCreateAndLookup(t *testing.T) {
	repo := NewRepository(dbtest.Open(t, &models.User{}))
	ctx := context.Background()

	created, err := repo.Create(ctx, CreateUserDTO{Email: "  Clerk@Dealer.example ", PasswordHash: "hash", Name: " Clerk "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Email != "clerk@dealer.example" || created.Name != "Clerk" || !created.IsActive {
		t.Fatalf("unexpected normalized user: %+v", created)
	}

	found, err := repo.FindByEmail(ctx, " CLERK@dealer.example")
	if err != nil {
		t.Fatalf("find by email: %v", err)
	}
	if found.ID != created.ID {
		t.Fatalf("expected id %s, got %s", created.ID, found.ID)
	}

	at := time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)
	if err := repo.UpdateLastLogin(ctx, created.ID, at); err != nil {
		t.Fatalf("update last login: %v", err)
	}
	reloaded, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if reloaded.LastLoginAt == nil || !reloaded.LastLoginAt.Equal(at) {
		t.Fatalf("expected last login %s, got %v", at, reloaded.LastLoginAt)
	}

	if _, err := repo.FindByEmail(ctx, "nobody@dealer.example"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record not found, got %v", err)
	}
	if err := repo.UpdateLastLogin(ctx, uuid.New(), at); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected missing user to fail last login update, got %v", err)
	}
}

func TestFromModelOmitsHash(t *testing.T) {
	if FromModel(nil) != nil {
		t.Fatal("expected nil dto for nil model")
	}
	dto := FromModel(&models.User{Email: "a@b.example", PasswordHash: "secret", Name: "A"})
	if dto.Email != "a@b.example" || dto.Name != "A" {
		t.Fatalf("unexpected dto: %+v", dto)
	}
}
