package user_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/saulo-duarte/mathbank-lambda/internal/access"
	"github.com/saulo-duarte/mathbank-lambda/internal/user"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&user.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := user.NewRepository(openTestDB(t))

	u := &user.User{ID: uuid.New(), Email: "repo@example.com", Role: access.RoleFree}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	t.Run("Duplicate", func(t *testing.T) {
		dup := &user.User{ID: uuid.New(), Email: "repo@example.com"}
		if err := repo.Create(ctx, dup); !errors.Is(err, user.ErrDuplicate) {
			t.Errorf("expected ErrDuplicate, got %v", err)
		}
	})

	t.Run("FindByEmail", func(t *testing.T) {
		got, err := repo.FindByEmail(ctx, "repo@example.com")
		if err != nil {
			t.Fatalf("FindByEmail failed: %v", err)
		}
		if got.ID != u.ID || got.Role != access.RoleFree {
			t.Errorf("unexpected user: %+v", got)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		if _, err := repo.FindByEmail(ctx, "missing@example.com"); !errors.Is(err, user.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("UpdateRole", func(t *testing.T) {
		if err := repo.UpdateRole(ctx, u.ID.String(), access.RolePro, "cus_9"); err != nil {
			t.Fatalf("UpdateRole failed: %v", err)
		}
		got, err := repo.FindByCustomerID(ctx, "cus_9")
		if err != nil {
			t.Fatalf("FindByCustomerID failed: %v", err)
		}
		if got.Role != access.RolePro {
			t.Errorf("expected pro, got %s", got.Role)
		}
		if err := repo.UpdateRole(ctx, uuid.NewString(), access.RolePro, ""); !errors.Is(err, user.ErrNotFound) {
			t.Errorf("expected ErrNotFound for unknown id, got %v", err)
		}
	})
}
