// Package testutil holds shared fixtures for tests that need a real store.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"dqdash/internal/config"
	"dqdash/internal/entity/db"
	"dqdash/internal/model"
)

// NewRepository opens a fresh migrated SQLite database under t.TempDir().
func NewRepository(t testing.TB) model.Repository {
	t.Helper()
	cfg := &config.Config{
		DBType: model.DBTypeSQLite,
		DBPath: filepath.Join(t.TempDir(), "test.db"),
	}
	repo, err := model.InitRepository(cfg)
	if err != nil {
		t.Fatalf("open test repository: %v", err)
	}
	return repo
}

// MustCreateUser inserts a user with an unusable password digest.
func MustCreateUser(t testing.TB, repo model.Repository, email string, isAdmin bool) *db.User {
	t.Helper()
	user := &db.User{
		Email:        email,
		PasswordHash: "!",
		IsActive:     true,
		IsAdmin:      isAdmin,
	}
	if err := repo.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return user
}

// MustCreateDataset inserts an active dataset with the given key.
func MustCreateDataset(t testing.TB, repo model.Repository, key string) *db.Dataset {
	t.Helper()
	dataset := &db.Dataset{Key: key, Name: key, IsActive: true}
	if err := repo.CreateDataset(context.Background(), dataset); err != nil {
		t.Fatalf("create dataset %s: %v", key, err)
	}
	return dataset
}

// MustGrant gives user access to dataset.
func MustGrant(t testing.TB, repo model.Repository, user *db.User, dataset *db.Dataset) {
	t.Helper()
	if err := repo.CreateGrant(context.Background(), user.ID, dataset.ID); err != nil {
		t.Fatalf("grant %s -> %s: %v", user.Email, dataset.Key, err)
	}
}
