package model

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dqdash/internal/auth"
	"dqdash/internal/config"
	"dqdash/internal/entity/db"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	SampleDatasetKey         = "sample"
	sampleDatasetName        = "Sample Dataset"
	sampleDatasetDescription = "Seed dataset"
	initialAdminName         = "Administrator"
)

// SeedDefaults ensures the initial admin (and optionally the sample dataset
// granted to it) exist. Safe to run on every start and from several
// instances at once.
func SeedDefaults(ctx context.Context, repo Repository, cfg config.Config) error {
	if repo == nil {
		return nil
	}

	admin, err := ensureInitialAdmin(ctx, repo, cfg)
	if err != nil {
		return err
	}
	if admin == nil || !cfg.SeedSampleDataset {
		return nil
	}

	dataset, err := ensureSampleDataset(ctx, repo)
	if err != nil {
		return err
	}

	ok, err := repo.HasGrant(ctx, admin.ID, dataset.ID)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	if err := repo.CreateGrant(ctx, admin.ID, dataset.ID); err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("grant sample dataset: %w", err)
	}
	return nil
}

func ensureInitialAdmin(ctx context.Context, repo Repository, cfg config.Config) (*db.User, error) {
	email := strings.TrimSpace(cfg.InitialAdminEmail)
	if email == "" {
		return nil, nil
	}

	existing, err := repo.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return existing, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	hash, err := auth.HashPassword(cfg.InitialAdminPassword)
	if err != nil {
		return nil, err
	}
	name := initialAdminName
	admin := &db.User{
		Email:        email,
		FullName:     &name,
		PasswordHash: hash,
		IsActive:     true,
		IsAdmin:      true,
	}
	if err := repo.CreateUser(ctx, admin); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return repo.GetUserByEmail(ctx, email)
		}
		return nil, fmt.Errorf("create initial admin: %w", err)
	}
	logrus.WithField("email", email).Info("initial admin created")
	return admin, nil
}

func ensureSampleDataset(ctx context.Context, repo Repository) (*db.Dataset, error) {
	existing, err := repo.GetDatasetByKey(ctx, SampleDatasetKey)
	switch {
	case err == nil:
		return existing, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	description := sampleDatasetDescription
	dataset := &db.Dataset{
		Key:         SampleDatasetKey,
		Name:        sampleDatasetName,
		Description: &description,
		IsActive:    true,
	}
	if err := repo.CreateDataset(ctx, dataset); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return repo.GetDatasetByKey(ctx, SampleDatasetKey)
		}
		return nil, fmt.Errorf("create sample dataset: %w", err)
	}
	logrus.WithField("key", SampleDatasetKey).Info("sample dataset created")
	return dataset, nil
}
