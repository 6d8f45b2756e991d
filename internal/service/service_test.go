package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"hikayat/internal/config"
	"hikayat/internal/localstore"
	"hikayat/internal/logging"
	"hikayat/internal/models"
	"hikayat/internal/repository"
)

type testEnv struct {
	store   *localstore.MemoryStore
	repo    *repository.Repository
	svc     *Service
	profile localstore.Profile
}

func testConfig() *config.Config {
	return &config.Config{
		BcryptCost:       bcrypt.MinCost,
		ProfileSecretKey: "test-secret",
		MaxUploadSize:    1 << 20,
		Avatar:           config.Avatar{Width: 64, Interpolator: "catmullrom"},
		Audio:            config.Audio{MaxBytes: 1 << 16, MaxDuration: time.Second, ChunkSize: 1024},
	}
}

func setupService(t *testing.T) *testEnv {
	t.Helper()

	store := localstore.NewMemoryStore()
	repo := repository.NewRepository(store, logging.Nop())

	return &testEnv{
		store:   store,
		repo:    repo,
		svc:     NewService(repo, testConfig(), nil, logging.Nop()),
		profile: store.Profile("profile-1"),
	}
}

// login registers an account and logs it in on the test profile.
func (e *testEnv) login(t *testing.T, name, email string) *models.Session {
	t.Helper()
	ctx := context.Background()

	_, err := e.svc.Auth.Register(ctx, e.profile, models.RegisterRequest{
		Name:            name,
		Email:           email,
		Password:        "secret1",
		ConfirmPassword: "secret1",
	})
	require.NoError(t, err)

	session, err := e.svc.Auth.Login(ctx, e.profile, email, "secret1")
	require.NoError(t, err)
	return session
}
