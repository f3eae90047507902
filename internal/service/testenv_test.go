package service

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/road-damage-service/internal/auth"
	"github.com/spec-kit/road-damage-service/internal/config"
	"github.com/spec-kit/road-damage-service/internal/domain"
	"github.com/spec-kit/road-damage-service/internal/repository"
)

func testConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			JWTSecret:         "test-secret-key-at-least-32-chars-long",
			SessionTTLMinutes: 60,
			BcryptCost:        bcrypt.MinCost,
		},
		Priority: config.PriorityConfig{
			MediumThreshold: 15.0,
			HighThreshold:   40.0,
		},
		Pagination: config.PaginationConfig{
			DefaultPageSize: 20,
			MaxPageSize:     100,
		},
	}
}

// testEnv wires the full service layer over the in-memory store and a
// miniredis-backed session store.
type testEnv struct {
	store   *repository.MemoryStore
	redis   *miniredis.Miniredis
	auth    *AuthService
	tickets *TicketService
	stats   *StatsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run: %v", err)
	}
	t.Cleanup(mr.Close)

	cfg := testConfig()
	store := repository.NewMemoryStore()
	sessions := auth.NewRedisSessionStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	return &testEnv{
		store: store,
		redis: mr,
		auth: NewAuthService(cfg, AuthDependencies{
			UserRepo:     store.Users(),
			SessionStore: sessions,
		}),
		tickets: NewTicketService(cfg, TicketDependencies{
			TicketRepo:  store.Tickets(),
			HistoryRepo: store.History(),
		}),
		stats: NewStatsService(store.Tickets(), store.Users()),
	}
}

// registerUser creates a citizen account and returns its principal.
func (e *testEnv) registerUser(t *testing.T, username string) (*domain.User, *domain.Principal) {
	t.Helper()
	user, err := e.auth.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		FullName: "Test " + username,
		Password: "password-" + username,
	})
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return user, &domain.Principal{UserID: user.ID, Username: user.Username, Role: user.Role}
}

// seedAdmin creates an admin account directly in the store.
func (e *testEnv) seedAdmin(t *testing.T, username string) (*domain.User, *domain.Principal) {
	t.Helper()
	hash, err := auth.HashPassword("admin-password", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	admin := &domain.User{
		Username:     username,
		Email:        username + "@example.com",
		FullName:     "Admin " + username,
		Role:         domain.RoleAdmin,
		PasswordHash: hash,
	}
	if err := e.store.Users().Create(context.Background(), admin); err != nil {
		t.Fatalf("create admin: %v", err)
	}
	return admin, &domain.Principal{UserID: admin.ID, Username: admin.Username, Role: admin.Role}
}

func floatPtr(v float64) *float64 { return &v }

func strPtr(v string) *string { return &v }
