package service

import (
	"context"
	"testing"

	"github.com/spec-kit/road-damage-service/internal/domain"
	apperrors "github.com/spec-kit/road-damage-service/pkg/util"
)

func TestStatsCountsSumToTotal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, alice := env.registerUser(t, "alice")
	_, admin := env.seedAdmin(t, "admin")

	var ids []string
	for i := 0; i < 6; i++ {
		tk, err := env.tickets.Create(ctx, alice, validTicketInput())
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		ids = append(ids, tk.ID)
	}
	moves := []struct {
		id     string
		status domain.TicketStatus
	}{
		{ids[0], domain.TicketStatusInProgress},
		{ids[1], domain.TicketStatusInProgress},
		{ids[2], domain.TicketStatusResolved},
		{ids[3], domain.TicketStatusRejected},
	}
	for _, m := range moves {
		if _, err := env.tickets.UpdateStatus(ctx, admin, m.id, m.status, nil); err != nil {
			t.Fatalf("move %s: %v", m.status, err)
		}
	}

	stats, err := env.stats.Stats(ctx, alice)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Pending != 2 || stats.InProgress != 2 || stats.Resolved != 1 || stats.Rejected != 1 {
		t.Errorf("counters: got %+v", stats)
	}
	if got := stats.Pending + stats.InProgress + stats.Resolved + stats.Rejected; stats.TotalTickets != got {
		t.Errorf("total %d must equal the sum of counters %d", stats.TotalTickets, got)
	}
	if stats.TotalTickets != 6 {
		t.Errorf("want 6 total tickets, got %d", stats.TotalTickets)
	}
}

func TestStatsUserScopeExcludesOtherOwners(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, alice := env.registerUser(t, "alice")
	_, bob := env.registerUser(t, "bob")

	for i := 0; i < 3; i++ {
		if _, err := env.tickets.Create(ctx, alice, validTicketInput()); err != nil {
			t.Fatalf("alice create: %v", err)
		}
	}
	if _, err := env.tickets.Create(ctx, bob, validTicketInput()); err != nil {
		t.Fatalf("bob create: %v", err)
	}

	aliceStats, err := env.stats.Stats(ctx, alice)
	if err != nil {
		t.Fatalf("alice stats: %v", err)
	}
	if aliceStats.TotalTickets != 3 {
		t.Errorf("alice counts only her tickets: want 3, got %d", aliceStats.TotalTickets)
	}
	if aliceStats.TotalUsers != nil {
		t.Error("user stats must not include the account count")
	}

	bobStats, err := env.stats.Stats(ctx, bob)
	if err != nil {
		t.Fatalf("bob stats: %v", err)
	}
	if bobStats.TotalTickets != 1 {
		t.Errorf("bob counts only his ticket: want 1, got %d", bobStats.TotalTickets)
	}
}

func TestStatsAdminScope(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, alice := env.registerUser(t, "alice")
	_, bob := env.registerUser(t, "bob")
	_, admin := env.seedAdmin(t, "admin")

	if _, err := env.tickets.Create(ctx, alice, validTicketInput()); err != nil {
		t.Fatalf("alice create: %v", err)
	}
	if _, err := env.tickets.Create(ctx, bob, validTicketInput()); err != nil {
		t.Fatalf("bob create: %v", err)
	}

	stats, err := env.stats.Stats(ctx, admin)
	if err != nil {
		t.Fatalf("admin stats: %v", err)
	}
	if stats.TotalTickets != 2 {
		t.Errorf("admin counts all tickets: want 2, got %d", stats.TotalTickets)
	}
	if stats.TotalUsers == nil {
		t.Fatal("admin stats include the citizen account count")
	}
	if *stats.TotalUsers != 2 {
		t.Errorf("citizen accounts: want 2, got %d", *stats.TotalUsers)
	}
}

func TestStatsRequiresPrincipal(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.stats.Stats(context.Background(), nil); !apperrors.IsCode(err, apperrors.CodeUnauthenticated) {
		t.Errorf("want UNAUTHENTICATED, got %v", err)
	}
}

func TestStatsEmptyStore(t *testing.T) {
	env := newTestEnv(t)
	_, alice := env.registerUser(t, "alice")

	stats, err := env.stats.Stats(context.Background(), alice)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalTickets != 0 || stats.Pending != 0 || stats.InProgress != 0 || stats.Resolved != 0 || stats.Rejected != 0 {
		t.Errorf("empty store yields zero counters, got %+v", stats)
	}
}
