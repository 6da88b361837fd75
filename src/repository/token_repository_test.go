package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"trustengine/src/model"
)

func TestTokenRepositoryUpsertSupersedes(t *testing.T) {
	db := newTestDB(t)
	repo := (&TokenRepository{}).WithDB(db)
	ctx := context.Background()

	first := &model.TokenPerformance{
		ID:      uuid.NewString(),
		Chain:   "solana",
		Address: "token-addr",
		Symbol:  "WIF",
		Price:   1.0,
	}
	if err := repo.Upsert(ctx, first); err != nil {
		t.Fatalf("failed to upsert token: %v", err)
	}

	second := &model.TokenPerformance{
		ID:        uuid.NewString(),
		Chain:     "solana",
		Address:   "token-addr",
		Symbol:    "WIF",
		Price:     2.5,
		RapidDump: true,
	}
	if err := repo.Upsert(ctx, second); err != nil {
		t.Fatalf("failed to upsert refreshed token: %v", err)
	}

	var count int64
	if err := db.Model(&model.TokenPerformance{}).Count(&count).Error; err != nil {
		t.Fatalf("failed to count tokens: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single row per (chain,address), got %d", count)
	}

	found, err := repo.FindByChainAddress(ctx, "solana", "token-addr")
	if err != nil || found == nil {
		t.Fatalf("failed to reload token: %+v err=%v", found, err)
	}
	if found.Price != 2.5 || !found.RapidDump {
		t.Fatalf("expected refreshed snapshot, got %+v", found)
	}
}

func TestTokenRepositoryFindMissing(t *testing.T) {
	repo := (&TokenRepository{}).WithDB(newTestDB(t))

	found, err := repo.FindByChainAddress(context.Background(), "solana", "never-seen")
	if err != nil {
		t.Fatalf("expected (nil, nil) for unknown token, got err=%v", err)
	}
	if found != nil {
		t.Fatalf("expected nil token, got %+v", found)
	}
}

func TestTokenRepositoryBatchLookup(t *testing.T) {
	repo := (&TokenRepository{}).WithDB(newTestDB(t))
	ctx := context.Background()

	for _, address := range []string{"a1", "a2"} {
		token := &model.TokenPerformance{ID: uuid.NewString(), Chain: "solana", Address: address}
		if err := repo.Upsert(ctx, token); err != nil {
			t.Fatalf("failed to upsert token: %v", err)
		}
	}

	tokens, err := repo.FindByChainAddresses(ctx, "solana", []string{"a1", "a2", "missing"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tokens) != 2 {
		t.Fatalf("expected 2 known tokens, got %d", len(tokens))
	}
}
