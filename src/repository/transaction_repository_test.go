package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"trustengine/src/model"
)

func TestTransactionRepositoryLedger(t *testing.T) {
	repo := (&TransactionRepository{}).WithDB(newTestDB(t))
	ctx := context.Background()

	positionID := uuid.NewString()
	base := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

	buy := &model.Transaction{
		ID:         uuid.NewString(),
		PositionID: positionID,
		Type:       model.TransactionTypeBuy,
		Amount:     1500,
		Price:      1.0,
		Timestamp:  base,
	}
	sell := &model.Transaction{
		ID:         uuid.NewString(),
		PositionID: positionID,
		Type:       model.TransactionTypeSell,
		Amount:     1500,
		Price:      1.2,
		Timestamp:  base.Add(time.Hour),
	}
	for _, tx := range []*model.Transaction{buy, sell} {
		if err := repo.Create(ctx, tx); err != nil {
			t.Fatalf("failed to record transaction: %v", err)
		}
	}

	txs, err := repo.FindByPosition(ctx, positionID)
	if err != nil {
		t.Fatalf("failed to list transactions: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("expected 2 ledger entries, got %d", len(txs))
	}
	if txs[0].Type != model.TransactionTypeBuy || txs[1].Type != model.TransactionTypeSell {
		t.Fatalf("expected chronological order, got %+v", txs)
	}

	// Recorded entries must read back unchanged.
	if txs[0].Amount != 1500 || txs[0].Price != 1.0 || txs[0].PositionID != positionID {
		t.Fatalf("buy entry mutated on read: %+v", txs[0])
	}
	if txs[1].Amount != 1500 || txs[1].Price != 1.2 {
		t.Fatalf("sell entry mutated on read: %+v", txs[1])
	}
}

func TestTransactionRepositoryBatch(t *testing.T) {
	repo := (&TransactionRepository{}).WithDB(newTestDB(t))
	ctx := context.Background()

	p1 := uuid.NewString()
	p2 := uuid.NewString()
	for i, positionID := range []string{p1, p1, p2} {
		tx := &model.Transaction{
			ID:         uuid.NewString(),
			PositionID: positionID,
			Type:       model.TransactionTypeBuy,
			Amount:     float64(100 * (i + 1)),
			Price:      1.0,
			Timestamp:  time.Now().UTC(),
		}
		if err := repo.Create(ctx, tx); err != nil {
			t.Fatalf("failed to record transaction: %v", err)
		}
	}

	txs, err := repo.FindByPositions(ctx, []string{p1, p2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txs) != 3 {
		t.Fatalf("expected 3 ledger entries, got %d", len(txs))
	}

	none, err := repo.FindByPositions(ctx, nil)
	if err != nil || none != nil {
		t.Fatalf("expected empty result for empty input, got %+v err=%v", none, err)
	}
}
