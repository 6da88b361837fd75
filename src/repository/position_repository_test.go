package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"trustengine/src/model"
)

func openPosition(recommenderID string) *model.Position {
	now := time.Now().UTC()
	return &model.Position{
		ID:               uuid.NewString(),
		RecommendationID: uuid.NewString(),
		RecommenderID:    recommenderID,
		Chain:            "solana",
		Address:          "token-addr",
		Amount:           1500,
		InitialPrice:     1.0,
		CurrentPrice:     1.0,
		Status:           model.PositionStatusOpen,
		OpenedAt:         now,
	}
}

func TestPositionRepositoryCloseIsConditional(t *testing.T) {
	repo := (&PositionRepository{}).WithDB(newTestDB(t))
	ctx := context.Background()

	position := openPosition(uuid.NewString())
	if err := repo.Create(ctx, position); err != nil {
		t.Fatalf("failed to create position: %v", err)
	}

	closedAt := time.Now().UTC()
	closed, err := repo.Close(ctx, position.ID, 1.2, closedAt)
	if err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}
	if !closed {
		t.Fatal("expected first close to succeed")
	}

	reloaded, err := repo.FindByID(ctx, position.ID)
	if err != nil || reloaded == nil {
		t.Fatalf("failed to reload position: %+v err=%v", reloaded, err)
	}
	if reloaded.Status != model.PositionStatusClosed {
		t.Fatalf("expected closed status, got %s", reloaded.Status)
	}
	if reloaded.ClosedAt == nil {
		t.Fatal("expected closed_at to be set")
	}
	if reloaded.CurrentPrice != 1.2 {
		t.Fatalf("expected exit price recorded, got %f", reloaded.CurrentPrice)
	}

	// Second close must observe the closed row and do nothing.
	closedAgain, err := repo.Close(ctx, position.ID, 2.0, time.Now().UTC())
	if err != nil {
		t.Fatalf("unexpected error on second close: %v", err)
	}
	if closedAgain {
		t.Fatal("expected second close to report failure")
	}

	reloaded, _ = repo.FindByID(ctx, position.ID)
	if reloaded.CurrentPrice != 1.2 {
		t.Fatalf("second close must not overwrite exit price, got %f", reloaded.CurrentPrice)
	}
}

func TestPositionRepositoryCloseMissing(t *testing.T) {
	repo := (&PositionRepository{}).WithDB(newTestDB(t))

	closed, err := repo.Close(context.Background(), uuid.NewString(), 1.0, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if closed {
		t.Fatal("expected close of missing position to report failure")
	}
}

func TestPositionRepositoryFindOpenFilters(t *testing.T) {
	repo := (&PositionRepository{}).WithDB(newTestDB(t))
	ctx := context.Background()

	alice := uuid.NewString()
	bob := uuid.NewString()

	p1 := openPosition(alice)
	p2 := openPosition(alice)
	p3 := openPosition(bob)
	for _, p := range []*model.Position{p1, p2, p3} {
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("failed to create position: %v", err)
		}
	}
	if _, err := repo.Close(ctx, p2.ID, 1.1, time.Now().UTC()); err != nil {
		t.Fatalf("failed to close position: %v", err)
	}

	all, err := repo.FindOpen(ctx, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 open positions, got %d", len(all))
	}

	mine, err := repo.FindOpen(ctx, alice)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != p1.ID {
		t.Fatalf("expected only alice's open position, got %+v", mine)
	}
}

func TestPositionRepositoryFindByIDMissing(t *testing.T) {
	repo := (&PositionRepository{}).WithDB(newTestDB(t))

	position, err := repo.FindByID(context.Background(), uuid.NewString())
	if err != nil {
		t.Fatalf("expected (nil, nil) for missing position, got err=%v", err)
	}
	if position != nil {
		t.Fatalf("expected nil position, got %+v", position)
	}
}

func TestPositionRepositoryFindOpenSQL(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := &PositionRepository{db: mockDB}

	rows := sqlmock.NewRows([]string{"id", "recommender_id", "status"}).
		AddRow("p1", "r1", model.PositionStatusOpen)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "positions" WHERE status = $1 AND recommender_id = $2 ORDER BY opened_at DESC`)).
		WithArgs(model.PositionStatusOpen, "r1").
		WillReturnRows(rows)

	positions, err := repo.FindOpen(context.Background(), "r1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(positions) != 1 || positions[0].ID != "p1" {
		t.Fatalf("unexpected result: %+v", positions)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}
