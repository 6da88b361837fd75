package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"trustengine/src/model"
	"trustengine/src/trading"
)

type mockService struct {
	position      *model.Position
	closed        bool
	recommenderID string
	signal        trading.BuySignal
	positionID    string
	rec           trading.Recommendation
}

func (m *mockService) ProcessBuySignal(_ context.Context, recommenderID string, signal trading.BuySignal) *model.Position {
	m.recommenderID = recommenderID
	m.signal = signal
	return m.position
}

func (m *mockService) ProcessSellSignal(_ context.Context, positionID string) bool {
	m.positionID = positionID
	return m.closed
}

func (m *mockService) HandleRecommendation(_ context.Context, recommenderID string, rec trading.Recommendation) *model.Position {
	m.recommenderID = recommenderID
	m.rec = rec
	return m.position
}

func TestBuySignalHandlerOpensPosition(t *testing.T) {
	service := &mockService{position: &model.Position{ID: "pos-1", Status: model.PositionStatusOpen}}
	handler := BuySignalHandler(service)

	body := `{"recommender_id":"rec-1","chain":"solana","token_address":"sim_abc","conviction":"HIGH"}`
	req := httptest.NewRequest(http.MethodPost, "/signals/buy", strings.NewReader(body))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if service.recommenderID != "rec-1" || service.signal.TokenAddress != "sim_abc" {
		t.Fatalf("unexpected service call: %q %+v", service.recommenderID, service.signal)
	}

	var position model.Position
	if err := json.Unmarshal(rr.Body.Bytes(), &position); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if position.ID != "pos-1" {
		t.Fatalf("unexpected position: %+v", position)
	}
}

func TestBuySignalHandlerRejected(t *testing.T) {
	handler := BuySignalHandler(&mockService{position: nil})

	body := `{"recommender_id":"rec-1","chain":"solana","token_address":"illiquid"}`
	req := httptest.NewRequest(http.MethodPost, "/signals/buy", strings.NewReader(body))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", rr.Code)
	}
}

func TestBuySignalHandlerValidation(t *testing.T) {
	handler := BuySignalHandler(&mockService{})

	cases := []struct {
		name string
		body string
	}{
		{"missing recommender", `{"chain":"solana","token_address":"abc"}`},
		{"missing chain", `{"recommender_id":"rec-1","token_address":"abc"}`},
		{"missing token", `{"recommender_id":"rec-1","chain":"solana"}`},
		{"bad timestamp", `{"recommender_id":"rec-1","chain":"solana","token_address":"abc","timestamp":"yesterday"}`},
		{"bad json", `{`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/signals/buy", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", rr.Code)
			}
		})
	}
}

func TestSellSignalHandler(t *testing.T) {
	service := &mockService{closed: true}
	handler := SellSignalHandler(service)

	req := httptest.NewRequest(http.MethodPost, "/signals/sell", strings.NewReader(`{"position_id":"pos-1"}`))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if service.positionID != "pos-1" {
		t.Fatalf("unexpected position id: %q", service.positionID)
	}
}

func TestSellSignalHandlerNotClosed(t *testing.T) {
	handler := SellSignalHandler(&mockService{closed: false})

	req := httptest.NewRequest(http.MethodPost, "/signals/sell", strings.NewReader(`{"position_id":"pos-1"}`))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", rr.Code)
	}
}

func TestRecommendationHandlerAdvisory(t *testing.T) {
	service := &mockService{position: nil}
	handler := RecommendationHandler(service)

	body := `{"recommender_id":"rec-1","chain":"solana","token_address":"abc","type":"HOLD"}`
	req := httptest.NewRequest(http.MethodPost, "/recommendations", strings.NewReader(body))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rr.Code)
	}
	if service.rec.Type != model.RecommendationTypeHold {
		t.Fatalf("unexpected recommendation: %+v", service.rec)
	}
}
