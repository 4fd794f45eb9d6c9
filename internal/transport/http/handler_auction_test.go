package httptransport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"auction-arena/internal/auth"
	"auction-arena/internal/projection"
	"auction-arena/internal/settlement"
	"auction-arena/internal/store"
)

type fakeEngine struct {
	sellResult *settlement.SellResult
	sellErr    error
	undoResult *settlement.UndoResult
	undoErr    error

	gotPlayerID  string
	gotTeamID    string
	gotPrice     int64
	gotAuctionID string
}

func (f *fakeEngine) Sell(_ context.Context, playerID, teamID string, price int64) (*settlement.SellResult, error) {
	f.gotPlayerID, f.gotTeamID, f.gotPrice = playerID, teamID, price
	return f.sellResult, f.sellErr
}

func (f *fakeEngine) Undo(_ context.Context, auctionID string, _ auth.Principal) (*settlement.UndoResult, error) {
	f.gotAuctionID = auctionID
	return f.undoResult, f.undoErr
}

type fakeSnapshotter struct {
	snap *projection.Snapshot
	err  error
}

func (f *fakeSnapshotter) Snapshot(context.Context, string) (*projection.Snapshot, error) {
	return f.snap, f.err
}

type fakePlayers struct {
	player *store.Player
	err    error
}

func (f *fakePlayers) GetPlayer(context.Context, string) (*store.Player, error) {
	return f.player, f.err
}

type fakeAuthz struct {
	owned bool
	err   error
}

func (f *fakeAuthz) Authorize(context.Context, auth.Principal, string) (bool, error) {
	return f.owned, f.err
}

func authedRequest(method, target, body string) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	ctx := context.WithValue(r.Context(), principalContextKey{}, auth.Principal{UserID: "u1", Email: "op@example.com"})
	return r.WithContext(ctx)
}

func TestSellHappyPath(t *testing.T) {
	eng := &fakeEngine{sellResult: &settlement.SellResult{AuctionID: "a1"}}
	h := NewAuctionHandlers(eng, &fakeSnapshotter{}, &fakePlayers{player: &store.Player{ID: "p1", ProjectID: "proj1"}}, &fakeAuthz{owned: true})

	rec := httptest.NewRecorder()
	h.Sell()(rec, authedRequest(http.MethodPost, "/api/auction/sell", `{"player_id":"p1","team_id":"t1","price":100}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if eng.gotPlayerID != "p1" || eng.gotTeamID != "t1" || eng.gotPrice != 100 {
		t.Fatalf("engine got (%s, %s, %d)", eng.gotPlayerID, eng.gotTeamID, eng.gotPrice)
	}
	var res settlement.SellResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.AuctionID != "a1" {
		t.Fatalf("auction_id = %s, want a1", res.AuctionID)
	}
}

func TestSellRequiresOwnership(t *testing.T) {
	eng := &fakeEngine{}
	h := NewAuctionHandlers(eng, &fakeSnapshotter{}, &fakePlayers{player: &store.Player{ID: "p1", ProjectID: "proj1"}}, &fakeAuthz{owned: false})

	rec := httptest.NewRecorder()
	h.Sell()(rec, authedRequest(http.MethodPost, "/api/auction/sell", `{"player_id":"p1","team_id":"t1","price":100}`))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if eng.gotPlayerID != "" {
		t.Fatal("engine was called despite failed authorization")
	}
}

func TestSellUnknownPlayer(t *testing.T) {
	h := NewAuctionHandlers(&fakeEngine{}, &fakeSnapshotter{}, &fakePlayers{err: store.ErrNotFound}, &fakeAuthz{owned: true})

	rec := httptest.NewRecorder()
	h.Sell()(rec, authedRequest(http.MethodPost, "/api/auction/sell", `{"player_id":"nope","team_id":"t1","price":100}`))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestSellInsufficientBudget(t *testing.T) {
	eng := &fakeEngine{sellErr: &settlement.InsufficientBudgetError{Available: 40, Required: 90}}
	h := NewAuctionHandlers(eng, &fakeSnapshotter{}, &fakePlayers{player: &store.Player{ID: "p1", ProjectID: "proj1"}}, &fakeAuthz{owned: true})

	rec := httptest.NewRecorder()
	h.Sell()(rec, authedRequest(http.MethodPost, "/api/auction/sell", `{"player_id":"p1","team_id":"t1","price":90}`))

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "insufficient_budget" || body["available"].(float64) != 40 || body["required"].(float64) != 90 {
		t.Fatalf("body = %v", body)
	}
}

func TestSellRejectsMissingFields(t *testing.T) {
	h := NewAuctionHandlers(&fakeEngine{}, &fakeSnapshotter{}, &fakePlayers{}, &fakeAuthz{owned: true})

	rec := httptest.NewRecorder()
	h.Sell()(rec, authedRequest(http.MethodPost, "/api/auction/sell", `{"price":100}`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestUndoErrorMapping(t *testing.T) {
	eng := &fakeEngine{undoErr: settlement.ErrAuctionNotFound}
	h := NewAuctionHandlers(eng, &fakeSnapshotter{}, &fakePlayers{}, &fakeAuthz{owned: true})

	r := authedRequest(http.MethodPost, "/api/auction/undo/a9", "")
	r = withURLParam(r, "auction_id", "a9")
	rec := httptest.NewRecorder()
	h.Undo()(rec, r)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if eng.gotAuctionID != "a9" {
		t.Fatalf("engine got auction %q, want a9", eng.gotAuctionID)
	}
}

func TestSnapshotUnknownProject(t *testing.T) {
	h := NewAuctionHandlers(&fakeEngine{}, &fakeSnapshotter{err: store.ErrNotFound}, &fakePlayers{}, &fakeAuthz{owned: true})

	r := authedRequest(http.MethodGet, "/api/auction/snapshot/nope", "")
	r = withURLParam(r, "project_id", "nope")
	rec := httptest.NewRecorder()
	h.Snapshot()(rec, r)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
