package projection

import (
	"context"
	"errors"
	"testing"
	"time"

	"auction-arena/internal/auditlog"
	"auction-arena/internal/auth"
	"auction-arena/internal/broadcast"
	"auction-arena/internal/settlement"
	"auction-arena/internal/store"
	"auction-arena/internal/testutil"
)

func strptr(s string) *string { return &s }
func i32ptr(n int32) *int32   { return &n }

func TestSnapshotUnknownProject(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()

	svc := NewService(st)
	if _, err := svc.Snapshot(context.Background(), store.NewID()); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want store.ErrNotFound", err)
	}
}

func TestSnapshotOrderingAndConsistency(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	ctx := context.Background()

	owner, err := st.CreateUser(ctx, "op@example.com", "x", "Operator")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	project, err := st.CreateProject(ctx, owner.ID, "Season", 10)
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	team, err := st.CreateTeam(ctx, project.ID, "Strikers", 10000, "")
	if err != nil {
		t.Fatalf("create team: %v", err)
	}

	mk := func(name, category string, points int32) *store.Player {
		p, err := st.CreatePlayer(ctx, project.ID, name, 100, strptr(category), strptr("BAT"), i32ptr(points))
		if err != nil {
			t.Fatalf("create player %s: %v", name, err)
		}
		return p
	}
	pLow := mk("Low", "A", 40)
	pHigh := mk("High", "B", 90)
	pMid := mk("Mid", "B", 60)
	sold := mk("Sold", "C", 99)

	hub := broadcast.NewHub(0)
	defer hub.Close()
	authSvc := auth.NewService(st, "test-secret", time.Hour)
	eng := settlement.New(st, hub, auditlog.NewRecorder(st, nil), authSvc, time.Second)

	res, err := eng.Sell(ctx, sold.ID, team.ID, 2500)
	if err != nil {
		t.Fatalf("sell: %v", err)
	}

	svc := NewService(st)
	snap, err := svc.Snapshot(ctx, project.ID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	if len(snap.Teams) != 1 || snap.Teams[0].RemainingBudget != 7500 {
		t.Fatalf("teams = %+v", snap.Teams)
	}

	// category desc, then points desc; the sold player is excluded
	wantOrder := []string{pHigh.ID, pMid.ID, pLow.ID}
	if len(snap.UnsoldPlayers) != len(wantOrder) {
		t.Fatalf("unsold = %d players, want %d", len(snap.UnsoldPlayers), len(wantOrder))
	}
	for i, id := range wantOrder {
		if snap.UnsoldPlayers[i].ID != id {
			t.Fatalf("unsold[%d] = %s, want %s", i, snap.UnsoldPlayers[i].ID, id)
		}
	}

	if len(snap.RecentSales) != 1 {
		t.Fatalf("recent sales = %d, want 1", len(snap.RecentSales))
	}
	sale := snap.RecentSales[0]
	if sale.AuctionID != res.AuctionID || sale.Price != 2500 {
		t.Fatalf("sale = %+v", sale)
	}
	// the join reads live team fields, not sale-time values
	if sale.Team.RemainingBudget != 7500 {
		t.Fatalf("sale team budget = %d, want live 7500", sale.Team.RemainingBudget)
	}

	// undoing removes the sale from the feed and restores the pool
	if _, err := eng.Undo(ctx, res.AuctionID, auth.Principal{UserID: owner.ID}); err != nil {
		t.Fatalf("undo: %v", err)
	}
	snap, err = svc.Snapshot(ctx, project.ID)
	if err != nil {
		t.Fatalf("second snapshot: %v", err)
	}
	if len(snap.RecentSales) != 0 {
		t.Fatalf("reverted sale still visible: %+v", snap.RecentSales)
	}
	if len(snap.UnsoldPlayers) != 4 {
		t.Fatalf("unsold = %d players after undo, want 4", len(snap.UnsoldPlayers))
	}
}

func TestSnapshotRecentSalesNewestFirst(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	ctx := context.Background()

	owner, err := st.CreateUser(ctx, "op@example.com", "x", "Operator")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	project, err := st.CreateProject(ctx, owner.ID, "Season", 10)
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	team, err := st.CreateTeam(ctx, project.ID, "Strikers", 10000, "")
	if err != nil {
		t.Fatalf("create team: %v", err)
	}

	hub := broadcast.NewHub(0)
	defer hub.Close()
	authSvc := auth.NewService(st, "test-secret", time.Hour)
	eng := settlement.New(st, hub, auditlog.NewRecorder(st, nil), authSvc, time.Second)

	var last string
	for i := 0; i < 3; i++ {
		p, err := st.CreatePlayer(ctx, project.ID, "P", 100, nil, nil, nil)
		if err != nil {
			t.Fatalf("create player: %v", err)
		}
		res, err := eng.Sell(ctx, p.ID, team.ID, 100)
		if err != nil {
			t.Fatalf("sell: %v", err)
		}
		last = res.AuctionID
		time.Sleep(5 * time.Millisecond)
	}

	snap, err := NewService(st).Snapshot(ctx, project.ID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snap.RecentSales) != 3 {
		t.Fatalf("recent sales = %d, want 3", len(snap.RecentSales))
	}
	if snap.RecentSales[0].AuctionID != last {
		t.Fatalf("newest sale first = %s, want %s", snap.RecentSales[0].AuctionID, last)
	}
}
