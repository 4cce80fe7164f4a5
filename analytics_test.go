package main

import (
	"testing"

	"go.uber.org/zap"
)

func TestAnalyticsFlushOnStop(t *testing.T) {
	a := NewAnalytics(openTestDB(t), zap.NewNop())

	a.Track(EvtPurchase, "s1", map[string]interface{}{"item_id": "shotgun", "price": 300})
	a.Track(EvtPurchase, "s1", map[string]interface{}{"item_id": "shotgun", "price": 300})
	a.Track(EvtPurchase, "s2", map[string]interface{}{"item_id": "armor", "price": 250})
	a.Track(EvtMatchEnd, "", map[string]interface{}{"wave": 4})
	a.Track(EvtMatchEnd, "", map[string]interface{}{"wave": 6})
	a.Track(EvtSessionStart, "s1", nil)
	a.Stop()

	written, dropped := a.Counters()
	if written != 6 || dropped != 0 {
		t.Fatalf("expected 6 written 0 dropped, got %d/%d", written, dropped)
	}

	counts, err := a.EventCounts(1)
	if err != nil {
		t.Fatal(err)
	}
	if counts[EvtPurchase] != 3 || counts[EvtMatchEnd] != 2 || counts[EvtSessionStart] != 1 {
		t.Errorf("unexpected counts %v", counts)
	}

	top, err := a.PopularPurchases(5)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 2 {
		t.Fatalf("expected 2 items, got %v", top)
	}
	if top[0].ItemID != "shotgun" || top[0].Count != 2 {
		t.Errorf("expected shotgun x2 first, got %+v", top[0])
	}

	ms, err := a.MatchStats(7)
	if err != nil {
		t.Fatal(err)
	}
	if ms.Count != 2 || ms.AvgWave != 5 {
		t.Errorf("expected 2 matches averaging wave 5, got %+v", ms)
	}
}

func TestAnalyticsDropsWhenFull(t *testing.T) {
	// no writer goroutine, so the queue is never drained
	a := &Analytics{log: zap.NewNop(), events: make(chan AnalyticsEvent, 2)}
	for i := 0; i < 5; i++ {
		a.Track(EvtPlayerKill, "", nil)
	}
	if _, dropped := a.Counters(); dropped != 3 {
		t.Errorf("expected 3 dropped, got %d", dropped)
	}
}

func TestAnalyticsWithoutDB(t *testing.T) {
	a := &Analytics{log: zap.NewNop()}
	counts, err := a.EventCounts(1)
	if err != nil || counts != nil {
		t.Errorf("expected nil result without a database, got %v %v", counts, err)
	}
	if ms, err := a.MatchStats(1); err != nil || ms.Count != 0 {
		t.Errorf("expected empty stats, got %+v %v", ms, err)
	}
}
