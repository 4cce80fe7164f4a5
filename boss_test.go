package main

import "testing"

func TestBossPhaseFor(t *testing.T) {
	tests := []struct {
		health, max int
		want        int
	}{
		{5000, 5000, 1},
		{3334, 5000, 1},
		{3333, 5000, 2},
		{1667, 5000, 2},
		{1666, 5000, 3},
		{1, 5000, 3},
		{10, 0, 1},
	}
	for _, tt := range tests {
		if got := bossPhaseFor(tt.health, tt.max); got != tt.want {
			t.Errorf("bossPhaseFor(%d, %d) = %d, want %d", tt.health, tt.max, got, tt.want)
		}
	}
}

func TestBossCooldownMul(t *testing.T) {
	if bossCooldownMul(1) != 1 || bossCooldownMul(2) != 0.75 || bossCooldownMul(3) != 0.5 {
		t.Error("unexpected cooldown multipliers")
	}
}

func TestBossSpawnState(t *testing.T) {
	r, _ := newTestRoom(t)
	addTestPlayer(t, r, "a")
	b := r.spawnAgent(AgentBoss, 0, -20)
	if b.Boss == nil || b.Boss.Phase != 1 {
		t.Fatal("expected boss state in phase 1")
	}
	if b.Boss.SlamCD != BossSlamCD/2 || b.Boss.ChargeCD != BossChargeCD/2 || b.Boss.SummonCD != BossSummonCD/2 {
		t.Errorf("expected half cooldowns at spawn, got %+v", *b.Boss)
	}
	if !b.Counted {
		t.Error("the boss counts toward its wave")
	}
}

func TestBossSlam(t *testing.T) {
	r, p, c := soloBehaviorRoom(t)
	b := r.spawnAgent(AgentBoss, 0, 1)
	b.Boss.SlamCD = 0

	if !updateBoss(r, b, p, 3) {
		t.Fatal("expected a slam")
	}
	if p.HP != PlayerMaxHP-BossSlamDamage {
		t.Errorf("expected slam damage %d, got hp %d", BossSlamDamage, p.HP)
	}
	if b.Boss.SlamCD != BossSlamCD {
		t.Errorf("expected slam cooldown %v, got %v", BossSlamCD, b.Boss.SlamCD)
	}
	if c.count(MsgBossSlam) != 1 {
		t.Error("expected a slam broadcast")
	}
}

func TestBossPhaseChange(t *testing.T) {
	r, p, c := soloBehaviorRoom(t)
	b := r.spawnAgent(AgentBoss, 0, -12)
	b.Boss.SlamCD, b.Boss.ChargeCD, b.Boss.SummonCD = 100, 100, 100
	b.Health = b.MaxHealth / 2

	if updateBoss(r, b, p, 16) {
		t.Error("no special should fire while everything is on cooldown")
	}
	var msg BossPhaseMsg
	if !c.last(MsgBossPhase, &msg) || msg.Phase != 2 || b.Boss.Phase != 2 {
		t.Errorf("expected phase 2, got %+v", msg)
	}

	b.Boss.SlamCD = 0
	updateBoss(r, b, p, 3)
	if b.Boss.SlamCD != BossSlamCD*0.75 {
		t.Errorf("phase 2 should shorten cooldowns, got %v", b.Boss.SlamCD)
	}
}

func TestBossSummon(t *testing.T) {
	r, p, c := soloBehaviorRoom(t)
	b := r.spawnAgent(AgentBoss, 0, -16)
	b.Boss.SlamCD, b.Boss.ChargeCD, b.Boss.SummonCD = 100, 100, 0
	b.Health = b.MaxHealth / 2

	if !updateBoss(r, b, p, 20) {
		t.Fatal("expected a summon in phase 2")
	}
	minions := r.countAlive(AgentMinion)
	if minions == 0 || minions > BossSummonCount {
		t.Fatalf("expected 1..%d minions, got %d", BossSummonCount, minions)
	}
	for _, a := range r.agents {
		if a.Type == AgentMinion && a.Counted {
			t.Error("minions do not count toward the wave")
		}
	}
	var msg BossSummonMsg
	if !c.last(MsgBossSummon, &msg) || len(msg.Minions) != minions {
		t.Errorf("expected summon message listing %d minions, got %+v", minions, msg)
	}
	if r.remaining() != r.waveTotal {
		t.Error("summons must not change the wave count")
	}
}

func TestBossSummonCap(t *testing.T) {
	r, p, _ := soloBehaviorRoom(t)
	b := r.spawnAgent(AgentBoss, 0, -16)
	for i := 0; i < BossMaxMinions; i++ {
		r.spawnAgent(AgentMinion, float64(i*2-12), -30)
	}
	b.Boss.SlamCD, b.Boss.ChargeCD, b.Boss.SummonCD = 100, 100, 0
	b.Health = b.MaxHealth / 2
	updateBoss(r, b, p, 20)
	if n := r.countAlive(AgentMinion); n != BossMaxMinions {
		t.Errorf("expected minions capped at %d, got %d", BossMaxMinions, n)
	}
}

func TestBossCharge(t *testing.T) {
	r, p, c := soloBehaviorRoom(t)
	b := r.spawnAgent(AgentBoss, 0, -12)
	b.Boss.SlamCD, b.Boss.ChargeCD, b.Boss.SummonCD = 100, 0, 100

	if !updateBoss(r, b, p, 16) {
		t.Fatal("expected a charge")
	}
	if b.Ability != AbilityCharge || c.count(MsgBossCharge) != 1 {
		t.Fatal("expected the boss to commit to a charge")
	}
	for i := 0; i < 60 && b.Ability != AbilityNone; i++ {
		advanceAbility(r, b, 0.05)
	}
	if p.HP != PlayerMaxHP-BossChargeDamage {
		t.Errorf("expected charge damage %d, got hp %d", BossChargeDamage, p.HP)
	}
}

func TestBossKillDropsPickups(t *testing.T) {
	r, p, _ := soloBehaviorRoom(t)
	b := r.spawnAgent(AgentBoss, 0, -16)
	r.damageAgent(b, b.Health, p, false)
	if len(r.pickups) != BossPickupDrops {
		t.Errorf("expected %d pickups, got %d", BossPickupDrops, len(r.pickups))
	}
	if p.Run.BossKills != 1 || p.Score != 1000 {
		t.Errorf("expected boss kill credited, got kills=%d score=%d", p.Run.BossKills, p.Score)
	}
}
