package main

import (
	"math"

	"go.uber.org/zap"
)

// Boss tuning
const (
	BossSlamRange      = 5.0
	BossSlamCD         = 6.0
	BossSlamDamage     = 35
	BossSlamRadius     = 6.0
	BossChargeMinRange = 12.0
	BossChargeCD       = 10.0
	BossChargeDuration = 1.5
	BossChargeSpeed    = 12.0
	BossChargeDamage   = 40
	BossChargeHitRange = 2.5
	BossSummonCD       = 15.0
	BossSummonCount    = 4
	BossSummonRadius   = 4.0
	BossMaxMinions     = 12
)

// BossState tracks phase and special-attack cooldowns
type BossState struct {
	Phase    int
	SlamCD   float64
	ChargeCD float64
	SummonCD float64
}

func newBossState() *BossState {
	return &BossState{
		Phase:    1,
		SlamCD:   BossSlamCD / 2,
		ChargeCD: BossChargeCD / 2,
		SummonCD: BossSummonCD / 2,
	}
}

func (b *BossState) tick(dt float64) {
	b.SlamCD -= dt
	b.ChargeCD -= dt
	b.SummonCD -= dt
}

// bossPhaseFor maps remaining health to phase 1 (> 2/3), 2 (1/3..2/3) or 3 (< 1/3)
func bossPhaseFor(health, maxHealth int) int {
	if maxHealth <= 0 {
		return 1
	}
	frac := float64(health) / float64(maxHealth)
	switch {
	case frac > 2.0/3.0:
		return 1
	case frac >= 1.0/3.0:
		return 2
	default:
		return 3
	}
}

// bossCooldownMul shortens every boss cooldown as it gets hurt
func bossCooldownMul(phase int) float64 {
	switch phase {
	case 2:
		return 0.75
	case 3:
		return 0.5
	}
	return 1
}

// updateBoss runs the boss specials. Returns true when the boss committed to
// one this tick and normal attack/movement should be skipped.
func updateBoss(r *Room, a *Agent, target *Player, dist float64) bool {
	b := a.Boss
	if p := bossPhaseFor(a.Health, a.MaxHealth); p != b.Phase {
		b.Phase = p
		r.broadcast(MsgBossPhase, BossPhaseMsg{ID: a.ID, Phase: p})
		r.log.Info("boss phase", zap.Uint16("agent", a.ID), zap.Int("phase", p))
	}
	mul := bossCooldownMul(b.Phase)

	switch {
	case dist <= BossSlamRange && b.SlamCD <= 0:
		b.SlamCD = BossSlamCD * mul
		bossSlam(r, a)
		return true
	case dist >= BossChargeMinRange && b.ChargeCD <= 0 && r.nav.LineOfSight(a.X, a.Z, target.X, target.Z):
		b.ChargeCD = BossChargeCD * mul
		dx, dz := target.X-a.X, target.Z-a.Z
		l := math.Hypot(dx, dz)
		a.Ability = AbilityCharge
		a.AbilityT = BossChargeDuration
		a.AbilityVel = Vec2{X: dx / l * BossChargeSpeed, Z: dz / l * BossChargeSpeed}
		a.AbilityDmg = BossChargeDamage
		a.AbilityHit = BossChargeHitRange
		a.AbilityDone = false
		a.Path = nil
		a.Rotation = Heading(a.X, a.Z, target.X, target.Z)
		r.broadcast(MsgBossCharge, ZombieAbilityMsg{
			ID:       a.ID,
			Kind:     "charge",
			ToX:      round2(a.X + a.AbilityVel.X*BossChargeDuration),
			ToZ:      round2(a.Z + a.AbilityVel.Z*BossChargeDuration),
			Duration: BossChargeDuration,
		})
		return true
	case b.Phase >= 2 && b.SummonCD <= 0:
		b.SummonCD = BossSummonCD * mul
		bossSummon(r, a)
		return true
	}
	return false
}

func bossSlam(r *Room, a *Agent) {
	for _, p := range r.playersWithin(a.X, a.Z, BossSlamRadius) {
		r.damagePlayer(p, BossSlamDamage, a.ID)
	}
	r.broadcast(MsgBossSlam, BossSlamMsg{ID: a.ID, X: round2(a.X), Z: round2(a.Z), Radius: BossSlamRadius})
}

func bossSummon(r *Room, a *Agent) {
	ids := make([]uint16, 0, BossSummonCount)
	for i := 0; i < BossSummonCount; i++ {
		if r.countAlive(AgentMinion) >= BossMaxMinions {
			break
		}
		ang := float64(i)/BossSummonCount*2*math.Pi + r.rng.Float64()*0.5
		x := a.X + math.Sin(ang)*BossSummonRadius
		z := a.Z + math.Cos(ang)*BossSummonRadius
		if !r.nav.WalkableAt(x, z) {
			continue
		}
		if m := r.spawnAgent(AgentMinion, x, z); m != nil {
			ids = append(ids, m.ID)
		}
	}
	r.broadcast(MsgBossSummon, BossSummonMsg{ID: a.ID, Minions: ids})
}
