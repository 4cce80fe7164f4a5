package main

import "fmt"

// AgentType identifies the kind of hostile agent
type AgentType uint8

const (
	AgentNormal AgentType = iota
	AgentRunner
	AgentTank
	AgentSpitter
	AgentExploder
	AgentMinion
	AgentBoss
)

func (t AgentType) String() string {
	switch t {
	case AgentNormal:
		return "normal"
	case AgentRunner:
		return "runner"
	case AgentTank:
		return "tank"
	case AgentSpitter:
		return "spitter"
	case AgentExploder:
		return "exploder"
	case AgentMinion:
		return "minion"
	case AgentBoss:
		return "boss"
	}
	return fmt.Sprintf("agent(%d)", uint8(t))
}

// AbilityKind is the special move an agent type can commit to
type AbilityKind uint8

const (
	AbilityNone AbilityKind = iota
	AbilityLeap
	AbilityCharge
)

// AgentDef holds the stats for an agent type
type AgentDef struct {
	MaxHealth   int
	Speed       float64 // units/s
	Damage      int
	AttackRange float64
	AttackCD    float64 // seconds between attacks
	Scale       float64
	Radius      float64
	Points      int // score for the killer

	Ranged      bool
	Standoff    float64 // ranged types back off when closer than this
	ProjSpeed   float64
	Explodes    bool
	BlastRadius float64

	Ability         AbilityKind
	AbilityMinRange float64
	AbilityMaxRange float64
	AbilityCD       float64
	AbilityDuration float64
	AbilitySpeedMul float64
	AbilityDamage   int
	AbilityHitRange float64

	CountsForWave bool
}

// Def resolves the definition for an agent type. Every type must be handled
// here; there is no table to fall through to.
func (t AgentType) Def() AgentDef {
	switch t {
	case AgentNormal:
		return AgentDef{
			MaxHealth: 100, Speed: 3.0, Damage: 10, AttackRange: 1.5, AttackCD: 1.0,
			Scale: 1, Radius: 0.5, Points: 10, CountsForWave: true,
		}
	case AgentRunner:
		return AgentDef{
			MaxHealth: 60, Speed: 5.5, Damage: 8, AttackRange: 1.3, AttackCD: 0.7,
			Scale: 0.9, Radius: 0.45, Points: 15, CountsForWave: true,
			Ability: AbilityLeap, AbilityMinRange: 4, AbilityMaxRange: 9, AbilityCD: 5,
			AbilityDuration: 0.45, AbilityDamage: 15, AbilityHitRange: 1.8,
		}
	case AgentTank:
		return AgentDef{
			MaxHealth: 400, Speed: 1.8, Damage: 25, AttackRange: 2.0, AttackCD: 1.5,
			Scale: 1.6, Radius: 0.9, Points: 50, CountsForWave: true,
			Ability: AbilityCharge, AbilityMinRange: 6, AbilityMaxRange: 16, AbilityCD: 8,
			AbilityDuration: 1.2, AbilitySpeedMul: 3.5, AbilityDamage: 30, AbilityHitRange: 2.2,
		}
	case AgentSpitter:
		return AgentDef{
			MaxHealth: 80, Speed: 2.5, Damage: 12, AttackRange: 12, AttackCD: 2.0,
			Scale: 1, Radius: 0.5, Points: 25, CountsForWave: true,
			Ranged: true, Standoff: 7, ProjSpeed: 15,
		}
	case AgentExploder:
		return AgentDef{
			MaxHealth: 50, Speed: 4.0, Damage: 40, AttackRange: 1.6,
			Scale: 1.1, Radius: 0.55, Points: 20, CountsForWave: true,
			Explodes: true, BlastRadius: 3.5,
		}
	case AgentMinion:
		return AgentDef{
			MaxHealth: 40, Speed: 4.5, Damage: 5, AttackRange: 1.2, AttackCD: 0.8,
			Scale: 0.7, Radius: 0.35, Points: 5,
		}
	case AgentBoss:
		return AgentDef{
			MaxHealth: 5000, Speed: 2.2, Damage: 30, AttackRange: 3.0, AttackCD: 1.5,
			Scale: 3, Radius: 1.5, Points: 1000, CountsForWave: true,
		}
	}
	panic(fmt.Sprintf("unhandled agent type %d", uint8(t)))
}

// Agent is a server-simulated hostile entity
type Agent struct {
	ID        uint16
	Type      AgentType
	X, Z      float64
	Rotation  float64
	Health    int
	MaxHealth int
	Speed     float64
	Damage    int
	Scale     float64
	Alive     bool
	Counted   bool // contributes to the wave kill count

	TargetID   string
	Path       []Vec2 // nil when no walkable route exists
	PathIdx    int
	PathAt     float64 // room clock when Path was computed
	PathGoal   Vec2
	PathFailed bool
	AttackCD   float64
	AbilityCD  float64

	// Leap/charge in progress
	Ability     AbilityKind
	AbilityT    float64 // seconds remaining
	AbilityVel  Vec2
	AbilityDmg  int
	AbilityHit  float64
	AbilityDone bool // impact already applied

	// Stuck detection
	StuckX, StuckZ float64
	StuckT         float64
	StuckStrikes   int
	Relocations    int

	Boss *BossState
}

// Position implements Locatable
func (a *Agent) Position() (float64, float64) { return a.X, a.Z }

func (a *Agent) def() AgentDef { return a.Type.Def() }

// resetFor prepares a pooled agent for a fresh spawn
func (a *Agent) resetFor(id uint16, t AgentType, x, z float64, healthMul float64) {
	d := t.Def()
	hp := int(float64(d.MaxHealth) * healthMul)
	if hp < 1 {
		hp = 1
	}
	*a = Agent{
		ID:        id,
		Type:      t,
		X:         x,
		Z:         z,
		Rotation:  Heading(x, z, 0, 0),
		Health:    hp,
		MaxHealth: hp,
		Speed:     d.Speed,
		Damage:    d.Damage,
		Scale:     d.Scale,
		Alive:     true,
		Counted:   d.CountsForWave,
		StuckX:    x,
		StuckZ:    z,
		AbilityCD: d.AbilityCD * 0.5,
	}
	if t == AgentBoss {
		a.Boss = newBossState()
	}
}

// TakeDamage reduces health and returns true exactly once, on the hit that
// kills the agent
func (a *Agent) TakeDamage(dmg int) bool {
	if !a.Alive || dmg <= 0 {
		return false
	}
	a.Health -= dmg
	if a.Health <= 0 {
		a.Health = 0
		a.Alive = false
		return true
	}
	return false
}

// agentPool recycles Agent values for one room. Released agents are wiped
// before reuse so nothing leaks between spawns.
type agentPool struct {
	free []*Agent
}

func (p *agentPool) Acquire() *Agent {
	if n := len(p.free); n > 0 {
		a := p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
		return a
	}
	return &Agent{}
}

func (p *agentPool) Release(a *Agent) {
	*a = Agent{}
	p.free = append(p.free, a)
}
