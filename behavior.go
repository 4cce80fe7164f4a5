package main

import "math"

// Behaviour tuning
const (
	PathValidity         = 1.0 // seconds a cached path stays fresh
	PathRetargetDistance = 3.0 // target drift that invalidates a path early
	PathBudgetPerTick    = 8   // A* searches per room tick; the rest move directly
	WaypointReached      = 0.4

	StuckWindow          = 3.0
	StuckMinDisplacement = 0.5
	StuckRespawnDistance = 15.0
	RelocateAttempts     = 8

	SpitHitRadius = 1.5
)

// updateAgent advances one agent by dt seconds: ability in flight, target
// selection, boss specials, ability gate, attack, movement, stuck check.
func updateAgent(r *Room, a *Agent, dt float64) {
	if !a.Alive {
		return
	}
	d := a.def()
	a.AttackCD -= dt
	a.AbilityCD -= dt
	if a.Boss != nil {
		a.Boss.tick(dt)
	}

	if a.Ability != AbilityNone {
		advanceAbility(r, a, dt)
		resetStuck(a)
		return
	}

	target, dist, ok := r.nearestPlayer(a.X, a.Z)
	if !ok {
		a.TargetID = ""
		resetStuck(a)
		return
	}
	a.TargetID = target.ID

	if a.Boss != nil && updateBoss(r, a, target, dist) {
		resetStuck(a)
		return
	}

	if d.Ability != AbilityNone && a.AbilityCD <= 0 &&
		dist >= d.AbilityMinRange && dist <= d.AbilityMaxRange &&
		r.nav.LineOfSight(a.X, a.Z, target.X, target.Z) {
		startAbility(r, a, d, target)
		resetStuck(a)
		return
	}

	if dist <= d.AttackRange {
		a.Rotation = Heading(a.X, a.Z, target.X, target.Z)
		if d.Explodes {
			explode(r, a, d)
			return
		}
		if a.AttackCD <= 0 {
			cd := d.AttackCD
			if a.Boss != nil {
				cd *= bossCooldownMul(a.Boss.Phase)
			}
			a.AttackCD = cd
			if d.Ranged {
				spit(r, a, d, target)
			} else {
				r.damagePlayer(target, a.Damage, a.ID)
			}
			r.broadcast(MsgZombieAttack, ZombieAttackMsg{ID: a.ID, Target: target.ID})
		}
		if !d.Ranged || dist >= d.Standoff {
			resetStuck(a)
			return
		}
	}

	moveAgent(r, a, d, target, dist, dt)
	checkStuck(r, a, dt)
}

func resetStuck(a *Agent) {
	a.StuckX, a.StuckZ = a.X, a.Z
	a.StuckT = 0
	a.StuckStrikes = 0
}

// checkStuck samples displacement over fixed windows. The first short window
// drops the cached path; the second relocates the agent to an edge spawn if
// no player is close enough to notice.
func checkStuck(r *Room, a *Agent, dt float64) {
	a.StuckT += dt
	if a.StuckT < StuckWindow {
		return
	}
	moved := Distance(a.StuckX, a.StuckZ, a.X, a.Z)
	a.StuckX, a.StuckZ = a.X, a.Z
	a.StuckT = 0
	if moved >= StuckMinDisplacement {
		a.StuckStrikes = 0
		return
	}
	a.StuckStrikes++
	a.Path = nil
	a.PathIdx = 0
	a.PathFailed = false
	if a.StuckStrikes < 2 {
		return
	}
	if _, d, ok := r.nearestPlayer(a.X, a.Z); ok && d <= StuckRespawnDistance {
		return
	}
	if r.relocateAgent(a, RelocateAttempts) {
		a.Relocations++
		resetStuck(a)
	}
}

func startAbility(r *Room, a *Agent, d AgentDef, target *Player) {
	dx, dz := target.X-a.X, target.Z-a.Z
	l := math.Hypot(dx, dz)
	if l < 1e-6 {
		return
	}
	switch d.Ability {
	case AbilityLeap:
		// lands where the target stood
		a.AbilityVel = Vec2{X: dx / d.AbilityDuration, Z: dz / d.AbilityDuration}
	case AbilityCharge:
		s := a.Speed * d.AbilitySpeedMul
		a.AbilityVel = Vec2{X: dx / l * s, Z: dz / l * s}
	default:
		return
	}
	a.Ability = d.Ability
	a.AbilityT = d.AbilityDuration
	a.AbilityCD = d.AbilityCD
	a.AbilityDmg = d.AbilityDamage
	a.AbilityHit = d.AbilityHitRange
	a.AbilityDone = false
	a.Path = nil
	a.Rotation = Heading(a.X, a.Z, target.X, target.Z)

	kind := "leap"
	if d.Ability == AbilityCharge {
		kind = "charge"
	}
	r.broadcast(MsgZombieAbility, ZombieAbilityMsg{
		ID:       a.ID,
		Kind:     kind,
		ToX:      round2(a.X + a.AbilityVel.X*d.AbilityDuration),
		ToZ:      round2(a.Z + a.AbilityVel.Z*d.AbilityDuration),
		Duration: d.AbilityDuration,
	})
}

// advanceAbility moves along the committed vector. Charges hit the first
// player they reach; leaps hit everyone near the landing spot. Walls end the
// move early.
func advanceAbility(r *Room, a *Agent, dt float64) {
	step := math.Min(dt, a.AbilityT)
	nx := a.X + a.AbilityVel.X*step
	nz := a.Z + a.AbilityVel.Z*step
	if r.nav.WalkableAt(nx, nz) {
		a.X, a.Z = nx, nz
		a.AbilityT -= step
	} else {
		a.AbilityT = 0
	}

	if a.Ability == AbilityCharge && !a.AbilityDone {
		if p, dist, ok := r.nearestPlayer(a.X, a.Z); ok && dist <= a.AbilityHit {
			a.AbilityDone = true
			r.damagePlayer(p, a.AbilityDmg, a.ID)
			a.AbilityT = 0
		}
	}
	if a.AbilityT > 0 {
		return
	}
	if a.Ability == AbilityLeap && !a.AbilityDone {
		for _, p := range r.playersWithin(a.X, a.Z, a.AbilityHit) {
			r.damagePlayer(p, a.AbilityDmg, a.ID)
		}
	}
	a.Ability = AbilityNone
	a.AbilityVel = Vec2{}
	a.AbilityDone = false
}

// spit launches a projectile at where the target is now. Damage resolves when
// it lands, against whoever is still near the aim point.
func spit(r *Room, a *Agent, d AgentDef, target *Player) {
	aimX, aimZ := target.X, target.Z
	flight := Distance(a.X, a.Z, aimX, aimZ) / d.ProjSpeed
	src, dmg, targetID := a.ID, a.Damage, target.ID
	r.broadcast(MsgZombieSpit, ZombieSpitMsg{
		ID: src, FromX: round2(a.X), FromZ: round2(a.Z),
		ToX: round2(aimX), ToZ: round2(aimZ), Flight: round2(flight),
	})
	r.sched.After(flight, func() {
		p := r.players[targetID]
		if p == nil || !p.Alive {
			return
		}
		if CheckCollision(aimX, aimZ, SpitHitRadius, p.X, p.Z, 0) {
			r.damagePlayer(p, dmg, src)
		}
	})
}

// explode damages everyone in the blast and kills the agent without crediting
// a player
func explode(r *Room, a *Agent, d AgentDef) {
	for _, p := range r.playersWithin(a.X, a.Z, d.BlastRadius) {
		r.damagePlayer(p, a.Damage, a.ID)
	}
	r.broadcast(MsgZombieExplode, ZombieExplodeMsg{ID: a.ID, X: round2(a.X), Z: round2(a.Z), Radius: d.BlastRadius})
	r.damageAgent(a, a.Health, nil, false)
}

func moveAgent(r *Room, a *Agent, d AgentDef, target *Player, dist, dt float64) {
	step := a.Speed * dt
	if d.Ranged && dist < d.Standoff {
		// back away, still facing the target
		if dist > 1e-6 {
			slideTo(r, a, a.X+(a.X-target.X)/dist*step, a.Z+(a.Z-target.Z)/dist*step)
		}
		a.Rotation = Heading(a.X, a.Z, target.X, target.Z)
		return
	}

	wx, wz := target.X, target.Z
	if r.nav.LineOfSight(a.X, a.Z, target.X, target.Z) {
		a.Path = nil
		a.PathFailed = false
	} else if wp, ok := nextWaypoint(r, a, target); ok {
		wx, wz = wp.X, wp.Z
	}

	dx, dz := wx-a.X, wz-a.Z
	l := math.Hypot(dx, dz)
	if l < 1e-6 {
		return
	}
	if step > l {
		step = l
	}
	a.Rotation = Heading(a.X, a.Z, wx, wz)
	slideTo(r, a, a.X+dx/l*step, a.Z+dz/l*step)
}

// nextWaypoint returns the current path waypoint, recomputing the path when
// it is missing, stale or aimed at a target that has since moved away. Failed
// searches are not retried until the cache would have expired.
func nextWaypoint(r *Room, a *Agent, target *Player) (Vec2, bool) {
	now := r.now()
	expired := now-a.PathAt > PathValidity ||
		Distance(a.PathGoal.X, a.PathGoal.Z, target.X, target.Z) > PathRetargetDistance
	if a.Path == nil && a.PathFailed && !expired {
		return Vec2{}, false
	}
	if a.Path == nil || a.PathIdx >= len(a.Path) || expired {
		if r.pathBudget <= 0 {
			if a.Path != nil && a.PathIdx < len(a.Path) {
				return a.advanceWaypoint()
			}
			return Vec2{}, false
		}
		r.pathBudget--
		path, ok := r.pathfinder.FindPath(a.X, a.Z, target.X, target.Z)
		a.PathAt = now
		a.PathGoal = Vec2{X: target.X, Z: target.Z}
		a.PathIdx = 0
		if !ok {
			a.Path = nil
			a.PathFailed = true
			return Vec2{}, false
		}
		a.Path = path
		a.PathFailed = false
	}
	return a.advanceWaypoint()
}

func (a *Agent) advanceWaypoint() (Vec2, bool) {
	for a.PathIdx < len(a.Path)-1 &&
		Distance(a.X, a.Z, a.Path[a.PathIdx].X, a.Path[a.PathIdx].Z) < WaypointReached {
		a.PathIdx++
	}
	return a.Path[a.PathIdx], true
}

// slideTo moves to (x, z) if walkable, otherwise tries each axis alone so
// agents slide along walls instead of sticking
func slideTo(r *Room, a *Agent, x, z float64) {
	switch {
	case r.nav.WalkableAt(x, z):
		a.X, a.Z = x, z
	case r.nav.WalkableAt(x, a.Z):
		a.X = x
	case r.nav.WalkableAt(a.X, z):
		a.Z = z
	}
}
