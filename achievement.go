package main

// Achievement definitions
type AchievementDef struct {
	ID          string
	Name        string
	Description string
}

var Achievements = []AchievementDef{
	{"first_blood", "First Blood", "Get your first kill"},
	{"headhunter", "Headhunter", "Land 25 headshot kills in one run"},
	{"exterminator", "Exterminator", "Get 100 kills in one run"},
	{"boss_slayer", "Boss Slayer", "Land the killing blow on a boss"},
	{"untouched", "Untouched", "Clear a wave without taking damage"},
	{"veteran", "Veteran", "Clear wave 10"},
	{"legend", "Legend", "Clear wave 25"},
}

// RunStats are the per-run counters achievements look at
type RunStats struct {
	HeadshotKills int
	BossKills     int
	WaveDamage    int // damage taken since the wave started
	Unlocked      map[string]bool
}

func (rs *RunStats) reset() {
	*rs = RunStats{Unlocked: make(map[string]bool)}
}

// CheckAchievements unlocks every achievement p now qualifies for and
// returns the new ones. clearedWave is the wave just cleared, or 0 when
// called mid-wave.
func CheckAchievements(p *Player, clearedWave int) []AchievementDef {
	if p.Run.Unlocked == nil {
		p.Run.Unlocked = make(map[string]bool)
	}
	var unlocked []AchievementDef

	check := func(id string) bool {
		if p.Run.Unlocked[id] {
			return false
		}
		switch id {
		case "first_blood":
			return p.Kills >= 1
		case "headhunter":
			return p.Run.HeadshotKills >= 25
		case "exterminator":
			return p.Kills >= 100
		case "boss_slayer":
			return p.Run.BossKills >= 1
		case "untouched":
			return clearedWave > 0 && p.Alive && p.Run.WaveDamage == 0
		case "veteran":
			return clearedWave >= 10
		case "legend":
			return clearedWave >= 25
		}
		return false
	}

	for _, def := range Achievements {
		if check(def.ID) {
			p.Run.Unlocked[def.ID] = true
			unlocked = append(unlocked, def)
		}
	}
	return unlocked
}
