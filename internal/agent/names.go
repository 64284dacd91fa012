package agent

import "strconv"

// BaseNames is the pool of inhabitant names. When every base name is taken
// by a living or dead agent, NextName appends a generation marker.
var BaseNames = []string{
	"Arin", "Brek", "Cael", "Dova", "Esh", "Fenn", "Gara", "Holt", "Ivar", "Joss",
	"Kael", "Lira", "Mord", "Neva", "Orin", "Pell", "Quen", "Reva", "Sal", "Tova",
	"Ursa", "Vael", "Wren", "Xan", "Yeva", "Zorn", "Alun", "Brea", "Coro", "Dusk",
	"Emra", "Finn", "Gale", "Hana", "Idra", "Jorn", "Kira", "Lyse", "Mael", "Nori",
	"Olen", "Pyra", "Roan", "Sera", "Thev",
}

// NextName returns an unused name, deduplicating against used by appending a
// generation suffix. Returns "" when generations 2–9 are also exhausted.
func NextName(used map[string]bool) string {
	for _, n := range BaseNames {
		if !used[n] {
			return n
		}
	}
	for gen := '2'; gen <= '9'; gen++ {
		for _, n := range BaseNames {
			candidate := n + string(gen)
			if !used[candidate] {
				return candidate
			}
		}
	}
	return ""
}

// PrefixedName returns "<prefix>-N" with the lowest free N. Spawn sources
// such as plugins use it to mark where their arrivals came from.
func PrefixedName(used map[string]bool, prefix string) string {
	for i := 1; i < 10000; i++ {
		candidate := prefix + "-" + strconv.Itoa(i)
		if !used[candidate] {
			return candidate
		}
	}
	return ""
}
