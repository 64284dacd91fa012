package engine

import (
	"testing"

	"thalren.vale/internal/chronicle"
)

func TestPluginSpawnHonorsNamePrefix(t *testing.T) {
	s := New(testConfig(1, 0, 50), chronicle.New(nil))
	habitable := s.Grid.Habitable()
	if len(habitable) == 0 {
		t.Skip("generated grid has no habitable tiles")
	}
	home := habitable[0]

	cmd := &pluginCommands{sim: s, tick: 1, name: "refugees"}
	if n := cmd.SpawnAgents(2, home.Row, home.Col, "Refugee"); n != 2 {
		t.Fatalf("spawned = %d, want 2", n)
	}

	for _, want := range []string{"Refugee-1", "Refugee-2"} {
		found := false
		for _, a := range s.Agents {
			if a.Name == want {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("no agent named %s; plugin spawns must carry the requested prefix", want)
		}
	}
}
