package combat

import (
	"log/slog"

	"thalren.vale/internal/world"
)

// processTribute runs every scheduled tribute one step. Payment comes from
// the payer's pooled reserve; when the reserve is too thin to cover a
// meaningful payment, collectors take a cut of the members' own food
// instead. The reserve never goes negative.
func (m *Machine) processTribute(tick uint64) {
	for _, w := range m.History {
		t := w.Tribute
		if t == nil || t.Remaining <= 0 {
			continue
		}
		if !t.Payer.Alive() || !t.Receiver.Alive() {
			t.Remaining = 0
			continue
		}

		amount := t.Payer.FoodReserve * TributeRate
		if amount >= 1.0 {
			t.Payer.FoodReserve -= amount
		} else {
			amount = m.collectFromMembers(t)
		}
		t.Receiver.FoodReserve += amount
		t.Remaining--

		if amount > 0 {
			m.Log.Append(tick, "war", "%s paid %.1f food in tribute to %s (%d payments left)",
				t.Payer.Name, amount, t.Receiver.Name, t.Remaining)
		}
		slog.Debug("tribute processed",
			"payer", t.Payer.Name, "receiver", t.Receiver.Name,
			"amount", amount, "remaining", t.Remaining)
	}
}

// collectFromMembers takes the tribute cut directly from member inventories,
// at least one food from anyone who has any.
func (m *Machine) collectFromMembers(t *Tribute) float64 {
	total := 0.0
	for _, member := range t.Payer.Members {
		have := member.Inventory[world.Food]
		if have <= 0 {
			continue
		}
		take := int(float64(have) * TributeRate)
		if take == 0 {
			take = 1
		}
		member.Inventory[world.Food] -= take
		total += float64(take)
	}
	return total
}
