package model

// Milestone is a named point in the fixed speedrun progress order.
type Milestone string

const (
	// MilestoneNone is the sentinel starting milestone (no split reached yet).
	MilestoneNone Milestone = "none"
	// MilestoneNether marks entering the Nether.
	MilestoneNether Milestone = "nether"
	// MilestoneBastion marks entering a Bastion Remnant.
	MilestoneBastion Milestone = "bastion"
	// MilestoneFortress marks entering a Nether Fortress.
	MilestoneFortress Milestone = "fortress"
	// MilestoneFirstPortal marks building the first exit portal.
	MilestoneFirstPortal Milestone = "first_portal"
	// MilestoneStronghold marks locating the Stronghold.
	MilestoneStronghold Milestone = "stronghold"
	// MilestoneEnd marks entering the End.
	MilestoneEnd Milestone = "end"
	// MilestoneFinish marks the dragon kill (run complete).
	MilestoneFinish Milestone = "finish"
)

// SplitOrder is the fixed total order of milestones. Later means further
// into the run. It is immutable for the process lifetime.
var SplitOrder = []Milestone{
	MilestoneNone,
	MilestoneNether,
	MilestoneBastion,
	MilestoneFortress,
	MilestoneFirstPortal,
	MilestoneStronghold,
	MilestoneEnd,
	MilestoneFinish,
}

var milestoneRanks = func() map[Milestone]int {
	ranks := make(map[Milestone]int, len(SplitOrder))
	for i, m := range SplitOrder {
		ranks[m] = i
	}
	return ranks
}()

// Rank returns the milestone position in the split order. Unknown
// milestones rank below the sentinel.
func (m Milestone) Rank() int {
	r, ok := milestoneRanks[m]
	if !ok {
		return -1
	}
	return r
}

// Known returns true if the milestone is part of the split order.
func (m Milestone) Known() bool {
	_, ok := milestoneRanks[m]
	return ok
}

// Terminal returns true if the milestone ends the run.
func (m Milestone) Terminal() bool { return m == MilestoneFinish }
