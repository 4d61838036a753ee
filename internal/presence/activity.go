package presence

import (
	"fmt"
	"time"

	"github.com/mcsr-tools/splitwatch/internal/model"
)

// Activity is the display content for one milestone, resolved images
// included. Image keys refer to the Discord application's art assets.
type Activity struct {
	State      string
	Details    string
	LargeImage string
	LargeText  string
	SmallImage string
	SmallText  string
	// Start anchors the displayed elapsed timer. Zero means no timer.
	Start time.Time
}

var activities = map[model.Milestone]Activity{
	model.MilestoneNone: {
		State: "Starting a new run", Details: "Grinding the overworld...",
		LargeImage: "overworld", LargeText: "Overworld",
		SmallImage: "grass_block", SmallText: "Just started",
	},
	model.MilestoneNether: {
		State: "Entered the Nether", Details: "Trading piglins / looting bastion...",
		LargeImage: "nether", LargeText: "The Nether",
		SmallImage: "nether_portal", SmallText: "Nether entered",
	},
	model.MilestoneBastion: {
		State: "In Bastion Remnant", Details: "Looting gold & ender pearls...",
		LargeImage: "nether", LargeText: "The Nether",
		SmallImage: "bastion", SmallText: "Bastion found",
	},
	model.MilestoneFortress: {
		State: "In Nether Fortress", Details: "Collecting blaze rods...",
		LargeImage: "nether", LargeText: "The Nether",
		SmallImage: "fortress", SmallText: "Fortress found",
	},
	model.MilestoneFirstPortal: {
		State: "Built First Portal", Details: "Returning to the overworld...",
		LargeImage: "nether", LargeText: "The Nether",
		SmallImage: "obsidian", SmallText: "Portal constructed",
	},
	model.MilestoneStronghold: {
		State: "Locating Stronghold", Details: "Throwing eyes of ender...",
		LargeImage: "stronghold", LargeText: "Searching for Stronghold",
		SmallImage: "ender_eye", SmallText: "Stronghold phase",
	},
	model.MilestoneEnd: {
		State: "Entered the End", Details: "Fighting the Ender Dragon!",
		LargeImage: "end", LargeText: "The End",
		SmallImage: "end_portal", SmallText: "End portal entered",
	},
	model.MilestoneFinish: {
		State: "Run Complete!", Details: "Dragon has been slain!",
		LargeImage: "credits", LargeText: "Finished!",
		SmallImage: "dragon_egg", SmallText: "Run finished",
	},
}

// BuildActivity resolves the display content for a status snapshot.
func BuildActivity(s model.Status) Activity {
	a, ok := activities[s.Milestone]
	if !ok {
		a = activities[model.MilestoneNone]
	}

	if s.Elapsed > 0 {
		a.Details = fmt.Sprintf("%s | IGT: %s", a.Details, FormatIGT(s.Elapsed))
	}
	if s.Milestone.Terminal() && s.Elapsed > 0 {
		a.State = fmt.Sprintf("FINISHED! IGT: %s", FormatIGT(s.Elapsed))
	}
	if s.NewRun {
		a.Start = s.EpochStart
	}

	return a
}

// FormatIGT formats an in-game time the way speedrun timers display it
// (m:ss.mmm).
func FormatIGT(d time.Duration) string {
	if d <= 0 {
		return "0:00.000"
	}
	ms := d.Milliseconds()
	return fmt.Sprintf("%d:%02d.%03d", ms/60000, ms/1000%60, ms%1000)
}
