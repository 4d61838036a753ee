package presence_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mcsr-tools/splitwatch/internal/model"
	"github.com/mcsr-tools/splitwatch/internal/presence"
)

func TestBuildActivity(t *testing.T) {
	epoch := time.Date(2026, 2, 14, 18, 30, 0, 0, time.UTC)

	tests := map[string]struct {
		status     model.Status
		expState   string
		expDetails string
		expStart   time.Time
	}{
		"the pristine state should show the overworld with a run timer": {
			status:     model.Status{Milestone: model.MilestoneNone, NewRun: true, EpochStart: epoch},
			expState:   "Starting a new run",
			expDetails: "Grinding the overworld...",
			expStart:   epoch,
		},
		"a milestone with a known time should append the IGT": {
			status:     model.Status{Milestone: model.MilestoneNether, Elapsed: 145 * time.Second},
			expState:   "Entered the Nether",
			expDetails: "Trading piglins / looting bastion... | IGT: 2:25.000",
		},
		"a finished run should show the final time in the state line": {
			status:     model.Status{Milestone: model.MilestoneFinish, Elapsed: 490 * time.Second},
			expState:   "FINISHED! IGT: 8:10.000",
			expDetails: "Dragon has been slain! | IGT: 8:10.000",
		},
		"an unknown milestone should fall back to the pristine content": {
			status:     model.Status{Milestone: "warp_zone"},
			expState:   "Starting a new run",
			expDetails: "Grinding the overworld...",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			a := presence.BuildActivity(test.status)

			assert.Equal(t, test.expState, a.State)
			assert.Equal(t, test.expDetails, a.Details)
			assert.Equal(t, test.expStart, a.Start)
		})
	}
}

func TestFormatIGT(t *testing.T) {
	tests := map[string]struct {
		d   time.Duration
		exp string
	}{
		"zero":                       {d: 0, exp: "0:00.000"},
		"negative":                   {d: -time.Second, exp: "0:00.000"},
		"sub-second":                 {d: 450 * time.Millisecond, exp: "0:00.450"},
		"typical nether split":       {d: 2*time.Minute + 25*time.Second, exp: "2:25.000"},
		"over an hour keeps minutes": {d: 61*time.Minute + 2*time.Second + 3*time.Millisecond, exp: "61:02.003"},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.exp, presence.FormatIGT(test.d))
		})
	}
}
