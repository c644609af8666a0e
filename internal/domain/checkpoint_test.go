package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func TestCheckpointInput_Validate(t *testing.T) {
	tests := []struct {
		name  string
		input CheckpointInput
		field string
	}{
		{"valid", CheckpointInput{Area: "Kitchen", PestType: "Roach"}, ""},
		{"empty area", CheckpointInput{Area: "", PestType: "Roach"}, "area"},
		{"blank area", CheckpointInput{Area: "   ", PestType: "Roach"}, "area"},
		{"empty pest", CheckpointInput{Area: "Kitchen"}, "pestType"},
		{"bad severity", CheckpointInput{Area: "Kitchen", PestType: "Roach", Severity: "Extreme"}, "severity"},
		{"bad infestation", CheckpointInput{Area: "Kitchen", PestType: "Roach", InfestationLevel: "Some"}, "infestationLevel"},
		{"bad priority", CheckpointInput{Area: "Kitchen", PestType: "Roach", ActionPriority: "Later"}, "actionPriority"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate()
			if tt.field == "" {
				require.NoError(t, err)
				return
			}
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestNewCheckpoint(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	t.Run("default checklist and enums", func(t *testing.T) {
		cp := NewCheckpoint(CheckpointInput{Area: " Kitchen ", PestType: "Roach"}, "CHK-1-1", now, sequentialIDs())

		assert.Equal(t, "id-1", cp.ID)
		assert.Equal(t, "CHK-1-1", cp.Code)
		assert.Equal(t, "Kitchen", cp.Area)
		assert.Equal(t, SeverityLow, cp.Severity)
		assert.Equal(t, InfestationLow, cp.InfestationLevel)
		assert.Equal(t, PriorityRoutine, cp.ActionPriority)
		require.Len(t, cp.Tasks, 4)
		for i, want := range []string{"Inspect", "PPE", "Apply Treatment", "Clean Area"} {
			assert.Equal(t, want, cp.Tasks[i].Description)
			assert.False(t, cp.Tasks[i].Completed)
		}
		assert.Nil(t, cp.ScanStart)
		assert.Nil(t, cp.ScanEnd)
		assert.False(t, cp.IsTreated)
		assert.NotNil(t, cp.Photos)
	})

	t.Run("supplied tasks replace defaults", func(t *testing.T) {
		cp := NewCheckpoint(CheckpointInput{
			Area:     "Roof void",
			PestType: "Rodent",
			Severity: SeverityHigh,
			Tasks:    []string{"Set traps", " ", "Seal entry points"},
		}, "CHK-2-2", now, sequentialIDs())

		require.Len(t, cp.Tasks, 2)
		assert.Equal(t, "Set traps", cp.Tasks[0].Description)
		assert.Equal(t, "Seal entry points", cp.Tasks[1].Description)
		assert.Equal(t, SeverityHigh, cp.Severity)
	})
}

func TestCheckpoint_Edits(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	cp := NewCheckpoint(CheckpointInput{Area: "Kitchen", PestType: "Roach", IsBaitStation: true}, "CHK-1-1", now, sequentialIDs())

	require.NoError(t, cp.SetTaskCompleted(cp.Tasks[0].ID, true, now))
	assert.True(t, cp.Tasks[0].Completed)
	assert.Equal(t, now, *cp.Tasks[0].Timestamp)
	assert.Equal(t, 3, cp.IncompleteTasks())

	require.NoError(t, cp.SetTaskCompleted(cp.Tasks[0].ID, false, now))
	assert.Nil(t, cp.Tasks[0].Timestamp)

	assert.ErrorIs(t, cp.SetTaskCompleted("missing", true, now), ErrTaskNotFound)

	require.NoError(t, cp.AddTask("Replace bait", "extra"))
	assert.Len(t, cp.Tasks, 5)
	assert.ErrorIs(t, cp.AddTask("  ", "x"), ErrValidation)

	err := cp.SetMonitorData(MonitorData{Activity: "Lots", BaitCondition: BaitIntact, StationStatus: StationOK})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Nil(t, cp.MonitorData)

	require.NoError(t, cp.SetMonitorData(MonitorData{Activity: ActivityLow, BaitCondition: BaitPartial, StationStatus: StationOK}))
	assert.Equal(t, BaitPartial, cp.MonitorData.BaitCondition)
}
