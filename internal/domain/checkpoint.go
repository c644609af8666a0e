package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Severity of a finding
type Severity string

const (
	SeverityLow    Severity = "Low"
	SeverityMedium Severity = "Medium"
	SeverityHigh   Severity = "High"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

// InfestationLevel of a finding
type InfestationLevel string

const (
	InfestationTrace  InfestationLevel = "Trace"
	InfestationLow    InfestationLevel = "Low"
	InfestationMedium InfestationLevel = "Medium"
	InfestationHigh   InfestationLevel = "High"
	InfestationSevere InfestationLevel = "Severe"
)

func (l InfestationLevel) Valid() bool {
	switch l {
	case InfestationTrace, InfestationLow, InfestationMedium, InfestationHigh, InfestationSevere:
		return true
	}
	return false
}

// ActionPriority of a finding
type ActionPriority string

const (
	PriorityRoutine  ActionPriority = "Routine"
	PriorityUrgent   ActionPriority = "Urgent"
	PriorityCritical ActionPriority = "Critical"
)

func (p ActionPriority) Valid() bool {
	switch p {
	case PriorityRoutine, PriorityUrgent, PriorityCritical:
		return true
	}
	return false
}

// Activity observed at a bait station
type Activity string

const (
	ActivityNone Activity = "None"
	ActivityLow  Activity = "Low"
	ActivityHigh Activity = "High"
)

// BaitCondition of a bait station
type BaitCondition string

const (
	BaitIntact   BaitCondition = "Intact"
	BaitPartial  BaitCondition = "Partial"
	BaitConsumed BaitCondition = "Consumed"
)

// StationStatus of a bait station
type StationStatus string

const (
	StationOK      StationStatus = "OK"
	StationDamaged StationStatus = "Damaged"
	StationMissing StationStatus = "Missing"
)

// MonitorData holds the tri-state readings of a bait station
type MonitorData struct {
	Activity      Activity      `json:"activity"`
	BaitCondition BaitCondition `json:"baitCondition"`
	StationStatus StationStatus `json:"stationStatus"`
}

// Validate checks every reading is one of its three states
func (m MonitorData) Validate() error {
	switch m.Activity {
	case ActivityNone, ActivityLow, ActivityHigh:
	default:
		return NewValidationError("monitorData.activity", fmt.Sprintf("unknown value %q", m.Activity))
	}
	switch m.BaitCondition {
	case BaitIntact, BaitPartial, BaitConsumed:
	default:
		return NewValidationError("monitorData.baitCondition", fmt.Sprintf("unknown value %q", m.BaitCondition))
	}
	switch m.StationStatus {
	case StationOK, StationDamaged, StationMissing:
	default:
		return NewValidationError("monitorData.stationStatus", fmt.Sprintf("unknown value %q", m.StationStatus))
	}
	return nil
}

// Task is one checklist item of a checkpoint
type Task struct {
	ID          string     `json:"id"`
	Description string     `json:"description"`
	Completed   bool       `json:"completed"`
	Timestamp   *time.Time `json:"timestamp,omitempty"`
}

// DefaultTaskDescriptions is the checklist attached when none is supplied
var DefaultTaskDescriptions = []string{"Inspect", "PPE", "Apply Treatment", "Clean Area"}

// Checkpoint is one physical location inspected or treated within a job
type Checkpoint struct {
	ID               string           `json:"id"`
	Code             string           `json:"code"`
	Area             string           `json:"area"`
	PestType         string           `json:"pestType"`
	Severity         Severity         `json:"severity"`
	InfestationLevel InfestationLevel `json:"infestationLevel"`
	ActionPriority   ActionPriority   `json:"actionPriority"`
	Notes            string           `json:"notes,omitempty"`
	IsBaitStation    bool             `json:"isBaitStation"`
	Tasks            []Task           `json:"tasks"`
	MonitorData      *MonitorData     `json:"monitorData,omitempty"`
	ScanStart        *time.Time       `json:"scanStart,omitempty"`
	ScanEnd          *time.Time       `json:"scanEnd,omitempty"`
	VerifiedCode     string           `json:"verifiedCode,omitempty"`
	IsTreated        bool             `json:"isTreated"`
	Photos           []string         `json:"photos"`
	CreatedAt        time.Time        `json:"createdAt"`
}

func (c Checkpoint) clone() Checkpoint {
	out := c
	if c.Tasks != nil {
		out.Tasks = make([]Task, len(c.Tasks))
		for i, t := range c.Tasks {
			t.Timestamp = clonePtr(t.Timestamp)
			out.Tasks[i] = t
		}
	}
	out.MonitorData = clonePtr(c.MonitorData)
	out.ScanStart = clonePtr(c.ScanStart)
	out.ScanEnd = clonePtr(c.ScanEnd)
	out.Photos = slices.Clone(c.Photos)
	return out
}

// CheckpointInput carries the operator supplied fields of a new checkpoint
type CheckpointInput struct {
	Area             string
	PestType         string
	Severity         Severity
	InfestationLevel InfestationLevel
	ActionPriority   ActionPriority
	Notes            string
	IsBaitStation    bool
	Tasks            []string
}

// Validate rejects a checkpoint without area or pest type and unknown enum values
func (in *CheckpointInput) Validate() error {
	if strings.TrimSpace(in.Area) == "" {
		return NewValidationError("area", "is required")
	}
	if strings.TrimSpace(in.PestType) == "" {
		return NewValidationError("pestType", "is required")
	}
	if in.Severity != "" && !in.Severity.Valid() {
		return NewValidationError("severity", fmt.Sprintf("unknown value %q", in.Severity))
	}
	if in.InfestationLevel != "" && !in.InfestationLevel.Valid() {
		return NewValidationError("infestationLevel", fmt.Sprintf("unknown value %q", in.InfestationLevel))
	}
	if in.ActionPriority != "" && !in.ActionPriority.Valid() {
		return NewValidationError("actionPriority", fmt.Sprintf("unknown value %q", in.ActionPriority))
	}
	return nil
}

// NewCheckpoint builds a checkpoint from validated input. newID supplies checkpoint and task ids.
func NewCheckpoint(in CheckpointInput, code string, now time.Time, newID func() string) Checkpoint {
	cp := Checkpoint{
		ID:               newID(),
		Code:             code,
		Area:             strings.TrimSpace(in.Area),
		PestType:         strings.TrimSpace(in.PestType),
		Severity:         in.Severity,
		InfestationLevel: in.InfestationLevel,
		ActionPriority:   in.ActionPriority,
		Notes:            in.Notes,
		IsBaitStation:    in.IsBaitStation,
		Photos:           []string{},
		CreatedAt:        now,
	}
	if cp.Severity == "" {
		cp.Severity = SeverityLow
	}
	if cp.InfestationLevel == "" {
		cp.InfestationLevel = InfestationLow
	}
	if cp.ActionPriority == "" {
		cp.ActionPriority = PriorityRoutine
	}

	descriptions := make([]string, 0, len(in.Tasks))
	for _, d := range in.Tasks {
		if d = strings.TrimSpace(d); d != "" {
			descriptions = append(descriptions, d)
		}
	}
	if len(descriptions) == 0 {
		descriptions = DefaultTaskDescriptions
	}

	cp.Tasks = make([]Task, len(descriptions))
	for i, d := range descriptions {
		cp.Tasks[i] = Task{ID: newID(), Description: d}
	}
	return cp
}

// TaskIndex returns the position of the task with id, or -1
func (c *Checkpoint) TaskIndex(id string) int {
	for i := range c.Tasks {
		if c.Tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// IncompleteTasks counts unchecked tasks
func (c *Checkpoint) IncompleteTasks() int {
	n := 0
	for _, t := range c.Tasks {
		if !t.Completed {
			n++
		}
	}
	return n
}

// Closed reports whether the end scan has been recorded
func (c *Checkpoint) Closed() bool {
	return c.ScanEnd != nil
}

// SetTaskCompleted checks or unchecks a task
func (c *Checkpoint) SetTaskCompleted(taskID string, completed bool, now time.Time) error {
	if c.Closed() {
		return ErrCheckpointClosed
	}
	i := c.TaskIndex(taskID)
	if i < 0 {
		return ErrTaskNotFound
	}
	c.Tasks[i].Completed = completed
	if completed {
		ts := now
		c.Tasks[i].Timestamp = &ts
	} else {
		c.Tasks[i].Timestamp = nil
	}
	return nil
}

// AddTask appends a task to the checklist
func (c *Checkpoint) AddTask(description, id string) error {
	if c.Closed() {
		return ErrCheckpointClosed
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return NewValidationError("description", "is required")
	}
	c.Tasks = append(c.Tasks, Task{ID: id, Description: description})
	return nil
}

// SetMonitorData replaces the bait station readings
func (c *Checkpoint) SetMonitorData(data MonitorData) error {
	if c.Closed() {
		return ErrCheckpointClosed
	}
	if err := data.Validate(); err != nil {
		return err
	}
	c.MonitorData = &data
	return nil
}
