package domain

import (
	"fmt"
	"strings"
	"time"
)

// ScanMode selects which half of the two-scan protocol a scan records
type ScanMode string

const (
	ScanModeStart ScanMode = "start"
	ScanModeEnd   ScanMode = "end"
)

func (m ScanMode) Valid() bool {
	return m == ScanModeStart || m == ScanModeEnd
}

// MatchCheckpoint resolves a scanned string to a checkpoint index.
//
// When selectedID is set the scan is validated against that checkpoint only and a
// non-matching string is a mismatch. Otherwise the code is the primary key and the
// area name is a fallback that must identify exactly one checkpoint.
func MatchCheckpoint(checkpoints []Checkpoint, scanned, selectedID string) (int, error) {
	scanned = strings.TrimSpace(scanned)
	if scanned == "" {
		return -1, NewValidationError("code", "is required")
	}

	if selectedID != "" {
		for i := range checkpoints {
			if checkpoints[i].ID != selectedID {
				continue
			}
			if checkpoints[i].Code == scanned || checkpoints[i].Area == scanned {
				return i, nil
			}
			return -1, fmt.Errorf("expected %s, scanned %q: %w", checkpoints[i].Code, scanned, ErrScanMismatch)
		}
		return -1, ErrCheckpointNotFound
	}

	for i := range checkpoints {
		if checkpoints[i].Code == scanned {
			return i, nil
		}
	}

	match := -1
	for i := range checkpoints {
		if checkpoints[i].Area != scanned {
			continue
		}
		if match >= 0 {
			return -1, fmt.Errorf("%q: %w", scanned, ErrAmbiguousScan)
		}
		match = i
	}
	if match < 0 {
		return -1, fmt.Errorf("%q: %w", scanned, ErrCodeNotFound)
	}
	return match, nil
}

// StartScan records the start of work. Re-scanning to start overwrites scanStart.
func (c *Checkpoint) StartScan(scanned string, now time.Time) error {
	if c.Closed() {
		return ErrCheckpointClosed
	}
	ts := now
	c.ScanStart = &ts
	c.VerifiedCode = strings.TrimSpace(scanned)
	return nil
}

// EndScan records the end of work and marks the checkpoint treated.
// With open tasks it fails with ErrIncompleteTasks unless force completes them.
func (c *Checkpoint) EndScan(now time.Time, force bool) error {
	if c.ScanStart == nil {
		return ErrScanNotStarted
	}
	if c.Closed() {
		return ErrCheckpointClosed
	}
	if open := c.IncompleteTasks(); open > 0 {
		if !force {
			return fmt.Errorf("%d of %d tasks open: %w", open, len(c.Tasks), ErrIncompleteTasks)
		}
		for i := range c.Tasks {
			if !c.Tasks[i].Completed {
				ts := now
				c.Tasks[i].Completed = true
				c.Tasks[i].Timestamp = &ts
			}
		}
	}
	ts := now
	c.ScanEnd = &ts
	c.IsTreated = true
	return nil
}
