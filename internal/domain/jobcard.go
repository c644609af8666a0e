package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Address is a postal address
type Address struct {
	Street     string `json:"street"`
	Suburb     string `json:"suburb"`
	City       string `json:"city"`
	Province   string `json:"province"`
	PostalCode string `json:"postalCode"`
}

// Lines returns the non-empty address parts in print order
func (a Address) Lines() []string {
	var lines []string
	for _, part := range []string{a.Street, a.Suburb, a.City, a.Province, a.PostalCode} {
		if p := strings.TrimSpace(part); p != "" {
			lines = append(lines, p)
		}
	}
	return lines
}

// ClientDetails is the client snapshot stored on a job card
type ClientDetails struct {
	Name      string  `json:"name"`
	Company   string  `json:"company,omitempty"`
	VATNumber string  `json:"vatNumber,omitempty"`
	Email     string  `json:"email"`
	Phone     string  `json:"phone"`
	AltPhone  string  `json:"altPhone,omitempty"`
	Address   Address `json:"address"`
}

// HistoryEntry is one audit trail record
type HistoryEntry struct {
	Date   time.Time `json:"date"`
	Action string    `json:"action"`
	User   string    `json:"user"`
}

// JobCard is the root aggregate of one client engagement
type JobCard struct {
	ID               string          `json:"id"`
	RefNumber        string          `json:"refNumber"`
	Client           ClientDetails   `json:"client"`
	AssessmentDate   string          `json:"assessmentDate"`
	ServiceDate      string          `json:"serviceDate,omitempty"`
	ServiceTime      string          `json:"serviceTime,omitempty"`
	SelectedServices []string        `json:"selectedServices"`
	Checkpoints      []Checkpoint    `json:"checkpoints"`
	Quote            JobQuote        `json:"quote"`
	Invoice          *JobInvoice     `json:"invoice,omitempty"`
	PaymentRecord    *PaymentRecord  `json:"paymentRecord,omitempty"`
	DepositPaid      bool            `json:"depositPaid"`
	MaterialUsage    []MaterialUsage `json:"materialUsage"`
	Certificates     []string        `json:"certificates"`
	Notes            string          `json:"notes,omitempty"`
	Status           JobStatus       `json:"status"`
	History          []HistoryEntry  `json:"history"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// AppendHistory records an audit entry. An empty user is recorded as "System".
func (j *JobCard) AppendHistory(now time.Time, action, user string) {
	if strings.TrimSpace(user) == "" {
		user = "System"
	}
	j.History = append(j.History, HistoryEntry{Date: now, Action: action, User: user})
	j.UpdatedAt = now
}

// SetStatus changes the status and records the transition
func (j *JobCard) SetStatus(now time.Time, status JobStatus, user string) {
	j.Status = status
	j.AppendHistory(now, fmt.Sprintf("Status changed to %s", status), user)
}

// CanAccess returns ErrFeatureLocked unless the status unlocks f
func (j *JobCard) CanAccess(f Feature) error {
	if !j.Status.Unlocks(f) {
		return fmt.Errorf("%s is unavailable while job is %s: %w", f, j.Status.Label(), ErrFeatureLocked)
	}
	return nil
}

// CheckpointIndex returns the position of the checkpoint with id, or -1
func (j *JobCard) CheckpointIndex(id string) int {
	for i := range j.Checkpoints {
		if j.Checkpoints[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so a mutation can be validated without touching the original
func (j *JobCard) Clone() *JobCard {
	out := *j
	out.SelectedServices = slices.Clone(j.SelectedServices)
	if j.Checkpoints != nil {
		out.Checkpoints = make([]Checkpoint, len(j.Checkpoints))
		for i := range j.Checkpoints {
			out.Checkpoints[i] = j.Checkpoints[i].clone()
		}
	}
	out.Quote.LineItems = slices.Clone(j.Quote.LineItems)
	if j.Invoice != nil {
		inv := *j.Invoice
		inv.LineItems = slices.Clone(j.Invoice.LineItems)
		out.Invoice = &inv
	}
	out.PaymentRecord = clonePtr(j.PaymentRecord)
	out.MaterialUsage = slices.Clone(j.MaterialUsage)
	out.Certificates = slices.Clone(j.Certificates)
	out.History = slices.Clone(j.History)
	return &out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Normalize replaces nil collections with empty ones and re-derives quote totals.
// Documents written by older clients may omit any of these.
func (j *JobCard) Normalize() {
	if j.SelectedServices == nil {
		j.SelectedServices = []string{}
	}
	if j.Checkpoints == nil {
		j.Checkpoints = []Checkpoint{}
	}
	for i := range j.Checkpoints {
		if j.Checkpoints[i].Tasks == nil {
			j.Checkpoints[i].Tasks = []Task{}
		}
		if j.Checkpoints[i].Photos == nil {
			j.Checkpoints[i].Photos = []string{}
		}
	}
	if j.MaterialUsage == nil {
		j.MaterialUsage = []MaterialUsage{}
	}
	if j.Certificates == nil {
		j.Certificates = []string{}
	}
	if j.History == nil {
		j.History = []HistoryEntry{}
	}
	if j.Status == "" {
		j.Status = StatusAssessment
	}
	j.Quote.normalize()
}

// Validate checks the fields required to create a job card
func (j *JobCard) Validate() error {
	if strings.TrimSpace(j.Client.Name) == "" {
		return NewValidationError("client.name", "is required")
	}
	if strings.TrimSpace(j.AssessmentDate) == "" {
		return NewValidationError("assessmentDate", "is required")
	}
	if _, err := time.Parse(DateLayout, j.AssessmentDate); err != nil {
		return NewValidationError("assessmentDate", "must be YYYY-MM-DD")
	}
	if !j.Status.Valid() {
		return fmt.Errorf("%q: %w", j.Status, ErrInvalidStatus)
	}
	return nil
}

// Date and time layouts used for scheduling fields
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Permission is a capability granted to an operator
type Permission string

const (
	PermissionAdmin     Permission = "admin"
	PermissionInvoicing Permission = "invoicing"
	PermissionInventory Permission = "inventory"
)

// Actor is the operator performing an operation
type Actor struct {
	ID          string       `json:"id"`
	FullName    string       `json:"fullName"`
	Permissions []Permission `json:"permissions"`
}

// Can reports whether the actor holds p. Admin implies every permission.
func (a Actor) Can(p Permission) bool {
	for _, held := range a.Permissions {
		if held == p || held == PermissionAdmin {
			return true
		}
	}
	return false
}
