package domain

import (
	"strings"
	"time"
)

// ClientRecord is the long-lived client entry that follow-ups attach to
type ClientRecord struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Company          string     `json:"company,omitempty"`
	Email            string     `json:"email,omitempty"`
	Phone            string     `json:"phone,omitempty"`
	Address          Address    `json:"address"`
	NextFollowUpDate *time.Time `json:"nextFollowUpDate,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// ClientUser is a portal login provisioned for a client
type ClientUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	PIN       string    `json:"pin"`
	ClientID  string    `json:"clientId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// MatchClient finds a client by email, falling back to exact name. Returns -1 when none match.
func MatchClient(clients []ClientRecord, email, name string) int {
	if email = strings.TrimSpace(email); email != "" {
		for i := range clients {
			if strings.EqualFold(strings.TrimSpace(clients[i].Email), email) {
				return i
			}
		}
	}
	if name != "" {
		for i := range clients {
			if clients[i].Name == name {
				return i
			}
		}
	}
	return -1
}

// ClientRecordFromJob seeds a client record from a job's client snapshot
func ClientRecordFromJob(id string, c ClientDetails, now time.Time) ClientRecord {
	return ClientRecord{
		ID:        id,
		Name:      c.Name,
		Company:   c.Company,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
