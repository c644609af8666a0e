package dto

import (
	"github.com/cuongbtq/jobcard-service/internal/domain"
	"github.com/cuongbtq/jobcard-service/internal/jobcard"
)

// BootstrapResponse is the initial state a client needs to render the dashboard
type BootstrapResponse struct {
	Jobs      []*domain.JobCard        `json:"jobs"`
	Inventory []domain.InventoryItem   `json:"inventory"`
	Clients   []domain.ClientRecord    `json:"clients"`
	Services  []domain.ServiceOffering `json:"services"`
	LowStock  []domain.InventoryItem   `json:"low_stock"`
	Statuses  []StatusDTO              `json:"statuses"`
}

type StatusDTO struct {
	Status    domain.JobStatus `json:"status"`
	Label     string           `json:"label"`
	Color     string           `json:"color"`
	Execution bool             `json:"execution"`
	Invoice   bool             `json:"invoice"`
}

type ListNotificationsResponse struct {
	Notifications []domain.Notification `json:"notifications"`
	Unread        int                   `json:"unread"`
}

type PublicJobResponse struct {
	Job jobcard.PublicJobView `json:"job"`
}
