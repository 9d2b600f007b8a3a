package models

import "time"

type BillingStatus string

const (
	BillingDue  BillingStatus = "Due"
	BillingPaid BillingStatus = "Paid"
)

type MaintenanceStatus string

const (
	MaintenanceReported   MaintenanceStatus = "Reported"
	MaintenanceInProgress MaintenanceStatus = "In Progress"
	MaintenanceCompleted  MaintenanceStatus = "Completed"
)

type MaintenancePriority string

const (
	PriorityLow    MaintenancePriority = "Low"
	PriorityMedium MaintenancePriority = "Medium"
	PriorityHigh   MaintenancePriority = "High"
)

// Actor labels recorded on audit entries.
const (
	ActorAdmin  = "Admin"
	ActorTenant = "Tenant"
	ActorSystem = "System"
)

type Tenant struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Rent          float64       `json:"rent"`
	BillingStatus BillingStatus `json:"billingStatus"`
	RoomID        int           `json:"roomId"`
}

type Room struct {
	ID      int      `json:"id"`
	Tenants []Tenant `json:"tenants"`
}

type MaintenanceRequest struct {
	ID           string              `json:"id"`
	RoomID       int                 `json:"roomId"`
	Description  string              `json:"description"`
	Status       MaintenanceStatus   `json:"status"`
	Priority     MaintenancePriority `json:"priority"`
	AssignedTo   string              `json:"assignedTo"`
	ReportedDate time.Time           `json:"reportedDate"`
}

type Announcement struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Content string    `json:"content"`
	Date    time.Time `json:"date"`
}

// AuditLog is one append-only entry in the action trail. Entries are never
// mutated after creation and are kept most-recent-first.
type AuditLog struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	User      string    `json:"user"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
}

// MaintenanceUpdate carries a partial update for a maintenance request.
// Nil fields are left untouched.
type MaintenanceUpdate struct {
	Status     *MaintenanceStatus   `json:"status,omitempty"`
	Priority   *MaintenancePriority `json:"priority,omitempty"`
	AssignedTo *string              `json:"assignedTo,omitempty"`
}

func (s MaintenanceStatus) Valid() bool {
	switch s {
	case MaintenanceReported, MaintenanceInProgress, MaintenanceCompleted:
		return true
	}
	return false
}

func (p MaintenancePriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}
