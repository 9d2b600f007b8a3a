package store

import (
	"time"

	"dorm-management-system/api/internal/models"
)

// Seed loads the demo data set used by dev environments: three tenants,
// three maintenance requests in each workflow state, two announcements and
// the initial audit entry. Rooms beyond the seeded ones stay empty.
func (s *Store) Seed() {
	s.mu.Lock()
	now := s.now()

	if idx := s.roomIndex(1); idx >= 0 {
		s.rooms[idx].Tenants = append(s.rooms[idx].Tenants,
			models.Tenant{ID: "tenant-1", Name: "John Doe", Rent: 10500, BillingStatus: models.BillingPaid, RoomID: 1},
			models.Tenant{ID: "tenant-2", Name: "Jane Smith", Rent: 10500, BillingStatus: models.BillingDue, RoomID: 1},
		)
	}
	if idx := s.roomIndex(3); idx >= 0 {
		s.rooms[idx].Tenants = append(s.rooms[idx].Tenants,
			models.Tenant{ID: "tenant-3", Name: "Peter Jones", Rent: 12000, BillingStatus: models.BillingDue, RoomID: 3},
		)
	}

	s.requests = []models.MaintenanceRequest{
		{
			ID:           "req-1",
			RoomID:       3,
			Description:  "Leaky faucet in the kitchen sink.",
			Status:       models.MaintenanceReported,
			Priority:     models.PriorityMedium,
			ReportedDate: now.Add(-2 * 24 * time.Hour),
		},
		{
			ID:           "req-2",
			RoomID:       8,
			Description:  "Wi-Fi is not working in the common area on this floor.",
			Status:       models.MaintenanceInProgress,
			Priority:     models.PriorityHigh,
			AssignedTo:   "Tech Team",
			ReportedDate: now.Add(-5 * 24 * time.Hour),
		},
		{
			ID:           "req-3",
			RoomID:       1,
			Description:  "Lightbulb in the main ceiling fixture is out.",
			Status:       models.MaintenanceCompleted,
			Priority:     models.PriorityLow,
			AssignedTo:   "Mike",
			ReportedDate: now.Add(-10 * 24 * time.Hour),
		},
	}

	s.announcements = []models.Announcement{
		{
			ID:      "anno-1",
			Title:   "Community BBQ This Saturday!",
			Content: "Join us for a community BBQ in the common area this Saturday at 5 PM. Free food and drinks for all residents!",
			Date:    now.Add(-1 * 24 * time.Hour),
		},
		{
			ID:      "anno-2",
			Title:   "Package Delivery Policy Update",
			Content: "Starting next week, all packages must be collected from the front desk within 48 hours of delivery notification. Please bring your ID.",
			Date:    now.Add(-3 * 24 * time.Hour),
		},
	}

	entry := s.appendAuditLocked(models.ActorSystem, "System Initialized", "Demo data loaded.")
	s.mu.Unlock()

	s.notify(entry)
}
