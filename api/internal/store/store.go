// Package store holds the authoritative in-memory state of the dormitory:
// rooms with their tenants, maintenance requests, announcements and the
// append-only audit trail. Every operation runs as a single atomic unit of
// work under one mutex, and every read hands back an independent copy so
// callers can never mutate the store through a returned snapshot.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"dorm-management-system/api/internal/models"
)

var (
	ErrRoomCapacity    = errors.New("room is full or does not exist")
	ErrRequestNotFound = errors.New("maintenance request not found")
)

// AuditSink receives a copy of every appended audit entry. Sinks run after
// the mutation has committed and must not block; failures in a sink never
// affect the operation that produced the entry.
type AuditSink func(models.AuditLog)

type Store struct {
	mu            sync.Mutex
	totalRooms    int
	maxPerRoom    int
	rooms         []models.Room
	requests      []models.MaintenanceRequest
	announcements []models.Announcement
	auditLogs     []models.AuditLog

	now   func() time.Time
	newID func() string
	sink  AuditSink
}

func New(totalRooms int, maxPerRoom int) *Store {
	rooms := make([]models.Room, 0, totalRooms)
	for i := 1; i <= totalRooms; i++ {
		rooms = append(rooms, models.Room{ID: i, Tenants: []models.Tenant{}})
	}
	return &Store{
		totalRooms: totalRooms,
		maxPerRoom: maxPerRoom,
		rooms:      rooms,
		now:        func() time.Time { return time.Now().UTC() },
		newID:      uuid.NewString,
	}
}

// SetAuditSink installs the sink notified on every audit append. Call before
// serving traffic; the sink is not guarded by the store mutex.
func (s *Store) SetAuditSink(sink AuditSink) {
	s.sink = sink
}

func (s *Store) TotalRooms() int        { return s.totalRooms }
func (s *Store) MaxTenantsPerRoom() int { return s.maxPerRoom }

// Rooms returns a point-in-time deep copy of all rooms and their tenants.
func (s *Store) Rooms(ctx context.Context) []models.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyRooms(s.rooms)
}

// AllTenants returns every tenant across all rooms.
func (s *Store) AllTenants(ctx context.Context) []models.Tenant {
	s.mu.Lock()
	defer s.mu.Unlock()
	var tenants []models.Tenant
	for _, room := range s.rooms {
		tenants = append(tenants, room.Tenants...)
	}
	return tenants
}

// MaintenanceRequests returns requests most-recent-first.
func (s *Store) MaintenanceRequests(ctx context.Context) []models.MaintenanceRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.MaintenanceRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *Store) Announcements(ctx context.Context) []models.Announcement {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Announcement, len(s.announcements))
	copy(out, s.announcements)
	return out
}

// AuditLogs returns the trail most-recent-first.
func (s *Store) AuditLogs(ctx context.Context) []models.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.AuditLog, len(s.auditLogs))
	copy(out, s.auditLogs)
	return out
}

// FindTenant looks a tenant up by case-insensitive, whitespace-trimmed name
// and exact room number. The first match wins; tenant names are not unique.
func (s *Store) FindTenant(ctx context.Context, name string, roomID int) (models.Tenant, bool) {
	want := strings.ToLower(strings.TrimSpace(name))
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, room := range s.rooms {
		for _, tenant := range room.Tenants {
			if strings.ToLower(tenant.Name) == want && tenant.RoomID == roomID {
				return tenant, true
			}
		}
	}
	return models.Tenant{}, false
}

// AddTenant creates a tenant with billing status Due in the given room.
// Returns ErrRoomCapacity when the room does not exist or is already full;
// the room is left untouched in that case.
func (s *Store) AddTenant(ctx context.Context, roomID int, name string, rent float64) (models.Tenant, error) {
	s.mu.Lock()
	idx := s.roomIndex(roomID)
	if idx < 0 || len(s.rooms[idx].Tenants) >= s.maxPerRoom {
		s.mu.Unlock()
		return models.Tenant{}, ErrRoomCapacity
	}
	tenant := models.Tenant{
		ID:            "tenant-" + s.newID(),
		Name:          name,
		Rent:          rent,
		BillingStatus: models.BillingDue,
		RoomID:        roomID,
	}
	s.rooms[idx].Tenants = append(s.rooms[idx].Tenants, tenant)
	entry := s.appendAuditLocked(models.ActorAdmin, "Tenant Added",
		fmt.Sprintf("Added tenant '%s' to Room %d.", name, roomID))
	s.mu.Unlock()

	s.notify(entry)
	return tenant, nil
}

// RemoveTenant deletes the tenant from whichever room holds it. Removing an
// unknown tenant is an intentional idempotent no-op and records nothing.
func (s *Store) RemoveTenant(ctx context.Context, tenantID string) {
	s.mu.Lock()
	var removed *models.Tenant
	for ri := range s.rooms {
		for ti, tenant := range s.rooms[ri].Tenants {
			if tenant.ID == tenantID {
				t := tenant
				removed = &t
				s.rooms[ri].Tenants = append(s.rooms[ri].Tenants[:ti], s.rooms[ri].Tenants[ti+1:]...)
				break
			}
		}
		if removed != nil {
			break
		}
	}
	if removed == nil {
		s.mu.Unlock()
		return
	}
	entry := s.appendAuditLocked(models.ActorAdmin, "Tenant Removed",
		fmt.Sprintf("Removed tenant '%s' from Room %d.", removed.Name, removed.RoomID))
	s.mu.Unlock()

	s.notify(entry)
}

// ToggleTenantBilling flips Due<->Paid on the matching tenant. Unknown
// tenant IDs are an idempotent no-op.
func (s *Store) ToggleTenantBilling(ctx context.Context, tenantID string) {
	s.mu.Lock()
	for ri := range s.rooms {
		for ti := range s.rooms[ri].Tenants {
			tenant := &s.rooms[ri].Tenants[ti]
			if tenant.ID != tenantID {
				continue
			}
			oldStatus := tenant.BillingStatus
			if oldStatus == models.BillingDue {
				tenant.BillingStatus = models.BillingPaid
			} else {
				tenant.BillingStatus = models.BillingDue
			}
			entry := s.appendAuditLocked(models.ActorAdmin, "Billing Status Changed",
				fmt.Sprintf("Billing for '%s' changed from %s to %s.", tenant.Name, oldStatus, tenant.BillingStatus))
			s.mu.Unlock()

			s.notify(entry)
			return
		}
	}
	s.mu.Unlock()
}

// AddMaintenanceRequest files a new request with status Reported and medium
// priority. The actor label is supplied by the caller; the store never
// infers who reported the issue. The room does not need to exist or hold
// tenants. Requests are kept most-recent-first.
func (s *Store) AddMaintenanceRequest(ctx context.Context, roomID int, description string, actor string) models.MaintenanceRequest {
	s.mu.Lock()
	request := models.MaintenanceRequest{
		ID:           "req-" + s.newID(),
		RoomID:       roomID,
		Description:  description,
		Status:       models.MaintenanceReported,
		Priority:     models.PriorityMedium,
		AssignedTo:   "",
		ReportedDate: s.now(),
	}
	s.requests = append([]models.MaintenanceRequest{request}, s.requests...)
	entry := s.appendAuditLocked(actor, "Maintenance Request Added",
		fmt.Sprintf("New request for Room %d: %q", roomID, description))
	s.mu.Unlock()

	s.notify(entry)
	return request
}

// UpdateMaintenanceRequest applies the non-nil fields of update. Returns
// ErrRequestNotFound for an unknown id. The audit entry lists only fields
// whose value actually changed; when nothing changed no entry is recorded.
func (s *Store) UpdateMaintenanceRequest(ctx context.Context, id string, update models.MaintenanceUpdate) error {
	s.mu.Lock()
	idx := -1
	for i := range s.requests {
		if s.requests[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return ErrRequestNotFound
	}

	request := &s.requests[idx]
	var changes []string
	if update.Status != nil && *update.Status != request.Status {
		request.Status = *update.Status
		changes = append(changes, fmt.Sprintf("status to '%s'", request.Status))
	}
	if update.Priority != nil && *update.Priority != request.Priority {
		request.Priority = *update.Priority
		changes = append(changes, fmt.Sprintf("priority to '%s'", request.Priority))
	}
	if update.AssignedTo != nil && *update.AssignedTo != request.AssignedTo {
		request.AssignedTo = *update.AssignedTo
		changes = append(changes, fmt.Sprintf("assignedTo to '%s'", request.AssignedTo))
	}
	if len(changes) == 0 {
		s.mu.Unlock()
		return nil
	}
	entry := s.appendAuditLocked(models.ActorAdmin, "Maintenance Updated",
		fmt.Sprintf("Request for Room %d updated: %s.", request.RoomID, strings.Join(changes, ", ")))
	s.mu.Unlock()

	s.notify(entry)
	return nil
}

// CreateAnnouncement records a new announcement. Announcements are immutable
// once created; there is no edit operation.
func (s *Store) CreateAnnouncement(ctx context.Context, title string, content string) models.Announcement {
	s.mu.Lock()
	announcement := models.Announcement{
		ID:      "anno-" + s.newID(),
		Title:   title,
		Content: content,
		Date:    s.now(),
	}
	s.announcements = append(s.announcements, announcement)
	entry := s.appendAuditLocked(models.ActorAdmin, "Announcement Created",
		fmt.Sprintf("New announcement: %q", title))
	s.mu.Unlock()

	s.notify(entry)
	return announcement
}

// DeleteAnnouncement removes the announcement. Deleting an unknown id is an
// intentional idempotent no-op and records nothing.
func (s *Store) DeleteAnnouncement(ctx context.Context, id string) {
	s.mu.Lock()
	for i, announcement := range s.announcements {
		if announcement.ID == id {
			s.announcements = append(s.announcements[:i], s.announcements[i+1:]...)
			entry := s.appendAuditLocked(models.ActorAdmin, "Announcement Deleted",
				fmt.Sprintf("Deleted announcement: %q", announcement.Title))
			s.mu.Unlock()

			s.notify(entry)
			return
		}
	}
	s.mu.Unlock()
}

// AppendAudit records an entry on behalf of a collaborator that owns no
// store state of its own, such as the session resolver logging attempts.
func (s *Store) AppendAudit(ctx context.Context, actor string, action string, details string) {
	s.mu.Lock()
	entry := s.appendAuditLocked(actor, action, details)
	s.mu.Unlock()

	s.notify(entry)
}

func (s *Store) roomIndex(roomID int) int {
	for i := range s.rooms {
		if s.rooms[i].ID == roomID {
			return i
		}
	}
	return -1
}

func (s *Store) appendAuditLocked(actor string, action string, details string) models.AuditLog {
	entry := models.AuditLog{
		ID:        "log-" + s.newID(),
		Timestamp: s.now(),
		User:      actor,
		Action:    action,
		Details:   details,
	}
	s.auditLogs = append([]models.AuditLog{entry}, s.auditLogs...)
	return entry
}

func (s *Store) notify(entry models.AuditLog) {
	if s.sink != nil {
		s.sink(entry)
	}
}

func copyRooms(rooms []models.Room) []models.Room {
	out := make([]models.Room, len(rooms))
	for i, room := range rooms {
		tenants := make([]models.Tenant, len(room.Tenants))
		copy(tenants, room.Tenants)
		out[i] = models.Room{ID: room.ID, Tenants: tenants}
	}
	return out
}
