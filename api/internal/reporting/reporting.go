// Package reporting computes dashboard aggregates and produces the
// AI-written monthly summary report.
package reporting

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"dorm-management-system/api/internal/models"
	"dorm-management-system/api/internal/store"
	"dorm-management-system/shared/logx"
	"dorm-management-system/shared/metricsx"
)

var ErrReportGeneration = errors.New("failed to generate report")

// DashboardStats is the aggregate snapshot shown on the admin dashboard.
// All figures are derived; nothing here is stored.
type DashboardStats struct {
	TotalTenants            int     `json:"totalTenants"`
	OccupancyPercentage     int     `json:"occupancyPercentage"`
	TotalMonthlyRevenue     float64 `json:"totalMonthlyRevenue"`
	CollectedRent           float64 `json:"collectedRent"`
	OutstandingDues         float64 `json:"outstandingDues"`
	OpenMaintenanceRequests int     `json:"openMaintenanceRequests"`
}

// Aggregate derives the dashboard figures from a consistent snapshot.
// Occupancy is rounded to the nearest whole percent and is 0 when the
// building has no capacity.
func Aggregate(tenants []models.Tenant, requests []models.MaintenanceRequest, totalRooms int, maxPerRoom int) DashboardStats {
	stats := DashboardStats{TotalTenants: len(tenants)}

	capacity := totalRooms * maxPerRoom
	if capacity > 0 {
		stats.OccupancyPercentage = int(math.Round(float64(len(tenants)) / float64(capacity) * 100))
	}
	for _, tenant := range tenants {
		stats.TotalMonthlyRevenue += tenant.Rent
		if tenant.BillingStatus == models.BillingPaid {
			stats.CollectedRent += tenant.Rent
		}
	}
	stats.OutstandingDues = stats.TotalMonthlyRevenue - stats.CollectedRent
	for _, request := range requests {
		if request.Status != models.MaintenanceCompleted {
			stats.OpenMaintenanceRequests++
		}
	}
	return stats
}

// BuildPrompt renders the dormitory snapshot into the prompt sent to the
// model. The occupancy rate here keeps one decimal place, unlike the
// dashboard figure.
func BuildPrompt(tenants []models.Tenant, requests []models.MaintenanceRequest, totalRooms int, maxPerRoom int) string {
	capacity := totalRooms * maxPerRoom
	occupancy := 0.0
	if capacity > 0 {
		occupancy = float64(len(tenants)) / float64(capacity) * 100
	}

	var due []models.Tenant
	var collected float64
	for _, tenant := range tenants {
		if tenant.BillingStatus == models.BillingDue {
			due = append(due, tenant)
		} else if tenant.BillingStatus == models.BillingPaid {
			collected += tenant.Rent
		}
	}
	var open []models.MaintenanceRequest
	for _, request := range requests {
		if request.Status != models.MaintenanceCompleted {
			open = append(open, request)
		}
	}

	dueDetails := make([]string, 0, len(due))
	for _, tenant := range due {
		dueDetails = append(dueDetails, fmt.Sprintf("%s ($%s)", tenant.Name, formatMoney(tenant.Rent)))
	}
	openDetails := make([]string, 0, len(open))
	for _, request := range open {
		openDetails = append(openDetails, fmt.Sprintf("Room %d: %s", request.RoomID, request.Description))
	}

	var sb strings.Builder
	sb.WriteString("Dormitory Status:\n")
	fmt.Fprintf(&sb, "- Total Rooms: %d\n", totalRooms)
	fmt.Fprintf(&sb, "- Total Capacity: %d\n", capacity)
	fmt.Fprintf(&sb, "- Current Tenants: %d\n", len(tenants))
	fmt.Fprintf(&sb, "- Occupancy Rate: %.1f%%\n", occupancy)
	fmt.Fprintf(&sb, "- Total Collected Rent This Month: $%s\n", formatMoney(collected))
	fmt.Fprintf(&sb, "- Tenants with outstanding payments: %d\n", len(due))
	fmt.Fprintf(&sb, "- Details of tenants with due payments: %s\n", joinOrNone(dueDetails, ", "))
	fmt.Fprintf(&sb, "- Open Maintenance Requests: %d\n", len(open))
	fmt.Fprintf(&sb, "- Details of open requests: %s\n", joinOrNone(openDetails, "; "))
	sb.WriteString("\n")
	sb.WriteString("Based on the data above, please generate a concise and professional monthly summary report for the dormitory manager.\n")
	sb.WriteString("Structure the report with the following sections:\n")
	sb.WriteString("1.  **Overall Summary**: A brief overview of the key metrics (occupancy, finances).\n")
	sb.WriteString("2.  **Financial Status**: Comment on the income and outstanding dues.\n")
	sb.WriteString("3.  **Maintenance Report**: Summarize the current maintenance load and mention any critical open issues.\n")
	sb.WriteString("4.  **Action Items**: Suggest actions for the manager, like following up with tenants who have due payments and prioritizing urgent maintenance.\n")
	return sb.String()
}

// ContentGenerator produces a text completion for a prompt.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// ReportCache stores generated reports keyed by month so repeated requests
// within the TTL do not hit the model again.
type ReportCache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

type Service struct {
	store    *store.Store
	ai       ContentGenerator
	cache    ReportCache
	cacheTTL time.Duration
	log      logx.Logger
	now      func() time.Time
}

// NewService builds the report service. ai may be nil when report
// generation is disabled; cache may be nil when Redis is not configured.
func NewService(st *store.Store, ai ContentGenerator, cache ReportCache, cacheTTL time.Duration, log logx.Logger) *Service {
	return &Service{
		store:    st,
		ai:       ai,
		cache:    cache,
		cacheTTL: cacheTTL,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Stats returns the current dashboard aggregates.
func (s *Service) Stats(ctx context.Context) DashboardStats {
	return Aggregate(s.store.AllTenants(ctx), s.store.MaintenanceRequests(ctx), s.store.TotalRooms(), s.store.MaxTenantsPerRoom())
}

// MonthlyReport returns the AI-generated summary for the current month,
// serving from cache when a fresh copy exists. Any generation failure
// surfaces as ErrReportGeneration.
func (s *Service) MonthlyReport(ctx context.Context) (string, error) {
	if s.ai == nil {
		return "", fmt.Errorf("%w: report generation is disabled", ErrReportGeneration)
	}

	key := "report:monthly:" + s.now().Format("2006-01")
	if s.cache != nil {
		var cached string
		if ok, err := s.cache.GetJSON(ctx, key, &cached); err != nil {
			s.log.Warn(ctx, "report_cache_get_failed", "report cache lookup failed", slog.Any("error", err))
		} else if ok && cached != "" {
			return cached, nil
		}
	}

	prompt := BuildPrompt(s.store.AllTenants(ctx), s.store.MaintenanceRequests(ctx), s.store.TotalRooms(), s.store.MaxTenantsPerRoom())

	start := time.Now()
	text, err := s.ai.GenerateContent(ctx, prompt)
	if err != nil {
		s.log.Error(ctx, "report_generate_failed", "monthly report generation failed", slog.Any("error", err))
		return "", fmt.Errorf("%w: %v", ErrReportGeneration, err)
	}
	metricsx.IncReportSuccess()
	metricsx.ObserveReportLatency(time.Since(start))

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, text, s.cacheTTL); err != nil {
			s.log.Warn(ctx, "report_cache_set_failed", "report cache store failed", slog.Any("error", err))
		}
	}
	return text, nil
}

func joinOrNone(parts []string, sep string) string {
	if len(parts) == 0 {
		return "None"
	}
	return strings.Join(parts, sep)
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
