package reporting

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"dorm-management-system/api/internal/models"
	"dorm-management-system/api/internal/store"
	"dorm-management-system/shared/logx"
)

func tenant(name string, rent float64, status models.BillingStatus) models.Tenant {
	return models.Tenant{Name: name, Rent: rent, BillingStatus: status, RoomID: 1}
}

func TestAggregate(t *testing.T) {
	tenants := []models.Tenant{
		tenant("A", 10500, models.BillingPaid),
		tenant("B", 10500, models.BillingDue),
		tenant("C", 12000, models.BillingDue),
	}
	requests := []models.MaintenanceRequest{
		{Status: models.MaintenanceReported},
		{Status: models.MaintenanceInProgress},
		{Status: models.MaintenanceCompleted},
	}

	stats := Aggregate(tenants, requests, 10, 4)
	if stats.TotalTenants != 3 {
		t.Fatalf("TotalTenants = %d", stats.TotalTenants)
	}
	// 3 of 40 beds is 7.5%, rounded to 8.
	if stats.OccupancyPercentage != 8 {
		t.Fatalf("OccupancyPercentage = %d", stats.OccupancyPercentage)
	}
	if stats.TotalMonthlyRevenue != 33000 || stats.CollectedRent != 10500 || stats.OutstandingDues != 22500 {
		t.Fatalf("unexpected finances: %+v", stats)
	}
	if stats.OpenMaintenanceRequests != 2 {
		t.Fatalf("OpenMaintenanceRequests = %d", stats.OpenMaintenanceRequests)
	}
}

func TestAggregateZeroCapacity(t *testing.T) {
	stats := Aggregate(nil, nil, 0, 4)
	if stats.OccupancyPercentage != 0 {
		t.Fatalf("occupancy with no capacity must be 0, got %d", stats.OccupancyPercentage)
	}
}

func TestBuildPrompt(t *testing.T) {
	tenants := []models.Tenant{
		tenant("John Doe", 10500, models.BillingPaid),
		tenant("Jane Smith", 10500, models.BillingDue),
	}
	requests := []models.MaintenanceRequest{
		{RoomID: 3, Description: "Leaky faucet", Status: models.MaintenanceReported},
		{RoomID: 1, Description: "Done already", Status: models.MaintenanceCompleted},
	}

	prompt := BuildPrompt(tenants, requests, 10, 4)
	for _, want := range []string{
		"- Total Rooms: 10",
		"- Total Capacity: 40",
		"- Occupancy Rate: 5.0%",
		"- Total Collected Rent This Month: $10500",
		"- Details of tenants with due payments: Jane Smith ($10500)",
		"- Open Maintenance Requests: 1",
		"- Details of open requests: Room 3: Leaky faucet",
		"**Action Items**",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
	if strings.Contains(prompt, "Done already") {
		t.Fatal("completed requests must not appear in the prompt")
	}
}

func TestBuildPromptEmpty(t *testing.T) {
	prompt := BuildPrompt(nil, nil, 10, 4)
	if !strings.Contains(prompt, "- Details of tenants with due payments: None") {
		t.Fatalf("expected None placeholder for dues:\n%s", prompt)
	}
	if !strings.Contains(prompt, "- Details of open requests: None") {
		t.Fatalf("expected None placeholder for requests:\n%s", prompt)
	}
}

type fakeGenerator struct {
	text  string
	err   error
	calls int
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	f.calls++
	return f.text, f.err
}

type memoryCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string]string{}}
}

func (c *memoryCache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return false, nil
	}
	*(dest.(*string)) = v
	return true, nil
}

func (c *memoryCache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value.(string)
	return nil
}

func newService(t *testing.T, gen ContentGenerator, cache ReportCache) *Service {
	t.Helper()
	st := store.New(10, 4)
	log := logx.New("reporting-test", "test", "", "error")
	return NewService(st, gen, cache, 10*time.Minute, log)
}

func TestMonthlyReportCaches(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{text: "## Overall Summary\nAll quiet."}
	svc := newService(t, gen, newMemoryCache())

	first, err := svc.MonthlyReport(ctx)
	if err != nil {
		t.Fatalf("MonthlyReport: %v", err)
	}
	second, err := svc.MonthlyReport(ctx)
	if err != nil {
		t.Fatalf("MonthlyReport (cached): %v", err)
	}
	if first != second {
		t.Fatalf("cached report differs: %q vs %q", first, second)
	}
	if gen.calls != 1 {
		t.Fatalf("expected one generator call, got %d", gen.calls)
	}
}

func TestMonthlyReportFailure(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("upstream down")}
	svc := newService(t, gen, nil)

	if _, err := svc.MonthlyReport(context.Background()); !errors.Is(err, ErrReportGeneration) {
		t.Fatalf("expected ErrReportGeneration, got %v", err)
	}
}

func TestMonthlyReportDisabled(t *testing.T) {
	svc := newService(t, nil, nil)
	if _, err := svc.MonthlyReport(context.Background()); !errors.Is(err, ErrReportGeneration) {
		t.Fatalf("expected ErrReportGeneration, got %v", err)
	}
}
