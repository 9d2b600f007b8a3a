package config

import "testing"

func TestParseCSV(t *testing.T) {
	got := parseCSV("a, b, ,c,,")
	if len(got) != 3 {
		t.Fatalf("expected 3 items, got %d", len(got))
	}
	if got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("unexpected values: %#v", got)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, _ := Load("dorm-api", 8080)
	if cfg.TotalRooms != 10 || cfg.MaxTenantsPerRoom != 4 {
		t.Fatalf("unexpected room defaults: %d rooms, %d per room", cfg.TotalRooms, cfg.MaxTenantsPerRoom)
	}
	if cfg.AdminEmail != "admin@dorm.com" {
		t.Fatalf("unexpected admin email default: %q", cfg.AdminEmail)
	}
	if cfg.GenAIModel != "gemini-2.5-flash" {
		t.Fatalf("unexpected model default: %q", cfg.GenAIModel)
	}
	if cfg.SessionTTLMinutes != 720 {
		t.Fatalf("unexpected session TTL default: %d", cfg.SessionTTLMinutes)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("TOTAL_ROOMS", "25")
	t.Setenv("MAX_TENANTS_PER_ROOM", "2")
	t.Setenv("SEED_DEMO_DATA", "true")
	t.Setenv("REPORT_CACHE_TTL_SECONDS", "120")

	cfg, problems := Load("dorm-api", 8080)
	for _, p := range problems {
		if p.Field == "TOTAL_ROOMS" || p.Field == "MAX_TENANTS_PER_ROOM" {
			t.Fatalf("unexpected problem: %+v", p)
		}
	}
	if cfg.TotalRooms != 25 || cfg.MaxTenantsPerRoom != 2 {
		t.Fatalf("env overrides not applied: %d rooms, %d per room", cfg.TotalRooms, cfg.MaxTenantsPerRoom)
	}
	if !cfg.SeedDemoData {
		t.Fatal("SEED_DEMO_DATA not applied")
	}
	if cfg.ReportCacheTTLSec != 120 {
		t.Fatalf("REPORT_CACHE_TTL_SECONDS not applied: %d", cfg.ReportCacheTTLSec)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("TOTAL_ROOMS", "0")

	cfg, problems := Load("dorm-api", 8080)
	found := false
	for _, p := range problems {
		if p.Field == "TOTAL_ROOMS" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a TOTAL_ROOMS problem")
	}
	if cfg.TotalRooms != 10 {
		t.Fatalf("bad value must fall back to default, got %d", cfg.TotalRooms)
	}
}
