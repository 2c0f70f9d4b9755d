package pagination_test

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/ocrdesk/ocrdesk/pkg/pagination"
)

func testConfig() pagination.Config {
	return pagination.Config{DefaultLimit: 10, MaxLimit: 100}
}

func TestPageRequestNormalize(t *testing.T) {
	tests := []struct {
		name      string
		req       pagination.PageRequest
		wantPage  int
		wantLimit int
	}{
		{"zero values", pagination.PageRequest{}, 1, 10},
		{"negative page", pagination.PageRequest{Page: -3, Limit: 20}, 1, 20},
		{"limit above max", pagination.PageRequest{Page: 2, Limit: 500}, 2, 100},
		{"valid request", pagination.PageRequest{Page: 3, Limit: 25}, 3, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.Normalize(testConfig())

			if tt.req.Page != tt.wantPage {
				t.Errorf("Page = %d, want %d", tt.req.Page, tt.wantPage)
			}
			if tt.req.Limit != tt.wantLimit {
				t.Errorf("Limit = %d, want %d", tt.req.Limit, tt.wantLimit)
			}
		})
	}
}

func TestPageRequestOffset(t *testing.T) {
	req := pagination.PageRequest{Page: 3, Limit: 10}

	if got := req.Offset(); got != 20 {
		t.Errorf("Offset() = %d, want 20", got)
	}
}

func TestPageRequestFromQuery(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantPage  int
		wantLimit int
	}{
		{"empty", "", 1, 10},
		{"both params", "page=4&limit=50", 4, 50},
		{"invalid values", "page=abc&limit=xyz", 1, 10},
		{"limit capped", "page=1&limit=1000", 1, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, _ := url.ParseQuery(tt.query)
			req := pagination.PageRequestFromQuery(values, testConfig())

			if req.Page != tt.wantPage {
				t.Errorf("Page = %d, want %d", req.Page, tt.wantPage)
			}
			if req.Limit != tt.wantLimit {
				t.Errorf("Limit = %d, want %d", req.Limit, tt.wantLimit)
			}
		})
	}
}

func TestNewPageResult(t *testing.T) {
	tests := []struct {
		name           string
		total          int
		limit          int
		wantTotalPages int
	}{
		{"exact division", 30, 10, 3},
		{"with remainder", 31, 10, 4},
		{"single page", 5, 10, 1},
		{"empty", 0, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := pagination.NewPageResult([]string{}, tt.total, 1, tt.limit)

			if result.Pagination.TotalPages != tt.wantTotalPages {
				t.Errorf("TotalPages = %d, want %d",
					result.Pagination.TotalPages, tt.wantTotalPages)
			}
		})
	}
}

func TestNewPageResultNilData(t *testing.T) {
	result := pagination.NewPageResult[string](nil, 0, 1, 10)

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	want := `{"data":[],"pagination":{"total":0,"page":1,"limit":10,"totalPages":0}}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}

func TestConfigFinalize(t *testing.T) {
	var cfg pagination.Config
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if cfg.DefaultLimit != 10 {
		t.Errorf("DefaultLimit = %d, want 10", cfg.DefaultLimit)
	}
	if cfg.MaxLimit != 100 {
		t.Errorf("MaxLimit = %d, want 100", cfg.MaxLimit)
	}
}

func TestConfigFinalizeEnvOverride(t *testing.T) {
	t.Setenv(pagination.EnvPaginationDefaultLimit, "25")
	t.Setenv(pagination.EnvPaginationMaxLimit, "50")

	var cfg pagination.Config
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if cfg.DefaultLimit != 25 {
		t.Errorf("DefaultLimit = %d, want 25", cfg.DefaultLimit)
	}
	if cfg.MaxLimit != 50 {
		t.Errorf("MaxLimit = %d, want 50", cfg.MaxLimit)
	}
}

func TestConfigValidateRejectsInvertedLimits(t *testing.T) {
	cfg := pagination.Config{DefaultLimit: 200, MaxLimit: 100}

	if err := cfg.Finalize(); err == nil {
		t.Fatal("expected error when default_limit exceeds max_limit")
	}
}
