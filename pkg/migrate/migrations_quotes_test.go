package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestQuotesMigrationContainsSchemas(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_quotes.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no quotes migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS quotes",
		"CREATE TABLE IF NOT EXISTS quote_lines",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_quotes_reference",
		"FOREIGN KEY (quote_id) REFERENCES quotes(id) ON DELETE CASCADE",
		"CHECK (status IN ('draft', 'finalized', 'performed', 'paid'))",
		"CHECK (tax_mode IN ('exempt', 'standard'))",
		"CHECK (item_id IS NOT NULL OR custom_name IS NOT NULL)",
		"DROP TABLE IF EXISTS quote_lines",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestRevenueEventsMigrationContainsSchemas(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_revenue_events.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no revenue events migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS revenue_events",
		"CHECK (type IN ('revenue_recognized', 'revenue_reversed'))",
		"CHECK (amount >= 0)",
		"idx_revenue_events_quote_line_created",
		"DROP TABLE IF EXISTS revenue_events",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
