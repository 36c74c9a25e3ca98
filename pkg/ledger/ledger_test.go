package ledger

import (
	"strings"
	"testing"
	"time"
)

func TestNewZeroesEntries(t *testing.T) {
	l := New([]string{"google", "anthropic"})

	stats := l.Stats()
	if len(stats) != 2 {
		t.Fatalf("len(stats) = %d, want 2", len(stats))
	}
	for name, entry := range stats {
		if entry.TotalTokens != 0 || entry.TotalCost != 0 || entry.RequestCount != 0 {
			t.Errorf("%s: entry not zeroed: %+v", name, entry)
		}
		if entry.LastReset.IsZero() {
			t.Errorf("%s: LastReset not stamped", name)
		}
	}
}

func TestRecordAccumulates(t *testing.T) {
	l := New([]string{"google"})

	l.Record("google", 100, 0.05)
	l.Record("google", 200, 0.10)

	entry := l.Stats()["google"]
	if entry.TotalTokens != 300 {
		t.Errorf("TotalTokens = %d, want 300", entry.TotalTokens)
	}
	if diff := entry.TotalCost - 0.15; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("TotalCost = %v, want 0.15", entry.TotalCost)
	}
	if entry.RequestCount != 2 {
		t.Errorf("RequestCount = %d, want 2", entry.RequestCount)
	}
}

func TestStatsReturnsCopy(t *testing.T) {
	l := New([]string{"google"})
	l.Record("google", 100, 0.05)

	stats := l.Stats()
	entry := stats["google"]
	entry.TotalTokens = 0
	stats["google"] = entry
	delete(stats, "google")

	if got := l.Stats()["google"].TotalTokens; got != 100 {
		t.Errorf("internal state mutated through copy: TotalTokens = %d, want 100", got)
	}
}

func TestTotalCostSumsAllProviders(t *testing.T) {
	l := New([]string{"google", "anthropic"})
	l.Record("google", 100, 0.02)
	l.Record("anthropic", 100, 0.03)

	if diff := l.TotalCost() - 0.05; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("TotalCost = %v, want 0.05", l.TotalCost())
	}
}

func TestReset(t *testing.T) {
	l := New([]string{"google"})
	l.Record("google", 100, 0.05)
	before := l.Stats()["google"].LastReset

	time.Sleep(time.Millisecond)
	l.Reset("google")

	entry := l.Stats()["google"]
	if entry.TotalTokens != 0 || entry.TotalCost != 0 || entry.RequestCount != 0 {
		t.Errorf("entry not zeroed after reset: %+v", entry)
	}
	if !entry.LastReset.After(before) {
		t.Error("LastReset not advanced by reset")
	}
}

func TestBudgetStatus(t *testing.T) {
	l := New([]string{"google"})
	l.Record("google", 1000, 7.5)

	status := l.Status(10)
	if status.Used != 7.5 || status.Remaining != 2.5 {
		t.Errorf("status = %+v, want used 7.5 remaining 2.5", status)
	}
	if status.Percentage != 75 {
		t.Errorf("Percentage = %v, want 75", status.Percentage)
	}

	// Overspend floors remaining at zero.
	l.Record("google", 1000, 5)
	status = l.Status(10)
	if status.Remaining != 0 {
		t.Errorf("Remaining = %v, want 0", status.Remaining)
	}
}

func TestCheckBudget(t *testing.T) {
	l := New([]string{"google"})

	if err := l.CheckBudget(0.01); err != nil {
		t.Fatalf("empty ledger should pass the gate: %v", err)
	}

	l.Record("google", 100, 0.02)
	err := l.CheckBudget(0.01)
	if err == nil {
		t.Fatal("expected budget error")
	}
	if !strings.Contains(err.Error(), "Monthly budget exceeded") {
		t.Errorf("error = %q, want budget message", err.Error())
	}

	// Zero budget disables the gate.
	if err := l.CheckBudget(0); err != nil {
		t.Errorf("zero budget should disable the gate: %v", err)
	}
}
