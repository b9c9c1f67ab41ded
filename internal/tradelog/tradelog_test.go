package tradelog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestAppendWritesJSONLine(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TRADER_LOG_DIR", dir)

	err := Append(Entry{Market: "KRW-BTC", Side: "bid", OrderID: "SIM-1", Amount: 9995})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	path := dailyFilepath(time.Now())
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected journal file, got %v", err)
	}

	line := strings.TrimSpace(string(b))
	var e Entry
	if err := json.Unmarshal([]byte(line), &e); err != nil {
		t.Fatalf("Expected JSON line, got %v", err)
	}
	if e.Market != "KRW-BTC" || e.OrderID != "SIM-1" {
		t.Errorf("Expected entry round-trip, got %+v", e)
	}
	if e.Time == "" {
		t.Error("Expected timestamp stamped on append")
	}
}

func TestAppendDecisionSeparateFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TRADER_LOG_DIR", dir)

	err := AppendDecision(DecisionEntry{Market: "KRW-BTC", Decision: "hold", Reason: "sideways"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if _, err := os.Stat(decisionsFilepath(time.Now())); err != nil {
		t.Fatalf("Expected decisions journal under decisions/, got %v", err)
	}
}

func TestCompressOlder(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TRADER_LOG_DIR", dir)

	old := filepath.Join(dir, "2020-01-01.txt")
	if err := os.WriteFile(old, []byte(`{"Market":"KRW-BTC"}`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	past := time.Now().AddDate(0, 0, -30)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatal(err)
	}

	fresh := filepath.Join(dir, time.Now().In(kst).Format("2006-01-02")+".txt")
	if err := os.WriteFile(fresh, []byte("{}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := CompressOlder(7); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("Expected old plain file removed")
	}
	if _, err := os.Stat(old + ".gz"); err != nil {
		t.Error("Expected gzip twin for old file")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Error("Expected fresh file untouched")
	}
}

func TestCompressOlderDisabled(t *testing.T) {
	t.Setenv("TRADER_LOG_DIR", t.TempDir())
	if err := CompressOlder(0); err != nil {
		t.Fatalf("Expected retention 0 to be a no-op, got %v", err)
	}
}
