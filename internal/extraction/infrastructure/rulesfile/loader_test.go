package rulesfile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const sampleRules = `
rules:
  - sheet: 7
    markets: ["Terciaria a subir"]
    exclude: ["TERDIR"]
  - sheet: 7
    default: true
    include: ["TERDIR"]
`

func TestLoadRuleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(sampleRules), 0o644); err != nil {
		t.Fatal(err)
	}

	table, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if table.Len() != 2 {
		t.Fatalf("rules: got %d want 2", table.Len())
	}
	if table.Lookup(7, "Terciaria a subir").Matches("TERDIR") {
		t.Fatal("exact rule should exclude TERDIR")
	}
	if !table.Lookup(7, "Terciaria directa").Matches("TERDIR") {
		t.Fatal("default rule should include TERDIR")
	}
}

func TestParseShippedConfig(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join("..", "..", "..", "..", "configs", "condition_rules.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	table, err := Parse(raw)
	if err != nil {
		t.Fatal(err)
	}

	if !table.Lookup(3, "Curtailment").Matches("UPLPVPV") {
		t.Fatal("sheet 3 curtailment should include UPLPVPV")
	}
	if table.Lookup(3, "Curtailment").Matches("ECO") {
		t.Fatal("sheet 3 curtailment should not include ECO")
	}
	if !table.Lookup(3, "RT2 a subir").Matches("ECOBSO") {
		t.Fatal("sheet 3 RT2 should include ECOBSO")
	}
	if !table.Lookup(8, "Indisponibilidades").Matches("Indisponibilidad") {
		t.Fatal("sheet 8 unavailability rule missing")
	}
	if !table.Lookup(8, "RR a subir").Matches("Restricciones Técnicas") {
		t.Fatal("sheet 8 default should include Restricciones Técnicas")
	}
	if !table.Lookup(10, "Restricciones MD").Matches("Restricciones Técnicas") {
		t.Fatal("sheet 10 default should include Restricciones Técnicas")
	}
}

func TestParseRejectsEmptyAndInvalid(t *testing.T) {
	if _, err := Parse([]byte("rules: []")); !errors.Is(err, ErrNoRules) {
		t.Fatalf("got %v, want ErrNoRules", err)
	}
	if _, err := Parse([]byte("rules:\n  - sheet: 0\n    default: true\n    include: [X]")); err == nil {
		t.Fatal("expected error for non-positive sheet id")
	}
	if _, err := Parse([]byte("rules:\n  - sheet: 3\n    include: [X]")); err == nil {
		t.Fatal("expected error for rule without markets or default")
	}
	if _, err := Parse([]byte("rules:\n  - sheet: 3\n    default: true")); err == nil {
		t.Fatal("expected error for rule without codes")
	}
}
