package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultRulesAreValid(t *testing.T) {
	rules := DefaultRules()
	if err := rules.Validate(); err != nil {
		t.Fatalf("embedded rules invalid: %v", err)
	}

	tank, ok := rules.Items["tank"]
	if !ok {
		t.Fatal("tank missing from default rules")
	}
	if tank.Movement != "tracked" || tank.WeaponRange <= 0 {
		t.Errorf("tank = %+v, expected an armed tracked unit", tank)
	}
	if _, ok := rules.Terrain["tracked"]["mountain"]; !ok {
		t.Error("tracked units should be able to climb mountains")
	}
	if _, ok := rules.Terrain["wheeled"]["mountain"]; ok {
		t.Error("wheeled units should not cross mountains")
	}
}

func TestValidateReportsProblems(t *testing.T) {
	rules := DefaultRules()
	rules.Items["broken"] = ItemRules{Kind: "spaceship", HitPoints: 0, Builds: []string{"nothing"}}

	err := rules.Validate()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Validate() = %v, expected ValidationError", err)
	}
	if len(verr.Problems) != 3 {
		t.Errorf("got %d problems, expected 3: %v", len(verr.Problems), verr.Problems)
	}
}

func TestLoadRulesCustomPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")

	// Start from the embedded document and tweak one tunable
	data := append([]byte{}, GetDefaultYAML()...)
	data = append(data, []byte("\n")...)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	if rules.Game.HarvesterCapacity != 700 {
		t.Errorf("harvester capacity = %v, expected 700", rules.Game.HarvesterCapacity)
	}
}

func TestLoadRulesErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadRules(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing custom file")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("items: [this is not a map"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadRules(bad); err == nil {
		t.Error("expected error for malformed custom file")
	}
}
