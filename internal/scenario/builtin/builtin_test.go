package builtin

import (
	"testing"

	"github.com/vovakirdan/dunesim/internal/config"
	"github.com/vovakirdan/dunesim/internal/scenario"
	"github.com/vovakirdan/dunesim/internal/sim"
)

func TestBuiltinsRegistered(t *testing.T) {
	for _, id := range []string{"harvest", "siege", "skirmish"} {
		if !scenario.Exists(id) {
			t.Errorf("scenario %q not registered", id)
		}
	}
}

func TestBuiltinsSetUp(t *testing.T) {
	defs, err := Definitions()
	if err != nil {
		t.Fatalf("Definitions() error = %v", err)
	}
	for _, def := range defs {
		t.Run(def.ID, func(t *testing.T) {
			s, err := scenario.Create(def.ID)
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			w, err := scenario.NewWorld(s, sim.Options{Rules: config.DefaultRules()})
			if err != nil {
				t.Fatalf("NewWorld() error = %v", err)
			}
			if got := len(w.Objects()); got != len(def.Objects) {
				t.Errorf("%d objects created, expected %d", got, len(def.Objects))
			}
			if got := w.Commands().Pending(); got != len(def.Commands) {
				t.Errorf("%d commands scheduled, expected %d", got, len(def.Commands))
			}
		})
	}
}

func TestBuiltinsDeterministic(t *testing.T) {
	for _, info := range scenario.List() {
		t.Run(info.ID, func(t *testing.T) {
			_, a, err := scenario.Start(info.ID, sim.Options{})
			if err != nil {
				t.Fatalf("Start() error = %v", err)
			}
			_, b, err := scenario.Start(info.ID, sim.Options{})
			if err != nil {
				t.Fatalf("Start() error = %v", err)
			}
			a.Run(300)
			b.Run(300)
			if a.HashHex() != b.HashHex() {
				t.Error("two runs of the same scenario diverged")
			}
			if a.Desync() != nil {
				t.Errorf("unexpected desync: %+v", a.Desync())
			}
		})
	}
}
