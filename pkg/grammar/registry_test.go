package grammar

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewRegistry_SeedsBuiltins(t *testing.T) {
	r := NewRegistry()
	if r.Count() != len(Builtin()) {
		t.Errorf("Count() = %d, want %d", r.Count(), len(Builtin()))
	}

	g, ok := r.Get(FamilyAct, StyleEnacted)
	if !ok {
		t.Fatal("Get(uu, enacted) not found")
	}
	if !g.IsCompiled() {
		t.Error("registry grammar not compiled")
	}
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Get(FamilyAct, StyleBriefing); ok {
		t.Error("Get(uu, briefing) found; acts have no briefing variant")
	}
}

func writeOverlay(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("writing overlay: %v", err)
	}
}

func TestRegistry_LoadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeOverlay(t, dir, "uu.yaml", `
family: uu
style: enacted
lead_window: 72
ref_indicators:
  - sebagaimana dimaksud
  - dalam pasal
`)

	r, err := NewRegistryWithDirectory(dir)
	if err != nil {
		t.Fatalf("NewRegistryWithDirectory failed: %v", err)
	}

	g, ok := r.Get(FamilyAct, StyleEnacted)
	if !ok {
		t.Fatal("Get(uu, enacted) not found")
	}
	if g.LeadWindow != 72 {
		t.Errorf("LeadWindow = %d, want 72 from overlay", g.LeadWindow)
	}
	if len(g.RefIndicators) != 2 {
		t.Errorf("RefIndicators = %v, want the 2 overlay phrases", g.RefIndicators)
	}

	// Other grammars keep their defaults.
	pp, _ := r.Get(FamilyGovernment, StyleEnacted)
	if pp.LeadWindow != DefaultLeadWindow {
		t.Errorf("pp LeadWindow = %d, want default %d", pp.LeadWindow, DefaultLeadWindow)
	}
}

func TestRegistry_LoadFileLeavesPublishedGrammarUntouched(t *testing.T) {
	dir := t.TempDir()
	writeOverlay(t, dir, "uu.yaml", "family: uu\nlead_window: 72")

	r := NewRegistry()
	before, _ := r.Get(FamilyAct, StyleEnacted)
	if err := r.LoadFile(filepath.Join(dir, "uu.yaml")); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if before.LeadWindow != DefaultLeadWindow {
		t.Errorf("previously handed-out grammar mutated: LeadWindow = %d", before.LeadWindow)
	}
	after, _ := r.Get(FamilyAct, StyleEnacted)
	if after == before {
		t.Error("overlay did not replace the published grammar value")
	}
	if after.LeadWindow != 72 {
		t.Errorf("LeadWindow = %d, want 72 from overlay", after.LeadWindow)
	}
}

func TestRegistry_ConcurrentGetAndLoadFile(t *testing.T) {
	dir := t.TempDir()
	writeOverlay(t, dir, "uu.yaml", `
family: uu
style: enacted
ref_indicators:
  - sebagaimana dimaksud
`)
	path := filepath.Join(dir, "uu.yaml")

	r := NewRegistry()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			if err := r.LoadFile(path); err != nil {
				t.Errorf("LoadFile failed: %v", err)
				return
			}
		}
	}()

	for i := 0; i < 200; i++ {
		g, ok := r.Get(FamilyAct, StyleEnacted)
		if !ok {
			t.Fatal("Get(uu, enacted) not found")
		}
		if len(g.RefIndicators) == 0 {
			t.Fatal("handed out a grammar with no ref indicators")
		}
		for j := range g.Levels {
			if g.Levels[j].Compiled() == nil {
				t.Fatal("handed out a grammar with uncompiled levels")
			}
			g.Levels[j].Compiled().MatchString("Pasal 1")
		}
	}
	<-done
}

func TestRegistry_LoadDirectoryMissing(t *testing.T) {
	r := NewRegistry()
	if err := r.LoadDirectory(filepath.Join(t.TempDir(), "absent")); err != nil {
		t.Errorf("missing overlay directory must not error, got %v", err)
	}
}

func TestRegistry_LoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	writeOverlay(t, dir, "bad.yaml", "family: [broken")
	r := NewRegistry()
	if err := r.LoadFile(filepath.Join(dir, "bad.yaml")); err == nil {
		t.Error("malformed YAML accepted")
	}

	writeOverlay(t, dir, "nofamily.yaml", "lead_window: 10")
	if err := r.LoadFile(filepath.Join(dir, "nofamily.yaml")); err == nil {
		t.Error("overlay without family accepted")
	}

	writeOverlay(t, dir, "unknown.yaml", "family: xx\nstyle: enacted")
	if err := r.LoadFile(filepath.Join(dir, "unknown.yaml")); err == nil {
		t.Error("overlay for unknown grammar accepted")
	}
}

func TestRegistry_Reload(t *testing.T) {
	dir := t.TempDir()
	writeOverlay(t, dir, "uu.yaml", "family: uu\nlead_window: 99")

	r, err := NewRegistryWithDirectory(dir)
	if err != nil {
		t.Fatalf("NewRegistryWithDirectory failed: %v", err)
	}

	if err := os.Remove(filepath.Join(dir, "uu.yaml")); err != nil {
		t.Fatalf("removing overlay: %v", err)
	}
	if err := r.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	g, _ := r.Get(FamilyAct, StyleEnacted)
	if g.LeadWindow != DefaultLeadWindow {
		t.Errorf("LeadWindow = %d after reload, want default %d", g.LeadWindow, DefaultLeadWindow)
	}
}
