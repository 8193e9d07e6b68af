package engine

import (
	"reflect"
	"testing"

	"github.com/loomworks/seam/internal/catalog"
)

func payload() *catalog.Payload {
	return &catalog.Payload{
		Components: []*catalog.Component{
			{Name: "Db", Provides: "Database", Provenance: catalog.Provenance{File: "db.x", Line: 1}},
			{Name: "Cache", Provides: "Cache", Requires: []string{"Database"}, Provenance: catalog.Provenance{File: "cache.x", Line: 5}},
		},
		Missing: []catalog.MissingRequest{
			{Capability: "Cache", Provenance: catalog.Provenance{File: "main.x", Line: 40}},
		},
	}
}

func TestAnalyze_CacheScenario(t *testing.T) {
	snap := Analyze(payload(), Options{})

	if want := []string{"Db", "Cache"}; !reflect.DeepEqual(snap.Resolution.Order, want) {
		t.Errorf("Order = %v, want %v", snap.Resolution.Order, want)
	}
	if len(snap.Resolution.Missing) != 0 {
		t.Errorf("Missing = %v, want empty", snap.Resolution.Missing)
	}
	if got, want := snap.Plan.String(), "merge(provide(Cache, Db))"; got != want {
		t.Errorf("plan = %s, want %s", got, want)
	}
	if len(snap.Fixes) != 1 {
		t.Fatalf("got %d fixes, want 1", len(snap.Fixes))
	}
	fix := snap.Fixes[0]
	if fix.File != "main.x" || fix.Line != 40 {
		t.Errorf("fix site = %s:%d, want main.x:40", fix.File, fix.Line)
	}
	if want := []string{"Cache", "Db"}; !reflect.DeepEqual(fix.Components, want) {
		t.Errorf("fix components = %v, want %v", fix.Components, want)
	}
	if len(snap.Diagram) == 0 {
		t.Error("diagram should not be empty for a populated catalog")
	}
}

func TestAnalyze_UnmetRequirement(t *testing.T) {
	p := &catalog.Payload{
		Components: []*catalog.Component{
			{Name: "A", Provides: "Svc", Requires: []string{"Other"}},
		},
		Missing: []catalog.MissingRequest{
			{Capability: "Svc", Provenance: catalog.Provenance{File: "main.x", Line: 7}},
		},
	}

	snap := Analyze(p, Options{})

	if want := []string{"A"}; !reflect.DeepEqual(snap.Resolution.Order, want) {
		t.Errorf("Order = %v, want %v", snap.Resolution.Order, want)
	}
	if want := []string{"Other"}; !reflect.DeepEqual(snap.Resolution.Missing, want) {
		t.Errorf("Missing = %v, want %v", snap.Resolution.Missing, want)
	}
}

func TestAnalyze_FixesGroupedBySite(t *testing.T) {
	p := payload()
	p.Components = append(p.Components, &catalog.Component{Name: "Log", Provides: "Logger"})
	p.Missing = []catalog.MissingRequest{
		{Capability: "Cache", Provenance: catalog.Provenance{File: "main.x", Line: 40}},
		{Capability: "Logger", Provenance: catalog.Provenance{File: "main.x", Line: 40}},
		{Capability: "Logger", Provenance: catalog.Provenance{File: "other.x", Line: 9}},
	}

	snap := Analyze(p, Options{})

	if len(snap.Fixes) != 2 {
		t.Fatalf("got %d fixes, want 2 (one per site)", len(snap.Fixes))
	}
	first := snap.Fixes[0]
	if want := []string{"Cache", "Db", "Log"}; !reflect.DeepEqual(first.Components, want) {
		t.Errorf("first fix components = %v, want %v", first.Components, want)
	}
	second := snap.Fixes[1]
	if second.File != "other.x" || !reflect.DeepEqual(second.Components, []string{"Log"}) {
		t.Errorf("second fix = %+v, want Log at other.x", second)
	}
}

func TestAnalyze_EmptyPayload(t *testing.T) {
	snap := Analyze(&catalog.Payload{}, Options{})

	if len(snap.Diagram) != 1 {
		t.Errorf("empty catalog diagram = %v, want one placeholder line", snap.Diagram)
	}
	if len(snap.Resolution.Resolved) != 0 {
		t.Errorf("Resolved = %v, want empty", snap.Resolution.Order)
	}
}

func TestAnalyze_CycleReported(t *testing.T) {
	p := &catalog.Payload{
		Components: []*catalog.Component{
			{Name: "A", Provides: "SvcA", Requires: []string{"SvcB"}},
			{Name: "B", Provides: "SvcB", Requires: []string{"SvcA"}},
		},
		Missing: []catalog.MissingRequest{{Capability: "SvcA"}},
	}

	snap := Analyze(p, Options{})

	if len(snap.Cycles) != 1 || len(snap.Cycles[0]) != 2 {
		t.Errorf("Cycles = %v, want one two-member cycle", snap.Cycles)
	}
	if len(snap.Resolution.Order) != 2 {
		t.Errorf("Order = %v, want both cycle members resolved without looping", snap.Resolution.Order)
	}
}
