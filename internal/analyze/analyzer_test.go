package analyze

import (
	"reflect"
	"sort"
	"testing"

	"github.com/loomworks/seam/internal/catalog"
)

func comp(name, provides string, requires ...string) *catalog.Component {
	return &catalog.Component{Name: name, Provides: provides, Requires: requires}
}

func build(comps ...*catalog.Component) (*catalog.Catalog, catalog.Index) {
	c := catalog.New(comps)
	return c, catalog.BuildIndex(c)
}

func TestCycles_TwoNodeCycle(t *testing.T) {
	c, ix := build(
		comp("A", "SvcA", "SvcB"),
		comp("B", "SvcB", "SvcA"),
		comp("C", "SvcC"),
	)

	cycles := Cycles(c, ix)

	if len(cycles) != 1 {
		t.Fatalf("got %d cycles, want 1: %v", len(cycles), cycles)
	}
	members := append([]string(nil), cycles[0]...)
	sort.Strings(members)
	if want := []string{"A", "B"}; !reflect.DeepEqual(members, want) {
		t.Errorf("cycle members = %v, want %v", members, want)
	}
}

func TestCycles_NoCycle(t *testing.T) {
	c, ix := build(
		comp("Db", "Database"),
		comp("Cache", "Cache", "Database"),
		comp("App", "App", "Cache"),
	)

	if cycles := Cycles(c, ix); len(cycles) != 0 {
		t.Errorf("Cycles() = %v, want none for an acyclic catalog", cycles)
	}
}

func TestCycles_SingletonIsNotACycle(t *testing.T) {
	// A component requiring a capability nobody provides is a singleton SCC.
	c, ix := build(comp("Lonely", "Svc", "Missing"))

	if cycles := Cycles(c, ix); len(cycles) != 0 {
		t.Errorf("Cycles() = %v, want none for singleton SCCs", cycles)
	}
}

func TestCycles_ThreeNodeCycleGroupedTogether(t *testing.T) {
	c, ix := build(
		comp("A", "SvcA", "SvcB"),
		comp("B", "SvcB", "SvcC"),
		comp("C", "SvcC", "SvcA"),
		comp("D", "SvcD", "SvcA"),
	)

	cycles := Cycles(c, ix)

	if len(cycles) != 1 {
		t.Fatalf("got %d cycles, want 1: %v", len(cycles), cycles)
	}
	members := append([]string(nil), cycles[0]...)
	sort.Strings(members)
	if want := []string{"A", "B", "C"}; !reflect.DeepEqual(members, want) {
		t.Errorf("cycle members = %v, want %v", members, want)
	}
}

func TestCycles_Deterministic(t *testing.T) {
	c, ix := build(
		comp("A", "SvcA", "SvcB"),
		comp("B", "SvcB", "SvcA"),
		comp("X", "SvcX", "SvcY"),
		comp("Y", "SvcY", "SvcX"),
	)

	first := Cycles(c, ix)
	second := Cycles(c, ix)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Cycles() not deterministic: %v vs %v", first, second)
	}
	if len(first) != 2 {
		t.Errorf("got %d cycles, want 2: %v", len(first), first)
	}
}

func TestOrphans(t *testing.T) {
	c, _ := build(
		comp("Db", "Database"),
		comp("Cache", "Cache", "Database"),
		comp("Unused", "Telemetry"),
		comp("Agg", "", "Cache"),
	)

	orphans := Orphans(c)

	if want := []string{"Unused"}; !reflect.DeepEqual(orphans, want) {
		t.Errorf("Orphans() = %v, want %v", orphans, want)
	}
}

func TestOrphans_ProvidesNothingNeverOrphan(t *testing.T) {
	c, _ := build(
		comp("Agg", ""),
		comp("Tail", "Svc"),
	)

	orphans := Orphans(c)

	for _, name := range orphans {
		if name == "Agg" {
			t.Error("component with no provides reported as orphan")
		}
	}
	if want := []string{"Tail"}; !reflect.DeepEqual(orphans, want) {
		t.Errorf("Orphans() = %v, want %v", orphans, want)
	}
}
