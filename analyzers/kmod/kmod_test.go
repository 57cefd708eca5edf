package kmod

import (
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	raw := "alias=pci:v00001425d00000020sv*sd00000001bc*sc*i*\x00" +
		"depends=foo,bar\x00" +
		"parm=debug:Enable debug output (int)\x00"
	info, err := Parse("cxgb3", strings.NewReader(raw))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if info.Name != "cxgb3" {
		t.Errorf("Name = %q, want cxgb3", info.Name)
	}
	if len(info.Aliases) != 1 || info.Aliases[0] != "pci:v00001425d00000020sv*sd00000001bc*sc*i*" {
		t.Errorf("Aliases = %v", info.Aliases)
	}
	if deps := info.DependsSet("depends"); !deps["foo"] || !deps["bar"] || len(deps) != 2 {
		t.Errorf("DependsSet(depends) = %v", deps)
	}
	if params := info.ParamNames(); !params["debug"] || len(params) != 1 {
		t.Errorf("ParamNames = %v", params)
	}
}

func TestDiffSets(t *testing.T) {
	before := map[string]bool{"a": true, "b": true}
	after := map[string]bool{"b": true, "c": true}
	removed, added := DiffSets(before, after)
	if len(removed) != 1 || removed[0] != "a" {
		t.Errorf("removed = %v, want [a]", removed)
	}
	if len(added) != 1 || added[0] != "c" {
		t.Errorf("added = %v, want [c]", added)
	}
}

// TestCompareModuleAliasesWildcardRelaxation mirrors spec.md §8 scenario 6:
// an alias that gains a wider wildcard between releases (sd00000001 ->
// sd*) but keeps the same provider module should not be reported, since
// the provider set didn't shrink.
func TestCompareModuleAliasesWildcardRelaxation(t *testing.T) {
	before := map[string]map[string]bool{
		"pci:v00001425d00000020sv*sd00000001bc*sc*i*": {"cxgb3": true},
	}
	after := map[string]map[string]bool{
		"pci:v00001425d00000020sv*sd*bc*sc*i*": {"cxgb3": true},
	}
	var fired []string
	CompareModuleAliases(before, after, func(alias string, beforeModules, afterModules map[string]bool) {
		fired = append(fired, alias)
	})
	if len(fired) != 0 {
		t.Errorf("CompareModuleAliases fired on a relaxed-but-covered alias: %v", fired)
	}
}

func TestCompareModuleAliasesShrunkProvider(t *testing.T) {
	before := map[string]map[string]bool{
		"pci:v00001425d00000020sv*sd00000001bc*sc*i*": {"cxgb3": true, "cxgb3_extra": true},
	}
	after := map[string]map[string]bool{
		"pci:v00001425d00000020sv*sd00000001bc*sc*i*": {"cxgb3": true},
	}
	var fired []string
	CompareModuleAliases(before, after, func(alias string, beforeModules, afterModules map[string]bool) {
		fired = append(fired, alias)
	})
	if len(fired) != 1 {
		t.Fatalf("CompareModuleAliases did not fire on a shrunk provider set: %v", fired)
	}
}

func TestCompareModuleAliasesDropped(t *testing.T) {
	before := map[string]map[string]bool{
		"pci:v0000dead": {"somemod": true},
	}
	after := map[string]map[string]bool{}
	var fired []string
	CompareModuleAliases(before, after, func(alias string, beforeModules, afterModules map[string]bool) {
		fired = append(fired, alias)
		if afterModules != nil {
			t.Errorf("afterModules = %v, want nil for a dropped alias", afterModules)
		}
	})
	if len(fired) != 1 {
		t.Fatalf("CompareModuleAliases did not fire on a dropped alias: %v", fired)
	}
}

func TestAliasMapFiltersNonPCI(t *testing.T) {
	infos := []*Info{
		{Name: "m1", Aliases: []string{"pci:v1", "usb:v1"}},
	}
	am := AliasMap(infos)
	if len(am) != 1 || am["pci:v1"] == nil {
		t.Errorf("AliasMap = %v, want only the pci: alias", am)
	}
}
