package deprules

import (
	"testing"

	"github.com/rpminspect/rpminspect"
)

func newPkg(name, version, release, arch string) *rpminspect.Pkg {
	return &rpminspect.Pkg{Name: name, Version: version, Release: release, Arch: arch}
}

func TestAnalyzeProviders(t *testing.T) {
	t.Parallel()
	libs := newPkg("foo-libs", "1.0", "1.fc40", "x86_64")
	main := newPkg("foo", "1.0", "1.fc40", "x86_64")

	provides := &rpminspect.DepRule{Kind: rpminspect.Provides, Name: "libfoo.so.0()(64bit)", Pkg: libs}
	libs.SetDepRules([]*rpminspect.DepRule{provides})

	requires := &rpminspect.DepRule{Kind: rpminspect.Requires, Name: "libfoo.so.0()(64bit)", Pkg: main}
	main.SetDepRules([]*rpminspect.DepRule{requires})

	AnalyzeProviders([]*rpminspect.Pkg{libs, main})

	if len(requires.Providers) != 1 || requires.Providers[0] != "foo-libs" {
		t.Fatalf("expected requires.Providers = [foo-libs], got %v", requires.Providers)
	}
}

func TestCheckExplicitVersions(t *testing.T) {
	t.Parallel()

	t.Run("single provider, no explicit requires is a finding", func(t *testing.T) {
		pkg := newPkg("foo", "1.0", "1.fc40", "x86_64")
		r := &rpminspect.DepRule{Kind: rpminspect.Requires, Name: "libfoo.so.0()(64bit)", Providers: []string{"foo-libs"}}
		pkg.SetDepRules([]*rpminspect.DepRule{r})

		finding := CheckExplicitVersions(pkg, r)
		if finding == nil {
			t.Fatal("expected a policy finding")
		}
		if finding.Conflict {
			t.Error("a single unversioned provider should not be a conflict")
		}
	})

	t.Run("single provider with matching explicit requires is clean", func(t *testing.T) {
		pkg := newPkg("foo", "1.0", "1.fc40", "x86_64")
		soname := &rpminspect.DepRule{Kind: rpminspect.Requires, Name: "libfoo.so.0()(64bit)", Providers: []string{"foo-libs"}}
		explicit := &rpminspect.DepRule{Kind: rpminspect.Requires, Name: "foo-libs", Op: rpminspect.OpEQ, Version: "1.0-1.fc40"}
		pkg.SetDepRules([]*rpminspect.DepRule{soname, explicit})

		if finding := CheckExplicitVersions(pkg, soname); finding != nil {
			t.Errorf("expected no finding, got %+v", finding)
		}
	})

	t.Run("multiple explicit providers conflict", func(t *testing.T) {
		pkg := newPkg("foo", "1.0", "1.fc40", "x86_64")
		soname := &rpminspect.DepRule{Kind: rpminspect.Requires, Name: "libfoo.so.0()(64bit)", Providers: []string{"foo-libs", "foo-compat"}}
		a := &rpminspect.DepRule{Kind: rpminspect.Requires, Name: "foo-libs", Op: rpminspect.OpEQ, Version: "1.0-1.fc40"}
		b := &rpminspect.DepRule{Kind: rpminspect.Requires, Name: "foo-compat", Op: rpminspect.OpEQ, Version: "1.0-1.fc40"}
		pkg.SetDepRules([]*rpminspect.DepRule{soname, a, b})

		finding := CheckExplicitVersions(pkg, soname)
		if finding == nil || !finding.Conflict {
			t.Fatalf("expected a conflict finding, got %+v", finding)
		}
	})

	t.Run("no providers means no finding", func(t *testing.T) {
		pkg := newPkg("foo", "1.0", "1.fc40", "x86_64")
		r := &rpminspect.DepRule{Kind: rpminspect.Requires, Name: "bar"}
		pkg.SetDepRules([]*rpminspect.DepRule{r})
		if finding := CheckExplicitVersions(pkg, r); finding != nil {
			t.Errorf("expected no finding without providers, got %+v", finding)
		}
	})
}
