package inspections

import (
	"testing"
)

// TestDiffFortifiedSymbols covers §8 scenario 2: a fortified glibc symbol
// present before a build and absent after is only reported when the after
// build still calls the function's unfortified form.
func TestDiffFortifiedSymbols(t *testing.T) {
	tests := []struct {
		name   string
		before []string
		after  []string
		want   []lostFortifiedSymbol
	}{
		{
			name:   "lost fortification, base still linked",
			before: []string{"__sprintf_chk", "memcpy"},
			after:  []string{"sprintf", "memcpy"},
			want:   []lostFortifiedSymbol{{Lost: "__sprintf_chk", Gained: "sprintf"}},
		},
		{
			name:   "still fortified, no finding",
			before: []string{"__sprintf_chk"},
			after:  []string{"__sprintf_chk"},
			want:   nil,
		},
		{
			name:   "call removed entirely, no finding",
			before: []string{"__sprintf_chk"},
			after:  []string{},
			want:   nil,
		},
		{
			name:   "unrelated symbol churn",
			before: []string{"fopen"},
			after:  []string{"fclose"},
			want:   nil,
		},
		{
			name:   "multiple fortified losses",
			before: []string{"__sprintf_chk", "__memcpy_chk"},
			after:  []string{"sprintf", "memcpy"},
			want: []lostFortifiedSymbol{
				{Lost: "__sprintf_chk", Gained: "sprintf"},
				{Lost: "__memcpy_chk", Gained: "memcpy"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := diffFortifiedSymbols(tt.before, tt.after)
			if len(got) != len(tt.want) {
				t.Fatalf("diffFortifiedSymbols() = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("diffFortifiedSymbols()[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestIsFortified(t *testing.T) {
	tests := []struct {
		sym  string
		want bool
	}{
		{"__sprintf_chk", true},
		{"__memcpy_chk", true},
		{"sprintf", false},
		{"_chk", false},
		{"__chk", false},
		{"__foo_check", false},
	}
	for _, tt := range tests {
		t.Run(tt.sym, func(t *testing.T) {
			if got := isFortified(tt.sym); got != tt.want {
				t.Errorf("isFortified(%q) = %v, want %v", tt.sym, got, tt.want)
			}
		})
	}
}

func TestFortifiedBase(t *testing.T) {
	tests := []struct {
		sym  string
		want string
	}{
		{"__sprintf_chk", "sprintf"},
		{"__memcpy_chk", "memcpy"},
		{"__readlink_chk", "readlink"},
	}
	for _, tt := range tests {
		t.Run(tt.sym, func(t *testing.T) {
			if got := fortifiedBase(tt.sym); got != tt.want {
				t.Errorf("fortifiedBase(%q) = %q, want %q", tt.sym, got, tt.want)
			}
		})
	}
}
