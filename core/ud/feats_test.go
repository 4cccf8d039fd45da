package ud

import "testing"

func TestParseFeats(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"_", "_", true},
		{"", "_", true},
		{"Case=Nom", "Case=Nom", true},
		{"Number=Sing|Case=Nom", "Case=Nom|Number=Sing", true},
		{"Gender=Fem|Case=Nom|Number=Sing", "Case=Nom|Gender=Fem|Number=Sing", true},
		{"Case=Nom|Broken", "", false},
		{"=Nom", "", false},
	}
	for _, tt := range tests {
		f, ok := ParseFeats(tt.in)
		if ok != tt.ok {
			t.Errorf("ParseFeats(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if !ok {
			continue
		}
		if got := f.String(); got != tt.want {
			t.Errorf("ParseFeats(%q).String() = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFeatsSortCaseSensitive(t *testing.T) {
	var f Feats
	f.Set("number", "Sing")
	f.Set("Case", "Nom")
	// uppercase sorts before lowercase bytewise
	if got := f.String(); got != "Case=Nom|number=Sing" {
		t.Errorf("String() = %q, want Case=Nom|number=Sing", got)
	}
}

func TestFeatsSetAndDelete(t *testing.T) {
	var f Feats
	f.Set("Case", "Nom")
	f.Set("Number", "Sing")
	f.Set("Case", "Gen")
	if got := f.Get("Case"); got != "Gen" {
		t.Errorf("Get(Case) = %q, want Gen", got)
	}
	f.Set("Number", "")
	if f.Len() != 1 {
		t.Errorf("Len() = %d, want 1 after empty-value delete", f.Len())
	}
	f.Delete("Case")
	if got := f.String(); got != "_" {
		t.Errorf("empty bag serializes as %q, want _", got)
	}
}

func TestFeatsCloneIsIndependent(t *testing.T) {
	var f Feats
	f.Set("Case", "Nom")
	c := f.Clone()
	c.Set("Case", "Gen")
	if f.Get("Case") != "Nom" {
		t.Error("mutating the clone changed the original")
	}
}

func TestParseMiscPreservesOrder(t *testing.T) {
	m := ParseMisc("SpaceAfter=No|Translit=kocka")
	if got := m.String(); got != "SpaceAfter=No|Translit=kocka" {
		t.Errorf("String() = %q, input order not preserved", got)
	}
	m.Set("NE", "PER")
	if got := m.String(); got != "SpaceAfter=No|Translit=kocka|NE=PER" {
		t.Errorf("String() = %q, new item should append", got)
	}
}

func TestParseMiscToleratesBareFlags(t *testing.T) {
	m := ParseMisc("Typo|SpaceAfter=No")
	if !m.Has("Typo") {
		t.Error("bare item should be kept as a flag")
	}
	if got := m.String(); got != "Typo|SpaceAfter=No" {
		t.Errorf("String() = %q, flag should serialize without =", got)
	}
}

func TestParseMiscKeepsExplicitEmptyValue(t *testing.T) {
	m := ParseMisc("Typo|Gloss=|SpaceAfter=No")
	if got := m.String(); got != "Typo|Gloss=|SpaceAfter=No" {
		t.Errorf("String() = %q, explicit empty value should keep its =", got)
	}
}

func TestMiscDelete(t *testing.T) {
	m := ParseMisc("SpaceAfter=No|NE=PER")
	m.Delete("SpaceAfter")
	if got := m.String(); got != "NE=PER" {
		t.Errorf("String() = %q, want NE=PER", got)
	}
	m.Delete("NE")
	if got := m.String(); got != "_" {
		t.Errorf("empty bag serializes as %q, want _", got)
	}
}
