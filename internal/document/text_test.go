package document

import (
	"reflect"
	"testing"
)

func TestSanitizeID(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"My Project", "my-project"},
		{"  Spaced  ", "spaced"},
		{"already-clean_slug-9", "already-clean_slug-9"},
		{"C++ & Go!", "c-----go-"},
		{"ÜBER", "--ber"},
		{"", ""},
		{"   ", ""},
	}
	for _, tc := range cases {
		if got := SanitizeID(tc.in); got != tc.want {
			t.Errorf("SanitizeID(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeIDIdempotent(t *testing.T) {
	inputs := []string{"My Project", "a b c", "weird/§chars", "plain"}
	for _, in := range inputs {
		once := SanitizeID(in)
		twice := SanitizeID(once)
		if once != twice {
			t.Errorf("SanitizeID not idempotent for %q: %q != %q", in, once, twice)
		}
		for _, r := range once {
			valid := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_'
			if !valid {
				t.Errorf("SanitizeID(%q) contains %q outside slug alphabet", in, r)
			}
		}
	}
}

func TestLinesRoundTripCleanList(t *testing.T) {
	list := []string{"one", "two", "three"}
	got := LinesToList(ListToLines(list))
	if !reflect.DeepEqual(got, list) {
		t.Errorf("round trip changed clean list: %v", got)
	}
}

func TestLinesRoundTripShrinksBlanks(t *testing.T) {
	// Blank suppression is deliberate: the round trip must shrink, not
	// preserve, lists containing blank or whitespace-only entries.
	list := []string{"one", "", "  ", "two"}
	got := LinesToList(ListToLines(list))
	want := []string{"one", "two"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected shrunk list %v, got %v", want, got)
	}
	if len(got) >= len(list) {
		t.Errorf("round trip did not strictly shrink: %d >= %d", len(got), len(list))
	}
}

func TestLinesToListTrims(t *testing.T) {
	got := LinesToList("  a  \nb\n\n c\n")
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("LinesToList = %v, want %v", got, want)
	}
}
