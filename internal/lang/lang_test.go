package lang

import "testing"

func TestResolveTable(t *testing.T) {
	cases := []struct {
		in    string
		code  string
		valid bool
	}{
		{"he", "he", true},
		{"he-IL", "he", true},
		{"HE_il", "he", true},
		{"Hebrew", "he", true},
		{"iw", "he", true},
		{"pt_BR", "pt", true},
		{"English", "en", true},
		{"Mandarin", "zh", true},
		{"yue", "yue", true},
		{"xx", "xx", true},
		{"", "", false},
		{"   ", "", false},
		{"klingon", "", false},
		{"12-34", "", false},
	}
	for _, tc := range cases {
		got := Resolve(tc.in)
		if got.Valid != tc.valid {
			t.Fatalf("Resolve(%q).Valid = %v, want %v (reason %q)", tc.in, got.Valid, tc.valid, got.Reason)
		}
		if got.Valid && got.Code != tc.code {
			t.Fatalf("Resolve(%q).Code = %q, want %q", tc.in, got.Code, tc.code)
		}
		if !got.Valid && got.Reason == "" {
			t.Fatalf("Resolve(%q) invalid without reason", tc.in)
		}
	}
}

func TestResolveIdempotent(t *testing.T) {
	inputs := []string{"he-IL", "Hebrew", "pt_BR", "en", "id", "Norwegian"}
	for _, in := range inputs {
		first := Resolve(in)
		if !first.Valid {
			t.Fatalf("Resolve(%q) unexpectedly invalid: %s", in, first.Reason)
		}
		second := Resolve(first.Code)
		if !second.Valid || second.Code != first.Code {
			t.Fatalf("Resolve not idempotent for %q: %q -> %q", in, first.Code, second.Code)
		}
	}
}

func TestResolveRawPreserved(t *testing.T) {
	got := Resolve(" He-IL ")
	if got.Raw != " He-IL " {
		t.Fatalf("raw input not preserved: %q", got.Raw)
	}
	if got.Code != "he" {
		t.Fatalf("code = %q, want he", got.Code)
	}
}
