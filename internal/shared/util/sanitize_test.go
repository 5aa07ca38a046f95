package util

import "testing"

func TestReplaceUnsafe(t *testing.T) {
	cases := []struct {
		in   string
		keep func(rune) bool
		want string
	}{
		{"Renouvellement Passeport #2", IsAlphanumeric, "Renouvellement_Passeport__2"},
		{"carte d'identité.pdf", IsFileNameSafe, "carte_d_identit_.pdf"},
		{"a/b\\c.txt", IsFileNameSafe, "a_b_c.txt"},
		{"#!?", IsAlphanumeric, "___"},
		{"", IsAlphanumeric, ""},
	}
	for _, tc := range cases {
		if got := ReplaceUnsafe(tc.in, tc.keep); got != tc.want {
			t.Fatalf("ReplaceUnsafe(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestUniqueName(t *testing.T) {
	used := map[string]bool{}
	take := func(name string) string {
		got := UniqueName(name, func(s string) bool { return used[s] })
		used[got] = true
		return got
	}

	want := []string{"scan.pdf", "scan_2.pdf", "scan_3.pdf"}
	for i, w := range want {
		if got := take("scan.pdf"); got != w {
			t.Fatalf("call %d: got %q, want %q", i+1, got, w)
		}
	}

	if got := take("README"); got != "README" {
		t.Fatalf("got %q", got)
	}
	if got := take("README"); got != "README_2" {
		t.Fatalf("got %q", got)
	}
	if got := take(".env"); got != ".env" {
		t.Fatalf("got %q", got)
	}
	if got := take(".env"); got != ".env_2" {
		t.Fatalf("got %q", got)
	}
}

func TestUniqueNameSkipsPreexistingSuffix(t *testing.T) {
	used := map[string]bool{"a.txt": true, "a_2.txt": true}
	if got := UniqueName("a.txt", func(s string) bool { return used[s] }); got != "a_3.txt" {
		t.Fatalf("got %q", got)
	}
}
