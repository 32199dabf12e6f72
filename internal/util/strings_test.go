package util

import "testing"

func TestTrimAndLower(t *testing.T) {
	if got := TrimAndLower("  PostgreSQL  "); got != "postgresql" {
		t.Fatalf("TrimAndLower: got %q", got)
	}
}

func TestTrimEmptyCheck(t *testing.T) {
	if s, ok := TrimEmptyCheck("  value "); !ok || s != "value" {
		t.Fatalf("expected (value,true), got (%q,%v)", s, ok)
	}
	if s, ok := TrimEmptyCheck("   "); ok || s != "" {
		t.Fatalf("expected (\"\",false), got (%q,%v)", s, ok)
	}
}

func TestTrimWithDefault(t *testing.T) {
	if got := TrimWithDefault("  ", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
	if got := TrimWithDefault(" x ", "fallback"); got != "x" {
		t.Fatalf("expected x, got %q", got)
	}
}

func TestTrimSpaceFields(t *testing.T) {
	got := TrimSpaceFields(" a ", "b", " c")
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("field %d: got %q want %q", i, got[i], want[i])
		}
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Create Users Table", "create_users_table"},
		{"add-index!!", "add_index"},
		{"  Already_snake  ", "already_snake"},
		{"___", ""},
		{"Drop FK (orders)", "drop_fk_orders"},
	}
	for _, c := range cases {
		if got := Slugify(c.in); got != c.want {
			t.Fatalf("Slugify(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
