package validation

import "testing"

func TestNormalizeEmail_Valid(t *testing.T) {
	valids := map[string]string{
		"ana@example.com":          "ana@example.com",
		"  Ana@Example.COM ":       "ana@example.com",
		"first.last+x@a.co.uk":     "first.last+x@a.co.uk",
		"o'brien@mail.example.org": "o'brien@mail.example.org",
	}
	for in, want := range valids {
		got, ok := NormalizeEmail(in)
		if !ok || got != want {
			t.Fatalf("NormalizeEmail(%q) = %q,%v want %q,true", in, got, ok, want)
		}
	}
}

func TestNormalizeEmail_Invalid(t *testing.T) {
	invalids := []string{
		"",
		"ana",
		"ana@",
		"@example.com",
		"ana@localhost",
		"ana @example.com",
		"Ana <ana@example.com>",
		"a@b@c.com",
	}
	for _, v := range invalids {
		if ValidEmail(v) {
			t.Fatalf("expected invalid: %q", v)
		}
	}
}

func TestNormalizeColor(t *testing.T) {
	for _, v := range []string{"#fff", "#FFAA00", "#0a0B0c"} {
		if _, ok := NormalizeColor(v); !ok {
			t.Fatalf("expected valid color: %q", v)
		}
	}
	for _, v := range []string{"", "fff", "#ffff", "#ggg", "red", "#12345"} {
		if _, ok := NormalizeColor(v); ok {
			t.Fatalf("expected invalid color: %q", v)
		}
	}
	if got, _ := NormalizeColor("#ABC"); got != "#abc" {
		t.Fatalf("color not lower-cased: %q", got)
	}
}

func TestNormalizeDomain(t *testing.T) {
	cases := map[string]string{
		"acme.io":                  "acme.io",
		"https://Acme.io/":         "acme.io",
		"http://shop.acme.io/path": "shop.acme.io",
		" acme.io?x=1 ":            "acme.io",
	}
	for in, want := range cases {
		if got := NormalizeDomain(in); got != want {
			t.Fatalf("NormalizeDomain(%q) = %q want %q", in, got, want)
		}
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList(" a@x.io, ,b@y.io;c@z.io ")
	if len(got) != 3 || got[0] != "a@x.io" || got[2] != "c@z.io" {
		t.Fatalf("unexpected split: %#v", got)
	}
	if SplitList("") != nil {
		t.Fatalf("empty input should yield nil")
	}
}
