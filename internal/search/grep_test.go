package search

import "testing"

func TestParseGrepOutput(t *testing.T) {
	out := []byte("/wiki/a.org:3:see [[wiki:b.org]]\n/wiki/b.org:1:#+KEYWORDS: go\n")
	matches := parseGrepOutput(out)
	if len(matches) != 2 {
		t.Fatalf("len = %d, want 2", len(matches))
	}
	if matches[0].File != "/wiki/a.org" || matches[0].Line != 3 {
		t.Errorf("first match = %+v", matches[0])
	}
	if matches[1].Text != "#+KEYWORDS: go" {
		t.Errorf("text = %q", matches[1].Text)
	}
}

func TestParseGrepOutput_SkipsMalformedLines(t *testing.T) {
	out := []byte("banner without colons\n/wiki/a.org:notanumber:text\n/wiki/a.org:7:ok\n")
	matches := parseGrepOutput(out)
	if len(matches) != 1 || matches[0].Line != 7 {
		t.Errorf("matches = %+v", matches)
	}
}

func TestNewGrepDefaultsToRipgrep(t *testing.T) {
	g := NewGrep("")
	if g.bin != "rg" {
		t.Errorf("bin = %q, want rg", g.bin)
	}
}
