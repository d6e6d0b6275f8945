package main

import "testing"

func TestParseInterval(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"", 300, false},
		{"\n", 300, false},
		{"60\n", 60, false},
		{" 900 ", 900, false},
		{"90", 0, true},
		{"0", 0, true},
		{"-60", 0, true},
		{"abc", 0, true},
	}
	for _, c := range cases {
		got, err := parseInterval(c.in)
		if (err != nil) != c.wantErr {
			t.Errorf("parseInterval(%q) err=%v, wantErr=%v", c.in, err, c.wantErr)
			continue
		}
		if err == nil && got != c.want {
			t.Errorf("parseInterval(%q)=%d, want %d", c.in, got, c.want)
		}
	}
}
