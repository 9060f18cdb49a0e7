package provost

import "testing"

func TestAttrMatch(t *testing.T) {
	tests := []struct {
		name      string
		allowed   []string
		requested *string
		want      bool
	}{
		{"empty whitelist allows nil", nil, nil, true},
		{"empty whitelist allows any", nil, strp("student"), true},
		{"exact match", []string{"student", "employee"}, strp("student"), true},
		{"no match", []string{"student"}, strp("employee"), false},
		{"non-empty whitelist denies nil", []string{"student"}, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := attrMatch(tt.allowed, tt.requested); got != tt.want {
				t.Fatalf("attrMatch(%v, %v) = %v, want %v", tt.allowed, tt.requested, got, tt.want)
			}
		})
	}
}

func TestMatchDiskPattern(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{`astro-u\d+`, "/uio/hume/astro-u1", true},
		{`astro-u\d+`, "/uio/hume/astro-l1", false},
		{"stud", "/uio/hume/student-u3", true}, // anchored prefix, not full match
		{"dent", "/uio/hume/student-u3", false},
		{"hume", "/uio/hume/astro-u1", false}, // only the base name is matched
	}
	for _, tt := range tests {
		got, err := matchDiskPattern(tt.pattern, tt.path)
		if err != nil {
			t.Fatalf("matchDiskPattern(%q, %q): %v", tt.pattern, tt.path, err)
		}
		if got != tt.want {
			t.Fatalf("matchDiskPattern(%q, %q) = %v, want %v", tt.pattern, tt.path, got, tt.want)
		}
	}
}

func TestMatchDiskPatternMalformed(t *testing.T) {
	if _, err := matchDiskPattern("[unclosed", "/uio/hume/astro-u1"); err == nil {
		t.Fatal("expected error for malformed pattern")
	}
}
