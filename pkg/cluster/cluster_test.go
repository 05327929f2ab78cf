package cluster

import "testing"

func TestClassifyPrecedence(t *testing.T) {
	c := NewClassifier([]Cluster{
		{Name: "Special", Patterns: []string{"api/core/*"}},
		{Name: "All", Patterns: []string{"api/*", "api/**"}},
	}, false)

	if got := c.Classify("api/core/x"); got != "Special" {
		t.Errorf("Classify(api/core/x) = %q, want Special", got)
	}
	if got := c.Classify("api/overview"); got != "All" {
		t.Errorf("Classify(api/overview) = %q, want All", got)
	}
}

func TestClassify(t *testing.T) {
	clusters := []Cluster{
		{Name: "API", Patterns: []string{"api/**"}},
		{Name: "Guides", Patterns: []string{"guide/*", "tutorial"}},
		{Name: "Empty", Patterns: nil},
	}

	tests := []struct {
		name string
		path string
		auto bool
		want string
	}{
		{name: "RecursiveMatch", path: "api/core/deep/page", want: "API"},
		{name: "SingleSegmentMatch", path: "guide/intro", want: "Guides"},
		{name: "SingleStarDoesNotRecurse", path: "guide/a/b", want: ""},
		{name: "LiteralMatch", path: "tutorial", want: "Guides"},
		{name: "NoMatch", path: "changelog", want: ""},
		{name: "NormalizesLeadingSlashAndExtension", path: "/api/index.html", want: "API"},
		{name: "AutoClusterFirstSegment", path: "examples/lorem", auto: true, want: "examples"},
		{name: "AutoClusterRootLevelUnclustered", path: "index", auto: true, want: ""},
		{name: "ManualBeforeAuto", path: "api/core/x", auto: true, want: "API"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClassifier(clusters, tt.auto)
			if got := c.Classify(tt.path); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestClassifyAutoSharedSegment(t *testing.T) {
	c := NewClassifier(nil, true)

	a := c.Classify("tutorials/intro")
	b := c.Classify("tutorials/advanced")
	if a != b || a != "tutorials" {
		t.Errorf("auto cluster names differ: %q vs %q, want both tutorials", a, b)
	}
}

func TestClassifyMalformedPattern(t *testing.T) {
	c := NewClassifier([]Cluster{
		{Name: "Broken", Patterns: []string{"[unclosed"}},
		{Name: "OK", Patterns: []string{"docs/*"}},
	}, false)

	if got := c.Classify("docs/a"); got != "OK" {
		t.Errorf("Classify(docs/a) = %q, want OK (malformed pattern skipped)", got)
	}
	if got := c.Classify("[unclosed"); got != "" {
		t.Errorf("Classify([unclosed) = %q, want unclustered", got)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"/example/lorem.html", "example/lorem"},
		{"index.html", "index"},
		{"api/v1.2/page.html", "api/v1.2/page"},
		{"no-extension", "no-extension"},
		{"//double/slash.html", "double/slash"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
