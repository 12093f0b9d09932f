package fspath

import (
	"strings"
	"testing"
)

// TestIsAbsolute tests IsAbsolute.
func TestIsAbsolute(t *testing.T) {
	// Define test cases.
	tests := []struct {
		path     string
		expected bool
	}{
		{"", false},
		{".", false},
		{"a", false},
		{"a/b", false},
		{"../a", false},
		{"/", true},
		{"/a", true},
		{"/a/b/", true},
	}

	// Process test cases.
	for _, test := range tests {
		if result := IsAbsolute(test.path); result != test.expected {
			t.Errorf("IsAbsolute(%q) = %v, expected %v", test.path, result, test.expected)
		}
	}
}

// TestSplit tests Split.
func TestSplit(t *testing.T) {
	// Define test cases.
	tests := []struct {
		path     string
		expected []string
	}{
		{"", []string{"."}},
		{"/", []string{"/"}},
		{"a", []string{".", "a"}},
		{"a/b", []string{".", "a", "b"}},
		{"/a/b", []string{"/", "a", "b"}},
		{"//a//b/", []string{"/", "a", "b"}},
		{"./a", []string{".", ".", "a"}},
	}

	// Process test cases.
	for _, test := range tests {
		result := Split(test.path)
		if len(result) != len(test.expected) {
			t.Errorf("Split(%q) = %v, expected %v", test.path, result, test.expected)
			continue
		}
		for i := range result {
			if result[i] != test.expected[i] {
				t.Errorf("Split(%q) = %v, expected %v", test.path, result, test.expected)
				break
			}
		}
	}
}

// TestJoin tests Join.
func TestJoin(t *testing.T) {
	// Define test cases.
	tests := []struct {
		parts    []string
		expected string
	}{
		{nil, "."},
		{[]string{""}, "."},
		{[]string{"", ""}, "."},
		{[]string{"a"}, "a"},
		{[]string{"a", "b"}, "a/b"},
		{[]string{"/", "a"}, "/a"},
		{[]string{"/a", "b"}, "/a/b"},
		{[]string{"/a/", "/b/"}, "/a/b/"},
		{[]string{"a", "", "b"}, "a/b"},
		{[]string{"a", "..", "b"}, "b"},
		{[]string{"/a", "../b"}, "/b"},
	}

	// Process test cases.
	for _, test := range tests {
		if result := Join(test.parts...); result != test.expected {
			t.Errorf("Join(%v) = %q, expected %q", test.parts, result, test.expected)
		}
	}
}

// TestNormalize tests Normalize.
func TestNormalize(t *testing.T) {
	// Define test cases.
	tests := []struct {
		path     string
		expected string
	}{
		{"", "."},
		{".", "."},
		{"/", "/"},
		{"//", "/"},
		{"a", "a"},
		{"a/", "a/"},
		{"a//b", "a/b"},
		{"./a", "a"},
		{"a/.", "a"},
		{"a/./b", "a/b"},
		{"a/..", "."},
		{"a/../b", "b"},
		{"..", ".."},
		{"../..", "../.."},
		{"../a/..", ".."},
		{"/..", "/"},
		{"/../a", "/a"},
		{"/a/../..", "/"},
		{"/a/b/../c", "/a/c"},
		{"/a/b/", "/a/b/"},
	}

	// Process test cases.
	for _, test := range tests {
		if result := Normalize(test.path); result != test.expected {
			t.Errorf("Normalize(%q) = %q, expected %q", test.path, result, test.expected)
		}
	}
}

// TestNormalizeIdempotent verifies that Normalize is a fixed point on its own
// output.
func TestNormalizeIdempotent(t *testing.T) {
	paths := []string{
		"", ".", "/", "a", "a/b/", "./a/../b", "../../a", "/a/./b/../c//d/",
		"//", "/..", "a//..//b", "x/y/z/../../w",
	}
	for _, path := range paths {
		once := Normalize(path)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize(%q): %q renormalized to %q", path, once, twice)
		}
		if IsAbsolute(path) && !IsAbsolute(once) {
			t.Errorf("Normalize(%q) = %q lost absoluteness", path, once)
		}
	}
}

// TestResolve tests Resolve.
func TestResolve(t *testing.T) {
	// Define test cases.
	tests := []struct {
		parts    []string
		expected string
	}{
		{nil, "/"},
		{[]string{"/"}, "/"},
		{[]string{"/a"}, "/a"},
		{[]string{"/a/"}, "/a"},
		{[]string{"/a", "b"}, "/a/b"},
		{[]string{"/a", "/b"}, "/b"},
		{[]string{"/a", "b", "/c", "d"}, "/c/d"},
		{[]string{"/a", ".."}, "/"},
		{[]string{"/a/b", "../c"}, "/a/c"},
		{[]string{"a", "b"}, "a/b"},
	}

	// Process test cases.
	for _, test := range tests {
		if result := Resolve(test.parts...); result != test.expected {
			t.Errorf("Resolve(%v) = %q, expected %q", test.parts, result, test.expected)
		}
	}
}

// TestRelative tests Relative.
func TestRelative(t *testing.T) {
	// Define test cases.
	tests := []struct {
		from     string
		to       string
		expected string
	}{
		{"/", "/", ""},
		{"/a", "/a", ""},
		{"/", "/a", "a"},
		{"/a", "/", ".."},
		{"/a/b", "/a/c", "../c"},
		{"/a/b", "/a/c/d", "../c/d"},
		{"/a/b/c", "/a", "../.."},
		{"/x", "/y/z", "../y/z"},
	}

	// Process test cases.
	for _, test := range tests {
		if result := Relative(test.from, test.to); result != test.expected {
			t.Errorf("Relative(%q, %q) = %q, expected %q", test.from, test.to, result, test.expected)
		}
	}
}

// TestRelativeRoundTrip verifies that joining a relative path back onto its
// origin recovers the destination.
func TestRelativeRoundTrip(t *testing.T) {
	paths := []string{"/", "/a", "/a/b", "/a/b/c", "/x", "/x/y", "/some/deep/path"}
	for _, from := range paths {
		for _, to := range paths {
			recovered := Normalize(Join(from, Relative(from, to)))
			if recovered != to {
				t.Errorf(
					"round trip from %q to %q recovered %q",
					from, to, recovered,
				)
			}
		}
	}
}

// TestBase tests Base.
func TestBase(t *testing.T) {
	// Define test cases.
	tests := []struct {
		path     string
		expected string
	}{
		{"", ""},
		{"/", ""},
		{"a", "a"},
		{"/a", "a"},
		{"/a/b", "b"},
		{"/a/b/", "b"},
		{"a/b.txt", "b.txt"},
	}

	// Process test cases.
	for _, test := range tests {
		if result := Base(test.path); result != test.expected {
			t.Errorf("Base(%q) = %q, expected %q", test.path, result, test.expected)
		}
	}
}

// TestDir tests Dir.
func TestDir(t *testing.T) {
	// Define test cases.
	tests := []struct {
		path     string
		expected string
	}{
		{"/", "/"},
		{".", "."},
		{"a", "."},
		{"/a", "/"},
		{"/a/b", "/a"},
		{"/a/b/", "/a"},
		{"a/b", "a"},
	}

	// Process test cases.
	for _, test := range tests {
		if result := Dir(test.path); result != test.expected {
			t.Errorf("Dir(%q) = %q, expected %q", test.path, result, test.expected)
		}
	}
}

// TestExt tests Ext.
func TestExt(t *testing.T) {
	// Define test cases.
	tests := []struct {
		path     string
		expected string
	}{
		{"", ""},
		{"a", ""},
		{"a.txt", ".txt"},
		{"/x/a.txt", ".txt"},
		{"a.tar.gz", ".gz"},
		{".hidden", ""},
		{".hidden.txt", ".txt"},
		{"a.", "."},
	}

	// Process test cases.
	for _, test := range tests {
		if result := Ext(test.path); result != test.expected {
			t.Errorf("Ext(%q) = %q, expected %q", test.path, result, test.expected)
		}
		if result := Ext(test.path); !strings.HasSuffix(Base(test.path), result) {
			t.Errorf("Base(%q) does not end with Ext(%q) = %q", test.path, test.path, result)
		}
	}
}

// TestIsNormalized tests IsNormalized.
func TestIsNormalized(t *testing.T) {
	// Define test cases.
	tests := []struct {
		path     string
		expected bool
	}{
		{"", true},
		{"/", true},
		{"/a/b", true},
		{"a/b", true},
		{".", false},
		{"./a", false},
		{"a/.", false},
		{"..", false},
		{"a/../b", false},
	}

	// Process test cases.
	for _, test := range tests {
		if result := IsNormalized(test.path); result != test.expected {
			t.Errorf("IsNormalized(%q) = %v, expected %v", test.path, result, test.expected)
		}
	}
}

// TestJoinNormalizesRelative verifies that joining a normalized relative path
// onto any base yields a path free of "." and ".." components.
func TestJoinNormalizesRelative(t *testing.T) {
	bases := []string{"/", "/a", "/a/b", "x", "x/y"}
	relatives := []string{"c", "c/d", "c/d/e"}
	for _, base := range bases {
		for _, relative := range relatives {
			if result := Normalize(Join(base, relative)); !IsNormalized(result) {
				t.Errorf("Normalize(Join(%q, %q)) = %q is not normalized", base, relative, result)
			}
		}
	}
}
