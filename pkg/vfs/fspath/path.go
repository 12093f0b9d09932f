package fspath

import (
	"strings"
)

// Separator is the path separator used throughout the virtual filesystem. It
// is fixed, regardless of the host platform.
const Separator = "/"

// IsAbsolute returns true if the provided path starts at the filesystem root.
func IsAbsolute(path string) bool {
	return len(path) > 0 && path[0] == '/'
}

// Split decomposes a path into its components. The first element of the
// result is "/" for absolute paths and "." for relative paths (including the
// empty path), followed by the non-empty slash-delimited components of the
// path, in order. No folding of "." or ".." components is performed.
func Split(path string) []string {
	// Start with the appropriate root marker.
	result := []string{"."}
	if IsAbsolute(path) {
		result[0] = "/"
	}

	// Append the non-empty components.
	for _, component := range strings.Split(path, "/") {
		if component != "" {
			result = append(result, component)
		}
	}

	// Done.
	return result
}

// Join concatenates the provided path fragments with "/", collapsing runs of
// separators, and normalizes the result. Empty fragments are ignored. If
// every fragment is empty (or none are provided), Join returns ".".
func Join(parts ...string) string {
	// Filter out empty fragments. We avoid allocating unless a fragment
	// actually needs to be dropped, since that's the uncommon case.
	kept := parts
	for i, part := range parts {
		if part == "" {
			kept = make([]string, 0, len(parts)-1)
			kept = append(kept, parts[:i]...)
			for _, p := range parts[i+1:] {
				if p != "" {
					kept = append(kept, p)
				}
			}
			break
		}
	}

	// An all-empty join yields the relative self path.
	if len(kept) == 0 {
		return "."
	}

	// Concatenate and normalize. Normalization takes care of collapsing any
	// separator runs introduced by the concatenation.
	return Normalize(strings.Join(kept, "/"))
}

// Normalize folds "." and ".." components out of a path. A ".." component
// removes the preceding component if one exists and is not itself "..";
// leading ".." components are preserved for relative paths and dropped for
// absolute paths (the root is its own parent). The empty path normalizes to
// ".". A trailing separator is preserved if the input had one and the
// normalized result doesn't already end in one.
func Normalize(path string) string {
	// The empty path normalizes to the relative self path.
	if path == "" {
		return "."
	}

	// Note the path's shape before decomposition.
	absolute := IsAbsolute(path)
	trailing := path[len(path)-1] == '/'

	// Fold components.
	var components []string
	for _, component := range strings.Split(path, "/") {
		switch component {
		case "", ".":
		case "..":
			if length := len(components); length > 0 && components[length-1] != ".." {
				components = components[:length-1]
			} else if !absolute {
				components = append(components, "..")
			}
		default:
			components = append(components, component)
		}
	}

	// Reconstruct the path.
	result := strings.Join(components, "/")
	if absolute {
		result = "/" + result
	}
	if result == "" {
		result = "."
	}
	if trailing && result[len(result)-1] != '/' {
		result += "/"
	}

	// Done.
	return result
}

// Resolve joins the provided path fragments into a single normalized path,
// discarding any fragments that precede the last absolute fragment. With no
// arguments it returns the filesystem root. Unlike Join, Resolve never
// returns a path with a trailing separator (other than the root itself).
func Resolve(parts ...string) string {
	// With no fragments, resolution lands at the root.
	if len(parts) == 0 {
		return "/"
	}

	// Scan right-to-left for the last absolute fragment. Everything before it
	// is irrelevant to the resolution.
	start := 0
	for i := len(parts) - 1; i >= 0; i-- {
		if IsAbsolute(parts[i]) {
			start = i
			break
		}
	}

	// Join the remaining fragments and trim any trailing separator (unless
	// the result is the root itself).
	result := Join(parts[start:]...)
	if len(result) > 1 && result[len(result)-1] == '/' {
		result = result[:len(result)-1]
	}

	// Done.
	return result
}

// Relative computes the relative path that leads from one path to another.
// Both arguments are resolved to absolute normalized paths first, with
// relative arguments resolved against the root. Equal paths yield an empty
// result.
func Relative(from, to string) string {
	// Resolve both endpoints.
	from = Resolve("/", from)
	to = Resolve("/", to)

	// Equal paths require no traversal at all.
	if from == to {
		return ""
	}

	// Decompose both paths, dropping the root markers.
	fromComponents := Split(from)[1:]
	toComponents := Split(to)[1:]

	// Identify the longest common component prefix.
	common := 0
	for common < len(fromComponents) && common < len(toComponents) &&
		fromComponents[common] == toComponents[common] {
		common++
	}

	// Climb out of what remains of the origin and descend into what remains
	// of the destination.
	components := make([]string, 0, len(fromComponents)-common+len(toComponents)-common)
	for range fromComponents[common:] {
		components = append(components, "..")
	}
	components = append(components, toComponents[common:]...)

	// Done.
	return strings.Join(components, "/")
}

// Base returns the final component of a path, with any trailing separator
// stripped before extraction. The base of the root path is the empty string.
func Base(path string) string {
	// Strip any trailing separator.
	path = strings.TrimSuffix(path, "/")

	// Extract the final component.
	if index := strings.LastIndexByte(path, '/'); index != -1 {
		return path[index+1:]
	}
	return path
}

// Dir returns the portion of a path before its final separator. If the path
// contains no directory portion, Dir returns "/" for absolute paths and "."
// for relative paths.
func Dir(path string) string {
	// The root is its own parent.
	if path == "/" {
		return "/"
	}

	// Strip any trailing separator so that the final component is visible.
	path = strings.TrimSuffix(path, "/")

	// Extract the directory portion.
	index := strings.LastIndexByte(path, '/')
	if index == -1 {
		return "."
	} else if index == 0 {
		return "/"
	}
	return path[:index]
}

// Ext returns the extension of the final component of a path: the suffix
// starting at the last "." in the base name, ignoring a leading dot. If the
// base name contains no extension, Ext returns an empty string.
func Ext(path string) string {
	base := Base(path)
	for i := len(base) - 1; i > 0; i-- {
		if base[i] == '.' {
			return base[i:]
		}
	}
	return ""
}

// IsNormalized returns true if no component of the path is "." or "..". Note
// that this is not the same as being a fixed point of Normalize: the relative
// self path "." is a fixed point but is not considered normalized, while
// paths such as "a//b" or "" are considered normalized but are not fixed
// points.
func IsNormalized(path string) bool {
	for _, component := range strings.Split(path, "/") {
		if component == "." || component == ".." {
			return false
		}
	}
	return true
}
