package blast

import (
	"path/filepath"
	"strings"
)

// Pattern order is the priority order: the first hit decides, nothing is
// weighed beyond that.

var testPathPatterns = []string{
	".test.",
	".spec.",
	"__tests__/",
	"/test/",
	"/tests/",
	"_test.",
}

var testPathPrefixes = []string{
	"test/",
	"tests/",
}

var routePathPatterns = []string{
	"/routes/",
	"/pages/",
	"/api/",
	"/controllers/",
	".route.",
	".controller.",
}

var routePathPrefixes = []string{
	"routes/",
	"pages/",
	"api/",
	"controllers/",
}

// Next.js app router entry files
var routeBasenames = []string{
	"route.ts",
	"route.js",
	"page.tsx",
	"page.jsx",
}

// IsTestFile classifies a path as a test file by suffix and directory
// conventions.
func IsTestFile(path string) bool {
	p := filepath.ToSlash(path)
	for _, pattern := range testPathPatterns {
		if strings.Contains(p, pattern) {
			return true
		}
	}
	for _, prefix := range testPathPrefixes {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

// IsRouteFile classifies a path as a route/page/API entry point for the
// common web-framework layouts.
func IsRouteFile(path string) bool {
	p := filepath.ToSlash(path)
	for _, pattern := range routePathPatterns {
		if strings.Contains(p, pattern) {
			return true
		}
	}
	for _, prefix := range routePathPrefixes {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	base := filepath.Base(p)
	for _, name := range routeBasenames {
		if base == name {
			return true
		}
	}
	return false
}
