package testmap

import (
	"bufio"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/memograph/memograph-go/internal/models"
)

// Confidence assigned per match strategy. Symbol-level import matches are
// the most precise, a sibling naming match slightly less, a relocated
// naming match least.
const (
	confSiblingNaming   = 0.9
	confRelocatedNaming = 0.8
	confSymbolImport    = 0.95
	confDefaultImport   = 0.85
)

var (
	namedImportRe   = regexp.MustCompile(`import\s+(?:type\s+)?\{([^}]+)\}\s*from\s*['"]([^'"]+)['"]`)
	defaultImportRe = regexp.MustCompile(`import\s+([A-Za-z_$][\w$]*)\s+from\s*['"]([^'"]+)['"]`)
)

// importProbes is the resolution order for an extensionless import path
var importProbes = []string{"", ".ts", ".tsx", ".js", ".jsx", "/index.ts", "/index.tsx", "/index.js"}

// MatchByNaming derives the source file a test exercises from its name.
// foo.test.ts maps to a sibling foo.ts when one exists; otherwise the
// usual test-directory layouts are probed. Returns nil when nothing on
// disk matches.
func (m *Mapper) MatchByNaming(testFile string) *models.TestMapping {
	candidate := ""
	for _, ext := range sourceExtensions {
		for _, marker := range testSuffixMarkers {
			if strings.HasSuffix(testFile, marker+ext) {
				candidate = strings.TrimSuffix(testFile, marker+ext) + ext
				break
			}
		}
		if candidate != "" {
			break
		}
	}
	if candidate == "" {
		return nil
	}

	if fileExists(candidate) {
		return &models.TestMapping{
			TestFile:   testFile,
			SourceFile: candidate,
			MatchType:  models.MatchNaming,
			Confidence: confSiblingNaming,
		}
	}

	// The test may live in a parallel tests/ tree
	slashed := filepath.ToSlash(candidate)
	substitutions := []string{
		strings.Replace(slashed, "__tests__/", "src/", 1),
		strings.Replace(slashed, "tests/", "src/", 1),
		strings.Replace(slashed, "__tests__/", "", 1),
		strings.Replace(slashed, "tests/", "", 1),
		strings.Replace(slashed, "test/", "", 1),
	}
	for _, sub := range substitutions {
		if sub == slashed {
			continue
		}
		resolved := filepath.FromSlash(sub)
		if fileExists(resolved) {
			return &models.TestMapping{
				TestFile:   testFile,
				SourceFile: resolved,
				MatchType:  models.MatchNaming,
				Confidence: confRelocatedNaming,
			}
		}
	}

	return nil
}

// MatchByImports scans a test file's content for relative imports and maps
// each one to a concrete source file. Named imports yield one symbol-level
// mapping per imported identifier; default imports yield one file-level
// mapping. Each resolved source file is processed once per scan.
func (m *Mapper) MatchByImports(testFile, content string) []models.TestMapping {
	baseDir := filepath.Dir(testFile)
	seen := make(map[string]bool)
	var mappings []models.TestMapping

	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()

		if match := namedImportRe.FindStringSubmatch(line); match != nil {
			resolved := m.resolveImport(baseDir, match[2])
			if resolved == "" || seen[resolved] {
				continue
			}
			seen[resolved] = true
			for _, ident := range splitNamedImports(match[1]) {
				symbol := ident
				mappings = append(mappings, models.TestMapping{
					TestFile:     testFile,
					SourceFile:   resolved,
					SourceSymbol: &symbol,
					MatchType:    models.MatchSymbol,
					Confidence:   confSymbolImport,
				})
			}
			continue
		}

		if match := defaultImportRe.FindStringSubmatch(line); match != nil {
			resolved := m.resolveImport(baseDir, match[2])
			if resolved == "" || seen[resolved] {
				continue
			}
			seen[resolved] = true
			mappings = append(mappings, models.TestMapping{
				TestFile:   testFile,
				SourceFile: resolved,
				MatchType:  models.MatchImport,
				Confidence: confDefaultImport,
			})
		}
	}

	return mappings
}

// resolveImport turns a relative import specifier into an existing file
// path, or "" when it cannot be resolved or resolves to another test file.
func (m *Mapper) resolveImport(baseDir, importPath string) string {
	if !strings.HasPrefix(importPath, "./") && !strings.HasPrefix(importPath, "../") {
		return ""
	}

	base := filepath.Join(baseDir, filepath.FromSlash(importPath))
	for _, probe := range importProbes {
		candidate := base + filepath.FromSlash(probe)
		if !fileExists(candidate) {
			continue
		}
		if IsTestFile(candidate) {
			return ""
		}
		return candidate
	}
	return ""
}

// splitNamedImports extracts identifiers from the braces of a destructured
// import, resolving "orig as alias" back to the original name.
func splitNamedImports(inner string) []string {
	parts := strings.Split(inner, ",")
	idents := make([]string, 0, len(parts))
	for _, part := range parts {
		ident := strings.TrimSpace(part)
		if ident == "" {
			continue
		}
		ident = strings.TrimPrefix(ident, "type ")
		if idx := strings.Index(ident, " as "); idx >= 0 {
			ident = strings.TrimSpace(ident[:idx])
		}
		if ident != "" {
			idents = append(idents, ident)
		}
	}
	return idents
}
