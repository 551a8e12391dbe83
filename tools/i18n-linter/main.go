// Copyright (c) 2026 Lorekeeper Team
// Lorekeeper - community record privacy vault
// This source code is licensed under the MIT license found in the LICENSE file.

// i18n-linter cross-checks the locale catalogs against the Go source tree.
// One pass over the source collects every translation key in use plus any
// string literal that looks like user-facing text bypassing i18n.T. The
// collected keys are compared against the primary catalog and the primary
// catalog against every secondary one. Only a secondary locale missing keys
// fails the run; orphaned keys and suspect literals are warnings.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	localesDir    = "internal/i18n/locales"
	primaryLocale = "en.yaml"
	projectRoot   = "."
)

var (
	// reTCall captures the literal id of an i18n.T call.
	reTCall = regexp.MustCompile(`i18n\.T\("([^"]+)"`)
	// reBareKey captures key-shaped literals outside i18n.T calls, such as
	// the header id slices the terminal views pass around.
	reBareKey = regexp.MustCompile(`"([a-z_]+\.[a-z\._]+)"`)
	// reCall captures a function name and its first string argument.
	reCall     = regexp.MustCompile(`(?:[a-zA-Z0-9_]+\.)?([a-zA-Z0-9_]+)\("([^"]+)"`)
	reKeyShape = regexp.MustCompile(`^[a-z_]+\.[a-z\._]+$`)
	// reActionConst matches audit action names such as ADD_RECORD.
	reActionConst = regexp.MustCompile(`^[A-Z_]+$`)
	reFormatOnly  = regexp.MustCompile(`^[\s%.,:;()#\d\w-]*%[\s\w-]*$`)
)

// rawOutputFuncs take preformatted or developer-facing text; their string
// arguments are not messages to localize.
var rawOutputFuncs = map[string]struct{}{
	"Print":       {},
	"Println":     {},
	"Printf":      {},
	"Fatal":       {},
	"Fatalf":      {},
	"WriteString": {},
}

var sqlVerbs = []string{"SELECT ", "INSERT ", "UPDATE ", "DELETE ", "TRUNCATE ", "PRAGMA ", "CREATE ", "ALTER ", "DROP "}

type location struct {
	file string
	line int
}

// sourceScan is everything a single walk over the tree collects.
type sourceScan struct {
	// called holds ids passed to i18n.T. These must exist in the primary
	// catalog or the UI renders the raw id.
	called map[string]struct{}
	// referenced is called plus bare key-shaped literals. A catalog key
	// absent from this set is orphaned.
	referenced map[string]struct{}
	// suspects maps a literal that looks translatable to its first
	// occurrence.
	suspects map[string]location
}

func main() {
	fmt.Println("i18n lint: checking locale catalogs against source usage")

	scan, err := scanSource(projectRoot)
	if err != nil {
		fmt.Fprintf(os.Stderr, "source scan failed: %v\n", err)
		os.Exit(1)
	}
	primary, err := localeKeys(filepath.Join(localesDir, primaryLocale))
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot load %s: %v\n", primaryLocale, err)
		os.Exit(1)
	}
	fmt.Printf("source references %d keys, %s defines %d\n\n", len(scan.referenced), primaryLocale, len(primary))

	if undefined := sortedDiff(scan.called, primary); len(undefined) > 0 {
		fmt.Printf("ids passed to i18n.T but missing from %s (rendered raw at runtime):\n", primaryLocale)
		for _, k := range undefined {
			fmt.Printf("  - %s\n", k)
		}
		fmt.Println()
	}

	if orphans := sortedDiff(primary, scan.referenced); len(orphans) > 0 {
		fmt.Printf("keys defined in %s but never referenced:\n", primaryLocale)
		for _, k := range orphans {
			fmt.Printf("  - %s\n", k)
		}
		fmt.Println()
	}

	locales, err := filepath.Glob(filepath.Join(localesDir, "*.yaml"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot list locale files: %v\n", err)
		os.Exit(1)
	}
	failures := 0
	for _, file := range locales {
		if filepath.Base(file) == primaryLocale {
			continue
		}
		keys, err := localeKeys(file)
		if err != nil {
			fmt.Printf("cannot load %s: %v\n", file, err)
			failures++
			continue
		}
		missing := sortedDiff(primary, keys)
		if len(missing) == 0 {
			fmt.Printf("%s: complete\n", file)
			continue
		}
		failures += len(missing)
		fmt.Printf("%s is missing %d keys:\n", file, len(missing))
		for _, k := range missing {
			fmt.Printf("  - %s\n", k)
		}
	}
	fmt.Println()

	var lits []string
	for lit := range scan.suspects {
		if _, defined := primary[lit]; !defined {
			lits = append(lits, lit)
		}
	}
	sort.Strings(lits)
	for _, lit := range lits {
		loc := scan.suspects[lit]
		fmt.Printf("  hardcoded? %q (%s:%d)\n", lit, loc.file, loc.line)
	}
	if len(lits) > 0 {
		fmt.Printf("%d string literals may bypass translation (warning only)\n\n", len(lits))
	}

	if failures > 0 {
		fmt.Printf("lint failed: %d missing translations\n", failures)
		os.Exit(1)
	}
	fmt.Println("locale catalogs are consistent")
}

// skipDir reports whether a directory should be excluded from source scans.
// Directories the Go toolchain ignores (leading "_" or ".") are skipped, as
// is this tools tree itself.
func skipDir(name string) bool {
	return name == "tools" || strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")
}

// scanSource walks root once and regex-scans every non-test .go file.
func scanSource(root string) (*sourceScan, error) {
	scan := &sourceScan{
		called:     make(map[string]struct{}),
		referenced: make(map[string]struct{}),
		suspects:   make(map[string]location),
	}
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != root && skipDir(info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		scan.scanFile(path, string(content))
		return nil
	})
	return scan, err
}

func (s *sourceScan) scanFile(path, content string) {
	for _, m := range reTCall.FindAllStringSubmatch(content, -1) {
		s.called[m[1]] = struct{}{}
		s.referenced[m[1]] = struct{}{}
	}
	for _, m := range reBareKey.FindAllStringSubmatch(content, -1) {
		s.referenced[m[1]] = struct{}{}
	}
	for i, line := range strings.Split(content, "\n") {
		for _, m := range reCall.FindAllStringSubmatch(line, -1) {
			fn, lit := m[1], m[2]
			if !looksTranslatable(fn, lit) {
				continue
			}
			if _, seen := s.suspects[lit]; !seen {
				s.suspects[lit] = location{file: path, line: i + 1}
			}
		}
	}
}

// looksTranslatable reports whether a call argument reads like user-facing
// text that should go through i18n.T. Code-like literals are filtered out:
// translation-key shapes, URLs and file schemes, SQL statements, reference
// time layouts, audit action constants and bare format strings.
func looksTranslatable(fn, lit string) bool {
	if _, raw := rawOutputFuncs[fn]; raw {
		return false
	}
	if len(lit) < 4 || reKeyShape.MatchString(lit) {
		return false
	}
	if strings.HasPrefix(lit, "file:") || strings.HasPrefix(lit, "http") || strings.HasPrefix(lit, "2006-") {
		return false
	}
	upper := strings.ToUpper(lit)
	for _, verb := range sqlVerbs {
		if strings.HasPrefix(upper, verb) {
			return false
		}
	}
	if reActionConst.MatchString(lit) {
		return false
	}
	if reFormatOnly.MatchString(lit) && !strings.Contains(lit, " ") {
		return false
	}
	return true
}

// localeKeys loads a catalog file and returns its flattened key set.
func localeKeys(path string) (map[string]struct{}, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tree map[string]any
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return nil, err
	}
	keys := make(map[string]struct{})
	flatten("", tree, keys)
	return keys, nil
}

// flatten records every leaf of a decoded YAML tree as a dot-separated key.
// Sequence elements get an index suffix so they stay distinguishable, though
// the catalogs are plain nested maps today.
func flatten(prefix string, node any, keys map[string]struct{}) {
	switch v := node.(type) {
	case map[string]any:
		for name, child := range v {
			if prefix == "" {
				flatten(name, child, keys)
			} else {
				flatten(prefix+"."+name, child, keys)
			}
		}
	case []any:
		for i, child := range v {
			flatten(fmt.Sprintf("%s[%d]", prefix, i), child, keys)
		}
	default:
		if prefix != "" {
			keys[prefix] = struct{}{}
		}
	}
}

// sortedDiff returns the keys of a that are absent from b, sorted.
func sortedDiff(a, b map[string]struct{}) []string {
	var out []string
	for k := range a {
		if _, ok := b[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
