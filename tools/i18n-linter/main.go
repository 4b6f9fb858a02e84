// Copyright (c) 2026 Gitident Team
// Gitident - Git identity manager
// This source code is licensed under the MIT license found in the LICENSE file.

// i18n-linter checks translation keys: every i18n.T("key") used in the Go
// sources must exist in the primary locale, and every other locale must carry
// all keys of the primary one. Keys defined but never used are reported as
// warnings.
package main

import (
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var usedKeyRe = regexp.MustCompile(`i18n\.T\("([^"]+)"`)

type report struct {
	Used      int
	Undefined []string            // used in code, absent from the primary locale
	Missing   map[string][]string // locale file -> keys absent compared to primary
	Orphaned  []string            // in the primary locale, never used
}

func (r report) failed() bool {
	if len(r.Undefined) > 0 {
		return true
	}
	for _, keys := range r.Missing {
		if len(keys) > 0 {
			return true
		}
	}
	return false
}

func main() {
	root := flag.String("root", ".", "module root to scan")
	locales := flag.String("locales", "internal/i18n/locales", "locale directory")
	primary := flag.String("primary", "en.yaml", "primary locale file name")
	flag.Parse()

	r, err := lint(*root, filepath.Join(*root, *locales), *primary)
	if err != nil {
		fmt.Fprintf(os.Stderr, "i18n-linter: %v\n", err)
		os.Exit(2)
	}

	fmt.Printf("%d keys used in source code\n", r.Used)
	for _, k := range r.Undefined {
		fmt.Printf("  undefined: %s\n", k)
	}
	files := make([]string, 0, len(r.Missing))
	for f := range r.Missing {
		files = append(files, f)
	}
	sort.Strings(files)
	for _, f := range files {
		for _, k := range r.Missing[f] {
			fmt.Printf("  missing in %s: %s\n", f, k)
		}
	}
	for _, k := range r.Orphaned {
		fmt.Printf("  orphaned: %s\n", k)
	}
	if r.failed() {
		os.Exit(1)
	}
}

func lint(root, localesDir, primary string) (report, error) {
	r := report{Missing: map[string][]string{}}

	used, err := findUsedKeys(root)
	if err != nil {
		return r, fmt.Errorf("scan sources: %w", err)
	}
	r.Used = len(used)

	primaryKeys, err := loadKeysFromLocale(filepath.Join(localesDir, primary))
	if err != nil {
		return r, fmt.Errorf("load primary locale: %w", err)
	}
	r.Undefined = difference(used, primaryKeys)
	r.Orphaned = difference(primaryKeys, used)

	files, err := filepath.Glob(filepath.Join(localesDir, "*.yaml"))
	if err != nil {
		return r, err
	}
	for _, f := range files {
		if filepath.Base(f) == primary {
			continue
		}
		keys, err := loadKeysFromLocale(f)
		if err != nil {
			return r, fmt.Errorf("load %s: %w", f, err)
		}
		r.Missing[filepath.Base(f)] = difference(primaryKeys, keys)
	}
	return r, nil
}

// difference returns the sorted keys of a that are not in b.
func difference(a, b map[string]struct{}) []string {
	var out []string
	for k := range a {
		if _, ok := b[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// findUsedKeys collects literal i18n.T keys from non-test Go files. Hidden
// and underscore-prefixed directories and tools/ are skipped.
func findUsedKeys(root string) (map[string]struct{}, error) {
	keys := make(map[string]struct{})
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "tools") {
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
		for _, m := range usedKeyRe.FindAllStringSubmatch(string(content), -1) {
			keys[m[1]] = struct{}{}
		}
		return nil
	})
	return keys, err
}

// loadKeysFromLocale reads a YAML file and returns a flat map of its keys.
func loadKeysFromLocale(path string) (map[string]struct{}, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var data map[string]interface{}
	if err := yaml.Unmarshal(content, &data); err != nil {
		return nil, err
	}
	keys := make(map[string]struct{})
	flattenYAML("", data, keys)
	return keys, nil
}

// flattenYAML turns nested maps into dot-separated keys.
func flattenYAML(prefix string, node interface{}, keys map[string]struct{}) {
	switch v := node.(type) {
	case map[string]interface{}:
		for k, val := range v {
			next := k
			if prefix != "" {
				next = prefix + "." + k
			}
			flattenYAML(next, val, keys)
		}
	default:
		if prefix != "" {
			keys[prefix] = struct{}{}
		}
	}
}
