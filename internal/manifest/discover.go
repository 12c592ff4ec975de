package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ProcessedDir is the subdirectory successfully imported pairs are moved to.
const ProcessedDir = "processed"

// Pair is a manifest together with the import file it describes.
type Pair struct {
	Name         string // shared base name, e.g. "vanguard-2024-03"
	ManifestPath string
	ImportPath   string
	Manifest     *Manifest
}

// Warning describes a descriptor that was skipped during discovery.
type Warning struct {
	ManifestPath string
	Reason       string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.ManifestPath, w.Reason)
}

// Discover scans dir for *.toml descriptors and pairs each with the sibling
// file of the same base name and the platform's extension (compared
// case-insensitively). Descriptors without an import file are returned as
// warnings. Pairs come back in name order.
func Discover(dir string) ([]Pair, []Warning, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("reading imports dir: %w", err)
	}

	files := fileIndex(entries)

	var pairs []Pair
	var warnings []Warning
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), Extension) {
			continue
		}

		manifestPath := filepath.Join(dir, e.Name())
		m, err := Load(manifestPath)
		if err != nil {
			return nil, nil, err
		}

		p, reason, ok := pairFor(manifestPath, m, files)
		if !ok {
			warnings = append(warnings, Warning{ManifestPath: manifestPath, Reason: reason})
			continue
		}
		pairs = append(pairs, p)
	}
	return pairs, warnings, nil
}

// Open loads a single manifest and locates its import file.
func Open(manifestPath string) (Pair, error) {
	m, err := Load(manifestPath)
	if err != nil {
		return Pair{}, err
	}
	entries, err := os.ReadDir(filepath.Dir(manifestPath))
	if err != nil {
		return Pair{}, fmt.Errorf("reading manifest dir: %w", err)
	}
	p, reason, ok := pairFor(manifestPath, m, fileIndex(entries))
	if !ok {
		return Pair{}, fmt.Errorf("%s: %s", manifestPath, reason)
	}
	return p, nil
}

// fileIndex maps lower-cased file names to their actual names.
func fileIndex(entries []os.DirEntry) map[string]string {
	files := make(map[string]string, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			files[strings.ToLower(e.Name())] = e.Name()
		}
	}
	return files
}

func pairFor(manifestPath string, m *Manifest, files map[string]string) (Pair, string, bool) {
	name := filepath.Base(manifestPath)
	base := strings.TrimSuffix(name, filepath.Ext(name))
	want := base + "." + m.Platform.FileExtension()
	actual, ok := files[strings.ToLower(want)]
	if !ok {
		return Pair{}, fmt.Sprintf("%s does not exist, is the platform correct?", want), false
	}
	return Pair{
		Name:         base,
		ManifestPath: manifestPath,
		ImportPath:   filepath.Join(filepath.Dir(manifestPath), actual),
		Manifest:     m,
	}, "", true
}

// MarkProcessed moves both files of a pair into <dir>/processed/.
func MarkProcessed(dir string, p Pair) error {
	dstDir := filepath.Join(dir, ProcessedDir)
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	for _, src := range []string{p.ImportPath, p.ManifestPath} {
		dst := filepath.Join(dstDir, filepath.Base(src))
		if err := os.Rename(src, dst); err != nil {
			return fmt.Errorf("moving %s to processed: %w", filepath.Base(src), err)
		}
	}
	return nil
}
