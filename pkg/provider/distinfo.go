package provider

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/licensegate/licensegate/pkg/model"
)

// DistInfo reads installed-package metadata from a site-packages
// directory by walking its *.dist-info directories. Everything is
// local filesystem access; nothing is fetched.
type DistInfo struct {
	// Root is the site-packages directory to scan.
	Root string
}

var (
	licenseFilePattern = regexp.MustCompile(`^(?i:licen[cs]e.*|copying.*)$`)
	noticeFilePattern  = regexp.MustCompile(`^(?i:notice.*)$`)
	requirementName    = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*`)
)

// Packages scans Root once and returns the snapshot. Directories
// without a readable METADATA file are skipped; a missing root is an
// error because it almost always means a mistyped path.
func (d *DistInfo) Packages(ctx context.Context) ([]model.RawPackageRecord, error) {
	entries, err := os.ReadDir(d.Root)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", d.Root, err)
	}

	var dirs []string
	for _, e := range entries {
		if e.IsDir() && strings.HasSuffix(e.Name(), ".dist-info") {
			dirs = append(dirs, e.Name())
		}
	}
	sort.Strings(dirs)

	records := make([]model.RawPackageRecord, 0, len(dirs))
	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := d.readDistInfo(filepath.Join(d.Root, dir))
		if err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func (d *DistInfo) readDistInfo(dir string) (model.RawPackageRecord, error) {
	f, err := os.Open(filepath.Join(dir, "METADATA"))
	if err != nil {
		return model.RawPackageRecord{}, err
	}
	defer f.Close()

	headers, err := parseMetadataHeaders(bufio.NewReader(f))
	if err != nil {
		return model.RawPackageRecord{}, err
	}

	rec := model.RawPackageRecord{
		Name:         headers.first("Name"),
		Version:      headers.first("Version"),
		LicenseField: headers.firstOf("License-Expression", "License"),
		Classifiers:  headers.all("Classifier"),
		Author:       headers.firstOf("Author", "Author-email"),
		Maintainer:   headers.firstOf("Maintainer", "Maintainer-email"),
		Summary:      headers.first("Summary"),
		HomePage:     headers.first("Home-page"),
		ProjectURLs:  headers.all("Project-URL"),
	}
	for _, req := range headers.all("Requires-Dist") {
		if name := requirementName.FindString(strings.TrimSpace(req)); name != "" {
			rec.Requires = append(rec.Requires, name)
		}
	}

	rec.LicenseFilePath, rec.LicenseFileText = findIncludedFile(dir, licenseFilePattern)
	rec.NoticeFilePath, rec.NoticeText = findIncludedFile(dir, noticeFilePattern)
	return rec, nil
}

// metadataHeaders holds the RFC 822-style header block of a METADATA
// file. Keys are case-insensitive; repeated keys keep every value.
type metadataHeaders map[string][]string

func (h metadataHeaders) first(key string) string {
	if vals := h[strings.ToLower(key)]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}

func (h metadataHeaders) firstOf(keys ...string) string {
	for _, key := range keys {
		if v := h.first(key); v != "" {
			return v
		}
	}
	return ""
}

func (h metadataHeaders) all(key string) []string {
	return h[strings.ToLower(key)]
}

// parseMetadataHeaders reads headers up to the first blank line; the
// body after it (the long description) is irrelevant to the audit.
// Continuation lines (leading whitespace) extend the previous value.
func parseMetadataHeaders(r *bufio.Reader) (metadataHeaders, error) {
	headers := make(metadataHeaders)
	var lastKey string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			break
		}
		if line[0] == ' ' || line[0] == '\t' {
			if lastKey != "" {
				vals := headers[lastKey]
				vals[len(vals)-1] += "\n" + strings.TrimSpace(line)
			}
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		lastKey = strings.ToLower(strings.TrimSpace(key))
		headers[lastKey] = append(headers[lastKey], strings.TrimSpace(value))
	}
	return headers, scanner.Err()
}

// findIncludedFile locates the first bundled file matching the pattern
// inside the dist-info directory (including the licenses/ subdirectory
// newer installers use) and returns its path and contents.
func findIncludedFile(dir string, pattern *regexp.Regexp) (string, string) {
	var path string
	_ = filepath.WalkDir(dir, func(p string, entry fs.DirEntry, err error) error {
		if err != nil || entry.IsDir() || path != "" {
			return nil
		}
		if pattern.MatchString(entry.Name()) {
			path = p
		}
		return nil
	})
	if path == "" {
		return "", ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return path, ""
	}
	return path, string(data)
}
