package storage

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	// DefaultChunkSize is the write granularity for page images
	DefaultChunkSize = 1024

	partSuffix = ".part"
)

// Manager handles page file naming, existence checks and writes
type Manager struct {
	outputDir string
	debugDir  string
	extension string
	chunkSize int
}

// NewManager creates a new storage manager, creating outputDir if needed
func NewManager(outputDir, extension, debugDir string, chunkSize int) (*Manager, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if debugDir == "" {
		debugDir = "."
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	manager := &Manager{
		outputDir: outputDir,
		debugDir:  debugDir,
		extension: strings.TrimPrefix(extension, "."),
		chunkSize: chunkSize,
	}

	if err := manager.removeStaleParts(); err != nil {
		return nil, fmt.Errorf("failed to scan output directory: %w", err)
	}

	return manager, nil
}

// removeStaleParts deletes partial files left by an interrupted run
func (m *Manager) removeStaleParts() error {
	entries, err := os.ReadDir(m.outputDir)
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), partSuffix) {
			os.Remove(filepath.Join(m.outputDir, entry.Name()))
		}
	}
	return nil
}

// FileName returns the zero-padded file name for a page, e.g. 007.png
func (m *Manager) FileName(page int) string {
	return fmt.Sprintf("%03d.%s", page, m.extension)
}

// PagePath returns the full output path for a page
func (m *Manager) PagePath(page int) string {
	return filepath.Join(m.outputDir, m.FileName(page))
}

// IsDownloaded reports whether the page file is already on disk. Only
// existence counts: an empty or damaged file is still skipped.
func (m *Manager) IsDownloaded(page int) bool {
	_, err := os.Stat(m.PagePath(page))
	return err == nil
}

// SavePage streams r to the page file in fixed-size chunks. Data goes to a
// temporary file that is renamed into place only after a complete copy, so
// an interrupted download never leaves a file that would be skipped later.
func (m *Manager) SavePage(r io.Reader, page int) (int64, error) {
	filename := m.PagePath(page)
	tempFile := filename + partSuffix

	out, err := os.Create(tempFile)
	if err != nil {
		return 0, fmt.Errorf("failed to create temporary file: %w", err)
	}

	w := bufio.NewWriterSize(out, m.chunkSize)
	written, err := io.CopyBuffer(w, struct{ io.Reader }{r}, make([]byte, m.chunkSize))
	if err == nil {
		err = w.Flush()
	}
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return written, fmt.Errorf("failed to save page data: %w", err)
	}

	if closeErr != nil {
		os.Remove(tempFile)
		return written, fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile)
		return written, fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return written, nil
}

// DebugPaths returns the screenshot and markup paths for a page
func (m *Manager) DebugPaths(page int) (png, html string) {
	png = filepath.Join(m.debugDir, fmt.Sprintf("debug_page_%d.png", page))
	html = filepath.Join(m.debugDir, fmt.Sprintf("debug_page_%d.html", page))
	return png, html
}

// SaveDebugArtifacts writes the screenshot and document captured for a page
// whose image path could not be found. Both files are attempted even when
// one of them fails.
func (m *Manager) SaveDebugArtifacts(page int, screenshot []byte, markup string) error {
	if err := os.MkdirAll(m.debugDir, 0755); err != nil {
		return fmt.Errorf("failed to create debug directory: %w", err)
	}

	pngPath, htmlPath := m.DebugPaths(page)

	var errs []string
	if err := os.WriteFile(pngPath, screenshot, 0644); err != nil {
		errs = append(errs, err.Error())
	}
	if err := os.WriteFile(htmlPath, []byte(markup), 0644); err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to write debug artifacts: %s", strings.Join(errs, "; "))
	}
	return nil
}

// GetOutputDir returns the output directory path
func (m *Manager) GetOutputDir() string {
	return m.outputDir
}
