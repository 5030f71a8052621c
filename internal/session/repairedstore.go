package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// shortID safely truncates an ID for logging (handles short IDs gracefully)
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// PersistentRepairedStore keeps repaired model exports on disk keyed by the
// uploaded file ID. Reloading a file from "Recent Files" serves the stored
// repaired document instead of running the repair again.
type PersistentRepairedStore struct {
	repairedDir string
	mu          sync.RWMutex
	// cache tracks which file IDs have a repaired export (fileID -> path)
	cache map[string]string
}

// NewPersistentRepairedStore creates a new persistent repaired store.
// Uses environment variable REPAIRED_DIR for storage location, defaults to ./data/repaired
func NewPersistentRepairedStore() *PersistentRepairedStore {
	repairedDir := os.Getenv("REPAIRED_DIR")
	if repairedDir == "" {
		repairedDir = "./data/repaired"
	}
	return NewPersistentRepairedStoreWithDir(repairedDir)
}

// NewPersistentRepairedStoreWithDir creates a persistent repaired store with a specific directory.
func NewPersistentRepairedStoreWithDir(repairedDir string) *PersistentRepairedStore {
	os.MkdirAll(repairedDir, 0755)

	store := &PersistentRepairedStore{
		repairedDir: repairedDir,
		cache:       make(map[string]string),
	}

	// Scan existing repaired exports on startup
	store.scanExisting()

	return store
}

func (prs *PersistentRepairedStore) scanExisting() {
	entries, err := os.ReadDir(prs.repairedDir)
	if err != nil {
		fmt.Printf("[RepairedStore] Warning: failed to scan repaired directory: %v\n", err)
		return
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		// Look for files matching pattern: file_<id>.json
		name := entry.Name()
		if len(name) > 10 && name[:5] == "file_" && filepath.Ext(name) == ".json" {
			fileID := name[5 : len(name)-5]
			prs.cache[fileID] = filepath.Join(prs.repairedDir, name)
			fmt.Printf("[RepairedStore] Found existing repaired export for file %s\n", shortID(fileID))
		}
	}

	fmt.Printf("[RepairedStore] Scanned %d existing repaired exports\n", len(prs.cache))
}

// PathFor returns the path where a repaired export is stored for a file ID.
func (prs *PersistentRepairedStore) PathFor(fileID string) string {
	return filepath.Join(prs.repairedDir, fmt.Sprintf("file_%s.json", fileID))
}

// IsRepaired checks if a file already has a stored repaired export.
func (prs *PersistentRepairedStore) IsRepaired(fileID string) bool {
	prs.mu.RLock()
	_, ok := prs.cache[fileID]
	prs.mu.RUnlock()

	if ok {
		return true
	}

	// Double-check on disk (in case it was created externally)
	path := prs.PathFor(fileID)
	if _, err := os.Stat(path); err == nil {
		prs.mu.Lock()
		prs.cache[fileID] = path
		prs.mu.Unlock()
		return true
	}

	return false
}

// Save writes a repaired export for a file and marks it reusable.
func (prs *PersistentRepairedStore) Save(fileID string, data []byte) error {
	path := prs.PathFor(fileID)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing repaired export: %w", err)
	}

	prs.mu.Lock()
	prs.cache[fileID] = path
	prs.mu.Unlock()

	fmt.Printf("[RepairedStore] Saved repaired export for file %s (%d bytes)\n", shortID(fileID), len(data))
	return nil
}

// Read returns the stored repaired export for a file.
// Returns nil with no error if the file has not been repaired.
func (prs *PersistentRepairedStore) Read(fileID string) ([]byte, error) {
	if !prs.IsRepaired(fileID) {
		return nil, nil
	}

	prs.mu.RLock()
	path := prs.cache[fileID]
	prs.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			prs.mu.Lock()
			delete(prs.cache, fileID)
			prs.mu.Unlock()
			return nil, nil
		}
		return nil, fmt.Errorf("reading repaired export: %w", err)
	}
	return data, nil
}

// Delete removes the repaired export for a file (call when original file is deleted).
func (prs *PersistentRepairedStore) Delete(fileID string) error {
	prs.mu.Lock()
	delete(prs.cache, fileID)
	prs.mu.Unlock()

	path := prs.PathFor(fileID)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete repaired export: %w", err)
	}

	fmt.Printf("[RepairedStore] Deleted repaired export for file %s\n", shortID(fileID))
	return nil
}

// CleanupOrphaned removes repaired exports that don't have corresponding raw files.
// rawFileIDs should be the list of file IDs that exist in the file storage.
func (prs *PersistentRepairedStore) CleanupOrphaned(rawFileIDs []string) int {
	validIDs := make(map[string]bool)
	for _, id := range rawFileIDs {
		validIDs[id] = true
	}

	prs.mu.Lock()
	defer prs.mu.Unlock()

	removed := 0
	for fileID := range prs.cache {
		if !validIDs[fileID] {
			os.Remove(prs.cache[fileID])
			delete(prs.cache, fileID)
			removed++
			fmt.Printf("[RepairedStore] Cleaned up orphaned repaired export for file %s\n", shortID(fileID))
		}
	}

	return removed
}
