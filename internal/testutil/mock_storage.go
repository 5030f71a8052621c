// mock_storage.go - Mock storage implementation for testing
package testutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/framemend/backend/internal/models"
	"github.com/framemend/backend/internal/storage"
)

// MockStorage implements storage.Store for testing
type MockStorage struct {
	files    map[string]*models.FileInfo
	fileData map[string][]byte
	mu       sync.RWMutex
}

// NewMockStorage creates a new mock storage with default implementations
func NewMockStorage() *MockStorage {
	return &MockStorage{
		files:    make(map[string]*models.FileInfo),
		fileData: make(map[string][]byte),
	}
}

func (m *MockStorage) Save(name string, r io.Reader) (*models.FileInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return m.SaveBytes(name, data)
}

func (m *MockStorage) SaveBytes(name string, data []byte) (*models.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := generateTestID()
	file := &models.FileInfo{
		ID:         id,
		Name:       name,
		Size:       int64(len(data)),
		UploadedAt: time.Now(),
		Status:     "uploaded",
	}

	m.files[id] = file
	m.fileData[id] = data
	return file, nil
}

func (m *MockStorage) Get(id string) (*models.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	file, ok := m.files[id]
	if !ok {
		return nil, errors.New("file not found")
	}
	return file, nil
}

func (m *MockStorage) List(limit int) ([]*models.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var files []*models.FileInfo
	for _, file := range m.files {
		files = append(files, file)
		if limit > 0 && len(files) >= limit {
			break
		}
	}
	return files, nil
}

func (m *MockStorage) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.files[id]; !exists {
		return errors.New("file not found")
	}

	delete(m.files, id)
	delete(m.fileData, id)
	return nil
}

func (m *MockStorage) Rename(id string, newName string) (*models.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	file, ok := m.files[id]
	if !ok {
		return nil, errors.New("file not found")
	}

	file.Name = newName
	return file, nil
}

func (m *MockStorage) SetStatus(id string, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	file, ok := m.files[id]
	if !ok {
		return errors.New("file not found")
	}

	file.Status = status
	return nil
}

func (m *MockStorage) GetFilePath(id string) (string, error) {
	return "/mock/path/" + id, nil
}

// Ensure MockStorage implements storage.Store
var _ storage.Store = (*MockStorage)(nil)

// Test Helper Methods

// AddFile adds a file directly to the mock
func (m *MockStorage) AddFile(id string, name string, data []byte) *models.FileInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	file := &models.FileInfo{
		ID:         id,
		Name:       name,
		Size:       int64(len(data)),
		UploadedAt: time.Now(),
		Status:     "uploaded",
	}
	m.files[id] = file
	m.fileData[id] = data
	return file
}

// GetFileData returns the file content
func (m *MockStorage) GetFileData(id string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.fileData[id]
	if !ok {
		return nil, errors.New("file not found")
	}
	return data, nil
}

// GetFileCount returns the number of stored files
func (m *MockStorage) GetFileCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}

// Clear removes all files
func (m *MockStorage) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files = make(map[string]*models.FileInfo)
	m.fileData = make(map[string][]byte)
}

// generateTestID generates a simple test ID
var testIDCounter int
var testIDMutex sync.Mutex

func generateTestID() string {
	testIDMutex.Lock()
	defer testIDMutex.Unlock()
	testIDCounter++
	return fmt.Sprintf("test-id-%d", testIDCounter)
}

// MockStorageWithTempDir is a mock storage that actually writes files to disk.
// This is useful for tests that need to read files from disk (e.g., model parsing).
type MockStorageWithTempDir struct {
	MockStorage
	tempDir string
}

// NewMockStorageWithTempDir creates a new mock storage that writes files to the given temp directory
func NewMockStorageWithTempDir(tempDir string) *MockStorageWithTempDir {
	return &MockStorageWithTempDir{
		MockStorage: MockStorage{
			files:    make(map[string]*models.FileInfo),
			fileData: make(map[string][]byte),
		},
		tempDir: tempDir,
	}
}

// AddFile writes the file to disk and adds it to the mock
func (m *MockStorageWithTempDir) AddFile(id string, name string, data []byte) *models.FileInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	filePath := filepath.Join(m.tempDir, id+"_"+name)
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		panic(fmt.Sprintf("failed to write test file: %v", err))
	}

	file := &models.FileInfo{
		ID:         id,
		Name:       name,
		Size:       int64(len(data)),
		UploadedAt: time.Now(),
		Status:     "uploaded",
	}
	m.files[id] = file
	m.fileData[id] = data
	return file
}

// SaveBytes writes the file to disk and records metadata
func (m *MockStorageWithTempDir) SaveBytes(name string, data []byte) (*models.FileInfo, error) {
	id := generateTestID()
	return m.AddFile(id, name, data), nil
}

// Save reads everything and delegates to SaveBytes
func (m *MockStorageWithTempDir) Save(name string, r io.Reader) (*models.FileInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return m.SaveBytes(name, data)
}

// GetFilePath returns the actual file path on disk
func (m *MockStorageWithTempDir) GetFilePath(id string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	file, ok := m.files[id]
	if !ok {
		return "", errors.New("file not found")
	}

	return filepath.Join(m.tempDir, id+"_"+file.Name), nil
}
