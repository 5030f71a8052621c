package session

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/framemend/backend/internal/models"
	"github.com/framemend/backend/internal/parser"
	"github.com/framemend/backend/internal/repair"
	"github.com/framemend/backend/internal/solver"
	"github.com/google/uuid"
)

// MaxSessions limits concurrent sessions to prevent memory exhaustion
const MaxSessions = 10

// SessionMaxAge is how long to keep completed sessions before cleanup
const SessionMaxAge = 30 * time.Minute

// SessionKeepAliveWindow is how long to keep sessions that are actively being used
const SessionKeepAliveWindow = 5 * time.Minute

// Manager handles active graph repair sessions.
type Manager struct {
	sessions map[string]*SessionState
	mu       sync.RWMutex
	registry *parser.Registry
	tempDir  string
	opts     repair.Options
}

// SessionState holds the session metadata, the repair result and the
// DuckDB-backed solver result store once outputs arrive.
type SessionState struct {
	Session      *models.RepairSession
	Result       *repair.Result
	Results      *solver.ResultStore // Populated after solver outputs are attached
	LastAccessed time.Time           // Last time the session was accessed (for keep-alive)
}

// NewManager creates a new session manager.
// Uses environment variable REPAIR_TEMP_DIR for temp directory, defaults to ./data/temp
func NewManager(opts repair.Options) *Manager {
	tempDir := os.Getenv("REPAIR_TEMP_DIR")
	if tempDir == "" {
		tempDir = "./data/temp"
	}
	os.MkdirAll(tempDir, 0755)
	return NewManagerWithTempDir(tempDir, opts)
}

// NewManagerWithTempDir creates a session manager with a specific temp directory.
func NewManagerWithTempDir(tempDir string, opts repair.Options) *Manager {
	return &Manager{
		sessions: make(map[string]*SessionState),
		registry: parser.GetGlobalRegistry(),
		tempDir:  tempDir,
		opts:     opts,
	}
}

// StartSession begins the repair process for an uploaded model file.
func (m *Manager) StartSession(fileID, filePath string) (*models.RepairSession, error) {
	// Clean up old sessions if at limit
	m.cleanupOldSessionsIfNeeded()

	sessionID := uuid.New().String()

	session := models.NewRepairSession(sessionID, fileID)
	session.Status = models.SessionStatusRepairing
	session.StartTime = time.Now().UnixMilli()

	state := &SessionState{
		Session:      session,
		LastAccessed: time.Now(),
	}

	m.mu.Lock()
	m.sessions[sessionID] = state
	m.mu.Unlock()

	// Run the repair in a background goroutine
	go m.runRepair(sessionID, filePath)

	return session, nil
}

func (m *Manager) runRepair(sessionID, filePath string) {
	// Recover from panics to prevent backend crash
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("[Repair %s] PANIC recovered: %v\n", shortID(sessionID), r)
			m.updateSessionError(sessionID, fmt.Sprintf("repair panicked: %v", r))
		}
	}()

	start := time.Now()
	fmt.Printf("[Repair %s] Starting repair of %s\n", shortID(sessionID), filePath)

	if info, err := os.Stat(filePath); err != nil {
		fmt.Printf("[Repair %s] ERROR stat file: %v\n", shortID(sessionID), err)
	} else {
		fmt.Printf("[Repair %s] File info: size=%d bytes\n", shortID(sessionID), info.Size())
	}

	p, err := m.registry.FindParser(filePath)
	if err != nil {
		fmt.Printf("[Repair %s] ERROR: failed to find parser: %v\n", shortID(sessionID), err)
		m.updateSessionError(sessionID, fmt.Sprintf("failed to find parser: %v", err))
		return
	}

	fmt.Printf("[Repair %s] Using parser: %s\n", shortID(sessionID), p.Name())

	m.setProgress(sessionID, 10)

	model, parseErrors, err := p.Parse(filePath)
	if err != nil {
		fmt.Printf("[Repair %s] ERROR: parse failed: %v\n", shortID(sessionID), err)
		m.updateSessionError(sessionID, fmt.Sprintf("parse failed: %v", err))
		return
	}

	fmt.Printf("[Repair %s] Parse complete: %d nodes, %d lines, %d skipped records\n",
		shortID(sessionID), len(model.Nodes), len(model.Lines), len(parseErrors))

	m.setProgress(sessionID, 40)

	result, err := repair.Connect(model, m.opts)
	if err != nil {
		fmt.Printf("[Repair %s] ERROR: repair failed: %v\n", shortID(sessionID), err)
		m.updateSessionError(sessionID, fmt.Sprintf("repair failed: %v", err))
		return
	}

	fmt.Printf("[Repair %s] Repair complete: %d split mothers, %d synthetic nodes, %d lines total\n",
		shortID(sessionID), len(result.SplitMothers), len(result.SyntheticNodes), len(result.Model.Lines))

	elapsed := time.Since(start).Milliseconds()

	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.sessions[sessionID]
	if !ok {
		return
	}

	state.Result = result
	state.Session.Status = models.SessionStatusComplete
	state.Session.Progress = 100
	state.Session.NodeCount = len(result.Model.Nodes)
	state.Session.LineCount = len(result.Model.Lines)
	state.Session.SplitMothers = len(result.SplitMothers)
	state.Session.SyntheticNodes = len(result.SyntheticNodes)
	state.Session.ProcessingTimeMs = elapsed
	state.Session.EndTime = time.Now().UnixMilli()
	state.Session.ParserName = p.Name()
	state.Session.ParseErrors = parseErrors
}

func (m *Manager) setProgress(sessionID string, progress float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if state, ok := m.sessions[sessionID]; ok {
		state.Session.Progress = progress
	}
}

func (m *Manager) updateSessionError(sessionID, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.sessions[sessionID]
	if !ok {
		return
	}

	state.Session.Status = models.SessionStatusError
	state.Session.Error = reason
	state.Session.EndTime = time.Now().UnixMilli()
}

// cleanupOldSessionsIfNeeded removes oldest completed sessions if at capacity
func (m *Manager) cleanupOldSessionsIfNeeded() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sessions) < MaxSessions {
		return
	}

	var toDelete []string
	for id, state := range m.sessions {
		if state.Session.Status == models.SessionStatusComplete ||
			state.Session.Status == models.SessionStatusError {
			toDelete = append(toDelete, id)
		}
	}

	toFree := len(m.sessions) - MaxSessions + 1
	deleted := 0
	for _, id := range toDelete {
		if deleted >= toFree {
			break
		}
		if state, ok := m.sessions[id]; ok {
			if state.Results != nil {
				state.Results.Close()
			}
			delete(m.sessions, id)
			deleted++
			fmt.Printf("[Manager] Cleaned up old session %s to free memory\n", shortID(id))
		}
	}
}

// CleanupOldSessions removes sessions older than maxAge,
// but keeps sessions that have been accessed within SessionKeepAliveWindow.
func (m *Manager) CleanupOldSessions(maxAge time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	keepAliveCutoff := time.Now().Add(-SessionKeepAliveWindow)

	for id, state := range m.sessions {
		if state.Session.Status != models.SessionStatusComplete &&
			state.Session.Status != models.SessionStatusError {
			continue
		}

		if state.LastAccessed.After(keepAliveCutoff) {
			continue
		}

		sessionTime := state.LastAccessed
		if sessionTime.IsZero() {
			sessionTime = time.Now().Add(-maxAge - time.Hour) // Force cleanup
		}

		if sessionTime.Before(cutoff) {
			if state.Results != nil {
				state.Results.Close()
			}
			delete(m.sessions, id)
			fmt.Printf("[Manager] Cleaned up aged session %s (last accessed: %s ago)\n",
				shortID(id), time.Since(state.LastAccessed).Round(time.Second))
		}
	}
}

// GetSession returns a session by ID.
func (m *Manager) GetSession(id string) (*models.RepairSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	return state.Session, true
}

// TouchSession updates the LastAccessed timestamp for a session.
// This should be called whenever a session is actively being used
// to prevent it from being cleaned up.
func (m *Manager) TouchSession(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.sessions[id]
	if !ok {
		return false
	}
	state.LastAccessed = time.Now()
	return true
}

// GetResult returns the repair result for a completed session.
func (m *Manager) GetResult(id string) (*repair.Result, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.sessions[id]
	if !ok || state.Result == nil {
		return nil, false
	}
	return state.Result, true
}

// GetLineage returns the mother and child maps for a completed session.
func (m *Manager) GetLineage(id string) (models.Lineage, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.sessions[id]
	if !ok || state.Result == nil {
		return models.Lineage{}, false
	}
	return state.Result.Lineage, true
}

// AttachSolverOutputs stores parsed solver outputs for a completed session.
// Results are written to a DuckDB file alongside the session lineage so the
// governing values stay queryable.
func (m *Manager) AttachSolverOutputs(id string, outputs *solver.Outputs, loadCase int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.sessions[id]
	if !ok {
		return fmt.Errorf("session not found: %s", id)
	}
	if state.Result == nil {
		return fmt.Errorf("session %s has no repair result", shortID(id))
	}

	if state.Results != nil {
		state.Results.Close()
		state.Results = nil
	}

	store, err := solver.NewResultStore(m.tempDir, id)
	if err != nil {
		return fmt.Errorf("creating result store: %w", err)
	}
	if err := store.PutLineage(state.Result.Lineage); err != nil {
		store.Close()
		return fmt.Errorf("storing lineage: %w", err)
	}
	for _, r := range outputs.Results(loadCase) {
		store.Add(r)
	}
	if err := store.Finalize(); err != nil {
		store.Close()
		return fmt.Errorf("finalizing result store: %w", err)
	}
	if err := store.LastError(); err != nil {
		store.Close()
		return fmt.Errorf("writing results: %w", err)
	}

	state.Results = store
	fmt.Printf("[Repair %s] Attached %d solver results\n", shortID(id), store.Len())
	return nil
}

// Governing returns the worst-case displacement per mother member for a
// session that has solver outputs attached.
func (m *Manager) Governing(ctx context.Context, id string) (map[int]models.GoverningResult, error) {
	m.mu.RLock()
	state, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("session not found: %s", id)
	}
	if state.Results == nil {
		return nil, fmt.Errorf("session %s has no solver results", shortID(id))
	}
	return state.Results.Governing(ctx)
}

// DeleteSession removes a session and releases its resources.
func (m *Manager) DeleteSession(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.sessions[id]
	if !ok {
		return false
	}
	if state.Results != nil {
		state.Results.Close()
	}
	delete(m.sessions, id)
	return true
}
