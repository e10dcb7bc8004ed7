// Package task owns the analysis lifecycle: document and task stores, the
// pending → running → completed|error state machine, monotonic progress
// counters and the per-document exclusion of concurrent runs. A running
// task cannot be cancelled; callers poll until it terminates.
package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/papercheck/papercheck/internal/analyze"
	"github.com/papercheck/papercheck/internal/annotate"
	"github.com/papercheck/papercheck/internal/ingest"
	"github.com/papercheck/papercheck/internal/model"
	"github.com/papercheck/papercheck/internal/registry"
	"github.com/papercheck/papercheck/internal/session"
	"github.com/papercheck/papercheck/internal/track"
)

// analysis is the retained outcome of a document's latest completed run.
type analysis struct {
	registry  *registry.Registry
	preview   []string // annotated markup per paragraph, by index
	report    string   // token-annotated report markup
	selection *session.Synchronizer
}

// Manager coordinates uploads, analysis runs and their results.
type Manager struct {
	engine    *analyze.Engine
	tracker   *track.Tracker
	offsetAnn *annotate.OffsetAnnotator
	tokenAnn  *annotate.TokenAnnotator
	logger    *slog.Logger

	mu       sync.Mutex
	docs     map[string]*model.Document
	tasks    map[string]*model.Task
	active   map[string]string // document id → non-terminal task id
	analyses map[string]*analysis
}

// NewManager wires the engine, tracker and annotators together.
func NewManager(engine *analyze.Engine, logger *slog.Logger) *Manager {
	return &Manager{
		engine:    engine,
		tracker:   track.New(logger),
		offsetAnn: annotate.NewOffsetAnnotator(logger),
		tokenAnn:  annotate.NewTokenAnnotator(logger),
		logger:    logger,
		docs:      make(map[string]*model.Document),
		tasks:     make(map[string]*model.Task),
		active:    make(map[string]string),
		analyses:  make(map[string]*analysis),
	}
}

// AddDocument parses and stores an upload.
func (m *Manager) AddDocument(filename string, content []byte) (*model.Document, error) {
	doc, err := ingest.Parse(filename, content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[doc.ID] = doc
	return doc, nil
}

// Document looks up a stored document.
func (m *Manager) Document(id string) (*model.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.docs[id]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	return doc, nil
}

// Start launches an analysis task for a document. Only one non-terminal
// task may exist per document at a time.
func (m *Manager) Start(docID string, mode model.AnalysisMode) (string, error) {
	if !mode.Valid() {
		return "", fmt.Errorf("%w: unknown analysis mode %q", ErrInvalidDocument, mode)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.docs[docID]
	if !ok {
		return "", fmt.Errorf("document %s: %w", docID, ErrNotFound)
	}
	if activeID, busy := m.active[docID]; busy {
		return "", fmt.Errorf("%w (task %s)", ErrAlreadyRunning, activeID)
	}

	t := &model.Task{
		ID:         uuid.NewString(),
		DocumentID: docID,
		Mode:       mode,
		Status:     model.StatusPending,
		CreatedAt:  time.Now(),
	}
	m.tasks[t.ID] = t
	m.active[docID] = t.ID

	// Starting a new run already invalidates the prior run's selection;
	// the problem set it pointed into is about to be replaced.
	if a := m.analyses[docID]; a != nil {
		a.selection.Clear()
	}

	go m.run(t.ID, doc, mode)
	return t.ID, nil
}

// Task returns a snapshot of a task's state.
func (m *Manager) Task(taskID string) (model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[taskID]
	if !ok {
		return model.Task{}, fmt.Errorf("task %s: %w", taskID, ErrNotFound)
	}
	return *t, nil
}

// Result returns the completed task's artifact. Non-terminal tasks yield
// ErrNotReady, failed tasks ErrAnalysisFailed.
func (m *Manager) Result(taskID string) (*model.AnalysisResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[taskID]
	if !ok {
		return nil, fmt.Errorf("task %s: %w", taskID, ErrNotFound)
	}
	switch t.Status {
	case model.StatusCompleted:
		return t.Result, nil
	case model.StatusError:
		return nil, fmt.Errorf("%w: %s", ErrAnalysisFailed, t.Error)
	default:
		return nil, fmt.Errorf("task %s is %s: %w", taskID, t.Status, ErrNotReady)
	}
}

// run executes the analysis goroutine for one task.
func (m *Manager) run(taskID string, doc *model.Document, mode model.AnalysisMode) {
	m.setStatus(taskID, model.StatusRunning)

	findings, report, err := m.engine.Analyze(context.Background(), doc, mode, func(processed, total int) {
		m.setProgress(taskID, processed, total)
	})
	if err != nil {
		m.logger.Error("analysis failed", "task", taskID, "document", doc.ID, "error", err)
		m.finish(taskID, doc.ID, nil, err)
		return
	}

	tracked := m.tracker.Locate(doc, findings)
	reg := registry.Build(tracked)

	preview := make([]string, len(doc.Paragraphs))
	for i, para := range doc.Paragraphs {
		preview[i] = m.offsetAnn.Annotate(para, reg.InParagraph(para.Index))
	}
	annotatedReport := m.tokenAnn.Annotate(report, reg.All())

	result := &model.AnalysisResult{
		Problems:     reg.All(),
		ReportMarkup: annotatedReport,
		Mode:         mode,
		CompletedAt:  time.Now(),
	}

	m.mu.Lock()
	// Re-analysis replaces the prior problem set and resets selection.
	m.analyses[doc.ID] = &analysis{
		registry:  reg,
		preview:   preview,
		report:    annotatedReport,
		selection: session.New(),
	}
	m.mu.Unlock()

	m.finish(taskID, doc.ID, result, nil)
	m.logger.Info("analysis completed", "task", taskID, "document", doc.ID, "problems", reg.Len())
}

func (m *Manager) setStatus(taskID string, status model.TaskStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tasks[taskID]; ok && !t.Status.Terminal() {
		t.Status = status
	}
}

// setProgress applies monotonic counters: a stale update never moves the
// numbers backwards.
func (m *Manager) setProgress(taskID string, processed, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[taskID]
	if !ok || t.Status.Terminal() {
		return
	}
	if total > t.Progress.Total {
		t.Progress.Total = total
	}
	if processed > t.Progress.Processed {
		t.Progress.Processed = processed
	}
	if t.Progress.Total > 0 {
		pct := t.Progress.Processed * 100 / t.Progress.Total
		if pct > t.Progress.Percentage {
			t.Progress.Percentage = pct
		}
	}
}

func (m *Manager) finish(taskID, docID string, result *model.AnalysisResult, runErr error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[taskID]
	if !ok {
		return
	}
	if runErr != nil {
		t.Status = model.StatusError
		t.Error = runErr.Error()
	} else {
		t.Status = model.StatusCompleted
		t.Result = result
		t.Progress.Processed = t.Progress.Total
		t.Progress.Percentage = 100
	}
	delete(m.active, docID)
}
