package record

import (
	"context"
	"fmt"
	"time"
)

// RepositoryManager is the versioning boundary the service drives. Each
// method returns the captured command transcripts so callers can surface
// them as an audit trail.
type RepositoryManager interface {
	// EnsureCurrent brings the user's working copy into existence (first
	// login) or up to date with their branch and the mainline.
	EnsureCurrent(ctx context.Context, username string) ([]string, error)

	// CommitRecord writes content at relPath inside the user's working copy,
	// stages it and commits it. It fails with AlreadyExistsError if the path
	// is occupied, without touching git.
	CommitRecord(ctx context.Context, username, relPath string, content []byte) ([]string, error)

	// Publish pushes the user's branch to its same-named upstream ref.
	Publish(ctx context.Context, username string) (string, error)
}

// Validator checks a serialized document against the schema for its kind.
type Validator interface {
	Validate(kind Kind, doc []byte) error
}

// Journal persists session timestamps and an audit trail of operations.
type Journal interface {
	RecordLogin(username string, at time.Time) error
	RecordWrite(username string, kind Kind, at time.Time) error
	RecordPublish(username string, at time.Time) error

	// LastWrite returns the time of the user's last successful write of the
	// given kind, or the zero time if there has been none.
	LastWrite(username string, kind Kind) (time.Time, error)

	Close() error
}

// SubmitResult reports a successfully committed record.
type SubmitResult struct {
	DisplayName string
	RelPath     string
	Transcripts []string
}

// EditorService is the orchestration layer that coordinates encoding,
// validation and the repository lifecycle for contributor sessions.
type EditorService struct {
	repos     RepositoryManager
	validator Validator
	journal   Journal
	layouts   map[Kind]Layout
	logger    Logger
	clock     Clock
}

// NewEditorService creates a new EditorService with the provided dependencies.
func NewEditorService(repos RepositoryManager, validator Validator, journal Journal, layouts map[Kind]Layout, logger Logger, clock Clock) *EditorService {
	return &EditorService{
		repos:     repos,
		validator: validator,
		journal:   journal,
		layouts:   layouts,
		logger:    logger,
		clock:     clock,
	}
}

// OnLoginSuccess is the session hook for a successful login: it makes the
// user's working copy current and records the session start.
func (s *EditorService) OnLoginSuccess(ctx context.Context, username string) ([]string, error) {
	transcripts, err := s.repos.EnsureCurrent(ctx, username)
	if err != nil {
		return transcripts, fmt.Errorf("preparing working copy: %w", err)
	}
	if err := s.journal.RecordLogin(username, s.clock.Now()); err != nil {
		return transcripts, fmt.Errorf("recording login: %w", err)
	}
	s.logger.Info("session started", "user", username)
	return transcripts, nil
}

// OnLogoutStart is the session hook for logout: it publishes the user's
// branch upstream. Publication is unconditional, regardless of how many
// records were committed this session.
func (s *EditorService) OnLogoutStart(ctx context.Context, username string) (string, error) {
	transcript, err := s.repos.Publish(ctx, username)
	if err != nil {
		return transcript, fmt.Errorf("publishing branch: %w", err)
	}
	if err := s.journal.RecordPublish(username, s.clock.Now()); err != nil {
		return transcript, fmt.Errorf("recording publish: %w", err)
	}
	s.logger.Info("session published", "user", username)
	return transcript, nil
}

// Submit encodes, validates and commits one record for the user. Validation
// fails closed: no document reaches disk or git without passing its schema.
func (s *EditorService) Submit(ctx context.Context, username string, r Record) (*SubmitResult, error) {
	layout, ok := s.layouts[r.Kind()]
	if !ok {
		return nil, fmt.Errorf("no layout configured for kind %q", r.Kind())
	}

	relPath, err := RecordPath(r, layout)
	if err != nil {
		return nil, err
	}

	doc, err := BuildDocument(r)
	if err != nil {
		return nil, err
	}
	content, err := EncodeDocument(doc)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(r.Kind(), content); err != nil {
		return nil, err
	}

	transcripts, err := s.repos.CommitRecord(ctx, username, relPath, content)
	if err != nil {
		return nil, err
	}

	if err := s.journal.RecordWrite(username, r.Kind(), s.clock.Now()); err != nil {
		return nil, fmt.Errorf("recording write: %w", err)
	}

	s.logger.Info("record committed", "user", username, "kind", string(r.Kind()), "path", relPath)
	return &SubmitResult{
		DisplayName: r.DisplayName(),
		RelPath:     relPath,
		Transcripts: transcripts,
	}, nil
}

// ChangedSince reports whether the user has written a record of the given
// kind after t. It answers cheaply from the journal without rescanning the
// repository.
func (s *EditorService) ChangedSince(username string, kind Kind, t time.Time) (bool, error) {
	last, err := s.journal.LastWrite(username, kind)
	if err != nil {
		return false, fmt.Errorf("reading last write: %w", err)
	}
	return last.After(t), nil
}
