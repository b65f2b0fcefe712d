package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"nymedit/internal/config"
	"nymedit/internal/journal"
	"nymedit/internal/proc"
	"nymedit/internal/record"
	"nymedit/internal/repo"
	"nymedit/internal/schema"
	"nymedit/internal/vcs"
)

// EditorApp is the application layer between the CLI and the editor
// service. It constructs all dependencies from config, exposes high-level
// operations on raw form input, and manages resource lifecycles on Close.
type EditorApp struct {
	cfg       *config.Config
	journal   record.Journal
	validator *schema.Validator
	repos     *repo.Manager
	service   *record.EditorService
	logFile   *os.File
}

// NewEditorApp creates a fully wired EditorApp from the given config.
// operation identifies the CLI command being run (e.g. "Login", "AddConcept").
// The caller must call Close when done.
func NewEditorApp(cfg *config.Config, operation string) (*EditorApp, error) {
	opID := time.Now().UTC().Format("20060102T150405Z") + "-" + operation
	logger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	log := &slogAdapter{l: logger}

	jrnl, err := journal.NewJournalFromConfig(cfg.Journal)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating journal: %w", err)
	}

	validator, err := schema.NewValidator(map[record.Kind]string{
		record.KindConcept:      cfg.Kinds.Concept.Schema,
		record.KindVariant:      cfg.Kinds.Variant.Schema,
		record.KindBibliography: cfg.Kinds.Bibliography.Schema,
	})
	if err != nil {
		jrnl.Close()
		logFile.Close()
		return nil, fmt.Errorf("loading schemas: %w", err)
	}

	identities := make(map[string]repo.Identity, len(cfg.Users))
	for _, u := range cfg.Users {
		identities[u.Username] = repo.Identity{Realname: u.Realname, Email: u.Email}
	}

	runner := proc.NewExecRunner()
	git := vcs.New(runner, cfg.Timeouts.Mutate())
	repos := repo.NewManager(git, runner, repo.Options{
		UsersDir:     cfg.UsersDir,
		RemoteURL:    cfg.RemoteURL,
		Identities:   identities,
		ConceptDir:   cfg.Kinds.Concept.Dir,
		BibDir:       cfg.Kinds.Bibliography.Dir,
		QueryTimeout: cfg.Timeouts.Query(),
	}, log)

	layouts := map[record.Kind]record.Layout{
		record.KindConcept:      {Dir: cfg.Kinds.Concept.Dir, Depth: cfg.Kinds.Concept.Depth},
		record.KindVariant:      {Dir: cfg.Kinds.Variant.Dir, Depth: cfg.Kinds.Variant.Depth},
		record.KindBibliography: {Dir: cfg.Kinds.Bibliography.Dir, Depth: cfg.Kinds.Bibliography.Depth},
	}

	svc := record.NewEditorService(repos, validator, jrnl, layouts, log, record.RealClock{})

	return &EditorApp{
		cfg:       cfg,
		journal:   jrnl,
		validator: validator,
		repos:     repos,
		service:   svc,
		logFile:   logFile,
	}, nil
}

// checkUser rejects usernames that are not configured contributors before
// any repository work happens.
func (a *EditorApp) checkUser(username string) error {
	if a.cfg.FindUser(username) == nil {
		return fmt.Errorf("unknown user %q", username)
	}
	return nil
}

// Login prepares the user's working copy for a session and returns the git
// transcripts for display.
func (a *EditorApp) Login(ctx context.Context, username string) ([]string, error) {
	if err := a.checkUser(username); err != nil {
		return nil, err
	}
	return a.service.OnLoginSuccess(ctx, username)
}

// Logout publishes the user's branch upstream and returns the git
// transcript for display.
func (a *EditorApp) Logout(ctx context.Context, username string) (string, error) {
	if err := a.checkUser(username); err != nil {
		return "", err
	}
	return a.service.OnLogoutStart(ctx, username)
}

// AddConcept builds, validates and commits a concept entry from form input.
func (a *EditorApp) AddConcept(ctx context.Context, username string, fields record.Fields) (*record.SubmitResult, error) {
	if err := a.checkUser(username); err != nil {
		return nil, err
	}
	rec, err := record.ConceptFromFields(fields)
	if err != nil {
		return nil, err
	}
	return a.service.Submit(ctx, username, rec)
}

// AddVariant builds, validates and commits a variant entry from form input.
func (a *EditorApp) AddVariant(ctx context.Context, username string, fields record.Fields) (*record.SubmitResult, error) {
	if err := a.checkUser(username); err != nil {
		return nil, err
	}
	rec, err := record.VariantFromFields(fields)
	if err != nil {
		return nil, err
	}
	return a.service.Submit(ctx, username, rec)
}

// AddBibliography builds and commits a bibliography entry from form input.
func (a *EditorApp) AddBibliography(ctx context.Context, username string, fields record.Fields) (*record.SubmitResult, error) {
	if err := a.checkUser(username); err != nil {
		return nil, err
	}
	rec, err := record.BibliographyFromFields(fields)
	if err != nil {
		return nil, err
	}
	return a.service.Submit(ctx, username, rec)
}

// BibKeys returns the citation keys present in the user's working copy.
func (a *EditorApp) BibKeys(ctx context.Context, username string) ([]string, error) {
	if err := a.checkUser(username); err != nil {
		return nil, err
	}
	return a.repos.BibKeys(ctx, username)
}

// Nyms returns the concept identifiers present in the user's working copy.
func (a *EditorApp) Nyms(ctx context.Context, username string) ([]string, error) {
	if err := a.checkUser(username); err != nil {
		return nil, err
	}
	return a.repos.Nyms(ctx, username)
}

// ChangedSince reports whether the user has written a record of the given
// kind after t.
func (a *EditorApp) ChangedSince(username string, kind record.Kind, t time.Time) (bool, error) {
	if err := a.checkUser(username); err != nil {
		return false, err
	}
	return a.service.ChangedSince(username, kind, t)
}

// Close releases all resources.
func (a *EditorApp) Close() error {
	var firstErr error

	if err := a.journal.Close(); err != nil {
		firstErr = fmt.Errorf("closing journal: %w", err)
	}
	a.validator.Free()
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}
