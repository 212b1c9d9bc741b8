// Package store implements the three container operations: appending a
// dataset without overwriting anything, loading one dataset back and
// listing what a container holds.
package store

import (
	"context"
	"time"

	"github.com/arthur-debert/solidhdf5/pkg/container"
	"github.com/arthur-debert/solidhdf5/pkg/errors"
	"github.com/arthur-debert/solidhdf5/pkg/lock"
	"github.com/arthur-debert/solidhdf5/pkg/logging"
	"github.com/rs/zerolog"
)

// Progress notes recorded on a StoreResult
const (
	NoteNewSample       = "New sample."
	NoteSampleExists    = "Sample already has a directory."
	NoteDatasetUnique   = "Name of dataset is unique."
	NoteDatasetConflict = "Name of dataset is not unique."
	NoteNotStored       = "Did not store data."
	NoteCreatingBoth    = "Creating new directory and dataset."
	NoteAddingDataset   = "Adding dataset to sample directory."
	NoteNotAccessible   = "File not accessible."
	NoteNoData          = "No data in the specified path"
)

// Layouts used to fill in a missing acquisition date or time
const (
	DateLayout = "20060102"
	TimeLayout = "15:04"
)

// Store runs operations against containers opened through a Backend
type Store struct {
	backend     container.Backend
	lockEnabled bool
	lockTimeout time.Duration
	lockPoll    time.Duration
	parallel    int
	logger      zerolog.Logger
}

// Option configures a Store
type Option func(*Store)

// WithLock serialises store calls on the same container through a sidecar
// lock file, waiting up to timeout
func WithLock(timeout, poll time.Duration) Option {
	return func(s *Store) {
		s.lockEnabled = true
		s.lockTimeout = timeout
		s.lockPoll = poll
	}
}

// WithParallelism bounds how many containers ShowMany reads at once
func WithParallelism(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.parallel = n
		}
	}
}

// WithLogger replaces the component logger
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New creates a Store. Locking is off unless WithLock is given.
func New(backend container.Backend, opts ...Option) *Store {
	s := &Store{
		backend:  backend,
		parallel: 4,
		logger:   logging.GetLogger("store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Request describes one dataset to append
type Request struct {
	Container   string          `json:"container"`
	Array       container.Array `json:"array"`
	AxisNames   string          `json:"axis_names"`
	Project     string          `json:"project"`
	Material    string          `json:"material"`
	Method      string          `json:"method"`
	Date        string          `json:"date"`
	Time        string          `json:"time"`
	SampleName  string          `json:"sample"`
	DatasetName string          `json:"dataset"`
}

// Path returns the sample/dataset path the request writes to
func (r Request) Path() string {
	return container.JoinPath(r.SampleName, r.DatasetName)
}

// Validate checks names, the container path and the array
func (r Request) Validate() error {
	if r.Container == "" {
		return errors.New(errors.ErrInvalidInput, "container path is empty")
	}
	if err := container.ValidateName("sample", r.SampleName); err != nil {
		return err
	}
	if err := container.ValidateName("dataset", r.DatasetName); err != nil {
		return err
	}
	return r.Array.Validate()
}

// Stamp fills an empty Date or Time from now
func (r *Request) Stamp(now time.Time) {
	if r.Date == "" {
		r.Date = now.Format(DateLayout)
	}
	if r.Time == "" {
		r.Time = now.Format(TimeLayout)
	}
}

func (r Request) groupAttrs() container.Attrs {
	return container.StringAttrs(
		container.AttrProject, r.Project,
		container.AttrMaterial, r.Material,
	)
}

func (r Request) datasetAttrs() container.Attrs {
	return container.StringAttrs(
		container.AttrAxisnames, r.AxisNames,
		container.AttrDate, r.Date,
		container.AttrTime, r.Time,
		container.AttrMethod, r.Method,
	)
}

// StoreResult reports what a store call did
type StoreResult struct {
	Outcome       Outcome  `json:"outcome"`
	Container     string   `json:"container"`
	Path          string   `json:"path"`
	SampleExists  bool     `json:"sample_exists"`
	DatasetExists bool     `json:"dataset_exists"`
	Notes         []string `json:"notes"`
}

func (r *StoreResult) note(logger zerolog.Logger, msg string) {
	r.Notes = append(r.Notes, msg)
	logger.Info().Str("container", r.Container).Str("path", r.Path).Msg(msg)
}

// Store appends req.Array to the container at sample/dataset. Existing
// datasets are never overwritten: a taken name yields NameConflict and
// leaves the container as it was. A new sample group gets the Project and
// Material attributes; an existing group keeps the ones it has.
func (s *Store) Store(ctx context.Context, req Request) (*StoreResult, error) {
	defer logging.LogOperationStart(s.logger, "store")()

	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &StoreResult{Container: req.Container, Path: req.Path()}

	if s.lockEnabled {
		l, err := lock.Acquire(ctx, req.Container, s.lockTimeout, s.lockPoll)
		if err != nil {
			if errors.HasErrorCode(err, errors.ErrContainerInaccessible) {
				return s.inaccessible(res, err), nil
			}
			return nil, err
		}
		defer func() {
			if err := l.Release(); err != nil {
				s.logger.Warn().Err(err).Str("lock", l.Path()).Msg("failed to release lock")
			}
		}()
	}

	if err := s.backend.Ensure(req.Container); err != nil {
		return s.inaccessible(res, err), nil
	}

	group, sampleExists, err := s.lookup(req.Container, req.SampleName)
	if err != nil {
		if errors.HasErrorCode(err, errors.ErrContainerInaccessible) {
			return s.inaccessible(res, err), nil
		}
		return nil, err
	}
	res.SampleExists = sampleExists
	res.DatasetExists = sampleExists && group.HasDataset(req.DatasetName)

	if !sampleExists {
		res.note(s.logger, NoteNewSample)
	} else {
		res.note(s.logger, NoteSampleExists)
		if res.DatasetExists {
			res.note(s.logger, NoteDatasetConflict)
			res.note(s.logger, NoteNotStored)
			res.Outcome = NameConflict
			return res, nil
		}
		res.note(s.logger, NoteDatasetUnique)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if sampleExists {
		res.note(s.logger, NoteAddingDataset)
	} else {
		res.note(s.logger, NoteCreatingBoth)
	}
	if err := s.write(req, !sampleExists); err != nil {
		if errors.IsErrorCode(err, errors.ErrContainerInaccessible) {
			return s.inaccessible(res, err), nil
		}
		return nil, err
	}

	res.note(s.logger, "Stored as "+res.Path)
	res.Outcome = Success
	return res, nil
}

func (s *Store) inaccessible(res *StoreResult, cause error) *StoreResult {
	s.logger.Debug().Err(cause).Str("container", res.Container).Msg("container not accessible")
	res.Outcome = Inaccessible
	res.note(s.logger, NoteNotAccessible)
	return res
}

// lookup opens a reader just long enough to find the sample group
func (s *Store) lookup(path, sample string) (container.Group, bool, error) {
	r, err := s.backend.OpenReader(path)
	if err != nil {
		return container.Group{}, false, err
	}
	defer func() {
		if err := r.Close(); err != nil {
			s.logger.Warn().Err(err).Str("container", path).Msg("failed to close reader")
		}
	}()
	return r.Lookup(sample)
}

// write stages the group (for a new sample) and the dataset, committing
// both or neither
func (s *Store) write(req Request, newSample bool) error {
	w, err := s.backend.OpenWriter(req.Container)
	if err != nil {
		return err
	}

	if err := stage(w, req, newSample); err != nil {
		if derr := w.Discard(); derr != nil {
			s.logger.Warn().Err(derr).Str("container", req.Container).Msg("failed to discard writer")
		}
		return asWriteError(err, req)
	}
	if err := w.Close(); err != nil {
		return asWriteError(err, req)
	}
	return nil
}

func stage(w container.Writer, req Request, newSample bool) error {
	if newSample {
		if err := w.CreateGroup(req.SampleName, req.groupAttrs()); err != nil {
			return err
		}
	}
	return w.CreateDataset(req.Path(), req.Array, req.datasetAttrs())
}

func asWriteError(err error, req Request) error {
	if errors.IsErrorCode(err, errors.ErrContainerWrite) {
		return err
	}
	return errors.Wrapf(err, errors.ErrContainerWrite, "failed to store %s in %s", req.Path(), req.Container)
}

// StoreBatch runs reqs one after another against the container, returning a
// result per request. Conflicts do not stop the batch; errors do, and the
// results gathered so far are returned alongside the error.
func (s *Store) StoreBatch(ctx context.Context, containerPath string, reqs []Request) ([]*StoreResult, error) {
	results := make([]*StoreResult, 0, len(reqs))
	for i, req := range reqs {
		if req.Container == "" {
			req.Container = containerPath
		}
		res, err := s.Store(ctx, req)
		if err != nil {
			return results, errors.Wrapf(err, errors.GetErrorCode(err), "batch entry %d (%s)", i+1, req.Path()).
				WithDetail("index", i)
		}
		results = append(results, res)
	}
	return results, nil
}
