package store

import (
	"context"

	"github.com/arthur-debert/solidhdf5/pkg/container"
	"github.com/arthur-debert/solidhdf5/pkg/errors"
	"github.com/arthur-debert/solidhdf5/pkg/logging"
)

// LoadResult carries a loaded dataset. Array and Attrs are set only on Success.
type LoadResult struct {
	Outcome   Outcome          `json:"outcome"`
	Container string           `json:"container"`
	Path      string           `json:"path"`
	Array     *container.Array `json:"array,omitempty"`
	Attrs     container.Attrs  `json:"attrs,omitempty"`
}

// Load reads the dataset at path (sample/dataset) from the container
func (s *Store) Load(ctx context.Context, containerPath, path string) (*LoadResult, error) {
	defer logging.LogOperationStart(s.logger, "load")()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res := &LoadResult{Container: containerPath, Path: path}

	r, err := s.backend.OpenReader(containerPath)
	if err != nil {
		s.logger.Debug().Err(err).Str("container", containerPath).Msg(NoteNotAccessible)
		res.Outcome = Inaccessible
		return res, nil
	}
	defer func() {
		if err := r.Close(); err != nil {
			s.logger.Warn().Err(err).Str("container", containerPath).Msg("failed to close reader")
		}
	}()

	arr, attrs, err := r.ReadArray(path)
	if err != nil {
		if errors.HasErrorCode(err, errors.ErrPathNotFound) {
			s.logger.Info().Str("container", containerPath).Str("path", path).Msg(NoteNoData)
			res.Outcome = NotFound
			return res, nil
		}
		return nil, err
	}

	res.Outcome = Success
	res.Array = &arr
	res.Attrs = attrs
	return res, nil
}
