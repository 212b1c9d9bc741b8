package store

import (
	"context"
	"iter"

	"github.com/arthur-debert/solidhdf5/pkg/container"
	"github.com/arthur-debert/solidhdf5/pkg/logging"
	"golang.org/x/sync/errgroup"
)

// Report is the listing of one container
type Report struct {
	Container  string            `json:"container"`
	Accessible bool              `json:"accessible"`
	Samples    []container.Group `json:"samples"`
}

// Show lists every sample group in the container with its datasets and
// attributes. A container that cannot be opened is reported with
// Accessible false rather than as an error.
func (s *Store) Show(ctx context.Context, containerPath string) (*Report, error) {
	defer logging.LogOperationStart(s.logger, "show")()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rep := &Report{Container: containerPath}

	r, err := s.backend.OpenReader(containerPath)
	if err != nil {
		s.logger.Debug().Err(err).Str("container", containerPath).Msg(NoteNotAccessible)
		return rep, nil
	}
	defer func() {
		if err := r.Close(); err != nil {
			s.logger.Warn().Err(err).Str("container", containerPath).Msg("failed to close reader")
		}
	}()

	groups, err := r.Groups()
	if err != nil {
		return nil, err
	}
	rep.Accessible = true
	rep.Samples = groups
	return rep, nil
}

// ShowMany builds the reports of several containers concurrently and
// returns them in argument order
func (s *Store) ShowMany(ctx context.Context, containers ...string) ([]*Report, error) {
	reports := make([]*Report, len(containers))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallel)
	for i, c := range containers {
		g.Go(func() error {
			rep, err := s.Show(ctx, c)
			if err != nil {
				return err
			}
			reports[i] = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// DatasetCount returns the number of datasets across all samples
func (r *Report) DatasetCount() int {
	n := 0
	for _, g := range r.Samples {
		n += len(g.Datasets)
	}
	return n
}

// Lines yields the plain text listing one line at a time
func (r *Report) Lines() iter.Seq[string] {
	return func(yield func(string) bool) {
		if !r.Accessible {
			yield(NoteNotAccessible)
			return
		}
		if !yield("Samples:") {
			return
		}
		for _, g := range r.Samples {
			if !yield("\tSamplename: " + g.Name) {
				return
			}
			if !yield("\t" + g.Attrs.Format()) {
				return
			}
			if !yield("\t\tDatasets in sample directory:") {
				return
			}
			for _, d := range g.Datasets {
				lines := []string{
					"\t\t\t/" + d.Name,
					"\t\t\t" + d.Attrs.Format(),
					"\t\t\tLoad with load(" + container.JoinPath(g.Name, d.Name) + ")",
				}
				for _, l := range lines {
					if !yield(l) {
						return
					}
				}
			}
		}
	}
}
