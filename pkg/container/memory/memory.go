// Package memory is an in-process container backend.
// Containers live in a map keyed by path for the lifetime of the Backend.
package memory

import (
	"sort"
	"sync"

	"github.com/arthur-debert/solidhdf5/pkg/container"
	"github.com/arthur-debert/solidhdf5/pkg/errors"
)

type dataset struct {
	array container.Array
	attrs container.Attrs
}

type group struct {
	attrs    container.Attrs
	datasets map[string]*dataset
}

type file struct {
	groups map[string]*group
}

// Backend keeps containers in memory
type Backend struct {
	mu           sync.Mutex
	files        map[string]*file
	inaccessible map[string]bool
	failWrites   map[string]error
	open         int
}

// New creates an empty memory backend
func New() *Backend {
	return &Backend{
		files:        make(map[string]*file),
		inaccessible: make(map[string]bool),
		failWrites:   make(map[string]error),
	}
}

// SetInaccessible makes every open of path fail as if the file could not be read
func (b *Backend) SetInaccessible(path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.inaccessible[path] = true
}

// FailWrites makes dataset creation in path fail with err
func (b *Backend) FailWrites(path string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failWrites[path] = err
}

// OpenHandles returns the number of readers and writers not yet closed
func (b *Backend) OpenHandles() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open
}

// Exists reports whether a container has been created at path
func (b *Backend) Exists(path string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.files[path]
	return ok
}

func (b *Backend) Ensure(path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.inaccessible[path] {
		return errors.Newf(errors.ErrContainerInaccessible, "container %s is not accessible", path)
	}
	if _, ok := b.files[path]; !ok {
		b.files[path] = &file{groups: make(map[string]*group)}
	}
	return nil
}

func (b *Backend) openFile(path string) (*file, error) {
	if b.inaccessible[path] {
		return nil, errors.Newf(errors.ErrContainerInaccessible, "container %s is not accessible", path)
	}
	f, ok := b.files[path]
	if !ok {
		return nil, errors.Newf(errors.ErrContainerInaccessible, "container %s does not exist", path)
	}
	b.open++
	return f, nil
}

func (b *Backend) OpenReader(path string) (container.Reader, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	f, err := b.openFile(path)
	if err != nil {
		return nil, err
	}
	return &reader{b: b, f: f}, nil
}

func (b *Backend) OpenWriter(path string) (container.Writer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	f, err := b.openFile(path)
	if err != nil {
		return nil, err
	}
	return &writer{b: b, f: f.clone(), path: path}, nil
}

type reader struct {
	b      *Backend
	f      *file
	closed bool
}

func (r *reader) Groups() ([]container.Group, error) {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()

	if r.closed {
		return nil, errors.New(errors.ErrContainerRead, "reader is closed")
	}

	names := make([]string, 0, len(r.f.groups))
	for name := range r.f.groups {
		names = append(names, name)
	}
	sort.Strings(names)

	groups := make([]container.Group, 0, len(names))
	for _, name := range names {
		groups = append(groups, r.f.snapshot(name))
	}
	return groups, nil
}

func (r *reader) Lookup(sample string) (container.Group, bool, error) {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()

	if r.closed {
		return container.Group{}, false, errors.New(errors.ErrContainerRead, "reader is closed")
	}
	if _, ok := r.f.groups[sample]; !ok {
		return container.Group{}, false, nil
	}
	return r.f.snapshot(sample), true, nil
}

func (r *reader) ReadArray(path string) (container.Array, container.Attrs, error) {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()

	if r.closed {
		return container.Array{}, nil, errors.New(errors.ErrContainerRead, "reader is closed")
	}

	sample, name, err := container.SplitPath(path)
	if err != nil {
		return container.Array{}, nil, errors.Wrapf(err, errors.ErrPathNotFound, "no data at %s", path)
	}
	g, ok := r.f.groups[sample]
	if !ok {
		return container.Array{}, nil, errors.Newf(errors.ErrPathNotFound, "no data at %s", path)
	}
	d, ok := g.datasets[name]
	if !ok {
		return container.Array{}, nil, errors.Newf(errors.ErrPathNotFound, "no data at %s", path)
	}
	return d.array.Clone(), copyAttrs(d.attrs).Sorted(), nil
}

func (r *reader) Close() error {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()
	if !r.closed {
		r.closed = true
		r.b.open--
	}
	return nil
}

// clone copies the group and dataset maps. Datasets are never modified once
// stored and are shared.
func (f *file) clone() *file {
	out := &file{groups: make(map[string]*group, len(f.groups))}
	for name, g := range f.groups {
		datasets := make(map[string]*dataset, len(g.datasets))
		for n, d := range g.datasets {
			datasets[n] = d
		}
		out.groups[name] = &group{attrs: g.attrs, datasets: datasets}
	}
	return out
}

// snapshot copies one group; the caller holds the backend lock
func (f *file) snapshot(name string) container.Group {
	g := f.groups[name]

	names := make([]string, 0, len(g.datasets))
	for n := range g.datasets {
		names = append(names, n)
	}
	sort.Strings(names)

	out := container.Group{Name: name, Attrs: copyAttrs(g.attrs).Sorted()}
	for _, n := range names {
		d := g.datasets[n]
		shape := make([]uint64, len(d.array.Shape))
		copy(shape, d.array.Shape)
		out.Datasets = append(out.Datasets, container.Dataset{
			Name:  n,
			Shape: shape,
			Attrs: copyAttrs(d.attrs).Sorted(),
		})
	}
	return out
}

// writer works on a private copy of the file that Close swaps in
type writer struct {
	b      *Backend
	f      *file
	path   string
	closed bool
}

func (w *writer) CreateGroup(name string, attrs container.Attrs) error {
	w.b.mu.Lock()
	defer w.b.mu.Unlock()

	if w.closed {
		return errors.New(errors.ErrContainerWrite, "writer is closed")
	}
	if _, ok := w.f.groups[name]; ok {
		return errors.Newf(errors.ErrNameConflict, "group %s already exists", name)
	}
	w.f.groups[name] = &group{attrs: copyAttrs(attrs), datasets: make(map[string]*dataset)}
	return nil
}

func (w *writer) CreateDataset(path string, arr container.Array, attrs container.Attrs) error {
	w.b.mu.Lock()
	defer w.b.mu.Unlock()

	if w.closed {
		return errors.New(errors.ErrContainerWrite, "writer is closed")
	}
	if err := w.b.failWrites[w.path]; err != nil {
		return errors.Wrapf(err, errors.ErrContainerWrite, "failed to write %s", path)
	}

	sample, name, err := container.SplitPath(path)
	if err != nil {
		return err
	}
	g, ok := w.f.groups[sample]
	if !ok {
		return errors.Newf(errors.ErrContainerWrite, "group %s does not exist", sample)
	}
	if _, ok := g.datasets[name]; ok {
		return errors.Newf(errors.ErrNameConflict, "dataset %s already exists", path)
	}
	g.datasets[name] = &dataset{array: arr.Clone(), attrs: copyAttrs(attrs)}
	return nil
}

func (w *writer) Close() error {
	w.b.mu.Lock()
	defer w.b.mu.Unlock()
	if !w.closed {
		w.closed = true
		w.b.open--
		w.b.files[w.path] = w.f
	}
	return nil
}

func (w *writer) Discard() error {
	w.b.mu.Lock()
	defer w.b.mu.Unlock()
	if !w.closed {
		w.closed = true
		w.b.open--
	}
	return nil
}

func copyAttrs(a container.Attrs) container.Attrs {
	out := make(container.Attrs, len(a))
	copy(out, a)
	return out
}
