package hdf5

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/arthur-debert/solidhdf5/pkg/container"
	"github.com/arthur-debert/solidhdf5/pkg/errors"
	"github.com/arthur-debert/solidhdf5/pkg/logging"
	h5 "github.com/scigolib/hdf5"
)

type stagedDataset struct {
	array container.Array
	attrs container.Attrs
	dtype string
}

type stagedGroup struct {
	attrs    container.Attrs
	datasets map[string]*stagedDataset
}

// writer holds the whole container in memory. Close writes it out as a new
// file next to the original and renames it into place, so the library only
// ever builds a file in a single CreateForWrite session and never links into
// groups of a file it reopened.
type writer struct {
	path   string
	opts   Options
	groups map[string]*stagedGroup
	dirty  bool
	closed bool
}

// OpenWriter reads the existing container so Close can rewrite it with the
// staged additions
func (b *Backend) OpenWriter(path string) (container.Writer, error) {
	groups, err := snapshot(path)
	if err != nil {
		return nil, err
	}
	return &writer{path: path, opts: b.opts, groups: groups}, nil
}

func snapshot(path string) (map[string]*stagedGroup, error) {
	f, err := h5.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrContainerInaccessible, "cannot open %s for writing", path)
	}
	defer func() { _ = f.Close() }()

	groups := make(map[string]*stagedGroup)
	for _, child := range f.Root().Children() {
		g, ok := child.(*h5.Group)
		if !ok {
			continue
		}
		name := leafName(g.Name())
		attrs, err := groupAttrs(g)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrContainerRead, "cannot read attributes of %s", name)
		}
		sg := &stagedGroup{attrs: attrs, datasets: make(map[string]*stagedDataset)}
		for _, gc := range g.Children() {
			ds, ok := gc.(*h5.Dataset)
			if !ok {
				continue
			}
			sd, err := readStaged(ds)
			if err != nil {
				return nil, errors.Wrapf(err, errors.ErrContainerRead, "cannot read %s/%s", name, leafName(ds.Name()))
			}
			sg.datasets[leafName(ds.Name())] = sd
		}
		groups[name] = sg
	}
	return groups, nil
}

func readStaged(ds *h5.Dataset) (*stagedDataset, error) {
	data, err := ds.Read()
	if err != nil {
		return nil, err
	}
	arr := container.Array{Shape: datasetShape(ds, len(data)), Data: data}
	if arr.Validate() != nil {
		arr.Shape = []uint64{uint64(len(data))}
	}
	attrs, err := datasetAttrs(ds)
	if err != nil {
		return nil, err
	}
	return &stagedDataset{array: arr, attrs: attrs, dtype: datasetDType(ds)}, nil
}

var datatypePattern = regexp.MustCompile(`(integer|float) \(size=(\d+) bytes\)`)

// datasetDType maps the datatype part of Info back to an element type so a
// rewrite keeps what the dataset was stored as
func datasetDType(ds *h5.Dataset) string {
	info, err := ds.Info()
	if err != nil {
		return DTypeFloat64
	}
	return parseDatatype(info)
}

func parseDatatype(info string) string {
	m := datatypePattern.FindStringSubmatch(info)
	if m == nil {
		return DTypeFloat64
	}
	size, _ := strconv.Atoi(m[2])
	switch {
	case m[1] == "integer" && size <= 4:
		return DTypeInt32
	case m[1] == "integer":
		return DTypeInt64
	case size == 4:
		return DTypeFloat32
	}
	return DTypeFloat64
}

func (w *writer) CreateGroup(name string, attrs container.Attrs) error {
	if w.closed {
		return errors.New(errors.ErrContainerWrite, "writer is closed")
	}
	if err := container.ValidateName("sample", name); err != nil {
		return err
	}
	if _, ok := w.groups[name]; ok {
		return errors.Newf(errors.ErrNameConflict, "group %s already exists", name)
	}
	w.groups[name] = &stagedGroup{attrs: copyAttrs(attrs), datasets: make(map[string]*stagedDataset)}
	w.dirty = true
	return nil
}

func (w *writer) CreateDataset(path string, arr container.Array, attrs container.Attrs) error {
	if w.closed {
		return errors.New(errors.ErrContainerWrite, "writer is closed")
	}
	if err := arr.Validate(); err != nil {
		return err
	}
	sample, name, err := container.SplitPath(path)
	if err != nil {
		return err
	}
	g, ok := w.groups[sample]
	if !ok {
		return errors.Newf(errors.ErrContainerWrite, "group %s does not exist", sample)
	}
	if _, ok := g.datasets[name]; ok {
		return errors.Newf(errors.ErrNameConflict, "dataset %s already exists", path)
	}
	g.datasets[name] = &stagedDataset{array: arr.Clone(), attrs: copyAttrs(attrs), dtype: w.opts.DType}
	w.dirty = true
	return nil
}

func (w *writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	groups := w.groups
	w.groups = nil
	if !w.dirty {
		return nil
	}
	return w.commit(groups)
}

func (w *writer) Discard() error {
	w.closed = true
	w.groups = nil
	return nil
}

// commit writes groups to a temp file in the container's directory and
// renames it over the container
func (w *writer) commit(groups map[string]*stagedGroup) error {
	logger := logging.GetLogger("container.hdf5")

	tmp, err := os.CreateTemp(filepath.Dir(w.path), "."+filepath.Base(w.path)+".*.tmp")
	if err != nil {
		return errors.Wrapf(err, errors.ErrContainerWrite, "cannot create temporary file for %s", w.path)
	}
	name := tmp.Name()
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return errors.Wrapf(err, errors.ErrContainerWrite, "cannot create temporary file for %s", w.path)
	}

	if err := w.writeFile(name, groups); err != nil {
		_ = os.Remove(name)
		return err
	}
	if info, err := os.Stat(w.path); err == nil {
		_ = os.Chmod(name, info.Mode().Perm())
	}
	if err := os.Rename(name, w.path); err != nil {
		_ = os.Remove(name)
		return errors.Wrapf(err, errors.ErrContainerWrite, "cannot replace %s", w.path)
	}

	logger.Debug().Str("path", w.path).Int("groups", len(groups)).Msg("container rewritten")
	return nil
}

func (w *writer) writeFile(name string, groups map[string]*stagedGroup) (err error) {
	fw, err := h5.CreateForWrite(name, h5.CreateTruncate)
	if err != nil {
		return errors.Wrapf(err, errors.ErrContainerWrite, "cannot create %s", name)
	}
	defer func() {
		if cerr := fw.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, errors.ErrContainerWrite, "cannot finish %s", w.path)
		}
	}()

	for _, gname := range sortedKeys(groups) {
		sg := groups[gname]
		g, err := fw.CreateGroup("/" + gname)
		if err != nil {
			return errors.Wrapf(err, errors.ErrContainerWrite, "cannot create group %s", gname)
		}
		for _, a := range sg.attrs {
			if err := g.WriteAttribute(a.Name, attrValue(a.Value)); err != nil {
				return errors.Wrapf(err, errors.ErrContainerWrite, "cannot write attribute %s on %s", a.Name, gname)
			}
		}
		for _, dname := range sortedKeys(sg.datasets) {
			if err := w.writeDataset(fw, container.JoinPath(gname, dname), sg.datasets[dname]); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *writer) writeDataset(fw *h5.FileWriter, path string, sd *stagedDataset) error {
	dtype, err := datatype(sd.dtype)
	if err != nil {
		return err
	}
	dw, err := fw.CreateDataset("/"+path, dtype, sd.array.Shape, w.datasetOptions(sd.array.Shape)...)
	if err != nil {
		return errors.Wrapf(err, errors.ErrContainerWrite, "cannot create dataset %s", path)
	}
	if err := dw.Write(convert(sd.array.Data, sd.dtype)); err != nil {
		_ = dw.Close()
		return errors.Wrapf(err, errors.ErrContainerWrite, "cannot write dataset %s", path)
	}
	for _, a := range sd.attrs {
		if err := dw.WriteAttribute(a.Name, attrValue(a.Value)); err != nil {
			_ = dw.Close()
			return errors.Wrapf(err, errors.ErrContainerWrite, "cannot write attribute %s on %s", a.Name, path)
		}
	}
	if err := dw.Close(); err != nil {
		return errors.Wrapf(err, errors.ErrContainerWrite, "cannot close dataset %s", path)
	}
	return nil
}

func (w *writer) datasetOptions(shape []uint64) []h5.DatasetOption {
	var opts []h5.DatasetOption
	if w.opts.Compression > 0 || w.opts.Shuffle || w.opts.Checksum {
		// filters need a chunked layout; one chunk covers the whole array
		chunk := make([]uint64, len(shape))
		copy(chunk, shape)
		opts = append(opts, h5.WithChunkDims(chunk))
	}
	if w.opts.Shuffle {
		opts = append(opts, h5.WithShuffle())
	}
	if w.opts.Compression > 0 {
		opts = append(opts, h5.WithGZIPCompression(w.opts.Compression))
	}
	if w.opts.Checksum {
		opts = append(opts, h5.WithFletcher32())
	}
	return opts
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func copyAttrs(a container.Attrs) container.Attrs {
	out := make(container.Attrs, len(a))
	copy(out, a)
	return out
}

