// Package hdf5 stores containers as HDF5 files using the pure Go
// github.com/scigolib/hdf5 library.
package hdf5

import (
	"math"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/arthur-debert/solidhdf5/pkg/container"
	"github.com/arthur-debert/solidhdf5/pkg/errors"
	"github.com/arthur-debert/solidhdf5/pkg/logging"
	h5 "github.com/scigolib/hdf5"
)

// Element types accepted in Options.DType
const (
	DTypeFloat64 = "float64"
	DTypeFloat32 = "float32"
	DTypeInt64   = "int64"
	DTypeInt32   = "int32"
)

// Options controls how new datasets are laid out on disk
type Options struct {
	DType       string
	Compression int
	Shuffle     bool
	Checksum    bool
}

// Backend opens HDF5 files
type Backend struct {
	opts Options
}

// New creates a Backend. An empty DType means float64.
func New(opts Options) (*Backend, error) {
	if opts.DType == "" {
		opts.DType = DTypeFloat64
	}
	if _, err := datatype(opts.DType); err != nil {
		return nil, err
	}
	if opts.Compression < 0 || opts.Compression > 9 {
		return nil, errors.Newf(errors.ErrInvalidInput, "compression level %d is outside 0-9", opts.Compression)
	}
	return &Backend{opts: opts}, nil
}

func datatype(name string) (h5.Datatype, error) {
	switch name {
	case DTypeFloat64:
		return h5.Float64, nil
	case DTypeFloat32:
		return h5.Float32, nil
	case DTypeInt64:
		return h5.Int64, nil
	case DTypeInt32:
		return h5.Int32, nil
	}
	return 0, errors.Newf(errors.ErrInvalidInput, "unsupported dtype %q", name)
}

func (b *Backend) Ensure(path string) error {
	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		return errors.Newf(errors.ErrContainerInaccessible, "%s is a directory", path)
	case err == nil:
		return nil
	case !os.IsNotExist(err):
		return errors.Wrapf(err, errors.ErrContainerInaccessible, "cannot stat %s", path)
	}

	logger := logging.GetLogger("container.hdf5")
	logger.Debug().Str("path", path).Msg("creating container")

	fw, err := h5.CreateForWrite(path, h5.CreateExclusive)
	if err != nil {
		return errors.Wrapf(err, errors.ErrContainerInaccessible, "cannot create %s", path)
	}
	if err := fw.Close(); err != nil {
		return errors.Wrapf(err, errors.ErrContainerCreate, "cannot finish %s", path)
	}
	return nil
}

func (b *Backend) OpenReader(path string) (container.Reader, error) {
	f, err := h5.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrContainerInaccessible, "cannot open %s", path)
	}
	return &reader{f: f, path: path}, nil
}

type reader struct {
	f    *h5.File
	path string
}

func (r *reader) groups() map[string]*h5.Group {
	out := make(map[string]*h5.Group)
	for _, child := range r.f.Root().Children() {
		if g, ok := child.(*h5.Group); ok {
			out[leafName(g.Name())] = g
		}
	}
	return out
}

func (r *reader) Groups() ([]container.Group, error) {
	var groups []container.Group
	for _, child := range r.f.Root().Children() {
		g, ok := child.(*h5.Group)
		if !ok {
			continue
		}
		cg, err := describeGroup(g)
		if err != nil {
			return nil, err
		}
		groups = append(groups, cg)
	}
	sortGroups(groups)
	return groups, nil
}

func (r *reader) Lookup(sample string) (container.Group, bool, error) {
	g, ok := r.groups()[sample]
	if !ok {
		return container.Group{}, false, nil
	}
	cg, err := describeGroup(g)
	if err != nil {
		return container.Group{}, false, err
	}
	return cg, true, nil
}

func (r *reader) ReadArray(path string) (container.Array, container.Attrs, error) {
	sample, name, err := container.SplitPath(path)
	if err != nil {
		return container.Array{}, nil, errors.Wrapf(err, errors.ErrPathNotFound, "no data at %s", path)
	}
	g, ok := r.groups()[sample]
	if !ok {
		return container.Array{}, nil, errors.Newf(errors.ErrPathNotFound, "no data at %s", path)
	}
	ds := findDataset(g, name)
	if ds == nil {
		return container.Array{}, nil, errors.Newf(errors.ErrPathNotFound, "no data at %s", path)
	}

	data, err := ds.Read()
	if err != nil {
		return container.Array{}, nil, errors.Wrapf(err, errors.ErrContainerRead, "cannot read %s", path)
	}
	shape := datasetShape(ds, len(data))
	arr, err := container.NewArray(shape, data)
	if err != nil {
		// a dataspace we could not parse; fall back to a flat vector
		arr = container.Array{Shape: []uint64{uint64(len(data))}, Data: data}
	}

	attrs, err := datasetAttrs(ds)
	if err != nil {
		return container.Array{}, nil, errors.Wrapf(err, errors.ErrContainerRead, "cannot read attributes of %s", path)
	}
	return arr, attrs, nil
}

func (r *reader) Close() error {
	if r.f == nil {
		return nil
	}
	err := r.f.Close()
	r.f = nil
	if err != nil {
		return errors.Wrapf(err, errors.ErrContainerRead, "cannot close %s", r.path)
	}
	return nil
}

// leafName strips the parent path the library may report with a name
func leafName(name string) string {
	name = strings.Trim(name, "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[i+1:]
	}
	return name
}

func findDataset(g *h5.Group, name string) *h5.Dataset {
	for _, child := range g.Children() {
		if ds, ok := child.(*h5.Dataset); ok && leafName(ds.Name()) == name {
			return ds
		}
	}
	return nil
}

func describeGroup(g *h5.Group) (container.Group, error) {
	name := leafName(g.Name())
	attrs, err := groupAttrs(g)
	if err != nil {
		return container.Group{}, errors.Wrapf(err, errors.ErrContainerRead, "cannot read attributes of %s", name)
	}

	cg := container.Group{Name: name, Attrs: attrs}
	for _, child := range g.Children() {
		ds, ok := child.(*h5.Dataset)
		if !ok {
			continue
		}
		dattrs, err := datasetAttrs(ds)
		if err != nil {
			return container.Group{}, errors.Wrapf(err, errors.ErrContainerRead,
				"cannot read attributes of %s/%s", name, ds.Name())
		}
		cg.Datasets = append(cg.Datasets, container.Dataset{
			Name:  leafName(ds.Name()),
			Shape: datasetShape(ds, -1),
			Attrs: dattrs,
		})
	}
	sortDatasets(cg.Datasets)
	return cg, nil
}

func groupAttrs(g *h5.Group) (container.Attrs, error) {
	list, err := g.Attributes()
	if err != nil {
		return nil, err
	}
	attrs := make(container.Attrs, 0, len(list))
	for _, a := range list {
		attrs = append(attrs, readAttr(a.Name, a.ReadValue))
	}
	return attrs.Sorted(), nil
}

func datasetAttrs(ds *h5.Dataset) (container.Attrs, error) {
	list, err := ds.Attributes()
	if err != nil {
		return nil, err
	}
	attrs := make(container.Attrs, 0, len(list))
	for _, a := range list {
		attrs = append(attrs, readAttr(a.Name, a.ReadValue))
	}
	return attrs.Sorted(), nil
}

// readAttr keeps attributes whose value cannot be decoded (variable-length
// strings among them) in the listing with a nil value
func readAttr(name string, read func() (interface{}, error)) container.Attr {
	v, err := read()
	if err != nil {
		logger := logging.GetLogger("container.hdf5")
		logger.Debug().Err(err).Str("attr", name).Msg("unreadable attribute")
		v = nil
	}
	return container.Attr{Name: name, Value: v}
}

var dataspacePattern = regexp.MustCompile(`(\d+)D array \[([^\]]*)\]`)

// datasetShape recovers the dimensions from the dataspace part of Info.
// n is the element count when known, or -1.
func datasetShape(ds *h5.Dataset, n int) []uint64 {
	info, err := ds.Info()
	if err == nil {
		if shape := parseDataspace(info); shape != nil {
			return shape
		}
	}
	if n >= 0 {
		return []uint64{uint64(n)}
	}
	return nil
}

func parseDataspace(info string) []uint64 {
	m := dataspacePattern.FindStringSubmatch(info)
	if m == nil {
		return nil
	}
	rank, _ := strconv.Atoi(m[1])
	fields := strings.FieldsFunc(m[2], func(r rune) bool { return r < '0' || r > '9' })
	if len(fields) != rank {
		return nil
	}
	shape := make([]uint64, 0, rank)
	for _, f := range fields {
		d, err := strconv.ParseUint(f, 10, 64)
		if err != nil {
			return nil
		}
		shape = append(shape, d)
	}
	return shape
}

// convert turns the float64 buffer into the slice type Write expects for dtype.
// Integer types round to the nearest value.
func convert(data []float64, dtype string) interface{} {
	switch dtype {
	case DTypeFloat32:
		out := make([]float32, len(data))
		for i, v := range data {
			out[i] = float32(v)
		}
		return out
	case DTypeInt64:
		out := make([]int64, len(data))
		for i, v := range data {
			out[i] = int64(math.Round(v))
		}
		return out
	case DTypeInt32:
		out := make([]int32, len(data))
		for i, v := range data {
			out[i] = int32(math.Round(v))
		}
		return out
	}
	out := make([]float64, len(data))
	copy(out, data)
	return out
}

// attrValue passes through the value types the library can write and
// formats everything else as a string
func attrValue(v interface{}) interface{} {
	switch v.(type) {
	case string,
		int8, int16, int32, int64,
		uint8, uint16, uint32, uint64,
		float32, float64,
		[]int32, []int64, []float32, []float64:
		return v
	case int:
		return int64(v.(int))
	}
	return container.FormatValue(v)
}

func sortGroups(groups []container.Group) {
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
}

func sortDatasets(datasets []container.Dataset) {
	sort.Slice(datasets, func(i, j int) bool { return datasets[i].Name < datasets[j].Name })
}
