package container

import (
	"path"
	"strings"

	"github.com/arthur-debert/solidhdf5/pkg/errors"
)

// Attribute names written by the store operation
const (
	AttrProject   = "Project"
	AttrMaterial  = "Material"
	AttrAxisnames = "Axisnames"
	AttrDate      = "Date"
	AttrTime      = "Time"
	AttrMethod    = "Method"
)

// Backend opens containers by file path
type Backend interface {
	// Ensure creates an empty container at path if none exists.
	// Existing content is never touched.
	Ensure(path string) error

	// OpenReader opens the container read-only. A container that cannot be
	// opened yields an ErrContainerInaccessible error.
	OpenReader(path string) (Reader, error)

	// OpenWriter opens an existing container for appending.
	OpenWriter(path string) (Writer, error)
}

// Reader is a read-only view of one container
type Reader interface {
	// Groups lists the top-level sample groups in name order
	Groups() ([]Group, error)

	// Lookup finds one sample group by name
	Lookup(sample string) (Group, bool, error)

	// ReadArray reads the dataset at a sample/dataset path together with its
	// attributes. A missing path yields an ErrPathNotFound error.
	ReadArray(path string) (Array, Attrs, error)

	Close() error
}

// Writer appends groups and datasets to one container. Changes are staged
// and reach the container only on Close; Discard drops them, so a failed
// write leaves the container as it was.
type Writer interface {
	// CreateGroup creates a top-level group and writes its attributes
	CreateGroup(name string, attrs Attrs) error

	// CreateDataset creates the dataset at sample/dataset, writes arr into it
	// and attaches attrs. The sample group must exist, staged or on disk.
	CreateDataset(path string, arr Array, attrs Attrs) error

	// Close commits the staged changes
	Close() error

	// Discard releases the writer without committing anything
	Discard() error
}

// Group is a top-level sample group as seen by a Reader
type Group struct {
	Name     string    `json:"name"`
	Attrs    Attrs     `json:"attrs"`
	Datasets []Dataset `json:"datasets"`
}

// Dataset is a dataset entry inside a group listing
type Dataset struct {
	Name  string   `json:"name"`
	Shape []uint64 `json:"shape,omitempty"`
	Attrs Attrs    `json:"attrs"`
}

// HasDataset reports whether the group holds a dataset called name
func (g Group) HasDataset(name string) bool {
	for _, d := range g.Datasets {
		if d.Name == name {
			return true
		}
	}
	return false
}

// JoinPath builds the sample/dataset path of a dataset
func JoinPath(sample, dataset string) string {
	return sample + "/" + dataset
}

// SplitPath splits a load path into its sample and dataset parts.
// Leading and trailing slashes are ignored.
func SplitPath(p string) (sample, dataset string, err error) {
	clean := strings.Trim(path.Clean("/"+p), "/")
	parts := strings.Split(clean, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errors.Newf(errors.ErrInvalidInput, "path %q is not of the form sample/dataset", p)
	}
	return parts[0], parts[1], nil
}

// ValidateName checks a sample or dataset name
func ValidateName(kind, name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return errors.Newf(errors.ErrInvalidInput, "%s name is empty", kind)
	case strings.Contains(name, "/"):
		return errors.Newf(errors.ErrInvalidInput, "%s name %q contains '/'", kind, name)
	case name == "." || name == "..":
		return errors.Newf(errors.ErrInvalidInput, "%s name %q is reserved", kind, name)
	}
	return nil
}
