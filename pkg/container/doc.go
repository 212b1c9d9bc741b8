// Package container defines the contract solidhdf5 needs from a
// hierarchical data file and the value types that cross it.
//
// A container holds top-level sample groups. Each group carries attributes
// and holds named datasets; each dataset is an n-dimensional numeric array
// with its own attributes:
//
//	/<sample>            group   attrs: Project, Material
//	/<sample>/<dataset>  dataset attrs: Axisnames, Date, Time, Method
//
// Backends implement Backend, Reader and Writer. The hdf5 subpackage talks
// to real HDF5 files; the memory subpackage keeps everything in process and
// is used by tests.
//
// Attribute values are kept typed (string, integer, float or slices of
// those) and only turned into text by FormatValue when displayed.
package container
