// Package testutil provides utilities for testing solidhdf5 components.
//
// Key components:
//   - TestEnvironment: isolates the config, data and state directories and
//     the working directory, and owns a memory backend
//   - WriteFile / WriteArray / AssertArrayFile: input fixtures and output
//     checks that fail the test on error
//   - Sequence / MustArray: array builders for store and backend tests
//
// Usage guidelines:
//   - Use the memory backend unless the test is about HDF5 files
//   - All test data should be defined inline, not in external files
//   - Each test should be completely isolated with no shared state
package testutil
