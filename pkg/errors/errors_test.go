// pkg/errors/errors_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test error creation, wrapping, and utility functions

package errors_test

import (
	stderrors "errors"
	"testing"

	"github.com/arthur-debert/solidhdf5/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    errors.ErrorCode
		message string
		wantStr string
	}{
		{
			name:    "path_not_found_error",
			code:    errors.ErrPathNotFound,
			message: "no data at EA0000/PESlt1",
			wantStr: "[PATH_NOT_FOUND] no data at EA0000/PESlt1",
		},
		{
			name:    "invalid_input_error",
			code:    errors.ErrInvalidInput,
			message: "sample name is empty",
			wantStr: "[INVALID_INPUT] sample name is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.New(tt.code, tt.message)

			if err.Code != tt.code {
				t.Errorf("New() code = %v, want %v", err.Code, tt.code)
			}

			if err.Message != tt.message {
				t.Errorf("New() message = %q, want %q", err.Message, tt.message)
			}

			if err.Details == nil {
				t.Error("New() details should be initialized")
			}

			if got := err.Error(); got != tt.wantStr {
				t.Errorf("Error() = %q, want %q", got, tt.wantStr)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := errors.Newf(errors.ErrNameConflict, "dataset %s/%s already exists", "EA0000", "PESlt1")
	if err.Message != "dataset EA0000/PESlt1 already exists" {
		t.Errorf("Newf() message = %q", err.Message)
	}
}

func TestWrap(t *testing.T) {
	baseErr := stderrors.New("permission denied")

	t.Run("wrap_non_nil_error", func(t *testing.T) {
		err := errors.Wrap(baseErr, errors.ErrContainerInaccessible, "cannot open container")

		if err.Code != errors.ErrContainerInaccessible {
			t.Errorf("Wrap() code = %v, want %v", err.Code, errors.ErrContainerInaccessible)
		}

		if err.Wrapped != baseErr {
			t.Error("Wrap() should preserve wrapped error")
		}

		wantStr := "[CONTAINER_INACCESSIBLE] cannot open container: permission denied"
		if got := err.Error(); got != wantStr {
			t.Errorf("Error() = %q, want %q", got, wantStr)
		}
	})

	t.Run("wrap_nil_error_returns_nil", func(t *testing.T) {
		err := errors.Wrap(nil, errors.ErrInternal, "internal error")
		if err != nil {
			t.Error("Wrap(nil) should return nil")
		}
	})

	t.Run("wrapf_formats_message", func(t *testing.T) {
		err := errors.Wrapf(baseErr, errors.ErrContainerWrite, "writing %s", "EA0000/PESlt1")
		assert.Equal(t, "writing EA0000/PESlt1", err.Message)
	})
}

func TestWithDetail(t *testing.T) {
	err := errors.New(errors.ErrPathNotFound, "not found").
		WithDetail("container", "/data/solid.h5").
		WithDetail("path", "EA0000/PESlt1")

	assert.Equal(t, "/data/solid.h5", err.Details["container"])
	assert.Equal(t, "EA0000/PESlt1", err.Details["path"])
}

func TestWithDetails(t *testing.T) {
	details := map[string]interface{}{
		"container": "/data/solid.h5",
		"timeout":   "10s",
	}

	err := errors.New(errors.ErrLockTimeout, "lock not acquired").WithDetails(details)

	for k, v := range details {
		assert.Equal(t, v, err.Details[k], k)
	}
	assert.Equal(t, details, errors.GetErrorDetails(err))
	assert.Nil(t, errors.GetErrorDetails(stderrors.New("plain")))
}

func TestIs(t *testing.T) {
	err1 := errors.New(errors.ErrNameConflict, "error 1")
	err2 := errors.New(errors.ErrNameConflict, "error 2")
	err3 := errors.New(errors.ErrInternal, "error 3")

	t.Run("same_code_is_equal", func(t *testing.T) {
		assert.True(t, err1.Is(err2))
	})

	t.Run("different_code_not_equal", func(t *testing.T) {
		assert.False(t, err1.Is(err3))
	})

	t.Run("works_with_errors_Is", func(t *testing.T) {
		assert.True(t, stderrors.Is(err1, err2))
	})
}

func TestIsErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     errors.ErrorCode
		expected bool
	}{
		{
			name:     "matching_code",
			err:      errors.New(errors.ErrPathNotFound, "not found"),
			code:     errors.ErrPathNotFound,
			expected: true,
		},
		{
			name:     "different_code",
			err:      errors.New(errors.ErrPathNotFound, "not found"),
			code:     errors.ErrInternal,
			expected: false,
		},
		{
			name:     "wrapped_error",
			err:      errors.Wrap(stderrors.New("base"), errors.ErrContainerRead, "denied"),
			code:     errors.ErrContainerRead,
			expected: true,
		},
		{
			name:     "non_solid_error",
			err:      stderrors.New("standard error"),
			code:     errors.ErrPathNotFound,
			expected: false,
		},
		{
			name:     "nil_error",
			err:      nil,
			code:     errors.ErrPathNotFound,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, errors.IsErrorCode(tt.err, tt.code))
		})
	}
}

func TestHasErrorCode(t *testing.T) {
	rootCause := stderrors.New("disk full")
	writeErr := errors.Wrap(rootCause, errors.ErrContainerWrite, "cannot write dataset")
	outer := errors.Wrap(writeErr, errors.ErrInternal, "store failed")

	assert.True(t, errors.HasErrorCode(outer, errors.ErrInternal))
	assert.True(t, errors.HasErrorCode(outer, errors.ErrContainerWrite))
	assert.False(t, errors.HasErrorCode(outer, errors.ErrLockTimeout))
	assert.False(t, errors.IsErrorCode(outer, errors.ErrContainerWrite))
	assert.False(t, errors.HasErrorCode(nil, errors.ErrInternal))
}

func TestGetErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected errors.ErrorCode
	}{
		{
			name:     "solid_error",
			err:      errors.New(errors.ErrManifestInvalid, "bad manifest"),
			expected: errors.ErrManifestInvalid,
		},
		{
			name:     "standard_error",
			err:      stderrors.New("standard error"),
			expected: errors.ErrUnknown,
		},
		{
			name:     "nil_error",
			err:      nil,
			expected: errors.ErrUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, errors.GetErrorCode(tt.err))
		})
	}
}

func TestErrorChaining(t *testing.T) {
	rootCause := stderrors.New("root cause")
	readErr := errors.Wrap(rootCause, errors.ErrContainerRead, "cannot read group")
	configErr := errors.Wrap(readErr, errors.ErrConfigLoad, "failed to load config")

	t.Run("top_level_has_correct_code", func(t *testing.T) {
		assert.True(t, errors.IsErrorCode(configErr, errors.ErrConfigLoad))
	})

	t.Run("can_find_middle_error", func(t *testing.T) {
		var solidErr *errors.SolidError
		if assert.True(t, stderrors.As(configErr.Unwrap(), &solidErr)) {
			assert.Equal(t, errors.ErrContainerRead, solidErr.Code)
		}
	})

	t.Run("can_find_root_cause", func(t *testing.T) {
		assert.True(t, stderrors.Is(configErr, rootCause))
	})
}
