package errors

import (
	"errors"
	"testing"
)

func TestAppError(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		err := New(ErrorTypeInvalidConfiguration, "bad config")
		if err.Type != ErrorTypeInvalidConfiguration {
			t.Errorf("Type = %v, want %v", err.Type, ErrorTypeInvalidConfiguration)
		}
		if err.Error() != "invalid_configuration: bad config" {
			t.Errorf("Error() = %v", err.Error())
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		baseErr := errors.New("connection refused")
		err := Wrap(baseErr, ErrorTypeExternal, "redis dial failed")

		if err.Type != ErrorTypeExternal {
			t.Errorf("Type = %v, want %v", err.Type, ErrorTypeExternal)
		}
		if err.Err != baseErr {
			t.Errorf("Err = %v, want %v", err.Err, baseErr)
		}
		if err.Error() != "external: redis dial failed: connection refused" {
			t.Errorf("Error() = %v", err.Error())
		}
		if errors.Unwrap(err) != baseErr {
			t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), baseErr)
		}
	})

	t.Run("WithContext", func(t *testing.T) {
		err := New(ErrorTypeNotFound, "no such corpus").WithContext("corpus_id", "abc")
		if val, ok := err.Context["corpus_id"]; !ok || val != "abc" {
			t.Errorf("Context corpus_id = %v, want abc", val)
		}
	})

	t.Run("Is", func(t *testing.T) {
		err := New(ErrorTypeInvalidConfiguration, "bad")
		if !Is(err, ErrorTypeInvalidConfiguration) {
			t.Error("Is(ErrorTypeInvalidConfiguration) should be true")
		}
		if Is(err, ErrorTypeNotFound) {
			t.Error("Is(ErrorTypeNotFound) should be false")
		}

		stdErr := errors.New("plain error")
		if Is(stdErr, ErrorTypeInvalidConfiguration) {
			t.Error("Is(stdErr, ErrorTypeInvalidConfiguration) should be false")
		}
	})

	t.Run("OversizedSegmentError", func(t *testing.T) {
		err := OversizedSegmentError(3, 7, 500)
		if err.Type != ErrorTypeOversizedSegment {
			t.Errorf("Type = %v, want %v", err.Type, ErrorTypeOversizedSegment)
		}
		if err.Context["document_id"] != 3 || err.Context["segment_index"] != 7 || err.Context["length"] != 500 {
			t.Errorf("Context = %+v, missing expected fields", err.Context)
		}
	})

	t.Run("Constructors", func(t *testing.T) {
		tests := []struct {
			name string
			err  *AppError
			typ  ErrorType
		}{
			{"InvalidConfigurationError", InvalidConfigurationError("msg"), ErrorTypeInvalidConfiguration},
			{"NotFoundError", NotFoundError("msg"), ErrorTypeNotFound},
			{"InternalError", InternalError("msg"), ErrorTypeInternal},
			{"ExternalError", ExternalError("msg", nil), ErrorTypeExternal},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if tt.err.Type != tt.typ {
					t.Errorf("Type = %v, want %v", tt.err.Type, tt.typ)
				}
			})
		}
	})
}
