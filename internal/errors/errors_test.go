package apperrors

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

var errNoPoint = errors.New("viewport fitting failed")

func TestErrorMessages(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"Config", ConfigError{Message: "-n must be positive"}, "-n must be positive"},
		{"ConfigFormatted", NewConfigError("invalid -grid %q", "8y4"), `invalid -grid "8y4"`},
		{"Classification", ClassificationError{Point: complex(-1.75, 0), Cause: errors.New("max iterations must be positive")}, "classify (-1.75+0i): max iterations must be positive"},
		{"ClassificationOrigin", ClassificationError{Cause: context.Canceled}, "classify (0+0i): context canceled"},
		{"Fitting", FittingError{Cause: fmt.Errorf("%w: no sample survived 32 iterations", errNoPoint)}, "viewport fitting failed: no sample survived 32 iterations"},
		{"Timeout", TimeoutError{Operation: "sweep", Limit: 30 * time.Second}, `operation "sweep" timed out after 30s`},
		{"TimeoutSubsecond", TimeoutError{Operation: "viewport fit", Limit: 250 * time.Millisecond}, `operation "viewport fit" timed out after 250ms`},
		{"Validation", ValidationError{Field: "re", Message: "must be a finite number"}, `validation error for "re": must be a finite number`},
		{"Limit", LimitError{Name: "sweep cells", Requested: 90000, Limit: 65536}, "sweep cells 90000 exceeds limit 65536"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorChains(t *testing.T) {
	t.Parallel()

	t.Run("FittingUnwrapsToSentinel", func(t *testing.T) {
		t.Parallel()
		err := WrapError(FittingError{Cause: fmt.Errorf("%w: empty scan", errNoPoint)}, "startup")
		if !errors.Is(err, errNoPoint) {
			t.Error("errors.Is should reach the fitting sentinel")
		}
		var fe FittingError
		if !errors.As(err, &fe) {
			t.Error("errors.As should recover the FittingError")
		}
	})
	t.Run("ClassificationKeepsCause", func(t *testing.T) {
		t.Parallel()
		inner := LimitError{Name: "max iterations", Requested: 4096, Limit: 2048}
		err := ClassificationError{Point: 1i, Cause: inner}
		if err.Unwrap() != error(inner) {
			t.Error("Unwrap should return the cause")
		}
		var le LimitError
		if !errors.As(err, &le) || le != inner {
			t.Errorf("errors.As = %+v, want %+v", le, inner)
		}
	})
	t.Run("TimeoutFields", func(t *testing.T) {
		t.Parallel()
		err := WrapError(TimeoutError{Operation: "classify", Limit: time.Minute}, "run")
		var te TimeoutError
		if !errors.As(err, &te) || te.Operation != "classify" || te.Limit != time.Minute {
			t.Errorf("errors.As = %+v", te)
		}
	})
	t.Run("ValidationThroughWrap", func(t *testing.T) {
		t.Parallel()
		var ve ValidationError
		if !errors.As(WrapError(ValidationError{Field: "n"}, "request"), &ve) || ve.Field != "n" {
			t.Errorf("errors.As = %+v", ve)
		}
	})
}

func TestWrapError(t *testing.T) {
	t.Parallel()
	if WrapError(nil, "ignored") != nil {
		t.Error("WrapError(nil) should be nil")
	}
	err := WrapError(context.DeadlineExceeded, "sweep %dx%d", 8, 4)
	if err.Error() != "sweep 8x4: context deadline exceeded" {
		t.Errorf("message = %q", err.Error())
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("WrapError should keep the chain")
	}
}

func TestIsContextError(t *testing.T) {
	t.Parallel()
	for err, want := range map[error]bool{
		context.Canceled:                        true,
		context.DeadlineExceeded:                true,
		WrapError(context.Canceled, "sweep row"): true,
		FittingError{Cause: context.Canceled}:   true,
		errNoPoint:                              false,
	} {
		if got := IsContextError(err); got != want {
			t.Errorf("IsContextError(%v) = %v, want %v", err, got, want)
		}
	}
	if IsContextError(nil) {
		t.Error("IsContextError(nil) should be false")
	}
}

func TestExitCodesAreDistinct(t *testing.T) {
	t.Parallel()
	codes := []int{ExitSuccess, ExitErrorGeneric, ExitErrorTimeout, ExitErrorFitting, ExitErrorConfig, ExitErrorCanceled}
	seen := map[int]bool{}
	for _, c := range codes {
		if seen[c] {
			t.Errorf("exit code %d is used twice", c)
		}
		seen[c] = true
	}
	if ExitSuccess != 0 || ExitErrorCanceled != 130 {
		t.Errorf("success/canceled = %d/%d, want 0/130", ExitSuccess, ExitErrorCanceled)
	}
}

func TestExitCodeFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"Nil", nil, ExitSuccess},
		{"Generic", errors.New("boom"), ExitErrorGeneric},
		{"Config", NewConfigError("bad flag"), ExitErrorConfig},
		{"Validation", ValidationError{Field: "n", Message: "must be positive"}, ExitErrorConfig},
		{"Limit", LimitError{Name: "n", Requested: 2, Limit: 1}, ExitErrorGeneric},
		{"Timeout", TimeoutError{Operation: "sweep", Limit: time.Second}, ExitErrorTimeout},
		{"Deadline", WrapError(context.DeadlineExceeded, "sweep"), ExitErrorTimeout},
		{"Canceled", WrapError(context.Canceled, "sweep"), ExitErrorCanceled},
		{"Fitting", FittingError{Cause: errNoPoint}, ExitErrorFitting},
		{"WrappedFitting", WrapError(FittingError{Cause: errNoPoint}, "startup"), ExitErrorFitting},
		{"CanceledFit", FittingError{Cause: context.Canceled}, ExitErrorCanceled},
		{"Classification", ClassificationError{Cause: errors.New("boom")}, ExitErrorGeneric},
		{"CanceledClassification", ClassificationError{Cause: context.Canceled}, ExitErrorCanceled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ExitCodeFor(tt.err); got != tt.want {
				t.Errorf("ExitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
