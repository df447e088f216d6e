package assert

import (
	"reflect"
	"testing"
)

// Equal errors if actual is not equal to expected.
func Equal(t *testing.T, expected, actual any, msg ...any) {
	t.Helper()

	if reflect.DeepEqual(expected, actual) {
		return
	}

	t.Errorf("expected: %v, actual: %v", expected, actual)

	if len(msg) != 0 {
		t.Errorf(msg[0].(string), msg[1:]...)
	}

	t.FailNow()
}

// True errors if condition is false.
func True(t *testing.T, condition bool, msg ...any) {
	t.Helper()

	if condition {
		return
	}

	t.Errorf("condition is false")

	if len(msg) != 0 {
		t.Errorf(msg[0].(string), msg[1:]...)
	}

	t.FailNow()
}

// False errors if condition is true.
func False(t *testing.T, condition bool, msg ...any) {
	t.Helper()

	if !condition {
		return
	}

	t.Errorf("condition is true")

	if len(msg) != 0 {
		t.Errorf(msg[0].(string), msg[1:]...)
	}

	t.FailNow()
}

// Panics errors unless running f results in a panic.  The recovered value is
// returned so callers can inspect it.
func Panics(t *testing.T, f func()) (recovered any) {
	t.Helper()

	defer func() {
		recovered = recover()
		if recovered == nil {
			t.Errorf("expected panic, got none")
			t.FailNow()
		}
	}()

	f()

	return nil
}
