package devs

import "fmt"

// The kernel distinguishes programmer errors, which are unrecoverable and
// raised as panics carrying one of the typed errors below, from
// construction-time lookups, which return errors for the caller to handle.
// Nothing is retried: a kernel-detected inconsistency aborts the run with a
// diagnostic naming the processor and the simulation time.

// InvalidPortHostError reports a value traversing a port that is not owned
// by the model handling it.
type InvalidPortHostError struct {
	Port  *Port
	Model Model
}

func (e *InvalidPortHostError) Error() string {
	return fmt.Sprintf("port %s is not owned by model %q", e.Port, e.Model.Name())
}

// InvalidPortTypeError reports an output port used as input or vice versa.
type InvalidPortTypeError struct {
	Port *Port
	Want Direction
}

func (e *InvalidPortTypeError) Error() string {
	return fmt.Sprintf("port %s used as %s port", e.Port, e.Want)
}

// UnknownPortError reports a failed port lookup by name.
type UnknownPortError struct {
	Model Model
	Dir   Direction
	Name  string
}

func (e *UnknownPortError) Error() string {
	return fmt.Sprintf("model %q has no %s port %q", e.Model.Name(), e.Dir, e.Name)
}

// NoSuchChildError reports a failed child lookup by name.
type NoSuchChildError struct {
	Parent Model
	Name   string
}

func (e *NoSuchChildError) Error() string {
	return fmt.Sprintf("coupled model %q has no child %q", e.Parent.Name(), e.Name)
}

// UserTransitionError wraps a failure raised by user model code (a
// transition, output or time-advance function) with the model name and the
// simulation time it occurred at.
type UserTransitionError struct {
	Model string
	Op    string
	At    float64
	Cause any
}

func (e *UserTransitionError) Error() string {
	return fmt.Sprintf("model %q: %s failed at t=%g: %v", e.Model, e.Op, e.At, e.Cause)
}

// BadSynchronizationError reports a processor receiving a collect or
// transition message at a time inconsistent with its time_last/time_next
// window. It indicates a kernel bug or a malformed time-advance function.
type BadSynchronizationError struct {
	Processor string
	At        float64
	TimeLast  float64
	TimeNext  float64
}

func (e *BadSynchronizationError) Error() string {
	return fmt.Sprintf("bad synchronization for %q at t=%g: want %g <= t <= %g",
		e.Processor, e.At, e.TimeLast, e.TimeNext)
}
