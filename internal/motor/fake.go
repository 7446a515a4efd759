package motor

import "fmt"

// Fake is a Driver test double that records the drive call sequence.
type Fake struct {
	// Ops collects calls as "forward:75", "reverse:75", "stop".
	Ops []string
	// FailAfter, when positive, makes every call past that many succeed
	// calls return an error.
	FailAfter int

	calls int
}

// Forward implements Driver.
func (f *Fake) Forward(strength int) error {
	return f.record(fmt.Sprintf("forward:%d", strength))
}

// Reverse implements Driver.
func (f *Fake) Reverse(strength int) error {
	return f.record(fmt.Sprintf("reverse:%d", strength))
}

// Stop implements Driver.
func (f *Fake) Stop() error {
	return f.record("stop")
}

func (f *Fake) record(op string) error {
	f.calls++
	if f.FailAfter > 0 && f.calls > f.FailAfter {
		return fmt.Errorf("drive failure injected at call %d", f.calls)
	}

	f.Ops = append(f.Ops, op)

	return nil
}

// FakeCancel is a Canceler test double that reports cancellation after a
// scripted number of polls.
type FakeCancel struct {
	// CancelAfter is how many polls return false before true.
	// Zero means cancel immediately; negative means never.
	CancelAfter int

	polls int
}

// Canceled implements Canceler.
func (f *FakeCancel) Canceled() bool {
	if f.CancelAfter < 0 {
		return false
	}

	f.polls++

	return f.polls > f.CancelAfter
}
