package form

import "context"

// Sync waits until every event queued before the call has been handled.
func (f *Form) Sync() error {
	return f.do(context.Background(), func() {})
}
