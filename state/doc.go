// Package state tracks property mutations and batches them into update cycles.
//
// An owner embeds a Machine and declares Stateful fields against it. Each
// accepted assignment marks the field's Key, and any Types it carries, dirty.
// The Machine then calls the owner's Update once per cycle with a Validator
// scoped to exactly what changed:
//
//	var (
//		types    = state.NewRegistry()
//		content  = types.Next("content")
//		titleKey = state.NewKey("title")
//	)
//
//	type header struct {
//		machine *state.Machine
//		title   *state.Stateful[string]
//	}
//
//	func newHeader() *header {
//		h := &header{}
//		h.machine = state.NewMachine(h)
//		h.title = state.NewStateful(h, titleKey, "", content)
//		return h
//	}
//
//	func (h *header) StateMachine() *state.Machine { return h.machine }
//
//	func (h *header) Update(v *state.Validator) {
//		if v.IsDirty(titleKey) {
//			// redraw the title
//		}
//	}
//
// Batch several assignments into one cycle with Machine.Transaction. Call
// Start when the owner becomes active and Stop when it goes inactive; the
// first cycle after Start always reports everything dirty.
package state
