// Package state holds the synchronisation state machine for Aperture's remote
// resources.
//
// # Overview
//
// Every resource Aperture mirrors from the camera (camera settings, photo
// settings, the gallery) is described by a Snapshot: the last known-good data,
// the loading and updating flags, the pending local edits, and the outcome of
// the most recent request. Snapshots change only through Reduce, a pure
// transition function over a small enum of actions.
//
// # Transitions
//
//	ActionFetch          IsLoading = true
//	ActionFetchSuccess   Data = payload, IsLoading = false, errors cleared
//	ActionFetchFailure   IsLoading = false, LastError recorded, Data kept
//	ActionUserInput      Input = Input ⊕ patch, Data = Data ⊕ patch, IsUpdating = true
//	ActionUpdate         Data = Data ⊕ Input, Input cleared (a write is going out)
//	ActionUpdateSuccess  Data = server echo, IsUpdating = false, errors cleared
//	ActionUpdateFailure  IsUpdating = false, Input dropped, LastError recorded, Data kept
//
// ⊕ is an RFC 7386 JSON merge: nested objects merge member by member.
//
// # Partial Values
//
// Edits are expressed as Patch values. A Patch is JSON text, so a partial
// CameraSettings is simply the subset of its JSON members:
//
//	p, _ := state.Field("iso", 400)
//	next, _ := state.Apply(current, p)
//
// Patches compose with Merge, which is how a burst of edits collapses into
// the single write the sync engine sends.
//
// # Store
//
// Store wraps a Snapshot in a sync.RWMutex. Dispatch runs Reduce under the
// write lock; Snapshot copies under the read lock so the UI can read at any
// rate without blocking the engine. Input and LastError are copied on the
// way out; Data is shared because Reduce never mutates it in place.
//
// # Error Propagation
//
// Failures never corrupt Data. LastError holds the most recent failure and
// ConsecutiveFailures counts failures since the last success, which drives
// IsOffline in the UI header.
package state
