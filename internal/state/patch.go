package state

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch/v5"
)

// ErrInvalidPatch is returned when a patch is not a JSON object.
var ErrInvalidPatch = errors.New("patch must be a JSON object")

// Patch is a partial resource value encoded as an RFC 7386 JSON merge patch.
// Nested objects merge recursively; a null member removes the key.
type Patch []byte

// PatchOf encodes v as a patch. Struct fields tagged omitempty that hold their
// zero value are left out, so a sparse struct produces a sparse patch.
func PatchOf(v any) (Patch, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode patch: %w", err)
	}
	p := Patch(raw)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Field builds a patch that sets a single top-level member.
func Field(name string, value any) (Patch, error) {
	return PatchOf(map[string]any{name: value})
}

// IsEmpty reports whether the patch carries no edit.
func (p Patch) IsEmpty() bool {
	trimmed := bytes.TrimSpace(p)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("{}")) || bytes.Equal(trimmed, []byte("null"))
}

// Validate checks that the patch is a well-formed JSON object.
func (p Patch) Validate() error {
	if len(bytes.TrimSpace(p)) == 0 {
		return nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(p, &obj); err != nil || obj == nil {
		return ErrInvalidPatch
	}
	return nil
}

// Has reports whether the patch sets the top-level member name.
func (p Patch) Has(name string) bool {
	if p.IsEmpty() {
		return false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(p, &obj); err != nil {
		return false
	}
	_, ok := obj[name]
	return ok
}

// Merge returns the union of p and next. Members of next win.
func (p Patch) Merge(next Patch) (Patch, error) {
	if next.IsEmpty() {
		return p.Clone(), nil
	}
	if p.IsEmpty() {
		return next.Clone(), nil
	}
	merged, err := jsonpatch.MergeMergePatches(p, next)
	if err != nil {
		return nil, fmt.Errorf("merge patch: %w", err)
	}
	return Patch(merged), nil
}

// Clone returns an independent copy of the patch.
func (p Patch) Clone() Patch {
	if p == nil {
		return nil
	}
	dup := make(Patch, len(p))
	copy(dup, p)
	return dup
}

// String renders the patch as its JSON text.
func (p Patch) String() string {
	if len(p) == 0 {
		return "{}"
	}
	return string(p)
}

// Apply returns base with p merged on top. base is left untouched.
func Apply[T any](base T, p Patch) (T, error) {
	if p.IsEmpty() {
		return base, nil
	}
	doc, err := json.Marshal(base)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("encode resource: %w", err)
	}
	merged, err := jsonpatch.MergePatch(doc, p)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("apply patch: %w", err)
	}
	var out T
	if err := json.Unmarshal(merged, &out); err != nil {
		var zero T
		return zero, fmt.Errorf("decode resource: %w", err)
	}
	return out, nil
}
