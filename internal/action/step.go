// Package action models the streamed record protocol for incremental
// rendering: one flat JSON object per record, keyed by an action from a
// closed vocabulary, schema-checked before it reaches the caller.
//
// Layout terms: a zone is a physical canvas region, a container a
// logical content group within a zone, an element the smallest
// addressable item inside a container.
package action

import (
	"encoding/json"
	"errors"
	"fmt"

	"mdflow/internal/jsonstream"
)

// Canvas-level actions.
const (
	ActionSetCanvasLayout = "set_canvas_layout"
	ActionClearCanvas     = "clear_canvas"
)

// Zone-level actions.
const (
	ActionActivateZone = "activate_zone"
	ActionClearZone    = "clear_zone"
)

// Container-level actions. AppendToContainer is the most common.
const (
	ActionCreateContainer   = "create_container"
	ActionAppendToContainer = "append_to_container"
	ActionReplaceContainer  = "replace_container"
	ActionUpdateElement     = "update_element"
	ActionRemoveContainer   = "remove_container"
	ActionMoveContainer     = "move_container"
)

// Composite and annotation actions.
const (
	ActionParallel = "parallel"
	ActionSequence = "sequence"
	ActionAnnotate = "annotate"
)

// ActionHead tags the synthetic header record emitted before the first
// model-produced step. It is exempt from validation.
const ActionHead = "head"

// All returns the closed action vocabulary, header excluded.
func All() []string {
	return []string{
		ActionSetCanvasLayout, ActionClearCanvas,
		ActionActivateZone, ActionClearZone,
		ActionCreateContainer, ActionAppendToContainer, ActionReplaceContainer,
		ActionUpdateElement, ActionRemoveContainer, ActionMoveContainer,
		ActionParallel, ActionSequence, ActionAnnotate,
	}
}

// Layout names accepted by set_canvas_layout.
var ValidLayouts = []string{"single", "split_vertical", "split_horizontal", "grid"}

// Annotation kinds accepted by annotate.
var ValidAnnotationKinds = []string{"circle", "underline", "arrow", "box"}

// Step is one decoded streamed record. Steps are built immediately
// after extraction and validation and are never mutated afterwards.
type Step struct {
	Action      string         `json:"action"`
	Narration   string         `json:"narration,omitempty"`
	ContainerID string         `json:"container_id,omitempty"`
	ZoneID      string         `json:"zone_id,omitempty"`
	ElementID   string         `json:"element_id,omitempty"`
	HTML        string         `json:"html,omitempty"`
	Animation   string         `json:"animation,omitempty"`
	Type        string         `json:"type,omitempty"` // "head" or "body"
	Params      map[string]any `json:"params,omitempty"`
}

// IsHeader reports whether this is the synthetic header record.
func (s *Step) IsHeader() bool {
	return s.Type == "head" || s.Action == ActionHead
}

// ErrDecode tags a record that is still not valid JSON after
// sanitization. This is a hard error for the object; there is no retry
// or guessing.
var ErrDecode = errors.New("record decode failed")

// Decode sanitizes an extracted object and unmarshals it into a Step.
func Decode(raw string) (*Step, error) {
	clean := jsonstream.Sanitize(raw)

	var step Step
	if err := json.Unmarshal([]byte(clean), &step); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return &step, nil
}
