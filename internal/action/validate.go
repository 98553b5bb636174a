package action

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrSchema tags an unknown action or an unrecognized enum value.
var ErrSchema = errors.New("invalid step")

// ErrMissingField tags a record missing a field its action requires.
var ErrMissingField = errors.New("missing required field")

// validators maps each action to its field checks. Actions absent from
// the table (clear_canvas) have no requirements beyond a known keyword.
var validators = map[string]func(*Step) error{
	ActionCreateContainer:   validateCreateContainer,
	ActionAppendToContainer: validateAppend,
	ActionReplaceContainer:  validateReplace,
	ActionUpdateElement:     validateUpdateElement,
	ActionRemoveContainer:   validateRemove,
	ActionMoveContainer:     validateMove,
	ActionAnnotate:          validateAnnotate,
	ActionSetCanvasLayout:   validateSetCanvasLayout,
	ActionActivateZone:      validateActivateZone,
	ActionClearZone:         validateClearZone,
	ActionParallel:          validateComposite,
	ActionSequence:          validateComposite,
}

// narrated lists the container-creation-class actions that must carry
// non-empty narration unless the record is the synthetic header.
var narrated = []string{ActionCreateContainer, ActionSetCanvasLayout, ActionActivateZone}

// Validate schema-checks one decoded step. The header record is exempt
// from all checks.
func Validate(s *Step) error {
	if s.IsHeader() {
		return nil
	}
	if s.Action == "" {
		return fmt.Errorf("%w: action", ErrMissingField)
	}
	if !slices.Contains(All(), s.Action) {
		return fmt.Errorf("%w: unknown action %q, valid actions: %s",
			ErrSchema, s.Action, strings.Join(All(), ", "))
	}
	if slices.Contains(narrated, s.Action) && strings.TrimSpace(s.Narration) == "" {
		return fmt.Errorf("%w: %s requires narration", ErrMissingField, s.Action)
	}
	if check, ok := validators[s.Action]; ok {
		return check(s)
	}
	return nil
}

func validateCreateContainer(s *Step) error {
	if s.ContainerID == "" {
		return fmt.Errorf("%w: create_container requires container_id", ErrMissingField)
	}
	if s.ZoneID == "" {
		return fmt.Errorf("%w: create_container requires zone_id", ErrMissingField)
	}
	return nil
}

func validateAppend(s *Step) error {
	if s.ContainerID == "" {
		return fmt.Errorf("%w: append_to_container requires container_id", ErrMissingField)
	}
	if s.HTML == "" {
		return fmt.Errorf("%w: append_to_container requires html", ErrMissingField)
	}
	return nil
}

func validateReplace(s *Step) error {
	if s.ContainerID == "" {
		return fmt.Errorf("%w: replace_container requires container_id", ErrMissingField)
	}
	if s.HTML == "" {
		return fmt.Errorf("%w: replace_container requires html", ErrMissingField)
	}
	return nil
}

func validateUpdateElement(s *Step) error {
	if s.ContainerID == "" {
		return fmt.Errorf("%w: update_element requires container_id", ErrMissingField)
	}
	if s.ElementID == "" {
		return fmt.Errorf("%w: update_element requires element_id", ErrMissingField)
	}
	if s.HTML == "" {
		return fmt.Errorf("%w: update_element requires html", ErrMissingField)
	}
	return nil
}

func validateRemove(s *Step) error {
	if s.ContainerID == "" {
		return fmt.Errorf("%w: remove_container requires container_id", ErrMissingField)
	}
	return nil
}

func validateMove(s *Step) error {
	if s.ContainerID == "" {
		return fmt.Errorf("%w: move_container requires container_id", ErrMissingField)
	}
	if str, _ := s.Params["to_zone"].(string); str == "" {
		return fmt.Errorf("%w: move_container requires params.to_zone", ErrMissingField)
	}
	return nil
}

func validateAnnotate(s *Step) error {
	if s.ContainerID == "" {
		return fmt.Errorf("%w: annotate requires container_id", ErrMissingField)
	}
	if s.ElementID == "" {
		return fmt.Errorf("%w: annotate requires element_id", ErrMissingField)
	}
	annotation, _ := s.Params["annotation"].(map[string]any)
	if len(annotation) == 0 {
		return fmt.Errorf("%w: annotate requires params.annotation", ErrMissingField)
	}
	kind, _ := annotation["type"].(string)
	if !slices.Contains(ValidAnnotationKinds, kind) {
		return fmt.Errorf("%w: annotation type must be one of: %s",
			ErrSchema, strings.Join(ValidAnnotationKinds, ", "))
	}
	return nil
}

func validateSetCanvasLayout(s *Step) error {
	layout, _ := s.Params["layout"].(string)
	if layout == "" {
		return fmt.Errorf("%w: set_canvas_layout requires params.layout", ErrMissingField)
	}
	if !slices.Contains(ValidLayouts, layout) {
		return fmt.Errorf("%w: invalid layout %q, must be one of: %s",
			ErrSchema, layout, strings.Join(ValidLayouts, ", "))
	}
	if _, ok := s.Params["zones"]; !ok {
		return fmt.Errorf("%w: set_canvas_layout requires params.zones", ErrMissingField)
	}
	return nil
}

func validateActivateZone(s *Step) error {
	if s.ZoneID == "" {
		return fmt.Errorf("%w: activate_zone requires zone_id", ErrMissingField)
	}
	return nil
}

func validateClearZone(s *Step) error {
	if s.ZoneID == "" {
		return fmt.Errorf("%w: clear_zone requires zone_id", ErrMissingField)
	}
	return nil
}

func validateComposite(s *Step) error {
	actions, ok := s.Params["actions"].([]any)
	if !ok {
		return fmt.Errorf("%w: %s requires params.actions as an array", ErrMissingField, s.Action)
	}
	if len(actions) == 0 {
		return fmt.Errorf("%w: %s requires a non-empty params.actions", ErrMissingField, s.Action)
	}
	return nil
}
