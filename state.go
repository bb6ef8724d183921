package beacon

// InteractionState is the focus/selection snapshot. Hovered and Selected
// are independent references that may alias the same POI or differ; no
// fourth state is needed. KeyboardIndex is the position in the ordered POI
// list used only for keyboard cycling; -1 when unset.
type InteractionState struct {
	Hovered       *Poi
	Selected      *Poi
	KeyboardIndex int
}

// focusWrite is one FocusTarget assignment produced by a transition.
// Transitions are pure: they return the next state plus the writes to
// apply, so the precedence rules are testable without a scene or DOM.
type focusWrite struct {
	poi    *Poi
	target float64
}

func applyFocusWrites(writes []focusWrite) {
	for _, w := range writes {
		w.poi.FocusTarget = w.target
	}
}

// setHover transitions hover to p (which may be nil to clear). The previous
// hover loses focus unless it is the current selection; when hover clears
// entirely, the selection's focus is restored so a selected marker never
// goes dark.
func setHover(s InteractionState, p *Poi) (InteractionState, []focusWrite) {
	if s.Hovered == p {
		return s, nil
	}

	var writes []focusWrite
	if s.Hovered != nil && s.Hovered != s.Selected {
		writes = append(writes, focusWrite{s.Hovered, 0})
	}
	if p != nil {
		writes = append(writes, focusWrite{p, 1})
	} else if s.Selected != nil {
		writes = append(writes, focusWrite{s.Selected, 1})
	}

	s.Hovered = p
	return s, writes
}

// setSelection transitions selection to p. Symmetric to setHover: the
// previous selection loses focus unless it is the current hover.
func setSelection(s InteractionState, p *Poi) (InteractionState, []focusWrite) {
	if s.Selected == p {
		return s, nil
	}

	var writes []focusWrite
	if s.Selected != nil && s.Selected != s.Hovered {
		writes = append(writes, focusWrite{s.Selected, 0})
	}
	if p != nil {
		writes = append(writes, focusWrite{p, 1})
	} else if s.Hovered != nil {
		writes = append(writes, focusWrite{s.Hovered, 1})
	}

	s.Selected = p
	return s, writes
}
