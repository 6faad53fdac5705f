package device

import "fmt"

// Policy decides which device services a request. Implementations must
// be deterministic for a fixed inventory and fixed device state so
// behavior is reproducible under test; they must not mutate the
// handles.
type Policy interface {
	Pick(unit UnitType, preferred Type, handles []*Handle) (*Handle, error)
}

// PreferredTypePolicy is the reference dispatch policy: it tries the
// requested hardware type first (GPU when the caller expresses no
// preference) and falls back to the next compatible type when none of
// the preferred type is present. Within a type it spreads parameter
// sets by picking the device holding the fewest, lowest device ID
// winning ties, so independent params land on distinct devices and can
// execute concurrently.
type PreferredTypePolicy struct{}

// Pick selects the device that will service the request.
func (PreferredTypePolicy) Pick(unit UnitType, preferred Type, handles []*Handle) (*Handle, error) {
	if unit == UnitNone {
		return nil, fmt.Errorf("%w: unit type none is not schedulable", ErrInvalidArgument)
	}

	order := []Type{TypeGPU, TypeFPGA}
	if preferred == TypeFPGA {
		order = []Type{TypeFPGA, TypeGPU}
	}

	for _, t := range order {
		var best *Handle
		for _, h := range handles {
			if h.Type() != t || !h.backend.IsAvailable() {
				continue
			}
			if best == nil || h.loadedParams() < best.loadedParams() {
				best = h
			}
		}
		if best != nil {
			return best, nil
		}
	}
	return nil, fmt.Errorf("%w: no device for unit %s (preferred %s)", ErrNoCompatibleDevice, unit, preferred)
}
