package value

// Delta is a normalized pair of disjoint tuple sets describing a change to
// a relation (spec §3.4). The zero Delta is empty and already normalized.
type Delta struct {
	adds    map[string]Tuple
	removes map[string]Tuple
}

// NewDelta builds a normalized Delta from (possibly overlapping,
// duplicate-containing) add/remove slices.
func NewDelta(adds, removes []Tuple) Delta {
	d := Delta{
		adds:    make(map[string]Tuple, len(adds)),
		removes: make(map[string]Tuple, len(removes)),
	}
	for _, t := range adds {
		tt := t
		d.adds[tt.Key()] = tt
	}
	for _, t := range removes {
		tt := t
		d.removes[tt.Key()] = tt
	}
	return d.normalized()
}

// EmptyDelta returns a normalized, empty Delta.
func EmptyDelta() Delta { return Delta{} }

// AddOnly builds a normalized Delta consisting only of adds.
func AddOnly(adds ...Tuple) Delta { return NewDelta(adds, nil) }

// RemoveOnly builds a normalized Delta consisting only of removes.
func RemoveOnly(removes ...Tuple) Delta { return NewDelta(nil, removes) }

// normalized returns d with deduplication (already guaranteed by the map
// representation) and opposite cancellation applied: adds := adds\removes,
// removes := removes\adds (spec §3.4, invariant I-D1).
func (d Delta) normalized() Delta {
	if len(d.adds) == 0 || len(d.removes) == 0 {
		return d
	}
	for k := range d.removes {
		if _, ok := d.adds[k]; ok {
			delete(d.adds, k)
			delete(d.removes, k)
		}
	}
	return d
}

// IsEmpty reports whether the delta has no adds and no removes.
func (d Delta) IsEmpty() bool { return len(d.adds) == 0 && len(d.removes) == 0 }

// Adds returns the delta's added tuples in unspecified order.
func (d Delta) Adds() []Tuple { return mapValues(d.adds) }

// Removes returns the delta's removed tuples in unspecified order.
func (d Delta) Removes() []Tuple { return mapValues(d.removes) }

// NumAdds returns the number of added tuples.
func (d Delta) NumAdds() int { return len(d.adds) }

// NumRemoves returns the number of removed tuples.
func (d Delta) NumRemoves() int { return len(d.removes) }

func mapValues(m map[string]Tuple) []Tuple {
	out := make([]Tuple, 0, len(m))
	for _, t := range m {
		out = append(out, t)
	}
	return out
}

// Merge combines two deltas (set union of each component, per spec §3.4)
// and renormalizes the result, so that intra-batch 0->1->0 cancellations
// collapse to nothing (spec §8, property 3 and the S3 scenario).
func Merge(deltas ...Delta) Delta {
	out := Delta{adds: map[string]Tuple{}, removes: map[string]Tuple{}}
	for _, d := range deltas {
		for k, t := range d.adds {
			if _, existed := out.removes[k]; existed {
				delete(out.removes, k)
			} else {
				out.adds[k] = t
			}
		}
		for k, t := range d.removes {
			if _, existed := out.adds[k]; existed {
				delete(out.adds, k)
			} else {
				out.removes[k] = t
			}
		}
	}
	return out.normalized()
}

// RemovesOnlyDelta returns a Delta containing only this delta's removes,
// used by the graph layer to enforce remove-before-add ordering across an
// operator's input slots within one batch (spec §5).
func (d Delta) RemovesOnlyDelta() Delta {
	return Delta{removes: d.removes}
}

// AddsOnlyDelta returns a Delta containing only this delta's adds.
func (d Delta) AddsOnlyDelta() Delta {
	return Delta{adds: d.adds}
}
