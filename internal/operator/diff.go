package operator

import "github.com/codenerd/lftjengine/pkg/value"

// Diff implements the anti-join Left ▷_K Right (spec §4.5): it emits every
// l in Left for which no r in Right shares l's key. Input slot 0 is Left,
// slot 1 is Right.
type Diff struct {
	schema *value.Schema

	leftKeyIdx  []int
	rightKeyIdx []int

	left           map[string]value.Tuple // all currently present left tuples, by tuple key
	leftKeyOf      map[string]string      // left tuple key -> its join key
	rightSupport   map[string]int         // join key -> right support count
	leftByKey      map[string]map[string]value.Tuple // join key -> left tuple key -> tuple
}

// NewDiff builds a Diff node. leftVars/rightVars name the key positions on
// each side (spec's key_L/key_R); they must have equal length and
// pairwise-compatible meaning, but are not required to share names.
func NewDiff(leftSchema, rightSchema *value.Schema, leftVars, rightVars []string) *Diff {
	if len(leftVars) != len(rightVars) {
		panic("operator: diff key arity mismatch between left and right")
	}
	leftIdx := make([]int, len(leftVars))
	for i, v := range leftVars {
		idx := leftSchema.IndexOf(v)
		if idx < 0 {
			panic("operator: diff left key variable not in left schema: " + v)
		}
		leftIdx[i] = idx
	}
	rightIdx := make([]int, len(rightVars))
	for i, v := range rightVars {
		idx := rightSchema.IndexOf(v)
		if idx < 0 {
			panic("operator: diff right key variable not in right schema: " + v)
		}
		rightIdx[i] = idx
	}
	return &Diff{
		schema:       leftSchema,
		leftKeyIdx:   leftIdx,
		rightKeyIdx:  rightIdx,
		left:         map[string]value.Tuple{},
		leftKeyOf:    map[string]string{},
		rightSupport: map[string]int{},
		leftByKey:    map[string]map[string]value.Tuple{},
	}
}

func (d *Diff) Schema() *value.Schema { return d.schema }
func (d *Diff) NumInputs() int        { return 2 }

func (d *Diff) Consume(slot int, delta value.Delta) (value.Delta, error) {
	switch slot {
	case 0:
		return d.consumeLeft(delta), nil
	case 1:
		return d.consumeRight(delta), nil
	default:
		panic("operator: diff accepts only slots 0 (left) and 1 (right)")
	}
}

func (d *Diff) consumeLeft(delta value.Delta) value.Delta {
	var adds, removes []value.Tuple
	for _, l := range delta.Removes() {
		lk := l.Key()
		k, ok := d.leftKeyOf[lk]
		if !ok {
			continue
		}
		if d.rightSupport[k] == 0 {
			removes = append(removes, l)
		}
		delete(d.left, lk)
		delete(d.leftKeyOf, lk)
		if byKey := d.leftByKey[k]; byKey != nil {
			delete(byKey, lk)
			if len(byKey) == 0 {
				delete(d.leftByKey, k)
			}
		}
	}
	for _, l := range delta.Adds() {
		k := string(l.Project(d.leftKeyIdx).Bytes())
		lk := l.Key()
		d.left[lk] = l
		d.leftKeyOf[lk] = k
		if d.leftByKey[k] == nil {
			d.leftByKey[k] = map[string]value.Tuple{}
		}
		d.leftByKey[k][lk] = l
		if d.rightSupport[k] == 0 {
			adds = append(adds, l)
		}
	}
	return value.NewDelta(adds, removes)
}

func (d *Diff) consumeRight(delta value.Delta) value.Delta {
	var adds, removes []value.Tuple
	for _, r := range delta.Removes() {
		k := string(r.Project(d.rightKeyIdx).Bytes())
		if _, ok := d.rightSupport[k]; !ok {
			continue
		}
		d.rightSupport[k]--
		if d.rightSupport[k] <= 0 {
			delete(d.rightSupport, k)
			for _, l := range d.leftByKey[k] {
				adds = append(adds, l)
			}
		}
	}
	for _, r := range delta.Adds() {
		k := string(r.Project(d.rightKeyIdx).Bytes())
		before := d.rightSupport[k]
		d.rightSupport[k] = before + 1
		if before == 0 {
			for _, l := range d.leftByKey[k] {
				removes = append(removes, l)
			}
		}
	}
	return value.NewDelta(adds, removes)
}

// Materialized returns {l in L : R_sup[key_L(l)] = 0} (invariant I-Δ1).
func (d *Diff) Materialized() []value.Tuple {
	out := make([]value.Tuple, 0, len(d.left))
	for lk, l := range d.left {
		if d.rightSupport[d.leftKeyOf[lk]] == 0 {
			out = append(out, l)
		}
	}
	return out
}
