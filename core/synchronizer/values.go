package synchronizer

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"record-sync/core/record"
	"record-sync/core/target"
)

// tolerance absorbs float noise when comparing numbers.
const tolerance = 0.0001

// scalar is a value as the host reads and writes it.
type scalar struct {
	vt    record.ValueType
	num   float64
	text  string
	flags []string
}

func (v scalar) String() string {
	switch v.vt {
	case record.ValueNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case record.ValueFlags:
		return "[" + strings.Join(v.flags, ", ") + "]"
	default:
		return v.text
	}
}

func (v scalar) equal(w scalar) bool {
	switch v.vt {
	case record.ValueNumber:
		return math.Abs(v.num-w.num) < tolerance
	case record.ValueFlags:
		if len(v.flags) != len(w.flags) {
			return false
		}
		for _, f := range v.flags {
			if !slices.Contains(w.flags, f) {
				return false
			}
		}
		return true
	case record.ValueReference:
		return strings.EqualFold(v.text, w.text)
	default:
		return v.text == w.text
	}
}

// writeValue reconciles one scalar element.
func (s *Synchronizer) writeValue(id record.Handle, want any, vt record.ValueType) error {
	path := s.store.Path(id)

	smash := record.SmashOther
	if vt == record.ValueNumber {
		var err error
		if smash, err = s.store.SmashType(id); err != nil {
			return fault("smash type", path, err)
		}
	}

	current, err := s.readValue(id, vt, smash)
	if err != nil {
		return fault("get value", path, err)
	}

	next, reason, err := s.writeValueFor(id, want, vt, smash)
	if err != nil {
		return fault("translate value", path, err)
	}
	if reason != "" {
		s.emit(Decision{Path: path, Action: ActionSkipped, Before: current.String(), Reason: reason})
		return nil
	}

	if current.equal(next) {
		s.emit(Decision{Path: path, Action: ActionUnchanged, Before: current.String(), After: next.String()})
		return nil
	}

	d := Decision{Path: path, Action: ActionChanged, Before: current.String(), After: next.String(), DryRun: s.opts.DryRun}
	if !s.opts.DryRun {
		if err := s.setValue(id, next, smash); err != nil {
			return fault("set value", path, err)
		}
	}
	s.emit(d)
	return nil
}

// readValue reads the current value of a scalar element.
func (s *Synchronizer) readValue(id record.Handle, vt record.ValueType, smash record.SmashType) (scalar, error) {
	v := scalar{vt: vt}

	switch vt {
	case record.ValueNumber:
		switch smash {
		case record.SmashInteger:
			i, err := s.store.GetIntValue(id)
			if err != nil {
				return v, err
			}
			v.num = float64(i)
		case record.SmashFloat:
			f, err := s.store.GetFloatValue(id)
			if err != nil {
				return v, err
			}
			v.num = f
		}
	case record.ValueReference:
		u, err := s.store.GetUIntValue(id)
		if err != nil {
			return v, err
		}
		v.text = record.FormatFormID(u)
	case record.ValueFlags:
		flags, err := s.store.GetEnabledFlags(id)
		if err != nil {
			return v, err
		}
		v.flags = record.NormalizeFlags(flags)
	default:
		text, err := s.store.GetValue(id)
		if err != nil {
			return v, err
		}
		v.text = text
	}

	return v, nil
}

// writeValueFor translates a target value into the value the host stores. A non-empty
// reason means there is nothing to write.
func (s *Synchronizer) writeValueFor(id record.Handle, want any, vt record.ValueType, smash record.SmashType) (scalar, string, error) {
	v := scalar{vt: vt}

	switch vt {
	case record.ValueNumber:
		n, ok := target.Number(want)
		if !ok {
			return v, fmt.Sprintf("expected a number, got %T", want), nil
		}
		switch smash {
		case record.SmashInteger:
			v.num = math.Round(n)
		case record.SmashFloat:
			v.num = n
		default:
			return v, "number has no integer or float accessor", nil
		}

	case record.ValueReference:
		ref, ok := referenceText(want)
		if !ok {
			return v, fmt.Sprintf("expected a reference, got %T", want), nil
		}
		formID, err := record.ResolveFormID(s.store, ref)
		if errors.Is(err, record.ErrMalformedReference) {
			return v, err.Error(), nil
		}
		if err != nil {
			return v, "", err
		}
		v.text = formID

	case record.ValueFlags:
		obj, ok := target.AsObject(want)
		if !ok {
			return v, fmt.Sprintf("expected a flag mapping, got %T", want), nil
		}
		v.flags = []string{}
		for name, enabled := range obj.All() {
			if on, _ := enabled.(bool); on {
				v.flags = append(v.flags, name)
			}
		}

	case record.ValueEnum:
		idx, ok := target.Index(want)
		if !ok {
			return v, fmt.Sprintf("expected an option index, got %v", want), nil
		}
		options, err := s.store.GetEnumOptions(id)
		if err != nil {
			return v, "", err
		}
		if idx >= len(options) {
			return v, fmt.Sprintf("option index %d out of range (%d options)", idx, len(options)), nil
		}
		v.text = options[idx]

	default:
		text, ok := target.Text(want)
		if !ok {
			return v, fmt.Sprintf("expected a scalar, got %T", want), nil
		}
		v.text = text
	}

	return v, "", nil
}

// setValue writes v with the setter matching its category.
func (s *Synchronizer) setValue(id record.Handle, v scalar, smash record.SmashType) error {
	switch v.vt {
	case record.ValueNumber:
		if smash == record.SmashInteger {
			return s.store.SetIntValue(id, int64(v.num))
		}
		return s.store.SetFloatValue(id, v.num)
	case record.ValueFlags:
		return s.store.SetEnabledFlags(id, v.flags)
	default:
		return s.store.SetValue(id, v.text)
	}
}

// referenceText accepts "Plugin.esp:001234" strings and the literal zero.
func referenceText(v any) (string, bool) {
	switch r := v.(type) {
	case string:
		return r, true
	case int64, int, float64:
		if n, _ := target.Number(r); n == 0 {
			return "0", true
		}
	}
	return "", false
}
