package synchronizer

import (
	"errors"
	"fmt"

	"record-sync/core/record"
	"record-sync/core/target"

	"go.uber.org/zap"
)

// Options controls a Synchronizer.
type Options struct {
	// DryRun reports decisions without creating, removing or writing anything.
	DryRun bool

	// Observer receives every decision. Optional.
	Observer func(Decision)
}

// Synchronizer writes target objects into a record store.
// It keeps no state between calls.
type Synchronizer struct {
	store  record.Store
	logger *zap.Logger
	opts   Options
}

// New creates a Synchronizer. A nil logger discards the trace log.
func New(store record.Store, logger *zap.Logger, opts Options) *Synchronizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synchronizer{store: store, logger: logger, opts: opts}
}

// Synchronize makes every field described by obj converge on the record below root.
// root stays owned by the caller.
func (s *Synchronizer) Synchronize(root record.Handle, obj *target.Object) error {
	return s.writeObject(root, obj)
}

func (s *Synchronizer) writeObject(h record.Handle, obj *target.Object) error {
	for key, value := range obj.All() {
		if key == target.HeaderKey {
			continue
		}

		child, err := s.getOrAddElement(h, key)
		if err != nil {
			return err
		}
		if child == record.None {
			continue
		}

		err = s.withHandle(child, func(id record.Handle) error {
			return s.writeElement(h, key, id, value)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// writeElement dispatches on the child's value type.
func (s *Synchronizer) writeElement(parent record.Handle, key string, id record.Handle, value any) error {
	vt, err := s.store.ValueType(id)
	if err != nil {
		return fault("value type", s.store.Path(id), err)
	}

	switch vt {
	case record.ValueUnknown:
		return nil
	case record.ValueArray:
		return s.writeArray(parent, key, id, value)
	case record.ValueStruct:
		obj, ok := target.AsObject(value)
		if !ok {
			s.emit(Decision{Path: s.store.Path(id), Action: ActionSkipped, Reason: fmt.Sprintf("expected a mapping, got %T", value)})
			return nil
		}
		return s.writeObject(id, obj)
	case record.ValueNumber, record.ValueReference, record.ValueFlags, record.ValueEnum, record.ValueOther:
		return s.writeValue(id, value, vt)
	default:
		panic(fmt.Sprintf("synchronizer: unhandled value type %s", vt))
	}
}

// getOrAddElement returns the child of h at key, creating it when missing. Children of
// arrays are appended as anonymous items regardless of key. It returns record.None when
// the host rejects the creation or in dry-run mode.
func (s *Synchronizer) getOrAddElement(h record.Handle, key string) (record.Handle, error) {
	child, err := s.store.GetElement(h, key)
	if err != nil {
		return record.None, fault("get element", childPath(s.store.Path(h), key), err)
	}
	if child != record.None {
		return child, nil
	}

	isArray, err := s.isArrayElement(h)
	if err != nil {
		return record.None, err
	}

	if isArray {
		if s.opts.DryRun {
			s.emit(Decision{Path: childPath(s.store.Path(h), key), Action: ActionAddedItem, DryRun: true})
			return record.None, nil
		}
		child, err = s.store.AddArrayItem(h)
		if err != nil {
			return record.None, fault("add array item", s.store.Path(h), err)
		}
		s.emit(Decision{Path: s.store.Path(child), Action: ActionAddedItem})
		return child, nil
	}

	if s.opts.DryRun {
		s.emit(Decision{Path: childPath(s.store.Path(h), key), Action: ActionAdded, DryRun: true})
		return record.None, nil
	}

	child, err = s.store.AddElement(h, key)
	if errors.Is(err, record.ErrCreationRejected) {
		s.emit(Decision{Path: childPath(s.store.Path(h), key), Action: ActionRejected, Reason: err.Error()})
		return record.None, nil
	}
	if err != nil {
		return record.None, fault("add element", childPath(s.store.Path(h), key), err)
	}
	s.emit(Decision{Path: s.store.Path(child), Action: ActionAdded})
	return child, nil
}

// isArrayElement reports whether the node behind h is any kind of array.
func (s *Synchronizer) isArrayElement(h record.Handle) (bool, error) {
	resolved, err := s.store.GetElement(h, "")
	if err != nil {
		return false, fault("resolve element", s.store.Path(h), err)
	}
	if resolved == record.None {
		return false, fault("resolve element", s.store.Path(h), errors.New("element vanished"))
	}

	var isArray bool
	err = s.withHandle(resolved, func(id record.Handle) error {
		st, err := s.store.SmashType(id)
		if err != nil {
			return fault("smash type", s.store.Path(id), err)
		}
		isArray = st.IsArray()
		return nil
	})
	return isArray, err
}

// writeArray replaces the array at parent\key with the items of value.
func (s *Synchronizer) writeArray(parent record.Handle, key string, id record.Handle, value any) error {
	path := s.store.Path(id)

	items, ok := target.AsSequence(value)
	if !ok {
		s.emit(Decision{Path: path, Action: ActionSkipped, Reason: fmt.Sprintf("expected a sequence, got %T", value)})
		return nil
	}

	if s.opts.DryRun {
		s.emit(Decision{Path: path, Action: ActionRebuilt, After: itemCount(len(items)), DryRun: true})
		return nil
	}

	parentIsArray, err := s.isArrayElement(parent)
	if err != nil {
		return err
	}
	if parentIsArray {
		// Items of an array cannot be re-added by key; empty the item in place instead.
		return s.refillArray(id, path, items)
	}

	if err := s.store.RemoveElement(parent, key); err != nil {
		return fault("remove element", path, err)
	}

	fresh, err := s.store.AddElement(parent, key)
	if errors.Is(err, record.ErrCreationRejected) {
		s.emit(Decision{Path: path, Action: ActionRejected, Reason: err.Error()})
		return nil
	}
	if err != nil {
		return fault("add element", path, err)
	}

	return s.withHandle(fresh, func(arr record.Handle) error {
		return s.refillArray(arr, path, items)
	})
}

func (s *Synchronizer) refillArray(arr record.Handle, path string, items []any) error {
	for {
		first, err := s.store.GetElement(arr, "[0]")
		if err != nil {
			return fault("get element", childPath(path, "[0]"), err)
		}
		if first == record.None {
			break
		}
		if err := s.store.Release(first); err != nil {
			return fault("release", childPath(path, "[0]"), err)
		}
		if err := s.store.RemoveElement(arr, "[0]"); err != nil {
			return fault("remove element", childPath(path, "[0]"), err)
		}
	}

	s.emit(Decision{Path: path, Action: ActionRebuilt, After: itemCount(len(items))})
	return s.writeObject(arr, target.FromSequence(items))
}

// withHandle scopes h to fn and reports release failures as host faults.
func (s *Synchronizer) withHandle(h record.Handle, fn func(record.Handle) error) error {
	path := s.store.Path(h)
	if err := record.WithHandle(s.store, h, fn); err != nil {
		return fault("release", path, err)
	}
	return nil
}

func (s *Synchronizer) emit(d Decision) {
	fields := []zap.Field{
		zap.String("path", d.Path),
		zap.String("action", string(d.Action)),
	}
	if d.Before != "" {
		fields = append(fields, zap.String("before", d.Before))
	}
	if d.After != "" {
		fields = append(fields, zap.String("after", d.After))
	}
	if d.Reason != "" {
		fields = append(fields, zap.String("reason", d.Reason))
	}
	if d.DryRun {
		fields = append(fields, zap.Bool("dry_run", true))
	}

	switch d.Action {
	case ActionRejected:
		s.logger.Warn("Element not created", fields...)
	case ActionUnchanged, ActionSkipped:
		s.logger.Debug("Element left as is", fields...)
	default:
		s.logger.Info("Element updated", fields...)
	}

	if s.opts.Observer != nil {
		s.opts.Observer(d)
	}
}

func childPath(parent, key string) string {
	return parent + `\` + key
}

func itemCount(n int) string {
	if n == 1 {
		return "1 item"
	}
	return fmt.Sprintf("%d items", n)
}
