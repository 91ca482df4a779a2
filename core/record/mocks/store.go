package mocks

import (
	"record-sync/core/record"

	"github.com/stretchr/testify/mock"
)

// Store is a mock implementation of record.Store
type Store struct {
	mock.Mock
}

func (m *Store) GetElement(h record.Handle, path string) (record.Handle, error) {
	args := m.Called(h, path)
	return args.Get(0).(record.Handle), args.Error(1)
}

func (m *Store) AddElement(h record.Handle, path string) (record.Handle, error) {
	args := m.Called(h, path)
	return args.Get(0).(record.Handle), args.Error(1)
}

func (m *Store) AddArrayItem(h record.Handle) (record.Handle, error) {
	args := m.Called(h)
	return args.Get(0).(record.Handle), args.Error(1)
}

func (m *Store) RemoveElement(h record.Handle, path string) error {
	args := m.Called(h, path)
	return args.Error(0)
}

func (m *Store) ValueType(h record.Handle) (record.ValueType, error) {
	args := m.Called(h)
	return args.Get(0).(record.ValueType), args.Error(1)
}

func (m *Store) SmashType(h record.Handle) (record.SmashType, error) {
	args := m.Called(h)
	return args.Get(0).(record.SmashType), args.Error(1)
}

func (m *Store) GetIntValue(h record.Handle) (int64, error) {
	args := m.Called(h)
	return args.Get(0).(int64), args.Error(1)
}

func (m *Store) SetIntValue(h record.Handle, v int64) error {
	args := m.Called(h, v)
	return args.Error(0)
}

func (m *Store) GetFloatValue(h record.Handle) (float64, error) {
	args := m.Called(h)
	return args.Get(0).(float64), args.Error(1)
}

func (m *Store) SetFloatValue(h record.Handle, v float64) error {
	args := m.Called(h, v)
	return args.Error(0)
}

func (m *Store) GetUIntValue(h record.Handle) (uint32, error) {
	args := m.Called(h)
	return args.Get(0).(uint32), args.Error(1)
}

func (m *Store) GetValue(h record.Handle) (string, error) {
	args := m.Called(h)
	return args.String(0), args.Error(1)
}

func (m *Store) SetValue(h record.Handle, v string) error {
	args := m.Called(h, v)
	return args.Error(0)
}

func (m *Store) GetEnabledFlags(h record.Handle) ([]string, error) {
	args := m.Called(h)
	if flags, ok := args.Get(0).([]string); ok {
		return flags, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Store) SetEnabledFlags(h record.Handle, flags []string) error {
	args := m.Called(h, flags)
	return args.Error(0)
}

func (m *Store) GetEnumOptions(h record.Handle) ([]string, error) {
	args := m.Called(h)
	if options, ok := args.Get(0).([]string); ok {
		return options, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Store) LoadOrder(plugin string) (int, error) {
	args := m.Called(plugin)
	return args.Int(0), args.Error(1)
}

func (m *Store) Path(h record.Handle) string {
	args := m.Called(h)
	return args.String(0)
}

func (m *Store) Release(h record.Handle) error {
	args := m.Called(h)
	return args.Error(0)
}
