package synchronizer

import (
	"errors"
	"fmt"
)

// HostFault is a host operation failure that aborts synchronization.
type HostFault struct {
	// Op is the host operation that failed, e.g. "set value".
	Op string
	// Path is the location of the node involved.
	Path string
	// Err is the host error.
	Err error
}

func (e *HostFault) Error() string {
	return fmt.Sprintf("host fault: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *HostFault) Unwrap() error {
	return e.Err
}

// fault wraps err as a HostFault unless it already is one.
func fault(op, path string, err error) error {
	var hf *HostFault
	if errors.As(err, &hf) {
		return err
	}
	return &HostFault{Op: op, Path: path, Err: err}
}
