// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import "fmt"

// Steps at which a conversion can fail.
const (
	OpDiscover = "discover"
	OpDecode   = "decode"
	OpRemove   = "remove"
	OpEncode   = "encode"
)

// Error reports the step and path that stopped a batch.
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
