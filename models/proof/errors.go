// Copyright 2021 Optakt Labs OÜ
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

package proof

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	ErrAlreadyInitialized = errors.New("ledger already initialized")
	ErrInvalidPayload     = errors.New("invalid payload")
	ErrNotFound           = errors.New("not found")
	ErrCorrupted          = errors.New("corrupted data")
)

// Corrupted wraps a failure to decode stored data. The result matches both
// ErrCorrupted and the given error.
func Corrupted(err error) error {
	return corruptedError{err: err}
}

type corruptedError struct {
	err error
}

func (c corruptedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCorrupted, c.err)
}

func (c corruptedError) Unwrap() error {
	return c.err
}

func (c corruptedError) Is(target error) bool {
	return target == ErrCorrupted
}

// UnreadableError is returned by a journal replay that stopped at a block it
// could not read back. The blocks before Index are returned along with it.
type UnreadableError struct {
	Index uint64
	Err   error
}

func (u *UnreadableError) Error() string {
	return fmt.Sprintf("unreadable block (index: %d): %s", u.Index, u.Err)
}

func (u *UnreadableError) Unwrap() error {
	return u.Err
}
