// Copyright 2023 The acquirecloud Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package errors

import (
	"errors"
)

var (
	// ErrExist is returned when a record already exists
	ErrExist = errors.New("already exists")
	// ErrNotExist is returned when a requested object could not be found
	ErrNotExist = errors.New("not found")
	// ErrInvalid is returned when an argument is invalid or out of the allowed range
	ErrInvalid = errors.New("invalid argument")
	// ErrConflict is returned when the operation conflicts with the current state of the object
	ErrConflict = errors.New("conflict")
	// ErrClosed is returned when an operation is called on a closed (shut down) object
	ErrClosed = errors.New("closed")
	// ErrInternal indicates a bug or an unexpected state
	ErrInternal = errors.New("internal error")
	// ErrDataLoss is returned when stored data could not be decoded
	ErrDataLoss = errors.New("data loss")
)

// Is is the errors.Is alias, so the package can be used instead of the standard one
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is the errors.As alias
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Unwrap is the errors.Unwrap alias
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// New is the errors.New alias
func New(text string) error {
	return errors.New(text)
}
