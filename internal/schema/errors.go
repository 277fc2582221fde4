// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package schema

import "errors"

var (
	// ErrWrongCommandForProfile is returned when a scalar operation targets a
	// resource-bound variable, or the other way round.
	ErrWrongCommandForProfile = errors.New("wrong command for variable profile")
	ErrTypeMismatch           = errors.New("type mismatch")
	ErrEnumViolation          = errors.New("value not in enum")
	ErrNullNotAllowed         = errors.New("null not allowed")
)
