// Copyright 2026 The Edgekit Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package compiler

import "errors"

var (
	// ErrInvalidPlaceholder indicates a placeholder segment whose name is
	// empty or not a valid identifier.
	ErrInvalidPlaceholder = errors.New("invalid placeholder")

	// ErrDuplicatePlaceholder indicates the same placeholder name used
	// twice within one template.
	ErrDuplicatePlaceholder = errors.New("duplicate placeholder")
)
