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

package dispatch

import "errors"

var (
	// ErrReservedPath indicates a registration on one of the reserved
	// documentation paths while internal routes are enabled and the
	// bypass flag is not set.
	ErrReservedPath = errors.New("path is reserved for internal routes")

	// ErrDescriptorMismatch indicates that a path placeholder has no
	// matching path-location descriptor, or that a path-location
	// descriptor is marked optional.
	ErrDescriptorMismatch = errors.New("descriptor mismatch")

	// ErrNilHandler indicates a route registration without a handler.
	ErrNilHandler = errors.New("handler must not be nil")

	// ErrEmptyMethod indicates a route registration with an empty HTTP
	// method.
	ErrEmptyMethod = errors.New("method must not be empty")

	// ErrSpecSourceNil indicates that internal routes were enabled
	// without a document source.
	ErrSpecSourceNil = errors.New("internal routes require a document source")
)
