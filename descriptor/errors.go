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

package descriptor

import "errors"

var (
	// ErrInvalidAttribute indicates a metadata attribute outside the
	// allowed set, or an attribute with a value outside its enumeration.
	ErrInvalidAttribute = errors.New("invalid parameter attribute")

	// ErrOptionalPathParameter indicates a path-located parameter marked
	// optional. Path captures are always required.
	ErrOptionalPathParameter = errors.New("path parameter cannot be optional")
)
