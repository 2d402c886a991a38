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

// Package compiler turns path templates into matchers.
//
// A template is a literal path in which any segment may be replaced by a
// named placeholder written ":name". Compilation produces an anchored
// matcher with one named capture per placeholder, and a canonical display
// form in which placeholders are normalized to "{name}" brackets:
//
//	p := compiler.MustCompile("/user/:name")
//	p.Canonical()          // "/user/{name}"
//	p.Match("/user/alice") // map[name:alice], true
//	p.Match("/users/x")    // nil, false
//
// Placeholders capture any run of characters excluding '/'; a template
// with no placeholders matches only its exact literal path. The reserved
// template "*" matches every path and backs the built-in 404 responder.
package compiler
