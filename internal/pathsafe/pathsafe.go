// Copyright 2025 Kadir Pekel
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

// Package pathsafe validates that a user-supplied name is safe to use as a
// path component under a fixed root: no separators, no "..", no leading
// dot, no control characters. Shared by the pipeline runtime catalog
// (spec.md §4.4) and any workstream-style directory layout that needs the
// same escape-proofing.
package pathsafe

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsafeName is wrapped into the error returned by ValidateName.
type ErrUnsafeName struct {
	Name   string
	Reason string
}

func (e *ErrUnsafeName) Error() string {
	return fmt.Sprintf("pathsafe: unsafe name %q: %s", e.Name, e.Reason)
}

// ValidateName rejects names that could escape a directory root: empty
// names, names containing a path separator, "..", a leading ".", or any
// control character.
func ValidateName(name string) error {
	if name == "" {
		return &ErrUnsafeName{Name: name, Reason: "must not be empty"}
	}
	if strings.ContainsAny(name, "/\\") {
		return &ErrUnsafeName{Name: name, Reason: "must not contain a path separator"}
	}
	if strings.Contains(name, "..") {
		return &ErrUnsafeName{Name: name, Reason: "must not contain '..'"}
	}
	if strings.HasPrefix(name, ".") {
		return &ErrUnsafeName{Name: name, Reason: "must not start with '.'"}
	}
	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			return &ErrUnsafeName{Name: name, Reason: "must not contain control characters"}
		}
	}
	return nil
}

// Join validates name and joins it onto root, returning the joined path
// (absolute only when root is).
// Callers must still treat the result as untrusted for symlink traversal;
// this only guards against lexical escape.
func Join(root, name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	return filepath.Join(root, name), nil
}
