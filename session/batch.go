// Copyright 2018 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package session

import "fmt"

// BatchOp selects what an edit-all-files operation does to each file.
type BatchOp int

const (
	// OpSet writes the value, creating the element (and any sequences and items on the
	// tag path) when absent.
	OpSet BatchOp = iota

	// OpSetExisting writes the value only where the element already exists; a file
	// without it is reported as failed.
	OpSetExisting

	// OpDelete removes the element.
	OpDelete
)

func (op BatchOp) String() string {
	switch op {
	case OpSet:
		return "set"
	case OpSetExisting:
		return "set existing"
	case OpDelete:
		return "delete"
	}
	return fmt.Sprintf("BatchOp(%d)", int(op))
}

// BatchFailure records one file an EditAll pass could not edit.
type BatchFailure struct {
	File *File
	Err  error
}

// EditAll applies one tag-path edit to every open file. Failures are isolated: a file
// that cannot be edited is recorded and the pass moves on to the next one. Each
// successfully edited file is marked as having unsaved changes. AllFilesEdited fires
// once after the pass so observers re-project, whatever the outcome per file.
func (fs *Files) EditAll(op BatchOp, tagPath, value string) []BatchFailure {
	var failures []BatchFailure
	for _, file := range fs.open {
		var err error
		store := file.Store()
		switch op {
		case OpSet:
			err = store.SetElementAtPath(store.Root(), tagPath, value, true)
		case OpSetExisting:
			err = store.SetElementAtPath(store.Root(), tagPath, value, false)
		case OpDelete:
			err = store.DeleteElementAtPath(store.Root(), tagPath)
		default:
			err = fmt.Errorf("unknown batch operation %v", op)
		}

		if err != nil {
			fs.Logger.WithError(err).WithField("file", file.Path()).
				Warnf("Failed to %v %q", op, tagPath)
			failures = append(failures, BatchFailure{file, err})
			continue
		}
		file.SetUnsavedChanges(true)
	}
	fs.AllFilesEdited.Fire()
	return failures
}
