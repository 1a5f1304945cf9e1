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

import (
	"fmt"
	"os"

	"github.com/r-matlock/dcmedit/dicom"
)

// File is one open DICOM file: its parsed data set and the unsaved-changes flag that
// mutations set and a save clears.
type File struct {
	path           string
	store          *dicom.Store
	unsavedChanges bool
}

// OpenFile parses the DICOM file at path.
func OpenFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %v: %v", path, err)
	}
	defer f.Close()

	store, err := dicom.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %v: %v", path, err)
	}
	return &File{path: path, store: store}, nil
}

// NewFile wraps an in-memory data set as an open file. Used by tests and by callers
// that build data sets programmatically.
func NewFile(path string, store *dicom.Store) *File {
	return &File{path: path, store: store}
}

// Path returns the file's path on disk.
func (f *File) Path() string {
	return f.path
}

// Store returns the file's data set store.
func (f *File) Store() *dicom.Store {
	return f.store
}

// HasUnsavedChanges reports whether the data set was mutated since the last save.
func (f *File) HasUnsavedChanges() bool {
	return f.unsavedChanges
}

// SetUnsavedChanges sets the unsaved-changes flag.
func (f *File) SetUnsavedChanges(changed bool) {
	f.unsavedChanges = changed
}

// Save writes the data set back to the file's path and clears the unsaved-changes flag.
func (f *File) Save() error {
	return f.SaveAs(f.path)
}

// SaveAs writes the data set to path, which becomes the file's path on success.
func (f *File) SaveAs(path string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %v: %v", path, err)
	}
	if err := dicom.Write(out, f.store); err != nil {
		out.Close()
		return fmt.Errorf("writing %v: %v", path, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %v: %v", path, err)
	}
	f.path = path
	f.unsavedChanges = false
	return nil
}
