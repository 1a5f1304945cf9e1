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

	"github.com/sirupsen/logrus"
)

// Event is a synchronous fan-out point: callbacks run in registration order on the
// caller's goroutine whenever the event fires.
type Event struct {
	callbacks []func()
}

// AddCallback registers fn to run on every subsequent fire of the event.
func (e *Event) AddCallback(fn func()) {
	e.callbacks = append(e.callbacks, fn)
}

// Fire runs the registered callbacks in order. Collaborators owning an event fire it
// themselves; observers only register.
func (e *Event) Fire() {
	for _, fn := range e.callbacks {
		fn()
	}
}

// Files is the set of open DICOM files and the notion of which one is current.
//
// CurrentFileSet fires after the current file changes (including when a newly opened
// file becomes current). AllFilesEdited fires after a batch operation has touched every
// open file. Observers such as the dataset model re-project their tree on either.
type Files struct {
	CurrentFileSet *Event
	AllFilesEdited *Event

	open    []*File
	current int

	Logger *logrus.Logger
}

// NewFiles returns an empty file set. A nil logger falls back to a default logrus
// logger.
func NewFiles(logger *logrus.Logger) *Files {
	if logger == nil {
		logger = logrus.New()
	}
	return &Files{
		CurrentFileSet: &Event{},
		AllFilesEdited: &Event{},
		current:        -1,
		Logger:         logger,
	}
}

// Open parses the file at path, appends it to the set and makes it current.
func (fs *Files) Open(path string) (*File, error) {
	file, err := OpenFile(path)
	if err != nil {
		return nil, err
	}
	fs.Add(file)
	return file, nil
}

// Add appends an already constructed file to the set and makes it current.
func (fs *Files) Add(file *File) {
	fs.open = append(fs.open, file)
	fs.current = len(fs.open) - 1
	fs.CurrentFileSet.Fire()
}

// All returns the open files in opening order.
func (fs *Files) All() []*File {
	return fs.open
}

// CurrentFile returns the current file, or nil if the set is empty.
func (fs *Files) CurrentFile() *File {
	if fs.current < 0 || fs.current >= len(fs.open) {
		return nil
	}
	return fs.open[fs.current]
}

// SetCurrent makes the i-th open file current.
func (fs *Files) SetCurrent(i int) error {
	if i < 0 || i >= len(fs.open) {
		return fmt.Errorf("no open file at index %d", i)
	}
	fs.current = i
	fs.CurrentFileSet.Fire()
	return nil
}
