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
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r-matlock/dcmedit/dicom"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testStore(t *testing.T, patientName string) *dicom.Store {
	t.Helper()
	s := dicom.NewStore()
	ref, err := s.AppendElement(s.Root(), dicom.PatientNameTag, nil)
	require.NoError(t, err)
	require.NoError(t, s.SetString(ref, patientName))
	return s
}

func patientNameOf(t *testing.T, s *dicom.Store) string {
	t.Helper()
	ref := s.FindElement(s.Root(), dicom.PatientNameTag)
	require.NotEqual(t, dicom.NilRef, ref)
	value, err := s.ValueString(ref)
	require.NoError(t, err)
	return value
}

func TestFiles_AddMakesCurrent(t *testing.T) {
	fs := NewFiles(quietLogger())
	fired := 0
	fs.CurrentFileSet.AddCallback(func() { fired++ })

	assert.Nil(t, fs.CurrentFile())

	a := NewFile("a.dcm", testStore(t, "A"))
	b := NewFile("b.dcm", testStore(t, "B"))
	fs.Add(a)
	assert.Same(t, a, fs.CurrentFile())
	fs.Add(b)
	assert.Same(t, b, fs.CurrentFile())

	assert.Equal(t, 2, fired, "each add fires the current-file event")
	assert.Equal(t, []*File{a, b}, fs.All())
}

func TestFiles_SetCurrent(t *testing.T) {
	fs := NewFiles(quietLogger())
	a := NewFile("a.dcm", testStore(t, "A"))
	b := NewFile("b.dcm", testStore(t, "B"))
	fs.Add(a)
	fs.Add(b)

	fired := 0
	fs.CurrentFileSet.AddCallback(func() { fired++ })

	require.NoError(t, fs.SetCurrent(0))
	assert.Same(t, a, fs.CurrentFile())
	assert.Equal(t, 1, fired)

	assert.Error(t, fs.SetCurrent(2))
	assert.Error(t, fs.SetCurrent(-1))
	assert.Same(t, a, fs.CurrentFile(), "failed switch leaves the current file alone")
}

func TestFile_SaveClearsUnsavedChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.dcm")
	f := NewFile(path, testStore(t, "DOE^JOHN"))

	f.SetUnsavedChanges(true)
	require.NoError(t, f.Save())
	assert.False(t, f.HasUnsavedChanges())
}

func TestFile_SaveOpenRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.dcm")
	f := NewFile(path, testStore(t, "DOE^JOHN"))
	require.NoError(t, f.Save())

	reopened, err := OpenFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, reopened.Path())
	assert.False(t, reopened.HasUnsavedChanges())
	assert.Equal(t, "DOE^JOHN", patientNameOf(t, reopened.Store()))
}

func TestFile_SaveAsChangesPath(t *testing.T) {
	dir := t.TempDir()
	f := NewFile(filepath.Join(dir, "a.dcm"), testStore(t, "A"))
	require.NoError(t, f.Save())

	other := filepath.Join(dir, "b.dcm")
	f.SetUnsavedChanges(true)
	require.NoError(t, f.SaveAs(other))
	assert.Equal(t, other, f.Path())
	assert.False(t, f.HasUnsavedChanges())

	reopened, err := OpenFile(other)
	require.NoError(t, err)
	assert.Equal(t, "A", patientNameOf(t, reopened.Store()))
}

func TestOpenFile_Missing(t *testing.T) {
	_, err := OpenFile(filepath.Join(t.TempDir(), "absent.dcm"))
	assert.Error(t, err)
}

func TestEvent_CallbackOrder(t *testing.T) {
	var order []int
	e := &Event{}
	e.AddCallback(func() { order = append(order, 1) })
	e.AddCallback(func() { order = append(order, 2) })
	e.Fire()
	e.Fire()
	assert.Equal(t, []int{1, 2, 1, 2}, order)
}
