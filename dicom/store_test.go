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

package dicom

import (
	"bytes"
	"errors"
	"testing"
)

func TestStore_AppendElementKeepsTagOrder(t *testing.T) {
	s := NewStore()
	for _, tag := range []DataElementTag{PatientIDTag, StudyDateTag, PatientNameTag} {
		if _, err := s.AppendElement(s.Root(), tag, nil); err != nil {
			t.Fatalf("AppendElement(%v): %v", tag, err)
		}
	}

	want := []DataElementTag{StudyDateTag, PatientNameTag, PatientIDTag}
	for i, tag := range want {
		if got := s.Tag(s.Child(s.Root(), i)); got != tag {
			t.Fatalf("child %d: got %v, want %v", i, got, tag)
		}
	}
}

func TestStore_AppendElementRejectsDuplicates(t *testing.T) {
	s := NewStore()
	if _, err := s.AppendElement(s.Root(), PatientNameTag, nil); err != nil {
		t.Fatalf("AppendElement: %v", err)
	}
	if _, err := s.AppendElement(s.Root(), PatientNameTag, nil); err == nil {
		t.Fatalf("AppendElement of duplicate tag: got nil error, want error")
	}
}

func TestStore_AppendItemRequiresSequence(t *testing.T) {
	s := NewStore()
	elem, err := s.AppendElement(s.Root(), PatientNameTag, nil)
	if err != nil {
		t.Fatalf("AppendElement: %v", err)
	}
	if _, err := s.AppendItem(elem); err == nil {
		t.Fatalf("AppendItem on a leaf: got nil error, want error")
	}
	if _, err := s.AppendItem(s.Root()); err == nil {
		t.Fatalf("AppendItem on the root: got nil error, want error")
	}
}

func TestStore_SequenceStructure(t *testing.T) {
	s := NewStore()
	seq, err := s.AppendElement(s.Root(), ReferencedStudySequenceTag, SQVR)
	if err != nil {
		t.Fatalf("AppendElement: %v", err)
	}
	if got := s.Kind(seq); got != KindSequence {
		t.Fatalf("Kind(seq): got %v, want %v", got, KindSequence)
	}

	item, err := s.AppendItem(seq)
	if err != nil {
		t.Fatalf("AppendItem: %v", err)
	}
	if got := s.Kind(item); got != KindItem {
		t.Fatalf("Kind(item): got %v, want %v", got, KindItem)
	}
	if got := s.Parent(item); got != seq {
		t.Fatalf("Parent(item): got %v, want %v", got, seq)
	}

	uid, err := s.AppendElement(item, StudyInstanceUIDTag, nil)
	if err != nil {
		t.Fatalf("AppendElement in item: %v", err)
	}
	if got := s.VR(uid); got != UIVR {
		t.Fatalf("dictionary VR of %v: got %v, want UI", StudyInstanceUIDTag, got.Name)
	}
	if got := s.Index(item); got != 0 {
		t.Fatalf("Index(item): got %v, want 0", got)
	}
}

func TestStore_RemoveTombstonesSubtree(t *testing.T) {
	s := NewStore()
	seq, _ := s.AppendElement(s.Root(), ReferencedStudySequenceTag, SQVR)
	item, _ := s.AppendItem(seq)
	uid, _ := s.AppendElement(item, StudyInstanceUIDTag, nil)

	if err := s.Remove(item); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	if s.Valid(item) || s.Valid(uid) {
		t.Fatalf("removed refs still valid: item=%v uid=%v", s.Valid(item), s.Valid(uid))
	}
	if got := s.Kind(uid); got != KindNone {
		t.Fatalf("Kind of removed ref: got %v, want %v", got, KindNone)
	}
	if got := s.ChildCount(seq); got != 0 {
		t.Fatalf("ChildCount(seq) after removal: got %v, want 0", got)
	}
}

func TestStore_RemoveRoot(t *testing.T) {
	s := NewStore()
	if err := s.Remove(s.Root()); err == nil {
		t.Fatalf("Remove(root): got nil error, want error")
	}
}

func TestStore_Length(t *testing.T) {
	s := NewStore()
	name, _ := s.AppendElement(s.Root(), PatientNameTag, nil)
	if err := s.SetString(name, "DOE^J"); err != nil {
		t.Fatalf("SetString: %v", err)
	}
	// "DOE^J" is 5 bytes, space padded to 6
	if got := s.Length(name); got != 6 {
		t.Fatalf("Length(name): got %v, want 6", got)
	}

	seq, _ := s.AppendElement(s.Root(), ReferencedStudySequenceTag, SQVR)
	item, _ := s.AppendItem(seq)
	uid, _ := s.AppendElement(item, StudyInstanceUIDTag, nil)
	if err := s.SetString(uid, "1.2"); err != nil {
		t.Fatalf("SetString: %v", err)
	}

	// uid value is 4 bytes after NUL padding, its header 8, the item header 8
	if got := s.Length(item); got != 12 {
		t.Fatalf("Length(item): got %v, want 12", got)
	}
	if got := s.Length(seq); got != 20 {
		t.Fatalf("Length(seq): got %v, want 20", got)
	}
	// root: name header 8 + 6, sequence header 12 + 20
	if got := s.Length(s.Root()); got != 46 {
		t.Fatalf("Length(root): got %v, want 46", got)
	}
}

func TestStore_SetStringRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		tag  DataElementTag
		vr   *VR
		text string
	}{
		{"person name keeps its value", PatientNameTag, PNVR, "DOE^JOHN"},
		{"UI is NUL padded and trimmed on decode", StudyInstanceUIDTag, UIVR, "1.2.840.1"},
		{"US values are binary words", RowsTag, USVR, "512"},
		{"multi-valued US", NewTag(0x0018, 0x1310), USVR, "0\\256\\0\\256"},
		{"signed binary", NewTag(0x0018, 0x9999), SSVR, "-32"},
		{"float decimal string", NewTag(0x0018, 0x9998), FDVR, "0.5"},
		{"attribute tag", NewTag(0x0018, 0x9997), ATVR, "(0010,0010)"},
		{"empty value", PatientIDTag, LOVR, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := NewStore()
			elem, err := s.AppendElement(s.Root(), tc.tag, tc.vr)
			if err != nil {
				t.Fatalf("AppendElement: %v", err)
			}
			if err := s.SetString(elem, tc.text); err != nil {
				t.Fatalf("SetString(%q): %v", tc.text, err)
			}
			if got := s.Length(elem) % 2; got != 0 {
				t.Fatalf("encoded length is odd: %v", s.Length(elem))
			}
			got, err := s.ValueString(elem)
			if err != nil {
				t.Fatalf("ValueString: %v", err)
			}
			if got != tc.text {
				t.Fatalf("got %q, want %q", got, tc.text)
			}
		})
	}
}

func TestStore_SetStringRejectsBadEncodings(t *testing.T) {
	tests := []struct {
		name string
		vr   *VR
		text string
	}{
		{"non-numeric US", USVR, "abc"},
		{"US overflow", USVR, "70000"},
		{"malformed attribute tag", ATVR, "00100010"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := NewStore()
			elem, err := s.AppendElement(s.Root(), NewTag(0x0018, 0x9999), tc.vr)
			if err != nil {
				t.Fatalf("AppendElement: %v", err)
			}
			err = s.SetString(elem, tc.text)
			if !errors.Is(err, ErrEncoding) {
				t.Fatalf("SetString(%q): got %v, want ErrEncoding", tc.text, err)
			}
			if got := s.Length(elem); got != 0 {
				t.Fatalf("value changed by failed encode: length %v, want 0", got)
			}
		})
	}
}

func TestStore_SetStringPadsOddBinaryValues(t *testing.T) {
	s := NewStore()
	elem, err := s.AppendElement(s.Root(), NewTag(0x0009, 0x0001), nil)
	if err != nil {
		t.Fatalf("AppendElement: %v", err)
	}
	if vr := s.VR(elem); vr != UNVR {
		t.Fatalf("dictionary VR of private tag: got %v, want UN", vr.Name)
	}

	if err := s.SetString(elem, "1\\2\\3"); err != nil {
		t.Fatalf("SetString: %v", err)
	}
	want := []byte{1, 2, 3, 0x00}
	if got := s.ValueBytes(elem); !bytes.Equal(got, want) {
		t.Fatalf("got % X, want % X", got, want)
	}
}

func TestStore_SetStringOnSequence(t *testing.T) {
	s := NewStore()
	seq, _ := s.AppendElement(s.Root(), ReferencedStudySequenceTag, SQVR)
	if err := s.SetString(seq, "x"); !errors.Is(err, ErrEncoding) {
		t.Fatalf("SetString on sequence: got %v, want ErrEncoding", err)
	}
}

func TestStore_FindElement(t *testing.T) {
	s := NewStore()
	name, _ := s.AppendElement(s.Root(), PatientNameTag, nil)

	if got := s.FindElement(s.Root(), PatientNameTag); got != name {
		t.Fatalf("FindElement: got %v, want %v", got, name)
	}
	if got := s.FindElement(s.Root(), PatientIDTag); got != NilRef {
		t.Fatalf("FindElement of absent tag: got %v, want NilRef", got)
	}
}
