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
	"encoding/binary"
	"strings"
	"testing"
)

// streamBuilder assembles explicit VR little endian test streams.
type streamBuilder struct {
	buf bytes.Buffer
}

func (b *streamBuilder) tag(tag DataElementTag) *streamBuilder {
	binary.Write(&b.buf, binary.LittleEndian, tag.GroupNumber())
	binary.Write(&b.buf, binary.LittleEndian, tag.ElementNumber())
	return b
}

func (b *streamBuilder) shortElement(tag DataElementTag, vr *VR, value string) *streamBuilder {
	b.tag(tag)
	b.buf.WriteString(vr.Name)
	binary.Write(&b.buf, binary.LittleEndian, uint16(len(value)))
	b.buf.WriteString(value)
	return b
}

func (b *streamBuilder) sequenceUndefined(tag DataElementTag) *streamBuilder {
	b.tag(tag)
	b.buf.WriteString("SQ")
	binary.Write(&b.buf, binary.LittleEndian, uint16(0))
	binary.Write(&b.buf, binary.LittleEndian, uint32(UndefinedLength))
	return b
}

func (b *streamBuilder) itemUndefined() *streamBuilder {
	b.tag(ItemTag)
	binary.Write(&b.buf, binary.LittleEndian, uint32(UndefinedLength))
	return b
}

func (b *streamBuilder) itemEnd() *streamBuilder {
	b.tag(ItemDelimitationItemTag)
	binary.Write(&b.buf, binary.LittleEndian, uint32(0))
	return b
}

func (b *streamBuilder) sequenceEnd() *streamBuilder {
	b.tag(SequenceDelimitationItemTag)
	binary.Write(&b.buf, binary.LittleEndian, uint32(0))
	return b
}

func TestParse_BareElementStream(t *testing.T) {
	var b streamBuilder
	b.shortElement(StudyDateTag, DAVR, "20240101")
	b.shortElement(PatientNameTag, PNVR, "DOE^JOHN")
	b.sequenceUndefined(ReferencedStudySequenceTag)
	b.itemUndefined()
	b.shortElement(StudyInstanceUIDTag, UIVR, "1.2\x00")
	b.itemEnd()
	b.sequenceEnd()

	s, err := Parse(&b.buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if got := s.ChildCount(s.Root()); got != 3 {
		t.Fatalf("root child count: got %v, want 3", got)
	}

	name := s.FindElement(s.Root(), PatientNameTag)
	value, err := s.ValueString(name)
	if err != nil {
		t.Fatalf("ValueString: %v", err)
	}
	if value != "DOE^JOHN" {
		t.Fatalf("patient name: got %q, want %q", value, "DOE^JOHN")
	}

	seq := s.FindElement(s.Root(), ReferencedStudySequenceTag)
	if got := s.Kind(seq); got != KindSequence {
		t.Fatalf("sequence kind: got %v, want %v", got, KindSequence)
	}
	if got := s.ChildCount(seq); got != 1 {
		t.Fatalf("sequence item count: got %v, want 1", got)
	}

	uid := s.FindElement(s.Child(seq, 0), StudyInstanceUIDTag)
	value, err = s.ValueString(uid)
	if err != nil {
		t.Fatalf("ValueString: %v", err)
	}
	if value != "1.2" {
		t.Fatalf("study UID: got %q, want %q", value, "1.2")
	}
}

func TestParse_DefinedLengthSequence(t *testing.T) {
	var item streamBuilder
	item.shortElement(StudyInstanceUIDTag, UIVR, "1.2\x00")
	itemBytes := item.buf.Bytes()

	var b streamBuilder
	b.tag(ReferencedStudySequenceTag)
	b.buf.WriteString("SQ")
	binary.Write(&b.buf, binary.LittleEndian, uint16(0))
	binary.Write(&b.buf, binary.LittleEndian, uint32(8+len(itemBytes)))
	b.tag(ItemTag)
	binary.Write(&b.buf, binary.LittleEndian, uint32(len(itemBytes)))
	b.buf.Write(itemBytes)
	b.shortElement(PatientNameTag, PNVR, "AB")

	s, err := Parse(&b.buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	seq := s.FindElement(s.Root(), ReferencedStudySequenceTag)
	if got := s.ChildCount(seq); got != 1 {
		t.Fatalf("sequence item count: got %v, want 1", got)
	}
	// the element following the defined-length sequence must still be read
	if got := s.FindElement(s.Root(), PatientNameTag); got == NilRef {
		t.Fatalf("element after defined-length sequence was not parsed")
	}
}

func TestParse_RejectsUndefinedLengthElement(t *testing.T) {
	var b streamBuilder
	b.tag(PixelDataTag)
	b.buf.WriteString("OW")
	binary.Write(&b.buf, binary.LittleEndian, uint16(0))
	binary.Write(&b.buf, binary.LittleEndian, uint32(UndefinedLength))

	if _, err := Parse(&b.buf); err == nil {
		t.Fatalf("Parse of undefined-length pixel data: got nil error, want error")
	}
}

func TestWriteParse_FileRoundTrip(t *testing.T) {
	s := NewStore()
	name, _ := s.AppendElement(s.Root(), PatientNameTag, nil)
	if err := s.SetString(name, "DOE^JANE"); err != nil {
		t.Fatalf("SetString: %v", err)
	}
	seq, _ := s.AppendElement(s.Root(), ReferencedStudySequenceTag, SQVR)
	for i := 0; i < 2; i++ {
		item, err := s.AppendItem(seq)
		if err != nil {
			t.Fatalf("AppendItem: %v", err)
		}
		uid, _ := s.AppendElement(item, StudyInstanceUIDTag, nil)
		if err := s.SetString(uid, "1.2.840.1"); err != nil {
			t.Fatalf("SetString: %v", err)
		}
	}

	var file bytes.Buffer
	if err := Write(&file, s); err != nil {
		t.Fatalf("Write: %v", err)
	}

	// the output must be a signed DICOM file
	raw := file.Bytes()
	if !bytes.Equal(raw[preambleSize:preambleSize+4], dicomSignature) {
		t.Fatalf("missing DICM signature")
	}

	parsed, err := Parse(&file)
	if err != nil {
		t.Fatalf("Parse of written file: %v", err)
	}

	syntax, err := parsed.TransferSyntaxUID()
	if err != nil {
		t.Fatalf("TransferSyntaxUID: %v", err)
	}
	if syntax != ExplicitVRLittleEndianUID {
		t.Fatalf("transfer syntax: got %q, want %q", syntax, ExplicitVRLittleEndianUID)
	}

	value, err := parsed.ValueString(parsed.FindElement(parsed.Root(), PatientNameTag))
	if err != nil {
		t.Fatalf("ValueString: %v", err)
	}
	if value != "DOE^JANE" {
		t.Fatalf("patient name: got %q, want %q", value, "DOE^JANE")
	}

	parsedSeq := parsed.FindElement(parsed.Root(), ReferencedStudySequenceTag)
	if got := parsed.ChildCount(parsedSeq); got != 2 {
		t.Fatalf("item count: got %v, want 2", got)
	}
	for i := 0; i < 2; i++ {
		uid := parsed.FindElement(parsed.Child(parsedSeq, i), StudyInstanceUIDTag)
		value, err := parsed.ValueString(uid)
		if err != nil {
			t.Fatalf("ValueString of item %d: %v", i, err)
		}
		if value != "1.2.840.1" {
			t.Fatalf("item %d UID: got %q, want %q", i, value, "1.2.840.1")
		}
	}
}

func TestParse_RejectsForeignTransferSyntax(t *testing.T) {
	s := NewStore()
	s.meta = append(s.meta,
		MetaElement{TransferSyntaxUIDTag, UIVR, paddedUID(ImplicitVRLittleEndianUID)},
	)

	var file bytes.Buffer
	if err := Write(&file, s); err != nil {
		t.Fatalf("Write: %v", err)
	}
	_, err := Parse(&file)
	if err == nil || !strings.Contains(err.Error(), "unsupported transfer syntax") {
		t.Fatalf("Parse: got %v, want unsupported transfer syntax error", err)
	}
}
