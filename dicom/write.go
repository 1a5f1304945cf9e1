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
	"encoding/binary"
	"fmt"
	"io"
)

// implementationClassUID identifies this implementation in files it writes. It uses the
// 2.25 UUID-derived root reserved for self-assigned UIDs.
const implementationClassUID = "2.25.306071356471201454242231618876973291485"

// Write encodes the Store as a DICOM file: preamble, signature, regenerated meta header
// and the data set in the explicit VR little endian syntax with defined lengths.
//
// The FileMetaInformationGroupLength element is recomputed from the meta elements being
// written, so edits made since parsing cannot desynchronize the header.
func Write(w io.Writer, s *Store) error {
	dw := &dcmWriter{w}

	if err := dw.Bytes(make([]byte, preambleSize)); err != nil {
		return fmt.Errorf("writing preamble: %v", err)
	}
	if err := dw.Bytes(dicomSignature); err != nil {
		return fmt.Errorf("writing signature: %v", err)
	}
	if err := writeMetaHeader(dw, s.metaForWrite()); err != nil {
		return err
	}
	return writeElements(dw, s, s.Root())
}

// metaForWrite returns the meta elements to write, synthesizing a minimal header for
// stores that were never parsed from a file. The group length element is dropped; the
// writer recomputes it.
func (s *Store) metaForWrite() []MetaElement {
	meta := make([]MetaElement, 0, len(s.meta)+2)
	hasSyntax := false
	for _, elem := range s.meta {
		if elem.Tag == FileMetaInformationGroupLengthTag {
			continue
		}
		if elem.Tag == TransferSyntaxUIDTag {
			hasSyntax = true
		}
		meta = append(meta, elem)
	}
	if !hasSyntax {
		meta = append(meta,
			MetaElement{FileMetaInformationVersionTag, OBVR, []byte{0x00, 0x01}},
			MetaElement{TransferSyntaxUIDTag, UIVR, paddedUID(ExplicitVRLittleEndianUID)},
			MetaElement{ImplementationClassUIDTag, UIVR, paddedUID(implementationClassUID)},
		)
	}
	return meta
}

func paddedUID(uid string) []byte {
	value := []byte(uid)
	if len(value)%2 != 0 {
		value = append(value, 0x00)
	}
	return value
}

// writeMetaHeader writes the group 0002 elements preceded by a freshly computed
// FileMetaInformationGroupLength, as required by
// http://dicom.nema.org/medical/dicom/current/output/html/part10.html#sect_7.1
func writeMetaHeader(dw *dcmWriter, meta []MetaElement) error {
	var groupLength uint32
	for _, elem := range meta {
		groupLength += metaHeaderSize(elem.VR) + uint32(len(elem.Value))
	}

	lengthValue := make([]byte, 4)
	binary.LittleEndian.PutUint32(lengthValue, groupLength)
	all := append([]MetaElement{{FileMetaInformationGroupLengthTag, ULVR, lengthValue}}, meta...)

	for _, elem := range all {
		if err := dw.Tag(elem.Tag); err != nil {
			return fmt.Errorf("writing meta tag %v: %v", elem.Tag, err)
		}
		if err := dw.VRAndLength(elem.VR, uint32(len(elem.Value))); err != nil {
			return fmt.Errorf("writing meta header of %v: %v", elem.Tag, err)
		}
		if err := dw.Bytes(elem.Value); err != nil {
			return fmt.Errorf("writing meta value of %v: %v", elem.Tag, err)
		}
	}
	return nil
}

func metaHeaderSize(vr *VR) uint32 {
	if longLengthVRs[vr] {
		return 12
	}
	return 8
}

// writeElements writes the children of a dataset or item container in underlying order.
func writeElements(dw *dcmWriter, s *Store, container NodeRef) error {
	for i := 0; i < s.ChildCount(container); i++ {
		child := s.Child(container, i)
		if err := dw.Tag(s.Tag(child)); err != nil {
			return fmt.Errorf("writing tag %v: %v", s.Tag(child), err)
		}
		if err := dw.VRAndLength(s.VR(child), s.Length(child)); err != nil {
			return fmt.Errorf("writing header of %v: %v", s.Tag(child), err)
		}

		if s.Kind(child) == KindSequence {
			if err := writeItems(dw, s, child); err != nil {
				return fmt.Errorf("writing sequence %v: %v", s.Tag(child), err)
			}
			continue
		}
		if err := dw.Bytes(s.ValueBytes(child)); err != nil {
			return fmt.Errorf("writing value of %v: %v", s.Tag(child), err)
		}
	}
	return nil
}

// writeItems writes every item of a sequence with defined lengths.
func writeItems(dw *dcmWriter, s *Store, seq NodeRef) error {
	for i := 0; i < s.ChildCount(seq); i++ {
		item := s.Child(seq, i)
		if err := dw.Tag(ItemTag); err != nil {
			return fmt.Errorf("writing item tag: %v", err)
		}
		if err := dw.UInt32(s.Length(item)); err != nil {
			return fmt.Errorf("writing item length: %v", err)
		}
		if err := writeElements(dw, s, item); err != nil {
			return err
		}
	}
	return nil
}

// dcmWriter wraps an io.Writer with helpers for the explicit VR little endian syntax.
type dcmWriter struct {
	io.Writer
}

func (dw *dcmWriter) Tag(tag DataElementTag) error {
	if err := dw.UInt16(tag.GroupNumber()); err != nil {
		return err
	}
	return dw.UInt16(tag.ElementNumber())
}

// VRAndLength writes the VR code and value length, choosing the 16-bit or reserved
// 32-bit length form required by the VR as specified in
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_7.1.2
func (dw *dcmWriter) VRAndLength(vr *VR, length uint32) error {
	if err := dw.String(vr.Name); err != nil {
		return err
	}
	if longLengthVRs[vr] {
		if err := dw.UInt16(0); err != nil { // reserved field
			return err
		}
		return dw.UInt32(length)
	}
	if length > 0xFFFF {
		return fmt.Errorf("length %d does not fit the 16-bit form of %v", length, vr.Name)
	}
	return dw.UInt16(uint16(length))
}

func (dw *dcmWriter) UInt16(v uint16) error {
	buf := make([]byte, 2)
	binary.LittleEndian.PutUint16(buf, v)
	return dw.Bytes(buf)
}

func (dw *dcmWriter) UInt32(v uint32) error {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, v)
	return dw.Bytes(buf)
}

func (dw *dcmWriter) String(s string) error {
	_, err := dw.Write([]byte(s))
	return err
}

func (dw *dcmWriter) Bytes(b []byte) error {
	_, err := dw.Write(b)
	return err
}
