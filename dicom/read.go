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
	"fmt"
	"io"
)

const preambleSize = 128

var dicomSignature = []byte("DICM")

// Parse reads a DICOM stream into a Store.
//
// Streams starting with the 128-byte preamble and "DICM" signature are parsed as DICOM
// files: the group 0002 meta header is read first (always explicit VR little endian)
// and preserved for writing, and the transfer syntax it names decides how the data set
// is parsed. Streams without the signature are parsed as bare explicit VR little endian
// element streams.
//
// Only the explicit VR little endian data set syntax is supported. Undefined-length
// sequences and items are handled; undefined-length pixel data (encapsulated transfer
// syntaxes) is not.
func Parse(r io.Reader) (*Store, error) {
	head := make([]byte, preambleSize+len(dicomSignature))
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("reading preamble: %v", err)
	}

	s := NewStore()
	if n == len(head) && bytes.Equal(head[preambleSize:], dicomSignature) {
		if err := readMetaHeader(newDcmReader(r), s); err != nil {
			return nil, err
		}
		syntax, err := s.TransferSyntaxUID()
		if err != nil {
			return nil, err
		}
		if syntax != ExplicitVRLittleEndianUID {
			return nil, fmt.Errorf("unsupported transfer syntax %q, want %q", syntax, ExplicitVRLittleEndianUID)
		}
		if err := readElements(newDcmReader(r), s, s.Root()); err != nil {
			return nil, err
		}
		return s, nil
	}

	// no signature: bare data set stream
	stream := io.MultiReader(bytes.NewReader(head[:n]), r)
	if err := readElements(newDcmReader(stream), s, s.Root()); err != nil {
		return nil, err
	}
	return s, nil
}

// TransferSyntaxUID returns the transfer syntax named by the meta header, or the
// explicit VR little endian default when the store has no meta header.
func (s *Store) TransferSyntaxUID() (string, error) {
	for _, elem := range s.meta {
		if elem.Tag == TransferSyntaxUIDTag {
			return string(bytes.TrimRight(elem.Value, "\x00 ")), nil
		}
	}
	if len(s.meta) > 0 {
		return "", fmt.Errorf("meta header is missing TransferSyntaxUID %v", TransferSyntaxUIDTag)
	}
	return ExplicitVRLittleEndianUID, nil
}

// transfer syntax UIDs from
// http://dicom.nema.org/medical/dicom/current/output/html/part06.html#chapter_A
const (
	// ImplicitVRLittleEndianUID is the Implicit VR Little Endian UID
	ImplicitVRLittleEndianUID = "1.2.840.10008.1.2"
	// ExplicitVRLittleEndianUID is the Explicit VR Little Endian UID
	ExplicitVRLittleEndianUID = "1.2.840.10008.1.2.1"
)

// readMetaHeader reads the group 0002 File Meta elements into s.meta. The group length
// element is required by PS3.10 and bounds the header.
func readMetaHeader(dr *dcmReader, s *Store) error {
	tag, err := dr.Tag()
	if err != nil {
		return fmt.Errorf("reading meta group length tag: %v", err)
	}
	if tag != FileMetaInformationGroupLengthTag {
		return fmt.Errorf("meta header starts with %v, want %v", tag, FileMetaInformationGroupLengthTag)
	}
	vr, length, err := dr.VRAndLength()
	if err != nil {
		return fmt.Errorf("reading meta group length: %v", err)
	}
	if vr != ULVR || length != 4 {
		return fmt.Errorf("meta group length has VR %v length %d, want UL length 4", vr.Name, length)
	}
	groupLength, err := dr.UInt32()
	if err != nil {
		return fmt.Errorf("reading meta group length value: %v", err)
	}

	meta := dr.Limit(int64(groupLength))
	for {
		tag, err := meta.Tag()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading meta element tag: %v", err)
		}
		vr, length, err := meta.VRAndLength()
		if err != nil {
			return fmt.Errorf("reading meta element %v: %v", tag, err)
		}
		value, err := meta.Bytes(int64(length))
		if err != nil {
			return fmt.Errorf("reading meta element %v value: %v", tag, err)
		}
		s.meta = append(s.meta, MetaElement{tag, vr, value})
	}
}

// readElements reads data elements into the given container until the stream ends or an
// item delimitation item closes an undefined-length item.
func readElements(dr *dcmReader, s *Store, container NodeRef) error {
	for {
		tag, err := dr.Tag()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading tag: %v", err)
		}
		if tag == ItemDelimitationItemTag {
			if err := dr.Skip(4); err != nil {
				return fmt.Errorf("reading item delimitation length: %v", err)
			}
			return nil
		}

		vr, length, err := dr.VRAndLength()
		if err != nil {
			return fmt.Errorf("reading element %v header: %v", tag, err)
		}

		if vr.IsSequence() {
			seq := s.alloc(node{kind: KindSequence, parent: container, tag: tag, vr: vr})
			s.nodes[container].children = append(s.nodes[container].children, seq)
			if err := readItems(dr, s, seq, length); err != nil {
				return fmt.Errorf("reading sequence %v: %v", tag, err)
			}
			continue
		}

		if length == UndefinedLength {
			return fmt.Errorf("element %v has undefined length, only sequences may", tag)
		}
		value, err := dr.Bytes(int64(length))
		if err != nil {
			return fmt.Errorf("reading element %v value: %v", tag, err)
		}
		elem := s.alloc(node{kind: KindElement, parent: container, tag: tag, vr: vr, value: value})
		s.nodes[container].children = append(s.nodes[container].children, elem)
	}
}

// readItems reads the items of a sequence. A defined length bounds the item stream; an
// undefined length runs until the sequence delimitation item.
func readItems(dr *dcmReader, s *Store, seq NodeRef, length uint32) error {
	if length != UndefinedLength {
		dr = dr.Limit(int64(length))
	}
	for {
		tag, err := dr.Tag()
		if err == io.EOF {
			if length == UndefinedLength {
				return fmt.Errorf("unexpected end of stream inside undefined-length sequence")
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading item tag: %v", err)
		}
		if tag == SequenceDelimitationItemTag {
			if err := dr.Skip(4); err != nil {
				return fmt.Errorf("reading sequence delimitation length: %v", err)
			}
			return nil
		}
		if tag != ItemTag {
			return fmt.Errorf("got tag %v inside sequence, want %v", tag, ItemTag)
		}
		itemLength, err := dr.UInt32()
		if err != nil {
			return fmt.Errorf("reading item length: %v", err)
		}

		item := s.alloc(node{kind: KindItem, parent: seq})
		s.nodes[seq].children = append(s.nodes[seq].children, item)

		itemReader := dr
		if itemLength != UndefinedLength {
			itemReader = dr.Limit(int64(itemLength))
		}
		if err := readElements(itemReader, s, item); err != nil {
			return fmt.Errorf("reading item contents: %v", err)
		}
	}
}

// dcmReader is a wrapper around io.Reader, providing convenience methods for parsing
// tags, VR codes and numbers in the explicit VR little endian syntax.
type dcmReader struct {
	r io.Reader
}

func newDcmReader(r io.Reader) *dcmReader {
	return &dcmReader{r}
}

// Limit returns a dcmReader that shares the same underlying io.Reader and returns EOF
// after n further bytes.
func (dr *dcmReader) Limit(n int64) *dcmReader {
	return &dcmReader{io.LimitReader(dr.r, n)}
}

// Skip advances the input stream by n bytes
func (dr *dcmReader) Skip(n int64) error {
	_, err := io.CopyN(io.Discard, dr.r, n)
	return err
}

// Bytes returns a byte slice of size n from the input stream
func (dr *dcmReader) Bytes(n int64) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(dr.r, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Tag reads a (group, element) pair. A clean end of stream before the group number
// surfaces as io.EOF.
func (dr *dcmReader) Tag() (DataElementTag, error) {
	group, err := dr.UInt16()
	if err != nil {
		return 0, err
	}
	element, err := dr.UInt16()
	if err != nil {
		return 0, err
	}
	return NewTag(group, element), nil
}

// VRAndLength reads the VR code and value length following a tag in the explicit VR
// syntax, handling both the 16-bit and the reserved 32-bit length forms.
func (dr *dcmReader) VRAndLength() (*VR, uint32, error) {
	code, err := dr.Bytes(2)
	if err != nil {
		return nil, 0, err
	}
	vr, err := lookupVRByName(string(code))
	if err != nil {
		return nil, 0, err
	}

	if longLengthVRs[vr] {
		if err := dr.Skip(2); err != nil { // reserved field
			return nil, 0, err
		}
		length, err := dr.UInt32()
		return vr, length, err
	}
	short, err := dr.UInt16()
	return vr, uint32(short), err
}

// UInt16 returns a little endian uint16 from the input stream
func (dr *dcmReader) UInt16() (uint16, error) {
	b, err := dr.Bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// UInt32 returns a little endian uint32 from the input stream
func (dr *dcmReader) UInt32() (uint32, error) {
	b, err := dr.Bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}
