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
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrEncoding is wrapped by every error reporting that a textual value cannot be encoded
// under the element's VR.
var ErrEncoding = errors.New("value not encodable for VR")

// multiValueDelimiter separates the values of a multi-valued field in its textual form as
// specified in http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_6.4
const multiValueDelimiter = "\\"

// ValueString decodes the value field of a leaf element into its textual form. Multiple
// values are joined with the backslash delimiter. Sequences and invalid refs decode to
// the empty string.
func (s *Store) ValueString(ref NodeRef) (string, error) {
	if s.Kind(ref) != KindElement {
		return "", nil
	}
	vr := s.nodes[ref].vr
	value := s.nodes[ref].value

	if vr.isTextual() {
		return strings.TrimRight(string(value), "\x00 "), nil
	}
	if vr.wordSize == 0 || len(value)%vr.wordSize != 0 {
		return "", fmt.Errorf("decoding %v value: length %d not a multiple of %d", vr.Name, len(value), vr.wordSize)
	}

	parts := make([]string, 0, len(value)/vr.wordSize)
	for i := 0; i < len(value); i += vr.wordSize {
		word := value[i : i+vr.wordSize]
		parts = append(parts, formatWord(vr, word))
	}
	return strings.Join(parts, multiValueDelimiter), nil
}

func formatWord(vr *VR, word []byte) string {
	switch vr {
	case SSVR:
		return strconv.FormatInt(int64(int16(binary.LittleEndian.Uint16(word))), 10)
	case USVR, OWVR:
		return strconv.FormatUint(uint64(binary.LittleEndian.Uint16(word)), 10)
	case SLVR:
		return strconv.FormatInt(int64(int32(binary.LittleEndian.Uint32(word))), 10)
	case ULVR, OLVR:
		return strconv.FormatUint(uint64(binary.LittleEndian.Uint32(word)), 10)
	case FLVR, OFVR:
		return strconv.FormatFloat(float64(math.Float32frombits(binary.LittleEndian.Uint32(word))), 'g', -1, 32)
	case FDVR, ODVR:
		return strconv.FormatFloat(math.Float64frombits(binary.LittleEndian.Uint64(word)), 'g', -1, 64)
	case ATVR:
		group := binary.LittleEndian.Uint16(word)
		element := binary.LittleEndian.Uint16(word[2:])
		return NewTag(group, element).String()
	default: // OB, UN
		return strconv.FormatUint(uint64(word[0]), 10)
	}
}

// SetString encodes text under the element's VR and replaces its value field. The
// encoded value is padded to even length. Returns an error wrapping ErrEncoding if the
// text cannot be represented under the VR.
func (s *Store) SetString(ref NodeRef, text string) error {
	kind := s.Kind(ref)
	if kind != KindElement {
		return fmt.Errorf("setting %v node from text: %w", kind, ErrEncoding)
	}
	value, err := encodeValue(s.nodes[ref].vr, text)
	if err != nil {
		return err
	}
	s.nodes[ref].value = value
	return nil
}

// SetBytes replaces the element's value field wholesale with the given bytes. The caller
// owns word alignment; the store takes the bytes as given.
func (s *Store) SetBytes(ref NodeRef, value []byte) error {
	if s.Kind(ref) != KindElement {
		return fmt.Errorf("setting %v node from bytes: %w", s.Kind(ref), ErrEncoding)
	}
	s.nodes[ref].value = append([]byte(nil), value...)
	return nil
}

func encodeValue(vr *VR, text string) ([]byte, error) {
	if vr.isTextual() {
		value := []byte(text)
		if len(value)%2 != 0 {
			value = append(value, vr.paddingByte())
		}
		return value, nil
	}
	if text == "" {
		return []byte{}, nil
	}

	parts := strings.Split(text, multiValueDelimiter)
	value := make([]byte, 0, len(parts)*vr.wordSize)
	for _, part := range parts {
		word, err := encodeWord(vr, strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("encoding %q as %v: %w", part, vr.Name, ErrEncoding)
		}
		value = append(value, word...)
	}
	if len(value)%2 != 0 {
		value = append(value, 0x00)
	}
	return value, nil
}

func encodeWord(vr *VR, text string) ([]byte, error) {
	word := make([]byte, vr.wordSize)
	switch vr {
	case SSVR:
		v, err := strconv.ParseInt(text, 10, 16)
		if err != nil {
			return nil, err
		}
		binary.LittleEndian.PutUint16(word, uint16(v))
	case USVR, OWVR:
		v, err := strconv.ParseUint(text, 10, 16)
		if err != nil {
			return nil, err
		}
		binary.LittleEndian.PutUint16(word, uint16(v))
	case SLVR:
		v, err := strconv.ParseInt(text, 10, 32)
		if err != nil {
			return nil, err
		}
		binary.LittleEndian.PutUint32(word, uint32(v))
	case ULVR, OLVR:
		v, err := strconv.ParseUint(text, 10, 32)
		if err != nil {
			return nil, err
		}
		binary.LittleEndian.PutUint32(word, uint32(v))
	case FLVR, OFVR:
		v, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return nil, err
		}
		binary.LittleEndian.PutUint32(word, math.Float32bits(float32(v)))
	case FDVR, ODVR:
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, err
		}
		binary.LittleEndian.PutUint64(word, math.Float64bits(v))
	case ATVR:
		tag, err := parseTagText(text)
		if err != nil {
			return nil, err
		}
		binary.LittleEndian.PutUint16(word, tag.GroupNumber())
		binary.LittleEndian.PutUint16(word[2:], tag.ElementNumber())
	case OBVR, UNVR:
		v, err := strconv.ParseUint(text, 10, 8)
		if err != nil {
			return nil, err
		}
		word[0] = byte(v)
	default:
		return nil, fmt.Errorf("no textual encoding for %v", vr.Name)
	}
	return word, nil
}

// parseTagText parses "GGGG,EEEE" with optional surrounding parentheses and flexible hex
// digit counts, e.g. "(0010,0010)" or "10,10".
func parseTagText(text string) (DataElementTag, error) {
	text = strings.TrimPrefix(strings.TrimSuffix(text, ")"), "(")
	groupText, elementText, found := strings.Cut(text, ",")
	if !found {
		return 0, fmt.Errorf("parsing tag %q: want group,element", text)
	}
	group, err := strconv.ParseUint(strings.TrimSpace(groupText), 16, 16)
	if err != nil {
		return 0, fmt.Errorf("parsing tag group %q: %v", groupText, err)
	}
	element, err := strconv.ParseUint(strings.TrimSpace(elementText), 16, 16)
	if err != nil {
		return 0, fmt.Errorf("parsing tag element %q: %v", elementText, err)
	}
	return NewTag(uint16(group), uint16(element)), nil
}
