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
	"fmt"
	"strconv"
	"strings"
)

// A tag path names an element relative to a container, in the form used by the edit
// dialogs: dot-separated segments, each a dictionary keyword ("PatientName") or a
// "group,element" hex pair ("10,10"). Non-final segments must address sequences and may
// carry an item index suffix ("ReferencedStudySequence[1].StudyInstanceUID"); a missing
// index means the first item.

type pathSegment struct {
	tag  DataElementTag
	item int
}

func parseTagPath(path string) ([]pathSegment, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("empty tag path")
	}
	parts := strings.Split(path, ".")
	segments := make([]pathSegment, 0, len(parts))
	for _, part := range parts {
		segment, err := parsePathSegment(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("parsing tag path %q: %v", path, err)
		}
		segments = append(segments, segment)
	}
	return segments, nil
}

func parsePathSegment(text string) (pathSegment, error) {
	segment := pathSegment{item: 0}

	if open := strings.IndexByte(text, '['); open >= 0 {
		if !strings.HasSuffix(text, "]") {
			return segment, fmt.Errorf("segment %q: unterminated item index", text)
		}
		index, err := strconv.Atoi(text[open+1 : len(text)-1])
		if err != nil || index < 0 {
			return segment, fmt.Errorf("segment %q: bad item index", text)
		}
		segment.item = index
		text = text[:open]
	}

	if strings.ContainsRune(text, ',') {
		tag, err := parseTagText(text)
		if err != nil {
			return segment, err
		}
		segment.tag = tag
		return segment, nil
	}

	tag, ok := tagByKeyword[text]
	if !ok {
		return segment, fmt.Errorf("segment %q: unknown keyword", text)
	}
	segment.tag = tag
	return segment, nil
}

// FindElementAtPath resolves a tag path below the given container and returns the
// addressed element, or NilRef if any step of the path is absent.
func (s *Store) FindElementAtPath(container NodeRef, path string) (NodeRef, error) {
	segments, err := parseTagPath(path)
	if err != nil {
		return NilRef, err
	}
	current := container
	for i, segment := range segments {
		elem := s.FindElement(current, segment.tag)
		if elem == NilRef {
			return NilRef, nil
		}
		if i == len(segments)-1 {
			return elem, nil
		}
		if s.Kind(elem) != KindSequence {
			return NilRef, fmt.Errorf("resolving path %q: %v is not a sequence", path, segment.tag)
		}
		current = s.Child(elem, segment.item)
		if current == NilRef {
			return NilRef, nil
		}
	}
	return NilRef, nil
}

// SetElementAtPath encodes value into the element addressed by path below the given
// container. With create true, missing sequences, items and the element itself are
// materialized along the way; with create false an absent step is an error.
func (s *Store) SetElementAtPath(container NodeRef, path, value string, create bool) error {
	segments, err := parseTagPath(path)
	if err != nil {
		return err
	}

	current := container
	for _, segment := range segments[:len(segments)-1] {
		seq := s.FindElement(current, segment.tag)
		if seq == NilRef {
			if !create {
				return fmt.Errorf("setting %q: sequence %v not present", path, segment.tag)
			}
			if seq, err = s.AppendElement(current, segment.tag, SQVR); err != nil {
				return fmt.Errorf("setting %q: %v", path, err)
			}
		}
		if s.Kind(seq) != KindSequence {
			return fmt.Errorf("setting %q: %v is not a sequence", path, segment.tag)
		}
		for create && s.ChildCount(seq) <= segment.item {
			if _, err := s.AppendItem(seq); err != nil {
				return fmt.Errorf("setting %q: %v", path, err)
			}
		}
		current = s.Child(seq, segment.item)
		if current == NilRef {
			return fmt.Errorf("setting %q: sequence %v has no item %d", path, segment.tag, segment.item)
		}
	}

	last := segments[len(segments)-1]
	elem := s.FindElement(current, last.tag)
	if elem == NilRef {
		if !create {
			return fmt.Errorf("setting %q: element %v not present", path, last.tag)
		}
		if elem, err = s.AppendElement(current, last.tag, nil); err != nil {
			return fmt.Errorf("setting %q: %v", path, err)
		}
	}
	if err := s.SetString(elem, value); err != nil {
		return fmt.Errorf("setting %q: %w", path, err)
	}
	return nil
}

// DeleteElementAtPath removes the element addressed by path below the given container.
// Deleting an absent element is an error.
func (s *Store) DeleteElementAtPath(container NodeRef, path string) error {
	elem, err := s.FindElementAtPath(container, path)
	if err != nil {
		return err
	}
	if elem == NilRef {
		return fmt.Errorf("deleting %q: element not present", path)
	}
	return s.Remove(elem)
}
