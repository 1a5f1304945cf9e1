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
	"sort"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	bolt "go.etcd.io/bbolt"
)

var recentBucket = []byte("recent")

// RecentStore persists the recently-opened-files list between editor runs in a bbolt
// database keyed by file path.
type RecentStore struct {
	db *bolt.DB
}

type recentEntry struct {
	Path       string    `msgpack:"path"`
	LastOpened time.Time `msgpack:"last_opened"`
}

// OpenRecentStore opens (creating if needed) the recent-files database at path.
func OpenRecentStore(path string) (*RecentStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening recent files db %v: %v", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(recentBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating recent files bucket: %v", err)
	}
	return &RecentStore{db}, nil
}

// Close releases the underlying database.
func (rs *RecentStore) Close() error {
	return rs.db.Close()
}

// Touch records that the file at path was opened now.
func (rs *RecentStore) Touch(path string) error {
	raw, err := msgpack.Marshal(recentEntry{Path: path, LastOpened: time.Now()})
	if err != nil {
		return fmt.Errorf("encoding recent entry: %v", err)
	}
	return rs.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(recentBucket).Put([]byte(path), raw)
	})
}

// List returns up to limit recently opened paths, most recent first.
func (rs *RecentStore) List(limit int) ([]string, error) {
	var entries []recentEntry
	err := rs.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(recentBucket).ForEach(func(_, raw []byte) error {
			var entry recentEntry
			if err := msgpack.Unmarshal(raw, &entry); err != nil {
				return fmt.Errorf("decoding recent entry: %v", err)
			}
			entries = append(entries, entry)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].LastOpened.After(entries[j].LastOpened)
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	paths := make([]string, len(entries))
	for i, entry := range entries {
		paths[i] = entry.Path
	}
	return paths, nil
}
