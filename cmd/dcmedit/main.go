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

// Command dcmedit opens DICOM files, shows their projected metadata tree and applies
// tag-path edits across all of them.
//
//	dcmedit -dump scan1.dcm scan2.dcm
//	dcmedit -set PatientName=ANON -save *.dcm
//	dcmedit -delete ReferencedStudySequence[0].StudyInstanceUID scan.dcm
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/r-matlock/dcmedit/model"
	"github.com/r-matlock/dcmedit/session"
)

func main() {
	configPath := flag.String("config", "dcmedit.yaml", "path to the YAML config file")
	dump := flag.Bool("dump", false, "print the projected tree of each file")
	set := flag.String("set", "", "tagpath=value to set in every file, creating the element if absent")
	setExisting := flag.String("set-existing", "", "tagpath=value to set in every file where the element exists")
	deletePath := flag.String("delete", "", "tagpath to delete from every file")
	save := flag.Bool("save", false, "write modified files back to disk")
	flag.Parse()

	log := logrus.New()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("bad log level %q: %v", cfg.LogLevel, err)
	}
	log.SetLevel(level)

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: dcmedit [flags] file.dcm...")
		flag.PrintDefaults()
		os.Exit(2)
	}

	files := session.NewFiles(log)
	datasetModel := model.NewDatasetModel(files, log)

	recent, err := session.OpenRecentStore(cfg.RecentDB)
	if err != nil {
		log.WithError(err).Warn("Recent files store unavailable")
	} else {
		defer recent.Close()
	}

	for _, path := range flag.Args() {
		if _, err := files.Open(path); err != nil {
			log.Fatal(err)
		}
		if recent != nil {
			if err := recent.Touch(path); err != nil {
				log.WithError(err).Warn("Failed to record recent file")
			}
		}
	}

	failed := false
	for _, op := range batchOps(*set, *setExisting, *deletePath) {
		for _, failure := range files.EditAll(op.op, op.path, op.value) {
			log.WithError(failure.Err).Errorf("Editing %v failed", failure.File.Path())
			failed = true
		}
	}

	if *dump {
		for i, file := range files.All() {
			if err := files.SetCurrent(i); err != nil {
				log.Fatal(err)
			}
			fmt.Printf("== %v\n", file.Path())
			dumpTree(datasetModel, model.RootAddress, 0)
		}
	}

	if *save {
		for _, file := range files.All() {
			if !file.HasUnsavedChanges() {
				continue
			}
			if err := file.Save(); err != nil {
				log.WithError(err).Errorf("Saving %v failed", file.Path())
				failed = true
			}
		}
	}

	if failed {
		os.Exit(1)
	}
}

type batchRequest struct {
	op    session.BatchOp
	path  string
	value string
}

func batchOps(set, setExisting, deletePath string) []batchRequest {
	var ops []batchRequest
	if set != "" {
		path, value, _ := strings.Cut(set, "=")
		ops = append(ops, batchRequest{session.OpSet, path, value})
	}
	if setExisting != "" {
		path, value, _ := strings.Cut(setExisting, "=")
		ops = append(ops, batchRequest{session.OpSetExisting, path, value})
	}
	if deletePath != "" {
		ops = append(ops, batchRequest{session.OpDelete, deletePath, ""})
	}
	return ops
}

// dumpTree walks the projection the way a tree view would: row by row under each
// parent, printing the four columns.
func dumpTree(m *model.DatasetModel, parent model.Address, depth int) {
	for row := 0; row < m.RowCount(parent); row++ {
		addr := m.Index(row, model.ColumnTag, parent)
		if !addr.IsValid() {
			continue
		}
		columns := make([]string, 0, m.ColumnCount())
		for c := model.ColumnTag; c < model.ColumnCount; c++ {
			columns = append(columns, m.Data(addr, c))
		}
		marker := " "
		if m.EditableCell(addr, model.ColumnValue) {
			marker = "*"
		}
		fmt.Printf("%s%s %s\n", strings.Repeat("  ", depth), marker, strings.Join(columns, " | "))
		dumpTree(m, addr, depth+1)
	}
}
