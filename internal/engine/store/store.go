// Package store persists tracked activities and work contexts.
//
// Activities live in date-segmented JSONL files under <dir>/activities, with a
// bounded in-memory index for recency queries. Contexts live in a single
// contexts.json snapshot.
package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/tkingovr/context-continuity/api"
)

const segmentDateLayout = "2006-01-02"

// Store is the activity and context database.
type Store struct {
	mu          sync.Mutex
	dir         string
	currentDate string
	file        *os.File
	writer      *bufio.Writer

	// Bounded in-memory index of recent activities, oldest first.
	records []*api.Activity
	maxMem  int

	contexts map[string]*api.WorkContext
}

// Open creates or reopens a store rooted at dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(dir, "activities"), 0o750); err != nil {
		return nil, fmt.Errorf("creating activity directory: %w", err)
	}
	s := &Store{
		dir:      dir,
		maxMem:   10000,
		contexts: make(map[string]*api.WorkContext),
	}
	if err := s.loadSegments(); err != nil {
		return nil, err
	}
	if err := s.loadContexts(); err != nil {
		return nil, err
	}
	return s, nil
}

// Append writes one activity record. An empty ID is assigned a ULID; a zero
// timestamp is stamped with the current time.
func (s *Store) Append(a *api.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == "" {
		a.ID = ulid.Make().String()
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now()
	}

	dateStr := a.Timestamp.Format(segmentDateLayout)
	if dateStr != s.currentDate {
		if err := s.rotate(dateStr); err != nil {
			return err
		}
	}

	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshaling activity: %w", err)
	}
	if _, err := s.writer.Write(data); err != nil {
		return err
	}
	if err := s.writer.WriteByte('\n'); err != nil {
		return err
	}
	if err := s.writer.Flush(); err != nil {
		return err
	}

	if len(s.records) >= s.maxMem {
		s.records = s.records[1:]
	}
	s.records = append(s.records, a)
	return nil
}

// Recent returns up to limit activities from the past hours, newest first.
func (s *Store) Recent(hours, limit int) []*api.Activity {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-time.Duration(hours) * time.Hour)
	out := make([]*api.Activity, 0, limit)
	for i := len(s.records) - 1; i >= 0; i-- {
		r := s.records[i]
		if r.Timestamp.Before(cutoff) {
			continue
		}
		out = append(out, r)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// Lookup returns the activity with the given id, if indexed.
func (s *Store) Lookup(id string) (*api.Activity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(s.records) - 1; i >= 0; i-- {
		if s.records[i].ID == id {
			return s.records[i], true
		}
	}
	return nil, false
}

// Cleanup deletes activity segments older than days and reports how many
// records were removed.
func (s *Store) Cleanup(days int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().AddDate(0, 0, -days)
	cutoffDate := cutoff.Format(segmentDateLayout)

	dir := filepath.Join(s.dir, "activities")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("reading activity directory: %w", err)
	}

	deleted := 0
	for _, e := range entries {
		name := e.Name()
		if !strings.HasSuffix(name, ".jsonl") {
			continue
		}
		date := strings.TrimSuffix(name, ".jsonl")
		if date >= cutoffDate {
			continue
		}
		if date == s.currentDate {
			// Never delete the open segment out from under the writer.
			continue
		}
		path := filepath.Join(dir, name)
		n, err := countLines(path)
		if err != nil {
			return deleted, err
		}
		if err := os.Remove(path); err != nil {
			return deleted, fmt.Errorf("removing segment %s: %w", name, err)
		}
		deleted += n
	}

	kept := s.records[:0]
	for _, r := range s.records {
		if !r.Timestamp.Before(cutoff) {
			kept = append(kept, r)
		}
	}
	s.records = kept
	return deleted, nil
}

// Stats summarizes the store contents.
func (s *Store) Stats() *api.DatabaseStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := &api.DatabaseStats{
		TotalActivities: len(s.records),
		TotalContexts:   len(s.contexts),
		ByApp:           make(map[string]int),
	}
	for _, r := range s.records {
		if r.App != "" {
			stats.ByApp[r.App]++
		}
	}
	if len(s.records) > 0 {
		oldest := s.records[0].Timestamp
		newest := s.records[len(s.records)-1].Timestamp
		stats.OldestActivity = &oldest
		stats.NewestActivity = &newest
	}
	return stats
}

// Close flushes and closes the open segment.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.writer != nil {
		if err := s.writer.Flush(); err != nil {
			return err
		}
	}
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}

func (s *Store) rotate(dateStr string) error {
	if s.writer != nil {
		if err := s.writer.Flush(); err != nil {
			return err
		}
	}
	if s.file != nil {
		if err := s.file.Close(); err != nil {
			return err
		}
	}

	path := filepath.Join(s.dir, "activities", dateStr+".jsonl")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return fmt.Errorf("opening activity segment: %w", err)
	}

	s.file = f
	s.writer = bufio.NewWriter(f)
	s.currentDate = dateStr
	return nil
}

func (s *Store) loadSegments() error {
	dir := filepath.Join(s.dir, "activities")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading activity directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".jsonl") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("opening segment %s: %w", name, err)
		}
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}
			var a api.Activity
			if err := json.Unmarshal(line, &a); err != nil {
				continue // skip corrupt lines
			}
			if len(s.records) >= s.maxMem {
				s.records = s.records[1:]
			}
			s.records = append(s.records, &a)
		}
		err = scanner.Err()
		_ = f.Close()
		if err != nil {
			return fmt.Errorf("reading segment %s: %w", name, err)
		}
	}
	return nil
}

func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if len(scanner.Bytes()) > 0 {
			n++
		}
	}
	return n, scanner.Err()
}
