package result

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/signalnine/seedbench/internal/record"
)

const (
	manifestFile = "manifest.json"
	recordsFile  = "records.jsonl"

	LatestLink   = "latest"
	BaselineLink = "baseline"
)

func CreateRunDir(baseDir string) (string, error) {
	runsDir := filepath.Join(baseDir, "runs")
	stamp := time.Now().UTC().Format("2006-01-02T15-04-05")
	runsDir, err := filepath.Abs(runsDir)
	if err != nil {
		return "", fmt.Errorf("resolving run dir: %w", err)
	}
	if err := os.MkdirAll(runsDir, 0o755); err != nil {
		return "", fmt.Errorf("creating run dir: %w", err)
	}
	// Runs started within the same second get a numeric suffix.
	runDir := filepath.Join(runsDir, stamp)
	for i := 2; ; i++ {
		err := os.Mkdir(runDir, 0o755)
		if err == nil {
			break
		}
		if !errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("creating run dir: %w", err)
		}
		runDir = filepath.Join(runsDir, fmt.Sprintf("%s-%d", stamp, i))
	}
	if err := relink(filepath.Join(baseDir, LatestLink), runDir); err != nil {
		return "", fmt.Errorf("creating latest symlink: %w", err)
	}
	return runDir, nil
}

// MarkBaseline points the baseline symlink at runDir.
func MarkBaseline(baseDir, runDir string) error {
	abs, err := filepath.Abs(runDir)
	if err != nil {
		return fmt.Errorf("resolving run dir: %w", err)
	}
	if _, err := os.Stat(filepath.Join(abs, manifestFile)); err != nil {
		return fmt.Errorf("not a run directory: %s", runDir)
	}
	if err := relink(filepath.Join(baseDir, BaselineLink), abs); err != nil {
		return fmt.Errorf("creating baseline symlink: %w", err)
	}
	return nil
}

// Resolve follows a latest/baseline symlink under baseDir. It returns "" when
// the link does not exist.
func Resolve(baseDir, link string) (string, error) {
	target, err := filepath.EvalSymlinks(filepath.Join(baseDir, link))
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", link, err)
	}
	return target, nil
}

func relink(link, target string) error {
	os.Remove(link)
	return os.Symlink(target, link)
}

func NewManifest(name, command, scorer, revision string, seeds []int) *Manifest {
	return &Manifest{
		ID:        uuid.NewString(),
		Name:      name,
		Command:   command,
		Scorer:    scorer,
		Revision:  revision,
		Seeds:     seeds,
		CreatedAt: time.Now().UTC(),
	}
}

func WriteManifest(runDir string, m *Manifest) error {
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return fmt.Errorf("creating run dir: %w", err)
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	return os.WriteFile(filepath.Join(runDir, manifestFile), data, 0o644)
}

func ReadManifest(runDir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(runDir, manifestFile))
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}

// Store appends records to a run directory, one JSON object per line. Every
// Append is flushed to disk so an interrupted run keeps what it finished.
type Store struct {
	mu sync.Mutex
	f  *os.File
}

func OpenStore(runDir string) (*Store, error) {
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating run dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(runDir, recordsFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening records: %w", err)
	}
	return &Store{f: f}, nil
}

// Append is safe for concurrent use.
func (s *Store) Append(r record.Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing record: %w", err)
	}
	return s.f.Sync()
}

func (s *Store) Close() error {
	return s.f.Close()
}

// ReadRecords loads every record stored in runDir, in the order they were
// appended. A missing records file yields no records. A torn final line
// from an interrupted write is skipped; a damaged line anywhere else is an
// error.
func ReadRecords(runDir string) ([]record.Record, error) {
	f, err := os.Open(filepath.Join(runDir, recordsFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading records: %w", err)
	}
	defer f.Close()
	return decodeRecords(f)
}

func decodeRecords(r io.Reader) ([]record.Record, error) {
	var records []record.Record
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	line, badLine := 0, 0
	var badErr error
	for sc.Scan() {
		line++
		b := bytes.TrimSpace(sc.Bytes())
		if len(b) == 0 {
			continue
		}
		if badErr != nil {
			return nil, fmt.Errorf("reading records line %d: %w", badLine, badErr)
		}
		var rec record.Record
		if err := json.Unmarshal(b, &rec); err != nil {
			badLine, badErr = line, err
			continue
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading records line %d: %w", line, err)
	}
	return records, nil
}

// DoneSeeds returns the seeds that already have a stored record.
func DoneSeeds(records []record.Record) map[string]bool {
	done := make(map[string]bool, len(records))
	for _, r := range records {
		done[r.Seed()] = true
	}
	return done
}

// ListRuns returns the stored runs under baseDir, oldest first.
func ListRuns(baseDir string) ([]RunInfo, error) {
	entries, err := os.ReadDir(filepath.Join(baseDir, "runs"))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	latest, _ := Resolve(baseDir, LatestLink)
	baseline, _ := Resolve(baseDir, BaselineLink)

	var runs []RunInfo
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir, err := filepath.Abs(filepath.Join(baseDir, "runs", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("resolving run dir: %w", err)
		}
		if resolved, err := filepath.EvalSymlinks(dir); err == nil {
			dir = resolved
		}
		m, err := ReadManifest(dir)
		if err != nil {
			continue
		}
		records, err := ReadRecords(dir)
		if err != nil {
			continue
		}
		runs = append(runs, RunInfo{
			Dir:        dir,
			Manifest:   m,
			Records:    len(records),
			IsLatest:   dir == latest,
			IsBaseline: dir == baseline,
		})
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Manifest.CreatedAt.Before(runs[j].Manifest.CreatedAt)
	})
	return runs, nil
}
