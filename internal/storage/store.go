package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrNotFound  = errors.New("storage: run not found")
	ErrMalformed = errors.New("storage: malformed grid file")
)

// Store keeps one CSV grid and one JSON metadata file per run in baseDir.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string {
	return s.baseDir
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Scheme    string             `json:"scheme"`
	Q         float64            `json:"q"`
	Dx        float64            `json:"dx"`
	Dt        float64            `json:"dt"`
	Rows      int                `json:"rows"`
	Points    int                `json:"points"`
	Duration  float64            `json:"duration"`
	Timestamp time.Time          `json:"timestamp"`
	Metrics   map[string]float64 `json:"metrics"`
	Diverged  bool               `json:"diverged,omitempty"`
}

// FiniteMetrics drops NaN and ±Inf values, which JSON cannot represent. A
// diverged run keeps its finite metrics; the rest read back as missing keys.
func FiniteMetrics(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out[k] = v
	}
	return out
}

// RunName joins a file prefix and a step ratio, e.g. "explicit_0.25".
func RunName(prefix string, q float64) string {
	return fmt.Sprintf("%s_%s", prefix, strconv.FormatFloat(q, 'g', -1, 64))
}

func (s *Store) gridPath(name string) string {
	return filepath.Join(s.baseDir, name+".csv")
}

func (s *Store) metaPath(name string) string {
	return filepath.Join(s.baseDir, name+".json")
}

// SaveGrid writes the grid to <name>.csv. The header row holds the x axis,
// every following row one time step; all values use %.17e.
func (s *Store) SaveGrid(name string, x []float64, g mat.Matrix) error {
	rows, cols := g.Dims()
	if len(x) != cols {
		return fmt.Errorf("save %s: %d axis points for %d columns", name, len(x), cols)
	}
	if err := s.Init(); err != nil {
		return err
	}

	f, err := os.Create(s.gridPath(name))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(formatRow(x)); err != nil {
		return err
	}

	row := make([]float64, cols)
	for i := 0; i < rows; i++ {
		mat.Row(row, i, g)
		if err := w.Write(formatRow(row)); err != nil {
			return err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func formatRow(vals []float64) []string {
	out := make([]string, len(vals))
	for j, v := range vals {
		out[j] = fmt.Sprintf("%.17e", v)
	}
	return out
}

// LoadGrid reads a grid written by SaveGrid and returns the axis and the
// time×space values.
func (s *Store) LoadGrid(name string) ([]float64, *mat.Dense, error) {
	f, err := os.Open(s.gridPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrMalformed, name, err)
	}
	if len(records) < 2 {
		return nil, nil, fmt.Errorf("%w: %s has no data rows", ErrMalformed, name)
	}

	x, err := parseRow(records[0])
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s header: %v", ErrMalformed, name, err)
	}

	cols := len(x)
	data := make([]float64, 0, (len(records)-1)*cols)
	for i, record := range records[1:] {
		vals, err := parseRow(record)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s row %d: %v", ErrMalformed, name, i, err)
		}
		data = append(data, vals...)
	}
	return x, mat.NewDense(len(records)-1, cols, data), nil
}

func parseRow(record []string) ([]float64, error) {
	out := make([]float64, len(record))
	for j, field := range record {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return nil, err
		}
		out[j] = v
	}
	return out, nil
}

func (s *Store) SaveMetadata(meta RunMetadata) error {
	if err := s.Init(); err != nil {
		return err
	}

	f, err := os.Create(s.metaPath(meta.ID))
	if err != nil {
		return err
	}
	defer f.Close()

	meta.Metrics = FiniteMetrics(meta.Metrics)
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return err
	}
	return f.Close()
}

func (s *Store) Load(name string) (*RunMetadata, error) {
	data, err := os.ReadFile(s.metaPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// List returns the metadata of every stored run, ordered by scheme and q.
// Grids saved without metadata are listed by name only.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		name, ok := strings.CutSuffix(entry.Name(), ".csv")
		if entry.IsDir() || !ok {
			continue
		}

		meta, err := s.Load(name)
		if err != nil {
			runs = append(runs, RunMetadata{ID: name})
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		if runs[i].Scheme != runs[j].Scheme {
			return runs[i].Scheme < runs[j].Scheme
		}
		if runs[i].Q != runs[j].Q {
			return runs[i].Q < runs[j].Q
		}
		return runs[i].ID < runs[j].ID
	})
	return runs, nil
}

// Exists reports whether a grid with this name has been saved.
func (s *Store) Exists(name string) bool {
	_, err := os.Stat(s.gridPath(name))
	return err == nil
}

// Delete removes a run's grid and metadata. Missing files are ignored.
func (s *Store) Delete(name string) error {
	for _, path := range []string{s.gridPath(name), s.metaPath(name)} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}
