// Package fitcache stores fitted posterior draws on disk, keyed by file name.
// A fit is a YAML header (<name>.yaml) plus a CSV of draws (<name>.csv).
// If both files exist the fit is reused instead of resampled.
package fitcache

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/mcmc-sim/mcmc-sim/sim/sampler"
)

// FitVersion is the on-disk format version written to headers.
const FitVersion = 1

// Header captures the metadata of a cached fit.
type Header struct {
	Version    int            `yaml:"fit_version"`
	Model      string         `yaml:"model"`
	CreatedAt  string         `yaml:"created_at,omitempty"`
	Params     []string       `yaml:"params"`
	Config     sampler.Config `yaml:"config"`
	Acceptance []float64      `yaml:"acceptance"`
	Priors     []string       `yaml:"priors,omitempty"`
}

// Leading CSV columns before the parameter columns.
var fixedColumns = []string{"chain", "iteration", "warmup"}

// Cache is a directory of fit files.
type Cache struct {
	Dir string
}

// New returns a Cache rooted at dir.
func New(dir string) *Cache {
	return &Cache{Dir: dir}
}

// Paths returns the header and draws paths for name.
func (c *Cache) Paths(name string) (headerPath, dataPath string) {
	base := filepath.Join(c.Dir, name)
	return base + ".yaml", base + ".csv"
}

// Exists reports whether both files of a fit are present.
func (c *Cache) Exists(name string) bool {
	headerPath, dataPath := c.Paths(name)
	for _, p := range []string{headerPath, dataPath} {
		if _, err := os.Stat(p); err != nil {
			return false
		}
	}
	return true
}

// Save writes a fit, creating the cache directory if needed. Both files are
// written to temporary paths first; the CSV is renamed into place before the
// header, so a header on disk always has its complete draws.
func (c *Cache) Save(name string, header *Header, draws *sampler.Draws) error {
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return fmt.Errorf("creating fit directory: %w", err)
	}
	headerPath, dataPath := c.Paths(name)

	h := *header
	h.Version = FitVersion
	h.Model = draws.Model
	h.Params = draws.Params
	h.Acceptance = draws.Acceptance
	if h.CreatedAt == "" {
		h.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	headerData, err := yaml.Marshal(&h)
	if err != nil {
		return fmt.Errorf("marshaling fit header: %w", err)
	}

	dataTmp, err := writeTemp(c.Dir, name+".csv", func(w io.Writer) error { return writeDraws(w, draws) })
	if err != nil {
		return err
	}
	headerTmp, err := writeTemp(c.Dir, name+".yaml", func(w io.Writer) error {
		_, err := w.Write(headerData)
		return err
	})
	if err != nil {
		_ = os.Remove(dataTmp)
		return err
	}

	// A stale header must not pair with the new draws while they are swapped in.
	if err := os.Remove(headerPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		_ = os.Remove(dataTmp)
		_ = os.Remove(headerTmp)
		return fmt.Errorf("removing old fit header: %w", err)
	}
	if err := os.Rename(dataTmp, dataPath); err != nil {
		_ = os.Remove(dataTmp)
		_ = os.Remove(headerTmp)
		return fmt.Errorf("moving fit data into place: %w", err)
	}
	if err := os.Rename(headerTmp, headerPath); err != nil {
		_ = os.Remove(headerTmp)
		return fmt.Errorf("moving fit header into place: %w", err)
	}
	return nil
}

// writeTemp writes a file in dir through fill and returns its path. The file
// is removed if fill fails.
func writeTemp(dir, pattern string, fill func(io.Writer) error) (string, error) {
	file, err := os.CreateTemp(dir, "."+pattern+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("creating temporary %s: %w", pattern, err)
	}
	path := file.Name()
	if err := fill(file); err != nil {
		_ = file.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("writing temporary %s: %w", pattern, err)
	}
	return path, nil
}

func writeDraws(w io.Writer, draws *sampler.Draws) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(append(append([]string(nil), fixedColumns...), draws.Params...)); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for i, r := range draws.Rows {
		if len(r.Values) != len(draws.Params) {
			return fmt.Errorf("draw %d has %d values, want %d", i, len(r.Values), len(draws.Params))
		}
		row := make([]string, 0, len(fixedColumns)+len(r.Values))
		row = append(row,
			strconv.Itoa(r.Chain),
			strconv.Itoa(r.Iteration),
			strconv.FormatBool(r.Warmup),
		)
		for _, v := range r.Values {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64)) // round-trips exactly
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing CSV row %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// Load reads a cached fit. The boolean is false, with a nil error, when the
// fit is not cached.
func (c *Cache) Load(name string) (*Header, *sampler.Draws, bool, error) {
	headerPath, dataPath := c.Paths(name)

	headerData, err := os.ReadFile(headerPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, false, nil
	}
	if err != nil {
		return nil, nil, false, fmt.Errorf("reading fit header: %w", err)
	}
	var header Header
	if err := yaml.Unmarshal(headerData, &header); err != nil {
		return nil, nil, false, fmt.Errorf("parsing fit header: %w", err)
	}
	if header.Version != FitVersion {
		return nil, nil, false, fmt.Errorf("fit %s has version %d, want %d", name, header.Version, FitVersion)
	}

	file, err := os.Open(dataPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, false, nil
	}
	if err != nil {
		return nil, nil, false, fmt.Errorf("opening fit data: %w", err)
	}
	defer func() { _ = file.Close() }()

	draws, err := readDraws(file, header.Params)
	if err != nil {
		return nil, nil, false, fmt.Errorf("fit %s: %w", name, err)
	}
	draws.Model = header.Model
	draws.Acceptance = header.Acceptance
	return &header, draws, true, nil
}

func readDraws(r io.Reader, params []string) (*sampler.Draws, error) {
	reader := csv.NewReader(r)
	columns, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	want := append(append([]string(nil), fixedColumns...), params...)
	if strings.Join(columns, ",") != strings.Join(want, ",") {
		return nil, fmt.Errorf("CSV columns %v do not match header params %v", columns, params)
	}

	draws := &sampler.Draws{Params: params}
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("reading CSV row: %w", err)
		}
		d, err := parseDraw(row, len(params))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		draws.Rows = append(draws.Rows, d)
	}
	return draws, nil
}

func parseDraw(row []string, numParams int) (sampler.Draw, error) {
	chain, err := strconv.Atoi(row[0])
	if err != nil {
		return sampler.Draw{}, fmt.Errorf("parsing chain: %w", err)
	}
	iter, err := strconv.Atoi(row[1])
	if err != nil {
		return sampler.Draw{}, fmt.Errorf("parsing iteration: %w", err)
	}
	warmup, err := strconv.ParseBool(row[2])
	if err != nil {
		return sampler.Draw{}, fmt.Errorf("parsing warmup: %w", err)
	}
	values := make([]float64, numParams)
	for i := range values {
		values[i], err = strconv.ParseFloat(row[len(fixedColumns)+i], 64)
		if err != nil {
			return sampler.Draw{}, fmt.Errorf("parsing value %d: %w", i, err)
		}
	}
	return sampler.Draw{Chain: chain, Iteration: iter, Warmup: warmup, Values: values}, nil
}

// GetOrFit returns the cached fit for name, or runs fit and stores its
// result. refit forces resampling even when a cached fit exists.
func (c *Cache) GetOrFit(name string, refit bool, header *Header, fit func() (*sampler.Draws, error)) (*sampler.Draws, bool, error) {
	if !refit {
		_, draws, ok, err := c.Load(name)
		if err != nil {
			return nil, false, err
		}
		if ok {
			logrus.Infof("Reusing cached fit %s from %s", name, c.Dir)
			return draws, true, nil
		}
	}

	logrus.Infof("No cached fit for %s, sampling", name)
	draws, err := fit()
	if err != nil {
		return nil, false, err
	}
	if err := c.Save(name, header, draws); err != nil {
		return nil, false, err
	}
	return draws, false, nil
}
