package model

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Continent indices used by the ruggedness model.
const (
	ContinentAfrica = 1
	ContinentOther  = 2
)

// Required columns of the ruggedness CSV.
var ruggedColumns = []string{"country", "rgdppc_2000", "rugged", "cont_africa"}

// Nation is one complete-case row of the ruggedness dataset, with the
// derived columns the model regresses on.
type Nation struct {
	Country     string
	GDP         float64 // real GDP per capita in 2000
	Rugged      float64 // terrain ruggedness index
	Africa      bool
	LogGDP      float64
	LogGDPStd   float64 // LogGDP / mean(LogGDP)
	RuggedStd   float64 // Rugged / max(Rugged)
	ContinentID int     // ContinentAfrica or ContinentOther
}

// Dataset is the in-memory ruggedness table after complete-case filtering.
type Dataset struct {
	Nations       []Nation
	Dropped       int     // rows dropped for missing GDP
	MeanRuggedStd float64 // centring constant for the slope term
}

// LoadRugged reads the ruggedness CSV at path.
func LoadRugged(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer func() { _ = file.Close() }()

	ds, err := ReadRugged(file)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	logrus.Infof("Loaded %d nations from %s (%d dropped for missing GDP)", len(ds.Nations), path, ds.Dropped)
	return ds, nil
}

// ReadRugged parses ruggedness CSV data from r. Rows with an empty or "NA"
// GDP are dropped; all other required fields must parse.
func ReadRugged(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	for _, name := range ruggedColumns {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("missing required column %q", name)
		}
	}

	ds := &Dataset{}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		field := func(name string) string {
			idx := col[name]
			if idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		gdpField := field("rgdppc_2000")
		if gdpField == "" || gdpField == "NA" {
			ds.Dropped++
			continue
		}
		gdp, err := strconv.ParseFloat(gdpField, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parsing rgdppc_2000: %w", line, err)
		}
		if gdp <= 0 {
			return nil, fmt.Errorf("line %d: rgdppc_2000 must be positive, got %v", line, gdp)
		}
		rugged, err := strconv.ParseFloat(field("rugged"), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parsing rugged: %w", line, err)
		}
		africa, err := strconv.Atoi(field("cont_africa"))
		if err != nil {
			return nil, fmt.Errorf("line %d: parsing cont_africa: %w", line, err)
		}

		ds.Nations = append(ds.Nations, Nation{
			Country: field("country"),
			GDP:     gdp,
			Rugged:  rugged,
			Africa:  africa == 1,
		})
	}

	if len(ds.Nations) == 0 {
		return nil, fmt.Errorf("no complete rows")
	}
	ds.standardize()
	return ds, nil
}

// standardize fills the derived columns.
func (d *Dataset) standardize() {
	logGDP := make([]float64, len(d.Nations))
	rugged := make([]float64, len(d.Nations))
	for i := range d.Nations {
		logGDP[i] = math.Log(d.Nations[i].GDP)
		rugged[i] = d.Nations[i].Rugged
	}
	meanLog := stat.Mean(logGDP, nil)
	maxRugged := floats.Max(rugged)

	ruggedStd := make([]float64, len(d.Nations))
	for i := range d.Nations {
		n := &d.Nations[i]
		n.LogGDP = logGDP[i]
		n.LogGDPStd = logGDP[i] / meanLog
		if maxRugged > 0 {
			n.RuggedStd = n.Rugged / maxRugged
		}
		n.ContinentID = ContinentOther
		if n.Africa {
			n.ContinentID = ContinentAfrica
		}
		ruggedStd[i] = n.RuggedStd
	}
	d.MeanRuggedStd = stat.Mean(ruggedStd, nil)
}

// Column extracts one float column by name: "log_gdp_std", "rugged_std",
// "log_gdp", "rugged" or "gdp".
func (d *Dataset) Column(name string) ([]float64, error) {
	out := make([]float64, len(d.Nations))
	for i, n := range d.Nations {
		switch name {
		case "log_gdp_std":
			out[i] = n.LogGDPStd
		case "rugged_std":
			out[i] = n.RuggedStd
		case "log_gdp":
			out[i] = n.LogGDP
		case "rugged":
			out[i] = n.Rugged
		case "gdp":
			out[i] = n.GDP
		default:
			return nil, fmt.Errorf("unknown column %q", name)
		}
	}
	return out, nil
}
