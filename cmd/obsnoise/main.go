// Command obsnoise runs the noise-removal pipeline on synthetic ocean
// bottom seismometer records and prints the resulting estimates.
//
// Usage:
//
//	obsnoise [flags]
//
// A configurable number of synthetic days with tilt and compliance
// coupling on the vertical channel are analyzed, combined into a
// station estimate, and a synthetic event is corrected with every
// available transfer function model.
//
// Examples:
//
//	obsnoise
//	obsnoise -days 5 -window 512 -overlap 0.3
//	obsnoise -out ./results -db ./results/stations.db
//	obsnoise -v
package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/cwbudde/algo-obsnoise/measure/transfer"
	"github.com/cwbudde/algo-obsnoise/noise"
	"github.com/cwbudde/algo-obsnoise/store"
)

func main() {
	windowLen := flag.Float64("window", 512, "analysis window length in seconds")
	overlap := flag.Float64("overlap", 0.3, "window overlap fraction")
	dt := flag.Float64("dt", 1, "sample interval in seconds")
	days := flag.Int("days", 3, "number of synthetic days")
	seed := flag.Int64("seed", 1, "random seed for the synthetic records")
	outDir := flag.String("out", "", "directory for saved estimates (omit to skip saving)")
	dbPath := flag.String("db", "", "station metadata database (omit to skip)")
	verbose := flag.Bool("v", false, "verbose pipeline logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: obsnoise [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Runs the tilt/compliance noise-removal pipeline on synthetic records.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg := noise.DefaultConfig()
	cfg.Window = *windowLen
	cfg.Overlap = *overlap
	if *verbose {
		log, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer log.Sync()
		cfg.Logger = log
	}

	rng := rand.New(rand.NewSource(*seed))
	samples := 16 * int(*windowLen / *dt)

	var estimates []*noise.Day
	for i := 0; i < *days; i++ {
		key := fmt.Sprintf("XX.SYNT.2012.%03d", 69+i)
		ch := synthDay(rng, samples, *dt)
		day, err := noise.AnalyzeDay(key, ch, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %s: %v\n", key, err)
			os.Exit(1)
		}
		estimates = append(estimates, day)
	}

	printDays(estimates)

	station, err := noise.AnalyzeStation("XX.SYNT", estimates, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: station aggregation: %v\n", err)
		os.Exit(1)
	}
	goodDays := 0
	for _, g := range station.Goodness {
		if g {
			goodDays++
		}
	}
	fmt.Printf("\nStation %s: %d components, %d/%d days kept\n",
		station.Key, station.NComp, goodDays, len(station.Goodness))

	set, err := estimates[0].TransferFunctions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: transfer functions: %v\n", err)
		os.Exit(1)
	}
	staSet, err := station.TransferFunctions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: station transfer functions: %v\n", err)
		os.Exit(1)
	}

	correctDemo(rng, set, cfg, *dt)

	if *outDir != "" {
		if err := saveAll(*outDir, estimates, station, set, staSet); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\nEstimates written to %s\n", *outDir)
	}
	if *dbPath != "" {
		if err := registerStation(*dbPath, *dt); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Station registered in %s\n", *dbPath)
	}
}

// synthDay builds a four-component record whose vertical carries tilt
// coupling from the horizontals and compliance coupling from pressure,
// plus uncorrelated background.
func synthDay(rng *rand.Rand, n int, dt float64) noise.Channels {
	h1 := make([]float64, n)
	h2 := make([]float64, n)
	p := make([]float64, n)
	z := make([]float64, n)

	az := 30 * math.Pi / 180
	for i := 0; i < n; i++ {
		t := float64(i) * dt
		h1[i] = math.Sin(2*math.Pi*0.011*t) + 0.4*rng.NormFloat64()
		h2[i] = math.Cos(2*math.Pi*0.017*t) + 0.4*rng.NormFloat64()
		p[i] = math.Sin(2*math.Pi*0.008*t+1.1) + 0.4*rng.NormFloat64()

		tiltNoise := math.Cos(az)*h1[i] + math.Sin(az)*h2[i]
		z[i] = 0.8*tiltNoise + 0.5*p[i] + 0.1*rng.NormFloat64()
	}
	return noise.Channels{H1: h1, H2: h2, Z: z, P: p, Dt: dt}
}

func printDays(days []*noise.Day) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Day\tComp\tWindows\tGood\tTilt [deg]\tCoherence\n")
	fmt.Fprintf(tw, "---\t----\t-------\t----\t----------\t---------\n")
	for _, d := range days {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%.1f\t%.3f\n",
			d.Key, d.NComp, len(d.Goodness), d.NWins,
			d.Rotation.Tilt, d.Rotation.CohValue)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to flush output: %v\n", err)
	}
}

// correctDemo applies every solved model to a synthetic event and
// reports the vertical energy left after correction.
func correctDemo(rng *rand.Rand, set transfer.Set, cfg noise.Config, dt float64) {
	n := 2 * int(cfg.Window/dt)
	ev := synthDay(rng, n, dt)

	results, err := noise.CorrectEvent("synthetic-event", ev, set, nil, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: event correction: %v\n", err)
		os.Exit(1)
	}

	raw := 0.0
	for _, v := range ev.Z {
		raw += v * v
	}

	fmt.Printf("\nEvent correction (raw vertical energy %.1f):\n", raw)
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Model\tResidual energy\tReduction\n")
	fmt.Fprintf(tw, "-----\t---------------\t---------\n")
	for _, r := range results {
		res := 0.0
		for _, row := range r.Data {
			for _, v := range row {
				res += v * v
			}
		}
		fmt.Fprintf(tw, "%s\t%.1f\t%.1f%%\n", r.Model, res, 100*(1-res/raw))
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to flush output: %v\n", err)
	}
}

func saveAll(dir string, days []*noise.Day, station *noise.Station, daySet, staSet transfer.Set) error {
	for _, d := range days {
		if err := store.SaveDay(filepath.Join(dir, d.Key+".day.gob.gz"), d); err != nil {
			return err
		}
	}
	if err := store.SaveStation(filepath.Join(dir, station.Key+".sta.gob.gz"), station); err != nil {
		return err
	}
	if err := store.SaveTransfer(filepath.Join(dir, days[0].Key+".tf.gob.gz"), daySet); err != nil {
		return err
	}
	return store.SaveTransfer(filepath.Join(dir, station.Key+".tf.gob.gz"), staSet)
}

func registerStation(path string, dt float64) error {
	db, err := store.OpenDB(path)
	if err != nil {
		return err
	}
	defer db.Close()

	return db.Put(store.StationInfo{
		Network:   "XX",
		Station:   "SYNT",
		Latitude:  44.118,
		Longitude: -124.895,
		Elevation: -1100,
		Channels:  "12ZP",
		Sampling:  1 / dt,
	})
}
