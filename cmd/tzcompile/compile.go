package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tzcore/tzcore/internal/buildmetrics"
	"github.com/tzcore/tzcore/internal/tzir"
	"github.com/tzcore/tzcore/tzc"
	"github.com/tzcore/tzcore/tzdata"
	"github.com/tzcore/tzcore/tzif"
	"github.com/tzcore/tzcore/tzpack"
)

// sourceFileNames are the tzdata source files tzcompile knows how to read,
// in the fixed order ParseAll wants for deterministic diagnostics. Missing
// files are skipped rather than treated as an error, since not every
// release ships every one of them.
var sourceFileNames = []string{
	"africa", "antarctica", "asia", "australasia",
	"backward", "etcetera", "europe", "northamerica", "southamerica",
}

func newCompileCommand() *cobra.Command {
	var (
		tzdataDir   string
		out         string
		endYear     int
		concurrency int
		metricsAddr string
		exportTZif  string
		exportOut   string
	)

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Parse a tzdata source tree and write a packed tzpack dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			if tzdataDir == "" {
				tzdataDir = viper.GetString("tzdata_dir")
			}
			if endYear == 0 {
				endYear = viper.GetInt("end_year")
			}
			if metricsAddr == "" {
				metricsAddr = viper.GetString("metrics_addr")
			}
			return runCompile(tzdataDir, out, endYear, concurrency, metricsAddr, exportTZif, exportOut)
		},
	}

	cmd.Flags().StringVar(&tzdataDir, "tzdata-dir", os.Getenv("TZDATA_DIR"), "directory containing tzdata source files")
	cmd.Flags().StringVar(&out, "out", "dataset.tzc", "path to write the packed dataset")
	cmd.Flags().IntVar(&endYear, "end-year", 0, "year to stop expanding indefinite rules (0 = tzc.DefaultEndYear)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "max zones compiled concurrently (0 = GOMAXPROCS)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "if set, serve Prometheus metrics on this address until the run completes")
	cmd.Flags().StringVar(&exportTZif, "export-tzif", "", "canonical zone name to additionally export as an RFC 8536 TZif file")
	cmd.Flags().StringVar(&exportOut, "export-tzif-out", "", "path to write the TZif export to (required with --export-tzif)")

	_ = viper.BindPFlag("tzdata_dir", cmd.Flags().Lookup("tzdata-dir"))
	_ = viper.BindPFlag("end_year", cmd.Flags().Lookup("end-year"))
	_ = viper.BindPFlag("metrics_addr", cmd.Flags().Lookup("metrics-addr"))

	return cmd
}

func runCompile(tzdataDir, out string, endYear, concurrency int, metricsAddr, exportTZif, exportOut string) error {
	if tzdataDir == "" {
		return fmt.Errorf("--tzdata-dir (or $TZDATA_DIR) is required")
	}

	if metricsAddr != "" {
		srv := serveMetrics(metricsAddr)
		defer srv.Close()
	}

	start := time.Now()
	defer func() {
		buildmetrics.CompileDuration.Observe(time.Since(start).Seconds())
	}()

	log.WithField("dir", tzdataDir).Info("reading tzdata source files")
	files, names, version, err := readSourceTree(tzdataDir)
	if err != nil {
		return err
	}

	db, err := tzdata.ParseAll(files, names, version)
	if err != nil {
		return err
	}
	log.WithFields(logrusFields{"zones": len(db.Zones), "rules": len(db.Rules), "links": len(db.Links)}).Info("parsed tzdata source tree")

	opts := tzc.Options{EndYear: endYear, Concurrency: concurrency}
	zones, err := tzc.CompileDatabase(db, opts)
	if err != nil {
		buildmetrics.ZonesFailed.Inc()
		return err
	}
	for name, z := range zones {
		form := "fixed"
		if len(z.Transitions) > 0 {
			form = "rules"
		}
		_ = name
		buildmetrics.ZonesCompiled.WithLabelValues(form).Inc()
	}

	packed, err := tzpack.Pack(zones, db.Links, version)
	if err != nil {
		return err
	}
	buildmetrics.ArtifactBytes.Observe(float64(len(packed)))

	if err := os.WriteFile(out, packed, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	log.WithFields(logrusFields{"zones": len(zones), "bytes": len(packed), "out": out}).Info("wrote packed dataset")

	if exportTZif != "" {
		if err := exportZoneAsTZif(zones, exportTZif, exportOut); err != nil {
			return err
		}
		log.WithFields(logrusFields{"zone": exportTZif, "out": exportOut}).Info("exported TZif file")
	}
	return nil
}

// exportZoneAsTZif renders one compiled zone as an RFC 8536 TZif file, for
// interop with readers that expect the standard on-disk zoneinfo format
// rather than a packed tzpack dataset.
func exportZoneAsTZif(zones map[string]*tzir.Zone, name, out string) error {
	if out == "" {
		return fmt.Errorf("--export-tzif-out is required with --export-tzif")
	}
	z, ok := zones[name]
	if !ok {
		return fmt.Errorf("--export-tzif: zone %q not found in compiled database", name)
	}
	f, err := tzif.ExportZone(z)
	if err != nil {
		return fmt.Errorf("export %s as tzif: %w", name, err)
	}
	w, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create %s: %w", out, err)
	}
	defer w.Close()
	if err := f.Encode(w); err != nil {
		return fmt.Errorf("encode tzif: %w", err)
	}
	return nil
}

// readSourceTree reads every known tzdata source file present in dir, plus
// an optional VERSION file naming the release.
func readSourceTree(dir string) (map[string]io.Reader, []string, string, error) {
	files := make(map[string]io.Reader)
	var names []string
	for _, name := range sourceFileNames {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, nil, "", fmt.Errorf("read %s: %w", name, err)
		}
		files[name] = bytes.NewReader(b)
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) == 0 {
		return nil, nil, "", fmt.Errorf("no recognized tzdata source files found in %s", dir)
	}

	version := "unknown"
	if b, err := os.ReadFile(filepath.Join(dir, "VERSION")); err == nil {
		version = strings.TrimSpace(string(b))
	}
	return files, names, version, nil
}

func serveMetrics(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(buildmetrics.Registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Warn("metrics server stopped")
		}
	}()
	return srv
}

// logrusFields is a small alias so call sites read naturally without
// importing logrus.Fields directly everywhere.
type logrusFields = map[string]any
