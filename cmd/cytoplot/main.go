// cytoplot loads a flow cytometry experiment from a JSON manifest and runs one
// of its views, printing the result as tab-delimited text and optionally
// rendering charts to PNG.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/carbocation/cytometry"
	"github.com/carbocation/cytometry/compileinfo"
	"github.com/carbocation/cytometry/view"
	"github.com/carbocation/pfx"
	log "github.com/sirupsen/logrus"
)

func main() {
	var (
		manifestPath string
		viewName     string
		pngPrefix    string
		selection    string
		logLevel     string
		list         bool
	)

	flag.StringVar(&manifestPath, "manifest", "", "Path to a JSON manifest declaring conditions, tubes and views")
	flag.StringVar(&viewName, "view", "", "Name of the view to run. If omitted, a per-channel summary is printed instead.")
	flag.StringVar(&pngPrefix, "png", "", "(Optional) If set, charts are rendered to files named <png>_<n>.png")
	flag.StringVar(&selection, "select", "", "(Optional) For range views, a selection given as min,max")
	flag.StringVar(&logLevel, "loglevel", "info", "Log level (debug, info, warn, error)")
	flag.BoolVar(&list, "list", false, "List the views in the manifest and exit")
	flag.Parse()

	level, err := log.ParseLevel(logLevel)
	if err != nil {
		log.Fatalln(err)
	}
	log.SetLevel(level)

	compileinfo.Log()

	if manifestPath == "" {
		flag.PrintDefaults()
		log.Fatalln("Please provide -manifest")
	}

	manifest, err := cytometry.ParseManifestFromPath(manifestPath)
	if err != nil {
		log.Fatalln(err)
	}

	if list {
		for _, v := range manifest.Views {
			fmt.Printf("%s\t%s\n", v.Name, v.Kind)
		}
		return
	}

	if err := run(manifest, viewName, pngPrefix, selection); err != nil {
		log.Fatalln(err)
	}
}

func run(manifest cytometry.Manifest, viewName, pngPrefix, selection string) error {
	exp, err := manifest.Experiment()
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"tubes":    exp.Len(),
		"events":   exp.Events(),
		"channels": len(exp.Channels()),
	}).Infoln("Loaded experiment")

	if viewName == "" {
		printSummary(os.Stdout, cytometry.Describe(exp))
		return nil
	}

	cfg, err := manifest.View(viewName)
	if err != nil {
		return err
	}

	v, err := view.New(cfg)
	if err != nil {
		return err
	}

	if err := v.Validate(exp); err != nil {
		return err
	}

	if selection != "" {
		r, ok := v.(*view.RangeSelection)
		if !ok {
			return pfx.Err(fmt.Errorf("-select only applies to range views; %q is a %s view", viewName, v.Kind()))
		}
		lo, hi, err := parseSelection(selection)
		if err != nil {
			return err
		}
		if !r.Select(lo, hi) {
			log.Warnf("Ignoring zero-width selection %q", selection)
		}
	}

	out, err := v.Plot(exp, cfg.Options)
	if err != nil {
		return err
	}

	if err := printArtifact(os.Stdout, out); err != nil {
		return err
	}

	if pngPrefix != "" {
		n, err := renderArtifact(out, pngPrefix)
		if err != nil {
			return err
		}
		log.WithField("files", n).Infoln("Rendered charts")
	}

	return nil
}

func parseSelection(s string) (float64, float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, pfx.Err(fmt.Errorf("selection %q should be min,max", s))
	}

	lo, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, pfx.Err(err)
	}
	hi, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, pfx.Err(err)
	}

	return lo, hi, nil
}
