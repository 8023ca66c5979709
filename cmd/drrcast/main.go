package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"path/filepath"
	"time"

	"drrcast/pkg/config"
	"drrcast/pkg/geometry"
	"drrcast/pkg/metric"
	"drrcast/pkg/phantom"
	"drrcast/pkg/raycast"
	"drrcast/pkg/render"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "drrcast.yaml", "Path to YAML configuration file")
	outputDir := flag.String("output", "drr_output", "Directory for rendered projection images")
	twoViews := flag.Bool("two-views", true, "Render a second projection at the configured angle offset")
	compare := flag.Bool("compare", false, "Render a perturbed pose and report the two-projection correlation")
	compareRot := flag.Float64("compare-rot", 2.0, "Pose perturbation for -compare: rotation about z in degrees")
	compareTrans := flag.Float64("compare-trans", 5.0, "Pose perturbation for -compare: translation along x in mm")
	numCores := flag.Int("cores", 0, "Number of render workers (default: config value)")
	writeConfig := flag.Bool("write-config", false, "Write the default configuration to -config and exit")
	flag.Parse()

	if *writeConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			log.Fatalf("Failed to write default config: %v", err)
		}
		fmt.Printf("Default configuration written to %s\n", *configPath)
		return
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *numCores > 0 {
		cfg.Processing.NumCores = *numCores
	}

	fmt.Println("================================")
	fmt.Println("DRRCAST: DIGITALLY RECONSTRUCTED RADIOGRAPHS BY SIDDON-JACOBS RAY CASTING")
	fmt.Println("================================")

	// Build the input volume: raw file if configured, phantom otherwise.
	var volume *raycast.Volume
	spacing := geometry.Vec{X: cfg.Volume.Spacing[0], Y: cfg.Volume.Spacing[1], Z: cfg.Volume.Spacing[2]}
	if cfg.Volume.RawPath != "" {
		fmt.Printf("Loading raw volume from %s...\n", cfg.Volume.RawPath)
		volume, err = raycast.LoadRaw(cfg.Volume.RawPath, cfg.Volume.Nx, cfg.Volume.Ny, cfg.Volume.Nz,
			spacing, cfg.Volume.RawElement)
	} else {
		fmt.Printf("Building %q phantom volume...\n", cfg.Volume.Phantom)
		volume, err = phantom.New(cfg.Volume.Phantom, cfg.Volume.Nx, cfg.Volume.Ny, cfg.Volume.Nz,
			spacing, cfg.Volume.Intensity)
	}
	if err != nil {
		log.Fatalf("Failed to build volume: %v", err)
	}
	nx, ny, nz := volume.Dims()
	fmt.Printf("Volume: %dx%dx%d voxels, spacing %.2fx%.2fx%.2f mm\n",
		nx, ny, nz, spacing.X, spacing.Y, spacing.Z)

	// The isocenter is the volume center; the pose rotates and translates
	// the volume about it.
	pose := geometry.NewPose(volume.Center())
	pose.SetRotation(rad(cfg.Pose.RotationDeg[0]), rad(cfg.Pose.RotationDeg[1]), rad(cfg.Pose.RotationDeg[2]))
	pose.SetTranslation(geometry.Vec{X: cfg.Pose.Translation[0], Y: cfg.Pose.Translation[1], Z: cfg.Pose.Translation[2]})

	caster := raycast.NewCaster(volume)
	caster.SetThreshold(cfg.Geometry.Threshold)

	detector := render.Detector{
		Width:        cfg.Detector.Width,
		Height:       cfg.Detector.Height,
		PixelSpacing: cfg.Detector.PixelSpacing,
		OffsetU:      cfg.Detector.OffsetU,
		OffsetV:      cfg.Detector.OffsetV,
		Distance:     cfg.Geometry.SourceToDetector,
	}
	renderer := render.NewRenderer(caster, detector, cfg.Processing.NumCores)

	angle1 := rad(cfg.Geometry.ProjectionAngleDeg)
	angle2 := angle1 + rad(cfg.Geometry.SecondAngleOffsetDeg)
	angles := []float64{angle1}
	if *twoViews {
		angles = append(angles, angle2)
	}

	startTime := time.Now()
	for i, angle := range angles {
		if cfg.Processing.Verbose {
			fmt.Printf("Rendering projection %d at gantry angle %.1f deg...\n", i+1, deg(angle))
		}
		proj, err := renderer.Render(pose, angle, cfg.Geometry.FocalDistance)
		if err != nil {
			log.Fatalf("Rendering failed: %v", err)
		}
		outPath := filepath.Join(*outputDir, fmt.Sprintf("projection_%02d.png", i+1))
		if err := render.SavePNG(proj, outPath); err != nil {
			log.Fatalf("Failed to save projection: %v", err)
		}
		fmt.Printf("Projection %d saved to: %s\n", i+1, outPath)
	}
	renderTime := time.Since(startTime)

	fmt.Printf("\nRendered %d projection(s) of %dx%d pixels in %.2f seconds using %d workers\n",
		len(angles), cfg.Detector.Width, cfg.Detector.Height,
		renderTime.Seconds(), cfg.Processing.NumCores)

	// Compare mode: perturb the pose, re-render both views and score the
	// match against the reference projections.
	if *compare {
		if !*twoViews {
			log.Fatalf("-compare requires -two-views")
		}
		fmt.Printf("\nCompare mode: perturbing pose by %.1f deg about z and %.1f mm along x\n",
			*compareRot, *compareTrans)

		fixed1, err := renderer.Render(pose, angle1, cfg.Geometry.FocalDistance)
		if err != nil {
			log.Fatalf("Rendering reference view 1 failed: %v", err)
		}
		fixed2, err := renderer.Render(pose, angle2, cfg.Geometry.FocalDistance)
		if err != nil {
			log.Fatalf("Rendering reference view 2 failed: %v", err)
		}

		perturbed := geometry.NewPose(volume.Center())
		rx, ry, rz := pose.Rotation()
		perturbed.SetRotation(rx, ry, rz+rad(*compareRot))
		perturbed.SetTranslation(pose.Translation().Add(geometry.Vec{X: *compareTrans}))

		moving1, err := renderer.Render(perturbed, angle1, cfg.Geometry.FocalDistance)
		if err != nil {
			log.Fatalf("Rendering perturbed view 1 failed: %v", err)
		}
		moving2, err := renderer.Render(perturbed, angle2, cfg.Geometry.FocalDistance)
		if err != nil {
			log.Fatalf("Rendering perturbed view 2 failed: %v", err)
		}

		m := &metric.TwoProjectionCorrelation{SubtractMean: true}
		value, err := m.Value(fixed1, fixed2, moving1, moving2)
		if err != nil {
			log.Fatalf("Metric evaluation failed: %v", err)
		}
		fmt.Printf("Two-projection normalized correlation: %.6f\n", value)
		fmt.Println("A value of 1.0 means the perturbed pose matches the reference exactly.")
	}
}

// rad converts degrees to radians.
func rad(deg float64) float64 {
	return deg * math.Pi / 180
}

// deg converts radians to degrees.
func deg(rad float64) float64 {
	return rad * 180 / math.Pi
}
