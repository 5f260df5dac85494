// Package main provides CMA-ES retrieval: given a target energy budget
// (reflectance, transmittance, absorptance), search for the uniform
// column whose Monte Carlo budget matches it.
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gonum.org/v1/gonum/optimize"

	"github.com/mcsky/twostream/atmosphere"
	"github.com/mcsky/twostream/config"
	"github.com/mcsky/twostream/rng"
	"github.com/mcsky/twostream/transport"
)

// formatDuration formats a duration as h/m/s for progress lines.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	targetR := flag.Float64("target-r", -1, "Target reflectance")
	targetT := flag.Float64("target-t", -1, "Target transmittance")
	truthPreset := flag.String("truth-preset", "", "Synthesize the target from a scene preset instead of explicit fractions")
	truthPhotons := flag.Int("truth-photons", 200000, "Photons for the synthetic truth run")
	photons := flag.Int("photons", 20000, "Photons per evaluation run")
	seeds := flag.Int("seeds", 3, "Number of seeds per evaluation")
	maxEvals := flag.Int("max-evals", 150, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Cfg()

	target, err := resolveTarget(cfg, *truthPreset, *truthPhotons, *targetR, *targetT)
	if err != nil {
		log.Fatalf("failed to resolve target budget: %v", err)
	}
	fmt.Printf("Target budget: R=%.4f T=%.4f A=%.4f\n",
		target.Reflectance, target.Transmittance, target.Absorptance)

	// Create parameter vector and evaluator
	params := NewParamVector()

	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}
	evaluator := NewFitnessEvaluator(params, *photons, evalSeeds, cfg.Physics.WeightThreshold, target)

	// Set up CMA-ES over normalized parameters
	dim := params.Dim()
	initX := params.Normalize(params.DefaultVector())

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := params.Denormalize(x)
			return evaluator.Evaluate(raw)
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0, // Sequential evaluation; seeds parallelize inside
	}

	popSize := *population
	if popSize == 0 {
		popSize = 4 + int(3.0*float64(dim)/2.0)
	}

	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   popSize,
	}

	// Open eval log
	logPath := filepath.Join(*outputDir, "retrieve_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()

	logWriter := csv.NewWriter(logFile)
	defer logWriter.Flush()

	header := []string{"eval", "misfit"}
	for _, spec := range params.Specs {
		header = append(header, spec.Name)
	}
	header = append(header, "reflectance", "transmittance", "absorptance")
	logWriter.Write(header)

	// Track evaluations and timing
	evalCount := 0
	bestMisfit := penaltyMisfit
	var bestParams []float64
	startTime := time.Now()

	originalFunc := problem.Func
	problem.Func = func(x []float64) float64 {
		misfit := originalFunc(x)
		evalCount++

		raw := params.Denormalize(x)
		clamped := params.Clamp(raw)
		if misfit < bestMisfit {
			bestMisfit = misfit
			bestParams = make([]float64, len(clamped))
			copy(bestParams, clamped)
		}

		// Log clamped values to CSV (these are the values actually used)
		budget := evaluator.LastBudget()
		row := []string{strconv.Itoa(evalCount), fmt.Sprintf("%.6f", misfit)}
		for _, v := range clamped {
			row = append(row, fmt.Sprintf("%.6f", v))
		}
		row = append(row,
			fmt.Sprintf("%.6f", budget.Reflectance),
			fmt.Sprintf("%.6f", budget.Transmittance),
			fmt.Sprintf("%.6f", budget.Absorptance),
		)
		logWriter.Write(row)
		logWriter.Flush()

		elapsed := time.Since(startTime)
		avgPerEval := elapsed / time.Duration(evalCount)
		remaining := time.Duration(*maxEvals-evalCount) * avgPerEval

		fmt.Printf("Eval %d/%d: misfit=%.5f R=%.3f T=%.3f A=%.3f (best=%.5f) | elapsed: %s, ETA: %s\n",
			evalCount, *maxEvals, misfit,
			budget.Reflectance, budget.Transmittance, budget.Absorptance,
			bestMisfit, formatDuration(elapsed), formatDuration(remaining))

		return misfit
	}

	fmt.Printf("Starting CMA-ES retrieval with %d parameters, population=%d, max_evals=%d\n",
		dim, popSize, *maxEvals)
	fmt.Printf("Seeds per evaluation: %d, photons per run: %d\n", *seeds, *photons)

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		log.Printf("retrieval ended: %v", err)
	}

	// Use best params found (may be from any evaluation, not just final)
	if bestParams == nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}

	totalTime := time.Since(startTime)
	fmt.Printf("\nRetrieval complete after %d evaluations in %s\n", evalCount, formatDuration(totalTime))
	fmt.Printf("Best misfit: %.6f\n", bestMisfit)

	fmt.Println("\nRetrieved column:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.6f\n", spec.Name, bestParams[i])
	}

	// Save the retrieved scene as a config overlay
	bestCfg, _ := config.Load(*configPath)
	params.ApplyToConfig(bestCfg, bestParams)

	configOutPath := filepath.Join(*outputDir, "retrieved_scene.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		log.Printf("failed to write retrieved scene: %v", err)
	} else {
		fmt.Printf("\nRetrieved scene saved to: %s\n", configOutPath)
	}

	// Save the retrieval summary
	summary := struct {
		Target    Target             `json:"target"`
		Achieved  Target             `json:"achieved"`
		Misfit    float64            `json:"misfit"`
		Params    map[string]float64 `json:"params"`
		Evals     int                `json:"evals"`
		ElapsedMS int64              `json:"elapsed_ms"`
	}{
		Target:    target,
		Achieved:  evaluator.BestBudget(),
		Misfit:    bestMisfit,
		Params:    make(map[string]float64, len(params.Specs)),
		Evals:     evalCount,
		ElapsedMS: totalTime.Milliseconds(),
	}
	for i, spec := range params.Specs {
		summary.Params[spec.Name] = bestParams[i]
	}

	summaryPath := filepath.Join(*outputDir, "retrieval.json")
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		log.Printf("failed to marshal retrieval summary: %v", err)
	} else if err := os.WriteFile(summaryPath, data, 0644); err != nil {
		log.Printf("failed to write retrieval summary: %v", err)
	} else {
		fmt.Printf("Retrieval summary saved to: %s\n", summaryPath)
	}
}

// resolveTarget builds the target budget either from a synthetic truth
// run of a scene preset or from explicit fractions. Absorptance is
// implied by the other two.
func resolveTarget(cfg *config.Config, truthPreset string, truthPhotons int, targetR, targetT float64) (Target, error) {
	if truthPreset != "" {
		p, ok := cfg.ScenePresetByName(truthPreset)
		if !ok {
			return Target{}, fmt.Errorf("unknown scene preset %q", truthPreset)
		}
		stack, err := atmosphere.Uniform(p.TauMax, p.Omega0, p.G, p.SurfaceAlbedo)
		if err != nil {
			return Target{}, err
		}
		fmt.Printf("Running truth batch: preset %q, %d photons\n", truthPreset, truthPhotons)
		res, err := transport.Run(stack, truthPhotons, cfg.Physics.WeightThreshold, rng.NewPCG(12345))
		if err != nil {
			return Target{}, err
		}
		return Target{
			Reflectance:   res.Reflectance,
			Transmittance: res.Transmittance,
			Absorptance:   res.Absorptance,
		}, nil
	}

	if targetR < 0 || targetT < 0 {
		return Target{}, fmt.Errorf("either --truth-preset or both --target-r and --target-t are required")
	}
	a := 1 - targetR - targetT
	if a < 0 {
		return Target{}, fmt.Errorf("target fractions %.3f + %.3f exceed 1", targetR, targetT)
	}
	return Target{Reflectance: targetR, Transmittance: targetT, Absorptance: a}, nil
}
