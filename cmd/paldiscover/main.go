// Command paldiscover is a thin example wiring binary: it runs exhaustive
// pattern discovery over a CSV price series, validates survivors with a
// Monte-Carlo permutation test, applies a multiple-testing correction
// policy, and serves Prometheus metrics.
//
// Boot sequence:
//  1. config.FromEnv()         - ambient runtime knobs
//  2. series.LoadCSV(path)     - load the price series from -csv
//  3. build SearchConfiguration, run the discovery Engine
//  4. run mcpt.Driver per discovered pattern, collect p-values
//  5. apply the -policy correction policy, print survivors
//  6. serve /metrics on -port until interrupted
//
// Example:
//
//	go run . -csv prices.csv -symbol SPY -mode extended -policy bh -port 9090
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chidi150c/palvalidator/ast"
	"github.com/chidi150c/palvalidator/backtest"
	"github.com/chidi150c/palvalidator/config"
	"github.com/chidi150c/palvalidator/correction"
	"github.com/chidi150c/palvalidator/discovery"
	"github.com/chidi150c/palvalidator/executor"
	"github.com/chidi150c/palvalidator/mcpt"
	"github.com/chidi150c/palvalidator/metrics"
	"github.com/chidi150c/palvalidator/series"
)

func main() {
	var csvPath, symbol, modeFlag, policyFlag string
	var permutations int
	var targetPct, stopPct, alpha float64
	var port int
	flag.StringVar(&csvPath, "csv", "", "Path to CSV (time,open,high,low,close,volume)")
	flag.StringVar(&symbol, "symbol", "SYMBOL", "Security symbol for pattern filenames")
	flag.StringVar(&modeFlag, "mode", "extended", "Search mode: basic|extended|deep|closeonly|highlowonly|opencloseonly")
	flag.StringVar(&policyFlag, "policy", "bh", "Correction policy: unadjusted|bh|adaptive-bh|romano-wolf|holm-rw")
	flag.IntVar(&permutations, "permutations", 100, "MCPT permutation count")
	flag.Float64Var(&targetPct, "target", 2.0, "Profit target percent")
	flag.Float64Var(&stopPct, "stop", 1.0, "Stop loss percent")
	flag.Float64Var(&alpha, "alpha", 0.10, "Significance / target FDR for the correction policy")
	flag.IntVar(&port, "port", 9090, "Port to serve /metrics on")
	flag.Parse()

	if csvPath == "" {
		log.Fatalf("paldiscover: -csv is required")
	}

	rt := config.FromEnv()
	log.SetPrefix("[" + rt.LogPrefix + "] ")

	ts, err := series.LoadCSV(csvPath)
	if err != nil {
		log.Fatalf("load csv: %v", err)
	}
	if ts.Len() < 2 {
		log.Fatalf("series too short: %d bars", ts.Len())
	}

	mode, err := parseSearchMode(modeFlag)
	if err != nil {
		log.Fatalf("parse mode: %v", err)
	}

	first, _ := ts.BarAt(0)
	last, _ := ts.BarAt(ts.Len() - 1)

	rm := ast.NewManager()
	criteria, err := discovery.NewPerformanceCriteria(50, 2, 10, 1.0)
	if err != nil {
		log.Fatalf("criteria: %v", err)
	}
	target, err := rm.GetDecimal(fmt.Sprintf("%.7f", targetPct))
	if err != nil {
		log.Fatalf("target decimal: %v", err)
	}
	stop, err := rm.GetDecimal(fmt.Sprintf("%.7f", stopPct))
	if err != nil {
		log.Fatalf("stop decimal: %v", err)
	}
	cfg := &discovery.SearchConfiguration{
		Security:      &discovery.Security{Symbol: symbol, Series: ts},
		Mode:          mode,
		ProfitTarget:  target,
		StopLoss:      stop,
		Criteria:      criteria,
		BacktestStart: first.Time,
		BacktestEnd:   last.Time,
		Side:          ast.EntryLong,
	}

	poolSize := rt.ExecutorPoolSize
	ex := executor.NewFixedPool(poolSize)
	defer ex.Shutdown()

	newBacktester := func() backtest.Backtester { return backtest.NewSimBacktester(ts) }
	engine, err := discovery.NewEngine(rm, cfg, newBacktester, ex)
	if err != nil {
		log.Fatalf("new engine: %v", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	log.Printf("running discovery: symbol=%s mode=%s bars=%d", symbol, modeFlag, ts.Len())
	ps, err := engine.Run(ctx)
	if err != nil {
		log.Fatalf("discovery run: %v", err)
	}
	log.Printf("discovery produced %d candidate patterns", ps.Count())

	policy, err := buildPolicy(policyFlag)
	if err != nil {
		log.Fatalf("build policy: %v", err)
	}

	newBacktesterForSeries := func(s *series.TimeSeries) backtest.Backtester { return backtest.NewSimBacktester(s) }
	for _, pat := range ps.All() {
		strategy := &ast.Strategy{
			Name:        pat.Description.Filename,
			Pattern:     pat,
			Portfolio:   pat.Portfolio,
			PatternHash: pat.Hash(),
		}
		driver := &mcpt.Driver{
			Strategy:        strategy,
			OriginalSeries:  ts,
			NewBacktester:   newBacktesterForSeries,
			Synthetic:       mcpt.NewBarShuffleSource(1),
			Metric:          mcpt.ProfitFactorMetric,
			NumPermutations: permutations,
			Tick:            0.01,
		}
		p, err := driver.Run(ctx)
		if err != nil {
			log.Printf("mcpt run failed for %s: %v", strategy.Name, err)
			continue
		}
		policy.AddResult(correction.Result{PValue: p, Stat: 1 / p, Strategy: strategy})
	}

	survivors, err := policy.Correct(alpha)
	if err != nil {
		log.Fatalf("correct: %v", err)
	}
	for _, s := range survivors {
		metrics.IncPatternsKept(policyFlag)
		fmt.Println(s.Name)
	}
	log.Printf("%d of %d candidates survived %s at alpha=%.3f", len(survivors), ps.Count(), policyFlag, alpha)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok\n"))
	})
	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("metrics server: %v", err)
		}
	}()
	log.Printf("serving /metrics on :%d", port)

	<-ctx.Done()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()
	return ctx, cancel
}

func parseSearchMode(s string) (discovery.SearchMode, error) {
	switch strings.ToLower(s) {
	case "basic":
		return discovery.SearchBasic, nil
	case "extended":
		return discovery.SearchExtended, nil
	case "deep":
		return discovery.SearchDeep, nil
	case "closeonly":
		return discovery.SearchCloseOnly, nil
	case "highlowonly":
		return discovery.SearchHighLowOnly, nil
	case "opencloseonly":
		return discovery.SearchOpenCloseOnly, nil
	default:
		return discovery.SearchUnknown, fmt.Errorf("unknown search mode %q", s)
	}
}

func buildPolicy(name string) (correction.Policy, error) {
	switch strings.ToLower(name) {
	case "unadjusted":
		return correction.NewUnadjustedSelection(), nil
	case "bh":
		return correction.NewBenjaminiHochbergFDR(correction.DefaultFDR), nil
	case "adaptive-bh":
		return correction.NewAdaptiveBH(1), nil
	case "romano-wolf":
		return correction.NewRomanoWolfStepdown(), nil
	case "holm-rw":
		return correction.NewHolmRomanoWolf(), nil
	default:
		return nil, fmt.Errorf("unknown correction policy %q", name)
	}
}
