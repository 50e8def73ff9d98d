package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/wyckoffd/risk-engine/internal/config"
	"github.com/wyckoffd/risk-engine/internal/logger"
	"github.com/wyckoffd/risk-engine/internal/monitoring"
	"github.com/wyckoffd/risk-engine/internal/portfolio"
	"github.com/wyckoffd/risk-engine/pkg/audit"
	"github.com/wyckoffd/risk-engine/pkg/reporting"
	"github.com/wyckoffd/risk-engine/pkg/risk"
	"github.com/wyckoffd/risk-engine/pkg/wyckoff"
)

func main() {
	var (
		configFile = flag.String("config", "", "Configuration file (e.g., engine.json)")
		profile    = flag.String("profile", "", "Risk profile (conservative, moderate, aggressive) - overrides config")
		reportDir  = flag.String("report-dir", "", "Report output directory - overrides config")
		listen     = flag.String("listen", "", "Listen address for /metrics and /healthz - overrides config")
		envFile    = flag.String("env", ".env", "Environment file path (default: .env)")
	)
	flag.Parse()

	// Load environment variables from .env file
	if err := loadEnvFile(*envFile); err != nil {
		log.Printf("Warning: Could not load .env file (%v), checking environment variables...", err)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Apply CLI overrides
	if *profile != "" {
		if err := cfg.ApplyProfile(*profile); err != nil {
			log.Fatalf("Failed to apply profile: %v", err)
		}
	}
	if *reportDir != "" {
		cfg.ReportDir = *reportDir
	}
	if *listen != "" {
		cfg.MetricsAddr = *listen
	}

	zl := logger.New(cfg.LogLevel, cfg.LogJSON)
	if cfg.LogFile != "" {
		fileLogger, logFile, err := logger.NewFile(cfg.LogLevel, cfg.LogFile)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		defer logFile.Close()
		zl = fileLogger
	}

	fmt.Println("🚀 Wyckoff Risk Engine Demo Starting...")
	if cfg.Profile != "" {
		fmt.Printf("🔧 Risk profile: %s\n", cfg.Profile)
	}

	limits := cfg.ToLimits()
	engine, err := risk.NewEngine(risk.EngineConfig{Limits: &limits, Logger: zl})
	if err != nil {
		log.Fatalf("Failed to create risk engine: %v", err)
	}

	// Audit trail: file-backed when configured, in-memory otherwise
	var recorder audit.Recorder
	var memory *audit.MemoryRecorder
	if cfg.AuditFile != "" {
		fileRecorder, err := audit.NewFileRecorder(cfg.AuditFile)
		if err != nil {
			log.Fatalf("Failed to open audit file: %v", err)
		}
		defer fileRecorder.Close()
		recorder = fileRecorder
		fmt.Printf("🧾 Audit trail: %s\n", cfg.AuditFile)
	} else {
		memory = audit.NewMemoryRecorder()
		recorder = memory
		fmt.Println("🧾 Audit trail: in-memory")
	}

	overrides := risk.NewOverrideService(engine, recorder, zl)
	health := monitoring.NewHealthChecker()

	var server *http.Server
	if cfg.MetricsAddr != "" {
		server = startMonitoring(cfg.MetricsAddr, health)
		fmt.Printf("📡 Metrics on http://%s/metrics, health on http://%s/healthz\n", cfg.MetricsAddr, cfg.MetricsAddr)
	}

	snapshot, err := buildSnapshot(cfg)
	if err != nil {
		log.Fatalf("Failed to build portfolio snapshot: %v", err)
	}

	now := time.Now().UTC()
	requests := buildRequests(now)

	fmt.Printf("💼 Account equity: $%s | Open positions: %d | Active campaigns: %d\n",
		snapshot.AccountEquity.StringFixed(2), len(snapshot.Open()), len(snapshot.ActiveCampaigns))
	fmt.Printf("🔎 Validating %d candidate signals...\n\n", len(requests))

	started := time.Now()
	results, err := engine.ValidateBatch(requests, snapshot)
	if err != nil {
		log.Fatalf("Validation batch failed: %v", err)
	}
	perSignal := time.Since(started).Seconds() / float64(len(results))

	for _, result := range results {
		outcome := "approved"
		if !result.Approved {
			outcome = "rejected"
			monitoring.RecordStageFailure(result.RejectStage)
		}
		monitoring.RecordValidation(string(result.Pattern), outcome, perSignal)
		recordDecision(recorder, health, result)
	}
	health.MarkValidation(now)

	if len(results) > 0 {
		monitoring.UpdatePortfolioHeat("current", results[0].HeatBefore.InexactFloat64())
		health.SetPortfolioHeat(results[0].HeatBefore.InexactFloat64())
	}

	// Manual override: the correlation-rejected DOT entry gets an audited
	// bypass from the risk desk
	results = append(results, runOverrideDemo(overrides, snapshot, now)...)

	reporter := reporting.NewDefaultReporter()
	data := &reporting.ReportData{
		GeneratedAt: now,
		Equity:      snapshot.AccountEquity,
		Profile:     cfg.Profile,
		Results:     results,
	}

	reporter.OutputSummary(data)
	for _, result := range results {
		if !result.Approved || result.Overridden {
			reporter.OutputResult(result)
		}
	}

	manager := reporting.NewReportingManager(reporting.ReportingConfig{
		EnableFiles:     true,
		OutputDirectory: cfg.ReportDir,
		CSVEnabled:      true,
		ExcelEnabled:    true,
		JSONEnabled:     true,
	})
	written, err := manager.ReportResults(data)
	if err != nil {
		log.Fatalf("Failed to write reports: %v", err)
	}
	for _, path := range written {
		fmt.Printf("📄 Report written: %s\n", path)
	}

	if memory != nil {
		fmt.Printf("🧾 Audit entries recorded: %d\n", memory.Len())
	}

	if server != nil {
		fmt.Println("\n✅ Demo complete. Press Ctrl+C to stop the metrics server...")

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		fmt.Println("\n🛑 Shutdown signal received...")
		if err := server.Shutdown(context.Background()); err != nil {
			log.Printf("Warning: metrics server shutdown: %v", err)
		}
	}

	fmt.Println("✅ Risk engine demo finished")
}

// loadEnvFile loads environment variables from a file
func loadEnvFile(envFile string) error {
	if _, err := os.Stat(envFile); err == nil {
		return godotenv.Load(envFile)
	}
	return fmt.Errorf("env file %s not found", envFile)
}

// startMonitoring serves Prometheus metrics and the health endpoint
func startMonitoring(addr string, health *monitoring.HealthChecker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", monitoring.NewMetricsHandler())
	mux.Handle("/healthz", health)

	server := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Warning: metrics server: %v", err)
		}
	}()
	return server
}

// buildSnapshot assembles the demo portfolio: two BTC accumulation entries,
// one ETH entry, and a standalone SOL position, all in the layer1 sector.
func buildSnapshot(cfg *config.Config) (*wyckoff.PortfolioContext, error) {
	layer1 := wyckoff.SectorInfo{Sector: "layer1", AssetClass: "crypto", Geography: "global"}
	infra := wyckoff.SectorInfo{Sector: "infrastructure", AssetClass: "crypto", Geography: "global"}
	meme := wyckoff.SectorInfo{Sector: "meme", AssetClass: "crypto", Geography: "global"}

	return portfolio.NewBuilder(decimal.NewFromInt(1000000)).
		WithCorrelation(cfg.ToCorrelation()).
		WithRMultiples(cfg.ToRMultiples()).
		AddPosition(position("BTCUSDT", "BTC-ACC-1", 1.4, wyckoff.PhaseD, 72)).
		AddPosition(position("BTCUSDT", "BTC-ACC-1", 1.1, wyckoff.PhaseD, 65)).
		AddPosition(position("ETHUSDT", "ETH-ACC-1", 1.2, wyckoff.PhaseC, 44)).
		AddPosition(position("SOLUSDT", "", 1.0, wyckoff.PhaseC, 0)).
		MapSector("BTCUSDT", layer1).
		MapSector("ETHUSDT", layer1).
		MapSector("SOLUSDT", layer1).
		MapSector("AVAXUSDT", layer1).
		MapSector("DOTUSDT", layer1).
		MapSector("LINKUSDT", infra).
		MapSector("DOGEUSDT", meme).
		Build()
}

// position builds one open demo position; volumeScore 0 means unscored
func position(symbol, campaignID string, riskPct float64, phase wyckoff.Phase, volumeScore int64) wyckoff.Position {
	p := wyckoff.Position{
		Symbol:     symbol,
		RiskPct:    decimal.NewFromFloat(riskPct),
		Status:     wyckoff.StatusOpen,
		Phase:      phase,
		CampaignID: campaignID,
	}
	if volumeScore > 0 {
		p.VolumeScore = decimal.NewNullDecimal(decimal.NewFromInt(volumeScore))
	}
	return p
}

// buildRequests assembles the candidate signals: scale-ins, a campaign that
// trips the sector cap, a distribution short, and a thin reward:risk entry.
func buildRequests(now time.Time) []risk.ValidationRequest {
	return []risk.ValidationRequest{
		{
			SignalID: "spring-btc",
			Signal: wyckoff.TradeSignal{
				Symbol:      "BTCUSDT",
				Inputs:      wyckoff.SpringInputs{SpringLow: decimal.NewFromInt(63000)},
				Entry:       decimal.NewFromInt(64200),
				Target:      decimal.NewFromInt(72000),
				CampaignID:  "BTC-ACC-1",
				GeneratedAt: now,
			},
			RiskPct:     decimal.NewFromInt(1),
			EvaluatedAt: now,
		},
		{
			SignalID: "sos-eth",
			Signal: wyckoff.TradeSignal{
				Symbol: "ETHUSDT",
				Inputs: wyckoff.SosInputs{
					Ice:   decimal.NewFromInt(2800),
					Creek: decimal.NewFromInt(3250),
				},
				Entry:       decimal.NewFromInt(3300),
				Target:      decimal.NewFromInt(3650),
				CampaignID:  "ETH-ACC-1",
				GeneratedAt: now,
			},
			RiskPct:     decimal.NewFromFloat(0.8),
			EvaluatedAt: now,
		},
		{
			SignalID: "st-avax",
			Signal: wyckoff.TradeSignal{
				Symbol:      "AVAXUSDT",
				Inputs:      wyckoff.StInputs{Ice: decimal.NewFromFloat(34.8)},
				Entry:       decimal.NewFromInt(36),
				Target:      decimal.NewFromInt(42),
				CampaignID:  "AVAX-ACC-1",
				GeneratedAt: now,
			},
			RiskPct:     decimal.NewFromInt(1),
			EvaluatedAt: now,
		},
		{
			SignalID: "utad-link",
			Signal: wyckoff.TradeSignal{
				Symbol:      "LINKUSDT",
				Inputs:      wyckoff.UtadInputs{UtadHigh: decimal.NewFromInt(18)},
				Entry:       decimal.NewFromFloat(17.4),
				Target:      decimal.NewFromFloat(14.4),
				GeneratedAt: now,
			},
			RiskPct:     decimal.NewFromFloat(0.7),
			EvaluatedAt: now,
		},
		{
			SignalID: "spring-doge",
			Signal: wyckoff.TradeSignal{
				Symbol:      "DOGEUSDT",
				Inputs:      wyckoff.SpringInputs{SpringLow: decimal.NewFromFloat(0.12)},
				Entry:       decimal.NewFromFloat(0.124),
				Target:      decimal.NewFromFloat(0.138),
				GeneratedAt: now,
			},
			RiskPct:     decimal.NewFromFloat(0.5),
			EvaluatedAt: now,
		},
		dotRequest(now),
	}
}

// dotRequest is the signal whose sector exposure breaches the strict
// correlation limit; the override demo bypasses it afterwards
func dotRequest(now time.Time) risk.ValidationRequest {
	return risk.ValidationRequest{
		SignalID: "lps-dot",
		Signal: wyckoff.TradeSignal{
			Symbol:      "DOTUSDT",
			Inputs:      wyckoff.LpsInputs{Ice: decimal.NewFromInt(7)},
			Entry:       decimal.NewFromFloat(7.2),
			Target:      decimal.NewFromFloat(8.4),
			GeneratedAt: now,
		},
		RiskPct:     decimal.NewFromFloat(1.5),
		EvaluatedAt: now,
	}
}

// runOverrideDemo bypasses the strict correlation rejection of the DOT
// entry with an audited risk-desk override
func runOverrideDemo(overrides *risk.OverrideService, snapshot *wyckoff.PortfolioContext, now time.Time) []*risk.PositionSizing {
	fmt.Println("🔏 Requesting risk-desk override for lps-dot...")

	result, err := overrides.Override(risk.OverrideRequest{
		Request:       dotRequest(now),
		Approver:      "risk-desk",
		Justification: "sector rotation underway, layer1 exposure unwinding this week",
	}, snapshot)
	if err != nil {
		switch {
		case errors.Is(err, risk.ErrNotOverridable):
			monitoring.RecordOverride("denied")
			log.Printf("Override denied: %v", err)
		case errors.Is(err, risk.ErrAuditUnavailable):
			monitoring.RecordOverride("audit_failed")
			log.Printf("Override failed closed: %v", err)
		default:
			log.Printf("Override error: %v", err)
		}
		return nil
	}

	monitoring.RecordOverride("granted")
	fmt.Printf("🔏 Override granted, audit entry %s\n\n", result.OverrideID)
	return []*risk.PositionSizing{result}
}

// recordDecision writes the validation outcome to the audit trail
func recordDecision(recorder audit.Recorder, health *monitoring.HealthChecker, result *risk.PositionSizing) {
	entry := audit.Entry{
		ID:         audit.NewEntryID(),
		SignalID:   result.SignalID,
		Symbol:     result.Symbol,
		Pattern:    result.Pattern,
		RecordedAt: result.EvaluatedAt,
	}
	if result.Approved {
		entry.Kind = audit.KindValidation
	} else {
		entry.Kind = audit.KindRejection
		entry.Stage = result.RejectStage
		entry.Reason = result.RejectReason
	}

	if err := recorder.Record(entry); err != nil {
		health.SetAuditAvailable(false)
		log.Printf("Warning: audit record failed: %v", err)
	}
}
