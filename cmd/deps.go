package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/mockprep/internal/config"
	"github.com/abhisek/mockprep/internal/evaluation"
	"github.com/abhisek/mockprep/internal/feedback"
	"github.com/abhisek/mockprep/internal/interview"
	"github.com/abhisek/mockprep/internal/llm"
	"github.com/abhisek/mockprep/internal/logger"
	"github.com/abhisek/mockprep/internal/metrics"
	"github.com/abhisek/mockprep/internal/question"
	"github.com/abhisek/mockprep/internal/selector"
	"github.com/abhisek/mockprep/internal/store"
)

// deps is everything a command may need, built from config.
type deps struct {
	cfg      *config.Config
	log      *zap.Logger
	store    *store.Store
	metrics  *metrics.Metrics
	provider llm.Provider
	selector *selector.Selector
	engine   *interview.Engine
}

type depsOptions struct {
	// quiet keeps logs off the terminal; the TUI owns it.
	quiet bool
}

// loadDeps loads config, applies the persistent flags and wires the store,
// LLM provider and engine.
func loadDeps(cmd *cobra.Command, opts depsOptions) (*deps, error) {
	ctx := cmd.Context()

	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DB = p
	}
	if cmd.Flags().Changed("debug") {
		cfg.Log.Debug, _ = cmd.Flags().GetBool("debug")
	}
	if cmd.Flags().Changed("json") {
		cfg.Log.JSON, _ = cmd.Flags().GetBool("json")
	}

	dbPath, err := cfg.DBPath()
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	log, err := logger.New(logger.Options{
		JSON:  cfg.Log.JSON,
		Debug: cfg.Log.Debug,
		File:  cfg.LogPath(dbPath),
		Quiet: opts.quiet,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	d := &deps{cfg: cfg, log: log, store: st, metrics: metrics.New()}

	seeded, err := st.Questions().SeedDefaultBank(ctx)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("seed question bank: %w", err)
	}
	if seeded {
		log.Info("built-in question bank installed", zap.String("version", question.DefaultBankVersion))
	}

	d.provider, err = llm.New(ctx, cfg.LLM, st.LLMEvents(), log)
	if err != nil {
		log.Warn("LLM provider unavailable, feedback uses templates only", zap.Error(err))
		d.provider = nil
	}

	engineCfg, err := cfg.EngineConfig()
	if err != nil {
		d.Close()
		return nil, err
	}

	d.selector = selector.New(st.Questions(),
		selector.WithSeed(cfg.Selection.Seed),
		selector.WithLogger(log),
		selector.WithMetrics(d.metrics),
	)

	synthOpts := []feedback.Option{feedback.WithLogger(log)}
	if d.provider != nil {
		synthOpts = append(synthOpts, feedback.WithCoach(feedback.NewLLMCoach(d.provider)))
	}

	d.engine = interview.NewEngine(
		st.Sessions(),
		st.Questions(),
		d.selector,
		evaluation.New(cfg.EvaluatorConfig(), log),
		feedback.New(synthOpts...),
		interview.WithConfig(engineCfg),
		interview.WithLogger(log),
		interview.WithMetrics(d.metrics),
	)
	return d, nil
}

// requireLLM fails when no provider is configured.
func (d *deps) requireLLM() error {
	if d.provider == nil {
		return errors.New("no LLM provider configured; set llm.provider in mockprep.yaml or MOCKPREP_LLM_PROVIDER")
	}
	return nil
}

// Close waits for background usage updates and closes the store.
func (d *deps) Close() {
	if d.selector != nil {
		d.selector.Wait()
	}
	if err := d.store.Close(); err != nil {
		d.log.Warn("close store", zap.Error(err))
	}
	_ = d.log.Sync()
}

// userFlag returns --user, defaulting to $USER.
func userFlag(cmd *cobra.Command) string {
	if u, _ := cmd.Flags().GetString("user"); u != "" {
		return u
	}
	return defaultUser()
}

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}
