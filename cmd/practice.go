package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/mockprep/internal/app"
	"github.com/abhisek/mockprep/internal/interview"
	"github.com/abhisek/mockprep/internal/question"
	"github.com/abhisek/mockprep/internal/selector"
)

var practiceCmd = &cobra.Command{
	Use:   "practice",
	Short: "Run a mock interview session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPractice(cmd)
	},
}

func init() {
	addPracticeFlags(practiceCmd)
}

func addPracticeFlags(c *cobra.Command) {
	f := c.Flags()
	f.String("type", string(selector.SessionMixed), "Session type: technical, behavioral, mixed or job-specific")
	f.String("role", "", "Target job role, e.g. \"backend engineer\"")
	f.String("difficulty", string(question.DifficultyMid), "Seniority: junior, mid, senior or all")
	f.Int("count", 0, "Number of questions (0 uses interview.default_count)")
	f.String("user", "", "User the session belongs to (default $USER)")
	f.StringSlice("skills", nil, "Skills to favor, e.g. --skills go,sql")
	f.String("metrics-addr", "", "Serve Prometheus metrics on this address while practicing")
}

// practiceRequest builds the StartRequest from flags.
func practiceRequest(cmd *cobra.Command) (interview.StartRequest, error) {
	f := cmd.Flags()
	typ, _ := f.GetString("type")
	role, _ := f.GetString("role")
	diff, _ := f.GetString("difficulty")
	count, _ := f.GetInt("count")
	skills, _ := f.GetStringSlice("skills")

	st, err := selector.ParseSessionType(typ)
	if err != nil {
		return interview.StartRequest{}, err
	}
	d, err := question.ParseDifficulty(diff)
	if err != nil {
		return interview.StartRequest{}, err
	}
	req := interview.StartRequest{
		User:       userFlag(cmd),
		Type:       st,
		JobRole:    role,
		Difficulty: d,
		Count:      count,
	}
	if len(skills) > 0 {
		req.Hint = &selector.Hint{Role: role, Skills: skills}
	}
	return req, nil
}

// runPractice launches the TUI for one session.
func runPractice(cmd *cobra.Command) error {
	req, err := practiceRequest(cmd)
	if err != nil {
		return err
	}

	d, err := loadDeps(cmd, depsOptions{quiet: true})
	if err != nil {
		return err
	}
	defer d.Close()

	addr, _ := cmd.Flags().GetString("metrics-addr")
	if addr == "" {
		addr = d.cfg.Metrics.Addr
	}
	if addr != "" {
		stop := serveMetrics(addr, d)
		defer stop()
	}

	return app.Run(app.Options{
		Engine:         d.engine,
		Start:          req,
		MaxAnswerChars: d.cfg.Interview.MaxAnswerChars,
		Logger:         d.log,
	})
}

// serveMetrics exposes /metrics on addr until the returned stop is called.
func serveMetrics(addr string, d *deps) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", d.metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			d.log.Warn("metrics server stopped", zap.String("addr", addr), zap.Error(err))
		}
	}()
	d.log.Info("serving metrics", zap.String("addr", addr))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func defaultUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "local"
}
