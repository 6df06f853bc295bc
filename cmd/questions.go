package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/mockprep/internal/question"
	"github.com/abhisek/mockprep/internal/questiongen"
)

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Inspect and grow the question bank",
}

var questionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List questions in the bank",
	RunE: func(cmd *cobra.Command, args []string) error {
		typ, _ := cmd.Flags().GetString("type")
		diff, _ := cmd.Flags().GetString("difficulty")
		role, _ := cmd.Flags().GetString("role")

		var f question.Filter
		if typ != "" {
			t, err := question.ParseType(typ)
			if err != nil {
				return err
			}
			f.Types = []question.Type{t}
		}
		if diff != "" {
			d, err := question.ParseDifficulty(diff)
			if err != nil {
				return err
			}
			f.Difficulties = []question.Difficulty{d}
		}
		f.Role = role

		d, err := loadDeps(cmd, depsOptions{})
		if err != nil {
			return err
		}
		defer d.Close()

		ctx := cmd.Context()
		qs, err := d.store.Questions().Find(ctx, f)
		if err != nil {
			return fmt.Errorf("find questions: %w", err)
		}
		if jsonOutput(cmd) {
			return printJSON(qs)
		}
		version, err := d.store.Questions().BankVersion(ctx)
		if err != nil {
			return fmt.Errorf("read bank version: %w", err)
		}

		fmt.Printf("Bank %s, %d matching questions\n\n", version, len(qs))
		fmt.Printf("%-24s  %-11s  %-6s  %-5s  %s\n", "ID", "Type", "Level", "Used", "Question")
		fmt.Println(strings.Repeat("─", 110))
		for _, q := range qs {
			fmt.Printf("%-24s  %-11s  %-6s  %-5d  %s\n",
				truncate(q.ID, 24), q.Type, q.Difficulty, q.UsageCount, truncate(q.Text, 60))
		}
		return nil
	},
}

var questionsImportCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Install a question bank file",
	Long:  "Install a versioned question bank. The file must match the bank schema and be at least as new as the installed bank.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open bank file: %w", err)
		}
		defer f.Close()

		bank, err := question.ReadBank(f)
		if err != nil {
			return err
		}

		d, err := loadDeps(cmd, depsOptions{})
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.store.Questions().ImportBank(cmd.Context(), bank); err != nil {
			if errors.Is(err, question.ErrStaleBank) {
				installed, _ := d.store.Questions().BankVersion(cmd.Context())
				return fmt.Errorf("%w: installed %s, file %s", err, installed, bank.Version)
			}
			return fmt.Errorf("import bank: %w", err)
		}
		fmt.Printf("Installed bank %s with %d questions.\n", bank.Version, len(bank.Questions))
		return nil
	},
}

var questionsGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write new questions with the configured LLM",
	RunE: func(cmd *cobra.Command, args []string) error {
		fl := cmd.Flags()
		role, _ := fl.GetString("role")
		typ, _ := fl.GetString("type")
		diff, _ := fl.GetString("difficulty")
		count, _ := fl.GetInt("count")
		skills, _ := fl.GetStringSlice("skills")

		t, err := question.ParseType(typ)
		if err != nil {
			return err
		}
		lvl, err := question.ParseDifficulty(diff)
		if err != nil {
			return err
		}

		d, err := loadDeps(cmd, depsOptions{})
		if err != nil {
			return err
		}
		defer d.Close()
		if err := d.requireLLM(); err != nil {
			return err
		}

		gen := questiongen.New(d.provider, d.store.Questions(), questiongen.DefaultConfig(),
			questiongen.WithLogger(d.log))
		res, err := gen.Generate(cmd.Context(), questiongen.Input{
			Role:       role,
			Type:       t,
			Difficulty: lvl,
			Skills:     skills,
			Count:      count,
		})
		if res != nil {
			for _, q := range res.Accepted {
				fmt.Printf("+ %s  %s\n", q.ID, q.Text)
			}
			for _, r := range res.Rejected {
				fmt.Printf("- rejected (%s): %s\n", r.Err.Message, truncate(r.Text, 70))
			}
		}
		if err != nil {
			return err
		}
		fmt.Printf("\nAdded %d questions, rejected %d.\n", len(res.Accepted), len(res.Rejected))
		return nil
	},
}

func init() {
	questionsListCmd.Flags().String("type", "", "Filter by question type")
	questionsListCmd.Flags().String("difficulty", "", "Filter by seniority")
	questionsListCmd.Flags().String("role", "", "Filter by job role")

	gf := questionsGenerateCmd.Flags()
	gf.String("role", "", "Target job role")
	gf.String("type", string(question.TypeTechnical), "Question type: technical, behavioral or situational")
	gf.String("difficulty", string(question.DifficultyMid), "Seniority: junior, mid, senior or all")
	gf.Int("count", 5, fmt.Sprintf("Questions to generate (1-%d)", questiongen.MaxBatch))
	gf.StringSlice("skills", nil, "Skills the questions should exercise")

	questionsCmd.AddCommand(questionsListCmd)
	questionsCmd.AddCommand(questionsImportCmd)
	questionsCmd.AddCommand(questionsGenerateCmd)
}

func truncate(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}
