package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/mockprep/internal/interview"
	"github.com/abhisek/mockprep/internal/screens/summary"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Review past interview sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your sessions, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		typ, _ := cmd.Flags().GetString("type")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		d, err := loadDeps(cmd, depsOptions{})
		if err != nil {
			return err
		}
		defer d.Close()

		page, err := d.engine.ListSessions(cmd.Context(), interview.ListRequest{
			User:   userFlag(cmd),
			Status: interview.Status(status),
			Type:   interview.SessionType(typ),
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return printJSON(page)
		}

		if len(page.Sessions) == 0 {
			fmt.Println("No sessions found.")
			return nil
		}

		fmt.Printf("%-36s  %-16s  %-12s  %-7s  %-8s  %-7s  %s\n",
			"ID", "Started", "Type", "Level", "Answered", "Overall", "Status")
		fmt.Println(strings.Repeat("\u2500", 110))
		for _, s := range page.Sessions {
			overall := "-"
			if s.AverageScores != nil {
				overall = fmt.Sprintf("%d", s.AverageScores.Overall)
			}
			fmt.Printf("%-36s  %-16s  %-12s  %-7s  %-8s  %-7s  %s\n",
				s.ID,
				s.StartedAt.Local().Format("2006-01-02 15:04"),
				s.Type,
				s.Difficulty,
				fmt.Sprintf("%d/%d", s.Answered, s.TotalQuestions),
				overall,
				s.Status,
			)
		}
		if shown := page.Offset + len(page.Sessions); shown < page.Total {
			fmt.Printf("\nShowing %d-%d of %d. Use --offset %d for more.\n", page.Offset+1, shown, page.Total, shown)
		}
		return nil
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a session with every answer and its report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDeps(cmd, depsOptions{})
		if err != nil {
			return err
		}
		defer d.Close()

		detail, err := d.engine.SessionDetail(cmd.Context(), args[0], userFlag(cmd))
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return printJSON(detail)
		}
		printDetail(detail)
		return nil
	},
}

var sessionsAbandonCmd = &cobra.Command{
	Use:   "abandon <id>",
	Short: "Abandon an in-progress session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDeps(cmd, depsOptions{})
		if err != nil {
			return err
		}
		defer d.Close()

		s, err := d.engine.AbandonSession(cmd.Context(), args[0], userFlag(cmd))
		if err != nil {
			return err
		}
		fmt.Printf("Session %s is now %s.\n", s.ID, s.Status)
		return nil
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a session and its answers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDeps(cmd, depsOptions{})
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.engine.DeleteSession(cmd.Context(), args[0], userFlag(cmd)); err != nil {
			return err
		}
		fmt.Printf("Deleted session %s.\n", args[0])
		return nil
	},
}

func init() {
	sessionsCmd.PersistentFlags().String("user", "", "User whose sessions to read (default $USER)")

	sessionsListCmd.Flags().String("status", "", "Filter by status: in_progress, completed or abandoned")
	sessionsListCmd.Flags().String("type", "", "Filter by session type")
	sessionsListCmd.Flags().Int("limit", interview.DefaultPageSize, "Page size (max 100)")
	sessionsListCmd.Flags().Int("offset", 0, "Sessions to skip")

	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
	sessionsCmd.AddCommand(sessionsAbandonCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
}

func printDetail(detail *interview.Detail) {
	s := detail.Session
	sep := strings.Repeat("\u2500", 72)

	fmt.Printf("ID:        %s\n", s.ID)
	fmt.Printf("Type:      %s (%s)\n", s.Type, s.Difficulty)
	if s.JobRole != "" {
		fmt.Printf("Role:      %s\n", s.JobRole)
	}
	fmt.Printf("Started:   %s\n", s.StartedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Printf("Status:    %s, %d/%d answered\n", s.Status, s.Answered, s.TotalQuestions)

	for _, it := range detail.Items {
		fmt.Println()
		fmt.Println(sep)
		text := "(question no longer in the bank)"
		if it.Question != nil {
			text = it.Question.Text
		}
		fmt.Printf("Q%d. %s\n", it.Assignment.Ordinal, text)
		fmt.Println(sep)
		if it.Answer == nil {
			fmt.Println("(not answered)")
			continue
		}
		a := it.Answer
		fmt.Println(a.Text)
		fmt.Println()
		sc := a.Scores
		fmt.Printf("Overall %d  relevance %d  completeness %d  clarity %d  technical %d  communication %d\n",
			sc.Overall, sc.Relevance, sc.Completeness, sc.Clarity, sc.TechnicalAccuracy, sc.Communication)
		if a.Degraded {
			fmt.Println("Scoring degraded: neutral scores were used.")
		}
		if a.Feedback.Narrative != "" {
			fmt.Println(a.Feedback.Narrative)
		}
		printList("Missing", a.Feedback.MissingPoints)
		printList("Suggestions", a.Feedback.Suggestions)
	}

	if detail.Feedback != nil {
		fmt.Println()
		fmt.Print(summary.Render(s, detail.Feedback, 80))
	}
}

func printList(title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Printf("%s:\n", title)
	for _, it := range items {
		fmt.Printf("  - %s\n", it)
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
