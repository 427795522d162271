package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dazzie/quoted/internal/analyzer"
	"github.com/dazzie/quoted/internal/api"
	"github.com/dazzie/quoted/internal/completeness"
	"github.com/dazzie/quoted/internal/config"
	"github.com/dazzie/quoted/internal/coverage"
	"github.com/dazzie/quoted/internal/extract"
	"github.com/dazzie/quoted/internal/pipeline"
	"github.com/dazzie/quoted/internal/profile"
	"github.com/dazzie/quoted/internal/rules"
)

// --- session ---

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage quote sessions",
}

var sessionNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a new quote session",
	RunE: func(cmd *cobra.Command, args []string) error {
		hintFile, _ := cmd.Flags().GetString("hint")

		var hint *profile.CustomerHint
		if hintFile != "" {
			data, err := os.ReadFile(hintFile)
			if err != nil {
				return fmt.Errorf("reading hint file: %w", err)
			}
			hint = &profile.CustomerHint{}
			if err := json.Unmarshal(data, hint); err != nil {
				return fmt.Errorf("parsing hint file: %w", err)
			}
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/sessions", api.CreateSessionRequest{Hint: hint})
		if err != nil {
			return err
		}

		var state api.SessionState
		if err := decodeJSON(resp, &state); err != nil {
			return err
		}

		printSuccess("Created session %s", state.ID)
		fmt.Println(state.ID)
		return nil
	},
}

var sessionShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show a session's profile and completeness",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/sessions/"+args[0])
		if err != nil {
			return err
		}

		var state api.SessionState
		if err := decodeJSON(resp, &state); err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(state)
	},
}

var sessionDeleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a session and its analyses",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.delete(cmd.Context(), "/sessions/"+args[0])
		if err != nil {
			return err
		}
		resp.Body.Close()
		if resp.StatusCode >= 400 {
			return fmt.Errorf("server returned %d", resp.StatusCode)
		}

		printSuccess("Deleted session %s", args[0])
		return nil
	},
}

var sessionAnalysesCmd = &cobra.Command{
	Use:   "analyses <session-id>",
	Short: "List past coverage analyses for a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		path := fmt.Sprintf("/sessions/%s/analyses?limit=%d", args[0], limit)
		resp, err := client.get(cmd.Context(), path)
		if err != nil {
			return err
		}

		var records []api.AnalysisRecord
		if err := decodeJSON(resp, &records); err != nil {
			return err
		}

		if len(records) == 0 {
			fmt.Println("No analyses found.")
			return nil
		}

		for _, r := range records {
			fmt.Printf("%s  %s  health %d  %d gaps\n",
				colorize(colorCyan, r.ID[:8]),
				r.CreatedAt.Format(time.RFC3339),
				r.Analysis.HealthScore,
				len(r.Analysis.Gaps),
			)
		}
		return nil
	},
}

func init() {
	sessionNewCmd.Flags().String("hint", "", "path to a customer hint JSON file")
	sessionAnalysesCmd.Flags().Int("limit", 20, "maximum number of analyses to list")

	sessionCmd.AddCommand(sessionNewCmd)
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionDeleteCmd)
	sessionCmd.AddCommand(sessionAnalysesCmd)
}

// --- turns ---

var turnsCmd = &cobra.Command{
	Use:   "turns <session-id>",
	Short: "Feed conversation turns into a session",
	Long: `Feed conversation turns into a session.

Examples:
  quoted turns abc123 --text "I drive a 2019 Honda Civic"
  quoted turns abc123 --file ./transcript.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, _ := cmd.Flags().GetString("text")
		file, _ := cmd.Flags().GetString("file")

		if text == "" && file == "" {
			return fmt.Errorf("one of --text or --file is required")
		}

		var turns []extract.Turn
		switch {
		case text != "":
			turns = []extract.Turn{{Role: extract.RoleUser, Text: text}}
		case file != "":
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("reading transcript: %w", err)
			}
			if err := json.Unmarshal(data, &turns); err != nil {
				return fmt.Errorf("parsing transcript: %w", err)
			}
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		path := "/sessions/" + args[0] + "/turns"
		resp, err := client.post(cmd.Context(), path, api.TurnsRequest{Turns: turns})
		if err != nil {
			return err
		}

		var state api.SessionState
		if err := decodeJSON(resp, &state); err != nil {
			return err
		}

		printTurnSummary(state.Completeness, state.NextQuestion)
		return nil
	},
}

func printTurnSummary(c completeness.Completeness, next completeness.FieldID) {
	printStatus("Score", "%d%%", c.Score)
	if c.ReadyForQuote {
		printSuccess("Profile is ready for a quote")
	} else {
		printStatus("Missing", "%d required, %d optional",
			len(c.MissingRequired), len(c.MissingOptional))
	}
	if next != "" {
		printStatus("Ask next", "%s", next)
	}
}

func init() {
	turnsCmd.Flags().String("text", "", "a single customer utterance")
	turnsCmd.Flags().String("file", "", "path to a JSON transcript of {role, text} turns")
}

// --- extract ---

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Run extraction over a transcript locally",
	Long: `Run extraction over a transcript locally, without a server.

Reads a JSON array of {role, text} turns, runs the full
extract-merge-evaluate pass, and prints the resulting profile,
completeness, and next question as JSON.

Example:
  quoted extract --file ./transcript.json --hint ./customer.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		profileFile, _ := cmd.Flags().GetString("profile")
		hintFile, _ := cmd.Flags().GetString("hint")

		if file == "" {
			return fmt.Errorf("--file is required")
		}

		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("reading transcript: %w", err)
		}
		var turns []extract.Turn
		if err := json.Unmarshal(data, &turns); err != nil {
			return fmt.Errorf("parsing transcript: %w", err)
		}

		var current profile.QuoteProfile
		if profileFile != "" {
			data, err := os.ReadFile(profileFile)
			if err != nil {
				return fmt.Errorf("reading profile: %w", err)
			}
			if err := json.Unmarshal(data, &current); err != nil {
				return fmt.Errorf("parsing profile: %w", err)
			}
		}

		var hint *profile.CustomerHint
		if hintFile != "" {
			data, err := os.ReadFile(hintFile)
			if err != nil {
				return fmt.Errorf("reading hint: %w", err)
			}
			hint = &profile.CustomerHint{}
			if err := json.Unmarshal(data, hint); err != nil {
				return fmt.Errorf("parsing hint: %w", err)
			}
		}

		result, err := pipeline.New(extract.New()).ProcessTurns(current, turns, hint)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	extractCmd.Flags().String("file", "", "path to a JSON transcript of {role, text} turns")
	extractCmd.Flags().String("profile", "", "path to an existing profile JSON to merge into")
	extractCmd.Flags().String("hint", "", "path to a customer hint JSON file")
}

// --- analyze ---

var analyzeCmd = &cobra.Command{
	Use:   "analyze [session-id]",
	Short: "Analyze coverage documents for gaps",
	Long: `Analyze coverage documents for gaps.

Reads a JSON array of coverage documents and runs gap analysis
against a session's profile, or locally against a profile file
when no session is given.

Examples:
  quoted analyze abc123 --file ./coverage.json
  quoted analyze --file ./coverage.json --profile ./profile.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		profileFile, _ := cmd.Flags().GetString("profile")
		asJSON, _ := cmd.Flags().GetBool("json")

		if file == "" {
			return fmt.Errorf("--file is required")
		}

		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("reading coverage file: %w", err)
		}
		var docs []coverage.Document
		if err := json.Unmarshal(data, &docs); err != nil {
			return fmt.Errorf("parsing coverage file: %w", err)
		}

		if len(args) == 0 {
			var p profile.QuoteProfile
			if profileFile != "" {
				data, err := os.ReadFile(profileFile)
				if err != nil {
					return fmt.Errorf("reading profile: %w", err)
				}
				if err := json.Unmarshal(data, &p); err != nil {
					return fmt.Errorf("parsing profile: %w", err)
				}
			}
			result := analyzer.New(rules.Default()).Analyze(p, docs)
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			printAnalysis(result)
			return nil
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		path := "/sessions/" + args[0] + "/analysis"
		resp, err := client.post(cmd.Context(), path, api.AnalyzeRequest{Documents: docs})
		if err != nil {
			return err
		}

		var record api.AnalysisRecord
		if err := decodeJSON(resp, &record); err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(record.Analysis)
		}

		printAnalysis(record.Analysis)
		return nil
	},
}

func printAnalysis(a analyzer.Analysis) {
	printStatus("Health score", "%d/100", a.HealthScore)
	fmt.Fprintln(os.Stderr, "  "+a.Summary)

	for _, g := range a.Gaps {
		var color string
		switch g.Severity {
		case analyzer.SeverityCritical:
			color = colorRed
		case analyzer.SeverityWarning:
			color = colorYellow
		default:
			color = colorCyan
		}
		fmt.Printf("\n%s %s\n", colorize(color, strings.ToUpper(string(g.Severity))), colorize(colorBold, g.Title))
		fmt.Printf("  %s\n", g.Message)
		if g.Recommendation != "" {
			fmt.Printf("  Recommendation: %s\n", g.Recommendation)
		}
		if g.PotentialSavings > 0 {
			fmt.Printf("  Potential savings: $%.0f/year\n", g.PotentialSavings)
		}
	}

	if len(a.Citations) > 0 {
		fmt.Printf("\nCitations:\n")
		for _, c := range a.Citations {
			fmt.Printf("  %s\n", c)
		}
	}
}

func init() {
	analyzeCmd.Flags().String("file", "", "path to a JSON array of coverage documents")
	analyzeCmd.Flags().String("profile", "", "path to a profile JSON for local analysis")
	analyzeCmd.Flags().Bool("json", false, "print the raw analysis JSON")
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
