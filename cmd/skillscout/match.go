package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Rank candidates and positions against each other",
}

var matchCandidateCmd = &cobra.Command{
	Use:   "candidate <candidate-id>",
	Short: "Rank open positions for a candidate",
	Args:  cobra.ExactArgs(1),
	RunE:  runMatchCandidate,
}

var matchPositionCmd = &cobra.Command{
	Use:   "position <position-id>",
	Short: "Rank candidates for a position",
	Args:  cobra.ExactArgs(1),
	RunE:  runMatchPosition,
}

var matchLimit int

func init() {
	matchCmd.PersistentFlags().IntVarP(&matchLimit, "limit", "n", 0, "Show only the top n matches (0 shows all)")
	matchCmd.AddCommand(matchCandidateCmd, matchPositionCmd)
	rootCmd.AddCommand(matchCmd)
}

func runMatchCandidate(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid candidate ID %q: %w", args[0], err)
	}

	container, _, cleanup, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	matches, err := container.Matcher.RankPositionsForCandidate(cmd.Context(), id)
	if err != nil {
		return err
	}
	matches = matches[:limit(len(matches))]

	if jsonOutput {
		return printJSON(cmd, matches)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SCORE\tPOSITION ID\tJOB TITLE\tLOCATION\tDESCRIPTION")
	for _, m := range matches {
		fmt.Fprintf(w, "%.2f\t%s\t%s\t%s\t%s\n",
			m.Score, m.Position.PositionID, m.Position.JobTitle, m.Position.Location, m.Position.DescriptionPreview())
	}
	return w.Flush()
}

func runMatchPosition(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid position ID %q: %w", args[0], err)
	}

	container, _, cleanup, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	matches, err := container.Matcher.RankCandidatesForPosition(cmd.Context(), id)
	if err != nil {
		return err
	}
	matches = matches[:limit(len(matches))]

	if jsonOutput {
		return printJSON(cmd, matches)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SCORE\tCANDIDATE ID\tNAME\tYEARS\tSKILLS")
	for _, m := range matches {
		fmt.Fprintf(w, "%.2f\t%s\t%s\t%d\t%s\n",
			m.Score, m.Candidate.ID, m.Candidate.Name, m.Candidate.YearsOfExperience, m.Candidate.Skills)
	}
	return w.Flush()
}

func limit(n int) int {
	if matchLimit > 0 && matchLimit < n {
		return matchLimit
	}
	return n
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
