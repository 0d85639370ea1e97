package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/xaenox/moodlog/internal/client"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "moodlog",
		Short: "moodlog - sentiment query API client",
		Long: `moodlog talks to a running moodlog server: submit text for sentiment
classification, inspect recent query logs, and export the analytics view.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("server", "http://localhost:8000", "moodlog server base URL")

	rootCmd.AddCommand(
		queryCmd(),
		recentCmd(),
		exportCmd(),
		healthCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newClient(cmd *cobra.Command) *client.Client {
	baseURL, _ := cmd.Flags().GetString("server")
	return client.New(client.Config{BaseURL: baseURL})
}

func queryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "query [text]",
		Short: "Classify the sentiment of a piece of text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := newClient(cmd).Query(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s (%.2f)\n", resp.SentimentLabel, resp.SentimentScore)
			return nil
		},
	}
}

func recentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Show recent query logs",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			logs, err := newClient(cmd).Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			for _, log := range logs {
				text := log.InputText
				if len(text) > 60 {
					text = text[:57] + "..."
				}
				fmt.Printf("%-6d %s  %-8s %.2f  %s\n",
					log.ID, log.Timestamp.UTC().Format(time.RFC3339), log.ModelLabel, log.ModelScore, text)
			}
			return nil
		},
	}
	cmd.Flags().IntP("limit", "n", 20, "number of rows to show")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the filtered analytics view as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			timeRange, _ := cmd.Flags().GetString("range")
			output, _ := cmd.Flags().GetString("output")

			out := os.Stdout
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}

			return newClient(cmd).ExportCSV(cmd.Context(), timeRange, out)
		},
	}
	cmd.Flags().String("range", "all", "time range (all, 1h, 24h, 7d)")
	cmd.Flags().StringP("output", "o", "", "output file (default stdout)")
	return cmd
}

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health and model readiness",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, modelLoaded, err := newClient(cmd).Health(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("status: %s\nmodel loaded: %v\n", status, modelLoaded)
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("moodlog %s\n", version)
			fmt.Printf("  commit: %s\n", commit)
			fmt.Printf("  built:  %s\n", date)
		},
	}
}
