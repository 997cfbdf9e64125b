package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sibylsearch/sibyl/internal/pipeline"
	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [query]",
	Short: "Answer one query in the terminal",
	Args:  cobra.MinimumNArgs(1),
	Run:   runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	initLogFile(cfg)

	p, err := buildPipeline(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building pipeline: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	query := strings.Join(args, " ")

	for ev := range p.Run(ctx, query) {
		switch ev.Type {
		case pipeline.EventSearchResults:
			fmt.Printf("Sources (%d):\n", len(ev.SearchResults))
			for i, src := range ev.SearchResults {
				fmt.Printf("  %d. %s\n     %s\n", i+1, src.Title, src.URL)
			}
			fmt.Println()
		case pipeline.EventImages:
			fmt.Printf("Images: %d validated\n", len(ev.Images))
		case pipeline.EventVideos:
			fmt.Printf("Videos: %d validated\n\n", len(ev.Videos))
		case pipeline.EventAnswerToken:
			fmt.Print(ev.Token)
		case pipeline.EventAnswerEnd:
			fmt.Println()
		case pipeline.EventFollowUp:
			fmt.Println("\nFollow-up questions:")
			for _, q := range ev.FollowUp.FollowUps {
				fmt.Printf("  - %s\n", q)
			}
		case pipeline.EventDone:
			if ev.Status != pipeline.StatusDone {
				fmt.Fprintf(os.Stderr, "\nfinished with status: %s\n", ev.Status)
				os.Exit(1)
			}
		}
	}
}
