package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/chriscow/backchannel-go/pkg/version"
	"github.com/chriscow/backchannel-go/pkg/voice"
)

var rootCmd = &cobra.Command{
	Use:   "backchannel",
	Short: "Backchannel - interruption filtering for voice agents",
	Long: `backchannel classifies transcribed user speech as passive acknowledgment
(backchanneling) or a real interruption, so a voice agent can keep talking
through "yeah" and "uh-huh" but yield immediately to "stop" or "wait".`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.GetVersionInfo())
	},
}

var classifyCmd = &cobra.Command{
	Use:   "classify [text...]",
	Short: "Classify utterances from arguments or stdin",
	Long: `Classify evaluates utterances against the interruption rules and prints
the verdict with the rule that decided it. Utterances come from the command
line, or one per line on stdin when no arguments are given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		speaking, _ := cmd.Flags().GetBool("speaking")
		ignoreWords, _ := cmd.Flags().GetStringSlice("ignore")
		commandWords, _ := cmd.Flags().GetStringSlice("command")

		logger := setupLogger()

		var opts []voice.Option
		if cmd.Flags().Changed("ignore") {
			opts = append(opts, voice.WithIgnoreWords(ignoreWords...))
		}
		if cmd.Flags().Changed("command") {
			opts = append(opts, voice.WithCommandWords(commandWords...))
		}
		classifier := voice.NewClassifier(opts...)

		logger.Debug("classifier ready",
			slog.Bool("speaking", speaking),
			slog.Bool("custom_ignore", cmd.Flags().Changed("ignore")),
			slog.Bool("custom_command", cmd.Flags().Changed("command")))

		if len(args) > 0 {
			for _, text := range args {
				printDecision(cmd, classifier, text, speaking)
			}
			return nil
		}

		scanner := bufio.NewScanner(cmd.InOrStdin())
		for scanner.Scan() {
			printDecision(cmd, classifier, scanner.Text(), speaking)
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		return nil
	},
}

var wordsCmd = &cobra.Command{
	Use:   "words",
	Short: "Print the built-in word sets",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "Ignore words (backchannel):")
		for _, w := range voice.DefaultIgnoreWords() {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", w)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Command keywords:")
		for _, w := range voice.DefaultCommandWords() {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", w)
		}
	},
}

func printDecision(cmd *cobra.Command, classifier *voice.Classifier, text string, speaking bool) {
	decision := classifier.Decide(text, speaking)

	verdict := "IGNORE"
	if decision.Interrupt {
		verdict = "INTERRUPT"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%-9s  %-12s  %q\n", verdict, decision.Reason, text)
}

func setupLogger() *slog.Logger {
	opts := &slog.HandlerOptions{}

	switch os.Getenv("BACKCHANNEL_LOG_LEVEL") {
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	var handler slog.Handler
	if os.Getenv("BACKCHANNEL_LOG_FORMAT") == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func init() {
	classifyCmd.Flags().Bool("speaking", false, "Treat the agent as currently speaking")
	classifyCmd.Flags().StringSlice("ignore", nil, "Override the backchannel word set")
	classifyCmd.Flags().StringSlice("command", nil, "Override the command keyword set")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(wordsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
