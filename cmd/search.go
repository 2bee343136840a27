package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/presta-matcher/internal/analyzer"
	"github.com/spigell/presta-matcher/internal/directory"
	"github.com/spigell/presta-matcher/internal/logger"
	"github.com/spigell/presta-matcher/internal/search"
)

const (
	PromptShowDetails         = "Show provider details"
	PromptReport              = "Report matches"
	PromptMatchesToFile       = "Dump matches to file"
	PromptAppendToExcludeFile = "Append all providers to exclude file"
	PromptExit                = "Exit"
	PromptBack                = "back"
)

var errExit = errors.New("exit requested")

var searchCmd = &cobra.Command{
	Use:   "search <query...>",
	Short: "Rank providers for a free-text request",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runSearch(cmd, strings.Join(args, " "))
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().Float64("min-price", 0, "minimum hourly rate, unset when 0")
	searchCmd.Flags().Float64("max-price", 0, "maximum hourly rate, unset when 0")
	searchCmd.Flags().Bool("ai", false, "refine the top candidates with the configured scoring oracle")
	searchCmd.Flags().BoolP("auto-approve", "y", false, "print the ranking and exit without prompting")
	searchCmd.Flags().StringP("exclude-file", "e", "", "special file with providers to exclude. Default is unset.")

	viper.BindPFlag("exclude-file", searchCmd.Flags().Lookup("exclude-file"))
}

func runSearch(cmd *cobra.Command, query string) {
	ctx := context.Background()

	logger, err := logger.New(logger.FromFlags(viper.GetBool("json"), viper.GetBool("debug")))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync() //nolint:errcheck

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the presta-matcher", zap.String("version", fullVersion()))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	eng, err := newEngine(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the matching engine", zap.Error(err))
	}
	defer eng.Close()

	useAI, _ := cmd.Flags().GetBool("ai")
	if useAI && !eng.enhanced {
		logger.Warn("relevance enhancement requested but no oracle is available",
			zap.String("hint", "set ai.enabled and the oracle api key in the configuration file"),
		)
	}

	resp := eng.service.Search(ctx, search.Request{
		Query:          query,
		Filters:        priceFilters(cmd),
		UseEnhancement: useAI,
	})

	logger.Info(search.Describe(resp))
	if !resp.Success {
		logger.Fatal("search failed", zap.String("request_id", resp.RequestID))
	}

	if resp.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no providers matched"))
		return
	}

	printRanking(logger, resp)

	if autoApprove, _ := cmd.Flags().GetBool("auto-approve"); autoApprove {
		return
	}

	for {
		items := []string{PromptShowDetails, PromptReport, PromptMatchesToFile}
		if viper.GetString("exclude-file") != "" {
			items = append(items, PromptAppendToExcludeFile)
		}
		items = append(items, PromptExit)

		prompt := promptui.Select{
			Label: "What next?",
			Items: items,
		}

		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, logger, resp); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}

		if resp.Len() == 0 {
			logger.Info("exiting", zap.String("reason", "no providers left"))
			return
		}
	}
}

func handleAction(action string, logger *zap.Logger, resp *search.Response) error {
	switch action {
	case PromptShowDetails:
		return showDetails(logger, resp)
	case PromptReport:
		pretty, _ := json.MarshalIndent(resp.Report(), "", "  ")
		logger.Info(string(pretty), zap.Int("providers count", resp.Len()))
		return nil
	case PromptMatchesToFile:
		filename, err := resp.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptAppendToExcludeFile:
		return appendToExcludeFile(logger, resp)
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func showDetails(logger *zap.Logger, resp *search.Response) error {
	for {
		items := make([]string, 0, resp.Len()+1)
		for _, r := range resp.Results {
			items = append(items, fmt.Sprintf("%d %s / %d / %s",
				r.Provider.ID, r.Provider.DisplayName(), r.FinalScore, r.MatchReason,
			))
		}

		providerPrompt := promptui.Select{
			Label: "Choose a provider and press ENTER",
			Items: append(items, PromptBack),
		}

		_, selected, err := providerPrompt.Run()
		if err != nil {
			return err
		}
		if selected == PromptBack {
			return nil
		}

		id, err := strconv.ParseInt(strings.Split(selected, " ")[0], 10, 64)
		if err != nil {
			return fmt.Errorf("parse provider id from %q: %w", selected, err)
		}

		result := resp.FindByID(id)
		if result == nil {
			return fmt.Errorf("there is no such provider id %d", id)
		}

		pretty, _ := json.MarshalIndent(result, "", "  ")
		logger.Info(string(pretty), zap.Int64("provider_id", id))
	}
}

func appendToExcludeFile(logger *zap.Logger, resp *search.Response) error {
	excludeFile := viper.GetString("exclude-file")

	excluded, err := directory.GetExcludedProvidersFromFile(excludeFile)
	if err != nil {
		return err
	}

	excluded.Append(resp.ToExcluded(""))

	if err := excluded.ToFile(excludeFile); err != nil {
		return err
	}

	logger.Info("appended to exclude file", zap.String("filename", excludeFile))

	resp.Exclude(excluded.IDs())
	return nil
}

func printRanking(logger *zap.Logger, resp *search.Response) {
	for i, r := range resp.Results {
		fields := []zap.Field{
			zap.Int64("provider_id", r.Provider.ID),
			zap.String("name", r.Provider.DisplayName()),
			zap.Int("final_score", r.FinalScore),
			zap.Int("algorithm_score", r.AlgorithmScore),
			zap.String("reason", r.MatchReason),
		}
		if r.AI != nil {
			fields = append(fields,
				zap.Int("ai_score", r.AI.Score),
				zap.String("ai_status", string(r.AI.Status)),
				zap.String("ai_explanation", r.AI.Explanation),
			)
		}
		logger.Info(fmt.Sprintf("#%d", i+1), fields...)
	}
}

func priceFilters(cmd *cobra.Command) *analyzer.SearchFilters {
	var filters analyzer.SearchFilters
	if v, _ := cmd.Flags().GetFloat64("min-price"); v > 0 {
		filters.MinPrice = &v
	}
	if v, _ := cmd.Flags().GetFloat64("max-price"); v > 0 {
		filters.MaxPrice = &v
	}
	if filters.IsZero() {
		return nil
	}
	return &filters
}
