package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	logpkg "github.com/kailas-cloud/storesearch/internal/logger"
	"github.com/kailas-cloud/storesearch/internal/usecase/query"
	"github.com/kailas-cloud/storesearch/internal/usecase/spell"
	"github.com/kailas-cloud/storesearch/internal/usecase/synonym"
	"github.com/kailas-cloud/storesearch/internal/version"
	"github.com/kailas-cloud/storesearch/internal/vocabulary"
)

var (
	vocabPaths vocabulary.Paths
	jsonOutput bool
	verbose    bool

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:           "searchctl",
	Short:         "storesearch query tools",
	Long:          "Inspect query processing, navigation search and table filtering without a running server.",
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		logger = logpkg.NewCLI(cmd.ErrOrStderr(), verbose)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&vocabPaths.Dictionary, "dictionary", "", "Dictionary YAML (default: embedded)")
	f.StringVar(&vocabPaths.Synonyms, "synonyms", "", "Synonyms YAML (default: embedded)")
	f.StringVar(&vocabPaths.Nav, "nav", "", "Navigation tree YAML (default: embedded)")
	f.StringVar(&vocabPaths.Access, "access", "", "Access rules YAML (default: embedded)")
	f.BoolVar(&jsonOutput, "json", false, "Output as JSON")
	f.BoolVarP(&verbose, "verbose", "v", false, "Log vocabulary and index details to stderr")

	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(navCmd)
	rootCmd.AddCommand(filterCmd)
	rootCmd.AddCommand(rolesCmd)
	rootCmd.AddCommand(paletteCmd)
}

// loadPipeline loads the vocabulary and builds a query processor over it.
func loadPipeline() (*vocabulary.Bundle, *query.Processor, error) {
	vocab, err := vocabulary.Load(vocabPaths)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("vocabulary loaded",
		zap.Int("dictionary_words", vocab.Dictionary.Len()),
		zap.Int("synonym_keys", vocab.Synonyms.Len()),
		zap.Strings("roles", vocab.Access.RoleNames()),
	)
	return vocab, query.New(spell.New(vocab.Dictionary), synonym.New(vocab.Synonyms)), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
