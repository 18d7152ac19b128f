// Command classify runs one repair-issue description through the configured
// classifier and prints the stored result. It is a development aid for
// checking prompts and providers without the server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/blocniti/blocniti/internal/classify"
	"github.com/blocniti/blocniti/internal/config"
	"github.com/blocniti/blocniti/internal/logging"
	"github.com/blocniti/blocniti/internal/schema"
	"github.com/blocniti/blocniti/pkg/llm"
)

func main() {
	var (
		configPath string
		provider   string
		model      string
		raw        bool
	)

	cmd := &cobra.Command{
		Use:   "classify [description]",
		Short: "Classify a repair-issue description into an HPD violation class",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if provider != "" {
				cfg.Classifier.Provider = provider
				cfg.Classifier.BaseURL = ""
				cfg.Classifier.Model = ""
			}
			if model != "" {
				cfg.Classifier.Model = model
			}
			cc := cfg.Classifier.WithDefaults()

			logger := logging.NewLogger("debug", os.Stderr)
			llm.SetLogger(logger)

			ctx, cancel := context.WithTimeout(cmd.Context(), cc.Timeout+5*time.Second)
			defer cancel()

			p, err := llm.New(ctx, cc, nil)
			if err != nil {
				return err
			}
			defer p.Close()

			description := strings.Join(args, " ")
			if raw {
				prompt, err := classify.BuildPrompt(description)
				if err != nil {
					return err
				}
				out, err := p.Complete(ctx, prompt)
				if err != nil {
					return err
				}
				fmt.Println(out)
				return nil
			}

			schemas, err := schema.Default()
			if err != nil {
				return err
			}
			result := classify.New(p, schemas, cc.Timeout, logger).Classify(ctx, description)
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "Path to config YAML file")
	cmd.Flags().StringVar(&provider, "provider", "", "Override classifier provider (openrouter, ollama, gemini, rubric)")
	cmd.Flags().StringVar(&model, "model", "", "Override classifier model")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the unparsed model reply")

	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
