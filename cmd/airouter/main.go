package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/draftforge/airouter/pkg/config"
	"github.com/draftforge/airouter/pkg/learning"
	"github.com/draftforge/airouter/pkg/ledger"
	"github.com/draftforge/airouter/pkg/provider"
	"github.com/draftforge/airouter/pkg/router"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configFile string
	debugFlag  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "airouter",
		Short: "Routes text-generation requests across interchangeable AI providers",
		Long: `airouter routes prompts to the most appropriate AI provider based on
	task type, tracks spend against a monthly budget, and fails over to
	other providers when a backend misbehaves.`,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to routing config file")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")

	rootCmd.AddCommand(askCmd())
	rootCmd.AddCommand(routesCmd())
	rootCmd.AddCommand(providersCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func askCmd() *cobra.Command {
	var taskFlag string
	var providerFlag string
	var modelFlag string
	var smartFlag bool
	var stepFlag string
	var enhanceFlag bool

	cmd := &cobra.Command{
		Use:   "ask [prompt]",
		Short: "Send a prompt to the appropriate AI provider",
		Long: `Routes the prompt to the best provider based on task type, or use
	--provider to override. Without --task the task type is inferred from
	the prompt.

	Use --smart for context-aware routing with learned provider
	preferences, and --step to tag the request with a workflow step.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := args[0]

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			providers, err := buildProviders(cfg)
			if err != nil {
				return fmt.Errorf("failed to create providers: %w", err)
			}
			if len(providers) == 0 {
				return fmt.Errorf("no provider API keys configured")
			}

			logger := newLogger()
			opts := provider.Options{Model: modelFlag}

			if providerFlag != "" {
				return askDirect(providers, providerFlag, prompt, opts)
			}
			if smartFlag {
				return askSmart(cfg, providers, logger, prompt, stepFlag, enhanceFlag, opts)
			}
			return askStatic(cfg, providers, logger, prompt, taskFlag, opts)
		},
	}

	cmd.Flags().StringVar(&taskFlag, "task", "", "task type (research, writing, analysis, outline, review)")
	cmd.Flags().StringVar(&providerFlag, "provider", "", "override provider (anthropic, openai, google, deepseek)")
	cmd.Flags().StringVar(&modelFlag, "model", "", "override model")
	cmd.Flags().BoolVar(&smartFlag, "smart", false, "use context-aware routing")
	cmd.Flags().StringVar(&stepFlag, "step", "", "workflow step tag for context-aware routing")
	cmd.Flags().BoolVar(&enhanceFlag, "enhance", false, "enhance the prompt with recent context")

	return cmd
}

func askDirect(providers []provider.Provider, name, prompt string, opts provider.Options) error {
	for _, p := range providers {
		if p.Name() != name {
			continue
		}
		res, err := p.Generate(context.Background(), provider.Request{Prompt: prompt, Opts: opts})
		if err != nil {
			return err
		}
		printResult(res)
		return nil
	}
	return fmt.Errorf("provider %q not available", name)
}

func askStatic(cfg *config.Config, providers []provider.Provider, logger *zap.Logger, prompt, taskFlag string, opts provider.Options) error {
	task := provider.TaskType(taskFlag)
	if task == "" {
		task = router.InferTask(prompt)
		fmt.Fprintf(os.Stderr, "Inferred task type: %s\n", task)
	}

	r := router.New(providers, router.Config{
		MonthlyBudget:    cfg.Routing.MonthlyBudget,
		FallbackEnabled:  *cfg.Routing.FallbackEnabled,
		CostOptimization: cfg.Routing.CostOptimization,
		Preferences:      taskPreferences(cfg.Routing.Preferences),
	}, router.WithLogger(logger))

	res, err := r.GenerateWithFailover(context.Background(), prompt, task, opts)
	if err != nil {
		return err
	}
	printResult(res)
	printBudget(r.BudgetStatus())
	return nil
}

func askSmart(cfg *config.Config, providers []provider.Provider, logger *zap.Logger, prompt, step string, enhance bool, opts provider.Options) error {
	r := learning.New(providers, learning.Config{
		ContextWindow:   cfg.Routing.Learning.ContextWindow,
		LearningEnabled: *cfg.Routing.Learning.Enabled,
		CacheTTL:        time.Duration(cfg.Routing.Learning.CacheTTLSeconds) * time.Second,
	}, learning.WithLogger(logger))

	res, err := r.Route(context.Background(), learning.Request{
		Prompt: prompt,
		Type:   learning.TypeGeneral,
		Metadata: learning.Metadata{
			WorkflowStep:       step,
			EnhanceWithContext: enhance,
		},
		Opts: opts,
	})
	if err != nil {
		return err
	}
	printResult(res)
	return nil
}

func routesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "Show the task-type preference table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TASK TYPE\tPROVIDER")

			var tasks []string
			for name := range cfg.Routing.Preferences {
				tasks = append(tasks, name)
			}
			sort.Strings(tasks)
			for _, name := range tasks {
				fmt.Fprintf(w, "%s\t%s\n", name, cfg.Routing.Preferences[name])
			}

			fmt.Fprintln(w)
			fmt.Fprintf(w, "Monthly budget\t$%.2f\n", cfg.Routing.MonthlyBudget)
			fmt.Fprintf(w, "Fallback enabled\t%v\n", *cfg.Routing.FallbackEnabled)
			fmt.Fprintf(w, "Cost optimization\t%v\n", cfg.Routing.CostOptimization)

			return w.Flush()
		},
	}
}

func providersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List providers, their models, and key status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PROVIDER\tMODELS\tSTATUS")

			providers, err := buildProviders(cfg)
			if err != nil {
				return err
			}
			configured := make(map[string]provider.Provider, len(providers))
			for _, p := range providers {
				configured[p.Name()] = p
			}

			for _, name := range []string{"anthropic", "deepseek", "google", "openai"} {
				status := "no key"
				models := "-"
				if p, ok := configured[name]; ok {
					status = "ready"
					if lister, ok := p.(interface{ Models() []string }); ok {
						models = formatList(lister.Models())
					}
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", name, models, status)
			}

			return w.Flush()
		},
	}
}

func loadConfig() (*config.Config, error) {
	if configFile != "" {
		return config.LoadWithRoutingFile(configFile)
	}
	return config.Load()
}

// buildProviders creates an adapter for every configured API key, applying
// pricing overrides from the routing config. Adapters are constructed in
// fallback order, which fixes the order failover walks them in.
func buildProviders(cfg *config.Config) ([]provider.Provider, error) {
	pricingOpts := func(name string) []provider.Option {
		if p, ok := cfg.Routing.Pricing[name]; ok {
			return []provider.Option{provider.WithPricing(p)}
		}
		return nil
	}

	keys := map[string]string{
		"anthropic": cfg.AnthropicAPIKey,
		"openai":    cfg.OpenAIAPIKey,
		"google":    cfg.GoogleAPIKey,
		"deepseek":  cfg.DeepSeekAPIKey,
	}
	constructors := map[string]func(string, ...provider.Option) (provider.Provider, error){
		"anthropic": func(key string, opts ...provider.Option) (provider.Provider, error) {
			return provider.NewAnthropicAdapter(key, opts...)
		},
		"openai": func(key string, opts ...provider.Option) (provider.Provider, error) {
			return provider.NewOpenAIAdapter(key, opts...)
		},
		"google": func(key string, opts ...provider.Option) (provider.Provider, error) {
			return provider.NewGoogleAdapter(key, opts...)
		},
		"deepseek": func(key string, opts ...provider.Option) (provider.Provider, error) {
			return provider.NewDeepSeekAdapter(key, opts...)
		},
	}

	order := cfg.Routing.FallbackOrder
	if len(order) == 0 {
		order = []string{"google", "anthropic", "openai", "deepseek"}
	}

	var providers []provider.Provider
	for _, name := range order {
		ctor, ok := constructors[name]
		if !ok || keys[name] == "" {
			continue
		}
		p, err := ctor(keys[name], pricingOpts(name)...)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	return providers, nil
}

func taskPreferences(prefs map[string]string) map[provider.TaskType]string {
	out := make(map[provider.TaskType]string, len(prefs))
	for task, name := range prefs {
		out[provider.TaskType(task)] = name
	}
	return out
}

func newLogger() *zap.Logger {
	if debugFlag {
		logger, err := zap.NewDevelopment()
		if err == nil {
			return logger
		}
	}
	return zap.NewNop()
}

func printResult(res *provider.Result) {
	fmt.Println(res.Content)
	fmt.Fprintf(os.Stderr, "[%s] %d tokens, $%.4f\n", res.Provider, res.Usage.TotalTokens, res.Cost)
}

func printBudget(status ledger.BudgetStatus) {
	fmt.Fprintf(os.Stderr, "Budget: $%.2f used of $%.2f (%.1f%%)\n",
		status.Used, status.Budget, status.Percentage)
}

func formatList(items []string) string {
	out := ""
	for i, item := range items {
		if i > 0 {
			out += ", "
		}
		out += item
	}
	return out
}
