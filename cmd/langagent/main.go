// Command langagent runs a multi-stage market analysis for a company using
// an LLM-driven agent workflow.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/kataras/golog"

	"langagent/agents"
	"langagent/config"
	"langagent/graph"
	"langagent/llm"
	"langagent/log"
	"langagent/report"
	"langagent/store"
	"langagent/webdata"
)

func main() {
	var (
		company   = flag.String("company", "", "company to analyze (prompted for when empty)")
		modelName = flag.String("model", "", "OpenAI model to use (probes candidates when empty)")
		format    = flag.String("format", "", "output format: json, markdown or html")
		listRuns  = flag.Bool("list", false, "list recent analysis runs and exit")
		verbose   = flag.Bool("verbose", false, "enable debug logging")
	)
	flag.Parse()

	if err := run(*company, *modelName, *format, *listRuns, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "langagent: %v\n", err)
		os.Exit(1)
	}
}

func run(company, modelName, format string, listRuns, verbose bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	gl := log.NewGologLogger(golog.New())
	gl.SetLevel(log.ParseLevel(level))
	log.SetDefaultLogger(gl)

	if listRuns {
		return printRecentRuns(cfg)
	}

	if company == "" {
		company, err = promptCompany()
		if err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Analysis.Timeout)
	defer cancel()

	model, err := selectModel(ctx, cfg, modelName)
	if err != nil {
		return err
	}
	log.Info("using model %s", model.Name())

	collector := buildCollector(cfg)

	checkpoints, closeStore, err := buildCheckpointStore(ctx, cfg)
	if err != nil {
		return err
	}
	if closeStore != nil {
		defer closeStore()
	}

	opts := []agents.AnalyzerOption{
		agents.WithCollector(collector),
		agents.WithMaxCompetitors(cfg.Analysis.MaxCompetitors),
		agents.WithRetryPolicy(&graph.RetryPolicy{
			MaxRetries:      2,
			BackoffStrategy: graph.ExponentialBackoff,
		}),
	}
	if checkpoints != nil {
		opts = append(opts, agents.WithCheckpointStore(checkpoints))
	}

	analyzer, err := agents.NewAnalyzer(model, opts...)
	if err != nil {
		return err
	}

	log.Info("analyzing %s", company)
	state, err := analyzer.Analyze(ctx, company)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	report.RenderConsole(os.Stdout, state)

	if cfg.Output.SaveResults {
		if err := saveResults(ctx, cfg, state, format); err != nil {
			// The analysis itself succeeded, so only warn.
			log.Warn("failed to save results: %v", err)
		}
	}
	return nil
}

func promptCompany() (string, error) {
	fmt.Print("Enter the company name to analyze: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read company name: %w", err)
	}
	company := strings.TrimSpace(line)
	if company == "" {
		return "", fmt.Errorf("company name is required")
	}
	return company, nil
}

func selectModel(ctx context.Context, cfg *config.Config, override string) (llm.Model, error) {
	factory := func(name string) (llm.Model, error) {
		return llm.NewOpenAIModel(cfg.OpenAI.APIKey, name, cfg.OpenAI.BaseURL)
	}

	if override != "" {
		return factory(override)
	}

	candidates := cfg.ModelCandidates()
	if len(candidates) == 0 && cfg.OpenAI.Model != "" {
		// Try the configured model first, then the built-in fallbacks.
		candidates = append([]string{cfg.OpenAI.Model}, llm.DefaultCandidates...)
	}
	return llm.SelectModel(ctx, factory, candidates)
}

func buildCollector(cfg *config.Config) *webdata.Collector {
	var opts []webdata.CollectorOption

	if cfg.Search.APIKey != "" {
		search, err := webdata.NewTavilySearch(cfg.Search.APIKey, "")
		if err != nil {
			log.Warn("news search disabled: %v", err)
		} else {
			opts = append(opts, webdata.WithSearch(search))
		}
	} else {
		log.Info("SERP_API_KEY not set, skipping news collection")
	}

	if cfg.Cache.RedisAddr != "" {
		cache := webdata.NewRedisSnapshotCache(webdata.RedisCacheOptions{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			TTL:      cfg.Cache.TTL,
		})
		opts = append(opts, webdata.WithCache(cache))
	}

	return webdata.NewCollector(opts...)
}

func buildCheckpointStore(ctx context.Context, cfg *config.Config) (store.CheckpointStore, func(), error) {
	switch cfg.Storage.CheckpointBackend {
	case "", "none":
		return nil, nil, nil
	case "memory":
		return store.NewMemoryCheckpointStore(), nil, nil
	case "sqlite":
		s, err := store.NewSqliteCheckpointStore(store.SqliteOptions{Path: cfg.Storage.SqlitePath})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite checkpoint store: %w", err)
		}
		return s, func() { _ = s.Close() }, nil
	case "postgres":
		s, err := store.NewPostgresCheckpointStore(ctx, store.PostgresOptions{ConnString: cfg.Storage.PostgresDSN})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open postgres checkpoint store: %w", err)
		}
		if err := s.InitSchema(ctx); err != nil {
			s.Close()
			return nil, nil, err
		}
		return s, s.Close, nil
	case "redis":
		s := store.NewRedisCheckpointStore(store.RedisOptions{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
		})
		return s, func() { _ = s.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown checkpoint backend %q", cfg.Storage.CheckpointBackend)
	}
}

func saveResults(ctx context.Context, cfg *config.Config, state *agents.State, formatOverride string) error {
	name := cfg.Output.Format
	if formatOverride != "" {
		name = formatOverride
	}

	path, err := report.Write(cfg.Output.Dir, state, report.ParseFormat(name))
	if err != nil {
		return err
	}
	log.Info("results saved to %s", path)

	stateJSON, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	runs, err := store.NewRunStore(cfg.Storage.RunArchivePath)
	if err != nil {
		return fmt.Errorf("failed to open run archive: %w", err)
	}
	defer runs.Close()

	return runs.Save(ctx, &store.Run{
		ID:         uuid.NewString(),
		Company:    state.TargetCompany,
		Industry:   state.Industry,
		Model:      state.Model,
		Confidence: state.ConfidenceScore,
		Report:     state.FinalReport,
		StateJSON:  string(stateJSON),
		CreatedAt:  report.Timestamp(state),
	})
}

func printRecentRuns(cfg *config.Config) error {
	runs, err := store.NewRunStore(cfg.Storage.RunArchivePath)
	if err != nil {
		return fmt.Errorf("failed to open run archive: %w", err)
	}
	defer runs.Close()

	recent, err := runs.ListRecent(context.Background(), 10)
	if err != nil {
		return err
	}
	if len(recent) == 0 {
		fmt.Println("No analysis runs recorded yet.")
		return nil
	}

	for _, r := range recent {
		fmt.Printf("%s  %-20s  %-25s  %s  confidence %.1f/10\n",
			r.CreatedAt.Format("2006-01-02 15:04"), r.Company, r.Industry, r.Model, r.Confidence)
	}
	return nil
}
