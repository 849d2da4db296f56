// Package cmd is the webflux CLI's command tree, kept as its own
// internal package (rather than living directly under cmd/webflux) so it
// stays unit-testable without exec'ing the built binary — the same split
// the teacher repo used for its docs-crawler root command.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/iyulab/webflux/config"
	"github.com/iyulab/webflux/content"
	"github.com/iyulab/webflux/internal/build"
	"github.com/iyulab/webflux/orchestrator"
)

var (
	cfgFile       string
	seedURLs      []string
	maxDepth      int
	maxURLs       int
	globalWorkers int
	perHostConc   int
	userAgent     string
	fetchTimeout  time.Duration
	crawlDelay    time.Duration
	sameOrigin    bool
	allowPatterns []string
	denyPatterns  []string
	reconVariant  string
	chunkStrategy string
	outputFormat  string
)

func parseSeedURLs(raw []string) ([]url.URL, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("at least one --seed-url is required")
	}
	urls := make([]url.URL, 0, len(raw))
	for _, s := range raw {
		u, err := url.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("parsing seed URL %q: %w", s, err)
		}
		urls = append(urls, *u)
	}
	return urls, nil
}

var rootCmd = &cobra.Command{
	Use:     "webflux",
	Version: build.FullVersion(),
	Short:   "A web-content pipeline for RAG: crawl, extract, reconstruct, chunk.",
	Long: `webflux crawls a set of seed URLs, extracts each page's main content
and metadata, optionally reconstructs it through an LLM-backed rewrite
strategy, and splits the result into retrieval-sized chunks suitable for
embedding in a RAG index.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		urls, err := parseSeedURLs(seedURLs)
		if err != nil {
			return err
		}

		crawlCfg, err := buildCrawlConfig()
		if err != nil {
			return err
		}

		reconOpts := config.DefaultReconstructOptions()
		if reconVariant != "" {
			reconOpts.Strategy = reconVariant
		}

		chunkOpts := config.DefaultChunkingOptions()
		if chunkStrategy != "" {
			chunkOpts.Strategy = chunkStrategy
		}

		o := orchestrator.New(crawlCfg, reconOpts, chunkOpts, orchestrator.Deps{}, len(urls))

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		chunks, runErr := o.Run(ctx, urls)
		if runErr != nil {
			fmt.Fprintf(os.Stderr, "crawl job %s ended with an error: %v\n", o.JobID(), runErr)
		}

		return emitChunks(cmd, chunks)
	},
}

func buildCrawlConfig() (config.CrawlConfiguration, error) {
	if cfgFile != "" {
		return config.LoadCrawlConfigurationFile(cfgFile)
	}

	b := config.DefaultCrawlConfiguration()
	if maxDepth > 0 {
		b = b.WithMaxDepth(maxDepth)
	}
	if maxURLs > 0 {
		b = b.WithMaxURLs(maxURLs)
	}
	if globalWorkers > 0 {
		b = b.WithGlobalWorkers(globalWorkers)
	}
	if perHostConc > 0 {
		b = b.WithPerHostConcurrency(perHostConc)
	}
	if userAgent != "" {
		b = b.WithUserAgent(userAgent)
	}
	if fetchTimeout > 0 {
		b = b.WithFetchTimeout(fetchTimeout)
	}
	if crawlDelay > 0 {
		b = b.WithCrawlDelay(crawlDelay)
	}
	b = b.WithSameOrigin(sameOrigin)
	if len(allowPatterns) > 0 {
		b = b.WithAllowPatterns(allowPatterns)
	}
	if len(denyPatterns) > 0 {
		b = b.WithDenyPatterns(denyPatterns)
	}
	return b.Build()
}

// emitChunks writes the crawl's output chunks to cmd's stdout, one JSON
// object per line (the default) or as a single JSON array.
func emitChunks(cmd *cobra.Command, chunks []content.Chunk) error {
	out := cmd.OutOrStdout()
	if outputFormat == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(chunks)
	}
	enc := json.NewEncoder(out)
	for _, c := range chunks {
		if err := enc.Encode(c); err != nil {
			return err
		}
	}
	return nil
}

// Execute runs the root command; main.main is just a one-line shim over
// this, matching the teacher's cmd/internal-cli split.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVar(&cfgFile, "config-file", "", "JSON crawl configuration file (overrides all other flags)")
	rootCmd.Flags().StringArrayVar(&seedURLs, "seed-url", nil, "one or more starting URLs (repeatable)")
	rootCmd.Flags().IntVar(&maxDepth, "max-depth", 0, "maximum link depth from a seed URL")
	rootCmd.Flags().IntVar(&maxURLs, "max-urls", 0, "maximum number of URLs to admit into the frontier")
	rootCmd.Flags().IntVar(&globalWorkers, "workers", 0, "number of concurrent crawl workers")
	rootCmd.Flags().IntVar(&perHostConc, "per-host-concurrency", 0, "maximum concurrent fetches per host")
	rootCmd.Flags().StringVar(&userAgent, "user-agent", "", "User-Agent header sent with every fetch")
	rootCmd.Flags().DurationVar(&fetchTimeout, "fetch-timeout", 0, "per-attempt fetch timeout")
	rootCmd.Flags().DurationVar(&crawlDelay, "crawl-delay", 0, "minimum delay between requests to the same host")
	rootCmd.Flags().BoolVar(&sameOrigin, "same-origin", true, "restrict the crawl to the seed URLs' host(s)")
	rootCmd.Flags().StringArrayVar(&allowPatterns, "allow", nil, "glob path pattern to allow (repeatable)")
	rootCmd.Flags().StringArrayVar(&denyPatterns, "deny", nil, "glob path pattern to deny (repeatable)")
	rootCmd.Flags().StringVar(&reconVariant, "reconstruct", "", "reconstruct variant: None, Summarize, Expand, Rewrite, Enrich, or Auto")
	rootCmd.Flags().StringVar(&chunkStrategy, "chunk-strategy", "", "chunking strategy name, or empty to let the selector choose")
	rootCmd.Flags().StringVar(&outputFormat, "format", "jsonl", "output format for emitted chunks: jsonl or json")
}

// ResetFlags restores flag variables to their zero values; used by tests
// that invoke the command tree more than once in a process.
func ResetFlags() {
	cfgFile = ""
	seedURLs = nil
	maxDepth, maxURLs, globalWorkers, perHostConc = 0, 0, 0, 0
	userAgent = ""
	fetchTimeout, crawlDelay = 0, 0
	sameOrigin = true
	allowPatterns, denyPatterns = nil, nil
	reconVariant, chunkStrategy = "", ""
	outputFormat = "jsonl"
}

// ParseSeedURLsForTest exposes parseSeedURLs to the package's test suite.
func ParseSeedURLsForTest(raw []string) ([]url.URL, error) { return parseSeedURLs(raw) }

// BuildCrawlConfigForTest exposes buildCrawlConfig to the package's test
// suite.
func BuildCrawlConfigForTest() (config.CrawlConfiguration, error) { return buildCrawlConfig() }

func SetMaxDepthForTest(d int)            { maxDepth = d }
func SetGlobalWorkersForTest(n int)        { globalWorkers = n }
func SetConfigFileForTest(path string)     { cfgFile = path }
func SetUserAgentForTest(agent string)     { userAgent = agent }
func SetChunkStrategyForTest(name string)  { chunkStrategy = name }
func SetReconstructVariantForTest(v string) { reconVariant = v }
