package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"omni-backend/internal/bootstrap"
	"omni-backend/internal/config"
	"omni-backend/pkg/rag"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	targetCollection string
	chunkSize        int
	chunkOverlap     int
	followUpQuery    string
)

var rootCmd = &cobra.Command{
	Use:           "ingest",
	Short:         "Load documents into the OmniAI knowledge base",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var loadCmd = &cobra.Command{
	Use:   "load <documents.json>",
	Short: "Embed and upsert a JSON array of {id, text, metadata} documents",
	Long: `Embed and upsert documents into the general or personal collection.

Examples:
  ingest load docs.json
  ingest load notes.json --collection personal --chunk 800
  ingest load docs.json --query "What is OmniAI?"`,
	Args: cobra.ExactArgs(1),
	RunE: runLoad,
}

var queryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Run a retrieval query and print the summary and sources",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRetrieval(func(ctx context.Context, r *bootstrap.Retrieval) error {
			return printQuery(ctx, r, strings.Join(args, " "))
		})
	},
}

func init() {
	rootCmd.AddCommand(loadCmd, queryCmd)

	loadCmd.Flags().StringVar(&targetCollection, "collection", "general", "Target collection: general, personal")
	loadCmd.Flags().IntVar(&chunkSize, "chunk", 0, "Split documents into chunks of this many characters (0 keeps them whole)")
	loadCmd.Flags().IntVar(&chunkOverlap, "overlap", 50, "Characters repeated between consecutive chunks")
	loadCmd.Flags().StringVar(&followUpQuery, "query", "", "Run a retrieval query after loading")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
}

func withRetrieval(fn func(ctx context.Context, r *bootstrap.Retrieval) error) error {
	cfg := config.Load()
	sysLogger := bootstrap.NewLogger(cfg)
	defer sysLogger.Sync()

	retrieval := bootstrap.NewRetrieval(cfg, sysLogger)
	defer retrieval.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	color.Cyan("Ensuring collections exist")
	if err := retrieval.Pipeline.EnsureCollections(ctx); err != nil {
		return err
	}
	return fn(ctx, retrieval)
}

func runLoad(cmd *cobra.Command, args []string) error {
	switch targetCollection {
	case "general", "personal":
	default:
		return fmt.Errorf("unsupported collection: %s (use 'general' or 'personal')", targetCollection)
	}

	docs, err := readDocuments(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	docs = rag.ChunkDocuments(docs, chunkSize, chunkOverlap)

	return withRetrieval(func(ctx context.Context, r *bootstrap.Retrieval) error {
		collection := r.Pipeline.Config().GeneralCollection
		if targetCollection == "personal" {
			collection = r.Pipeline.Config().PersonalCollection
		}

		color.Yellow("Upserting %d documents into %s", len(docs), collection)
		n, err := r.Ingestor.Upsert(ctx, collection, docs)
		if err != nil {
			return err
		}
		color.Green("Upserted %d docs.", n)

		if followUpQuery == "" {
			return nil
		}
		return printQuery(ctx, r, followUpQuery)
	})
}

func printQuery(ctx context.Context, r *bootstrap.Retrieval, query string) error {
	result, err := r.Pipeline.Run(ctx, query, rag.RunOptions{})
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	color.Cyan("\n=== RESEARCH SUMMARY ===")
	fmt.Println(result.Summary)
	color.Cyan("\n=== SOURCES ===")
	for _, src := range result.Sources {
		fmt.Printf("[%s] %s score=%.4f %s\n", src.Collection, src.ID, src.Score, src.TextPreview)
	}
	return nil
}

// fileDocument accepts numeric or string ids.
type fileDocument struct {
	ID       json.RawMessage `json:"id"`
	Text     string          `json:"text"`
	Metadata map[string]any  `json:"metadata"`
}

func readDocuments(path string) ([]rag.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var entries []fileDocument
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}

	docs := make([]rag.Document, 0, len(entries))
	for i, e := range entries {
		id := strings.Trim(strings.TrimSpace(string(e.ID)), `"`)
		if id == "" || id == "null" {
			return nil, fmt.Errorf("document %d has no id", i)
		}
		docs = append(docs, rag.Document{ID: id, Text: e.Text, Metadata: e.Metadata})
	}
	return docs, nil
}
