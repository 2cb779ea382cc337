package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/thisisdope/dlt/internal/load"
	"github.com/thisisdope/dlt/internal/relational"
)

var (
	tableName string
	loadID    string
	selector  string
	workers   int
)

func init() {
	loadCmd.Flags().StringVarP(&tableName, "table", "t", "", "Force the root table name")
	loadCmd.Flags().StringVar(&loadID, "load-id", "", "Load identifier (default: generated)")
	loadCmd.Flags().StringVar(&selector, "select", "", "JSONPath selecting documents from the input")
	loadCmd.Flags().IntVar(&workers, "workers", 4, "Documents normalized in parallel")
	rootCmd.AddCommand(loadCmd)
}

var loadCmd = &cobra.Command{
	Use:   "load [input.json] [output.db]",
	Short: "Normalize a JSON input file into a SQLite database",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]
		output := args[1]

		fallback := tableName
		if fallback == "" {
			fallback = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
		}
		sch, err := loadSchema(fallback)
		if err != nil {
			return err
		}

		content, err := os.ReadFile(input)
		if err != nil {
			return err
		}
		data, err := oj.Parse(content)
		if err != nil {
			return fmt.Errorf("parse json %s: %w", input, err)
		}
		docs, err := selectDocuments(data, selector)
		if err != nil {
			return err
		}

		id := loadID
		if id == "" {
			id = strings.ReplaceAll(uuid.NewString(), "-", "")
		}

		_ = os.Remove(output) // Overwrite
		writer, err := load.NewSQLiteWriter(output)
		if err != nil {
			return err
		}

		// one read-only snapshot per batch
		snapshot := sch.Clone()

		start := time.Now()
		g, _ := errgroup.WithContext(cmd.Context())
		g.SetLimit(workers)
		for _, doc := range docs {
			g.Go(func() error {
				obj, ok := doc.(map[string]any)
				if !ok {
					return fmt.Errorf("document is not an object: %T", doc)
				}
				if tableName != "" {
					obj = relational.WithTableName(obj, tableName)
				}
				return relational.Normalize(snapshot, obj, id, writer.Write)
			})
		}
		if err := g.Wait(); err != nil {
			_ = writer.Close()
			return err
		}
		rows := writer.RowCount()
		if err := writer.Close(); err != nil {
			return err
		}

		fmt.Printf("Loaded %d rows from %d documents into %s in %v.\n", rows, len(docs), output, time.Since(start))
		return nil
	},
}

// selectDocuments picks the documents to normalize out of the parsed
// input: an explicit JSONPath when given, otherwise every element of a
// top-level array, otherwise the input itself.
func selectDocuments(data any, selector string) ([]any, error) {
	if selector != "" {
		x, err := jp.ParseString(selector)
		if err != nil {
			return nil, fmt.Errorf("invalid jsonpath '%s': %w", selector, err)
		}
		return x.Get(data), nil
	}
	if arr, ok := data.([]any); ok {
		return arr, nil
	}
	return []any{data}, nil
}
