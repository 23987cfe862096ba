package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"vbridge/internal/assist"
	"vbridge/internal/config"
	"vbridge/internal/crawler"
	"vbridge/internal/lang"
	"vbridge/internal/report"
	"vbridge/internal/semantic"
	"vbridge/internal/server"
	"vbridge/internal/storage"
	"vbridge/internal/transpile"
)

var (
	rootCmd = &cobra.Command{
		Use:   "vbridge",
		Short: "Rule-based VB6 / VB.NET / C# transpiler",
	}
	cfgPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(transpileCmd)
	rootCmd.AddCommand(convertDirCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(aiTestCmd)
	rootCmd.AddCommand(historyCmd)
}

func loadConfig() (*config.Config, error) {
	return config.LoadConfig(cfgPath)
}

func assistOptions(cfg *config.Config) assist.Options {
	return assist.Options{
		Provider:  cfg.AI.Provider,
		ServerURL: cfg.AI.ServerURL,
		APIKey:    cfg.AI.APIKey,
		Model:     cfg.AI.Model,
		Timeout:   time.Duration(cfg.AI.TimeoutSeconds) * time.Second,
	}
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		var store *storage.Store
		if cfg.History.Path != "" {
			store, err = storage.Open(cfg.History.Path)
			if err != nil {
				return fmt.Errorf("failed to open history store: %w", err)
			}
			defer store.Close()
		}

		srv := server.New(transpile.NewService(), store, cfg.Server.CORSOrigins)
		return srv.ListenAndServe(cfg.Server.Addr)
	},
}

var (
	fromLang string
	toLang   string
	useAI    bool
	outPath  string
)

var transpileCmd = &cobra.Command{
	Use:   "transpile FILE",
	Short: "Convert a single source file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		code, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		svc := transpile.NewService()
		res := svc.Transpile(cmd.Context(), transpile.Request{
			Code:       string(code),
			SourceLang: fromLang,
			TargetLang: toLang,
			UseAI:      useAI,
			AI:         assistOptions(cfg),
		})

		for _, w := range res.Warnings {
			fmt.Fprintf(os.Stderr, "warning: %s\n", w)
		}
		for _, e := range res.Errors {
			fmt.Fprintf(os.Stderr, "error: %s\n", e)
		}

		if outPath != "" {
			if err := os.WriteFile(outPath, []byte(res.Code), 0o644); err != nil {
				return err
			}
			fmt.Printf("wrote %s (%s)\n", outPath, res.Method)
		} else {
			fmt.Println(res.Code)
		}

		if len(res.Errors) > 0 {
			return fmt.Errorf("transpilation finished with %d error(s)", len(res.Errors))
		}
		return nil
	},
}

var (
	convertOut    string
	convertReport string
)

var convertDirCmd = &cobra.Command{
	Use:   "convert-dir DIR",
	Short: "Convert every source file under a directory and write a migration report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		src, err := lang.Normalize(fromLang)
		if err != nil {
			return err
		}
		dst, err := lang.Normalize(toLang)
		if err != nil {
			return err
		}

		svc := transpile.NewService()
		opts := assistOptions(cfg)
		var files []report.FileReport

		cr := crawler.New(src)
		err = cr.Scan(args[0], func(path, code string) {
			res := svc.Transpile(cmd.Context(), transpile.Request{
				Code:       code,
				SourceLang: string(src),
				TargetLang: string(dst),
				UseAI:      useAI,
				AI:         opts,
			})
			files = append(files, report.FileReport{
				Path:    path,
				Summary: semantic.Extract(code, src),
				Result:  res,
			})

			if convertOut != "" && len(res.Errors) == 0 {
				rel, relErr := filepath.Rel(args[0], path)
				if relErr != nil {
					rel = filepath.Base(path)
				}
				target := filepath.Join(convertOut, replaceExt(rel, dst))
				if mkErr := os.MkdirAll(filepath.Dir(target), 0o755); mkErr == nil {
					_ = os.WriteFile(target, []byte(res.Code), 0o644)
				}
			}
		})
		if err != nil {
			return err
		}

		if err := report.WriteMigration(convertReport, src, dst, files); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Printf("converted %d file(s), report at %s\n", len(files), convertReport)
		return nil
	},
}

var validateLang string

var validateCmd = &cobra.Command{
	Use:   "validate FILE",
	Short: "Check block balance without converting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		code, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		issues, err := transpile.NewService().Validate(string(code), validateLang)
		if err != nil {
			return err
		}
		if len(issues) == 0 {
			fmt.Println("ok")
			return nil
		}
		for _, i := range issues {
			fmt.Printf("line %d: %s\n", i.Line, i.Message)
		}
		return fmt.Errorf("%d issue(s) found", len(issues))
	},
}

var aiTestCmd = &cobra.Command{
	Use:   "ai-test",
	Short: "Probe the configured AI rewrite server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ok, msg := transpile.NewService().TestAIConnection(cmd.Context(), assistOptions(cfg))
		fmt.Println(msg)
		if !ok {
			return fmt.Errorf("connection test failed")
		}
		return nil
	},
}

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent transpile runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.History.Path == "" {
			return fmt.Errorf("no history path configured")
		}

		store, err := storage.Open(cfg.History.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.RecentRuns(context.Background(), historyLimit)
		if err != nil {
			return err
		}
		for _, r := range runs {
			fmt.Printf("%s  %s -> %s  %s  %d warning(s) %d error(s)\n",
				r.CreatedAt.Format(time.RFC3339), r.SourceLang, r.TargetLang, r.Method,
				len(r.Warnings), len(r.Errors))
		}
		return nil
	},
}

func replaceExt(path string, target lang.Language) string {
	ext := ".txt"
	switch target {
	case lang.VBNet:
		ext = ".vb"
	case lang.CSharp:
		ext = ".cs"
	case lang.VB6:
		ext = ".bas"
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

func init() {
	transpileCmd.Flags().StringVar(&fromLang, "from", "", "Source language (vb6, vbnet, csharp)")
	transpileCmd.Flags().StringVar(&toLang, "to", "", "Target language (vb6, vbnet, csharp)")
	transpileCmd.Flags().BoolVar(&useAI, "ai", false, "Try the AI-assisted path first")
	transpileCmd.Flags().StringVarP(&outPath, "out", "o", "", "Write output to a file instead of stdout")
	_ = transpileCmd.MarkFlagRequired("from")
	_ = transpileCmd.MarkFlagRequired("to")

	convertDirCmd.Flags().StringVar(&fromLang, "from", "", "Source language")
	convertDirCmd.Flags().StringVar(&toLang, "to", "", "Target language")
	convertDirCmd.Flags().BoolVar(&useAI, "ai", false, "Try the AI-assisted path first")
	convertDirCmd.Flags().StringVar(&convertOut, "out", "", "Directory for converted files")
	convertDirCmd.Flags().StringVar(&convertReport, "report", "migration-report.md", "Path of the Markdown report")
	_ = convertDirCmd.MarkFlagRequired("from")
	_ = convertDirCmd.MarkFlagRequired("to")

	validateCmd.Flags().StringVar(&validateLang, "lang", "", "Language of the file")
	_ = validateCmd.MarkFlagRequired("lang")

	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of runs to show")
}
