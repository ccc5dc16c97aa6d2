package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pavelanni/enade/internal/bank"
	"github.com/pavelanni/enade/internal/export"
	"github.com/pavelanni/enade/internal/handler"
	appI18n "github.com/pavelanni/enade/internal/i18n"
	"github.com/pavelanni/enade/internal/model"
	"github.com/pavelanni/enade/internal/responses"
	"github.com/pavelanni/enade/internal/store"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

const defaultResponsesURL = "http://localhost:8000/api/responses"

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "load .env:", err)
	}
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "enade",
		Short:   "ENADE questionnaire builder",
		Version: version,
	}

	serve := serveCmd()
	root.AddCommand(serve, exportCmd(), responsesCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `enade --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func addCommonFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("responses-url", defaultResponsesURL, "Absolute URL of the responses endpoint")
	f.StringP("lang", "l", "pt", "UI and document language (pt, en)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the questionnaire builder web UI",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("db", "enade.db", "SQLite database path")
	f.StringP("questions", "q", "questions.json", "Question bank: JSON file path or http(s) URL")
	f.Bool("sample-bank", false, "Use the built-in sample question bank")
	f.String("base-path", "", "URL prefix for sub-path deployments (e.g. /enade)")
	f.Bool("secure-cookies", true, "Set Secure flag on session cookies")
	addCommonFlags(cmd)
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a saved questionnaire as a standalone HTML document",
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.String("db", "enade.db", "SQLite database path")
	f.Int("id", 0, "Saved questionnaire ID (required)")
	f.StringP("output", "o", "", "Output file path (- for stdout, default: derived from the title)")
	f.Bool("verify", false, "Parse the written document back and check its question list")
	addCommonFlags(cmd)

	_ = cmd.MarkFlagRequired("id")

	return cmd
}

func responsesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "responses",
		Short: "List submitted responses or export one as JSON",
		RunE:  runResponses,
	}
	f := cmd.Flags()
	f.String("questionnaire", "", "Only responses to this questionnaire title")
	f.String("student", "", "Only students whose name or ID contains this text")
	f.Int("export", 0, "Export the Nth listed response (1-based) as JSON")
	f.StringP("output", "o", "", "Export file path (- for stdout, default: derived from the response)")
	addCommonFlags(cmd)
	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("ENADE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("enade")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/enade")
	v.AddConfigPath("/etc/enade")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	var b *bank.Bank
	if v.GetBool("sample-bank") {
		b = bank.New(bank.Sample())
		slog.Info("using sample question bank", "count", b.Len())
	} else {
		b = bank.Load(context.Background(), v.GetString("questions"))
	}

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	// Normalize base path.
	basePath := strings.TrimRight(v.GetString("base-path"), "/")
	if basePath != "" && !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}

	cfg := model.AppConfig{
		BasePath:      basePath,
		ResponsesURL:  v.GetString("responses-url"),
		Lang:          lang,
		SecureCookies: v.GetBool("secure-cookies"),
		Version:       version,
	}

	h, err := handler.New(b, db, responses.New(cfg.ResponsesURL), cfg)
	if err != nil {
		return fmt.Errorf("create handler: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appI18n.Middleware(lang))

	if basePath != "" {
		r.Route(basePath, func(sub chi.Router) {
			sub.Use(h.BasePathMiddleware)
			h.Routes(sub)
		})
		r.Get(basePath, func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, basePath+"/", http.StatusMovedPermanently)
		})
	} else {
		r.Use(h.BasePathMiddleware)
		h.Routes(r)
	}

	addr := v.GetString("addr")
	slog.Info("starting server",
		"addr", addr,
		"version", version,
		"lang", lang,
		"questions", b.Len(),
		"responses_url", cfg.ResponsesURL,
		"base_path", basePath,
	)
	return http.ListenAndServe(addr, r)
}

// openOutput resolves an output flag: "-" is stdout, empty falls back to def.
func openOutput(path, def string) (io.Writer, string, func() error, error) {
	if path == "-" {
		return os.Stdout, "stdout", func() error { return nil }, nil
	}
	if path == "" {
		path = def
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, "", nil, fmt.Errorf("create output file: %w", err)
	}
	return f, path, f.Close, nil
}

func runExport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}
	ctx := appI18n.WithLang(context.Background(), lang)

	id := v.GetInt("id")
	q, ok, err := db.GetQuestionnaire(id)
	if err != nil {
		return fmt.Errorf("load questionnaire %d: %w", id, err)
	}
	if !ok {
		return fmt.Errorf("questionnaire %d not found", id)
	}

	res, err := export.Document(ctx, q, export.Options{
		ResponsesURL: v.GetString("responses-url"),
		Lang:         lang,
	})
	if err != nil {
		return err
	}

	if v.GetBool("verify") {
		if err := verifyDocument(res.Data, q); err != nil {
			return err
		}
		slog.Info("document verified", "questions", len(q.Questions))
	}

	w, name, closeFn, err := openOutput(v.GetString("output"), res.Filename)
	if err != nil {
		return err
	}
	if _, err := w.Write(res.Data); err != nil {
		closeFn()
		return fmt.Errorf("write output: %w", err)
	}
	if err := closeFn(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	slog.Info("exported questionnaire", "id", q.ID, "title", q.Title, "output", name)
	return nil
}

// verifyDocument checks that the embedded question list matches q.
func verifyDocument(doc []byte, q model.Questionnaire) error {
	embedded, err := export.ParseDocument(bytes.NewReader(doc))
	if err != nil {
		return fmt.Errorf("verify document: %w", err)
	}
	if len(embedded.Questions) != len(q.Questions) {
		return fmt.Errorf("verify document: %d questions embedded, want %d", len(embedded.Questions), len(q.Questions))
	}
	for i, eq := range embedded.Questions {
		if eq.Text != q.Questions[i].Text || len(eq.Options) != len(q.Questions[i].Options) {
			return fmt.Errorf("verify document: question %d differs", i+1)
		}
	}
	return nil
}

func runResponses(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	client := responses.New(v.GetString("responses-url"))
	subs, err := client.List(cmd.Context(), responses.Filter{
		QuestionnaireTitle: v.GetString("questionnaire"),
		StudentQuery:       v.GetString("student"),
	})
	n := v.GetInt("export")
	if err != nil && n != 0 {
		return err
	}

	if n != 0 {
		if n < 1 || n > len(subs) {
			return fmt.Errorf("response %d out of range (1-%d)", n, len(subs))
		}
		res, err := responses.ExportOne(subs[n-1])
		if err != nil {
			return err
		}
		w, name, closeFn, err := openOutput(v.GetString("output"), res.Filename)
		if err != nil {
			return err
		}
		if _, err := w.Write(res.Data); err != nil {
			closeFn()
			return fmt.Errorf("write output: %w", err)
		}
		if err := closeFn(); err != nil {
			return fmt.Errorf("close output: %w", err)
		}
		slog.Info("exported response", "student", subs[n-1].StudentID, "output", name)
		return nil
	}

	// List has already logged any fetch error.
	if len(subs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no responses")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSTUDENT\tID\tQUESTIONNAIRE\tSUBMITTED")
	for i, s := range subs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i+1, s.StudentName, s.StudentID, s.Questionnaire,
			s.SubmissionDate.Local().Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}
