package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/vocabquiz/internal/bank"
	"github.com/abhisek/vocabquiz/internal/config"
	"github.com/abhisek/vocabquiz/internal/mastery"
	"github.com/abhisek/vocabquiz/internal/quiz"
	"github.com/abhisek/vocabquiz/internal/session"
	"github.com/abhisek/vocabquiz/internal/store"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "vocabquiz",
	Short: "Vocabulary quiz trainer",
	Long: "vocabquiz runs multiple-choice vocabulary quizzes, remembers unfinished " +
		"attempts as drafts and unlocks lessons as earlier ones are mastered.",
	SilenceUsage:      true,
	PersistentPostRun: func(*cobra.Command, []string) { _ = logger.Sync() },
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd, "")
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Assigned here rather than in the literal: setup refers to rootCmd.
	rootCmd.PersistentPreRunE = setup

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file (default ./vocabquiz.yaml or <config dir>/vocabquiz/vocabquiz.yaml)")
	pf.String("db", "", "Database DSN; a file path for sqlite (overrides VOCABQUIZ_DB_DSN)")
	pf.String("driver", "", "Database driver: sqlite or postgres")
	pf.String("learner", "", "Learner id (default $USER)")
	pf.String("bank", "", "Question bank JSON file (default: built-in bank)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(lessonsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads configuration and builds the logger for every command.
func setup(cmd *cobra.Command, _ []string) error {
	if cmd == versionCmd {
		return nil
	}
	c, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	cfg = c

	tui := cmd == rootCmd || cmd == playCmd
	l, err := newLogger(c, tui)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	logger = l
	return nil
}

// newLogger builds a zap logger for c. The TUI owns the terminal, so in
// TUI mode logs go to a file next to the default database.
func newLogger(c *config.Config, tui bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if c.IsDevelopment() {
		zc = zap.NewDevelopmentConfig()
	}

	lvl, err := zap.ParseAtomicLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}
	zc.Level = lvl

	path := c.Log.File
	if path == "" && tui {
		dbPath, err := store.DefaultDBPath()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(filepath.Dir(dbPath), "vocabquiz.log")
	}
	if path != "" {
		zc.OutputPaths = []string{path}
		zc.ErrorOutputPaths = []string{path}
	}
	return zc.Build()
}

// openStore opens the configured database. An empty sqlite DSN selects
// the default data-dir database.
func openStore(ctx context.Context) (*store.Store, error) {
	driver := store.Driver(cfg.DB.Driver)
	dsn := cfg.DB.DSN
	if driver == store.DriverSQLite {
		switch {
		case dsn == "":
			p, err := store.DefaultDBPath()
			if err != nil {
				return nil, fmt.Errorf("resolve DB path: %w", err)
			}
			dsn = p
		case !strings.HasPrefix(dsn, "file:"):
			if err := store.EnsureDir(dsn); err != nil {
				return nil, fmt.Errorf("create DB dir: %w", err)
			}
		}
	}
	st, err := store.Open(ctx, driver, dsn, logger)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// services bundles what the TUI and the HTTP server share.
type services struct {
	store   *store.Store
	bank    *bank.Bank
	mastery *mastery.Service
}

func openServices(ctx context.Context) (*services, error) {
	b, err := bank.Open(cfg.Bank.Path)
	if err != nil {
		return nil, fmt.Errorf("load bank: %w", err)
	}
	st, err := openStore(ctx)
	if err != nil {
		return nil, err
	}
	logger.Debug("bank loaded",
		zap.String("version", b.Version()),
		zap.Int("lessons", len(b.Lessons())),
		zap.Int("questions", len(b.Questions())))
	return &services{
		store:   st,
		bank:    b,
		mastery: mastery.NewService(st.MasteryRepo(), logger),
	}, nil
}

func (s *services) Close() error {
	return s.store.Close()
}

// newMachine returns a session machine for owner. Each machine gets its
// own builder since the random source is not safe for concurrent use.
func (s *services) newMachine(owner string) *session.Machine {
	return session.New(owner, session.Deps{
		Bank:     s.bank,
		Builder:  quiz.NewBuilder(nil),
		Attempts: s.store.AttemptRepo(),
		Mastery:  s.mastery,
		Logger:   logger,
	})
}
