package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/mockmate/mockmate/internal/ai"
	"github.com/mockmate/mockmate/internal/ai/gemini"
	"github.com/mockmate/mockmate/internal/interview"
	"github.com/mockmate/mockmate/internal/logger"
	"github.com/mockmate/mockmate/internal/resume"
	"github.com/mockmate/mockmate/internal/secrets"
	"github.com/mockmate/mockmate/internal/store"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const defaultDatabasePath = "mockmate.db"

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a mock interview session",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("resume-file", "r", "", "plain text file with the resume")
	runCmd.Flags().String("job-description-file", "", "plain text file with the job description")
	runCmd.Flags().String("candidate", "", "candidate name")
	runCmd.Flags().String("company", "", "target company name")
	runCmd.Flags().String("role", "", "target role title")
	runCmd.Flags().BoolP("signals", "s", false, "ask for a non-verbal signal after each answer")

	viper.BindPFlag("resume-file", runCmd.Flags().Lookup("resume-file"))
	viper.BindPFlag("job-description-file", runCmd.Flags().Lookup("job-description-file"))
	viper.BindPFlag("candidate", runCmd.Flags().Lookup("candidate"))
	viper.BindPFlag("company", runCmd.Flags().Lookup("company"))
	viper.BindPFlag("role", runCmd.Flags().Lookup("role"))
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting mockmate", zap.String("version", version))

	if config.Candidate == "" || config.Company == "" || config.Role == "" {
		logger.Fatal("candidate, company and role are required",
			zap.String("hint", "set them in the config file or with --candidate, --company and --role"),
		)
	}

	resumeText, err := resume.Load("resume", config.ResumeFile)
	if err != nil {
		logger.Fatal("loading the resume", zap.Error(err))
	}
	if err := resume.Validate(resumeText); err != nil {
		logger.Fatal("validating the resume", zap.Error(err), zap.String("file", config.ResumeFile))
	}

	jobDescription, err := resume.Load("job description", config.JobDescriptionFile)
	if err != nil {
		logger.Fatal("loading the job description", zap.Error(err))
	}

	collab, err := newCollaborators(ctx, config.AI, logger)
	if err != nil {
		logger.Fatal("building ai collaborators", zap.Error(err))
	}

	st := openStore(config, logger)
	if st != nil {
		defer st.Close()
	}

	orchestrator := interview.New(collab, st, logger)

	fmt.Printf("Preparing the interview for %s at %s (%s)...\n\n", config.Candidate, config.Company, config.Role)

	question, err := orchestrator.Start(ctx, interview.Setup{
		Candidate:      config.Candidate,
		ResumeText:     resumeText,
		JobDescription: jobDescription,
		Company:        config.Company,
		Role:           config.Role,
	})
	if err != nil {
		logger.Fatal("starting the session", zap.Error(err))
	}

	askSignals := cmd.Flag("signals").Value.String() == "true"
	number := 1

	for {
		session := orchestrator.Session()
		fmt.Printf("--- Question %d [%s] ---\n%s\n\n", number, session.Stage, question)

		answer, err := promptAnswer()
		if err != nil {
			logger.Fatal("reading the answer", zap.Error(err))
		}

		signal := ""
		if askSignals {
			if signal, err = promptSignal(); err != nil {
				logger.Fatal("reading the signal", zap.Error(err))
			}
		}

		result, err := orchestrator.SubmitAnswer(ctx, answer, signal)
		if err != nil {
			logger.Fatal("submitting the answer", zap.Error(err))
		}

		printFeedback(result.Feedback)

		for _, warning := range result.Warnings {
			logger.Warn("session degraded", zap.String("warning", warning))
		}

		if result.State == interview.StatePushback {
			fmt.Println("The interviewer is not satisfied and is pressing on the same topic.")
		}

		if result.NextQuestion == "" {
			break
		}

		question = result.NextQuestion
		number = result.QuestionNumber
	}

	printReport(orchestrator, logger)
}

func promptAnswer() (string, error) {
	prompt := promptui.Prompt{
		Label:     "Your answer (empty to skip)",
		AllowEdit: true,
	}

	answer, err := prompt.Run()
	if err != nil {
		// An empty answer aborts the prompt but is a valid "skip".
		if errors.Is(err, promptui.ErrAbort) || errors.Is(err, promptui.ErrEOF) {
			return "", nil
		}
		return "", err
	}

	return answer, nil
}

func promptSignal() (string, error) {
	prompt := promptui.Select{
		Label: "Non-verbal signal to report",
		Items: []string{"none", "confident", "hesitant", "long pause", "reading from notes"},
	}

	_, signal, err := prompt.Run()
	if err != nil {
		return "", err
	}

	if signal == "none" {
		signal = ""
	}

	return signal, nil
}

func printFeedback(judgment *ai.Judgment) {
	if judgment == nil {
		return
	}

	fmt.Printf("\nScore: %.1f/10", judgment.Score)
	if judgment.Degraded {
		fmt.Print(" (low confidence: the evaluation service was unavailable)")
	}
	fmt.Println()

	if judgment.Strengths != "" {
		fmt.Printf("  + %s\n", judgment.Strengths)
	}
	if judgment.Weaknesses != "" {
		fmt.Printf("  - %s\n", judgment.Weaknesses)
	}
	if judgment.Tip != "" {
		fmt.Printf("  Tip: %s\n", judgment.Tip)
	}
	fmt.Println()
}

func printReport(orchestrator *interview.Orchestrator, logger *zap.Logger) {
	report, err := orchestrator.Report()
	if err != nil {
		logger.Fatal("getting the final report", zap.Error(err))
	}

	session := orchestrator.Session()

	fmt.Println("=== Final report ===")
	if session.EarlyTermination != "" {
		fmt.Printf("The interview was terminated early: %s\n\n", session.EarlyTermination)
	}
	fmt.Printf("Overall score: %.1f/10 over %d questions\n\n", session.OverallScore, len(session.Turns))
	fmt.Println(report.Verdict)
	if report.Roadmap != "" {
		fmt.Printf("\nRoadmap:\n%s\n", report.Roadmap)
	}

	logger.Info("session saved", zap.String("session_id", session.ID))
}

func newCollaborators(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (interview.Collaborators, error) {
	var collab interview.Collaborators

	if cfg == nil || cfg.Gemini == nil {
		return collab, fmt.Errorf("ai.gemini configuration is required")
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return collab, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
	})
	if err != nil {
		return collab, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	genLogger := logger.With(
		zap.String("provider", "gemini"),
		zap.String("model", cfg.Gemini.Model),
		zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries),
	)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, genLogger)
	if err != nil {
		return collab, err
	}

	maxLogLength := cfg.Gemini.MaxLogLength

	return interview.Collaborators{
		Interviewer: gemini.NewInterviewer(generator, genLogger, maxLogLength),
		Critic:      gemini.NewCritic(generator, genLogger, maxLogLength),
		Profiler:    gemini.NewProfiler(generator, genLogger, maxLogLength),
		Researcher:  gemini.NewResearcher(generator, genLogger, maxLogLength),
		Strategist:  gemini.NewStrategist(generator, genLogger, maxLogLength),
		Reporter:    gemini.NewReporter(generator, genLogger, maxLogLength),
	}, nil
}

// openStore opens the session database. Persistence is best-effort: a store
// that cannot be opened downgrades the session to in-memory only.
func openStore(config *Config, logger *zap.Logger) store.Store {
	path := defaultDatabasePath
	if config.Database != nil && strings.TrimSpace(config.Database.Path) != "" {
		path = config.Database.Path
	}

	st, err := store.NewSQLiteStore(path)
	if err != nil {
		logger.Warn("session persistence disabled",
			zap.Error(err),
			zap.String("database", path),
		)
		return nil
	}

	logger.Debug("session database opened", zap.String("database", path))
	return st
}
