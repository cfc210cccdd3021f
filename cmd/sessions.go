package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/mockmate/mockmate/internal/logger"
	"github.com/mockmate/mockmate/internal/store"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const sessionListLimit = 20

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Inspect recorded interview sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent sessions",
	Run: func(_ *cobra.Command, _ []string) {
		withStore(func(ctx context.Context, st store.Store, _ *zap.Logger) error {
			return listSessions(ctx, st)
		})
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show one session with its full question/answer log",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		withStore(func(ctx context.Context, st store.Store, _ *zap.Logger) error {
			return showSession(ctx, st, args[0])
		})
	},
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
}

func withStore(fn func(context.Context, store.Store, *zap.Logger) error) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	path := defaultDatabasePath
	if config.Database != nil && strings.TrimSpace(config.Database.Path) != "" {
		path = config.Database.Path
	}

	st, err := store.NewSQLiteStore(path)
	if err != nil {
		logger.Fatal("opening the session database", zap.Error(err), zap.String("database", path))
	}
	defer st.Close()

	if err := fn(ctx, st, logger); err != nil {
		logger.Fatal("reading the session database", zap.Error(err))
	}
}

func listSessions(ctx context.Context, st store.Store) error {
	sessions, err := st.ListSessions(ctx, sessionListLimit)
	if err != nil {
		return err
	}

	if len(sessions) == 0 {
		fmt.Println("no sessions recorded yet")
		return nil
	}

	for _, session := range sessions {
		score := "in progress"
		if session.OverallScore != nil {
			score = fmt.Sprintf("%.1f/10", *session.OverallScore)
		}

		fmt.Printf("%s  %s  %s @ %s (%s)  %d questions  %s\n",
			session.ID,
			session.StartTime.Format("2006-01-02 15:04"),
			session.CandidateName,
			session.Company,
			session.Role,
			session.TotalQuestions,
			score,
		)
	}

	return nil
}

func showSession(ctx context.Context, st store.Store, id string) error {
	session, err := st.GetSession(ctx, id)
	if err != nil {
		return err
	}
	if session == nil {
		return fmt.Errorf("session %q not found", id)
	}

	fmt.Printf("Session %s\n", session.ID)
	fmt.Printf("Candidate: %s\n", session.CandidateName)
	fmt.Printf("Target:    %s @ %s\n", session.Role, session.Company)
	fmt.Printf("Started:   %s\n", session.StartTime.Format("2006-01-02 15:04:05"))
	if !session.EndTime.IsZero() {
		fmt.Printf("Ended:     %s\n", session.EndTime.Format("2006-01-02 15:04:05"))
	}
	if session.OverallScore != nil {
		fmt.Printf("Score:     %.1f/10\n", *session.OverallScore)
	}
	if session.EarlyTermination != "" {
		fmt.Printf("Terminated early: %s\n", session.EarlyTermination)
	}

	if profile, err := st.GetProfile(ctx, id); err == nil && profile != nil {
		fmt.Printf("\nProfile: %s level\n", profile.ExperienceLevel)
		if len(profile.MatchedSkills) > 0 {
			fmt.Printf("  matched skills: %s\n", strings.Join(profile.MatchedSkills, ", "))
		}
		if len(profile.MissingSkills) > 0 {
			fmt.Printf("  missing skills: %s\n", strings.Join(profile.MissingSkills, ", "))
		}
		if len(profile.RedFlags) > 0 {
			fmt.Printf("  red flags: %s\n", strings.Join(profile.RedFlags, ", "))
		}
	}

	turns, err := st.GetTurns(ctx, id)
	if err != nil {
		return err
	}

	for _, turn := range turns {
		fmt.Printf("\n--- Question %d [%s] scored %.1f/10 ---\n", turn.QuestionNumber, turn.Stage, turn.CriticScore)
		fmt.Printf("Q: %s\n", turn.Question)
		answer := turn.Answer
		if answer == "" {
			answer = "(skipped)"
		}
		fmt.Printf("A: %s\n", answer)
		if turn.CriticTip != "" {
			fmt.Printf("Tip: %s\n", turn.CriticTip)
		}
	}

	if session.FinalVerdict != "" {
		fmt.Printf("\nVerdict:\n%s\n", session.FinalVerdict)
	}

	return nil
}
