package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/project-tktt/letterboxd-export/internal/config"
	"github.com/project-tktt/letterboxd-export/internal/logging"
	"github.com/project-tktt/letterboxd-export/internal/module/social"
)

const unfollowDelay = 500 * time.Millisecond

func main() {
	apply := flag.Bool("apply", false, "unfollow users who don't follow back (default is a dry run)")
	flag.Parse()

	cfg := config.Load()

	logging.Setup(logging.Config{
		Level:  logging.Level(cfg.Log.Level),
		Pretty: cfg.Log.Pretty,
	})
	logger := logging.NewLogger("unfollow")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, *apply, logger); err != nil {
		logger.Error().Err(err).Msg("unfollow failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, apply bool, logger zerolog.Logger) error {
	raw := flag.Arg(0)
	if raw == "" {
		fmt.Fprint(os.Stderr, "Please enter your Letterboxd user URL: ")
		line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		raw = strings.TrimSpace(line)
	}

	profileURL, err := social.ValidateProfileURL(raw)
	if err != nil {
		return err
	}
	account := social.NormalizeUsername(profileURL)
	logger.Info().Str("account", account).Msg("analyzing account")

	session, err := social.NewRodSession(social.RodConfig{
		Headless: cfg.Social.Headless,
		Wait:     cfg.Social.WaitTimeout,
	}, logging.NewLogger("browser"))
	if err != nil {
		return err
	}
	defer session.Close()

	followers, err := social.CollectUsers(ctx, session, profileURL, social.Followers, logger)
	if err != nil {
		return fmt.Errorf("collect followers: %w", err)
	}
	following, err := social.CollectUsers(ctx, session, profileURL, social.Following, logger)
	if err != nil {
		return fmt.Errorf("collect following: %w", err)
	}

	rel := social.Diff(followers, following)
	printReport(rel, len(followers), len(following))

	if len(rel.NotFollowingBack) == 0 {
		return nil
	}
	if !apply {
		logger.Info().Int("candidates", len(rel.NotFollowingBack)).Msg("dry run, pass -apply to unfollow")
		return nil
	}

	if cfg.Social.Username == "" || cfg.Social.Password == "" {
		return errors.New("LETTERBOXD_USERNAME and LETTERBOXD_PASSWORD are required with -apply")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection: %w", err)
	}

	ledger := social.NewRedisLedger(rdb, account)
	if err := ledger.AddExceptions(ctx, cfg.Social.Exceptions...); err != nil {
		return fmt.Errorf("store exceptions: %w", err)
	}

	auth := social.NewAuthMachine()
	if err := auth.Login(ctx, session, cfg.Social.Username, cfg.Social.Password); err != nil {
		return err
	}

	report, err := social.NewUnfollower(session, auth, ledger, unfollowDelay, logger).Run(ctx, rel.NotFollowingBack)
	logger.Info().
		Int("unfollowed", len(report.Unfollowed)).
		Int("skipped", len(report.Skipped)).
		Int("missing", len(report.Missing)).
		Int("failed", len(report.Failed)).
		Msg("unfollow process complete")
	return err
}

func printReport(rel social.Relationships, followers, following int) {
	fmt.Printf("Users who don't follow you back (%d):\n", len(rel.NotFollowingBack))
	printNames(rel.NotFollowingBack, 10)
	fmt.Printf("\nFans (users you don't follow back) (%d):\n", len(rel.Fans))
	printNames(rel.Fans, 10)
	fmt.Printf("\nTotal Following: %d\nTotal Followers: %d\n", following, followers)
}

func printNames(names []string, perLine int) {
	if len(names) == 0 {
		fmt.Println("None")
		return
	}
	for i := 0; i < len(names); i += perLine {
		end := min(i+perLine, len(names))
		fmt.Println(strings.Join(names[i:end], ", "))
	}
}
