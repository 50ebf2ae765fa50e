// Command soak drives puzzle sessions through the REST API with random
// clicks and checks every response against the puzzle's rules: the board
// stays a permutation, legal clicks move the blank and count one move, and
// ignored clicks change nothing.
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/wricardo/fifteen-puzzle/game/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		log.Printf("❌ %v", err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "soak",
		Usage: "Play random clicks against a puzzle server and check every result",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "Puzzle server URL"},
			&cli.StringFlag{Name: "config", Usage: "Configuration for the sessions (classic, quick, marathon)"},
			&cli.IntFlag{Name: "sessions", Value: 4, Usage: "Sessions to play concurrently"},
			&cli.IntFlag{Name: "moves", Value: 500, Usage: "Clicks per session"},
			&cli.IntFlag{Name: "steps", Usage: "Shuffle length, 0 for the configured length"},
			&cli.Int64Flag{Name: "seed", Value: 1, Usage: "Seed for shuffles and clicks; session i uses seed+i"},
			&cli.DurationFlag{Name: "delay", Usage: "Delay between clicks"},
			&cli.BoolFlag{Name: "keep", Usage: "Keep the sessions instead of deleting them"},
			&cli.BoolFlag{Name: "v", Usage: "Verbose output"},
		},
		Action: run,
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	log.Printf("Connecting to puzzle server at %s", cmd.String("url"))

	opts := soakOptions{
		configID: cmd.String("config"),
		moves:    cmd.Int("moves"),
		steps:    cmd.Int("steps"),
		delay:    cmd.Duration("delay"),
		keep:     cmd.Bool("keep"),
		verbose:  cmd.Bool("v"),
	}

	reports := make([]*Report, cmd.Int("sessions"))
	g, gctx := errgroup.WithContext(ctx)
	for i := range reports {
		seed := cmd.Int64("seed") + int64(i)
		g.Go(func() error {
			report, err := runSession(gctx, NewClient(cmd.String("url")), seed, opts)
			reports[i] = report
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	violations := 0
	for _, r := range reports {
		log.Printf("[SESSION] %s seed=%d steps=%d slides=%d ignored=%d solves=%d violations=%d",
			r.SessionID, r.Seed, r.Steps, r.Slides, r.Ignored, r.Solves, len(r.Violations))
		for _, v := range r.Violations {
			log.Printf("  ❌ %s", v)
		}
		violations += len(r.Violations)
	}

	if violations > 0 {
		return fmt.Errorf("%d violations across %d sessions", violations, len(reports))
	}
	log.Printf("✅ %d sessions, %d clicks each, no violations", len(reports), opts.moves)
	return nil
}

type soakOptions struct {
	configID string
	moves    int
	steps    int
	delay    time.Duration
	keep     bool
	verbose  bool
}

// Report tallies one session's soak run
type Report struct {
	SessionID string
	Seed      int64

	Steps   int
	Slides  int
	Ignored int
	Solves  int

	Violations []string
}

// runSession creates a session, shuffles it with seed and plays opts.moves
// random clicks, reshuffling whenever the board ends up solved
func runSession(ctx context.Context, client *Client, seed int64, opts soakOptions) (*Report, error) {
	session, err := client.CreateSession(ctx, opts.configID)
	if err != nil {
		return nil, err
	}
	report := &Report{SessionID: session.ID, Seed: seed}
	if !opts.keep {
		defer func() {
			if err := client.DeleteSession(context.Background()); err != nil {
				log.Printf("[SESSION] failed to delete %s: %v", session.ID, err)
			}
		}()
	}

	rng := rand.New(rand.NewSource(seed))
	shuffle := func() (*service.PuzzleView, error) {
		shuffleSeed := rng.Int63()
		return client.Shuffle(ctx, service.ShuffleOptions{Steps: opts.steps, Seed: &shuffleSeed})
	}

	view, err := shuffle()
	if err != nil {
		return report, err
	}

	for i := 0; i < opts.moves; i++ {
		pos, want := pickClick(rng, view)
		result, err := client.Move(ctx, pos)
		if err != nil {
			return report, err
		}

		report.Violations = append(report.Violations, checkMove(view, pos, want, result)...)
		switch {
		case !result.Success:
			report.Ignored++
		case want == expectSlide:
			report.Slides++
		default:
			report.Steps++
		}

		if opts.verbose {
			log.Printf("[MOVE] session=%s %s at=%s success=%t moves=%d",
				session.ID, want, pos, result.Success, result.Puzzle.MoveCount)
		}

		view = result.Puzzle
		if view == nil {
			return report, fmt.Errorf("move %s returned no puzzle", pos)
		}
		if view.Solved {
			report.Solves++
			if view, err = shuffle(); err != nil {
				return report, err
			}
		}

		if opts.delay > 0 {
			select {
			case <-ctx.Done():
				return report, ctx.Err()
			case <-time.After(opts.delay):
			}
		}
	}
	return report, nil
}
