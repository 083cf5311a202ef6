// Package main provides a command-line bout simulator: it loads a style
// catalog and a roster, runs one bout, and prints the commentary.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/bout/internal/config"
	"github.com/cory-johannsen/bout/internal/game/combat"
	"github.com/cory-johannsen/bout/internal/game/dice"
	"github.com/cory-johannsen/bout/internal/game/injury"
	"github.com/cory-johannsen/bout/internal/game/roster"
	"github.com/cory-johannsen/bout/internal/game/style"
	"github.com/cory-johannsen/bout/internal/narrate"
	"github.com/cory-johannsen/bout/internal/observability"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("boutsim: %v", err)
	}
}

type options struct {
	stylesFile string
	rosterFile string
	side1      string
	side2      string
	style      string
	seed       int64
	policy     string
	color      bool
	simple     bool
	challenge  bool
	days       int
	logLevel   string
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("boutsim", flag.ContinueOnError)
	fs.StringVar(&o.stylesFile, "styles", "content/styles.yaml", "path to the style catalog YAML")
	fs.StringVar(&o.rosterFile, "roster", "content/roster.yaml", "path to the roster YAML")
	fs.StringVar(&o.side1, "a", "", "side 1 combatant name (required)")
	fs.StringVar(&o.side2, "b", "", "side 2 combatant name (required)")
	fs.StringVar(&o.style, "style", "MMA", "fighting style")
	fs.Int64Var(&o.seed, "seed", 0, "random seed for a replayable bout (0 = generate and print one)")
	fs.StringVar(&o.policy, "policy", "overwrite", "re-injury policy: overwrite or keep_worse")
	fs.BoolVar(&o.color, "color", false, "colorize commentary with ANSI codes")
	fs.BoolVar(&o.simple, "simple", false, "run the single-exchange variant instead of a full bout")
	fs.BoolVar(&o.challenge, "challenge", false, "ask side 2 to accept the challenge before fighting")
	fs.IntVar(&o.days, "days", 0, "days to advance after the bout")
	fs.StringVar(&o.logLevel, "log-level", "warn", "log level; debug logs every dice draw")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.side1 == "" || o.side2 == "" {
		return o, errors.New("-a and -b are required")
	}
	if o.days < 0 {
		return o, errors.New("-days must be >= 0")
	}
	return o, nil
}

func run(args []string, out io.Writer) error {
	start := time.Now()
	ctx := context.Background()
	o, err := parseFlags(args)
	if err != nil {
		return err
	}
	policy, err := injury.ParsePolicy(o.policy)
	if err != nil {
		return err
	}

	logger, err := observability.NewLogger(config.LoggingConfig{Level: o.logLevel, Format: "console"}, "boutsim")
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	catalog, err := style.LoadFile(o.stylesFile)
	if err != nil {
		return err
	}
	seed, err := roster.LoadFile(o.rosterFile)
	if err != nil {
		return err
	}

	if o.seed == 0 {
		o.seed = dice.NewSeed()
		fmt.Fprintf(out, "seed %d\n", o.seed)
	}
	logger.Debug("dice seeded", zap.Int64("seed", o.seed))
	src := dice.NewRecorder(dice.NewSeededSource(o.seed), logger)

	sink := narrate.NewWriterSink(out, narrate.New(o.color))
	engine := combat.NewEngine(catalog, src, logger, combat.WithSink(sink), combat.WithPolicy(policy))
	r := roster.New(engine, logger, roster.WithSink(sink))
	if err := r.Load(seed); err != nil {
		return err
	}
	logger.Debug("roster loaded",
		zap.Int("combatants", r.Len()),
		zap.Int("styles", catalog.Len()),
	)

	if o.challenge {
		accepted, err := challenge(r, o.side2, o.side1, src)
		if err != nil {
			return err
		}
		if !accepted {
			fmt.Fprintf(out, "%s declines %s's challenge.\n", o.side2, o.side1)
			return nil
		}
		fmt.Fprintf(out, "%s accepts %s's challenge.\n", o.side2, o.side1)
	}

	if o.simple {
		res, err := r.Simple(ctx, o.side1, o.side2, o.style)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s defeats %s in %s (%s %.1f, %s %.1f).\n",
			res.Winner.Name, res.Loser.Name, res.Style, o.side1, res.Scores[0], o.side2, res.Scores[1])
	} else if _, err := r.Bout(ctx, o.side1, o.side2, o.style); err != nil {
		return err
	}

	for day := 1; day <= o.days; day++ {
		fmt.Fprintf(out, "-- day %d --\n", day)
		if _, err := r.AdvanceDay(ctx); err != nil {
			return err
		}
	}

	logger.Info("simulation complete", zap.Duration("elapsed", time.Since(start)))
	return nil
}

func challenge(r *roster.Roster, opponent, proposer string, src dice.Source) (bool, error) {
	opp, err := r.Get(opponent)
	if err != nil {
		return false, err
	}
	prop, err := r.Get(proposer)
	if err != nil {
		return false, err
	}
	return combat.AcceptsChallenge(opp, prop, r, src), nil
}
