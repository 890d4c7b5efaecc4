// Command simulate plays bot-only hands on a single table and prints every showdown
package main

import (
	"context"
	"flag"
	"fmt"
	"holdem-server/internal/rng"
	"holdem-server/internal/util"
	"holdem-server/pkg/holdem"
	"holdem-server/pkg/policy"
	"os"
	"time"

	"github.com/pterm/pterm"
	"github.com/sirupsen/logrus"
)

const maxActionsPerHand = 1000

var (
	hands   = flag.Int("hands", 10, "the number of hands to play")
	bots    = flag.Int("bots", 4, "the number of bots at the table")
	seed    = flag.Int64("seed", 0, "seed for a repeatable simulation, 0 is random")
	chips   = flag.Int("chips", holdem.DefaultOptions().StartingChips, "starting chips per bot")
	scripts = flag.String("scripts", "", "a directory of lua policies the bots rotate through")
)

func main() {
	flag.Parse()
	logrus.SetLevel(logrus.WarnLevel)

	if err := run(); err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(1)
	}
}

func run() error {
	var gen rng.Generator = rng.Crypto{}
	if *seed != 0 {
		gen = rng.NewSeeded(*seed)
	}

	registry := policy.NewRegistry(gen)
	defer registry.Close()
	if *scripts != "" {
		if err := registry.LoadDir(*scripts, gen); err != nil {
			return err
		}
	}

	opts := holdem.DefaultOptions()
	opts.StartingChips = *chips
	table, err := holdem.NewTable("simulation", opts, nil, gen)
	if err != nil {
		return err
	}

	names := registry.Names()
	for i := 0; i < *bots; i++ {
		id := fmt.Sprintf("bot-%d", i+1)
		if _, err := table.AddSeat(id, id, util.RandomSeatName(gen), names[i%len(names)]); err != nil {
			return err
		}
	}

	pterm.DefaultHeader.WithFullWidth().Printfln("%d bots, %d hands, blinds %d/%d", *bots, *hands, opts.SmallBlind, opts.BigBlind)

	for n := 0; n < *hands; n++ {
		if n == 0 {
			err = table.StartHand()
		} else {
			err = table.ResetForNextHand()
		}

		if err == holdem.ErrNotEnoughPlayers {
			pterm.Info.Println("only one bot has chips left")
			break
		} else if err != nil {
			return err
		}

		if err := playHand(table, registry); err != nil {
			return err
		}

		printShowdown(table.ShowdownEvent())
	}

	return printStandings(table)
}

func playHand(table *holdem.Table, registry *policy.Registry) error {
	for i := 0; table.Status() == holdem.StatusPlaying; i++ {
		if i >= maxActionsPerHand {
			return fmt.Errorf("hand %d did not finish", table.HandNumber())
		}

		seat, _ := table.Seat(table.CurrentToAct())
		p, err := registry.Get(seat.Policy)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		decision, err := p.Decide(ctx, table.View(seat.ID))
		cancel()
		if err != nil {
			logrus.WithError(err).WithField("seatId", seat.ID).Warn("policy failed, calling")
			decision = policy.Decision{Action: holdem.Call}
		}

		if _, err := policy.Apply(table, seat.ID, decision); err != nil {
			return err
		}
	}

	return nil
}
