package main

import (
	"holdem-server/pkg/deck"
	"holdem-server/pkg/holdem"
	"sort"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
)

func cardString(c deck.Card) string {
	s := c.String()
	if c.Suit == deck.Hearts || c.Suit == deck.Diamonds {
		return pterm.LightRed(s)
	}

	return s
}

func cardsString(cards []deck.Card) string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = cardString(c)
	}

	return strings.Join(out, " ")
}

func printShowdown(ev *holdem.ShowdownEvent) {
	if ev == nil {
		return
	}

	info := pterm.Sprintfln("Board: %s", cardsString(ev.Board))
	for _, seat := range ev.Seats {
		won, ok := ev.Payouts[seat.ID]
		if !ok {
			continue
		}

		switch {
		case ev.Uncontested:
			info += pterm.Sprintfln("%s won %d taking down the pot", pterm.LightCyan(seat.DisplayName), won)
		default:
			info += pterm.Sprintfln("%s won %d with %s (%s)", pterm.LightCyan(seat.DisplayName), won, ev.Hands[seat.ID], cardsString(seat.Hand))
		}
	}

	pbox := pterm.DefaultBox.WithLeftPadding(4).WithRightPadding(4).WithTopPadding(1).WithBottomPadding(1)
	title := pterm.LightGreen("|HAND " + strconv.Itoa(ev.HandNumber) + "|")
	pterm.DefaultPanel.WithPanels([][]pterm.Panel{{
		{Data: pbox.WithTitle(title).WithTitleTopCenter().Sprint(info)},
	}}).Render()
}

func printStandings(table *holdem.Table) error {
	seats := table.Seats()
	sort.SliceStable(seats, func(i, j int) bool {
		return seats[i].Chips > seats[j].Chips
	})

	data := pterm.TableData{{"Bot", "Policy", "Chips"}}
	for _, seat := range seats {
		data = append(data, []string{seat.DisplayName, seat.Policy, strconv.Itoa(seat.Chips)})
	}

	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
