package main

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/pterm/pterm"
	"github.com/sanity-io/litter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/calvinwijaya/blackjack/internal/game"
	"github.com/calvinwijaya/blackjack/internal/player"
	"github.com/calvinwijaya/blackjack/internal/service"
)

func newPlayCmd(v *viper.Viper) *cobra.Command {
	var (
		name string
		seed int64
		dump bool
	)
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a round of blackjack in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, v)
			if err != nil {
				return err
			}
			p, err := player.New(name)
			if err != nil {
				return err
			}

			var r *rand.Rand
			if cmd.Flags().Changed("seed") {
				r = rand.New(rand.NewSource(seed))
			}
			shoe, err := game.NewShoe(cfg.Decks, game.RandomShuffle(r))
			if err != nil {
				return err
			}
			g, err := game.NewGame(p.ID, game.WithShoe(shoe))
			if err != nil {
				return err
			}

			pterm.DefaultHeader.WithFullWidth().Println("Blackjack")
			if err := playRound(g, p.Name, promptAction); err != nil {
				return err
			}
			if dump {
				pterm.Println(litter.Sdump(g.Snapshot()))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "Player", "Your name at the table")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Shuffle seed, for a repeatable shoe")
	cmd.Flags().BoolVar(&dump, "dump", false, "Print the final game state")
	return cmd
}

// chooser decides the next action for an unfinished game.
type chooser func(g *game.Game) (service.Action, error)

func promptAction(*game.Game) (service.Action, error) {
	choice, err := pterm.DefaultInteractiveSelect.
		WithDefaultText("Your move").
		WithOptions([]string{"Hit", "Stand"}).
		Show()
	if err != nil {
		return "", err
	}
	return service.ParseAction(choice)
}

// playRound drives g to a finish, rendering the table after every action.
func playRound(g *game.Game, playerName string, choose chooser) error {
	renderTable(g, playerName)
	for !g.IsFinished() {
		action, err := choose(g)
		if err != nil {
			return err
		}

		switch action {
		case service.ActionHit:
			_, err = g.Hit()
		case service.ActionStand:
			spinner, _ := pterm.DefaultSpinner.WithRemoveWhenDone(true).Start("Dealer plays...")
			_, err = g.Stand()
			spinner.Stop()
		}
		if err != nil {
			return err
		}
		renderTable(g, playerName)
	}

	g.ClearNotifications()
	printOutcome(g)
	return nil
}

func renderTable(g *game.Game, playerName string) {
	pbox := pterm.DefaultBox.WithLeftPadding(4).WithRightPadding(4).WithTopPadding(1).WithBottomPadding(1)

	hand := g.PlayerHand()
	dealer := pbox.WithTitle(pterm.LightRed("|DEALER|")).WithTitleTopCenter().
		Sprintf("%s\nTotal: %d", cardLine(g.DealerVisibleCards(), !g.IsFinished()), g.DealerVisibleValue())
	you := pbox.WithTitle(pterm.LightCyan("|"+strings.ToUpper(playerName)+"|")).WithTitleTopCenter().
		Sprintf("%s\nTotal: %d", cardLine(hand.Cards(), false), hand.Value())

	panels := []pterm.Panel{{Data: dealer}, {Data: you}}
	if turns := g.Turns(); len(turns) > 0 {
		var log strings.Builder
		for _, t := range turns {
			log.WriteString(t.Description() + "\n")
		}
		panels = append(panels, pterm.Panel{Data: pbox.WithTitle("|TURNS|").WithTitleTopLeft().Sprint(log.String())})
	}
	pterm.DefaultPanel.WithPanels([][]pterm.Panel{panels}).Render()
}

func cardLine(cards []game.Card, holeCard bool) string {
	parts := make([]string, 0, len(cards)+1)
	for _, c := range cards {
		if c.Suit.IsRed() {
			parts = append(parts, pterm.LightRed(c.Symbol()))
		} else {
			parts = append(parts, pterm.LightWhite(c.Symbol()))
		}
	}
	if holeCard {
		parts = append(parts, pterm.Gray("??"))
	}
	return strings.Join(parts, " ")
}

func printOutcome(g *game.Game) {
	msg := fmt.Sprintf("%s (you %d, dealer %d)", g.Status().DisplayName(), g.PlayerHand().Value(), g.DealerHand().Value())
	switch g.Status() {
	case game.PlayerWin:
		pterm.Success.Println(msg)
	case game.DealerWin:
		pterm.Error.Println(msg)
	default:
		pterm.Info.Println(msg)
	}
}
