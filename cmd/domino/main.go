package main

import (
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Globals

	Play      PlayCmd      `cmd:"" default:"withargs" help:"Run the interactive scoreboard (default)"`
	Status    StatusCmd    `cmd:"" help:"Print the current score"`
	Configure ConfigureCmd `cmd:"" help:"Set team names and win conditions"`
	Start     StartCmd     `cmd:"" help:"Start the match"`
	Add       AddCmd       `cmd:"" help:"Record a hand"`
	Edit      EditCmd      `cmd:"" help:"Correct a recorded hand"`
	Delete    DeleteCmd    `cmd:"" help:"Delete a recorded hand"`
	Pause     PauseCmd     `cmd:"" help:"Pause the countdown"`
	Resume    ResumeCmd    `cmd:"" help:"Resume the countdown"`
	Finish    FinishCmd    `cmd:"" help:"Finish the match now"`
	Reopen    ReopenCmd    `cmd:"" help:"Reopen a finished match for corrections"`
	Export    ExportCmd    `cmd:"" help:"Export the ledger to CSV or TOML"`
	Reset     ResetCmd     `cmd:"" help:"Discard the match"`
	Version   VersionCmd   `cmd:"" help:"Show version"`
}

func newParser(cli *CLI, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Name("domino"),
		kong.Description("Domino HOME vs VISITORS scorekeeper"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	}, options...)
	return kong.New(cli, options...)
}

func main() {
	// .env is optional
	_ = godotenv.Load()

	var cli CLI
	parser, err := newParser(&cli)
	if err != nil {
		panic(err)
	}
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	err = ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
