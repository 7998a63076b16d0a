// Package cli contains the cluedo command line: running a mission, identifying single images and
// printing the catalog cards.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"
)

const (
	configFlag   = "config"
	debugFlag    = "debug"
	logFileFlag  = "log-file"
	simFlag      = "sim"
	debugOutFlag = "debug-out"
	outFlag      = "out"
	widthFlag    = "width"
	heightFlag   = "height"
)

var configFlagDef = &cli.StringFlag{
	Name:     configFlag,
	Aliases:  []string{"c"},
	Usage:    "load mission configuration from `FILE`",
	Required: true,
}

var app = &cli.App{
	Name:            "cluedo",
	Usage:           "search a room for cards and identify them",
	HideHelpCommand: true,
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    debugFlag,
			Aliases: []string{"vvv"},
			Usage:   "enable debug logging",
		},
		&cli.StringFlag{
			Name:  logFileFlag,
			Usage: "also write logs to `FILE`, rotated by size",
		},
	},
	Commands: []*cli.Command{
		{
			Name:  "run",
			Usage: "run the mission until the quota of cards is identified",
			Flags: []cli.Flag{
				configFlagDef,
				&cli.BoolFlag{
					Name:  simFlag,
					Usage: "drive the simulated room described by the config",
				},
			},
			Action: RunMissionAction,
		},
		{
			Name:      "identify",
			Usage:     "identify the catalog card shown in an image",
			ArgsUsage: "<image>",
			Flags: []cli.Flag{
				configFlagDef,
				&cli.StringFlag{
					Name:  debugOutFlag,
					Usage: "write the frame with the match drawn on it to `FILE`",
				},
			},
			Action: IdentifyAction,
		},
		{
			Name:      "cards",
			Usage:     "generate printable catalog cards",
			ArgsUsage: "<name>...",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  outFlag,
					Usage: "write the cards to `DIR`",
					Value: ".",
				},
				&cli.IntFlag{
					Name:  widthFlag,
					Usage: "card width in pixels",
					Value: 160,
				},
				&cli.IntFlag{
					Name:  heightFlag,
					Usage: "card height in pixels",
					Value: 200,
				},
			},
			Action: CardsAction,
		},
	},
}

// NewApp returns a new app with the CLI function, usage info, and flags.
func NewApp(out, errOut io.Writer) *cli.App {
	app.Writer = out
	app.ErrWriter = errOut
	return app
}
