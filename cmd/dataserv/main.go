package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/sonnes/dataserv/server"
)

func main() {
	root := newRootCommand()
	if err := root.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func newRootCommand() *cli.Command {
	return &cli.Command{
		Name:    "dataserv",
		Usage:   "Serve a directory of pipeline data products over HTTP",
		Version: server.Version,
		Description: `dataserv exposes a root directory over HTTP: static files with
directory listings, a /info page, multipart uploads, and task
dispatch (/get_task, /end_task) for pipeline workers consuming
*.fits products from <root>/input/.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "host",
				Aliases: []string{"H"},
				Usage:   "Bind host (0.0.0.0 for all interfaces)",
				Value:   "localhost",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Bind port",
				Value:   8080,
			},
			&cli.StringFlag{
				Name:    "level",
				Aliases: []string{"l"},
				Usage:   "Log level: debug, info, warn, error",
				Value:   "info",
			},
			&cli.BoolFlag{
				Name:  "no-dirlist",
				Usage: "Disable directory listings",
			},
			&cli.StringFlag{
				Name:    "rootdir",
				Aliases: []string{"r"},
				Usage:   "Root directory to serve",
				Value:   ".",
			},
			&cli.BoolFlag{
				Name:  "read-only",
				Usage: "Disable uploads",
			},
			&cli.BoolFlag{
				Name:  "markdown",
				Usage: "Render .md files as HTML pages",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML config file; flags override its values",
			},
			&cli.StringFlag{
				Name:  "pid-file",
				Usage: "Write the process ID to this file",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Append logs to this file instead of stderr",
			},
		},
		Action: run,
	}
}
