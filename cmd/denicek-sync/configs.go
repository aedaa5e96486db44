package main

import (
	"io"
	"os"

	"github.com/scott-cotton/cli"

	"github.com/mattn/go-isatty"
)

type MainConfig struct {
	Color bool `cli:"name=color desc='colored output'"`

	Main *cli.Command
}

// colorize decides whether to color output for w: an explicit -color wins,
// otherwise color when w is a terminal.
func (cfg *MainConfig) colorize(w io.Writer) bool {
	colorSet := false
	for _, opt := range cfg.Main.Opts {
		if opt.Name != "color" {
			continue
		}
		colorSet = opt.Value != nil
		break
	}
	if colorSet {
		return cfg.Color
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd())
}

type ServeConfig struct {
	*MainConfig

	ConfigFile  string `cli:"name=c aliases=config desc='YAML config file'"`
	Listen      string `cli:"name=listen desc='listen address (overrides config)'"`
	Persist     string `cli:"name=persist desc='snapshot file (overrides config)'"`
	SaveSeconds int    `cli:"name=saveEvery desc='save interval in seconds (overrides config)'"`

	Serve *cli.Command
}

type RenderConfig struct {
	*MainConfig

	Node string `cli:"name=node desc='node id to render (default document root)'"`

	Render *cli.Command
}

type DumpConfig struct {
	*MainConfig

	Dump *cli.Command
}
