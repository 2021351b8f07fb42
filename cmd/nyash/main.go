// Nyash CLI - inspects a runtime session: loads nyash.toml, attaches
// configured plugin libraries and reports the available Box types.
// Programs reach the runtime through an embedding parser, which is a
// separate component; this binary exists for session/plugin debugging.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/moe-charm/nyash/interp"
	"github.com/moe-charm/nyash/plugin"
	"github.com/moe-charm/nyash/runtime"
)

func main() {
	configPath := flag.String("config", "nyash.toml", "Path to the plugin configuration")
	verbosity := flag.Int("v", 0, "Log verbosity (0=warnings, 1=info, 2=debug)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: nyash [options]\n\n")
		fmt.Fprintf(os.Stderr, "Initializes a Nyash runtime session and lists the Box types the\n")
		fmt.Fprintf(os.Stderr, "construction registry can serve (builtin, user-defined, plugin).\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	commonlog.Configure(*verbosity, nil)
	log := commonlog.GetLogger("nyash")

	sess := interp.NewSession()

	factory := plugin.NewFactory()
	if cfg, err := plugin.LoadConfig(*configPath); err == nil {
		err := factory.Activate(cfg, func(lib plugin.Library) (plugin.Invoker, error) {
			// In-process libraries register themselves at link time; a
			// stand-alone CLI has none to offer.
			return nil, fmt.Errorf("no in-process library for %s", lib.PluginPath)
		})
		if err != nil {
			log.Errorf("plugin activation: %v", err)
			os.Exit(1)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		log.Errorf("plugin config: %v", err)
		os.Exit(1)
	}
	sess.Boxes.Register(factory, runtime.ProviderPlugin)

	if isatty.IsTerminal(os.Stdout.Fd()) {
		fmt.Println("Available Box types:")
	}
	for _, name := range sess.Boxes.AvailableTypes() {
		kind := "unbound"
		if k, ok := sess.Boxes.Provider(name); ok {
			kind = k.String()
		}
		fmt.Printf("  %-14s (%s)\n", name, kind)
	}
}
