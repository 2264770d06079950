// Command sqprobe runs scene queries against a scene file.
package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"scenequery/internal/collision"
	"scenequery/internal/world"
)

type rootOptions struct {
	scene    string
	config   string
	logLevel string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "sqprobe",
		Short:         "Run raycasts, sweeps and overlaps against a scene file",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := log.ParseLevel(opts.logLevel)
			if err != nil {
				return err
			}
			log.SetLevel(level)
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&opts.scene, "scene", "s", "", "scene file (.json, .yaml)")
	root.PersistentFlags().StringVar(&opts.config, "config", "", "collision config (TOML); defaults to <scene>.collision.toml")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warning", "log level")
	_ = root.MarkPersistentFlagRequired("scene")

	root.AddCommand(
		newTraceCommand(opts),
		newSweepCommand(opts),
		newOverlapCommand(opts),
		newStressCommand(opts),
	)
	return root
}

func (o *rootOptions) loadWorld() (*world.World, error) {
	return o.loadWorldWith(nil)
}

// loadWorldWith lets a command adjust the collision config before the world is built.
func (o *rootOptions) loadWorldWith(tweak func(*collision.Config)) (*world.World, error) {
	var (
		cfg collision.Config
		err error
	)
	if o.config != "" {
		cfg, err = collision.LoadConfig(o.config)
	} else {
		cfg, err = world.LoadConfigFor(o.scene)
	}
	if err != nil {
		return nil, err
	}
	if tweak != nil {
		tweak(&cfg)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	wopts := world.DefaultOptions()
	wopts.Config = cfg
	w, err := world.LoadSceneFile(o.scene, wopts)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", o.scene, err)
	}
	return w, nil
}
