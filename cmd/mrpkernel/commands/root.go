// Package commands implements the mrpkernel cobra command tree.
package commands

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/nexusmrp/mrpkernel/internal/appconfig"
	"github.com/nexusmrp/mrpkernel/internal/logging"
)

var (
	// Version and Commit are set at build time via ldflags.
	Version = "dev"
	Commit  = "none"

	verbose bool
	cfg     *appconfig.Config
)

var rootCmd = &cobra.Command{
	Use:   "mrpkernel",
	Short: "mrpkernel runs material requirements planning over a BOM, demands and supplies",
	Long: `mrpkernel explodes independent demand through a bill-of-materials graph,
nets it against supply and on-hand inventory, applies lot sizing and
pegs planned orders back to their originating demand.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(verbose)

		var err error
		cfg, err = appconfig.Load()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load configuration")
		}

		log.Debug().
			Str("version", Version).
			Str("commit", Commit).
			Msg("mrpkernel starting")
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}
