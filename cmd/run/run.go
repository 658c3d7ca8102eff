package run

import (
	"context"
	"fmt"
	"time"

	"ct-host/cmd/root"
	"ct-host/internal/config"
	"ct-host/internal/utils"
	"ct-host/services"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate agent config and systemd unit, then activate the service",
	Long:  `The 'run' command regenerates the agent configuration and the systemd unit descriptor from the supplied options, then reloads systemd, enables the unit and restarts it`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAgent(cmd.Context())
	},
}

var (
	optConfigDir  string
	optBinDir     string
	optStdout     string
	optStderr     string
	optUser       string
	optUseSudo    bool
	optSkipConfig bool
	optEnviron    []string
	optEnvFile    string
)

/**
 * Run the controller with the flag-supplied options
 * @param {context.Context} ctx - Context for supervisor invocations
 * @returns {error} Returns error if generation or activation fails
 * @description
 * - Pairs loaded from --environment-file come first, then repeated
 *   --environment flags, so flags can override the file downstream
 */
func runAgent(ctx context.Context) error {
	start := time.Now()
	environment, err := collectEnvironment(optEnvFile, optEnviron)
	if err != nil {
		return err
	}
	manager := services.NewRunManager(utils.ExecRunner{})
	err = manager.Run(ctx, services.RunOptions{
		ConfigDir:            optConfigDir,
		BinDir:               optBinDir,
		SystemdStdout:        optStdout,
		SystemdStderr:        optStderr,
		User:                 optUser,
		UseSudo:              optUseSudo,
		SkipConfigGeneration: optSkipConfig,
		Environment:          environment,
	})
	services.PushOutcome(config.Config.Metrics.Pushgateway, "run", err, time.Since(start))
	return err
}

// collectEnvironment merges dotenv-file pairs with flag pairs. File
// pairs keep the file's key order via godotenv's ordered parse of the
// raw text; flag pairs keep their command-line order.
func collectEnvironment(envFile string, flagPairs []string) ([]string, error) {
	if envFile == "" {
		return flagPairs, nil
	}
	pairs, err := readEnvFile(envFile)
	if err != nil {
		return nil, err
	}
	return append(pairs, flagPairs...), nil
}

func readEnvFile(path string) ([]string, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read environment file '%s': %v", path, err)
	}
	// godotenv returns a map; re-derive order from the file itself so
	// the unit descriptor preserves the operator's ordering.
	keys, err := utils.DotenvKeysInOrder(path)
	if err != nil {
		return nil, err
	}
	var pairs []string
	for _, key := range keys {
		if value, ok := values[key]; ok {
			pairs = append(pairs, fmt.Sprintf("%s=%s", key, value))
		}
	}
	return pairs, nil
}

func init() {
	runCmd.Flags().StringVar(&optConfigDir, "config-dir", "", "Agent config directory (default: config/ beside this binary)")
	runCmd.Flags().StringVar(&optBinDir, "bin-dir", "", "Agent binary directory (default: bin/ beside this binary)")
	runCmd.Flags().StringVar(&optStdout, "systemd-stdout", "", "StandardOutput override for the unit")
	runCmd.Flags().StringVar(&optStderr, "systemd-stderr", "", "StandardError override for the unit")
	runCmd.Flags().StringVar(&optUser, "user", "", "Account the unit runs as (default: owner of the config directory)")
	runCmd.Flags().BoolVar(&optUseSudo, "use-sudo", false, "Run the unit as the superuser account")
	runCmd.Flags().StringArrayVar(&optEnviron, "environment", nil, "KEY=value pair for the unit environment (repeatable)")
	runCmd.Flags().StringVar(&optEnvFile, "environment-file", "", "Dotenv file whose pairs are prepended to --environment")
	runCmd.Flags().BoolVar(&optSkipConfig, "skip-consul-template-config", false, "Leave any existing agent config untouched")

	root.RootCmd.AddCommand(runCmd)

	runCmd.Example = `  ct-host run --config-dir /opt/consul-template/config --bin-dir /opt/consul-template/bin`
}
