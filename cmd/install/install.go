package install

import (
	"context"
	"time"

	"ct-host/cmd/root"
	"ct-host/internal/config"
	"ct-host/internal/utils"
	"ct-host/services"

	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Provision this host for the consul-template agent",
	Long:  `The 'install' command creates the service user and directory tree, downloads the agent binary, and registers this controller on the system path`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return installAgent(cmd.Context())
	},
}

var (
	optVersion string
	optPath    string
	optUser    string
)

/**
 * Run the installer with the flag-supplied spec
 * @param {context.Context} ctx - Context for external command invocations
 * @returns {error} Returns error if any provisioning step fails
 * @description
 * - The outcome is pushed to the configured pushgateway either way
 */
func installAgent(ctx context.Context) error {
	start := time.Now()
	manager := services.NewInstallManager(utils.ExecRunner{}, config.Config.Download)
	err := manager.Install(ctx, services.InstallSpec{
		Version:     optVersion,
		InstallPath: optPath,
		OsUser:      optUser,
	})
	services.PushOutcome(config.Config.Metrics.Pushgateway, "install", err, time.Since(start))
	return err
}

func init() {
	installCmd.Flags().StringVar(&optVersion, "version", "", "Agent release version to install (required)")
	installCmd.Flags().StringVar(&optPath, "path", config.Config.Install.Path, "Install tree root")
	installCmd.Flags().StringVar(&optUser, "user", config.Config.Install.User, "Service account owning the install tree")
	installCmd.MarkFlagRequired("version")

	root.RootCmd.AddCommand(installCmd)

	installCmd.Example = `  ct-host install --version 0.25.0 --path /opt/consul-template --user consul-template`
}
