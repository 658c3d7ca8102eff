package root

import (
	"github.com/spf13/cobra"
)

var RootCmd = &cobra.Command{
	Use:           "ct-host",
	Short:         "Provision and run consul-template under systemd",
	Long:          `ct-host installs the consul-template agent onto a host (service user, directory tree, binary) and generates its configuration and systemd unit before activating the service`,
	SilenceErrors: true,
}
