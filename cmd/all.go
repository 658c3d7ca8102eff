package cmd

import (
	_ "ct-host/cmd/install"
	_ "ct-host/cmd/metadata"
	_ "ct-host/cmd/root"
	_ "ct-host/cmd/run"
)
