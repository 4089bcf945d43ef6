package main

import (
	"os"

	"github.com/spf13/cobra"

	chatcmder "github.com/freellmlabs/freellm-go/cmd/freellm/chat"
)

func main() {
	root := &cobra.Command{
		Use:           "freellm",
		Short:         "Command line client for the FreeLLM chat API",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(chatcmder.NewChatCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
