package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/scout/internal/config"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List LLM providers and their availability",
	Long: `List the known LLM providers, whether an API key is configured for
each, and which one is the default.`,
	RunE: runProviders,
}

func runProviders(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	for _, name := range config.ProviderNames() {
		pc, err := a.cfg.ProviderFor(name)
		if err != nil {
			return err
		}

		state := "no API key"
		if a.client.ProviderAvailable(name) {
			state = "available"
		}
		marker := " "
		if name == a.cfg.LLM.Provider {
			marker = "*"
		}
		fmt.Printf("%s %-10s %-12s model: %s\n", marker, name, state, pc.Model)
	}
	fmt.Println("\n* default provider")
	return nil
}
