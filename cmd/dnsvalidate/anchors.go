package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var anchorsCmd = &cobra.Command{
	Use:   "anchors",
	Short: "dumps the trust anchors a config would load",
	Args:  cobra.NoArgs,
	RunE:  runAnchors,
}

func runAnchors(cmd *cobra.Command, args []string) error {
	fileCfg := loadFileConfig()
	dnssecCfg, err := fileCfg.DNSSECConfig()
	if err != nil {
		return err
	}

	store := dnssecCfg.AnchorsOrDefault()
	for apex, rrset := range store.All() {
		fmt.Printf("%s\n", apex)
		for _, rr := range rrset {
			fmt.Printf("  %s\n", rr.String())
		}
	}

	return nil
}
