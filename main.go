// Package main is the entry point for the govscope CLI.
package main

import (
	"github.com/huangsam/govscope/cmd"
	"github.com/huangsam/govscope/internal/contract"
	"github.com/huangsam/govscope/internal/iocache"
)

func main() {
	cmd.SetStoreManager(iocache.Manager)
	defer iocache.CloseStores()
	defer func() {
		if err := cmd.StopProfiling(); err != nil {
			contract.LogWarn("Cannot stop profiling", err)
		}
	}()

	if err := cmd.Execute(); err != nil {
		contract.LogFatal("Cannot run govscope", err)
	}
}
