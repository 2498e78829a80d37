package main

import (
	"sync"

	"github.com/dbrjs11/scan-far-to-near/agent/go-service/config"
	"github.com/dbrjs11/scan-far-to-near/agent/go-service/scansession"
)

var (
	cfgMu    sync.RWMutex
	agentCfg = config.Default()

	// sessions holds one scan session per pipeline-chosen name.
	sessions = scansession.NewRegistry()
)

func setConfig(c config.Config) {
	cfgMu.Lock()
	defer cfgMu.Unlock()
	agentCfg = c
}

func currentConfig() config.Config {
	cfgMu.RLock()
	defer cfgMu.RUnlock()
	return agentCfg
}
