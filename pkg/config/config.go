// Package config holds environment configuration for the pkg-level libraries.
package config

// WalletEnvConfig locates the local bittensor wallet tree.
type WalletEnvConfig struct {
	WalletHotkey  string `env:"WALLET_HOTKEY"`
	WalletColdkey string `env:"WALLET_COLDKEY"`
	BittensorDir  string `env:"BITTENSOR_DIR,default=~/.bittensor"`
}
