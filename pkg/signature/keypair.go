package signature

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/ChainSafe/gossamer/lib/crypto/sr25519"
	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"
	"github.com/sethvargo/go-envconfig"

	"github.com/taoillium/bittensor-subnet-taoillium/pkg/config"
)

// LoadMnemonic reads the secret phrase out of a bittensor hotkey file.
func LoadMnemonic(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		usr, err := user.Current()
		if err != nil {
			return "", fmt.Errorf("failed to get current user: %w", err)
		}
		path = filepath.Join(usr.HomeDir, path[2:])
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read keypair file: %w", err)
	}

	var keyfile map[string]interface{}
	if err := sonic.Unmarshal(data, &keyfile); err != nil {
		return "", fmt.Errorf("failed to parse keypair JSON: %w", err)
	}

	seed, ok := keyfile["secretPhrase"]
	if !ok {
		return "", fmt.Errorf("secretPhrase not found in JSON")
	}
	seedPhrase, ok := seed.(string)
	if !ok {
		return "", fmt.Errorf("secretPhrase is not a string")
	}

	return seedPhrase, nil
}

// LoadKeypairFromHotkey loads the sr25519 keypair stored under
// $BITTENSOR_DIR/wallets/<coldkey>/hotkeys/<hotkey>.
func LoadKeypairFromHotkey(coldkeyName, hotkeyName string) (*sr25519.Keypair, error) {
	var envCfg config.WalletEnvConfig
	if err := envconfig.Process(context.Background(), &envCfg); err != nil {
		return nil, fmt.Errorf("failed to process wallet environment: %w", err)
	}

	bittensorDir := envCfg.BittensorDir
	if bittensorDir == "" {
		bittensorDir = DefaultBittensorDir
	}

	path := bittensorDir + "/wallets/" + coldkeyName + "/hotkeys/" + hotkeyName
	log.Debug().Str("path", path).Str("hotkey_name", hotkeyName).Msg("loading keypair from hotkey path")

	mnemonic, err := LoadMnemonic(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load seed phrase: %w", err)
	}

	keypair, err := sr25519.NewKeypairFromMnenomic(mnemonic, "")
	if err != nil {
		return nil, fmt.Errorf("failed to create keypair from seed phrase: %w", err)
	}

	return keypair, nil
}
