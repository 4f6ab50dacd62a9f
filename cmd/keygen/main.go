// Command keygen generates a fresh key bundle and prints it as JSON.
//
// The public bundle (for upload to the relay) goes to stdout; the
// private keys go to the file named by -priv, sealed under a passphrase
// when one is provided.
package main

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	cipherlink "github.com/cipherlink/client-go"
)

func main() {
	prekeys := flag.Int("prekeys", cipherlink.DefaultOneTimePrekeyCount, "number of one-time prekeys to generate")
	privPath := flag.String("priv", "", "write private keys to this file instead of stdout")
	passphrase := flag.String("passphrase", "", "seal the private keys under this passphrase")
	flag.Parse()

	bundle, private, err := cipherlink.GenerateKeyBundle(*prekeys)
	if err != nil {
		fatal("generate key bundle: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(bundle); err != nil {
		fatal("encode bundle: %v", err)
	}

	fmt.Fprintf(os.Stderr, "identity fingerprint: %s\n",
		cipherlink.Fingerprint(private.IdentityKey.PublicKey))

	privJSON, err := json.Marshal(privateKeysJSON(private))
	if err != nil {
		fatal("encode private keys: %v", err)
	}

	out := privJSON
	if *passphrase != "" {
		sealed, salt, err := sealPrivateKeys(privJSON, *passphrase)
		if err != nil {
			fatal("seal private keys: %v", err)
		}
		out, err = json.Marshal(map[string]interface{}{
			"salt": base64.StdEncoding.EncodeToString(salt),
			"blob": sealed,
		})
		if err != nil {
			fatal("encode sealed keys: %v", err)
		}
	}

	if *privPath == "" {
		fmt.Fprintln(os.Stderr, string(out))
		return
	}
	if err := os.WriteFile(*privPath, append(out, '\n'), 0o600); err != nil {
		fatal("write %s: %v", *privPath, err)
	}
	fmt.Fprintf(os.Stderr, "private keys written to %s\n", *privPath)
}

func privateKeysJSON(p *cipherlink.BundlePrivateKeys) map[string]interface{} {
	prekeys := make([]string, len(p.OneTimePrekeys))
	for i, kp := range p.OneTimePrekeys {
		prekeys[i] = base64.StdEncoding.EncodeToString(kp.PrivateKey)
	}
	return map[string]interface{}{
		"encryptionKey":  base64.StdEncoding.EncodeToString(p.EncryptionKey.PrivateKey),
		"identityKey":    base64.StdEncoding.EncodeToString(p.IdentityKey.PrivateKey),
		"signedPrekey":   base64.StdEncoding.EncodeToString(p.SignedPrekey.PrivateKey),
		"oneTimePrekeys": prekeys,
	}
}

func sealPrivateKeys(plaintext []byte, passphrase string) (*cipherlink.StoredBlob, []byte, error) {
	salt := make([]byte, cipherlink.StorageSaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, nil, err
	}
	key, err := cipherlink.StorageKeyFromPassphrase(passphrase, salt)
	if err != nil {
		return nil, nil, err
	}
	blob, err := cipherlink.EncryptForStorage(plaintext, key)
	if err != nil {
		return nil, nil, err
	}
	return blob, salt, nil
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
