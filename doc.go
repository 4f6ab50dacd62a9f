// Package cipherlink provides the client-side end-to-end-encryption core
// for CipherLink, a relay-based secure messenger.
//
// The package covers the full client crypto lifecycle: X25519/Ed25519 key
// generation and key bundles, a versioned authenticated message protocol
// with an opt-in forward-secrecy mode, public-key fingerprints for
// out-of-band verification, symmetric protection of local blobs, and the
// persistent relay session that carries ciphertext between peers.
//
// The relay never decrypts: everything it routes is sealed before it
// reaches the transport.
//
// Basic usage:
//
//	bundle, priv, err := cipherlink.GenerateKeyBundle(10)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Upload bundle, keep priv in secure storage.
//
//	msg, err := cipherlink.Encrypt("hello", peerPub, myPriv, myPub)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	session := cipherlink.NewSession(cipherlink.WithRelayURL("wss://relay.example.com/chat"))
//	session.On(cipherlink.FrameMessage, func(f *cipherlink.Frame) {
//	    // decrypt and display
//	})
//	if err := session.Connect("alice", token); err != nil {
//	    log.Fatal(err)
//	}
//	defer session.Disconnect()
package cipherlink
