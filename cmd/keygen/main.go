// Copyright (c) 2024 RoseLoverX

// Command keygen prints the fingerprints of server RSA keys, the embedded
// set or the keys of a PEM file, in the form the handshake matches them.
package main

import (
	"crypto/rsa"
	"flag"
	"fmt"
	"os"

	"github.com/roseloverx/mtproto/internal/keys"
)

func main() {
	file := flag.String("file", "", "PEM file with the keys, the embedded keys when empty")
	printPEM := flag.Bool("pem", false, "print every key re-encoded as PKCS#1")
	flag.Parse()

	var (
		set []*rsa.PublicKey
		err error
	)
	if *file == "" {
		set = keys.DefaultKeys()
	} else if set, err = keys.ReadFromFile(*file); err != nil {
		fmt.Fprintln(os.Stderr, "keygen:", err)
		os.Exit(1)
	}

	for i, key := range set {
		fp := keys.RSAFingerprint(key)
		fmt.Printf("key %d: %d bits, fingerprint %016x (%d)\n", i, key.N.BitLen(), uint64(fp), fp)
		if *printPEM {
			fmt.Print(keys.SaveRsaKey(key))
		}
	}
}
