// Command keygen mints an API key for the puffkeeper server.
//
//	keygen -s <server secret> [-role anon|service] [-ttl 0]
//
// A ttl of 0 produces a key that never expires.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dmitrijs2005/puffkeeper/internal/server/auth"
)

func main() {
	var (
		secret string
		role   string
	)
	fs := flag.NewFlagSet("keygen", flag.ExitOnError)
	fs.StringVar(&secret, "s", "", "server secret key")
	fs.StringVar(&role, "role", string(auth.RoleAnon), "key role (anon or service)")
	ttl := fs.Duration("ttl", 0, "key validity, 0 for no expiry")
	_ = fs.Parse(os.Args[1:])

	if secret == "" {
		fmt.Fprintln(os.Stderr, "keygen: -s is required")
		os.Exit(2)
	}

	r, err := auth.ParseRole(role)
	if err != nil {
		fmt.Fprintln(os.Stderr, "keygen:", err)
		os.Exit(2)
	}

	key, err := auth.GenerateAPIKey(r, []byte(secret), *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "keygen:", err)
		os.Exit(1)
	}

	fmt.Println(key)
}
