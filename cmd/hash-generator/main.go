// Command hash-generator prints a salt and peppered bcrypt hash for each
// password argument, for seeding the users table by hand.
//
//	ACCOUNT_AUTH_PEPPER=... hash-generator -cost 12 secret1 secret2
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cuddly-waffle/account-api/internal/service/auth"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cost := flag.Int("cost", auth.DefaultBcryptCost, "bcrypt cost")
	pepper := flag.String("pepper", os.Getenv("ACCOUNT_AUTH_PEPPER"), "pepper mixed into each password")
	flag.Parse()

	if *pepper == "" {
		fmt.Fprintln(os.Stderr, "pepper is required (-pepper or ACCOUNT_AUTH_PEPPER)")
		os.Exit(2)
	}
	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: hash-generator [-cost N] [-pepper P] password...")
		os.Exit(2)
	}

	crypto := auth.NewPasswordCrypto(*pepper, *cost)
	failed := false
	for i, password := range flag.Args() {
		cred, err := crypto.HashPassword(password)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error hashing password #%d: %v\n", i+1, err)
			failed = true
			continue
		}
		fmt.Printf("salt=%s\nhash=%s\n\n", cred.Salt, cred.PasswordHash)
	}
	if failed {
		os.Exit(1)
	}
}
