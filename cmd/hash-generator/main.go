// Command hash-generator prints bcrypt hashes for seeding users directly
// into the database, using the same hasher as the server.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/phrazzld/taskman/internal/service/auth"
	"github.com/phrazzld/taskman/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost factor")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [-cost n] [password ...]\n", os.Args[0])
		fmt.Fprintln(os.Stderr, "Passwords are read one per line from stdin when none are given.")
		flag.PrintDefaults()
	}
	flag.Parse()

	passwords := flag.Args()
	if len(passwords) == 0 {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			passwords = append(passwords, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading stdin: %v\n", err)
			os.Exit(1)
		}
	}

	hasher := auth.NewBcryptHasher(*cost)
	failed := false
	for _, password := range passwords {
		if n := len(password); n < validation.MinPasswordLength || n > validation.MaxPasswordLength {
			fmt.Fprintf(os.Stderr, "Skipping password of length %d: must be %d to %d bytes\n",
				n, validation.MinPasswordLength, validation.MaxPasswordLength)
			failed = true
			continue
		}
		hash, err := hasher.Hash(password)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating hash: %v\n", err)
			failed = true
			continue
		}
		fmt.Println(hash)
	}

	if failed {
		os.Exit(1)
	}
}
