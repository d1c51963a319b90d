// Command hashpw prints a credentials.yaml entry with a bcrypt password hash.
package main

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"ems/internal/auth"
)

func main() {
	email := flag.String("email", "", "account email")
	password := flag.String("password", "", "plain-text password")
	role := flag.String("role", auth.RoleManager, "Admin, Manager or Viewer")
	flag.Parse()

	if *email == "" || *password == "" || !auth.KnownRole(*role) {
		flag.Usage()
		os.Exit(2)
	}
	hash, err := auth.HashPassword(*password)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hash password:", err)
		os.Exit(1)
	}
	out, err := yaml.Marshal([]auth.Credential{{Email: *email, PasswordHash: hash, Role: *role}})
	if err != nil {
		fmt.Fprintln(os.Stderr, "encode entry:", err)
		os.Exit(1)
	}
	fmt.Print(string(out))
}
