package auth

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type Credential struct {
	Email        string `yaml:"email"`
	PasswordHash string `yaml:"password_hash"`
	Role         string `yaml:"role"`
}

type credentialFile struct {
	Users []Credential `yaml:"users"`
}

// Directory is the static set of accounts allowed to use the API.
type Directory struct {
	users map[string]Credential
}

func NewDirectory(creds []Credential) (*Directory, error) {
	d := &Directory{users: make(map[string]Credential, len(creds))}
	for i, c := range creds {
		c.Email = normalizeEmail(c.Email)
		if c.Email == "" {
			return nil, fmt.Errorf("credential %d: email is required", i)
		}
		if c.PasswordHash == "" {
			return nil, fmt.Errorf("credential %s: password_hash is required", c.Email)
		}
		if !KnownRole(c.Role) {
			return nil, fmt.Errorf("credential %s: unknown role %q", c.Email, c.Role)
		}
		if _, dup := d.users[c.Email]; dup {
			return nil, fmt.Errorf("credential %s: duplicate email", c.Email)
		}
		d.users[c.Email] = c
	}
	return d, nil
}

// LoadDirectory reads a YAML credentials file of the form
//
//	users:
//	  - email: admin@example.com
//	    password_hash: $2a$10$...
//	    role: Admin
func LoadDirectory(path string) (*Directory, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	var file credentialFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	return NewDirectory(file.Users)
}

func (d *Directory) Authenticate(email, password string) (Credential, error) {
	c, ok := d.users[normalizeEmail(email)]
	if !ok {
		return Credential{}, ErrInvalidCredentials
	}
	if err := CheckPassword(c.PasswordHash, password); err != nil {
		return Credential{}, ErrInvalidCredentials
	}
	return c, nil
}

func (d *Directory) Len() int {
	return len(d.users)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
