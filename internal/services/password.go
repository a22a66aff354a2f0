package services

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"hash"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"
)

// werkzeug's default pbkdf2 iteration count when the hash omits it.
const defaultPBKDF2Iterations = 600000

type credentialFormat int

const (
	formatPlaintext credentialFormat = iota
	formatBcrypt
	formatWerkzeug
)

// MaxPasswordBytes is the longest password bcrypt accepts as is.
const MaxPasswordBytes = 72

// bcryptInput returns the bytes fed to bcrypt. Passwords longer than bcrypt's
// limit, which only legacy rows can hold, are reduced to base64(sha256(pw)).
func bcryptInput(password string) []byte {
	if len(password) <= MaxPasswordBytes {
		return []byte(password)
	}
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

// hashPassword produces the credential stored for new and upgraded users.
func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword(bcryptInput(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func detectFormat(stored string) credentialFormat {
	switch {
	case strings.HasPrefix(stored, "$2a$"), strings.HasPrefix(stored, "$2b$"), strings.HasPrefix(stored, "$2y$"):
		return formatBcrypt
	case (strings.HasPrefix(stored, "pbkdf2:") || strings.HasPrefix(stored, "scrypt:")) && strings.Count(stored, "$") == 2:
		return formatWerkzeug
	default:
		return formatPlaintext
	}
}

// verifyPassword checks password against a stored credential. upgrade is true
// when the match came from a format that should be rewritten as bcrypt.
//
// The stored value is compared as plaintext only when it is not recognised as
// a bcrypt or werkzeug hash. A hash-shaped value that fails verification is a
// mismatch; it is never retried as a literal password.
func verifyPassword(stored, password string) (ok bool, upgrade bool) {
	switch detectFormat(stored) {
	case formatBcrypt:
		return bcrypt.CompareHashAndPassword([]byte(stored), bcryptInput(password)) == nil, false
	case formatWerkzeug:
		return verifyWerkzeug(stored, password), true
	default:
		// Legacy rows stored the password itself.
		match := stored != "" && subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
		return match, match
	}
}

// verifyWerkzeug checks "method$salt$hexdigest" hashes written by werkzeug's
// generate_password_hash, e.g. "pbkdf2:sha256:600000$salt$..." or
// "scrypt:32768:8:1$salt$...".
func verifyWerkzeug(stored, password string) bool {
	parts := strings.SplitN(stored, "$", 3)
	if len(parts) != 3 {
		return false
	}
	method, salt, digest := parts[0], parts[1], parts[2]
	want, err := hex.DecodeString(digest)
	if err != nil || len(want) == 0 {
		return false
	}

	args := strings.Split(method, ":")
	var got []byte
	switch args[0] {
	case "pbkdf2":
		if len(args) < 2 {
			return false
		}
		newHash := hashByName(args[1])
		if newHash == nil {
			return false
		}
		iterations := defaultPBKDF2Iterations
		if len(args) > 2 {
			if iterations, err = strconv.Atoi(args[2]); err != nil || iterations <= 0 {
				return false
			}
		}
		got = pbkdf2.Key([]byte(password), []byte(salt), iterations, len(want), newHash)
	case "scrypt":
		n, r, p := 32768, 8, 1
		if len(args) == 4 {
			var errs [3]error
			n, errs[0] = strconv.Atoi(args[1])
			r, errs[1] = strconv.Atoi(args[2])
			p, errs[2] = strconv.Atoi(args[3])
			for _, e := range errs {
				if e != nil {
					return false
				}
			}
		}
		got, err = scrypt.Key([]byte(password), []byte(salt), n, r, p, len(want))
		if err != nil {
			return false
		}
	default:
		return false
	}
	return subtle.ConstantTimeCompare(got, want) == 1
}

func hashByName(name string) func() hash.Hash {
	switch name {
	case "sha1":
		return sha1.New
	case "sha256":
		return sha256.New
	case "sha512":
		return sha512.New
	default:
		return nil
	}
}
