// Package security implements the weak md5 password salting used by the
// legacy game server (eAthena md5calc). Passwords are stored as
// "!<salt>$<hash>" where hash is a truncated double md5.
//
// https://github.com/themanaworld/tmwa/blob/master/src/high/md5more.cpp
package security

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"math/rand"
)

const saltLength = 5

func md5hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// md5saltcrypt hashes a plain password with a salt, dropping the last
// 8 hex digits the way the game server does.
func md5saltcrypt(salt, plain string) string {
	full := md5hex(md5hex(plain) + md5hex(salt))
	return full[:len(full)-8]
}

// VerifyLegacyPassword checks a plain password against a stored
// "!salt$hash" string. Malformed strings never verify.
func VerifyLegacyPassword(raw, plain string) bool {
	if len(raw) < 1+saltLength+1+24 || raw[0] != '!' {
		return false
	}
	salt := raw[1 : 1+saltLength]
	hashed := raw[len(raw)-24:]
	return md5saltcrypt(salt, plain) == hashed
}

// HashLegacyPassword salts and hashes a plain password into the stored
// "!salt$hash" format with a freshly generated salt.
func HashLegacyPassword(plain string) string {
	salt := newSalt()
	return fmt.Sprintf("!%s$%s", salt, md5saltcrypt(salt, plain))
}

// newSalt generates a 5-char salt from the printable range the game
// server accepts.
func newSalt() string {
	salt := make([]byte, saltLength)
	for i := range salt {
		salt[i] = byte(48 + rand.Intn(78))
	}
	return string(salt)
}
