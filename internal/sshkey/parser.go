// Copyright (c) 2026 Gitident Team
// Gitident - Git identity manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Package sshkey parses and generates OpenSSH key material.
package sshkey // import "github.com/toeirei/gitident/internal/sshkey"

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/ssh"
)

// PublicKey is a single public key line split into its fields.
type PublicKey struct {
	Algorithm string
	KeyData   string
	Comment   string
}

// String returns the line in authorized_keys form.
func (k PublicKey) String() string {
	if k.Comment == "" {
		return k.Algorithm + " " + k.KeyData
	}
	return k.Algorithm + " " + k.KeyData + " " + k.Comment
}

// Parse splits a raw public key line into algorithm, key data and comment.
// Leading authorized_keys options (from="...", command="...") are skipped.
func Parse(rawKey string) (PublicKey, error) {
	fields := strings.Fields(rawKey)
	if len(fields) == 0 {
		return PublicKey{}, fmt.Errorf("empty line")
	}

	start := -1
	for i, field := range fields {
		if strings.HasPrefix(field, "ssh-") || strings.HasPrefix(field, "ecdsa-") || strings.HasPrefix(field, "sk-") {
			start = i
			break
		}
	}
	if start == -1 {
		return PublicKey{}, fmt.Errorf("no valid SSH key type found in line")
	}
	if len(fields) < start+2 {
		return PublicKey{}, fmt.Errorf("invalid public key format: missing key data after algorithm")
	}

	k := PublicKey{Algorithm: fields[start], KeyData: fields[start+1]}
	if len(fields) > start+2 {
		k.Comment = strings.Join(fields[start+2:], " ")
	}
	return k, nil
}

// EmailFromComment returns the last whitespace-delimited field of a public
// key line, or "" when the line carries only algorithm and key data.
func EmailFromComment(line string) string {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return ""
	}
	return fields[len(fields)-1]
}

// Fingerprint returns the SHA256 fingerprint of a public key line.
func Fingerprint(line string) (string, error) {
	pk, _, _, _, err := ssh.ParseAuthorizedKey([]byte(line))
	if err != nil {
		return "", fmt.Errorf("parse public key: %w", err)
	}
	return ssh.FingerprintSHA256(pk), nil
}
