// Copyright (c) 2026 Gitident Team
// Gitident - Git identity manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Package sshconfig reads and edits the OpenSSH client configuration file.
//
// The file is modeled as a preamble followed by ordered blocks, each opened
// by a Host (or Match) line. Only IdentityFile is interpreted for identity
// purposes; every other line is kept byte-for-byte when the file is written.
package sshconfig // import "github.com/toeirei/gitident/internal/sshconfig"

import (
	"bufio"
	"bytes"
	"io"
	"strings"
)

// Block is one Host or Match section of the config file.
type Block struct {
	// Keyword is "host" or "match" (lower-cased).
	Keyword string
	// Host is the first pattern of a Host line; empty for Match blocks.
	Host string
	// Header is the original opening line.
	Header string
	// Lines are the raw lines following the header, up to the next block.
	Lines []string
}

// File is a parsed SSH client config.
type File struct {
	Preamble []string
	Blocks   []*Block
}

// Parse reads an SSH client config. It never fails on content: unknown or
// malformed lines are kept as opaque text.
func Parse(r io.Reader) (*File, error) {
	f := &File{}
	var cur *Block
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		key, val, ok := directive(line)
		if ok && (key == "host" || key == "match") {
			cur = &Block{Keyword: key, Header: line}
			if key == "host" {
				if fields := strings.Fields(val); len(fields) > 0 {
					cur.Host = unquote(fields[0])
				}
			}
			f.Blocks = append(f.Blocks, cur)
			continue
		}
		if cur == nil {
			f.Preamble = append(f.Preamble, line)
		} else {
			cur.Lines = append(cur.Lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return f, nil
}

// Bytes renders the file. Untouched files round-trip unchanged apart from a
// trailing newline.
func (f *File) Bytes() []byte {
	var buf bytes.Buffer
	for _, l := range f.Preamble {
		buf.WriteString(l)
		buf.WriteByte('\n')
	}
	for _, b := range f.Blocks {
		buf.WriteString(b.Header)
		buf.WriteByte('\n')
		for _, l := range b.Lines {
			buf.WriteString(l)
			buf.WriteByte('\n')
		}
	}
	return buf.Bytes()
}

// Find returns the Host block whose first pattern equals host.
func (f *File) Find(host string) *Block {
	for _, b := range f.Blocks {
		if b.Keyword == "host" && b.Host == host {
			return b
		}
	}
	return nil
}

// AppendHost adds a new Host block with the given directives, separated from
// the previous content by a blank line.
func (f *File) AppendHost(host string, directives [][2]string) *Block {
	last := f.Preamble
	if n := len(f.Blocks); n > 0 {
		last = f.Blocks[n-1].Lines
		if len(last) == 0 || strings.TrimSpace(last[len(last)-1]) != "" {
			f.Blocks[n-1].Lines = append(f.Blocks[n-1].Lines, "")
		}
	} else if len(last) > 0 && strings.TrimSpace(last[len(last)-1]) != "" {
		f.Preamble = append(f.Preamble, "")
	}
	b := &Block{Keyword: "host", Host: host, Header: "Host " + host}
	for _, d := range directives {
		b.Lines = append(b.Lines, "    "+d[0]+" "+quoteIfNeeded(d[1]))
	}
	f.Blocks = append(f.Blocks, b)
	return b
}

// Get returns the first value of key (case-insensitive) in the block.
func (b *Block) Get(key string) string {
	key = strings.ToLower(key)
	for _, l := range b.Lines {
		if k, v, ok := directive(l); ok && k == key {
			return unquote(v)
		}
	}
	return ""
}

// IdentityFile returns the first IdentityFile value, or "".
func (b *Block) IdentityFile() string {
	return b.Get("IdentityFile")
}

// SetIdentityFile replaces the first IdentityFile line, keeping its
// indentation, or inserts one directly after the header.
func (b *Block) SetIdentityFile(path string) {
	for i, l := range b.Lines {
		if k, _, ok := directive(l); ok && k == "identityfile" {
			indent := l[:len(l)-len(strings.TrimLeft(l, " \t"))]
			b.Lines[i] = indent + "IdentityFile " + quoteIfNeeded(path)
			return
		}
	}
	b.Lines = append([]string{"    IdentityFile " + quoteIfNeeded(path)}, b.Lines...)
}

// directive splits "Key value" or "Key=value". Comments and blank lines
// report ok=false. The key is lower-cased.
func directive(line string) (key, value string, ok bool) {
	s := strings.TrimSpace(line)
	if s == "" || strings.HasPrefix(s, "#") {
		return "", "", false
	}
	i := strings.IndexAny(s, " \t=")
	if i < 0 {
		return strings.ToLower(s), "", true
	}
	key = strings.ToLower(s[:i])
	rest := strings.TrimLeft(s[i:], " \t")
	rest = strings.TrimPrefix(rest, "=")
	return key, strings.TrimSpace(rest), true
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

func quoteIfNeeded(s string) string {
	if strings.ContainsAny(s, " \t") {
		return `"` + s + `"`
	}
	return s
}
