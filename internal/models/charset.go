package models

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Charset is the recognizer's vocabulary: an ordered list of tokens
// (usually single runes) plus the index each decodes to. Adapted from the
// teacher's recognizer.Charset, dropping the multi-file merge path since
// SPEC_FULL.md carries a single dictionary.
type Charset struct {
	Tokens       []string
	IndexToToken map[int]string
	TokenToIndex map[string]int
}

func removeBOM(line string, isFirstLine bool) string {
	if isFirstLine {
		return strings.TrimPrefix(line, "﻿")
	}
	return line
}

// LoadCharset loads a dictionary file where each line is one token.
// Trailing newline/carriage-return characters are stripped, but
// significant whitespace characters that constitute the token itself are
// preserved.
func LoadCharset(path string) (*Charset, error) {
	if path == "" {
		return nil, errors.New("dictionary path cannot be empty")
	}
	f, err := os.Open(path) //nolint:gosec // caller-controlled dictionary path
	if err != nil {
		return nil, fmt.Errorf("failed to open dictionary: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	tokens := make([]string, 0, 512)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		line = strings.TrimSuffix(line, "\r")
		line = removeBOM(line, lineNum == 1)
		tokens = append(tokens, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed reading dictionary: %w", err)
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("dictionary is empty: %s", path)
	}

	idxTo := make(map[int]string, len(tokens))
	toIdx := make(map[string]int, len(tokens))
	for i, t := range tokens {
		if _, ok := toIdx[t]; !ok {
			toIdx[t] = i
		}
		idxTo[i] = t
	}
	return &Charset{Tokens: tokens, IndexToToken: idxTo, TokenToIndex: toIdx}, nil
}

// Size returns the number of tokens in the charset.
func (c *Charset) Size() int { return len(c.Tokens) }

// Token returns the token at index, or "" if out of range.
func (c *Charset) Token(index int) string {
	if c == nil {
		return ""
	}
	return c.IndexToToken[index]
}

// Strings returns the full token list, for wiring into ctcdecode.Decoder.
func (c *Charset) Strings() []string {
	if c == nil {
		return nil
	}
	return c.Tokens
}
