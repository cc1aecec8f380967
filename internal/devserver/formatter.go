// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package devserver

import (
	"path"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jeranaias/aisuite/internal/model"
)

// =============================================================================
// PROFILE RULES
// =============================================================================

type phrase struct {
	re   *regexp.Regexp
	with string
}

func newPhrase(pattern, with string) phrase {
	return phrase{re: regexp.MustCompile(`(?i)\b` + pattern + `\b`), with: with}
}

type profileRules struct {
	replace map[string]string
	drop    map[string]bool
	phrases []phrase
	code    bool
	period  bool
}

// baseReplace applies to every profile.
var baseReplace = map[string]string{
	"i":    "I",
	"i'm":  "I'm",
	"i'll": "I'll",
	"i've": "I've",
	"i'd":  "I'd",
	"u":    "you",
	"ur":   "your",
	"pls":  "please",
	"plz":  "please",
	"thx":  "thanks",
	"thnx": "thanks",
}

var rules = map[model.ProfileID]profileRules{
	model.ProfileProfessional: {
		replace: map[string]string{
			"gonna":   "going to",
			"wanna":   "want to",
			"gotta":   "have to",
			"asap":    "as soon as possible",
			"fyi":     "for your information",
			"can't":   "cannot",
			"won't":   "will not",
			"don't":   "do not",
			"doesn't": "does not",
			"isn't":   "is not",
			"it's":    "it is",
			"hey":     "hello",
			"yeah":    "yes",
			"yep":     "yes",
			"nope":    "no",
		},
		period: true,
	},
	model.ProfileCasual: {},
	model.ProfileTechnical: {
		replace: map[string]string{
			"api":  "API",
			"json": "JSON",
			"yaml": "YAML",
			"http": "HTTP",
			"url":  "URL",
			"sql":  "SQL",
			"cli":  "CLI",
			"db":   "database",
		},
		code:   true,
		period: true,
	},
	model.ProfileConcise: {
		drop: map[string]bool{
			"just":      true,
			"really":    true,
			"very":      true,
			"basically": true,
			"actually":  true,
			"literally": true,
			"simply":    true,
			"quite":     true,
		},
		phrases: []phrase{
			newPhrase(`in order to`, "to"),
			newPhrase(`due to the fact that`, "because"),
			newPhrase(`at this point in time`, "now"),
			newPhrase(`for the purpose of`, "for"),
			newPhrase(`in the event that`, "if"),
		},
		period: true,
	},
}

var codeExtensions = map[string]bool{
	".go": true, ".py": true, ".js": true, ".ts": true, ".tsx": true, ".json": true,
	".yaml": true, ".yml": true, ".toml": true, ".md": true, ".sql": true, ".sh": true,
}

// =============================================================================
// FORMATTING
// =============================================================================

// FormatText rewrites message according to profile. Instructions that ask
// for bullets turn each sentence into a list item. Unknown profiles use
// the default.
func FormatText(message string, profile model.ProfileID, instructions string) string {
	r, ok := rules[profile]
	if !ok {
		r = rules[model.DefaultProfile]
	}

	text := strings.ReplaceAll(message, "\r\n", "\n")
	for _, p := range r.phrases {
		text = p.re.ReplaceAllString(text, p.with)
	}

	var lines []string
	blank := false
	for _, line := range strings.Split(text, "\n") {
		words := strings.Fields(line)
		if len(words) == 0 {
			if len(lines) > 0 {
				blank = true
			}
			continue
		}
		if blank {
			lines = append(lines, "")
			blank = false
		}
		lines = append(lines, formatLine(words, r))
	}
	if len(lines) == 0 {
		return ""
	}

	if r.period {
		last := len(lines) - 1
		if rn, _ := utf8.DecodeLastRuneInString(lines[last]); unicode.IsLetter(rn) || unicode.IsDigit(rn) {
			lines[last] += "."
		}
	}

	out := strings.Join(lines, "\n")
	if strings.Contains(strings.ToLower(instructions), "bullet") {
		out = bulletize(out)
	}
	return out
}

func formatLine(words []string, r profileRules) string {
	out := make([]string, 0, len(words))
	sentenceStart := true

	for i, w := range words {
		if i == 0 && isListMarker(w) {
			out = append(out, w)
			continue
		}

		lead, core, trail := splitWord(w)
		if core == "" {
			out = append(out, w)
			continue
		}

		switch {
		case strings.HasPrefix(w, "`") || isURL(core):
			// left alone
		case r.code && isCode(core):
			core = "`" + core + "`"
		default:
			key := strings.ToLower(core)
			if rep, ok := r.replace[key]; ok {
				core = matchCase(core, rep)
			} else if rep, ok := baseReplace[key]; ok {
				core = matchCase(core, rep)
			} else if r.drop[key] && lead == "" && trail == "" {
				continue
			}
			if sentenceStart {
				core = capitalize(core)
			}
		}

		word := lead + core + trail
		out = append(out, word)
		sentenceStart = endsSentence(word)
	}
	return strings.Join(out, " ")
}

// splitWord separates leading and trailing punctuation from a word. A
// closing parenthesis stays with words that open one.
func splitWord(w string) (lead, core, trail string) {
	start := strings.IndexFunc(w, func(r rune) bool { return !strings.ContainsRune(`"'([{`, r) })
	if start < 0 {
		return w, "", ""
	}
	trailing := `.,;:!?"'])}`
	if strings.Contains(w[start:], "(") {
		trailing = `.,;:!?"'`
	}
	end := strings.LastIndexFunc(w, func(r rune) bool { return !strings.ContainsRune(trailing, r) })
	if end < start {
		return w[:start], "", w[start:]
	}
	_, size := utf8.DecodeRuneInString(w[end:])
	return w[:start], w[start : end+size], w[end+size:]
}

func isListMarker(w string) bool {
	switch w {
	case "-", "*", "•":
		return true
	}
	if len(w) < 2 {
		return false
	}
	last := w[len(w)-1]
	if last != '.' && last != ')' {
		return false
	}
	for _, r := range w[:len(w)-1] {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func isURL(core string) bool {
	return strings.Contains(core, "://") || strings.HasPrefix(strings.ToLower(core), "www.")
}

func isCode(core string) bool {
	switch {
	case len(core) > 2 && strings.HasSuffix(core, "()"):
		return true
	case strings.Contains(core, "_") && strings.IndexFunc(core, unicode.IsLetter) >= 0:
		return true
	case len(core) > 2 && strings.HasPrefix(core, "--"):
		return true
	case len(core) > 1 && strings.HasPrefix(core, "/"):
		return true
	case strings.Contains(core, "::"):
		return true
	}
	ext := strings.ToLower(path.Ext(core))
	return codeExtensions[ext] && len(core) > len(ext)
}

// matchCase returns rep capitalized when orig starts upper case.
func matchCase(orig, rep string) string {
	first, _ := utf8.DecodeRuneInString(orig)
	if unicode.IsUpper(first) {
		return capitalize(rep)
	}
	return rep
}

func capitalize(s string) string {
	first, size := utf8.DecodeRuneInString(s)
	if !unicode.IsLower(first) {
		return s
	}
	return string(unicode.ToUpper(first)) + s[size:]
}

func endsSentence(w string) bool {
	w = strings.TrimRight(w, `"')]}`)
	last, _ := utf8.DecodeLastRuneInString(w)
	return last == '.' || last == '!' || last == '?'
}

// bulletize turns every sentence of every paragraph line into a list item.
func bulletize(text string) string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 || isListMarker(fields[0]) {
			out = append(out, line)
			continue
		}
		for _, s := range splitSentences(line) {
			out = append(out, "- "+s)
		}
	}
	return strings.Join(out, "\n")
}

func splitSentences(line string) []string {
	var out []string
	var cur []string
	for _, w := range strings.Fields(line) {
		cur = append(cur, w)
		if endsSentence(w) {
			out = append(out, strings.Join(cur, " "))
			cur = nil
		}
	}
	if len(cur) > 0 {
		out = append(out, strings.Join(cur, " "))
	}
	return out
}
