// Package story holds the script: every piece of text the page shows and the
// links that drive it.
package story

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed script.yaml
var defaultScript []byte

type Action string

const (
	ActionCollect Action = "collect" // add Item to the inventory
	ActionListen  Action = "listen"  // go to the door if Item is held
)

type Link struct {
	Action Action `yaml:"action"`
	Item   string `yaml:"item"`
}

type Word struct {
	Key   string `yaml:"key"`
	Label string `yaml:"label,omitempty"`
	Text  string `yaml:"text"`
	Link  *Link  `yaml:"link,omitempty"`
}

type Door struct {
	Text   string `yaml:"text"`
	Prompt string `yaml:"prompt"`
}

type Choice struct {
	Key    string `yaml:"key"`
	Label  string `yaml:"label,omitempty"`
	Text   string `yaml:"text"`
	Puzzle bool   `yaml:"puzzle,omitempty"`
}

type Notices struct {
	Obtained    string `yaml:"obtained"` // format with the item name
	MissingItem string `yaml:"missing_item"`
}

type Completion struct {
	Title string `yaml:"title"`
	Body  string `yaml:"body"`
}

type Script struct {
	Title      string     `yaml:"title"`
	Start      string     `yaml:"start"`
	Words      []Word     `yaml:"words"`
	Door       Door       `yaml:"door"`
	Monologue  []string   `yaml:"monologue"`
	Choices    []Choice   `yaml:"choices"`
	Notices    Notices    `yaml:"notices"`
	Completion Completion `yaml:"completion"`
}

// Default returns the embedded script.
func Default() (*Script, error) {
	return Parse(defaultScript)
}

// Load reads a script from path, or the embedded one when path is empty.
func Load(path string) (*Script, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}

	title := cases.Title(language.English)
	for i := range s.Words {
		if s.Words[i].Label == "" {
			s.Words[i].Label = title.String(s.Words[i].Key)
		}
	}
	for i := range s.Choices {
		if s.Choices[i].Label == "" {
			s.Choices[i].Label = title.String(s.Choices[i].Key)
		}
	}
	if s.Start == "" {
		s.Start = "Begin"
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the script is playable end to end.
func (s *Script) Validate() error {
	var errs []error

	if len(s.Words) == 0 {
		errs = append(errs, errors.New("script has no words"))
	}
	seen := make(map[string]bool)
	for _, w := range s.Words {
		if w.Key == "" {
			errs = append(errs, errors.New("word with empty key"))
			continue
		}
		if seen[w.Key] {
			errs = append(errs, fmt.Errorf("duplicate word %q", w.Key))
		}
		seen[w.Key] = true

		if w.Link == nil {
			continue
		}
		if _, _, _, ok := SplitLink(w.Text); !ok {
			errs = append(errs, fmt.Errorf("word %q has a link but no [bracketed] text", w.Key))
		}
		switch w.Link.Action {
		case ActionCollect, ActionListen:
			if w.Link.Item == "" {
				errs = append(errs, fmt.Errorf("word %q link needs an item", w.Key))
			}
		default:
			errs = append(errs, fmt.Errorf("word %q has unknown link action %q", w.Key, w.Link.Action))
		}
	}

	if len(s.Choices) == 0 {
		errs = append(errs, errors.New("script has no choices"))
	}
	seen = make(map[string]bool)
	for _, c := range s.Choices {
		if seen[c.Key] {
			errs = append(errs, fmt.Errorf("duplicate choice %q", c.Key))
		}
		seen[c.Key] = true
	}

	if !strings.Contains(s.Notices.Obtained, "%s") {
		errs = append(errs, errors.New("obtained notice must contain %s"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid script: %w", errors.Join(errs...))
	}
	return nil
}

func (s *Script) Word(key string) (Word, bool) {
	for _, w := range s.Words {
		if w.Key == key {
			return w, true
		}
	}
	return Word{}, false
}

func (s *Script) Choice(key string) (Choice, bool) {
	for _, c := range s.Choices {
		if c.Key == key {
			return c, true
		}
	}
	return Choice{}, false
}

// ObtainedNotice is the notice shown when item is collected. The first %s in
// the template is replaced by the item; nothing else in it is interpreted.
func (s *Script) ObtainedNotice(item string) string {
	return strings.Replace(s.Notices.Obtained, "%s", item, 1)
}

// SplitLink splits text around its first [bracketed] link word.
func SplitLink(text string) (before, link, after string, ok bool) {
	open := strings.Index(text, "[")
	if open < 0 {
		return text, "", "", false
	}
	end := strings.Index(text[open:], "]")
	if end < 0 {
		return text, "", "", false
	}
	end += open
	return text[:open], text[open+1 : end], text[end+1:], true
}

// Plain strips link brackets from text.
func Plain(text string) string {
	before, link, after, ok := SplitLink(text)
	if !ok {
		return text
	}
	return before + link + after
}
