package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jwebster45206/quell/pkg/story"
	"gopkg.in/yaml.v3"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <script.yaml>\n", os.Args[0])
		os.Exit(1)
	}

	filename := os.Args[1]
	validator := &ScriptValidator{}

	if err := validator.validateFile(filename); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Script file is valid!")
}

// ScriptValidator lints a script beyond what story.Parse enforces.
type ScriptValidator struct {
	errors []string
}

func (v *ScriptValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	baseName := filepath.Base(filename)
	ext := filepath.Ext(baseName)
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("script file must have .yaml extension: %s", baseName)
	}
	if !isValidScriptFilename(strings.TrimSuffix(baseName, ext)) {
		return fmt.Errorf("script filename '%s' must be lowercase snake_case (e.g., my_script.yaml, not my-script.yaml)", baseName)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	return v.validate(data, filename)
}

func (v *ScriptValidator) validate(data []byte, filename string) error {
	v.errors = nil

	var strict story.Script
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&strict); err != nil {
		return fmt.Errorf("file %s failed strict YAML unmarshaling: %w", filename, err)
	}

	s, err := story.Parse(data)
	if err != nil {
		return fmt.Errorf("file %s: %w", filename, err)
	}

	v.validateScript(s)

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}
	return nil
}

func (v *ScriptValidator) validateScript(s *story.Script) {
	collectable := make(map[string]bool)
	for _, w := range s.Words {
		v.validateIDFormat("word key", w.Key)
		if w.Link != nil && w.Link.Action == story.ActionCollect {
			collectable[w.Link.Item] = true
		}
	}

	// A listen link whose item can never be collected makes the door unreachable.
	for _, w := range s.Words {
		if w.Link != nil && w.Link.Action == story.ActionListen && !collectable[w.Link.Item] {
			v.addError(fmt.Sprintf("word '%s' listens for '%s' but no word collects it", w.Key, w.Link.Item))
		}
	}

	puzzles := 0
	for _, c := range s.Choices {
		v.validateIDFormat("choice key", c.Key)
		if strings.TrimSpace(c.Text) == "" {
			v.addError(fmt.Sprintf("choice '%s' has no text", c.Key))
		}
		if c.Puzzle {
			puzzles++
		}
	}
	if puzzles > 1 {
		v.addError(fmt.Sprintf("%d choices open the puzzle; at most one may", puzzles))
	}

	if len(s.Monologue) == 0 {
		v.addError("monologue is empty")
	}
	if s.Door.Text == "" {
		v.addError("door has no text")
	}
}

func (v *ScriptValidator) validateIDFormat(fieldName, id string) {
	if id == "" {
		return
	}

	if !isValidID(id) {
		v.addError(fmt.Sprintf("%s '%s' should be lowercase snake_case", fieldName, id))
	}
}

func (v *ScriptValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

var validIDRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)

func isValidID(id string) bool {
	return validIDRegex.MatchString(id)
}

func isValidScriptFilename(name string) bool {
	// Allow 'x.' prefix for experimental scripts
	name = strings.TrimPrefix(name, "x.")
	return validIDRegex.MatchString(name)
}
