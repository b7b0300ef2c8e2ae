package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/jwebster45206/branch-engine/pkg/actor"
	"github.com/jwebster45206/branch-engine/pkg/branch"
	"github.com/jwebster45206/branch-engine/pkg/check"
)

func main() {
	pcMode := flag.Bool("pc", false, "validate PC spec files instead of branch files")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [-pc] <file.json|dir>...\n", os.Args[0])
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}

	files, err := collectFiles(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	failed := 0
	for _, f := range files {
		v := &Validator{}
		if *pcMode {
			err = v.validatePCFile(f)
		} else {
			err = v.validateBranchFile(f)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			failed++
			continue
		}
		fmt.Printf("%s is valid\n", f)
	}
	if failed > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d files failed validation\n", failed, len(files))
		os.Exit(1)
	}
}

// collectFiles expands directories into the .json files they contain.
func collectFiles(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && filepath.Ext(path) == ".json" {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

// branchFile is the on-disk shape of a prepared branch.
type branchFile struct {
	Action   branch.Action                             `json:"action"`
	Decision branch.Decision                           `json:"decision"`
	Variants map[branch.Category]branch.OutcomeVariant `json:"variants"`
}

type Validator struct {
	errors []string
}

func (v *Validator) validateBranchFile(filename string) error {
	data, err := readJSON(filename)
	if err != nil {
		return err
	}

	v.errors = nil

	var bf branchFile
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&bf); err != nil {
		return fmt.Errorf("file %s failed strict JSON unmarshaling: %w", filename, err)
	}

	if _, err := branch.New(uuid.New(), bf.Action, bf.Decision, bf.Variants); err != nil {
		v.addError(err.Error())
	}
	v.validateAction(bf.Action)
	for c, variant := range bf.Variants {
		v.validateVariant(c, variant)
	}

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}
	return nil
}

func (v *Validator) validateAction(a branch.Action) {
	if a.Type == "" {
		v.addError("action has no action_type")
	}
	v.validateIDFormat("action actor_key", a.Actor)
	v.validateIDFormat("action target_key", a.Target)
}

func (v *Validator) validateVariant(c branch.Category, variant branch.OutcomeVariant) {
	if variant.Skill != "" && !check.IsKnownSkill(variant.Skill) {
		v.addError(fmt.Sprintf("%s skill '%s' is not a known skill or attribute", c, variant.Skill))
	}
	if variant.Attribute != "" && !check.IsAttribute(variant.Attribute) {
		v.addError(fmt.Sprintf("%s attribute '%s' is not a core attribute", c, variant.Attribute))
	}
	if strings.TrimSpace(variant.Narrative) == "" {
		v.addError(fmt.Sprintf("%s has an empty narrative", c))
	}
	if strings.Count(variant.Narrative, "[") != len(variant.Refs()) {
		v.addError(fmt.Sprintf("%s narrative has malformed [key:text] markup", c))
	}
	for i, d := range variant.Deltas {
		if d.Type == branch.DeltaUnknown {
			v.addError(fmt.Sprintf("%s delta %d has unknown delta_type '%s'", c, i, d.RawType))
			continue
		}
		v.validateIDFormat(fmt.Sprintf("%s delta %d target_key", c, i), d.Target)
	}
}

func (v *Validator) validatePCFile(filename string) error {
	if _, err := readJSON(filename); err != nil {
		return err
	}
	v.errors = nil

	pc, err := actor.LoadPC(filename)
	if err != nil {
		return fmt.Errorf("file %s: %w", filename, err)
	}
	v.validateIDFormat("PC id", pc.Spec.ID)
	for skill := range pc.Spec.Skills {
		if !check.IsKnownSkill(skill) {
			v.addError(fmt.Sprintf("skill '%s' is not a known skill", skill))
		}
	}

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}
	return nil
}

func readJSON(filename string) ([]byte, error) {
	if !strings.HasSuffix(filepath.Base(filename), ".json") {
		return nil, fmt.Errorf("file must have .json extension: %s", filename)
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("file %s contains invalid JSON", filename)
	}
	return data, nil
}

func (v *Validator) validateIDFormat(fieldName, id string) {
	if id == "" {
		return
	}
	if !isValidID(id) {
		v.addError(fmt.Sprintf("%s '%s' should be lowercase snake_case", fieldName, id))
	}
}

func (v *Validator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

var validIDRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)

func isValidID(id string) bool {
	return validIDRegex.MatchString(id)
}
