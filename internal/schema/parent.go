package schema

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Parent is the in-hand rendering style of a 2D model.
type Parent int

// The zero value is ParentHandheld.
const (
	ParentHandheld Parent = iota
	ParentGenerated
)

// DefaultParent is used when none is given.
const DefaultParent = ParentHandheld

// parentEncodings is the single table for CLI and JSON forms.
var parentEncodings = []struct {
	parent Parent
	name   string
	json   string
}{
	{ParentGenerated, "generated", "minecraft:item/generated"},
	{ParentHandheld, "handheld", "minecraft:item/handheld"},
}

// ParentNames lists the CLI forms in declaration order.
func ParentNames() []string {
	names := make([]string, 0, len(parentEncodings))
	for _, e := range parentEncodings {
		names = append(names, e.name)
	}
	return names
}

// ParseParent accepts the CLI form, case-insensitively.
func ParseParent(s string) (Parent, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, e := range parentEncodings {
		if e.name == s {
			return e.parent, nil
		}
	}
	return 0, fmt.Errorf("%q is not a valid model parent (want one of %s)", s, strings.Join(ParentNames(), ", "))
}

func (p Parent) String() string {
	for _, e := range parentEncodings {
		if e.parent == p {
			return e.name
		}
	}
	return fmt.Sprintf("Parent(%d)", int(p))
}

// JSONName is the model reference written to model files.
func (p Parent) JSONName() string {
	for _, e := range parentEncodings {
		if e.parent == p {
			return e.json
		}
	}
	return ""
}

func (p Parent) MarshalJSON() ([]byte, error) {
	name := p.JSONName()
	if name == "" {
		return nil, fmt.Errorf("unknown model parent %d", int(p))
	}
	return json.Marshal(name)
}

func (p *Parent) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for _, e := range parentEncodings {
		if e.json == s {
			*p = e.parent
			return nil
		}
	}
	return fmt.Errorf("unknown model parent %q", s)
}

// Set implements pflag.Value.
func (p *Parent) Set(s string) error {
	v, err := ParseParent(s)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Type implements pflag.Value.
func (p *Parent) Type() string {
	return "parent"
}
