package github

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Reaction is an issue reaction content type.
type Reaction int

const (
	ReactionThumbsUp Reaction = iota
	ReactionThumbsDown
	ReactionLaugh
	ReactionConfused
	ReactionHeart
	ReactionHooray
	ReactionRocket
	ReactionEyes
)

var reactionNames = []struct {
	reaction Reaction
	name     string
}{
	{ReactionThumbsUp, "+1"},
	{ReactionThumbsDown, "-1"},
	{ReactionLaugh, "laugh"},
	{ReactionConfused, "confused"},
	{ReactionHeart, "heart"},
	{ReactionHooray, "hooray"},
	{ReactionRocket, "rocket"},
	{ReactionEyes, "eyes"},
}

// ReactionNames lists the API names in declaration order.
func ReactionNames() []string {
	names := make([]string, 0, len(reactionNames))
	for _, r := range reactionNames {
		names = append(names, r.name)
	}
	return names
}

func ParseReaction(s string) (Reaction, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, r := range reactionNames {
		if r.name == s {
			return r.reaction, nil
		}
	}
	return 0, fmt.Errorf("%q is not a valid reaction (want one of %s)", s, strings.Join(ReactionNames(), ", "))
}

func (r Reaction) String() string {
	for _, e := range reactionNames {
		if e.reaction == r {
			return e.name
		}
	}
	return fmt.Sprintf("Reaction(%d)", int(r))
}

func (r Reaction) MarshalJSON() ([]byte, error) {
	for _, e := range reactionNames {
		if e.reaction == r {
			return json.Marshal(e.name)
		}
	}
	return nil, fmt.Errorf("unknown reaction %d", int(r))
}

func (r *Reaction) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return r.Set(s)
}

// Set implements pflag.Value.
func (r *Reaction) Set(s string) error {
	v, err := ParseReaction(s)
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// Type implements pflag.Value.
func (r *Reaction) Type() string {
	return "reaction"
}
