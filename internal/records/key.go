package records

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Slug is the normalized player part of the storage key: lower case with
// runs of whitespace replaced by a single underscore.
func (k Key) Slug() string {
	return Slugify(k.Player)
}

// ID is the deterministic storage key of the collection.
func (k Key) ID() string {
	if k.Team == "" {
		return k.Slug()
	}
	return strings.ToLower(k.Team) + "/" + k.Slug()
}

func (k Key) String() string {
	return k.ID()
}

func Slugify(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "_")
}

// DisplayName reverses Slugify as far as it can: "jane_doe" becomes "Jane Doe".
func DisplayName(slug string) string {
	caser := cases.Title(language.English)
	return caser.String(strings.ReplaceAll(slug, "_", " "))
}

// Teams is the closed set of team identifiers accepted in keys.
type Teams struct {
	canonical map[string]string
	ordered   []string
}

func NewTeams(names []string) Teams {
	t := Teams{canonical: make(map[string]string)}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, dup := t.canonical[strings.ToLower(n)]; dup {
			continue
		}
		t.canonical[strings.ToLower(n)] = n
		t.ordered = append(t.ordered, n)
	}
	return t
}

func (t Teams) Names() []string {
	return append([]string(nil), t.ordered...)
}

// Canonical returns the configured spelling of team. An empty team is
// returned unchanged.
func (t Teams) Canonical(team string) (string, error) {
	team = strings.TrimSpace(team)
	if team == "" {
		return "", nil
	}
	canonical, ok := t.canonical[strings.ToLower(team)]
	if !ok {
		return "", ErrUnknownTeam
	}
	return canonical, nil
}

// Key builds a validated key. An empty team selects single-team mode.
// Names that could address another path or collection are rejected.
func (t Teams) Key(player, team string) (Key, error) {
	player = strings.Join(strings.Fields(player), " ")
	if !validPlayerName(player) {
		return Key{}, ErrInvalidPlayer
	}
	team, err := t.Canonical(team)
	if err != nil {
		return Key{}, err
	}
	return Key{Player: player, Team: team}, nil
}

// validPlayerName rejects names that are empty or could act as a path.
// Team IDs contain "/", so team-less IDs never collide with them.
func validPlayerName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, "/\\\x00")
}
