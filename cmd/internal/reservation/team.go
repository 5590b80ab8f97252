package reservation

import (
	"net/mail"
	"strings"
)

const (
	MaxTeamNameLen = 100
	MaxNameLen     = 100
	MaxEmailLen    = 254
	MaxMembers     = 4
)

// Member is an additional team member besides the lead.
type Member struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Team is the registration payload a holder submits with a commit.
type Team struct {
	Name        string   `json:"name"`
	LeadName    string   `json:"leadName"`
	LeadEmail   string   `json:"leadEmail"`
	Institution string   `json:"institution,omitempty"`
	Members     []Member `json:"members,omitempty"`
}

// TeamUpdate carries the fields a holder wants to change. Nil fields are kept.
type TeamUpdate struct {
	Name        *string
	LeadName    *string
	LeadEmail   *string
	Institution *string
	Members     *[]Member
}

// Empty reports whether the update changes nothing.
func (u TeamUpdate) Empty() bool {
	return u.Name == nil && u.LeadName == nil && u.LeadEmail == nil && u.Institution == nil && u.Members == nil
}

func (u TeamUpdate) apply(t Team) Team {
	if u.Name != nil {
		t.Name = *u.Name
	}
	if u.LeadName != nil {
		t.LeadName = *u.LeadName
	}
	if u.LeadEmail != nil {
		t.LeadEmail = *u.LeadEmail
	}
	if u.Institution != nil {
		t.Institution = *u.Institution
	}
	if u.Members != nil {
		t.Members = append([]Member(nil), (*u.Members)...)
	}
	return t
}

// NormalizeTeam trims every field, lower-cases emails and validates the result.
// The returned message describes the first problem found.
func NormalizeTeam(t Team) (Team, string, bool) {
	out := Team{
		Name:        strings.TrimSpace(t.Name),
		LeadName:    strings.TrimSpace(t.LeadName),
		LeadEmail:   normalizeEmail(t.LeadEmail),
		Institution: strings.TrimSpace(t.Institution),
	}

	switch {
	case out.Name == "":
		return Team{}, "team name is required", false
	case len(out.Name) > MaxTeamNameLen:
		return Team{}, "team name is too long", false
	case out.LeadName == "":
		return Team{}, "lead name is required", false
	case len(out.LeadName) > MaxNameLen:
		return Team{}, "lead name is too long", false
	case !validEmail(out.LeadEmail):
		return Team{}, "lead email is invalid", false
	case len(out.Institution) > MaxNameLen:
		return Team{}, "institution is too long", false
	case len(t.Members) > MaxMembers:
		return Team{}, "too many members", false
	}

	seen := map[string]struct{}{out.LeadEmail: {}}
	for _, m := range t.Members {
		nm := Member{Name: strings.TrimSpace(m.Name), Email: normalizeEmail(m.Email)}
		if nm.Name == "" || len(nm.Name) > MaxNameLen {
			return Team{}, "member name is invalid", false
		}
		if !validEmail(nm.Email) {
			return Team{}, "member email is invalid", false
		}
		if _, dup := seen[nm.Email]; dup {
			return Team{}, "duplicate member email", false
		}
		seen[nm.Email] = struct{}{}
		out.Members = append(out.Members, nm)
	}
	return out, "", true
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func validEmail(s string) bool {
	if s == "" || len(s) > MaxEmailLen {
		return false
	}
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
