package registrationapi

import (
	"time"

	"github.com/dustin/go-humanize"

	"github.com/yatinannam/foundathon-landing-sub000/cmd/internal/catalog"
	"github.com/yatinannam/foundathon-landing-sub000/cmd/internal/reservation"
)

type lockRequest struct {
	ProblemStatementID string `json:"problem_statement_id"`
}

type memberJSON struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type teamJSON struct {
	Name        string       `json:"name"`
	LeadName    string       `json:"lead_name"`
	LeadEmail   string       `json:"lead_email"`
	Institution string       `json:"institution,omitempty"`
	Members     []memberJSON `json:"members"`
}

type commitRequest struct {
	ProblemStatementID string   `json:"problem_statement_id"`
	LockToken          string   `json:"lock_token"`
	Team               teamJSON `json:"team"`
}

type attachRequest struct {
	ProblemStatementID string `json:"problem_statement_id"`
	LockToken          string `json:"lock_token"`
}

type teamPatchRequest struct {
	Name        *string       `json:"name"`
	LeadName    *string       `json:"lead_name"`
	LeadEmail   *string       `json:"lead_email"`
	Institution *string       `json:"institution"`
	Members     *[]memberJSON `json:"members"`
}

type problemStatementJSON struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Summary string `json:"summary,omitempty"`
}

type lockResponse struct {
	LockToken        string               `json:"lock_token"`
	IssuedAt         time.Time            `json:"issued_at"`
	ExpiresAt        time.Time            `json:"expires_at"`
	ExpiresIn        string               `json:"expires_in"`
	ProblemStatement problemStatementJSON `json:"problem_statement"`
	Taken            int                  `json:"taken"`
	Capacity         int                  `json:"capacity"`
}

type lockedProblemStatementJSON struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	LockedAt         time.Time `json:"locked_at"`
	CapacitySnapshot int       `json:"capacity_snapshot"`
}

type registrationResponse struct {
	ID               string                      `json:"id"`
	Team             teamJSON                    `json:"team"`
	ProblemStatement *lockedProblemStatementJSON `json:"problem_statement"`
	CreatedAt        time.Time                   `json:"created_at"`
	UpdatedAt        time.Time                   `json:"updated_at"`
}

type availabilityJSON struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Summary   string `json:"summary,omitempty"`
	Taken     int    `json:"taken"`
	Capacity  int    `json:"capacity"`
	Remaining int    `json:"remaining"`
	Full      bool   `json:"full"`
}

type availabilityResponse struct {
	Capacity          int                `json:"capacity"`
	ProblemStatements []availabilityJSON `json:"problem_statements"`
}

func toProblemStatementJSON(ps catalog.ProblemStatement) problemStatementJSON {
	return problemStatementJSON{ID: ps.ID, Title: ps.Title, Summary: ps.Summary}
}

func toLockResponse(g reservation.Grant, now time.Time) lockResponse {
	return lockResponse{
		LockToken:        g.Token,
		IssuedAt:         g.IssuedAt.UTC(),
		ExpiresAt:        g.ExpiresAt.UTC(),
		ExpiresIn:        humanize.RelTime(g.ExpiresAt, now, "ago", "from now"),
		ProblemStatement: toProblemStatementJSON(g.ProblemStatement),
		Taken:            g.Taken,
		Capacity:         g.Capacity,
	}
}

func toTeam(in teamJSON) reservation.Team {
	return reservation.Team{
		Name:        in.Name,
		LeadName:    in.LeadName,
		LeadEmail:   in.LeadEmail,
		Institution: in.Institution,
		Members:     toMembers(in.Members),
	}
}

func toMembers(in []memberJSON) []reservation.Member {
	if len(in) == 0 {
		return nil
	}
	out := make([]reservation.Member, 0, len(in))
	for _, m := range in {
		out = append(out, reservation.Member{Name: m.Name, Email: m.Email})
	}
	return out
}

func toTeamUpdate(in teamPatchRequest) reservation.TeamUpdate {
	upd := reservation.TeamUpdate{
		Name:        in.Name,
		LeadName:    in.LeadName,
		LeadEmail:   in.LeadEmail,
		Institution: in.Institution,
	}
	if in.Members != nil {
		members := toMembers(*in.Members)
		upd.Members = &members
	}
	return upd
}

func toRegistrationResponse(rec reservation.Record) registrationResponse {
	members := make([]memberJSON, 0, len(rec.Team.Members))
	for _, m := range rec.Team.Members {
		members = append(members, memberJSON{Name: m.Name, Email: m.Email})
	}
	out := registrationResponse{
		ID: rec.ID,
		Team: teamJSON{
			Name:        rec.Team.Name,
			LeadName:    rec.Team.LeadName,
			LeadEmail:   rec.Team.LeadEmail,
			Institution: rec.Team.Institution,
			Members:     members,
		},
		CreatedAt: rec.CreatedAt.UTC(),
		UpdatedAt: rec.UpdatedAt.UTC(),
	}
	if rec.Lock != nil {
		out.ProblemStatement = &lockedProblemStatementJSON{
			ID:               rec.Lock.ResourceID,
			Title:            rec.Lock.Title,
			LockedAt:         rec.Lock.LockedAt.UTC(),
			CapacitySnapshot: rec.Lock.CapacitySnapshot,
		}
	}
	return out
}

func toAvailabilityResponse(capacity int, view []reservation.Availability) availabilityResponse {
	out := availabilityResponse{Capacity: capacity, ProblemStatements: make([]availabilityJSON, 0, len(view))}
	for _, a := range view {
		out.ProblemStatements = append(out.ProblemStatements, availabilityJSON{
			ID:        a.ProblemStatement.ID,
			Title:     a.ProblemStatement.Title,
			Summary:   a.ProblemStatement.Summary,
			Taken:     a.Taken,
			Capacity:  a.Capacity,
			Remaining: a.Remaining,
			Full:      a.Full,
		})
	}
	return out
}
