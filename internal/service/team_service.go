package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"decryptrace/internal/model"
	"decryptrace/internal/repository"
)

const defaultBlockReason = "Blocked by administrator"

// TeamService handles enrollment and admin moderation of teams
type TeamService struct {
	teamRepo       repository.TeamRepo
	submissionRepo repository.SubmissionRepo
	assignmentSvc  *AssignmentService
	authSvc        *AuthService
	broadcaster    Broadcaster
	adminTeams     map[string]bool
}

// NewTeamService creates a new team service
func NewTeamService(
	teamRepo repository.TeamRepo,
	submissionRepo repository.SubmissionRepo,
	assignmentSvc *AssignmentService,
	authSvc *AuthService,
	adminTeams []string,
) *TeamService {
	admins := make(map[string]bool, len(adminTeams))
	for _, name := range adminTeams {
		admins[name] = true
	}
	return &TeamService{
		teamRepo:       teamRepo,
		submissionRepo: submissionRepo,
		assignmentSvc:  assignmentSvc,
		authSvc:        authSvc,
		adminTeams:     admins,
	}
}

// SetBroadcaster sets the broadcaster for team status events
func (s *TeamService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Enroll registers a team and issues its token
func (s *TeamService) Enroll(ctx context.Context, teamName, email string) (*model.EnrollResponse, error) {
	teamName = strings.TrimSpace(teamName)
	email = strings.ToLower(strings.TrimSpace(email))
	if teamName == "" || email == "" {
		return nil, ErrMissingFields
	}

	team := &model.Team{TeamName: teamName, Email: email, IsAdmin: s.adminTeams[teamName]}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		if errors.Is(err, repository.ErrTeamNameTaken) || errors.Is(err, repository.ErrEmailTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	token, err := s.authSvc.GenerateTeamToken(teamName)
	if err != nil {
		return nil, fmt.Errorf("failed to issue team token: %w", err)
	}

	log.Printf("Team %s enrolled", teamName)
	return &model.EnrollResponse{Team: team, Token: token}, nil
}

// Check reports whether a team is enrolled and allowed to play
func (s *TeamService) Check(ctx context.Context, teamName string) (*model.TeamStatus, error) {
	team, err := s.teamRepo.GetByName(ctx, strings.TrimSpace(teamName))
	if err != nil {
		return nil, fmt.Errorf("failed to load team: %w", err)
	}
	status := &model.TeamStatus{TeamName: teamName}
	if team != nil {
		status.Enrolled = true
		status.IsBlocked = team.IsBlocked
		status.BlockReason = team.BlockReason
	}
	return status, nil
}

// List returns every team
func (s *TeamService) List(ctx context.Context) ([]*model.Team, error) {
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return teams, nil
}

// Block denies further submissions from a team and notifies it
func (s *TeamService) Block(ctx context.Context, teamName, reason string) (*model.Team, error) {
	team, err := s.teamRepo.GetByName(ctx, teamName)
	if err != nil {
		return nil, fmt.Errorf("failed to load team: %w", err)
	}
	if team == nil {
		return nil, ErrTeamNotFound
	}
	if team.IsAdmin {
		return nil, ErrCannotBlockAdmin
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = defaultBlockReason
	}
	updated, err := s.teamRepo.SetBlocked(ctx, teamName, true, reason)
	if err != nil {
		return nil, fmt.Errorf("failed to block team: %w", err)
	}
	if updated == nil {
		return nil, ErrTeamNotFound
	}

	log.Printf("Team %s blocked: %s", teamName, reason)
	s.notifyStatus(teamName, true, "Your team has been blocked: "+reason)
	return updated, nil
}

// Unblock lets a team submit again
func (s *TeamService) Unblock(ctx context.Context, teamName string) (*model.Team, error) {
	updated, err := s.teamRepo.SetBlocked(ctx, teamName, false, "")
	if err != nil {
		return nil, fmt.Errorf("failed to unblock team: %w", err)
	}
	if updated == nil {
		return nil, ErrTeamNotFound
	}

	log.Printf("Team %s unblocked", teamName)
	s.notifyStatus(teamName, false, "Your team has been unblocked.")
	return updated, nil
}

// Delete removes a team with its submissions and assignment. Roster entries stay.
func (s *TeamService) Delete(ctx context.Context, teamName string) error {
	deleted, err := s.teamRepo.DeleteByName(ctx, teamName)
	if err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}
	if !deleted {
		return ErrTeamNotFound
	}
	if err := s.submissionRepo.DeleteByTeam(ctx, teamName); err != nil {
		return fmt.Errorf("failed to delete team submissions: %w", err)
	}
	if err := s.assignmentSvc.Release(ctx, teamName); err != nil {
		return err
	}

	log.Printf("Team %s deleted", teamName)
	return nil
}

func (s *TeamService) notifyStatus(teamName string, blocked bool, message string) {
	if s.broadcaster == nil {
		return
	}
	// every client tracks block state, the team's own included
	s.broadcaster.BroadcastAll(model.TeamBlocked{TeamName: teamName, IsBlocked: blocked, Message: message})
}
