package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"strings"
	"time"

	"decryptrace/internal/catalog"
	"decryptrace/internal/model"
	"decryptrace/internal/repository"
)

const incorrectMessage = "Not quite right! Keep trying - you're getting closer!"

var successMessages = []string{
	"Brilliant! You cracked the code!",
	"Outstanding! Your decryption skills are impressive!",
	"Excellent work! You've successfully decrypted the message!",
	"Amazing! You've solved the encryption puzzle!",
	"Fantastic! Your code-breaking abilities are top-notch!",
}

// SubmissionService validates guesses and admits winners
type SubmissionService struct {
	gameSvc        *GameService
	messageRepo    repository.MessageRepo
	submissionRepo repository.SubmissionRepo
	winnerRepo     repository.WinnerRepo
	teamRepo       repository.TeamRepo
	broadcaster    Broadcaster
	now            func() time.Time
}

// NewSubmissionService creates a new submission service
func NewSubmissionService(
	gameSvc *GameService,
	messageRepo repository.MessageRepo,
	submissionRepo repository.SubmissionRepo,
	winnerRepo repository.WinnerRepo,
	teamRepo repository.TeamRepo,
) *SubmissionService {
	return &SubmissionService{
		gameSvc:        gameSvc,
		messageRepo:    messageRepo,
		submissionRepo: submissionRepo,
		winnerRepo:     winnerRepo,
		teamRepo:       teamRepo,
		now:            time.Now,
	}
}

// SetBroadcaster sets the broadcaster for winner events
func (s *SubmissionService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

func rejected(outcome model.Outcome, message string) *model.SubmissionResult {
	return &model.SubmissionResult{Outcome: outcome, Message: message}
}

// Submit checks one guess. Expected rejections are results; only storage
// failures are returned as errors.
func (s *SubmissionService) Submit(ctx context.Context, teamName, messageID, solution string) (*model.SubmissionResult, error) {
	teamName = strings.TrimSpace(teamName)
	messageID = strings.TrimSpace(messageID)
	if teamName == "" || messageID == "" || strings.TrimSpace(solution) == "" {
		return rejected(model.OutcomeMissingFields, "Missing required fields"), nil
	}

	state, err := s.gameSvc.Current(ctx)
	if err != nil {
		return nil, err
	}
	if !state.Active {
		return rejected(model.OutcomeGameNotActive, "The game is not active at the moment."), nil
	}
	if state.IsPaused {
		return rejected(model.OutcomeGamePaused, "The game is currently paused."), nil
	}

	team, err := s.teamRepo.GetByName(ctx, teamName)
	if err != nil {
		return nil, fmt.Errorf("failed to load team: %w", err)
	}
	if team == nil {
		// a deleted team's token stays valid until it expires
		return rejected(model.OutcomeTeamNotFound, "Your team is not enrolled."), nil
	}
	if team.IsBlocked {
		return rejected(model.OutcomeTeamBlocked, blockedMessage(team.BlockReason)), nil
	}

	solved, err := s.submissionRepo.HasCorrect(ctx, teamName, messageID)
	if err != nil {
		return nil, fmt.Errorf("failed to check submissions: %w", err)
	}
	if solved {
		return rejected(model.OutcomeAlreadySolved, "You've already solved this challenge!"), nil
	}

	msg, err := s.lookupMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	correct := msg != nil && solutionsMatch(msg.OriginalText, solution)

	err = s.submissionRepo.Create(ctx, &model.DecryptionSubmission{
		TeamName:  teamName,
		MessageID: messageID,
		Solution:  solution,
		IsCorrect: correct,
		Timestamp: s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record submission: %w", err)
	}

	if !correct {
		return rejected(model.OutcomeIncorrect, incorrectMessage), nil
	}
	return s.admit(ctx, teamName, messageID)
}

func (s *SubmissionService) lookupMessage(ctx context.Context, id string) (*model.EncryptedMessage, error) {
	msg, err := s.messageRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load message: %w", err)
	}
	if msg == nil && id == catalog.SyntheticID {
		return catalog.Synthetic(), nil
	}
	return msg, nil
}

// admit places a correct team on the roster. The unique position index
// decides concurrent admissions; the loser is told it was beaten.
func (s *SubmissionService) admit(ctx context.Context, teamName, messageID string) (*model.SubmissionResult, error) {
	won, err := s.winnerRepo.ExistsForTeam(ctx, teamName)
	if err != nil {
		return nil, fmt.Errorf("failed to check winners: %w", err)
	}
	if won {
		return correctButRejected(model.OutcomeAlreadySolved, "You've already solved this challenge!"), nil
	}

	count, err := s.winnerRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count winners: %w", err)
	}
	if count >= model.MaxWinners {
		return correctButRejected(model.OutcomeBeaten, "Correct, but all winner slots have already been claimed."), nil
	}

	position := count + 1
	err = s.winnerRepo.Insert(ctx, &model.Winner{
		TeamName:  teamName,
		Position:  position,
		MessageID: messageID,
		Timestamp: s.now(),
	})
	switch {
	case errors.Is(err, repository.ErrPositionTaken):
		log.Printf("Team %s lost position %d to a concurrent submission", teamName, position)
		return correctButRejected(model.OutcomeBeaten,
			fmt.Sprintf("Correct, but another team beat you to position %d.", position)), nil
	case errors.Is(err, repository.ErrAlreadyWinner):
		return correctButRejected(model.OutcomeAlreadySolved, "You've already solved this challenge!"), nil
	case err != nil:
		return nil, fmt.Errorf("failed to record winner: %w", err)
	}

	log.Printf("Team %s admitted as winner #%d", teamName, position)
	s.broadcast(model.WinnerAdmitted{TeamName: teamName, IsCorrect: true, Position: position})
	if position == model.MaxWinners {
		s.announceComplete(ctx)
	}

	return &model.SubmissionResult{
		Success:   true,
		Outcome:   model.OutcomeAccepted,
		IsCorrect: true,
		Position:  position,
		Message:   fmt.Sprintf("%s You are winner #%d.", successMessages[rand.IntN(len(successMessages))], position),
	}, nil
}

func (s *SubmissionService) announceComplete(ctx context.Context) {
	winners, err := s.winnerRepo.List(ctx)
	if err != nil {
		// clients still see gameIsFull on their next snapshot
		log.Printf("failed to list winners for game complete: %v", err)
		return
	}
	log.Println("Winner roster full, game complete")
	s.broadcast(model.GameComplete{Winners: winners})
}

func (s *SubmissionService) broadcast(event model.Event) {
	if s.broadcaster != nil {
		s.broadcaster.BroadcastAll(event)
	}
}

func correctButRejected(outcome model.Outcome, message string) *model.SubmissionResult {
	return &model.SubmissionResult{Outcome: outcome, Message: message, IsCorrect: true}
}

func blockedMessage(reason string) string {
	if reason == "" {
		return "Your team has been blocked."
	}
	return "Your team has been blocked: " + reason
}
