package service

import (
	"context"
	"fmt"
	"log"
	"time"
	"unicode/utf16"

	"decryptrace/internal/cache"
	"decryptrace/internal/catalog"
	"decryptrace/internal/model"
	"decryptrace/internal/repository"
)

// AssignmentService binds each team to exactly one pool message
type AssignmentService struct {
	messageRepo repository.MessageRepo
	assignments cache.AssignmentCache
	broadcaster Broadcaster
	now         func() time.Time
}

// NewAssignmentService creates a new assignment service
func NewAssignmentService(messageRepo repository.MessageRepo, assignments cache.AssignmentCache) *AssignmentService {
	return &AssignmentService{
		messageRepo: messageRepo,
		assignments: assignments,
		now:         time.Now,
	}
}

// SetBroadcaster sets the broadcaster for assignment notices
func (s *AssignmentService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

type resolveTier struct {
	name string
	fn   func(ctx context.Context, teamName string) (*model.EncryptedMessage, error)
}

func (s *AssignmentService) tiers() []resolveTier {
	return []resolveTier{
		{"existing", s.existing},
		{"pool", s.fromPool},
		{"active", s.fromActive},
		{"default", s.fromDefault},
	}
}

// Resolve returns the team's message, assigning one on first call. A tier
// returning nil defers to the next; a storage error ends the chain with the
// synthetic message so the team is never left without a challenge.
func (s *AssignmentService) Resolve(ctx context.Context, teamName string) *model.EncryptedMessage {
	for _, tier := range s.tiers() {
		msg, err := tier.fn(ctx, teamName)
		if err != nil {
			log.Printf("assignment tier %s failed for team %s: %v", tier.name, teamName, err)
			break
		}
		if msg != nil {
			return msg
		}
	}
	return catalog.Synthetic()
}

// existing returns the message already holding the team, if any
func (s *AssignmentService) existing(ctx context.Context, teamName string) (*model.EncryptedMessage, error) {
	if id, err := s.assignments.Get(ctx, teamName); err != nil {
		log.Printf("assignment cache read failed for team %s: %v", teamName, err)
	} else if id != "" {
		msg, err := s.messageRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if msg != nil && msg.AssignedTo(teamName) {
			return msg, nil
		}
	}
	return s.settle(ctx, teamName)
}

// fromPool picks by stable hash so retries land on the same message before it is persisted
func (s *AssignmentService) fromPool(ctx context.Context, teamName string) (*model.EncryptedMessage, error) {
	pool, err := s.messageRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, nil
	}

	pick := pool[teamIndex(teamName, len(pool))]
	if claimed, err := s.assignments.Claim(ctx, teamName, pick.ID); err != nil {
		log.Printf("assignment cache claim failed for team %s: %v", teamName, err)
	} else if claimed != pick.ID {
		// a concurrent request saw a different pool; converge on its choice
		for _, m := range pool {
			if m.ID == claimed {
				pick = m
				break
			}
		}
	}
	return s.assign(ctx, teamName, pick)
}

// fromActive falls back to the legacy globally active message
func (s *AssignmentService) fromActive(ctx context.Context, teamName string) (*model.EncryptedMessage, error) {
	msg, err := s.messageRepo.FindActive(ctx)
	if err != nil || msg == nil {
		return nil, err
	}
	return s.assign(ctx, teamName, msg)
}

// fromDefault persists the hardcoded message already holding the team
func (s *AssignmentService) fromDefault(ctx context.Context, teamName string) (*model.EncryptedMessage, error) {
	msg := catalog.DefaultMessage()
	msg.ActiveForTeams = []string{teamName}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, err
	}
	settled, err := s.settle(ctx, teamName)
	if err != nil {
		return nil, err
	}
	if settled != nil && settled.ID == msg.ID {
		s.notifyAssigned(teamName, msg.ID)
	}
	return settled, nil
}

// assign set-inserts the team into msg and settles any concurrent double assignment
func (s *AssignmentService) assign(ctx context.Context, teamName string, msg *model.EncryptedMessage) (*model.EncryptedMessage, error) {
	added, err := s.messageRepo.AddTeam(ctx, msg.ID, teamName)
	if err != nil {
		return nil, fmt.Errorf("failed to assign message: %w", err)
	}

	settled, err := s.settle(ctx, teamName)
	if err != nil {
		return nil, err
	}
	if settled == nil {
		// pool was reseeded underneath us
		return nil, nil
	}
	if added && settled.ID == msg.ID {
		s.notifyAssigned(teamName, msg.ID)
	}
	return settled, nil
}

// settle keeps the oldest message holding the team and pulls the team from the rest
func (s *AssignmentService) settle(ctx context.Context, teamName string) (*model.EncryptedMessage, error) {
	held, err := s.messageRepo.FindByTeam(ctx, teamName)
	if err != nil {
		return nil, err
	}
	if len(held) == 0 {
		return nil, nil
	}

	keep := held[0]
	for _, extra := range held[1:] {
		if err := s.messageRepo.RemoveTeam(ctx, extra.ID, teamName); err != nil {
			return nil, fmt.Errorf("failed to release duplicate assignment: %w", err)
		}
		log.Printf("Released duplicate assignment of message %s for team %s", extra.ID, teamName)
	}

	if err := s.cacheAssignment(ctx, teamName, keep.ID); err != nil {
		log.Printf("assignment cache write failed for team %s: %v", teamName, err)
	}
	return keep, nil
}

func (s *AssignmentService) cacheAssignment(ctx context.Context, teamName, messageID string) error {
	claimed, err := s.assignments.Claim(ctx, teamName, messageID)
	if err != nil {
		return err
	}
	if claimed == messageID {
		return nil
	}
	// storage is authoritative; overwrite a stale claim
	if err := s.assignments.Release(ctx, teamName); err != nil {
		return err
	}
	_, err = s.assignments.Claim(ctx, teamName, messageID)
	return err
}

// Release drops the team's assignment everywhere
func (s *AssignmentService) Release(ctx context.Context, teamName string) error {
	if err := s.messageRepo.RemoveTeam(ctx, "", teamName); err != nil {
		return fmt.Errorf("failed to release assignment: %w", err)
	}
	if err := s.assignments.Release(ctx, teamName); err != nil {
		log.Printf("assignment cache release failed for team %s: %v", teamName, err)
	}
	return nil
}

// Messages lists the pool with assignment sets for the admin view
func (s *AssignmentService) Messages(ctx context.Context) ([]*model.EncryptedMessage, error) {
	msgs, err := s.messageRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return msgs, nil
}

// ActivateMessage moves the legacy global flag. Gameplay reads assignment sets, not this flag.
func (s *AssignmentService) ActivateMessage(ctx context.Context, id string) error {
	found, err := s.messageRepo.SetActive(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to activate message: %w", err)
	}
	if !found {
		return ErrMessageNotFound
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastAll(model.ActiveMessageChanged{MessageID: id})
	}
	return nil
}

// EnsurePool seeds the pool when it is empty and reports whether it did
func (s *AssignmentService) EnsurePool(ctx context.Context) (bool, error) {
	n, err := s.messageRepo.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to count messages: %w", err)
	}
	if n > 0 {
		return false, nil
	}
	if err := s.messageRepo.Reseed(ctx, catalog.SeedMessages()); err != nil {
		return false, fmt.Errorf("failed to seed messages: %w", err)
	}
	return true, nil
}

func (s *AssignmentService) notifyAssigned(teamName, messageID string) {
	log.Printf("Assigned message %s to team %s", messageID, teamName)
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToTeam(teamName, model.TeamAssigned{
			TeamName:  teamName,
			MessageID: messageID,
			Timestamp: s.now(),
		})
	}
}

// teamIndex maps a team name onto [0, n) with the 31-multiplier string hash
// over UTF-16 code units, wrapped to int32 like browser clients compute it.
func teamIndex(teamName string, n int) int {
	var h int32
	for _, c := range utf16.Encode([]rune(teamName)) {
		h = (h << 5) - h + int32(c)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return int(v % int64(n))
}
