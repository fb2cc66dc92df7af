package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"decryptrace/internal/cache"
	"decryptrace/internal/catalog"
	"decryptrace/internal/model"
	"decryptrace/internal/repository"

	"golang.org/x/sync/errgroup"
)

const maxTransitionAttempts = 3

// GameService owns every mutation of the shared game state
type GameService struct {
	stateRepo      repository.GameStateRepo
	winnerRepo     repository.WinnerRepo
	submissionRepo repository.SubmissionRepo
	messageRepo    repository.MessageRepo
	stateCache     cache.GameStateCache
	assignments    cache.AssignmentCache
	broadcaster    Broadcaster

	defaultDuration time.Duration
	timerDuration   time.Duration

	// serializes admin writers in this process; the version check covers other instances
	mu  sync.Mutex
	now func() time.Time
}

// NewGameService creates a new game service
func NewGameService(
	stateRepo repository.GameStateRepo,
	winnerRepo repository.WinnerRepo,
	submissionRepo repository.SubmissionRepo,
	messageRepo repository.MessageRepo,
	stateCache cache.GameStateCache,
	assignments cache.AssignmentCache,
	defaultDuration, timerDuration time.Duration,
) *GameService {
	return &GameService{
		stateRepo:       stateRepo,
		winnerRepo:      winnerRepo,
		submissionRepo:  submissionRepo,
		messageRepo:     messageRepo,
		stateCache:      stateCache,
		assignments:     assignments,
		defaultDuration: defaultDuration,
		timerDuration:   timerDuration,
		now:             time.Now,
	}
}

// SetBroadcaster sets the broadcaster for state events
func (s *GameService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Current reads the authoritative state from storage
func (s *GameService) Current(ctx context.Context) (*model.GameState, error) {
	state, err := s.stateRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load game state: %w", err)
	}
	return state, nil
}

// State serves reads from the cache and falls back to storage
func (s *GameService) State(ctx context.Context) (*model.GameState, error) {
	if state, err := s.stateCache.Get(ctx); err != nil {
		log.Printf("game state cache read failed: %v", err)
	} else if state != nil {
		return state, nil
	}

	state, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	s.cacheState(ctx, state)
	return state, nil
}

// Snapshot assembles the client view of the game at this instant
func (s *GameService) Snapshot(ctx context.Context) (*model.GameSnapshot, error) {
	var (
		state   *model.GameState
		winners int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		state, err = s.State(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		winners, err = s.winnerRepo.Count(gctx)
		if err != nil {
			return fmt.Errorf("failed to count winners: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return model.NewGameSnapshot(state, winners, s.now()), nil
}

// Winners returns the roster ordered by position
func (s *GameService) Winners(ctx context.Context) ([]*model.Winner, error) {
	winners, err := s.winnerRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list winners: %w", err)
	}
	return winners, nil
}

// Start begins a round with the default duration
func (s *GameService) Start(ctx context.Context) (*model.GameState, error) {
	return s.apply(ctx, command{kind: model.StateStart, duration: s.defaultDuration})
}

// StartWithTimer begins a round with an explicit countdown; zero means the timer default
func (s *GameService) StartWithTimer(ctx context.Context, d time.Duration) (*model.GameState, error) {
	if d == 0 {
		d = s.timerDuration
	}
	return s.apply(ctx, command{kind: model.StateStart, duration: d})
}

// Stop ends the round and clears the countdown
func (s *GameService) Stop(ctx context.Context) (*model.GameState, error) {
	return s.apply(ctx, command{kind: model.StateStop})
}

// Pause freezes the countdown
func (s *GameService) Pause(ctx context.Context) (*model.GameState, error) {
	return s.apply(ctx, command{kind: model.StatePause})
}

// Resume restarts the countdown from the frozen remainder
func (s *GameService) Resume(ctx context.Context) (*model.GameState, error) {
	return s.apply(ctx, command{kind: model.StateResume})
}

// ResetTimer restarts the countdown of a running round; zero means the timer default
func (s *GameService) ResetTimer(ctx context.Context, d time.Duration) (*model.GameState, error) {
	if d == 0 {
		d = s.timerDuration
	}
	return s.apply(ctx, command{kind: model.StateTimerReset, duration: d})
}

func (s *GameService) apply(ctx context.Context, cmd command) (*model.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for attempt := 1; ; attempt++ {
		cur, err := s.Current(ctx)
		if err != nil {
			return nil, err
		}

		now := s.now()
		next, err := transition(cur, cmd, now)
		if err != nil {
			return nil, err
		}

		err = s.stateRepo.CompareAndSwap(ctx, cur.Version, next)
		if errors.Is(err, repository.ErrStateConflict) && attempt < maxTransitionAttempts {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to save game state: %w", err)
		}

		s.cacheState(ctx, next)
		s.broadcast(model.NewStateChanged(cmd.kind, next, now))
		return next, nil
	}
}

// Reset wipes the round: state, roster, audit log, and pool with its assignments
func (s *GameService) Reset(ctx context.Context) (*model.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.stateRepo.Reset(gctx); err != nil {
			return fmt.Errorf("failed to reset game state: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := s.winnerRepo.DeleteAll(gctx); err != nil {
			return fmt.Errorf("failed to clear winners: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := s.submissionRepo.DeleteAll(gctx); err != nil {
			return fmt.Errorf("failed to clear submissions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := s.messageRepo.Reseed(gctx, catalog.SeedMessages()); err != nil {
			return fmt.Errorf("failed to reseed messages: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := s.assignments.Clear(ctx); err != nil {
		log.Printf("assignment cache clear failed: %v", err)
	}
	if err := s.stateCache.Delete(ctx); err != nil {
		log.Printf("game state cache delete failed: %v", err)
	}

	state, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	s.cacheState(ctx, state)
	s.broadcast(model.NewStateChanged(model.StateReset, state, s.now()))
	log.Println("Game reset: state, winners, submissions and assignments cleared")
	return state, nil
}

func (s *GameService) cacheState(ctx context.Context, state *model.GameState) {
	if err := s.stateCache.Set(ctx, state); err != nil {
		log.Printf("game state cache write failed: %v", err)
	}
}

func (s *GameService) broadcast(event model.Event) {
	if s.broadcaster != nil {
		s.broadcaster.BroadcastAll(event)
	}
}
