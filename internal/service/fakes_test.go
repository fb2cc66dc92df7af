package service

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"testing"
	"time"

	"decryptrace/internal/model"
	"decryptrace/internal/repository"
)

// In-memory stand-ins for the Mongo repositories and Redis caches. They
// enforce the same uniqueness rules the real indexes do.

type fakeStateRepo struct {
	mu        sync.Mutex
	state     *model.GameState
	conflicts int    // CompareAndSwap calls that fail as if another writer won
	afterGet  func() // runs once after a load, to stage a write landing mid-read
	err       error
}

func (r *fakeStateRepo) Get(ctx context.Context) (*model.GameState, error) {
	state, err := r.load()
	if hook := r.afterGet; hook != nil && err == nil {
		r.afterGet = nil
		hook()
	}
	return state, err
}

func (r *fakeStateRepo) load() (*model.GameState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	if r.state == nil {
		r.state = model.DefaultGameState()
	}
	return r.state.Clone(), nil
}

func (r *fakeStateRepo) CompareAndSwap(ctx context.Context, expected int64, next *model.GameState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if r.conflicts > 0 {
		r.conflicts--
		r.state.Version++
		return repository.ErrStateConflict
	}
	if r.state.Version != expected {
		return repository.ErrStateConflict
	}
	next.Version = expected + 1
	r.state = next.Clone()
	return nil
}

func (r *fakeStateRepo) Reset(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	var version int64
	if r.state != nil {
		version = r.state.Version
	}
	r.state = model.DefaultGameState()
	r.state.Version = version + 1
	return nil
}

type fakeWinnerRepo struct {
	mu           sync.Mutex
	winners      []*model.Winner
	beforeInsert func() // runs without the lock, to stage a concurrent admission
}

func (r *fakeWinnerRepo) Count(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.winners), nil
}

func (r *fakeWinnerRepo) Insert(ctx context.Context, w *model.Winner) error {
	if hook := r.beforeInsert; hook != nil {
		r.beforeInsert = nil
		hook()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.winners {
		if existing.Position == w.Position {
			return repository.ErrPositionTaken
		}
		if existing.TeamName == w.TeamName {
			return repository.ErrAlreadyWinner
		}
	}
	w.ID = fmt.Sprintf("w%d", len(r.winners)+1)
	r.winners = append(r.winners, w)
	return nil
}

func (r *fakeWinnerRepo) ExistsForTeam(ctx context.Context, teamName string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.winners {
		if w.TeamName == teamName {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeWinnerRepo) List(ctx context.Context) ([]*model.Winner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := slices.Clone(r.winners)
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *fakeWinnerRepo) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.winners = nil
	return nil
}

type fakeSubmissionRepo struct {
	mu   sync.Mutex
	subs []*model.DecryptionSubmission
}

func (r *fakeSubmissionRepo) Create(ctx context.Context, sub *model.DecryptionSubmission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub.ID = fmt.Sprintf("s%d", len(r.subs)+1)
	r.subs = append(r.subs, sub)
	return nil
}

func (r *fakeSubmissionRepo) HasCorrect(ctx context.Context, teamName, messageID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.subs {
		if s.TeamName == teamName && s.MessageID == messageID && s.IsCorrect {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeSubmissionRepo) byTeam(teamName string) []*model.DecryptionSubmission {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.DecryptionSubmission
	for _, s := range r.subs {
		if s.TeamName == teamName {
			out = append(out, s)
		}
	}
	return out
}

func (r *fakeSubmissionRepo) DeleteByTeam(ctx context.Context, teamName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = slices.DeleteFunc(r.subs, func(s *model.DecryptionSubmission) bool { return s.TeamName == teamName })
	return nil
}

func (r *fakeSubmissionRepo) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = nil
	return nil
}

func (r *fakeSubmissionRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

type fakeMessageRepo struct {
	mu     sync.Mutex
	msgs   map[string]*model.EncryptedMessage
	nextID int
	err    error
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{msgs: make(map[string]*model.EncryptedMessage)}
}

func cloneMessage(m *model.EncryptedMessage) *model.EncryptedMessage {
	c := *m
	c.ActiveForTeams = slices.Clone(m.ActiveForTeams)
	return &c
}

func (r *fakeMessageRepo) insert(m *model.EncryptedMessage) {
	if m.ID == "" {
		r.nextID++
		m.ID = fmt.Sprintf("m%03d", r.nextID)
	}
	if m.ActiveForTeams == nil {
		m.ActiveForTeams = []string{}
	}
	r.msgs[m.ID] = cloneMessage(m)
}

func (r *fakeMessageRepo) sorted(keep func(*model.EncryptedMessage) bool) []*model.EncryptedMessage {
	out := []*model.EncryptedMessage{}
	for _, m := range r.msgs {
		if keep(m) {
			out = append(out, cloneMessage(m))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeMessageRepo) Create(ctx context.Context, msg *model.EncryptedMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.insert(msg)
	return nil
}

func (r *fakeMessageRepo) GetByID(ctx context.Context, id string) (*model.EncryptedMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	m, ok := r.msgs[id]
	if !ok {
		return nil, nil
	}
	return cloneMessage(m), nil
}

func (r *fakeMessageRepo) List(ctx context.Context) ([]*model.EncryptedMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	return r.sorted(func(*model.EncryptedMessage) bool { return true }), nil
}

func (r *fakeMessageRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.msgs)), r.err
}

func (r *fakeMessageRepo) FindByTeam(ctx context.Context, teamName string) ([]*model.EncryptedMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	return r.sorted(func(m *model.EncryptedMessage) bool { return m.AssignedTo(teamName) }), nil
}

func (r *fakeMessageRepo) FindActive(ctx context.Context) (*model.EncryptedMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	active := r.sorted(func(m *model.EncryptedMessage) bool { return m.Active })
	if len(active) == 0 {
		return nil, nil
	}
	return active[0], nil
}

func (r *fakeMessageRepo) AddTeam(ctx context.Context, id, teamName string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return false, r.err
	}
	m, ok := r.msgs[id]
	if !ok || m.AssignedTo(teamName) {
		return false, nil
	}
	m.ActiveForTeams = append(m.ActiveForTeams, teamName)
	return true, nil
}

func (r *fakeMessageRepo) RemoveTeam(ctx context.Context, id, teamName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	for _, m := range r.msgs {
		if id == "" || m.ID == id {
			m.ActiveForTeams = slices.DeleteFunc(m.ActiveForTeams, func(t string) bool { return t == teamName })
		}
	}
	return nil
}

func (r *fakeMessageRepo) SetActive(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.msgs[id]; !ok {
		return false, nil
	}
	for _, m := range r.msgs {
		m.Active = m.ID == id
	}
	return true, nil
}

func (r *fakeMessageRepo) Reseed(ctx context.Context, msgs []*model.EncryptedMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.msgs = make(map[string]*model.EncryptedMessage)
	for _, m := range msgs {
		r.insert(m)
	}
	return nil
}

// assignedTo returns the IDs of every message holding teamName
func (r *fakeMessageRepo) assignedTo(teamName string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for _, m := range r.sorted(func(m *model.EncryptedMessage) bool { return m.AssignedTo(teamName) }) {
		ids = append(ids, m.ID)
	}
	return ids
}

type fakeTeamRepo struct {
	mu    sync.Mutex
	teams []*model.Team
}

func (r *fakeTeamRepo) Create(ctx context.Context, team *model.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.teams {
		if t.TeamName == team.TeamName {
			return repository.ErrTeamNameTaken
		}
		if t.Email == team.Email {
			return repository.ErrEmailTaken
		}
	}
	team.ID = fmt.Sprintf("t%d", len(r.teams)+1)
	c := *team
	r.teams = append(r.teams, &c)
	return nil
}

func (r *fakeTeamRepo) find(teamName string) *model.Team {
	for _, t := range r.teams {
		if t.TeamName == teamName {
			return t
		}
	}
	return nil
}

func (r *fakeTeamRepo) GetByName(ctx context.Context, teamName string) (*model.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := r.find(teamName)
	if t == nil {
		return nil, nil
	}
	c := *t
	return &c, nil
}

func (r *fakeTeamRepo) List(ctx context.Context) ([]*model.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.teams), nil
}

func (r *fakeTeamRepo) SetBlocked(ctx context.Context, teamName string, blocked bool, reason string) (*model.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := r.find(teamName)
	if t == nil {
		return nil, nil
	}
	t.IsBlocked = blocked
	t.BlockReason = reason
	c := *t
	return &c, nil
}

func (r *fakeTeamRepo) DeleteByName(ctx context.Context, teamName string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	before := len(r.teams)
	r.teams = slices.DeleteFunc(r.teams, func(t *model.Team) bool { return t.TeamName == teamName })
	return len(r.teams) < before, nil
}

type fakeStateCache struct {
	mu    sync.Mutex
	state *model.GameState
}

func (c *fakeStateCache) Get(ctx context.Context) (*model.GameState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == nil {
		return nil, nil
	}
	return c.state.Clone(), nil
}

func (c *fakeStateCache) Set(ctx context.Context, state *model.GameState) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != nil && c.state.Version >= state.Version {
		return nil
	}
	c.state = state.Clone()
	return nil
}

func (c *fakeStateCache) Delete(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = nil
	return nil
}

type fakeAssignmentCache struct {
	mu sync.Mutex
	m  map[string]string
}

func newFakeAssignmentCache() *fakeAssignmentCache {
	return &fakeAssignmentCache{m: make(map[string]string)}
}

func (c *fakeAssignmentCache) Get(ctx context.Context, teamName string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.m[teamName], nil
}

func (c *fakeAssignmentCache) Claim(ctx context.Context, teamName, messageID string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.m[teamName]; ok {
		return existing, nil
	}
	c.m[teamName] = messageID
	return messageID, nil
}

func (c *fakeAssignmentCache) Release(ctx context.Context, teamName string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.m, teamName)
	return nil
}

func (c *fakeAssignmentCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m = make(map[string]string)
	return nil
}

func (c *fakeAssignmentCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	all    []model.Event
	byTeam map[string][]model.Event
}

func newRecordingBroadcaster() *recordingBroadcaster {
	return &recordingBroadcaster{byTeam: make(map[string][]model.Event)}
}

func (b *recordingBroadcaster) BroadcastAll(event model.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.all = append(b.all, event)
}

func (b *recordingBroadcaster) BroadcastToTeam(teamName string, event model.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.byTeam[teamName] = append(b.byTeam[teamName], event)
}

func (b *recordingBroadcaster) allEvents() []model.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.all)
}

func (b *recordingBroadcaster) teamEvents(teamName string) []model.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.byTeam[teamName])
}

// testEnv wires every service against fakes with a controllable clock
type testEnv struct {
	states      *fakeStateRepo
	winners     *fakeWinnerRepo
	subs        *fakeSubmissionRepo
	messages    *fakeMessageRepo
	teams       *fakeTeamRepo
	stateCache  *fakeStateCache
	assignCache *fakeAssignmentCache
	bus         *recordingBroadcaster

	game        *GameService
	assignments *AssignmentService
	submissions *SubmissionService
	teamSvc     *TeamService
	auth        *AuthService

	clock time.Time
}

var testEpoch = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	e := &testEnv{
		states:      &fakeStateRepo{},
		winners:     &fakeWinnerRepo{},
		subs:        &fakeSubmissionRepo{},
		messages:    newFakeMessageRepo(),
		teams:       &fakeTeamRepo{},
		stateCache:  &fakeStateCache{},
		assignCache: newFakeAssignmentCache(),
		bus:         newRecordingBroadcaster(),
		clock:       testEpoch,
	}
	now := func() time.Time { return e.clock }

	e.auth = newTestAuth(t)
	e.game = NewGameService(e.states, e.winners, e.subs, e.messages, e.stateCache, e.assignCache, 10*time.Minute, 20*time.Minute)
	e.game.now = now
	e.assignments = NewAssignmentService(e.messages, e.assignCache)
	e.assignments.now = now
	e.submissions = NewSubmissionService(e.game, e.messages, e.subs, e.winners, e.teams)
	e.submissions.now = now
	e.teamSvc = NewTeamService(e.teams, e.subs, e.assignments, e.auth, []string{"Ops"})

	e.game.SetBroadcaster(e.bus)
	e.assignments.SetBroadcaster(e.bus)
	e.submissions.SetBroadcaster(e.bus)
	e.teamSvc.SetBroadcaster(e.bus)
	return e
}

func (e *testEnv) advance(d time.Duration) {
	e.clock = e.clock.Add(d)
}

// seedMessage stores a message and returns its ID
func (e *testEnv) seedMessage(t *testing.T, plaintext string) string {
	t.Helper()
	msg := &model.EncryptedMessage{OriginalText: plaintext, EncryptedText: "x", EncryptionType: model.EncryptionCaesar}
	if err := e.messages.Create(context.Background(), msg); err != nil {
		t.Fatalf("seed message: %v", err)
	}
	return msg.ID
}
