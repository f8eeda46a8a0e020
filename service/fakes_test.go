package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"meeting-backend/constant"
	"meeting-backend/dto"
	"meeting-backend/entities"
	"meeting-backend/pkg/janus"
)

type sentRequest struct {
	sessionID int64
	handleID  int64
	body      janus.PluginRequest
}

// fakeMedia is an in-memory MediaGateway. The default Send reply carries a
// fresh participant id; tests override sendFunc to inject plugin errors.
type fakeMedia struct {
	mu        sync.Mutex
	nextID    int64
	sessions  map[int64]bool
	created   int
	destroyed int
	attached  int
	detached  int
	sent      []sentRequest
	sendFunc  func(sessionID, handleID int64, body janus.PluginRequest) (*janus.PluginData, error)
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{sessions: make(map[int64]bool)}
}

func (f *fakeMedia) CreateSession(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.created++
	f.sessions[f.nextID] = true
	return f.nextID, nil
}

func (f *fakeMedia) KeepAlive(ctx context.Context, sessionID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.sessions[sessionID] {
		return &janus.ServerError{Code: janus.ErrCodeSessionNotFound, Reason: "no such session"}
	}
	return nil
}

func (f *fakeMedia) DestroySession(ctx context.Context, sessionID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.destroyed++
	delete(f.sessions, sessionID)
	return nil
}

func (f *fakeMedia) Attach(ctx context.Context, sessionID int64, plugin string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.attached++
	return f.nextID, nil
}

func (f *fakeMedia) Detach(ctx context.Context, sessionID, handleID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detached++
	return nil
}

func (f *fakeMedia) Send(ctx context.Context, sessionID, handleID int64, body janus.PluginRequest) (*janus.PluginData, error) {
	f.mu.Lock()
	f.sent = append(f.sent, sentRequest{sessionID: sessionID, handleID: handleID, body: body})
	sendFunc := f.sendFunc
	f.nextID++
	reply := &janus.PluginData{Plugin: body.PluginName(), Data: map[string]any{"id": f.nextID, "exists": true}}
	f.mu.Unlock()

	if sendFunc != nil {
		return sendFunc(sessionID, handleID, body)
	}
	return reply, nil
}

func (f *fakeMedia) countSent(match func(janus.PluginRequest) bool) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, req := range f.sent {
		if match(req.body) {
			n++
		}
	}
	return n
}

func (f *fakeMedia) liveSessions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sessions)
}

// memRepos backs every repository interface with maps, honoring the same
// unique constraints the schema declares.
type memRepos struct {
	mu            sync.Mutex
	meetings      map[uuid.UUID]entities.Meeting
	participants  map[string]entities.Participant
	vsMeetings    map[uuid.UUID]entities.VideoServerMeeting
	vsSessions    map[uuid.UUID]entities.VideoServerSession
	waiting       map[uuid.UUID]entities.WaitingParticipant
	recordings    map[uuid.UUID]entities.Recording
	vsmInsertHook func(r *memRepos)
}

func newMemRepos() *memRepos {
	return &memRepos{
		meetings:     make(map[uuid.UUID]entities.Meeting),
		participants: make(map[string]entities.Participant),
		vsMeetings:   make(map[uuid.UUID]entities.VideoServerMeeting),
		vsSessions:   make(map[uuid.UUID]entities.VideoServerSession),
		waiting:      make(map[uuid.UUID]entities.WaitingParticipant),
		recordings:   make(map[uuid.UUID]entities.Recording),
	}
}

func participantKey(meetingID uuid.UUID, sessionID string) string {
	return meetingID.String() + "/" + sessionID
}

func (r *memRepos) FindMeetingById(ctx context.Context, id uuid.UUID) (*entities.Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, found := r.meetings[id]; found {
		cp := m
		return &cp, nil
	}
	return nil, nil
}

func (r *memRepos) FindMeetingByRoomId(ctx context.Context, roomID uuid.UUID) (*entities.Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.meetings {
		if m.RoomID == roomID {
			cp := m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memRepos) InsertMeeting(ctx context.Context, meeting *entities.Meeting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.meetings {
		if m.RoomID == meeting.RoomID {
			return gorm.ErrDuplicatedKey
		}
	}
	r.meetings[meeting.ID] = *meeting
	return nil
}

func (r *memRepos) UpdateMeeting(ctx context.Context, meeting *entities.Meeting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.meetings[meeting.ID] = *meeting
	return nil
}

func (r *memRepos) DeleteMeeting(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.meetings, id)
	return nil
}

func (r *memRepos) FindParticipant(ctx context.Context, meetingID uuid.UUID, sessionID string) (*entities.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, found := r.participants[participantKey(meetingID, sessionID)]; found {
		cp := p
		return &cp, nil
	}
	return nil, nil
}

func (r *memRepos) ListParticipantsByMeetingId(ctx context.Context, meetingID uuid.UUID) ([]*entities.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.Participant
	for _, p := range r.participants {
		if p.MeetingID == meetingID {
			cp := p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memRepos) CountParticipantsByMeetingId(ctx context.Context, meetingID uuid.UUID) (int64, error) {
	list, _ := r.ListParticipantsByMeetingId(ctx, meetingID)
	return int64(len(list)), nil
}

func (r *memRepos) InsertParticipant(ctx context.Context, participant *entities.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := participantKey(participant.MeetingID, participant.SessionID)
	if _, found := r.participants[key]; found {
		return gorm.ErrDuplicatedKey
	}
	for _, p := range r.participants {
		if p.UserID == participant.UserID && p.SessionID == participant.SessionID {
			return gorm.ErrDuplicatedKey
		}
	}
	r.participants[key] = *participant
	return nil
}

func (r *memRepos) UpdateParticipant(ctx context.Context, participant *entities.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.participants[participantKey(participant.MeetingID, participant.SessionID)] = *participant
	return nil
}

func (r *memRepos) DeleteParticipant(ctx context.Context, meetingID uuid.UUID, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.participants, participantKey(meetingID, sessionID))
	return nil
}

func (r *memRepos) DeleteParticipantsByMeetingId(ctx context.Context, meetingID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, p := range r.participants {
		if p.MeetingID == meetingID {
			delete(r.participants, key)
		}
	}
	return nil
}

func (r *memRepos) FindVideoServerMeetingByMeetingId(ctx context.Context, meetingID uuid.UUID) (*entities.VideoServerMeeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, found := r.vsMeetings[meetingID]; found {
		cp := m
		return &cp, nil
	}
	return nil, nil
}

func (r *memRepos) ListVideoServerMeetings(ctx context.Context) ([]*entities.VideoServerMeeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.VideoServerMeeting
	for _, m := range r.vsMeetings {
		cp := m
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memRepos) InsertVideoServerMeeting(ctx context.Context, meeting *entities.VideoServerMeeting) error {
	if r.vsmInsertHook != nil {
		hook := r.vsmInsertHook
		r.vsmInsertHook = nil
		hook(r)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, found := r.vsMeetings[meeting.MeetingID]; found {
		return gorm.ErrDuplicatedKey
	}
	r.vsMeetings[meeting.MeetingID] = *meeting
	return nil
}

func (r *memRepos) UpdateVideoServerMeeting(ctx context.Context, meeting *entities.VideoServerMeeting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vsMeetings[meeting.MeetingID] = *meeting
	return nil
}

func (r *memRepos) DeleteVideoServerMeeting(ctx context.Context, meetingID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.vsMeetings, meetingID)
	return nil
}

func (r *memRepos) FindVideoServerSession(ctx context.Context, meetingID uuid.UUID, sessionID string) (*entities.VideoServerSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.vsSessions {
		if s.MeetingID == meetingID && s.SessionID == sessionID {
			cp := s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memRepos) ListVideoServerSessionsByMeetingId(ctx context.Context, meetingID uuid.UUID) ([]*entities.VideoServerSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.VideoServerSession
	for _, s := range r.vsSessions {
		if s.MeetingID == meetingID {
			cp := s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memRepos) InsertVideoServerSession(ctx context.Context, session *entities.VideoServerSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.vsSessions {
		if s.MeetingID == session.MeetingID && s.SessionID == session.SessionID {
			return gorm.ErrDuplicatedKey
		}
	}
	r.vsSessions[session.ID] = *session
	return nil
}

func (r *memRepos) UpdateVideoServerSession(ctx context.Context, session *entities.VideoServerSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vsSessions[session.ID] = *session
	return nil
}

func (r *memRepos) DeleteVideoServerSession(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.vsSessions, id)
	return nil
}

func (r *memRepos) DeleteVideoServerSessionsByMeetingId(ctx context.Context, meetingID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.vsSessions {
		if s.MeetingID == meetingID {
			delete(r.vsSessions, id)
		}
	}
	return nil
}

func (r *memRepos) FindWaitingById(ctx context.Context, id uuid.UUID) (*entities.WaitingParticipant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if w, found := r.waiting[id]; found {
		cp := w
		return &cp, nil
	}
	return nil, nil
}

func (r *memRepos) FindPendingWaiting(ctx context.Context, meetingID, userID uuid.UUID) (*entities.WaitingParticipant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.waiting {
		if w.MeetingID == meetingID && w.UserID == userID && w.Status == constant.WaitingStatusWaiting {
			cp := w
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memRepos) ListWaitingByMeetingId(ctx context.Context, meetingID uuid.UUID, status constant.WaitingStatus) ([]*entities.WaitingParticipant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.WaitingParticipant
	for _, w := range r.waiting {
		if w.MeetingID == meetingID && w.Status == status {
			cp := w
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memRepos) InsertWaiting(ctx context.Context, waiting *entities.WaitingParticipant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.waiting[waiting.ID] = *waiting
	return nil
}

func (r *memRepos) UpdateWaiting(ctx context.Context, waiting *entities.WaitingParticipant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.waiting[waiting.ID] = *waiting
	return nil
}

func (r *memRepos) DeleteWaiting(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.waiting, id)
	return nil
}

func (r *memRepos) FindRecordingById(ctx context.Context, id uuid.UUID) (*entities.Recording, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, found := r.recordings[id]; found {
		cp := rec
		return &cp, nil
	}
	return nil, nil
}

func (r *memRepos) FindStartedRecordingByMeetingId(ctx context.Context, meetingID uuid.UUID) (*entities.Recording, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.recordings {
		if rec.MeetingID == meetingID && rec.Status == constant.RecordingStatusStarted {
			cp := rec
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memRepos) InsertRecording(ctx context.Context, recording *entities.Recording) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recordings[recording.ID] = *recording
	return nil
}

func (r *memRepos) UpdateRecording(ctx context.Context, recording *entities.Recording) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recordings[recording.ID] = *recording
	return nil
}

type fakeDispatcher struct {
	mu            sync.Mutex
	meetingEvents []dto.Event
	userEvents    map[uuid.UUID][]dto.Event
}

func newFakeDispatcher() *fakeDispatcher {
	return &fakeDispatcher{userEvents: make(map[uuid.UUID][]dto.Event)}
}

func (d *fakeDispatcher) SendToMeeting(ctx context.Context, meetingID uuid.UUID, event dto.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.meetingEvents = append(d.meetingEvents, event)
	return nil
}

func (d *fakeDispatcher) SendToUser(ctx context.Context, userID uuid.UUID, event dto.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.userEvents[userID] = append(d.userEvents[userID], event)
	return nil
}

func (d *fakeDispatcher) meetingEventTypes() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []string
	for _, e := range d.meetingEvents {
		out = append(out, e.Type)
	}
	return out
}

type fakePostProcessor struct {
	submissions chan dto.RecordingPostProcessMessage
}

func newFakePostProcessor() *fakePostProcessor {
	return &fakePostProcessor{submissions: make(chan dto.RecordingPostProcessMessage, 8)}
}

func (p *fakePostProcessor) Submit(ctx context.Context, message dto.RecordingPostProcessMessage) error {
	p.submissions <- message
	return nil
}

type fakeManifestStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeManifestStore() *fakeManifestStore {
	return &fakeManifestStore{objects: make(map[string][]byte)}
}

func (s *fakeManifestStore) Put(ctx context.Context, objectName string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[objectName] = payload
	return nil
}

// testStack wires the full service graph over the fakes.
type testStack struct {
	media         *fakeMedia
	repos         *memRepos
	dispatcher    *fakeDispatcher
	postProcessor *fakePostProcessor
	manifests     *fakeManifestStore
	sessions      *SessionManager
	rooms         *RoomOrchestrator
	participants  *ParticipantService
	waiting       *WaitingService
	recordings    *RecordingService
	meetings      *MeetingService
}

func newTestStack() *testStack {
	media := newFakeMedia()
	repos := newMemRepos()
	dispatcher := newFakeDispatcher()
	postProcessor := newFakePostProcessor()
	manifests := newFakeManifestStore()

	sessions := NewSessionManager(media, repos)
	handles := NewHandleManager(media)
	rooms := NewRoomOrchestrator(media, sessions, handles, repos, "server-1")
	participants := NewParticipantService(media, rooms, handles, repos, repos, repos, dispatcher)
	waiting := NewWaitingService(repos, repos, participants, dispatcher)
	participants.SetAdmissionGate(waiting)
	recordings := NewRecordingService(media, repos, repos, repos, participants, dispatcher, postProcessor, manifests, "server-1")
	meetings := NewMeetingService(repos, repos, repos, rooms, waiting, recordings, dispatcher)

	return &testStack{
		media:         media,
		repos:         repos,
		dispatcher:    dispatcher,
		postProcessor: postProcessor,
		manifests:     manifests,
		sessions:      sessions,
		rooms:         rooms,
		participants:  participants,
		waiting:       waiting,
		recordings:    recordings,
		meetings:      meetings,
	}
}

func (ts *testStack) addMeeting(ownerID uuid.UUID, requireAdmission bool) *entities.Meeting {
	meeting := &entities.Meeting{
		ID:               uuid.New(),
		RoomID:           uuid.New(),
		OwnerID:          ownerID,
		Name:             "standup",
		Type:             constant.MeetingTypePermanent,
		RequireAdmission: requireAdmission,
	}
	if err := ts.repos.InsertMeeting(context.Background(), meeting); err != nil {
		panic(fmt.Sprintf("insert meeting: %v", err))
	}
	return meeting
}
