package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"familytree/internal/familytree"
	"familytree/internal/models"
	"familytree/internal/security"
	"familytree/internal/service"
)

const testToken = "valid-token"

var (
	testUser  = &models.User{ID: 1, Email: "ada@example.com", Name: "Ada"}
	testAdmin = &models.User{ID: 2, Email: "root@example.com", Name: "Root", IsAdmin: true}
)

type fakeAuth struct {
	registerErr error
}

func (f *fakeAuth) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &models.User{ID: 3, Email: email, Name: name}, nil
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (string, time.Time, *models.User, error) {
	if password != "correct-horse" {
		return "", time.Time{}, nil, service.ErrInvalidCredentials
	}
	return testToken, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), &models.User{ID: 3, Email: email}, nil
}

func (f *fakeAuth) Authenticate(ctx context.Context, token string) (*models.User, error) {
	switch token {
	case testToken:
		return testUser, nil
	case "admin-token":
		return testAdmin, nil
	default:
		return nil, security.ErrInvalidToken
	}
}

type fakeFamilies struct {
	err           error
	createdRel    models.RelationshipType
	createdMember string
}

func (f *fakeFamilies) CreateFamily(ctx context.Context, userID int64, name, description string) (*models.Family, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Family{ID: 10, Name: name, Description: description, CreatedBy: userID}, nil
}

func (f *fakeFamilies) GetUserFamilies(ctx context.Context, userID int64) ([]models.Family, error) {
	return []models.Family{{ID: 10, Name: "Lovelace"}}, f.err
}

func (f *fakeFamilies) GetFamily(ctx context.Context, userID, familyID int64) (*models.Family, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Family{ID: familyID, Name: "Lovelace"}, nil
}

func (f *fakeFamilies) ListMembers(ctx context.Context, userID, familyID int64) ([]models.Member, error) {
	return []models.Member{{ID: 1, FamilyID: familyID, Name: "Ada", Role: models.RoleOwner, Status: models.StatusActive}}, f.err
}

func (f *fakeFamilies) AddMember(ctx context.Context, userID, familyID int64, name string, role models.MemberRole, birthday *time.Time) (*models.Member, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.createdMember = name
	return &models.Member{ID: 2, FamilyID: familyID, Name: name, Role: role, Status: models.StatusActive, Birthday: birthday}, nil
}

func (f *fakeFamilies) UpdateMemberStatus(ctx context.Context, userID, familyID, memberID int64, status models.MemberStatus) (*models.Member, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Member{ID: memberID, FamilyID: familyID, Status: status}, nil
}

func (f *fakeFamilies) ListRelationships(ctx context.Context, userID, familyID int64) ([]models.Relationship, error) {
	return nil, f.err
}

func (f *fakeFamilies) CreateRelationship(ctx context.Context, userID, familyID, fromMemberID, toMemberID int64, relType models.RelationshipType, customLabel, description *string) (*models.Relationship, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.createdRel = relType
	return &models.Relationship{ID: 5, FamilyID: familyID, FromMemberID: fromMemberID, ToMemberID: toMemberID, Type: relType, CustomLabel: customLabel}, nil
}

func (f *fakeFamilies) DeleteRelationship(ctx context.Context, userID, familyID, relationshipID int64) error {
	return f.err
}

// snapshotLoader serves one family to a real tree builder
type snapshotLoader struct {
	members       []models.Member
	relationships []models.Relationship
}

func (l *snapshotLoader) FindFamily(ctx context.Context, familyID int64) (*models.Family, error) {
	if familyID != 10 {
		return nil, nil
	}
	return &models.Family{ID: 10, Name: "Lovelace"}, nil
}

func (l *snapshotLoader) FindActiveMembers(ctx context.Context, familyID int64) ([]models.Member, error) {
	return l.members, nil
}

func (l *snapshotLoader) FindRelationships(ctx context.Context, familyID int64) ([]models.Relationship, error) {
	return l.relationships, nil
}

func (l *snapshotLoader) FindMember(ctx context.Context, memberID int64) (*models.Member, error) {
	return nil, nil
}

type fakeTrees struct {
	builder        *familytree.Builder
	err            error
	centerMemberID *int64
	maxGenerations *int
}

func (f *fakeTrees) GetTree(ctx context.Context, userID, familyID int64, centerMemberID *int64, maxGenerations *int) (*familytree.FamilyTree, error) {
	f.centerMemberID = centerMemberID
	f.maxGenerations = maxGenerations
	if f.err != nil {
		return nil, f.err
	}
	req, err := familytree.NewTreeRequest(familyID, centerMemberID, maxGenerations, &userID)
	if err != nil {
		return nil, err
	}
	return f.builder.Build(ctx, req)
}

type fakeJoins struct {
	err error
}

func (f *fakeJoins) RequestToJoin(ctx context.Context, userID, familyID int64, message string) (*models.JoinRequest, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.JoinRequest{ID: 7, FamilyID: familyID, UserID: userID, Message: message, Status: models.JoinRequestPending}, nil
}

func (f *fakeJoins) ListPending(ctx context.Context, userID, familyID int64) ([]models.JoinRequest, error) {
	return []models.JoinRequest{{ID: 7, FamilyID: familyID, UserID: 3, RequestName: "Charles", Status: models.JoinRequestPending}}, f.err
}

func (f *fakeJoins) Approve(ctx context.Context, reviewerID, familyID, requestID int64) (*models.Member, error) {
	if f.err != nil {
		return nil, f.err
	}
	userID := int64(3)
	return &models.Member{ID: 9, FamilyID: familyID, Name: "Charles", UserID: &userID, Role: models.RoleMember, Status: models.StatusActive}, nil
}

func (f *fakeJoins) Reject(ctx context.Context, reviewerID, familyID, requestID int64) error {
	return f.err
}

type fakeBackups struct {
	imported string
	clear    bool
}

func (f *fakeBackups) Stats(ctx context.Context) (*service.DatabaseStats, error) {
	return &service.DatabaseStats{Users: 2, Families: 1}, nil
}

func (f *fakeBackups) ExportToWriter(ctx context.Context, w io.Writer) error {
	_, err := io.WriteString(w, `{"version":"1.0"}`)
	return err
}

func (f *fakeBackups) ImportFromReader(ctx context.Context, r io.Reader, clear bool) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.imported = string(data)
	f.clear = clear
	return nil
}

type fakePinger struct {
	err error
}

func (f fakePinger) PingContext(ctx context.Context) error {
	return f.err
}

type testServer struct {
	router   http.Handler
	families *fakeFamilies
	trees    *fakeTrees
	joins    *fakeJoins
	backups  *fakeBackups
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()

	userID := testUser.ID
	loader := &snapshotLoader{
		members: []models.Member{
			{ID: 1, FamilyID: 10, Name: "Ada", UserID: &userID, Role: models.RoleOwner, Status: models.StatusActive},
			{ID: 2, FamilyID: 10, Name: "Byron", Role: models.RoleViewer, Status: models.StatusActive},
		},
		relationships: []models.Relationship{
			{ID: 1, FamilyID: 10, FromMemberID: 1, ToMemberID: 2, Type: models.RelFather},
		},
	}

	s := &testServer{
		families: &fakeFamilies{},
		trees:    &fakeTrees{builder: familytree.NewBuilder(loader)},
		joins:    &fakeJoins{},
		backups:  &fakeBackups{},
	}
	s.router = Routes(Handlers{
		Middleware:   NewMiddleware(&fakeAuth{}, security.NewRateLimiter(0, 2), logger),
		Auth:         NewAuthHandler(&fakeAuth{}, logger),
		Families:     NewFamilyHandler(s.families, logger),
		Trees:        NewTreeHandler(s.trees, logger),
		JoinRequests: NewJoinRequestHandler(s.joins, logger),
		Admin:        NewAdminHandler(s.backups, logger),
		Health:       NewHealthHandler(fakePinger{}, logger),
		Metrics:      http.NotFoundHandler(),
	})
	return s
}

func (s *testServer) do(method, path, token, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	s.router.ServeHTTP(recorder, req)
	return recorder
}

func decode(t *testing.T, recorder *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(dst))
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	recorder := s.do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"status":"ok","database":"connected"}`, recorder.Body.String())
	assert.NotEmpty(t, recorder.Header().Get(RequestIDHeader))

	handler := NewHealthHandler(fakePinger{err: errors.New("connection refused")}, zap.NewNop())
	recorder = httptest.NewRecorder()
	handler.Serve(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
}

func TestRequireAuth(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"unknown token", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "Bearer " + testToken, http.StatusOK},
		{"scheme is case insensitive", "bearer " + testToken, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			recorder := httptest.NewRecorder()
			s.router.ServeHTTP(recorder, req)
			assert.Equal(t, tt.want, recorder.Code)
		})
	}
}

func TestLoginAndRateLimit(t *testing.T) {
	s := newTestServer(t)

	recorder := s.do(http.MethodPost, "/api/auth/login", "", `{"email":"ada@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	recorder = s.do(http.MethodPost, "/api/auth/login", "", `{"email":"ada@example.com","password":"correct-horse"}`)
	require.Equal(t, http.StatusOK, recorder.Code)
	var token TokenView
	decode(t, recorder, &token)
	assert.Equal(t, testToken, token.Token)

	// the limiter allows a burst of two and never refills
	recorder = s.do(http.MethodPost, "/api/auth/login", "", `{"email":"ada@example.com","password":"correct-horse"}`)
	assert.Equal(t, http.StatusTooManyRequests, recorder.Code)
	assert.Equal(t, "1", recorder.Header().Get("Retry-After"))
}

func TestRegister(t *testing.T) {
	s := newTestServer(t)

	recorder := s.do(http.MethodPost, "/api/auth/register", "", `{"email":"charles@example.com","password":"correct-horse","name":"Charles"}`)
	require.Equal(t, http.StatusCreated, recorder.Code)
	var token TokenView
	decode(t, recorder, &token)
	assert.Equal(t, "charles@example.com", token.User.Email)

	recorder = s.do(http.MethodPost, "/api/auth/register", "", `{"email":"charles@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.JSONEq(t, `{"error":"password: password is required"}`, recorder.Body.String())
}

func TestFamilyEndpoints(t *testing.T) {
	s := newTestServer(t)

	recorder := s.do(http.MethodPost, "/api/families", testToken, `{"name":"Lovelace","description":"Descendants of Ada"}`)
	require.Equal(t, http.StatusCreated, recorder.Code)
	var family FamilyView
	decode(t, recorder, &family)
	assert.Equal(t, "Lovelace", family.Name)
	assert.Equal(t, testUser.ID, family.CreatedBy)

	recorder = s.do(http.MethodPost, "/api/families", testToken, `{"name":`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = s.do(http.MethodPost, "/api/families", testToken, `{"name":"Lovelace","motto":"x"}`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = s.do(http.MethodGet, "/api/families", testToken, "")
	require.Equal(t, http.StatusOK, recorder.Code)
	var families []FamilyView
	decode(t, recorder, &families)
	assert.Len(t, families, 1)

	recorder = s.do(http.MethodGet, "/api/families/10", testToken, "")
	assert.Equal(t, http.StatusOK, recorder.Code)

	recorder = s.do(http.MethodGet, "/api/families/abc", testToken, "")
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	s.families.err = service.ErrNotFamilyMember
	recorder = s.do(http.MethodGet, "/api/families/10", testToken, "")
	assert.Equal(t, http.StatusForbidden, recorder.Code)
}

func TestMemberEndpoints(t *testing.T) {
	s := newTestServer(t)

	recorder := s.do(http.MethodPost, "/api/families/10/members", testToken, `{"name":"Byron","birthday":"1815-12-10"}`)
	require.Equal(t, http.StatusCreated, recorder.Code)
	var member MemberView
	decode(t, recorder, &member)
	assert.Equal(t, "member", member.Role)
	require.NotNil(t, member.Birthday)
	assert.Equal(t, 1815, member.Birthday.Year())

	recorder = s.do(http.MethodPost, "/api/families/10/members", testToken, `{"name":"Byron","birthday":"10/12/1815"}`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = s.do(http.MethodPost, "/api/families/10/members", testToken, `{"name":"Byron","role":"emperor"}`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = s.do(http.MethodPatch, "/api/families/10/members/2/status", testToken, `{"status":"suspended"}`)
	require.Equal(t, http.StatusOK, recorder.Code)
	decode(t, recorder, &member)
	assert.Equal(t, "suspended", member.Status)

	recorder = s.do(http.MethodGet, "/api/families/10/members", testToken, "")
	require.Equal(t, http.StatusOK, recorder.Code)
	var members []MemberView
	decode(t, recorder, &members)
	assert.Len(t, members, 1)
}

func TestRelationshipEndpoints(t *testing.T) {
	s := newTestServer(t)

	recorder := s.do(http.MethodPost, "/api/families/10/relationships", testToken, `{"fromMemberId":1,"toMemberId":2,"type":"Father"}`)
	require.Equal(t, http.StatusCreated, recorder.Code)
	var rel RelationshipView
	decode(t, recorder, &rel)
	assert.Equal(t, models.RelFather, s.families.createdRel)
	assert.Equal(t, "Father", rel.Label)

	recorder = s.do(http.MethodPost, "/api/families/10/relationships", testToken, `{"fromMemberId":1,"toMemberId":2,"type":"godfather"}`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = s.do(http.MethodPost, "/api/families/10/relationships", testToken, `{"fromMemberId":0,"toMemberId":2,"type":"father"}`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = s.do(http.MethodGet, "/api/families/10/relationships", testToken, "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `[]`, recorder.Body.String())

	recorder = s.do(http.MethodDelete, "/api/families/10/relationships/5", testToken, "")
	assert.Equal(t, http.StatusNoContent, recorder.Code)

	s.families.err = service.ErrRelationshipNotFound
	recorder = s.do(http.MethodDelete, "/api/families/10/relationships/5", testToken, "")
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestGetTree(t *testing.T) {
	s := newTestServer(t)

	recorder := s.do(http.MethodGet, "/api/families/10/tree", testToken, "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Nil(t, s.trees.centerMemberID)
	assert.Nil(t, s.trees.maxGenerations)

	var tree TreeView
	decode(t, recorder, &tree)
	assert.Equal(t, int64(10), tree.FamilyID)
	require.NotNil(t, tree.Center)
	assert.Equal(t, int64(1), tree.Center.ID)
	assert.True(t, tree.Center.IsViewer)
	assert.Equal(t, 2, tree.Metadata.TotalMembers)
	require.Len(t, tree.Generations, 2)
	assert.Equal(t, 0, tree.Generations[0].Level)
	assert.Equal(t, "Grandparents", tree.Generations[0].Label)
	assert.Equal(t, int64(2), tree.Generations[0].Members[0].ID)
	require.Len(t, tree.Center.Relations, 1)
	assert.Equal(t, "Father", tree.Center.Relations[0].Label)

	recorder = s.do(http.MethodGet, "/api/families/10/tree?centerMemberId=2&maxGenerations=1", testToken, "")
	require.Equal(t, http.StatusOK, recorder.Code)
	require.NotNil(t, s.trees.centerMemberID)
	assert.Equal(t, int64(2), *s.trees.centerMemberID)
	require.NotNil(t, s.trees.maxGenerations)
	assert.Equal(t, 1, *s.trees.maxGenerations)
}

func TestGetTreeErrors(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		treeErr error
		want    int
	}{
		{"non numeric depth", "/api/families/10/tree?maxGenerations=deep", nil, http.StatusBadRequest},
		{"non numeric center", "/api/families/10/tree?centerMemberId=x", nil, http.StatusBadRequest},
		{"depth out of range", "/api/families/10/tree?maxGenerations=11", nil, http.StatusBadRequest},
		{"unknown family", "/api/families/99/tree", nil, http.StatusNotFound},
		{"not a member", "/api/families/10/tree", service.ErrNotFamilyMember, http.StatusForbidden},
		{"loader failure", "/api/families/10/tree", errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			s.trees.err = tt.treeErr
			recorder := s.do(http.MethodGet, tt.path, testToken, "")
			assert.Equal(t, tt.want, recorder.Code)
		})
	}
}

func TestGetTreeEmptyFamily(t *testing.T) {
	s := newTestServer(t)
	s.trees.builder = familytree.NewBuilder(&snapshotLoader{})

	recorder := s.do(http.MethodGet, "/api/families/10/tree", testToken, "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var tree TreeView
	decode(t, recorder, &tree)
	assert.Nil(t, tree.Center)
	assert.Empty(t, tree.Generations)
	assert.False(t, tree.Metadata.Complete)
}

func TestJoinRequestEndpoints(t *testing.T) {
	s := newTestServer(t)

	recorder := s.do(http.MethodPost, "/api/families/10/join-requests", testToken, `{"message":"I am a cousin"}`)
	require.Equal(t, http.StatusCreated, recorder.Code)
	var req JoinRequestView
	decode(t, recorder, &req)
	assert.Equal(t, "pending", req.Status)

	recorder = s.do(http.MethodGet, "/api/families/10/join-requests", testToken, "")
	require.Equal(t, http.StatusOK, recorder.Code)
	var pending []JoinRequestView
	decode(t, recorder, &pending)
	require.Len(t, pending, 1)
	assert.Equal(t, "Charles", pending[0].Name)

	recorder = s.do(http.MethodPost, "/api/families/10/join-requests/7/approve", testToken, "")
	require.Equal(t, http.StatusOK, recorder.Code)
	var member MemberView
	decode(t, recorder, &member)
	assert.Equal(t, "member", member.Role)

	recorder = s.do(http.MethodPost, "/api/families/10/join-requests/7/reject", testToken, "")
	assert.Equal(t, http.StatusNoContent, recorder.Code)

	s.joins.err = service.ErrJoinRequestPending
	recorder = s.do(http.MethodPost, "/api/families/10/join-requests", testToken, `{}`)
	assert.Equal(t, http.StatusConflict, recorder.Code)
}

func TestAdminEndpoints(t *testing.T) {
	s := newTestServer(t)

	recorder := s.do(http.MethodGet, "/api/admin/stats", testToken, "")
	assert.Equal(t, http.StatusForbidden, recorder.Code)

	recorder = s.do(http.MethodGet, "/api/admin/stats", "admin-token", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	var stats service.DatabaseStats
	decode(t, recorder, &stats)
	assert.Equal(t, 2, stats.Users)

	recorder = s.do(http.MethodGet, "/api/admin/backup", "admin-token", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Header().Get("Content-Disposition"), "familytree_backup_")
	assert.JSONEq(t, `{"version":"1.0"}`, recorder.Body.String())

	recorder = s.do(http.MethodPost, "/api/admin/backup?clear=true", "admin-token", `{"version":"1.0"}`)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.True(t, s.backups.clear)
	assert.Equal(t, `{"version":"1.0"}`, s.backups.imported)

	recorder = s.do(http.MethodPost, "/api/admin/backup?clear=maybe", "admin-token", `{}`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}
