package handlers

import (
	"context"
	"io"
	"log/slog"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/training-service/internal/metrics"
	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/repositories"
	"github.com/SAP-F-2025/training-service/internal/services"
	"github.com/SAP-F-2025/training-service/internal/utils"
)

const (
	participantToken = "participant-token"
	instructorToken  = "instructor-token"
	adminToken       = "admin-token"
)

type fakeParser struct {
	claims map[string]*casdoorsdk.Claims
}

func (p *fakeParser) ParseJwtToken(token string) (*casdoorsdk.Claims, error) {
	if c, ok := p.claims[token]; ok {
		return c, nil
	}
	return nil, errInvalidToken
}

type tokenError string

func (e tokenError) Error() string { return string(e) }

const errInvalidToken = tokenError("token signature is invalid")

func claimsFor(id, email, casdoorType string) *casdoorsdk.Claims {
	return &casdoorsdk.Claims{User: casdoorsdk.User{Id: id, Email: email, Type: casdoorType}}
}

// fakeUsers serves only GetByID; other calls panic on the nil embedded
// interface.
type fakeUsers struct {
	repositories.UserRepository
	users map[string]*models.User
}

func (f *fakeUsers) GetByID(_ context.Context, _ *gorm.DB, id string) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeRoles struct {
	repositories.RoleRepository
	roles map[uint]*models.Role
}

func (f *fakeRoles) GetByID(_ context.Context, _ *gorm.DB, id uint) (*models.Role, error) {
	if r, ok := f.roles[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeEnrollment struct {
	lastReq *models.EnrollRequest
	resp    *models.EnrollResponse
	reg     *models.CourseRegistration
	err     error
}

func (f *fakeEnrollment) Enroll(_ context.Context, req *models.EnrollRequest) (*models.EnrollResponse, error) {
	f.lastReq = req
	return f.resp, f.err
}

func (f *fakeEnrollment) GetRegistration(_ context.Context, participantID, classID uint) (*models.CourseRegistration, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.reg, nil
}

type fakeCertificates struct {
	lastReq *models.IssueCertificateRequest
	cert    *models.Certificate
	err     error
}

func (f *fakeCertificates) Issue(_ context.Context, req *models.IssueCertificateRequest) (*models.Certificate, error) {
	f.lastReq = req
	return f.cert, f.err
}

type fakeProfiles struct {
	services.ProfileService
	lastIdentity models.Identity
	lastUserID   string
	lastRole     string
	err          error
}

func (f *fakeProfiles) PromoteToParticipant(_ context.Context, identity models.Identity) (*models.Participant, error) {
	f.lastIdentity = identity
	if f.err != nil {
		return nil, f.err
	}
	return &models.Participant{ID: 7, UserID: identity.UserID, FullName: "Participant"}, nil
}

func (f *fakeProfiles) PromoteToInstructure(_ context.Context, userID string) (*models.Instructure, error) {
	f.lastUserID = userID
	if f.err != nil {
		return nil, f.err
	}
	return &models.Instructure{ID: 3, UserID: userID, FullName: "Instructor"}, nil
}

func (f *fakeProfiles) AssignRole(_ context.Context, userID string, req *models.AssignRoleRequest) (*models.User, error) {
	f.lastUserID = userID
	f.lastRole = req.RoleName
	if f.err != nil {
		return nil, f.err
	}
	return &models.User{ID: userID}, nil
}

type fakeDeletion struct {
	lastReq *models.DeleteRequest
	result  *models.DeleteResult
	counts  models.DependencyCounts
	err     error
}

func (f *fakeDeletion) Delete(_ context.Context, req *models.DeleteRequest) (*models.DeleteResult, error) {
	f.lastReq = req
	return f.result, f.err
}

func (f *fakeDeletion) CheckDependencies(_ context.Context, kind models.DeletionTarget, id string) (models.DependencyCounts, error) {
	return f.counts, f.err
}

type fakeRoster struct {
	body string
	err  error
}

func (f *fakeRoster) ExportClassRoster(_ context.Context, classID uint, w io.Writer) error {
	if f.err != nil {
		return f.err
	}
	_, err := io.WriteString(w, f.body)
	return err
}

type fakeServiceManager struct {
	enrollment  *fakeEnrollment
	certificate *fakeCertificates
	profile     *fakeProfiles
	deletion    *fakeDeletion
	roster      *fakeRoster
	healthErr   error
}

func (m *fakeServiceManager) Profile() services.ProfileService           { return m.profile }
func (m *fakeServiceManager) Enrollment() services.EnrollmentService     { return m.enrollment }
func (m *fakeServiceManager) Certificate() services.CertificateService   { return m.certificate }
func (m *fakeServiceManager) Deletion() services.DeletionService         { return m.deletion }
func (m *fakeServiceManager) RosterExport() services.RosterExportService { return m.roster }
func (m *fakeServiceManager) Roles() *services.RoleRegistry              { return nil }
func (m *fakeServiceManager) Initialize(context.Context) error           { return nil }
func (m *fakeServiceManager) HealthCheck(context.Context) error          { return m.healthErr }
func (m *fakeServiceManager) Shutdown(context.Context) error             { return nil }

type testServer struct {
	router  *gin.Engine
	manager *fakeServiceManager
	metrics *metrics.Metrics
}

func newTestServer() *testServer {
	gin.SetMode(gin.TestMode)

	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	parser := &fakeParser{claims: map[string]*casdoorsdk.Claims{
		participantToken: claimsFor("user-p", "p@example.com", "normal-user"),
		instructorToken:  claimsFor("user-i", "i@example.com", "normal-user"),
		adminToken:       claimsFor("user-a", "a@example.com", "normal-user"),
	}}
	users := &fakeUsers{users: map[string]*models.User{
		"user-p": {ID: "user-p", Email: "p@example.com", RoleID: 2},
		"user-i": {ID: "user-i", Email: "i@example.com", RoleID: 3},
		"user-a": {ID: "user-a", Email: "a@example.com", RoleID: 4},
	}}
	roles := &fakeRoles{roles: map[uint]*models.Role{
		1: {ID: 1, Name: models.RoleUnassigned},
		2: {ID: 2, Name: models.RoleParticipant},
		3: {ID: 3, Name: models.RoleInstructure},
		4: {ID: 4, Name: models.RoleAdmin},
	}}

	manager := &fakeServiceManager{
		enrollment:  &fakeEnrollment{},
		certificate: &fakeCertificates{},
		profile:     &fakeProfiles{},
		deletion:    &fakeDeletion{},
		roster:      &fakeRoster{},
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	router := gin.New()
	SetupMiddleware(router, logger)
	NewHandlerManager(manager, logger, NewAuthMiddleware(parser, users, roles), reg).SetupRoutes(router)

	return &testServer{router: router, manager: manager, metrics: m}
}
