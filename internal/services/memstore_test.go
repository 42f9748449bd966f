package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/repositories"
)

// memStore is an in-memory Repository. Transactions are serialized and a
// failed transaction restores the state it started from.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	nextID uint

	roles          map[uint]*models.Role
	users          map[string]*models.User
	participants   map[uint]*models.Participant
	instructures   map[uint]*models.Instructure
	courses        map[uint]*models.Course
	classes        map[uint]*models.Class
	assignments    map[uint]*models.TeachingAssignment
	registrations  map[uint]*models.CourseRegistration
	payments       map[uint]*models.Payment
	certifications map[uint]*models.Certification
	reports        map[uint]*models.ValueReport
	certificates   map[uint]*models.Certificate

	directory repositories.IdentityDirectory

	calls    []string
	failOn   map[string]error
	failOnce map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		roles:          map[uint]*models.Role{},
		users:          map[string]*models.User{},
		participants:   map[uint]*models.Participant{},
		instructures:   map[uint]*models.Instructure{},
		courses:        map[uint]*models.Course{},
		classes:        map[uint]*models.Class{},
		assignments:    map[uint]*models.TeachingAssignment{},
		registrations:  map[uint]*models.CourseRegistration{},
		payments:       map[uint]*models.Payment{},
		certifications: map[uint]*models.Certification{},
		reports:        map[uint]*models.ValueReport{},
		certificates:   map[uint]*models.Certificate{},
		failOn:         map[string]error{},
		failOnce:       map[string]error{},
	}
}

func cloneMap[K comparable, V any](m map[K]*V) map[K]*V {
	out := make(map[K]*V, len(m))
	for k, v := range m {
		c := *v
		out[k] = &c
	}
	return out
}

type memSnapshot struct {
	nextID         uint
	roles          map[uint]*models.Role
	users          map[string]*models.User
	participants   map[uint]*models.Participant
	instructures   map[uint]*models.Instructure
	courses        map[uint]*models.Course
	classes        map[uint]*models.Class
	assignments    map[uint]*models.TeachingAssignment
	registrations  map[uint]*models.CourseRegistration
	payments       map[uint]*models.Payment
	certifications map[uint]*models.Certification
	reports        map[uint]*models.ValueReport
	certificates   map[uint]*models.Certificate
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memSnapshot{
		nextID:         s.nextID,
		roles:          cloneMap(s.roles),
		users:          cloneMap(s.users),
		participants:   cloneMap(s.participants),
		instructures:   cloneMap(s.instructures),
		courses:        cloneMap(s.courses),
		classes:        cloneMap(s.classes),
		assignments:    cloneMap(s.assignments),
		registrations:  cloneMap(s.registrations),
		payments:       cloneMap(s.payments),
		certifications: cloneMap(s.certifications),
		reports:        cloneMap(s.reports),
		certificates:   cloneMap(s.certificates),
	}
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID = snap.nextID
	s.roles = snap.roles
	s.users = snap.users
	s.participants = snap.participants
	s.instructures = snap.instructures
	s.courses = snap.courses
	s.classes = snap.classes
	s.assignments = snap.assignments
	s.registrations = snap.registrations
	s.payments = snap.payments
	s.certifications = snap.certifications
	s.reports = snap.reports
	s.certificates = snap.certificates
}

// enter records the call and returns the injected failure for it, if any.
// Callers hold mu.
func (s *memStore) enter(call string) error {
	s.calls = append(s.calls, call)
	if err, ok := s.failOnce[call]; ok {
		delete(s.failOnce, call)
		return err
	}
	return s.failOn[call]
}

func (s *memStore) id() uint {
	s.nextID++
	return s.nextID
}

func (s *memStore) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *memStore) countCalls(call string) int {
	n := 0
	for _, c := range s.Calls() {
		if c == call {
			n++
		}
	}
	return n
}

func (s *memStore) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

func fkViolation(constraint string) error {
	return &pgconn.PgError{Code: "23503", ConstraintName: constraint}
}

// ===== Repository =====

func (s *memStore) User() repositories.UserRepository {
	return memUsers{s}
}

func (s *memStore) Role() repositories.RoleRepository {
	return memRoles{s}
}

func (s *memStore) Participant() repositories.ParticipantRepository {
	return memParticipants{s}
}

func (s *memStore) Instructure() repositories.InstructureRepository {
	return memInstructures{s}
}

func (s *memStore) Course() repositories.CourseRepository {
	return memCourses{s}
}

func (s *memStore) Class() repositories.ClassRepository {
	return memClasses{s}
}

func (s *memStore) TeachingAssignment() repositories.TeachingAssignmentRepository {
	return memAssignments{s}
}

func (s *memStore) Registration() repositories.RegistrationRepository {
	return memRegistrations{s}
}

func (s *memStore) Payment() repositories.PaymentRepository {
	return memPayments{s}
}

func (s *memStore) Certification() repositories.CertificationRepository {
	return memCertifications{s}
}

func (s *memStore) ValueReport() repositories.ValueReportRepository {
	return memReports{s}
}

func (s *memStore) Certificate() repositories.CertificateRepository {
	return memCertificates{s}
}

func (s *memStore) IdentityDirectory() repositories.IdentityDirectory {
	return s.directory
}

func (s *memStore) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(nil); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *memStore) Ping(ctx context.Context) error { return nil }
func (s *memStore) Close() error                   { return nil }

// ===== seeding =====

func (s *memStore) addUser(id, email string) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &models.User{ID: id, Email: email, Username: id}
	s.users[id] = u
	return u
}

func (s *memStore) addParticipant(userID string) *models.Participant {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &models.Participant{ID: s.id(), UserID: userID, FullName: userID, CreatedAt: time.Now()}
	s.participants[p.ID] = p
	return p
}

func (s *memStore) addInstructure(userID string) *models.Instructure {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := &models.Instructure{ID: s.id(), UserID: userID, FullName: userID, CreatedAt: time.Now()}
	s.instructures[i.ID] = i
	return i
}

func (s *memStore) addCourse() *models.Course {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &models.Course{ID: s.id(), Title: "Course"}
	c.Code = "C" + time.Now().Format("150405.000000000")
	s.courses[c.ID] = c
	return c
}

func (s *memStore) addClass(courseID uint, quota int, start, end time.Time) *models.Class {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &models.Class{ID: s.id(), CourseID: courseID, Name: "Class", Quota: quota, Price: 1500, StartRegDate: start, EndRegDate: end}
	s.classes[c.ID] = c
	return c
}

func (s *memStore) addRegistration(participantID, classID uint) *models.CourseRegistration {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := &models.CourseRegistration{ID: s.id(), ParticipantID: participantID, ClassID: classID, RegStatus: models.RegStatusPending, PaymentStatus: models.PaymentStatusUnpaid}
	s.registrations[r.ID] = r
	return r
}

func (s *memStore) addPayment(registrationID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &models.Payment{ID: s.id(), RegistrationID: registrationID}
	s.payments[p.ID] = p
}

func (s *memStore) addCertification(registrationID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &models.Certification{ID: s.id(), RegistrationID: registrationID}
	s.certifications[c.ID] = c
}

func (s *memStore) addReport(registrationID, instructureID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := &models.ValueReport{ID: s.id(), RegistrationID: registrationID, InstructureID: instructureID}
	s.reports[r.ID] = r
}

func (s *memStore) addAssignment(classID, instructureID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := &models.TeachingAssignment{ID: s.id(), ClassID: classID, InstructureID: instructureID}
	s.assignments[a.ID] = a
}

func (s *memStore) addCertificate(subject models.SubjectType, subjectID, courseID uint, number string) *models.Certificate {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &models.Certificate{ID: s.id(), CourseID: courseID, CertificateNumber: number, Status: models.CertificateStatusValid, IssueDate: time.Now()}
	id := subjectID
	if subject == models.SubjectParticipant {
		c.ParticipantID = &id
	} else {
		c.InstructureID = &id
	}
	s.certificates[c.ID] = c
	return c
}

// ===== roles =====

type memRoles struct{ s *memStore }

func (r memRoles) EnsureByName(ctx context.Context, tx *gorm.DB, name, description string) (*models.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("Role.EnsureByName"); err != nil {
		return nil, err
	}
	for _, role := range r.s.roles {
		if role.Name == name {
			c := *role
			return &c, nil
		}
	}
	role := &models.Role{ID: r.s.id(), Name: name}
	if description != "" {
		role.Description = &description
	}
	r.s.roles[role.ID] = role
	c := *role
	return &c, nil
}

func (r memRoles) GetByName(ctx context.Context, tx *gorm.DB, name string) (*models.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("Role.GetByName"); err != nil {
		return nil, err
	}
	for _, role := range r.s.roles {
		if role.Name == name {
			c := *role
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memRoles) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if role, ok := r.s.roles[id]; ok {
		c := *role
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *memStore) roleName(id uint) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if role, ok := s.roles[id]; ok {
		return role.Name
	}
	return ""
}

// ===== users =====

type memUsers struct{ s *memStore }

func (r memUsers) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("User.GetByID"); err != nil {
		return nil, err
	}
	if u, ok := r.s.users[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memUsers) GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("User.GetByIDForUpdate"); err != nil {
		return nil, err
	}
	if u, ok := r.s.users[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memUsers) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("User.Create"); err != nil {
		return err
	}
	if _, ok := r.s.users[user.ID]; ok {
		return uniqueViolation("users_pkey")
	}
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return uniqueViolation("uq_users_email")
		}
	}
	c := *user
	r.s.users[user.ID] = &c
	return nil
}

func (r memUsers) UpdateRole(ctx context.Context, tx *gorm.DB, userID string, roleID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("User.UpdateRole"); err != nil {
		return err
	}
	u, ok := r.s.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.RoleID = roleID
	return nil
}

func (r memUsers) SetInstructureRef(ctx context.Context, tx *gorm.DB, userID string, instructureID *uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("User.SetInstructureRef"); err != nil {
		return err
	}
	u, ok := r.s.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.InstructureID = instructureID
	return nil
}

func (r memUsers) CountByInstructure(ctx context.Context, tx *gorm.DB, instructureID uint) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, u := range r.s.users {
		if u.InstructureID != nil && *u.InstructureID == instructureID {
			n++
		}
	}
	return n, nil
}

func (r memUsers) ReassignFromInstructure(ctx context.Context, tx *gorm.DB, instructureID, roleID uint) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("User.ReassignFromInstructure"); err != nil {
		return 0, err
	}
	var n int64
	for _, u := range r.s.users {
		if u.InstructureID != nil && *u.InstructureID == instructureID {
			u.InstructureID = nil
			u.RoleID = roleID
			n++
		}
	}
	return n, nil
}

func (r memUsers) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("User.Delete"); err != nil {
		return err
	}
	if _, ok := r.s.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	for _, p := range r.s.participants {
		if p.UserID == id {
			return fkViolation("fk_participants_user")
		}
	}
	for _, i := range r.s.instructures {
		if i.UserID == id {
			return fkViolation("fk_instructures_user")
		}
	}
	delete(r.s.users, id)
	return nil
}

// ===== profiles =====

type memParticipants struct{ s *memStore }

func (r memParticipants) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.participants[id]; ok {
		c := *p
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memParticipants) list(userID string) []models.Participant {
	var out []models.Participant
	for _, p := range r.s.participants {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r memParticipants) GetOldestByUser(ctx context.Context, tx *gorm.DB, userID string) (*models.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if list := r.list(userID); len(list) > 0 {
		return &list[0], nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memParticipants) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]models.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.list(userID), nil
}

func (r memParticipants) CountByUser(ctx context.Context, tx *gorm.DB, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.list(userID))), nil
}

func (r memParticipants) Create(ctx context.Context, tx *gorm.DB, participant *models.Participant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("Participant.Create"); err != nil {
		return err
	}
	participant.ID = r.s.id()
	c := *participant
	r.s.participants[c.ID] = &c
	return nil
}

func (r memParticipants) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("Participant.Delete"); err != nil {
		return err
	}
	if _, ok := r.s.participants[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	for _, reg := range r.s.registrations {
		if reg.ParticipantID == id {
			return fkViolation("fk_course_registrations_participant")
		}
	}
	for _, c := range r.s.certificates {
		if c.ParticipantID != nil && *c.ParticipantID == id {
			return fkViolation("fk_certificates_participant")
		}
	}
	delete(r.s.participants, id)
	return nil
}

type memInstructures struct{ s *memStore }

func (r memInstructures) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Instructure, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if i, ok := r.s.instructures[id]; ok {
		c := *i
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memInstructures) list(userID string) []models.Instructure {
	var out []models.Instructure
	for _, i := range r.s.instructures {
		if i.UserID == userID {
			out = append(out, *i)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out
}

func (r memInstructures) GetOldestByUser(ctx context.Context, tx *gorm.DB, userID string) (*models.Instructure, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if list := r.list(userID); len(list) > 0 {
		return &list[0], nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memInstructures) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]models.Instructure, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.list(userID), nil
}

func (r memInstructures) CountByUser(ctx context.Context, tx *gorm.DB, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.list(userID))), nil
}

func (r memInstructures) Create(ctx context.Context, tx *gorm.DB, instructure *models.Instructure) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("Instructure.Create"); err != nil {
		return err
	}
	instructure.ID = r.s.id()
	c := *instructure
	r.s.instructures[c.ID] = &c
	return nil
}

func (r memInstructures) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("Instructure.Delete"); err != nil {
		return err
	}
	if _, ok := r.s.instructures[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	for _, u := range r.s.users {
		if u.InstructureID != nil && *u.InstructureID == id {
			return fkViolation("fk_users_instructure")
		}
	}
	for _, a := range r.s.assignments {
		if a.InstructureID == id {
			return fkViolation("fk_teaching_assignments_instructure")
		}
	}
	delete(r.s.instructures, id)
	return nil
}

// ===== catalog =====

type memCourses struct{ s *memStore }

func (r memCourses) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c, ok := r.s.courses[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memCourses) Create(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	course.ID = r.s.id()
	c := *course
	r.s.courses[c.ID] = &c
	return nil
}

type memClasses struct{ s *memStore }

func (r memClasses) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Class, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c, ok := r.s.classes[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memClasses) Create(ctx context.Context, tx *gorm.DB, class *models.Class) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	class.ID = r.s.id()
	c := *class
	r.s.classes[c.ID] = &c
	return nil
}

type memAssignments struct{ s *memStore }

func (r memAssignments) Create(ctx context.Context, tx *gorm.DB, assignment *models.TeachingAssignment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	assignment.ID = r.s.id()
	c := *assignment
	r.s.assignments[c.ID] = &c
	return nil
}

func (r memAssignments) CountByInstructure(ctx context.Context, tx *gorm.DB, instructureID uint) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, a := range r.s.assignments {
		if a.InstructureID == instructureID {
			n++
		}
	}
	return n, nil
}

func (r memAssignments) DeleteByInstructure(ctx context.Context, tx *gorm.DB, instructureID uint) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("TeachingAssignment.DeleteByInstructure"); err != nil {
		return 0, err
	}
	var n int64
	for id, a := range r.s.assignments {
		if a.InstructureID == instructureID {
			delete(r.s.assignments, id)
			n++
		}
	}
	return n, nil
}

// ===== enrollment graph =====

type memRegistrations struct{ s *memStore }

func (r memRegistrations) Create(ctx context.Context, tx *gorm.DB, registration *models.CourseRegistration) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("Registration.Create"); err != nil {
		return err
	}
	for _, reg := range r.s.registrations {
		if reg.ParticipantID == registration.ParticipantID && reg.ClassID == registration.ClassID {
			return uniqueViolation(repositories.ConstraintRegistrationUnique)
		}
	}
	registration.ID = r.s.id()
	c := *registration
	r.s.registrations[c.ID] = &c
	return nil
}

func (r memRegistrations) GetByParticipantAndClass(ctx context.Context, tx *gorm.DB, participantID, classID uint) (*models.CourseRegistration, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, reg := range r.s.registrations {
		if reg.ParticipantID == participantID && reg.ClassID == classID {
			c := *reg
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memRegistrations) ExistsByParticipantAndClass(ctx context.Context, tx *gorm.DB, participantID, classID uint) (bool, error) {
	_, err := r.GetByParticipantAndClass(ctx, tx, participantID, classID)
	return err == nil, nil
}

func (r memRegistrations) CountByClass(ctx context.Context, tx *gorm.DB, classID uint) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, reg := range r.s.registrations {
		if reg.ClassID == classID {
			n++
		}
	}
	return n, nil
}

func (r memRegistrations) CountByParticipant(ctx context.Context, tx *gorm.DB, participantID uint) (int64, error) {
	ids, _ := r.IDsByParticipant(ctx, tx, participantID)
	return int64(len(ids)), nil
}

func (r memRegistrations) IDsByParticipant(ctx context.Context, tx *gorm.DB, participantID uint) ([]uint, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []uint
	for _, reg := range r.s.registrations {
		if reg.ParticipantID == participantID {
			ids = append(ids, reg.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r memRegistrations) DeleteByParticipant(ctx context.Context, tx *gorm.DB, participantID uint) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("Registration.DeleteByParticipant"); err != nil {
		return 0, err
	}
	var n int64
	for id, reg := range r.s.registrations {
		if reg.ParticipantID != participantID {
			continue
		}
		for _, p := range r.s.payments {
			if p.RegistrationID == id {
				return 0, fkViolation("fk_payments_registration")
			}
		}
		delete(r.s.registrations, id)
		n++
	}
	return n, nil
}

func (r memRegistrations) ListRosterByClass(ctx context.Context, tx *gorm.DB, classID uint) ([]models.RosterEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.RosterEntry
	for _, reg := range r.s.registrations {
		if reg.ClassID != classID {
			continue
		}
		entry := models.RosterEntry{
			RegistrationID:   reg.ID,
			RegStatus:        reg.RegStatus,
			PaymentStatus:    reg.PaymentStatus,
			Amount:           reg.Payment,
			RegistrationDate: reg.RegistrationDate,
		}
		if p, ok := r.s.participants[reg.ParticipantID]; ok {
			entry.ParticipantName = p.FullName
		}
		for _, p := range r.s.payments {
			if p.RegistrationID == reg.ID {
				entry.PaymentReference = p.Reference
			}
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RegistrationID < out[j].RegistrationID })
	return out, nil
}

type memPayments struct{ s *memStore }

func (r memPayments) Create(ctx context.Context, tx *gorm.DB, payment *models.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("Payment.Create"); err != nil {
		return err
	}
	for _, p := range r.s.payments {
		if p.Reference == payment.Reference {
			return uniqueViolation(repositories.ConstraintPaymentReference)
		}
	}
	payment.ID = r.s.id()
	c := *payment
	r.s.payments[c.ID] = &c
	return nil
}

func (r memPayments) GetByRegistration(ctx context.Context, tx *gorm.DB, registrationID uint) (*models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.payments {
		if p.RegistrationID == registrationID {
			c := *p
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memPayments) DeleteByRegistrations(ctx context.Context, tx *gorm.DB, registrationIDs []uint) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("Payment.DeleteByRegistrations"); err != nil {
		return 0, err
	}
	var n int64
	for id, p := range r.s.payments {
		if containsID(registrationIDs, p.RegistrationID) {
			delete(r.s.payments, id)
			n++
		}
	}
	return n, nil
}

type memCertifications struct{ s *memStore }

func (r memCertifications) Create(ctx context.Context, tx *gorm.DB, certification *models.Certification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	certification.ID = r.s.id()
	c := *certification
	r.s.certifications[c.ID] = &c
	return nil
}

func (r memCertifications) DeleteByRegistrations(ctx context.Context, tx *gorm.DB, registrationIDs []uint) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("Certification.DeleteByRegistrations"); err != nil {
		return 0, err
	}
	var n int64
	for id, c := range r.s.certifications {
		if containsID(registrationIDs, c.RegistrationID) {
			delete(r.s.certifications, id)
			n++
		}
	}
	return n, nil
}

type memReports struct{ s *memStore }

func (r memReports) Create(ctx context.Context, tx *gorm.DB, report *models.ValueReport) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	report.ID = r.s.id()
	c := *report
	r.s.reports[c.ID] = &c
	return nil
}

func (r memReports) CountByInstructure(ctx context.Context, tx *gorm.DB, instructureID uint) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, rep := range r.s.reports {
		if rep.InstructureID == instructureID {
			n++
		}
	}
	return n, nil
}

func (r memReports) DeleteByRegistrations(ctx context.Context, tx *gorm.DB, registrationIDs []uint) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("ValueReport.DeleteByRegistrations"); err != nil {
		return 0, err
	}
	var n int64
	for id, rep := range r.s.reports {
		if containsID(registrationIDs, rep.RegistrationID) {
			delete(r.s.reports, id)
			n++
		}
	}
	return n, nil
}

func (r memReports) DeleteByInstructure(ctx context.Context, tx *gorm.DB, instructureID uint) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("ValueReport.DeleteByInstructure"); err != nil {
		return 0, err
	}
	var n int64
	for id, rep := range r.s.reports {
		if rep.InstructureID == instructureID {
			delete(r.s.reports, id)
			n++
		}
	}
	return n, nil
}

type memCertificates struct{ s *memStore }

func matchesSubject(c *models.Certificate, subject models.SubjectType, subjectID uint) bool {
	st, id := c.Subject()
	return st == subject && id == subjectID
}

func (r memCertificates) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Certificate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c, ok := r.s.certificates[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memCertificates) GetBySubjectAndCourse(ctx context.Context, tx *gorm.DB, subject models.SubjectType, subjectID, courseID uint) (*models.Certificate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("Certificate.GetBySubjectAndCourse"); err != nil {
		return nil, err
	}
	for _, c := range r.s.certificates {
		if c.CourseID == courseID && matchesSubject(c, subject, subjectID) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memCertificates) ExistsByNumber(ctx context.Context, tx *gorm.DB, number string, excludeID *uint) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("Certificate.ExistsByNumber"); err != nil {
		return false, err
	}
	for _, c := range r.s.certificates {
		if c.CertificateNumber == number && (excludeID == nil || c.ID != *excludeID) {
			return true, nil
		}
	}
	return false, nil
}

func (r memCertificates) CountBySubject(ctx context.Context, tx *gorm.DB, subject models.SubjectType, subjectID uint) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, c := range r.s.certificates {
		if matchesSubject(c, subject, subjectID) {
			n++
		}
	}
	return n, nil
}

func (r memCertificates) checkUnique(cert *models.Certificate) error {
	subject, subjectID := cert.Subject()
	for _, c := range r.s.certificates {
		if c.ID == cert.ID {
			continue
		}
		if c.CertificateNumber == cert.CertificateNumber {
			return uniqueViolation(repositories.ConstraintCertificateNumber)
		}
		if c.CourseID == cert.CourseID && matchesSubject(c, subject, subjectID) {
			if subject == models.SubjectParticipant {
				return uniqueViolation(repositories.ConstraintCertificateParticipant)
			}
			return uniqueViolation(repositories.ConstraintCertificateInstructure)
		}
	}
	return nil
}

func (r memCertificates) Create(ctx context.Context, tx *gorm.DB, certificate *models.Certificate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("Certificate.Create"); err != nil {
		return err
	}
	if err := r.checkUnique(certificate); err != nil {
		return err
	}
	certificate.ID = r.s.id()
	c := *certificate
	r.s.certificates[c.ID] = &c
	return nil
}

func (r memCertificates) Update(ctx context.Context, tx *gorm.DB, certificate *models.Certificate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("Certificate.Update"); err != nil {
		return err
	}
	if _, ok := r.s.certificates[certificate.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	if err := r.checkUnique(certificate); err != nil {
		return err
	}
	c := *certificate
	r.s.certificates[c.ID] = &c
	return nil
}

func (r memCertificates) DeleteBySubject(ctx context.Context, tx *gorm.DB, subject models.SubjectType, subjectID uint) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("Certificate.DeleteBySubject"); err != nil {
		return 0, err
	}
	var n int64
	for id, c := range r.s.certificates {
		if matchesSubject(c, subject, subjectID) {
			delete(r.s.certificates, id)
			n++
		}
	}
	return n, nil
}

func containsID(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
